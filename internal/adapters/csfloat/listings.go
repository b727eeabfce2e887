package csfloat

// listings.go — fetch de listings con degradación de parámetros.
//
// La API rechaza a veces un limit alto o una combinación de parámetros según
// el endpoint y el momento. En vez de un retry loop oculto, el fetch consume
// una escalera finita y explícita de (limit, parámetros): limits en orden
// descendente × variantes de parámetros de más específica a más laxa. La
// primera respuesta 200 gana; si todas fallan, el error sube al caller, que
// lo trata como no fatal para la pasada.

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"time"

	"github.com/alejandrodnm/floatwatch/internal/domain"
)

const (
	listingsPath = "/listings"

	// TypeBuyNow y TypeAuction son los valores del parámetro type de la API.
	TypeBuyNow  = "buy_now"
	TypeAuction = "auction"
)

// FetchItemListings devuelve los listings buy-now actuales de un item.
// Prueba limits [configurado, 25, 10] × variantes [{name,type,sort},
// {name,type}, {name}] hasta obtener un 200.
func (c *Client) FetchItemListings(ctx context.Context, name string) ([]domain.Listing, error) {
	var lastErr error

	for _, lim := range limitLadder(c.pageLimit) {
		for _, params := range paramVariants(name) {
			params.Set("limit", strconv.Itoa(lim))

			status, body, err := c.getJSON(ctx, listingsPath, params)
			if err != nil {
				if ctx.Err() != nil {
					return nil, ctx.Err()
				}
				slog.Debug("listings request failed", "item", name, "params", params.Encode(), "err", err)
				lastErr = err
				continue
			}
			if status != 200 {
				slog.Debug("listings request rejected",
					"item", name, "status", status, "params", params.Encode(),
					"body", truncate(body, 200),
				)
				lastErr = fmt.Errorf("HTTP %d for params %s", status, params.Encode())
				continue
			}

			raw, _, err := extractListingArray(body)
			if err != nil {
				return nil, fmt.Errorf("csfloat.FetchItemListings %q: %w", name, err)
			}
			return mapListings(raw), nil
		}
	}

	if lastErr == nil {
		lastErr = fmt.Errorf("no limit/param combination accepted")
	}
	return nil, fmt.Errorf("csfloat.FetchItemListings %q: %w", name, lastErr)
}

// FetchActiveAuctions devuelve las subastas activas del marketplace entero,
// paginando por cursor hasta maxPages. Para antes si una página viene vacía
// o sin cursor. Un fallo a mitad de paginación devuelve lo acumulado.
func (c *Client) FetchActiveAuctions(ctx context.Context) ([]domain.Auction, error) {
	var all []domain.Auction
	now := time.Now()
	cursor := ""

	for page := 0; page < c.maxPages; page++ {
		params := url.Values{}
		params.Set("type", TypeAuction)
		params.Set("sort_by", "expires_soon")
		params.Set("limit", strconv.Itoa(c.pageLimit))
		if cursor != "" {
			params.Set("cursor", cursor)
		}

		status, body, err := c.getJSON(ctx, listingsPath, params)
		if err != nil || status != 200 {
			if err == nil {
				err = fmt.Errorf("HTTP %d", status)
			}
			if len(all) == 0 {
				return nil, fmt.Errorf("csfloat.FetchActiveAuctions page %d: %w", page, err)
			}
			slog.Warn("auction pagination aborted, using partial results",
				"page", page, "collected", len(all), "err", err)
			break
		}

		raw, next, err := extractListingArray(body)
		if err != nil {
			return nil, fmt.Errorf("csfloat.FetchActiveAuctions page %d: %w", page, err)
		}

		auctions := mapAuctions(raw, now)
		all = append(all, auctions...)

		slog.Debug("fetched auction page",
			"page", page, "count", len(raw), "total", len(all), "has_more", next != "")

		if len(raw) == 0 || next == "" {
			break
		}
		cursor = next
	}

	return all, nil
}

// limitLadder devuelve los limits a probar en orden descendente, sin repetir.
func limitLadder(start int) []int {
	ladder := []int{start}
	for _, lim := range []int{25, 10} {
		if lim < start {
			ladder = append(ladder, lim)
		}
	}
	return ladder
}

// paramVariants devuelve los sets de parámetros de más específico a más laxo.
func paramVariants(name string) []url.Values {
	return []url.Values{
		{
			"market_hash_name": {name},
			"type":             {TypeBuyNow},
			"sort_by":          {"lowest_price"},
		},
		{
			"market_hash_name": {name},
			"type":             {TypeBuyNow},
		},
		{
			"market_hash_name": {name},
		},
	}
}

// truncate corta un body de error para loguearlo sin ruido.
func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
