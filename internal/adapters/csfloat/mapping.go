package csfloat

// mapping.go — conversión tolerante de los payloads de la API a domain.
//
// El payload de /listings ha cambiado de forma entre versiones: la lista
// puede venir como array top-level o envuelta bajo data/listings/results/
// items. Los ids llegan como string o número, y los expiry como segundos
// restantes, epoch (s o ms) o RFC3339 anidado en auction_details. Cada
// estrategia de extracción se intenta en un orden fijo y documentado;
// los listings individualmente malformados se saltan sin abortar el batch.

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/alejandrodnm/floatwatch/internal/domain"
)

// epochMsThreshold separa epochs en segundos de epochs en milisegundos.
// Cualquier valor por encima (~año 5138 en segundos) se trata como ms.
const epochMsThreshold = 1e11

// extractListingArray saca la lista de listings del body, probando en orden:
// array top-level, luego las keys data, listings, results, items.
// Devuelve también el cursor de paginación si el envelope lo trae.
func extractListingArray(body []byte) ([]rawListing, string, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil, "", nil
	}

	if trimmed[0] == '[' {
		var elems []json.RawMessage
		if err := json.Unmarshal(trimmed, &elems); err != nil {
			return nil, "", fmt.Errorf("parse listing array: %w", err)
		}
		return decodeListings(elems), "", nil
	}

	var env listingsEnvelope
	if err := json.Unmarshal(trimmed, &env); err != nil {
		return nil, "", fmt.Errorf("parse listing envelope: %w", err)
	}

	for _, candidate := range []json.RawMessage{env.Data, env.Listings, env.Results, env.Items} {
		if len(candidate) == 0 {
			continue
		}
		var elems []json.RawMessage
		if err := json.Unmarshal(candidate, &elems); err != nil {
			// La key existe pero no es una lista: probar la siguiente
			continue
		}
		return decodeListings(elems), env.Cursor, nil
	}

	return nil, env.Cursor, nil
}

// decodeListings decodifica cada listing por separado: un elemento malformado
// se salta con log de debug, nunca tumba el resto del batch.
func decodeListings(elems []json.RawMessage) []rawListing {
	raw := make([]rawListing, 0, len(elems))
	for i, e := range elems {
		var r rawListing
		if err := json.Unmarshal(e, &r); err != nil {
			slog.Debug("skipping malformed listing", "index", i, "err", err)
			continue
		}
		raw = append(raw, r)
	}
	return raw
}

// mapListings convierte los DTOs buy-now a domain.Listing.
// Se descartan los de precio no positivo: no aportan muestra ni alert.
func mapListings(raw []rawListing) []domain.Listing {
	listings := make([]domain.Listing, 0, len(raw))
	for _, r := range raw {
		l := mapListing(r)
		if l.PriceUSD <= 0 {
			continue
		}
		listings = append(listings, l)
	}
	return listings
}

// mapAuctions convierte los DTOs de subasta a domain.Auction, resolviendo el
// tiempo restante. Las subastas sin expiry resoluble se descartan.
func mapAuctions(raw []rawListing, now time.Time) []domain.Auction {
	auctions := make([]domain.Auction, 0, len(raw))
	for _, r := range raw {
		secs, ok := resolveSecondsLeft(r, now)
		if !ok {
			slog.Debug("auction without resolvable expiry, skipping", "id", parseID(r.ID))
			continue
		}
		l := mapListing(r)
		if bid := auctionBid(r); bid > 0 {
			l.PriceUSD = bid
		}
		auctions = append(auctions, domain.Auction{Listing: l, SecondsLeft: secs})
	}
	return auctions
}

// mapListing convierte un rawListing a domain.Listing (sin validar precio).
func mapListing(r rawListing) domain.Listing {
	l := domain.Listing{
		ID:          parseID(r.ID),
		ItemName:    r.Item.MarketHashName,
		PriceUSD:    float64(r.Price) / 100.0,
		Wear:        r.Item.WearName,
		InspectLink: r.Item.InspectLink,
		SellerID:    r.Seller.SteamID,
	}
	if l.Wear == "" {
		l.Wear = "?"
	}
	if r.Item.FloatValue != nil {
		l.FloatValue = *r.Item.FloatValue
		l.HasFloat = true
	}
	return l
}

// auctionBid devuelve el bid actual en USD, o 0 si no hay detalle de subasta.
func auctionBid(r rawListing) float64 {
	if r.AuctionDetails == nil {
		return 0
	}
	return float64(r.AuctionDetails.CurrentBid) / 100.0
}

// resolveSecondsLeft calcula los segundos restantes de una subasta probando,
// en orden: el campo directo time_remaining, el expiry top-level, y el expiry
// anidado en auction_details. Si ninguno resuelve, ok=false.
func resolveSecondsLeft(r rawListing, now time.Time) (int64, bool) {
	if r.TimeRemaining != "" {
		if secs, err := r.TimeRemaining.Int64(); err == nil {
			return secs, true
		}
		if f, err := r.TimeRemaining.Float64(); err == nil {
			return int64(f), true
		}
	}

	if t, ok := parseExpiry(r.ExpiresAt); ok {
		return int64(t.Sub(now).Seconds()), true
	}

	if r.AuctionDetails != nil {
		if t, ok := parseExpiry(r.AuctionDetails.ExpiresAt); ok {
			return int64(t.Sub(now).Seconds()), true
		}
	}

	return 0, false
}

// parseExpiry interpreta un expiry que puede ser epoch numérico (segundos o
// milisegundos) o un timestamp RFC3339 entre comillas.
func parseExpiry(raw json.RawMessage) (time.Time, bool) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return time.Time{}, false
	}

	if trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return time.Time{}, false
		}
		if t, err := time.Parse(time.RFC3339, s); err == nil {
			return t, true
		}
		// Algunos payloads traen el epoch como string numérico
		if epoch, err := strconv.ParseFloat(s, 64); err == nil {
			return epochToTime(epoch), true
		}
		return time.Time{}, false
	}

	var epoch float64
	if err := json.Unmarshal(trimmed, &epoch); err != nil {
		return time.Time{}, false
	}
	if epoch <= 0 {
		return time.Time{}, false
	}
	return epochToTime(epoch), true
}

// epochToTime convierte un epoch en segundos o milisegundos a time.Time.
func epochToTime(epoch float64) time.Time {
	if epoch > epochMsThreshold {
		return time.UnixMilli(int64(epoch))
	}
	return time.Unix(int64(epoch), 0)
}

// parseID acepta ids como string JSON o como número.
func parseID(raw json.RawMessage) string {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return ""
	}
	if trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return ""
		}
		return s
	}
	var n json.Number
	if err := json.Unmarshal(trimmed, &n); err != nil {
		return ""
	}
	return n.String()
}
