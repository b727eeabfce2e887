package csfloat

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"
)

const (
	defaultBaseURL = "https://csfloat.com/api/v1"

	// CSFloat no documenta límites exactos; 2 req/s con burst corto va bien
	// servido para un watcher de un solo usuario.
	requestsPerSec = 2
	requestBurst   = 4

	requestTimeout = 15 * time.Second
	userAgent      = "floatwatch/1.0"
)

// Client es el HTTP client de CSFloat con rate limiting y API key.
type Client struct {
	http      *http.Client
	base      string
	key       string
	pageLimit int
	maxPages  int
	limiter   *rate.Limiter
}

// NewClient crea un Client con el base URL y la API key dados.
// pageLimit es el limit inicial de página (el fetch degrada a 25 y 10);
// maxPages acota la paginación por cursor del scan de subastas.
func NewClient(base, key string, pageLimit, maxPages int) *Client {
	if base == "" {
		base = defaultBaseURL
	}
	if pageLimit <= 0 {
		pageLimit = 50
	}
	if maxPages <= 0 {
		maxPages = 3
	}
	return &Client{
		http:      &http.Client{Timeout: requestTimeout},
		base:      base,
		key:       key,
		pageLimit: pageLimit,
		maxPages:  maxPages,
		limiter:   rate.NewLimiter(requestsPerSec, requestBurst),
	}
}

// getJSON hace un GET con rate limiting y devuelve el status y el body raw.
// No reintenta: la política de reintentos vive en el caller (la escalera de
// combinaciones limit/parámetros es finita y explícita).
func (c *Client) getJSON(ctx context.Context, path string, params url.Values) (int, []byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return 0, nil, fmt.Errorf("rate limiter: %w", err)
	}

	u := c.base + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Authorization", c.key)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("read body: %w", err)
	}
	return resp.StatusCode, body, nil
}
