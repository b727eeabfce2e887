package ports

import (
	"context"

	"github.com/alejandrodnm/floatwatch/internal/domain"
)

// ListingSource obtiene listings buy-now de un item del marketplace.
type ListingSource interface {
	// FetchItemListings devuelve los listings actuales para un market_hash_name.
	// Internamente degrada el limit y los parámetros hasta que la API acepte
	// la petición; si ninguna combinación funciona devuelve error.
	FetchItemListings(ctx context.Context, name string) ([]domain.Listing, error)
}

// AuctionSource obtiene el stream global de subastas activas.
type AuctionSource interface {
	// FetchActiveAuctions devuelve las subastas activas, paginando por cursor
	// hasta un número acotado de páginas. Las subastas sin expiry resoluble
	// se descartan durante el mapeo.
	FetchActiveAuctions(ctx context.Context) ([]domain.Auction, error)
}
