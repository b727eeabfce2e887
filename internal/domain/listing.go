package domain

import (
	"fmt"
	"net/url"
)

// Listing es un snapshot inmutable de un listing del marketplace en el momento
// del fetch. No hay identidad entre fetches más allá del ID.
type Listing struct {
	ID          string
	ItemName    string  // market_hash_name exacto, incluye el wear
	PriceUSD    float64 // precio buy-now o bid actual, ya convertido desde centavos
	Wear        string  // "Field-Tested", "Minimal Wear", ...
	FloatValue  float64
	HasFloat    bool // la API no siempre devuelve float_value
	InspectLink string
	SellerID    string // steam_id del vendedor, puede faltar
}

// Auction es un listing de subasta con su tiempo restante ya resuelto.
// La resolución desde los distintos formatos de expiry la hace el adapter.
type Auction struct {
	Listing
	SecondsLeft int64
}

// MinutesLeft devuelve el tiempo restante en minutos.
func (a Auction) MinutesLeft() float64 {
	return float64(a.SecondsLeft) / 60.0
}

// FloatLabel devuelve el float formateado a 5 decimales, o "?" si falta.
func (l Listing) FloatLabel() string {
	if !l.HasFloat {
		return "?"
	}
	return fmt.Sprintf("%.5f", l.FloatValue)
}

// marketplaceBase es el sitio público, para los links de los mensajes.
const marketplaceBase = "https://csfloat.com"

// SearchURL construye el link de búsqueda del item en el marketplace.
func SearchURL(itemName, listingType string) string {
	return fmt.Sprintf("%s/search?market_hash_name=%s&type=%s&sort_by=lowest_price",
		marketplaceBase, url.QueryEscape(itemName), listingType)
}

// StallURL construye el link al stall del vendedor, o "" si no hay seller.
func StallURL(sellerID string) string {
	if sellerID == "" {
		return ""
	}
	return fmt.Sprintf("%s/stall/%s", marketplaceBase, sellerID)
}
