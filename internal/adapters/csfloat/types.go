package csfloat

import "encoding/json"

// DTOs raw de la API de CSFloat. Solo se usan dentro de este paquete.
// La conversión a domain entities se hace en mapping.go.

// listingsEnvelope es la respuesta de GET /listings. La API ha envuelto la
// lista bajo distintas keys según versión; se intentan en orden documentado.
type listingsEnvelope struct {
	Data     json.RawMessage `json:"data"`
	Listings json.RawMessage `json:"listings"`
	Results  json.RawMessage `json:"results"`
	Items    json.RawMessage `json:"items"`
	Cursor   string          `json:"cursor"`
}

// rawListing es un listing tal como lo devuelve la API.
// El id llega a veces como string y a veces como número; los timestamps de
// expiry llegan como epoch en segundos, epoch en milisegundos, o RFC3339.
type rawListing struct {
	ID             json.RawMessage    `json:"id"`
	Price          int64              `json:"price"` // centavos de USD
	TimeRemaining  json.Number        `json:"time_remaining"`
	ExpiresAt      json.RawMessage    `json:"expires_at"`
	Item           rawItem            `json:"item"`
	Seller         rawSeller          `json:"seller"`
	AuctionDetails *rawAuctionDetails `json:"auction_details"`
}

// rawItem es la metadata del skin dentro del listing.
type rawItem struct {
	MarketHashName string   `json:"market_hash_name"`
	WearName       string   `json:"wear_name"`
	FloatValue     *float64 `json:"float_value"`
	InspectLink    string   `json:"inspect_link"`
}

// rawSeller identifica al vendedor.
type rawSeller struct {
	SteamID string `json:"steam_id"`
}

// rawAuctionDetails es el detalle anidado de subasta.
type rawAuctionDetails struct {
	ExpiresAt  json.RawMessage `json:"expires_at"`
	CurrentBid int64           `json:"current_bid"` // centavos de USD
}
