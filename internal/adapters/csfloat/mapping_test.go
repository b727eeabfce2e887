package csfloat

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractListingArray_TopLevelArray(t *testing.T) {
	body := []byte(`[{"id":"a","price":1000},{"id":"b","price":2000}]`)
	raw, cursor, err := extractListingArray(body)
	require.NoError(t, err)
	require.Len(t, raw, 2)
	assert.Equal(t, "", cursor)
}

func TestExtractListingArray_WrappedKeys(t *testing.T) {
	// La lista puede venir bajo data, listings, results o items
	for _, key := range []string{"data", "listings", "results", "items"} {
		body := []byte(`{"` + key + `":[{"id":"a","price":1000}]}`)
		raw, _, err := extractListingArray(body)
		require.NoError(t, err, "key %s", key)
		assert.Len(t, raw, 1, "key %s", key)
	}
}

func TestExtractListingArray_PrefersData(t *testing.T) {
	body := []byte(`{"data":[{"id":"a","price":1}],"listings":[{"id":"b","price":1},{"id":"c","price":1}]}`)
	raw, _, err := extractListingArray(body)
	require.NoError(t, err)
	require.Len(t, raw, 1)
	assert.Equal(t, "a", parseID(raw[0].ID))
}

func TestExtractListingArray_Cursor(t *testing.T) {
	body := []byte(`{"data":[{"id":"a","price":1}],"cursor":"next-page"}`)
	_, cursor, err := extractListingArray(body)
	require.NoError(t, err)
	assert.Equal(t, "next-page", cursor)
}

func TestExtractListingArray_EmptyAndUnknown(t *testing.T) {
	raw, _, err := extractListingArray([]byte(``))
	require.NoError(t, err)
	assert.Empty(t, raw)

	raw, _, err = extractListingArray([]byte(`{"message":"nothing here"}`))
	require.NoError(t, err)
	assert.Empty(t, raw)
}

func TestExtractListingArray_SkipsMalformedElement(t *testing.T) {
	// Un listing con price no numérico se salta; el resto del batch sobrevive
	body := []byte(`{"data":[
		{"id":"a","price":1000},
		{"id":"bad","price":"oops"},
		{"id":"c","price":2000}
	]}`)
	raw, _, err := extractListingArray(body)
	require.NoError(t, err)
	require.Len(t, raw, 2)
	assert.Equal(t, "a", parseID(raw[0].ID))
	assert.Equal(t, "c", parseID(raw[1].ID))
}

func TestExtractListingArray_SkipsMalformedInTopLevelArray(t *testing.T) {
	body := []byte(`[{"id":"bad","price":"oops"},{"id":"a","price":1000}]`)
	raw, _, err := extractListingArray(body)
	require.NoError(t, err)
	require.Len(t, raw, 1)
	assert.Equal(t, "a", parseID(raw[0].ID))
}

func TestParseID_StringAndNumber(t *testing.T) {
	assert.Equal(t, "abc123", parseID([]byte(`"abc123"`)))
	assert.Equal(t, "987654", parseID([]byte(`987654`)))
	assert.Equal(t, "", parseID([]byte(`null`)))
	assert.Equal(t, "", parseID(nil))
}

func TestMapListings_CentsAndFiltering(t *testing.T) {
	fv := 0.123456
	raw := []rawListing{
		{ID: []byte(`"a"`), Price: 1050, Item: rawItem{MarketHashName: "Widget A", WearName: "Field-Tested", FloatValue: &fv, InspectLink: "steam://inspect"}, Seller: rawSeller{SteamID: "7656"}},
		{ID: []byte(`"free"`), Price: 0},   // precio no positivo: fuera
		{ID: []byte(`"neg"`), Price: -100}, // idem
	}

	listings := mapListings(raw)
	require.Len(t, listings, 1)

	l := listings[0]
	assert.Equal(t, "a", l.ID)
	assert.InDelta(t, 10.50, l.PriceUSD, 1e-9, "centavos → USD")
	assert.Equal(t, "Widget A", l.ItemName)
	assert.Equal(t, "Field-Tested", l.Wear)
	assert.True(t, l.HasFloat)
	assert.InDelta(t, 0.123456, l.FloatValue, 1e-9)
	assert.Equal(t, "7656", l.SellerID)
}

func TestMapListing_MissingOptionalFields(t *testing.T) {
	l := mapListing(rawListing{ID: []byte(`"a"`), Price: 500})
	assert.Equal(t, "?", l.Wear)
	assert.False(t, l.HasFloat)
	assert.Equal(t, "", l.SellerID)
}

func TestResolveSecondsLeft_Priority(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)

	// 1. Campo directo time_remaining
	secs, ok := resolveSecondsLeft(rawListing{TimeRemaining: "290"}, now)
	require.True(t, ok)
	assert.Equal(t, int64(290), secs)

	// 2. Epoch top-level en segundos
	secs, ok = resolveSecondsLeft(rawListing{ExpiresAt: []byte(`1700000450`)}, now)
	require.True(t, ok)
	assert.Equal(t, int64(450), secs)

	// 3. Epoch en milisegundos
	secs, ok = resolveSecondsLeft(rawListing{ExpiresAt: []byte(`1700000450000`)}, now)
	require.True(t, ok)
	assert.Equal(t, int64(450), secs)

	// 4. RFC3339 anidado en auction_details
	expiry := now.Add(120 * time.Second).UTC().Format(time.RFC3339)
	secs, ok = resolveSecondsLeft(rawListing{
		AuctionDetails: &rawAuctionDetails{ExpiresAt: []byte(`"` + expiry + `"`)},
	}, now)
	require.True(t, ok)
	assert.Equal(t, int64(120), secs)

	// Nada resoluble → descartar
	_, ok = resolveSecondsLeft(rawListing{}, now)
	assert.False(t, ok)
}

func TestResolveSecondsLeft_DirectFieldWins(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	secs, ok := resolveSecondsLeft(rawListing{
		TimeRemaining: "100",
		ExpiresAt:     []byte(`1700000900`),
	}, now)
	require.True(t, ok)
	assert.Equal(t, int64(100), secs, "time_remaining manda sobre expires_at")
}

func TestMapAuctions_DropsUnresolvable(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	raw := []rawListing{
		{ID: []byte(`"good"`), Price: 8000, TimeRemaining: "290", Item: rawItem{MarketHashName: "Widget A"}},
		{ID: []byte(`"noexpiry"`), Price: 8000, Item: rawItem{MarketHashName: "Widget A"}},
	}

	auctions := mapAuctions(raw, now)
	require.Len(t, auctions, 1)
	assert.Equal(t, "good", auctions[0].ID)
	assert.Equal(t, int64(290), auctions[0].SecondsLeft)
}

func TestMapAuctions_CurrentBidOverridesPrice(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	raw := []rawListing{{
		ID:            []byte(`"x"`),
		Price:         9000,
		TimeRemaining: "290",
		Item:          rawItem{MarketHashName: "Widget A"},
		AuctionDetails: &rawAuctionDetails{
			CurrentBid: 8000,
		},
	}}

	auctions := mapAuctions(raw, now)
	require.Len(t, auctions, 1)
	assert.InDelta(t, 80.00, auctions[0].PriceUSD, 1e-9, "el bid actual manda sobre price")
}
