package watcher

import (
	"context"
	"errors"
	"testing"

	"github.com/alejandrodnm/floatwatch/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// refSource devuelve listings fijos por nombre, para las referencias.
type refSource struct {
	byName map[string][]domain.Listing
	err    error
	calls  []string
}

func (r *refSource) FetchItemListings(_ context.Context, name string) ([]domain.Listing, error) {
	r.calls = append(r.calls, name)
	if r.err != nil {
		return nil, r.err
	}
	return r.byName[name], nil
}

func pricesAt(name string, prices ...float64) []domain.Listing {
	listings := make([]domain.Listing, 0, len(prices))
	for i, p := range prices {
		listings = append(listings, domain.Listing{
			ID:       name + "-ref-" + string(rune('a'+i)),
			ItemName: name,
			PriceUSD: p,
		})
	}
	return listings
}

func makeAuction(id, name string, bid float64, secondsLeft int64) domain.Auction {
	return domain.Auction{
		Listing:     domain.Listing{ID: id, ItemName: name, PriceUSD: bid, Wear: "Field-Tested"},
		SecondsLeft: secondsLeft,
	}
}

func newTestTracker(refs *refSource) *Tracker {
	return NewTracker(refs, TrackerConfig{
		ProfitFraction: 0.12,
		MinSamples:     3,
		MaxItems:       10,
		TopN:           8,
		MaxBidUSD:      50000,
	})
}

func TestTracker_Scan_AlertsBelowTarget(t *testing.T) {
	// Subasta a 290s con bid $80, referencia $100, profit 0.12 →
	// target $88 → alerta en stage 5m y el stage map lo registra
	refs := &refSource{byName: map[string][]domain.Listing{
		"Widget A": pricesAt("Widget A", 100, 100, 100),
	}}
	tr := newTestTracker(refs)
	stages := map[string]domain.Stage{}

	deals := tr.Scan(context.Background(),
		[]domain.Auction{makeAuction("X", "Widget A", 80.00, 290)}, stages)

	require.Len(t, deals, 1)
	assert.Equal(t, "X", deals[0].Listing.ID)
	assert.Equal(t, domain.Stage5m, deals[0].Stage)
	assert.InDelta(t, 100.0, deals[0].Reference, 1e-9)
	assert.InDelta(t, 20.0, deals[0].DropPct, 1e-9)
	assert.Equal(t, domain.Stage5m, stages["X"])
}

func TestTracker_Scan_BidAboveTargetDiscarded(t *testing.T) {
	refs := &refSource{byName: map[string][]domain.Listing{
		"Widget A": pricesAt("Widget A", 100, 100, 100),
	}}
	tr := newTestTracker(refs)
	stages := map[string]domain.Stage{}

	// target = 88 → bid 90 no alcanza
	deals := tr.Scan(context.Background(),
		[]domain.Auction{makeAuction("X", "Widget A", 90.00, 290)}, stages)

	assert.Empty(t, deals)
	assert.Empty(t, stages, "sin deal no se registra stage")
}

func TestTracker_Scan_StageDedup(t *testing.T) {
	refs := &refSource{byName: map[string][]domain.Listing{
		"Widget A": pricesAt("Widget A", 100, 100, 100),
	}}
	tr := newTestTracker(refs)

	// Ya notificada en 5m → misma ventana no re-alerta
	stages := map[string]domain.Stage{"X": domain.Stage5m}
	deals := tr.Scan(context.Background(),
		[]domain.Auction{makeAuction("X", "Widget A", 80.00, 290)}, stages)
	assert.Empty(t, deals, "misma stage ya notificada no repite")

	// Notificada en 10m y ahora dentro de la ventana de 5m → sí alerta
	stages = map[string]domain.Stage{"X": domain.Stage10m}
	deals = tr.Scan(context.Background(),
		[]domain.Auction{makeAuction("X", "Widget A", 80.00, 290)}, stages)
	require.Len(t, deals, 1)
	assert.Equal(t, domain.Stage5m, deals[0].Stage)
	assert.Equal(t, domain.Stage5m, stages["X"], "la stage avanza a 5m")
}

func TestTracker_Scan_FiltersCandidates(t *testing.T) {
	refs := &refSource{byName: map[string][]domain.Listing{
		"Widget A": pricesAt("Widget A", 100, 100, 100),
	}}
	tr := newTestTracker(refs)
	stages := map[string]domain.Stage{}

	auctions := []domain.Auction{
		makeAuction("early", "Widget A", 80, 900),    // fuera de ventana
		makeAuction("expired", "Widget A", 80, -10),  // ya expirada
		makeAuction("zero", "Widget A", 0, 290),      // bid no positivo
		makeAuction("crazy", "Widget A", 99999, 290), // sobre el techo de cordura
		makeAuction("anon", "", 80, 290),             // sin nombre de item
		makeAuction("", "Widget A", 80, 290),         // sin listing id
		makeAuction("ok", "Widget A", 80, 290),
	}

	deals := tr.Scan(context.Background(), auctions, stages)
	require.Len(t, deals, 1)
	assert.Equal(t, "ok", deals[0].Listing.ID)

	_, emptyKey := stages[""]
	assert.False(t, emptyKey, "un id vacío nunca entra al stage map")
}

func TestTracker_Scan_CapsDistinctItems(t *testing.T) {
	refs := &refSource{byName: map[string][]domain.Listing{
		"Widget A": pricesAt("Widget A", 100, 100, 100),
		"Widget B": pricesAt("Widget B", 50, 50, 50),
	}}
	tr := NewTracker(refs, TrackerConfig{
		ProfitFraction: 0.12,
		MinSamples:     3,
		MaxItems:       1, // solo se pricea el primer nombre distinto
		TopN:           8,
		MaxBidUSD:      50000,
	})
	stages := map[string]domain.Stage{}

	deals := tr.Scan(context.Background(), []domain.Auction{
		makeAuction("a1", "Widget A", 80, 290),
		makeAuction("b1", "Widget B", 30, 290),
	}, stages)

	require.Len(t, deals, 1, "Widget B queda sin referencia esta pasada")
	assert.Equal(t, "a1", deals[0].Listing.ID)
	assert.Equal(t, []string{"Widget A"}, refs.calls)
}

func TestTracker_Scan_RanksAndTruncates(t *testing.T) {
	refs := &refSource{byName: map[string][]domain.Listing{
		"Widget A": pricesAt("Widget A", 100, 100, 100),
	}}
	tr := NewTracker(refs, TrackerConfig{
		ProfitFraction: 0.12,
		MinSamples:     3,
		MaxItems:       10,
		TopN:           2,
		MaxBidUSD:      50000,
	})
	stages := map[string]domain.Stage{}

	deals := tr.Scan(context.Background(), []domain.Auction{
		makeAuction("slow", "Widget A", 88, 300), // drop 12%
		makeAuction("deep", "Widget A", 70, 120), // drop 30%
		makeAuction("mid", "Widget A", 80, 120),  // drop 20%
	}, stages)

	require.Len(t, deals, 2, "truncado al top 2")
	assert.Equal(t, "deep", deals[0].Listing.ID, "expira pronto y con más drop")
	assert.Equal(t, "mid", deals[1].Listing.ID)

	_, slowKept := stages["slow"]
	assert.False(t, slowKept, "lo truncado no registra stage")
}

func TestTracker_Scan_ReferenceFetchFailure(t *testing.T) {
	refs := &refSource{err: errors.New("API down")}
	tr := newTestTracker(refs)
	stages := map[string]domain.Stage{}

	deals := tr.Scan(context.Background(),
		[]domain.Auction{makeAuction("X", "Widget A", 80, 290)}, stages)
	assert.Empty(t, deals, "sin referencia no hay deal, y el fallo no revienta la pasada")
}
