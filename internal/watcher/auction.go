package watcher

// auction.go — tracker de ventanas de subasta.
//
// Máquina de estados por listing id sobre el stage map: unseen → 10m → 5m,
// solo hacia adelante. Una subasta ya notificada en 10m sigue siendo elegible
// al cruzar a la ventana de 5m: el dedup compara contra la stage *calculada*,
// no contra "cualquier stage".
//
// Pricear un item exige fetches extra, así que cada pasada solo calcula
// referencia para los primeros maxItems nombres distintos encontrados:
// completitud sacrificada por latencia y coste de API acotados.

import (
	"context"
	"log/slog"
	"sync"

	"github.com/alejandrodnm/floatwatch/internal/domain"
	"github.com/alejandrodnm/floatwatch/internal/ports"
)

// TrackerConfig controla el tracker de subastas.
type TrackerConfig struct {
	ProfitFraction float64 // fracción bajo la referencia para alertar
	MinSamples     int     // muestras mínimas para la mediana recortada
	MaxItems       int     // nombres distintos a pricear por pasada
	TopN           int     // deals máximos tras el ranking
	MaxBidUSD      float64 // techo de cordura para el bid actual
}

// Tracker escanea el stream global de subastas buscando bids bajo referencia.
type Tracker struct {
	refs ports.ListingSource
	cfg  TrackerConfig
}

// NewTracker crea un Tracker que usa refs para pricear los items candidatos.
func NewTracker(refs ports.ListingSource, cfg TrackerConfig) *Tracker {
	if cfg.ProfitFraction <= 0 {
		cfg.ProfitFraction = 0.12
	}
	if cfg.MinSamples <= 0 {
		cfg.MinSamples = domain.DefaultMedianMinSamples
	}
	if cfg.MaxItems <= 0 {
		cfg.MaxItems = 12
	}
	if cfg.TopN <= 0 {
		cfg.TopN = 8
	}
	if cfg.MaxBidUSD <= 0 {
		cfg.MaxBidUSD = 50000
	}
	return &Tracker{refs: refs, cfg: cfg}
}

// candidate es una subasta que sobrevivió los filtros, con su stage calculada.
type candidate struct {
	auction domain.Auction
	stage   domain.Stage
}

// Scan procesa una pasada completa de subastas: clasifica por ventana de
// tiempo, deduplica por stage, pricea los candidatos, filtra por target,
// rankea y recorta. Muta stages con la stage de cada deal que se queda.
func (t *Tracker) Scan(ctx context.Context, auctions []domain.Auction, stages map[string]domain.Stage) []domain.Deal {
	var candidates []candidate
	for _, a := range auctions {
		stage, inWindow := domain.StageFor(a.SecondsLeft)
		if !inWindow {
			continue
		}
		if prev, seen := stages[a.ID]; seen && prev == stage {
			continue
		}
		if a.PriceUSD <= 0 || a.PriceUSD > t.cfg.MaxBidUSD {
			continue
		}
		// Sin id no hay dedup posible; sin nombre no hay referencia
		if a.ID == "" || a.ItemName == "" {
			continue
		}
		candidates = append(candidates, candidate{auction: a, stage: stage})
	}

	if len(candidates) == 0 {
		return nil
	}

	names := cappedNames(candidates, t.cfg.MaxItems)
	references := t.fetchReferences(ctx, names)

	var deals []domain.Deal
	for _, c := range candidates {
		reference, ok := references[c.auction.ItemName]
		if !ok {
			continue
		}

		target := reference * (1.0 - t.cfg.ProfitFraction)
		if c.auction.PriceUSD > target {
			continue
		}

		deals = append(deals, domain.Deal{
			Listing:     c.auction.Listing,
			Reference:   reference,
			DropPct:     domain.DropPct(reference, c.auction.PriceUSD),
			MinutesLeft: c.auction.MinutesLeft(),
			Stage:       c.stage,
			SearchURL:   domain.SearchURL(c.auction.ItemName, "auction"),
			StallURL:    domain.StallURL(c.auction.SellerID),
		})
	}

	deals = domain.RankDeals(deals)
	if len(deals) > t.cfg.TopN {
		deals = deals[:t.cfg.TopN]
	}

	for _, d := range deals {
		stages[d.Listing.ID] = d.Stage
	}

	return deals
}

// cappedNames devuelve los primeros maxItems nombres distintos en orden de
// aparición entre los candidatos.
func cappedNames(candidates []candidate, maxItems int) []string {
	names := make([]string, 0, maxItems)
	seen := make(map[string]struct{}, maxItems)
	for _, c := range candidates {
		if _, ok := seen[c.auction.ItemName]; ok {
			continue
		}
		if len(names) >= maxItems {
			break
		}
		seen[c.auction.ItemName] = struct{}{}
		names = append(names, c.auction.ItemName)
	}
	return names
}

// fetchReferences pricea cada nombre con la mediana recortada de sus listings
// buy-now actuales. Los fetches van en paralelo y se funden en un único map
// antes de usarse; los items que fallan o no alcanzan la muestra mínima
// simplemente no aparecen en el resultado.
func (t *Tracker) fetchReferences(ctx context.Context, names []string) map[string]float64 {
	type refResult struct {
		name string
		ref  float64
		ok   bool
	}

	resultCh := make(chan refResult, len(names))
	var wg sync.WaitGroup

	for _, name := range names {
		name := name
		wg.Add(1)
		go func() {
			defer wg.Done()

			listings, err := t.refs.FetchItemListings(ctx, name)
			if err != nil {
				slog.Warn("reference fetch failed, skipping item this pass", "item", name, "err", err)
				resultCh <- refResult{name: name}
				return
			}

			prices := domain.PositivePrices(listings)
			ref, ok := domain.TrimmedMedian(prices, t.cfg.MinSamples)
			if !ok {
				slog.Debug("not enough samples for auction reference",
					"item", name, "samples", len(prices), "need", t.cfg.MinSamples)
			}
			resultCh <- refResult{name: name, ref: ref, ok: ok}
		}()
	}

	go func() {
		wg.Wait()
		close(resultCh)
	}()

	references := make(map[string]float64, len(names))
	for r := range resultCh {
		if r.ok {
			references[r.name] = r.ref
		}
	}
	return references
}
