package watcher

import (
	"log/slog"

	"github.com/alejandrodnm/floatwatch/internal/domain"
)

// Evaluator implementa el modo buy_now: referencia por media del batch del
// propio item y alert por cada listing a o bajo el umbral de descuento.
type Evaluator struct {
	discount   float64
	minSamples int
}

// NewEvaluator crea un Evaluator con la fracción de descuento y el mínimo
// de muestras dados.
func NewEvaluator(discount float64, minSamples int) *Evaluator {
	if discount < 0 {
		discount = 0
	}
	if minSamples <= 0 {
		minSamples = domain.DefaultMeanMinSamples
	}
	return &Evaluator{discount: discount, minSamples: minSamples}
}

// EvaluateBatch evalúa los listings de un item contra la media del batch.
// Muta seen: todo listing con id evaluado queda marcado, alerte o no. Cada
// listing id se evalúa una única vez en la vida del proceso, así que un
// listing que baje de precio después sin cambiar de id no vuelve a alertar.
// Con muestras insuficientes no alerta ni marca nada.
func (e *Evaluator) EvaluateBatch(name string, listings []domain.Listing, seen map[string]struct{}) []domain.Deal {
	prices := domain.PositivePrices(listings)

	reference, ok := domain.Mean(prices, e.minSamples)
	if !ok {
		slog.Info("not enough listings for a reference",
			"item", name, "samples", len(prices), "need", e.minSamples)
		return nil
	}

	threshold := reference * (1.0 - e.discount)
	searchURL := domain.SearchURL(name, "buy_now")

	var deals []domain.Deal
	for _, l := range listings {
		if l.ID == "" {
			continue
		}
		if _, dup := seen[l.ID]; dup {
			continue
		}

		if l.PriceUSD <= threshold {
			deals = append(deals, domain.Deal{
				Listing:   l,
				Reference: reference,
				DropPct:   domain.DropPct(reference, l.PriceUSD),
				SearchURL: searchURL,
				StallURL:  domain.StallURL(l.SellerID),
			})
		}
		seen[l.ID] = struct{}{}
	}

	return deals
}
