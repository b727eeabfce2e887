package watcher

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/alejandrodnm/floatwatch/internal/domain"
	"github.com/alejandrodnm/floatwatch/internal/ports"
)

// Modos de operación del watcher.
const (
	ModeBuyNow  = "buy_now"
	ModeAuction = "auction"
)

// Config contiene la configuración del watcher.
type Config struct {
	Mode         string
	ScanInterval time.Duration
	Once         bool // ejecutar un solo ciclo y salir

	// Modo buy_now
	Discount   float64
	MinSamples int

	// Modo auction
	Tracker TrackerConfig
}

// DefaultConfig devuelve una configuración sensata para producción.
func DefaultConfig() Config {
	return Config{
		Mode:         ModeBuyNow,
		ScanInterval: 60 * time.Second,
		Discount:     0.10,
		MinSamples:   domain.DefaultMeanMinSamples,
	}
}

// Watcher es el orquestador principal del loop de escaneo.
// Una pasada procesa los items (o el scan global de subastas) estrictamente
// en secuencia; ningún error por item aborta el loop.
type Watcher struct {
	cfg       Config
	listings  ports.ListingSource
	auctions  ports.AuctionSource
	watchlist ports.WatchlistSource
	store     ports.StateStore
	notifier  ports.Notifier
	evaluator *Evaluator
	tracker   *Tracker

	// Estado de dedup en memoria; se carga del store al arrancar y se
	// persiste best-effort tras las pasadas con alerts.
	seen   map[string]struct{}
	stages map[string]domain.Stage
}

// New crea un Watcher con todas las dependencias inyectadas.
// store puede ser nil: el watcher degrada a dedup solo en memoria.
func New(
	cfg Config,
	listings ports.ListingSource,
	auctions ports.AuctionSource,
	watchlist ports.WatchlistSource,
	store ports.StateStore,
	notifier ports.Notifier,
) *Watcher {
	return &Watcher{
		cfg:       cfg,
		listings:  listings,
		auctions:  auctions,
		watchlist: watchlist,
		store:     store,
		notifier:  notifier,
		evaluator: NewEvaluator(cfg.Discount, cfg.MinSamples),
		tracker:   NewTracker(listings, cfg.Tracker),
		seen:      make(map[string]struct{}),
		stages:    make(map[string]domain.Stage),
	}
}

// Run ejecuta el loop de escaneo hasta que el contexto se cancele.
// Si cfg.Once está activo, solo ejecuta un ciclo.
func (w *Watcher) Run(ctx context.Context) error {
	slog.Info("watcher starting",
		"mode", w.cfg.Mode,
		"interval", w.cfg.ScanInterval,
		"once", w.cfg.Once,
	)

	w.loadState(ctx)
	w.announceStart(ctx)

	w.runCycle(ctx)
	if w.cfg.Once {
		return nil
	}

	ticker := time.NewTicker(w.cfg.ScanInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("watcher stopped")
			return nil
		case <-ticker.C:
			w.runCycle(ctx)
		}
	}
}

// RunOnce ejecuta exactamente un ciclo y devuelve los deals notificados.
func (w *Watcher) RunOnce(ctx context.Context) []domain.Deal {
	w.loadState(ctx)
	return w.cycle(ctx)
}

// loadState carga seen set y stage map del store. Cualquier fallo degrada a
// estado vacío en memoria: la persistencia nunca es fatal.
func (w *Watcher) loadState(ctx context.Context) {
	if w.store == nil {
		return
	}

	if seen, err := w.store.LoadSeen(ctx); err != nil {
		slog.Warn("could not load seen set, starting empty", "err", err)
	} else if seen != nil {
		w.seen = seen
	}

	if stages, err := w.store.LoadStages(ctx); err != nil {
		slog.Warn("could not load stage map, starting empty", "err", err)
	} else if stages != nil {
		w.stages = stages
	}
}

// announceStart manda el mensaje de arranque y, en modo buy_now, avisa si la
// watchlist está vacía para que el usuario sepa qué archivo crear.
func (w *Watcher) announceStart(ctx context.Context) {
	msg := fmt.Sprintf("floatwatch started (mode=%s, interval=%s)", w.cfg.Mode, w.cfg.ScanInterval)
	if err := w.notifier.Send(ctx, msg); err != nil {
		slog.Warn("notifier error", "err", err)
	}

	if w.cfg.Mode != ModeBuyNow || w.watchlist == nil {
		return
	}
	items, err := w.watchlist.Items()
	if err == nil && len(items) == 0 {
		hint := "watchlist is empty — add one market_hash_name per line (exact name incl. wear)"
		if err := w.notifier.Send(ctx, hint); err != nil {
			slog.Warn("notifier error", "err", err)
		}
	}
}

// runCycle ejecuta un ciclo completo y loguea el resumen.
func (w *Watcher) runCycle(ctx context.Context) {
	start := time.Now()
	cycleID := uuid.New().String()[:8]

	deals := w.cycle(ctx)

	slog.Info("cycle complete",
		"cycle", cycleID,
		"mode", w.cfg.Mode,
		"alerts", len(deals),
		"duration", time.Since(start).Round(time.Millisecond),
	)
}

// cycle despacha la pasada según el modo y devuelve los deals notificados.
func (w *Watcher) cycle(ctx context.Context) []domain.Deal {
	switch w.cfg.Mode {
	case ModeAuction:
		return w.auctionCycle(ctx)
	default:
		return w.buyNowCycle(ctx)
	}
}

// buyNowCycle recorre la watchlist item a item. El seen set actualizado solo
// se persiste si al menos un alert disparó en toda la pasada, amortizando el
// coste de escritura entre todos los items.
func (w *Watcher) buyNowCycle(ctx context.Context) []domain.Deal {
	items, err := w.watchlist.Items()
	if err != nil {
		slog.Warn("could not read watchlist", "err", err)
		return nil
	}
	if len(items) == 0 {
		slog.Debug("watchlist empty, nothing to scan")
		return nil
	}

	var all []domain.Deal
	for _, name := range items {
		if ctx.Err() != nil {
			break
		}

		listings, err := w.listings.FetchItemListings(ctx, name)
		if err != nil {
			slog.Warn("fetch failed, skipping item this cycle", "item", name, "err", err)
			continue
		}

		deals := w.evaluator.EvaluateBatch(name, listings, w.seen)
		if len(deals) == 0 {
			continue
		}

		if err := w.notifier.NotifyDeals(ctx, deals); err != nil {
			slog.Warn("notifier error", "item", name, "err", err)
		}
		w.recordAlerts(ctx, ModeBuyNow, deals)
		all = append(all, deals...)
	}

	if len(all) > 0 {
		w.saveSeen(ctx)
	}
	return all
}

// auctionCycle hace el scan global de subastas. El stage map se persiste
// antes de notificar, para que un crash a mitad de entrega no re-alerte.
func (w *Watcher) auctionCycle(ctx context.Context) []domain.Deal {
	auctions, err := w.auctions.FetchActiveAuctions(ctx)
	if err != nil {
		slog.Warn("auction fetch failed, skipping this cycle", "err", err)
		return nil
	}

	deals := w.tracker.Scan(ctx, auctions, w.stages)
	if len(deals) == 0 {
		return nil
	}

	w.saveStages(ctx)

	if err := w.notifier.NotifyDeals(ctx, deals); err != nil {
		slog.Warn("notifier error", "err", err)
	}
	w.recordAlerts(ctx, ModeAuction, deals)

	return deals
}

// --- persistencia best-effort ---

func (w *Watcher) saveSeen(ctx context.Context) {
	if w.store == nil {
		return
	}
	if err := w.store.SaveSeen(ctx, w.seen); err != nil {
		slog.Warn("could not persist seen set", "err", err)
	}
}

func (w *Watcher) saveStages(ctx context.Context) {
	if w.store == nil {
		return
	}
	if err := w.store.SaveStages(ctx, w.stages); err != nil {
		slog.Warn("could not persist stage map", "err", err)
	}
}

func (w *Watcher) recordAlerts(ctx context.Context, mode string, deals []domain.Deal) {
	if w.store == nil {
		return
	}
	if err := w.store.RecordAlerts(ctx, mode, deals); err != nil {
		slog.Warn("could not record alert history", "err", err)
	}
}
