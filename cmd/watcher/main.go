package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alejandrodnm/floatwatch/config"
	"github.com/alejandrodnm/floatwatch/internal/adapters/csfloat"
	"github.com/alejandrodnm/floatwatch/internal/adapters/notify"
	"github.com/alejandrodnm/floatwatch/internal/adapters/storage"
	"github.com/alejandrodnm/floatwatch/internal/adapters/watchlist"
	"github.com/alejandrodnm/floatwatch/internal/ports"
	"github.com/alejandrodnm/floatwatch/internal/watcher"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to config file")
	once := flag.Bool("once", false, "run one scan cycle and exit")
	mode := flag.String("mode", "", "watch mode: buy_now|auction (overrides config)")
	verbose := flag.Bool("verbose", false, "set log level to debug")
	logFormat := flag.String("format", "", "log format: text|json (overrides config)")
	table := flag.Bool("table", false, "print deals as a full table (default: compact 1-line)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "err", err, "path", *configPath)
		os.Exit(1)
	}

	if *verbose {
		cfg.Log.Level = "debug"
	}
	if *logFormat != "" {
		cfg.Log.Format = *logFormat
	}
	if *mode != "" {
		cfg.Watcher.Mode = *mode
	}
	setupLogger(cfg.Log)

	slog.Info("floatwatch starting",
		"config", *configPath,
		"mode", cfg.Watcher.Mode,
		"interval", cfg.ScanInterval(),
		"once", *once,
	)

	client := csfloat.NewClient(cfg.API.BaseURL, cfg.API.Key, cfg.Watcher.PageLimit, cfg.Auction.MaxPages)

	// El store es best-effort: si no abre, el watcher dedupa solo en memoria.
	var store ports.StateStore
	if s, err := storage.NewSQLiteStore(cfg.Storage.DSN); err != nil {
		slog.Warn("could not open state store, running in-memory only", "err", err, "dsn", cfg.Storage.DSN)
	} else {
		store = s
		defer s.Close()
	}

	notifier := buildNotifier(cfg, *table)

	watchCfg := watcher.DefaultConfig()
	watchCfg.Mode = cfg.Watcher.Mode
	watchCfg.ScanInterval = cfg.ScanInterval()
	watchCfg.Once = *once
	watchCfg.Discount = cfg.Watcher.Discount
	watchCfg.MinSamples = cfg.Watcher.MinSamples
	watchCfg.Tracker = watcher.TrackerConfig{
		ProfitFraction: cfg.Auction.ProfitFraction,
		MinSamples:     cfg.Auction.MinSamples,
		MaxItems:       cfg.Auction.MaxItemsPerPass,
		TopN:           cfg.Auction.TopN,
		MaxBidUSD:      cfg.Auction.MaxBidUSD,
	}

	list := watchlist.NewFile(cfg.Watcher.WatchlistPath)
	w := watcher.New(watchCfg, client, client, list, store, notifier)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := w.Run(ctx); err != nil {
		slog.Error("watcher exited with error", "err", err)
		os.Exit(1)
	}

	slog.Info("floatwatch stopped cleanly")
}

// buildNotifier monta consola + webhook si hay DISCORD_WEBHOOK configurado.
func buildNotifier(cfg *config.Config, table bool) ports.Notifier {
	console := notify.NewConsole(table)
	if cfg.API.Webhook == "" {
		return console
	}
	return notify.NewMulti(console, notify.NewDiscord(cfg.API.Webhook))
}

func setupLogger(cfg config.LogConfig) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))
}
