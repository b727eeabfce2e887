package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config es la configuración completa del watcher.
type Config struct {
	Watcher WatcherConfig `yaml:"watcher"`
	Auction AuctionConfig `yaml:"auction"`
	API     APIConfig     `yaml:"api"`
	Storage StorageConfig `yaml:"storage"`
	Log     LogConfig     `yaml:"log"`
}

// WatcherConfig controla el loop de escaneo y el modo buy_now.
type WatcherConfig struct {
	Mode            string  `yaml:"mode"`             // buy_now | auction
	IntervalSeconds int     `yaml:"interval_seconds"` // pausa entre pasadas completas
	PageLimit       int     `yaml:"page_limit"`       // limit inicial; el cliente degrada a 25 y 10
	Discount        float64 `yaml:"discount"`         // fracción bajo la media del batch (0.10 = 10%)
	MinSamples      int     `yaml:"min_samples"`      // listings mínimos para formar una media
	WatchlistPath   string  `yaml:"watchlist_path"`
}

// AuctionConfig controla el tracker de subastas.
type AuctionConfig struct {
	ProfitFraction  float64 `yaml:"profit_fraction"`    // fracción bajo la mediana para alertar
	MinSamples      int     `yaml:"min_samples"`        // muestras mínimas para la mediana recortada
	MaxItemsPerPass int     `yaml:"max_items_per_pass"` // nombres distintos a pricear por pasada
	TopN            int     `yaml:"top_n"`              // deals máximos notificados por pasada
	MaxPages        int     `yaml:"max_pages"`          // páginas de paginación por cursor
	MaxBidUSD       float64 `yaml:"max_bid_usd"`        // techo de cordura para el bid actual
}

// APIConfig contiene el base URL y las credenciales del marketplace.
type APIConfig struct {
	BaseURL string `yaml:"base_url"`
	Key     string `yaml:"-"` // solo desde env, nunca desde YAML
	Webhook string `yaml:"-"` // Discord webhook, opcional, solo desde env
}

// StorageConfig controla dónde se persiste el estado (seen set, stage map).
type StorageConfig struct {
	DSN string `yaml:"dsn"` // ruta al archivo SQLite, o ":memory:"
}

// LogConfig controla el formato y nivel de logging.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug | info | warn | error
	Format string `yaml:"format"` // text | json
}

// Load carga la configuración desde el archivo YAML y el archivo .env si existe.
// La API key es obligatoria: es el único error fatal antes de entrar al loop.
func Load(path string) (*Config, error) {
	// Cargar .env si existe (silencia error si no hay archivo)
	_ = godotenv.Load()

	var cfg Config
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("config.Load: parse YAML: %w", err)
		}
	case os.IsNotExist(err):
		// Sin archivo de config vale: defaults + env cubren todo menos la key
	default:
		return nil, fmt.Errorf("config.Load: read %q: %w", path, err)
	}

	applyEnvOverrides(&cfg)
	setDefaults(&cfg)

	if cfg.API.Key == "" {
		return nil, fmt.Errorf("config.Load: missing CSFLOAT_API_KEY in environment")
	}

	return &cfg, nil
}

// ScanInterval devuelve el intervalo entre pasadas como time.Duration.
func (c *Config) ScanInterval() time.Duration {
	return time.Duration(c.Watcher.IntervalSeconds) * time.Second
}

// applyEnvOverrides sobreescribe valores con variables de entorno si están presentes.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("CSFLOAT_API_KEY"); v != "" {
		cfg.API.Key = v
	}
	if v := os.Getenv("DISCORD_WEBHOOK"); v != "" {
		cfg.API.Webhook = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
}

// setDefaults asegura que los valores requeridos tengan valores sensatos.
func setDefaults(cfg *Config) {
	if cfg.Watcher.Mode == "" {
		cfg.Watcher.Mode = "buy_now"
	}
	if cfg.Watcher.IntervalSeconds <= 0 {
		cfg.Watcher.IntervalSeconds = 60
	}
	if cfg.Watcher.PageLimit <= 0 {
		cfg.Watcher.PageLimit = 50
	}
	if cfg.Watcher.Discount <= 0 {
		cfg.Watcher.Discount = 0.10
	}
	if cfg.Watcher.MinSamples <= 0 {
		cfg.Watcher.MinSamples = 2
	}
	if cfg.Watcher.WatchlistPath == "" {
		cfg.Watcher.WatchlistPath = "watchlist.txt"
	}
	if cfg.Auction.ProfitFraction <= 0 {
		cfg.Auction.ProfitFraction = 0.12
	}
	if cfg.Auction.MinSamples <= 0 {
		cfg.Auction.MinSamples = 3
	}
	if cfg.Auction.MaxItemsPerPass <= 0 {
		cfg.Auction.MaxItemsPerPass = 12
	}
	if cfg.Auction.TopN <= 0 {
		cfg.Auction.TopN = 8
	}
	if cfg.Auction.MaxPages <= 0 {
		cfg.Auction.MaxPages = 3
	}
	if cfg.Auction.MaxBidUSD <= 0 {
		cfg.Auction.MaxBidUSD = 50000
	}
	if cfg.API.BaseURL == "" {
		cfg.API.BaseURL = "https://csfloat.com/api/v1"
	}
	if cfg.Storage.DSN == "" {
		cfg.Storage.DSN = "floatwatch.db"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}
}
