package config

import (
	"os"
	"path/filepath"
	"time"
)

// DefaultAPIBaseURL is the hosted MediGuard API.
const DefaultAPIBaseURL = "https://mediguard-api.onrender.com/api/v1"

// Config holds runtime settings for the MediGuard terminal client.
//
// Fields:
//   - APIBaseURL: base of every API path, e.g. ".../api/v1".
//   - RequestTimeout: bound on a whole HTTP exchange.
//   - StoragePath: SQLite file holding the persisted session.
//   - ValidateOnStart: re-check a persisted token against the API at startup.
//   - LogFormat / LogLevel: see logging.New.
//   - MetricsAddr: when set, Prometheus metrics are served on this address.
//   - OnlineCheckInterval: how often the client probes API reachability.
type Config struct {
	APIBaseURL      string
	RequestTimeout  time.Duration
	StoragePath     string
	ValidateOnStart bool
	LogFormat       string
	LogLevel        string
	MetricsAddr     string

	OnlineCheckInterval time.Duration
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.APIBaseURL = DefaultAPIBaseURL
	c.RequestTimeout = 15 * time.Second
	c.StoragePath = defaultStoragePath()
	c.ValidateOnStart = true
	c.LogFormat = "text"
	c.LogLevel = "warn"
	c.MetricsAddr = ""
	c.OnlineCheckInterval = 30 * time.Second
}

func defaultStoragePath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "mediguard.db"
	}
	return filepath.Join(dir, "mediguard", "session.db")
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// the environment, JSON (if present) and command-line flags. Later sources
// take precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseEnv(cfg)
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
