// Package config handles configuration for the development API server,
// including defaults, JSON overlay, and command-line flags.
package config

import "time"

// Config holds runtime settings for the dev server.
//
// Fields:
//   - Addr: HTTP bind address.
//   - SecretKey: HMAC secret for signing JWTs (HS256). Development only.
//   - AccessTokenValidityDuration: access token lifetime.
//   - DatabaseDSN: PostgreSQL DSN (pgx). Empty keeps users in memory.
//   - LogFormat / LogLevel: see logging.New.
type Config struct {
	Addr                        string
	SecretKey                   string
	AccessTokenValidityDuration time.Duration
	DatabaseDSN                 string
	LogFormat                   string
	LogLevel                    string
}

// LoadDefaults populates Config with development defaults.
func (c *Config) LoadDefaults() {
	c.Addr = "127.0.0.1:8080"
	c.SecretKey = "secretKey"
	c.AccessTokenValidityDuration = 60 * time.Minute
	c.LogFormat = "zerolog"
	c.LogLevel = "info"
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from an optional JSON file and finally from command-line flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
