package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/mediguard/internal/flagx"
	"github.com/joho/godotenv"
)

// Environment variables read by parseEnv.
const (
	EnvAPIURL          = "MEDIGUARD_API_URL"
	EnvRequestTimeout  = "MEDIGUARD_REQUEST_TIMEOUT"
	EnvStorage         = "MEDIGUARD_STORAGE"
	EnvValidateOnStart = "MEDIGUARD_VALIDATE_ON_START"
	EnvLogFormat       = "MEDIGUARD_LOG_FORMAT"
	EnvLogLevel        = "MEDIGUARD_LOG_LEVEL"
	EnvMetricsAddr     = "MEDIGUARD_METRICS_ADDR"
	EnvOnlineCheck     = "MEDIGUARD_ONLINE_CHECK_INTERVAL"
)

const defaultEnvFile = ".env"

// parseEnv overlays cfg with MEDIGUARD_* variables.
//
// An env file is loaded first: the one named by -e/-env (it must exist), or
// ./.env when present. Variables already set in the process win over the
// file. Malformed values panic, like the JSON loader.
func parseEnv(cfg *Config) {
	loadEnvFile(flagx.EnvFileFlags())

	if v, ok := lookup(EnvAPIURL); ok {
		cfg.APIBaseURL = v
	}
	if v, ok := lookup(EnvRequestTimeout); ok {
		d, err := parseTimeout(v)
		if err != nil {
			panic(fmt.Errorf("%s: %w", EnvRequestTimeout, err))
		}
		cfg.RequestTimeout = d
	}
	if v, ok := lookup(EnvStorage); ok {
		cfg.StoragePath = v
	}
	if v, ok := lookup(EnvValidateOnStart); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			panic(fmt.Errorf("%s: %w", EnvValidateOnStart, err))
		}
		cfg.ValidateOnStart = b
	}
	if v, ok := lookup(EnvLogFormat); ok {
		cfg.LogFormat = v
	}
	if v, ok := lookup(EnvLogLevel); ok {
		cfg.LogLevel = v
	}
	if v, ok := lookup(EnvMetricsAddr); ok {
		cfg.MetricsAddr = v
	}
	if v, ok := lookup(EnvOnlineCheck); ok {
		d, err := parseTimeout(v)
		if err != nil {
			panic(fmt.Errorf("%s: %w", EnvOnlineCheck, err))
		}
		cfg.OnlineCheckInterval = d
	}
}

func loadEnvFile(path string) {
	if path != "" {
		if err := godotenv.Load(path); err != nil {
			panic(err)
		}
		return
	}
	if err := godotenv.Load(defaultEnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		panic(err)
	}
}

func lookup(key string) (string, bool) {
	v, ok := os.LookupEnv(key)
	v = strings.TrimSpace(v)
	return v, ok && v != ""
}

// parseTimeout accepts a positive number of whole seconds ("20") or a Go duration ("1m").
func parseTimeout(v string) (time.Duration, error) {
	if n, err := strconv.Atoi(v); err == nil {
		if n <= 0 {
			return 0, fmt.Errorf("timeout must be positive, got %d", n)
		}
		return time.Duration(n) * time.Second, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, err
	}
	if d <= 0 {
		return 0, fmt.Errorf("timeout must be positive, got %s", d)
	}
	return d, nil
}
