package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/mediguard/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags:
//
//	-a string   API base URL
//	-t int      request timeout (in seconds)
//	-s string   session storage file
//	-f string   log format: text, json or zerolog
//	-l string   log level: debug, info, warn or error
//	-m string   address to serve Prometheus metrics on
//	-i int      online check interval (in seconds)
//
// os.Args is filtered with flagx.FilterArgs so other loaders' flags are
// ignored.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-t", "-s", "-f", "-l", "-m", "-i"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.APIBaseURL, "a", cfg.APIBaseURL, "API base URL")
	timeout := fs.Int("t", int(cfg.RequestTimeout.Seconds()), "request timeout (in seconds)")
	fs.StringVar(&cfg.StoragePath, "s", cfg.StoragePath, "session storage file")
	fs.StringVar(&cfg.LogFormat, "f", cfg.LogFormat, "log format (text, json, zerolog)")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level")
	fs.StringVar(&cfg.MetricsAddr, "m", cfg.MetricsAddr, "metrics listen address")
	onlineCheckInterval := fs.Int("i", int(cfg.OnlineCheckInterval.Seconds()), "online check interval (in seconds)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	if *timeout > 0 {
		cfg.RequestTimeout = time.Duration(*timeout) * time.Second
	}
	if *onlineCheckInterval > 0 {
		cfg.OnlineCheckInterval = time.Duration(*onlineCheckInterval) * time.Second
	}
}
