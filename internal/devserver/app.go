// Package devserver runs a local stand-in for the MediGuard API.
package devserver

import (
	"context"
	"database/sql"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/mediguard/internal/devserver/config"
	"github.com/dmitrijs2005/mediguard/internal/devserver/httpapi"
	"github.com/dmitrijs2005/mediguard/internal/devserver/pgstore"
	"github.com/dmitrijs2005/mediguard/internal/devserver/records"
	"github.com/dmitrijs2005/mediguard/internal/devserver/users"
	"github.com/dmitrijs2005/mediguard/internal/logging"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

type App struct {
	config *config.Config
	logger logging.Logger
	server *httpapi.Server
	db     *sql.DB
}

func NewApp(cfg *config.Config) (*App, error) {
	logger := logging.New(cfg.LogFormat, cfg.LogLevel, os.Stdout)

	gin.SetMode(gin.ReleaseMode)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	var repo users.Repository = users.NewMemoryRepository()
	var db *sql.DB
	if cfg.DatabaseDSN != "" {
		var err error
		db, err = pgstore.Open(context.Background(), cfg.DatabaseDSN)
		if err != nil {
			return nil, err
		}
		repo = users.NewPostgresRepository(db)
	}

	us := users.NewService(repo, cfg)
	s, err := httpapi.NewServer(cfg.Addr, logger, us, records.NewStore(), reg)
	if err != nil {
		if db != nil {
			_ = db.Close()
		}
		return nil, err
	}

	return &App{config: cfg, logger: logger, server: s, db: db}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

// Run serves until a termination signal arrives or ctx is cancelled.
func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting dev server...", "address", app.config.Addr)
	app.initSignalHandler(cancelFunc)

	if app.db != nil {
		defer app.db.Close()
	}

	return app.server.Run(ctx)
}
