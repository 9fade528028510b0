// Package httpapi serves the MediGuard JSON API for local development and
// tests. Routes live under /api/v1; Prometheus metrics under /metrics.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/dmitrijs2005/mediguard/internal/devserver/records"
	"github.com/dmitrijs2005/mediguard/internal/devserver/users"
	"github.com/dmitrijs2005/mediguard/internal/logging"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const shutdownTimeout = 5 * time.Second

type Server struct {
	address string
	users   *users.Service
	records *records.Store
	logger  logging.Logger
	engine  *gin.Engine
}

// NewServer wires the routes. reg receives the HTTP metrics and is exposed
// on /metrics.
func NewServer(address string, l logging.Logger, us *users.Service, rs *records.Store, reg *prometheus.Registry) (*Server, error) {
	s := &Server{
		address: address,
		users:   us,
		records: rs,
		logger:  l.With("module", "http_server"),
	}

	m, err := newMetrics(reg)
	if err != nil {
		return nil, err
	}

	e := gin.New()
	e.Use(gin.Recovery(), requestLogger(s.logger), m.middleware())

	e.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))
	e.GET("/health", s.health)

	api := e.Group("/api/v1")
	api.GET("/health", s.health)
	api.POST("/auth/login", s.login)
	api.POST("/auth/register", s.register)

	protected := api.Group("", s.authRequired())
	protected.POST("/auth/logout", s.logout)
	protected.GET("/user/profile", s.profile)
	protected.GET("/medication-remainder", s.listReminders)
	protected.POST("/medication-remainder", s.createReminder)
	protected.GET("/symptomchecker", s.listSymptomChecks)
	protected.POST("/symptomchecker", s.checkSymptoms)

	s.engine = e
	return s, nil
}

// Handler exposes the router, e.g. for httptest.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.address,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(ctx, "HTTP server shutdown", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
