package httpapi

import (
	"net/http"
	"strconv"
	"time"

	"github.com/dmitrijs2005/mediguard/internal/common"
	"github.com/dmitrijs2005/mediguard/internal/devserver/auth"
	"github.com/dmitrijs2005/mediguard/internal/devserver/users"
	"github.com/dmitrijs2005/mediguard/internal/logging"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	userKey   = "user"
	claimsKey = "claims"
)

// requestLogger echoes or assigns X-Request-ID and logs one line per request.
func requestLogger(logger logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		requestID := c.GetHeader(common.RequestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Header(common.RequestIDHeader, requestID)

		c.Next()

		ctx := c.Request.Context()
		status := c.Writer.Status()
		args := []any{
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", status,
			"duration", time.Since(start),
			"request_id", requestID,
		}
		switch {
		case status >= http.StatusInternalServerError:
			logger.Error(ctx, "http request", args...)
		case status >= http.StatusBadRequest:
			logger.Warn(ctx, "http request", args...)
		default:
			logger.Info(ctx, "http request", args...)
		}
	}
}

type metrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

func newMetrics(reg prometheus.Registerer) (*metrics, error) {
	m := &metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "mediguard",
			Subsystem: "devserver",
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status code.",
		}, []string{"method", "route", "code"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "mediguard",
			Subsystem: "devserver",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
	for _, c := range []prometheus.Collector{m.requests, m.duration} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *metrics) middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.requests.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		m.duration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}

// authRequired rejects requests without a valid, unrevoked bearer token.
func (s *Server) authRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := common.BearerToken(c.GetHeader(common.AuthorizationHeader))
		if token == "" {
			fail(c, http.StatusUnauthorized, "Authorization header required")
			c.Abort()
			return
		}

		user, claims, err := s.users.Authenticate(c.Request.Context(), token)
		if err != nil {
			s.logger.Debug(c.Request.Context(), "token rejected", "error", err)
			fail(c, http.StatusUnauthorized, "Invalid or expired token")
			c.Abort()
			return
		}

		c.Set(userKey, user)
		c.Set(claimsKey, claims)
		c.Next()
	}
}

func currentUser(c *gin.Context) *users.User {
	return c.MustGet(userKey).(*users.User)
}

func currentClaims(c *gin.Context) *auth.Claims {
	return c.MustGet(claimsKey).(*auth.Claims)
}
