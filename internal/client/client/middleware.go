package client

import (
	"context"
	"net/http"
	"time"

	"github.com/dmitrijs2005/mediguard/internal/common"
	"github.com/dmitrijs2005/mediguard/internal/logging"
	"github.com/google/uuid"
)

// Middleware decorates a RoundTripper.
type Middleware func(next http.RoundTripper) http.RoundTripper

// RoundTripperFunc adapts a function to http.RoundTripper.
type RoundTripperFunc func(*http.Request) (*http.Response, error)

func (f RoundTripperFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}

// Chain wraps base so that a request passes through mws in the given order
// before reaching base.
func Chain(base http.RoundTripper, mws ...Middleware) http.RoundTripper {
	rt := base
	for i := len(mws) - 1; i >= 0; i-- {
		rt = mws[i](rt)
	}
	return rt
}

type tokenCtxKey struct{}

// WithToken makes AttachCredential send token instead of the session token.
func WithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenCtxKey{}, token)
}

func tokenFromContext(ctx context.Context) (string, bool) {
	t, ok := ctx.Value(tokenCtxKey{}).(string)
	return t, ok
}

// RequestID sets X-Request-ID when the request has none.
func RequestID() Middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripperFunc(func(req *http.Request) (*http.Response, error) {
			if req.Header.Get(common.RequestIDHeader) != "" {
				return next.RoundTrip(req)
			}
			req = req.Clone(req.Context())
			req.Header.Set(common.RequestIDHeader, uuid.NewString())
			return next.RoundTrip(req)
		})
	}
}

// Logging writes one line per exchange. Credentials and bodies are never
// logged.
func Logging(logger logging.Logger) Middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripperFunc(func(req *http.Request) (*http.Response, error) {
			ctx := req.Context()
			start := time.Now()

			resp, err := next.RoundTrip(req)

			args := []any{
				"method", req.Method,
				"path", req.URL.Path,
				"request_id", req.Header.Get(common.RequestIDHeader),
				"duration", time.Since(start),
			}
			switch {
			case err != nil:
				logger.Warn(ctx, "api request failed", append(args, "error", err)...)
			case resp.StatusCode >= 500:
				logger.Error(ctx, "api request", append(args, "status", resp.StatusCode)...)
			case resp.StatusCode >= 400:
				logger.Warn(ctx, "api request", append(args, "status", resp.StatusCode)...)
			default:
				logger.Debug(ctx, "api request", append(args, "status", resp.StatusCode)...)
			}
			return resp, err
		})
	}
}

// AttachCredential adds the bearer token from the context override or, when
// there is none, from tokenFn. No header is added for an empty token.
func AttachCredential(tokenFn func() string) Middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripperFunc(func(req *http.Request) (*http.Response, error) {
			token, ok := tokenFromContext(req.Context())
			if !ok {
				token = tokenFn()
			}
			if token == "" {
				return next.RoundTrip(req)
			}
			req = req.Clone(req.Context())
			req.Header.Set(common.AuthorizationHeader, common.BearerPrefix+token)
			return next.RoundTrip(req)
		})
	}
}

// InvalidateOnUnauthorized reports every 401 to invalidate together with the
// token the request carried. It must sit after AttachCredential.
func InvalidateOnUnauthorized(invalidate func(ctx context.Context, token string) bool, logger logging.Logger) Middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripperFunc(func(req *http.Request) (*http.Response, error) {
			resp, err := next.RoundTrip(req)
			if err != nil || resp.StatusCode != http.StatusUnauthorized {
				return resp, err
			}

			token := common.BearerToken(req.Header.Get(common.AuthorizationHeader))
			if token == "" {
				return resp, err
			}
			ctx := context.WithoutCancel(req.Context())
			if invalidate(ctx, token) {
				logger.Warn(ctx, "session invalidated after unauthorized response", "path", req.URL.Path)
			}
			return resp, err
		})
	}
}
