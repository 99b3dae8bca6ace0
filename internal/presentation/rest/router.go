package rest

import (
	"log/slog"
	"net/http"

	"github.com/akinyeraakintunde/enterprise-risk-intelligence-engine/pkg/auth"
)

// RouterConfig wires the HTTP surface. Metrics, JWT and Limiter are optional.
type RouterConfig struct {
	Health  *HealthHandler
	Dataset *DatasetHandler
	Metrics http.Handler
	JWT     *auth.JWTService
	Limiter *RateLimiter
	Logger  *slog.Logger
}

// probePaths never require a token or count against the rate limit.
var probePaths = []string{"/healthz", "/readyz", "/metrics"}

// NewRouter builds the HTTP handler with its middleware chain.
func NewRouter(cfg RouterConfig) http.Handler {
	mux := http.NewServeMux()
	cfg.Health.RegisterRoutes(mux)
	cfg.Dataset.RegisterRoutes(mux)
	if cfg.Metrics != nil {
		mux.Handle("GET /metrics", cfg.Metrics)
	}

	// Build middleware chain (applied in reverse order).
	var h http.Handler = mux
	if cfg.JWT != nil {
		h = AuthMiddleware(cfg.JWT, probePaths)(h)
	}
	if cfg.Limiter != nil {
		h = RateLimitMiddleware(cfg.Limiter, probePaths...)(h)
	}
	h = LoggingMiddleware(cfg.Logger)(h)
	return h
}
