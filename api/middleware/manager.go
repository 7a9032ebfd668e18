package middleware

import (
	"bengaliboutique_server/services"
	"bengaliboutique_server/structs"
	"context"
	"time"

	"github.com/MonkyMars/gecho"
)

// RateLimiter counts requests per client and endpoint inside a window.
type RateLimiter interface {
	IncrementRateLimit(ctx context.Context, ip, endpoint string, ttl time.Duration) (int, error)
}

type Middleware struct {
	cfg         *structs.Config
	logger      *gecho.Logger
	authService *services.AuthService
	limiter     RateLimiter
}

// NewMiddleware wires the request middleware. A nil limiter disables rate limiting.
func NewMiddleware(cfg *structs.Config, logger *gecho.Logger, authService *services.AuthService, limiter RateLimiter) *Middleware {
	return &Middleware{
		cfg:         cfg,
		logger:      logger,
		authService: authService,
		limiter:     limiter,
	}
}
