package middleware

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/MonkyMars/gecho"
)

// getRateLimitForEndpoint determines which rate limit to apply based on config
func (mw *Middleware) getRateLimitForEndpoint(path, method string) (int, time.Duration) {
	rl := mw.cfg.RateLimit

	// Checkout writes orders and sends mail - strictest limits
	if method == http.MethodPost && strings.HasPrefix(path, "/checkout") {
		return rl.CheckoutLimit, rl.CheckoutWindow
	}

	if strings.HasPrefix(path, "/admin") {
		return rl.AdminLimit, rl.AdminWindow
	}

	// Expensive read operations
	if method == http.MethodGet && strings.HasPrefix(path, "/products") {
		return rl.ExpensiveLimit, rl.ExpensiveWindow
	}

	return rl.GeneralLimit, rl.GeneralWindow
}

// getClientIP extracts the real client IP from request headers
func (mw *Middleware) getClientIP(r *http.Request) string {
	// Try X-Forwarded-For first (if behind proxy/load balancer)
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		// X-Forwarded-For can contain multiple IPs, take the first one
		ip, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(ip)
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}

	ip := r.RemoteAddr
	if idx := strings.LastIndex(ip, ":"); idx != -1 {
		ip = ip[:idx]
	}
	return ip
}

// normalizeEndpoint groups dynamic routes so counters do not explode per id,
// e.g. /products/silk-saree -> /products/:slug
func normalizeEndpoint(path string) string {
	path = strings.TrimSuffix(path, "/")
	parts := strings.Split(path, "/")
	if len(parts) < 3 {
		return path
	}

	switch parts[1] {
	case "products":
		if parts[2] != "filter" {
			parts[2] = ":slug"
		}
	case "cart", "wishlist":
		if len(parts) > 3 {
			parts[3] = ":id"
		}
	case "orders":
		parts[2] = ":id"
	case "admin":
		if len(parts) > 3 {
			parts[3] = ":id"
		}
	}
	return strings.Join(parts, "/")
}

// RateLimitMiddleware implements fixed window rate limiting and fails open on cache errors
func (mw *Middleware) RateLimitMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !mw.cfg.RateLimit.Enabled || mw.limiter == nil {
				next.ServeHTTP(w, r)
				return
			}

			// Skip rate limiting for probes and scrapes
			if strings.HasPrefix(r.URL.Path, "/health") || r.URL.Path == "/metrics" {
				next.ServeHTTP(w, r)
				return
			}

			clientIP := mw.getClientIP(r)
			limit, window := mw.getRateLimitForEndpoint(r.URL.Path, r.Method)
			endpoint := normalizeEndpoint(r.URL.Path)

			count, err := mw.limiter.IncrementRateLimit(r.Context(), clientIP, endpoint, window)
			if err != nil {
				mw.logger.Warn("Rate limit cache error, allowing request",
					gecho.Field("error", err),
					gecho.Field("ip", clientIP),
					gecho.Field("endpoint", endpoint),
				)
				next.ServeHTTP(w, r)
				return
			}

			reset := fmt.Sprintf("%d", time.Now().Add(window).Unix())

			if count > limit {
				mw.logger.Warn("Rate limit exceeded",
					gecho.Field("ip", clientIP),
					gecho.Field("endpoint", endpoint),
					gecho.Field("count", count),
					gecho.Field("limit", limit),
				)

				w.Header().Set("X-RateLimit-Limit", fmt.Sprintf("%d", limit))
				w.Header().Set("X-RateLimit-Remaining", "0")
				w.Header().Set("X-RateLimit-Reset", reset)
				w.Header().Set("Retry-After", fmt.Sprintf("%d", int(window.Seconds())))

				gecho.TooManyRequests(w,
					gecho.WithMessage("Rate limit exceeded. Please try again later."),
					gecho.WithData(map[string]any{
						"limit":       limit,
						"window":      window.String(),
						"retry_after": int(window.Seconds()),
					}),
					gecho.Send(),
				)
				return
			}

			remaining := max(0, limit-count)
			w.Header().Set("X-RateLimit-Limit", fmt.Sprintf("%d", limit))
			w.Header().Set("X-RateLimit-Remaining", fmt.Sprintf("%d", remaining))
			w.Header().Set("X-RateLimit-Reset", reset)

			next.ServeHTTP(w, r)
		})
	}
}
