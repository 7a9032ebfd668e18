package middleware

import (
	"bengaliboutique_server/lib"
	"bengaliboutique_server/structs"
	"context"
	"errors"
	"net/http"

	"github.com/MonkyMars/gecho"
)

// Context keys for storing request-scoped data
type contextKey string

const (
	ClaimsContextKey  contextKey = "claims"
	SessionContextKey contextKey = "session"
)

// OptionalAuth attaches the caller's claims when a valid access token is present.
// Anonymous requests pass through untouched.
func (mw *Middleware) OptionalAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, err := mw.authService.Authenticate(r)
		if err != nil {
			if !errors.Is(err, lib.ErrUnauthenticated) {
				mw.logger.Debug("Ignoring unusable access token", gecho.Field("error", err))
			}
			next.ServeHTTP(w, r)
			return
		}

		ctx := context.WithValue(r.Context(), ClaimsContextKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// UserAuthMiddleware protects routes to only logged-in users
func (mw *Middleware) UserAuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := GetClaimsFromContext(r.Context())
		if !ok {
			var err error
			if claims, err = mw.authService.Authenticate(r); err != nil {
				mw.logger.Warn("Failed to extract claims from request", gecho.Field("error", err))
				gecho.Unauthorized(w, gecho.WithMessage("Invalid or missing access token"), gecho.Send())
				return
			}
		}

		ctx := context.WithValue(r.Context(), ClaimsContextKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// AdminAuthMiddleware protects routes to only admin users
// Must be used after UserAuthMiddleware
func (mw *Middleware) AdminAuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := GetClaimsFromContext(r.Context())
		if !ok {
			gecho.Unauthorized(w, gecho.WithMessage("Invalid or missing access token"), gecho.Send())
			return
		}

		if !claims.IsAdmin() {
			mw.logger.Warn("Non-admin user attempted to access admin route", gecho.Field("user_id", claims.Sub), gecho.Field("role", claims.Role))
			gecho.Forbidden(w, gecho.WithMessage("Admin access required"), gecho.Send())
			return
		}

		next.ServeHTTP(w, r)
	})
}

// GetClaimsFromContext is a helper function to extract the claims from request context
func GetClaimsFromContext(ctx context.Context) (*structs.AuthClaims, bool) {
	claims, ok := ctx.Value(ClaimsContextKey).(*structs.AuthClaims)
	return claims, ok && claims != nil
}
