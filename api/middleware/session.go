package middleware

import (
	"bengaliboutique_server/lib"
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// SessionMiddleware makes sure every request carries an anonymous session id.
// The cart lives under this id, so a missing or tampered cookie starts a fresh one.
func (mw *Middleware) SessionMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name := mw.cfg.Shop.SessionCookie

		sessionID, err := lib.GetCookieValue(name, r)
		if err != nil || uuid.Validate(sessionID) != nil {
			sessionID = uuid.NewString()
			lib.SetCookie(name, sessionID, time.Now().Add(mw.cfg.Shop.SessionTTL), w)
		}

		ctx := context.WithValue(r.Context(), SessionContextKey, sessionID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetSessionID returns the session id stored by SessionMiddleware.
func GetSessionID(ctx context.Context) string {
	sessionID, _ := ctx.Value(SessionContextKey).(string)
	return sessionID
}
