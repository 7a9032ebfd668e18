package lib

import (
	"net/http"
	"strings"
)

const IdempotencyHeader = "Idempotency-Key"

// IdempotencyKey returns the trimmed Idempotency-Key header, capped at 128 characters.
func IdempotencyKey(r *http.Request) string {
	key := strings.TrimSpace(r.Header.Get(IdempotencyHeader))
	if len(key) > 128 {
		key = key[:128]
	}
	return key
}

// IsAJAX reports whether the caller expects a JSON payload instead of a redirect.
func IsAJAX(r *http.Request) bool {
	if r.Header.Get("X-Requested-With") == "XMLHttpRequest" {
		return true
	}
	return strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") ||
		strings.Contains(r.Header.Get("Accept"), "application/json")
}
