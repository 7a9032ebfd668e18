package lib

import (
	"bengaliboutique_server/config"
	"net/http"
	"net/url"
	"time"
)

func cookieSettings() (sameSite http.SameSite, secure bool, domain string) {
	sameSite = http.SameSiteLaxMode
	if config.IsProduction() {
		secure = true
		domain = config.GetConfig().Server.CookieDomain
	}
	return sameSite, secure, domain
}

// SetCookie sets an HttpOnly cookie for session usage
func SetCookie(key, val string, expiry time.Time, w http.ResponseWriter) {
	sameSite, secure, domain := cookieSettings()

	http.SetCookie(w, &http.Cookie{
		Name:     key,
		Value:    val,
		Expires:  expiry,
		Path:     "/",
		Domain:   domain,
		Secure:   secure,
		SameSite: sameSite,
		HttpOnly: true,
	})
}

func GetCookieValue(key string, r *http.Request) (string, error) {
	cookie, err := r.Cookie(key)
	if err != nil {
		return "", err
	}
	return cookie.Value, nil
}

// ClearCookie removes the cookie from the browser
func ClearCookie(key string, w http.ResponseWriter) {
	sameSite, secure, domain := cookieSettings()

	http.SetCookie(w, &http.Cookie{
		Name:     key,
		Value:    "",
		Path:     "/",
		Domain:   domain,
		Expires:  time.Now().Add(-time.Hour),
		MaxAge:   -1,
		Secure:   secure,
		SameSite: sameSite,
		HttpOnly: true,
	})
}

// SetFlash stores a one-shot message for the next page load.
func SetFlash(key, message string, w http.ResponseWriter) {
	SetCookie(key, url.QueryEscape(message), time.Now().Add(5*time.Minute), w)
}

// PopFlash returns the pending flash message and clears it.
func PopFlash(key string, w http.ResponseWriter, r *http.Request) string {
	raw, err := GetCookieValue(key, r)
	if err != nil || raw == "" {
		return ""
	}
	ClearCookie(key, w)
	message, err := url.QueryUnescape(raw)
	if err != nil {
		return ""
	}
	return message
}

const CSRFCookieName = "csrf"

// SetCSRFCookie sets the double-submit token. It is readable by scripts so
// they can echo it in the X-CSRF-Token header.
func SetCSRFCookie(val string, expiry time.Time, w http.ResponseWriter) {
	sameSite, secure, domain := cookieSettings()

	http.SetCookie(w, &http.Cookie{
		Name:     CSRFCookieName,
		Value:    val,
		Expires:  expiry,
		MaxAge:   int(time.Until(expiry).Seconds()),
		Path:     "/",
		Domain:   domain,
		Secure:   secure,
		SameSite: sameSite,
		HttpOnly: false,
	})
}
