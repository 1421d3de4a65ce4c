// ABOUTME: HTTP credential transport for the session token
// ABOUTME: Reads the session cookie or a bearer Authorization header

package auth

import (
	"net/http"
	"strings"
	"time"
)

// SessionCookie is the cookie carrying the session credential.
const SessionCookie = "vault_session"

// Credential extracts the session credential from a request. The cookie set
// by connect is preferred; a bearer Authorization header is accepted as the
// equivalent for non-browser clients. A missing credential returns ok=false;
// the caller treats that the same as an invalid one.
func Credential(r *http.Request) (string, bool) {
	if cookie, err := r.Cookie(SessionCookie); err == nil && cookie.Value != "" {
		return cookie.Value, true
	}

	header := r.Header.Get("Authorization")
	if token, found := strings.CutPrefix(header, "Bearer "); found && token != "" {
		return token, true
	}

	return "", false
}

// SetCredential attaches the session credential to the response as a cookie.
func SetCredential(w http.ResponseWriter, token string, ttl time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearCredential expires the session cookie on disconnect.
func ClearCredential(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
