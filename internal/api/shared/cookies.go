package shared

import (
	"net/http"
	"time"
)

// AuthCookieName is the cookie that carries the session token for browser
// clients. API clients use the Authorization header instead.
const AuthCookieName = "auth_token"

// SetAuthCookie attaches the session token cookie to the response:
// http-only, SameSite=Strict, path /, Secure when the server runs in
// production, expiring with the token.
func SetAuthCookie(w http.ResponseWriter, token string, maxAge time.Duration, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     AuthCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(maxAge.Seconds()),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteStrictMode,
	})
}

// ClearAuthCookie expires the session token cookie.
func ClearAuthCookie(w http.ResponseWriter, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     AuthCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteStrictMode,
	})
}
