package handlers

import (
	"net/http"
	"time"
)

// TokenCookie is the name of the session token cookie.
const TokenCookie = "token"

// CookieHelper manages the session cookie. The cookie is always HttpOnly so
// page scripts never see the token.
type CookieHelper struct {
	secure bool
}

// NewCookieHelper creates a cookie helper. With secure set, the cookie is
// Secure and SameSite=None so a front end on another origin can send it.
// Browsers drop SameSite=None cookies without Secure, so an insecure helper
// falls back to Lax for local development.
func NewCookieHelper(secure bool) *CookieHelper {
	return &CookieHelper{secure: secure}
}

// SetToken writes the session cookie with a lifetime matching the token.
func (h *CookieHelper) SetToken(w http.ResponseWriter, token string, ttl time.Duration) {
	h.setCookie(w, token, int(ttl.Seconds()))
}

// ClearToken expires the session cookie on the client.
func (h *CookieHelper) ClearToken(w http.ResponseWriter) {
	h.setCookie(w, "", -1)
}

// GetToken returns the session token from the request, or "" if absent.
func (h *CookieHelper) GetToken(r *http.Request) string {
	cookie, err := r.Cookie(TokenCookie)
	if err != nil {
		return ""
	}
	return cookie.Value
}

func (h *CookieHelper) setCookie(w http.ResponseWriter, value string, maxAge int) {
	sameSite := http.SameSiteLaxMode
	if h.secure {
		sameSite = http.SameSiteNoneMode
	}

	http.SetCookie(w, &http.Cookie{
		Name:     TokenCookie,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: sameSite,
	})
}
