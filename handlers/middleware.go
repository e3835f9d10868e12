package handlers

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/gengocodes/gensupply-backend/auth"
	"go.uber.org/zap"
)

const (
	msgNotAuthenticated   = "You are not authenticated!"
	msgSessionTimedOut    = "Session timed out!"
	msgSessionCheckFailed = "Failed to verify session!"
)

type claimsKey struct{}

// ClaimsFromContext returns the claims attached by AuthMiddleware.
func ClaimsFromContext(ctx context.Context) (*auth.Claims, bool) {
	claims, ok := ctx.Value(claimsKey{}).(*auth.Claims)
	return claims, ok && claims != nil
}

func withClaims(ctx context.Context, claims *auth.Claims) context.Context {
	return context.WithValue(ctx, claimsKey{}, claims)
}

// AuthMiddleware is the single gate in front of identity-scoped routes.
type AuthMiddleware struct {
	requestLogger
	tokens   auth.TokenService
	denylist auth.Denylist
	cookies  *CookieHelper
}

// NewAuthMiddleware creates the session gate.
func NewAuthMiddleware(tokens auth.TokenService, denylist auth.Denylist, cookies *CookieHelper, log *zap.Logger) *AuthMiddleware {
	if denylist == nil {
		denylist = auth.NopDenylist{}
	}
	return &AuthMiddleware{
		requestLogger: requestLogger{log: log},
		tokens:        tokens,
		denylist:      denylist,
		cookies:       cookies,
	}
}

// RequireUser verifies the token cookie and attaches its claims to the
// request context. On any failure the wrapped handler does not run.
func (m *AuthMiddleware) RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := m.cookies.GetToken(r)
		if token == "" {
			m.logRequest(r, "info", "No session cookie")
			writeError(w, http.StatusUnauthorized, msgNotAuthenticated)
			return
		}

		claims, err := m.tokens.Verify(token)
		if err != nil {
			m.logRequest(r, "info", "Session token rejected", zap.Error(err))
			writeError(w, http.StatusUnauthorized, msgSessionTimedOut)
			return
		}

		revoked, err := m.denylist.IsRevoked(r.Context(), claims.RegisteredClaims.ID)
		if err != nil {
			m.logRequest(r, "error", "Denylist lookup failed", zap.Error(err))
			writeError(w, http.StatusInternalServerError, msgSessionCheckFailed)
			return
		}
		if revoked {
			m.logRequest(r, "info", "Session token revoked", zap.Int64("user_id", claims.ID))
			writeError(w, http.StatusUnauthorized, msgSessionTimedOut)
			return
		}

		next.ServeHTTP(w, r.WithContext(withClaims(r.Context(), claims)))
	})
}

// CORS allows the configured front-end origin to call the API with
// credentials. It wraps the whole router so preflight requests are answered
// before route matching.
func CORS(allowedOrigin string, next http.Handler) http.Handler {
	allowed := normalizeOrigin(allowedOrigin)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin != "" && normalizeOrigin(origin) == allowed {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Add("Vary", "Origin")
		}

		if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
			w.Header().Set("Access-Control-Max-Age", "600")
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// CSRF rejects state-changing requests whose Origin or Referer names a site
// other than the allowed front end. The session cookie is SameSite=None, so
// browsers attach it to cross-site requests. Requests without either header
// come from non-browser clients and pass through.
func CSRF(allowedOrigin string, next http.Handler) http.Handler {
	allowed := normalizeOrigin(allowedOrigin)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			next.ServeHTTP(w, r)
			return
		}

		source := r.Header.Get("Origin")
		if source == "" {
			if referer := r.Header.Get("Referer"); referer != "" {
				source = extractOrigin(referer)
			}
		}

		if source != "" && normalizeOrigin(source) != allowed {
			writeError(w, http.StatusForbidden, "CSRF validation failed: invalid origin")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func normalizeOrigin(origin string) string {
	return strings.TrimSuffix(strings.ToLower(origin), "/")
}

// extractOrigin returns scheme://host of rawURL.
func extractOrigin(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Host == "" {
		return "invalid"
	}
	return parsed.Scheme + "://" + parsed.Host
}
