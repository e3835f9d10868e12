package handlers

import (
	"net/http"
	"time"

	"github.com/gengocodes/gensupply-backend/auth"
	"github.com/gengocodes/gensupply-backend/models"
	"github.com/gengocodes/gensupply-backend/service"
	"go.uber.org/zap"
)

// AuthHandler handles account routes: register, login, name update, session
// lookup and logout.
type AuthHandler struct {
	requestLogger
	authService service.AuthService
	tokens      auth.TokenService
	denylist    auth.Denylist
	cookies     *CookieHelper
}

// NewAuthHandler creates an AuthHandler.
func NewAuthHandler(authService service.AuthService, tokens auth.TokenService, denylist auth.Denylist, cookies *CookieHelper, log *zap.Logger) *AuthHandler {
	if denylist == nil {
		denylist = auth.NopDenylist{}
	}
	return &AuthHandler{
		requestLogger: requestLogger{log: log},
		authService:   authService,
		tokens:        tokens,
		denylist:      denylist,
		cookies:       cookies,
	}
}

// Register handles POST /register.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}

	h.logRequest(r, "info", "Registering user", zap.String("email", req.Email))

	if err := h.authService.Register(r.Context(), req); err != nil {
		h.respondServiceError(w, r, err)
		return
	}

	h.logRequest(r, "info", "User registered", zap.String("email", req.Email))
	writeStatus(w, http.StatusCreated, "Registration Success!")
}

// Login handles POST /login and sets the session cookie on success.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}

	h.logRequest(r, "info", "Login request", zap.String("email", req.Email))

	session, err := h.authService.Login(r.Context(), req)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}

	h.cookies.SetToken(w, session.Token, h.tokens.TTL())

	h.logRequest(r, "info", "Login successful", zap.Int64("user_id", session.Claims.ID))
	writeStatus(w, http.StatusOK, "User Authenticated!")
}

// UpdateName handles POST /updatename and replaces the session cookie with
// one carrying the new name.
func (h *AuthHandler) UpdateName(w http.ResponseWriter, r *http.Request) {
	claims, ok := ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, msgNotAuthenticated)
		return
	}

	var req models.UpdateNameRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}

	session, err := h.authService.UpdateName(r.Context(), claims, req.Username)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}

	h.revoke(r, claims)
	h.cookies.SetToken(w, session.Token, h.tokens.TTL())

	h.logRequest(r, "info", "Username updated")
	writeStatus(w, http.StatusOK, "Username Updated!")
}

// Me handles GET / and echoes the verified session claims.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	claims, ok := ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, msgNotAuthenticated)
		return
	}

	writeJSON(w, http.StatusOK, models.MeResponse{
		Status: "User Authenticated!",
		User:   claims,
	})
}

// Logout handles GET /logout. It always clears the cookie; a still-valid
// token is also denylisted for the rest of its lifetime.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if token := h.cookies.GetToken(r); token != "" {
		if claims, err := h.tokens.Verify(token); err == nil {
			h.revoke(r, claims)
		}
	}

	h.cookies.ClearToken(w)
	h.logRequest(r, "info", "Logged out")
	writeStatus(w, http.StatusOK, "Logged out!")
}

// revoke denylists the token behind claims. Failures are logged only; the
// token still expires on its own.
func (h *AuthHandler) revoke(r *http.Request, claims *auth.Claims) {
	if claims.ExpiresAt == nil {
		return
	}
	remaining := time.Until(claims.ExpiresAt.Time)
	if err := h.denylist.Revoke(r.Context(), claims.RegisteredClaims.ID, remaining); err != nil {
		h.logRequest(r, "error", "Failed to revoke token", zap.Error(err))
	}
}
