package http

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/outlayhq/outlay/internal/domain"
	"github.com/outlayhq/outlay/internal/service"
	"github.com/outlayhq/outlay/pkg/httpx"
	"github.com/outlayhq/outlay/pkg/slogx"
)

// refreshCookieName is where the opaque refresh secret travels. The cookie is
// scoped to /auth so browsers never send it to the resource API, and it is
// HttpOnly so scripts never see it.
const refreshCookieName = "refreshToken"

func setRefreshCookie(w http.ResponseWriter, secret string, expiresAt time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     refreshCookieName,
		Value:    secret,
		Path:     "/auth",
		MaxAge:   int(time.Until(expiresAt).Seconds()),
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
	})
}

func clearRefreshCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     refreshCookieName,
		Value:    "",
		Path:     "/auth",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
	})
}

func refreshCookieValue(r *http.Request) string {
	c, err := r.Cookie(refreshCookieName)
	if err != nil {
		return ""
	}
	return c.Value
}

type tokenResponse struct {
	AccessToken string `json:"accessToken"`
	TokenType   string `json:"tokenType"`
	ExpiresIn   int64  `json:"expiresIn"`
}

func writeTokenResponse(w http.ResponseWriter, pair domain.TokenPair, ttl time.Duration) {
	setRefreshCookie(w, pair.RefreshSecret, pair.RefreshExpiresAt)
	httpx.WriteJSON(w, http.StatusOK, tokenResponse{
		AccessToken: pair.AccessToken,
		TokenType:   "Bearer",
		ExpiresIn:   int64(ttl.Seconds()),
	})
}

// RegisterHandler serves POST /auth/register.
type RegisterHandler struct {
	AuthService *service.AuthService
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (c credentialsRequest) validate() *httpx.Error {
	if !strings.Contains(c.Email, "@") || strings.TrimSpace(c.Email) == "" {
		return httpx.NewValidationError("A valid email is required.")
	}
	if len(c.Password) < 8 {
		return httpx.NewValidationError("Password must be at least 8 characters.")
	}
	return nil
}

func (h *RegisterHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.NewValidationError("Invalid JSON body.").WriteError(w)
		return
	}
	if verr := req.validate(); verr != nil {
		verr.WriteError(w)
		return
	}

	user, err := h.AuthService.Register(ctx, req.Email, req.Password)
	if err != nil {
		writeServiceError(ctx, w, err)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, map[string]string{"email": user.Email})
}

// LoginHandler serves POST /auth/login.
type LoginHandler struct {
	AuthService *service.AuthService
}

func (h *LoginHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.NewValidationError("Invalid JSON body.").WriteError(w)
		return
	}

	pair, err := h.AuthService.Login(ctx, req.Email, req.Password)
	if err != nil {
		writeServiceError(ctx, w, err)
		return
	}

	writeTokenResponse(w, pair, h.AuthService.Codec.TTL())
}

// RefreshHandler serves POST /auth/refresh. The presented secret is consumed
// whether or not the response makes it back to the client; a replayed secret
// is treated exactly like one that never existed.
type RefreshHandler struct {
	AuthService *service.AuthService
}

func (h *RefreshHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	secret := refreshCookieValue(r)
	if secret == "" {
		httpx.ErrInvalidRefreshToken.WriteError(w)
		return
	}

	pair, err := h.AuthService.RefreshSession(ctx, secret)
	if err != nil {
		writeServiceError(ctx, w, err)
		return
	}

	writeTokenResponse(w, pair, h.AuthService.Codec.TTL())
}

// LogoutHandler serves POST /auth/logout. Always 204: revoking an unknown or
// already-dead secret must be indistinguishable from revoking a live one.
type LogoutHandler struct {
	AuthService *service.AuthService
}

func (h *LogoutHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	if secret := refreshCookieValue(r); secret != "" {
		if err := h.AuthService.Logout(ctx, secret); err != nil {
			// Still 204; the client's session is over either way.
			log.Warn("logout revoke failed", "err", err)
		}
	}

	clearRefreshCookie(w)
	httpx.NoCache(w)
	w.WriteHeader(http.StatusNoContent)
}
