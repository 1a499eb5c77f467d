package http

import (
	"net/http"
	"testing"
	"time"

	"github.com/outlayhq/outlay/pkg/httpx"
	"github.com/outlayhq/outlay/pkg/idx"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegister(t *testing.T) {
	router := newTestRouter(t)

	t.Run("creates the account", func(t *testing.T) {
		rec := do(t, router, testRequest{
			method: "POST", path: "/auth/register",
			body: credentialsRequest{Email: "Alice@Example.com", Password: "correct horse battery"},
		})
		require.Equal(t, http.StatusCreated, rec.Code)

		var body map[string]string
		decodeBody(t, rec, &body)
		assert.Equal(t, "alice@example.com", body["email"])
	})

	t.Run("duplicate email conflicts", func(t *testing.T) {
		rec := do(t, router, testRequest{
			method: "POST", path: "/auth/register",
			body: credentialsRequest{Email: "alice@example.com", Password: "another password"},
		})
		require.Equal(t, http.StatusConflict, rec.Code)
		assert.Equal(t, httpx.CodeAlreadyInUse, errorCode(t, rec))
	})

	t.Run("rejects bad input", func(t *testing.T) {
		for name, creds := range map[string]credentialsRequest{
			"missing email":  {Password: "correct horse battery"},
			"not an email":   {Email: "nope", Password: "correct horse battery"},
			"short password": {Email: "bob@example.com", Password: "short"},
		} {
			rec := do(t, router, testRequest{method: "POST", path: "/auth/register", body: creds})
			assert.Equal(t, http.StatusBadRequest, rec.Code, name)
			assert.Equal(t, httpx.CodeValidation, errorCode(t, rec), name)
		}
	})
}

func TestLogin(t *testing.T) {
	router := newTestRouter(t)

	rec := do(t, router, testRequest{
		method: "POST", path: "/auth/register",
		body: credentialsRequest{Email: "alice@example.com", Password: "correct horse battery"},
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	t.Run("issues tokens and cookie", func(t *testing.T) {
		rec := do(t, router, testRequest{
			method: "POST", path: "/auth/login",
			body: credentialsRequest{Email: "alice@example.com", Password: "correct horse battery"},
		})
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))

		var tokens tokenResponse
		decodeBody(t, rec, &tokens)
		assert.NotEmpty(t, tokens.AccessToken)
		assert.Equal(t, "Bearer", tokens.TokenType)
		assert.Equal(t, int64((15*time.Minute).Seconds()), tokens.ExpiresIn)

		cookie := refreshCookie(t, rec)
		assert.True(t, cookie.HttpOnly)
		assert.True(t, cookie.Secure)
		assert.Equal(t, http.SameSiteStrictMode, cookie.SameSite)
		assert.Equal(t, "/auth", cookie.Path)
		assert.Positive(t, cookie.MaxAge)
		assert.NotContains(t, tokens.AccessToken, cookie.Value)
	})

	t.Run("wrong password", func(t *testing.T) {
		rec := do(t, router, testRequest{
			method: "POST", path: "/auth/login",
			body: credentialsRequest{Email: "alice@example.com", Password: "wrong"},
		})
		require.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, httpx.CodeBadCredentials, errorCode(t, rec))
	})

	t.Run("unknown email gives the same answer", func(t *testing.T) {
		rec := do(t, router, testRequest{
			method: "POST", path: "/auth/login",
			body: credentialsRequest{Email: "stranger@example.com", Password: "correct horse battery"},
		})
		require.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, httpx.CodeBadCredentials, errorCode(t, rec))
	})
}

func TestRefreshRotation(t *testing.T) {
	router := newTestRouter(t)
	_, cookie := registerAndLogin(t, router, "alice@example.com")

	rec := do(t, router, testRequest{
		method: "POST", path: "/auth/refresh",
		cookies: []*http.Cookie{cookie},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rotated := refreshCookie(t, rec)
	assert.NotEqual(t, cookie.Value, rotated.Value)

	var tokens tokenResponse
	decodeBody(t, rec, &tokens)
	assert.NotEmpty(t, tokens.AccessToken)

	t.Run("consumed secret cannot be replayed", func(t *testing.T) {
		rec := do(t, router, testRequest{
			method: "POST", path: "/auth/refresh",
			cookies: []*http.Cookie{cookie},
		})
		require.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, httpx.CodeInvalidRefreshToken, errorCode(t, rec))
	})

	t.Run("rotated secret still works", func(t *testing.T) {
		rec := do(t, router, testRequest{
			method: "POST", path: "/auth/refresh",
			cookies: []*http.Cookie{rotated},
		})
		require.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("missing cookie", func(t *testing.T) {
		rec := do(t, router, testRequest{method: "POST", path: "/auth/refresh"})
		require.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, httpx.CodeInvalidRefreshToken, errorCode(t, rec))
	})

	t.Run("garbage cookie", func(t *testing.T) {
		rec := do(t, router, testRequest{
			method: "POST", path: "/auth/refresh",
			cookies: []*http.Cookie{{Name: refreshCookieName, Value: "never-issued"}},
		})
		require.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, httpx.CodeInvalidRefreshToken, errorCode(t, rec))
	})
}

func TestLogout(t *testing.T) {
	router := newTestRouter(t)
	_, cookie := registerAndLogin(t, router, "alice@example.com")

	rec := do(t, router, testRequest{
		method: "POST", path: "/auth/logout",
		cookies: []*http.Cookie{cookie},
	})
	require.Equal(t, http.StatusNoContent, rec.Code)

	cleared := refreshCookie(t, rec)
	assert.Negative(t, cleared.MaxAge)
	assert.Empty(t, cleared.Value)

	t.Run("refresh after logout fails", func(t *testing.T) {
		rec := do(t, router, testRequest{
			method: "POST", path: "/auth/refresh",
			cookies: []*http.Cookie{cookie},
		})
		require.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, httpx.CodeInvalidRefreshToken, errorCode(t, rec))
	})

	t.Run("logout is repeatable", func(t *testing.T) {
		rec := do(t, router, testRequest{
			method: "POST", path: "/auth/logout",
			cookies: []*http.Cookie{cookie},
		})
		require.Equal(t, http.StatusNoContent, rec.Code)
	})

	t.Run("logout without a cookie still succeeds", func(t *testing.T) {
		rec := do(t, router, testRequest{method: "POST", path: "/auth/logout"})
		require.Equal(t, http.StatusNoContent, rec.Code)
	})
}

func TestCredentialGate(t *testing.T) {
	router := newTestRouter(t)
	access, _ := registerAndLogin(t, router, "alice@example.com")

	t.Run("valid token passes", func(t *testing.T) {
		rec := do(t, router, testRequest{method: "GET", path: "/api/expenses", bearer: access})
		require.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("no credential on a protected route", func(t *testing.T) {
		rec := do(t, router, testRequest{method: "GET", path: "/api/expenses"})
		require.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, httpx.CodeUnauthorized, errorCode(t, rec))
	})

	t.Run("expired token names its failure", func(t *testing.T) {
		stale, err := router.codec.Issue("some-user", time.Now().Add(-time.Hour))
		require.NoError(t, err)

		rec := do(t, router, testRequest{method: "GET", path: "/api/expenses", bearer: stale})
		require.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, httpx.CodeTokenExpired, errorCode(t, rec))
	})

	t.Run("garbage token", func(t *testing.T) {
		rec := do(t, router, testRequest{method: "GET", path: "/api/expenses", bearer: "not.a.jwt"})
		require.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, httpx.CodeUnauthorized, errorCode(t, rec))
	})

	t.Run("token for a vanished subject degrades to unauthenticated", func(t *testing.T) {
		ghost, err := router.codec.Issue(idx.New().String(), time.Now())
		require.NoError(t, err)

		rec := do(t, router, testRequest{method: "GET", path: "/api/expenses", bearer: ghost})
		require.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, httpx.CodeUnauthorized, errorCode(t, rec))
	})
}

func TestHealthEndpoints(t *testing.T) {
	router := newTestRouter(t)

	rec := do(t, router, testRequest{method: "GET", path: "/livez"})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, router, testRequest{method: "GET", path: "/readyz"})
	assert.Equal(t, http.StatusOK, rec.Code)
}
