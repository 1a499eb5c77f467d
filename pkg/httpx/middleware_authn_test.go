package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/outlayhq/outlay/pkg/jwtx"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticResolver struct {
	principals map[string]Principal
}

func (s *staticResolver) ResolvePrincipal(ctx context.Context, subject string) (Principal, error) {
	p, ok := s.principals[subject]
	if !ok {
		return Principal{}, errors.New("unknown subject")
	}
	return p, nil
}

func newGate(t *testing.T) (*jwtx.Codec, Middleware) {
	t.Helper()

	codec, err := jwtx.NewCodec([]byte("gate-test-secret"), 15*time.Minute)
	require.NoError(t, err)

	resolver := &staticResolver{principals: map[string]Principal{
		"user-1": {UserID: "user-1", Email: "alice@example.com"},
	}}
	return codec, Authenticate(codec, resolver)
}

// echoPrincipal reports whether a principal made it through the gate.
func echoPrincipal() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, ok := PrincipalFromContext(r.Context())
		WriteJSON(w, http.StatusOK, map[string]any{"authenticated": ok, "userId": p.UserID})
	})
}

func gateResult(t *testing.T, h http.Handler, authz string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	req := httptest.NewRequest("GET", "/", nil)
	if authz != "" {
		req.Header.Set("Authorization", authz)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var body map[string]any
	if rec.Code == http.StatusOK {
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	}
	return rec, body
}

func TestAuthenticate_NoCredentialPassesThrough(t *testing.T) {
	_, gate := newGate(t)
	h := Chain(echoPrincipal(), gate)

	rec, body := gateResult(t, h, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, false, body["authenticated"])
}

func TestAuthenticate_ValidTokenAttachesPrincipal(t *testing.T) {
	codec, gate := newGate(t)
	h := Chain(echoPrincipal(), gate)

	token, err := codec.Issue("user-1", time.Now())
	require.NoError(t, err)

	rec, body := gateResult(t, h, "Bearer "+token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, body["authenticated"])
	assert.Equal(t, "user-1", body["userId"])
}

func TestAuthenticate_ExpiredTokenIsTerminal(t *testing.T) {
	codec, gate := newGate(t)
	h := Chain(echoPrincipal(), gate)

	token, err := codec.Issue("user-1", time.Now().Add(-time.Hour))
	require.NoError(t, err)

	rec, _ := gateResult(t, h, "Bearer "+token)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	var e Error
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&e))
	assert.Equal(t, CodeTokenExpired, e.Code)
}

func TestAuthenticate_GarbageTokenIsTerminal(t *testing.T) {
	_, gate := newGate(t)
	h := Chain(echoPrincipal(), gate)

	rec, _ := gateResult(t, h, "Bearer not.a.jwt")
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	var e Error
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&e))
	assert.Equal(t, CodeUnauthorized, e.Code)
}

func TestAuthenticate_ResolverFailureDegrades(t *testing.T) {
	codec, gate := newGate(t)
	h := Chain(echoPrincipal(), gate)

	// Well-signed token for a subject the directory no longer knows.
	token, err := codec.Issue("vanished", time.Now())
	require.NoError(t, err)

	rec, body := gateResult(t, h, "Bearer "+token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, false, body["authenticated"])
}

func TestRequireUser(t *testing.T) {
	codec, gate := newGate(t)
	h := Chain(echoPrincipal(), gate, RequireUser)

	rec, _ := gateResult(t, h, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	token, err := codec.Issue("user-1", time.Now())
	require.NoError(t, err)

	rec, _ = gateResult(t, h, "Bearer "+token)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestChain_OrdersOutsideIn(t *testing.T) {
	var order []string
	mark := func(name string) Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	h := Chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		order = append(order, "handler")
	}), mark("outer"), mark("inner"))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/", nil))
	assert.Equal(t, []string{"outer", "inner", "handler"}, order)
}
