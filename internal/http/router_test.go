package http

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/outlayhq/outlay/internal/service"
	"github.com/outlayhq/outlay/internal/store/drivers/sqlite"
	"github.com/outlayhq/outlay/pkg/jwtx"

	"github.com/stretchr/testify/require"
)

func newTestRouter(t *testing.T) *Router {
	t.Helper()

	dsn := "file:" + filepath.Join(t.TempDir(), "test.db") +
		"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"

	st, err := sqlite.NewStore(dsn)
	require.NoError(t, err)
	require.NoError(t, st.ApplyMigrations())
	t.Cleanup(func() { _ = st.Close() })

	codec, err := jwtx.NewCodec([]byte("test-signing-secret-for-http-tests"), 15*time.Minute)
	require.NoError(t, err)

	users := &service.UserService{Store: st}
	refresh := &service.RefreshTokenService{Store: st, TTL: time.Hour}

	r := NewRouter(codec, "test", st, slog.Default())
	r.AuthService = &service.AuthService{Users: users, Refresh: refresh, Codec: codec}
	r.UserService = users
	r.ExpenseService = &service.ExpenseService{Store: st}
	r.ApplyRoutes()

	return r
}

type testRequest struct {
	method  string
	path    string
	body    any
	bearer  string
	cookies []*http.Cookie
}

func do(t *testing.T, router *Router, req testRequest) *httptest.ResponseRecorder {
	t.Helper()

	var body *bytes.Buffer
	if req.body != nil {
		raw, err := json.Marshal(req.body)
		require.NoError(t, err)
		body = bytes.NewBuffer(raw)
	} else {
		body = bytes.NewBuffer(nil)
	}

	httpReq := httptest.NewRequest(req.method, req.path, body)
	if req.bearer != "" {
		httpReq.Header.Set("Authorization", "Bearer "+req.bearer)
	}
	for _, c := range req.cookies {
		httpReq.AddCookie(c)
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httpReq)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.NewDecoder(rec.Body).Decode(v))
}

// errorCode pulls the machine-readable code out of an error response body.
func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()

	var body struct {
		Code string `json:"code"`
	}
	decodeBody(t, rec, &body)
	return body.Code
}

// refreshCookie finds the refresh cookie in a response, failing if absent.
func refreshCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()

	for _, c := range rec.Result().Cookies() {
		if c.Name == refreshCookieName {
			return c
		}
	}
	t.Fatalf("response has no %s cookie", refreshCookieName)
	return nil
}

func registerAndLogin(t *testing.T, router *Router, email string) (accessToken string, cookie *http.Cookie) {
	t.Helper()

	creds := credentialsRequest{Email: email, Password: "correct horse battery"}

	rec := do(t, router, testRequest{method: "POST", path: "/auth/register", body: creds})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = do(t, router, testRequest{method: "POST", path: "/auth/login", body: creds})
	require.Equal(t, http.StatusOK, rec.Code)

	var tokens tokenResponse
	cookie = refreshCookie(t, rec)
	decodeBody(t, rec, &tokens)
	require.NotEmpty(t, tokens.AccessToken)

	return tokens.AccessToken, cookie
}
