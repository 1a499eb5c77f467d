package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/outlayhq/outlay/internal/service"
	"github.com/outlayhq/outlay/internal/store"
	"github.com/outlayhq/outlay/pkg/httpx"
	"github.com/outlayhq/outlay/pkg/jwtx"
	"github.com/outlayhq/outlay/pkg/slogx"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	codec        *jwtx.Codec
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	store store.Store

	AuthService    *service.AuthService
	UserService    *service.UserService
	ExpenseService *service.ExpenseService
}

func NewRouter(
	codec *jwtx.Codec,
	buildVersion string,
	st store.Store,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		codec:        codec,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		logger:       logger,
	}

	// Set default middleware chain
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerAuth()
	r.registerExpenses()
	r.registerSystem()
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerAuth() {
	r.Mux.Handle("POST /auth/register", &RegisterHandler{AuthService: r.AuthService})
	r.Mux.Handle("POST /auth/login", &LoginHandler{AuthService: r.AuthService})
	r.Mux.Handle("POST /auth/refresh", &RefreshHandler{AuthService: r.AuthService})
	r.Mux.Handle("POST /auth/logout", &LogoutHandler{AuthService: r.AuthService})
}

func (r *Router) registerExpenses() {
	h := &ExpensesHandler{ExpenseService: r.ExpenseService}

	authn := httpx.Authenticate(r.codec, &directoryResolver{Users: r.UserService})

	r.Mux.Handle("GET /api/expenses",
		httpx.Chain(http.HandlerFunc(h.HandleList), authn, httpx.RequireUser))
	r.Mux.Handle("POST /api/expenses",
		httpx.Chain(http.HandlerFunc(h.HandleCreate), authn, httpx.RequireUser))
	r.Mux.Handle("PUT /api/expenses/{id}",
		httpx.Chain(http.HandlerFunc(h.HandleUpdate), authn, httpx.RequireUser))
	r.Mux.Handle("DELETE /api/expenses/{id}",
		httpx.Chain(http.HandlerFunc(h.HandleDelete), authn, httpx.RequireUser))
}

func (r *Router) registerSystem() {
	r.Mux.Handle("GET /livez", LivezHandler(r.startTime, r.buildVersion))
	r.Mux.Handle("GET /readyz", ReadyzHandler(r.store))
}

// directoryResolver maps verified token subjects to principals through the
// user directory.
type directoryResolver struct {
	Users *service.UserService
}

func (d *directoryResolver) ResolvePrincipal(ctx context.Context, subject string) (httpx.Principal, error) {
	user, err := d.Users.GetByID(ctx, subject)
	if err != nil {
		return httpx.Principal{}, err
	}
	return httpx.Principal{UserID: user.ID, Email: user.Email}, nil
}
