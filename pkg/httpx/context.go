package httpx

import (
	"context"

	"github.com/outlayhq/outlay/pkg/jwtx"
)

// Principal is the verified identity attached to a request's processing
// context. It is request-scoped: built fresh for every request and never
// shared across them.
type Principal struct {
	UserID string
	Email  string
	Claims jwtx.Claims
}

type ctxKey struct{}

func contextWithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, ctxKey{}, p)
}

// PrincipalFromContext returns the authenticated principal for the request,
// if the credential gate attached one.
func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(ctxKey{}).(Principal)
	return p, ok
}
