package httpx

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/outlayhq/outlay/pkg/jwtx"
	"github.com/outlayhq/outlay/pkg/slogx"
)

// PrincipalResolver turns a verified token subject into a full principal.
// It is the boundary to the user directory; a lookup failure only means the
// request proceeds unauthenticated.
type PrincipalResolver interface {
	ResolvePrincipal(ctx context.Context, subject string) (Principal, error)
}

// Authenticate is the per-request credential gate. Requests without a bearer
// credential pass through unauthenticated and downstream authorization
// decides whether that's acceptable. A credential that is present but expired
// or invalid short-circuits to 401; the two cases carry different bodies
// because expiry is the one failure a client can act on by re-logging in.
func Authenticate(codec *jwtx.Codec, resolver PrincipalResolver) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			log := slogx.FromContext(ctx)

			authz := r.Header.Get("Authorization")
			if authz == "" || !strings.HasPrefix(authz, "Bearer ") {
				next.ServeHTTP(w, r)
				return
			}
			raw := strings.TrimSpace(strings.TrimPrefix(authz, "Bearer"))

			claims, err := codec.Verify(raw)
			if err != nil {
				if errors.Is(err, jwtx.ErrExpired) {
					ErrTokenExpired.WriteError(w)
				} else {
					ErrUnauthorized.WriteError(w)
				}
				return
			}

			principal, err := resolver.ResolvePrincipal(ctx, claims.Subject)
			if err != nil {
				// Token verified but the subject no longer resolves; degrade
				// to unauthenticated rather than failing the request.
				log.Warn("principal lookup failed", "err", err)
				next.ServeHTTP(w, r)
				return
			}
			principal.Claims = claims

			next.ServeHTTP(w, r.WithContext(contextWithPrincipal(ctx, principal)))
		})
	}
}

// RequireUser rejects requests that reached the handler without a principal.
func RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := PrincipalFromContext(r.Context()); !ok {
			ErrUnauthorized.WriteError(w)
			return
		}
		next.ServeHTTP(w, r)
	})
}
