package jwtx

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrMalformed  = errors.New("jwtx: malformed token")
	ErrInvalidSig = errors.New("jwtx: invalid signature")
	ErrExpired    = errors.New("jwtx: token expired")

	errMissingSecret = errors.New("jwtx: signing secret must not be empty")
	errInvalidTTL    = errors.New("jwtx: access token ttl must be positive")
)

// Claims are the access-token claims. The token is self-contained: subject,
// issued-at and expiry are everything a resource server needs.
type Claims struct {
	jwt.RegisteredClaims
}

// Codec signs and verifies stateless access tokens with a symmetric HS256
// key. It holds no external state, so a single Codec is safe under unbounded
// concurrency.
type Codec struct {
	secret []byte
	ttl    time.Duration
}

// NewCodec builds a Codec from the configured signing secret and access-token
// TTL. The secret comes from configuration and must never appear in logs or
// source literals.
func NewCodec(secret []byte, ttl time.Duration) (*Codec, error) {
	if len(secret) == 0 {
		return nil, errMissingSecret
	}
	if ttl <= 0 {
		return nil, errInvalidTTL
	}
	return &Codec{secret: secret, ttl: ttl}, nil
}

// TTL returns the configured access-token lifetime.
func (c *Codec) TTL() time.Duration { return c.ttl }

// Issue produces a signed token for subject whose expiry is now plus the
// configured TTL. Pure function of input, key and clock.
func (c *Codec) Issue(subject string, now time.Time) (string, error) {
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(c.secret)
}

// Verify parses and validates a token. The error is always one of the
// package sentinels: ErrExpired for a well-signed but lapsed token,
// ErrInvalidSig for a failed signature check, ErrMalformed for anything
// that doesn't parse. Callers rely on the distinction: expiry gets its own
// user-facing message.
func (c *Codec) Verify(tokenStr string) (Claims, error) {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))

	token, err := parser.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (any, error) {
		return c.secret, nil
	})
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return Claims{}, ErrExpired
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return Claims{}, ErrInvalidSig
		default:
			return Claims{}, ErrMalformed
		}
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return Claims{}, ErrMalformed
	}

	return *claims, nil
}
