package domain

import "time"

// TokenPair is what a successful login or refresh produces: the signed
// access token for the response body and the opaque refresh secret destined
// for the cookie. RefreshSecret is the only place the plaintext secret ever
// lives; it is never persisted or logged.
type TokenPair struct {
	AccessToken      string
	RefreshSecret    string
	RefreshExpiresAt time.Time
}

// RefreshToken models the stored refresh token record. The opaque secret
// itself is not stored; SecretHash is its base64url SHA-256 fingerprint and
// the lookup key. Expiry is derived at read time from ExpiresAt, revocation
// is a stored flag that once set never resets.
type RefreshToken struct {
	ID         string
	OwnerID    string
	SecretHash string
	ExpiresAt  time.Time
	Revoked    bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Active reports whether the record is usable at instant now.
func (t RefreshToken) Active(now time.Time) bool {
	return !t.Revoked && now.Before(t.ExpiresAt)
}
