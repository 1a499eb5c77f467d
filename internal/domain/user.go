package domain

import "time"

// User is an account in the directory. Auth flows only ever need the id,
// email and password hash; everything else is bookkeeping.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
