package domain

import "time"

// Identity is the authenticated caller returned by login.
type Identity struct {
	Username string
	Role     Role
}

// Session represents an issued bearer token and its metadata.
type Session struct {
	TokenID   string
	Token     string
	Identity  Identity
	IssuedAt  time.Time
	ExpiresAt time.Time
}
