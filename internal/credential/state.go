package credential

import (
	"strings"
	"time"
)

// State is the persisted bearer credential for the question bank.
type State struct {
	Token     string    `json:"token"`
	IssuedAt  time.Time `json:"issued_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Valid reports whether the credential can still be used at the given time.
// A credential without an expiry is never trusted.
func (s State) Valid(now time.Time) bool {
	if strings.TrimSpace(s.Token) == "" {
		return false
	}
	if s.ExpiresAt.IsZero() {
		return false
	}
	return now.Before(s.ExpiresAt)
}
