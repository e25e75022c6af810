package library

import (
	"time"

	"github.com/google/uuid"
)

// Session is the snapshot a successful sign-in hands to the
// presentation layer. An impersonated session is an ordinary session
// for the target user; only the flag (and the UI behavior hanging off
// it) differs.
type Session struct {
	ID           string
	Account      Account
	Impersonated bool
	StartedAt    time.Time
}

// NewSession starts a session for the given account.
func NewSession(acc Account, impersonated bool) Session {
	return Session{
		ID:           uuid.NewString(),
		Account:      acc,
		Impersonated: impersonated,
		StartedAt:    time.Now(),
	}
}
