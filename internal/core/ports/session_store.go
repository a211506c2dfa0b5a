package ports

import (
	"context"
	"time"
)

// SessionRegistry tracks the single live admin session of each account.
type SessionRegistry interface {
	// Register makes sessionID the current session of userID, displacing any
	// earlier one.
	Register(ctx context.Context, userID, sessionID string, ttl time.Duration) error
	IsCurrent(ctx context.Context, userID, sessionID string) (bool, error)
	// Touch extends the registration by ttl while sessionID is still current.
	Touch(ctx context.Context, userID, sessionID string, ttl time.Duration) error
	Revoke(ctx context.Context, userID, sessionID string) error
}

// RememberMeToken is a persistent login token as stored server-side.
type RememberMeToken struct {
	Series    string
	UserID    string
	TokenHash string
	LastUsed  time.Time
}

// RememberMeStore persists remember-me series.
type RememberMeStore interface {
	Save(ctx context.Context, token RememberMeToken, ttl time.Duration) error
	Find(ctx context.Context, series string) (*RememberMeToken, error)
	Delete(ctx context.Context, series string) error
}
