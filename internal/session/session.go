package session

import (
	"context"
	"errors"
	"time"
)

var ErrNotFound = errors.New("session not found")

type Session struct {
	ID        string
	UserID    uint
	Role      string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// Store holds server-side session records keyed by session id. Implementations must be
// safe for concurrent use.
type Store interface {
	Get(ctx context.Context, id string) (*Session, error)
	Set(ctx context.Context, s *Session) error
	Delete(ctx context.Context, id string) error
	// Prune removes every session that expired before the given instant and reports how
	// many were removed.
	Prune(ctx context.Context, before time.Time) (int, error)
}
