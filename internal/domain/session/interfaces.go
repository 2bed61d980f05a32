package session

import (
	"context"
	"time"
)

// Repository provides persistence for sessions.
type Repository interface {
	Touch(ctx context.Context, sess *Session) error
	Get(ctx context.Context, id string) (*Session, error)
	DeleteIdleSince(ctx context.Context, cutoff time.Time) (int64, error)
}
