// Package store provides session persistence interfaces and implementations.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/legallink/assist/internal/domain"
)

// ErrNotFound is returned when a session does not exist or has expired.
var ErrNotFound = errors.New("session not found")

// SessionStore defines the interface for persisting conversation sessions.
type SessionStore interface {
	// Get retrieves a session by its ID. Returns ErrNotFound if the session
	// does not exist or has exceeded the TTL.
	Get(ctx context.Context, sessionID string) (*domain.Session, error)

	// Create persists a new session.
	Create(ctx context.Context, session *domain.Session) error

	// Update persists changes to an existing session.
	Update(ctx context.Context, session *domain.Session) error

	// Delete removes a session.
	Delete(ctx context.Context, sessionID string) error

	// CleanupExpired removes sessions whose last activity exceeds the TTL.
	CleanupExpired(ctx context.Context, ttl time.Duration) (int64, error)

	// Ping verifies store connectivity.
	Ping(ctx context.Context) error

	// Close releases store resources.
	Close() error
}
