package store

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/legallink/assist/internal/domain"
)

// Resilient wraps a durable SessionStore and falls back to an in-process
// cache when the backend fails, so a store outage degrades the service to
// per-process session continuity instead of failing turns outright.
type Resilient struct {
	primary  SessionStore
	fallback *MemoryStore
	degraded atomic.Bool
}

// NewResilient wraps primary with an in-memory fallback.
func NewResilient(primary SessionStore) *Resilient {
	return &Resilient{
		primary:  primary,
		fallback: NewMemory(),
	}
}

// Degraded reports whether the store is running on the in-memory fallback.
func (r *Resilient) Degraded() bool {
	return r.degraded.Load()
}

func (r *Resilient) markDegraded(op string, err error) {
	if r.degraded.CompareAndSwap(false, true) {
		slog.Warn("session store degraded to in-memory fallback", "op", op, "error", err)
	}
}

// recover probes the primary and leaves degraded mode once it responds again.
func (r *Resilient) recoverIfHealthy(ctx context.Context) {
	if !r.degraded.Load() {
		return
	}
	if err := r.primary.Ping(ctx); err == nil {
		if r.degraded.CompareAndSwap(true, false) {
			slog.Info("session store recovered, leaving in-memory fallback")
		}
	}
}

// Get retrieves a session, consulting the fallback when degraded or when the
// primary errors for reasons other than a genuine miss.
func (r *Resilient) Get(ctx context.Context, sessionID string) (*domain.Session, error) {
	r.recoverIfHealthy(ctx)

	if r.degraded.Load() {
		return r.fallback.Get(ctx, sessionID)
	}

	session, err := r.primary.Get(ctx, sessionID)
	if err == nil {
		return session, nil
	}
	if errors.Is(err, ErrNotFound) {
		// A miss on the healthy primary may still be a hit in the fallback
		// if we wrote there during an earlier outage.
		return r.fallback.Get(ctx, sessionID)
	}

	r.markDegraded("get", err)
	return r.fallback.Get(ctx, sessionID)
}

// Create persists a new session.
func (r *Resilient) Create(ctx context.Context, session *domain.Session) error {
	return r.write(ctx, "create", session, r.primary.Create)
}

// Update persists changes to an existing session.
func (r *Resilient) Update(ctx context.Context, session *domain.Session) error {
	return r.write(ctx, "update", session, r.primary.Update)
}

func (r *Resilient) write(ctx context.Context, op string, session *domain.Session, primaryOp func(context.Context, *domain.Session) error) error {
	r.recoverIfHealthy(ctx)

	if !r.degraded.Load() {
		if err := primaryOp(ctx, session); err != nil {
			r.markDegraded(op, err)
		} else {
			return nil
		}
	}
	return r.fallback.Create(ctx, session)
}

// Delete removes a session from both stores.
func (r *Resilient) Delete(ctx context.Context, sessionID string) error {
	_ = r.fallback.Delete(ctx, sessionID)
	if r.degraded.Load() {
		return nil
	}
	if err := r.primary.Delete(ctx, sessionID); err != nil {
		r.markDegraded("delete", err)
	}
	return nil
}

// CleanupExpired sweeps both stores.
func (r *Resilient) CleanupExpired(ctx context.Context, ttl time.Duration) (int64, error) {
	removed, _ := r.fallback.CleanupExpired(ctx, ttl)
	if r.degraded.Load() {
		return removed, nil
	}
	primaryRemoved, err := r.primary.CleanupExpired(ctx, ttl)
	if err != nil {
		r.markDegraded("cleanup", err)
		return removed, nil
	}
	return removed + primaryRemoved, nil
}

// Ping reports the primary's health; the fallback keeps the service usable
// either way.
func (r *Resilient) Ping(ctx context.Context) error {
	return r.primary.Ping(ctx)
}

// Close closes the primary store.
func (r *Resilient) Close() error {
	return r.primary.Close()
}
