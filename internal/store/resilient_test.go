package store

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/legallink/assist/internal/domain"
)

// flakyStore wraps a MemoryStore and fails every call while failing is set.
type flakyStore struct {
	inner   *MemoryStore
	failing atomic.Bool
}

var errBackendDown = errors.New("backend down")

func newFlakyStore() *flakyStore {
	return &flakyStore{inner: NewMemory()}
}

func (f *flakyStore) Get(ctx context.Context, id string) (*domain.Session, error) {
	if f.failing.Load() {
		return nil, errBackendDown
	}
	return f.inner.Get(ctx, id)
}

func (f *flakyStore) Create(ctx context.Context, s *domain.Session) error {
	if f.failing.Load() {
		return errBackendDown
	}
	return f.inner.Create(ctx, s)
}

func (f *flakyStore) Update(ctx context.Context, s *domain.Session) error {
	if f.failing.Load() {
		return errBackendDown
	}
	return f.inner.Update(ctx, s)
}

func (f *flakyStore) Delete(ctx context.Context, id string) error {
	if f.failing.Load() {
		return errBackendDown
	}
	return f.inner.Delete(ctx, id)
}

func (f *flakyStore) CleanupExpired(ctx context.Context, ttl time.Duration) (int64, error) {
	if f.failing.Load() {
		return 0, errBackendDown
	}
	return f.inner.CleanupExpired(ctx, ttl)
}

func (f *flakyStore) Ping(ctx context.Context) error {
	if f.failing.Load() {
		return errBackendDown
	}
	return nil
}

func (f *flakyStore) Close() error { return nil }

func TestResilientPassesThroughWhenHealthy(t *testing.T) {
	t.Parallel()

	primary := newFlakyStore()
	r := NewResilient(primary)
	ctx := context.Background()

	if err := r.Create(ctx, newSession("sess-1", time.Now())); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if r.Degraded() {
		t.Error("Store should not be degraded after a successful write")
	}
	if _, err := primary.inner.Get(ctx, "sess-1"); err != nil {
		t.Errorf("Expected session in primary, got %v", err)
	}
}

func TestResilientFallsBackOnWriteFailure(t *testing.T) {
	t.Parallel()

	primary := newFlakyStore()
	primary.failing.Store(true)
	r := NewResilient(primary)
	ctx := context.Background()

	if err := r.Create(ctx, newSession("sess-1", time.Now())); err != nil {
		t.Fatalf("Create should fall back, got %v", err)
	}
	if !r.Degraded() {
		t.Error("Store should be degraded after a primary failure")
	}

	got, err := r.Get(ctx, "sess-1")
	if err != nil {
		t.Fatalf("Get from fallback failed: %v", err)
	}
	if got.SessionID != "sess-1" {
		t.Errorf("Expected sess-1, got %s", got.SessionID)
	}
}

func TestResilientRecoversWhenPrimaryReturns(t *testing.T) {
	t.Parallel()

	primary := newFlakyStore()
	primary.failing.Store(true)
	r := NewResilient(primary)
	ctx := context.Background()

	if err := r.Create(ctx, newSession("sess-1", time.Now())); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if !r.Degraded() {
		t.Fatal("Expected degraded mode")
	}

	primary.failing.Store(false)

	// The next write probes the primary, recovers, and lands there.
	if err := r.Update(ctx, newSession("sess-1", time.Now())); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if r.Degraded() {
		t.Error("Store should have recovered")
	}
	if _, err := primary.inner.Get(ctx, "sess-1"); err != nil {
		t.Errorf("Expected session written to recovered primary, got %v", err)
	}
}

func TestResilientGetConsultsFallbackOnPrimaryMiss(t *testing.T) {
	t.Parallel()

	primary := newFlakyStore()
	r := NewResilient(primary)
	ctx := context.Background()

	// Session written during an outage lives only in the fallback.
	primary.failing.Store(true)
	if err := r.Create(ctx, newSession("orphan", time.Now())); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	primary.failing.Store(false)

	got, err := r.Get(ctx, "orphan")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.SessionID != "orphan" {
		t.Errorf("Expected orphan session from fallback, got %s", got.SessionID)
	}
}

func TestResilientCleanupSweepsBothStores(t *testing.T) {
	t.Parallel()

	primary := newFlakyStore()
	r := NewResilient(primary)
	ctx := context.Background()

	stale := newSession("stale-primary", time.Now().Add(-2*time.Hour))
	if err := r.Create(ctx, stale); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	// Seed a stale session that only the fallback knows about.
	primary.failing.Store(true)
	if err := r.Create(ctx, newSession("stale-fallback", time.Now().Add(-2*time.Hour))); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	primary.failing.Store(false)

	// A healthy write clears degraded mode so cleanup reaches the primary.
	if err := r.Update(ctx, newSession("fresh", time.Now())); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	removed, err := r.CleanupExpired(ctx, time.Hour)
	if err != nil {
		t.Fatalf("CleanupExpired failed: %v", err)
	}
	if removed != 2 {
		t.Errorf("Expected 2 removed sessions, got %d", removed)
	}
}
