package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/legallink/assist/internal/domain"
)

func newSession(id string, lastActivity time.Time) *domain.Session {
	return &domain.Session{
		SessionID:    id,
		UserID:       "user-1",
		Stage:        domain.StageGreeting,
		Memory:       map[string]any{},
		CreatedAt:    lastActivity,
		LastActivity: lastActivity,
	}
}

func TestMemoryStoreRoundTrip(t *testing.T) {
	t.Parallel()

	s := NewMemory()
	ctx := context.Background()

	session := newSession("sess-1", time.Now())
	if err := s.Create(ctx, session); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	got, err := s.Get(ctx, "sess-1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.UserID != "user-1" {
		t.Errorf("Expected user-1, got %s", got.UserID)
	}

	got.Stage = domain.StageLegalGuidance
	if err := s.Update(ctx, got); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	updated, err := s.Get(ctx, "sess-1")
	if err != nil {
		t.Fatalf("Get after update failed: %v", err)
	}
	if updated.Stage != domain.StageLegalGuidance {
		t.Errorf("Expected stage %s, got %s", domain.StageLegalGuidance, updated.Stage)
	}
}

func TestMemoryStoreGetMissing(t *testing.T) {
	t.Parallel()

	s := NewMemory()
	if _, err := s.Get(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestMemoryStoreReturnsCopies(t *testing.T) {
	t.Parallel()

	s := NewMemory()
	ctx := context.Background()

	session := newSession("sess-1", time.Now())
	if err := s.Create(ctx, session); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	first, _ := s.Get(ctx, "sess-1")
	first.Stage = domain.StageClosure

	second, _ := s.Get(ctx, "sess-1")
	if second.Stage == domain.StageClosure {
		t.Error("Mutating a returned session must not affect the stored copy")
	}
}

func TestMemoryStoreIsolatesReferenceFields(t *testing.T) {
	t.Parallel()

	s := NewMemory()
	ctx := context.Background()

	session := newSession("sess-1", time.Now())
	session.UserContext.Location = map[string]string{"city": "Mumbai"}
	session.QueryHistory = []domain.HistoryEntry{{Role: domain.MessageUser, Content: "hello"}}
	if err := s.Create(ctx, session); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	loaded, err := s.Get(ctx, "sess-1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	loaded.Memory["legal_guidance_provided"] = true
	loaded.UserContext.Location["city"] = "Delhi"
	loaded.QueryHistory[0].Content = "tampered"

	stored, err := s.Get(ctx, "sess-1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if _, ok := stored.Memory["legal_guidance_provided"]; ok {
		t.Error("Memory writes must not reach the store without Update")
	}
	if stored.UserContext.Location["city"] != "Mumbai" {
		t.Errorf("Expected stored city Mumbai, got %s", stored.UserContext.Location["city"])
	}
	if stored.QueryHistory[0].Content != "hello" {
		t.Errorf("Expected stored history intact, got %q", stored.QueryHistory[0].Content)
	}

	// The store must also detach from the caller's maps on write.
	session.Memory["late_write"] = true
	stored, _ = s.Get(ctx, "sess-1")
	if _, ok := stored.Memory["late_write"]; ok {
		t.Error("Mutating the session after Create must not affect the stored copy")
	}
}

func TestMemoryStoreDelete(t *testing.T) {
	t.Parallel()

	s := NewMemory()
	ctx := context.Background()

	_ = s.Create(ctx, newSession("sess-1", time.Now()))
	if err := s.Delete(ctx, "sess-1"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := s.Get(ctx, "sess-1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound after delete, got %v", err)
	}
}

func TestMemoryStoreCleanupExpired(t *testing.T) {
	t.Parallel()

	s := NewMemory()
	ctx := context.Background()

	_ = s.Create(ctx, newSession("stale", time.Now().Add(-2*time.Hour)))
	_ = s.Create(ctx, newSession("fresh", time.Now()))

	removed, err := s.CleanupExpired(ctx, time.Hour)
	if err != nil {
		t.Fatalf("CleanupExpired failed: %v", err)
	}
	if removed != 1 {
		t.Errorf("Expected 1 removed session, got %d", removed)
	}
	if _, err := s.Get(ctx, "stale"); !errors.Is(err, ErrNotFound) {
		t.Error("Expected stale session to be removed")
	}
	if _, err := s.Get(ctx, "fresh"); err != nil {
		t.Errorf("Expected fresh session to survive, got %v", err)
	}
}
