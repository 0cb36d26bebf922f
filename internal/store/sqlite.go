package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/legallink/assist/internal/domain"
	"github.com/legallink/assist/internal/shared"
	_ "modernc.org/sqlite"
)

// SQLiteStore implements SessionStore using SQLite.
type SQLiteStore struct {
	db        *sql.DB
	sessionMu sync.Mutex // Mutex for session writes to prevent SQLITE_BUSY
}

// NewSQLite creates a new SQLite-backed session store.
func NewSQLite(dbPath string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	// Open database with WAL mode for better concurrency.
	dsn := dbPath + "?_journal=WAL&_sync=NORMAL&_busy_timeout=5000"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.initSchema(); err != nil {
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	return store, nil
}

func (s *SQLiteStore) initSchema() error {
	query := `
	PRAGMA busy_timeout = 5000;
	CREATE TABLE IF NOT EXISTS sessions (
		session_id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		conversation_stage TEXT NOT NULL,
		interaction_count INTEGER DEFAULT 0,
		user_context_json TEXT NOT NULL,
		memory_json TEXT NOT NULL,
		history_json TEXT NOT NULL,
		created_at INTEGER NOT NULL,
		last_activity INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_sessions_last_activity ON sessions(last_activity);
	CREATE INDEX IF NOT EXISTS idx_sessions_user ON sessions(user_id);
	`
	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// Ping verifies database connectivity.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Get retrieves a session by its ID.
func (s *SQLiteStore) Get(ctx context.Context, sessionID string) (*domain.Session, error) {
	query := `
		SELECT session_id, user_id, conversation_stage, interaction_count,
		       user_context_json, memory_json, history_json, created_at, last_activity
		FROM sessions WHERE session_id = ?`

	row := s.db.QueryRowContext(ctx, query, sessionID)

	var session domain.Session
	var userContextJSON, memoryJSON, historyJSON string
	var createdAt, lastActivity int64

	err := row.Scan(
		&session.SessionID, &session.UserID, &session.Stage, &session.InteractionCount,
		&userContextJSON, &memoryJSON, &historyJSON, &createdAt, &lastActivity,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan session row: %w", err)
	}

	if err := json.Unmarshal([]byte(userContextJSON), &session.UserContext); err != nil {
		return nil, fmt.Errorf("decode user context: %w", err)
	}
	if err := json.Unmarshal([]byte(memoryJSON), &session.Memory); err != nil {
		return nil, fmt.Errorf("decode memory: %w", err)
	}
	if err := json.Unmarshal([]byte(historyJSON), &session.QueryHistory); err != nil {
		return nil, fmt.Errorf("decode history: %w", err)
	}

	session.CreatedAt = time.Unix(createdAt, 0)
	session.LastActivity = time.Unix(lastActivity, 0)

	return &session, nil
}

// Create persists a new session.
func (s *SQLiteStore) Create(ctx context.Context, session *domain.Session) error {
	return s.upsert(ctx, session)
}

// Update persists changes to an existing session.
func (s *SQLiteStore) Update(ctx context.Context, session *domain.Session) error {
	return s.upsert(ctx, session)
}

// upsert writes a session row, retrying on SQLite concurrency errors.
func (s *SQLiteStore) upsert(ctx context.Context, session *domain.Session) error {
	maxRetries := 3
	baseDelay := 100 * time.Millisecond

	var err error
	for i := 0; i < maxRetries; i++ {
		err = s.upsertOnce(ctx, session)
		if err == nil {
			return nil
		}

		if shared.IsSQLiteConflictError(err) && i < maxRetries-1 {
			delay := baseDelay * time.Duration(1<<i) // exponential backoff: 100ms, 200ms, 400ms
			slog.Debug("session upsert hit SQLITE_BUSY, retrying",
				"session_id", session.SessionID,
				"attempt", i+1,
				"delay", delay)
			time.Sleep(delay)
			continue
		}

		break
	}

	return fmt.Errorf("persist session %s: %w", session.SessionID, err)
}

func (s *SQLiteStore) upsertOnce(ctx context.Context, session *domain.Session) error {
	s.sessionMu.Lock()
	defer s.sessionMu.Unlock()

	userContextJSON, err := json.Marshal(session.UserContext)
	if err != nil {
		return fmt.Errorf("encode user context: %w", err)
	}
	memoryJSON, err := json.Marshal(session.Memory)
	if err != nil {
		return fmt.Errorf("encode memory: %w", err)
	}
	historyJSON, err := json.Marshal(session.QueryHistory)
	if err != nil {
		return fmt.Errorf("encode history: %w", err)
	}

	query := `
		INSERT INTO sessions (
			session_id, user_id, conversation_stage, interaction_count,
			user_context_json, memory_json, history_json, created_at, last_activity
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(session_id) DO UPDATE SET
			conversation_stage = excluded.conversation_stage,
			interaction_count = excluded.interaction_count,
			user_context_json = excluded.user_context_json,
			memory_json = excluded.memory_json,
			history_json = excluded.history_json,
			last_activity = excluded.last_activity`

	_, err = s.db.ExecContext(ctx, query,
		session.SessionID, session.UserID, string(session.Stage), session.InteractionCount,
		string(userContextJSON), string(memoryJSON), string(historyJSON),
		session.CreatedAt.Unix(), session.LastActivity.Unix(),
	)
	if err != nil {
		return fmt.Errorf("upsert session: %w", err)
	}
	return nil
}

// Delete removes a session.
func (s *SQLiteStore) Delete(ctx context.Context, sessionID string) error {
	s.sessionMu.Lock()
	defer s.sessionMu.Unlock()

	query := `DELETE FROM sessions WHERE session_id = ?`
	if _, err := s.db.ExecContext(ctx, query, sessionID); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// CleanupExpired removes sessions whose last activity exceeds the TTL.
func (s *SQLiteStore) CleanupExpired(ctx context.Context, ttl time.Duration) (int64, error) {
	threshold := time.Now().Add(-ttl).Unix()
	query := `DELETE FROM sessions WHERE last_activity < ?`
	result, err := s.db.ExecContext(ctx, query, threshold)
	if err != nil {
		return 0, fmt.Errorf("cleanup expired sessions: %w", err)
	}
	return result.RowsAffected()
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("close database: %w", err)
	}
	return nil
}
