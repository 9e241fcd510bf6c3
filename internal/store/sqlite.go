package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/me/botadmin/pkg/model"

	_ "modernc.org/sqlite"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewSQLiteStore opens (or creates) a SQLite database at dbPath and returns a Store.
// Use ":memory:" for an in-memory database (useful in tests).
func NewSQLiteStore(dbPath string, logger *slog.Logger) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", dbPath, err)
	}
	if dbPath == ":memory:" {
		// every connection would otherwise get its own empty database
		db.SetMaxOpenConns(1)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma wal: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout=5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma busy_timeout: %w", err)
	}

	return &SQLiteStore{
		db:     db,
		logger: logger.With("component", "store"),
	}, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Migrate brings the schema up to date. Running it again is a no-op.
func (s *SQLiteStore) Migrate(ctx context.Context) error {
	applied, err := migrate(ctx, s.db)
	if err != nil {
		return err
	}
	if applied > 0 {
		s.logger.Info("schema migrated", "applied", applied, "version", len(migrations))
	}
	return nil
}

// --- Session operations ---

func (s *SQLiteStore) CreateSession(ctx context.Context, sess *model.Session) error {
	s.logger.Debug("sql", "op", "insert", "table", "sessions", "id", sess.ID)

	lastSeen := sess.LastSeenAt
	if lastSeen.IsZero() {
		lastSeen = sess.CreatedAt
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO sessions (id, username, token, created_at, expires_at, last_seen_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		sess.ID, sess.Username, sess.Token,
		sess.CreatedAt.Unix(), sess.ExpiresAt.Unix(), lastSeen.Unix(),
	)
	return err
}

// GetSession returns the session with id, or nil if there is none.
func (s *SQLiteStore) GetSession(ctx context.Context, id string) (*model.Session, error) {
	s.logger.Debug("sql", "op", "select", "table", "sessions", "id", id)

	var sess model.Session
	var createdAt, expiresAt, lastSeenAt int64

	err := s.db.QueryRowContext(ctx,
		`SELECT id, username, token, created_at, expires_at, last_seen_at
		 FROM sessions WHERE id = ?`, id,
	).Scan(&sess.ID, &sess.Username, &sess.Token, &createdAt, &expiresAt, &lastSeenAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	sess.CreatedAt = time.Unix(createdAt, 0)
	sess.ExpiresAt = time.Unix(expiresAt, 0)
	sess.LastSeenAt = time.Unix(lastSeenAt, 0)

	return &sess, nil
}

// TouchSession records activity and slides the expiry forward.
func (s *SQLiteStore) TouchSession(ctx context.Context, id string, seen, expires time.Time) error {
	s.logger.Debug("sql", "op", "update", "table", "sessions", "id", id)

	_, err := s.db.ExecContext(ctx,
		`UPDATE sessions SET last_seen_at = ?, expires_at = ? WHERE id = ?`,
		seen.Unix(), expires.Unix(), id)
	return err
}

func (s *SQLiteStore) DeleteSession(ctx context.Context, id string) error {
	s.logger.Debug("sql", "op", "delete", "table", "sessions", "id", id)

	_, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id)
	return err
}

func (s *SQLiteStore) DeleteExpiredSessions(ctx context.Context) (int64, error) {
	s.logger.Debug("sql", "op", "delete_expired", "table", "sessions")

	result, err := s.db.ExecContext(ctx,
		`DELETE FROM sessions WHERE expires_at < ?`, time.Now().Unix())
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// --- Audit log ---

func (s *SQLiteStore) RecordAudit(ctx context.Context, e *model.AuditEntry) error {
	s.logger.Debug("sql", "op", "insert", "table", "audit_log", "action", e.Action, "entity", e.Entity)

	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	result, err := s.db.ExecContext(ctx,
		`INSERT INTO audit_log (session_id, username, action, entity, entity_id, status, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.SessionID, e.Username, e.Action, e.Entity, e.EntityID, e.Status, e.CreatedAt.Unix(),
	)
	if err != nil {
		return err
	}
	e.ID, err = result.LastInsertId()
	return err
}

// ListAudit returns the newest entries first.
func (s *SQLiteStore) ListAudit(ctx context.Context, limit int) ([]*model.AuditEntry, error) {
	s.logger.Debug("sql", "op", "select", "table", "audit_log", "limit", limit)

	if limit <= 0 || limit > 500 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, session_id, username, action, entity, entity_id, status, created_at
		 FROM audit_log ORDER BY created_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*model.AuditEntry
	for rows.Next() {
		var e model.AuditEntry
		var createdAt int64
		if err := rows.Scan(&e.ID, &e.SessionID, &e.Username, &e.Action, &e.Entity, &e.EntityID, &e.Status, &createdAt); err != nil {
			return nil, err
		}
		e.CreatedAt = time.Unix(createdAt, 0)
		entries = append(entries, &e)
	}
	return entries, rows.Err()
}
