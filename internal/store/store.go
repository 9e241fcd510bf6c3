package store

import (
	"context"
	"time"

	"github.com/me/botadmin/pkg/model"
)

// Store defines the persistence layer for operator sessions and the audit log.
type Store interface {
	// Sessions
	CreateSession(ctx context.Context, sess *model.Session) error
	GetSession(ctx context.Context, id string) (*model.Session, error)
	TouchSession(ctx context.Context, id string, seen, expires time.Time) error
	DeleteSession(ctx context.Context, id string) error
	DeleteExpiredSessions(ctx context.Context) (int64, error)

	// Audit log
	RecordAudit(ctx context.Context, entry *model.AuditEntry) error
	ListAudit(ctx context.Context, limit int) ([]*model.AuditEntry, error)

	// Lifecycle
	Close() error
	Migrate(ctx context.Context) error
}
