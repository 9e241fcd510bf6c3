package store

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/me/botadmin/pkg/model"
)

func testStore(t *testing.T) *SQLiteStore {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, &slog.HandlerOptions{Level: slog.LevelError}))
	st, err := NewSQLiteStore(":memory:", logger)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	if err := st.Migrate(context.Background()); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return st
}

func sampleSession(id string, ttl time.Duration) *model.Session {
	now := time.Now().Truncate(time.Second)
	return &model.Session{
		ID:        id,
		Username:  "ops@example.com",
		Token:     "bot-token-" + id,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
}

func TestMigrateIdempotent(t *testing.T) {
	st := testStore(t)
	ctx := context.Background()
	if err := st.Migrate(ctx); err != nil {
		t.Fatalf("second migrate: %v", err)
	}
	v, err := schemaVersion(ctx, st.db)
	if err != nil {
		t.Fatalf("schema version: %v", err)
	}
	if v != len(migrations) {
		t.Errorf("schema version = %d, want %d", v, len(migrations))
	}
}

func TestMigrateRefusesNewerSchema(t *testing.T) {
	st := testStore(t)
	ctx := context.Background()
	if _, err := st.db.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", len(migrations)+1)); err != nil {
		t.Fatalf("bump version: %v", err)
	}
	if err := st.Migrate(ctx); err == nil {
		t.Fatal("expected error for newer schema")
	}
}

func TestSessionRoundTrip(t *testing.T) {
	st := testStore(t)
	ctx := context.Background()
	sess := sampleSession("sess_1", time.Hour)

	if err := st.CreateSession(ctx, sess); err != nil {
		t.Fatalf("create: %v", err)
	}
	got, err := st.GetSession(ctx, "sess_1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got == nil {
		t.Fatal("expected session, got nil")
	}
	if got.Username != sess.Username || got.Token != sess.Token {
		t.Errorf("got %+v, want %+v", got, sess)
	}
	if !got.ExpiresAt.Equal(sess.ExpiresAt) {
		t.Errorf("ExpiresAt = %v, want %v", got.ExpiresAt, sess.ExpiresAt)
	}
	if !got.LastSeenAt.Equal(sess.CreatedAt) {
		t.Errorf("LastSeenAt = %v, want CreatedAt %v", got.LastSeenAt, sess.CreatedAt)
	}
}

func TestGetSessionMissing(t *testing.T) {
	st := testStore(t)
	got, err := st.GetSession(context.Background(), "nope")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil, got %+v", got)
	}
}

func TestTouchSession(t *testing.T) {
	st := testStore(t)
	ctx := context.Background()
	sess := sampleSession("sess_1", time.Minute)
	st.CreateSession(ctx, sess)

	seen := sess.CreatedAt.Add(30 * time.Second)
	expires := seen.Add(time.Hour)
	if err := st.TouchSession(ctx, "sess_1", seen, expires); err != nil {
		t.Fatalf("touch: %v", err)
	}
	got, _ := st.GetSession(ctx, "sess_1")
	if !got.LastSeenAt.Equal(seen) || !got.ExpiresAt.Equal(expires) {
		t.Errorf("after touch: last_seen=%v expires=%v", got.LastSeenAt, got.ExpiresAt)
	}
}

func TestDeleteSession(t *testing.T) {
	st := testStore(t)
	ctx := context.Background()
	st.CreateSession(ctx, sampleSession("sess_1", time.Hour))

	if err := st.DeleteSession(ctx, "sess_1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	got, _ := st.GetSession(ctx, "sess_1")
	if got != nil {
		t.Error("session should be gone")
	}
}

func TestDeleteExpiredSessions(t *testing.T) {
	st := testStore(t)
	ctx := context.Background()
	st.CreateSession(ctx, sampleSession("live", time.Hour))
	st.CreateSession(ctx, sampleSession("dead1", -time.Hour))
	st.CreateSession(ctx, sampleSession("dead2", -2*time.Hour))

	n, err := st.DeleteExpiredSessions(ctx)
	if err != nil {
		t.Fatalf("delete expired: %v", err)
	}
	if n != 2 {
		t.Errorf("deleted %d, want 2", n)
	}
	if got, _ := st.GetSession(ctx, "live"); got == nil {
		t.Error("live session was removed")
	}
}

func TestAuditLog(t *testing.T) {
	st := testStore(t)
	ctx := context.Background()
	base := time.Now().Add(-time.Hour)

	for i := 0; i < 5; i++ {
		e := &model.AuditEntry{
			SessionID: "sess_1",
			Username:  "ops@example.com",
			Action:    "delete",
			Entity:    "group",
			EntityID:  fmt.Sprint(i),
			Status:    "ok",
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}
		if err := st.RecordAudit(ctx, e); err != nil {
			t.Fatalf("record %d: %v", i, err)
		}
		if e.ID == 0 {
			t.Errorf("entry %d: id not assigned", i)
		}
	}

	entries, err := st.ListAudit(ctx, 3)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("len = %d, want 3", len(entries))
	}
	for i, want := range []string{"4", "3", "2"} {
		if entries[i].EntityID != want {
			t.Errorf("entries[%d].EntityID = %q, want %q", i, entries[i].EntityID, want)
		}
	}
}
