package ui

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/me/botadmin/internal/store"
	"github.com/me/botadmin/pkg/model"
)

const (
	SessionCookieName = "botadmin_session"
	// SessionDuration is the idle lifetime used when none is configured.
	SessionDuration = 12 * time.Hour
)

// SessionManager maps browser sessions to bot API tokens.
// Sessions slide: every authenticated request pushes the expiry forward.
type SessionManager struct {
	store store.Store
	ttl   time.Duration
	now   func() time.Time
}

// NewSessionManager creates a new session manager. A non-positive ttl
// selects SessionDuration.
func NewSessionManager(st store.Store, ttl time.Duration) *SessionManager {
	if ttl <= 0 {
		ttl = SessionDuration
	}
	return &SessionManager{store: st, ttl: ttl, now: time.Now}
}

// CreateSession stores a session holding the bot API token of username.
func (sm *SessionManager) CreateSession(ctx context.Context, username, token string) (*model.Session, error) {
	if token == "" {
		return nil, fmt.Errorf("create session: empty token")
	}
	now := sm.now().UTC()
	sess := &model.Session{
		ID:         generateSessionID(),
		Username:   username,
		Token:      token,
		CreatedAt:  now,
		ExpiresAt:  now.Add(sm.ttl),
		LastSeenAt: now,
	}
	if err := sm.store.CreateSession(ctx, sess); err != nil {
		return nil, fmt.Errorf("store session: %w", err)
	}
	return sess, nil
}

// GetSession returns the live session with sessionID, or nil. An expired
// session is deleted on sight.
func (sm *SessionManager) GetSession(ctx context.Context, sessionID string) (*model.Session, error) {
	sess, err := sm.store.GetSession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	if sess == nil {
		return nil, nil
	}
	if sm.now().After(sess.ExpiresAt) {
		_ = sm.store.DeleteSession(ctx, sessionID)
		return nil, nil
	}
	return sess, nil
}

// Touch records activity on the session and extends its expiry.
func (sm *SessionManager) Touch(ctx context.Context, sess *model.Session) error {
	now := sm.now().UTC()
	sess.LastSeenAt = now
	sess.ExpiresAt = now.Add(sm.ttl)
	return sm.store.TouchSession(ctx, sess.ID, sess.LastSeenAt, sess.ExpiresAt)
}

// DeleteSession ends a session, e.g. on logout or when the bot API rejects
// its token.
func (sm *SessionManager) DeleteSession(ctx context.Context, sessionID string) error {
	return sm.store.DeleteSession(ctx, sessionID)
}

// CleanupExpiredSessions purges expired sessions and reports how many went.
func (sm *SessionManager) CleanupExpiredSessions(ctx context.Context) (int64, error) {
	return sm.store.DeleteExpiredSessions(ctx)
}

// GetSessionFromRequest extracts the session from the request cookie, or
// from an "Authorization: Bearer <session id>" header for script clients.
func (sm *SessionManager) GetSessionFromRequest(r *http.Request) (*model.Session, error) {
	id := sessionIDFromRequest(r)
	if id == "" {
		return nil, nil
	}
	return sm.GetSession(r.Context(), id)
}

func sessionIDFromRequest(r *http.Request) string {
	if cookie, err := r.Cookie(SessionCookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	if auth := r.Header.Get("Authorization"); auth != "" {
		if id, ok := strings.CutPrefix(auth, "Bearer "); ok {
			return strings.TrimSpace(id)
		}
	}
	return ""
}

// SetSessionCookie hands the session ID to the browser. The cookie expires
// with the session.
func SetSessionCookie(w http.ResponseWriter, sess *model.Session, secure bool) {
	c := sessionCookie(sess.ID, secure)
	c.Expires = sess.ExpiresAt
	http.SetCookie(w, c)
}

// ClearSessionCookie tells the browser to drop the session cookie.
func ClearSessionCookie(w http.ResponseWriter) {
	c := sessionCookie("", false)
	c.MaxAge = -1
	http.SetCookie(w, c)
}

func sessionCookie(value string, secure bool) *http.Cookie {
	return &http.Cookie{
		Name:     SessionCookieName,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteStrictMode,
	}
}

func generateSessionID() string {
	return "sess_" + strings.ReplaceAll(uuid.NewString(), "-", "")
}
