package model

import "time"

// Session is an authenticated operator session. Token is the bot API token
// obtained at login and never leaves the server.
type Session struct {
	ID         string    `json:"id"`
	Username   string    `json:"username"`
	Token      string    `json:"-"`
	CreatedAt  time.Time `json:"created_at"`
	ExpiresAt  time.Time `json:"expires_at"`
	LastSeenAt time.Time `json:"last_seen_at"`
}

// IsExpired reports whether the session has expired.
func (s *Session) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}

// AuditEntry records one mutation an operator performed through the bot API.
type AuditEntry struct {
	ID        int64     `json:"id"`
	SessionID string    `json:"session_id"`
	Username  string    `json:"username"`
	Action    string    `json:"action"` // create, update, delete, upload
	Entity    string    `json:"entity"`
	EntityID  string    `json:"entity_id,omitempty"`
	Status    string    `json:"status"` // ok or the error text
	CreatedAt time.Time `json:"created_at"`
}
