package listview

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"
)

// Factory builds a fresh view for a screen.
type Factory func() View

// Registry holds the mounted views of every operator session, keyed by
// session and screen. Dropping a view does not cancel its in-flight loads;
// their results land in the discarded controller.
type Registry struct {
	mu     sync.Mutex
	views  map[string]map[string]*mounted
	logger *slog.Logger
	now    func() time.Time
}

// mounted is a view plus a gate closed once its initial load settles.
type mounted struct {
	view  View
	ready chan struct{}
}

// NewRegistry creates an empty registry.
func NewRegistry(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Registry{
		views:  make(map[string]map[string]*mounted),
		logger: logger.With("component", "view-registry"),
		now:    time.Now,
	}
}

// Mount returns the session's view for screen, creating it with newView and
// loading page 1 if it is not mounted yet. A failed initial load still
// mounts the view; the error is returned and kept in its snapshot.
// Concurrent callers for the same view wait until the initial load settles
// or ctx is done.
func (r *Registry) Mount(ctx context.Context, sessionID, screen string, newView Factory) (View, error) {
	r.mu.Lock()
	if m, ok := r.views[sessionID][screen]; ok {
		r.mu.Unlock()
		select {
		case <-m.ready:
			return m.view, nil
		case <-ctx.Done():
			return m.view, ctx.Err()
		}
	}
	m := &mounted{view: newView(), ready: make(chan struct{})}
	if r.views[sessionID] == nil {
		r.views[sessionID] = make(map[string]*mounted)
	}
	r.views[sessionID][screen] = m
	r.mu.Unlock()

	r.logger.Debug("view mounted", "session", sessionID, "screen", screen)
	defer close(m.ready)
	return m.view, m.view.Load(ctx, 1)
}

// Get returns a mounted view without creating one or waiting for it.
func (r *Registry) Get(sessionID, screen string) (View, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.views[sessionID][screen]
	if !ok {
		return nil, false
	}
	return m.view, true
}

// Unmount destroys one view.
func (r *Registry) Unmount(sessionID, screen string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.views[sessionID], screen)
	if len(r.views[sessionID]) == 0 {
		delete(r.views, sessionID)
	}
}

// Drop destroys every view of a session.
func (r *Registry) Drop(sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.views, sessionID)
}

// Sweep destroys views not used within idle and returns how many it removed.
func (r *Registry) Sweep(idle time.Duration) int {
	cutoff := r.now().Add(-idle)

	r.mu.Lock()
	defer r.mu.Unlock()
	removed := 0
	for sid, screens := range r.views {
		for screen, m := range screens {
			if m.view.LastUsed().Before(cutoff) {
				delete(screens, screen)
				removed++
			}
		}
		if len(screens) == 0 {
			delete(r.views, sid)
		}
	}
	if removed > 0 {
		r.logger.Info("swept idle views", "count", removed)
	}
	return removed
}

// Len returns the number of mounted views.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, screens := range r.views {
		n += len(screens)
	}
	return n
}
