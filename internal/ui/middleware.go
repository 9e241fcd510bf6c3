package ui

import (
	"context"
	"net/http"

	"github.com/me/botadmin/pkg/botapi"
	"github.com/me/botadmin/pkg/model"
)

// Context keys for session data.
type contextKey string

const (
	sessionContextKey contextKey = "session"
)

// SessionFromContext retrieves the session from the request context.
func SessionFromContext(ctx context.Context) *model.Session {
	sess, _ := ctx.Value(sessionContextKey).(*model.Session)
	return sess
}

// AuthMiddleware validates the session and adds it, together with the bot
// API credentials it holds, to the request context. If no valid session
// exists, it redirects to the login page.
func (ui *UI) AuthMiddleware(next http.Handler) http.Handler {
	return ui.SessionMiddleware(redirectToLogin)(next)
}

// SessionMiddleware is AuthMiddleware with a custom response for requests
// without a valid session.
func (ui *UI) SessionMiddleware(missing http.HandlerFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess, err := ui.sessions.GetSessionFromRequest(r)
			if err != nil {
				ui.logger.Error("session lookup failed", "error", err)
				missing(w, r)
				return
			}
			if sess == nil {
				missing(w, r)
				return
			}
			if err := ui.sessions.Touch(r.Context(), sess); err != nil {
				ui.logger.Warn("session touch failed", "session", sess.ID, "error", err)
			}

			ctx := context.WithValue(r.Context(), sessionContextKey, sess)
			ctx = botapi.WithAuth(ctx, botapi.Credentials{
				Token:      sess.Token,
				Invalidate: ui.invalidator(ctx, sess),
			})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// invalidator returns the callback the bot API client runs when the token
// is rejected: the session and its mounted views are discarded so the next
// request lands on the login page.
func (ui *UI) invalidator(ctx context.Context, sess *model.Session) func() {
	ctx = context.WithoutCancel(ctx)
	return func() {
		if err := ui.sessions.DeleteSession(ctx, sess.ID); err != nil {
			ui.logger.Error("invalidate session failed", "session", sess.ID, "error", err)
		}
		ui.views.Drop(sess.ID)
		ui.logger.Info("session invalidated by bot api", "username", sess.Username, "session", sess.ID)
	}
}

// redirectToLogin sends the browser to the login page. HTMX requests get
// an HX-Redirect header so the whole page navigates instead of swapping
// the login form into a fragment.
func redirectToLogin(w http.ResponseWriter, r *http.Request) {
	if r.Header.Get("HX-Request") == "true" {
		w.Header().Set("HX-Redirect", "/login")
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}
