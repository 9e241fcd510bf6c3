package ui

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/me/botadmin/internal/form"
	"github.com/me/botadmin/internal/listview"
	"github.com/me/botadmin/internal/media"
	"github.com/me/botadmin/internal/store"
	"github.com/me/botadmin/pkg/botapi"
	"github.com/me/botadmin/pkg/model"
)

// maxUploadSize bounds a media upload request.
const maxUploadSize = 10 << 20

// UI handles the web user interface.
type UI struct {
	store     store.Store
	sessions  *SessionManager
	client    *botapi.Client
	views     *listview.Registry
	media     media.Store
	screens   []screen
	byName    map[string]screen
	logger    *slog.Logger
	startTime time.Time
	secure    bool // Use secure cookies (HTTPS)
	pageSize  int
}

// Config holds UI configuration.
type Config struct {
	Secure     bool          // Use secure cookies for HTTPS
	SessionTTL time.Duration // Sliding session lifetime
	PageSize   int           // Rows per list page
}

// New creates a new UI handler. views and mediaStore may be nil; they
// default to a fresh registry and to uploads through the bot API.
func New(st store.Store, client *botapi.Client, views *listview.Registry, mediaStore media.Store, logger *slog.Logger, cfg Config) *UI {
	logger = logger.With("component", "ui")
	if views == nil {
		views = listview.NewRegistry(logger)
	}
	if mediaStore == nil {
		mediaStore = media.NewBotAPIStore(client)
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = model.DefaultPageSize
	}
	ui := &UI{
		store:     st,
		sessions:  NewSessionManager(st, cfg.SessionTTL),
		client:    client,
		views:     views,
		media:     mediaStore,
		byName:    make(map[string]screen),
		logger:    logger,
		startTime: time.Now(),
		secure:    cfg.Secure,
		pageSize:  cfg.PageSize,
	}
	ui.screens = buildScreens(client, ui.auditSubmit, logger)
	for _, s := range ui.screens {
		ui.byName[s.Name()] = s
	}
	return ui
}

// Sessions returns the session manager.
func (ui *UI) Sessions() *SessionManager {
	return ui.sessions
}

// ScreenNames returns the screen names in navigation order.
func (ui *UI) ScreenNames() []string {
	names := make([]string, 0, len(ui.screens))
	for _, s := range ui.screens {
		names = append(names, s.Name())
	}
	return names
}

// Views returns the registry of mounted list views.
func (ui *UI) Views() *listview.Registry {
	return ui.views
}

// HandleLogin renders the login page.
func (ui *UI) HandleLogin(w http.ResponseWriter, r *http.Request) {
	// If already logged in, redirect to dashboard.
	if sess, _ := ui.sessions.GetSessionFromRequest(r); sess != nil {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	data := map[string]any{
		"Title": "Login - Bot Admin",
		"Error": r.URL.Query().Get("error"),
	}
	ui.render(w, "login", data)
}

// HandleLoginPost processes the login form.
func (ui *UI) HandleLoginPost(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		loginError(w, r, "Invalid request")
		return
	}

	email := strings.TrimSpace(r.FormValue("email"))
	password := r.FormValue("password")
	if email == "" || password == "" {
		loginError(w, r, "Email and password required")
		return
	}

	token, err := ui.client.Login(r.Context(), email, password)
	if err != nil {
		ui.logger.Warn("login failed", "email", email, "error", err)
		loginError(w, r, "Invalid credentials")
		return
	}
	ui.startSession(w, r, email, token)
}

// HandleSignupPost registers a new operator and logs them in.
func (ui *UI) HandleSignupPost(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		loginError(w, r, "Invalid request")
		return
	}

	name := strings.TrimSpace(r.FormValue("name"))
	email := strings.TrimSpace(r.FormValue("email"))
	password := r.FormValue("password")
	if name == "" || email == "" || password == "" {
		loginError(w, r, "Name, email and password required")
		return
	}

	token, err := ui.client.Signup(r.Context(), name, email, password)
	if err != nil {
		ui.logger.Warn("signup failed", "email", email, "error", err)
		loginError(w, r, "Signup failed")
		return
	}
	ui.startSession(w, r, email, token)
}

func (ui *UI) startSession(w http.ResponseWriter, r *http.Request, username, token string) {
	sess, err := ui.sessions.CreateSession(r.Context(), username, token)
	if err != nil {
		ui.logger.Error("create session failed", "error", err)
		loginError(w, r, "Session creation failed")
		return
	}
	SetSessionCookie(w, sess, ui.secure)

	ui.logger.Info("user logged in", "username", username, "session", sess.ID)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func loginError(w http.ResponseWriter, r *http.Request, msg string) {
	http.Redirect(w, r, "/login?error="+url.QueryEscape(msg), http.StatusSeeOther)
}

// HandleLogout clears the session and redirects to login.
func (ui *UI) HandleLogout(w http.ResponseWriter, r *http.Request) {
	if sess, _ := ui.sessions.GetSessionFromRequest(r); sess != nil {
		_ = ui.sessions.DeleteSession(r.Context(), sess.ID)
		ui.views.Drop(sess.ID)
		ui.logger.Info("user logged out", "username", sess.Username, "session", sess.ID)
	}
	ClearSessionCookie(w)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

// HandleDashboard renders the main dashboard.
func (ui *UI) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	sess := SessionFromContext(r.Context())

	entries, err := ui.store.ListAudit(r.Context(), 10)
	if err != nil {
		ui.logger.Warn("list audit failed", "error", err)
	}

	data := map[string]any{
		"Title":   "Dashboard - Bot Admin",
		"Session": sess,
		"Screens": ui.screens,
		"Audit":   entries,
		"Views":   ui.views.Len(),
		"Uptime":  time.Since(ui.startTime).Round(time.Second).String(),
	}
	ui.render(w, "dashboard", data)
}

// HandleAudit renders the audit log.
func (ui *UI) HandleAudit(w http.ResponseWriter, r *http.Request) {
	sess := SessionFromContext(r.Context())

	limit := 100
	if n, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && n > 0 {
		limit = n
	}
	entries, err := ui.store.ListAudit(r.Context(), limit)
	if err != nil {
		ui.renderError(w, "Failed to load audit log", err)
		return
	}

	data := map[string]any{
		"Title":   "Audit - Bot Admin",
		"Session": sess,
		"Screens": ui.screens,
		"Audit":   entries,
	}
	ui.render(w, "audit", data)
}

// --- List screens ---

// ListState mounts the session's view of the named screen and applies the
// list query to it: q sets the filter text, sort and desc the ordering,
// and page moves to that page. Without a page, refresh reloads the current
// page of an already mounted view. Filtering and sorting never fetch.
func (ui *UI) ListState(ctx context.Context, name string, q url.Values, refresh bool) (listview.Snapshot, error) {
	sess := SessionFromContext(ctx)
	s, ok := ui.byName[name]
	if sess == nil {
		return listview.Snapshot{}, ErrNoSession
	}
	if !ok {
		return listview.Snapshot{}, ErrUnknownScreen
	}

	_, mounted := ui.views.Get(sess.ID, name)
	view, err := ui.views.Mount(ctx, sess.ID, name, func() listview.View {
		return s.NewView(ui.logger, ui.pageSize)
	})
	if err != nil {
		ui.logger.Debug("initial load failed", "screen", name, "error", err)
	}

	if q.Has("q") {
		view.SetFilterText(q.Get("q"))
	}
	if q.Has("sort") {
		desc := q.Get("desc") == "1" || q.Get("desc") == "true"
		if err := view.SetSort(q.Get("sort"), desc); err != nil {
			return view.Snapshot(), err
		}
	}

	switch {
	case q.Has("page"):
		n, err := strconv.Atoi(q.Get("page"))
		if err != nil {
			return view.Snapshot(), listview.ErrPageOutOfRange
		}
		if err := view.SetPage(ctx, n); err != nil && !isFetchError(err) {
			return view.Snapshot(), err
		}
	case refresh && mounted:
		_ = view.Refresh(ctx)
	}
	return view.Snapshot(), nil
}

// Errors returned by ListState.
var (
	ErrNoSession     = errors.New("no operator session")
	ErrUnknownScreen = errors.New("unknown screen")
)

// isFetchError reports errors already recorded in the view snapshot.
func isFetchError(err error) bool {
	var fe *listview.FetchError
	return errors.As(err, &fe) || errors.Is(err, listview.ErrSuperseded)
}

// HandleList renders a list screen.
func (ui *UI) HandleList(w http.ResponseWriter, r *http.Request) {
	ui.handleList(w, r, false)
}

// HandleTable renders the table fragment of a list screen for HTMX swaps.
func (ui *UI) HandleTable(w http.ResponseWriter, r *http.Request) {
	ui.handleList(w, r, true)
}

func (ui *UI) handleList(w http.ResponseWriter, r *http.Request, partial bool) {
	s, ok := ui.screen(w, r)
	if !ok {
		return
	}

	snap, err := ui.ListState(r.Context(), s.Name(), r.URL.Query(), !partial)
	if snap.Unauthorized {
		redirectToLogin(w, r)
		return
	}
	data := ui.listData(r, s, snap)
	if err != nil {
		ui.logger.Debug("list query rejected", "screen", s.Name(), "error", err)
		data["Error"] = err.Error()
	}

	if partial {
		ui.renderPartial(w, "table", data)
		return
	}
	ui.render(w, "list", data)
}

func (ui *UI) listData(r *http.Request, s screen, snap listview.Snapshot) map[string]any {
	return map[string]any{
		"Title":   s.Title() + " - Bot Admin",
		"Session": SessionFromContext(r.Context()),
		"Screens": ui.screens,
		"Screen":  s,
		"View":    snap,
	}
}

// HandleDelete deletes a row. HTMX requests get the refreshed table
// fragment; plain form posts are redirected back to the list.
func (ui *UI) HandleDelete(w http.ResponseWriter, r *http.Request) {
	s, ok := ui.screen(w, r)
	if !ok {
		return
	}
	sess := SessionFromContext(r.Context())
	id := chi.URLParam(r, "id")

	view, _ := ui.views.Mount(r.Context(), sess.ID, s.Name(), func() listview.View {
		return s.NewView(ui.logger, ui.pageSize)
	})
	err := view.DeleteRow(r.Context(), id)
	if err != nil && isFetchError(err) {
		// The delete itself succeeded; the refresh error is in the snapshot.
		ui.audit(r.Context(), "delete", s.Entity(), id, nil)
		err = nil
	} else {
		ui.audit(r.Context(), "delete", s.Entity(), id, err)
	}
	snap := view.Snapshot()
	if botapi.IsUnauthorized(err) || snap.Unauthorized {
		redirectToLogin(w, r)
		return
	}

	if r.Header.Get("HX-Request") != "true" {
		if err != nil {
			ui.renderError(w, "Failed to delete", err)
			return
		}
		http.Redirect(w, r, "/"+s.Name(), http.StatusSeeOther)
		return
	}

	data := ui.listData(r, s, snap)
	status := http.StatusOK
	if err != nil {
		data["Error"] = err.Error()
		status = http.StatusBadGateway
	}
	ui.renderPartialStatus(w, status, "table", data)
}

// --- Forms ---

// HandleForm renders the create form (no id) or the edit form of an entity.
func (ui *UI) HandleForm(w http.ResponseWriter, r *http.Request) {
	s, ok := ui.screen(w, r)
	if !ok {
		return
	}
	id := chi.URLParam(r, "id")

	var values url.Values
	if id != "" {
		v, err := s.Values(r.Context(), id)
		switch {
		case botapi.IsUnauthorized(err):
			redirectToLogin(w, r)
			return
		case botapi.IsNotFound(err):
			ui.renderNotFound(w, s.Title()+" "+id+" not found")
			return
		case err != nil:
			ui.renderError(w, "Failed to load "+s.Title(), err)
			return
		}
		values = v
	}

	ui.renderForm(w, r, http.StatusOK, s, id, values, nil)
}

// HandleFormPost submits a create or edit form. On failure the form is
// rendered again with the posted values and the error.
func (ui *UI) HandleFormPost(w http.ResponseWriter, r *http.Request) {
	s, ok := ui.screen(w, r)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		ui.renderForm(w, r, http.StatusBadRequest, s, "", nil, err)
		return
	}
	id := chi.URLParam(r, "id")

	names, err := form.LoadLookups(r.Context(), s.Lookups())
	if err != nil {
		ui.logger.Warn("form lookups failed", "screen", s.Name(), "error", err)
	}

	next, err := s.Submit(r.Context(), id, r.PostForm, names)
	if err != nil {
		if botapi.IsUnauthorized(err) {
			redirectToLogin(w, r)
			return
		}
		ui.renderFormWith(w, r, http.StatusUnprocessableEntity, s, id, r.PostForm, names, err)
		return
	}
	http.Redirect(w, r, next, http.StatusSeeOther)
}

func (ui *UI) renderForm(w http.ResponseWriter, r *http.Request, status int, s screen, id string, values url.Values, formErr error) {
	names, err := form.LoadLookups(r.Context(), s.Lookups())
	if err != nil {
		if botapi.IsUnauthorized(err) {
			redirectToLogin(w, r)
			return
		}
		ui.logger.Warn("form lookups failed", "screen", s.Name(), "error", err)
		if formErr == nil {
			formErr = err
		}
	}
	ui.renderFormWith(w, r, status, s, id, values, names, formErr)
}

func (ui *UI) renderFormWith(w http.ResponseWriter, r *http.Request, status int, s screen, id string, values url.Values, names map[string][]model.NamePair, formErr error) {
	data := map[string]any{
		"Title":   s.Title() + " - Bot Admin",
		"Session": SessionFromContext(r.Context()),
		"Screens": ui.screens,
		"Screen":  s,
		"ID":      id,
		"Fields":  fieldViews(s.Fields(), values, names),

		"FieldErrors": map[string]string{},
	}
	if formErr != nil {
		data["Error"] = formErr.Error()
		var fe form.FieldErrors
		if errors.As(formErr, &fe) {
			data["FieldErrors"] = map[string]string(fe)
		}
	}
	ui.renderStatus(w, status, "form", data)
}

// HandleMediaUpload stores an image and returns the media list item
// fragment carrying its URL.
func (ui *UI) HandleMediaUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		ui.renderUploadError(w, http.StatusBadRequest, "Invalid upload")
		return
	}
	file, header, err := r.FormFile("image")
	if err != nil {
		ui.renderUploadError(w, http.StatusBadRequest, "No image selected")
		return
	}
	defer file.Close()

	mediaURL, err := ui.media.Put(r.Context(), header.Filename, header.Header.Get("Content-Type"), file)
	ui.audit(r.Context(), "upload", "message", header.Filename, err)
	switch {
	case errors.Is(err, media.ErrNotImage):
		ui.renderUploadError(w, http.StatusUnsupportedMediaType, "Only images can be attached")
		return
	case botapi.IsUnauthorized(err):
		redirectToLogin(w, r)
		return
	case err != nil:
		ui.logger.Warn("media upload failed", "file", header.Filename, "error", err)
		ui.renderUploadError(w, http.StatusBadGateway, "Upload failed")
		return
	}
	ui.renderPartial(w, "media_item", map[string]any{"URL": mediaURL})
}

func (ui *UI) renderUploadError(w http.ResponseWriter, status int, msg string) {
	ui.renderPartialStatus(w, status, "upload_error", map[string]any{"Message": msg})
}

// --- Audit ---

func (ui *UI) auditSubmit(ctx context.Context, entity, action, id string, err error) {
	ui.audit(ctx, action, entity, id, err)
}

func (ui *UI) audit(ctx context.Context, action, entity, id string, err error) {
	sess := SessionFromContext(ctx)
	if sess == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = err.Error()
	}
	entry := &model.AuditEntry{
		SessionID: sess.ID,
		Username:  sess.Username,
		Action:    action,
		Entity:    entity,
		EntityID:  id,
		Status:    status,
		CreatedAt: time.Now().UTC(),
	}
	if err := ui.store.RecordAudit(context.WithoutCancel(ctx), entry); err != nil {
		ui.logger.Error("record audit failed", "action", action, "entity", entity, "error", err)
	}
}

// --- Helpers ---

func (ui *UI) screen(w http.ResponseWriter, r *http.Request) (screen, bool) {
	name := chi.URLParam(r, "screen")
	s, ok := ui.byName[name]
	if !ok {
		ui.renderNotFound(w, "Unknown screen "+name)
	}
	return s, ok
}

func (ui *UI) render(w http.ResponseWriter, template string, data map[string]any) {
	ui.renderStatus(w, http.StatusOK, template, data)
}

func (ui *UI) renderStatus(w http.ResponseWriter, status int, template string, data map[string]any) {
	var buf bytes.Buffer
	if err := renderTemplate(&buf, template, data); err != nil {
		ui.logger.Error("template render failed", "template", template, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}

func (ui *UI) renderPartial(w http.ResponseWriter, name string, data map[string]any) {
	ui.renderPartialStatus(w, http.StatusOK, name, data)
}

func (ui *UI) renderPartialStatus(w http.ResponseWriter, status int, name string, data map[string]any) {
	var buf bytes.Buffer
	if err := renderComponent(&buf, name, data); err != nil {
		ui.logger.Error("fragment render failed", "template", name, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}

func (ui *UI) renderError(w http.ResponseWriter, message string, err error) {
	ui.logger.Error(message, "error", err)
	data := map[string]any{
		"Title":   "Error - Bot Admin",
		"Message": message,
		"Detail":  err.Error(),
	}
	ui.renderStatus(w, http.StatusInternalServerError, "error", data)
}

func (ui *UI) renderNotFound(w http.ResponseWriter, message string) {
	data := map[string]any{
		"Title":   "Not Found - Bot Admin",
		"Message": message,
	}
	ui.renderStatus(w, http.StatusNotFound, "error", data)
}
