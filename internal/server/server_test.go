package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/me/botadmin/internal/config"
	"github.com/me/botadmin/internal/logging"
	"github.com/me/botadmin/internal/store"
	"github.com/me/botadmin/internal/ui"
	"github.com/me/botadmin/pkg/botapi"
	"github.com/me/botadmin/pkg/model"
)

// fakeBotAPI serves a fixed group list and records request headers.
type fakeBotAPI struct {
	mu         sync.Mutex
	status     int
	calls      int
	requestIDs []string
}

func (f *fakeBotAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	f.calls++
	f.requestIDs = append(f.requestIDs, r.Header.Get(botapi.RequestIDHeader))
	status := f.status
	f.mu.Unlock()

	if status != 0 {
		http.Error(w, http.StatusText(status), status)
		return
	}
	if r.URL.Path != "/group/list" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(model.Page[model.Group]{
		Data:       []model.Group{{ID: 1, Name: "VIP"}, {ID: 2, Name: "Regular"}},
		TotalPages: 2,
	})
}

type testEnv struct {
	srv   *Server
	api   *fakeBotAPI
	store *store.SQLiteStore
	sess  *model.Session
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	api := &fakeBotAPI{}
	upstream := httptest.NewServer(api)
	t.Cleanup(upstream.Close)

	st, err := store.NewSQLiteStore(":memory:", logging.Discard())
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	if err := st.Migrate(context.Background()); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	cfg := config.DefaultServerConfig()
	cfg.API.BaseURL = upstream.URL
	cfg.CORSOrigins = []string{"https://ops.example.com"}

	client := botapi.NewClient(botapi.DefaultConfig().WithBaseURL(upstream.URL), logging.Discard())
	u := ui.New(st, client, nil, nil, logging.Discard(), ui.Config{})

	sess, err := u.Sessions().CreateSession(context.Background(), "ops@example.com", "tok")
	if err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}

	return &testEnv{
		srv:   New(cfg, st, u, logging.Discard()),
		api:   api,
		store: st,
		sess:  sess,
	}
}

// envelope is used to decode the standard response envelope.
type envelope struct {
	Status     string            `json:"status"`
	RequestID  string            `json:"request_id"`
	Timestamp  string            `json:"timestamp"`
	Data       json.RawMessage   `json:"data"`
	Pagination *model.Pagination `json:"pagination"`
	Error      *model.APIError   `json:"error"`
}

func (e *testEnv) get(t *testing.T, path string, authed bool) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	req := httptest.NewRequest("GET", path, nil)
	if authed {
		req.Header.Set("Authorization", "Bearer "+e.sess.ID)
	}
	w := httptest.NewRecorder()
	e.srv.ServeHTTP(w, req)

	var env envelope
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
			t.Fatalf("GET %s: invalid JSON: %v", path, err)
		}
	}
	return w, env
}

func TestDiscovery(t *testing.T) {
	e := newTestEnv(t)
	w, env := e.get(t, "/api/v1/", false)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if env.Status != "ok" {
		t.Errorf("status = %q, want ok", env.Status)
	}
	if env.RequestID == "" {
		t.Error("request_id is empty")
	}

	var data struct {
		Name      string `json:"name"`
		Endpoints []struct {
			Path string `json:"path"`
		} `json:"endpoints"`
	}
	json.Unmarshal(env.Data, &data)
	if data.Name != "botadmin API" {
		t.Errorf("name = %q, want botadmin API", data.Name)
	}
	if len(data.Endpoints) != 3 {
		t.Errorf("endpoints count = %d, want 3", len(data.Endpoints))
	}
}

func TestHealth(t *testing.T) {
	e := newTestEnv(t)
	w, env := e.get(t, "/api/v1/health", false)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var data struct {
		Status    string `json:"status"`
		Version   string `json:"version"`
		GoVersion string `json:"go_version"`
		Store     string `json:"store"`
	}
	json.Unmarshal(env.Data, &data)
	if data.Status != "healthy" {
		t.Errorf("status = %q, want healthy", data.Status)
	}
	if data.Version != Version {
		t.Errorf("version = %q, want %q", data.Version, Version)
	}
	if data.GoVersion == "" {
		t.Error("go_version is empty")
	}
	if data.Store != "ok" {
		t.Errorf("store = %q, want ok", data.Store)
	}
}

func TestRequestIDHeader(t *testing.T) {
	e := newTestEnv(t)
	w, env := e.get(t, "/api/v1/health", false)
	got := w.Header().Get("X-Request-ID")
	if !strings.HasPrefix(got, "req_") {
		t.Errorf("X-Request-ID = %q, want req_ prefix", got)
	}
	if env.RequestID != got {
		t.Errorf("envelope request_id = %q, header = %q", env.RequestID, got)
	}
}

func TestGetView(t *testing.T) {
	e := newTestEnv(t)
	w, env := e.get(t, "/api/v1/views/groups", true)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body=%s", w.Code, w.Body.String())
	}

	var snap struct {
		Screen string `json:"screen"`
		Rows   []struct {
			ID    string   `json:"id"`
			Cells []string `json:"cells"`
		} `json:"rows"`
	}
	if err := json.Unmarshal(env.Data, &snap); err != nil {
		t.Fatalf("invalid snapshot: %v", err)
	}
	if snap.Screen != "groups" {
		t.Errorf("screen = %q, want groups", snap.Screen)
	}
	if len(snap.Rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(snap.Rows))
	}
	if env.Pagination == nil || env.Pagination.Page != 1 || env.Pagination.TotalPages != 2 {
		t.Errorf("pagination = %+v, want page 1 of 2", env.Pagination)
	}

	// The request ID reaches the bot API.
	if e.api.requestIDs[0] != env.RequestID {
		t.Errorf("upstream request id = %q, want %q", e.api.requestIDs[0], env.RequestID)
	}
}

func TestGetView_FilterDoesNotFetch(t *testing.T) {
	e := newTestEnv(t)
	e.get(t, "/api/v1/views/groups", true)

	// A filter on a mounted view is applied locally; only the refresh fetches.
	_, env := e.get(t, "/api/v1/views/groups?q=vip", true)
	var snap struct {
		FilterText string `json:"filter_text"`
		Rows       []struct {
			ID string `json:"id"`
		} `json:"rows"`
	}
	json.Unmarshal(env.Data, &snap)
	if snap.FilterText != "vip" {
		t.Errorf("filter_text = %q, want vip", snap.FilterText)
	}
	if len(snap.Rows) != 1 || snap.Rows[0].ID != "1" {
		t.Errorf("rows = %+v, want only group 1", snap.Rows)
	}
	if e.api.calls != 2 {
		t.Errorf("upstream calls = %d, want 2", e.api.calls)
	}
}

func TestGetView_Errors(t *testing.T) {
	tests := []struct {
		name   string
		path   string
		authed bool
		status int
		code   model.ErrorCode
	}{
		{"no session", "/api/v1/views/groups", false, http.StatusUnauthorized, model.ErrUnauthorized},
		{"unknown screen", "/api/v1/views/widgets", true, http.StatusNotFound, model.ErrNotFound},
		{"page out of range", "/api/v1/views/groups?page=9", true, http.StatusBadRequest, model.ErrValidation},
		{"bad page", "/api/v1/views/groups?page=x", true, http.StatusBadRequest, model.ErrValidation},
		{"unknown column", "/api/v1/views/groups?sort=nope", true, http.StatusBadRequest, model.ErrValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEnv(t)
			w, env := e.get(t, tt.path, tt.authed)
			if w.Code != tt.status {
				t.Fatalf("status = %d, want %d, body=%s", w.Code, tt.status, w.Body.String())
			}
			if env.Error == nil || env.Error.Code != tt.code {
				t.Errorf("error = %+v, want code %s", env.Error, tt.code)
			}
		})
	}
}

func TestGetView_UpstreamUnauthorized(t *testing.T) {
	e := newTestEnv(t)
	e.api.status = http.StatusUnauthorized

	w, env := e.get(t, "/api/v1/views/groups", true)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
	if env.Error == nil || env.Error.Code != model.ErrUnauthorized {
		t.Errorf("error = %+v, want UNAUTHORIZED", env.Error)
	}

	sess, err := e.store.GetSession(context.Background(), e.sess.ID)
	if err != nil {
		t.Fatalf("GetSession failed: %v", err)
	}
	if sess != nil {
		t.Error("expected session to be invalidated")
	}
}

func TestGetView_UpstreamFailure(t *testing.T) {
	e := newTestEnv(t)
	e.api.status = http.StatusInternalServerError

	w, env := e.get(t, "/api/v1/views/groups", true)
	if w.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", w.Code)
	}
	if env.Error == nil || env.Error.Code != model.ErrUpstream {
		t.Errorf("error = %+v, want UPSTREAM_ERROR", env.Error)
	}
}

func TestGetView_FailedRefreshKeepsRows(t *testing.T) {
	e := newTestEnv(t)
	if w, _ := e.get(t, "/api/v1/views/groups", true); w.Code != http.StatusOK {
		t.Fatalf("first load status = %d, want 200", w.Code)
	}

	e.api.mu.Lock()
	e.api.status = http.StatusInternalServerError
	e.api.mu.Unlock()

	w, env := e.get(t, "/api/v1/views/groups", true)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	var snap struct {
		Rows    []json.RawMessage `json:"rows"`
		Settled bool              `json:"settled"`
		Error   string            `json:"error"`
	}
	if err := json.Unmarshal(env.Data, &snap); err != nil {
		t.Fatalf("decode snapshot: %v", err)
	}
	if len(snap.Rows) != 2 || !snap.Settled {
		t.Errorf("rows = %d settled = %v, want 2 rows from the earlier load", len(snap.Rows), snap.Settled)
	}
	if snap.Error == "" {
		t.Error("expected the failed refresh to be reported")
	}
}

func TestListAudit(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	for _, action := range []string{"create", "delete"} {
		if err := e.store.RecordAudit(ctx, &model.AuditEntry{
			SessionID: e.sess.ID,
			Username:  e.sess.Username,
			Action:    action,
			Entity:    "group",
			EntityID:  "1",
			Status:    "ok",
		}); err != nil {
			t.Fatalf("RecordAudit failed: %v", err)
		}
	}

	w, env := e.get(t, "/api/v1/audit?limit=1", true)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	var entries []model.AuditEntry
	if err := json.Unmarshal(env.Data, &entries); err != nil {
		t.Fatalf("invalid entries: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("entries = %d, want 1", len(entries))
	}

	w, _ = e.get(t, "/api/v1/audit?limit=0", true)
	if w.Code != http.StatusBadRequest {
		t.Errorf("limit=0 status = %d, want 400", w.Code)
	}
}

func TestCORS(t *testing.T) {
	e := newTestEnv(t)

	req := httptest.NewRequest("OPTIONS", "/api/v1/views/groups", nil)
	req.Header.Set("Origin", "https://ops.example.com")
	req.Header.Set("Access-Control-Request-Method", "GET")
	w := httptest.NewRecorder()
	e.srv.ServeHTTP(w, req)

	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "https://ops.example.com" {
		t.Errorf("Allow-Origin = %q, want https://ops.example.com", got)
	}
	if got := w.Header().Get("Access-Control-Allow-Credentials"); got != "true" {
		t.Errorf("Allow-Credentials = %q, want true", got)
	}

	req = httptest.NewRequest("GET", "/api/v1/health", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	w = httptest.NewRecorder()
	e.srv.ServeHTTP(w, req)
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("Allow-Origin for unknown origin = %q, want empty", got)
	}
}

func TestUIMounted(t *testing.T) {
	e := newTestEnv(t)
	w, _ := e.get(t, "/groups", false)
	if w.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303", w.Code)
	}
	if loc := w.Header().Get("Location"); loc != "/login" {
		t.Errorf("Location = %q, want /login", loc)
	}
}

func TestRequestIDFromClient(t *testing.T) {
	e := newTestEnv(t)

	tests := []struct {
		name   string
		header string
		keep   bool
	}{
		{"kept", "script-42", true},
		{"unsafe replaced", "bad id\n", false},
		{"too long replaced", strings.Repeat("x", maxRequestIDLen+1), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/api/v1/health", nil)
			req.Header.Set("X-Request-ID", tt.header)
			w := httptest.NewRecorder()
			e.srv.ServeHTTP(w, req)

			got := w.Header().Get("X-Request-ID")
			if tt.keep && got != tt.header {
				t.Errorf("X-Request-ID = %q, want %q", got, tt.header)
			}
			if !tt.keep && !strings.HasPrefix(got, "req_") {
				t.Errorf("X-Request-ID = %q, want generated id", got)
			}
		})
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   model.ErrorCode
	}{
		{"no session", ui.ErrNoSession, http.StatusUnauthorized, model.ErrUnauthorized},
		{"not authenticated", botapi.WrapError("group.list", botapi.ErrNotAuthenticated), http.StatusUnauthorized, model.ErrUnauthorized},
		{"rejected token", &botapi.StatusError{StatusCode: http.StatusUnauthorized}, http.StatusUnauthorized, model.ErrUnauthorized},
		{"upstream", &botapi.StatusError{StatusCode: http.StatusBadGateway}, http.StatusBadGateway, model.ErrUpstream},
		{"internal", errors.New("disk full"), http.StatusInternalServerError, model.ErrInternal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, apiErr := classify(tt.err)
			if status != tt.status || apiErr.Code != tt.code {
				t.Errorf("classify = %d %s, want %d %s", status, apiErr.Code, tt.status, tt.code)
			}
		})
	}
}
