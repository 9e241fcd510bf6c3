package server

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/me/botadmin/internal/ui"
	"github.com/me/botadmin/pkg/model"
)

// respondUnauthenticated answers API requests that carry no valid session.
func (s *Server) respondUnauthenticated(w http.ResponseWriter, r *http.Request) {
	s.respondErr(w, r, ui.ErrNoSession)
}

// handleGetView returns the caller's list snapshot for a screen. The view is
// shared with the HTML UI of the same session.
func (s *Server) handleGetView(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "screen")

	snap, err := s.ui.ListState(r.Context(), name, r.URL.Query(), true)
	if errors.Is(err, ui.ErrUnknownScreen) {
		respondError(w, r, http.StatusNotFound, model.NewNotFoundError("screen", name))
		return
	}
	if err != nil {
		s.respondErr(w, r, err)
		return
	}

	switch {
	case snap.Unauthorized:
		respondError(w, r, http.StatusUnauthorized, model.NewUnauthorizedError("bot API rejected the session token"))
		return
	case snap.Err != "" && !snap.Settled:
		respondError(w, r, http.StatusBadGateway, model.NewUpstreamError(errors.New(snap.Err)))
		return
	}

	respondList(w, r, snap, &model.Pagination{
		Page:       snap.PageNumber,
		PageSize:   snap.PageSize,
		TotalPages: snap.TotalPages,
	})
}

func (s *Server) handleListAudit(w http.ResponseWriter, r *http.Request) {
	limit := 100
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			respondError(w, r, http.StatusBadRequest, model.NewValidationError("invalid limit",
				model.FieldError{Field: "limit", Message: "must be a positive integer"}))
			return
		}
		limit = n
	}

	entries, err := s.store.ListAudit(r.Context(), limit)
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	if entries == nil {
		entries = []*model.AuditEntry{}
	}
	respondOK(w, r, entries)
}
