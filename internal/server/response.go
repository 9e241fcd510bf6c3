package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/me/botadmin/internal/listview"
	"github.com/me/botadmin/internal/ui"
	"github.com/me/botadmin/pkg/botapi"
	"github.com/me/botadmin/pkg/model"
)

// requestID generates a unique request identifier.
func requestID() string {
	return "req_" + uuid.New().String()[:8]
}

// respondOK writes a success response with the standard envelope.
func respondOK(w http.ResponseWriter, r *http.Request, data any) {
	respondJSON(w, r, http.StatusOK, data, nil, nil)
}

// respondList writes a success response with pagination.
func respondList(w http.ResponseWriter, r *http.Request, data any, pg *model.Pagination) {
	respondJSON(w, r, http.StatusOK, data, pg, nil)
}

// respondError writes an error response with the standard envelope.
func respondError(w http.ResponseWriter, r *http.Request, status int, apiErr *model.APIError) {
	respondJSON(w, r, status, nil, nil, apiErr)
}

// respondErr maps err onto a status and error code.
func (s *Server) respondErr(w http.ResponseWriter, r *http.Request, err error) {
	status, apiErr := classify(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("api request failed", "path", r.URL.Path, "error", err,
			"request_id", RequestIDFromContext(r.Context()))
	}
	respondError(w, r, status, apiErr)
}

func classify(err error) (int, *model.APIError) {
	switch {
	case errors.Is(err, ui.ErrNoSession), errors.Is(err, botapi.ErrNotAuthenticated):
		return http.StatusUnauthorized, model.NewUnauthorizedError("valid session required")
	case botapi.IsUnauthorized(err):
		return http.StatusUnauthorized, model.NewUnauthorizedError("bot API rejected the session token")
	case errors.Is(err, listview.ErrPageOutOfRange), errors.Is(err, listview.ErrUnknownColumn):
		return http.StatusBadRequest, model.NewValidationError(err.Error())
	}
	var se *botapi.StatusError
	var fe *listview.FetchError
	if errors.As(err, &se) || errors.As(err, &fe) {
		return http.StatusBadGateway, model.NewUpstreamError(err)
	}
	return http.StatusInternalServerError, &model.APIError{Code: model.ErrInternal, Message: "internal error"}
}

func respondJSON(w http.ResponseWriter, r *http.Request, status int, data any, pg *model.Pagination, apiErr *model.APIError) {
	resp := model.Response{
		Status:     "ok",
		RequestID:  RequestIDFromContext(r.Context()),
		Timestamp:  time.Now().UTC(),
		Data:       data,
		Pagination: pg,
		Error:      apiErr,
	}
	if apiErr != nil {
		resp.Status = "error"
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(resp)
}
