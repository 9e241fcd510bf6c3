package server

import (
	"net/http"
	"runtime"
	"time"
)

// Version is the server version reported by /api/v1/health.
const Version = "0.1.0"

type healthResponse struct {
	Status    string `json:"status"`
	Version   string `json:"version"`
	GoVersion string `json:"go_version"`
	Uptime    string `json:"uptime"`
	Store     string `json:"store"`
	BotAPI    string `json:"bot_api"`
	Views     int    `json:"views"`
}

// handleHealth checks the session store. The bot API is only named, not
// called, since every call to it needs an operator token.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{
		Status:    "healthy",
		Version:   Version,
		GoVersion: runtime.Version(),
		Uptime:    time.Since(s.startTime).Round(time.Second).String(),
		Store:     "ok",
		BotAPI:    s.config.API.BaseURL,
		Views:     s.ui.Views().Len(),
	}
	if _, err := s.store.ListAudit(r.Context(), 1); err != nil {
		s.logger.Warn("health: store check failed", "error", err)
		resp.Status = "degraded"
		resp.Store = "unavailable"
	}
	respondOK(w, r, resp)
}
