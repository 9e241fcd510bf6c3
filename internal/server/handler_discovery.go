package server

import (
	"net/http"
	"slices"
	"strings"

	"github.com/go-chi/chi/v5"
)

const apiPrefix = "/api/v1"

// endpointDocs describes the JSON endpoints listed by discovery.
var endpointDocs = map[string]string{
	apiPrefix + "/views/{screen}": "List snapshot of a screen shared with the web UI. Query: page, q, sort, desc",
	apiPrefix + "/audit":          "Recent operator actions. Query: limit",
	apiPrefix + "/health":         "Server health and version",
}

type endpointInfo struct {
	Path        string   `json:"path"`
	Methods     []string `json:"methods"`
	Description string   `json:"description"`
}

type discoveryResponse struct {
	Name        string         `json:"name"`
	Version     string         `json:"version"`
	Description string         `json:"description"`
	Screens     []string       `json:"screens"`
	Endpoints   []endpointInfo `json:"endpoints"`
}

func (s *Server) handleDiscovery(w http.ResponseWriter, r *http.Request) {
	respondOK(w, r, discoveryResponse{
		Name:        "botadmin API",
		Version:     "v1",
		Description: "Bot admin panel: list state of the operator's screens",
		Screens:     s.ui.ScreenNames(),
		Endpoints:   s.endpoints(),
	})
}

// endpoints walks the router for documented API routes.
func (s *Server) endpoints() []endpointInfo {
	methods := make(map[string][]string)
	chi.Walk(s.router, func(method, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		route = strings.TrimSuffix(route, "/")
		if _, ok := endpointDocs[route]; ok {
			methods[route] = append(methods[route], method)
		}
		return nil
	})

	out := make([]endpointInfo, 0, len(methods))
	for path, ms := range methods {
		slices.Sort(ms)
		out = append(out, endpointInfo{Path: path, Methods: ms, Description: endpointDocs[path]})
	}
	slices.SortFunc(out, func(a, b endpointInfo) int { return strings.Compare(a.Path, b.Path) })
	return out
}
