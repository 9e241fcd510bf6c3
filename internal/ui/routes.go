package ui

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all UI routes on the given router.
func (ui *UI) RegisterRoutes(r chi.Router) {
	// Public routes (no auth required).
	r.Get("/login", ui.HandleLogin)
	r.Post("/login", ui.HandleLoginPost)
	r.Post("/signup", ui.HandleSignupPost)
	r.Get("/logout", ui.HandleLogout)

	// Protected routes (auth required).
	r.Group(func(r chi.Router) {
		r.Use(ui.AuthMiddleware)

		r.Get("/", ui.HandleDashboard)
		r.Get("/audit", ui.HandleAudit)
		r.Post("/messages/media", ui.HandleMediaUpload)

		// Entity screens: users, messages, actions, mailings, groups, responses.
		r.Route("/{screen}", func(r chi.Router) {
			r.Get("/", ui.HandleList)
			r.Get("/table", ui.HandleTable)
			r.Get("/new", ui.HandleForm)
			r.Post("/new", ui.HandleFormPost)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", ui.HandleForm)
				r.Post("/", ui.HandleFormPost)
				r.Delete("/", ui.HandleDelete)
				r.Post("/delete", ui.HandleDelete)
			})
		})
	})
}

// StaticHandler returns an http.Handler that serves static files from the given directory.
func StaticHandler(dir string) http.Handler {
	fs := http.FileServer(http.Dir(dir))
	return http.StripPrefix("/static/", fs)
}
