package main

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"recipe-assistant/internal/templating"
)

// routes sets up the HTTP router for the application.
func (app *application) routes() http.Handler {
	r := chi.NewRouter()

	// --- Middleware ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(120 * time.Second)) // Generation can take a while

	// --- Static files ---
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(templating.Static()))))

	// --- Pages (form posts are CSRF protected) ---
	r.Group(func(r chi.Router) {
		r.Use(app.csrf)
		r.Use(app.session)
		r.Get("/", app.indexHandler)
		r.Post("/theme", app.themeFormHandler)
	})
	r.Get("/share/{name}", app.sharePageHandler)

	// --- JSON API ---
	r.Route("/api", func(r chi.Router) {
		r.Get("/theme", app.getThemeHandler)
		r.Put("/theme", app.putThemeHandler)

		// Read-only views of the store need no session.
		r.Get("/recipes", app.listHandler)
		r.Get("/recipes/count", app.countHandler)
		r.Get("/recipes/export", app.exportHandler)
		r.Get("/recipes/{name}/share", app.shareTextHandler)

		r.Group(func(r chi.Router) {
			r.Use(app.session)

			r.Post("/generate", app.generateHandler)
			r.Post("/import", app.importHandler)

			r.Get("/current", app.currentHandler)
			r.Post("/current/save", app.saveCurrentHandler)
			r.Post("/current/image", app.attachImageHandler)

			r.Post("/recipes/{name}/view", app.viewHandler)
			r.Put("/recipes/{name}", app.editHandler)
			r.Delete("/recipes/{name}", app.deleteHandler)
		})
	})

	return r
}
