package main

import (
	"context"
	"net/http"

	"github.com/justinas/nosurf"

	"recipe-assistant/internal/recipemanager"
)

// sessionCookie carries the session ID that selects a recipe manager.
const sessionCookie = "recipe_session"

type contextKey string

const managerKey contextKey = "manager"

// session attaches the caller's recipe manager to the request context,
// issuing a new session cookie when the request has none.
func (app *application) session(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var id string
		if c, err := r.Cookie(sessionCookie); err == nil {
			id = c.Value
		}
		newID, m := app.sessions.Get(id)
		if newID != id {
			http.SetCookie(w, &http.Cookie{
				Name:     sessionCookie,
				Value:    newID,
				Path:     "/",
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
			})
		}
		ctx := context.WithValue(r.Context(), managerKey, m)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// manager returns the session's manager set by the session middleware.
func manager(r *http.Request) *recipemanager.Manager {
	m, _ := r.Context().Value(managerKey).(*recipemanager.Manager)
	return m
}

// csrf protects form posts with nosurf's double-submit token.
func (app *application) csrf(next http.Handler) http.Handler {
	h := nosurf.New(next)
	h.SetBaseCookie(http.Cookie{
		HttpOnly: true,
		Path:     "/",
		SameSite: http.SameSiteLaxMode,
	})
	h.SetFailureHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		app.logger.Warn("CSRF check failed", "path", r.URL.Path, "reason", nosurf.Reason(r))
		http.Error(w, "Forbidden - invalid CSRF token", http.StatusForbidden)
	}))
	return h
}
