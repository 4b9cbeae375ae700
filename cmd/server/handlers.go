package main

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/justinas/nosurf"

	"recipe-assistant/internal/generator"
	"recipe-assistant/internal/importer"
	"recipe-assistant/internal/model"
	"recipe-assistant/internal/recipemanager"
	"recipe-assistant/internal/share"
	"recipe-assistant/internal/storage"
	"recipe-assistant/internal/templating"
)

// maxImageSize limits uploaded photos.
const maxImageSize = 5 << 20

// errImageRead is reported when an uploaded photo cannot be read.
var errImageRead = errors.New("could not read the image file")

// GenerateRequest is the body of POST /api/generate.
type GenerateRequest struct {
	Prompt     string `json:"prompt"`
	Difficulty string `json:"difficulty"`
	Wishes     string `json:"wishes"`
}

// ImportRequest is the body of POST /api/import.
type ImportRequest struct {
	URL string `json:"url"`
}

// CurrentResponse describes the session's current recipe.
type CurrentResponse struct {
	Recipe model.Recipe `json:"recipe"`
	Saved  bool         `json:"saved"`
}

type themePayload struct {
	Theme string `json:"theme"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (app *application) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		app.logger.Error("Error writing JSON response", "error", err)
	}
}

func (app *application) writeError(w http.ResponseWriter, status int, msg string) {
	app.writeJSON(w, status, errorResponse{Error: msg})
}

// storeError maps core errors to a status code and a user-facing message.
func (app *application) storeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, storage.ErrDuplicateName):
		app.writeError(w, http.StatusConflict, "A recipe with this name already exists.")
	case errors.Is(err, storage.ErrNotFound):
		app.writeError(w, http.StatusNotFound, "Recipe not found.")
	case errors.Is(err, recipemanager.ErrNoCurrent):
		app.writeError(w, http.StatusNotFound, "There is no current recipe.")
	case errors.Is(err, model.ErrEmptyName):
		app.writeError(w, http.StatusBadRequest, "The recipe needs a name.")
	default:
		app.logger.Error("Recipe store error", "error", err)
		app.writeError(w, http.StatusInternalServerError, "Something went wrong while accessing your recipes.")
	}
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, 1<<20))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// nameParam returns the decoded {name} path parameter.
func nameParam(r *http.Request) string {
	name := chi.URLParam(r, "name")
	if r.URL.RawPath != "" {
		if unescaped, err := url.PathUnescape(name); err == nil {
			return unescaped
		}
	}
	return name
}

// currentState reports the current recipe and whether its name is in the store.
func (app *application) currentState(m *recipemanager.Manager) (CurrentResponse, bool) {
	recipe, ok := m.Current()
	if !ok {
		return CurrentResponse{}, false
	}
	saved, err := m.IsCurrentSaved()
	if err != nil {
		app.logger.Error("Failed to check saved state", "name", recipe.Name, "error", err)
		saved = m.Saved()
	}
	return CurrentResponse{Recipe: recipe, Saved: saved}, true
}

// --- Pages ---

// indexHandler serves the main page.
func (app *application) indexHandler(w http.ResponseWriter, r *http.Request) {
	m := manager(r)
	data := templating.IndexData{CSRFToken: nosurf.Token(r)}

	theme, err := app.prefs.Theme()
	if err != nil {
		app.logger.Error("Failed to read theme", "error", err)
	}
	data.Theme = theme

	recipes, err := m.List()
	if err != nil {
		app.logger.Error("Failed to list recipes", "error", err)
		data.Error = "Your saved recipes could not be loaded."
	}
	data.Recipes = recipes
	data.Count = len(recipes)

	if current, ok := m.Current(); ok {
		data.Current = &current
		data.CurrentSaved, _ = m.IsCurrentSaved()
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := app.engine.Render(w, templating.PageIndex, data); err != nil {
		app.logger.Error("Error rendering index page", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

// themeFormHandler handles the theme toggle form.
func (app *application) themeFormHandler(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	theme, ok := model.ParseTheme(r.PostForm.Get("theme"))
	if !ok {
		http.Error(w, "Bad Request - unknown theme", http.StatusBadRequest)
		return
	}
	if err := app.prefs.SetTheme(theme); err != nil {
		app.logger.Error("Failed to save theme", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// sharePageHandler renders a saved recipe as a standalone page.
func (app *application) sharePageHandler(w http.ResponseWriter, r *http.Request) {
	recipe, err := app.findSaved(nameParam(r))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		app.logger.Error("Failed to load recipe for sharing", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	body, err := app.renderer.Recipe(recipe)
	if err != nil {
		app.logger.Error("Failed to render share page", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	theme, _ := app.prefs.Theme()

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := app.engine.Render(w, templating.PageShare, templating.ShareData{Theme: theme, Recipe: recipe, Body: body}); err != nil {
		app.logger.Error("Error rendering share page", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

func (app *application) findSaved(name string) (model.Recipe, error) {
	recipes, err := app.store.List()
	if err != nil {
		return model.Recipe{}, err
	}
	for _, r := range recipes {
		if model.SameName(r.Name, name) {
			return r, nil
		}
	}
	return model.Recipe{}, storage.ErrNotFound
}

// --- Theme API ---

func (app *application) getThemeHandler(w http.ResponseWriter, r *http.Request) {
	theme, err := app.prefs.Theme()
	if err != nil {
		app.logger.Error("Failed to read theme", "error", err)
	}
	app.writeJSON(w, http.StatusOK, themePayload{Theme: string(theme)})
}

func (app *application) putThemeHandler(w http.ResponseWriter, r *http.Request) {
	var req themePayload
	if err := decodeJSON(r, &req); err != nil {
		app.writeError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}
	theme, ok := model.ParseTheme(req.Theme)
	if !ok {
		app.writeError(w, http.StatusBadRequest, "Theme must be light or dark.")
		return
	}
	if err := app.prefs.SetTheme(theme); err != nil {
		app.logger.Error("Failed to save theme", "error", err)
		app.writeError(w, http.StatusInternalServerError, "The theme could not be saved.")
		return
	}
	app.writeJSON(w, http.StatusOK, themePayload{Theme: string(theme)})
}

// --- Current recipe API ---

// generateHandler asks the generator for a new current recipe.
func (app *application) generateHandler(w http.ResponseWriter, r *http.Request) {
	var req GenerateRequest
	if err := decodeJSON(r, &req); err != nil {
		app.writeError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}
	difficulty, err := model.ParseDifficulty(req.Difficulty)
	if err != nil {
		app.writeError(w, http.StatusBadRequest, "Difficulty must be easy, medium or hard.")
		return
	}

	m := manager(r)
	_, err = m.Generate(r.Context(), req.Prompt, difficulty, req.Wishes)
	if err != nil {
		switch {
		case errors.Is(err, generator.ErrEmptyPrompt):
			app.writeError(w, http.StatusBadRequest, "Please describe the dish you want to cook.")
		case errors.Is(err, generator.ErrInvalidResponse):
			app.writeError(w, http.StatusUnprocessableEntity, "The recipe service returned something that is not a recipe. Please try again.")
		case errors.Is(err, generator.ErrServiceFailure):
			app.writeError(w, http.StatusBadGateway, "The recipe service is not reachable right now. Please try again later.")
		default:
			app.logger.Error("Generation failed", "error", err)
			app.writeError(w, http.StatusInternalServerError, "Recipe generation failed.")
		}
		return
	}
	state, _ := app.currentState(m)
	app.writeJSON(w, http.StatusOK, state)
}

// importHandler scrapes a recipe from a web page and makes it current.
func (app *application) importHandler(w http.ResponseWriter, r *http.Request) {
	var req ImportRequest
	if err := decodeJSON(r, &req); err != nil || strings.TrimSpace(req.URL) == "" {
		app.writeError(w, http.StatusBadRequest, "Please provide the address of a recipe page.")
		return
	}

	recipe, err := app.importer.FetchURL(r.Context(), strings.TrimSpace(req.URL))
	if err != nil {
		if errors.Is(err, importer.ErrNoRecipe) {
			app.writeError(w, http.StatusUnprocessableEntity, "No recipe was found on that page.")
			return
		}
		if errors.Is(err, importer.ErrBlockedAddress) {
			app.logger.Warn("Import refused", "url", req.URL, "error", err)
			app.writeError(w, http.StatusBadRequest, "Recipes can only be imported from public web sites.")
			return
		}
		app.logger.Warn("Import failed", "url", req.URL, "error", err)
		app.writeError(w, http.StatusBadGateway, "The page could not be loaded.")
		return
	}

	m := manager(r)
	m.SetCurrent(recipe)
	state, _ := app.currentState(m)
	app.writeJSON(w, http.StatusOK, state)
}

func (app *application) currentHandler(w http.ResponseWriter, r *http.Request) {
	state, ok := app.currentState(manager(r))
	if !ok {
		app.writeError(w, http.StatusNotFound, "There is no current recipe.")
		return
	}
	app.writeJSON(w, http.StatusOK, state)
}

func (app *application) saveCurrentHandler(w http.ResponseWriter, r *http.Request) {
	m := manager(r)
	if err := m.SaveCurrent(); err != nil {
		app.storeError(w, err)
		return
	}
	state, _ := app.currentState(m)
	app.writeJSON(w, http.StatusCreated, state)
}

// attachImageHandler reads a multipart "image" upload into a data URI.
func (app *application) attachImageHandler(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxImageSize+(1<<20))
	dataURI, err := readImage(r)
	if err != nil {
		app.logger.Info("Image upload rejected", "error", err)
		app.writeError(w, http.StatusBadRequest, errImageRead.Error())
		return
	}

	m := manager(r)
	if _, err := m.AttachImage(dataURI); err != nil {
		app.storeError(w, err)
		return
	}
	state, _ := app.currentState(m)
	app.writeJSON(w, http.StatusOK, state)
}

func readImage(r *http.Request) (string, error) {
	if err := r.ParseMultipartForm(maxImageSize); err != nil {
		return "", fmt.Errorf("%w: %v", errImageRead, err)
	}
	file, _, err := r.FormFile("image")
	if err != nil {
		return "", fmt.Errorf("%w: %v", errImageRead, err)
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxImageSize+1))
	if err != nil {
		return "", fmt.Errorf("%w: %v", errImageRead, err)
	}
	if len(data) == 0 || len(data) > maxImageSize {
		return "", fmt.Errorf("%w: size %d", errImageRead, len(data))
	}
	contentType := http.DetectContentType(data)
	if !strings.HasPrefix(contentType, "image/") {
		return "", fmt.Errorf("%w: content type %s", errImageRead, contentType)
	}
	return "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}

// --- Saved recipes API ---

func (app *application) listHandler(w http.ResponseWriter, r *http.Request) {
	recipes, err := app.store.List()
	if err != nil {
		app.storeError(w, err)
		return
	}
	app.writeJSON(w, http.StatusOK, recipes)
}

func (app *application) countHandler(w http.ResponseWriter, r *http.Request) {
	recipes, err := app.store.List()
	if err != nil {
		app.storeError(w, err)
		return
	}
	app.writeJSON(w, http.StatusOK, map[string]int{"count": len(recipes)})
}

func (app *application) viewHandler(w http.ResponseWriter, r *http.Request) {
	m := manager(r)
	if _, err := m.View(nameParam(r)); err != nil {
		app.storeError(w, err)
		return
	}
	state, _ := app.currentState(m)
	app.writeJSON(w, http.StatusOK, state)
}

// editHandler commits the edit form for the recipe named in the path.
func (app *application) editHandler(w http.ResponseWriter, r *http.Request) {
	var fields model.EditFields
	if err := decodeJSON(r, &fields); err != nil {
		app.writeError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	m := manager(r)
	if _, err := m.CommitEdit(nameParam(r), fields); err != nil {
		app.storeError(w, err)
		return
	}
	state, _ := app.currentState(m)
	app.writeJSON(w, http.StatusOK, state)
}

func (app *application) deleteHandler(w http.ResponseWriter, r *http.Request) {
	if err := manager(r).Delete(nameParam(r)); err != nil {
		app.storeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// shareTextHandler returns the markdown share text of a saved recipe.
func (app *application) shareTextHandler(w http.ResponseWriter, r *http.Request) {
	recipe, err := app.findSaved(nameParam(r))
	if err != nil {
		app.storeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	io.WriteString(w, share.Text(recipe))
}

// exportHandler downloads all saved recipes in the requested format.
func (app *application) exportHandler(w http.ResponseWriter, r *http.Request) {
	format, err := share.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		app.writeError(w, http.StatusBadRequest, "Unsupported export format.")
		return
	}
	recipes, err := app.store.List()
	if err != nil {
		app.storeError(w, err)
		return
	}

	var buf bytes.Buffer
	if err := share.Export(&buf, recipes, format); err != nil {
		app.logger.Error("Export failed", "format", format, "error", err)
		app.writeError(w, http.StatusInternalServerError, "Export failed.")
		return
	}
	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="recipes.%s"`, format.Extension()))
	buf.WriteTo(w)
}
