package templating

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"strings"
	"time"

	"recipe-assistant/internal/model"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// Page names accepted by Engine.Render.
const (
	PageIndex = "index.html"
	PageShare = "share.html"
)

// IndexData is what the main page renders.
type IndexData struct {
	Theme        model.Theme
	Count        int
	Recipes      []model.Recipe
	Current      *model.Recipe
	CurrentSaved bool
	CSRFToken    string
	Error        string
}

// ShareData is what the read-only share page renders.
type ShareData struct {
	Theme  model.Theme
	Recipe model.Recipe
	Body   template.HTML // Sanitised before it gets here
}

// Engine holds the parsed page templates. Every page is parsed together with
// layout.html and fills its "title" and "content" blocks.
type Engine struct {
	pages map[string]*template.Template
}

var funcs = template.FuncMap{
	"year":  func() int { return time.Now().Year() },
	"lines": func(items []string) string { return strings.Join(items, "\n") },
	"inc":   func(i int) int { return i + 1 },
}

// NewEngine parses the embedded templates.
func NewEngine() (*Engine, error) {
	e := &Engine{pages: map[string]*template.Template{}}
	for _, page := range []string{PageIndex, PageShare} {
		// 1. Parse the layout first
		ts, err := template.New("layout.html").Funcs(funcs).ParseFS(templateFS, "templates/layout.html")
		if err != nil {
			return nil, fmt.Errorf("error parsing layout template: %w", err)
		}
		// 2. Add the page, which defines the blocks the layout expects
		ts, err = ts.ParseFS(templateFS, "templates/"+page)
		if err != nil {
			return nil, fmt.Errorf("error parsing page template %s: %w", page, err)
		}
		e.pages[page] = ts
	}
	return e, nil
}

// Render executes page into w. The page is rendered to a buffer first so a
// template error never leaves half a page behind.
func (e *Engine) Render(w io.Writer, page string, data any) error {
	ts, ok := e.pages[page]
	if !ok {
		return fmt.Errorf("template %s not found", page)
	}
	var buf bytes.Buffer
	if err := ts.ExecuteTemplate(&buf, "layout.html", data); err != nil {
		return fmt.Errorf("failed to execute template %s: %w", page, err)
	}
	_, err := buf.WriteTo(w)
	return err
}

// Static returns the embedded stylesheet and script, rooted at the static dir.
func Static() fs.FS {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err) // the directory is embedded at build time
	}
	return sub
}
