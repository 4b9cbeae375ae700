package templating

import (
	"bytes"
	"html/template"
	"io/fs"
	"strings"
	"testing"

	"recipe-assistant/internal/model"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	e, err := NewEngine()
	if err != nil {
		t.Fatalf("NewEngine() failed: %v", err)
	}
	return e
}

func TestRenderIndexEmpty(t *testing.T) {
	e := newTestEngine(t)

	var buf bytes.Buffer
	err := e.Render(&buf, PageIndex, IndexData{Theme: model.ThemeLight, CSRFToken: "tok123"})
	if err != nil {
		t.Fatalf("Render() failed: %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		`class="theme-light"`,
		`name="csrf_token" value="tok123"`,
		`value="dark">Dark mode`,
		"No saved recipes yet.",
		`id="current" hidden`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("index page missing %q", want)
		}
	}
}

func TestRenderIndexWithCurrent(t *testing.T) {
	e := newTestEngine(t)
	current := model.Recipe{
		Name:         "Soup <b>",
		Description:  "Hot",
		Ingredients:  []string{"Water"},
		Instructions: []string{"Boil"},
	}
	data := IndexData{
		Theme:        model.ThemeDark,
		Count:        1,
		Recipes:      []model.Recipe{current},
		Current:      &current,
		CurrentSaved: true,
	}

	var buf bytes.Buffer
	if err := e.Render(&buf, PageIndex, data); err != nil {
		t.Fatalf("Render() failed: %v", err)
	}
	out := buf.String()

	if strings.Contains(out, "Soup <b>") {
		t.Error("recipe name was not escaped")
	}
	for _, want := range []string{
		`class="theme-dark"`,
		"<h1>Soup &lt;b&gt;</h1>",
		"<li>Water</li>",
		`id="save-button" disabled`,
		`href="/share/Soup%20%3cb%3e"`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("index page missing %q", want)
		}
	}
}

func TestRenderShare(t *testing.T) {
	e := newTestEngine(t)
	var buf bytes.Buffer
	err := e.Render(&buf, PageShare, ShareData{
		Theme:  model.ThemeLight,
		Recipe: model.Recipe{Name: "Stew"},
		Body:   template.HTML("<h1>Stew</h1>"),
	})
	if err != nil {
		t.Fatalf("Render() failed: %v", err)
	}
	if !strings.Contains(buf.String(), "<title>Stew | Recipe Assistant</title>") {
		t.Errorf("share page title missing: %s", buf.String())
	}
	if !strings.Contains(buf.String(), "<h1>Stew</h1>") {
		t.Error("share page body missing")
	}
}

func TestRenderUnknownPage(t *testing.T) {
	e := newTestEngine(t)
	if err := e.Render(&bytes.Buffer{}, "missing.html", nil); err == nil {
		t.Error("Render() of unknown page succeeded, expected error")
	}
}

func TestStaticAssets(t *testing.T) {
	for _, name := range []string{"app.css", "app.js"} {
		if _, err := fs.Stat(Static(), name); err != nil {
			t.Errorf("static asset %s missing: %v", name, err)
		}
	}
}

func TestRenderIndexCurrentImage(t *testing.T) {
	e := newTestEngine(t)
	current := model.Recipe{Name: "Soup", Ingredients: []string{"Water"}, Instructions: []string{"Boil"}}

	var buf bytes.Buffer
	if err := e.Render(&buf, PageIndex, IndexData{Theme: model.ThemeLight, Current: &current}); err != nil {
		t.Fatalf("Render() failed: %v", err)
	}
	if strings.Contains(buf.String(), `<img src=`) {
		t.Error("image tag rendered for a recipe without image")
	}

	current.ImageURL = "https://example.com/soup.jpg"
	buf.Reset()
	if err := e.Render(&buf, PageIndex, IndexData{Theme: model.ThemeLight, Current: &current}); err != nil {
		t.Fatalf("Render() failed: %v", err)
	}
	if !strings.Contains(buf.String(), `<img src="https://example.com/soup.jpg" alt="Soup">`) {
		t.Errorf("image tag missing: %s", buf.String())
	}
}
