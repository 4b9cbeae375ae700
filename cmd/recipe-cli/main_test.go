package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"recipe-assistant/internal/importer"
	"recipe-assistant/internal/model"
)

// runCLI executes one invocation against the storage in dir.
func runCLI(t *testing.T, dir, stdin string, args ...string) (string, error) {
	t.Helper()
	root, env := newRootCmd()
	defer env.close()

	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(append([]string{"--storage", "file", "--path", dir, "--generator", "static"}, args...))
	err := root.Execute()
	return out.String(), err
}

func listNames(t *testing.T, dir string) []string {
	t.Helper()
	out, err := runCLI(t, dir, "", "list", "--json")
	require.NoError(t, err)
	var recipes []model.Recipe
	require.NoError(t, json.Unmarshal([]byte(out), &recipes))
	names := make([]string, 0, len(recipes))
	for _, r := range recipes {
		names = append(names, r.Name)
	}
	return names
}

func TestGenerateAndList(t *testing.T) {
	dir := t.TempDir()

	out, err := runCLI(t, dir, "", "generate", "tomato", "pasta")
	require.NoError(t, err)
	assert.Contains(t, out, "Tomato Pasta")
	assert.Empty(t, listNames(t, dir), "generate without --save must not store")

	_, err = runCLI(t, dir, "", "generate", "pasta", "--save")
	require.NoError(t, err)
	assert.Equal(t, []string{"Tomato Pasta"}, listNames(t, dir))

	_, err = runCLI(t, dir, "", "generate", "pasta", "--save")
	assert.ErrorContains(t, err, "already exists")

	_, err = runCLI(t, dir, "", "generate", "pasta", "--difficulty", "extreme")
	assert.Error(t, err)
}

func TestListEmpty(t *testing.T) {
	out, err := runCLI(t, t.TempDir(), "", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "No saved recipes yet.")
}

func TestShowEditDelete(t *testing.T) {
	dir := t.TempDir()
	_, err := runCLI(t, dir, "", "generate", "pasta", "--save")
	require.NoError(t, err)

	out, err := runCLI(t, dir, "", "show", "tomato pasta", "--markdown")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "# Tomato Pasta\n"))

	_, err = runCLI(t, dir, "", "show", "Nothing")
	assert.Error(t, err)

	_, err = runCLI(t, dir, "", "edit", "Tomato Pasta", "--name", "Pasta Pomodoro", "--ingredient", "Pasta", "--ingredient", "Tomatoes")
	require.NoError(t, err)
	out, err = runCLI(t, dir, "", "show", "Pasta Pomodoro", "--json")
	require.NoError(t, err)
	var edited model.Recipe
	require.NoError(t, json.Unmarshal([]byte(out), &edited))
	assert.Equal(t, []string{"Pasta", "Tomatoes"}, edited.Ingredients)
	assert.NotEmpty(t, edited.Instructions, "untouched fields keep their values")

	out, err = runCLI(t, dir, "n\n", "delete", "Pasta Pomodoro")
	require.NoError(t, err)
	assert.Contains(t, out, "Cancelled.")
	assert.Equal(t, []string{"Pasta Pomodoro"}, listNames(t, dir))

	// A different case is not an exact match and removes nothing.
	out, err = runCLI(t, dir, "", "delete", "--yes", "pasta pomodoro")
	require.NoError(t, err)
	assert.Contains(t, out, "No saved recipe is named exactly")
	assert.Equal(t, []string{"Pasta Pomodoro"}, listNames(t, dir))

	out, err = runCLI(t, dir, "y\n", "delete", "Pasta Pomodoro")
	require.NoError(t, err)
	assert.Contains(t, out, "Deleted Pasta Pomodoro (0 left)")
	assert.Empty(t, listNames(t, dir))
}

func TestTheme(t *testing.T) {
	dir := t.TempDir()

	out, err := runCLI(t, dir, "", "theme")
	require.NoError(t, err)
	assert.Equal(t, "light\n", out)

	out, err = runCLI(t, dir, "", "theme", "dark")
	require.NoError(t, err)
	assert.Equal(t, "dark\n", out)

	_, err = runCLI(t, dir, "", "theme", "sepia")
	assert.Error(t, err)
}

func TestExportImportRoundTrip(t *testing.T) {
	src := t.TempDir()
	_, err := runCLI(t, src, "", "generate", "pasta", "--save")
	require.NoError(t, err)

	exportFile := filepath.Join(t.TempDir(), "recipes.yaml")
	_, err = runCLI(t, src, "", "export", "--output", exportFile)
	require.NoError(t, err)
	data, err := os.ReadFile(exportFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Tomato Pasta")

	_, err = runCLI(t, src, "", "export", "--format", "xlsx")
	assert.ErrorContains(t, err, "--output")

	dst := t.TempDir()
	out, err := runCLI(t, dst, "", "import", exportFile)
	require.NoError(t, err)
	assert.Contains(t, out, "Imported 1 recipe(s)")
	assert.Equal(t, []string{"Tomato Pasta"}, listNames(t, dst))

	out, err = runCLI(t, dst, "", "import", exportFile)
	require.NoError(t, err)
	assert.Contains(t, out, "Skipped")
}

func TestImportURL(t *testing.T) {
	page := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body><h1>Pancakes</h1><ul><li>Flour</li><li>Milk</li></ul><ol><li>Mix</li><li>Fry</li></ol></body></html>`))
	}))
	defer page.Close()

	dir := t.TempDir()
	_, err := runCLI(t, dir, "", "import", "--url", page.URL)
	assert.ErrorIs(t, err, importer.ErrBlockedAddress)
	assert.Empty(t, listNames(t, dir))

	t.Setenv("RECIPES_IMPORTER_ALLOW_PRIVATE", "true")
	_, err = runCLI(t, dir, "", "import", "--url", page.URL)
	require.NoError(t, err)
	assert.Equal(t, []string{"Pancakes"}, listNames(t, dir))
}

func TestShareHTML(t *testing.T) {
	dir := t.TempDir()
	_, err := runCLI(t, dir, "", "generate", "pasta", "--save")
	require.NoError(t, err)

	page := filepath.Join(t.TempDir(), "pasta.html")
	_, err = runCLI(t, dir, "", "share", "Tomato Pasta", "--output", page)
	require.NoError(t, err)
	html, err := os.ReadFile(page)
	require.NoError(t, err)
	assert.Contains(t, string(html), "<h1>Tomato Pasta</h1>")

	_, err = runCLI(t, dir, "", "share", "Tomato Pasta", "--open")
	assert.Error(t, err)
}

func TestRenderRecipeImage(t *testing.T) {
	r := model.Recipe{Name: "Soup", Ingredients: []string{"Water"}, Instructions: []string{"Boil"}}
	assert.NotContains(t, renderRecipe(r), "photo")

	r.ImageURL = "data:image/png;base64,AAAA"
	out := renderRecipe(r)
	assert.Contains(t, out, "(photo attached)")
	assert.NotContains(t, out, "base64")

	r.ImageURL = "https://example.com/soup.jpg"
	assert.Contains(t, renderRecipe(r), "https://example.com/soup.jpg")
}
