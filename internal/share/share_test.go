package share

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"recipe-assistant/internal/model"
	"recipe-assistant/internal/storage"
)

func sampleRecipes() []model.Recipe {
	return []model.Recipe{
		{
			Name:         "Tomato Pasta",
			Description:  "Quick and red.",
			Ingredients:  []string{"Tomatoes", "Pasta"},
			Instructions: []string{"Boil pasta", "Add sauce"},
			ImageURL:     "https://example.com/pasta.jpg",
		},
		{
			Name:         "Toast",
			Ingredients:  []string{"Bread"},
			Instructions: []string{"Toast it"},
			ImageURL:     "data:image/png;base64,AAAA",
		},
	}
}

func TestText(t *testing.T) {
	text := Text(sampleRecipes()[0])

	assert.True(t, strings.HasPrefix(text, "# Tomato Pasta\n\nQuick and red.\n"))
	assert.Contains(t, text, "![Tomato Pasta](https://example.com/pasta.jpg)")
	assert.Contains(t, text, "## Ingredients\n\n- Tomatoes\n- Pasta\n")
	assert.Contains(t, text, "## Instructions\n\n1. Boil pasta\n2. Add sauce\n")

	toast := Text(sampleRecipes()[1])
	assert.NotContains(t, toast, "data:image")
}

func TestRenderHTMLSanitises(t *testing.T) {
	r := NewRenderer()

	html, err := r.Recipe(sampleRecipes()[0])
	require.NoError(t, err)
	assert.Contains(t, string(html), "<h1>Tomato Pasta</h1>")
	assert.Contains(t, string(html), "<li>Tomatoes</li>")
	assert.Contains(t, string(html), "<ol>")

	evil := model.Recipe{
		Name:         `Soup<script>alert("x")</script>`,
		Ingredients:  []string{`<img src=x onerror="alert(1)">Water`},
		Instructions: []string{"Boil"},
	}
	html, err = r.Recipe(evil)
	require.NoError(t, err)
	assert.NotContains(t, string(html), "<script")
	assert.NotContains(t, string(html), "onerror")

	empty, err := r.RenderHTML("  ")
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestParseFormat(t *testing.T) {
	cases := map[string]Format{
		"":         FormatJSON,
		"JSON":     FormatJSON,
		".yml":     FormatYAML,
		"toml":     FormatTOML,
		"md":       FormatMarkdown,
		"markdown": FormatMarkdown,
		"xlsx":     FormatXLSX,
	}
	for in, want := range cases {
		got, err := ParseFormat(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseFormat("csv")
	assert.Error(t, err)
	assert.Equal(t, "md", FormatMarkdown.Extension())
}

func TestExportDecodeDataFormats(t *testing.T) {
	for _, f := range []Format{FormatJSON, FormatYAML, FormatTOML} {
		t.Run(string(f), func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, Export(&buf, sampleRecipes(), f))

			got, err := Decode(&buf, f)
			require.NoError(t, err)
			assert.Equal(t, sampleRecipes(), got)
		})
	}
}

func TestExportJSONMatchesStorageFormat(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Export(&buf, []model.Recipe{{Name: "Soup", Ingredients: []string{"a"}, Instructions: []string{"b"}}}, FormatJSON))
	assert.Contains(t, buf.String(), `"name": "Soup"`)
	assert.NotContains(t, buf.String(), "imageUrl")

	buf.Reset()
	require.NoError(t, Export(&buf, nil, FormatJSON))
	assert.Equal(t, "[]\n", buf.String())
}

func TestExportMarkdown(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Export(&buf, sampleRecipes(), FormatMarkdown))
	out := buf.String()
	assert.Contains(t, out, "# Tomato Pasta")
	assert.Contains(t, out, "\n---\n\n# Toast")
}

func TestExportXLSX(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Export(&buf, sampleRecipes(), FormatXLSX))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(xlsxSheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"Name", "Description", "Ingredients", "Instructions", "Image"}, rows[0])
	assert.Equal(t, "Tomato Pasta", rows[1][0])
	assert.Equal(t, "Tomatoes\nPasta", rows[1][2])
	assert.Equal(t, "(embedded image)", rows[2][4])
}

func TestDecodeRejectsMarkdown(t *testing.T) {
	_, err := Decode(strings.NewReader("# Soup"), FormatMarkdown)
	assert.Error(t, err)
}

func TestImportSkipsDuplicatesAndIncomplete(t *testing.T) {
	store := storage.NewRecipes(storage.NewMemoryKV(), nil)
	require.NoError(t, store.Add(model.Recipe{Name: "toast", Ingredients: []string{"Bread"}, Instructions: []string{"Toast"}}))

	recipes := append(sampleRecipes(), model.Recipe{Name: "Empty"})
	result, err := Import(store, recipes)
	require.NoError(t, err)

	assert.Equal(t, []string{"Tomato Pasta"}, result.Added)
	require.Len(t, result.Skipped, 2)
	assert.Equal(t, "Toast", result.Skipped[0].Name)
	assert.Equal(t, storage.ErrDuplicateName.Error(), result.Skipped[0].Reason)
	assert.Equal(t, "Empty", result.Skipped[1].Name)

	all, err := store.List()
	require.NoError(t, err)
	assert.Len(t, all, 2)
}
