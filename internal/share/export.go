package share

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/xuri/excelize/v2"
	"gopkg.in/yaml.v3"

	"recipe-assistant/internal/model"
)

// Format is an export/import file format.
type Format string

const (
	FormatJSON     Format = "json"
	FormatYAML     Format = "yaml"
	FormatTOML     Format = "toml"
	FormatMarkdown Format = "markdown"
	FormatXLSX     Format = "xlsx"
)

// ParseFormat accepts a format name or a common file extension.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), ".")) {
	case "", "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "toml":
		return FormatTOML, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	case "xlsx":
		return FormatXLSX, nil
	}
	return "", fmt.Errorf("unsupported format %q", s)
}

// Extension returns the file extension (without dot) for f.
func (f Format) Extension() string {
	if f == FormatMarkdown {
		return "md"
	}
	return string(f)
}

// ContentType returns the MIME type served for f.
func (f Format) ContentType() string {
	switch f {
	case FormatYAML:
		return "application/yaml"
	case FormatTOML:
		return "application/toml"
	case FormatMarkdown:
		return "text/markdown; charset=utf-8"
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "application/json"
}

// tomlDocument wraps the list; TOML has no top-level arrays.
type tomlDocument struct {
	Recipes []model.Recipe `toml:"recipes"`
}

// Export writes recipes to w in format f. JSON output is the same array the
// store persists.
func Export(w io.Writer, recipes []model.Recipe, f Format) error {
	if recipes == nil {
		recipes = []model.Recipe{}
	}
	switch f {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(recipes)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(recipes); err != nil {
			return err
		}
		return enc.Close()
	case FormatTOML:
		return toml.NewEncoder(w).Encode(tomlDocument{Recipes: recipes})
	case FormatMarkdown:
		for i, r := range recipes {
			if i > 0 {
				if _, err := io.WriteString(w, "\n---\n\n"); err != nil {
					return err
				}
			}
			if _, err := io.WriteString(w, Text(r)); err != nil {
				return err
			}
		}
		return nil
	case FormatXLSX:
		return writeXLSX(w, recipes)
	}
	return fmt.Errorf("unsupported format %q", f)
}

const xlsxSheet = "Recipes"

func writeXLSX(w io.Writer, recipes []model.Recipe) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", xlsxSheet); err != nil {
		return err
	}
	sw, err := f.NewStreamWriter(xlsxSheet)
	if err != nil {
		return err
	}
	header := []interface{}{"Name", "Description", "Ingredients", "Instructions", "Image"}
	if err := sw.SetRow("A1", header); err != nil {
		return err
	}
	for i, r := range recipes {
		image := r.ImageURL
		if strings.HasPrefix(image, "data:") {
			// Cells are limited to 32767 characters.
			image = "(embedded image)"
		}
		row := []interface{}{
			r.Name,
			r.Description,
			strings.Join(r.Ingredients, "\n"),
			strings.Join(r.Instructions, "\n"),
			image,
		}
		cellAddr, _ := excelize.CoordinatesToCellName(1, i+2) // A2, A3, ...
		if err := sw.SetRow(cellAddr, row); err != nil {
			return err
		}
	}
	if err := sw.Flush(); err != nil {
		return err
	}
	_, err = f.WriteTo(w)
	return err
}
