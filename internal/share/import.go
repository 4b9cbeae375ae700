package share

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"recipe-assistant/internal/model"
	"recipe-assistant/internal/storage"
)

// Decode reads a recipe list written by Export in format f. Only the data
// formats (json, yaml, toml) can be read back.
func Decode(r io.Reader, f Format) ([]model.Recipe, error) {
	var recipes []model.Recipe
	switch f {
	case FormatJSON:
		if err := json.NewDecoder(r).Decode(&recipes); err != nil {
			return nil, fmt.Errorf("failed to decode json: %w", err)
		}
	case FormatYAML:
		if err := yaml.NewDecoder(r).Decode(&recipes); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("failed to decode yaml: %w", err)
		}
	case FormatTOML:
		var doc tomlDocument
		if _, err := toml.NewDecoder(r).Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode toml: %w", err)
		}
		recipes = doc.Recipes
	default:
		return nil, fmt.Errorf("cannot import from %q", f)
	}
	if recipes == nil {
		recipes = []model.Recipe{}
	}
	return recipes, nil
}

// Skipped describes a recipe that was not imported.
type Skipped struct {
	Name   string `json:"name"`
	Reason string `json:"reason"`
}

// ImportResult reports what Import did.
type ImportResult struct {
	Added   []string  `json:"added"`
	Skipped []Skipped `json:"skipped"`
}

// Import adds every complete recipe to store. Incomplete recipes and names
// that already exist are skipped and reported; any other store error aborts.
func Import(store storage.RecipeStore, recipes []model.Recipe) (ImportResult, error) {
	result := ImportResult{Added: []string{}, Skipped: []Skipped{}}
	for _, r := range recipes {
		if err := r.Validate(); err != nil {
			result.Skipped = append(result.Skipped, Skipped{Name: r.Name, Reason: err.Error()})
			continue
		}
		if err := store.Add(r); err != nil {
			if errors.Is(err, storage.ErrDuplicateName) {
				result.Skipped = append(result.Skipped, Skipped{Name: r.Name, Reason: storage.ErrDuplicateName.Error()})
				continue
			}
			return result, err
		}
		result.Added = append(result.Added, r.Name)
	}
	return result, nil
}
