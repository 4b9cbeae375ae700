package generator

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"recipe-assistant/internal/model"
)

// Schema is a JSON object schema split into the parts tool-style APIs ask for
// separately. Closed forbids properties beyond Properties.
type Schema struct {
	Properties map[string]any
	Required   []string
	Closed     bool
}

// RecipeSchema describes the answer expected from the service.
func RecipeSchema() Schema {
	stringList := func(desc string) map[string]any {
		return map[string]any{
			"type":        "array",
			"description": desc,
			"minItems":    1,
			"items":       map[string]any{"type": "string"},
		}
	}
	return Schema{
		Properties: map[string]any{
			"recipeName":   map[string]any{"type": "string", "description": "Name of the dish"},
			"description":  map[string]any{"type": "string", "description": "Short description of the dish"},
			"ingredients":  stringList("Ingredients with quantities, in order of use"),
			"instructions": stringList("Preparation steps, in order"),
		},
		Required: []string{"recipeName", "description", "ingredients", "instructions"},
		Closed:   true,
	}
}

// wireRecipe mirrors the schema. Pointers and nil slices tell a missing field
// apart from an empty one.
type wireRecipe struct {
	RecipeName   *string  `json:"recipeName"`
	Description  *string  `json:"description"`
	Ingredients  []string `json:"ingredients"`
	Instructions []string `json:"instructions"`
}

// ParseRecipe decodes raw as exactly one JSON object matching RecipeSchema.
// Every violation is reported as an ErrInvalidResponse *GenerationError.
func ParseRecipe(raw string) (model.Recipe, error) {
	if strings.TrimSpace(raw) == "" {
		return model.Recipe{}, invalidResponse(errors.New("empty response"))
	}

	dec := json.NewDecoder(strings.NewReader(raw))
	dec.DisallowUnknownFields()

	var wire wireRecipe
	if err := dec.Decode(&wire); err != nil {
		return model.Recipe{}, invalidResponse(fmt.Errorf("decode: %w", err))
	}
	if _, err := dec.Token(); err != io.EOF {
		return model.Recipe{}, invalidResponse(errors.New("unexpected data after the JSON object"))
	}

	var missing []string
	if wire.RecipeName == nil {
		missing = append(missing, "recipeName")
	}
	if wire.Description == nil {
		missing = append(missing, "description")
	}
	if wire.Ingredients == nil {
		missing = append(missing, "ingredients")
	}
	if wire.Instructions == nil {
		missing = append(missing, "instructions")
	}
	if len(missing) > 0 {
		return model.Recipe{}, invalidResponse(fmt.Errorf("missing required fields: %s", strings.Join(missing, ", ")))
	}

	recipe := model.Recipe{
		Name:         strings.TrimSpace(*wire.RecipeName),
		Description:  strings.TrimSpace(*wire.Description),
		Ingredients:  trimAll(wire.Ingredients),
		Instructions: trimAll(wire.Instructions),
	}
	if err := recipe.Validate(); err != nil {
		return model.Recipe{}, invalidResponse(err)
	}
	return recipe, nil
}

func trimAll(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = strings.TrimSpace(s)
	}
	return out
}
