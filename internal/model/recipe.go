package model

import (
	"errors"
	"fmt"
	"strings"
)

// Recipe is a single dish record. It is treated as a value: edits replace the
// whole record rather than mutating fields of a stored one.
type Recipe struct {
	Name         string   `json:"name" yaml:"name" toml:"name"`
	Description  string   `json:"description" yaml:"description" toml:"description"`
	Ingredients  []string `json:"ingredients" yaml:"ingredients" toml:"ingredients"`   // Display order
	Instructions []string `json:"instructions" yaml:"instructions" toml:"instructions"` // Execution order
	ImageURL     string   `json:"imageUrl,omitempty" yaml:"imageUrl,omitempty" toml:"imageUrl,omitempty"`
}

// Validation errors returned by Recipe.Validate.
var (
	ErrEmptyName         = errors.New("recipe name is empty")
	ErrNoIngredients     = errors.New("recipe has no ingredients")
	ErrNoInstructions    = errors.New("recipe has no instructions")
	ErrBlankListEntry    = errors.New("recipe list contains a blank entry")
	ErrUnknownDifficulty = errors.New("unknown difficulty")
)

// Validate reports whether the recipe is complete: a non-blank name and at
// least one non-blank ingredient and instruction.
func (r Recipe) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return ErrEmptyName
	}
	if len(r.Ingredients) == 0 {
		return ErrNoIngredients
	}
	if len(r.Instructions) == 0 {
		return ErrNoInstructions
	}
	for _, list := range [][]string{r.Ingredients, r.Instructions} {
		for i, entry := range list {
			if strings.TrimSpace(entry) == "" {
				return fmt.Errorf("%w at position %d", ErrBlankListEntry, i+1)
			}
		}
	}
	return nil
}

// HasImage reports whether an image is attached.
func (r Recipe) HasImage() bool {
	return r.ImageURL != ""
}

// Clone returns a copy that shares no slices with r.
func (r Recipe) Clone() Recipe {
	out := r
	out.Ingredients = append([]string(nil), r.Ingredients...)
	out.Instructions = append([]string(nil), r.Instructions...)
	return out
}

// SameName compares two recipe names the way the store does: case-insensitively.
func SameName(a, b string) bool {
	return strings.EqualFold(a, b)
}

// SplitLines turns raw multi-line form text into trimmed, non-empty lines.
// The result may be empty.
func SplitLines(text string) []string {
	lines := make([]string, 0)
	for _, line := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

// EditFields holds the raw values of the edit form before they become a Recipe.
type EditFields struct {
	Name             string `json:"name"`
	Description      string `json:"description"`
	IngredientsText  string `json:"ingredients"`  // One ingredient per line
	InstructionsText string `json:"instructions"` // One step per line
	ImageURL         string `json:"imageUrl,omitempty"`
}

// Recipe builds the edited recipe. List emptiness is not re-checked here.
func (f EditFields) Recipe() Recipe {
	return Recipe{
		Name:         strings.TrimSpace(f.Name),
		Description:  strings.TrimSpace(f.Description),
		Ingredients:  SplitLines(f.IngredientsText),
		Instructions: SplitLines(f.InstructionsText),
		ImageURL:     f.ImageURL,
	}
}

// Difficulty is the cooking difficulty the user asks the generator for.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// ParseDifficulty accepts the three known values in any case. An empty string
// maps to easy, the form's default selection.
func ParseDifficulty(s string) (Difficulty, error) {
	switch Difficulty(strings.ToLower(strings.TrimSpace(s))) {
	case "", DifficultyEasy:
		return DifficultyEasy, nil
	case DifficultyMedium:
		return DifficultyMedium, nil
	case DifficultyHard:
		return DifficultyHard, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownDifficulty, s)
}

// Theme is the persisted UI colour scheme.
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// ParseTheme returns the theme for s, or false if s is not a known theme.
func ParseTheme(s string) (Theme, bool) {
	switch Theme(strings.ToLower(strings.TrimSpace(s))) {
	case ThemeLight:
		return ThemeLight, true
	case ThemeDark:
		return ThemeDark, true
	}
	return "", false
}
