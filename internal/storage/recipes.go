package storage

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"recipe-assistant/internal/model"
)

// Recipes implements RecipeStore on top of a KeyValue.
// The whole collection is one JSON array under RecipesKey; every mutation
// re-serialises and rewrites the full array inside one KeyValue.Update, so the
// read-modify-write is atomic for every process sharing the backend.
type Recipes struct {
	kv     KeyValue
	logger *slog.Logger
}

// NewRecipes creates a recipe store backed by kv.
func NewRecipes(kv KeyValue, logger *slog.Logger) *Recipes {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Recipes{kv: kv, logger: logger}
}

// decodeRecipes decodes a persisted collection. A missing blob is an empty list.
func decodeRecipes(data []byte, ok bool) ([]model.Recipe, error) {
	if !ok || len(data) == 0 {
		return []model.Recipe{}, nil
	}
	var recipes []model.Recipe
	if err := json.Unmarshal(data, &recipes); err != nil {
		return nil, fmt.Errorf("failed to decode recipe collection: %w", err)
	}
	if recipes == nil {
		// A persisted JSON null decodes to nil; treat it as empty.
		recipes = []model.Recipe{}
	}
	return recipes, nil
}

func (s *Recipes) load() ([]model.Recipe, error) {
	data, ok, err := s.kv.Get(RecipesKey)
	if err != nil {
		return nil, fmt.Errorf("failed to read recipe collection: %w", err)
	}
	return decodeRecipes(data, ok)
}

// update applies fn to the persisted collection and writes the result back.
// Nothing is written when decoding or fn fails.
func (s *Recipes) update(fn func([]model.Recipe) ([]model.Recipe, error)) error {
	return s.kv.Update(RecipesKey, func(data []byte, ok bool) ([]byte, error) {
		recipes, err := decodeRecipes(data, ok)
		if err != nil {
			return nil, err
		}
		if recipes, err = fn(recipes); err != nil {
			return nil, err
		}
		out, err := json.Marshal(recipes)
		if err != nil {
			return nil, fmt.Errorf("failed to encode recipe collection: %w", err)
		}
		return out, nil
	})
}

func indexOf(recipes []model.Recipe, name string) int {
	for i, r := range recipes {
		if model.SameName(r.Name, name) {
			return i
		}
	}
	return -1
}

// List returns all saved recipes in insertion order.
func (s *Recipes) List() ([]model.Recipe, error) {
	return s.load()
}

// Contains reports whether name (ignoring case) is saved.
func (s *Recipes) Contains(name string) (bool, error) {
	recipes, err := s.load()
	if err != nil {
		return false, err
	}
	return indexOf(recipes, name) >= 0, nil
}

// Add appends recipe unless its name is already taken.
func (s *Recipes) Add(recipe model.Recipe) error {
	var count int
	err := s.update(func(recipes []model.Recipe) ([]model.Recipe, error) {
		if indexOf(recipes, recipe.Name) >= 0 {
			return nil, fmt.Errorf("add %q: %w", recipe.Name, ErrDuplicateName)
		}
		recipes = append(recipes, recipe.Clone())
		count = len(recipes)
		return recipes, nil
	})
	if err != nil {
		s.logger.Debug("Recipe not saved", "name", recipe.Name, "error", err)
		return err
	}
	s.logger.Info("Saved recipe", "name", recipe.Name, "count", count)
	return nil
}

// Replace overwrites the first recipe matching originalName (ignoring case),
// keeping its position in the list.
func (s *Recipes) Replace(originalName string, updated model.Recipe) error {
	position := -1
	err := s.update(func(recipes []model.Recipe) ([]model.Recipe, error) {
		position = indexOf(recipes, originalName)
		if position < 0 {
			return nil, fmt.Errorf("replace %q: %w", originalName, ErrNotFound)
		}
		recipes[position] = updated.Clone()
		return recipes, nil
	})
	if err != nil {
		return err
	}
	s.logger.Info("Updated recipe", "original", originalName, "name", updated.Name, "position", position)
	return nil
}

// Remove deletes every recipe whose name equals name exactly (case-sensitive,
// unlike Contains and Add). The collection is rewritten even when nothing matched.
func (s *Recipes) Remove(name string) error {
	var removed, count int
	err := s.update(func(recipes []model.Recipe) ([]model.Recipe, error) {
		kept := recipes[:0]
		for _, r := range recipes {
			if r.Name != name {
				kept = append(kept, r)
			}
		}
		removed, count = len(recipes)-len(kept), len(kept)
		return kept, nil
	})
	if err != nil {
		return err
	}
	s.logger.Info("Removed recipe", "name", name, "removed", removed, "count", count)
	return nil
}
