package recipemanager

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"recipe-assistant/internal/model"
	"recipe-assistant/internal/storage"
)

// ErrNoCurrent is returned by operations that need a current recipe when none is set.
var ErrNoCurrent = errors.New("no current recipe")

// Generator produces a recipe from the user's inputs. *generator.Client implements it.
type Generator interface {
	Generate(ctx context.Context, dish string, difficulty model.Difficulty, wishes string) (model.Recipe, error)
}

// Manager holds the current recipe of one session and mediates every change
// between it and the store.
type Manager struct {
	store  storage.RecipeStore
	gen    Generator
	logger *slog.Logger

	// mu guards current and saved. It is never held while waiting on the generator.
	mu      sync.Mutex
	current *model.Recipe
	saved   bool
}

// NewManager creates a Manager instance.
func NewManager(store storage.RecipeStore, gen Generator, logger *slog.Logger) *Manager {
	if logger == nil {
		// Provide a default discard logger if none is provided
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Manager{store: store, gen: gen, logger: logger}
}

func (m *Manager) setCurrent(recipe model.Recipe, saved bool) {
	r := recipe.Clone()
	m.mu.Lock()
	m.current = &r
	m.saved = saved
	m.mu.Unlock()
}

func (m *Manager) clearCurrent() {
	m.mu.Lock()
	m.current = nil
	m.saved = false
	m.mu.Unlock()
}

// snapshot returns a copy of the current recipe.
func (m *Manager) snapshot() (model.Recipe, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == nil {
		return model.Recipe{}, false
	}
	return m.current.Clone(), true
}

// Generate clears the current recipe, asks the generator for a new one and
// makes it current. On failure there is no current recipe.
func (m *Manager) Generate(ctx context.Context, dish string, difficulty model.Difficulty, wishes string) (model.Recipe, error) {
	if m.gen == nil {
		return model.Recipe{}, errors.New("no recipe generator configured")
	}
	m.clearCurrent()

	recipe, err := m.gen.Generate(ctx, dish, difficulty, wishes)
	if err != nil {
		return model.Recipe{}, err
	}
	m.SetCurrent(recipe)
	return recipe, nil
}

// SetCurrent replaces the current recipe. The new recipe counts as unsaved.
func (m *Manager) SetCurrent(recipe model.Recipe) {
	m.setCurrent(recipe, false)
	m.logger.Debug("Current recipe set", "name", recipe.Name)
}

// Current returns a copy of the current recipe and whether there is one.
func (m *Manager) Current() (model.Recipe, bool) {
	return m.snapshot()
}

// Saved reports whether the current recipe was saved (or loaded from the store)
// by this manager since it became current.
func (m *Manager) Saved() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current != nil && m.saved
}

// SaveCurrent adds the current recipe to the store. Saving the same recipe
// again fails with storage.ErrDuplicateName.
func (m *Manager) SaveCurrent() error {
	recipe, ok := m.snapshot()
	if !ok {
		return ErrNoCurrent
	}
	if err := m.store.Add(recipe); err != nil {
		return err
	}

	m.mu.Lock()
	if m.current != nil && m.current.Name == recipe.Name {
		m.saved = true
	}
	m.mu.Unlock()
	return nil
}

// CommitEdit replaces the stored recipe originalName with the edited fields.
// Renaming onto another existing recipe fails with storage.ErrDuplicateName
// and leaves the store untouched. Empty ingredient or instruction lists are
// accepted here. On success the edited recipe becomes current.
func (m *Manager) CommitEdit(originalName string, fields model.EditFields) (model.Recipe, error) {
	edited := fields.Recipe()
	if edited.Name == "" {
		return model.Recipe{}, model.ErrEmptyName
	}

	// 1. Reject a rename onto a different existing recipe
	if !model.SameName(edited.Name, originalName) {
		exists, err := m.store.Contains(edited.Name)
		if err != nil {
			return model.Recipe{}, err
		}
		if exists {
			m.logger.Info("Edit rejected, name taken", "original", originalName, "name", edited.Name)
			return model.Recipe{}, fmt.Errorf("rename %q to %q: %w", originalName, edited.Name, storage.ErrDuplicateName)
		}
	}

	// 2. Overwrite in place
	if err := m.store.Replace(originalName, edited); err != nil {
		return model.Recipe{}, err
	}

	// 3. The edited recipe is now what the user sees
	m.setCurrent(edited, true)
	return edited.Clone(), nil
}

// IsCurrentSaved asks the store whether a recipe with the current name exists.
func (m *Manager) IsCurrentSaved() (bool, error) {
	recipe, ok := m.snapshot()
	if !ok {
		return false, nil
	}
	return m.store.Contains(recipe.Name)
}

// View loads the stored recipe called name (ignoring case) and makes it current.
func (m *Manager) View(name string) (model.Recipe, error) {
	recipes, err := m.store.List()
	if err != nil {
		return model.Recipe{}, err
	}
	for _, r := range recipes {
		if model.SameName(r.Name, name) {
			m.setCurrent(r, true)
			return r, nil
		}
	}
	return model.Recipe{}, fmt.Errorf("view %q: %w", name, storage.ErrNotFound)
}

// Delete removes the recipe called exactly name from the store. If it is the
// current recipe, the current recipe is cleared.
func (m *Manager) Delete(name string) error {
	if err := m.store.Remove(name); err != nil {
		return err
	}

	m.mu.Lock()
	if m.current != nil && m.current.Name == name {
		m.current = nil
		m.saved = false
	}
	m.mu.Unlock()
	return nil
}

// List returns the saved recipes.
func (m *Manager) List() ([]model.Recipe, error) {
	return m.store.List()
}

// Count returns the number of saved recipes.
func (m *Manager) Count() (int, error) {
	recipes, err := m.store.List()
	if err != nil {
		return 0, err
	}
	return len(recipes), nil
}

// AttachImage sets the image of the current recipe. When the current recipe
// is already stored, the stored copy is updated as well.
func (m *Manager) AttachImage(imageURL string) (model.Recipe, error) {
	recipe, ok := m.snapshot()
	if !ok {
		return model.Recipe{}, ErrNoCurrent
	}
	recipe.ImageURL = imageURL

	if m.Saved() {
		if err := m.store.Replace(recipe.Name, recipe); err != nil && !errors.Is(err, storage.ErrNotFound) {
			return model.Recipe{}, err
		}
	}

	m.mu.Lock()
	if m.current != nil && m.current.Name == recipe.Name {
		m.current.ImageURL = imageURL
	}
	m.mu.Unlock()
	return recipe, nil
}
