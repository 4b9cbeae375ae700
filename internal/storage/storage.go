package storage

import (
	"errors"

	"recipe-assistant/internal/model"
)

// Errors returned by RecipeStore implementations. Callers match them with errors.Is.
var (
	ErrDuplicateName = errors.New("a recipe with this name already exists")
	ErrNotFound      = errors.New("recipe not found")
)

// Storage keys. The recipe collection lives under one key as a single JSON array.
const (
	RecipesKey = "recipes"
	ThemeKey   = "theme"
)

// KeyValue is the durable key-value storage the app persists into.
// This allows swapping implementations (files, SQLite, memory) without touching callers.
type KeyValue interface {
	// Get returns the value stored under key. A missing key is reported as
	// (nil, false, nil), not as an error.
	Get(key string) ([]byte, bool, error)

	// Set replaces the whole value stored under key.
	Set(key string, value []byte) error

	// Update runs a read-modify-write of key while holding the backend's
	// write lock, so concurrent writers (other processes included) cannot
	// interleave. fn receives the current value and whether it exists; an
	// error from fn aborts without writing.
	Update(key string, fn func(value []byte, ok bool) ([]byte, error)) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(key string) error

	// Close releases any resources held by the backend.
	Close() error
}

// RecipeStore owns the canonical list of saved recipes.
// Every call reads the persisted collection afresh; nothing is cached between calls.
type RecipeStore interface {
	// List returns all saved recipes in insertion order.
	List() ([]model.Recipe, error)

	// Contains reports whether a recipe with this name (ignoring case) is saved.
	Contains(name string) (bool, error)

	// Add appends recipe, failing with ErrDuplicateName if the name is taken.
	Add(recipe model.Recipe) error

	// Replace overwrites the first recipe named originalName (ignoring case)
	// in place, failing with ErrNotFound if there is none.
	Replace(originalName string, updated model.Recipe) error

	// Remove deletes every recipe whose name equals name exactly.
	Remove(name string) error
}
