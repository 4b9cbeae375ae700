package storage

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Backend names accepted by Open.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

// Open returns the KeyValue backend called name. For the file backend path is
// a directory; for sqlite it is a directory that will hold recipes.db.
func Open(name, path string) (KeyValue, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", BackendFile:
		return NewFileKV(path)
	case BackendSQLite:
		return NewSQLiteKV(filepath.Join(path, "recipes.db"))
	case BackendMemory:
		return NewMemoryKV(), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q (want %s, %s or %s)", name, BackendFile, BackendSQLite, BackendMemory)
	}
}
