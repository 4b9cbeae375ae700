package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:8080", cfg.Server.Addr)
	assert.Equal(t, 12*time.Hour, cfg.Server.SessionTTL)
	assert.Equal(t, 1000, cfg.Server.MaxSessions)
	assert.False(t, cfg.Importer.AllowPrivate)
	assert.Equal(t, "file", cfg.Storage.Backend)
	assert.Equal(t, ".recipes", cfg.Storage.Path)
	assert.Equal(t, "anthropic", cfg.Generator.Backend)
	assert.Equal(t, int64(2048), cfg.Generator.MaxTokens)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Empty(t, cfg.File)
}

func TestLoadFileAndEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "recipe-assistant.yaml")
	content := `server:
  addr: "127.0.0.1:9000"
  session_ttl: 30m
storage:
  backend: sqlite
  path: /tmp/recipes
generator:
  backend: static
  max_tokens: 512
log:
  level: debug
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	t.Setenv("RECIPES_STORAGE_BACKEND", "memory")
	t.Setenv("RECIPES_GENERATOR_MODEL", "test-model")
	t.Setenv("RECIPES_IMPORTER_ALLOW_PRIVATE", "true")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9000", cfg.Server.Addr)
	assert.Equal(t, 30*time.Minute, cfg.Server.SessionTTL)
	assert.True(t, cfg.Importer.AllowPrivate)
	assert.Equal(t, "memory", cfg.Storage.Backend, "env beats file")
	assert.Equal(t, "/tmp/recipes", cfg.Storage.Path)
	assert.Equal(t, "static", cfg.Generator.Backend)
	assert.Equal(t, "test-model", cfg.Generator.Model)
	assert.Equal(t, int64(512), cfg.Generator.MaxTokens)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, path, cfg.File)
}

func TestLoadTOMLFromWorkingDir(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.WriteFile("recipe-assistant.toml", []byte("[log]\nformat = \"json\"\n"), 0644))

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoadBrokenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [unterminated"), 0644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestParseLevel(t *testing.T) {
	level, err := ParseLevel("debug")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, level)

	level, err = ParseLevel("WARN")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelWarn, level)

	_, err = ParseLevel("chatty")
	assert.Error(t, err)
}
