// Package config loads recipe-assistant settings from defaults, an optional
// config file and RECIPES_* environment variables.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment override, e.g. RECIPES_SERVER_ADDR.
const EnvPrefix = "RECIPES"

// Config keys.
const (
	KeyServerAddr         = "server.addr"
	KeySessionTTL         = "server.session_ttl"
	KeyMaxSessions        = "server.max_sessions"
	KeyImporterPrivate    = "importer.allow_private"
	KeyStorageBackend     = "storage.backend"
	KeyStoragePath        = "storage.path"
	KeyGeneratorBackend   = "generator.backend"
	KeyGeneratorModel     = "generator.model"
	KeyGeneratorAPIKey    = "generator.api_key"
	KeyGeneratorMaxTokens = "generator.max_tokens"
	KeyLogLevel           = "log.level"
	KeyLogFormat          = "log.format"
	KeyLogFile            = "log.file"
)

// Config is the resolved configuration.
type Config struct {
	Server    ServerConfig
	Importer  ImporterConfig
	Storage   StorageConfig
	Generator GeneratorConfig
	Log       LogConfig

	// File is the config file that was read, empty when none was found.
	File string
}

type ServerConfig struct {
	Addr        string
	SessionTTL  time.Duration // idle time before a browser session is dropped
	MaxSessions int
}

type ImporterConfig struct {
	// AllowPrivate lets the importer fetch loopback, private and link-local
	// addresses. Off for the server; only enable it on a trusted machine.
	AllowPrivate bool
}

type StorageConfig struct {
	Backend string // file, sqlite or memory
	Path    string
}

type GeneratorConfig struct {
	Backend   string // anthropic or static
	Model     string
	APIKey    string
	MaxTokens int64
}

type LogConfig struct {
	Level  string
	Format string // text or json
	File   string // optional rotated log file
}

// Loader wraps the viper instance so the file can be watched after loading.
type Loader struct {
	v *viper.Viper
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(KeyServerAddr, "127.0.0.1:8080")
	v.SetDefault(KeySessionTTL, 12*time.Hour)
	v.SetDefault(KeyMaxSessions, 1000)
	v.SetDefault(KeyImporterPrivate, false)
	v.SetDefault(KeyStorageBackend, "file")
	v.SetDefault(KeyStoragePath, ".recipes")
	v.SetDefault(KeyGeneratorBackend, "anthropic")
	v.SetDefault(KeyGeneratorModel, "claude-sonnet-4-5")
	v.SetDefault(KeyGeneratorAPIKey, "")
	v.SetDefault(KeyGeneratorMaxTokens, 2048)
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogFormat, "text")
	v.SetDefault(KeyLogFile, "")
}

// NewLoader prepares a loader. When configFile is empty the file
// recipe-assistant.{yaml,toml,json} is searched in the working directory and
// in ~/.config/recipe-assistant; not finding one is fine.
func NewLoader(configFile string) *Loader {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("recipe-assistant")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "recipe-assistant"))
		}
	}
	return &Loader{v: v}
}

// Load reads the config file (if any) and returns the resolved settings.
func (l *Loader) Load() (*Config, error) {
	if err := l.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}
	return l.current(), nil
}

func (l *Loader) current() *Config {
	v := l.v
	return &Config{
		Server: ServerConfig{
			Addr:        v.GetString(KeyServerAddr),
			SessionTTL:  v.GetDuration(KeySessionTTL),
			MaxSessions: v.GetInt(KeyMaxSessions),
		},
		Importer: ImporterConfig{AllowPrivate: v.GetBool(KeyImporterPrivate)},
		Storage: StorageConfig{
			Backend: v.GetString(KeyStorageBackend),
			Path:    v.GetString(KeyStoragePath),
		},
		Generator: GeneratorConfig{
			Backend:   v.GetString(KeyGeneratorBackend),
			Model:     v.GetString(KeyGeneratorModel),
			APIKey:    v.GetString(KeyGeneratorAPIKey),
			MaxTokens: v.GetInt64(KeyGeneratorMaxTokens),
		},
		Log: LogConfig{
			Level:  v.GetString(KeyLogLevel),
			Format: v.GetString(KeyLogFormat),
			File:   v.GetString(KeyLogFile),
		},
		File: v.ConfigFileUsed(),
	}
}

// Load is a shortcut for NewLoader(configFile).Load().
func Load(configFile string) (*Config, error) {
	return NewLoader(configFile).Load()
}

// ParseLevel maps a level name to a slog.Level. Unknown names are an error.
func ParseLevel(name string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(name))); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log level %q: %w", name, err)
	}
	return level, nil
}

// Watch re-reads the config file whenever it changes and applies the new log
// level to level. Only the log level is live; other settings need a restart.
// It does nothing when no config file was loaded.
func (l *Loader) Watch(level *slog.LevelVar, logger *slog.Logger) {
	if l.v.ConfigFileUsed() == "" {
		return
	}
	l.v.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}
		cfg := l.current()
		newLevel, err := ParseLevel(cfg.Log.Level)
		if err != nil {
			logger.Warn("Ignoring config change", "file", e.Name, "error", err)
			return
		}
		if newLevel != level.Level() {
			level.Set(newLevel)
			logger.Info("Log level changed", "file", e.Name, "level", newLevel.String())
		}
	})
	l.v.WatchConfig()
}
