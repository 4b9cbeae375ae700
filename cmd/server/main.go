package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"recipe-assistant/internal/config"
	"recipe-assistant/internal/generator"
	"recipe-assistant/internal/importer"
	"recipe-assistant/internal/logging"
	"recipe-assistant/internal/recipemanager"
	"recipe-assistant/internal/share"
	"recipe-assistant/internal/storage"
	"recipe-assistant/internal/templating"
)

// application holds the application-wide dependencies.
type application struct {
	logger   *slog.Logger
	store    *storage.Recipes
	prefs    *storage.Preferences
	sessions *recipemanager.Sessions
	engine   *templating.Engine
	renderer *share.Renderer
	importer *importer.Importer
}

// newApplication wires the handlers' dependencies. A nil importer only
// fetches public addresses.
func newApplication(kv storage.KeyValue, gen recipemanager.Generator, imp *importer.Importer, limits recipemanager.SessionLimits, logger *slog.Logger) (*application, error) {
	engine, err := templating.NewEngine()
	if err != nil {
		return nil, err
	}
	store := storage.NewRecipes(kv, logger)
	if imp == nil {
		imp = importer.New(nil, logger)
	}
	return &application{
		logger:   logger,
		store:    store,
		prefs:    storage.NewPreferences(kv),
		sessions: recipemanager.NewSessions(store, gen, logger, limits),
		engine:   engine,
		renderer: share.NewRenderer(),
		importer: imp,
	}, nil
}

func main() {
	// 1. Define and parse command-line flags
	configFile := flag.String("config", "", "Path to a config file (yaml, toml or json)")
	addr := flag.String("addr", "", "Listen address, overrides server.addr")
	flag.Parse()

	// 2. Load configuration and set up logging
	loader := config.NewLoader(*configFile)
	cfg, err := loader.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	if *addr != "" {
		cfg.Server.Addr = *addr
	}

	logger, level, closeLog, err := logging.FromConfig(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error setting up logging: %v\n", err)
		os.Exit(1)
	}
	defer closeLog()
	loader.Watch(level, logger)
	if cfg.File != "" {
		logger.Info("Loaded config", "file", cfg.File)
	}

	if err := run(cfg, logger); err != nil {
		logger.Error("Server stopped with error", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	// 3. Open storage
	kv, err := storage.Open(cfg.Storage.Backend, cfg.Storage.Path)
	if err != nil {
		return fmt.Errorf("failed to open storage: %w", err)
	}
	defer kv.Close()
	logger.Info("Using storage", "backend", cfg.Storage.Backend, "path", cfg.Storage.Path)

	// 4. Set up the recipe generator
	backend, err := generator.NewBackend(cfg.Generator)
	if err != nil {
		return fmt.Errorf("failed to set up generator: %w", err)
	}
	gen, err := generator.New(backend, logger)
	if err != nil {
		return err
	}
	logger.Info("Using generator", "backend", cfg.Generator.Backend, "model", cfg.Generator.Model)

	imp := importer.New(importer.NewClient(cfg.Importer.AllowPrivate), logger)
	if cfg.Importer.AllowPrivate {
		logger.Warn("Importer may fetch private and loopback addresses")
	}
	limits := recipemanager.SessionLimits{TTL: cfg.Server.SessionTTL, MaxSessions: cfg.Server.MaxSessions}
	app, err := newApplication(kv, gen, imp, limits, logger)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           app.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// 5. Serve until interrupted
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("Starting server", "address", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		logger.Info("Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
