// Command recipe-cli manages the saved recipe collection from the terminal.
// It shares configuration and storage with the web server.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/spf13/cobra"

	"recipe-assistant/internal/config"
	"recipe-assistant/internal/generator"
	"recipe-assistant/internal/importer"
	"recipe-assistant/internal/logging"
	"recipe-assistant/internal/recipemanager"
	"recipe-assistant/internal/storage"
)

// cliEnv holds the flags and the dependencies opened for a single invocation.
type cliEnv struct {
	configFile     string
	storageBackend string
	storagePath    string
	generatorName  string
	jsonOutput     bool
	verbose        bool

	cfg      *config.Config
	logger   *slog.Logger
	kv       storage.KeyValue
	store    *storage.Recipes
	prefs    *storage.Preferences
	manager  *recipemanager.Manager
	importer *importer.Importer
	closeLog func() error
}

func newRootCmd() (*cobra.Command, *cliEnv) {
	env := &cliEnv{}
	root := &cobra.Command{
		Use:   "recipe-cli",
		Short: "Generate, browse and share your saved recipes",
		Long: `recipe-cli works on the same recipe collection as the web server.

Examples:
  recipe-cli generate "Tomato pasta" --difficulty easy --save
  recipe-cli list
  recipe-cli show "Tomato Pasta"
  recipe-cli export --format xlsx --output recipes.xlsx
  recipe-cli import --url https://example.com/pancakes`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return env.open(cmd)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&env.configFile, "config", "", "Path to a config file (yaml, toml or json)")
	flags.StringVar(&env.storageBackend, "storage", "", "Storage backend, overrides storage.backend (file, sqlite, memory)")
	flags.StringVar(&env.storagePath, "path", "", "Storage path, overrides storage.path")
	flags.StringVar(&env.generatorName, "generator", "", "Generator backend, overrides generator.backend (anthropic, static)")
	flags.BoolVar(&env.jsonOutput, "json", false, "Output in JSON format")
	flags.BoolVarP(&env.verbose, "verbose", "v", false, "Log at the configured level instead of warnings only")

	root.AddCommand(
		newGenerateCmd(env),
		newListCmd(env),
		newShowCmd(env),
		newEditCmd(env),
		newDeleteCmd(env),
		newThemeCmd(env),
		newExportCmd(env),
		newImportCmd(env),
		newShareCmd(env),
	)
	return root, env
}

// open loads the configuration and opens storage. The generator is set up
// lazily by the commands that need it.
func (env *cliEnv) open(cmd *cobra.Command) error {
	// 1. Load configuration and apply flag overrides
	cfg, err := config.Load(env.configFile)
	if err != nil {
		return err
	}
	if env.storageBackend != "" {
		cfg.Storage.Backend = env.storageBackend
	}
	if env.storagePath != "" {
		cfg.Storage.Path = env.storagePath
	}
	if env.generatorName != "" {
		cfg.Generator.Backend = env.generatorName
	}
	env.cfg = cfg

	// 2. Set up logging, quiet unless asked otherwise
	level := new(slog.LevelVar)
	level.Set(slog.LevelWarn)
	if env.verbose {
		parsed, err := config.ParseLevel(cfg.Log.Level)
		if err != nil {
			return err
		}
		level.Set(parsed)
	}
	env.logger, env.closeLog = logging.New(logging.Options{
		Level:  level,
		Format: cfg.Log.Format,
		File:   cfg.Log.File,
		Stderr: cmd.ErrOrStderr(),
	})

	// 3. Open storage
	kv, err := storage.Open(cfg.Storage.Backend, cfg.Storage.Path)
	if err != nil {
		return fmt.Errorf("failed to open storage: %w", err)
	}
	env.kv = kv
	env.store = storage.NewRecipes(kv, env.logger)
	env.prefs = storage.NewPreferences(kv)
	env.importer = importer.New(importer.NewClient(cfg.Importer.AllowPrivate), env.logger)
	env.manager = recipemanager.NewManager(env.store, lazyGenerator{env: env}, env.logger)
	return nil
}

func (env *cliEnv) close() {
	if env.kv != nil {
		env.kv.Close()
		env.kv = nil
	}
	if env.closeLog != nil {
		env.closeLog()
		env.closeLog = nil
	}
}

// generator builds the configured recipe generator.
func (env *cliEnv) generator() (*generator.Client, error) {
	backend, err := generator.NewBackend(env.cfg.Generator)
	if err != nil {
		return nil, fmt.Errorf("failed to set up generator: %w", err)
	}
	return generator.New(backend, env.logger)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	root, env := newRootCmd()
	err := root.ExecuteContext(ctx)
	env.close()
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, failStyle.Render("Error: "+err.Error()))
		os.Exit(1)
	}
}

// openBrowser opens url with the platform's default handler.
func openBrowser(url string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	case "darwin":
		cmd = exec.Command("open", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	return cmd.Start()
}
