// Package cmd wires the definition engine to a cobra CLI. Bundles come
// from a local file (--in) or the remote service, and edited bundles go to
// a local file (--out) or back to the service.
package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/agentic-research/flowdef/api"
	"github.com/agentic-research/flowdef/internal/bundle"
	"github.com/agentic-research/flowdef/internal/config"
	"github.com/agentic-research/flowdef/internal/definition"
	"github.com/agentic-research/flowdef/internal/metadata"
	"github.com/agentic-research/flowdef/internal/remote"
	"github.com/agentic-research/flowdef/internal/store"
	"github.com/ohler55/ojg/oj"
	"github.com/spf13/cobra"
)

var (
	cfgPath   string
	workspace string
	item      string
	inPath    string
	outPath   string
	logLevel  string
)

var rootCmd = &cobra.Command{
	Use:           "flowdef",
	Short:         "Flowdef: edit dataflow definition bundles",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgPath, "config", "", "Path to config file (default ~/.flowdef/config.toml)")
	pf.StringVarP(&workspace, "workspace", "w", "", "Workspace id (overrides config)")
	pf.StringVarP(&item, "item", "i", "", "Item id (overrides config)")
	pf.StringVar(&inPath, "in", "", "Read the bundle from this JSON file instead of the service")
	pf.StringVar(&outPath, "out", "", "Write the edited bundle to this JSON file instead of the service")
	pf.StringVar(&logLevel, "log-level", "warn", "Log level: debug, info, warn, error")
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// setup loads the config, applies flag overrides, and builds the logger.
func setup() (config.Config, *slog.Logger, error) {
	path := cfgPath
	if path == "" {
		var err error
		path, err = config.DefaultPath()
		if err != nil {
			return config.Config{}, nil, fmt.Errorf("resolve config path: %w", err)
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return cfg, nil, err
	}
	if workspace != "" {
		cfg.Workspace = workspace
	}
	if item != "" {
		cfg.Item = item
	}

	var level slog.Level
	switch logLevel {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelWarn
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	return cfg, log, nil
}

func newEditor(cfg config.Config) *definition.Editor {
	mcfg := metadata.DefaultConfig()
	if cfg.Locale != "" {
		mcfg.DocumentLocale = cfg.Locale
	}
	return definition.NewEditor(mcfg)
}

func newRemote(cfg config.Config, log *slog.Logger) *remote.Client {
	return remote.NewClient(cfg.BaseURL, cfg.Token(), log)
}

// loadBundle reads the bundle from --in, or fetches it from the service.
func loadBundle(ctx context.Context, cfg config.Config, log *slog.Logger) (*api.DefinitionBundle, error) {
	if inPath != "" {
		data, err := os.ReadFile(inPath)
		if err != nil {
			return nil, fmt.Errorf("read bundle %s: %w", inPath, err)
		}
		var b api.DefinitionBundle
		if err := oj.Unmarshal(data, &b); err != nil {
			return nil, fmt.Errorf("parse bundle %s: %w", inPath, err)
		}
		return &b, nil
	}
	if cfg.Workspace == "" || cfg.Item == "" {
		return nil, fmt.Errorf("no --in file and no workspace/item configured")
	}
	return newRemote(cfg, log).FetchDefinition(ctx, cfg.Workspace, cfg.Item)
}

// saveBundle writes the bundle to --out, or persists it to the service and
// records a local snapshot when a history path is configured.
func saveBundle(ctx context.Context, cfg config.Config, log *slog.Logger, b *api.DefinitionBundle) error {
	if outPath != "" {
		data := oj.JSON(b, 2)
		if err := os.WriteFile(outPath, []byte(data), 0o644); err != nil {
			return fmt.Errorf("write bundle %s: %w", outPath, err)
		}
		return nil
	}
	if cfg.Workspace == "" || cfg.Item == "" {
		return fmt.Errorf("no --out file and no workspace/item configured")
	}
	if err := newRemote(cfg, log).PersistDefinition(ctx, cfg.Workspace, cfg.Item, b); err != nil {
		return err
	}
	if cfg.HistoryPath != "" {
		h, err := store.Open(cfg.HistoryPath)
		if err != nil {
			log.Warn("history unavailable", "path", cfg.HistoryPath, "error", err)
			return nil
		}
		defer func() { _ = h.Close() }()
		if _, err := h.Save(ctx, cfg.Workspace, cfg.Item, b); err != nil {
			log.Warn("snapshot failed", "error", err)
		}
	}
	return nil
}

func reportDiags(log *slog.Logger, diags []bundle.Diagnostic) {
	for _, d := range diags {
		log.Warn("decode diagnostic", "part", d.Path, "detail", d.Message)
	}
}
