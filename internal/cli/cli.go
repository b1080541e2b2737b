// Package cli implements the casegraph command-line interface.
package cli

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/casegraph/casegraph/pkg/buildinfo"
	"github.com/casegraph/casegraph/pkg/cache"
	"github.com/casegraph/casegraph/pkg/casefile"
	"github.com/casegraph/casegraph/pkg/config"
	"github.com/casegraph/casegraph/pkg/errors"
	"github.com/casegraph/casegraph/pkg/pipeline"
)

// errNoBackend is returned when no backend URL is available from flags or the
// config file.
var errNoBackend = errors.New(errors.ErrCodeInvalidInput,
	"no backend configured: set backend.base_url in the config file or pass --base-url")

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "casegraph"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// configPath is the --config flag value; empty means the XDG default.
	configPath string

	// baseURL and token are persistent flag overrides for the config file.
	baseURL string
	token   string
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          "casegraph",
		Short:        "Casegraph visualizes money flow networks from investigation cases",
		Long:         `Casegraph fetches entity networks from a case-management backend and lays them out as hierarchical money flow diagrams, making it easier to trace funds from victims through mule accounts to their destinations.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())

	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default: ~/.config/casegraph/config.toml)")
	root.PersistentFlags().StringVar(&c.baseURL, "base-url", "", "case-management backend URL (overrides config)")
	root.PersistentFlags().StringVar(&c.token, "token", "", "backend bearer token (overrides config)")

	// Register all subcommands
	root.AddCommand(c.casesCommand())
	root.AddCommand(c.fetchCommand())
	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.exportCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Configuration
// =============================================================================

// loadConfig reads the config file and applies flag overrides.
func (c *CLI) loadConfig() (config.Config, error) {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return cfg, err
	}
	if c.baseURL != "" {
		cfg.Backend.BaseURL = c.baseURL
	}
	if c.token != "" {
		cfg.Backend.Token = c.token
	}
	return cfg, nil
}

// =============================================================================
// Runner Factory
// =============================================================================

// newBackend creates a backend client from the configuration.
func (c *CLI) newBackend(cfg config.Config) (*casefile.Client, error) {
	if cfg.Backend.BaseURL == "" {
		return nil, errNoBackend
	}
	return casefile.NewClient(casefile.Config{
		BaseURL: cfg.Backend.BaseURL,
		Token:   cfg.Backend.Token,
	}), nil
}

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(cfg config.Config, noCache bool) (*pipeline.Runner, error) {
	client, err := c.newBackend(cfg)
	if err != nil {
		return nil, err
	}
	cache, err := newCache(cfg, noCache)
	if err != nil {
		return nil, err
	}
	return pipeline.NewRunner(client, cache, nil, c.Logger), nil
}

func newCache(cfg config.Config, noCache bool) (cache.Cache, error) {
	if noCache || cfg.Cache.Disabled {
		return cache.NewNullCache(), nil
	}
	dir := cfg.Cache.Dir
	if dir == "" {
		var err error
		dir, err = cacheDir()
		if err != nil {
			return cache.NewNullCache(), nil
		}
	}
	return cache.NewFileCache(dir)
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/casegraph/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// =============================================================================
// Options Helpers
// =============================================================================

// applyLayoutConfig copies spacing overrides from the config file onto the
// pipeline options. Flag values already set on opts win.
func applyLayoutConfig(opts *pipeline.Options, layout config.Layout) {
	if opts.BaseX == 0 {
		opts.BaseX = layout.BaseX
	}
	if opts.BaseY == 0 {
		opts.BaseY = layout.BaseY
	}
	if opts.LevelSpacing == 0 {
		opts.LevelSpacing = layout.LevelSpacing
	}
	if opts.NodeSpacing == 0 {
		opts.NodeSpacing = layout.NodeSpacing
	}
	if opts.Band == 0 {
		opts.Band = layout.Band
	}
}

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return []string{pipeline.FormatSVG}
	}
	parts := strings.Split(s, ",")
	formats := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			formats = append(formats, p)
		}
	}
	return formats
}
