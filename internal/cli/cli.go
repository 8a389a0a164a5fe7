// Package cli implements the pydigger command-line interface.
package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/pydigger/pkg/buildinfo"
	"github.com/matzehuels/pydigger/pkg/cache"
	"github.com/matzehuels/pydigger/pkg/errors"
	"github.com/matzehuels/pydigger/pkg/record"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "pydigger"

	// shutdownTimeout bounds the graceful stop of the HTTP server.
	shutdownTimeout = 5 * time.Second
)

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
	Config *Config

	configFile string
	dataDir    string
}

// New creates a new CLI instance with a default logger and configuration.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Config: DefaultConfig(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "pydigger tracks fresh PyPI releases and reports on their metadata",
		Long: `pydigger follows the PyPI update feed, stores the resolved metadata of every
new release, probes its source repository for CI configuration and aggregates
the collection into a report.`,
		Version:           buildinfo.Version,
		SilenceUsage:      true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return c.loadConfig() },
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configFile, "config", "", "config file (default ~/.config/pydigger/config.toml)")
	root.PersistentFlags().StringVar(&c.dataDir, "data-dir", "", "data directory (overrides data_dir)")

	root.AddCommand(c.downloadCommand())
	root.AddCommand(c.reportCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// loadConfig reads the config file and applies flag overrides.
func (c *CLI) loadConfig() error {
	path, explicit := c.configFile, c.configFile != ""
	if !explicit {
		p, err := configPath()
		if err != nil {
			c.Logger.Debug("no config directory", "err", err)
			return c.applyOverrides(DefaultConfig())
		}
		path = p
	}
	cfg, err := LoadConfig(path, explicit)
	if err != nil {
		return err
	}
	c.Logger.Debug("config loaded", "path", path, "data_dir", cfg.DataDir, "cache", cfg.Cache.Backend)
	return c.applyOverrides(cfg)
}

func (c *CLI) applyOverrides(cfg *Config) error {
	if c.dataDir != "" {
		cfg.DataDir = c.dataDir
	}
	c.Config = cfg
	return nil
}

// store opens the record store below the data directory.
func (c *CLI) store() *record.Store {
	return record.NewStore(c.Config.RecordsDir())
}

// =============================================================================
// Cache Factory
// =============================================================================

// newCache opens the configured response cache. noCache forces the null
// cache regardless of configuration.
func (c *CLI) newCache(ctx context.Context, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	switch c.Config.Cache.Backend {
	case backendNone:
		return cache.NewNullCache(), nil
	case backendRedis:
		rc, err := cache.NewRedisCache(ctx, c.Config.Cache.RedisURL)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeStorage, err, "open redis cache")
		}
		return rc, nil
	default:
		dir, err := c.cacheDir()
		if err != nil {
			c.Logger.Warn("no cache directory, caching disabled", "err", err)
			return cache.NewNullCache(), nil
		}
		fc, err := cache.NewFileCache(dir)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeStorage, err, "open file cache")
		}
		return fc, nil
	}
}

// cacheDir returns the file cache directory: cache.dir from the config,
// else the per-user cache directory.
func (c *CLI) cacheDir() (string, error) {
	if c.Config.Cache.Dir != "" {
		return c.Config.Cache.Dir, nil
	}
	return cache.DefaultDir()
}
