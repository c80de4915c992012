// Package cli implements the icoforge command-line interface.
//
// The root command converts every PNG in the source directory into a
// normalized square icon. Subcommands watch the source directory for
// changes (watch), preview generated icons in a browser (serve), manage
// the conversion cache (cache), and generate shell completions
// (completion).
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging and
// --quiet (-q) to suppress informational output. The logger is built with
// charmbracelet/log and attached to the command context.
//
// # Configuration
//
// Flags override values from an optional icoforge.toml (working directory
// or XDG config dir, or an explicit --config path); precedence is
// flag > file > default.
package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/icoforge/icoforge/pkg/buildinfo"
	"github.com/icoforge/icoforge/pkg/cache"
	"github.com/icoforge/icoforge/pkg/config"
)

// appName is the application name used for directories and display.
const appName = "icoforge"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	quiet bool
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands
// registered. The root command itself runs a batch conversion, mirroring
// the original single-purpose tool: icoforge --src img --dst icons.
func (c *CLI) RootCommand() *cobra.Command {
	var (
		verbose bool
		flags   rootFlags
	)
	defaults := config.Default()

	root := &cobra.Command{
		Use:          appName,
		Short:        "Icoforge normalizes PNGs into square icons",
		Long: `Icoforge batch-converts PNG images into square icons: transparent
margins are trimmed, the image is centered on a transparent square
canvas, and the result is resized to the target dimension.

Without a subcommand it converts every PNG in the source directory
once. Use 'watch' for continuous conversion and 'serve' to preview
the results in a browser.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := log.InfoLevel
			if verbose {
				level = log.DebugLevel
			}
			if c.quiet {
				level = log.WarnLevel
			}
			c.SetLogLevel(level)
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.resolveConfig(cmd, flags)
			if err != nil {
				return err
			}
			return c.runConvert(cmd.Context(), cfg, flags.noCache, flags.interactive)
		},
	}

	root.SetVersionTemplate(buildinfo.Template())

	pf := root.PersistentFlags()
	pf.BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	pf.BoolVarP(&c.quiet, "quiet", "q", false, "suppress informational output")
	pf.StringVar(&flags.configPath, "config", "", "config file (default: icoforge.toml, XDG config dir)")
	pf.StringVar(&flags.src, "src", defaults.Src, "source directory with PNGs")
	pf.StringVar(&flags.dst, "dst", defaults.Dst, "destination directory for icons")
	pf.IntVar(&flags.size, "size", defaults.Size, "output size (square)")
	pf.BoolVar(&flags.overwrite, "overwrite", false, "overwrite existing icons")
	pf.BoolVar(&flags.noCache, "no-cache", false, "disable the conversion cache")

	root.Flags().BoolVarP(&flags.interactive, "interactive", "i", false, "show a live progress view")

	root.AddCommand(c.watchCommand(&flags))
	root.AddCommand(c.serveCommand(&flags))
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// rootFlags holds the persistent flag values shared by the root, watch,
// and serve commands.
type rootFlags struct {
	configPath  string
	src         string
	dst         string
	size        int
	overwrite   bool
	noCache     bool
	interactive bool
}

// resolveConfig merges the config file with flag overrides.
// Only flags the user actually set override file values.
func (c *CLI) resolveConfig(cmd *cobra.Command, flags rootFlags) (config.Config, error) {
	var (
		cfg  config.Config
		path string
		err  error
	)
	if flags.configPath != "" {
		cfg, err = config.Load(flags.configPath)
		path = flags.configPath
	} else {
		cfg, path, err = config.LoadDefault()
	}
	if err != nil {
		return config.Config{}, err
	}
	if path != "" {
		c.Logger.Debug("loaded config", "path", path)
	}

	fs := cmd.Flags()
	if fs.Changed("src") {
		cfg.Src = flags.src
	}
	if fs.Changed("dst") {
		cfg.Dst = flags.dst
	}
	if fs.Changed("size") {
		cfg.Size = flags.size
	}
	if fs.Changed("overwrite") {
		cfg.Overwrite = flags.overwrite
	}
	if c.quiet {
		cfg.Quiet = true
	}

	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

// newCache builds the conversion cache selected by the config.
// Cache failures degrade to the null cache; they never fail a run.
func (c *CLI) newCache(ctx context.Context, cfg config.Config, noCache bool) cache.Cache {
	if noCache || cfg.Cache.Backend == config.BackendNone {
		return cache.NewNullCache()
	}

	if cfg.Cache.Backend == config.BackendRedis {
		rc, err := cache.NewRedisCache(ctx, cache.RedisConfig{
			Addr: cfg.Cache.RedisAddr,
			DB:   cfg.Cache.RedisDB,
		})
		if err != nil {
			c.Logger.Warn("redis cache unavailable, continuing without cache",
				"addr", cfg.Cache.RedisAddr, "err", err)
			return cache.NewNullCache()
		}
		return rc
	}

	dir, err := cacheDir()
	if err != nil {
		return cache.NewNullCache()
	}
	fc, err := cache.NewFileCache(dir)
	if err != nil {
		c.Logger.Warn("file cache unavailable, continuing without cache", "err", err)
		return cache.NewNullCache()
	}
	return fc
}

// cacheDir returns the cache directory using XDG standard (~/.cache/icoforge/).
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
