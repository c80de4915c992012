package cli

import (
	"context"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/icoforge/icoforge/pkg/config"
	"github.com/icoforge/icoforge/pkg/convert"
	"github.com/icoforge/icoforge/pkg/watch"
)

// watchCommand creates the watch command for continuous conversion.
func (c *CLI) watchCommand(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Convert PNGs continuously as they appear in the source directory",
		Long: `Watch the source directory and convert PNGs as they are created or
modified. Rapid successive writes to the same file are debounced so
half-written files are not picked up.

Watch implies --overwrite for changed files: a source that changes on
disk replaces its icon. The command runs until interrupted.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.resolveConfig(cmd, *flags)
			if err != nil {
				return err
			}
			return c.runWatch(cmd.Context(), cfg, flags.noCache)
		},
	}
}

// runWatch converts the existing files once, then follows changes.
func (c *CLI) runWatch(ctx context.Context, cfg config.Config, noCache bool) error {
	logger := loggerFromContext(ctx)
	cch := c.newCache(ctx, cfg, noCache)
	defer cch.Close()

	// Changed sources must replace their icons, otherwise every edit
	// after the first would be skipped as already existing.
	conv, err := convert.New(cch, convert.Options{
		Src:       cfg.Src,
		Dst:       cfg.Dst,
		Size:      cfg.Size,
		Overwrite: true,
		Logger:    logger,
	})
	if err != nil {
		return err
	}

	// Initial pass over whatever is already there.
	summary, err := conv.Run(ctx)
	if err != nil {
		return err
	}
	logger.Info("initial pass complete",
		"converted", summary.Converted, "cached", summary.Cached,
		"skipped", summary.Skipped, "failed", summary.Failed)

	w, err := watch.New(cfg.Src, logger)
	if err != nil {
		return err
	}

	return w.Run(ctx, func(ctx context.Context, path string) {
		res := conv.File(ctx, summary.RunID, path)
		if res.Status == convert.StatusConverted {
			logger.Info("updated icon", "file", filepath.Base(res.Output))
		}
	})
}
