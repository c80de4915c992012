package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/icoforge/icoforge/pkg/cache"
	"github.com/icoforge/icoforge/pkg/config"
	"github.com/icoforge/icoforge/pkg/convert"
)

// runConvert performs a single batch conversion of the source directory.
func (c *CLI) runConvert(ctx context.Context, cfg config.Config, noCache, interactive bool) error {
	cch := c.newCache(ctx, cfg, noCache)
	defer cch.Close()

	opts := convert.Options{
		Src:       cfg.Src,
		Dst:       cfg.Dst,
		Size:      cfg.Size,
		Overwrite: cfg.Overwrite,
		Logger:    loggerFromContext(ctx),
	}

	var (
		summary *convert.Summary
		err     error
	)
	if interactive {
		summary, err = c.runConvertInteractive(ctx, cch, opts)
	} else {
		summary, err = c.runConvertPlain(ctx, cch, opts, cfg.Quiet)
	}
	if err != nil {
		return err
	}

	if !cfg.Quiet {
		c.printSummary(summary, cfg)
	}
	return nil
}

// runConvertPlain converts with per-file log lines. In quiet mode the
// logs are suppressed, so a spinner shows that work is happening.
func (c *CLI) runConvertPlain(ctx context.Context, cch cache.Cache, opts convert.Options, quiet bool) (*convert.Summary, error) {
	conv, err := convert.New(cch, opts)
	if err != nil {
		return nil, err
	}

	if quiet {
		spinner := newSpinnerWithContext(ctx, "Converting images...")
		spinner.Start()
		defer spinner.Stop()
	}

	prog := newProgress(loggerFromContext(ctx))
	summary, err := conv.Run(ctx)
	if err != nil {
		return nil, err
	}
	if !quiet {
		prog.done(fmt.Sprintf("Processed %d images", summary.Total()))
	}
	return summary, nil
}

// runConvertInteractive converts behind a live bubbletea progress view.
// Per-file logging is routed to a discarded logger so it does not fight
// the TUI for the terminal.
func (c *CLI) runConvertInteractive(ctx context.Context, cch cache.Cache, opts convert.Options) (*convert.Summary, error) {
	counter, err := convert.New(cch, opts)
	if err != nil {
		return nil, err
	}
	paths, err := counter.Sources()
	if err != nil {
		return nil, err
	}

	p := tea.NewProgram(newConvertModel(len(paths)), tea.WithContext(ctx), tea.WithOutput(os.Stderr))

	opts.Logger = log.New(io.Discard)
	opts.OnResult = func(r convert.FileResult) {
		p.Send(convertResultMsg{res: r})
	}
	conv, err := convert.New(cch, opts)
	if err != nil {
		return nil, err
	}

	var (
		summary *convert.Summary
		runErr  error
		done    = make(chan struct{})
	)
	go func() {
		defer close(done)
		summary, runErr = conv.Run(ctx)
		p.Send(convertDoneMsg{})
	}()

	if _, err := p.Run(); err != nil {
		// Wait for the batch goroutine so it never outlives the command.
		<-done
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, err
	}
	<-done
	return summary, runErr
}

// printSummary prints the batch outcome and a suggested next step.
func (c *CLI) printSummary(s *convert.Summary, cfg config.Config) {
	switch {
	case s.Total() == 0:
		printInfo("No PNG files found in %s", cfg.Src)
		return
	case s.Failed > 0:
		printWarning("Processed %d images, %d failed", s.Total(), s.Failed)
	default:
		printSuccess("Processed %d images", s.Total())
	}

	printCounts(s.Converted, s.Cached, s.Skipped, s.Failed)
	printFile(cfg.Dst)
	printNextStep("Preview the results", fmt.Sprintf("%s serve --dst %s", appName, cfg.Dst))
}
