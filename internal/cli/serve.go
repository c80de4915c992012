package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/icoforge/icoforge/pkg/server"
)

// serveCommand creates the serve command for the icon preview server.
func (c *CLI) serveCommand(flags *rootFlags) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Preview generated icons in a browser",
		Long: `Serve a read-only preview of the destination directory: an HTML grid
of all generated icons, served locally. Useful for eyeballing a batch
without opening files one by one.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.resolveConfig(cmd, *flags)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("addr") {
				cfg.Serve.Addr = addr
			}

			if !cfg.Quiet {
				printInfo("Previewing %s", cfg.Dst)
				printNextStep("Open", fmt.Sprintf("http://%s/", cfg.Serve.Addr))
			}

			s := server.New(cfg.Dst, loggerFromContext(cmd.Context()))
			return s.ListenAndServe(cmd.Context(), cfg.Serve.Addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, localhost:8473)")

	return cmd
}
