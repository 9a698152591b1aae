package cli

import (
	"github.com/spf13/cobra"

	"github.com/unixblacksteel/mindmap/internal/server"
	"github.com/unixblacksteel/mindmap/pkg/chat"
	"github.com/unixblacksteel/mindmap/pkg/errors"
	"github.com/unixblacksteel/mindmap/pkg/observability/prom"
	"github.com/unixblacksteel/mindmap/pkg/pipeline"
)

// serveCommand creates the HTTP API command.
func (c *CLI) serveCommand() *cobra.Command {
	var addr string
	var offline bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the mind-map HTTP API",
		Long: `Serve exposes generation, rendering and export over HTTP, with
Prometheus metrics at /metrics. Without an API key (or with --offline) only
the render and export routes work.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			if addr == "" {
				addr = cfg.Server.Addr
			}

			var gen chat.Generator
			var pgen pipeline.Generator
			if !offline {
				client, err := c.newClient()
				if err != nil {
					printWarning("Generation disabled: %s", errors.UserMessage(err))
				} else {
					gen, pgen = client, client
				}
			}

			runner, err := c.runnerFor(ctx, pgen)
			if err != nil {
				return err
			}
			defer runner.Close()

			render, err := c.renderDefaults()
			if err != nil {
				return err
			}

			metrics := prom.New(appName)
			metrics.Install()

			srv := server.New(server.Config{
				Runner:    runner,
				Generator: gen,
				Metrics:   metrics,
				Logger:    c.Logger,
				Render:    render,
			})
			printInfo("Serving on %s", StyleHighlight.Render(addr))
			return srv.ListenAndServe(ctx, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, :8080)")
	cmd.Flags().BoolVar(&offline, "offline", false, "serve render and export only")
	return cmd
}
