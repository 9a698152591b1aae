package cli

import (
	"github.com/spf13/cobra"

	"github.com/unixblacksteel/mindmap/pkg/buildinfo"
)

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Generate, render and export interactive mind maps",
		Long: `mindmap turns a topic or a hierarchical JSON/YAML document into a
horizontal tree diagram with hover highlighting, and exports it as SVG, PNG
or PDF. It also talks to the Gemini API for study, research and summary
answers, image generation and generated mind maps.`,
		Version:      buildinfo.Get().Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())

	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/mindmap/config.toml)")
	root.PersistentFlags().BoolVar(&c.noCache, "no-cache", false, "disable the response and artifact cache")

	root.AddCommand(c.renderCommand())
	root.AddCommand(c.generateCommand())
	root.AddCommand(c.askCommand())
	root.AddCommand(c.imageCommand())
	root.AddCommand(c.chatCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.completionCommand())

	return root
}
