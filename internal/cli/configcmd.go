package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"

	"github.com/unixblacksteel/mindmap/pkg/config"
)

// configCommand creates the configuration inspection command.
func (c *CLI) configCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect or create the configuration file",
	}
	cmd.AddCommand(c.configPathCommand())
	cmd.AddCommand(c.configShowCommand())
	cmd.AddCommand(c.configInitCommand())
	return cmd
}

func (c *CLI) configFile() (string, error) {
	if c.configPath != "" {
		return c.configPath, nil
	}
	return config.DefaultPath()
}

func (c *CLI) configPathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the configuration file path",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := c.configFile()
			if err != nil {
				return err
			}
			fmt.Fprintln(c.Out, path)
			return nil
		},
	}
}

func (c *CLI) configShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration (API key redacted)",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			shown := *cfg
			if shown.API.APIKey != "" {
				shown.API.APIKey = "********"
			}
			return toml.NewEncoder(c.Out).Encode(shown)
		},
	}
}

func (c *CLI) configInitCommand() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write the default configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := c.configFile()
			if err != nil {
				return err
			}
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			}
			if err := writeDefaultConfig(path); err != nil {
				return err
			}
			printSuccess("Wrote %s", path)
			printNextStep("Set your API key", "export MINDMAP_API_KEY=...")
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")
	return cmd
}

func writeDefaultConfig(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return err
	}
	if err := toml.NewEncoder(f).Encode(config.Default()); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
