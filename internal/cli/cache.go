package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/unixblacksteel/mindmap/pkg/cache"
)

// cacheCommand creates the cache management command.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the response and artifact cache",
	}

	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cachePathCommand())
	cmd.AddCommand(c.cacheInfoCommand())

	return cmd
}

// cacheDir returns the file cache directory from configuration.
func (c *CLI) cacheDir() (string, error) {
	cfg, err := c.loadConfig()
	if err != nil {
		return "", err
	}
	if cfg.Cache.Dir != "" {
		return cfg.Cache.Dir, nil
	}
	return cache.DefaultDir()
}

// cacheClearCommand creates the "cache clear" subcommand.
func (c *CLI) cacheClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove every cached mind map and artifact",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			if cfg.Cache.Backend != cache.BackendFile {
				return fmt.Errorf("cache clear only supports the file backend (configured: %s)", cfg.Cache.Backend)
			}
			dir, err := c.cacheDir()
			if err != nil {
				return fmt.Errorf("get cache dir: %w", err)
			}
			fc, err := cache.NewFileCache(dir)
			if err != nil {
				return err
			}
			if err := fc.Clear(); err != nil {
				return err
			}
			printSuccess("Cleared cache")
			printDetail("Directory: %s", dir)
			return nil
		},
	}
}

// cachePathCommand creates the "cache path" subcommand.
func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the file cache directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := c.cacheDir()
			if err != nil {
				return fmt.Errorf("get cache dir: %w", err)
			}
			fmt.Fprintln(c.Out, dir)
			return nil
		},
	}
}

// cacheInfoCommand creates the "cache info" subcommand.
func (c *CLI) cacheInfoCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Show the configured cache backend",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			printKeyValue("backend", cfg.Cache.Backend)
			printKeyValue("ttl", cfg.Cache.TTL.String())
			switch cfg.Cache.Backend {
			case cache.BackendFile:
				dir, err := c.cacheDir()
				if err != nil {
					return err
				}
				printKeyValue("directory", dir)
			case cache.BackendRedis:
				printKeyValue("address", cfg.Cache.RedisAddr)
			case cache.BackendMongo:
				printKeyValue("database", cfg.Cache.MongoDatabase)
			}
			return nil
		},
	}
}
