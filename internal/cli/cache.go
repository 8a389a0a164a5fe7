package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/pydigger/pkg/cache"
)

// cacheCommand creates the cache management command.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the metadata response cache",
	}

	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cachePathCommand())

	return cmd
}

// cacheClearCommand creates the "cache clear" subcommand.
func (c *CLI) cacheClearCommand() *cobra.Command {
	var pattern string

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove cached metadata documents",
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runCacheClear(cmd.Context(), pattern)
		},
	}
	cmd.Flags().StringVar(&pattern, "pattern", "pypi:*", "key pattern to remove (redis backend only)")

	return cmd
}

func (c *CLI) runCacheClear(ctx context.Context, pattern string) error {
	switch c.Config.Cache.Backend {
	case backendNone:
		printInfo("Caching is disabled")
		return nil
	case backendRedis:
		rc, err := cache.NewRedisCache(ctx, c.Config.Cache.RedisURL)
		if err != nil {
			return err
		}
		defer rc.Close()
		n, err := rc.Clear(ctx, pattern)
		if err != nil {
			return err
		}
		printSuccess("Cleared %d cached entries", n)
		printDetail("Redis: %s (%s)", c.Config.Cache.RedisURL, pattern)
		return nil
	}

	dir, err := c.cacheDir()
	if err != nil {
		return fmt.Errorf("get cache dir: %w", err)
	}
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		printInfo("Cache is empty")
		return nil
	}
	fc, err := cache.NewFileCache(dir)
	if err != nil {
		return err
	}
	n, err := fc.Clear()
	if err != nil {
		return err
	}
	printSuccess("Cleared %d cached entries", n)
	printDetail("Directory: %s", dir)
	return nil
}

// cachePathCommand creates the "cache path" subcommand.
func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the cache location",
		RunE: func(cmd *cobra.Command, args []string) error {
			if c.Config.Cache.Backend == backendRedis {
				fmt.Println(c.Config.Cache.RedisURL)
				return nil
			}
			dir, err := c.cacheDir()
			if err != nil {
				return fmt.Errorf("get cache dir: %w", err)
			}
			fmt.Println(dir)
			return nil
		},
	}
}
