package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mapforge/mapforge/pkg/cache"
)

// newCacheCmd creates the cache management command.
func newCacheCmd(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the response cache",
	}

	cmd.AddCommand(newCacheClearCmd(configPath))
	cmd.AddCommand(newCachePathCmd(configPath))

	return cmd
}

// fileCache builds the configured file cache. Cache management only
// applies to the file backend; redis is managed by redis tooling.
func fileCache(configPath *string) (*cache.FileCache, error) {
	cfg, err := loadConfig(*configPath)
	if err != nil {
		return nil, err
	}
	backend, err := cache.NewFileCache(cfg.Cache.Dir)
	if err != nil {
		return nil, fmt.Errorf("open cache: %w", err)
	}
	return backend.(*cache.FileCache), nil
}

// newCacheClearCmd creates the "cache clear" subcommand.
func newCacheClearCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Clear all cached responses",
		RunE: func(cmd *cobra.Command, args []string) error {
			backend, err := fileCache(configPath)
			if err != nil {
				return err
			}
			if err := backend.Clear(); err != nil {
				return fmt.Errorf("clear cache: %w", err)
			}
			printSuccess("Cache cleared")
			printDetail("Directory: %s", backend.Dir())
			return nil
		},
	}
}

// newCachePathCmd creates the "cache path" subcommand.
func newCachePathCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the cache directory path",
		RunE: func(cmd *cobra.Command, args []string) error {
			backend, err := fileCache(configPath)
			if err != nil {
				return err
			}
			fmt.Println(backend.Dir())
			return nil
		},
	}
}
