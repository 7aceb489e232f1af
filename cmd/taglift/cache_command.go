package main

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"taglift/internal/bankcache"
	"taglift/internal/logging"
)

func newCacheCommand(configFlag *string) *cobra.Command {
	cacheCmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect and maintain the bank response cache",
	}

	cacheCmd.AddCommand(newCacheStatsCommand(configFlag))
	cacheCmd.AddCommand(newCachePruneCommand(configFlag))

	return cacheCmd
}

func newCacheStatsCommand(configFlag *string) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show cached search and question counts",
		RunE: func(cmd *cobra.Command, args []string) error {
			cache, err := openCache(configFlag)
			if err != nil {
				return err
			}
			defer cache.Close()

			searches, questions, err := cache.Counts()
			if err != nil {
				return fmt.Errorf("read cache counts: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Kind", "Entries"},
				[][]string{
					{"Search results", strconv.FormatInt(searches, 10)},
					{"Questions", strconv.FormatInt(questions, 10)},
				},
			))
			return nil
		},
	}
}

func newCachePruneCommand(configFlag *string) *cobra.Command {
	return &cobra.Command{
		Use:   "prune",
		Short: "Delete expired cache entries",
		RunE: func(cmd *cobra.Command, args []string) error {
			cache, err := openCache(configFlag)
			if err != nil {
				return err
			}
			defer cache.Close()

			pruned, err := cache.PruneExpired()
			if err != nil {
				return fmt.Errorf("prune cache: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Pruned %d expired entries\n", pruned)
			return nil
		},
	}
}

func openCache(configFlag *string) (*bankcache.Cache, error) {
	cfg, _, err := loadConfig(configFlag)
	if err != nil {
		return nil, err
	}
	if !cfg.Cache.Enabled {
		return nil, errors.New("bank cache is disabled in the configuration")
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, err
	}
	return bankcache.Open(cfg.Cache.Path, time.Duration(cfg.Cache.TTLHours)*time.Hour, logging.NewNop())
}
