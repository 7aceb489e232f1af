package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"taglift/internal/agent"
	"taglift/internal/bank"
	"taglift/internal/bankcache"
	"taglift/internal/catalog"
	"taglift/internal/config"
	"taglift/internal/logging"
)

func newRunCommand(configFlag *string) *cobra.Command {
	var maxQuestions int
	var workers int

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the extraction agent until the inventory drains",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := loadConfig(configFlag)
			if err != nil {
				return err
			}
			if err := cfg.EnsureDirectories(); err != nil {
				return err
			}
			if maxQuestions > 0 {
				cfg.Agent.MaxQuestions = maxQuestions
			}
			if workers > 0 {
				cfg.Agent.Workers = workers
			}

			logger, err := logging.NewFromConfig(cfg)
			if err != nil {
				return err
			}
			logger = logger.With(logging.String(logging.FieldRunID, uuid.NewString()))

			lock := flock.New(cfg.LockPath())
			locked, err := lock.TryLock()
			if err != nil {
				return fmt.Errorf("acquire instance lock: %w", err)
			}
			if !locked {
				return errors.New("another taglift instance is already running")
			}
			defer lock.Unlock()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			runner, cache, err := buildAgent(cfg, logger)
			if err != nil {
				return err
			}
			if cache != nil {
				defer cache.Close()
			}

			stats, err := runner.Run(ctx)
			if err != nil && !errors.Is(err, context.Canceled) {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), renderRunSummary(stats))
			return nil
		},
	}

	cmd.Flags().IntVar(&maxQuestions, "max-questions", 0, "Stop after this many questions (0 = no limit)")
	cmd.Flags().IntVar(&workers, "workers", 0, "Concurrent workers (overrides config)")
	return cmd
}

// buildAgent wires the credential manager, bank client, catalog client and
// optional response cache into a ready-to-run agent.
func buildAgent(cfg *config.Config, logger *slog.Logger) (*agent.Agent, *bankcache.Cache, error) {
	creds, err := newCredentialManager(cfg, logger)
	if err != nil {
		return nil, nil, err
	}

	bankOpts := []bank.Option{
		bank.WithMinSimilarity(cfg.Bank.MinSimilarity),
		bank.WithHTTPClient(newHTTPClient(cfg.Bank.RequestTimeout, cfg.Bank.ConnectTimeout)),
	}

	var cache *bankcache.Cache
	if cfg.Cache.Enabled {
		cache, err = bankcache.Open(cfg.Cache.Path, time.Duration(cfg.Cache.TTLHours)*time.Hour, logger)
		if err != nil {
			logger.Warn("bank cache unavailable, continuing without it", logging.Error(err))
		} else {
			if pruned, pruneErr := cache.PruneExpired(); pruneErr != nil {
				logger.Warn("failed to prune bank cache", logging.Error(pruneErr))
			} else if pruned > 0 {
				logger.Debug("pruned expired cache entries", logging.Int64("entries", pruned))
			}
			bankOpts = append(bankOpts, bank.WithCache(cache))
		}
	}

	bankClient, err := bank.NewClient(cfg.Bank.BaseURL, cfg.Bank.TeachingType, creds, logger, bankOpts...)
	if err != nil {
		closeCache(cache)
		return nil, nil, err
	}

	catalogClient, err := catalog.NewClient(cfg.Catalog.BaseURL, logger,
		catalog.WithHTTPClient(newHTTPClient(cfg.Catalog.RequestTimeout, 0)))
	if err != nil {
		closeCache(cache)
		return nil, nil, err
	}

	runner, err := agent.New(agent.Config{
		Categories:           cfg.Catalog.Categories,
		YearID:               cfg.Catalog.YearID,
		Workers:              cfg.Agent.Workers,
		MaxQuestions:         cfg.Agent.MaxQuestions,
		DelayMin:             time.Duration(cfg.Agent.DelayMinMillis) * time.Millisecond,
		DelayMax:             time.Duration(cfg.Agent.DelayMaxMillis) * time.Millisecond,
		MaxConsecutiveErrors: cfg.Agent.MaxConsecutiveErrors,
		LongPause:            time.Duration(cfg.Agent.LongPauseSeconds) * time.Second,
		MaxServerDownRounds:  cfg.Agent.MaxServerDownRounds,
		EmptySweepDelay:      time.Duration(cfg.Agent.EmptySweepSeconds) * time.Second,
		OfficialThreshold:    cfg.Bank.OfficialThreshold,
	}, catalogClient, bankClient, logger)
	if err != nil {
		closeCache(cache)
		return nil, nil, err
	}
	return runner, cache, nil
}

func closeCache(cache *bankcache.Cache) {
	if cache != nil {
		cache.Close()
	}
}

func renderRunSummary(stats agent.Stats) string {
	rows := [][]string{
		{"Processed", fmt.Sprintf("%d", stats.Processed)},
		{"Found", fmt.Sprintf("%d (%.1f%%)", stats.Found, stats.FoundRate()*100)},
		{"Low confidence", fmt.Sprintf("%d", stats.LowConfidence)},
		{"Not found", fmt.Sprintf("%d", stats.NotFound)},
		{"Errors", fmt.Sprintf("%d", stats.Errors)},
		{"Saved", fmt.Sprintf("%d", stats.Saved)},
		{"Elapsed", time.Since(stats.StartedAt).Round(time.Second).String()},
	}
	return renderTable([]string{"Metric", "Value"}, rows)
}
