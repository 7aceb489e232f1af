package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"taglift/internal/catalog"
	"taglift/internal/logging"
)

func newStatusCommand(configFlag *string) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show extraction progress for the catalog inventory",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := loadConfig(configFlag)
			if err != nil {
				return err
			}

			client, err := catalog.NewClient(cfg.Catalog.BaseURL, logging.NewNop(),
				catalog.WithHTTPClient(newHTTPClient(cfg.Catalog.RequestTimeout, 0)))
			if err != nil {
				return err
			}

			stats, err := client.Stats(cmd.Context())
			if err != nil {
				return fmt.Errorf("fetch catalog stats: %w", err)
			}

			out := cmd.OutOrStdout()
			if !isatty.IsTerminal(os.Stdout.Fd()) {
				fmt.Fprintf(out, "total=%d pending=%d extracted=%d\n",
					stats.Total, stats.Pending, stats.Extracted)
				for _, cat := range stats.PerCategory {
					fmt.Fprintf(out, "category=%d name=%q pending=%d extracted=%d\n",
						cat.CategoryID, cat.Name, cat.Pending, cat.Extracted)
				}
				return nil
			}

			fmt.Fprintf(out, "Inventory: %d total, %d pending, %d extracted\n\n",
				stats.Total, stats.Pending, stats.Extracted)

			rows := make([][]string, 0, len(stats.PerCategory))
			for _, cat := range stats.PerCategory {
				rows = append(rows, []string{
					strconv.FormatInt(cat.CategoryID, 10),
					cat.Name,
					strconv.FormatInt(cat.Pending, 10),
					strconv.FormatInt(cat.Extracted, 10),
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"ID", "Category", "Pending", "Extracted"},
				rows,
			))
			return nil
		},
	}
}
