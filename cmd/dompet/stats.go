package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"dompet/internal/services"
	"dompet/internal/stats"
)

func statsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Print income, expenses and budgets for a period",
		Long: `Print a period report for one user: totals and savings rate, expenses by
category, the monthly series and the status of every budget.

Examples:
  # Current month
  dompet stats --user 0190a6b2-1111-7000-8000-000000000001

  # Last three calendar months
  dompet stats --user 0190a6b2-1111-7000-8000-000000000001 --period 3months

  # Explicit range
  dompet stats --user 0190a6b2-1111-7000-8000-000000000001 --from 2024-01-01 --to 2024-03-31`,
		Args: cobra.NoArgs,
		RunE: runStats,
	}

	cmd.Flags().String("period", string(stats.DefaultPeriod), "month, 3months, 6months or year")
	cmd.Flags().String("from", "", "start date (YYYY-MM-DD), requires --to")
	cmd.Flags().String("to", "", "end date (YYYY-MM-DD), requires --from")
	_ = viper.BindPFlag("stats.period", cmd.Flags().Lookup("period"))

	return cmd
}

func runStats(cmd *cobra.Command, _ []string) error {
	userID, err := requireUser()
	if err != nil {
		return err
	}

	from, _ := cmd.Flags().GetString("from")
	to, _ := cmd.Flags().GetString("to")
	rng, err := stats.ResolveRange(viper.GetString("stats.period"), from, to, time.Now())
	if err != nil {
		return fmt.Errorf("invalid report range: %w", err)
	}

	db, cfg, closeDB, err := openDB()
	if err != nil {
		return err
	}
	defer closeDB()

	svc := services.NewStatisticsService(db, cfg.RecentTransactions)
	report, err := svc.GetStatistics(cmd.Context(), userID, rng)
	if err != nil {
		return fmt.Errorf("failed to build statistics: %w", err)
	}

	renderStatistics(cmd.OutOrStdout(), report, newPrinter())
	return nil
}
