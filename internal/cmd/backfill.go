package cmd

import (
	"fmt"

	"tailor_shop/internal/config"
	"tailor_shop/internal/logger"

	"github.com/spf13/cobra"
)

var (
	backfillDryRun bool
	backfillLimit  int
)

var backfillCmd = &cobra.Command{
	Use:   "backfill",
	Short: "Create production jobs for bills that have none",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Load()
		log := logger.New(cfg.AppEnv)

		a, err := newApp(cfg, log)
		if err != nil {
			return err
		}
		defer a.Close()

		res, err := a.services.Backfill.Run(cmd.Context(), backfillDryRun, backfillLimit)
		if err != nil {
			return err
		}
		verb := "created"
		if res.DryRun {
			verb = "would create"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s %d jobs, %d bills already had one\n", verb, res.Created, res.SkippedExisting)
		return nil
	},
}

func init() {
	backfillCmd.Flags().BoolVar(&backfillDryRun, "dry-run", false, "only count the bills that need a job")
	backfillCmd.Flags().IntVar(&backfillLimit, "limit", 500, "maximum number of bills to process")
	rootCmd.AddCommand(backfillCmd)
}
