package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mind-engage/examinfo/internal/app"
)

func (c *cli) syncCmd() *cobra.Command {
	var concurrency int
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Import every admission from the upstream API into the local catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if concurrency > 0 {
				c.cfg.SyncConcurrency = concurrency
			}
			ctx := cmd.Context()
			cat, err := app.OpenCatalog(ctx, c.cfg)
			if err != nil {
				return err
			}
			defer cat.Close()

			rep, err := app.NewSyncer(c.cfg, cat, c.logger.Named("sync")).Run(ctx)
			if err != nil {
				return err
			}
			c.logger.Info("sync done", zap.String("run_id", rep.RunID), zap.Int("imported", rep.Imported))
			fmt.Fprintf(cmd.OutOrStdout(), "run %s: %d page(s), %d imported, %d skipped in %s\n",
				rep.RunID, rep.Pages, rep.Imported, rep.Skipped, rep.Duration)
			return nil
		},
	}
	cmd.Flags().IntVar(&concurrency, "concurrency", 0, "Parallel detail fetches (default: $SYNC_CONCURRENCY)")
	return cmd
}
