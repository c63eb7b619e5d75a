// Command examctl works with subject-score allocations from the command line:
// it renders chart data, validates score ranges and syncs the local catalog
// from the upstream API.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mind-engage/examinfo/internal/config"
	"github.com/mind-engage/examinfo/internal/logging"
	"github.com/mind-engage/examinfo/internal/score"
)

type cli struct {
	verbose   bool
	rulesFile string

	cfg    config.Config
	logger *zap.Logger
	scores *score.Service
}

func newRootCmd() *cobra.Command {
	c := &cli{}
	root := &cobra.Command{
		Use:           "examctl",
		Short:         "Entrance-exam subject score tools",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			c.cfg = config.FromEnv()
			if c.rulesFile != "" {
				c.cfg.RulesFile = c.rulesFile
			}
			var err error
			c.logger, err = logging.New(false, c.verbose || c.cfg.Verbose)
			if err != nil {
				return err
			}
			rules, err := config.LoadRules(c.cfg.RulesFile)
			if err != nil {
				return err
			}
			c.scores = rules.Service()
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if c.logger != nil {
				_ = c.logger.Sync()
			}
		},
	}
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "Enable debug logging")
	root.PersistentFlags().StringVar(&c.rulesFile, "rules", "", "Rules YAML (default: $RULES_FILE)")

	root.AddCommand(c.chartCmd(), c.validateCmd(), c.syncCmd())
	return root
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "examctl:", err)
		os.Exit(1)
	}
}
