package main

import (
	"encoding/json"
	"fmt"
	"math"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mind-engage/examinfo/internal/score"
)

func (c *cli) chartCmd() *cobra.Command {
	var (
		file   string
		by     string
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "chart",
		Short: "Print donut chart slices for an admission",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := readAdmission(file, cmd.InOrStdin())
			if err != nil {
				return err
			}
			var ch score.Chart
			switch by {
			case "category":
				ch = c.scores.Chart(a.Subjects)
			case "test":
				ch = c.scores.ChartByTestType(a.Subjects)
			default:
				return fmt.Errorf("--by must be category or test, got %q", by)
			}
			c.logger.Debug("chart built", zap.String("admission_id", a.ID), zap.Int("points", len(ch.Points)))

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(ch)
			}
			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "SUBJECT\tPOINTS\tSHARE")
			for _, p := range ch.Points {
				fmt.Fprintf(tw, "%s\t%g\t%s\n", p.Name, p.Value, formatPct(p.Percentage))
			}
			fmt.Fprintf(tw, "TOTAL\t%g\t\n", ch.Total)
			return tw.Flush()
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "-", "Admission JSON file, - for stdin")
	cmd.Flags().StringVar(&by, "by", "category", "Slice grouping: category or test")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON instead of a table")
	return cmd
}

func formatPct(p float64) string {
	if math.IsInf(p, 0) || math.IsNaN(p) {
		return "-"
	}
	return fmt.Sprintf("%.1f%%", p)
}
