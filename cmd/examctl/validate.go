package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var errInvalid = errors.New("scores out of range")

func (c *cli) validateCmd() *cobra.Command {
	var (
		file   string
		strict bool
	)
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check an admission's scores against the validation range",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := readAdmission(file, cmd.InOrStdin())
			if err != nil {
				return err
			}
			errs := c.scores.Validate(a.Subjects)
			out := cmd.OutOrStdout()
			rs := c.scores.Rules()
			if len(errs) == 0 {
				fmt.Fprintf(out, "ok: all scores within %g..%g (%s)\n", rs.Min, rs.Max, rs.Name)
				return nil
			}
			for _, e := range errs {
				fmt.Fprintf(out, "%s\t%s\t%s\n", e.Code, e.SubjectName, e.Message)
			}
			if strict {
				return fmt.Errorf("%w: %d finding(s)", errInvalid, len(errs))
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "-", "Admission JSON file, - for stdin")
	cmd.Flags().BoolVar(&strict, "strict", false, "Exit non-zero when any score is out of range")
	return cmd
}
