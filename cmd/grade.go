package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/okian/rostr/internal/domain/grading"
)

const gradeExample = `  rostr grade --name "Gerrit Cole" --k-pct 28.5 --ip 180 --era 3.25
  rostr grade --k-pct 35 --ip 200 --era 2.0 --json`

func newGradeCmd() *cobra.Command {
	var (
		name          string
		kPct, ip, era float64
		asJSON        bool
	)
	cmd := &cobra.Command{
		Use:     "grade",
		Short:   "Grade a single stat line without a server",
		Example: gradeExample,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			for _, f := range []string{"k-pct", "ip", "era"} {
				if !cmd.Flags().Changed(f) {
					return fmt.Errorf("--%s is required", f)
				}
			}
			report := grading.Evaluate(name, grading.Stats{
				StrikeoutRate:  grading.StrikeoutRateFromPercent(kPct),
				InningsPitched: ip,
				ERA:            era,
			})

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(report)
			}
			if name != "" {
				fmt.Fprintf(out, "%s\n", name)
			}
			fmt.Fprintf(out, "Grade: %.2f (%s)\n\n%s\n", report.Grade, report.Tier, report.Analysis)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "pitcher name shown in the report")
	cmd.Flags().Float64Var(&kPct, "k-pct", 0, "strikeout percentage, e.g. 28.5")
	cmd.Flags().Float64Var(&ip, "ip", 0, "innings pitched")
	cmd.Flags().Float64Var(&era, "era", 0, "earned run average")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the report as JSON")
	return cmd
}
