package main

import (
	"github.com/rgehrsitz/aishcalc/internal/breakeven"
	"github.com/rgehrsitz/aishcalc/internal/domain"
	"github.com/rgehrsitz/aishcalc/internal/output"
	"github.com/spf13/cobra"
)

func thresholdCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "threshold",
		Short: "Find the monthly income at which the benefit stops or falls to a target",
		Long: "Searches the lowest monthly income at which the benefit is at or below the target " +
			"(zero by default). Without --household both household types are solved.",
		Args: cobra.NoArgs,
		RunE: withSession(func(cmd *cobra.Command, args []string, s *session) error {
			flags := cmd.Flags()
			req := breakeven.Request{Goal: breakeven.GoalCutoff}

			if flags.Changed("household") {
				v, _ := flags.GetString("household")
				req.Household = domain.ParseHouseholdType(v)
			}
			if flags.Changed("target") {
				v, _ := flags.GetString("target")
				target, err := parseAmount(v)
				if err != nil {
					return err
				}
				req.Goal = breakeven.GoalMatchBenefit
				req.TargetBenefit = target
			}
			if flags.Changed("max-income") {
				v, _ := flags.GetString("max-income")
				maxIncome, err := parseAmount(v)
				if err != nil {
					return err
				}
				req.MaxIncome = &maxIncome
			}

			adjusted, _ := flags.GetBool("adjusted")
			results, err := s.svc.Thresholds(cmd.Context(), req, adjusted)
			if err != nil {
				return err
			}
			return render(cmd, output.ThresholdReport(results...))
		}),
	}
	cmd.Flags().String("household", "", "Household type: single or family (default both)")
	cmd.Flags().String("target", "", "Target monthly benefit (default 0, the cut-off income)")
	cmd.Flags().String("max-income", "", "Upper bound of the income search")
	cmd.Flags().Bool("adjusted", false, "Apply the current adjustment factor")
	return cmd
}
