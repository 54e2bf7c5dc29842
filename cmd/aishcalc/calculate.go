package main

import (
	"fmt"

	"github.com/rgehrsitz/aishcalc/internal/config"
	"github.com/rgehrsitz/aishcalc/internal/domain"
	"github.com/rgehrsitz/aishcalc/internal/output"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

func calculateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "calculate [input-file]",
		Short: "Estimate the monthly benefit",
		Long: "Estimates the monthly benefit with the current adjustment factor. Income comes " +
			"from a YAML input file, from flags, or from the inputs saved by the last --save.",
		Args: cobra.MaximumNArgs(1),
		RunE: withSession(func(cmd *cobra.Command, args []string, s *session) error {
			inputs, err := calculatorInputs(cmd, args, s)
			if err != nil {
				return err
			}

			result := s.svc.Preview(inputs.Income, inputs.Household)
			report := output.BenefitReport(result)

			if save, _ := cmd.Flags().GetBool("save"); save {
				if err := s.svc.SaveCalculatorInputs(cmd.Context(), inputs); err != nil {
					return err
				}
				report.Notice = "Inputs saved."
			}
			return render(cmd, report)
		}),
	}
	cmd.Flags().String("household", "", "Household type: single or family")
	cmd.Flags().String("employment", "", "Monthly employment income")
	cmd.Flags().String("self-employment", "", "Monthly self-employment income")
	cmd.Flags().String("other", "", "Other monthly income")
	cmd.Flags().Bool("save", false, "Remember these inputs for the next calculation")
	return cmd
}

// calculatorInputs resolves the inputs in priority order: input file, then
// the saved inputs with any flags applied on top
func calculatorInputs(cmd *cobra.Command, args []string, s *session) (domain.CalculatorInputs, error) {
	if len(args) == 1 {
		inputs, err := config.NewInputParser().LoadFromFile(args[0])
		if err != nil {
			return domain.CalculatorInputs{}, err
		}
		return *inputs, nil
	}

	inputs := s.svc.CalculatorInputs()
	flags := cmd.Flags()
	if flags.Changed("household") {
		v, _ := flags.GetString("household")
		inputs.Household = domain.ParseHouseholdType(v)
	}
	for _, f := range []struct {
		name string
		dst  *decimal.Decimal
	}{
		{"employment", &inputs.Income.Employment},
		{"self-employment", &inputs.Income.SelfEmployment},
		{"other", &inputs.Income.Other},
	} {
		if !flags.Changed(f.name) {
			continue
		}
		v, _ := flags.GetString(f.name)
		amount, err := parseAmount(v)
		if err != nil {
			return domain.CalculatorInputs{}, fmt.Errorf("--%s: %w", f.name, err)
		}
		*f.dst = amount
	}

	if err := config.NewInputParser().ValidateInputs(&inputs); err != nil {
		return domain.CalculatorInputs{}, err
	}
	return inputs, nil
}

func validateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate [input-file]",
		Short: "Validate a calculator input file or a benefit rules file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			parser := config.NewInputParser()
			if rules, _ := cmd.Flags().GetBool("rules"); rules {
				if _, err := parser.LoadRulesFile(args[0]); err != nil {
					return err
				}
				return render(cmd, output.NoticeReport("Rules file %s is valid.", args[0]))
			}
			if _, err := parser.LoadFromFile(args[0]); err != nil {
				return err
			}
			return render(cmd, output.NoticeReport("Input file %s is valid.", args[0]))
		},
	}
	cmd.Flags().Bool("rules", false, "Treat the file as a benefit rules file")
	return cmd
}

func periodCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "period YYYY-MM",
		Short: "Estimate one benefit month from its reporting-period paydays",
		Args:  cobra.ExactArgs(1),
		RunE: withSession(func(cmd *cobra.Command, args []string, s *session) error {
			key, err := domain.ParseYearMonth(args[0])
			if err != nil {
				return err
			}
			return render(cmd, output.PeriodReport(s.svc.PeriodSummary(key)))
		}),
	}
}

func parseAmount(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: invalid amount %q", domain.ErrInvalidInput, s)
	}
	return d, nil
}
