package main

import (
	"fmt"

	"github.com/rgehrsitz/aishcalc/internal/compare"
	"github.com/rgehrsitz/aishcalc/internal/config"
	"github.com/rgehrsitz/aishcalc/internal/domain"
	"github.com/rgehrsitz/aishcalc/internal/output"
	"github.com/rgehrsitz/aishcalc/internal/transform"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

func compareCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare [BASE [ALTERNATIVE...]]",
		Short: "Compare the benefit and total income across monthly incomes",
		Long: "Computes the benefit for a base monthly income and each alternative, and shows how much " +
			"of every extra dollar the household keeps. Scenarios come from the arguments, from --scenarios, " +
			"or from --alt changes applied to one base income (the saved inputs when none is given).",
		Example: "  aishcalc compare 1000 1500 2500\n" +
			"  aishcalc compare --scenarios scenarios.yaml\n" +
			"  aishcalc compare 1200 --alt extra_shift --alt 'add_income:source=other,amount=200;set_household:household=family'",
		RunE: withSession(func(cmd *cobra.Command, args []string, s *session) error {
			flags := cmd.Flags()
			path, _ := flags.GetString("scenarios")
			alts, _ := flags.GetStringArray("alt")
			household, _ := flags.GetString("household")

			var base compare.Scenario
			var alternatives []compare.Scenario
			switch {
			case path != "":
				if len(args) > 0 {
					return fmt.Errorf("%w: use either income arguments or --scenarios", domain.ErrInvalidInput)
				}
				sf, err := config.NewInputParser().LoadScenariosFile(path)
				if err != nil {
					return err
				}
				base, alternatives = sf.Base, sf.Alternatives
			case len(alts) > 0:
				if len(args) > 1 {
					return fmt.Errorf("%w: --alt takes at most one base income", domain.ErrInvalidInput)
				}
				var err error
				base, err = baseScenario(cmd, args, s, household)
				if err != nil {
					return err
				}
				registry := transform.NewTransformRegistry()
				for _, desc := range alts {
					transforms, err := registry.ParseAlternative(desc)
					if err != nil {
						return err
					}
					alt, err := transform.Alternative(base, transforms...)
					if err != nil {
						return err
					}
					alternatives = append(alternatives, alt)
				}
			case len(args) >= 2:
				amounts := make([]decimal.Decimal, 0, len(args))
				for _, a := range args {
					amount, err := parseAmount(a)
					if err != nil {
						return err
					}
					amounts = append(amounts, amount)
				}
				scenarios := compare.IncomeScenarios(domain.ParseHouseholdType(household), amounts...)
				base, alternatives = scenarios[0], scenarios[1:]
			default:
				return fmt.Errorf("%w: need a base income and at least one alternative", domain.ErrInvalidInput)
			}

			adjusted, _ := flags.GetBool("adjusted")
			set, err := s.svc.Compare(cmd.Context(), base, alternatives, adjusted)
			if err != nil {
				return err
			}
			return render(cmd, output.ComparisonReport(set))
		}),
	}
	cmd.Flags().String("household", string(domain.HouseholdSingle), "Household type for income arguments: single or family")
	cmd.Flags().String("scenarios", "", "YAML file with a base scenario and alternatives")
	cmd.Flags().StringArray("alt", nil, "Alternative as a template name or transform specs joined by ';' (repeatable)")
	cmd.Flags().Bool("adjusted", false, "Apply the current adjustment factor")
	return cmd
}

// baseScenario is the single income argument, or the saved calculator inputs
func baseScenario(cmd *cobra.Command, args []string, s *session, household string) (compare.Scenario, error) {
	if len(args) == 1 {
		amount, err := parseAmount(args[0])
		if err != nil {
			return compare.Scenario{}, err
		}
		return compare.IncomeScenarios(domain.ParseHouseholdType(household), amount)[0], nil
	}

	inputs := s.svc.CalculatorInputs()
	if cmd.Flags().Changed("household") {
		inputs.Household = domain.ParseHouseholdType(household)
	}
	return compare.Scenario{Name: "saved inputs", Household: inputs.Household, Income: inputs.Income}, nil
}
