// Package compare evaluates the benefit for several income scenarios and
// compares each against a base scenario.
package compare

import (
	"context"
	"fmt"

	"github.com/rgehrsitz/aishcalc/internal/calculation"
	"github.com/rgehrsitz/aishcalc/internal/domain"
	"github.com/shopspring/decimal"
)

// CompareEngine orchestrates scenario comparison
type CompareEngine struct {
	CalcEngine        *calculation.CalculationEngine
	MetricsCalculator *MetricsCalculator
}

// NewCompareEngine creates a new comparison engine
func NewCompareEngine(calcEngine *calculation.CalculationEngine) *CompareEngine {
	return &CompareEngine{
		CalcEngine:        calcEngine,
		MetricsCalculator: NewMetricsCalculator(),
	}
}

// CompareScenarios computes every scenario with the same adjustment factor
// and compares the alternatives against base
func (ce *CompareEngine) CompareScenarios(
	ctx context.Context,
	base Scenario,
	alternatives []Scenario,
	factor decimal.Decimal,
) (*ComparisonSet, error) {

	if err := validateScenario(base); err != nil {
		return nil, fmt.Errorf("base scenario: %w", err)
	}
	baseResult := ce.MetricsCalculator.CalculateMetrics(base.Name,
		ce.CalcEngine.Benefit.Compute(base.Income, base.Household, factor))

	results := make([]ComparisonResult, 0, len(alternatives))
	for _, alt := range alternatives {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := validateScenario(alt); err != nil {
			return nil, fmt.Errorf("scenario %s: %w", alt.Name, err)
		}

		altResult := ce.MetricsCalculator.CalculateMetrics(alt.Name,
			ce.CalcEngine.Benefit.Compute(alt.Income, alt.Household, factor))
		results = append(results, ce.MetricsCalculator.CalculateComparison(altResult, baseResult))
	}

	compSet := &ComparisonSet{
		BaseScenarioName:   base.Name,
		Factor:             factor,
		BaseResult:         &baseResult,
		AlternativeResults: results,
	}
	compSet.Recommendations = GenerateRecommendations(compSet)

	return compSet, nil
}

// IncomeScenarios builds one employment-income scenario per amount, named
// after the amount
func IncomeScenarios(household domain.HouseholdType, amounts ...decimal.Decimal) []Scenario {
	scenarios := make([]Scenario, 0, len(amounts))
	for _, amount := range amounts {
		scenarios = append(scenarios, Scenario{
			Name:      "$" + amount.StringFixed(2),
			Household: household,
			Income:    domain.IncomeFromTotal(amount),
		})
	}
	return scenarios
}

func validateScenario(s Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("%w: scenario name is required", domain.ErrInvalidInput)
	}
	if !s.Household.IsKnown() {
		return fmt.Errorf("%w: household must be %q or %q, got %q",
			domain.ErrInvalidInput, domain.HouseholdSingle, domain.HouseholdFamily, s.Household)
	}
	return nil
}
