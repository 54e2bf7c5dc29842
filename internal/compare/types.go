package compare

import (
	"fmt"

	"github.com/rgehrsitz/aishcalc/internal/domain"
	"github.com/shopspring/decimal"
)

// Scenario is one household income situation
type Scenario struct {
	Name      string                 `json:"name" yaml:"name"`
	Household domain.HouseholdType   `json:"household" yaml:"household"`
	Income    domain.IncomeBreakdown `json:"income" yaml:"income"`
}

// ComparisonResult represents a single scenario with its comparison metrics
type ComparisonResult struct {
	ScenarioName string               `json:"scenarioName"`
	Household    domain.HouseholdType `json:"household"`
	Result       domain.BenefitResult `json:"result"`

	// Key Metrics
	TotalIncome        decimal.Decimal `json:"totalIncome"`
	Benefit            decimal.Decimal `json:"benefit"`
	TotalMonthlyIncome decimal.Decimal `json:"totalMonthlyIncome"`

	// Comparison to Base
	IncomeDiffFromBase  decimal.Decimal `json:"incomeDiffFromBase"`
	BenefitDiffFromBase decimal.Decimal `json:"benefitDiffFromBase"`
	TotalDiffFromBase   decimal.Decimal `json:"totalDiffFromBase"`
	// KeptPct is the share of the extra income that survives the benefit
	// reduction, in percent. Zero when the income is unchanged.
	KeptPct decimal.Decimal `json:"keptPct"`
}

// ComparisonSet represents a collection of scenario comparisons
type ComparisonSet struct {
	BaseScenarioName   string             `json:"baseScenarioName"`
	Factor             decimal.Decimal    `json:"factor"`
	BaseResult         *ComparisonResult  `json:"baseResult"`
	AlternativeResults []ComparisonResult `json:"alternativeResults"`
	Recommendations    []string           `json:"recommendations"`
}

// All returns the base result followed by the alternatives
func (cs *ComparisonSet) All() []ComparisonResult {
	out := make([]ComparisonResult, 0, len(cs.AlternativeResults)+1)
	if cs.BaseResult != nil {
		out = append(out, *cs.BaseResult)
	}
	return append(out, cs.AlternativeResults...)
}

// MetricsCalculator extracts key metrics from benefit results
type MetricsCalculator struct{}

// NewMetricsCalculator creates a new metrics calculator
func NewMetricsCalculator() *MetricsCalculator {
	return &MetricsCalculator{}
}

// CalculateMetrics computes the comparison metrics for one scenario
func (mc *MetricsCalculator) CalculateMetrics(name string, res domain.BenefitResult) ComparisonResult {
	return ComparisonResult{
		ScenarioName:       name,
		Household:          res.Household,
		Result:             res,
		TotalIncome:        res.TotalIncome,
		Benefit:            res.BenefitAfterAdjustment,
		TotalMonthlyIncome: res.TotalMonthlyIncome,
	}
}

// CalculateComparison computes comparison metrics between a scenario and a base
func (mc *MetricsCalculator) CalculateComparison(scenario, base ComparisonResult) ComparisonResult {
	scenario.IncomeDiffFromBase = scenario.TotalIncome.Sub(base.TotalIncome)
	scenario.BenefitDiffFromBase = scenario.Benefit.Sub(base.Benefit)
	scenario.TotalDiffFromBase = scenario.TotalMonthlyIncome.Sub(base.TotalMonthlyIncome)

	if !scenario.IncomeDiffFromBase.IsZero() {
		scenario.KeptPct = scenario.TotalDiffFromBase.
			Div(scenario.IncomeDiffFromBase).
			Mul(decimal.NewFromInt(100)).
			Round(1)
	}
	return scenario
}

// GenerateRecommendations creates notes based on comparison results
func GenerateRecommendations(compSet *ComparisonSet) []string {
	recommendations := []string{}

	if len(compSet.AlternativeResults) == 0 || compSet.BaseResult == nil {
		return recommendations
	}

	// Find best scenario by total monthly income
	best := compSet.BaseResult
	for i := range compSet.AlternativeResults {
		alt := &compSet.AlternativeResults[i]
		if alt.TotalMonthlyIncome.GreaterThan(best.TotalMonthlyIncome) {
			best = alt
		}
	}

	if best != compSet.BaseResult {
		recommendations = append(recommendations,
			"Highest total income: "+best.ScenarioName+" gives $"+best.TotalDiffFromBase.StringFixed(2)+
				" more per month than "+compSet.BaseScenarioName)
	}

	for _, alt := range compSet.AlternativeResults {
		switch {
		case alt.Benefit.IsZero() && !compSet.BaseResult.Benefit.IsZero():
			recommendations = append(recommendations,
				alt.ScenarioName+": no benefit is paid at this income")
		case alt.IncomeDiffFromBase.IsPositive() && alt.BenefitDiffFromBase.IsNegative():
			recommendations = append(recommendations,
				fmt.Sprintf("%s: benefit falls by $%s, the household keeps %s%% of the extra income",
					alt.ScenarioName, alt.BenefitDiffFromBase.Neg().StringFixed(2), alt.KeptPct.StringFixed(1)))
		}
	}

	return recommendations
}
