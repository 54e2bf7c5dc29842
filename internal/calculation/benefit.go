package calculation

import (
	"github.com/rgehrsitz/aishcalc/internal/domain"
	"github.com/shopspring/decimal"
)

var half = decimal.NewFromFloat(0.5)

// BenefitCalculator applies the exemption tiers and benefit rounding
type BenefitCalculator struct {
	Rules domain.BenefitRules
}

// NewBenefitCalculator creates a calculator for the given rules
func NewBenefitCalculator(rules domain.BenefitRules) *BenefitCalculator {
	return &BenefitCalculator{Rules: rules}
}

// Compute calculates the monthly benefit for the declared income. The
// adjustment factor is added to the benefit after deduction and the result is
// floored at zero. No input is rejected: negative and very large incomes
// follow the same formula.
func (bc *BenefitCalculator) Compute(income domain.IncomeBreakdown, household domain.HouseholdType, factor decimal.Decimal) domain.BenefitResult {
	total := income.Total()
	exemption, deduction := CalculateExemption(total, bc.Rules.TierFor(household))
	deduction = BenefitRounding(deduction)

	before := decimal.Max(decimal.Zero, bc.Rules.MaxBenefit.Sub(deduction))
	after := decimal.Max(decimal.Zero, before.Add(factor))

	return domain.BenefitResult{
		Household:               household,
		TotalIncome:             total,
		Exemption:               exemption,
		Deduction:               deduction,
		BenefitBeforeAdjustment: before,
		AdjustmentFactor:        factor,
		BenefitAfterAdjustment:  after,
		TotalMonthlyIncome:      total.Add(after),
	}
}

// CalculateExemption splits total income into the exempt portion and the
// unrounded deduction for one tier
func CalculateExemption(total decimal.Decimal, tier domain.ExemptionTier) (exemption, deduction decimal.Decimal) {
	switch {
	case total.LessThanOrEqual(tier.FullExemptionCeiling):
		return total, decimal.Zero
	case total.LessThanOrEqual(tier.PartialExemptionCeiling):
		above := total.Sub(tier.FullExemptionCeiling)
		exemption = tier.FullExemptionCeiling.Add(above.Mul(tier.PartialRate))
		exemption = decimal.Min(exemption, tier.MaxExemption)
		return exemption, total.Sub(exemption)
	default:
		return tier.MaxExemption, total.Sub(tier.MaxExemption)
	}
}

// BenefitRounding rounds to a whole dollar: cents of 50 or more round up,
// anything less rounds down. Deductions are never negative.
func BenefitRounding(amount decimal.Decimal) decimal.Decimal {
	if amount.Sub(amount.Floor()).GreaterThanOrEqual(half) {
		return amount.Ceil()
	}
	return amount.Floor()
}

// roundHalfUp rounds to the nearest integer with ties toward +Inf
func roundHalfUp(d decimal.Decimal) decimal.Decimal {
	return d.Add(half).Floor()
}
