package calculation

import (
	"github.com/rgehrsitz/aishcalc/internal/domain"
	"github.com/shopspring/decimal"
)

// ReportingBoundaryDay is the first day of a reporting period in the previous
// month. The period ends on the day before it in the benefit month.
const ReportingBoundaryDay = 15

// ReportingPeriod is the income window behind one benefit month
type ReportingPeriod struct {
	Month domain.MonthKey `json:"month"`
	Start domain.Date     `json:"start"`
	End   domain.Date     `json:"end"`
}

// ReportingPeriodFor returns the window from the 15th of the previous month
// to the 14th of key's month, inclusive
func ReportingPeriodFor(key domain.MonthKey) ReportingPeriod {
	return ReportingPeriod{
		Month: key,
		Start: key.Prev().Date(ReportingBoundaryDay),
		End:   key.Date(ReportingBoundaryDay - 1),
	}
}

// Contains reports whether d falls inside the period
func (p ReportingPeriod) Contains(d domain.Date) bool {
	return !d.Before(p.Start) && !p.End.Before(d)
}

// ReportingPeriodIncome sums payday amounts in the reporting period of key
func ReportingPeriodIncome(key domain.MonthKey, paydays domain.PaydayBook) decimal.Decimal {
	total := decimal.Zero
	for day, rec := range paydays.Month(key.Prev()) {
		if day >= ReportingBoundaryDay {
			total = total.Add(rec.Amount)
		}
	}
	for day, rec := range paydays.Month(key) {
		if day < ReportingBoundaryDay {
			total = total.Add(rec.Amount)
		}
	}
	return total
}

// PeriodSummary is the estimate shown for one benefit month
type PeriodSummary struct {
	Period           ReportingPeriod `json:"period"`
	Income           decimal.Decimal `json:"income"`
	Estimate         decimal.Decimal `json:"estimate"`
	Adjustment       decimal.Decimal `json:"adjustment"`
	AdjustedEstimate decimal.Decimal `json:"adjustedEstimate"`
}

// SummarizePeriod estimates the benefit for a month from its reporting-period
// income. The estimate always uses the single tier.
func (bc *BenefitCalculator) SummarizePeriod(key domain.MonthKey, paydays domain.PaydayBook, state domain.AdjustmentState) PeriodSummary {
	income := ReportingPeriodIncome(key, paydays)
	result := bc.Compute(domain.IncomeFromTotal(income), domain.HouseholdSingle, state.Value)
	return PeriodSummary{
		Period:           ReportingPeriodFor(key),
		Income:           income,
		Estimate:         result.BenefitBeforeAdjustment,
		Adjustment:       state.Value,
		AdjustedEstimate: result.BenefitAfterAdjustment,
	}
}
