package calculation

import (
	"fmt"
	"sort"

	"github.com/rgehrsitz/aishcalc/internal/domain"
	"github.com/shopspring/decimal"
)

// Outcome is the result of recomputing the adjustment factor
type Outcome struct {
	State      domain.AdjustmentState          `json:"state"`
	History    []domain.AdjustmentHistoryEntry `json:"history"`
	Count      int                             `json:"count"`
	Excluded   int                             `json:"excluded"`
	Repaired   int                             `json:"repaired"`
	Confidence domain.ConfidenceReport         `json:"confidence"`
}

// Estimator learns the adjustment factor from actual benefit payments
type Estimator struct {
	Calc   *BenefitCalculator
	Rules  domain.AdjustmentRules
	Logger Logger
}

// NewEstimator creates an estimator that computes expected payments with calc
func NewEstimator(calc *BenefitCalculator) *Estimator {
	return &Estimator{
		Calc:   calc,
		Rules:  calc.Rules.Adjustment,
		Logger: NopLogger{},
	}
}

// ExpectedPayment is the benefit predicted for a month from its
// reporting-period income. It always uses the single tier and no adjustment.
func (e *Estimator) ExpectedPayment(key domain.MonthKey, paydays domain.PaydayBook) decimal.Decimal {
	income := ReportingPeriodIncome(key, paydays)
	return e.Calc.Compute(domain.IncomeFromTotal(income), domain.HouseholdSingle, decimal.Zero).BenefitBeforeAdjustment
}

// NewPaymentRecord builds a payment record with its expected amount and
// adjustment frozen at creation time
func (e *Estimator) NewPaymentRecord(date domain.Date, actual decimal.Decimal, paydays domain.PaydayBook) domain.AishPaymentRecord {
	expected := e.ExpectedPayment(date.Key(), paydays)
	adjustment := actual.Sub(expected)
	return domain.AishPaymentRecord{
		Amount:     actual,
		Date:       date.String(),
		Expected:   &expected,
		Adjustment: &adjustment,
	}
}

// RecordPayment stores an actual payment for date, replacing any payment
// already filed on that date, and recomputes the factor. The input books are
// not modified.
func (e *Estimator) RecordPayment(date domain.Date, actual decimal.Decimal, paydays domain.PaydayBook, payments domain.PaymentBook, previous domain.AdjustmentState) (domain.PaymentBook, Outcome, error) {
	if date.IsZero() {
		return payments, Outcome{}, fmt.Errorf("%w: payment date is required", domain.ErrInvalidInput)
	}
	if !actual.IsPositive() {
		return payments, Outcome{}, fmt.Errorf("%w: payment amount must be positive, got %s", domain.ErrInvalidInput, actual)
	}

	rec := e.NewPaymentRecord(date, actual, paydays)
	updated := payments.Clone()
	updated.Set(date, rec)
	e.Logger.Infof("recorded AISH payment %s on %s: expected %s, adjustment %s",
		actual.StringFixed(2), date, rec.Expected.StringFixed(2), rec.Adjustment.StringFixed(2))

	repaired, outcome := e.Recompute(paydays, updated, previous)
	return repaired, outcome, nil
}

// RemovePayment deletes the payment on date and recomputes the factor.
// It returns domain.ErrNotFound, and the books unchanged, when no payment
// exists on that date.
func (e *Estimator) RemovePayment(date domain.Date, paydays domain.PaydayBook, payments domain.PaymentBook, previous domain.AdjustmentState) (domain.PaymentBook, Outcome, error) {
	updated := payments.Clone()
	if !updated.Remove(date) {
		return payments, Outcome{}, fmt.Errorf("%w: no AISH payment on %s", domain.ErrNotFound, date)
	}
	e.Logger.Infof("removed AISH payment on %s", date)

	repaired, outcome := e.Recompute(paydays, updated, previous)
	return repaired, outcome, nil
}

// SetManual replaces the factor with a user-supplied value. The override lasts
// until the next recompute.
func (e *Estimator) SetManual(value decimal.Decimal) domain.AdjustmentState {
	e.Logger.Infof("manual adjustment factor set to %s", value)
	return domain.AdjustmentState{Value: value, Mode: domain.AdjustmentOverridden}
}

// Recompute repairs legacy records, rebuilds the adjustment history and
// derives a fresh factor. When no valid entries remain the previous factor
// value is kept. The returned book is a repaired copy of payments.
func (e *Estimator) Recompute(paydays domain.PaydayBook, payments domain.PaymentBook, previous domain.AdjustmentState) (domain.PaymentBook, Outcome) {
	repaired := payments.Clone()
	outcome := Outcome{History: []domain.AdjustmentHistoryEntry{}}

	for _, entry := range repaired.Entries() {
		rec := entry.Record
		if !rec.HasSnapshot() {
			rec = e.repair(entry.Date, rec, paydays)
			repaired.Set(entry.Date, rec)
			outcome.Repaired++
		}

		difference := *rec.Adjustment
		if !e.isValidDifference(difference) {
			outcome.Excluded++
			e.Logger.Debugf("excluding outlier adjustment %s on %s", difference, entry.Date)
			continue
		}

		outcome.History = append(outcome.History, domain.AdjustmentHistoryEntry{
			Difference: difference,
			Date:       rec.PaymentDate(entry.Date),
			Expected:   *rec.Expected,
			Actual:     rec.Amount,
		})
	}

	SortHistory(outcome.History)
	outcome.Count = len(outcome.History)
	outcome.State = domain.DerivedAdjustment(previous.Value)
	if outcome.Count > 0 {
		outcome.State.Value = WeightedAdjustment(outcome.History, e.Rules)
	}
	outcome.Confidence = Consistency(outcome.History, e.Rules)

	e.Logger.Debugf("adjustment factor %s from %d entries (%d excluded, %d repaired)",
		outcome.State.Value, outcome.Count, outcome.Excluded, outcome.Repaired)
	return repaired, outcome
}

// repair fills in the expected/adjustment snapshot of a record written by an
// older version. An existing expected value is kept.
func (e *Estimator) repair(date domain.Date, rec domain.AishPaymentRecord, paydays domain.PaydayBook) domain.AishPaymentRecord {
	if rec.Expected == nil {
		expected := e.ExpectedPayment(date.Key(), paydays)
		rec.Expected = &expected
	}
	adjustment := rec.Amount.Sub(*rec.Expected)
	rec.Adjustment = &adjustment
	if rec.Date == "" {
		rec.Date = date.String()
	}
	e.Logger.Infof("repaired legacy AISH payment on %s: expected %s", date, rec.Expected)
	return rec
}

func (e *Estimator) isValidDifference(d decimal.Decimal) bool {
	return d.Abs().LessThan(e.Rules.OutlierLimit)
}

// SortHistory orders entries most recent first. Entries on the same date keep
// their relative order.
func SortHistory(history []domain.AdjustmentHistoryEntry) {
	sort.SliceStable(history, func(i, j int) bool {
		return history[j].Date.Before(history[i].Date)
	})
}

// WeightedAdjustment averages differences with recency weights
// max(min, initial - decay*rank), where rank counts distinct dates from the
// most recent, and rounds the result to a whole number. history must already
// be sorted most recent first.
func WeightedAdjustment(history []domain.AdjustmentHistoryEntry, rules domain.AdjustmentRules) decimal.Decimal {
	if len(history) == 0 {
		return decimal.Zero
	}

	weightedSum := decimal.Zero
	weightSum := decimal.Zero
	rank := 0
	for i, entry := range history {
		if i > 0 && !entry.Date.Equal(history[i-1].Date) {
			rank++
		}
		w := RecencyWeight(rank, rules)
		weightedSum = weightedSum.Add(entry.Difference.Mul(w))
		weightSum = weightSum.Add(w)
	}
	return roundHalfUp(weightedSum.Div(weightSum))
}

// RecencyWeight is the weight of the entry at 0-based recency rank
func RecencyWeight(rank int, rules domain.AdjustmentRules) decimal.Decimal {
	w := rules.InitialWeight.Sub(rules.WeightDecay.Mul(decimal.NewFromInt(int64(rank))))
	return decimal.Max(rules.MinWeight, w)
}
