package calculation

import (
	"testing"
	"time"

	"github.com/rgehrsitz/aishcalc/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(year int, month time.Month, d int) domain.Date {
	return domain.NewDate(year, month, d)
}

func paydays(entries map[domain.Date]string) domain.PaydayBook {
	book := domain.PaydayBook{}
	for d, amount := range entries {
		book.Set(d, domain.PaydayRecord{Amount: dec(amount)})
	}
	return book
}

func history(diffs ...string) []domain.AdjustmentHistoryEntry {
	out := make([]domain.AdjustmentHistoryEntry, len(diffs))
	for i, d := range diffs {
		out[i] = domain.AdjustmentHistoryEntry{
			Difference: dec(d),
			Date:       day(2025, time.December, 28-i),
		}
	}
	return out
}

func newTestEstimator() *Estimator {
	return NewEstimator(NewBenefitCalculator(domain.DefaultBenefitRules()))
}

func TestReportingPeriodIncome(t *testing.T) {
	book := paydays(map[domain.Date]string{
		day(2025, time.January, 14):  "300",
		day(2025, time.January, 15):  "500",
		day(2025, time.January, 31):  "250",
		day(2025, time.February, 14): "1000",
		day(2025, time.February, 15): "300",
	})

	income := ReportingPeriodIncome(domain.MonthKey{Year: 2025, Month: time.February}, book)

	assertDecimal(t, "1750", income)
}

func TestReportingPeriodIncome_WrapsIntoPreviousYear(t *testing.T) {
	book := paydays(map[domain.Date]string{
		day(2024, time.December, 20): "500",
		day(2025, time.January, 5):   "1000",
		day(2024, time.December, 10): "999",
	})

	income := ReportingPeriodIncome(domain.MonthKey{Year: 2025, Month: time.January}, book)

	assertDecimal(t, "1500", income)
}

func TestReportingPeriodFor(t *testing.T) {
	period := ReportingPeriodFor(domain.MonthKey{Year: 2025, Month: time.January})

	assert.Equal(t, day(2024, time.December, 15), period.Start)
	assert.Equal(t, day(2025, time.January, 14), period.End)
	assert.True(t, period.Contains(day(2024, time.December, 15)))
	assert.True(t, period.Contains(day(2025, time.January, 14)))
	assert.False(t, period.Contains(day(2024, time.December, 14)))
	assert.False(t, period.Contains(day(2025, time.January, 15)))
}

func TestSummarizePeriod(t *testing.T) {
	calc := NewBenefitCalculator(domain.DefaultBenefitRules())
	book := paydays(map[domain.Date]string{
		day(2025, time.January, 20):  "500",
		day(2025, time.February, 10): "1000",
	})

	summary := calc.SummarizePeriod(domain.MonthKey{Year: 2025, Month: time.February}, book, domain.DerivedAdjustment(dec("13")))

	assertDecimal(t, "1500", summary.Income)
	assertDecimal(t, "1687", summary.Estimate)
	assertDecimal(t, "13", summary.Adjustment)
	assertDecimal(t, "1700", summary.AdjustedEstimate)
}

func TestRecordPayment_LearnsFactor(t *testing.T) {
	e := newTestEstimator()
	book := paydays(map[domain.Date]string{
		day(2025, time.January, 20):  "500",
		day(2025, time.February, 10): "1000",
	})

	payments, outcome, err := e.RecordPayment(day(2025, time.February, 25), dec("1700"), book, domain.PaymentBook{}, domain.AdjustmentState{})
	require.NoError(t, err)

	rec, ok := payments.Get(day(2025, time.February, 25))
	require.True(t, ok)
	assertDecimal(t, "1687", *rec.Expected)
	assertDecimal(t, "13", *rec.Adjustment)
	assert.Equal(t, "2025-02-25", rec.Date)

	assertDecimal(t, "13", outcome.State.Value)
	assert.Equal(t, domain.AdjustmentDerived, outcome.State.Mode)
	assert.Equal(t, 1, outcome.Count)
	assert.Equal(t, domain.ConfidenceInsufficient, outcome.Confidence.Level)
}

func TestRecordPayment_DoesNotModifyInputBook(t *testing.T) {
	e := newTestEstimator()
	original := domain.PaymentBook{}

	_, _, err := e.RecordPayment(day(2025, time.March, 1), dec("1901"), nil, original, domain.AdjustmentState{})
	require.NoError(t, err)

	assert.Equal(t, 0, original.Len())
}

func TestRecordPayment_ReplacesSameDate(t *testing.T) {
	e := newTestEstimator()
	d := day(2025, time.March, 1)

	payments, _, err := e.RecordPayment(d, dec("1900"), nil, domain.PaymentBook{}, domain.AdjustmentState{})
	require.NoError(t, err)
	payments, outcome, err := e.RecordPayment(d, dec("1911"), nil, payments, domain.AdjustmentState{})
	require.NoError(t, err)

	assert.Equal(t, 1, payments.Len())
	assertDecimal(t, "10", outcome.State.Value)
}

func TestRecordPayment_RejectsInvalidInput(t *testing.T) {
	e := newTestEstimator()
	existing := domain.PaymentBook{}
	existing.Set(day(2025, time.January, 28), e.NewPaymentRecord(day(2025, time.January, 28), dec("1901"), nil))

	tests := []struct {
		name   string
		date   domain.Date
		amount string
	}{
		{"missing date", domain.Date{}, "1700"},
		{"zero amount", day(2025, time.February, 25), "0"},
		{"negative amount", day(2025, time.February, 25), "-12"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payments, _, err := e.RecordPayment(tt.date, dec(tt.amount), nil, existing, domain.AdjustmentState{})
			require.ErrorIs(t, err, domain.ErrInvalidInput)
			assert.Equal(t, 1, payments.Len())
		})
	}
}

func TestRemovePayment(t *testing.T) {
	e := newTestEstimator()
	payments, _, err := e.RecordPayment(day(2025, time.January, 28), dec("1911"), nil, domain.PaymentBook{}, domain.AdjustmentState{})
	require.NoError(t, err)
	payments, _, err = e.RecordPayment(day(2025, time.February, 26), dec("1921"), nil, payments, domain.AdjustmentState{})
	require.NoError(t, err)

	t.Run("missing date", func(t *testing.T) {
		same, _, err := e.RemovePayment(day(2025, time.March, 3), nil, payments, domain.AdjustmentState{})
		require.ErrorIs(t, err, domain.ErrNotFound)
		assert.Equal(t, 2, same.Len())
	})

	t.Run("existing date", func(t *testing.T) {
		remaining, outcome, err := e.RemovePayment(day(2025, time.February, 26), nil, payments, domain.AdjustmentState{})
		require.NoError(t, err)
		assert.Equal(t, 1, remaining.Len())
		assert.Equal(t, 2, payments.Len())
		assertDecimal(t, "10", outcome.State.Value)
	})
}

func TestRecompute_EmptyKeepsPreviousValue(t *testing.T) {
	e := newTestEstimator()

	_, outcome := e.Recompute(nil, domain.PaymentBook{}, domain.AdjustmentState{Value: dec("42"), Mode: domain.AdjustmentOverridden})

	assertDecimal(t, "42", outcome.State.Value)
	assert.Equal(t, domain.AdjustmentDerived, outcome.State.Mode)
	assert.Equal(t, 0, outcome.Count)
	assert.Empty(t, outcome.History)
	assert.Equal(t, domain.ConfidenceInsufficient, outcome.Confidence.Level)
}

func TestRecompute_ExcludesOutliers(t *testing.T) {
	e := newTestEstimator()
	// with no paydays the expected payment is the full 1901
	payments := domain.PaymentBook{}
	payments.Set(day(2025, time.January, 28), e.NewPaymentRecord(day(2025, time.January, 28), dec("2901"), nil))
	payments.Set(day(2025, time.February, 26), e.NewPaymentRecord(day(2025, time.February, 26), dec("901"), nil))

	_, outcome := e.Recompute(nil, payments, domain.DerivedAdjustment(dec("7")))
	assert.Equal(t, 0, outcome.Count)
	assert.Equal(t, 2, outcome.Excluded)
	assertDecimal(t, "7", outcome.State.Value)

	payments.Set(day(2025, time.March, 27), e.NewPaymentRecord(day(2025, time.March, 27), dec("2900"), nil))
	_, outcome = e.Recompute(nil, payments, domain.AdjustmentState{})
	assert.Equal(t, 1, outcome.Count)
	assertDecimal(t, "999", outcome.State.Value)
}

func TestRecompute_FavoursRecentPayments(t *testing.T) {
	e := newTestEstimator()
	payments := domain.PaymentBook{}
	payments.Set(day(2025, time.January, 28), e.NewPaymentRecord(day(2025, time.January, 28), dec("1881"), nil))
	payments.Set(day(2025, time.February, 26), e.NewPaymentRecord(day(2025, time.February, 26), dec("1921"), nil))

	_, outcome := e.Recompute(nil, payments, domain.AdjustmentState{})

	// (20*3 + -20*2.5) / 5.5
	assertDecimal(t, "2", outcome.State.Value)
	require.Len(t, outcome.History, 2)
	assert.Equal(t, day(2025, time.February, 26), outcome.History[0].Date)
	assertDecimal(t, "20", outcome.History[0].Difference)
}

func TestRecompute_RepairsLegacyRecords(t *testing.T) {
	e := newTestEstimator()
	book := paydays(map[domain.Date]string{
		day(2025, time.January, 20):  "500",
		day(2025, time.February, 10): "1000",
	})
	kept := dec("1600")
	payments := domain.PaymentBook{}
	payments.Set(day(2025, time.February, 25), domain.AishPaymentRecord{Amount: dec("1700")})
	payments.Set(day(2025, time.March, 25), domain.AishPaymentRecord{Amount: dec("1700"), Date: "2025-03-25", Expected: &kept})

	repaired, outcome := e.Recompute(book, payments, domain.AdjustmentState{})
	assert.Equal(t, 2, outcome.Repaired)

	feb, _ := repaired.Get(day(2025, time.February, 25))
	require.True(t, feb.HasSnapshot())
	assertDecimal(t, "1687", *feb.Expected)
	assertDecimal(t, "13", *feb.Adjustment)
	assert.Equal(t, "2025-02-25", feb.Date)

	mar, _ := repaired.Get(day(2025, time.March, 25))
	assertDecimal(t, "1600", *mar.Expected)
	assertDecimal(t, "100", *mar.Adjustment)

	// the input book keeps its legacy records
	legacy, _ := payments.Get(day(2025, time.February, 25))
	assert.False(t, legacy.HasSnapshot())

	again, second := e.Recompute(book, repaired, outcome.State)
	assert.Equal(t, 0, second.Repaired)
	assert.Equal(t, repaired, again)
	assert.True(t, outcome.State.Value.Equal(second.State.Value))
}

func TestRecompute_DoesNotRewriteSnapshots(t *testing.T) {
	e := newTestEstimator()
	book := paydays(map[domain.Date]string{
		day(2025, time.January, 20):  "500",
		day(2025, time.February, 10): "1000",
	})
	payments, _, err := e.RecordPayment(day(2025, time.February, 25), dec("1700"), book, domain.PaymentBook{}, domain.AdjustmentState{})
	require.NoError(t, err)

	book.Set(day(2025, time.February, 1), domain.PaydayRecord{Amount: dec("1000")})
	after, outcome := e.Recompute(book, payments, domain.AdjustmentState{})

	rec, _ := after.Get(day(2025, time.February, 25))
	assertDecimal(t, "1687", *rec.Expected)
	assertDecimal(t, "13", outcome.State.Value)
}

func TestManualOverrideUntilRecompute(t *testing.T) {
	e := newTestEstimator()
	payments, outcome, err := e.RecordPayment(day(2025, time.January, 28), dec("1911"), nil, domain.PaymentBook{}, domain.AdjustmentState{})
	require.NoError(t, err)
	assertDecimal(t, "10", outcome.State.Value)

	manual := e.SetManual(dec("50"))
	assert.True(t, manual.IsOverridden())
	assertDecimal(t, "50", manual.Value)

	_, outcome = e.Recompute(nil, payments, manual)
	assert.False(t, outcome.State.IsOverridden())
	assertDecimal(t, "10", outcome.State.Value)
}

func TestWeightedAdjustment(t *testing.T) {
	rules := domain.DefaultBenefitRules().Adjustment

	tests := []struct {
		name    string
		history []domain.AdjustmentHistoryEntry
		want    string
	}{
		{"empty", nil, "0"},
		{"single", history("13"), "13"},
		{"weighted toward recent", history("10", "20", "30"), "19"},
		{"recent dominates opposite sign", history("20", "-20"), "2"},
		{"positive half rounds up", history("2.5"), "3"},
		{"negative half rounds toward zero", history("-2.5"), "-2"},
		{"same date shares a weight", []domain.AdjustmentHistoryEntry{
			{Difference: dec("10"), Date: day(2025, time.March, 1)},
			{Difference: dec("-10"), Date: day(2025, time.March, 1)},
		}, "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertDecimal(t, tt.want, WeightedAdjustment(tt.history, rules))
		})
	}
}

func TestRecencyWeight(t *testing.T) {
	rules := domain.DefaultBenefitRules().Adjustment
	want := []string{"3", "2.5", "2", "1.5", "1", "1", "1"}

	for rank, w := range want {
		assertDecimal(t, w, RecencyWeight(rank, rules), "rank %d", rank)
	}
}

func TestSortHistory_MostRecentFirst(t *testing.T) {
	entries := []domain.AdjustmentHistoryEntry{
		{Difference: dec("1"), Date: day(2024, time.November, 20)},
		{Difference: dec("2"), Date: day(2025, time.February, 1)},
		{Difference: dec("3"), Date: day(2024, time.December, 31)},
	}

	SortHistory(entries)

	assert.Equal(t, day(2025, time.February, 1), entries[0].Date)
	assert.Equal(t, day(2024, time.December, 31), entries[1].Date)
	assert.Equal(t, day(2024, time.November, 20), entries[2].Date)
}
