package output

import (
	"context"
	"encoding/csv"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/rgehrsitz/aishcalc/internal/breakeven"
	"github.com/rgehrsitz/aishcalc/internal/calculation"
	"github.com/rgehrsitz/aishcalc/internal/compare"
	"github.com/rgehrsitz/aishcalc/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func ptr(d decimal.Decimal) *decimal.Decimal {
	return &d
}

func buildBenefitReport() *Report {
	engine := calculation.NewCalculationEngine()
	return BenefitReport(engine.Benefit.Compute(domain.IncomeFromTotal(dec("1500")), domain.HouseholdSingle, dec("13")))
}

func buildPeriodReport() *Report {
	engine := calculation.NewCalculationEngine()
	paydays := domain.PaydayBook{}
	paydays.Set(domain.NewDate(2025, time.January, 20), domain.PaydayRecord{Amount: dec("500")})
	paydays.Set(domain.NewDate(2025, time.February, 10), domain.PaydayRecord{Amount: dec("1000")})
	key := domain.MonthKey{Year: 2025, Month: time.February}
	return PeriodReport(engine.Benefit.SummarizePeriod(key, paydays, domain.DerivedAdjustment(dec("13"))))
}

func buildPaymentsReport() *Report {
	return PaymentsReport([]domain.BookEntry[domain.AishPaymentRecord]{
		{Date: domain.NewDate(2024, time.December, 27), Record: domain.AishPaymentRecord{Amount: dec("1901")}},
		{Date: domain.NewDate(2025, time.February, 25), Record: domain.AishPaymentRecord{
			Amount: dec("1700"), Expected: ptr(dec("1687")), Adjustment: ptr(dec("13")),
		}},
	})
}

func TestFormatterFunc(t *testing.T) {
	called := false
	f := FormatterFunc{
		ID: "test-formatter",
		F: func(r *Report) ([]byte, error) {
			called = true
			return []byte(r.Notice), nil
		},
	}

	out, err := f.Format(NoticeReport("hello %d", 1))
	require.NoError(t, err)
	assert.True(t, called)
	assert.Equal(t, "hello 1", string(out))
	assert.Equal(t, "test-formatter", f.Name())
}

func TestGetFormatterByName(t *testing.T) {
	for name, want := range map[string]string{
		"console": "console",
		"JSON":    "json",
		" csv ":   "csv",
		"table":   "console",
		"text":    "console",
	} {
		f, err := GetFormatterByName(name)
		require.NoError(t, err, name)
		assert.Equal(t, want, f.Name(), name)
	}

	_, err := GetFormatterByName("html")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported format: html")
}

func TestAvailableFormatterNames(t *testing.T) {
	assert.Equal(t, []string{"console", "csv", "json"}, AvailableFormatterNames())
	aliases := AvailableFormatAliases()
	assert.Equal(t, "console", aliases["table"])

	aliases["table"] = "json"
	assert.Equal(t, "console", AvailableFormatAliases()["table"], "returned map is a copy")
}

func TestFormatCurrency(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"0", "$0.00"},
		{"13", "$13.00"},
		{"1687", "$1,687.00"},
		{"1234567.891", "$1,234,567.89"},
		{"-20", "-$20.00"},
		{"-1540.5", "-$1,540.50"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatCurrency(dec(tt.in)), tt.in)
	}

	assert.Equal(t, "+$13.00", FormatSignedCurrency(dec("13")))
	assert.Equal(t, "-$13.00", FormatSignedCurrency(dec("-13")))
	assert.Equal(t, "$0.00", FormatSignedCurrency(decimal.Zero))
}

func TestConsoleFormatter_Benefit(t *testing.T) {
	out, err := ConsoleFormatter{}.Format(buildBenefitReport())
	require.NoError(t, err)

	s := string(out)
	assert.Contains(t, s, "AISH BENEFIT ESTIMATE")
	assert.Contains(t, s, "single")
	assert.Contains(t, s, "$1,500.00")
	assert.Contains(t, s, "$1,687.00")
	assert.Contains(t, s, "+$13.00")
	assert.Contains(t, s, "$1,700.00")
	assert.Contains(t, s, "$3,200.00")
}

func TestConsoleFormatter_Period(t *testing.T) {
	out, err := ConsoleFormatter{}.Format(buildPeriodReport())
	require.NoError(t, err)

	s := string(out)
	assert.Contains(t, s, "FEBRUARY 2025")
	assert.Contains(t, s, "2025-01-15 to 2025-02-14")
	assert.Contains(t, s, "$1,500.00")
	assert.Contains(t, s, "$1,700.00")
}

func TestConsoleFormatter_Adjustment(t *testing.T) {
	report := AdjustmentReport(AdjustmentSummary{
		Adjustment: domain.AdjustmentState{Value: dec("50"), Mode: domain.AdjustmentOverridden},
		Count:      3,
		Confidence: domain.ConfidenceReport{Level: domain.ConfidenceMedium, StdDev: dec("5"), Samples: 3},
		Message:    calculation.LearningStatus(3, domain.ConfidenceMedium),
		Excluded:   1,
	})

	out, err := ConsoleFormatter{}.Format(report)
	require.NoError(t, err)

	s := string(out)
	assert.Contains(t, s, "+$50.00")
	assert.Contains(t, s, "set manually")
	assert.Contains(t, s, "medium (std dev 5.00 over 3 payments)")
	assert.Contains(t, s, "Outliers excluded:")
	assert.NotContains(t, s, "Legacy records repaired:")
	assert.Contains(t, s, "Good accuracy")
}

func TestConsoleFormatter_Lists(t *testing.T) {
	out, err := ConsoleFormatter{}.Format(buildPaymentsReport())
	require.NoError(t, err)
	s := string(out)
	assert.Contains(t, s, "AISH PAYMENTS")
	assert.Contains(t, s, "2024-12-27")
	assert.Contains(t, s, "n/a")
	assert.Contains(t, s, "+$13.00")

	out, err = ConsoleFormatter{}.Format(PaydaysReport([]domain.BookEntry[domain.PaydayRecord]{
		{Date: domain.NewDate(2025, time.January, 20), Record: domain.PaydayRecord{Amount: dec("500"), Note: "shift"}},
		{Date: domain.NewDate(2025, time.February, 10), Record: domain.PaydayRecord{Amount: dec("1000")}},
	}))
	require.NoError(t, err)
	s = string(out)
	assert.Contains(t, s, "shift")
	assert.Contains(t, s, "$1,500.00")

	out, err = ConsoleFormatter{}.Format(HistoryReport(nil))
	require.NoError(t, err)
	assert.Contains(t, string(out), "No adjustment history yet.")

	out, err = ConsoleFormatter{}.Format(PaydaysReport(nil))
	require.NoError(t, err)
	assert.Contains(t, string(out), "No paydays recorded.")
}

func buildThresholdReport(t *testing.T) *Report {
	t.Helper()
	results, err := breakeven.NewDefaultSolver(calculation.NewCalculationEngine()).
		SolveHouseholds(context.Background(), breakeven.Request{Goal: breakeven.GoalCutoff})
	require.NoError(t, err)
	return ThresholdReport(results...)
}

func TestConsoleFormatter_Thresholds(t *testing.T) {
	out, err := ConsoleFormatter{}.Format(buildThresholdReport(t))
	require.NoError(t, err)
	s := string(out)
	assert.Contains(t, s, "INCOME THRESHOLDS")
	assert.Contains(t, s, "$3,441.50")
	assert.Contains(t, s, "$5,100.50")
	assert.Contains(t, s, "converged")

	out, err = ConsoleFormatter{}.Format(ThresholdReport())
	require.NoError(t, err)
	assert.Contains(t, string(out), "No thresholds computed.")
}

func buildComparisonReport(t *testing.T) *Report {
	t.Helper()
	scenarios := compare.IncomeScenarios(domain.HouseholdSingle, dec("1000"), dec("1500"), dec("4000"))
	set, err := compare.NewCompareEngine(calculation.NewCalculationEngine()).
		CompareScenarios(context.Background(), scenarios[0], scenarios[1:], decimal.Zero)
	require.NoError(t, err)
	return ComparisonReport(set)
}

func TestConsoleFormatter_Comparison(t *testing.T) {
	out, err := ConsoleFormatter{}.Format(buildComparisonReport(t))
	require.NoError(t, err)
	s := string(out)
	assert.Contains(t, s, "INCOME COMPARISON")
	assert.Contains(t, s, "$1,901.00")
	assert.Contains(t, s, "+$286.00")
	assert.Contains(t, s, "no benefit is paid at this income")

	out, err = ConsoleFormatter{}.Format(ComparisonReport(nil))
	require.NoError(t, err)
	assert.Contains(t, string(out), "No scenarios compared.")
}

func TestConsoleFormatter_Notice(t *testing.T) {
	out, err := ConsoleFormatter{}.Format(NoticeReport("Removed payday on %s", "2025-01-20"))
	require.NoError(t, err)
	assert.Equal(t, "Removed payday on 2025-01-20\n", string(out))
}

func TestFormatters_UnknownKind(t *testing.T) {
	for _, f := range []Formatter{ConsoleFormatter{}, JSONFormatter{}, CSVFormatter{}} {
		_, err := f.Format(&Report{Kind: "bogus"})
		assert.Error(t, err, f.Name())
	}
}

func TestJSONFormatter(t *testing.T) {
	out, err := JSONFormatter{}.Format(buildBenefitReport())
	require.NoError(t, err)

	var decoded domain.BenefitResult
	require.NoError(t, json.Unmarshal(out, &decoded))
	assert.True(t, decoded.BenefitAfterAdjustment.Equal(dec("1700")))
	assert.Equal(t, domain.HouseholdSingle, decoded.Household)

	out, err = JSONFormatter{}.Format(PaydaysReport(nil))
	require.NoError(t, err)
	assert.Equal(t, "[]\n", string(out))

	out, err = JSONFormatter{}.Format(buildPaymentsReport())
	require.NoError(t, err)
	var rows []map[string]any
	require.NoError(t, json.Unmarshal(out, &rows))
	require.Len(t, rows, 2)
	assert.Equal(t, "2024-12-27", rows[0]["date"])
	assert.Nil(t, rows[0]["expected"])
	assert.Equal(t, "1687", rows[1]["expected"])
}

func TestCSVFormatter(t *testing.T) {
	tests := []struct {
		name   string
		report *Report
		header []string
		rows   int
		check  func(t *testing.T, records [][]string)
	}{
		{
			name:   "benefit",
			report: buildBenefitReport(),
			header: []string{"Household", "TotalIncome", "Exemption", "Deduction", "BenefitBeforeAdjustment", "AdjustmentFactor", "BenefitAfterAdjustment", "TotalMonthlyIncome"},
			rows:   1,
			check: func(t *testing.T, records [][]string) {
				assert.Equal(t, "1687.00", records[1][4])
				assert.Equal(t, "1700.00", records[1][6])
			},
		},
		{
			name:   "period",
			report: buildPeriodReport(),
			header: []string{"PeriodStart", "PeriodEnd", "Income", "Estimate", "Adjustment", "AdjustedEstimate"},
			rows:   1,
			check: func(t *testing.T, records [][]string) {
				assert.Equal(t, "2025-01-15", records[1][0])
				assert.Equal(t, "1500.00", records[1][2])
			},
		},
		{
			name:   "payments",
			report: buildPaymentsReport(),
			header: []string{"Date", "Amount", "Expected", "Adjustment"},
			rows:   2,
			check: func(t *testing.T, records [][]string) {
				assert.Equal(t, "", records[1][2])
				assert.Equal(t, "13.00", records[2][3])
			},
		},
		{
			name:   "empty history",
			report: HistoryReport(nil),
			header: []string{"Date", "Expected", "Actual", "Difference"},
			rows:   0,
		},
		{
			name:   "thresholds",
			report: buildThresholdReport(t),
			header: []string{"Household", "Goal", "TargetBenefit", "Factor", "Income", "Benefit", "Converged", "Iterations"},
			rows:   2,
			check: func(t *testing.T, records [][]string) {
				assert.Equal(t, "single", records[1][0])
				assert.Equal(t, "3441.50", records[1][4])
				assert.Equal(t, "true", records[2][6])
			},
		},
		{
			name:   "comparison",
			report: buildComparisonReport(t),
			header: []string{"Scenario", "Household", "Income", "Benefit", "TotalMonthlyIncome", "IncomeDiff", "BenefitDiff", "TotalDiff", "KeptPct"},
			rows:   3,
			check: func(t *testing.T, records [][]string) {
				assert.Equal(t, "$1000.00", records[1][0])
				assert.Equal(t, "0.00", records[1][7])
				assert.Equal(t, "1687.00", records[2][3])
				assert.Equal(t, "-214.00", records[2][6])
				assert.Equal(t, "57.2", records[2][8])
			},
		},
		{
			name:   "notice",
			report: NoticeReport("done"),
			header: []string{"Message"},
			rows:   1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := CSVFormatter{}.Format(tt.report)
			require.NoError(t, err)

			records, err := csv.NewReader(strings.NewReader(string(out))).ReadAll()
			require.NoError(t, err)
			require.Len(t, records, tt.rows+1, fmt.Sprintf("%q", out))
			assert.Equal(t, tt.header, records[0])
			if tt.check != nil {
				tt.check(t, records)
			}
		})
	}
}
