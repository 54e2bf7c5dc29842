package output

import (
	"fmt"

	"github.com/rgehrsitz/aishcalc/internal/breakeven"
	"github.com/rgehrsitz/aishcalc/internal/calculation"
	"github.com/rgehrsitz/aishcalc/internal/compare"
	"github.com/rgehrsitz/aishcalc/internal/domain"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// ReportKind selects which section of a Report is rendered
type ReportKind string

const (
	KindBenefit    ReportKind = "benefit"
	KindPeriod     ReportKind = "period"
	KindAdjustment ReportKind = "adjustment"
	KindHistory    ReportKind = "history"
	KindPaydays    ReportKind = "paydays"
	KindPayments   ReportKind = "payments"
	KindThreshold  ReportKind = "threshold"
	KindComparison ReportKind = "comparison"
	KindNotice     ReportKind = "notice"
)

// Report is one command result ready for formatting. Only the section named
// by Kind is rendered; Notice is an optional line shown after it.
type Report struct {
	Kind       ReportKind
	Benefit    *domain.BenefitResult
	Period     *calculation.PeriodSummary
	Adjustment *AdjustmentSummary
	History    []domain.AdjustmentHistoryEntry
	Paydays    []PaydayRow
	Payments   []PaymentRow
	Thresholds []breakeven.Result
	Comparison *compare.ComparisonSet
	Notice     string
}

// AdjustmentSummary is the factor state with its learning status
type AdjustmentSummary struct {
	Adjustment domain.AdjustmentState  `json:"adjustment"`
	Count      int                     `json:"count"`
	Confidence domain.ConfidenceReport `json:"confidence"`
	Message    string                  `json:"message"`
	Excluded   int                     `json:"excluded,omitempty"`
	Repaired   int                     `json:"repaired,omitempty"`
}

// PaydayRow is one payday in a listing
type PaydayRow struct {
	Date   domain.Date     `json:"date"`
	Amount decimal.Decimal `json:"amount"`
	Note   string          `json:"note"`
}

// PaymentRow is one AISH payment in a listing. Expected and Adjustment are
// nil for legacy records that were never repaired.
type PaymentRow struct {
	Date       domain.Date      `json:"date"`
	Amount     decimal.Decimal  `json:"amount"`
	Expected   *decimal.Decimal `json:"expected"`
	Adjustment *decimal.Decimal `json:"adjustment"`
}

// BenefitReport wraps a calculation result
func BenefitReport(result domain.BenefitResult) *Report {
	return &Report{Kind: KindBenefit, Benefit: &result}
}

// PeriodReport wraps a period summary
func PeriodReport(summary calculation.PeriodSummary) *Report {
	return &Report{Kind: KindPeriod, Period: &summary}
}

// AdjustmentReport wraps an adjustment summary
func AdjustmentReport(summary AdjustmentSummary) *Report {
	return &Report{Kind: KindAdjustment, Adjustment: &summary}
}

// HistoryReport wraps the adjustment history
func HistoryReport(history []domain.AdjustmentHistoryEntry) *Report {
	return &Report{Kind: KindHistory, History: history}
}

// PaydaysReport lists paydays in the order given
func PaydaysReport(entries []domain.BookEntry[domain.PaydayRecord]) *Report {
	rows := make([]PaydayRow, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, PaydayRow{Date: e.Date, Amount: e.Record.Amount, Note: e.Record.Note})
	}
	return &Report{Kind: KindPaydays, Paydays: rows}
}

// PaymentsReport lists payments in the order given
func PaymentsReport(entries []domain.BookEntry[domain.AishPaymentRecord]) *Report {
	rows := make([]PaymentRow, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, PaymentRow{
			Date:       e.Date,
			Amount:     e.Record.Amount,
			Expected:   e.Record.Expected,
			Adjustment: e.Record.Adjustment,
		})
	}
	return &Report{Kind: KindPayments, Payments: rows}
}

// ThresholdReport wraps income threshold search results
func ThresholdReport(results ...breakeven.Result) *Report {
	return &Report{Kind: KindThreshold, Thresholds: results}
}

// ComparisonReport wraps an income scenario comparison
func ComparisonReport(set *compare.ComparisonSet) *Report {
	return &Report{Kind: KindComparison, Comparison: set}
}

// NoticeReport carries a plain status message
func NoticeReport(format string, args ...any) *Report {
	return &Report{Kind: KindNotice, Notice: fmt.Sprintf(format, args...)}
}

// payload is the value the JSON formatter encodes for the report kind
func (r *Report) payload() (any, error) {
	switch r.Kind {
	case KindBenefit:
		return r.Benefit, nil
	case KindPeriod:
		return r.Period, nil
	case KindAdjustment:
		return r.Adjustment, nil
	case KindHistory:
		return nonNil(r.History), nil
	case KindPaydays:
		return nonNil(r.Paydays), nil
	case KindPayments:
		return nonNil(r.Payments), nil
	case KindThreshold:
		return nonNil(r.Thresholds), nil
	case KindComparison:
		return r.Comparison, nil
	case KindNotice:
		return map[string]string{"message": r.Notice}, nil
	default:
		return nil, fmt.Errorf("unknown report kind %q", r.Kind)
	}
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

var printer = message.NewPrinter(language.English)

// FormatCurrency formats a decimal as dollars with thousands separators,
// e.g. "$1,234.56" and "-$20.00"
func FormatCurrency(amount decimal.Decimal) string {
	rounded := amount.Round(2)
	if rounded.IsNegative() {
		return "-$" + printer.Sprintf("%.2f", rounded.Abs().InexactFloat64())
	}
	return "$" + printer.Sprintf("%.2f", rounded.InexactFloat64())
}

// FormatSignedCurrency is FormatCurrency with an explicit plus sign for
// positive amounts
func FormatSignedCurrency(amount decimal.Decimal) string {
	if amount.IsPositive() {
		return "+" + FormatCurrency(amount)
	}
	return FormatCurrency(amount)
}
