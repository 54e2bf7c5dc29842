package output

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/rgehrsitz/aishcalc/internal/breakeven"
	"github.com/rgehrsitz/aishcalc/internal/compare"
	"github.com/rgehrsitz/aishcalc/internal/domain"
	"github.com/shopspring/decimal"
)

var (
	colorPrimary = lipgloss.Color("#2E86AB")
	colorSuccess = lipgloss.Color("#06A77D")
	colorDanger  = lipgloss.Color("#D62246")
	colorMuted   = lipgloss.Color("#6C757D")

	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(colorPrimary)
	labelStyle    = lipgloss.NewStyle().Width(28)
	valueStyle    = lipgloss.NewStyle().Bold(true)
	positiveStyle = lipgloss.NewStyle().Foreground(colorSuccess)
	negativeStyle = lipgloss.NewStyle().Foreground(colorDanger)
	mutedStyle    = lipgloss.NewStyle().Foreground(colorMuted)
	headerStyle   = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle     = lipgloss.NewStyle().Padding(0, 1)
)

// ConsoleFormatter renders reports for a terminal
type ConsoleFormatter struct{}

func (c ConsoleFormatter) Name() string { return "console" }

func (c ConsoleFormatter) Format(r *Report) ([]byte, error) {
	buf := &bytes.Buffer{}

	switch r.Kind {
	case KindBenefit:
		writeBenefit(buf, r.Benefit)
	case KindPeriod:
		writePeriod(buf, r)
	case KindAdjustment:
		writeAdjustment(buf, r.Adjustment)
	case KindHistory:
		writeHistory(buf, r.History)
	case KindPaydays:
		writePaydays(buf, r.Paydays)
	case KindPayments:
		writePayments(buf, r.Payments)
	case KindThreshold:
		writeThresholds(buf, r.Thresholds)
	case KindComparison:
		writeComparison(buf, r.Comparison)
	case KindNotice:
	default:
		return nil, fmt.Errorf("unknown report kind %q", r.Kind)
	}

	if r.Notice != "" {
		fmt.Fprintln(buf, r.Notice)
	}
	return buf.Bytes(), nil
}

func writeTitle(buf *bytes.Buffer, title string) {
	fmt.Fprintln(buf, titleStyle.Render(title))
	fmt.Fprintln(buf, mutedStyle.Render(strings.Repeat("=", len(title))))
}

func writeLine(buf *bytes.Buffer, label, value string) {
	fmt.Fprintf(buf, "%s%s\n", labelStyle.Render(label), value)
}

func signedStyle(amount decimal.Decimal) lipgloss.Style {
	switch {
	case amount.IsPositive():
		return positiveStyle
	case amount.IsNegative():
		return negativeStyle
	default:
		return lipgloss.NewStyle()
	}
}

func writeBenefit(buf *bytes.Buffer, res *domain.BenefitResult) {
	if res == nil {
		return
	}
	writeTitle(buf, "AISH BENEFIT ESTIMATE")
	writeLine(buf, "Household:", string(res.Household))
	writeLine(buf, "Total income:", FormatCurrency(res.TotalIncome))
	writeLine(buf, "Exemption:", FormatCurrency(res.Exemption))
	writeLine(buf, "Deduction:", FormatCurrency(res.Deduction))
	writeLine(buf, "Benefit before adjustment:", FormatCurrency(res.BenefitBeforeAdjustment))
	writeLine(buf, "Adjustment factor:", signedStyle(res.AdjustmentFactor).Render(FormatSignedCurrency(res.AdjustmentFactor)))
	writeLine(buf, "Benefit after adjustment:", valueStyle.Render(FormatCurrency(res.BenefitAfterAdjustment)))
	writeLine(buf, "Total monthly income:", valueStyle.Render(FormatCurrency(res.TotalMonthlyIncome)))
}

func writePeriod(buf *bytes.Buffer, r *Report) {
	p := r.Period
	if p == nil {
		return
	}
	month := p.Period.End.Time().Format("January 2006")
	writeTitle(buf, "BENEFIT ESTIMATE FOR "+strings.ToUpper(month))
	writeLine(buf, "Reporting period:", fmt.Sprintf("%s to %s", p.Period.Start, p.Period.End))
	writeLine(buf, "Reported income:", FormatCurrency(p.Income))
	writeLine(buf, "Estimated benefit:", FormatCurrency(p.Estimate))
	writeLine(buf, "Adjustment factor:", signedStyle(p.Adjustment).Render(FormatSignedCurrency(p.Adjustment)))
	writeLine(buf, "Adjusted estimate:", valueStyle.Render(FormatCurrency(p.AdjustedEstimate)))
}

func writeAdjustment(buf *bytes.Buffer, a *AdjustmentSummary) {
	if a == nil {
		return
	}
	writeTitle(buf, "ADJUSTMENT FACTOR")
	mode := "learned from payments"
	if a.Adjustment.IsOverridden() {
		mode = "set manually"
	}
	writeLine(buf, "Factor:", signedStyle(a.Adjustment.Value).Render(FormatSignedCurrency(a.Adjustment.Value)))
	writeLine(buf, "Source:", mode)
	writeLine(buf, "Payments used:", fmt.Sprintf("%d", a.Count))
	confidence := string(a.Confidence.Level)
	if a.Confidence.Samples >= 2 {
		confidence = fmt.Sprintf("%s (std dev %s over %d payments)", confidence, a.Confidence.StdDev.StringFixed(2), a.Confidence.Samples)
	}
	writeLine(buf, "Confidence:", confidence)
	if a.Excluded > 0 {
		writeLine(buf, "Outliers excluded:", fmt.Sprintf("%d", a.Excluded))
	}
	if a.Repaired > 0 {
		writeLine(buf, "Legacy records repaired:", fmt.Sprintf("%d", a.Repaired))
	}
	fmt.Fprintln(buf, mutedStyle.Render(a.Message))
}

func renderTable(headers []string, rows [][]string) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(mutedStyle).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
	return t.Render()
}

func writeHistory(buf *bytes.Buffer, history []domain.AdjustmentHistoryEntry) {
	writeTitle(buf, "ADJUSTMENT HISTORY")
	if len(history) == 0 {
		fmt.Fprintln(buf, mutedStyle.Render("No adjustment history yet."))
		return
	}
	rows := make([][]string, 0, len(history))
	for _, h := range history {
		rows = append(rows, []string{
			h.Date.String(),
			FormatCurrency(h.Expected),
			FormatCurrency(h.Actual),
			FormatSignedCurrency(h.Difference),
		})
	}
	fmt.Fprintln(buf, renderTable([]string{"Date", "Expected", "Actual", "Difference"}, rows))
}

func writePaydays(buf *bytes.Buffer, paydays []PaydayRow) {
	writeTitle(buf, "PAYDAYS")
	if len(paydays) == 0 {
		fmt.Fprintln(buf, mutedStyle.Render("No paydays recorded."))
		return
	}
	total := decimal.Zero
	rows := make([][]string, 0, len(paydays))
	for _, p := range paydays {
		rows = append(rows, []string{p.Date.String(), FormatCurrency(p.Amount), p.Note})
		total = total.Add(p.Amount)
	}
	fmt.Fprintln(buf, renderTable([]string{"Date", "Amount", "Note"}, rows))
	writeLine(buf, "Total:", valueStyle.Render(FormatCurrency(total)))
}

func writePayments(buf *bytes.Buffer, payments []PaymentRow) {
	writeTitle(buf, "AISH PAYMENTS")
	if len(payments) == 0 {
		fmt.Fprintln(buf, mutedStyle.Render("No AISH payments recorded."))
		return
	}
	rows := make([][]string, 0, len(payments))
	for _, p := range payments {
		expected, adjustment := "n/a", "n/a"
		if p.Expected != nil {
			expected = FormatCurrency(*p.Expected)
		}
		if p.Adjustment != nil {
			adjustment = FormatSignedCurrency(*p.Adjustment)
		}
		rows = append(rows, []string{p.Date.String(), FormatCurrency(p.Amount), expected, adjustment})
	}
	fmt.Fprintln(buf, renderTable([]string{"Date", "Actual", "Expected", "Difference"}, rows))
}

func writeThresholds(buf *bytes.Buffer, results []breakeven.Result) {
	writeTitle(buf, "INCOME THRESHOLDS")
	if len(results) == 0 {
		fmt.Fprintln(buf, mutedStyle.Render("No thresholds computed."))
		return
	}
	rows := make([][]string, 0, len(results))
	for _, r := range results {
		status := "converged"
		if !r.Success {
			status = "approximate"
		}
		rows = append(rows, []string{
			string(r.Request.Household),
			FormatCurrency(r.Request.Target()),
			FormatSignedCurrency(r.Request.Factor),
			FormatCurrency(r.Income),
			FormatCurrency(r.Benefit.BenefitAfterAdjustment),
			status,
		})
	}
	fmt.Fprintln(buf, renderTable([]string{"Household", "Target benefit", "Factor", "Monthly income", "Benefit", "Search"}, rows))
}

func writeComparison(buf *bytes.Buffer, set *compare.ComparisonSet) {
	writeTitle(buf, "INCOME COMPARISON")
	if set == nil || set.BaseResult == nil {
		fmt.Fprintln(buf, mutedStyle.Render("No scenarios compared."))
		return
	}
	if !set.Factor.IsZero() {
		writeLine(buf, "Adjustment factor:", FormatSignedCurrency(set.Factor))
	}

	rows := make([][]string, 0, len(set.AlternativeResults)+1)
	for i, r := range set.All() {
		change := "base"
		if i > 0 {
			change = FormatSignedCurrency(r.TotalDiffFromBase)
		}
		rows = append(rows, []string{
			r.ScenarioName,
			string(r.Household),
			FormatCurrency(r.TotalIncome),
			FormatCurrency(r.Benefit),
			FormatCurrency(r.TotalMonthlyIncome),
			change,
		})
	}
	fmt.Fprintln(buf, renderTable([]string{"Scenario", "Household", "Income", "Benefit", "Total", "Change"}, rows))

	if len(set.Recommendations) > 0 {
		fmt.Fprintln(buf)
		fmt.Fprintln(buf, titleStyle.Render("Notes"))
		for _, rec := range set.Recommendations {
			fmt.Fprintf(buf, "  - %s\n", rec)
		}
	}
}
