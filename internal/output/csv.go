package output

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"
)

// CSVFormatter writes one header row and one row per record. Single results
// (benefit, period, adjustment) become a single data row.
type CSVFormatter struct{}

func (c CSVFormatter) Name() string { return "csv" }

func (c CSVFormatter) Format(r *Report) ([]byte, error) {
	header, rows, err := csvRows(r)
	if err != nil {
		return nil, err
	}

	buf := &bytes.Buffer{}
	w := csv.NewWriter(buf)
	if err := w.Write(header); err != nil {
		return nil, err
	}
	if err := w.WriteAll(rows); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func csvRows(r *Report) ([]string, [][]string, error) {
	switch r.Kind {
	case KindBenefit:
		b := r.Benefit
		if b == nil {
			return nil, nil, fmt.Errorf("benefit report without result")
		}
		return []string{"Household", "TotalIncome", "Exemption", "Deduction", "BenefitBeforeAdjustment", "AdjustmentFactor", "BenefitAfterAdjustment", "TotalMonthlyIncome"},
			[][]string{{
				string(b.Household),
				money(b.TotalIncome),
				money(b.Exemption),
				money(b.Deduction),
				money(b.BenefitBeforeAdjustment),
				money(b.AdjustmentFactor),
				money(b.BenefitAfterAdjustment),
				money(b.TotalMonthlyIncome),
			}}, nil

	case KindPeriod:
		p := r.Period
		if p == nil {
			return nil, nil, fmt.Errorf("period report without summary")
		}
		return []string{"PeriodStart", "PeriodEnd", "Income", "Estimate", "Adjustment", "AdjustedEstimate"},
			[][]string{{
				p.Period.Start.String(),
				p.Period.End.String(),
				money(p.Income),
				money(p.Estimate),
				money(p.Adjustment),
				money(p.AdjustedEstimate),
			}}, nil

	case KindAdjustment:
		a := r.Adjustment
		if a == nil {
			return nil, nil, fmt.Errorf("adjustment report without summary")
		}
		return []string{"Factor", "Mode", "Count", "Confidence", "StdDev", "Excluded", "Repaired"},
			[][]string{{
				a.Adjustment.Value.String(),
				string(a.Adjustment.Mode),
				strconv.Itoa(a.Count),
				string(a.Confidence.Level),
				a.Confidence.StdDev.String(),
				strconv.Itoa(a.Excluded),
				strconv.Itoa(a.Repaired),
			}}, nil

	case KindHistory:
		rows := make([][]string, 0, len(r.History))
		for _, h := range r.History {
			rows = append(rows, []string{h.Date.String(), money(h.Expected), money(h.Actual), money(h.Difference)})
		}
		return []string{"Date", "Expected", "Actual", "Difference"}, rows, nil

	case KindPaydays:
		rows := make([][]string, 0, len(r.Paydays))
		for _, p := range r.Paydays {
			rows = append(rows, []string{p.Date.String(), money(p.Amount), p.Note})
		}
		return []string{"Date", "Amount", "Note"}, rows, nil

	case KindPayments:
		rows := make([][]string, 0, len(r.Payments))
		for _, p := range r.Payments {
			rows = append(rows, []string{p.Date.String(), money(p.Amount), optionalMoney(p.Expected), optionalMoney(p.Adjustment)})
		}
		return []string{"Date", "Amount", "Expected", "Adjustment"}, rows, nil

	case KindThreshold:
		rows := make([][]string, 0, len(r.Thresholds))
		for _, t := range r.Thresholds {
			rows = append(rows, []string{
				string(t.Request.Household),
				string(t.Request.Goal),
				money(t.Request.Target()),
				money(t.Request.Factor),
				money(t.Income),
				money(t.Benefit.BenefitAfterAdjustment),
				strconv.FormatBool(t.Success),
				strconv.Itoa(t.Iterations),
			})
		}
		return []string{"Household", "Goal", "TargetBenefit", "Factor", "Income", "Benefit", "Converged", "Iterations"}, rows, nil

	case KindComparison:
		set := r.Comparison
		if set == nil {
			return nil, nil, fmt.Errorf("comparison report without results")
		}
		rows := make([][]string, 0, len(set.AlternativeResults)+1)
		for _, c := range set.All() {
			rows = append(rows, []string{
				c.ScenarioName,
				string(c.Household),
				money(c.TotalIncome),
				money(c.Benefit),
				money(c.TotalMonthlyIncome),
				money(c.IncomeDiffFromBase),
				money(c.BenefitDiffFromBase),
				money(c.TotalDiffFromBase),
				c.KeptPct.StringFixed(1),
			})
		}
		return []string{"Scenario", "Household", "Income", "Benefit", "TotalMonthlyIncome",
			"IncomeDiff", "BenefitDiff", "TotalDiff", "KeptPct"}, rows, nil

	case KindNotice:
		return []string{"Message"}, [][]string{{r.Notice}}, nil

	default:
		return nil, nil, fmt.Errorf("unknown report kind %q", r.Kind)
	}
}

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func optionalMoney(d *decimal.Decimal) string {
	if d == nil {
		return ""
	}
	return d.StringFixed(2)
}
