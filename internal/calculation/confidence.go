package calculation

import (
	"math"

	"github.com/rgehrsitz/aishcalc/internal/domain"
	"github.com/shopspring/decimal"
)

// Consistency classifies the spread of the most recent adjustments. history
// must be sorted most recent first. Fewer than two entries yield
// insufficient data.
func Consistency(history []domain.AdjustmentHistoryEntry, rules domain.AdjustmentRules) domain.ConfidenceReport {
	n := len(history)
	if rules.ConfidenceWindow > 0 && n > rules.ConfidenceWindow {
		n = rules.ConfidenceWindow
	}
	if n < 2 {
		return domain.ConfidenceReport{Level: domain.ConfidenceInsufficient, Samples: n}
	}

	recent := history[:n]
	count := decimal.NewFromInt(int64(n))
	sum := decimal.Zero
	for _, entry := range recent {
		sum = sum.Add(entry.Difference)
	}
	mean := sum.Div(count)

	squares := decimal.Zero
	for _, entry := range recent {
		dev := entry.Difference.Sub(mean)
		squares = squares.Add(dev.Mul(dev))
	}
	variance := squares.Div(count.Sub(decimal.NewFromInt(1)))
	stdDev := decimal.NewFromFloat(math.Sqrt(variance.InexactFloat64())).Round(4)

	// compare variances so the thresholds are exact
	level := domain.ConfidenceLow
	switch {
	case variance.LessThan(rules.HighStdDev.Mul(rules.HighStdDev)):
		level = domain.ConfidenceHigh
	case variance.LessThan(rules.MediumStdDev.Mul(rules.MediumStdDev)):
		level = domain.ConfidenceMedium
	}

	return domain.ConfidenceReport{Level: level, StdDev: stdDev, Samples: n}
}

// LearningStatus describes the state of the adjustment learning for display
func LearningStatus(count int, level domain.ConfidenceLevel) string {
	switch {
	case count <= 0:
		return "No adjustment data yet. Add your actual AISH payments to improve accuracy."
	case count == 1:
		return "Learning started. Add more AISH payment data to improve accuracy."
	case count == 2:
		return "Basic learning in progress. At least one more data point recommended."
	}

	switch level {
	case domain.ConfidenceHigh:
		return "Highly accurate adjustment based on consistent data."
	case domain.ConfidenceMedium:
		return "Good accuracy with fairly consistent AISH payments."
	default:
		return "Adjustment is based on somewhat inconsistent data. Add more recent payments."
	}
}
