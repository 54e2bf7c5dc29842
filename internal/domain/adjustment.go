package domain

import (
	"github.com/shopspring/decimal"
)

// AdjustmentMode records where the current adjustment factor came from
type AdjustmentMode string

const (
	// AdjustmentDerived means the factor was computed from payment history
	AdjustmentDerived AdjustmentMode = "derived"
	// AdjustmentOverridden means the user supplied the factor manually
	AdjustmentOverridden AdjustmentMode = "overridden"
)

// AdjustmentState is the additive correction applied to every benefit
// preview, passed explicitly into each calculation.
type AdjustmentState struct {
	Value decimal.Decimal `json:"value"`
	Mode  AdjustmentMode  `json:"mode"`
}

// DerivedAdjustment wraps a computed factor
func DerivedAdjustment(v decimal.Decimal) AdjustmentState {
	return AdjustmentState{Value: v, Mode: AdjustmentDerived}
}

// IsOverridden reports whether a manual value is in effect
func (s AdjustmentState) IsOverridden() bool {
	return s.Mode == AdjustmentOverridden
}

// AdjustmentHistoryEntry is one valid (expected, actual) observation used in
// the weighted average
type AdjustmentHistoryEntry struct {
	Difference decimal.Decimal `json:"difference"`
	Date       Date            `json:"date"`
	Expected   decimal.Decimal `json:"expected"`
	Actual     decimal.Decimal `json:"actual"`
}

// ConfidenceLevel classifies how consistent recent adjustments are
type ConfidenceLevel string

const (
	ConfidenceInsufficient ConfidenceLevel = "insufficient_data"
	ConfidenceLow          ConfidenceLevel = "low"
	ConfidenceMedium       ConfidenceLevel = "medium"
	ConfidenceHigh         ConfidenceLevel = "high"
)

// ConfidenceReport is the consistency signal derived from recent entries
type ConfidenceReport struct {
	Level   ConfidenceLevel `json:"level"`
	StdDev  decimal.Decimal `json:"stdDev"`
	Samples int             `json:"samples"`
}
