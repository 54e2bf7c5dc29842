package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// SnapshotVersion is the current persisted layout version. Version 0 means a
// legacy export without version or checksum.
const SnapshotVersion = 2

// Snapshot is the complete persisted state of the tracker. Paydays and
// AishPayments are keyed by month ("{year}-{zeroBasedMonth}" on disk) and
// then by day of month.
type Snapshot struct {
	Version           int                      `json:"version"`
	Checksum          string                   `json:"checksum,omitempty"`
	CalculatorData    *CalculatorInputs        `json:"calculatorData,omitempty"`
	Paydays           PaydayBook               `json:"paydays"`
	AishPayments      PaymentBook              `json:"aishPayments"`
	AdjustmentFactor  decimal.Decimal          `json:"adjustmentFactor"`
	AdjustmentMode    AdjustmentMode           `json:"adjustmentMode,omitempty"`
	AdjustmentHistory []AdjustmentHistoryEntry `json:"adjustmentHistory"`
	AdjustmentCount   int                      `json:"adjustmentCount"`
	ExportDate        *time.Time               `json:"exportDate,omitempty"`
}

// EmptySnapshot returns a snapshot with no records and a zero factor
func EmptySnapshot() *Snapshot {
	return &Snapshot{
		Version:           SnapshotVersion,
		Paydays:           PaydayBook{},
		AishPayments:      PaymentBook{},
		AdjustmentFactor:  decimal.Zero,
		AdjustmentMode:    AdjustmentDerived,
		AdjustmentHistory: []AdjustmentHistoryEntry{},
	}
}

// Adjustment returns the factor state carried by the snapshot
func (s *Snapshot) Adjustment() AdjustmentState {
	mode := s.AdjustmentMode
	if mode == "" {
		mode = AdjustmentDerived
	}
	return AdjustmentState{Value: s.AdjustmentFactor, Mode: mode}
}

// SetAdjustment stores a factor state into the snapshot
func (s *Snapshot) SetAdjustment(state AdjustmentState) {
	s.AdjustmentFactor = state.Value
	s.AdjustmentMode = state.Mode
}

// Clone deep-copies the record books and history
func (s *Snapshot) Clone() *Snapshot {
	cp := *s
	cp.Paydays = s.Paydays.Clone()
	cp.AishPayments = s.AishPayments.Clone()
	cp.AdjustmentHistory = append([]AdjustmentHistoryEntry(nil), s.AdjustmentHistory...)
	if s.CalculatorData != nil {
		inputs := *s.CalculatorData
		cp.CalculatorData = &inputs
	}
	return &cp
}
