package tracker

import (
	"context"

	"github.com/rgehrsitz/aishcalc/internal/calculation"
	"github.com/rgehrsitz/aishcalc/internal/domain"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// RecordPayment files an actual benefit payment and relearns the factor
func (s *Service) RecordPayment(ctx context.Context, date domain.Date, amount decimal.Decimal) (calculation.Outcome, error) {
	if err := requireDate(date); err != nil {
		return calculation.Outcome{}, err
	}
	if err := requirePositive("payment amount", amount); err != nil {
		return calculation.Outcome{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var outcome calculation.Outcome
	err := s.update(ctx, "record_payment", func(snap *domain.Snapshot) error {
		payments, out, err := s.engine.Estimator.RecordPayment(date, amount, snap.Paydays, snap.AishPayments, snap.Adjustment())
		if err != nil {
			return err
		}
		applyOutcome(snap, payments, out)
		outcome = out
		return nil
	})
	if err != nil {
		return calculation.Outcome{}, err
	}
	s.afterRecompute(outcome)
	return outcome, nil
}

// RemovePayment deletes the payment on date and relearns the factor
func (s *Service) RemovePayment(ctx context.Context, date domain.Date) (calculation.Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var outcome calculation.Outcome
	err := s.update(ctx, "remove_payment", func(snap *domain.Snapshot) error {
		payments, out, err := s.engine.Estimator.RemovePayment(date, snap.Paydays, snap.AishPayments, snap.Adjustment())
		if err != nil {
			return err
		}
		applyOutcome(snap, payments, out)
		outcome = out
		return nil
	})
	if err != nil {
		return calculation.Outcome{}, err
	}
	s.afterRecompute(outcome)
	return outcome, nil
}

// ClearPayments deletes every payment and resets the factor to zero
func (s *Service) ClearPayments(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.update(ctx, "clear_payments", func(snap *domain.Snapshot) error {
		snap.AishPayments = domain.PaymentBook{}
		snap.SetAdjustment(domain.DerivedAdjustment(decimal.Zero))
		snap.AdjustmentHistory = []domain.AdjustmentHistoryEntry{}
		snap.AdjustmentCount = 0
		return nil
	})
}

// Payments lists all payments in date order
func (s *Service) Payments() []domain.BookEntry[domain.AishPaymentRecord] {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snap.AishPayments.Entries()
}

// SetManualFactor overrides the factor until the next recompute
func (s *Service) SetManualFactor(ctx context.Context, value decimal.Decimal) (domain.AdjustmentState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state := s.engine.Estimator.SetManual(value)
	err := s.update(ctx, "set_manual_factor", func(snap *domain.Snapshot) error {
		snap.SetAdjustment(state)
		return nil
	})
	if err != nil {
		return domain.AdjustmentState{}, err
	}
	return state, nil
}

// Recompute relearns the factor from the stored payments, repairing legacy
// records on the way. It ends any manual override.
func (s *Service) Recompute(ctx context.Context) (calculation.Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var outcome calculation.Outcome
	err := s.update(ctx, "recompute", func(snap *domain.Snapshot) error {
		payments, out := s.engine.Estimator.Recompute(snap.Paydays, snap.AishPayments, snap.Adjustment())
		applyOutcome(snap, payments, out)
		outcome = out
		return nil
	})
	if err != nil {
		return calculation.Outcome{}, err
	}
	s.afterRecompute(outcome)
	return outcome, nil
}

func (s *Service) afterRecompute(outcome calculation.Outcome) {
	s.metrics.AddExcluded(outcome.Excluded)
	s.logger.Info("adjustment factor recomputed",
		zap.String("factor", outcome.State.Value.String()),
		zap.Int("entries", outcome.Count),
		zap.Int("excluded", outcome.Excluded),
		zap.Int("repaired", outcome.Repaired),
		zap.String("confidence", string(outcome.Confidence.Level)))
}
