package tracker

import (
	"context"
	"fmt"

	"github.com/rgehrsitz/aishcalc/internal/domain"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// AddPayday stores income received on date, replacing any payday already on
// that date. Stored payment expectations are not revisited.
func (s *Service) AddPayday(ctx context.Context, date domain.Date, amount decimal.Decimal, note string) error {
	if err := requireDate(date); err != nil {
		return err
	}
	if err := requirePositive("payday amount", amount); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.update(ctx, "add_payday", func(snap *domain.Snapshot) error {
		snap.Paydays.Set(date, domain.PaydayRecord{Amount: amount, Note: note})
		return nil
	})
	if err == nil {
		s.logger.Info("payday added", zap.Stringer("date", date), zap.String("amount", amount.StringFixed(2)))
	}
	return err
}

// UpdatePayday changes an existing payday. It returns domain.ErrNotFound when
// no payday is stored on date.
func (s *Service) UpdatePayday(ctx context.Context, date domain.Date, amount decimal.Decimal, note string) error {
	if err := requireDate(date); err != nil {
		return err
	}
	if err := requirePositive("payday amount", amount); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.update(ctx, "update_payday", func(snap *domain.Snapshot) error {
		if _, ok := snap.Paydays.Get(date); !ok {
			return fmt.Errorf("%w: no payday on %s", domain.ErrNotFound, date)
		}
		snap.Paydays.Set(date, domain.PaydayRecord{Amount: amount, Note: note})
		return nil
	})
}

// RemovePayday deletes the payday on date
func (s *Service) RemovePayday(ctx context.Context, date domain.Date) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.update(ctx, "remove_payday", func(snap *domain.Snapshot) error {
		if !snap.Paydays.Remove(date) {
			return fmt.Errorf("%w: no payday on %s", domain.ErrNotFound, date)
		}
		return nil
	})
}

// ClearPaydays deletes every payday
func (s *Service) ClearPaydays(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.update(ctx, "clear_paydays", func(snap *domain.Snapshot) error {
		snap.Paydays = domain.PaydayBook{}
		return nil
	})
}

// Paydays lists all paydays in date order
func (s *Service) Paydays() []domain.BookEntry[domain.PaydayRecord] {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snap.Paydays.Entries()
}
