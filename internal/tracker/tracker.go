// Package tracker is the application service around the calculation engine.
// It owns the persisted snapshot (paydays, benefit payments, adjustment
// state, calculator inputs), calls the engine for every change and saves
// the result through a store.Repository.
package tracker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rgehrsitz/aishcalc/internal/calculation"
	"github.com/rgehrsitz/aishcalc/internal/domain"
	"github.com/rgehrsitz/aishcalc/internal/observability"
	"github.com/rgehrsitz/aishcalc/internal/store"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Service serialises all reads and writes of one snapshot
type Service struct {
	mu      sync.Mutex
	engine  *calculation.CalculationEngine
	repo    *store.Repository
	snap    *domain.Snapshot
	metrics *observability.Metrics
	logger  *zap.Logger
	now     func() time.Time
}

// Option configures a Service
type Option func(*Service)

// WithMetrics records operation counts and the current factor
func WithMetrics(m *observability.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithLogger sets the service logger
func WithLogger(l *zap.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithClock overrides time.Now for export and save timestamps
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// New loads the stored snapshot and returns a ready service
func New(ctx context.Context, engine *calculation.CalculationEngine, repo *store.Repository, opts ...Option) (*Service, error) {
	s := &Service{
		engine: engine,
		repo:   repo,
		logger: zap.NewNop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	snap, err := repo.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load tracker state: %w", err)
	}
	s.snap = snap
	s.publish()
	return s, nil
}

// update applies fn to a copy of the snapshot, saves the copy and only then
// makes it current. A failed fn or save leaves the current state untouched.
func (s *Service) update(ctx context.Context, op string, fn func(*domain.Snapshot) error) (err error) {
	defer func() { s.metrics.RecordOperation(op, err) }()

	next := s.snap.Clone()
	if err := fn(next); err != nil {
		return err
	}
	if err := s.repo.Save(ctx, next); err != nil {
		s.logger.Error("failed to save tracker state", zap.String("operation", op), zap.Error(err))
		return err
	}
	s.snap = next
	s.publish()
	return nil
}

func (s *Service) publish() {
	s.metrics.SetAdjustment(s.snap.AdjustmentFactor.InexactFloat64(), s.snap.AdjustmentCount)
}

func applyOutcome(snap *domain.Snapshot, payments domain.PaymentBook, outcome calculation.Outcome) {
	snap.AishPayments = payments
	snap.SetAdjustment(outcome.State)
	snap.AdjustmentHistory = outcome.History
	snap.AdjustmentCount = outcome.Count
}

func requireDate(d domain.Date) error {
	if d.IsZero() {
		return fmt.Errorf("%w: date is required", domain.ErrInvalidInput)
	}
	return nil
}

func requirePositive(what string, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return fmt.Errorf("%w: %s must be greater than zero, got %s", domain.ErrInvalidInput, what, amount)
	}
	return nil
}

// Status summarises the adjustment learning state
type Status struct {
	Adjustment domain.AdjustmentState  `json:"adjustment"`
	Count      int                     `json:"count"`
	Confidence domain.ConfidenceReport `json:"confidence"`
	Message    string                  `json:"message"`
}

// Adjustment returns the current factor state
func (s *Service) Adjustment() domain.AdjustmentState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snap.Adjustment()
}

// History returns the adjustment history, most recent first
func (s *Service) History() []domain.AdjustmentHistoryEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.AdjustmentHistoryEntry(nil), s.snap.AdjustmentHistory...)
}

// Status reports the factor with its confidence and learning message
func (s *Service) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	report := calculation.Consistency(s.snap.AdjustmentHistory, s.engine.Rules.Adjustment)
	return Status{
		Adjustment: s.snap.Adjustment(),
		Count:      s.snap.AdjustmentCount,
		Confidence: report,
		Message:    calculation.LearningStatus(s.snap.AdjustmentCount, report.Level),
	}
}

// Preview computes the benefit for the given income with the current factor
func (s *Service) Preview(income domain.IncomeBreakdown, household domain.HouseholdType) domain.BenefitResult {
	state := s.Adjustment()
	return s.engine.Benefit.Compute(income, household, state.Value)
}

// PeriodSummary estimates the benefit for one month from its reporting-period
// paydays
func (s *Service) PeriodSummary(key domain.MonthKey) calculation.PeriodSummary {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.Benefit.SummarizePeriod(key, s.snap.Paydays, s.snap.Adjustment())
}

// SaveCalculatorInputs remembers the last preview inputs
func (s *Service) SaveCalculatorInputs(ctx context.Context, inputs domain.CalculatorInputs) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.update(ctx, "save_calculator_inputs", func(snap *domain.Snapshot) error {
		saved := s.now().UTC()
		inputs.LastSaved = &saved
		snap.CalculatorData = &inputs
		return nil
	})
}

// CalculatorInputs returns the last saved preview inputs. Without saved
// inputs, or with a blank household, the household defaults to single.
func (s *Service) CalculatorInputs() domain.CalculatorInputs {
	s.mu.Lock()
	defer s.mu.Unlock()

	var inputs domain.CalculatorInputs
	if s.snap.CalculatorData != nil {
		inputs = *s.snap.CalculatorData
	}
	if inputs.Household == "" {
		inputs.Household = domain.HouseholdSingle
	}
	return inputs
}
