package breakeven

import (
	"github.com/rgehrsitz/aishcalc/internal/domain"
	"github.com/shopspring/decimal"
)

// Goal defines what income threshold to search for
type Goal string

const (
	GoalCutoff       Goal = "cutoff"        // Lowest income at which the benefit reaches zero
	GoalMatchBenefit Goal = "match_benefit" // Lowest income at which the benefit falls to a target
)

// Request defines one threshold search
type Request struct {
	Household     domain.HouseholdType `json:"household"`
	Goal          Goal                 `json:"goal"`
	TargetBenefit decimal.Decimal      `json:"targetBenefit"`
	// Factor is added to the benefit before it is compared with the target.
	// A positive factor keeps the benefit above zero at any income.
	Factor    decimal.Decimal  `json:"factor"`
	MinIncome *decimal.Decimal `json:"minIncome,omitempty"`
	MaxIncome *decimal.Decimal `json:"maxIncome,omitempty"`

	MaxIterations int             `json:"-"` // Maximum solver iterations
	Tolerance     decimal.Decimal `json:"-"` // Width of the final income bracket
}

// Result is the outcome of a threshold search. Income is the lowest monthly
// income found at which the benefit is at or below the target.
type Result struct {
	Request         Request              `json:"request"`
	Success         bool                 `json:"success"`
	Iterations      int                  `json:"iterations"`
	ConvergenceInfo string               `json:"convergenceInfo"`
	Income          decimal.Decimal      `json:"income"`
	Benefit         domain.BenefitResult `json:"benefit"`
}

// Target is the benefit amount the search compares against
func (r Request) Target() decimal.Decimal {
	if r.Goal == GoalCutoff {
		return decimal.Zero
	}
	return r.TargetBenefit
}

// SolverOptions configures the solver algorithm
type SolverOptions struct {
	Tolerance     decimal.Decimal // Default bracket width, never below one cent
	MaxIterations int
	MaxIncome     decimal.Decimal // Default upper search bound
}

// DefaultSolverOptions returns default solver configuration
func DefaultSolverOptions() SolverOptions {
	return SolverOptions{
		Tolerance:     cent,
		MaxIterations: 64,
		MaxIncome:     decimal.NewFromInt(100000),
	}
}

// Validate checks if the request is internally consistent
func (r *Request) Validate() error {
	if !r.Household.IsKnown() {
		return &BreakEvenError{
			Operation: "validate_request",
			Message:   "household must be single or family, got " + string(r.Household),
			Cause:     domain.ErrInvalidInput,
		}
	}

	switch r.Goal {
	case GoalCutoff:
	case GoalMatchBenefit:
		if r.TargetBenefit.IsNegative() {
			return &BreakEvenError{
				Operation: "validate_request",
				Message:   "target benefit cannot be negative",
				Cause:     domain.ErrInvalidInput,
			}
		}
	default:
		return &BreakEvenError{
			Operation: "validate_request",
			Message:   "unsupported goal: " + string(r.Goal),
			Cause:     domain.ErrInvalidInput,
		}
	}

	if r.MinIncome != nil && r.MaxIncome != nil && r.MinIncome.GreaterThanOrEqual(*r.MaxIncome) {
		return &BreakEvenError{
			Operation: "validate_request",
			Message:   "min income must be below max income",
			Cause:     domain.ErrInvalidInput,
		}
	}
	return nil
}

// BreakEvenError represents errors from the threshold solver
type BreakEvenError struct {
	Operation string
	Message   string
	Cause     error
}

func (e *BreakEvenError) Error() string {
	if e.Cause != nil {
		return e.Operation + ": " + e.Message + ": " + e.Cause.Error()
	}
	return e.Operation + ": " + e.Message
}

func (e *BreakEvenError) Unwrap() error {
	return e.Cause
}
