// Package breakeven finds the monthly income at which the AISH benefit falls
// to a target amount, by binary search over the benefit calculator.
package breakeven

import (
	"context"
	"errors"
	"fmt"

	"github.com/rgehrsitz/aishcalc/internal/calculation"
	"github.com/rgehrsitz/aishcalc/internal/domain"
	"github.com/shopspring/decimal"
)

var (
	cent = decimal.New(1, -2)
	two  = decimal.NewFromInt(2)
)

// ErrUnreachable is returned when the benefit stays above the target across
// the whole search range
var ErrUnreachable = errors.New("target benefit not reached")

// Solver searches income thresholds with one calculation engine
type Solver struct {
	CalcEngine *calculation.CalculationEngine
	Options    SolverOptions
}

// NewSolver creates a new threshold solver
func NewSolver(calcEngine *calculation.CalculationEngine, options SolverOptions) *Solver {
	return &Solver{
		CalcEngine: calcEngine,
		Options:    options,
	}
}

// NewDefaultSolver creates a solver with default options
func NewDefaultSolver(calcEngine *calculation.CalculationEngine) *Solver {
	return NewSolver(calcEngine, DefaultSolverOptions())
}

// Solve finds the lowest income, to within the tolerance, at which the
// benefit after the request's factor is at or below the target. The search
// treats the benefit as non-increasing in income. The single tier breaks that
// by one dollar just above its partial exemption ceiling, so targets inside
// that step may land on either side of it.
func (s *Solver) Solve(ctx context.Context, req Request) (*Result, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	if req.MaxIterations == 0 {
		req.MaxIterations = s.Options.MaxIterations
	}
	if req.Tolerance.IsZero() {
		req.Tolerance = s.Options.Tolerance
	}
	req.Tolerance = decimal.Max(req.Tolerance, cent)

	lo := decimal.Zero
	if req.MinIncome != nil {
		lo = req.MinIncome.Round(2)
	}
	hi := s.Options.MaxIncome
	if req.MaxIncome != nil {
		hi = *req.MaxIncome
	}
	hi = hi.Round(2)

	target := req.Target()
	meets := func(b domain.BenefitResult) bool {
		return b.BenefitAfterAdjustment.LessThanOrEqual(target)
	}

	if low := s.evaluate(req, lo); meets(low) {
		return &Result{
			Request:         req,
			Success:         true,
			ConvergenceInfo: "Target met at the minimum income",
			Income:          lo,
			Benefit:         low,
		}, nil
	}
	high := s.evaluate(req, hi)
	if !meets(high) {
		return nil, &BreakEvenError{
			Operation: "solve",
			Message: fmt.Sprintf("benefit is %s at the maximum income %s",
				high.BenefitAfterAdjustment.StringFixed(2), hi.StringFixed(2)),
			Cause: ErrUnreachable,
		}
	}

	// lo never meets the target and hi always does
	iterations := 0
	for hi.Sub(lo).GreaterThan(req.Tolerance) {
		if iterations >= req.MaxIterations {
			return &Result{
				Request:         req,
				Iterations:      iterations,
				ConvergenceInfo: fmt.Sprintf("Max iterations (%d) reached", req.MaxIterations),
				Income:          hi,
				Benefit:         high,
			}, nil
		}
		iterations++

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		mid := lo.Add(hi).Div(two).Round(2)
		if b := s.evaluate(req, mid); meets(b) {
			hi, high = mid, b
		} else {
			lo = mid
		}
	}

	return &Result{
		Request:         req,
		Success:         true,
		Iterations:      iterations,
		ConvergenceInfo: fmt.Sprintf("Binary search converged within $%s", req.Tolerance.StringFixed(2)),
		Income:          hi,
		Benefit:         high,
	}, nil
}

func (s *Solver) evaluate(req Request, income decimal.Decimal) domain.BenefitResult {
	return s.CalcEngine.Benefit.Compute(domain.IncomeFromTotal(income), req.Household, req.Factor)
}
