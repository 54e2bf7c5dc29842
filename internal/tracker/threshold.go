package tracker

import (
	"context"

	"github.com/rgehrsitz/aishcalc/internal/breakeven"
	"go.uber.org/zap"
)

// Thresholds searches the monthly income at which the benefit falls to the
// request's target. An empty household solves both household types. With
// adjusted set the current factor replaces req.Factor.
func (s *Service) Thresholds(ctx context.Context, req breakeven.Request, adjusted bool) (results []breakeven.Result, err error) {
	defer func() { s.metrics.RecordOperation("threshold", err) }()

	if adjusted {
		req.Factor = s.Adjustment().Value
	}

	solver := breakeven.NewDefaultSolver(s.engine)
	if req.Household == "" {
		results, err = solver.SolveHouseholds(ctx, req)
	} else {
		var res *breakeven.Result
		res, err = solver.Solve(ctx, req)
		if res != nil {
			results = []breakeven.Result{*res}
		}
	}
	if err != nil {
		return nil, err
	}

	for _, r := range results {
		s.logger.Debug("income threshold",
			zap.String("household", string(r.Request.Household)),
			zap.String("income", r.Income.String()),
			zap.Int("iterations", r.Iterations))
	}
	return results, nil
}
