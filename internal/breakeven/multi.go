package breakeven

import (
	"context"

	"github.com/rgehrsitz/aishcalc/internal/domain"
	"golang.org/x/sync/errgroup"
)

// Households lists the household types SolveHouseholds covers, in output order
var Households = []domain.HouseholdType{domain.HouseholdSingle, domain.HouseholdFamily}

// SolveHouseholds runs req once per household type concurrently. The
// request's own Household is ignored. The first failure cancels the rest.
func (s *Solver) SolveHouseholds(ctx context.Context, req Request) ([]Result, error) {
	results := make([]Result, len(Households))

	g, gCtx := errgroup.WithContext(ctx)
	for i, household := range Households {
		g.Go(func() error {
			r := req
			r.Household = household
			res, err := s.Solve(gCtx, r)
			if err != nil {
				return err
			}
			results[i] = *res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
