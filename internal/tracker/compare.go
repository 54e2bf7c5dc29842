package tracker

import (
	"context"

	"github.com/rgehrsitz/aishcalc/internal/compare"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Compare evaluates the alternatives against base. With adjusted set every
// scenario uses the current factor, otherwise none is applied.
func (s *Service) Compare(ctx context.Context, base compare.Scenario, alternatives []compare.Scenario, adjusted bool) (set *compare.ComparisonSet, err error) {
	defer func() { s.metrics.RecordOperation("compare", err) }()

	factor := decimal.Zero
	if adjusted {
		factor = s.Adjustment().Value
	}

	set, err = compare.NewCompareEngine(s.engine).CompareScenarios(ctx, base, alternatives, factor)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("compared income scenarios",
		zap.String("base", set.BaseScenarioName),
		zap.Int("alternatives", len(set.AlternativeResults)))
	return set, nil
}
