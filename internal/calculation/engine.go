package calculation

import (
	"github.com/rgehrsitz/aishcalc/internal/domain"
)

// CalculationEngine bundles the benefit calculator and the adjustment
// estimator built from one rules set
type CalculationEngine struct {
	Rules     domain.BenefitRules
	Benefit   *BenefitCalculator
	Estimator *Estimator
	Logger    Logger
}

// NewCalculationEngine creates an engine with the built-in rules
func NewCalculationEngine() *CalculationEngine {
	return NewCalculationEngineWithRules(domain.DefaultBenefitRules())
}

// NewCalculationEngineWithRules creates an engine with custom rules
func NewCalculationEngineWithRules(rules domain.BenefitRules) *CalculationEngine {
	calc := NewBenefitCalculator(rules)
	return &CalculationEngine{
		Rules:     rules,
		Benefit:   calc,
		Estimator: NewEstimator(calc),
		Logger:    NopLogger{},
	}
}

// SetLogger sets the logger used by the engine and its estimator. A nil
// logger installs a no-op logger.
func (ce *CalculationEngine) SetLogger(l Logger) {
	if l == nil {
		l = NopLogger{}
	}
	ce.Logger = l
	ce.Estimator.Logger = l
}
