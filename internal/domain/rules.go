package domain

import (
	"github.com/shopspring/decimal"
)

// BenefitRules contains the program constants that drive the calculator and
// the adjustment estimator. Defaults are built in; a rules YAML file can
// replace them when the program amounts change.
type BenefitRules struct {
	Metadata   RulesMetadata   `yaml:"metadata" json:"metadata"`
	MaxBenefit decimal.Decimal `yaml:"max_benefit" json:"max_benefit"`
	Single     ExemptionTier   `yaml:"single" json:"single"`
	Family     ExemptionTier   `yaml:"family" json:"family"`
	Adjustment AdjustmentRules `yaml:"adjustment" json:"adjustment"`
}

// RulesMetadata describes where a rules set came from
type RulesMetadata struct {
	EffectiveYear int    `yaml:"effective_year" json:"effective_year"`
	Description   string `yaml:"description" json:"description"`
}

// ExemptionTier holds the piecewise exemption thresholds for one household type
type ExemptionTier struct {
	FullExemptionCeiling    decimal.Decimal `yaml:"full_exemption_ceiling" json:"full_exemption_ceiling"`
	PartialExemptionCeiling decimal.Decimal `yaml:"partial_exemption_ceiling" json:"partial_exemption_ceiling"`
	MaxExemption            decimal.Decimal `yaml:"max_exemption" json:"max_exemption"`
	PartialRate             decimal.Decimal `yaml:"partial_rate" json:"partial_rate"`
}

// AdjustmentRules parameterise the recency-weighted average and the
// confidence classification
type AdjustmentRules struct {
	OutlierLimit     decimal.Decimal `yaml:"outlier_limit" json:"outlier_limit"`
	InitialWeight    decimal.Decimal `yaml:"initial_weight" json:"initial_weight"`
	WeightDecay      decimal.Decimal `yaml:"weight_decay" json:"weight_decay"`
	MinWeight        decimal.Decimal `yaml:"min_weight" json:"min_weight"`
	ConfidenceWindow int             `yaml:"confidence_window" json:"confidence_window"`
	HighStdDev       decimal.Decimal `yaml:"high_std_dev" json:"high_std_dev"`
	MediumStdDev     decimal.Decimal `yaml:"medium_std_dev" json:"medium_std_dev"`
}

// DefaultBenefitRules returns the current AISH amounts
func DefaultBenefitRules() BenefitRules {
	half := decimal.NewFromFloat(0.5)
	return BenefitRules{
		Metadata: RulesMetadata{
			EffectiveYear: 2025,
			Description:   "AISH monthly benefit and income exemption amounts",
		},
		MaxBenefit: decimal.NewFromInt(1901),
		Single: ExemptionTier{
			FullExemptionCeiling:    decimal.NewFromInt(1072),
			PartialExemptionCeiling: decimal.NewFromInt(2009),
			MaxExemption:            decimal.NewFromInt(1541),
			PartialRate:             half,
		},
		Family: ExemptionTier{
			FullExemptionCeiling:    decimal.NewFromInt(2800),
			PartialExemptionCeiling: decimal.NewFromInt(3600),
			MaxExemption:            decimal.NewFromInt(3200),
			PartialRate:             half,
		},
		Adjustment: AdjustmentRules{
			OutlierLimit:     decimal.NewFromInt(1000),
			InitialWeight:    decimal.NewFromInt(3),
			WeightDecay:      half,
			MinWeight:        decimal.NewFromInt(1),
			ConfidenceWindow: 3,
			HighStdDev:       decimal.NewFromInt(5),
			MediumStdDev:     decimal.NewFromInt(10),
		},
	}
}

// TierFor returns the exemption tier for a household. Anything other than
// single falls through to the family tier.
func (r BenefitRules) TierFor(h HouseholdType) ExemptionTier {
	if h.IsSingle() {
		return r.Single
	}
	return r.Family
}
