package config

import (
	"fmt"
	"os"

	"github.com/rgehrsitz/aishcalc/internal/domain"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// InputParser handles parsing of calculator input and benefit rules files
type InputParser struct{}

// NewInputParser creates a new input parser
func NewInputParser() *InputParser {
	return &InputParser{}
}

// LoadFromFile loads calculator inputs from a YAML file
func (ip *InputParser) LoadFromFile(filename string) (*domain.CalculatorInputs, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", filename, err)
	}

	inputs, err := ip.ParseInputs(data)
	if err != nil {
		return nil, err
	}
	return inputs, nil
}

// ParseInputs decodes and validates calculator inputs
func (ip *InputParser) ParseInputs(data []byte) (*domain.CalculatorInputs, error) {
	var inputs domain.CalculatorInputs
	if err := yaml.Unmarshal(data, &inputs); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	inputs.Household = domain.ParseHouseholdType(string(inputs.Household))

	if err := ip.ValidateInputs(&inputs); err != nil {
		return nil, fmt.Errorf("input validation failed: %w", err)
	}
	return &inputs, nil
}

// ValidateInputs checks the household type. Income amounts are not
// restricted: negative and very large values are passed to the calculator
// as entered.
func (ip *InputParser) ValidateInputs(inputs *domain.CalculatorInputs) error {
	if inputs.Household == "" {
		return fmt.Errorf("%w: household is required", domain.ErrInvalidInput)
	}
	if !inputs.Household.IsKnown() {
		return fmt.Errorf("%w: household must be %q or %q, got %q",
			domain.ErrInvalidInput, domain.HouseholdSingle, domain.HouseholdFamily, inputs.Household)
	}
	return nil
}

// LoadRulesFile loads a benefit rules file. Fields missing from the file keep
// their built-in defaults.
func (ip *InputParser) LoadRulesFile(filename string) (*domain.BenefitRules, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read rules file %s: %w", filename, err)
	}

	rules := domain.DefaultBenefitRules()
	if err := yaml.Unmarshal(data, &rules); err != nil {
		return nil, fmt.Errorf("failed to parse rules YAML: %w", err)
	}

	if err := ip.ValidateRules(&rules); err != nil {
		return nil, fmt.Errorf("rules validation failed: %w", err)
	}
	return &rules, nil
}

// ValidateRules validates a rules set
func (ip *InputParser) ValidateRules(rules *domain.BenefitRules) error {
	if !rules.MaxBenefit.IsPositive() {
		return fmt.Errorf("max benefit must be positive")
	}
	if err := ip.validateTier("single", rules.Single); err != nil {
		return err
	}
	if err := ip.validateTier("family", rules.Family); err != nil {
		return err
	}
	return ip.validateAdjustmentRules(rules.Adjustment)
}

func (ip *InputParser) validateTier(name string, tier domain.ExemptionTier) error {
	if tier.FullExemptionCeiling.IsNegative() {
		return fmt.Errorf("%s tier: full exemption ceiling cannot be negative", name)
	}
	if tier.PartialExemptionCeiling.LessThan(tier.FullExemptionCeiling) {
		return fmt.Errorf("%s tier: partial exemption ceiling cannot be below the full exemption ceiling", name)
	}
	if tier.MaxExemption.LessThan(tier.FullExemptionCeiling) {
		return fmt.Errorf("%s tier: max exemption cannot be below the full exemption ceiling", name)
	}
	if tier.PartialRate.IsNegative() || tier.PartialRate.GreaterThan(decimal.NewFromInt(1)) {
		return fmt.Errorf("%s tier: partial rate must be between 0 and 1", name)
	}
	return nil
}

func (ip *InputParser) validateAdjustmentRules(rules domain.AdjustmentRules) error {
	if !rules.OutlierLimit.IsPositive() {
		return fmt.Errorf("outlier limit must be positive")
	}
	if !rules.MinWeight.IsPositive() {
		return fmt.Errorf("minimum weight must be positive")
	}
	if rules.InitialWeight.LessThan(rules.MinWeight) {
		return fmt.Errorf("initial weight cannot be below the minimum weight")
	}
	if rules.WeightDecay.IsNegative() {
		return fmt.Errorf("weight decay cannot be negative")
	}
	if rules.ConfidenceWindow < 2 {
		return fmt.Errorf("confidence window must be at least 2")
	}
	if !rules.HighStdDev.IsPositive() || rules.MediumStdDev.LessThan(rules.HighStdDev) {
		return fmt.Errorf("confidence thresholds must be positive and ordered high <= medium")
	}
	return nil
}
