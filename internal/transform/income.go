package transform

import (
	"fmt"

	"github.com/rgehrsitz/aishcalc/internal/compare"
	"github.com/rgehrsitz/aishcalc/internal/domain"
	"github.com/shopspring/decimal"
)

// IncomeSource names one field of an income breakdown
type IncomeSource string

const (
	SourceEmployment     IncomeSource = "employment"
	SourceSelfEmployment IncomeSource = "self_employment"
	SourceOther          IncomeSource = "other"
)

var hundred = decimal.NewFromInt(100)

func (s IncomeSource) field(ib *domain.IncomeBreakdown) (*decimal.Decimal, error) {
	switch s {
	case SourceEmployment, "":
		return &ib.Employment, nil
	case SourceSelfEmployment:
		return &ib.SelfEmployment, nil
	case SourceOther:
		return &ib.Other, nil
	default:
		return nil, fmt.Errorf("%w: unknown income source %q", domain.ErrInvalidInput, s)
	}
}

func (s IncomeSource) label() string {
	if s == "" {
		return string(SourceEmployment)
	}
	return string(s)
}

// AddIncome adds a monthly amount to one income source. Negative amounts
// reduce it.
type AddIncome struct {
	Source IncomeSource
	Amount decimal.Decimal
}

func (t *AddIncome) Name() string { return "add_income" }

func (t *AddIncome) Description() string {
	verb := "add"
	if t.Amount.IsNegative() {
		verb = "remove"
	}
	return fmt.Sprintf("%s $%s %s", verb, t.Amount.Abs().StringFixed(2), t.Source.label())
}

func (t *AddIncome) Validate(base compare.Scenario) error {
	if _, err := t.Source.field(&base.Income); err != nil {
		return NewTransformError(t.Name(), "validate", "bad source", err)
	}
	return nil
}

func (t *AddIncome) Apply(base compare.Scenario) (compare.Scenario, error) {
	f, err := t.Source.field(&base.Income)
	if err != nil {
		return compare.Scenario{}, err
	}
	*f = f.Add(t.Amount)
	return base, nil
}

// SetIncome replaces one income source
type SetIncome struct {
	Source IncomeSource
	Amount decimal.Decimal
}

func (t *SetIncome) Name() string { return "set_income" }

func (t *SetIncome) Description() string {
	return fmt.Sprintf("%s at $%s", t.Source.label(), t.Amount.StringFixed(2))
}

func (t *SetIncome) Validate(base compare.Scenario) error {
	if _, err := t.Source.field(&base.Income); err != nil {
		return NewTransformError(t.Name(), "validate", "bad source", err)
	}
	return nil
}

func (t *SetIncome) Apply(base compare.Scenario) (compare.Scenario, error) {
	f, err := t.Source.field(&base.Income)
	if err != nil {
		return compare.Scenario{}, err
	}
	*f = t.Amount
	return base, nil
}

// ScaleIncome changes one income source, or every source when All is set,
// by a percentage. Results are rounded to cents.
type ScaleIncome struct {
	Source  IncomeSource
	Percent decimal.Decimal
	All     bool
}

func (t *ScaleIncome) Name() string { return "scale_income" }

func (t *ScaleIncome) Description() string {
	target := t.Source.label()
	if t.All {
		target = "all income"
	}
	sign := ""
	if t.Percent.IsPositive() {
		sign = "+"
	}
	return fmt.Sprintf("%s %s%s%%", target, sign, t.Percent.StringFixed(1))
}

func (t *ScaleIncome) Validate(base compare.Scenario) error {
	if t.Percent.LessThan(hundred.Neg()) {
		return NewTransformError(t.Name(), "validate", "cannot cut income by more than 100%",
			domain.ErrInvalidInput)
	}
	if t.All {
		return nil
	}
	if _, err := t.Source.field(&base.Income); err != nil {
		return NewTransformError(t.Name(), "validate", "bad source", err)
	}
	return nil
}

func (t *ScaleIncome) Apply(base compare.Scenario) (compare.Scenario, error) {
	factor := hundred.Add(t.Percent).Div(hundred)
	fields := []*decimal.Decimal{&base.Income.Employment, &base.Income.SelfEmployment, &base.Income.Other}
	if !t.All {
		f, err := t.Source.field(&base.Income)
		if err != nil {
			return compare.Scenario{}, err
		}
		fields = []*decimal.Decimal{f}
	}
	for _, f := range fields {
		*f = f.Mul(factor).Round(2)
	}
	return base, nil
}

// SetHousehold switches the household type
type SetHousehold struct {
	Household domain.HouseholdType
}

func (t *SetHousehold) Name() string { return "set_household" }

func (t *SetHousehold) Description() string {
	return string(t.Household) + " household"
}

func (t *SetHousehold) Validate(compare.Scenario) error {
	if !t.Household.IsKnown() {
		return NewTransformError(t.Name(), "validate",
			fmt.Sprintf("household must be %q or %q", domain.HouseholdSingle, domain.HouseholdFamily),
			domain.ErrInvalidInput)
	}
	return nil
}

func (t *SetHousehold) Apply(base compare.Scenario) (compare.Scenario, error) {
	base.Household = t.Household
	return base, nil
}
