package domain

import (
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/shopspring/decimal"
)

// HouseholdType selects which exemption tier applies to a calculation
type HouseholdType string

const (
	HouseholdSingle HouseholdType = "single"
	HouseholdFamily HouseholdType = "family"
)

// IsSingle reports whether the single-person tier applies. Every other value,
// including unrecognised ones, is treated as family.
func (h HouseholdType) IsSingle() bool {
	return h == HouseholdSingle
}

// IsKnown reports whether h is one of the two enumerated household types
func (h HouseholdType) IsKnown() bool {
	return h == HouseholdSingle || h == HouseholdFamily
}

// ParseHouseholdType normalises user input. Unknown values are returned as-is
// so the calculator can apply its family fallthrough.
func ParseHouseholdType(s string) HouseholdType {
	return HouseholdType(strings.ToLower(strings.TrimSpace(s)))
}

// IncomeBreakdown holds the three declared monthly income sources
type IncomeBreakdown struct {
	Employment     decimal.Decimal `yaml:"employment" json:"employment"`
	SelfEmployment decimal.Decimal `yaml:"self_employment" json:"selfEmployment"`
	Other          decimal.Decimal `yaml:"other" json:"other"`
}

// Total sums all income sources
func (ib IncomeBreakdown) Total() decimal.Decimal {
	return ib.Employment.Add(ib.SelfEmployment).Add(ib.Other)
}

// IncomeFromTotal builds a breakdown carrying the whole amount as employment
// income, which is how reporting-period sums are fed to the calculator.
func IncomeFromTotal(total decimal.Decimal) IncomeBreakdown {
	return IncomeBreakdown{Employment: total}
}

// BenefitResult is the outcome of a single benefit calculation
type BenefitResult struct {
	Household               HouseholdType   `json:"household"`
	TotalIncome             decimal.Decimal `json:"totalIncome"`
	Exemption               decimal.Decimal `json:"exemption"`
	Deduction               decimal.Decimal `json:"deduction"`
	BenefitBeforeAdjustment decimal.Decimal `json:"benefitBeforeAdjustment"`
	AdjustmentFactor        decimal.Decimal `json:"adjustmentFactor"`
	BenefitAfterAdjustment  decimal.Decimal `json:"benefitAfterAdjustment"`
	TotalMonthlyIncome      decimal.Decimal `json:"totalMonthlyIncome"`
}

// CalculatorInputs are the last values entered for the live preview
type CalculatorInputs struct {
	Household HouseholdType   `yaml:"household"`
	Income    IncomeBreakdown `yaml:"income"`
	LastSaved *time.Time      `yaml:"-"`
}

// calculatorInputsJSON is the persisted layout: flat income fields written
// as strings, the way the form values were stored.
type calculatorInputsJSON struct {
	HouseholdType        HouseholdType `json:"householdType"`
	EmploymentIncome     formAmount    `json:"employmentIncome"`
	SelfEmploymentIncome formAmount    `json:"selfEmploymentIncome"`
	OtherIncome          formAmount    `json:"otherIncome"`
	LastSaved            *time.Time    `json:"lastSaved,omitempty"`
}

// MarshalJSON implements json.Marshaler
func (c CalculatorInputs) MarshalJSON() ([]byte, error) {
	return json.Marshal(calculatorInputsJSON{
		HouseholdType:        c.Household,
		EmploymentIncome:     formAmount(c.Income.Employment),
		SelfEmploymentIncome: formAmount(c.Income.SelfEmployment),
		OtherIncome:          formAmount(c.Income.Other),
		LastSaved:            c.LastSaved,
	})
}

// UnmarshalJSON implements json.Unmarshaler. Blank or non-numeric amounts
// read as zero.
func (c *CalculatorInputs) UnmarshalJSON(data []byte) error {
	var raw calculatorInputsJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*c = CalculatorInputs{
		Household: ParseHouseholdType(string(raw.HouseholdType)),
		Income: IncomeBreakdown{
			Employment:     decimal.Decimal(raw.EmploymentIncome),
			SelfEmployment: decimal.Decimal(raw.SelfEmploymentIncome),
			Other:          decimal.Decimal(raw.OtherIncome),
		},
		LastSaved: raw.LastSaved,
	}
	return nil
}

// formAmount is a decimal that tolerates blank and non-numeric form input
type formAmount decimal.Decimal

func (f formAmount) MarshalJSON() ([]byte, error) {
	return json.Marshal(decimal.Decimal(f).String())
}

func (f *formAmount) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(strings.Trim(string(data), `"`))
	d, err := decimal.NewFromString(s)
	if err != nil {
		d = decimal.Zero
	}
	*f = formAmount(d)
	return nil
}
