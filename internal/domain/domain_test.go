package domain

import (
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestParseDate(t *testing.T) {
	d, err := ParseDate(" 2025-02-10 ")
	require.NoError(t, err)
	assert.Equal(t, Date{Year: 2025, Month: time.February, Day: 10}, d)

	d, err = ParseDate("2025-02-25T18:30:00.000Z")
	require.NoError(t, err)
	assert.Equal(t, "2025-02-25", d.String())

	for _, bad := range []string{"", "2025-13-01", "2025-02-30", "10/02/2025"} {
		_, err := ParseDate(bad)
		assert.ErrorIs(t, err, ErrInvalidInput, bad)
	}
}

func TestDate_Ordering(t *testing.T) {
	a := NewDate(2024, time.December, 31)
	b := NewDate(2025, time.January, 1)

	assert.True(t, a.Before(b))
	assert.False(t, b.Before(a))
	assert.Equal(t, 0, a.Compare(a))
	assert.True(t, NewDate(2025, time.January, 32).Equal(NewDate(2025, time.February, 1)))
	assert.True(t, Date{}.IsZero())
	assert.Equal(t, MonthKey{Year: 2024, Month: time.December}, a.Key())
}

func TestDate_JSON(t *testing.T) {
	data, err := json.Marshal(struct {
		D Date `json:"d"`
	}{NewDate(2025, time.March, 5)})
	require.NoError(t, err)
	assert.JSONEq(t, `{"d": "2025-03-05"}`, string(data))

	var out struct {
		D Date `json:"d"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"d": "2025-03-05"}`), &out))
	assert.Equal(t, NewDate(2025, time.March, 5), out.D)
}

func TestMonthKey(t *testing.T) {
	jan := MonthKey{Year: 2025, Month: time.January}
	assert.Equal(t, "2025-0", jan.String())
	assert.Equal(t, MonthKey{Year: 2024, Month: time.December}, jan.Prev())
	assert.Equal(t, "2024-11", jan.Prev().String())
	assert.Equal(t, -1, jan.Prev().Compare(jan))
	assert.Equal(t, NewDate(2025, time.January, 14), jan.Date(14))

	parsed, err := ParseMonthKey("2024-11")
	require.NoError(t, err)
	assert.Equal(t, jan.Prev(), parsed)

	for _, bad := range []string{"2024", "x-1", "2024-12", "2024--1"} {
		_, err := ParseMonthKey(bad)
		assert.ErrorIs(t, err, ErrInvalidInput, bad)
	}

	ym, err := ParseYearMonth("2025-02")
	require.NoError(t, err)
	assert.Equal(t, MonthKey{Year: 2025, Month: time.February}, ym)
	_, err = ParseYearMonth("2025-2-1")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestBook(t *testing.T) {
	book := PaydayBook{}
	jan20 := NewDate(2025, time.January, 20)
	feb10 := NewDate(2025, time.February, 10)

	book.Set(feb10, PaydayRecord{Amount: dec("1000")})
	book.Set(jan20, PaydayRecord{Amount: dec("500"), Note: "shift"})
	book.Set(jan20, PaydayRecord{Amount: dec("550"), Note: "shift"})
	assert.Equal(t, 2, book.Len())

	rec, ok := book.Get(jan20)
	require.True(t, ok)
	assert.True(t, rec.Amount.Equal(dec("550")))

	entries := book.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, jan20, entries[0].Date)
	assert.Equal(t, feb10, entries[1].Date)

	clone := book.Clone()
	assert.True(t, clone.Remove(feb10))
	assert.False(t, clone.Remove(feb10))
	assert.Equal(t, 2, book.Len())
	assert.Equal(t, 1, clone.Len())
	assert.Nil(t, clone.Month(feb10.Key()))

	_, ok = book.Get(NewDate(2025, time.March, 1))
	assert.False(t, ok)
	assert.NotNil(t, PaymentBook(nil).Clone())
}

func TestBook_JSONKeys(t *testing.T) {
	book := PaydayBook{}
	book.Set(NewDate(2025, time.January, 20), PaydayRecord{Amount: dec("500")})

	data, err := json.Marshal(book)
	require.NoError(t, err)
	assert.JSONEq(t, `{"2025-0": {"20": {"amount": "500", "note": ""}}}`, string(data))

	var decoded PaydayBook
	require.NoError(t, json.Unmarshal(data, &decoded))
	rec, ok := decoded.Get(NewDate(2025, time.January, 20))
	require.True(t, ok)
	assert.True(t, rec.Amount.Equal(dec("500")))
}

func TestAishPaymentRecord(t *testing.T) {
	fallback := NewDate(2025, time.February, 25)
	assert.Equal(t, fallback, AishPaymentRecord{}.PaymentDate(fallback))
	assert.Equal(t, fallback, AishPaymentRecord{Date: "garbage"}.PaymentDate(fallback))
	assert.Equal(t, NewDate(2025, time.February, 24),
		AishPaymentRecord{Date: "2025-02-24T07:00:00Z"}.PaymentDate(fallback))

	expected := dec("1687")
	assert.False(t, AishPaymentRecord{Expected: &expected}.HasSnapshot())
	assert.True(t, AishPaymentRecord{Expected: &expected, Adjustment: &expected}.HasSnapshot())
}

func TestCalculatorInputs_JSON(t *testing.T) {
	inputs := CalculatorInputs{
		Household: HouseholdFamily,
		Income:    IncomeBreakdown{Employment: dec("1500.5"), Other: dec("100")},
	}
	data, err := json.Marshal(inputs)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"householdType": "family",
		"employmentIncome": "1500.5",
		"selfEmploymentIncome": "0",
		"otherIncome": "100"
	}`, string(data))

	var decoded CalculatorInputs
	require.NoError(t, json.Unmarshal([]byte(`{
		"householdType": "Single",
		"employmentIncome": "",
		"selfEmploymentIncome": "abc",
		"otherIncome": 250
	}`), &decoded))
	assert.Equal(t, HouseholdSingle, decoded.Household)
	assert.True(t, decoded.Income.Employment.IsZero())
	assert.True(t, decoded.Income.SelfEmployment.IsZero())
	assert.True(t, decoded.Income.Other.Equal(dec("250")))
}

func TestHouseholdType(t *testing.T) {
	assert.Equal(t, HouseholdFamily, ParseHouseholdType(" FAMILY "))
	assert.True(t, HouseholdSingle.IsKnown())
	assert.False(t, HouseholdType("couple").IsKnown())

	rules := DefaultBenefitRules()
	assert.True(t, rules.TierFor(HouseholdSingle).MaxExemption.Equal(dec("1541")))
	assert.True(t, rules.TierFor(HouseholdFamily).MaxExemption.Equal(dec("3200")))
	assert.True(t, IncomeFromTotal(dec("42")).Total().Equal(dec("42")))
}

func TestSnapshot_Clone(t *testing.T) {
	snap := EmptySnapshot()
	snap.Paydays.Set(NewDate(2025, time.January, 20), PaydayRecord{Amount: dec("500")})
	snap.CalculatorData = &CalculatorInputs{Household: HouseholdSingle}

	cp := snap.Clone()
	cp.Paydays.Set(NewDate(2025, time.January, 21), PaydayRecord{Amount: dec("1")})
	cp.CalculatorData.Household = HouseholdFamily
	cp.SetAdjustment(AdjustmentState{Value: dec("5"), Mode: AdjustmentOverridden})

	assert.Equal(t, 1, snap.Paydays.Len())
	assert.Equal(t, HouseholdSingle, snap.CalculatorData.Household)
	assert.Equal(t, AdjustmentDerived, snap.Adjustment().Mode)
	assert.True(t, cp.Adjustment().IsOverridden())

	assert.Equal(t, AdjustmentDerived, (&Snapshot{}).Adjustment().Mode)
}
