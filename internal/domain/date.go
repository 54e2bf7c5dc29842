package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

// Date is a calendar date without time-of-day or zone
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// NewDate builds a Date, normalising overflow the way time.Date does
func NewDate(year int, month time.Month, day int) Date {
	return DateOf(time.Date(year, month, day, 0, 0, 0, 0, time.UTC))
}

// DateOf truncates t to its calendar date
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// ParseDate parses a YYYY-MM-DD string. Full RFC 3339 timestamps, as written
// by older exports of the adjustment history, are accepted and truncated.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		ts, tsErr := time.Parse(time.RFC3339Nano, s)
		if tsErr != nil {
			return Date{}, fmt.Errorf("%w: invalid date %q: %v", ErrInvalidInput, s, err)
		}
		t = ts.UTC()
	}
	return DateOf(t), nil
}

// IsZero reports whether the date is unset
func (d Date) IsZero() bool {
	return d.Year == 0 && d.Month == 0 && d.Day == 0
}

// Time returns midnight UTC on d
func (d Date) Time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

// Key returns the month bucket the date belongs to
func (d Date) Key() MonthKey {
	return MonthKey{Year: d.Year, Month: d.Month}
}

// Before reports whether d is earlier than other
func (d Date) Before(other Date) bool {
	return d.Compare(other) < 0
}

// Equal reports whether both dates name the same day
func (d Date) Equal(other Date) bool {
	return d == other
}

// Compare returns -1, 0 or +1 ordering d against other
func (d Date) Compare(other Date) int {
	switch {
	case d.Year != other.Year:
		return cmpInt(d.Year, other.Year)
	case d.Month != other.Month:
		return cmpInt(int(d.Month), int(other.Month))
	default:
		return cmpInt(d.Day, other.Day)
	}
}

func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// MarshalText implements encoding.TextMarshaler
func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (d *Date) UnmarshalText(text []byte) error {
	parsed, err := ParseDate(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// MonthKey addresses one calendar month of records
type MonthKey struct {
	Year  int
	Month time.Month
}

// Prev returns the key of the preceding calendar month
func (k MonthKey) Prev() MonthKey {
	if k.Month == time.January {
		return MonthKey{Year: k.Year - 1, Month: time.December}
	}
	return MonthKey{Year: k.Year, Month: k.Month - 1}
}

// Date returns the given day within the month
func (k MonthKey) Date(day int) Date {
	return Date{Year: k.Year, Month: k.Month, Day: day}
}

// Compare orders keys chronologically
func (k MonthKey) Compare(other MonthKey) int {
	if k.Year != other.Year {
		return cmpInt(k.Year, other.Year)
	}
	return cmpInt(int(k.Month), int(other.Month))
}

// String renders the persisted form "{year}-{zeroBasedMonth}"
func (k MonthKey) String() string {
	return strconv.Itoa(k.Year) + "-" + strconv.Itoa(int(k.Month)-1)
}

// MarshalText implements encoding.TextMarshaler so MonthKey can key JSON maps
func (k MonthKey) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText parses the "{year}-{zeroBasedMonth}" form
func (k *MonthKey) UnmarshalText(text []byte) error {
	parsed, err := ParseMonthKey(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// ParseMonthKey parses "{year}-{zeroBasedMonth}"
func ParseMonthKey(s string) (MonthKey, error) {
	yearStr, monthStr, ok := strings.Cut(s, "-")
	if !ok {
		return MonthKey{}, fmt.Errorf("%w: invalid month key %q", ErrInvalidInput, s)
	}
	year, err := strconv.Atoi(yearStr)
	if err != nil {
		return MonthKey{}, fmt.Errorf("%w: invalid year in month key %q", ErrInvalidInput, s)
	}
	month, err := strconv.Atoi(monthStr)
	if err != nil || month < 0 || month > 11 {
		return MonthKey{}, fmt.Errorf("%w: invalid month in month key %q", ErrInvalidInput, s)
	}
	return MonthKey{Year: year, Month: time.Month(month + 1)}, nil
}

// ParseYearMonth parses a user-facing "YYYY-MM" string (1-based month)
func ParseYearMonth(s string) (MonthKey, error) {
	t, err := time.Parse("2006-01", strings.TrimSpace(s))
	if err != nil {
		return MonthKey{}, fmt.Errorf("%w: invalid month %q, expected YYYY-MM", ErrInvalidInput, s)
	}
	return MonthKey{Year: t.Year(), Month: t.Month()}, nil
}

func cmpInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
