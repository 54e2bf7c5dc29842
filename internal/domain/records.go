package domain

import (
	"sort"

	"github.com/shopspring/decimal"
)

// PaydayRecord is income received on one calendar date
type PaydayRecord struct {
	Amount decimal.Decimal `json:"amount"`
	Note   string          `json:"note"`
}

// AishPaymentRecord is an actual benefit payment together with the expected
// amount frozen at the time it was entered. Expected and Adjustment are nil
// for records imported from the older format that did not snapshot them.
type AishPaymentRecord struct {
	Amount     decimal.Decimal  `json:"amount"`
	Date       string           `json:"date,omitempty"`
	Expected   *decimal.Decimal `json:"expected,omitempty"`
	Adjustment *decimal.Decimal `json:"adjustment,omitempty"`
}

// HasSnapshot reports whether the expected/adjustment pair was recorded
func (r AishPaymentRecord) HasSnapshot() bool {
	return r.Expected != nil && r.Adjustment != nil
}

// PaymentDate returns the parsed Date field, or fallback when it is missing
// or unparseable.
func (r AishPaymentRecord) PaymentDate(fallback Date) Date {
	if r.Date == "" {
		return fallback
	}
	d, err := ParseDate(r.Date)
	if err != nil {
		return fallback
	}
	return d
}

// Book stores at most one record per calendar date, bucketed by month
type Book[T any] map[MonthKey]map[int]T

// PaydayBook holds all payday records
type PaydayBook = Book[PaydayRecord]

// PaymentBook holds all AISH payment records
type PaymentBook = Book[AishPaymentRecord]

// BookEntry pairs a record with the date it is filed under
type BookEntry[T any] struct {
	Date   Date
	Record T
}

// Get returns the record for d
func (b Book[T]) Get(d Date) (T, bool) {
	var zero T
	days, ok := b[d.Key()]
	if !ok {
		return zero, false
	}
	rec, ok := days[d.Day]
	return rec, ok
}

// Set stores rec at d, replacing any existing record on that date
func (b Book[T]) Set(d Date, rec T) {
	key := d.Key()
	days, ok := b[key]
	if !ok {
		days = make(map[int]T)
		b[key] = days
	}
	days[d.Day] = rec
}

// Remove deletes the record at d and reports whether one existed
func (b Book[T]) Remove(d Date) bool {
	key := d.Key()
	days, ok := b[key]
	if !ok {
		return false
	}
	if _, ok := days[d.Day]; !ok {
		return false
	}
	delete(days, d.Day)
	if len(days) == 0 {
		delete(b, key)
	}
	return true
}

// Month returns the records of one month keyed by day
func (b Book[T]) Month(key MonthKey) map[int]T {
	return b[key]
}

// Len counts records across all months
func (b Book[T]) Len() int {
	n := 0
	for _, days := range b {
		n += len(days)
	}
	return n
}

// Entries lists every record in chronological order
func (b Book[T]) Entries() []BookEntry[T] {
	entries := make([]BookEntry[T], 0, b.Len())
	for key, days := range b {
		for day, rec := range days {
			entries = append(entries, BookEntry[T]{Date: key.Date(day), Record: rec})
		}
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Date.Before(entries[j].Date)
	})
	return entries
}

// Clone copies the book so the copy can be modified independently
func (b Book[T]) Clone() Book[T] {
	if b == nil {
		return Book[T]{}
	}
	out := make(Book[T], len(b))
	for key, days := range b {
		cp := make(map[int]T, len(days))
		for day, rec := range days {
			cp[day] = rec
		}
		out[key] = cp
	}
	return out
}
