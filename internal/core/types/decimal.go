// Package types provides the numeric and calendar types shared across the domain.
package types

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Money is a monetary amount with exact decimal arithmetic.
type Money = decimal.Decimal

// Quantity is an item quantity with exact decimal arithmetic.
type Quantity = decimal.Decimal

// DateLayout is the wire format of business dates (YYYY-MM-DD).
const DateLayout = "2006-01-02"

// ReportDateLayout is the format of dates in ledger report rows.
const ReportDateLayout = "02-01-2006"

// ParseDecimal parses a decimal from its string representation.
func ParseDecimal(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parse decimal %q: %w", s, err)
	}
	return d, nil
}

// MustDecimal parses s and panics on error. Use only for constants and tests.
func MustDecimal(s string) decimal.Decimal {
	d, err := ParseDecimal(s)
	if err != nil {
		panic(err)
	}
	return d
}

// Sum adds all values.
func Sum(values ...decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, v := range values {
		total = total.Add(v)
	}
	return total
}

// Truncate drops the fractional part (toward zero) for presentation.
func Truncate(d decimal.Decimal) int64 {
	return d.Truncate(0).IntPart()
}

// ParseDate parses a YYYY-MM-DD business date in UTC.
func ParseDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: expected YYYY-MM-DD", s)
	}
	return t, nil
}

// DateOf strips the clock from t, keeping the calendar date in UTC.
func DateOf(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
