package utils

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the wire format for calendar dates (no time component)
const DateLayout = "2006-01-02"

var hundred = decimal.NewFromInt(100)

// CalculateMinPayment calculates the per-period minimum payment
// Formula: LoanAmount * Percentage / 100
func CalculateMinPayment(loanAmount decimal.Decimal, percentage decimal.Decimal) decimal.Decimal {
	minPayment := loanAmount.Mul(percentage).Div(hundred)

	// Round to 2 decimal places
	return minPayment.Round(2)
}

// DateOf strips the time-of-day from t, keeping the calendar date t has in its own location.
// The result is midnight UTC so dates compare and subtract as whole days.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Today returns the current calendar date in loc
func Today(now time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	return DateOf(now.In(loc))
}

// DaysBetween returns the whole number of calendar days from `from` to `to`.
// Negative when `to` is before `from`.
func DaysBetween(from, to time.Time) int {
	hours := DateOf(to).Sub(DateOf(from)).Hours()
	return int(hours / 24)
}

// ParseDate parses a YYYY-MM-DD string, also accepting a full RFC3339 timestamp
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(DateLayout, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, err
	}
	return DateOf(t), nil
}

// FormatDate renders a calendar date as YYYY-MM-DD
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// IsDigits reports whether s is non-empty and made only of ASCII digits
func IsDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// DecimalFromString converts string to decimal.Decimal
func DecimalFromString(s string) (decimal.Decimal, error) {
	return decimal.NewFromString(strings.TrimSpace(s))
}

// MoneyScale is the number of decimal places money columns store
const MoneyScale = 2

// IsMoneyScale reports whether d has no digits beyond MoneyScale decimal places
func IsMoneyScale(d decimal.Decimal) bool {
	return d.Equal(d.Round(MoneyScale))
}

// MaxDecimal returns the larger of a and b
func MaxDecimal(a, b decimal.Decimal) decimal.Decimal {
	if a.GreaterThan(b) {
		return a
	}
	return b
}
