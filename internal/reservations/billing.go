package reservations

import (
	"time"

	"github.com/shopspring/decimal"
)

const hoursPerDay = 24

// Nights returns the number of billed nights between two calendar dates.
// Stays of zero or negative length are billed as one night.
func Nights(checkIn, checkOut time.Time) int {
	days := int(dateOnly(checkOut).Sub(dateOnly(checkIn)).Hours() / hoursPerDay)
	if days < 1 {
		return 1
	}
	return days
}

// Total is nights times the nightly rate, rounded to cents.
func Total(nights int, rate decimal.Decimal) decimal.Decimal {
	return rate.Mul(decimal.NewFromInt(int64(nights))).Round(2)
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
