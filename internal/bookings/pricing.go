package bookings

import (
	"time"

	"github.com/shopspring/decimal"
)

const msPerDay = int64(24 * time.Hour / time.Millisecond)

// RentalDays is the number of started 24h periods between rental and return.
func RentalDays(rental, ret time.Time) int64 {
	ms := ret.Sub(rental).Milliseconds()
	if ms <= 0 {
		return 0
	}
	days := ms / msPerDay
	if ms%msPerDay != 0 {
		days++
	}
	return days
}

// TotalPrice is pricePerDay × quantity × RentalDays. Discounts never apply.
func TotalPrice(pricePerDay decimal.Decimal, quantity int, rental, ret time.Time) decimal.Decimal {
	return pricePerDay.
		Mul(decimal.NewFromInt(int64(quantity))).
		Mul(decimal.NewFromInt(RentalDays(rental, ret)))
}
