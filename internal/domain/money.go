package domain

import (
	"math"

	"github.com/shopspring/decimal"
)

// Round2 rounds a currency value half away from zero to cents.
func Round2(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}

// ValidAmount reports whether v is a positive finite number.
func ValidAmount(v float64) bool {
	return v > 0 && !math.IsNaN(v) && !math.IsInf(v, 0)
}

// AddMoney returns a+b rounded to cents using decimal arithmetic so that
// repeated debits and credits do not accumulate binary float error.
func AddMoney(a, b float64) float64 {
	return decimal.NewFromFloat(a).Add(decimal.NewFromFloat(b)).Round(2).InexactFloat64()
}

// SubMoney returns a-b rounded to cents.
func SubMoney(a, b float64) float64 {
	return decimal.NewFromFloat(a).Sub(decimal.NewFromFloat(b)).Round(2).InexactFloat64()
}

// MulMoney returns price*qty rounded to cents.
func MulMoney(price float64, qty int64) float64 {
	return decimal.NewFromFloat(price).Mul(decimal.NewFromInt(qty)).Round(2).InexactFloat64()
}
