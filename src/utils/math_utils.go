package utils

import "github.com/shopspring/decimal"

// RoundFloat rounds a float64 half away from zero to the given number of
// decimal places. Used only at the presentation boundary.
func RoundFloat(val float64, precision int32) float64 {
	f, _ := decimal.NewFromFloat(val).Round(precision).Float64()
	return f
}
