package service

import (
	"math"
	"math/big"

	"github.com/shopspring/decimal"
)

// roundHalfEven rounds v to the given number of decimals. The exact binary
// value of v decides the direction and exact ties go to the even digit, so
// 2.675 rounds to 2.67 and 0.125 to 0.12.
func roundHalfEven(v float64, places int32) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	exact := new(big.Float).SetFloat64(v).Text('f', 64)
	d, err := decimal.NewFromString(exact)
	if err != nil {
		return v
	}
	return d.RoundBank(places).InexactFloat64()
}
