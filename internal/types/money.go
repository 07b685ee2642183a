// README: Money value object; fares are carried as integer cents.
package types

import "math"

const USD = "USD"

type Money struct {
	Amount   int64 // cents
	Currency string
}

// FromFloat rounds v to the nearest cent.
func FromFloat(v float64, currency string) Money {
	return Money{Amount: int64(math.Round(v * 100)), Currency: currency}
}

func (m Money) Float() float64 {
	return float64(m.Amount) / 100
}
