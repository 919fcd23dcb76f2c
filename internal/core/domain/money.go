package domain

import "github.com/shopspring/decimal"

// moneyScale is the number of decimal places for all monetary values.
const moneyScale = 2

// RoundMoney rounds a monetary value to 2 decimal places, half away from
// zero. Applied at every intermediate step of a calculation, not just the
// final output, so repeated small operations cannot accumulate drift.
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(moneyScale)
}
