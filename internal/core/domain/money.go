package domain

import "github.com/shopspring/decimal"

const moneyPlaces = 2

// RoundMoney rounds an amount to cents, half away from zero.
func RoundMoney(amount decimal.Decimal) decimal.Decimal {
	return amount.Round(moneyPlaces)
}

// FormatMoney renders an amount with exactly two fractional digits.
func FormatMoney(amount decimal.Decimal) string {
	return amount.StringFixed(moneyPlaces)
}
