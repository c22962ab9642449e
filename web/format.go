package web

import (
	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// usd renders a decimal dollar amount as "$1,234.56". Amounts are stored
// with two decimal places, so shifting by the currency fraction is exact.
func usd(amount decimal.Decimal) string {
	cents := amount.Shift(int32(money.GetCurrency(money.USD).Fraction)).Round(0).IntPart()
	return money.New(cents, money.USD).Display()
}
