package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Receipt summarizes an executed trade for the caller
type Receipt struct {
	TradeID  string
	Symbol   string
	Name     string
	Side     TradeSide
	Shares   int64
	Price    decimal.Decimal
	Total    decimal.Decimal
	NewCash  decimal.Decimal
	Executed time.Time
}
