package models

import (
	"github.com/shopspring/decimal"
)

// Holding is a derived view of the net position in one symbol. It is
// recomputed from the ledger on every read and never persisted. Price and
// Value are based on the current quote, not on any historical trade price.
type Holding struct {
	Symbol string
	Name   string
	Shares int64
	Price  decimal.Decimal
	Value  decimal.Decimal
}

// Portfolio is the aggregated view of an account: current holdings plus
// cash. HoldingsValue is the sum of all holding values and GrandTotal is
// HoldingsValue plus Cash.
type Portfolio struct {
	Holdings      []*Holding
	HoldingsValue decimal.Decimal
	Cash          decimal.Decimal
	GrandTotal    decimal.Decimal
}
