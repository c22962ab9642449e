package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TradeSide represents the direction of a recorded trade
type TradeSide string

const (
	TradeSideBuy  TradeSide = "buy"
	TradeSideSell TradeSide = "sell"
)

// LedgerEntry is one immutable record of a trade. Shares are signed:
// positive for a buy, negative for a sell. The price is the unit price
// captured at execution time and never changes afterwards. The ledger is
// append-only and is the authoritative source of truth; holdings are
// always derived from it.
type LedgerEntry struct {
	ID        int64           `db:"id"`
	UserID    int64           `db:"user_id"`
	Symbol    string          `db:"symbol"`
	Shares    int64           `db:"shares"`
	Price     decimal.Decimal `db:"price"`
	CreatedAt time.Time       `db:"created_at"`
}

// Side returns the trade direction implied by the sign of Shares
func (e *LedgerEntry) Side() TradeSide {
	if e.Shares < 0 {
		return TradeSideSell
	}
	return TradeSideBuy
}

// Quantity returns the unsigned number of shares traded
func (e *LedgerEntry) Quantity() int64 {
	if e.Shares < 0 {
		return -e.Shares
	}
	return e.Shares
}

// Total returns the absolute cash amount the trade moved
func (e *LedgerEntry) Total() decimal.Decimal {
	return e.Price.Mul(decimal.NewFromInt(e.Quantity()))
}
