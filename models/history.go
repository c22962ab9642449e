package models

// HistoryEntry decorates a ledger entry with the symbol's display name
// for the transaction history view
type HistoryEntry struct {
	*LedgerEntry
	Name string
}
