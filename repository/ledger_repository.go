package repository

import (
	"context"
	"fmt"

	"stocksim/database"
	"stocksim/models"
)

// LedgerRepository implements the service.LedgerRepository interface.
// The ledger is append-only: there is deliberately no update or delete.
type LedgerRepository struct {
	q queryable
}

// NewLedgerRepository creates a new ledger repository
func NewLedgerRepository(db *database.DB) *LedgerRepository {
	return &LedgerRepository{q: db.Pool}
}

// newLedgerRepositoryWithTx creates a new ledger repository with a transaction
func newLedgerRepositoryWithTx(tx queryable) *LedgerRepository {
	return &LedgerRepository{q: tx}
}

// Append records one trade
func (r *LedgerRepository) Append(ctx context.Context, entry *models.LedgerEntry) error {
	query := `
		INSERT INTO ledger_entries (user_id, symbol, shares, price)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`

	err := r.q.QueryRow(ctx, query,
		entry.UserID,
		entry.Symbol,
		entry.Shares,
		entry.Price,
	).Scan(&entry.ID, &entry.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to append ledger entry for user %d: %w", entry.UserID, err)
	}

	return nil
}

// GetByUser returns all ledger entries for a user, newest first
func (r *LedgerRepository) GetByUser(ctx context.Context, userID int64) ([]*models.LedgerEntry, error) {
	query := `
		SELECT id, user_id, symbol, shares, price, created_at
		FROM ledger_entries
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
	`

	rows, err := r.q.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get ledger entries for user %d: %w", userID, err)
	}
	defer rows.Close()

	var entries []*models.LedgerEntry
	for rows.Next() {
		var entry models.LedgerEntry
		err := rows.Scan(
			&entry.ID,
			&entry.UserID,
			&entry.Symbol,
			&entry.Shares,
			&entry.Price,
			&entry.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan ledger entry: %w", err)
		}
		entries = append(entries, &entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate ledger entries: %w", err)
	}

	return entries, nil
}

// NetShares returns the signed share sum for one user and symbol
func (r *LedgerRepository) NetShares(ctx context.Context, userID int64, symbol string) (int64, error) {
	query := `
		SELECT COALESCE(SUM(shares), 0)
		FROM ledger_entries
		WHERE user_id = $1 AND symbol = $2
	`

	var net int64
	if err := r.q.QueryRow(ctx, query, userID, symbol).Scan(&net); err != nil {
		return 0, fmt.Errorf("failed to sum shares of %s for user %d: %w", symbol, userID, err)
	}

	return net, nil
}
