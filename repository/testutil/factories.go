package testutil

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"stocksim/database"
	"stocksim/models"
)

// CreateTestUser inserts a user with the given cash balance and returns it
func CreateTestUser(t *testing.T, db *database.DB, username string, cash string) *models.User {
	t.Helper()

	var user models.User
	err := db.WithTransaction(context.Background(), func(tx pgx.Tx) error {
		return tx.QueryRow(context.Background(), `
			INSERT INTO users (username, password_hash, cash)
			VALUES ($1, $2, $3)
			RETURNING id, username, password_hash, cash, created_at, updated_at`,
			username, "x", decimal.RequireFromString(cash),
		).Scan(&user.ID, &user.Username, &user.PasswordHash, &user.Cash, &user.CreatedAt, &user.UpdatedAt)
	})
	require.NoError(t, err)

	return &user
}

// CreateTestEntry inserts one ledger row for the user and returns it
func CreateTestEntry(t *testing.T, db *database.DB, userID int64, symbol string, shares int64, price string) *models.LedgerEntry {
	t.Helper()

	entry := &models.LedgerEntry{
		UserID: userID,
		Symbol: symbol,
		Shares: shares,
		Price:  decimal.RequireFromString(price),
	}
	err := db.WithTransaction(context.Background(), func(tx pgx.Tx) error {
		return tx.QueryRow(context.Background(), `
			INSERT INTO ledger_entries (user_id, symbol, shares, price)
			VALUES ($1, $2, $3, $4)
			RETURNING id, created_at`,
			entry.UserID, entry.Symbol, entry.Shares, entry.Price,
		).Scan(&entry.ID, &entry.CreatedAt)
	})
	require.NoError(t, err)

	return entry
}
