package repository

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stocksim/models"
	"stocksim/repository/testutil"
)

func TestLedgerRepository_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	testDB := testutil.SetupTestDatabase(t)
	repo := NewLedgerRepository(testDB.DB)
	ctx := context.Background()

	t.Run("append assigns id and timestamp", func(t *testing.T) {
		user := testutil.CreateTestUser(t, testDB.DB, "ledger_append", "10000.00")

		entry := &models.LedgerEntry{
			UserID: user.ID,
			Symbol: "AAA",
			Shares: 10,
			Price:  decimal.RequireFromString("50.00"),
		}
		err := repo.Append(ctx, entry)
		require.NoError(t, err)
		assert.NotZero(t, entry.ID)
		assert.False(t, entry.CreatedAt.IsZero())
	})

	t.Run("zero share rows rejected by constraint", func(t *testing.T) {
		user := testutil.CreateTestUser(t, testDB.DB, "ledger_zero", "10000.00")

		err := repo.Append(ctx, &models.LedgerEntry{
			UserID: user.ID,
			Symbol: "AAA",
			Shares: 0,
			Price:  decimal.RequireFromString("50.00"),
		})
		assert.Error(t, err)
	})

	t.Run("get by user is newest first", func(t *testing.T) {
		user := testutil.CreateTestUser(t, testDB.DB, "ledger_order", "10000.00")
		testutil.CreateTestEntry(t, testDB.DB, user.ID, "AAA", 10, "50.00")
		testutil.CreateTestEntry(t, testDB.DB, user.ID, "BBB", 3, "25.00")
		testutil.CreateTestEntry(t, testDB.DB, user.ID, "AAA", -4, "60.00")

		entries, err := repo.GetByUser(ctx, user.ID)
		require.NoError(t, err)
		require.Len(t, entries, 3)
		assert.Equal(t, int64(-4), entries[0].Shares)
		assert.Equal(t, "BBB", entries[1].Symbol)
		assert.Equal(t, int64(10), entries[2].Shares)
	})

	t.Run("entries are scoped to their user", func(t *testing.T) {
		owner := testutil.CreateTestUser(t, testDB.DB, "ledger_owner", "10000.00")
		other := testutil.CreateTestUser(t, testDB.DB, "ledger_other", "10000.00")
		testutil.CreateTestEntry(t, testDB.DB, owner.ID, "AAA", 5, "50.00")

		entries, err := repo.GetByUser(ctx, other.ID)
		require.NoError(t, err)
		assert.Empty(t, entries)
	})

	t.Run("net shares sums signed rows", func(t *testing.T) {
		user := testutil.CreateTestUser(t, testDB.DB, "ledger_net", "10000.00")
		testutil.CreateTestEntry(t, testDB.DB, user.ID, "AAA", 10, "50.00")
		testutil.CreateTestEntry(t, testDB.DB, user.ID, "AAA", -4, "60.00")
		testutil.CreateTestEntry(t, testDB.DB, user.ID, "BBB", 3, "25.00")

		net, err := repo.NetShares(ctx, user.ID, "AAA")
		require.NoError(t, err)
		assert.Equal(t, int64(6), net)

		net, err = repo.NetShares(ctx, user.ID, "BBB")
		require.NoError(t, err)
		assert.Equal(t, int64(3), net)
	})

	t.Run("net shares of untraded symbol is zero", func(t *testing.T) {
		user := testutil.CreateTestUser(t, testDB.DB, "ledger_empty", "10000.00")

		net, err := repo.NetShares(ctx, user.ID, "ZZZ")
		require.NoError(t, err)
		assert.Zero(t, net)
	})
}
