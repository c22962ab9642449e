package service

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stocksim/models"
	"stocksim/quotes"
)

func newPortfolioFixture() (*MockUnitOfWorkFactory, *MockUnitOfWork, *MockUserRepository, *MockLedgerRepository, *MockQuoteService) {
	mockFactory := new(MockUnitOfWorkFactory)
	mockUoW := new(MockUnitOfWork)
	mockUserRepo := new(MockUserRepository)
	mockLedgerRepo := new(MockLedgerRepository)
	mockQuotes := new(MockQuoteService)

	mockUoW.SetRepositories(mockUserRepo, mockLedgerRepo, nil)
	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", context.Background()).Return(nil)
	mockUoW.On("Rollback").Return(nil)

	return mockFactory, mockUoW, mockUserRepo, mockLedgerRepo, mockQuotes
}

func testUser(id int64, cash string) *models.User {
	return &models.User{
		ID:       id,
		Username: "trader",
		Cash:     decimal.RequireFromString(cash),
	}
}

func entry(symbol string, shares int64, price string) *models.LedgerEntry {
	return &models.LedgerEntry{
		UserID: 1,
		Symbol: symbol,
		Shares: shares,
		Price:  decimal.RequireFromString(price),
	}
}

func TestPortfolioService_Portfolio(t *testing.T) {
	ctx := context.Background()

	mockFactory, _, mockUserRepo, mockLedgerRepo, mockQuotes := newPortfolioFixture()
	svc := NewPortfolioService(mockFactory, mockQuotes)

	mockUserRepo.On("GetByID", ctx, int64(1)).Return(testUser(1, "9500.00"), nil)
	mockLedgerRepo.On("GetByUser", ctx, int64(1)).Return([]*models.LedgerEntry{
		entry("AAA", 10, "50.00"),
		entry("BBB", 3, "20.00"),
		entry("AAA", -4, "60.00"),
	}, nil)
	mockQuotes.On("Lookup", ctx, "AAA").Return(&quotes.Quote{Symbol: "AAA", Name: "Alpha Airlines", Price: decimal.RequireFromString("60.00")}, nil)
	mockQuotes.On("Lookup", ctx, "BBB").Return(&quotes.Quote{Symbol: "BBB", Name: "Beta Brands", Price: decimal.RequireFromString("25.00")}, nil)

	portfolio, err := svc.Portfolio(ctx, 1)
	require.NoError(t, err)

	require.Len(t, portfolio.Holdings, 2)

	aaa := portfolio.Holdings[0]
	assert.Equal(t, "AAA", aaa.Symbol)
	assert.Equal(t, "Alpha Airlines", aaa.Name)
	assert.Equal(t, int64(6), aaa.Shares)
	assert.True(t, aaa.Value.Equal(decimal.RequireFromString("360.00")), "got %s", aaa.Value)

	bbb := portfolio.Holdings[1]
	assert.Equal(t, int64(3), bbb.Shares)
	assert.True(t, bbb.Value.Equal(decimal.RequireFromString("75.00")))

	assert.True(t, portfolio.HoldingsValue.Equal(decimal.RequireFromString("435.00")))
	assert.True(t, portfolio.Cash.Equal(decimal.RequireFromString("9500.00")))
	assert.True(t, portfolio.GrandTotal.Equal(decimal.RequireFromString("9935.00")))

	// One lookup per symbol, not per entry
	mockQuotes.AssertNumberOfCalls(t, "Lookup", 2)
}

func TestPortfolioService_Portfolio_OrderIndependent(t *testing.T) {
	ctx := context.Background()

	entries := []*models.LedgerEntry{
		entry("AAA", 10, "50.00"),
		entry("BBB", 3, "20.00"),
		entry("AAA", -4, "60.00"),
		entry("BBB", 2, "22.00"),
	}

	// Every permutation of the same ledger folds to identical totals
	orders := [][]int{
		{0, 1, 2, 3},
		{3, 2, 1, 0},
		{2, 0, 3, 1},
	}

	var totals []decimal.Decimal
	for _, order := range orders {
		shuffled := make([]*models.LedgerEntry, len(entries))
		for i, j := range order {
			shuffled[i] = entries[j]
		}

		mockFactory, _, mockUserRepo, mockLedgerRepo, mockQuotes := newPortfolioFixture()
		svc := NewPortfolioService(mockFactory, mockQuotes)

		mockUserRepo.On("GetByID", ctx, int64(1)).Return(testUser(1, "9000.00"), nil)
		mockLedgerRepo.On("GetByUser", ctx, int64(1)).Return(shuffled, nil)
		mockQuotes.On("Lookup", ctx, "AAA").Return(&quotes.Quote{Symbol: "AAA", Name: "Alpha", Price: decimal.RequireFromString("55.00")}, nil)
		mockQuotes.On("Lookup", ctx, "BBB").Return(&quotes.Quote{Symbol: "BBB", Name: "Beta", Price: decimal.RequireFromString("21.00")}, nil)

		portfolio, err := svc.Portfolio(ctx, 1)
		require.NoError(t, err)

		require.Len(t, portfolio.Holdings, 2)
		assert.Equal(t, int64(6), portfolio.Holdings[0].Shares)
		assert.Equal(t, int64(5), portfolio.Holdings[1].Shares)
		totals = append(totals, portfolio.GrandTotal)
	}

	for _, total := range totals[1:] {
		assert.True(t, total.Equal(totals[0]), "totals diverged: %s vs %s", total, totals[0])
	}
}

func TestPortfolioService_Portfolio_FiltersClosedPositions(t *testing.T) {
	ctx := context.Background()

	mockFactory, _, mockUserRepo, mockLedgerRepo, mockQuotes := newPortfolioFixture()
	svc := NewPortfolioService(mockFactory, mockQuotes)

	mockUserRepo.On("GetByID", ctx, int64(1)).Return(testUser(1, "10000.00"), nil)
	// AAA was fully sold; only BBB remains
	mockLedgerRepo.On("GetByUser", ctx, int64(1)).Return([]*models.LedgerEntry{
		entry("AAA", 5, "10.00"),
		entry("AAA", -5, "12.00"),
		entry("BBB", 1, "20.00"),
	}, nil)
	mockQuotes.On("Lookup", ctx, "BBB").Return(&quotes.Quote{Symbol: "BBB", Name: "Beta", Price: decimal.RequireFromString("20.00")}, nil)

	portfolio, err := svc.Portfolio(ctx, 1)
	require.NoError(t, err)

	require.Len(t, portfolio.Holdings, 1)
	assert.Equal(t, "BBB", portfolio.Holdings[0].Symbol)

	// No quote is ever requested for a closed position
	mockQuotes.AssertNotCalled(t, "Lookup", ctx, "AAA")
}

func TestPortfolioService_Portfolio_QuoteFailureAborts(t *testing.T) {
	ctx := context.Background()

	mockFactory, _, mockUserRepo, mockLedgerRepo, mockQuotes := newPortfolioFixture()
	svc := NewPortfolioService(mockFactory, mockQuotes)

	mockUserRepo.On("GetByID", ctx, int64(1)).Return(testUser(1, "10000.00"), nil)
	mockLedgerRepo.On("GetByUser", ctx, int64(1)).Return([]*models.LedgerEntry{
		entry("AAA", 5, "10.00"),
	}, nil)
	mockQuotes.On("Lookup", ctx, "AAA").Return(nil, quotes.ErrNotFound)

	portfolio, err := svc.Portfolio(ctx, 1)
	assert.ErrorIs(t, err, ErrQuoteUnavailable)
	assert.Nil(t, portfolio)
}

func TestPortfolioService_Portfolio_UserNotFound(t *testing.T) {
	ctx := context.Background()

	mockFactory, _, mockUserRepo, _, mockQuotes := newPortfolioFixture()
	svc := NewPortfolioService(mockFactory, mockQuotes)

	mockUserRepo.On("GetByID", ctx, int64(42)).Return(nil, nil)

	_, err := svc.Portfolio(ctx, 42)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestPortfolioService_History(t *testing.T) {
	ctx := context.Background()

	mockFactory, _, mockUserRepo, mockLedgerRepo, mockQuotes := newPortfolioFixture()
	svc := NewPortfolioService(mockFactory, mockQuotes)

	sellEntry := entry("AAA", -4, "60.00")
	buyEntry := entry("AAA", 10, "50.00")

	mockUserRepo.On("GetByID", ctx, int64(1)).Return(testUser(1, "9740.00"), nil)
	mockLedgerRepo.On("GetByUser", ctx, int64(1)).Return([]*models.LedgerEntry{sellEntry, buyEntry}, nil)
	mockQuotes.On("Lookup", ctx, "AAA").Return(&quotes.Quote{Symbol: "AAA", Name: "Alpha", Price: decimal.RequireFromString("60.00")}, nil)

	history, err := svc.History(ctx, 1)
	require.NoError(t, err)
	require.Len(t, history, 2)

	assert.Equal(t, models.TradeSideSell, history[0].Side())
	assert.Equal(t, int64(4), history[0].Quantity())
	assert.Equal(t, "Alpha", history[0].Name)
	assert.Equal(t, models.TradeSideBuy, history[1].Side())

	// The display name is looked up once per distinct symbol
	mockQuotes.AssertNumberOfCalls(t, "Lookup", 1)
}

func TestNetSharesBySymbol(t *testing.T) {
	entries := []*models.LedgerEntry{
		entry("AAA", 10, "50.00"),
		entry("AAA", -10, "55.00"),
		entry("BBB", 2, "20.00"),
	}

	net := netSharesBySymbol(entries)
	assert.Equal(t, int64(0), net["AAA"])
	assert.Equal(t, int64(2), net["BBB"])
}

func TestPortfolioService_Portfolio_LedgerError(t *testing.T) {
	ctx := context.Background()

	mockFactory, _, mockUserRepo, mockLedgerRepo, mockQuotes := newPortfolioFixture()
	svc := NewPortfolioService(mockFactory, mockQuotes)

	mockUserRepo.On("GetByID", ctx, int64(1)).Return(testUser(1, "10000.00"), nil)
	mockLedgerRepo.On("GetByUser", ctx, int64(1)).Return(nil, errors.New("connection reset"))

	_, err := svc.Portfolio(ctx, 1)
	require.Error(t, err)
	mockQuotes.AssertNotCalled(t, "Lookup")
}
