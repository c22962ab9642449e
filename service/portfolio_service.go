package service

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"stocksim/models"
	"stocksim/quotes"
)

// portfolioService implements the PortfolioService interface
type portfolioService struct {
	uowFactory UnitOfWorkFactory
	quotes     QuoteService
}

// NewPortfolioService creates a new portfolio service
func NewPortfolioService(uowFactory UnitOfWorkFactory, quotes QuoteService) PortfolioService {
	return &portfolioService{
		uowFactory: uowFactory,
		quotes:     quotes,
	}
}

// Portfolio folds the user's ledger into current holdings with live prices.
// Entry order is irrelevant: entries are grouped by symbol and their signed
// share counts summed, so any permutation yields the same result.
func (s *portfolioService) Portfolio(ctx context.Context, userID int64) (*models.Portfolio, error) {
	user, entries, err := s.readLedger(ctx, userID)
	if err != nil {
		return nil, err
	}

	// Symbols that net to zero or negative are filtered out: a fully sold
	// position is not a holding
	netShares := netSharesBySymbol(entries)
	symbols := make([]string, 0, len(netShares))
	for symbol, shares := range netShares {
		if shares > 0 {
			symbols = append(symbols, symbol)
		}
	}
	sort.Strings(symbols)

	portfolio := &models.Portfolio{
		Holdings:      make([]*models.Holding, 0, len(symbols)),
		HoldingsValue: decimal.Zero,
		Cash:          user.Cash,
	}

	// One quote per symbol, never per entry. The database transaction is
	// already closed here, so slow lookups hold no locks.
	for _, symbol := range symbols {
		quote, err := s.quotes.Lookup(ctx, symbol)
		if err != nil {
			if errors.Is(err, quotes.ErrNotFound) {
				return nil, fmt.Errorf("%w: no quote for held symbol %s", ErrQuoteUnavailable, symbol)
			}
			return nil, fmt.Errorf("%w: %v", ErrQuoteUnavailable, err)
		}

		shares := netShares[symbol]
		value := quote.Price.Mul(decimal.NewFromInt(shares))
		portfolio.Holdings = append(portfolio.Holdings, &models.Holding{
			Symbol: symbol,
			Name:   quote.Name,
			Shares: shares,
			Price:  quote.Price,
			Value:  value,
		})
		portfolio.HoldingsValue = portfolio.HoldingsValue.Add(value)
	}

	portfolio.GrandTotal = portfolio.Cash.Add(portfolio.HoldingsValue)
	return portfolio, nil
}

// History returns the user's trades newest first, with display names
// resolved once per distinct symbol
func (s *portfolioService) History(ctx context.Context, userID int64) ([]*models.HistoryEntry, error) {
	_, entries, err := s.readLedger(ctx, userID)
	if err != nil {
		return nil, err
	}

	names := make(map[string]string)
	history := make([]*models.HistoryEntry, 0, len(entries))
	for _, entry := range entries {
		name, ok := names[entry.Symbol]
		if !ok {
			quote, err := s.quotes.Lookup(ctx, entry.Symbol)
			if err != nil {
				if errors.Is(err, quotes.ErrNotFound) {
					return nil, fmt.Errorf("%w: no quote for symbol %s", ErrQuoteUnavailable, entry.Symbol)
				}
				return nil, fmt.Errorf("%w: %v", ErrQuoteUnavailable, err)
			}
			name = quote.Name
			names[entry.Symbol] = name
		}
		history = append(history, &models.HistoryEntry{LedgerEntry: entry, Name: name})
	}

	return history, nil
}

// readLedger loads the user and their full ledger in one read transaction,
// which is closed before any quote lookups happen
func (s *portfolioService) readLedger(ctx context.Context, userID int64) (*models.User, []*models.LedgerEntry, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback() // No-op once rolled back below

	user, err := uow.UserRepository().GetByID(ctx, userID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, nil, ErrUserNotFound
	}

	entries, err := uow.LedgerRepository().GetByUser(ctx, userID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get ledger entries: %w", err)
	}

	// Release the read transaction before any network I/O
	if err := uow.Rollback(); err != nil {
		return nil, nil, fmt.Errorf("failed to close read transaction: %w", err)
	}

	return user, entries, nil
}

// netSharesBySymbol groups ledger entries into net signed share counts.
// Built in a single pass into a local map; nothing is mutated in place.
func netSharesBySymbol(entries []*models.LedgerEntry) map[string]int64 {
	net := make(map[string]int64, len(entries))
	for _, entry := range entries {
		net[entry.Symbol] += entry.Shares
	}
	return net
}
