package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"stocksim/events"
	"stocksim/models"
	"stocksim/quotes"
)

// tradingService implements the TradingService interface
type tradingService struct {
	uowFactory UnitOfWorkFactory
	quotes     QuoteService
}

// NewTradingService creates a new trading service
func NewTradingService(uowFactory UnitOfWorkFactory, quotes QuoteService) TradingService {
	return &tradingService{
		uowFactory: uowFactory,
		quotes:     quotes,
	}
}

// Buy purchases shares at the current quoted price. The quote is resolved
// before the database transaction begins, then cash debit and ledger
// append commit as one atomic unit under the user's row lock.
func (s *tradingService) Buy(ctx context.Context, userID int64, symbol string, shares int64) (*models.Receipt, error) {
	quote, err := s.resolveQuote(ctx, symbol, shares)
	if err != nil {
		return nil, err
	}

	cost := quote.Price.Mul(decimal.NewFromInt(shares))

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback() // No-op if already committed

	// Row lock serializes concurrent transactions for this user
	user, err := uow.UserRepository().GetByIDForUpdate(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	// Strict policy carried from the original: a cost equal to the cash
	// balance is rejected too
	if !user.Cash.GreaterThan(cost) {
		return nil, fmt.Errorf("%w: have %s, need %s", ErrInsufficientFunds, user.Cash, cost)
	}

	newCash := user.Cash.Sub(cost)
	entry := &models.LedgerEntry{
		UserID: userID,
		Symbol: quote.Symbol,
		Shares: shares,
		Price:  quote.Price,
	}

	receipt, err := s.record(ctx, uow, user, entry, quote.Name, newCash)
	if err != nil {
		return nil, err
	}
	return receipt, nil
}

// Sell sells shares at the current quoted price. The net holding is
// computed from the ledger inside the same transaction, after the user's
// row lock is taken, so concurrent sells cannot both pass the check.
func (s *tradingService) Sell(ctx context.Context, userID int64, symbol string, shares int64) (*models.Receipt, error) {
	quote, err := s.resolveQuote(ctx, symbol, shares)
	if err != nil {
		return nil, err
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback() // No-op if already committed

	user, err := uow.UserRepository().GetByIDForUpdate(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	held, err := uow.LedgerRepository().NetShares(ctx, userID, quote.Symbol)
	if err != nil {
		return nil, fmt.Errorf("failed to compute net holding: %w", err)
	}
	if shares > held {
		return nil, fmt.Errorf("%w: have %d, tried to sell %d", ErrInsufficientShares, held, shares)
	}

	proceeds := quote.Price.Mul(decimal.NewFromInt(shares))
	newCash := user.Cash.Add(proceeds)
	entry := &models.LedgerEntry{
		UserID: userID,
		Symbol: quote.Symbol,
		Shares: -shares,
		Price:  quote.Price,
	}

	receipt, err := s.record(ctx, uow, user, entry, quote.Name, newCash)
	if err != nil {
		return nil, err
	}
	return receipt, nil
}

// resolveQuote validates the requested trade and resolves the symbol via
// the quote collaborator. No state has been touched when it fails.
func (s *tradingService) resolveQuote(ctx context.Context, symbol string, shares int64) (*quotes.Quote, error) {
	if shares <= 0 {
		return nil, fmt.Errorf("%w: shares must be a positive integer", ErrInvalidInput)
	}
	if symbol == "" {
		return nil, fmt.Errorf("%w: symbol is required", ErrInvalidInput)
	}

	quote, err := s.quotes.Lookup(ctx, symbol)
	if err != nil {
		if errors.Is(err, quotes.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrSymbolNotFound, symbol)
		}
		return nil, fmt.Errorf("%w: %v", ErrQuoteUnavailable, err)
	}
	return quote, nil
}

// record applies the cash mutation and ledger append as one atomic unit
// and commits. Either both are visible afterwards or neither is.
func (s *tradingService) record(ctx context.Context, uow UnitOfWork, user *models.User, entry *models.LedgerEntry, name string, newCash decimal.Decimal) (*models.Receipt, error) {
	if err := uow.UserRepository().UpdateCash(ctx, user.ID, newCash); err != nil {
		return nil, fmt.Errorf("failed to update cash balance: %w", err)
	}

	if err := uow.LedgerRepository().Append(ctx, entry); err != nil {
		return nil, fmt.Errorf("failed to append ledger entry: %w", err)
	}

	tradeID := uuid.New().String()
	total := entry.Total()

	uow.EventBus().Publish(events.TradeExecutedEvent{
		TradeID:   tradeID,
		UserID:    user.ID,
		Symbol:    entry.Symbol,
		Side:      entry.Side(),
		Shares:    entry.Quantity(),
		Price:     entry.Price,
		Total:     total,
		CashAfter: newCash,
	})

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	executed := entry.CreatedAt
	if executed.IsZero() {
		executed = time.Now()
	}

	return &models.Receipt{
		TradeID:  tradeID,
		Symbol:   entry.Symbol,
		Name:     name,
		Side:     entry.Side(),
		Shares:   entry.Quantity(),
		Price:    entry.Price,
		Total:    total,
		NewCash:  newCash,
		Executed: executed,
	}, nil
}
