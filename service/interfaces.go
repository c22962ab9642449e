package service

import (
	"context"

	"github.com/shopspring/decimal"

	"stocksim/events"
	"stocksim/models"
	"stocksim/quotes"
)

// UserRepository defines the interface for user data access
type UserRepository interface {
	// GetByID retrieves a user by id, returning nil when absent
	GetByID(ctx context.Context, id int64) (*models.User, error)

	// GetByIDForUpdate retrieves a user by id and locks the row for the
	// remainder of the surrounding transaction, serializing concurrent
	// cash mutations for the same user
	GetByIDForUpdate(ctx context.Context, id int64) (*models.User, error)

	// GetByUsername retrieves a user by username, returning nil when absent
	GetByUsername(ctx context.Context, username string) (*models.User, error)

	// Create creates a new user with the starting cash balance. Returns
	// ErrUsernameTaken when the username is already registered.
	Create(ctx context.Context, username, passwordHash string, startingCash decimal.Decimal) (*models.User, error)

	// UpdateCash sets a user's cash balance
	UpdateCash(ctx context.Context, userID int64, newCash decimal.Decimal) error
}

// LedgerRepository defines the interface for the append-only trade ledger
type LedgerRepository interface {
	// Append records one trade. Entries are never updated or deleted.
	Append(ctx context.Context, entry *models.LedgerEntry) error

	// GetByUser returns all ledger entries for a user, newest first
	GetByUser(ctx context.Context, userID int64) ([]*models.LedgerEntry, error)

	// NetShares returns the signed share sum for one user and symbol
	NetShares(ctx context.Context, userID int64, symbol string) (int64, error)
}

// QuoteService defines the price-lookup collaborator boundary
type QuoteService interface {
	// Lookup resolves a symbol to its current quote, returning
	// quotes.ErrNotFound for unknown symbols
	Lookup(ctx context.Context, symbol string) (*quotes.Quote, error)
}

// AuthService defines the authentication boundary. Core operations
// receive an authenticated user id and never authenticate themselves.
type AuthService interface {
	// Register creates a new account with the configured starting cash
	Register(ctx context.Context, username, password string) (*models.User, error)

	// Authenticate verifies credentials and returns the matching user
	Authenticate(ctx context.Context, username, password string) (*models.User, error)
}

// PortfolioService defines read-only portfolio aggregation
type PortfolioService interface {
	// Portfolio folds the user's ledger into current holdings with live
	// prices attached. Pure read: repeatable and order-independent.
	Portfolio(ctx context.Context, userID int64) (*models.Portfolio, error)

	// History returns the user's trades newest first, with display names
	// resolved once per distinct symbol
	History(ctx context.Context, userID int64) ([]*models.HistoryEntry, error)
}

// TradingService defines the transaction recorder
type TradingService interface {
	// Buy purchases shares at the current quoted price, debiting cash and
	// appending a positive ledger entry atomically
	Buy(ctx context.Context, userID int64, symbol string, shares int64) (*models.Receipt, error)

	// Sell sells shares at the current quoted price, crediting cash and
	// appending a negative ledger entry atomically
	Sell(ctx context.Context, userID int64, symbol string, shares int64) (*models.Receipt, error)
}

// EventPublisher defines the interface for publishing events
type EventPublisher interface {
	Publish(event events.Event)
}

// UnitOfWork defines the interface for transactional repository operations
type UnitOfWork interface {
	// Begin starts a new transaction
	Begin(ctx context.Context) error

	// Commit commits the transaction and flushes staged events
	Commit() error

	// Rollback rolls back the transaction and discards staged events
	Rollback() error

	// Repository getters
	UserRepository() UserRepository
	LedgerRepository() LedgerRepository
	EventBus() EventPublisher
}

// UnitOfWorkFactory defines the interface for creating UnitOfWork instances
type UnitOfWorkFactory interface {
	Create() UnitOfWork
}
