package service

import "errors"

// Core error taxonomy. Every business failure surfaces as one of these
// sentinels (usually wrapped with context) so callers can branch with
// errors.Is. None of them leave cash and ledger state inconsistent.
var (
	// ErrInvalidInput signals malformed shares or symbol, rejected before
	// any state is touched
	ErrInvalidInput = errors.New("invalid input")

	// ErrUserNotFound signals an unknown user id
	ErrUserNotFound = errors.New("user not found")

	// ErrUsernameTaken signals a registration conflict
	ErrUsernameTaken = errors.New("username already taken")

	// ErrInvalidCredentials signals a failed login. Unknown username and
	// wrong password are deliberately indistinguishable.
	ErrInvalidCredentials = errors.New("invalid username or password")

	// ErrSymbolNotFound signals that the quote provider does not know the
	// requested symbol
	ErrSymbolNotFound = errors.New("symbol not found")

	// ErrQuoteUnavailable signals a quote provider failure; the operation
	// aborts with no state change
	ErrQuoteUnavailable = errors.New("quote unavailable")

	// ErrInsufficientFunds signals a buy whose cost meets or exceeds the
	// cash balance
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrInsufficientShares signals a sell of more shares than held
	ErrInsufficientShares = errors.New("insufficient shares")

	// ErrConcurrencyConflict signals lock contention between concurrent
	// transactions; the whole operation may be retried by the caller
	ErrConcurrencyConflict = errors.New("concurrent transaction conflict")
)
