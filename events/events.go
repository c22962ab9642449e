package events

import (
	"context"
	"sync"

	log "github.com/sirupsen/logrus"
	"github.com/shopspring/decimal"

	"stocksim/models"
)

// EventType represents different types of events in the system
type EventType string

const (
	EventTypeTradeExecuted  EventType = "trade_executed"
	EventTypeUserRegistered EventType = "user_registered"
)

// Event is the base interface for all events
type Event interface {
	Type() EventType
}

// TradeExecutedEvent represents a buy or sell that was committed
type TradeExecutedEvent struct {
	TradeID   string
	UserID    int64
	Symbol    string
	Side      models.TradeSide
	Shares    int64
	Price     decimal.Decimal
	Total     decimal.Decimal
	CashAfter decimal.Decimal
}

func (e TradeExecutedEvent) Type() EventType {
	return EventTypeTradeExecuted
}

// UserRegisteredEvent represents a new account creation
type UserRegisteredEvent struct {
	UserID       int64
	Username     string
	StartingCash decimal.Decimal
}

func (e UserRegisteredEvent) Type() EventType {
	return EventTypeUserRegistered
}

// Handler is a function that handles events
type Handler func(ctx context.Context, event Event)

// Bus manages event subscriptions and dispatching
type Bus struct {
	mu       sync.RWMutex
	handlers map[EventType][]Handler
}

// NewBus creates a new event bus
func NewBus() *Bus {
	return &Bus{
		handlers: make(map[EventType][]Handler),
	}
}

// Subscribe adds a handler for a specific event type
func (b *Bus) Subscribe(eventType EventType, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.handlers[eventType] = append(b.handlers[eventType], handler)

	log.WithFields(log.Fields{
		"eventType":    eventType,
		"handlerCount": len(b.handlers[eventType]),
	}).Debug("Subscribed handler to event type")
}

// Emit publishes an event to all registered handlers
func (b *Bus) Emit(ctx context.Context, event Event) {
	b.mu.RLock()
	handlers := make([]Handler, len(b.handlers[event.Type()]))
	copy(handlers, b.handlers[event.Type()])
	b.mu.RUnlock()

	// Call handlers asynchronously to avoid blocking the request path
	for i, handler := range handlers {
		go func(h Handler, handlerIndex int) {
			defer func() {
				if r := recover(); r != nil {
					log.WithFields(log.Fields{
						"eventType":    event.Type(),
						"handlerIndex": handlerIndex,
						"panic":        r,
					}).Error("Event handler panicked")
				}
			}()
			h(ctx, event)
		}(handler, i)
	}
}

// TransactionalBus holds pending events coupled to a unit of work and
// flushes them to the underlying bus only after the database commit.
type TransactionalBus struct {
	real    *Bus
	pending []Event // stashed until Flush
}

func NewTransactionalBus(real *Bus) *TransactionalBus {
	return &TransactionalBus{real: real}
}

func (b *TransactionalBus) Publish(e Event) {
	b.pending = append(b.pending, e)
}

// Flush is called after a successful DB commit
func (b *TransactionalBus) Flush(ctx context.Context) error {
	// Events outlive the request transaction, so emit on a fresh context
	eventCtx := context.Background()

	for _, ev := range b.pending {
		b.real.Emit(eventCtx, ev)
	}
	b.pending = nil
	return nil
}

// Discard is called after a rollback to drop staged events
func (b *TransactionalBus) Discard() {
	b.pending = nil
}
