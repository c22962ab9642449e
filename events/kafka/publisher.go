// Package kafka relays committed trade events to a Kafka topic so
// downstream consumers can audit simulated trading activity.
package kafka

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"
	log "github.com/sirupsen/logrus"

	"stocksim/events"
)

const tradesTopic = "trades"

// Publisher writes trade events to Kafka
type Publisher struct {
	writer *kafka.Writer
}

// NewPublisher creates a publisher for the given brokers
func NewPublisher(brokers []string) *Publisher {
	return &Publisher{
		writer: &kafka.Writer{
			Addr:     kafka.TCP(brokers...),
			Topic:    tradesTopic,
			Balancer: &kafka.LeastBytes{},
		},
	}
}

// tradeMessage is the wire format for a published trade
type tradeMessage struct {
	TradeID    string `json:"trade_id"`
	UserID     int64  `json:"user_id"`
	Symbol     string `json:"symbol"`
	Side       string `json:"side"`
	Shares     int64  `json:"shares"`
	Price      string `json:"price"`
	Total      string `json:"total"`
	OccurredAt string `json:"occurred_at"`
}

// Attach subscribes the publisher to trade events on the bus. Publishing
// happens off the request path; failures are logged and dropped because
// the ledger row is already the durable record.
func (p *Publisher) Attach(bus *events.Bus) {
	bus.Subscribe(events.EventTypeTradeExecuted, func(ctx context.Context, event events.Event) {
		trade, ok := event.(events.TradeExecutedEvent)
		if !ok {
			return
		}
		if err := p.publish(ctx, trade); err != nil {
			log.WithError(err).WithField("tradeID", trade.TradeID).
				Error("Failed to publish trade event to Kafka")
		}
	})
}

func (p *Publisher) publish(ctx context.Context, trade events.TradeExecutedEvent) error {
	data, err := json.Marshal(tradeMessage{
		TradeID:    trade.TradeID,
		UserID:     trade.UserID,
		Symbol:     trade.Symbol,
		Side:       string(trade.Side),
		Shares:     trade.Shares,
		Price:      trade.Price.String(),
		Total:      trade.Total.String(),
		OccurredAt: time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return err
	}

	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(trade.Symbol),
		Value: data,
	})
}

// Close flushes and closes the underlying writer
func (p *Publisher) Close() error {
	return p.writer.Close()
}
