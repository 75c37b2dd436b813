package events

import (
	"time"

	"github.com/shopspring/decimal"
)

// Event types
const (
	TransactionCreated = "transaction.created"
)

// Stream names. Brokers map a stream to a Redis stream, a Kafka topic, or an
// AMQP routing key prefix.
const (
	TransactionEventsStream = "transaction.events"
)

// Base event structure
type Event struct {
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data"`
}

// Transaction events
type TransactionCreatedEvent struct {
	TransactionID string          `json:"transactionId"`
	SessionID     string          `json:"sessionId,omitempty"`
	Title         string          `json:"title"`
	Amount        decimal.Decimal `json:"amount"`
}
