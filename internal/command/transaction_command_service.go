package command

import (
	"context"
	"fmt"

	"github.com/ledgerbook/ledger/shared/cqrs"
	"github.com/ledgerbook/ledger/shared/events"
	"github.com/ledgerbook/ledger/shared/models"
	"github.com/ledgerbook/ledger/shared/utils"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// TransactionWriter persists new transactions.
type TransactionWriter interface {
	Create(ctx context.Context, transaction *models.Transaction) error
}

// TransactionCommandService creates transactions. It normalises the amount to
// its signed form, writes the row, then announces it on the event stream.
type TransactionCommandService struct {
	writeRepo TransactionWriter
	publisher events.Publisher
}

func NewTransactionCommandService(writeRepo TransactionWriter, publisher events.Publisher) *TransactionCommandService {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &TransactionCommandService{
		writeRepo: writeRepo,
		publisher: publisher,
	}
}

func (s *TransactionCommandService) CreateTransaction(ctx context.Context, cmd cqrs.CreateTransactionCommand) (*models.Transaction, error) {
	amount, err := signedAmount(cmd.Amount, cmd.Type)
	if err != nil {
		return nil, err
	}

	transaction := &models.Transaction{
		ID:     utils.GenerateID(),
		Title:  cmd.Title,
		Amount: amount,
	}
	if cmd.SessionID != "" {
		sessionID := cmd.SessionID
		transaction.SessionID = &sessionID
	}

	if err := s.writeRepo.Create(ctx, transaction); err != nil {
		return nil, err
	}

	if err := s.publisher.Publish(ctx, events.TransactionEventsStream, events.TransactionCreated, events.TransactionCreatedEvent{
		TransactionID: transaction.ID,
		SessionID:     cmd.SessionID,
		Title:         transaction.Title,
		Amount:        transaction.Amount,
	}); err != nil {
		log.Warn().Err(err).
			Str("transaction_id", transaction.ID).
			Msg("Failed to publish transaction.created event")
	}
	return transaction, nil
}

// signedAmount applies the direction of txType to an unsigned amount: credits
// keep their sign, debits are negated.
func signedAmount(amount float64, txType string) (decimal.Decimal, error) {
	value := decimal.NewFromFloat(amount)
	switch txType {
	case models.TransactionTypeCredit:
		return value, nil
	case models.TransactionTypeDebit:
		return value.Neg(), nil
	default:
		return decimal.Decimal{}, fmt.Errorf("%w: %q", models.ErrInvalidTransactionType, txType)
	}
}
