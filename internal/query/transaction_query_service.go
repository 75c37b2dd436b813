package query

import (
	"context"

	"github.com/ledgerbook/ledger/shared/cqrs"
	"github.com/ledgerbook/ledger/shared/models"
	"github.com/shopspring/decimal"
)

// TransactionReader is the read side of the ledger store. An empty sessionID
// reads across all sessions.
type TransactionReader interface {
	GetByID(ctx context.Context, id, sessionID string) (*models.TransactionView, error)
	List(ctx context.Context, sessionID string) ([]models.TransactionView, error)
	Sum(ctx context.Context, sessionID string) (decimal.NullDecimal, error)
}

// TransactionQueryService serves transaction reads. Under session scoping a
// query without a session is refused before the store is consulted.
type TransactionQueryService struct {
	readRepo TransactionReader
	scoping  models.Scoping
}

func NewTransactionQueryService(readRepo TransactionReader, scoping models.Scoping) *TransactionQueryService {
	return &TransactionQueryService{readRepo: readRepo, scoping: scoping}
}

func (s *TransactionQueryService) GetTransaction(ctx context.Context, q cqrs.GetTransactionQuery) (*models.TransactionView, error) {
	if err := s.checkSession(q.SessionID); err != nil {
		return nil, err
	}
	return s.readRepo.GetByID(ctx, q.TransactionID, q.SessionID)
}

// ListTransactions returns every transaction visible to the session. The
// result is never nil.
func (s *TransactionQueryService) ListTransactions(ctx context.Context, q cqrs.ListTransactionsQuery) ([]models.TransactionView, error) {
	if err := s.checkSession(q.SessionID); err != nil {
		return nil, err
	}
	views, err := s.readRepo.List(ctx, q.SessionID)
	if err != nil {
		return nil, err
	}
	if views == nil {
		views = []models.TransactionView{}
	}
	return views, nil
}

func (s *TransactionQueryService) GetSummary(ctx context.Context, q cqrs.GetSummaryQuery) (*models.SummaryView, error) {
	if err := s.checkSession(q.SessionID); err != nil {
		return nil, err
	}
	amount, err := s.readRepo.Sum(ctx, q.SessionID)
	if err != nil {
		return nil, err
	}
	return &models.SummaryView{Amount: amount}, nil
}

func (s *TransactionQueryService) checkSession(sessionID string) error {
	if s.scoping == models.ScopingSession && sessionID == "" {
		return models.ErrSessionRequired
	}
	return nil
}
