package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ledgerbook/ledger/shared/cqrs"
	"github.com/ledgerbook/ledger/shared/middleware"
	"github.com/ledgerbook/ledger/shared/models"
	"github.com/ledgerbook/ledger/shared/utils"
	"github.com/rs/zerolog/log"
)

// TransactionCommander defines the write-side operations used by TransactionHandler.
type TransactionCommander interface {
	CreateTransaction(context.Context, cqrs.CreateTransactionCommand) (*models.Transaction, error)
}

// TransactionQuerier defines the read-side operations used by TransactionHandler.
type TransactionQuerier interface {
	GetTransaction(context.Context, cqrs.GetTransactionQuery) (*models.TransactionView, error)
	ListTransactions(context.Context, cqrs.ListTransactionsQuery) ([]models.TransactionView, error)
	GetSummary(context.Context, cqrs.GetSummaryQuery) (*models.SummaryView, error)
}

type TransactionHandler struct {
	commands TransactionCommander
	queries  TransactionQuerier
	scoping  models.Scoping
}

// CreateTransactionRequest uses pointers so a missing field can be told apart
// from a zero value. Amount bounds match the NUMERIC(10,2) column.
type CreateTransactionRequest struct {
	Title  *string  `json:"title" validate:"required"`
	Amount *float64 `json:"amount" validate:"required,gte=0,lte=99999999.99,max_decimals=2"`
	Type   string   `json:"type" validate:"required,oneof=credit debit"`
}

type TransactionParams struct {
	ID string `uri:"id" validate:"required,uuid"`
}

type ListTransactionsResponse struct {
	Transactions []models.TransactionView `json:"transactions"`
}

type SummaryResponse struct {
	Summary *models.SummaryView `json:"summary"`
}

func NewTransactionHandler(commands TransactionCommander, queries TransactionQuerier, scoping models.Scoping) *TransactionHandler {
	return &TransactionHandler{commands: commands, queries: queries, scoping: scoping}
}

// CreateTransaction records a transaction and answers 201 with no body.
func (h *TransactionHandler) CreateTransaction(c *gin.Context) {
	sessionID, _ := middleware.GetSessionID(c)

	var req CreateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if validationErrors := middleware.ValidateRequest(req); validationErrors != nil {
		middleware.RespondWithValidationError(c, validationErrors)
		return
	}

	_, err := h.commands.CreateTransaction(c.Request.Context(), cqrs.CreateTransactionCommand{
		Title:     *req.Title,
		Amount:    *req.Amount,
		Type:      req.Type,
		SessionID: sessionID,
	})
	if err != nil {
		switch {
		case errors.Is(err, models.ErrInvalidTransactionType):
			middleware.RespondWithError(c, http.StatusBadRequest, "Invalid transaction type")
		default:
			h.internalError(c, "Failed to create transaction", err)
		}
		return
	}

	c.Status(http.StatusCreated)
}

func (h *TransactionHandler) ListTransactions(c *gin.Context) {
	sessionID, _ := middleware.GetSessionID(c)

	views, err := h.queries.ListTransactions(c.Request.Context(), cqrs.ListTransactionsQuery{SessionID: sessionID})
	if err != nil {
		switch {
		case errors.Is(err, models.ErrSessionRequired):
			middleware.RespondWithError(c, http.StatusBadRequest, "Session cookie required")
		default:
			h.internalError(c, "Failed to list transactions", err)
		}
		return
	}

	c.JSON(http.StatusOK, ListTransactionsResponse{Transactions: views})
}

func (h *TransactionHandler) GetTransaction(c *gin.Context) {
	sessionID, _ := middleware.GetSessionID(c)

	var params TransactionParams
	if err := c.ShouldBindUri(&params); err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid request params")
		return
	}
	if validationErrors := middleware.ValidateRequest(params); validationErrors != nil {
		middleware.RespondWithValidationError(c, validationErrors)
		return
	}
	transactionID, _ := utils.NormalizeUUID(params.ID)

	view, err := h.queries.GetTransaction(c.Request.Context(), cqrs.GetTransactionQuery{
		TransactionID: transactionID,
		SessionID:     sessionID,
	})
	if err != nil {
		switch {
		case errors.Is(err, models.ErrSessionRequired):
			middleware.RespondWithError(c, http.StatusBadRequest, "Session cookie required")
		case errors.Is(err, models.ErrTransactionNotFound):
			h.notFound(c)
		default:
			h.internalError(c, "Failed to get transaction", err)
		}
		return
	}

	c.JSON(http.StatusOK, view)
}

// GetSummary answers with the signed sum of the visible transactions, or a
// null amount when there are none.
func (h *TransactionHandler) GetSummary(c *gin.Context) {
	sessionID, _ := middleware.GetSessionID(c)

	summary, err := h.queries.GetSummary(c.Request.Context(), cqrs.GetSummaryQuery{SessionID: sessionID})
	if err != nil {
		switch {
		case errors.Is(err, models.ErrSessionRequired):
			middleware.RespondWithError(c, http.StatusBadRequest, "Session cookie required")
		default:
			h.internalError(c, "Failed to get summary", err)
		}
		return
	}

	c.JSON(http.StatusOK, SummaryResponse{Summary: summary})
}

// notFound answers a lookup miss. Unscoped ledgers reply with a bare 404.
func (h *TransactionHandler) notFound(c *gin.Context) {
	if h.scoping == models.ScopingNone {
		c.Status(http.StatusNotFound)
		return
	}
	middleware.RespondWithError(c, http.StatusNotFound, "Transaction not found")
}

func (h *TransactionHandler) internalError(c *gin.Context, message string, err error) {
	log.Error().Err(err).
		Str("request_id", middleware.GetRequestID(c)).
		Msg(message)
	middleware.RespondWithError(c, http.StatusInternalServerError, message)
}
