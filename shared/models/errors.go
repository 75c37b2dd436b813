package models

import "errors"

var (
	ErrTransactionNotFound    = errors.New("transaction not found")
	ErrSessionRequired        = errors.New("session required")
	ErrInvalidTransactionType = errors.New("invalid transaction type")
)
