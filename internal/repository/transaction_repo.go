// internal/repository/transaction_repo.go
package repository

import (
	"context"

	"doctrade-ledger/internal/domain"
)

// TransactionRepository persists the append-only transaction log.
type TransactionRepository interface {
	// CreateTransaction appends a new ledger entry.
	CreateTransaction(ctx context.Context, q DBExecutor, transaction *domain.Transaction) error
	// GetTransactionsByUserID returns a page of a user's transactions,
	// newest first, optionally filtered by type, plus the total count.
	GetTransactionsByUserID(ctx context.Context, q DBExecutor, userID string, txType string, limit, offset int) ([]domain.Transaction, int64, error)
	// SetStatus transitions a pending transaction to a terminal status.
	// The update is guarded by status='pending' so a terminal entry is
	// never mutated; it returns util.ErrAlreadyProcessed if the guard
	// does not hold.
	SetStatus(ctx context.Context, q DBExecutor, transactionID string, status domain.TransactionStatus) error
	// HasCompletedPurchase reports whether the user already holds a
	// completed purchase transaction for the document.
	HasCompletedPurchase(ctx context.Context, q DBExecutor, userID, documentID string) (bool, error)
}
