// internal/repository/postgres/transaction_pg.go
package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"doctrade-ledger/internal/domain"
	"doctrade-ledger/internal/repository"
	"doctrade-ledger/internal/util"
)

// TransactionRepository implements repository.TransactionRepository for
// PostgreSQL. The transactions table is append-only; the only permitted
// update is the guarded pending -> terminal status transition.
type TransactionRepository struct{}

// NewTransactionRepository creates a new TransactionRepository.
func NewTransactionRepository(db *sqlx.DB) repository.TransactionRepository {
	return &TransactionRepository{}
}

// CreateTransaction appends a new ledger entry.
func (r *TransactionRepository) CreateTransaction(ctx context.Context, q repository.DBExecutor, transaction *domain.Transaction) error {
	query := `INSERT INTO transactions (id, user_id, type, amount, status, description, metadata, created_at)
              VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := q.ExecContext(ctx, query,
		transaction.ID,
		transaction.UserID,
		transaction.Type,
		transaction.Amount,
		transaction.Status,
		transaction.Description,
		transaction.Metadata,
		transaction.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create transaction: %w", err)
	}
	return nil
}

// GetTransactionsByUserID returns a page of a user's transactions, newest
// first, optionally filtered by type, plus the total count.
func (r *TransactionRepository) GetTransactionsByUserID(ctx context.Context, q repository.DBExecutor, userID string, txType string, limit, offset int) ([]domain.Transaction, int64, error) {
	transactions := []domain.Transaction{}

	query := `
		SELECT id, user_id, type, amount, status, description, metadata, created_at
		FROM transactions
		WHERE user_id = $1 AND ($2 = '' OR type = $2)
		ORDER BY created_at DESC
		LIMIT $3 OFFSET $4`
	err := q.SelectContext(ctx, &transactions, query, userID, txType, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch transactions for user %s: %w", userID, err)
	}

	var totalCount int64
	countQuery := `SELECT COUNT(*) FROM transactions WHERE user_id = $1 AND ($2 = '' OR type = $2)`
	err = q.GetContext(ctx, &totalCount, countQuery, userID, txType)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count transactions for user %s: %w", userID, err)
	}

	return transactions, totalCount, nil
}

// SetStatus transitions a pending transaction to a terminal status.
func (r *TransactionRepository) SetStatus(ctx context.Context, q repository.DBExecutor, transactionID string, status domain.TransactionStatus) error {
	query := `UPDATE transactions SET status = $1 WHERE id = $2 AND status = 'pending'`
	result, err := q.ExecContext(ctx, query, status, transactionID)
	if err != nil {
		return fmt.Errorf("failed to update transaction %s status: %w", transactionID, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected for transaction %s: %w", transactionID, err)
	}
	if rowsAffected == 0 {
		return util.ErrAlreadyProcessed
	}
	return nil
}

// HasCompletedPurchase reports whether the user already holds a completed
// purchase transaction for the document.
func (r *TransactionRepository) HasCompletedPurchase(ctx context.Context, q repository.DBExecutor, userID, documentID string) (bool, error) {
	var count int64
	query := `SELECT COUNT(*) FROM transactions
              WHERE user_id = $1 AND type = 'purchase' AND status = 'completed'
              AND metadata->>'document_id' = $2`
	if err := q.GetContext(ctx, &count, query, userID, documentID); err != nil {
		return false, fmt.Errorf("failed to check purchase for user %s: %w", userID, err)
	}
	return count > 0, nil
}
