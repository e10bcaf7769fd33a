// internal/domain/transaction.go
package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionType defines the type of a ledger transaction.
type TransactionType string

const (
	TransactionTypeDeposit    TransactionType = "deposit"
	TransactionTypeWithdrawal TransactionType = "withdrawal"
	TransactionTypePurchase   TransactionType = "purchase"
	TransactionTypeSale       TransactionType = "sale"
	TransactionTypeStaking    TransactionType = "staking"
	TransactionTypeUnstaking  TransactionType = "unstaking"
	TransactionTypeInvestment TransactionType = "investment"
	TransactionTypeReward     TransactionType = "reward"
)

// TransactionStatus defines the status of a ledger transaction.
// A pending transaction transitions to completed, failed, or cancelled
// exactly once; terminal statuses are never mutated.
type TransactionStatus string

const (
	TransactionStatusPending   TransactionStatus = "pending"
	TransactionStatusCompleted TransactionStatus = "completed"
	TransactionStatusFailed    TransactionStatus = "failed"
	TransactionStatusCancelled TransactionStatus = "cancelled"
)

// Transaction is an immutable, append-only ledger entry. Every wallet
// mutation is paired with exactly one Transaction record created in the
// same database transaction.
type Transaction struct {
	ID          string            `db:"id" json:"id"`
	UserID      string            `db:"user_id" json:"user_id"`
	Type        TransactionType   `db:"type" json:"type"`
	Amount      decimal.Decimal   `db:"amount" json:"amount"` // NUMERIC(20, 4) in DB
	Status      TransactionStatus `db:"status" json:"status"`
	Description string            `db:"description" json:"description"`
	Metadata    Metadata          `db:"metadata" json:"metadata"` // JSONB in DB
	CreatedAt   time.Time         `db:"created_at" json:"created_at"`
}

// NewTransaction creates a new Transaction instance.
func NewTransaction(userID string, txType TransactionType, amount decimal.Decimal, status TransactionStatus, description string, metadata Metadata) *Transaction {
	if metadata == nil {
		metadata = Metadata{}
	}
	return &Transaction{
		ID:          uuid.NewString(),
		UserID:      userID,
		Type:        txType,
		Amount:      amount,
		Status:      status,
		Description: description,
		Metadata:    metadata,
		CreatedAt:   time.Now().UTC(),
	}
}
