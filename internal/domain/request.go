// internal/domain/request.go
package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DepositRequest is a user-submitted deposit awaiting admin approval. No
// funds move until it is processed; the paired pending DEPOSIT transaction
// is completed or failed together with the request.
type DepositRequest struct {
	ID            string            `db:"id" json:"id"`
	UserID        string            `db:"user_id" json:"user_id"`
	Amount        decimal.Decimal   `db:"amount" json:"amount"`
	PaymentMethod string            `db:"payment_method" json:"payment_method"`
	PaymentProof  string            `db:"payment_proof" json:"payment_proof"`
	TransactionID string            `db:"transaction_id" json:"transaction_id"`
	Status        TransactionStatus `db:"status" json:"status"`
	ProcessedBy   *string           `db:"processed_by" json:"processed_by,omitempty"`
	ProcessedAt   *time.Time        `db:"processed_at" json:"processed_at,omitempty"`
	Reason        string            `db:"reason" json:"reason"`
	CreatedAt     time.Time         `db:"created_at" json:"created_at"`
}

// NewDepositRequest creates a pending deposit request tied to the pending
// ledger transaction that records it.
func NewDepositRequest(userID string, amount decimal.Decimal, method, proof, transactionID string) *DepositRequest {
	return &DepositRequest{
		ID:            uuid.NewString(),
		UserID:        userID,
		Amount:        amount,
		PaymentMethod: method,
		PaymentProof:  proof,
		TransactionID: transactionID,
		Status:        TransactionStatusPending,
		CreatedAt:     time.Now().UTC(),
	}
}

// WithdrawalRequest is a user-submitted withdrawal awaiting admin approval.
// The amount is locked in the wallet while the request is pending: approval
// debits the locked funds, rejection releases them.
type WithdrawalRequest struct {
	ID                string            `db:"id" json:"id"`
	UserID            string            `db:"user_id" json:"user_id"`
	Amount            decimal.Decimal   `db:"amount" json:"amount"`
	WithdrawalMethod  string            `db:"withdrawal_method" json:"withdrawal_method"`
	WithdrawalAddress string            `db:"withdrawal_address" json:"withdrawal_address"`
	TransactionID     string            `db:"transaction_id" json:"transaction_id"`
	Status            TransactionStatus `db:"status" json:"status"`
	ProcessedBy       *string           `db:"processed_by" json:"processed_by,omitempty"`
	ProcessedAt       *time.Time        `db:"processed_at" json:"processed_at,omitempty"`
	Reason            string            `db:"reason" json:"reason"`
	CreatedAt         time.Time         `db:"created_at" json:"created_at"`
}

// NewWithdrawalRequest creates a pending withdrawal request tied to the
// pending ledger transaction that records it.
func NewWithdrawalRequest(userID string, amount decimal.Decimal, method, address, transactionID string) *WithdrawalRequest {
	return &WithdrawalRequest{
		ID:                uuid.NewString(),
		UserID:            userID,
		Amount:            amount,
		WithdrawalMethod:  method,
		WithdrawalAddress: address,
		TransactionID:     transactionID,
		Status:            TransactionStatusPending,
		CreatedAt:         time.Now().UTC(),
	}
}
