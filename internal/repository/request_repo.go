// internal/repository/request_repo.go
package repository

import (
	"context"

	"doctrade-ledger/internal/domain"
)

// RequestRepository persists deposit and withdrawal requests. Processing a
// request requires its exact ID; marking it processed is guarded by
// status='pending' so it happens at most once.
type RequestRepository interface {
	// CreateDepositRequest adds a pending deposit request.
	CreateDepositRequest(ctx context.Context, q DBExecutor, req *domain.DepositRequest) error
	// GetDepositRequestByID retrieves a deposit request.
	GetDepositRequestByID(ctx context.Context, q DBExecutor, id string) (*domain.DepositRequest, error)
	// MarkDepositProcessed transitions a pending deposit request to a
	// terminal status; returns util.ErrAlreadyProcessed if it is no
	// longer pending.
	MarkDepositProcessed(ctx context.Context, q DBExecutor, id string, status domain.TransactionStatus, processedBy, reason string) error

	// CreateWithdrawalRequest adds a pending withdrawal request.
	CreateWithdrawalRequest(ctx context.Context, q DBExecutor, req *domain.WithdrawalRequest) error
	// GetWithdrawalRequestByID retrieves a withdrawal request.
	GetWithdrawalRequestByID(ctx context.Context, q DBExecutor, id string) (*domain.WithdrawalRequest, error)
	// MarkWithdrawalProcessed is the withdrawal counterpart of
	// MarkDepositProcessed.
	MarkWithdrawalProcessed(ctx context.Context, q DBExecutor, id string, status domain.TransactionStatus, processedBy, reason string) error
}
