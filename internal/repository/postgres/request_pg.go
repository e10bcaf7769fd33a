// internal/repository/postgres/request_pg.go
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"doctrade-ledger/internal/domain"
	"doctrade-ledger/internal/repository"
	"doctrade-ledger/internal/util"
)

// RequestRepository implements repository.RequestRepository for PostgreSQL.
type RequestRepository struct{}

// NewRequestRepository creates a new RequestRepository.
func NewRequestRepository(db *sqlx.DB) repository.RequestRepository {
	return &RequestRepository{}
}

// CreateDepositRequest inserts a pending deposit request.
func (r *RequestRepository) CreateDepositRequest(ctx context.Context, q repository.DBExecutor, req *domain.DepositRequest) error {
	query := `INSERT INTO deposit_requests (id, user_id, amount, payment_method, payment_proof, transaction_id, status, reason, created_at)
              VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := q.ExecContext(ctx, query,
		req.ID, req.UserID, req.Amount, req.PaymentMethod, req.PaymentProof,
		req.TransactionID, req.Status, req.Reason, req.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create deposit request: %w", err)
	}
	return nil
}

// GetDepositRequestByID retrieves a deposit request by its exact ID.
func (r *RequestRepository) GetDepositRequestByID(ctx context.Context, q repository.DBExecutor, id string) (*domain.DepositRequest, error) {
	var req domain.DepositRequest
	query := `SELECT id, user_id, amount, payment_method, payment_proof, transaction_id, status, processed_by, processed_at, reason, created_at
              FROM deposit_requests WHERE id = $1`
	err := q.GetContext(ctx, &req, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, util.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get deposit request %s: %w", id, err)
	}
	return &req, nil
}

// MarkDepositProcessed transitions a pending deposit request to a terminal
// status.
func (r *RequestRepository) MarkDepositProcessed(ctx context.Context, q repository.DBExecutor, id string, status domain.TransactionStatus, processedBy, reason string) error {
	query := `UPDATE deposit_requests SET status = $1, processed_by = $2, processed_at = $3, reason = $4
              WHERE id = $5 AND status = 'pending'`
	return r.markProcessed(ctx, q, query, id, status, processedBy, reason)
}

// CreateWithdrawalRequest inserts a pending withdrawal request.
func (r *RequestRepository) CreateWithdrawalRequest(ctx context.Context, q repository.DBExecutor, req *domain.WithdrawalRequest) error {
	query := `INSERT INTO withdrawal_requests (id, user_id, amount, withdrawal_method, withdrawal_address, transaction_id, status, reason, created_at)
              VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := q.ExecContext(ctx, query,
		req.ID, req.UserID, req.Amount, req.WithdrawalMethod, req.WithdrawalAddress,
		req.TransactionID, req.Status, req.Reason, req.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create withdrawal request: %w", err)
	}
	return nil
}

// GetWithdrawalRequestByID retrieves a withdrawal request by its exact ID.
func (r *RequestRepository) GetWithdrawalRequestByID(ctx context.Context, q repository.DBExecutor, id string) (*domain.WithdrawalRequest, error) {
	var req domain.WithdrawalRequest
	query := `SELECT id, user_id, amount, withdrawal_method, withdrawal_address, transaction_id, status, processed_by, processed_at, reason, created_at
              FROM withdrawal_requests WHERE id = $1`
	err := q.GetContext(ctx, &req, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, util.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get withdrawal request %s: %w", id, err)
	}
	return &req, nil
}

// MarkWithdrawalProcessed transitions a pending withdrawal request to a
// terminal status.
func (r *RequestRepository) MarkWithdrawalProcessed(ctx context.Context, q repository.DBExecutor, id string, status domain.TransactionStatus, processedBy, reason string) error {
	query := `UPDATE withdrawal_requests SET status = $1, processed_by = $2, processed_at = $3, reason = $4
              WHERE id = $5 AND status = 'pending'`
	return r.markProcessed(ctx, q, query, id, status, processedBy, reason)
}

func (r *RequestRepository) markProcessed(ctx context.Context, q repository.DBExecutor, query, id string, status domain.TransactionStatus, processedBy, reason string) error {
	result, err := q.ExecContext(ctx, query, status, processedBy, time.Now().UTC(), reason, id)
	if err != nil {
		return fmt.Errorf("failed to mark request %s processed: %w", id, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected for request %s: %w", id, err)
	}
	if rowsAffected == 0 {
		return util.ErrAlreadyProcessed
	}
	return nil
}
