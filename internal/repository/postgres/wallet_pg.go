// internal/repository/postgres/wallet_pg.go
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"doctrade-ledger/internal/domain"
	"doctrade-ledger/internal/repository"
	"doctrade-ledger/internal/util"
)

// WalletRepository implements repository.WalletRepository for PostgreSQL.
// Every mutation is a single guarded UPDATE, so the wallet row serializes
// concurrent balance operations and 0 <= locked_balance <= balance holds
// at all times.
type WalletRepository struct{}

// NewWalletRepository creates a new WalletRepository.
func NewWalletRepository(db *sqlx.DB) repository.WalletRepository {
	return &WalletRepository{}
}

// CreateWallet inserts a new wallet.
func (r *WalletRepository) CreateWallet(ctx context.Context, q repository.DBExecutor, wallet *domain.Wallet) error {
	query := `INSERT INTO wallets (id, user_id, balance, locked_balance, created_at, updated_at)
              VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := q.ExecContext(ctx, query, wallet.ID, wallet.UserID, wallet.Balance, wallet.LockedBalance, wallet.CreatedAt, wallet.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create wallet: %w", err)
	}
	return nil
}

// GetWalletByUserID retrieves the wallet owned by a user.
func (r *WalletRepository) GetWalletByUserID(ctx context.Context, q repository.DBExecutor, userID string) (*domain.Wallet, error) {
	var wallet domain.Wallet
	query := `SELECT id, user_id, balance, locked_balance, created_at, updated_at FROM wallets WHERE user_id = $1`
	err := q.GetContext(ctx, &wallet, query, userID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, util.ErrWalletNotFound
		}
		return nil, fmt.Errorf("failed to get wallet for user %s: %w", userID, err)
	}
	return &wallet, nil
}

// Credit increases the wallet's balance.
func (r *WalletRepository) Credit(ctx context.Context, q repository.DBExecutor, userID string, amount decimal.Decimal) error {
	query := `UPDATE wallets SET balance = balance + $1, updated_at = $2 WHERE user_id = $3`
	return r.guardedUpdate(ctx, q, userID, util.ErrWalletNotFound, query, amount, time.Now().UTC(), userID)
}

// Debit decreases the wallet's balance if the available portion covers it.
func (r *WalletRepository) Debit(ctx context.Context, q repository.DBExecutor, userID string, amount decimal.Decimal) error {
	query := `UPDATE wallets SET balance = balance - $1, updated_at = $2
              WHERE user_id = $3 AND balance - locked_balance >= $1`
	return r.guardedUpdate(ctx, q, userID, util.ErrInsufficientFunds, query, amount, time.Now().UTC(), userID)
}

// Lock reserves amount from the available balance.
func (r *WalletRepository) Lock(ctx context.Context, q repository.DBExecutor, userID string, amount decimal.Decimal) error {
	query := `UPDATE wallets SET locked_balance = locked_balance + $1, updated_at = $2
              WHERE user_id = $3 AND balance - locked_balance >= $1`
	return r.guardedUpdate(ctx, q, userID, util.ErrInsufficientFunds, query, amount, time.Now().UTC(), userID)
}

// Unlock releases amount back to the available balance.
func (r *WalletRepository) Unlock(ctx context.Context, q repository.DBExecutor, userID string, amount decimal.Decimal) error {
	query := `UPDATE wallets SET locked_balance = locked_balance - $1, updated_at = $2
              WHERE user_id = $3 AND locked_balance >= $1`
	return r.guardedUpdate(ctx, q, userID, util.ErrInsufficientLockedFunds, query, amount, time.Now().UTC(), userID)
}

// SettleLocked releases principal from the locked balance and credits the
// reward in one update, so the two effects apply together or not at all.
func (r *WalletRepository) SettleLocked(ctx context.Context, q repository.DBExecutor, userID string, principal, reward decimal.Decimal) error {
	query := `UPDATE wallets SET balance = balance + $1, locked_balance = locked_balance - $2, updated_at = $3
              WHERE user_id = $4 AND locked_balance >= $2`
	return r.guardedUpdate(ctx, q, userID, util.ErrInsufficientLockedFunds, query, reward, principal, time.Now().UTC(), userID)
}

// DebitLocked removes amount from both balance and locked_balance, used
// when locked funds leave the platform on an approved withdrawal.
func (r *WalletRepository) DebitLocked(ctx context.Context, q repository.DBExecutor, userID string, amount decimal.Decimal) error {
	query := `UPDATE wallets SET balance = balance - $1, locked_balance = locked_balance - $1, updated_at = $2
              WHERE user_id = $3 AND locked_balance >= $1`
	return r.guardedUpdate(ctx, q, userID, util.ErrInsufficientLockedFunds, query, amount, time.Now().UTC(), userID)
}

// guardedUpdate runs a conditional single-row update. Zero rows affected
// means either the guard failed (guardErr) or the wallet does not exist.
func (r *WalletRepository) guardedUpdate(ctx context.Context, q repository.DBExecutor, userID string, guardErr error, query string, args ...interface{}) error {
	result, err := q.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update wallet for user %s: %w", userID, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected for user %s: %w", userID, err)
	}
	if rowsAffected == 0 {
		if _, err := r.GetWalletByUserID(ctx, q, userID); err != nil {
			return err
		}
		return guardErr
	}
	return nil
}
