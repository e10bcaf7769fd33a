// internal/repository/wallet_repo.go
package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"doctrade-ledger/internal/domain"
)

// WalletRepository defines wallet persistence. The mutation methods are
// guarded single-row updates: the wallet row is the unit of mutual
// exclusion, and a guard that does not hold results in the matching
// sentinel error (ErrInsufficientFunds, ErrInsufficientLockedFunds, or
// ErrWalletNotFound) with the row left untouched.
type WalletRepository interface {
	// CreateWallet adds a new wallet.
	CreateWallet(ctx context.Context, q DBExecutor, wallet *domain.Wallet) error
	// GetWalletByUserID retrieves the wallet owned by a user.
	GetWalletByUserID(ctx context.Context, q DBExecutor, userID string) (*domain.Wallet, error)
	// Credit increases balance by amount.
	Credit(ctx context.Context, q DBExecutor, userID string, amount decimal.Decimal) error
	// Debit decreases balance by amount if available >= amount.
	Debit(ctx context.Context, q DBExecutor, userID string, amount decimal.Decimal) error
	// Lock raises locked_balance by amount if available >= amount.
	Lock(ctx context.Context, q DBExecutor, userID string, amount decimal.Decimal) error
	// Unlock lowers locked_balance by amount if locked_balance >= amount.
	Unlock(ctx context.Context, q DBExecutor, userID string, amount decimal.Decimal) error
	// SettleLocked applies locked_balance -= principal and
	// balance += reward in a single update.
	SettleLocked(ctx context.Context, q DBExecutor, userID string, principal, reward decimal.Decimal) error
	// DebitLocked removes amount from both balance and locked_balance
	// together, used when an approved withdrawal leaves the platform.
	DebitLocked(ctx context.Context, q DBExecutor, userID string, amount decimal.Decimal) error
}
