// internal/domain/wallet.go
package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Wallet represents a user's point-of-value wallet. Balance is the total
// funds held; LockedBalance is the subset reserved by active positions or
// pending withdrawals. Invariant: 0 <= LockedBalance <= Balance.
type Wallet struct {
	ID            string          `db:"id" json:"id"`
	UserID        string          `db:"user_id" json:"user_id"`
	Balance       decimal.Decimal `db:"balance" json:"balance"`               // NUMERIC(20, 4) in DB
	LockedBalance decimal.Decimal `db:"locked_balance" json:"locked_balance"` // NUMERIC(20, 4) in DB
	CreatedAt     time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time       `db:"updated_at" json:"updated_at"`
}

// NewWallet creates a new Wallet instance for a user with zero balances.
func NewWallet(userID string) *Wallet {
	now := time.Now().UTC()
	return &Wallet{
		ID:            uuid.NewString(),
		UserID:        userID,
		Balance:       decimal.Zero,
		LockedBalance: decimal.Zero,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// Available returns the spendable portion of the balance. Only this amount
// is eligible for new debits or locks.
func (w *Wallet) Available() decimal.Decimal {
	return w.Balance.Sub(w.LockedBalance)
}
