// internal/domain/position.go
package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PositionStatus is the lifecycle status of a staking or investment
// position. The active -> completed transition is terminal and acts as the
// compare-and-set guard that makes settlement idempotent.
type PositionStatus string

const (
	PositionStatusActive    PositionStatus = "active"
	PositionStatusCompleted PositionStatus = "completed"
)

// StakingPosition is an amount locked under a staking plan until
// LockedUntil. The principal stays in the wallet's balance but is locked
// for the lifetime of the position.
type StakingPosition struct {
	ID            string          `db:"id" json:"id"`
	UserID        string          `db:"user_id" json:"user_id"`
	Plan          string          `db:"plan" json:"plan"`
	Amount        decimal.Decimal `db:"amount" json:"amount"`
	APY           decimal.Decimal `db:"apy" json:"apy"`
	LockedUntil   time.Time       `db:"locked_until" json:"locked_until"`
	RewardsEarned decimal.Decimal `db:"rewards_earned" json:"rewards_earned"`
	Status        PositionStatus  `db:"status" json:"status"`
	CreatedAt     time.Time       `db:"created_at" json:"created_at"`
}

// NewStakingPosition creates an active staking position locked for lockDays.
func NewStakingPosition(userID, plan string, amount, apy decimal.Decimal, lockDays int, now time.Time) *StakingPosition {
	return &StakingPosition{
		ID:            uuid.NewString(),
		UserID:        userID,
		Plan:          plan,
		Amount:        amount,
		APY:           apy,
		LockedUntil:   now.Add(time.Duration(lockDays) * 24 * time.Hour),
		RewardsEarned: decimal.Zero,
		Status:        PositionStatusActive,
		CreatedAt:     now,
	}
}

// Matured reports whether the lock period has elapsed at the given time.
func (p *StakingPosition) Matured(now time.Time) bool {
	return !now.Before(p.LockedUntil)
}

// Reward computes the daily-prorated staking interest earned between the
// position's creation and now: amount * (apy/100) / 365 * wholeDays.
// Days are counted from creation, not from lock expiry.
func (p *StakingPosition) Reward(now time.Time) decimal.Decimal {
	days := wholeDays(p.CreatedAt, now)
	return p.Amount.
		Mul(p.APY).
		Div(decimal.NewFromInt(100)).
		Div(decimal.NewFromInt(365)).
		Mul(decimal.NewFromInt(days))
}

// InvestmentPosition is a fixed-term package investment that matures at
// ExpiresAt with a flat expected return.
type InvestmentPosition struct {
	ID             string          `db:"id" json:"id"`
	UserID         string          `db:"user_id" json:"user_id"`
	Package        string          `db:"package" json:"package"`
	Amount         decimal.Decimal `db:"amount" json:"amount"`
	ExpectedReturn decimal.Decimal `db:"expected_return" json:"expected_return"`
	ExpiresAt      time.Time       `db:"expires_at" json:"expires_at"`
	ReturnsEarned  decimal.Decimal `db:"returns_earned" json:"returns_earned"`
	Status         PositionStatus  `db:"status" json:"status"`
	CreatedAt      time.Time       `db:"created_at" json:"created_at"`
}

// NewInvestmentPosition creates an active investment position expiring
// after durationDays.
func NewInvestmentPosition(userID, pkg string, amount, expectedReturn decimal.Decimal, durationDays int, now time.Time) *InvestmentPosition {
	return &InvestmentPosition{
		ID:             uuid.NewString(),
		UserID:         userID,
		Package:        pkg,
		Amount:         amount,
		ExpectedReturn: expectedReturn,
		ExpiresAt:      now.Add(time.Duration(durationDays) * 24 * time.Hour),
		ReturnsEarned:  decimal.Zero,
		Status:         PositionStatusActive,
		CreatedAt:      now,
	}
}

// Matured reports whether the position has expired at the given time.
func (p *InvestmentPosition) Matured(now time.Time) bool {
	return !now.Before(p.ExpiresAt)
}

// Reward computes the flat return: amount * (expected_return/100),
// regardless of how long after expiry the position is evaluated.
func (p *InvestmentPosition) Reward() decimal.Decimal {
	return p.Amount.Mul(p.ExpectedReturn).Div(decimal.NewFromInt(100))
}

// Settlement describes the effects of settling a matured position:
// Principal leaves the locked balance, Reward is credited on top. It is
// produced by the evaluation functions below and applied by the service
// layer; the decision logic itself performs no I/O.
type Settlement struct {
	Principal decimal.Decimal
	Reward    decimal.Decimal
}

// EvaluateStaking decides whether an active staking position should settle
// at the given time. It returns the settlement effects and true when the
// lock period has elapsed, or false for an unchanged position.
func EvaluateStaking(p *StakingPosition, now time.Time) (Settlement, bool) {
	if p.Status != PositionStatusActive || !p.Matured(now) {
		return Settlement{}, false
	}
	return Settlement{Principal: p.Amount, Reward: p.Reward(now)}, true
}

// EvaluateInvestment decides whether an active investment position should
// settle at the given time.
func EvaluateInvestment(p *InvestmentPosition, now time.Time) (Settlement, bool) {
	if p.Status != PositionStatusActive || !p.Matured(now) {
		return Settlement{}, false
	}
	return Settlement{Principal: p.Amount, Reward: p.Reward()}, true
}

// wholeDays returns the whole-day difference between two instants,
// truncating partial days.
func wholeDays(from, to time.Time) int64 {
	if to.Before(from) {
		return 0
	}
	return int64(to.Sub(from).Hours() / 24)
}
