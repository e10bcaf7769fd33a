// internal/repository/position_repo.go
package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"doctrade-ledger/internal/domain"
)

// PositionRepository persists staking and investment positions. Positions
// are never physically deleted; settlement flips status to completed via a
// guarded update so it can happen at most once.
type PositionRepository interface {
	// CreateStakingPosition adds a new active staking position.
	CreateStakingPosition(ctx context.Context, q DBExecutor, position *domain.StakingPosition) error
	// GetStakingPosition retrieves one of a user's staking positions.
	GetStakingPosition(ctx context.Context, q DBExecutor, userID, positionID string) (*domain.StakingPosition, error)
	// ListStakingPositions returns a user's staking positions, newest first.
	ListStakingPositions(ctx context.Context, q DBExecutor, userID string) ([]domain.StakingPosition, error)
	// CompleteStakingPosition transitions a position from active to
	// completed, recording the reward. The update is guarded by
	// status='active'; it returns false without error when another
	// evaluation already completed the position.
	CompleteStakingPosition(ctx context.Context, q DBExecutor, positionID string, reward decimal.Decimal) (bool, error)

	// CreateInvestmentPosition adds a new active investment position.
	CreateInvestmentPosition(ctx context.Context, q DBExecutor, position *domain.InvestmentPosition) error
	// ListInvestmentPositions returns a user's investment positions, newest first.
	ListInvestmentPositions(ctx context.Context, q DBExecutor, userID string) ([]domain.InvestmentPosition, error)
	// CompleteInvestmentPosition is the investment counterpart of
	// CompleteStakingPosition.
	CompleteInvestmentPosition(ctx context.Context, q DBExecutor, positionID string, reward decimal.Decimal) (bool, error)
}
