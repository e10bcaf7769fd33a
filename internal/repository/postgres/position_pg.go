// internal/repository/postgres/position_pg.go
package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"doctrade-ledger/internal/domain"
	"doctrade-ledger/internal/repository"
	"doctrade-ledger/internal/util"
)

// PositionRepository implements repository.PositionRepository for
// PostgreSQL. Completing a position is a status-guarded update; the
// returned bool is the compare-and-set result the maturity sweeper relies
// on for exactly-once settlement.
type PositionRepository struct{}

// NewPositionRepository creates a new PositionRepository.
func NewPositionRepository(db *sqlx.DB) repository.PositionRepository {
	return &PositionRepository{}
}

// CreateStakingPosition inserts a new staking position.
func (r *PositionRepository) CreateStakingPosition(ctx context.Context, q repository.DBExecutor, position *domain.StakingPosition) error {
	query := `INSERT INTO staking_positions (id, user_id, plan, amount, apy, locked_until, rewards_earned, status, created_at)
              VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := q.ExecContext(ctx, query,
		position.ID, position.UserID, position.Plan, position.Amount, position.APY,
		position.LockedUntil, position.RewardsEarned, position.Status, position.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create staking position: %w", err)
	}
	return nil
}

// GetStakingPosition retrieves one of a user's staking positions.
func (r *PositionRepository) GetStakingPosition(ctx context.Context, q repository.DBExecutor, userID, positionID string) (*domain.StakingPosition, error) {
	var position domain.StakingPosition
	query := `SELECT id, user_id, plan, amount, apy, locked_until, rewards_earned, status, created_at
              FROM staking_positions WHERE id = $1 AND user_id = $2`
	err := q.GetContext(ctx, &position, query, positionID, userID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, util.ErrPositionNotFound
		}
		return nil, fmt.Errorf("failed to get staking position %s: %w", positionID, err)
	}
	return &position, nil
}

// ListStakingPositions returns a user's staking positions, newest first.
func (r *PositionRepository) ListStakingPositions(ctx context.Context, q repository.DBExecutor, userID string) ([]domain.StakingPosition, error) {
	positions := []domain.StakingPosition{}
	query := `SELECT id, user_id, plan, amount, apy, locked_until, rewards_earned, status, created_at
              FROM staking_positions WHERE user_id = $1 ORDER BY created_at DESC`
	if err := q.SelectContext(ctx, &positions, query, userID); err != nil {
		return nil, fmt.Errorf("failed to list staking positions for user %s: %w", userID, err)
	}
	return positions, nil
}

// CompleteStakingPosition flips an active staking position to completed,
// recording the reward. Returns false when the position was not active.
func (r *PositionRepository) CompleteStakingPosition(ctx context.Context, q repository.DBExecutor, positionID string, reward decimal.Decimal) (bool, error) {
	query := `UPDATE staking_positions SET status = 'completed', rewards_earned = $1
              WHERE id = $2 AND status = 'active'`
	return r.completePosition(ctx, q, query, positionID, reward)
}

// CreateInvestmentPosition inserts a new investment position.
func (r *PositionRepository) CreateInvestmentPosition(ctx context.Context, q repository.DBExecutor, position *domain.InvestmentPosition) error {
	query := `INSERT INTO investment_positions (id, user_id, package, amount, expected_return, expires_at, returns_earned, status, created_at)
              VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := q.ExecContext(ctx, query,
		position.ID, position.UserID, position.Package, position.Amount, position.ExpectedReturn,
		position.ExpiresAt, position.ReturnsEarned, position.Status, position.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create investment position: %w", err)
	}
	return nil
}

// ListInvestmentPositions returns a user's investment positions, newest first.
func (r *PositionRepository) ListInvestmentPositions(ctx context.Context, q repository.DBExecutor, userID string) ([]domain.InvestmentPosition, error) {
	positions := []domain.InvestmentPosition{}
	query := `SELECT id, user_id, package, amount, expected_return, expires_at, returns_earned, status, created_at
              FROM investment_positions WHERE user_id = $1 ORDER BY created_at DESC`
	if err := q.SelectContext(ctx, &positions, query, userID); err != nil {
		return nil, fmt.Errorf("failed to list investment positions for user %s: %w", userID, err)
	}
	return positions, nil
}

// CompleteInvestmentPosition flips an active investment position to
// completed, recording the returns. Returns false when not active.
func (r *PositionRepository) CompleteInvestmentPosition(ctx context.Context, q repository.DBExecutor, positionID string, reward decimal.Decimal) (bool, error) {
	query := `UPDATE investment_positions SET status = 'completed', returns_earned = $1
              WHERE id = $2 AND status = 'active'`
	return r.completePosition(ctx, q, query, positionID, reward)
}

func (r *PositionRepository) completePosition(ctx context.Context, q repository.DBExecutor, query, positionID string, reward decimal.Decimal) (bool, error) {
	result, err := q.ExecContext(ctx, query, reward, positionID)
	if err != nil {
		return false, fmt.Errorf("failed to complete position %s: %w", positionID, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected for position %s: %w", positionID, err)
	}
	return rowsAffected > 0, nil
}
