// internal/service/position_service.go
package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"doctrade-ledger/internal/audit"
	"doctrade-ledger/internal/config"
	"doctrade-ledger/internal/domain"
	"doctrade-ledger/internal/repository"
	"doctrade-ledger/internal/util"
	"doctrade-ledger/pkg/db"
)

// StakingRewardsSummary aggregates a user's staking earnings.
type StakingRewardsSummary struct {
	TotalEarned     decimal.Decimal `json:"total_earned"`
	PendingRewards  decimal.Decimal `json:"pending_rewards"`
	ActivePositions int             `json:"active_positions"`
}

// InvestmentReturnsSummary aggregates a user's investment earnings.
type InvestmentReturnsSummary struct {
	TotalInvested   decimal.Decimal `json:"total_invested"`
	TotalEarned     decimal.Decimal `json:"total_earned"`
	ExpectedReturns decimal.Decimal `json:"expected_returns"`
	ActivePositions int             `json:"active_positions"`
}

// PositionService owns staking and investment positions. Maturity is
// evaluated lazily: every portfolio read settles positions whose lock
// period has elapsed before returning results. Settlement is idempotent;
// the active -> completed status transition is the compare-and-set guard,
// so concurrent reads of the same portfolio credit each reward exactly
// once.
type PositionService interface {
	StakingPlans() []config.StakingPlan
	InvestmentPackages() []config.InvestmentPackage

	Stake(ctx context.Context, userID, plan string, amount decimal.Decimal) (*domain.StakingPosition, error)
	Unstake(ctx context.Context, userID, positionID string) (*domain.StakingPosition, error)
	StakingPositions(ctx context.Context, userID string) ([]domain.StakingPosition, error)
	StakingRewards(ctx context.Context, userID string) (*StakingRewardsSummary, error)

	Invest(ctx context.Context, userID, pkg string) (*domain.InvestmentPosition, error)
	InvestmentPortfolio(ctx context.Context, userID string) ([]domain.InvestmentPosition, error)
	InvestmentReturns(ctx context.Context, userID string) (*InvestmentReturnsSummary, error)
}

type positionService struct {
	dbBeginner      db.DBTxBeginner
	dbExecutor      repository.DBExecutor
	walletRepo      repository.WalletRepository
	transactionRepo repository.TransactionRepository
	positionRepo    repository.PositionRepository
	plans           map[string]config.StakingPlan
	packages        map[string]config.InvestmentPackage
	auditSink       audit.Sink
	beginTx         db.BeginTxFunc
	commitTx        db.CommitTxFunc
	rollbackTx      db.RollbackTxFunc
}

// NewPositionService creates a new instance of PositionService.
func NewPositionService(
	dbBeginner db.DBTxBeginner,
	dbExecutor repository.DBExecutor,
	walletRepo repository.WalletRepository,
	transactionRepo repository.TransactionRepository,
	positionRepo repository.PositionRepository,
	plans map[string]config.StakingPlan,
	packages map[string]config.InvestmentPackage,
	auditSink audit.Sink,
	beginTx db.BeginTxFunc,
	commitTx db.CommitTxFunc,
	rollbackTx db.RollbackTxFunc,
) PositionService {
	return &positionService{
		dbBeginner:      dbBeginner,
		dbExecutor:      dbExecutor,
		walletRepo:      walletRepo,
		transactionRepo: transactionRepo,
		positionRepo:    positionRepo,
		plans:           plans,
		packages:        packages,
		auditSink:       auditSink,
		beginTx:         beginTx,
		commitTx:        commitTx,
		rollbackTx:      rollbackTx,
	}
}

// StakingPlans returns the configured plans, cheapest first.
func (s *positionService) StakingPlans() []config.StakingPlan {
	plans := make([]config.StakingPlan, 0, len(s.plans))
	for _, p := range s.plans {
		plans = append(plans, p)
	}
	sort.Slice(plans, func(i, j int) bool { return plans[i].MinAmount.LessThan(plans[j].MinAmount) })
	return plans
}

// InvestmentPackages returns the configured packages, cheapest first.
func (s *positionService) InvestmentPackages() []config.InvestmentPackage {
	packages := make([]config.InvestmentPackage, 0, len(s.packages))
	for _, p := range s.packages {
		packages = append(packages, p)
	}
	sort.Slice(packages, func(i, j int) bool { return packages[i].Price.LessThan(packages[j].Price) })
	return packages
}

// Stake locks amount under the named plan and opens a staking position.
func (s *positionService) Stake(ctx context.Context, userID, plan string, amount decimal.Decimal) (*domain.StakingPosition, error) {
	planConfig, ok := s.plans[plan]
	if !ok {
		return nil, util.ErrInvalidPlan
	}
	if amount.LessThan(planConfig.MinAmount) {
		return nil, util.ErrBelowMinimum
	}

	txController, err := s.beginTx(ctx, s.dbBeginner)
	if err != nil {
		return nil, fmt.Errorf("stake: failed to begin transaction: %w", err)
	}
	defer s.rollbackTx(txController)

	txExecutor, ok := txController.(repository.DBExecutor)
	if !ok {
		return nil, fmt.Errorf("stake: transaction controller does not implement DBExecutor")
	}

	if err := s.walletRepo.Lock(ctx, txExecutor, userID, amount); err != nil {
		return nil, fmt.Errorf("stake: %w", err)
	}

	position := domain.NewStakingPosition(userID, plan, amount, planConfig.APY, planConfig.LockDays, time.Now().UTC())
	if err := s.positionRepo.CreateStakingPosition(ctx, txExecutor, position); err != nil {
		return nil, fmt.Errorf("stake: failed to create position: %w", err)
	}

	transaction := domain.NewTransaction(userID, domain.TransactionTypeStaking, amount, domain.TransactionStatusCompleted,
		fmt.Sprintf("Staked %s in %s plan", amount.String(), plan),
		domain.Metadata{"plan": plan, "position_id": position.ID})
	if err := s.transactionRepo.CreateTransaction(ctx, txExecutor, transaction); err != nil {
		return nil, fmt.Errorf("stake: failed to create transaction: %w", err)
	}

	if err := s.commitTx(txController); err != nil {
		return nil, fmt.Errorf("stake: failed to commit transaction: %w", err)
	}

	s.auditSink.Record(ctx, userID, "COINS_STAKED", map[string]any{"amount": amount.String(), "plan": plan})
	return position, nil
}

// Unstake settles a matured staking position on explicit request. Before
// maturity it refuses with ErrStillLocked; a position that is already
// completed refuses with ErrAlreadyProcessed.
func (s *positionService) Unstake(ctx context.Context, userID, positionID string) (*domain.StakingPosition, error) {
	position, err := s.positionRepo.GetStakingPosition(ctx, s.dbExecutor, userID, positionID)
	if err != nil {
		return nil, fmt.Errorf("unstake: %w", err)
	}
	if position.Status != domain.PositionStatusActive {
		return nil, util.ErrAlreadyProcessed
	}

	now := time.Now().UTC()
	settlement, due := domain.EvaluateStaking(position, now)
	if !due {
		return nil, util.ErrStillLocked
	}

	settled, err := s.settleStaking(ctx, position, settlement)
	if err != nil {
		return nil, fmt.Errorf("unstake: %w", err)
	}
	if !settled {
		return nil, util.ErrAlreadyProcessed
	}

	s.auditSink.Record(ctx, userID, "COINS_UNSTAKED", map[string]any{
		"amount": settlement.Principal.String(), "reward": settlement.Reward.String(),
	})

	position.Status = domain.PositionStatusCompleted
	position.RewardsEarned = settlement.Reward
	return position, nil
}

// StakingPositions lists a user's staking positions, settling any whose
// lock period has elapsed first.
func (s *positionService) StakingPositions(ctx context.Context, userID string) ([]domain.StakingPosition, error) {
	positions, err := s.positionRepo.ListStakingPositions(ctx, s.dbExecutor, userID)
	if err != nil {
		return nil, fmt.Errorf("staking positions: %w", err)
	}

	now := time.Now().UTC()
	for i := range positions {
		settlement, due := domain.EvaluateStaking(&positions[i], now)
		if !due {
			continue
		}
		settled, err := s.settleStaking(ctx, &positions[i], settlement)
		if err != nil {
			return nil, fmt.Errorf("staking positions: %w", err)
		}
		if settled {
			positions[i].Status = domain.PositionStatusCompleted
			positions[i].RewardsEarned = settlement.Reward
		}
	}
	return positions, nil
}

// StakingRewards aggregates earned and pending staking rewards.
func (s *positionService) StakingRewards(ctx context.Context, userID string) (*StakingRewardsSummary, error) {
	positions, err := s.positionRepo.ListStakingPositions(ctx, s.dbExecutor, userID)
	if err != nil {
		return nil, fmt.Errorf("staking rewards: %w", err)
	}

	now := time.Now().UTC()
	summary := &StakingRewardsSummary{TotalEarned: decimal.Zero, PendingRewards: decimal.Zero}
	for i := range positions {
		summary.TotalEarned = summary.TotalEarned.Add(positions[i].RewardsEarned)
		if positions[i].Status == domain.PositionStatusActive {
			summary.ActivePositions++
			summary.PendingRewards = summary.PendingRewards.Add(positions[i].Reward(now))
		}
	}
	return summary, nil
}

// settleStaking applies a staking settlement exactly once. The status
// compare-and-set runs first inside the database transaction; if another
// evaluation already completed the position, nothing else happens.
func (s *positionService) settleStaking(ctx context.Context, position *domain.StakingPosition, settlement domain.Settlement) (bool, error) {
	txController, err := s.beginTx(ctx, s.dbBeginner)
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer s.rollbackTx(txController)

	txExecutor, ok := txController.(repository.DBExecutor)
	if !ok {
		return false, fmt.Errorf("transaction controller does not implement DBExecutor")
	}

	settled, err := s.positionRepo.CompleteStakingPosition(ctx, txExecutor, position.ID, settlement.Reward)
	if err != nil {
		return false, err
	}
	if !settled {
		return false, nil
	}

	if err := s.walletRepo.SettleLocked(ctx, txExecutor, position.UserID, settlement.Principal, settlement.Reward); err != nil {
		return false, err
	}

	unstakeTx := domain.NewTransaction(position.UserID, domain.TransactionTypeUnstaking, settlement.Principal, domain.TransactionStatusCompleted,
		fmt.Sprintf("Unstaked from %s plan", position.Plan),
		domain.Metadata{"position_id": position.ID})
	if err := s.transactionRepo.CreateTransaction(ctx, txExecutor, unstakeTx); err != nil {
		return false, err
	}

	rewardTx := domain.NewTransaction(position.UserID, domain.TransactionTypeReward, settlement.Reward, domain.TransactionStatusCompleted,
		fmt.Sprintf("Staking rewards from %s plan", position.Plan),
		domain.Metadata{"position_id": position.ID})
	if err := s.transactionRepo.CreateTransaction(ctx, txExecutor, rewardTx); err != nil {
		return false, err
	}

	if err := s.commitTx(txController); err != nil {
		return false, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return true, nil
}

// Invest locks the package price and opens an investment position. The
// price comes from configuration, never from the caller.
func (s *positionService) Invest(ctx context.Context, userID, pkg string) (*domain.InvestmentPosition, error) {
	pkgConfig, ok := s.packages[pkg]
	if !ok {
		return nil, util.ErrInvalidPackage
	}

	txController, err := s.beginTx(ctx, s.dbBeginner)
	if err != nil {
		return nil, fmt.Errorf("invest: failed to begin transaction: %w", err)
	}
	defer s.rollbackTx(txController)

	txExecutor, ok := txController.(repository.DBExecutor)
	if !ok {
		return nil, fmt.Errorf("invest: transaction controller does not implement DBExecutor")
	}

	if err := s.walletRepo.Lock(ctx, txExecutor, userID, pkgConfig.Price); err != nil {
		return nil, fmt.Errorf("invest: %w", err)
	}

	position := domain.NewInvestmentPosition(userID, pkg, pkgConfig.Price, pkgConfig.ExpectedReturn, pkgConfig.DurationDays, time.Now().UTC())
	if err := s.positionRepo.CreateInvestmentPosition(ctx, txExecutor, position); err != nil {
		return nil, fmt.Errorf("invest: failed to create position: %w", err)
	}

	transaction := domain.NewTransaction(userID, domain.TransactionTypeInvestment, pkgConfig.Price, domain.TransactionStatusCompleted,
		fmt.Sprintf("Invested in %s package", pkg),
		domain.Metadata{"package": pkg, "position_id": position.ID})
	if err := s.transactionRepo.CreateTransaction(ctx, txExecutor, transaction); err != nil {
		return nil, fmt.Errorf("invest: failed to create transaction: %w", err)
	}

	if err := s.commitTx(txController); err != nil {
		return nil, fmt.Errorf("invest: failed to commit transaction: %w", err)
	}

	s.auditSink.Record(ctx, userID, "INVESTMENT_PURCHASED", map[string]any{"amount": pkgConfig.Price.String(), "package": pkg})
	return position, nil
}

// InvestmentPortfolio lists a user's investment positions, settling any
// that have expired first. Investments mature passively; there is no
// explicit early exit.
func (s *positionService) InvestmentPortfolio(ctx context.Context, userID string) ([]domain.InvestmentPosition, error) {
	positions, err := s.positionRepo.ListInvestmentPositions(ctx, s.dbExecutor, userID)
	if err != nil {
		return nil, fmt.Errorf("investment portfolio: %w", err)
	}

	now := time.Now().UTC()
	for i := range positions {
		settlement, due := domain.EvaluateInvestment(&positions[i], now)
		if !due {
			continue
		}
		settled, err := s.settleInvestment(ctx, &positions[i], settlement)
		if err != nil {
			return nil, fmt.Errorf("investment portfolio: %w", err)
		}
		if settled {
			positions[i].Status = domain.PositionStatusCompleted
			positions[i].ReturnsEarned = settlement.Reward
		}
	}
	return positions, nil
}

// InvestmentReturns aggregates invested amounts and earned returns.
func (s *positionService) InvestmentReturns(ctx context.Context, userID string) (*InvestmentReturnsSummary, error) {
	positions, err := s.positionRepo.ListInvestmentPositions(ctx, s.dbExecutor, userID)
	if err != nil {
		return nil, fmt.Errorf("investment returns: %w", err)
	}

	summary := &InvestmentReturnsSummary{
		TotalInvested:   decimal.Zero,
		TotalEarned:     decimal.Zero,
		ExpectedReturns: decimal.Zero,
	}
	for i := range positions {
		summary.TotalInvested = summary.TotalInvested.Add(positions[i].Amount)
		summary.TotalEarned = summary.TotalEarned.Add(positions[i].ReturnsEarned)
		if positions[i].Status == domain.PositionStatusActive {
			summary.ActivePositions++
			summary.ExpectedReturns = summary.ExpectedReturns.Add(positions[i].Reward())
		}
	}
	return summary, nil
}

// settleInvestment is the investment counterpart of settleStaking: one
// REWARD transaction, no separate principal entry.
func (s *positionService) settleInvestment(ctx context.Context, position *domain.InvestmentPosition, settlement domain.Settlement) (bool, error) {
	txController, err := s.beginTx(ctx, s.dbBeginner)
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer s.rollbackTx(txController)

	txExecutor, ok := txController.(repository.DBExecutor)
	if !ok {
		return false, fmt.Errorf("transaction controller does not implement DBExecutor")
	}

	settled, err := s.positionRepo.CompleteInvestmentPosition(ctx, txExecutor, position.ID, settlement.Reward)
	if err != nil {
		return false, err
	}
	if !settled {
		return false, nil
	}

	if err := s.walletRepo.SettleLocked(ctx, txExecutor, position.UserID, settlement.Principal, settlement.Reward); err != nil {
		return false, err
	}

	rewardTx := domain.NewTransaction(position.UserID, domain.TransactionTypeReward, settlement.Reward, domain.TransactionStatusCompleted,
		fmt.Sprintf("Investment returns from %s package", position.Package),
		domain.Metadata{"position_id": position.ID})
	if err := s.transactionRepo.CreateTransaction(ctx, txExecutor, rewardTx); err != nil {
		return false, err
	}

	if err := s.commitTx(txController); err != nil {
		return false, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return true, nil
}
