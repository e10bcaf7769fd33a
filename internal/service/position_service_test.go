// internal/service/position_service_test.go
package service

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"doctrade-ledger/internal/audit"
	"doctrade-ledger/internal/config"
	"doctrade-ledger/internal/domain"
	"doctrade-ledger/internal/util"
)

// positionFixture bundles the mocks behind a PositionService under test.
type positionFixture struct {
	walletRepo      *MockWalletRepository
	transactionRepo *MockTransactionRepository
	positionRepo    *MockPositionRepository
	dbBeginner      *MockDBBeginner
	txController    *MockTxController
	service         PositionService
}

func newPositionFixture() *positionFixture {
	f := &positionFixture{
		walletRepo:      new(MockWalletRepository),
		transactionRepo: new(MockTransactionRepository),
		positionRepo:    new(MockPositionRepository),
		dbBeginner:      new(MockDBBeginner),
		txController:    new(MockTxController),
	}
	plans := map[string]config.StakingPlan{
		"basic": {Name: "basic", MinAmount: decimal.NewFromInt(100), APY: decimal.NewFromInt(5), LockDays: 30},
	}
	packages := map[string]config.InvestmentPackage{
		"starter": {Name: "starter", Price: decimal.NewFromInt(500), ExpectedReturn: decimal.NewFromInt(8), DurationDays: 60},
	}
	begin, commit, rollback := txFuncs(f.txController)
	f.service = NewPositionService(
		f.dbBeginner,
		new(MockDBExecutor),
		f.walletRepo,
		f.transactionRepo,
		f.positionRepo,
		plans,
		packages,
		audit.NopSink{},
		begin,
		commit,
		rollback,
	)
	return f
}

func (f *positionFixture) assertExpectations(t *testing.T) {
	mock.AssertExpectationsForObjects(t, f.walletRepo, f.transactionRepo, f.positionRepo, f.txController)
}

// decimalEq matches a decimal argument by value, not representation.
func decimalEq(want decimal.Decimal) interface{} {
	return mock.MatchedBy(func(got decimal.Decimal) bool { return got.Equal(want) })
}

func TestStake(t *testing.T) {
	userID := "user-1"

	t.Run("Success", func(t *testing.T) {
		ctx := context.Background()
		f := newPositionFixture()
		amount := decimal.NewFromInt(250)

		f.walletRepo.On("Lock", ctx, mock.Anything, userID, amount).Return(nil).Once()
		f.positionRepo.On("CreateStakingPosition", ctx, mock.Anything, mock.AnythingOfType("*domain.StakingPosition")).Return(nil).Once()
		f.transactionRepo.On("CreateTransaction", ctx, mock.Anything, mock.MatchedBy(func(tx *domain.Transaction) bool {
			return tx.Type == domain.TransactionTypeStaking && tx.Status == domain.TransactionStatusCompleted
		})).Return(nil).Once()
		f.txController.On("Commit").Return(nil).Once()
		f.txController.On("Rollback").Return(nil).Maybe()

		position, err := f.service.Stake(ctx, userID, "basic", amount)

		assert.NoError(t, err)
		assert.NotNil(t, position)
		assert.Equal(t, domain.PositionStatusActive, position.Status)
		assert.True(t, position.APY.Equal(decimal.NewFromInt(5)))
		assert.WithinDuration(t, time.Now().UTC().Add(30*24*time.Hour), position.LockedUntil, time.Minute)
		f.assertExpectations(t)
	})

	t.Run("UnknownPlan", func(t *testing.T) {
		ctx := context.Background()
		f := newPositionFixture()

		position, err := f.service.Stake(ctx, userID, "platinum", decimal.NewFromInt(250))

		assert.ErrorIs(t, err, util.ErrInvalidPlan)
		assert.Nil(t, position)
		f.txController.AssertNotCalled(t, "Commit")
		f.assertExpectations(t)
	})

	t.Run("BelowPlanMinimum", func(t *testing.T) {
		ctx := context.Background()
		f := newPositionFixture()

		position, err := f.service.Stake(ctx, userID, "basic", decimal.NewFromInt(50))

		assert.ErrorIs(t, err, util.ErrBelowMinimum)
		assert.Nil(t, position)
		f.walletRepo.AssertNotCalled(t, "Lock", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		f.assertExpectations(t)
	})
}

func TestUnstake(t *testing.T) {
	userID := "user-1"

	// maturedPosition is locked for 30 days and 31 days old, so it is due
	// and its reward covers exactly 31 whole days.
	maturedPosition := func() *domain.StakingPosition {
		created := time.Now().UTC().Add(-31 * 24 * time.Hour)
		return domain.NewStakingPosition(userID, "basic", decimal.NewFromInt(1000), decimal.NewFromInt(5), 30, created)
	}

	t.Run("SettlesMaturedPosition", func(t *testing.T) {
		ctx := context.Background()
		f := newPositionFixture()
		position := maturedPosition()
		expectedReward := position.Amount.
			Mul(position.APY).
			Div(decimal.NewFromInt(100)).
			Div(decimal.NewFromInt(365)).
			Mul(decimal.NewFromInt(31))

		f.positionRepo.On("GetStakingPosition", ctx, mock.Anything, userID, position.ID).Return(position, nil).Once()
		f.positionRepo.On("CompleteStakingPosition", ctx, mock.Anything, position.ID, decimalEq(expectedReward)).Return(true, nil).Once()
		f.walletRepo.On("SettleLocked", ctx, mock.Anything, userID, decimalEq(position.Amount), decimalEq(expectedReward)).Return(nil).Once()
		f.transactionRepo.On("CreateTransaction", ctx, mock.Anything, mock.MatchedBy(func(tx *domain.Transaction) bool {
			return tx.Type == domain.TransactionTypeUnstaking
		})).Return(nil).Once()
		f.transactionRepo.On("CreateTransaction", ctx, mock.Anything, mock.MatchedBy(func(tx *domain.Transaction) bool {
			return tx.Type == domain.TransactionTypeReward
		})).Return(nil).Once()
		f.txController.On("Commit").Return(nil).Once()
		f.txController.On("Rollback").Return(nil).Maybe()

		settled, err := f.service.Unstake(ctx, userID, position.ID)

		assert.NoError(t, err)
		assert.NotNil(t, settled)
		assert.Equal(t, domain.PositionStatusCompleted, settled.Status)
		assert.True(t, settled.RewardsEarned.Equal(expectedReward))
		f.assertExpectations(t)
	})

	t.Run("StillLocked", func(t *testing.T) {
		ctx := context.Background()
		f := newPositionFixture()
		position := domain.NewStakingPosition(userID, "basic", decimal.NewFromInt(1000), decimal.NewFromInt(5), 30, time.Now().UTC())

		f.positionRepo.On("GetStakingPosition", ctx, mock.Anything, userID, position.ID).Return(position, nil).Once()

		settled, err := f.service.Unstake(ctx, userID, position.ID)

		assert.ErrorIs(t, err, util.ErrStillLocked)
		assert.Nil(t, settled)
		f.walletRepo.AssertNotCalled(t, "SettleLocked", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		f.assertExpectations(t)
	})

	t.Run("AlreadyCompleted", func(t *testing.T) {
		ctx := context.Background()
		f := newPositionFixture()
		position := maturedPosition()
		position.Status = domain.PositionStatusCompleted

		f.positionRepo.On("GetStakingPosition", ctx, mock.Anything, userID, position.ID).Return(position, nil).Once()

		settled, err := f.service.Unstake(ctx, userID, position.ID)

		assert.ErrorIs(t, err, util.ErrAlreadyProcessed)
		assert.Nil(t, settled)
		f.assertExpectations(t)
	})

	t.Run("LostSettlementRace", func(t *testing.T) {
		ctx := context.Background()
		f := newPositionFixture()
		position := maturedPosition()

		// Another evaluation completed the position between the read and
		// the compare-and-set, so nothing else may happen.
		f.positionRepo.On("GetStakingPosition", ctx, mock.Anything, userID, position.ID).Return(position, nil).Once()
		f.positionRepo.On("CompleteStakingPosition", ctx, mock.Anything, position.ID, mock.Anything).Return(false, nil).Once()
		f.txController.On("Rollback").Return(nil).Once()

		settled, err := f.service.Unstake(ctx, userID, position.ID)

		assert.ErrorIs(t, err, util.ErrAlreadyProcessed)
		assert.Nil(t, settled)
		f.walletRepo.AssertNotCalled(t, "SettleLocked", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		f.txController.AssertNotCalled(t, "Commit")
		f.assertExpectations(t)
	})
}

func TestStakingPositions(t *testing.T) {
	userID := "user-1"

	t.Run("SettlesMaturedDuringList", func(t *testing.T) {
		ctx := context.Background()
		f := newPositionFixture()

		active := domain.NewStakingPosition(userID, "basic", decimal.NewFromInt(500), decimal.NewFromInt(5), 30, time.Now().UTC())
		matured := domain.NewStakingPosition(userID, "basic", decimal.NewFromInt(1000), decimal.NewFromInt(5), 30,
			time.Now().UTC().Add(-40*24*time.Hour))

		f.positionRepo.On("ListStakingPositions", ctx, mock.Anything, userID).
			Return([]domain.StakingPosition{*active, *matured}, nil).Once()
		f.positionRepo.On("CompleteStakingPosition", ctx, mock.Anything, matured.ID, mock.Anything).Return(true, nil).Once()
		f.walletRepo.On("SettleLocked", ctx, mock.Anything, userID, decimalEq(matured.Amount), mock.Anything).Return(nil).Once()
		f.transactionRepo.On("CreateTransaction", ctx, mock.Anything, mock.AnythingOfType("*domain.Transaction")).Return(nil).Twice()
		f.txController.On("Commit").Return(nil).Once()
		f.txController.On("Rollback").Return(nil).Maybe()

		positions, err := f.service.StakingPositions(ctx, userID)

		assert.NoError(t, err)
		assert.Len(t, positions, 2)
		assert.Equal(t, domain.PositionStatusActive, positions[0].Status)
		assert.Equal(t, domain.PositionStatusCompleted, positions[1].Status)
		assert.True(t, positions[1].RewardsEarned.GreaterThan(decimal.Zero))
		f.assertExpectations(t)
	})
}

func TestStakingRewards(t *testing.T) {
	userID := "user-1"

	t.Run("SumsEarnedAndPending", func(t *testing.T) {
		ctx := context.Background()
		f := newPositionFixture()

		// Active for 10 whole days: pending = 1000 * 5% / 365 * 10.
		active := domain.NewStakingPosition(userID, "basic", decimal.NewFromInt(1000), decimal.NewFromInt(5), 30,
			time.Now().UTC().Add(-10*24*time.Hour))
		completed := domain.NewStakingPosition(userID, "basic", decimal.NewFromInt(500), decimal.NewFromInt(5), 30,
			time.Now().UTC().Add(-60*24*time.Hour))
		completed.Status = domain.PositionStatusCompleted
		completed.RewardsEarned = decimal.NewFromFloat(2.05)

		f.positionRepo.On("ListStakingPositions", ctx, mock.Anything, userID).
			Return([]domain.StakingPosition{*active, *completed}, nil).Once()

		summary, err := f.service.StakingRewards(ctx, userID)

		assert.NoError(t, err)
		assert.Equal(t, 1, summary.ActivePositions)
		assert.True(t, summary.TotalEarned.Equal(decimal.NewFromFloat(2.05)))
		expectedPending := decimal.NewFromInt(1000).
			Mul(decimal.NewFromInt(5)).
			Div(decimal.NewFromInt(100)).
			Div(decimal.NewFromInt(365)).
			Mul(decimal.NewFromInt(10))
		assert.True(t, summary.PendingRewards.Equal(expectedPending))
		f.assertExpectations(t)
	})
}

func TestInvest(t *testing.T) {
	userID := "user-1"

	t.Run("Success", func(t *testing.T) {
		ctx := context.Background()
		f := newPositionFixture()
		price := decimal.NewFromInt(500)

		f.walletRepo.On("Lock", ctx, mock.Anything, userID, price).Return(nil).Once()
		f.positionRepo.On("CreateInvestmentPosition", ctx, mock.Anything, mock.AnythingOfType("*domain.InvestmentPosition")).Return(nil).Once()
		f.transactionRepo.On("CreateTransaction", ctx, mock.Anything, mock.MatchedBy(func(tx *domain.Transaction) bool {
			return tx.Type == domain.TransactionTypeInvestment && tx.Amount.Equal(price)
		})).Return(nil).Once()
		f.txController.On("Commit").Return(nil).Once()
		f.txController.On("Rollback").Return(nil).Maybe()

		position, err := f.service.Invest(ctx, userID, "starter")

		assert.NoError(t, err)
		assert.NotNil(t, position)
		assert.True(t, position.Amount.Equal(price))
		assert.True(t, position.ExpectedReturn.Equal(decimal.NewFromInt(8)))
		f.assertExpectations(t)
	})

	t.Run("UnknownPackage", func(t *testing.T) {
		ctx := context.Background()
		f := newPositionFixture()

		position, err := f.service.Invest(ctx, userID, "diamond")

		assert.ErrorIs(t, err, util.ErrInvalidPackage)
		assert.Nil(t, position)
		f.walletRepo.AssertNotCalled(t, "Lock", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		f.assertExpectations(t)
	})
}

func TestInvestmentPortfolio(t *testing.T) {
	userID := "user-1"

	t.Run("SettlesExpiredWithFlatReturn", func(t *testing.T) {
		ctx := context.Background()
		f := newPositionFixture()

		expired := domain.NewInvestmentPosition(userID, "starter", decimal.NewFromInt(500), decimal.NewFromInt(8), 60,
			time.Now().UTC().Add(-90*24*time.Hour))
		// Flat return regardless of how long past expiry: 500 * 8% = 40.
		expectedReward := decimal.NewFromInt(40)

		f.positionRepo.On("ListInvestmentPositions", ctx, mock.Anything, userID).
			Return([]domain.InvestmentPosition{*expired}, nil).Once()
		f.positionRepo.On("CompleteInvestmentPosition", ctx, mock.Anything, expired.ID, decimalEq(expectedReward)).Return(true, nil).Once()
		f.walletRepo.On("SettleLocked", ctx, mock.Anything, userID, decimalEq(expired.Amount), decimalEq(expectedReward)).Return(nil).Once()
		f.transactionRepo.On("CreateTransaction", ctx, mock.Anything, mock.MatchedBy(func(tx *domain.Transaction) bool {
			return tx.Type == domain.TransactionTypeReward
		})).Return(nil).Once()
		f.txController.On("Commit").Return(nil).Once()
		f.txController.On("Rollback").Return(nil).Maybe()

		positions, err := f.service.InvestmentPortfolio(ctx, userID)

		assert.NoError(t, err)
		assert.Len(t, positions, 1)
		assert.Equal(t, domain.PositionStatusCompleted, positions[0].Status)
		assert.True(t, positions[0].ReturnsEarned.Equal(expectedReward))
		f.assertExpectations(t)
	})

	t.Run("LostSettlementRaceKeepsListing", func(t *testing.T) {
		ctx := context.Background()
		f := newPositionFixture()

		expired := domain.NewInvestmentPosition(userID, "starter", decimal.NewFromInt(500), decimal.NewFromInt(8), 60,
			time.Now().UTC().Add(-90*24*time.Hour))

		f.positionRepo.On("ListInvestmentPositions", ctx, mock.Anything, userID).
			Return([]domain.InvestmentPosition{*expired}, nil).Once()
		f.positionRepo.On("CompleteInvestmentPosition", ctx, mock.Anything, expired.ID, mock.Anything).Return(false, nil).Once()
		f.txController.On("Rollback").Return(nil).Once()

		positions, err := f.service.InvestmentPortfolio(ctx, userID)

		assert.NoError(t, err)
		assert.Len(t, positions, 1)
		f.walletRepo.AssertNotCalled(t, "SettleLocked", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		f.assertExpectations(t)
	})
}
