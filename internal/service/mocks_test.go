// internal/service/mocks_test.go
package service

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"doctrade-ledger/internal/domain"
	"doctrade-ledger/internal/repository"
	"doctrade-ledger/pkg/db"
)

// MockDBExecutor is a mock implementation of repository.DBExecutor.
type MockDBExecutor struct {
	mock.Mock
}

func (m *MockDBExecutor) GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error {
	argsCalled := m.Called(ctx, dest, query, args)
	return argsCalled.Error(0)
}

func (m *MockDBExecutor) SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error {
	argsCalled := m.Called(ctx, dest, query, args)
	return argsCalled.Error(0)
}

func (m *MockDBExecutor) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	argsCalled := m.Called(ctx, query, args)
	return argsCalled.Get(0).(sql.Result), argsCalled.Error(1)
}

func (m *MockDBExecutor) QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row {
	m.Called(ctx, query, args)
	return &sql.Row{}
}

// MockDBBeginner is a mock implementation of db.DBTxBeginner.
type MockDBBeginner struct {
	mock.Mock
}

func (m *MockDBBeginner) BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error) {
	args := m.Called(ctx, opts)
	return &sqlx.Tx{}, args.Error(1)
}

// MockTxController is a mock implementation of db.TxController. It embeds
// MockDBExecutor so the service layer can cast it to repository.DBExecutor.
type MockTxController struct {
	mock.Mock
	MockDBExecutor
}

func (m *MockTxController) Commit() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockTxController) Rollback() error {
	args := m.Called()
	return args.Error(0)
}

// txFuncs wires a MockTxController into the injected transaction functions.
func txFuncs(controller *MockTxController) (db.BeginTxFunc, db.CommitTxFunc, db.RollbackTxFunc) {
	begin := func(ctx context.Context, dbConn db.DBTxBeginner) (db.TxController, error) {
		return controller, nil
	}
	commit := func(tx db.TxController) error {
		return controller.Commit()
	}
	rollback := func(tx db.TxController) {
		_ = controller.Rollback()
	}
	return begin, commit, rollback
}

// MockUserRepository is a mock implementation of repository.UserRepository.
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) CreateUser(ctx context.Context, q repository.DBExecutor, user *domain.User) error {
	args := m.Called(ctx, q, user)
	return args.Error(0)
}

func (m *MockUserRepository) GetUserByID(ctx context.Context, q repository.DBExecutor, id string) (*domain.User, error) {
	args := m.Called(ctx, q, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) GetUserByUsername(ctx context.Context, q repository.DBExecutor, username string) (*domain.User, error) {
	args := m.Called(ctx, q, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

// MockWalletRepository is a mock implementation of repository.WalletRepository.
type MockWalletRepository struct {
	mock.Mock
}

func (m *MockWalletRepository) CreateWallet(ctx context.Context, q repository.DBExecutor, wallet *domain.Wallet) error {
	args := m.Called(ctx, q, wallet)
	return args.Error(0)
}

func (m *MockWalletRepository) GetWalletByUserID(ctx context.Context, q repository.DBExecutor, userID string) (*domain.Wallet, error) {
	args := m.Called(ctx, q, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Wallet), args.Error(1)
}

func (m *MockWalletRepository) Credit(ctx context.Context, q repository.DBExecutor, userID string, amount decimal.Decimal) error {
	args := m.Called(ctx, q, userID, amount)
	return args.Error(0)
}

func (m *MockWalletRepository) Debit(ctx context.Context, q repository.DBExecutor, userID string, amount decimal.Decimal) error {
	args := m.Called(ctx, q, userID, amount)
	return args.Error(0)
}

func (m *MockWalletRepository) Lock(ctx context.Context, q repository.DBExecutor, userID string, amount decimal.Decimal) error {
	args := m.Called(ctx, q, userID, amount)
	return args.Error(0)
}

func (m *MockWalletRepository) Unlock(ctx context.Context, q repository.DBExecutor, userID string, amount decimal.Decimal) error {
	args := m.Called(ctx, q, userID, amount)
	return args.Error(0)
}

func (m *MockWalletRepository) SettleLocked(ctx context.Context, q repository.DBExecutor, userID string, principal, reward decimal.Decimal) error {
	args := m.Called(ctx, q, userID, principal, reward)
	return args.Error(0)
}

func (m *MockWalletRepository) DebitLocked(ctx context.Context, q repository.DBExecutor, userID string, amount decimal.Decimal) error {
	args := m.Called(ctx, q, userID, amount)
	return args.Error(0)
}

// MockTransactionRepository is a mock implementation of repository.TransactionRepository.
type MockTransactionRepository struct {
	mock.Mock
}

func (m *MockTransactionRepository) CreateTransaction(ctx context.Context, q repository.DBExecutor, transaction *domain.Transaction) error {
	args := m.Called(ctx, q, transaction)
	return args.Error(0)
}

func (m *MockTransactionRepository) GetTransactionsByUserID(ctx context.Context, q repository.DBExecutor, userID string, txType string, limit, offset int) ([]domain.Transaction, int64, error) {
	args := m.Called(ctx, q, userID, txType, limit, offset)
	return args.Get(0).([]domain.Transaction), args.Get(1).(int64), args.Error(2)
}

func (m *MockTransactionRepository) SetStatus(ctx context.Context, q repository.DBExecutor, transactionID string, status domain.TransactionStatus) error {
	args := m.Called(ctx, q, transactionID, status)
	return args.Error(0)
}

func (m *MockTransactionRepository) HasCompletedPurchase(ctx context.Context, q repository.DBExecutor, userID, documentID string) (bool, error) {
	args := m.Called(ctx, q, userID, documentID)
	return args.Bool(0), args.Error(1)
}

// MockPositionRepository is a mock implementation of repository.PositionRepository.
type MockPositionRepository struct {
	mock.Mock
}

func (m *MockPositionRepository) CreateStakingPosition(ctx context.Context, q repository.DBExecutor, position *domain.StakingPosition) error {
	args := m.Called(ctx, q, position)
	return args.Error(0)
}

func (m *MockPositionRepository) GetStakingPosition(ctx context.Context, q repository.DBExecutor, userID, positionID string) (*domain.StakingPosition, error) {
	args := m.Called(ctx, q, userID, positionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.StakingPosition), args.Error(1)
}

func (m *MockPositionRepository) ListStakingPositions(ctx context.Context, q repository.DBExecutor, userID string) ([]domain.StakingPosition, error) {
	args := m.Called(ctx, q, userID)
	return args.Get(0).([]domain.StakingPosition), args.Error(1)
}

func (m *MockPositionRepository) CompleteStakingPosition(ctx context.Context, q repository.DBExecutor, positionID string, reward decimal.Decimal) (bool, error) {
	args := m.Called(ctx, q, positionID, reward)
	return args.Bool(0), args.Error(1)
}

func (m *MockPositionRepository) CreateInvestmentPosition(ctx context.Context, q repository.DBExecutor, position *domain.InvestmentPosition) error {
	args := m.Called(ctx, q, position)
	return args.Error(0)
}

func (m *MockPositionRepository) ListInvestmentPositions(ctx context.Context, q repository.DBExecutor, userID string) ([]domain.InvestmentPosition, error) {
	args := m.Called(ctx, q, userID)
	return args.Get(0).([]domain.InvestmentPosition), args.Error(1)
}

func (m *MockPositionRepository) CompleteInvestmentPosition(ctx context.Context, q repository.DBExecutor, positionID string, reward decimal.Decimal) (bool, error) {
	args := m.Called(ctx, q, positionID, reward)
	return args.Bool(0), args.Error(1)
}

// MockDocumentRepository is a mock implementation of repository.DocumentRepository.
type MockDocumentRepository struct {
	mock.Mock
}

func (m *MockDocumentRepository) GetDocumentByID(ctx context.Context, q repository.DBExecutor, id string) (*domain.Document, error) {
	args := m.Called(ctx, q, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Document), args.Error(1)
}

func (m *MockDocumentRepository) RecordSale(ctx context.Context, q repository.DBExecutor, id string, price decimal.Decimal) error {
	args := m.Called(ctx, q, id, price)
	return args.Error(0)
}

// MockDocumentInvestmentRepository is a mock implementation of repository.DocumentInvestmentRepository.
type MockDocumentInvestmentRepository struct {
	mock.Mock
}

func (m *MockDocumentInvestmentRepository) CreateDocumentInvestment(ctx context.Context, q repository.DBExecutor, investment *domain.DocumentInvestment) error {
	args := m.Called(ctx, q, investment)
	return args.Error(0)
}

func (m *MockDocumentInvestmentRepository) ListByUserID(ctx context.Context, q repository.DBExecutor, userID string) ([]domain.DocumentInvestment, error) {
	args := m.Called(ctx, q, userID)
	return args.Get(0).([]domain.DocumentInvestment), args.Error(1)
}

func (m *MockDocumentInvestmentRepository) ListByDocumentID(ctx context.Context, q repository.DBExecutor, documentID string) ([]domain.DocumentInvestment, error) {
	args := m.Called(ctx, q, documentID)
	return args.Get(0).([]domain.DocumentInvestment), args.Error(1)
}

func (m *MockDocumentInvestmentRepository) SumSharePercentage(ctx context.Context, q repository.DBExecutor, documentID string) (decimal.Decimal, error) {
	args := m.Called(ctx, q, documentID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockDocumentInvestmentRepository) AddRevenue(ctx context.Context, q repository.DBExecutor, investmentID string, amount decimal.Decimal) error {
	args := m.Called(ctx, q, investmentID, amount)
	return args.Error(0)
}

// MockRequestRepository is a mock implementation of repository.RequestRepository.
type MockRequestRepository struct {
	mock.Mock
}

func (m *MockRequestRepository) CreateDepositRequest(ctx context.Context, q repository.DBExecutor, req *domain.DepositRequest) error {
	args := m.Called(ctx, q, req)
	return args.Error(0)
}

func (m *MockRequestRepository) GetDepositRequestByID(ctx context.Context, q repository.DBExecutor, id string) (*domain.DepositRequest, error) {
	args := m.Called(ctx, q, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DepositRequest), args.Error(1)
}

func (m *MockRequestRepository) MarkDepositProcessed(ctx context.Context, q repository.DBExecutor, id string, status domain.TransactionStatus, processedBy, reason string) error {
	args := m.Called(ctx, q, id, status, processedBy, reason)
	return args.Error(0)
}

func (m *MockRequestRepository) CreateWithdrawalRequest(ctx context.Context, q repository.DBExecutor, req *domain.WithdrawalRequest) error {
	args := m.Called(ctx, q, req)
	return args.Error(0)
}

func (m *MockRequestRepository) GetWithdrawalRequestByID(ctx context.Context, q repository.DBExecutor, id string) (*domain.WithdrawalRequest, error) {
	args := m.Called(ctx, q, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.WithdrawalRequest), args.Error(1)
}

func (m *MockRequestRepository) MarkWithdrawalProcessed(ctx context.Context, q repository.DBExecutor, id string, status domain.TransactionStatus, processedBy, reason string) error {
	args := m.Called(ctx, q, id, status, processedBy, reason)
	return args.Error(0)
}
