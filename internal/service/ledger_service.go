// internal/service/ledger_service.go
package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"doctrade-ledger/internal/audit"
	"doctrade-ledger/internal/domain"
	"doctrade-ledger/internal/repository"
	"doctrade-ledger/internal/util"
	"doctrade-ledger/pkg/db"
)

// LedgerService owns wallet balances and the transaction log. Each
// operation runs in one database transaction: the balance mutation and its
// ledger record commit together or not at all.
type LedgerService interface {
	CreateUserAndWallet(ctx context.Context, username string) (*domain.User, *domain.Wallet, error)
	GetBalance(ctx context.Context, userID string) (*domain.Wallet, error)
	GetTransactionHistory(ctx context.Context, userID, txType string, limit, offset int) ([]domain.Transaction, int64, error)

	// Balance primitives. Each pairs the wallet mutation with exactly one
	// transaction record of the caller-chosen type.
	Credit(ctx context.Context, userID string, amount decimal.Decimal, txType domain.TransactionType, description string, metadata domain.Metadata) (*domain.Transaction, error)
	Debit(ctx context.Context, userID string, amount decimal.Decimal, txType domain.TransactionType, description string, metadata domain.Metadata) (*domain.Transaction, error)
	Transfer(ctx context.Context, fromUserID, toUserID string, amount decimal.Decimal, description string, metadata domain.Metadata) error

	// Deposit/withdrawal request lifecycle.
	RequestDeposit(ctx context.Context, userID string, amount decimal.Decimal, method, proof string) (*domain.DepositRequest, error)
	RequestWithdrawal(ctx context.Context, userID string, amount decimal.Decimal, method, address string) (*domain.WithdrawalRequest, error)
	ProcessDeposit(ctx context.Context, adminID, requestID string, approved bool, reason string) error
	ProcessWithdrawal(ctx context.Context, adminID, requestID string, approved bool, reason string) error
}

type ledgerService struct {
	dbBeginner      db.DBTxBeginner
	dbExecutor      repository.DBExecutor
	userRepo        repository.UserRepository
	walletRepo      repository.WalletRepository
	transactionRepo repository.TransactionRepository
	requestRepo     repository.RequestRepository
	auditSink       audit.Sink
	beginTx         db.BeginTxFunc
	commitTx        db.CommitTxFunc
	rollbackTx      db.RollbackTxFunc
}

// NewLedgerService creates a new instance of LedgerService.
func NewLedgerService(
	dbBeginner db.DBTxBeginner,
	dbExecutor repository.DBExecutor,
	userRepo repository.UserRepository,
	walletRepo repository.WalletRepository,
	transactionRepo repository.TransactionRepository,
	requestRepo repository.RequestRepository,
	auditSink audit.Sink,
	beginTx db.BeginTxFunc,
	commitTx db.CommitTxFunc,
	rollbackTx db.RollbackTxFunc,
) LedgerService {
	return &ledgerService{
		dbBeginner:      dbBeginner,
		dbExecutor:      dbExecutor,
		userRepo:        userRepo,
		walletRepo:      walletRepo,
		transactionRepo: transactionRepo,
		requestRepo:     requestRepo,
		auditSink:       auditSink,
		beginTx:         beginTx,
		commitTx:        commitTx,
		rollbackTx:      rollbackTx,
	}
}

// CreateUserAndWallet creates a user and its wallet atomically. The wallet
// exists for as long as the user does.
func (s *ledgerService) CreateUserAndWallet(ctx context.Context, username string) (*domain.User, *domain.Wallet, error) {
	txController, err := s.beginTx(ctx, s.dbBeginner)
	if err != nil {
		return nil, nil, fmt.Errorf("create user and wallet: failed to begin transaction: %w", err)
	}
	defer s.rollbackTx(txController)

	txExecutor, ok := txController.(repository.DBExecutor)
	if !ok {
		return nil, nil, fmt.Errorf("create user and wallet: transaction controller does not implement DBExecutor")
	}

	_, err = s.userRepo.GetUserByUsername(ctx, txExecutor, username)
	if err == nil {
		return nil, nil, util.ErrDuplicateEntry
	}
	if !errors.Is(err, util.ErrNotFound) {
		return nil, nil, fmt.Errorf("create user and wallet: failed to check existing user: %w", err)
	}

	user := domain.NewUser(username)
	if err := s.userRepo.CreateUser(ctx, txExecutor, user); err != nil {
		return nil, nil, fmt.Errorf("create user and wallet: failed to create user: %w", err)
	}

	wallet := domain.NewWallet(user.ID)
	if err := s.walletRepo.CreateWallet(ctx, txExecutor, wallet); err != nil {
		return nil, nil, fmt.Errorf("create user and wallet: failed to create wallet: %w", err)
	}

	if err := s.commitTx(txController); err != nil {
		return nil, nil, fmt.Errorf("create user and wallet: failed to commit transaction: %w", err)
	}

	s.auditSink.Record(ctx, user.ID, "USER_CREATED", map[string]any{"username": username})
	return user, wallet, nil
}

// GetBalance retrieves a user's wallet.
func (s *ledgerService) GetBalance(ctx context.Context, userID string) (*domain.Wallet, error) {
	wallet, err := s.walletRepo.GetWalletByUserID(ctx, s.dbExecutor, userID)
	if err != nil {
		return nil, fmt.Errorf("get balance: %w", err)
	}
	return wallet, nil
}

// GetTransactionHistory retrieves a page of a user's ledger entries.
func (s *ledgerService) GetTransactionHistory(ctx context.Context, userID, txType string, limit, offset int) ([]domain.Transaction, int64, error) {
	transactions, totalCount, err := s.transactionRepo.GetTransactionsByUserID(ctx, s.dbExecutor, userID, txType, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to retrieve transaction history: %w", err)
	}
	return transactions, totalCount, nil
}

// Credit increases a wallet's balance and records the matching completed
// transaction.
func (s *ledgerService) Credit(ctx context.Context, userID string, amount decimal.Decimal, txType domain.TransactionType, description string, metadata domain.Metadata) (*domain.Transaction, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, util.ErrInvalidInput
	}

	txController, err := s.beginTx(ctx, s.dbBeginner)
	if err != nil {
		return nil, fmt.Errorf("credit: failed to begin transaction: %w", err)
	}
	defer s.rollbackTx(txController)

	txExecutor, ok := txController.(repository.DBExecutor)
	if !ok {
		return nil, fmt.Errorf("credit: transaction controller does not implement DBExecutor")
	}

	if err := s.walletRepo.Credit(ctx, txExecutor, userID, amount); err != nil {
		return nil, fmt.Errorf("credit: %w", err)
	}

	transaction := domain.NewTransaction(userID, txType, amount, domain.TransactionStatusCompleted, description, metadata)
	if err := s.transactionRepo.CreateTransaction(ctx, txExecutor, transaction); err != nil {
		return nil, fmt.Errorf("credit: failed to create transaction: %w", err)
	}

	if err := s.commitTx(txController); err != nil {
		return nil, fmt.Errorf("credit: failed to commit transaction: %w", err)
	}
	return transaction, nil
}

// Debit decreases a wallet's balance if the available portion covers the
// amount, and records the matching completed transaction.
func (s *ledgerService) Debit(ctx context.Context, userID string, amount decimal.Decimal, txType domain.TransactionType, description string, metadata domain.Metadata) (*domain.Transaction, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, util.ErrInvalidInput
	}

	txController, err := s.beginTx(ctx, s.dbBeginner)
	if err != nil {
		return nil, fmt.Errorf("debit: failed to begin transaction: %w", err)
	}
	defer s.rollbackTx(txController)

	txExecutor, ok := txController.(repository.DBExecutor)
	if !ok {
		return nil, fmt.Errorf("debit: transaction controller does not implement DBExecutor")
	}

	if err := s.walletRepo.Debit(ctx, txExecutor, userID, amount); err != nil {
		return nil, fmt.Errorf("debit: %w", err)
	}

	transaction := domain.NewTransaction(userID, txType, amount, domain.TransactionStatusCompleted, description, metadata)
	if err := s.transactionRepo.CreateTransaction(ctx, txExecutor, transaction); err != nil {
		return nil, fmt.Errorf("debit: failed to create transaction: %w", err)
	}

	if err := s.commitTx(txController); err != nil {
		return nil, fmt.Errorf("debit: failed to commit transaction: %w", err)
	}
	return transaction, nil
}

// Transfer moves amount between two wallets: debit then credit in one
// database transaction. A failed debit leaves both wallets untouched.
func (s *ledgerService) Transfer(ctx context.Context, fromUserID, toUserID string, amount decimal.Decimal, description string, metadata domain.Metadata) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return util.ErrInvalidInput
	}
	if fromUserID == toUserID {
		return util.ErrSameWalletTransfer
	}

	txController, err := s.beginTx(ctx, s.dbBeginner)
	if err != nil {
		return fmt.Errorf("transfer: failed to begin transaction: %w", err)
	}
	defer s.rollbackTx(txController)

	txExecutor, ok := txController.(repository.DBExecutor)
	if !ok {
		return fmt.Errorf("transfer: transaction controller does not implement DBExecutor")
	}

	if err := s.walletRepo.Debit(ctx, txExecutor, fromUserID, amount); err != nil {
		return fmt.Errorf("transfer: %w", err)
	}
	if err := s.walletRepo.Credit(ctx, txExecutor, toUserID, amount); err != nil {
		return fmt.Errorf("transfer: %w", err)
	}

	outTx := domain.NewTransaction(fromUserID, domain.TransactionTypePurchase, amount, domain.TransactionStatusCompleted, description, metadata)
	if err := s.transactionRepo.CreateTransaction(ctx, txExecutor, outTx); err != nil {
		return fmt.Errorf("transfer: failed to create debit transaction: %w", err)
	}
	inTx := domain.NewTransaction(toUserID, domain.TransactionTypeSale, amount, domain.TransactionStatusCompleted, description, metadata)
	if err := s.transactionRepo.CreateTransaction(ctx, txExecutor, inTx); err != nil {
		return fmt.Errorf("transfer: failed to create credit transaction: %w", err)
	}

	if err := s.commitTx(txController); err != nil {
		return fmt.Errorf("transfer: failed to commit transaction: %w", err)
	}
	return nil
}

// RequestDeposit records a deposit awaiting admin approval. No funds move
// until the request is processed.
func (s *ledgerService) RequestDeposit(ctx context.Context, userID string, amount decimal.Decimal, method, proof string) (*domain.DepositRequest, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, util.ErrInvalidInput
	}

	txController, err := s.beginTx(ctx, s.dbBeginner)
	if err != nil {
		return nil, fmt.Errorf("request deposit: failed to begin transaction: %w", err)
	}
	defer s.rollbackTx(txController)

	txExecutor, ok := txController.(repository.DBExecutor)
	if !ok {
		return nil, fmt.Errorf("request deposit: transaction controller does not implement DBExecutor")
	}

	transaction := domain.NewTransaction(userID, domain.TransactionTypeDeposit, amount, domain.TransactionStatusPending,
		fmt.Sprintf("Deposit request via %s", method), domain.Metadata{"payment_method": method})
	if err := s.transactionRepo.CreateTransaction(ctx, txExecutor, transaction); err != nil {
		return nil, fmt.Errorf("request deposit: failed to create transaction: %w", err)
	}

	request := domain.NewDepositRequest(userID, amount, method, proof, transaction.ID)
	if err := s.requestRepo.CreateDepositRequest(ctx, txExecutor, request); err != nil {
		return nil, fmt.Errorf("request deposit: failed to create request: %w", err)
	}

	if err := s.commitTx(txController); err != nil {
		return nil, fmt.Errorf("request deposit: failed to commit transaction: %w", err)
	}

	s.auditSink.Record(ctx, userID, "DEPOSIT_REQUESTED", map[string]any{"amount": amount.String()})
	return request, nil
}

// RequestWithdrawal locks the amount and records a withdrawal awaiting
// admin approval.
func (s *ledgerService) RequestWithdrawal(ctx context.Context, userID string, amount decimal.Decimal, method, address string) (*domain.WithdrawalRequest, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, util.ErrInvalidInput
	}

	txController, err := s.beginTx(ctx, s.dbBeginner)
	if err != nil {
		return nil, fmt.Errorf("request withdrawal: failed to begin transaction: %w", err)
	}
	defer s.rollbackTx(txController)

	txExecutor, ok := txController.(repository.DBExecutor)
	if !ok {
		return nil, fmt.Errorf("request withdrawal: transaction controller does not implement DBExecutor")
	}

	if err := s.walletRepo.Lock(ctx, txExecutor, userID, amount); err != nil {
		return nil, fmt.Errorf("request withdrawal: %w", err)
	}

	transaction := domain.NewTransaction(userID, domain.TransactionTypeWithdrawal, amount, domain.TransactionStatusPending,
		fmt.Sprintf("Withdrawal request via %s", method),
		domain.Metadata{"withdrawal_method": method, "withdrawal_address": address})
	if err := s.transactionRepo.CreateTransaction(ctx, txExecutor, transaction); err != nil {
		return nil, fmt.Errorf("request withdrawal: failed to create transaction: %w", err)
	}

	request := domain.NewWithdrawalRequest(userID, amount, method, address, transaction.ID)
	if err := s.requestRepo.CreateWithdrawalRequest(ctx, txExecutor, request); err != nil {
		return nil, fmt.Errorf("request withdrawal: failed to create request: %w", err)
	}

	if err := s.commitTx(txController); err != nil {
		return nil, fmt.Errorf("request withdrawal: failed to commit transaction: %w", err)
	}

	s.auditSink.Record(ctx, userID, "WITHDRAWAL_REQUESTED", map[string]any{"amount": amount.String()})
	return request, nil
}

// ProcessDeposit settles a pending deposit request by its exact ID.
// Approval credits the wallet and completes the paired transaction;
// rejection fails the transaction without touching the balance.
func (s *ledgerService) ProcessDeposit(ctx context.Context, adminID, requestID string, approved bool, reason string) error {
	txController, err := s.beginTx(ctx, s.dbBeginner)
	if err != nil {
		return fmt.Errorf("process deposit: failed to begin transaction: %w", err)
	}
	defer s.rollbackTx(txController)

	txExecutor, ok := txController.(repository.DBExecutor)
	if !ok {
		return fmt.Errorf("process deposit: transaction controller does not implement DBExecutor")
	}

	request, err := s.requestRepo.GetDepositRequestByID(ctx, txExecutor, requestID)
	if err != nil {
		return fmt.Errorf("process deposit: %w", err)
	}
	if request.Status != domain.TransactionStatusPending {
		return util.ErrAlreadyProcessed
	}

	newStatus := domain.TransactionStatusFailed
	if approved {
		newStatus = domain.TransactionStatusCompleted
		if err := s.walletRepo.Credit(ctx, txExecutor, request.UserID, request.Amount); err != nil {
			return fmt.Errorf("process deposit: %w", err)
		}
	}

	if err := s.transactionRepo.SetStatus(ctx, txExecutor, request.TransactionID, newStatus); err != nil {
		return fmt.Errorf("process deposit: %w", err)
	}
	if err := s.requestRepo.MarkDepositProcessed(ctx, txExecutor, request.ID, newStatus, adminID, reason); err != nil {
		return fmt.Errorf("process deposit: %w", err)
	}

	if err := s.commitTx(txController); err != nil {
		return fmt.Errorf("process deposit: failed to commit transaction: %w", err)
	}

	s.auditSink.Record(ctx, adminID, "DEPOSIT_PROCESSED", map[string]any{
		"user_id": request.UserID, "amount": request.Amount.String(), "approved": approved,
	})
	return nil
}

// ProcessWithdrawal settles a pending withdrawal request by its exact ID.
// Approval debits the locked funds; rejection releases them back, leaving
// the balance unchanged.
func (s *ledgerService) ProcessWithdrawal(ctx context.Context, adminID, requestID string, approved bool, reason string) error {
	txController, err := s.beginTx(ctx, s.dbBeginner)
	if err != nil {
		return fmt.Errorf("process withdrawal: failed to begin transaction: %w", err)
	}
	defer s.rollbackTx(txController)

	txExecutor, ok := txController.(repository.DBExecutor)
	if !ok {
		return fmt.Errorf("process withdrawal: transaction controller does not implement DBExecutor")
	}

	request, err := s.requestRepo.GetWithdrawalRequestByID(ctx, txExecutor, requestID)
	if err != nil {
		return fmt.Errorf("process withdrawal: %w", err)
	}
	if request.Status != domain.TransactionStatusPending {
		return util.ErrAlreadyProcessed
	}

	newStatus := domain.TransactionStatusFailed
	if approved {
		newStatus = domain.TransactionStatusCompleted
		if err := s.walletRepo.DebitLocked(ctx, txExecutor, request.UserID, request.Amount); err != nil {
			return fmt.Errorf("process withdrawal: %w", err)
		}
	} else {
		if err := s.walletRepo.Unlock(ctx, txExecutor, request.UserID, request.Amount); err != nil {
			return fmt.Errorf("process withdrawal: %w", err)
		}
	}

	if err := s.transactionRepo.SetStatus(ctx, txExecutor, request.TransactionID, newStatus); err != nil {
		return fmt.Errorf("process withdrawal: %w", err)
	}
	if err := s.requestRepo.MarkWithdrawalProcessed(ctx, txExecutor, request.ID, newStatus, adminID, reason); err != nil {
		return fmt.Errorf("process withdrawal: %w", err)
	}

	if err := s.commitTx(txController); err != nil {
		return fmt.Errorf("process withdrawal: failed to commit transaction: %w", err)
	}

	s.auditSink.Record(ctx, adminID, "WITHDRAWAL_PROCESSED", map[string]any{
		"user_id": request.UserID, "amount": request.Amount.String(), "approved": approved,
	})
	return nil
}
