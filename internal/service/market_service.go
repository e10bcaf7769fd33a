// internal/service/market_service.go
package service

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"doctrade-ledger/internal/audit"
	"doctrade-ledger/internal/domain"
	"doctrade-ledger/internal/repository"
	"doctrade-ledger/internal/util"
	"doctrade-ledger/pkg/db"
)

// DocumentReturnsSummary aggregates a user's document-investment earnings.
type DocumentReturnsSummary struct {
	TotalInvested    decimal.Decimal `json:"total_invested"`
	TotalEarned      decimal.Decimal `json:"total_earned"`
	TotalInvestments int             `json:"total_investments"`
}

// MarketService owns document purchases, revenue distribution to
// co-investors, and document-investment positions.
type MarketService interface {
	// PurchaseDocument charges the buyer, credits the seller the full
	// price, updates the document's sale counters, and distributes
	// revenue shares to co-investors.
	PurchaseDocument(ctx context.Context, buyerID, documentID string) error
	// InvestInDocument locks amount and grants a fixed share of the
	// document's future sale revenue.
	InvestInDocument(ctx context.Context, userID, documentID string, amount decimal.Decimal) (*domain.DocumentInvestment, error)
	DocumentInvestmentPortfolio(ctx context.Context, userID string) ([]domain.DocumentInvestment, error)
	DocumentInvestmentReturns(ctx context.Context, userID string) (*DocumentReturnsSummary, error)
}

type marketService struct {
	dbBeginner      db.DBTxBeginner
	dbExecutor      repository.DBExecutor
	walletRepo      repository.WalletRepository
	transactionRepo repository.TransactionRepository
	documentRepo    repository.DocumentRepository
	investmentRepo  repository.DocumentInvestmentRepository
	auditSink       audit.Sink
	beginTx         db.BeginTxFunc
	commitTx        db.CommitTxFunc
	rollbackTx      db.RollbackTxFunc
}

// NewMarketService creates a new instance of MarketService.
func NewMarketService(
	dbBeginner db.DBTxBeginner,
	dbExecutor repository.DBExecutor,
	walletRepo repository.WalletRepository,
	transactionRepo repository.TransactionRepository,
	documentRepo repository.DocumentRepository,
	investmentRepo repository.DocumentInvestmentRepository,
	auditSink audit.Sink,
	beginTx db.BeginTxFunc,
	commitTx db.CommitTxFunc,
	rollbackTx db.RollbackTxFunc,
) MarketService {
	return &marketService{
		dbBeginner:      dbBeginner,
		dbExecutor:      dbExecutor,
		walletRepo:      walletRepo,
		transactionRepo: transactionRepo,
		documentRepo:    documentRepo,
		investmentRepo:  investmentRepo,
		auditSink:       auditSink,
		beginTx:         beginTx,
		commitTx:        commitTx,
		rollbackTx:      rollbackTx,
	}
}

// PurchaseDocument completes a document sale. The buyer's debit, the
// seller's credit, both ledger records, and the document counters commit
// in one database transaction. Revenue distribution follows: each
// investor's credit, revenue counter, and reward record are applied as one
// indivisible step per investor, flowing from the seller-facing revenue
// pool rather than the buyer's payment.
func (s *marketService) PurchaseDocument(ctx context.Context, buyerID, documentID string) error {
	document, err := s.documentRepo.GetDocumentByID(ctx, s.dbExecutor, documentID)
	if err != nil {
		return fmt.Errorf("purchase document: %w", err)
	}
	if document.Status != domain.DocumentStatusApproved {
		return util.ErrDocumentNotEligible
	}

	purchased, err := s.transactionRepo.HasCompletedPurchase(ctx, s.dbExecutor, buyerID, documentID)
	if err != nil {
		return fmt.Errorf("purchase document: %w", err)
	}
	if purchased {
		return util.ErrDuplicatePurchase
	}

	if err := s.completeSale(ctx, buyerID, document); err != nil {
		return err
	}

	investments, err := s.investmentRepo.ListByDocumentID(ctx, s.dbExecutor, documentID)
	if err != nil {
		return fmt.Errorf("purchase document: failed to list investors: %w", err)
	}
	for i := range investments {
		if err := s.distributeShare(ctx, document, &investments[i]); err != nil {
			return fmt.Errorf("purchase document: %w", err)
		}
	}

	s.auditSink.Record(ctx, buyerID, "DOCUMENT_PURCHASED", map[string]any{
		"document_id": documentID, "price": document.Price.String(),
	})
	return nil
}

// completeSale moves the price from buyer to seller and updates the
// document's counters, all in one database transaction.
func (s *marketService) completeSale(ctx context.Context, buyerID string, document *domain.Document) error {
	txController, err := s.beginTx(ctx, s.dbBeginner)
	if err != nil {
		return fmt.Errorf("purchase document: failed to begin transaction: %w", err)
	}
	defer s.rollbackTx(txController)

	txExecutor, ok := txController.(repository.DBExecutor)
	if !ok {
		return fmt.Errorf("purchase document: transaction controller does not implement DBExecutor")
	}

	if err := s.walletRepo.Debit(ctx, txExecutor, buyerID, document.Price); err != nil {
		return fmt.Errorf("purchase document: %w", err)
	}
	if err := s.walletRepo.Credit(ctx, txExecutor, document.SellerID, document.Price); err != nil {
		return fmt.Errorf("purchase document: %w", err)
	}

	purchaseTx := domain.NewTransaction(buyerID, domain.TransactionTypePurchase, document.Price, domain.TransactionStatusCompleted,
		fmt.Sprintf("Purchased document: %s", document.Title),
		domain.Metadata{"document_id": document.ID})
	if err := s.transactionRepo.CreateTransaction(ctx, txExecutor, purchaseTx); err != nil {
		return fmt.Errorf("purchase document: failed to create purchase transaction: %w", err)
	}

	saleTx := domain.NewTransaction(document.SellerID, domain.TransactionTypeSale, document.Price, domain.TransactionStatusCompleted,
		fmt.Sprintf("Sold document: %s", document.Title),
		domain.Metadata{"document_id": document.ID, "buyer_id": buyerID})
	if err := s.transactionRepo.CreateTransaction(ctx, txExecutor, saleTx); err != nil {
		return fmt.Errorf("purchase document: failed to create sale transaction: %w", err)
	}

	if err := s.documentRepo.RecordSale(ctx, txExecutor, document.ID, document.Price); err != nil {
		return fmt.Errorf("purchase document: %w", err)
	}

	if err := s.commitTx(txController); err != nil {
		return fmt.Errorf("purchase document: failed to commit transaction: %w", err)
	}
	return nil
}

// distributeShare pays one investor's revenue share. The wallet credit,
// the revenue_earned increment, and the reward record commit together.
func (s *marketService) distributeShare(ctx context.Context, document *domain.Document, investment *domain.DocumentInvestment) error {
	share := investment.RevenueShare(document.Price)
	if share.LessThanOrEqual(decimal.Zero) {
		return nil
	}

	txController, err := s.beginTx(ctx, s.dbBeginner)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer s.rollbackTx(txController)

	txExecutor, ok := txController.(repository.DBExecutor)
	if !ok {
		return fmt.Errorf("transaction controller does not implement DBExecutor")
	}

	if err := s.walletRepo.Credit(ctx, txExecutor, investment.UserID, share); err != nil {
		return err
	}
	if err := s.investmentRepo.AddRevenue(ctx, txExecutor, investment.ID, share); err != nil {
		return err
	}

	rewardTx := domain.NewTransaction(investment.UserID, domain.TransactionTypeReward, share, domain.TransactionStatusCompleted,
		fmt.Sprintf("Investment return from document: %s", document.Title),
		domain.Metadata{"document_id": document.ID, "investment_id": investment.ID})
	if err := s.transactionRepo.CreateTransaction(ctx, txExecutor, rewardTx); err != nil {
		return err
	}

	if err := s.commitTx(txController); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// InvestInDocument opens a revenue-share position on an approved document.
// The share is min((amount/price)*10, 50) percent, fixed platform policy,
// and the shares allocated across a document may not sum past 100.
func (s *marketService) InvestInDocument(ctx context.Context, userID, documentID string, amount decimal.Decimal) (*domain.DocumentInvestment, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, util.ErrInvalidInput
	}

	document, err := s.documentRepo.GetDocumentByID(ctx, s.dbExecutor, documentID)
	if err != nil {
		return nil, fmt.Errorf("invest in document: %w", err)
	}
	if document.Status != domain.DocumentStatusApproved {
		return nil, util.ErrDocumentNotEligible
	}

	share := domain.ShareFor(amount, document.Price)

	txController, err := s.beginTx(ctx, s.dbBeginner)
	if err != nil {
		return nil, fmt.Errorf("invest in document: failed to begin transaction: %w", err)
	}
	defer s.rollbackTx(txController)

	txExecutor, ok := txController.(repository.DBExecutor)
	if !ok {
		return nil, fmt.Errorf("invest in document: transaction controller does not implement DBExecutor")
	}

	allocated, err := s.investmentRepo.SumSharePercentage(ctx, txExecutor, documentID)
	if err != nil {
		return nil, fmt.Errorf("invest in document: %w", err)
	}
	if allocated.Add(share).GreaterThan(decimal.NewFromInt(domain.MaxTotalSharePercentage)) {
		return nil, util.ErrShareLimitExceeded
	}

	if err := s.walletRepo.Lock(ctx, txExecutor, userID, amount); err != nil {
		return nil, fmt.Errorf("invest in document: %w", err)
	}

	investment := domain.NewDocumentInvestment(userID, documentID, amount, share)
	if err := s.investmentRepo.CreateDocumentInvestment(ctx, txExecutor, investment); err != nil {
		return nil, fmt.Errorf("invest in document: failed to create investment: %w", err)
	}

	transaction := domain.NewTransaction(userID, domain.TransactionTypeInvestment, amount, domain.TransactionStatusCompleted,
		fmt.Sprintf("Invested in document: %s", document.Title),
		domain.Metadata{"document_id": documentID, "share_percentage": share.String()})
	if err := s.transactionRepo.CreateTransaction(ctx, txExecutor, transaction); err != nil {
		return nil, fmt.Errorf("invest in document: failed to create transaction: %w", err)
	}

	if err := s.commitTx(txController); err != nil {
		return nil, fmt.Errorf("invest in document: failed to commit transaction: %w", err)
	}

	s.auditSink.Record(ctx, userID, "DOCUMENT_INVESTMENT", map[string]any{
		"amount": amount.String(), "document_id": documentID,
	})
	return investment, nil
}

// DocumentInvestmentPortfolio lists a user's document investments.
func (s *marketService) DocumentInvestmentPortfolio(ctx context.Context, userID string) ([]domain.DocumentInvestment, error) {
	investments, err := s.investmentRepo.ListByUserID(ctx, s.dbExecutor, userID)
	if err != nil {
		return nil, fmt.Errorf("document investment portfolio: %w", err)
	}
	return investments, nil
}

// DocumentInvestmentReturns aggregates a user's document-investment
// earnings.
func (s *marketService) DocumentInvestmentReturns(ctx context.Context, userID string) (*DocumentReturnsSummary, error) {
	investments, err := s.investmentRepo.ListByUserID(ctx, s.dbExecutor, userID)
	if err != nil {
		return nil, fmt.Errorf("document investment returns: %w", err)
	}

	summary := &DocumentReturnsSummary{
		TotalInvested:    decimal.Zero,
		TotalEarned:      decimal.Zero,
		TotalInvestments: len(investments),
	}
	for i := range investments {
		summary.TotalInvested = summary.TotalInvested.Add(investments[i].Amount)
		summary.TotalEarned = summary.TotalEarned.Add(investments[i].RevenueEarned)
	}
	return summary, nil
}
