// internal/repository/document_repo.go
package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"doctrade-ledger/internal/domain"
)

// DocumentRepository reads catalog documents and maintains the sale
// counters the ledger owns. Listing, upload, and review live elsewhere.
type DocumentRepository interface {
	// GetDocumentByID retrieves a document.
	GetDocumentByID(ctx context.Context, q DBExecutor, id string) (*domain.Document, error)
	// RecordSale increments the document's downloads by one and revenue
	// by price.
	RecordSale(ctx context.Context, q DBExecutor, id string, price decimal.Decimal) error
}

// DocumentInvestmentRepository persists revenue-share positions on
// documents.
type DocumentInvestmentRepository interface {
	// CreateDocumentInvestment adds a new document investment.
	CreateDocumentInvestment(ctx context.Context, q DBExecutor, investment *domain.DocumentInvestment) error
	// ListByUserID returns a user's document investments, newest first.
	ListByUserID(ctx context.Context, q DBExecutor, userID string) ([]domain.DocumentInvestment, error)
	// ListByDocumentID returns all investments in a document.
	ListByDocumentID(ctx context.Context, q DBExecutor, documentID string) ([]domain.DocumentInvestment, error)
	// SumSharePercentage returns the total share already allocated on a
	// document.
	SumSharePercentage(ctx context.Context, q DBExecutor, documentID string) (decimal.Decimal, error)
	// AddRevenue increments an investment's revenue_earned by amount.
	AddRevenue(ctx context.Context, q DBExecutor, investmentID string, amount decimal.Decimal) error
}
