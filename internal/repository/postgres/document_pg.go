// internal/repository/postgres/document_pg.go
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"doctrade-ledger/internal/domain"
	"doctrade-ledger/internal/repository"
	"doctrade-ledger/internal/util"
)

// DocumentRepository implements repository.DocumentRepository for
// PostgreSQL.
type DocumentRepository struct{}

// NewDocumentRepository creates a new DocumentRepository.
func NewDocumentRepository(db *sqlx.DB) repository.DocumentRepository {
	return &DocumentRepository{}
}

// GetDocumentByID retrieves a document.
func (r *DocumentRepository) GetDocumentByID(ctx context.Context, q repository.DBExecutor, id string) (*domain.Document, error) {
	var document domain.Document
	query := `SELECT id, title, price, seller_id, status, downloads, revenue, created_at, updated_at
              FROM documents WHERE id = $1`
	err := q.GetContext(ctx, &document, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, util.ErrDocumentNotFound
		}
		return nil, fmt.Errorf("failed to get document %s: %w", id, err)
	}
	return &document, nil
}

// RecordSale increments the document's downloads and revenue counters.
func (r *DocumentRepository) RecordSale(ctx context.Context, q repository.DBExecutor, id string, price decimal.Decimal) error {
	query := `UPDATE documents SET downloads = downloads + 1, revenue = revenue + $1, updated_at = $2 WHERE id = $3`
	result, err := q.ExecContext(ctx, query, price, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to record sale for document %s: %w", id, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected for document %s: %w", id, err)
	}
	if rowsAffected == 0 {
		return util.ErrDocumentNotFound
	}
	return nil
}

// DocumentInvestmentRepository implements
// repository.DocumentInvestmentRepository for PostgreSQL.
type DocumentInvestmentRepository struct{}

// NewDocumentInvestmentRepository creates a new DocumentInvestmentRepository.
func NewDocumentInvestmentRepository(db *sqlx.DB) repository.DocumentInvestmentRepository {
	return &DocumentInvestmentRepository{}
}

// CreateDocumentInvestment inserts a new document investment.
func (r *DocumentInvestmentRepository) CreateDocumentInvestment(ctx context.Context, q repository.DBExecutor, investment *domain.DocumentInvestment) error {
	query := `INSERT INTO document_investments (id, user_id, document_id, amount, share_percentage, revenue_earned, created_at)
              VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := q.ExecContext(ctx, query,
		investment.ID, investment.UserID, investment.DocumentID, investment.Amount,
		investment.SharePercentage, investment.RevenueEarned, investment.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create document investment: %w", err)
	}
	return nil
}

// ListByUserID returns a user's document investments, newest first.
func (r *DocumentInvestmentRepository) ListByUserID(ctx context.Context, q repository.DBExecutor, userID string) ([]domain.DocumentInvestment, error) {
	investments := []domain.DocumentInvestment{}
	query := `SELECT id, user_id, document_id, amount, share_percentage, revenue_earned, created_at
              FROM document_investments WHERE user_id = $1 ORDER BY created_at DESC`
	if err := q.SelectContext(ctx, &investments, query, userID); err != nil {
		return nil, fmt.Errorf("failed to list document investments for user %s: %w", userID, err)
	}
	return investments, nil
}

// ListByDocumentID returns all investments in a document.
func (r *DocumentInvestmentRepository) ListByDocumentID(ctx context.Context, q repository.DBExecutor, documentID string) ([]domain.DocumentInvestment, error) {
	investments := []domain.DocumentInvestment{}
	query := `SELECT id, user_id, document_id, amount, share_percentage, revenue_earned, created_at
              FROM document_investments WHERE document_id = $1`
	if err := q.SelectContext(ctx, &investments, query, documentID); err != nil {
		return nil, fmt.Errorf("failed to list investments for document %s: %w", documentID, err)
	}
	return investments, nil
}

// SumSharePercentage returns the total share already allocated on a document.
func (r *DocumentInvestmentRepository) SumSharePercentage(ctx context.Context, q repository.DBExecutor, documentID string) (decimal.Decimal, error) {
	var total decimal.Decimal
	query := `SELECT COALESCE(SUM(share_percentage), 0) FROM document_investments WHERE document_id = $1`
	if err := q.GetContext(ctx, &total, query, documentID); err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum shares for document %s: %w", documentID, err)
	}
	return total, nil
}

// AddRevenue increments an investment's revenue_earned by amount.
func (r *DocumentInvestmentRepository) AddRevenue(ctx context.Context, q repository.DBExecutor, investmentID string, amount decimal.Decimal) error {
	query := `UPDATE document_investments SET revenue_earned = revenue_earned + $1 WHERE id = $2`
	result, err := q.ExecContext(ctx, query, amount, investmentID)
	if err != nil {
		return fmt.Errorf("failed to add revenue to investment %s: %w", investmentID, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected for investment %s: %w", investmentID, err)
	}
	if rowsAffected == 0 {
		return util.ErrNotFound
	}
	return nil
}
