// internal/domain/document.go
package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DocumentStatus is the review status of a listed document. Only approved
// documents can be purchased or invested in.
type DocumentStatus string

const (
	DocumentStatusPending  DocumentStatus = "pending"
	DocumentStatusApproved DocumentStatus = "approved"
	DocumentStatusRejected DocumentStatus = "rejected"
)

// Document is a sellable listing in the catalog. The ledger core reads
// price, status, and seller_id; listing, upload, and review belong to the
// catalog subsystem.
type Document struct {
	ID        string          `db:"id" json:"id"`
	Title     string          `db:"title" json:"title"`
	Price     decimal.Decimal `db:"price" json:"price"`
	SellerID  string          `db:"seller_id" json:"seller_id"`
	Status    DocumentStatus  `db:"status" json:"status"`
	Downloads int64           `db:"downloads" json:"downloads"`
	Revenue   decimal.Decimal `db:"revenue" json:"revenue"`
	CreatedAt time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt time.Time       `db:"updated_at" json:"updated_at"`
}

// MaxSharePercentage caps a single document investment's revenue share.
const MaxSharePercentage = 50

// MaxTotalSharePercentage caps the sum of shares across all investments in
// one document, so cumulative payouts can never exceed the sale price.
const MaxTotalSharePercentage = 100

// DocumentInvestment entitles an investor to a fixed share of a document's
// future sale revenue. The share is set at creation time and never changes;
// RevenueEarned only grows, incremented on each qualifying sale.
type DocumentInvestment struct {
	ID              string          `db:"id" json:"id"`
	UserID          string          `db:"user_id" json:"user_id"`
	DocumentID      string          `db:"document_id" json:"document_id"`
	Amount          decimal.Decimal `db:"amount" json:"amount"`
	SharePercentage decimal.Decimal `db:"share_percentage" json:"share_percentage"`
	RevenueEarned   decimal.Decimal `db:"revenue_earned" json:"revenue_earned"`
	CreatedAt       time.Time       `db:"created_at" json:"created_at"`
}

// NewDocumentInvestment creates a document investment with the given share.
func NewDocumentInvestment(userID, documentID string, amount, share decimal.Decimal) *DocumentInvestment {
	return &DocumentInvestment{
		ID:              uuid.NewString(),
		UserID:          userID,
		DocumentID:      documentID,
		Amount:          amount,
		SharePercentage: share,
		RevenueEarned:   decimal.Zero,
		CreatedAt:       time.Now().UTC(),
	}
}

// ShareFor computes the revenue share granted for investing amount in a
// document priced at price: min((amount/price)*10, 50). The scaling and
// cap are fixed platform policy.
func ShareFor(amount, price decimal.Decimal) decimal.Decimal {
	share := amount.Div(price).Mul(decimal.NewFromInt(10))
	limit := decimal.NewFromInt(MaxSharePercentage)
	if share.GreaterThan(limit) {
		return limit
	}
	return share
}

// RevenueShare returns the payout owed to this investment on a sale at the
// given price: price * share/100.
func (i *DocumentInvestment) RevenueShare(price decimal.Decimal) decimal.Decimal {
	return price.Mul(i.SharePercentage).Div(decimal.NewFromInt(100))
}
