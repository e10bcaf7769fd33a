// internal/api/handler/document.go
package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"doctrade-ledger/internal/service"
	"doctrade-ledger/internal/util"
)

// DocumentHandler handles HTTP requests for document purchases and
// document revenue-share investments.
type DocumentHandler struct {
	service service.MarketService
	logger  *slog.Logger
}

// NewDocumentHandler creates a new DocumentHandler.
func NewDocumentHandler(svc service.MarketService, logger *slog.Logger) *DocumentHandler {
	return &DocumentHandler{service: svc, logger: logger}
}

// Purchase buys a document: the buyer pays the price, the seller is
// credited, and co-investors receive their revenue shares.
// POST /documents/{documentID}/purchase
func (h *DocumentHandler) Purchase(w http.ResponseWriter, r *http.Request) {
	userID := callerID(r)
	if userID == "" {
		respondWithError(w, h.logger, util.ErrInvalidInput)
		return
	}

	documentID := chi.URLParam(r, "documentID")
	if err := h.service.PurchaseDocument(r.Context(), userID, documentID); err != nil {
		respondWithError(w, h.logger, err)
		return
	}

	respondWithJSON(w, h.logger, http.StatusOK, map[string]interface{}{
		"message":     "Document purchased successfully",
		"document_id": documentID,
	})
}

// DocumentInvestRequest represents the request body for a document
// investment.
type DocumentInvestRequest struct {
	Amount decimal.Decimal `json:"amount" validate:"required"`
}

// Invest opens a revenue-share position on a document.
// POST /documents/{documentID}/invest
func (h *DocumentHandler) Invest(w http.ResponseWriter, r *http.Request) {
	userID := callerID(r)
	if userID == "" {
		respondWithError(w, h.logger, util.ErrInvalidInput)
		return
	}

	var req DocumentInvestRequest
	if err := decodeAndValidate(r, &req); err != nil {
		respondWithError(w, h.logger, err)
		return
	}

	documentID := chi.URLParam(r, "documentID")
	investment, err := h.service.InvestInDocument(r.Context(), userID, documentID, req.Amount)
	if err != nil {
		respondWithError(w, h.logger, err)
		return
	}

	respondWithJSON(w, h.logger, http.StatusCreated, map[string]interface{}{
		"message":          "Successfully invested in document",
		"investment_id":    investment.ID,
		"share_percentage": investment.SharePercentage,
	})
}

// GetPortfolio lists the caller's document investments.
// GET /documents/investments
func (h *DocumentHandler) GetPortfolio(w http.ResponseWriter, r *http.Request) {
	userID := callerID(r)
	if userID == "" {
		respondWithError(w, h.logger, util.ErrInvalidInput)
		return
	}

	investments, err := h.service.DocumentInvestmentPortfolio(r.Context(), userID)
	if err != nil {
		respondWithError(w, h.logger, err)
		return
	}

	respondWithJSON(w, h.logger, http.StatusOK, map[string]interface{}{"investments": investments})
}

// GetReturns summarizes the caller's document-investment earnings.
// GET /documents/investments/returns
func (h *DocumentHandler) GetReturns(w http.ResponseWriter, r *http.Request) {
	userID := callerID(r)
	if userID == "" {
		respondWithError(w, h.logger, util.ErrInvalidInput)
		return
	}

	summary, err := h.service.DocumentInvestmentReturns(r.Context(), userID)
	if err != nil {
		respondWithError(w, h.logger, err)
		return
	}

	respondWithJSON(w, h.logger, http.StatusOK, summary)
}
