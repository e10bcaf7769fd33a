// internal/api/handler/investment.go
package handler

import (
	"log/slog"
	"net/http"

	"doctrade-ledger/internal/service"
	"doctrade-ledger/internal/util"
)

// InvestmentHandler handles HTTP requests for package investments.
type InvestmentHandler struct {
	service service.PositionService
	logger  *slog.Logger
}

// NewInvestmentHandler creates a new InvestmentHandler.
func NewInvestmentHandler(svc service.PositionService, logger *slog.Logger) *InvestmentHandler {
	return &InvestmentHandler{service: svc, logger: logger}
}

// GetPackages lists the available investment packages.
// GET /investments/packages
func (h *InvestmentHandler) GetPackages(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, h.logger, http.StatusOK, map[string]interface{}{
		"packages": h.service.InvestmentPackages(),
	})
}

// InvestRequest represents the request body for an investment purchase.
// The price comes from package configuration, never from the caller.
type InvestRequest struct {
	Package string `json:"package" validate:"required"`
}

// Purchase opens an investment position.
// POST /investments/purchase
func (h *InvestmentHandler) Purchase(w http.ResponseWriter, r *http.Request) {
	userID := callerID(r)
	if userID == "" {
		respondWithError(w, h.logger, util.ErrInvalidInput)
		return
	}

	var req InvestRequest
	if err := decodeAndValidate(r, &req); err != nil {
		respondWithError(w, h.logger, err)
		return
	}

	position, err := h.service.Invest(r.Context(), userID, req.Package)
	if err != nil {
		respondWithError(w, h.logger, err)
		return
	}

	respondWithJSON(w, h.logger, http.StatusCreated, map[string]interface{}{
		"message":  "Successfully invested",
		"position": position,
	})
}

// GetPortfolio lists the caller's investment positions. Expired positions
// are settled before the list is returned.
// GET /investments/portfolio
func (h *InvestmentHandler) GetPortfolio(w http.ResponseWriter, r *http.Request) {
	userID := callerID(r)
	if userID == "" {
		respondWithError(w, h.logger, util.ErrInvalidInput)
		return
	}

	positions, err := h.service.InvestmentPortfolio(r.Context(), userID)
	if err != nil {
		respondWithError(w, h.logger, err)
		return
	}

	respondWithJSON(w, h.logger, http.StatusOK, map[string]interface{}{"positions": positions})
}

// GetReturns summarizes the caller's investment returns.
// GET /investments/returns
func (h *InvestmentHandler) GetReturns(w http.ResponseWriter, r *http.Request) {
	userID := callerID(r)
	if userID == "" {
		respondWithError(w, h.logger, util.ErrInvalidInput)
		return
	}

	summary, err := h.service.InvestmentReturns(r.Context(), userID)
	if err != nil {
		respondWithError(w, h.logger, err)
		return
	}

	respondWithJSON(w, h.logger, http.StatusOK, summary)
}
