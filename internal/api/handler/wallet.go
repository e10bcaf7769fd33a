// internal/api/handler/wallet.go
package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/shopspring/decimal"

	"doctrade-ledger/internal/api/types"
	"doctrade-ledger/internal/domain"
	"doctrade-ledger/internal/service"
	"doctrade-ledger/internal/util"
)

// WalletHandler handles HTTP requests related to wallet operations.
type WalletHandler struct {
	service service.LedgerService
	logger  *slog.Logger
}

// NewWalletHandler creates a new WalletHandler.
func NewWalletHandler(svc service.LedgerService, logger *slog.Logger) *WalletHandler {
	return &WalletHandler{service: svc, logger: logger}
}

// CreateAccountRequest represents the request body for account creation.
type CreateAccountRequest struct {
	Username string `json:"username" validate:"required,min=3,max=64"`
}

// CreateAccount handles account registration: the user and its wallet are
// created atomically.
// POST /accounts
func (h *WalletHandler) CreateAccount(w http.ResponseWriter, r *http.Request) {
	var req CreateAccountRequest
	if err := decodeAndValidate(r, &req); err != nil {
		respondWithError(w, h.logger, err)
		return
	}

	user, wallet, err := h.service.CreateUserAndWallet(r.Context(), req.Username)
	if err != nil {
		respondWithError(w, h.logger, err)
		return
	}

	respondWithJSON(w, h.logger, http.StatusCreated, map[string]interface{}{
		"user_id":   user.ID,
		"username":  user.Username,
		"wallet_id": wallet.ID,
	})
}

// GetBalance handles the get wallet balance request.
// GET /wallets/balance
func (h *WalletHandler) GetBalance(w http.ResponseWriter, r *http.Request) {
	userID := callerID(r)
	if userID == "" {
		respondWithError(w, h.logger, util.ErrInvalidInput)
		return
	}

	wallet, err := h.service.GetBalance(r.Context(), userID)
	if err != nil {
		respondWithError(w, h.logger, err)
		return
	}

	respondWithJSON(w, h.logger, http.StatusOK, map[string]interface{}{
		"balance":           wallet.Balance,
		"locked_balance":    wallet.LockedBalance,
		"available_balance": wallet.Available(),
	})
}

// DepositRequestBody represents the request body for a deposit request.
type DepositRequestBody struct {
	Amount        decimal.Decimal `json:"amount" validate:"required"`
	PaymentMethod string          `json:"payment_method" validate:"required"`
	PaymentProof  string          `json:"payment_proof"`
}

// RequestDeposit handles a deposit request awaiting admin approval.
// POST /wallets/deposit
func (h *WalletHandler) RequestDeposit(w http.ResponseWriter, r *http.Request) {
	userID := callerID(r)
	if userID == "" {
		respondWithError(w, h.logger, util.ErrInvalidInput)
		return
	}

	var req DepositRequestBody
	if err := decodeAndValidate(r, &req); err != nil {
		respondWithError(w, h.logger, err)
		return
	}

	request, err := h.service.RequestDeposit(r.Context(), userID, req.Amount, req.PaymentMethod, req.PaymentProof)
	if err != nil {
		respondWithError(w, h.logger, err)
		return
	}

	respondWithJSON(w, h.logger, http.StatusAccepted, map[string]interface{}{
		"message":    "Deposit request submitted. Waiting for admin approval.",
		"request_id": request.ID,
	})
}

// WithdrawalRequestBody represents the request body for a withdrawal request.
type WithdrawalRequestBody struct {
	Amount            decimal.Decimal `json:"amount" validate:"required"`
	WithdrawalMethod  string          `json:"withdrawal_method" validate:"required"`
	WithdrawalAddress string          `json:"withdrawal_address" validate:"required"`
}

// RequestWithdrawal handles a withdrawal request; the amount is locked
// until an admin processes it.
// POST /wallets/withdraw
func (h *WalletHandler) RequestWithdrawal(w http.ResponseWriter, r *http.Request) {
	userID := callerID(r)
	if userID == "" {
		respondWithError(w, h.logger, util.ErrInvalidInput)
		return
	}

	var req WithdrawalRequestBody
	if err := decodeAndValidate(r, &req); err != nil {
		respondWithError(w, h.logger, err)
		return
	}

	request, err := h.service.RequestWithdrawal(r.Context(), userID, req.Amount, req.WithdrawalMethod, req.WithdrawalAddress)
	if err != nil {
		respondWithError(w, h.logger, err)
		return
	}

	respondWithJSON(w, h.logger, http.StatusAccepted, map[string]interface{}{
		"message":    "Withdrawal request submitted. Waiting for admin approval.",
		"request_id": request.ID,
	})
}

// GetTransactionHistory handles the transaction history request.
// GET /wallets/transactions?type=&limit=&offset=
func (h *WalletHandler) GetTransactionHistory(w http.ResponseWriter, r *http.Request) {
	userID := callerID(r)
	if userID == "" {
		respondWithError(w, h.logger, util.ErrInvalidInput)
		return
	}

	txType := r.URL.Query().Get("type")
	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || limit <= 0 || limit > 100 {
		limit = 20
	}
	offset, err := strconv.Atoi(r.URL.Query().Get("offset"))
	if err != nil || offset < 0 {
		offset = 0
	}

	transactions, totalCount, err := h.service.GetTransactionHistory(r.Context(), userID, txType, limit, offset)
	if err != nil {
		respondWithError(w, h.logger, err)
		return
	}

	respondWithJSON(w, h.logger, http.StatusOK, types.PaginatedResponse[domain.Transaction]{
		Data:       transactions,
		Limit:      limit,
		Offset:     offset,
		TotalCount: totalCount,
	})
}
