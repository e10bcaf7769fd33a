// internal/api/handler/admin.go
package handler

import (
	"log/slog"
	"net/http"

	"doctrade-ledger/internal/service"
	"doctrade-ledger/internal/util"
)

// AdminHandler handles deposit and withdrawal request processing. The
// upstream auth layer restricts these routes to admin identities.
type AdminHandler struct {
	service service.LedgerService
	logger  *slog.Logger
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(svc service.LedgerService, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{service: svc, logger: logger}
}

// ProcessRequestBody represents the admin decision on a pending request.
type ProcessRequestBody struct {
	RequestID string `json:"request_id" validate:"required"`
	Approved  bool   `json:"approved"`
	Reason    string `json:"reason"`
}

// ProcessDeposit approves or rejects a pending deposit request.
// POST /admin/deposits/process
func (h *AdminHandler) ProcessDeposit(w http.ResponseWriter, r *http.Request) {
	adminID := callerID(r)
	if adminID == "" {
		respondWithError(w, h.logger, util.ErrInvalidInput)
		return
	}

	var req ProcessRequestBody
	if err := decodeAndValidate(r, &req); err != nil {
		respondWithError(w, h.logger, err)
		return
	}

	if err := h.service.ProcessDeposit(r.Context(), adminID, req.RequestID, req.Approved, req.Reason); err != nil {
		respondWithError(w, h.logger, err)
		return
	}

	message := "Deposit request rejected"
	if req.Approved {
		message = "Deposit request approved"
	}
	respondWithJSON(w, h.logger, http.StatusOK, map[string]string{"message": message})
}

// ProcessWithdrawal approves or rejects a pending withdrawal request.
// POST /admin/withdrawals/process
func (h *AdminHandler) ProcessWithdrawal(w http.ResponseWriter, r *http.Request) {
	adminID := callerID(r)
	if adminID == "" {
		respondWithError(w, h.logger, util.ErrInvalidInput)
		return
	}

	var req ProcessRequestBody
	if err := decodeAndValidate(r, &req); err != nil {
		respondWithError(w, h.logger, err)
		return
	}

	if err := h.service.ProcessWithdrawal(r.Context(), adminID, req.RequestID, req.Approved, req.Reason); err != nil {
		respondWithError(w, h.logger, err)
		return
	}

	message := "Withdrawal request rejected"
	if req.Approved {
		message = "Withdrawal request approved"
	}
	respondWithJSON(w, h.logger, http.StatusOK, map[string]string{"message": message})
}
