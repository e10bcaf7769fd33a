// internal/api/handler/staking.go
package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"doctrade-ledger/internal/service"
	"doctrade-ledger/internal/util"
)

// StakingHandler handles HTTP requests for staking positions.
type StakingHandler struct {
	service service.PositionService
	logger  *slog.Logger
}

// NewStakingHandler creates a new StakingHandler.
func NewStakingHandler(svc service.PositionService, logger *slog.Logger) *StakingHandler {
	return &StakingHandler{service: svc, logger: logger}
}

// GetPlans lists the available staking plans.
// GET /staking/plans
func (h *StakingHandler) GetPlans(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, h.logger, http.StatusOK, map[string]interface{}{
		"plans": h.service.StakingPlans(),
	})
}

// StakeRequest represents the request body for staking.
type StakeRequest struct {
	Plan   string          `json:"plan" validate:"required"`
	Amount decimal.Decimal `json:"amount" validate:"required"`
}

// Stake opens a staking position.
// POST /staking/stake
func (h *StakingHandler) Stake(w http.ResponseWriter, r *http.Request) {
	userID := callerID(r)
	if userID == "" {
		respondWithError(w, h.logger, util.ErrInvalidInput)
		return
	}

	var req StakeRequest
	if err := decodeAndValidate(r, &req); err != nil {
		respondWithError(w, h.logger, err)
		return
	}
	if req.Amount.LessThanOrEqual(decimal.Zero) {
		respondWithError(w, h.logger, util.ErrInvalidInput)
		return
	}

	position, err := h.service.Stake(r.Context(), userID, req.Plan, req.Amount)
	if err != nil {
		respondWithError(w, h.logger, err)
		return
	}

	respondWithJSON(w, h.logger, http.StatusCreated, map[string]interface{}{
		"message":  "Successfully staked",
		"position": position,
	})
}

// Unstake settles a matured staking position.
// POST /staking/unstake/{positionID}
func (h *StakingHandler) Unstake(w http.ResponseWriter, r *http.Request) {
	userID := callerID(r)
	if userID == "" {
		respondWithError(w, h.logger, util.ErrInvalidInput)
		return
	}

	positionID := chi.URLParam(r, "positionID")
	position, err := h.service.Unstake(r.Context(), userID, positionID)
	if err != nil {
		respondWithError(w, h.logger, err)
		return
	}

	respondWithJSON(w, h.logger, http.StatusOK, map[string]interface{}{
		"message":   "Successfully unstaked",
		"principal": position.Amount,
		"rewards":   position.RewardsEarned,
		"total":     position.Amount.Add(position.RewardsEarned),
	})
}

// GetPositions lists the caller's staking positions. Matured positions are
// settled before the list is returned.
// GET /staking/positions
func (h *StakingHandler) GetPositions(w http.ResponseWriter, r *http.Request) {
	userID := callerID(r)
	if userID == "" {
		respondWithError(w, h.logger, util.ErrInvalidInput)
		return
	}

	positions, err := h.service.StakingPositions(r.Context(), userID)
	if err != nil {
		respondWithError(w, h.logger, err)
		return
	}

	respondWithJSON(w, h.logger, http.StatusOK, map[string]interface{}{"positions": positions})
}

// GetRewards summarizes the caller's staking rewards.
// GET /staking/rewards
func (h *StakingHandler) GetRewards(w http.ResponseWriter, r *http.Request) {
	userID := callerID(r)
	if userID == "" {
		respondWithError(w, h.logger, util.ErrInvalidInput)
		return
	}

	summary, err := h.service.StakingRewards(r.Context(), userID)
	if err != nil {
		respondWithError(w, h.logger, err)
		return
	}

	respondWithJSON(w, h.logger, http.StatusOK, summary)
}
