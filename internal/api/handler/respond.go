// internal/api/handler/respond.go
package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"

	"doctrade-ledger/internal/util"
)

// DefaultTimeout is the per-request timeout applied by the router.
const DefaultTimeout = 30 * time.Second

// validate checks request body structs against their validate tags.
var validate = validator.New()

// respondWithJSON marshals payload and writes it with the given status.
func respondWithJSON(w http.ResponseWriter, logger *slog.Logger, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		logger.Error("Failed to marshal JSON response", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write(response)
}

// respondWithError maps service errors to HTTP statuses. Business-rule
// refusals surface their own message; anything unrecognized is a 500.
func respondWithError(w http.ResponseWriter, logger *slog.Logger, err error) {
	statusCode := http.StatusInternalServerError
	message := "Internal server error"

	switch {
	case util.IsError(err, util.ErrInvalidInput):
		statusCode = http.StatusBadRequest
		message = err.Error()
	case util.IsError(err, util.ErrNotFound),
		util.IsError(err, util.ErrWalletNotFound),
		util.IsError(err, util.ErrUserNotFound),
		util.IsError(err, util.ErrDocumentNotFound),
		util.IsError(err, util.ErrPositionNotFound):
		statusCode = http.StatusNotFound
		message = "Resource not found"
	case util.IsError(err, util.ErrInsufficientFunds):
		statusCode = http.StatusPaymentRequired
		message = "Insufficient available balance"
	case util.IsError(err, util.ErrInsufficientLockedFunds):
		statusCode = http.StatusConflict
		message = "Insufficient locked balance"
	case util.IsError(err, util.ErrInvalidPlan):
		statusCode = http.StatusBadRequest
		message = "Invalid staking plan"
	case util.IsError(err, util.ErrInvalidPackage):
		statusCode = http.StatusBadRequest
		message = "Invalid investment package"
	case util.IsError(err, util.ErrBelowMinimum):
		statusCode = http.StatusBadRequest
		message = "Amount below plan minimum"
	case util.IsError(err, util.ErrStillLocked):
		statusCode = http.StatusBadRequest
		message = "Position is still locked"
	case util.IsError(err, util.ErrDocumentNotEligible):
		statusCode = http.StatusBadRequest
		message = "Document is not approved"
	case util.IsError(err, util.ErrDuplicatePurchase):
		statusCode = http.StatusBadRequest
		message = "Document already purchased"
	case util.IsError(err, util.ErrShareLimitExceeded):
		statusCode = http.StatusBadRequest
		message = "Document revenue shares are fully allocated"
	case util.IsError(err, util.ErrAlreadyProcessed):
		statusCode = http.StatusConflict
		message = "Request already processed"
	case util.IsError(err, util.ErrDuplicateEntry):
		statusCode = http.StatusConflict
		message = "Duplicate entry"
	case util.IsError(err, util.ErrSameWalletTransfer):
		statusCode = http.StatusBadRequest
		message = "Cannot transfer to the same wallet"
	default:
		logger.Error("Unhandled service error", "error", err)
	}

	respondWithJSON(w, logger, statusCode, map[string]string{"error": message})
}

// callerID returns the verified user identity set by the upstream auth
// layer. The ledger trusts it per the identity contract.
func callerID(r *http.Request) string {
	return r.Header.Get("X-User-ID")
}

// decodeAndValidate decodes the JSON body into dst and runs validation.
func decodeAndValidate(r *http.Request, dst interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return util.ErrInvalidInput
	}
	if err := validate.Struct(dst); err != nil {
		return util.ErrInvalidInput
	}
	return nil
}
