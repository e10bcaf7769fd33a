// internal/util/errors.go
package util

import "errors"

// Common application-specific errors.
var (
	ErrNotFound     = errors.New("resource not found")
	ErrInvalidInput = errors.New("invalid input provided")

	ErrWalletNotFound   = errors.New("wallet not found")
	ErrUserNotFound     = errors.New("user not found")
	ErrDocumentNotFound = errors.New("document not found")
	ErrDuplicateEntry   = errors.New("duplicate entry")

	// Balance operations
	ErrInsufficientFunds       = errors.New("insufficient available balance")
	ErrInsufficientLockedFunds = errors.New("insufficient locked balance")
	ErrSameWalletTransfer      = errors.New("cannot transfer to the same wallet")

	// Positions
	ErrInvalidPlan      = errors.New("invalid staking plan")
	ErrInvalidPackage   = errors.New("invalid investment package")
	ErrBelowMinimum     = errors.New("amount below plan minimum")
	ErrStillLocked      = errors.New("position is still locked")
	ErrPositionNotFound = errors.New("position not found")

	// Documents
	ErrDocumentNotEligible = errors.New("document is not approved")
	ErrDuplicatePurchase   = errors.New("document already purchased")
	ErrShareLimitExceeded  = errors.New("document revenue shares are fully allocated")

	// Deposit/withdrawal requests
	ErrAlreadyProcessed = errors.New("request already processed")
)

// IsError reports whether err matches the target sentinel error.
func IsError(err, target error) bool {
	return errors.Is(err, target)
}
