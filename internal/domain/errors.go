package domain

import (
	"errors"
)

// ──────────────────────────────────────────────────────────────────────────────
// Sentinel errors: compare with errors.Is()
// ──────────────────────────────────────────────────────────────────────────────

// Spin errors
var (
	// ErrInvalidBet is returned when the bet amount is outside the configured
	// inclusive [min, max] stake bounds. Detected before any mutation.
	ErrInvalidBet = errors.New("invalid bet amount")

	// ErrInsufficientBalance is returned when the wallet balance is lower than
	// the bet. Detected before the debit; the spin has no side effects.
	ErrInsufficientBalance = errors.New("insufficient balance")

	// ErrInternal is returned for any unexpected fault while resolving a spin.
	// The caller sees only this value; the cause is logged.
	ErrInternal = errors.New("failed to process spin")
)

// Catalog errors
var (
	// ErrInvalidCatalog is returned when a symbol table violates its invariants
	// (weight > 0, multiplier > 0, unique ids, known rarity).
	ErrInvalidCatalog = errors.New("invalid symbol catalog")
)

// ──────────────────────────────────────────────────────────────────────────────
// Helper predicates
// ──────────────────────────────────────────────────────────────────────────────

// userErrors collects the errors a caller can correct by changing the request.
var userErrors = []error{
	ErrInvalidBet,
	ErrInsufficientBalance,
}

// IsUserError returns true when err (or any error in its chain) is
// user-correctable and may be surfaced verbatim.
func IsUserError(err error) bool {
	for _, target := range userErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
