// Package apperrors defines the domain error taxonomy shared by the trading
// core. Handlers translate these to transport codes; services never retry on
// their own.
package apperrors

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	ErrSessionNotFound = errors.New("game session not found")
	ErrRoundNotFound   = errors.New("round not found")
	ErrStockNotFound   = errors.New("stock not found")
	ErrToolNotFound    = errors.New("tool not available")
	ErrPriceNotSet     = errors.New("stock price not available")
	ErrInvalidShares   = errors.New("shares must be at least 1")

	// ErrExternalServiceUnavailable marks oracle failures that could not be
	// recovered locally, e.g. a misconfigured endpoint.
	ErrExternalServiceUnavailable = errors.New("external service unavailable")
)

// NotFound reports whether err is one of the missing-resource sentinels.
func NotFound(err error) bool {
	return errors.Is(err, ErrSessionNotFound) ||
		errors.Is(err, ErrRoundNotFound) ||
		errors.Is(err, ErrStockNotFound) ||
		errors.Is(err, ErrToolNotFound)
}

// InsufficientFundsError rejects a buy that would drive capital negative.
// Carries both sides so callers can render a precise message.
type InsufficientFundsError struct {
	Available decimal.Decimal
	Required  decimal.Decimal
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient funds: required %s, available %s",
		e.Required.StringFixed(2), e.Available.StringFixed(2))
}

// InsufficientSharesError rejects a sell of more shares than owned.
type InsufficientSharesError struct {
	Owned     int
	Requested int
}

func (e *InsufficientSharesError) Error() string {
	return fmt.Sprintf("insufficient shares: requested %d, owned %d", e.Requested, e.Owned)
}

// InvalidStateError rejects an operation the session/round lifecycle does not
// permit (session not active, round already completed, all rounds finished).
type InvalidStateError struct {
	Reason string
}

func (e *InvalidStateError) Error() string {
	return "invalid state: " + e.Reason
}
