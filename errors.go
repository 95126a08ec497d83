package stockfolio

import "errors"

// Every failure in this package is recoverable: the caller is informed and
// the ledger state is left unchanged. Callers match with errors.Is.
var (
	// ErrInvalidQuantity rejects a trade with a zero quantity delta.
	ErrInvalidQuantity = errors.New("trade quantity must not be zero")

	// ErrInvalidPrice rejects a negative trade price.
	ErrInvalidPrice = errors.New("trade price must not be negative")

	// ErrInvalidOrder rejects a malformed instruction, such as a limit order
	// without a limit price or an unrecognized order type.
	ErrInvalidOrder = errors.New("invalid order")

	// ErrPriceUnavailable signals that the market price gateway could not
	// produce a price for a ticker. The triggering trade is abandoned.
	ErrPriceUnavailable = errors.New("market price unavailable")

	// ErrPositionNotFound signals a lookup of a ticker with no stored position.
	ErrPositionNotFound = errors.New("position not found")

	// ErrStorage wraps position store failures. Any in-memory computation is
	// discarded; a derived position is never considered committed without a
	// successful store write.
	ErrStorage = errors.New("position store failure")
)
