package stockfolio

import "context"

// This file declares the narrow interfaces the coordinator depends on. The
// concrete implementations live in the store, yahoo and reference
// subpackages; tests use in-memory fakes.

// PositionStore persists positions keyed by (portfolio, ticker).
//
// Get returns ErrPositionNotFound (possibly wrapped) when the portfolio holds
// no position for the ticker. All other failures wrap ErrStorage.
type PositionStore interface {
	Get(ctx context.Context, portfolioID int64, ticker string) (*Position, error)
	List(ctx context.Context, portfolioID int64) ([]Position, error)
	Upsert(ctx context.Context, portfolioID int64, pos Position) error
	Delete(ctx context.Context, portfolioID int64, ticker string) error
}

// PriceGateway returns the current market price for a ticker.
//
// Any failure to produce a price (network error, timeout, empty data) is
// reported as an error wrapping ErrPriceUnavailable; transient failures are
// the gateway's concern, the caller never retries.
type PriceGateway interface {
	Price(ctx context.Context, ticker string) (Money, error)
}

// Unknown is the placeholder name and sector for tickers the reference
// lookup cannot resolve. An unresolved ticker never blocks a trade.
const Unknown = "Unknown"

// Company is the reference record for a listed ticker.
type Company struct {
	Ticker string
	Name   string
	Sector string
}

// ReferenceLookup resolves a ticker to its display name and sector.
type ReferenceLookup interface {
	// Resolve returns the company for a ticker, or false if unknown.
	Resolve(ticker string) (Company, bool)
	// Suggest returns companies whose ticker starts with the given prefix.
	Suggest(prefix string) []Company
}
