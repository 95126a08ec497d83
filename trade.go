package stockfolio

import (
	"fmt"
	"strings"
)

// OrderType is a typed string identifying how a trade is priced.
type OrderType string

const (
	// Market prices the trade at the current market price, fetched from the
	// price gateway at execution time.
	Market OrderType = "market"
	// Limit prices the trade at a caller-specified price.
	Limit OrderType = "limit"
)

// ParseOrderType parses a string into an OrderType.
func ParseOrderType(s string) (OrderType, error) {
	switch OrderType(strings.ToLower(s)) {
	case Market:
		return Market, nil
	case Limit:
		return Limit, nil
	default:
		return "", fmt.Errorf("%w: unknown order type %q", ErrInvalidOrder, s)
	}
}

// TradeInstruction is the ephemeral input to a trade execution. It is not
// persisted; only its effect on the position is.
type TradeInstruction struct {
	Ticker     string    // symbol, normalized to uppercase by Validate
	Order      OrderType // market or limit
	Quantity   Quantity  // signed delta: positive for buy/cover, negative for sell/short
	LimitPrice Money     // required iff Order is Limit
}

// NewMarketOrder creates a market-priced trade instruction.
func NewMarketOrder(ticker string, quantity Quantity) TradeInstruction {
	return TradeInstruction{Ticker: ticker, Order: Market, Quantity: quantity}
}

// NewLimitOrder creates a trade instruction priced at limit.
func NewLimitOrder(ticker string, quantity Quantity, limit Money) TradeInstruction {
	return TradeInstruction{Ticker: ticker, Order: Limit, Quantity: quantity, LimitPrice: limit}
}

// Validate checks the instruction for correctness and applies quick fixes
// where applicable (uppercasing the ticker). It returns the validated (and
// potentially modified) instruction or an error detailing the failure.
func (t TradeInstruction) Validate() (TradeInstruction, error) {
	t.Ticker = strings.ToUpper(strings.TrimSpace(t.Ticker))
	if t.Ticker == "" {
		return t, fmt.Errorf("%w: ticker is missing", ErrInvalidOrder)
	}
	if t.Quantity.IsZero() {
		return t, ErrInvalidQuantity
	}
	switch t.Order {
	case Market:
		// price resolved at execution time.
	case Limit:
		if t.LimitPrice.IsZero() {
			return t, fmt.Errorf("%w: limit order for %s has no limit price", ErrInvalidOrder, t.Ticker)
		}
		if t.LimitPrice.IsNegative() {
			return t, fmt.Errorf("%w: limit price %s for %s", ErrInvalidPrice, t.LimitPrice, t.Ticker)
		}
	default:
		return t, fmt.Errorf("%w: unknown order type %q", ErrInvalidOrder, t.Order)
	}
	return t, nil
}
