package stockfolio

// Position is the net holding of one ticker within a portfolio.
//
// Quantity is signed: positive for shares held long, negative for shares owed
// on a short. A position with a zero quantity is never stored; closing a
// position deletes it.
type Position struct {
	Ticker      string   // uppercase symbol, unique within a portfolio
	Name        string   // display name from the reference lookup, "Unknown" when unresolved
	Quantity    Quantity // signed share count
	CostBasis   Money    // average price per unit at which the net quantity was acquired
	MarketPrice Money    // last observed market price
}

// IsShort reports whether the position is a short (negative quantity).
func (p Position) IsShort() bool { return p.Quantity.IsNegative() }

// MarketValue returns the current value of the position at its last observed
// market price. Shorts contribute negatively, matching their negative quantity.
func (p Position) MarketValue() Money { return p.MarketPrice.Mul(p.Quantity) }

// UnrealizedPnL returns the paper profit or loss at the last observed market
// price: (market − cost basis) × quantity. The signed quantity makes the
// formula hold for shorts too: a short loses when the price rises.
func (p Position) UnrealizedPnL() Money { return p.UnrealizedPnLAt(p.MarketPrice) }

// UnrealizedPnLAt returns the paper profit or loss against the given price.
func (p Position) UnrealizedPnLAt(price Money) Money {
	return price.Sub(p.CostBasis).Mul(p.Quantity)
}
