package stockfolio

// This file implements the ledger engine: the pure logic that blends a trade
// into an existing position. It performs no I/O and has no side effects
// beyond its return values.

// Realized reports the gain or loss locked in when a trade reduces, closes,
// or flips a position. It is reported to the caller but not persisted.
type Realized struct {
	Ticker string
	Closed Quantity // magnitude of the closed portion, always positive
	Price  Money    // execution price of the closing trade
	PnL    Money    // signed: a short closed above its cost basis is a loss
}

// ApplyTrade blends a trade of delta shares at price into an existing
// position and returns the resulting position, along with a Realized event
// when part of the position was closed.
//
// existing is nil when no position is held; the returned position is nil when
// the trade closes the position exactly, in which case the caller must delete
// the stored record. The input position is never mutated.
//
// The cost basis rules are:
//   - a trade in the same direction blends into a quantity-weighted average,
//   - a partial close leaves the cost basis untouched,
//   - a trade that crosses zero closes the old leg at its cost basis and
//     opens a fresh leg at the trade price; the two legs are never averaged.
func ApplyTrade(existing *Position, delta Quantity, price Money) (*Position, *Realized, error) {
	if delta.IsZero() {
		return nil, nil, ErrInvalidQuantity
	}
	if price.IsNegative() {
		return nil, nil, ErrInvalidPrice
	}

	if existing == nil {
		// Opening trade: a positive delta opens a long, a negative one a short.
		return &Position{
			Quantity:    delta,
			CostBasis:   price,
			MarketPrice: price,
		}, nil, nil
	}

	held := existing.Quantity
	if held.SameSign(delta) {
		// Enlarging the same-direction position: quantity-weighted average of
		// the old and new legs. The signed quantities are used directly, which
		// is valid because both terms share the same sign.
		total := held.Add(delta)
		oldLeg := existing.CostBasis.Mul(held)
		newLeg := price.Mul(delta)
		blended := *existing
		blended.Quantity = total
		blended.CostBasis = oldLeg.Add(newLeg).Div(total)
		return &blended, nil, nil
	}

	// The trade reduces the position toward zero, or crosses it.
	remaining := held.Add(delta)

	if remaining.SameSign(held) {
		// Partial close: average cost does not move, the closed portion
		// realizes (price − cost basis) × quantity with the sign of the
		// held position.
		closed := delta.Neg() // same sign as held
		reduced := *existing
		reduced.Quantity = remaining
		ev := &Realized{
			Ticker: existing.Ticker,
			Closed: closed.Abs(),
			Price:  price,
			PnL:    price.Sub(existing.CostBasis).Mul(closed),
		}
		return &reduced, ev, nil
	}

	// The whole held leg is closed at the prior cost basis.
	ev := &Realized{
		Ticker: existing.Ticker,
		Closed: held.Abs(),
		Price:  price,
		PnL:    price.Sub(existing.CostBasis).Mul(held),
	}

	if remaining.IsZero() {
		return nil, ev, nil
	}

	// Sign flip: the excess opens a fresh leg at the trade price. This is the
	// composition of "close then open", never a blended average.
	opened := &Position{
		Ticker:      existing.Ticker,
		Name:        existing.Name,
		Quantity:    remaining,
		CostBasis:   price,
		MarketPrice: price,
	}
	return opened, ev, nil
}
