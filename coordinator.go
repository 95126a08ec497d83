package stockfolio

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/rs/zerolog/log"
)

// Coordinator orchestrates trade instructions against the ledger engine,
// using the position store, the price gateway and the reference lookup.
//
// Trades against the same portfolio are serialized by a per-portfolio lock
// around the read-modify-write against the store; operations on different
// portfolios proceed concurrently. The market price is fetched before the
// lock is taken, so unrelated portfolios are never queued behind a slow
// network call.
type Coordinator struct {
	store  PositionStore
	prices PriceGateway
	refs   ReferenceLookup

	mu    sync.Mutex
	locks map[int64]*sync.Mutex
}

// NewCoordinator creates a coordinator over the given adapters.
func NewCoordinator(store PositionStore, prices PriceGateway, refs ReferenceLookup) *Coordinator {
	return &Coordinator{
		store:  store,
		prices: prices,
		refs:   refs,
		locks:  make(map[int64]*sync.Mutex),
	}
}

// lock returns the mutex serializing writes to one portfolio.
func (c *Coordinator) lock(portfolioID int64) *sync.Mutex {
	c.mu.Lock()
	defer c.mu.Unlock()
	l, ok := c.locks[portfolioID]
	if !ok {
		l = new(sync.Mutex)
		c.locks[portfolioID] = l
	}
	return l
}

// ExecuteTrade resolves the trade price, applies the trade to the stored
// position through the ledger engine, and persists the result.
//
// The returned position is nil when the trade closed the position exactly.
// On any failure the stored position is left untouched: a market order whose
// price cannot be fetched is abandoned with ErrPriceUnavailable before the
// store is even read.
func (c *Coordinator) ExecuteTrade(ctx context.Context, portfolioID int64, instr TradeInstruction) (*Position, *Realized, error) {
	instr, err := instr.Validate()
	if err != nil {
		return nil, nil, err
	}

	// Resolve the trade price before locking the portfolio.
	price := instr.LimitPrice
	if instr.Order == Market {
		price, err = c.prices.Price(ctx, instr.Ticker)
		if err != nil {
			return nil, nil, fmt.Errorf("cannot execute market order for %s: %w", instr.Ticker, err)
		}
	}

	l := c.lock(portfolioID)
	l.Lock()
	defer l.Unlock()

	existing, err := c.store.Get(ctx, portfolioID, instr.Ticker)
	if err != nil && !errors.Is(err, ErrPositionNotFound) {
		return nil, nil, err
	}

	pos, realized, err := ApplyTrade(existing, instr.Quantity, price)
	if err != nil {
		return nil, nil, err
	}

	if pos == nil {
		if err := c.store.Delete(ctx, portfolioID, instr.Ticker); err != nil {
			return nil, nil, err
		}
		log.Info().
			Int64("portfolio", portfolioID).
			Str("ticker", instr.Ticker).
			Str("realized", realized.PnL.String()).
			Msg("position closed")
		return nil, realized, nil
	}

	pos.Ticker = instr.Ticker
	if pos.Name == "" {
		pos.Name = Unknown
		if company, ok := c.refs.Resolve(instr.Ticker); ok {
			pos.Name = company.Name
		}
	}
	if instr.Order == Market {
		// A market order doubles as a price observation.
		pos.MarketPrice = price
	}

	if err := c.store.Upsert(ctx, portfolioID, *pos); err != nil {
		return nil, nil, err
	}

	log.Info().
		Int64("portfolio", portfolioID).
		Str("ticker", pos.Ticker).
		Str("quantity", pos.Quantity.String()).
		Str("cost-basis", pos.CostBasis.String()).
		Msg("position updated")
	return pos, realized, nil
}

// RefreshPositions re-prices every stored position and recomputes its
// unrealized P&L. Tickers whose price cannot be fetched are reported in
// Skipped and keep their last known market price; they are never removed.
// Only the market price is written back, so trades committed while the
// refresh is in flight survive it.
func (c *Coordinator) RefreshPositions(ctx context.Context, portfolioID int64) (*HoldingReport, error) {
	positions, err := c.store.List(ctx, portfolioID)
	if err != nil {
		return nil, err
	}

	report := &HoldingReport{PortfolioID: portfolioID}
	for _, pos := range positions {
		price, err := c.prices.Price(ctx, pos.Ticker)
		if err != nil {
			log.Warn().Str("ticker", pos.Ticker).Err(err).Msg("skipping refresh")
			report.Skipped = append(report.Skipped, pos.Ticker)
		} else {
			// The listed row is a pre-fetch snapshot; a trade may have
			// committed since. Re-read under the lock and move only the
			// market price, so a concurrent trade is never overwritten.
			l := c.lock(portfolioID)
			l.Lock()
			current, err := c.store.Get(ctx, portfolioID, pos.Ticker)
			if errors.Is(err, ErrPositionNotFound) {
				// Closed while refreshing: nothing left to re-price.
				l.Unlock()
				continue
			}
			if err != nil {
				l.Unlock()
				return nil, err
			}
			current.MarketPrice = price
			err = c.store.Upsert(ctx, portfolioID, *current)
			l.Unlock()
			if err != nil {
				return nil, err
			}
			pos = *current
		}

		report.Positions = append(report.Positions, pos)
		report.TotalValue = report.TotalValue.Add(pos.MarketValue())
		report.TotalUnrealized = report.TotalUnrealized.Add(pos.UnrealizedPnL())
	}
	return report, nil
}

// Breakdown sums the market value of stored positions per resolved sector,
// using the last observed market price. Unresolved tickers fall into the
// "Unknown" sector. An empty portfolio yields a zero-percentage report, not
// an error.
func (c *Coordinator) Breakdown(ctx context.Context, portfolioID int64) (*SectorBreakdown, error) {
	positions, err := c.store.List(ctx, portfolioID)
	if err != nil {
		return nil, err
	}

	values := make(map[string]Money)
	var total Money
	for _, pos := range positions {
		sector := Unknown
		if company, ok := c.refs.Resolve(pos.Ticker); ok && company.Sector != "" {
			sector = company.Sector
		}
		value := pos.MarketValue()
		values[sector] = values[sector].Add(value)
		total = total.Add(value)
	}

	breakdown := &SectorBreakdown{TotalValue: total}
	for sector, value := range values {
		weight := SectorWeight{Sector: sector, Value: value}
		if !total.IsZero() {
			weight.Percent = 100 * value.InexactFloat64() / total.InexactFloat64()
		}
		breakdown.Sectors = append(breakdown.Sectors, weight)
	}
	// Largest sector first; ties in alphabetical order for a stable report.
	sort.Slice(breakdown.Sectors, func(i, j int) bool {
		a, b := breakdown.Sectors[i], breakdown.Sectors[j]
		if a.Value.Equal(b.Value) {
			return a.Sector < b.Sector
		}
		return b.Value.LessThan(a.Value)
	})
	return breakdown, nil
}
