package stockfolio

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memStore is an in-memory PositionStore for coordinator tests.
type memStore struct {
	mu        sync.Mutex
	positions map[int64]map[string]Position
	failing   bool
}

func newMemStore() *memStore {
	return &memStore{positions: make(map[int64]map[string]Position)}
}

func (s *memStore) Get(_ context.Context, portfolioID int64, ticker string) (*Position, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failing {
		return nil, fmt.Errorf("%w: store is down", ErrStorage)
	}
	pos, ok := s.positions[portfolioID][ticker]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrPositionNotFound, ticker)
	}
	return &pos, nil
}

func (s *memStore) List(_ context.Context, portfolioID int64) ([]Position, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failing {
		return nil, fmt.Errorf("%w: store is down", ErrStorage)
	}
	var out []Position
	for _, pos := range s.positions[portfolioID] {
		out = append(out, pos)
	}
	return out, nil
}

func (s *memStore) Upsert(_ context.Context, portfolioID int64, pos Position) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failing {
		return fmt.Errorf("%w: store is down", ErrStorage)
	}
	if s.positions[portfolioID] == nil {
		s.positions[portfolioID] = make(map[string]Position)
	}
	s.positions[portfolioID][pos.Ticker] = pos
	return nil
}

func (s *memStore) Delete(_ context.Context, portfolioID int64, ticker string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failing {
		return fmt.Errorf("%w: store is down", ErrStorage)
	}
	delete(s.positions[portfolioID], ticker)
	return nil
}

// fakeGateway serves prices from a map; missing tickers are unavailable.
type fakeGateway struct {
	prices map[string]Money
}

func (g *fakeGateway) Price(_ context.Context, ticker string) (Money, error) {
	price, ok := g.prices[ticker]
	if !ok {
		return Money{}, fmt.Errorf("%w: no data for %s", ErrPriceUnavailable, ticker)
	}
	return price, nil
}

// gatewayFunc adapts a function to the PriceGateway interface.
type gatewayFunc func(ctx context.Context, ticker string) (Money, error)

func (f gatewayFunc) Price(ctx context.Context, ticker string) (Money, error) {
	return f(ctx, ticker)
}

// fakeRefs resolves from a fixed company table.
type fakeRefs struct {
	companies map[string]Company
}

func (r *fakeRefs) Resolve(ticker string) (Company, bool) {
	c, ok := r.companies[ticker]
	return c, ok
}

func (r *fakeRefs) Suggest(prefix string) []Company { return nil }

func newTestCoordinator() (*Coordinator, *memStore, *fakeGateway) {
	store := newMemStore()
	gateway := &fakeGateway{prices: map[string]Money{
		"AAPL": USD(150.0),
		"TSLA": USD(200.0),
	}}
	refs := &fakeRefs{companies: map[string]Company{
		"AAPL": {Ticker: "AAPL", Name: "Apple Inc.", Sector: "Information Technology"},
		"TSLA": {Ticker: "TSLA", Name: "Tesla", Sector: "Consumer Discretionary"},
	}}
	return NewCoordinator(store, gateway, refs), store, gateway
}

func TestExecuteTrade_MarketBuyCreatesPosition(t *testing.T) {
	c, store, _ := newTestCoordinator()

	pos, realized, err := c.ExecuteTrade(context.Background(), 1, NewMarketOrder("aapl", Q(10)))
	require.NoError(t, err)
	assert.Nil(t, realized)

	assert.Equal(t, "AAPL", pos.Ticker)
	assert.Equal(t, "Apple Inc.", pos.Name)
	assert.True(t, pos.Quantity.Equal(Q(10)))
	assert.True(t, pos.CostBasis.Equal(USD(150.0)), "cost basis = %s", pos.CostBasis)
	assert.True(t, pos.MarketPrice.Equal(USD(150.0)))

	stored, err := store.Get(context.Background(), 1, "AAPL")
	require.NoError(t, err)
	assert.True(t, stored.Quantity.Equal(Q(10)))
}

func TestExecuteTrade_LimitOrderUsesLimitPrice(t *testing.T) {
	c, _, _ := newTestCoordinator()

	pos, _, err := c.ExecuteTrade(context.Background(), 1, NewLimitOrder("AAPL", Q(10), USD(140.0)))
	require.NoError(t, err)
	assert.True(t, pos.CostBasis.Equal(USD(140.0)), "cost basis = %s", pos.CostBasis)
}

func TestExecuteTrade_LimitOrderWithoutPriceFails(t *testing.T) {
	c, _, _ := newTestCoordinator()

	_, _, err := c.ExecuteTrade(context.Background(), 1, TradeInstruction{Ticker: "AAPL", Order: Limit, Quantity: Q(10)})
	assert.ErrorIs(t, err, ErrInvalidOrder)
}

func TestExecuteTrade_ZeroQuantityFails(t *testing.T) {
	c, _, _ := newTestCoordinator()

	_, _, err := c.ExecuteTrade(context.Background(), 1, NewMarketOrder("AAPL", Q(0)))
	assert.ErrorIs(t, err, ErrInvalidQuantity)
}

func TestExecuteTrade_UnknownTickerGetsPlaceholderName(t *testing.T) {
	c, _, gateway := newTestCoordinator()
	gateway.prices["ZZZT"] = USD(10.0)

	pos, _, err := c.ExecuteTrade(context.Background(), 1, NewMarketOrder("ZZZT", Q(5)))
	require.NoError(t, err)
	assert.Equal(t, Unknown, pos.Name)
}

func TestExecuteTrade_UnavailablePriceNeverMutatesState(t *testing.T) {
	c, store, gateway := newTestCoordinator()

	// Seed an existing position, then make its price unavailable.
	_, _, err := c.ExecuteTrade(context.Background(), 1, NewMarketOrder("AAPL", Q(10)))
	require.NoError(t, err)
	before, err := store.Get(context.Background(), 1, "AAPL")
	require.NoError(t, err)
	delete(gateway.prices, "AAPL")

	_, _, err = c.ExecuteTrade(context.Background(), 1, NewMarketOrder("AAPL", Q(5)))
	assert.ErrorIs(t, err, ErrPriceUnavailable)

	after, err := store.Get(context.Background(), 1, "AAPL")
	require.NoError(t, err)
	assert.Equal(t, *before, *after, "prior position must be byte-for-byte unchanged")
}

func TestExecuteTrade_FullCloseDeletesStoredPosition(t *testing.T) {
	c, store, _ := newTestCoordinator()
	ctx := context.Background()

	_, _, err := c.ExecuteTrade(ctx, 1, NewMarketOrder("AAPL", Q(10)))
	require.NoError(t, err)

	pos, realized, err := c.ExecuteTrade(ctx, 1, NewMarketOrder("AAPL", Q(-10)))
	require.NoError(t, err)
	assert.Nil(t, pos)
	require.NotNil(t, realized)
	assert.True(t, realized.Closed.Equal(Q(10)))

	_, err = store.Get(ctx, 1, "AAPL")
	assert.ErrorIs(t, err, ErrPositionNotFound)
}

func TestExecuteTrade_ShortOpenOnAbsentPosition(t *testing.T) {
	c, _, _ := newTestCoordinator()

	// A negative delta with no existing position opens a short, it is not a
	// position-not-found failure.
	pos, _, err := c.ExecuteTrade(context.Background(), 1, NewMarketOrder("TSLA", Q(-5)))
	require.NoError(t, err)
	assert.True(t, pos.Quantity.Equal(Q(-5)))
	assert.True(t, pos.CostBasis.Equal(USD(200.0)))
}

func TestExecuteTrade_StorageFailureSurfaces(t *testing.T) {
	c, store, _ := newTestCoordinator()
	store.failing = true

	_, _, err := c.ExecuteTrade(context.Background(), 1, NewMarketOrder("AAPL", Q(10)))
	assert.ErrorIs(t, err, ErrStorage)
}

func TestExecuteTrade_SerializesSamePortfolio(t *testing.T) {
	c, store, _ := newTestCoordinator()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, err := c.ExecuteTrade(ctx, 1, NewMarketOrder("AAPL", Q(1)))
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	pos, err := store.Get(ctx, 1, "AAPL")
	require.NoError(t, err)
	assert.True(t, pos.Quantity.Equal(Q(20)), "quantity = %s after 20 serialized buys", pos.Quantity)
	assert.True(t, pos.CostBasis.Equal(USD(150.0)))
}

func TestRefreshPositions_SkipsUnavailableTickers(t *testing.T) {
	c, store, gateway := newTestCoordinator()
	ctx := context.Background()

	_, _, err := c.ExecuteTrade(ctx, 1, NewMarketOrder("AAPL", Q(10)))
	require.NoError(t, err)
	_, _, err = c.ExecuteTrade(ctx, 1, NewMarketOrder("TSLA", Q(-5)))
	require.NoError(t, err)

	gateway.prices["AAPL"] = USD(160.0)
	delete(gateway.prices, "TSLA")

	report, err := c.RefreshPositions(ctx, 1)
	require.NoError(t, err)

	assert.Len(t, report.Positions, 2)
	assert.Equal(t, []string{"TSLA"}, report.Skipped)

	refreshed, err := store.Get(ctx, 1, "AAPL")
	require.NoError(t, err)
	assert.True(t, refreshed.MarketPrice.Equal(USD(160.0)))

	// The skipped ticker keeps its last known price and is not removed.
	skipped, err := store.Get(ctx, 1, "TSLA")
	require.NoError(t, err)
	assert.True(t, skipped.MarketPrice.Equal(USD(200.0)))
}

func TestRefreshPositions_KeepsTradeCommittedDuringRefresh(t *testing.T) {
	store := newMemStore()
	refs := &fakeRefs{companies: map[string]Company{
		"AAPL": {Ticker: "AAPL", Name: "Apple Inc.", Sector: "Information Technology"},
	}}
	ctx := context.Background()

	var c *Coordinator
	gateway := gatewayFunc(func(ctx context.Context, ticker string) (Money, error) {
		// A trade lands after the refresh listed the positions but before it
		// writes the new price back.
		_, _, err := c.ExecuteTrade(ctx, 1, NewLimitOrder("AAPL", Q(5), USD(150.0)))
		require.NoError(t, err)
		return USD(160.0), nil
	})
	c = NewCoordinator(store, gateway, refs)

	_, _, err := c.ExecuteTrade(ctx, 1, NewLimitOrder("AAPL", Q(10), USD(100.0)))
	require.NoError(t, err)

	report, err := c.RefreshPositions(ctx, 1)
	require.NoError(t, err)

	pos, err := store.Get(ctx, 1, "AAPL")
	require.NoError(t, err)
	assert.True(t, pos.Quantity.Equal(Q(15)), "quantity = %s, the concurrent buy must survive the refresh", pos.Quantity)
	assert.True(t, pos.MarketPrice.Equal(USD(160.0)))
	// (10×100 + 5×150) / 15: the blended basis must not revert to $100.
	assert.True(t, pos.CostBasis.GreaterThan(USD(100.0)), "cost basis = %s reverted", pos.CostBasis)

	require.Len(t, report.Positions, 1)
	assert.True(t, report.Positions[0].Quantity.Equal(Q(15)), "report shows the stale snapshot")
}

func TestRefreshPositions_DropsPositionClosedDuringRefresh(t *testing.T) {
	store := newMemStore()
	refs := &fakeRefs{companies: map[string]Company{
		"AAPL": {Ticker: "AAPL", Name: "Apple Inc.", Sector: "Information Technology"},
	}}
	ctx := context.Background()

	var c *Coordinator
	gateway := gatewayFunc(func(ctx context.Context, ticker string) (Money, error) {
		_, _, err := c.ExecuteTrade(ctx, 1, NewLimitOrder("AAPL", Q(-10), USD(120.0)))
		require.NoError(t, err)
		return USD(160.0), nil
	})
	c = NewCoordinator(store, gateway, refs)

	_, _, err := c.ExecuteTrade(ctx, 1, NewLimitOrder("AAPL", Q(10), USD(100.0)))
	require.NoError(t, err)

	report, err := c.RefreshPositions(ctx, 1)
	require.NoError(t, err)

	// The close won the race: the refresh must not resurrect the row.
	assert.Empty(t, report.Positions)
	_, err = store.Get(ctx, 1, "AAPL")
	assert.ErrorIs(t, err, ErrPositionNotFound)
}

func TestBreakdown_SumsPerSector(t *testing.T) {
	c, _, _ := newTestCoordinator()
	ctx := context.Background()

	_, _, err := c.ExecuteTrade(ctx, 1, NewMarketOrder("AAPL", Q(10))) // 1500 in tech
	require.NoError(t, err)
	_, _, err = c.ExecuteTrade(ctx, 1, NewMarketOrder("TSLA", Q(-2))) // -400 in consumer
	require.NoError(t, err)

	breakdown, err := c.Breakdown(ctx, 1)
	require.NoError(t, err)

	require.Len(t, breakdown.Sectors, 2)
	assert.True(t, breakdown.TotalValue.Equal(USD(1100.0)), "total = %s", breakdown.TotalValue)

	assert.Equal(t, "Information Technology", breakdown.Sectors[0].Sector)
	assert.True(t, breakdown.Sectors[0].Value.Equal(USD(1500.0)))
	assert.Equal(t, "Consumer Discretionary", breakdown.Sectors[1].Sector)
	assert.True(t, breakdown.Sectors[1].Value.Equal(USD(-400.0)), "shorts contribute negatively")
}

func TestBreakdown_EmptyPortfolio(t *testing.T) {
	c, _, _ := newTestCoordinator()

	breakdown, err := c.Breakdown(context.Background(), 7)
	require.NoError(t, err)
	assert.Empty(t, breakdown.Sectors)
	assert.True(t, breakdown.TotalValue.IsZero())
}
