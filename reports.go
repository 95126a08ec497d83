package stockfolio

// HoldingReport is a view of a portfolio's positions with refreshed market
// prices and unrealized P&L.
type HoldingReport struct {
	PortfolioID     int64
	Positions       []Position
	Skipped         []string // tickers whose price could not be fetched
	TotalValue      Money
	TotalUnrealized Money
}

// SectorWeight is the total market value held in one sector.
type SectorWeight struct {
	Sector  string
	Value   Money
	Percent float64 // share of the portfolio total, 0 when the total is zero
}

// SectorBreakdown is the diversification report: market value summed per
// resolved sector. Shorts contribute negatively, matching their negative
// quantity.
type SectorBreakdown struct {
	Sectors    []SectorWeight
	TotalValue Money
}
