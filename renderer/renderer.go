// Package renderer turns portfolio reports into markdown.
package renderer

import (
	"fmt"
	"strings"

	"github.com/halv/stockfolio"
)

// HoldingMarkdown renders the positions of a portfolio as a markdown table,
// one row per ticker, with totals at the bottom.
func HoldingMarkdown(report *stockfolio.HoldingReport) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Holdings\n\n")
	if len(report.Positions) == 0 {
		fmt.Fprintln(&b, "No positions.")
		return b.String()
	}

	fmt.Fprintln(&b, "| Ticker | Name | Quantity | Cost Basis | Market Price | Market Value | Unrealized |")
	fmt.Fprintln(&b, "|:---|:---|---:|---:|---:|---:|---:|")
	for _, pos := range report.Positions {
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s | %s | %s |\n",
			pos.Ticker,
			pos.Name,
			pos.Quantity,
			pos.CostBasis,
			pos.MarketPrice,
			pos.MarketValue(),
			pos.UnrealizedPnL().SignedString(),
		)
	}
	fmt.Fprintf(&b, "| **Total** | | | | | %s | %s |\n",
		report.TotalValue,
		report.TotalUnrealized.SignedString(),
	)

	if len(report.Skipped) > 0 {
		fmt.Fprintf(&b, "\n> Price unavailable for %s; showing last known prices.\n",
			strings.Join(report.Skipped, ", "))
	}
	return b.String()
}

// BreakdownMarkdown renders the per-sector market value split with a text
// bar next to each percentage.
func BreakdownMarkdown(breakdown *stockfolio.SectorBreakdown) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Sector Breakdown\n\n")
	if len(breakdown.Sectors) == 0 {
		fmt.Fprintln(&b, "No positions.")
		return b.String()
	}

	fmt.Fprintln(&b, "| Sector | Value | Weight | |")
	fmt.Fprintln(&b, "|:---|---:|---:|:---|")
	for _, s := range breakdown.Sectors {
		fmt.Fprintf(&b, "| %s | %s | %.1f%% | %s |\n", s.Sector, s.Value, s.Percent, bar(s.Percent))
	}
	fmt.Fprintf(&b, "| **Total** | %s | | |\n", breakdown.TotalValue)
	return b.String()
}

// ValueChartMarkdown renders a horizontal bar chart of per-ticker market
// value, scaled so the largest absolute value fills the full width.
func ValueChartMarkdown(report *stockfolio.HoldingReport) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Portfolio Value by Ticker\n\n")
	if len(report.Positions) == 0 {
		fmt.Fprintln(&b, "No positions.")
		return b.String()
	}

	max := 0.0
	for _, pos := range report.Positions {
		if v := pos.MarketValue().Abs().InexactFloat64(); v > max {
			max = v
		}
	}

	fmt.Fprintln(&b, "```")
	for _, pos := range report.Positions {
		value := pos.MarketValue()
		width := 0.0
		if max > 0 {
			width = 100 * value.Abs().InexactFloat64() / max
		}
		fmt.Fprintf(&b, "%-6s %-30s %s\n", pos.Ticker, bar(width), value)
	}
	fmt.Fprintln(&b, "```")
	return b.String()
}

// SuggestionsMarkdown renders ticker suggestions for a prefix.
func SuggestionsMarkdown(prefix string, companies []stockfolio.Company) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Tickers matching %q\n\n", prefix)
	if len(companies) == 0 {
		fmt.Fprintln(&b, "No matches.")
		return b.String()
	}
	fmt.Fprintln(&b, "| Ticker | Security | Sector |")
	fmt.Fprintln(&b, "|:---|:---|:---|")
	for _, c := range companies {
		fmt.Fprintf(&b, "| %s | %s | %s |\n", c.Ticker, c.Name, c.Sector)
	}
	return b.String()
}

// RealizedMarkdown renders the outcome of a trade that closed quantity.
func RealizedMarkdown(ev *stockfolio.Realized) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Closed %s %s at %s, realized %s.\n",
		ev.Closed, ev.Ticker, ev.Price, ev.PnL.SignedString())
	return b.String()
}

// bar renders percent as a 30-character-wide block bar.
func bar(percent float64) string {
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	width := int(percent*30/100 + 0.5)
	return strings.Repeat("█", width)
}
