package stockfolio

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
)

// ExportCSV writes the holdings of a report to w in CSV format, one row per
// position. The header and field units are stable for downstream consumers:
// prices in decimal currency units, quantity as a signed decimal share count.
func ExportCSV(w io.Writer, report *HoldingReport) error {
	cw := csv.NewWriter(w)

	header := []string{"Ticker", "Name", "Quantity", "Cost Basis", "Market Price", "Market Value", "Unrealized PnL"}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("cannot write CSV header: %w", err)
	}

	for _, pos := range report.Positions {
		row := []string{
			pos.Ticker,
			pos.Name,
			pos.Quantity.String(),
			formatAmount(pos.CostBasis),
			formatAmount(pos.MarketPrice),
			formatAmount(pos.MarketValue()),
			formatAmount(pos.UnrealizedPnL()),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("cannot write CSV row for %s: %w", pos.Ticker, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// formatAmount renders a money value as a plain decimal, without the
// currency symbol, so the CSV stays machine readable.
func formatAmount(m Money) string {
	return strconv.FormatFloat(m.InexactFloat64(), 'f', 2, 64)
}
