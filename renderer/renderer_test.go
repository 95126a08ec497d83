package renderer

import (
	"strings"
	"testing"

	"github.com/halv/stockfolio"
)

func testReport() *stockfolio.HoldingReport {
	return &stockfolio.HoldingReport{
		PortfolioID: 1,
		Positions: []stockfolio.Position{
			{Ticker: "AAPL", Name: "Apple Inc.", Quantity: stockfolio.Q(10), CostBasis: stockfolio.USD(100.0), MarketPrice: stockfolio.USD(150.0)},
			{Ticker: "TSLA", Name: "Tesla", Quantity: stockfolio.Q(-5), CostBasis: stockfolio.USD(90.0), MarketPrice: stockfolio.USD(100.0)},
		},
		TotalValue:      stockfolio.USD(1000.0),
		TotalUnrealized: stockfolio.USD(450.0),
	}
}

func TestHoldingMarkdown(t *testing.T) {
	got := HoldingMarkdown(testReport())

	for _, want := range []string{
		"# Holdings",
		"| AAPL | Apple Inc. | 10 | $100.00 | $150.00 | $1,500.00 | +$500.00 |",
		"| TSLA | Tesla | -5 | $90.00 | $100.00 | -$500.00 | -$50.00 |",
		"| **Total** | | | | | $1,000.00 | +$450.00 |",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("missing %q in:\n%s", want, got)
		}
	}
}

func TestHoldingMarkdown_SkippedNote(t *testing.T) {
	report := testReport()
	report.Skipped = []string{"TSLA"}

	got := HoldingMarkdown(report)
	if !strings.Contains(got, "Price unavailable for TSLA") {
		t.Errorf("missing skipped note in:\n%s", got)
	}
}

func TestHoldingMarkdown_Empty(t *testing.T) {
	got := HoldingMarkdown(&stockfolio.HoldingReport{})
	if !strings.Contains(got, "No positions.") {
		t.Errorf("missing empty notice in:\n%s", got)
	}
}

func TestBreakdownMarkdown(t *testing.T) {
	breakdown := &stockfolio.SectorBreakdown{
		Sectors: []stockfolio.SectorWeight{
			{Sector: "Information Technology", Value: stockfolio.USD(1500.0), Percent: 75.0},
			{Sector: "Consumer Discretionary", Value: stockfolio.USD(500.0), Percent: 25.0},
		},
		TotalValue: stockfolio.USD(2000.0),
	}

	got := BreakdownMarkdown(breakdown)
	for _, want := range []string{
		"| Information Technology | $1,500.00 | 75.0% |",
		"| Consumer Discretionary | $500.00 | 25.0% |",
		"| **Total** | $2,000.00 |",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("missing %q in:\n%s", want, got)
		}
	}
	// A 75% weight fills three quarters of the 30-char bar.
	if !strings.Contains(got, strings.Repeat("█", 23)) {
		t.Errorf("missing bar in:\n%s", got)
	}
}

func TestValueChartMarkdown_ScalesToLargestPosition(t *testing.T) {
	got := ValueChartMarkdown(testReport())

	// AAPL at $1,500 is the largest absolute value: a full-width bar.
	if !strings.Contains(got, strings.Repeat("█", 30)) {
		t.Errorf("missing full bar in:\n%s", got)
	}
	if !strings.Contains(got, "AAPL") || !strings.Contains(got, "TSLA") {
		t.Errorf("missing tickers in:\n%s", got)
	}
}

func TestSuggestionsMarkdown(t *testing.T) {
	got := SuggestionsMarkdown("GOO", []stockfolio.Company{
		{Ticker: "GOOG", Name: "Alphabet Inc. (Class C)", Sector: "Communication Services"},
	})
	if !strings.Contains(got, "| GOOG | Alphabet Inc. (Class C) | Communication Services |") {
		t.Errorf("missing suggestion row in:\n%s", got)
	}

	if got := SuggestionsMarkdown("ZZ", nil); !strings.Contains(got, "No matches.") {
		t.Errorf("missing empty notice in:\n%s", got)
	}
}

func TestRealizedMarkdown(t *testing.T) {
	got := RealizedMarkdown(&stockfolio.Realized{
		Ticker: "AAPL",
		Closed: stockfolio.Q(5),
		Price:  stockfolio.USD(150.0),
		PnL:    stockfolio.USD(200.0),
	})
	if got != "Closed 5 AAPL at $150.00, realized +$200.00.\n" {
		t.Errorf("unexpected output: %q", got)
	}
}
