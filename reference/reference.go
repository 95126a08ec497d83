// Package reference resolves tickers to company names and GICS sectors from
// an S&P 500 constituents CSV.
//
// It implements the stockfolio.ReferenceLookup port. The table is loaded once
// and served from memory; tickers outside the index simply resolve to nothing
// and callers fall back to stockfolio.Unknown.
package reference

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/halv/stockfolio"
	"github.com/rs/zerolog/log"
)

// Table is an in-memory company reference table keyed by ticker.
type Table struct {
	byTicker map[string]stockfolio.Company
	ordered  []stockfolio.Company
}

// Load reads a constituents CSV file from disk.
func Load(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open reference table: %w", err)
	}
	defer f.Close()

	table, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("read reference table %s: %w", path, err)
	}
	log.Info().Str("path", path).Int("companies", len(table.ordered)).Msg("loaded reference table")
	return table, nil
}

// Read parses a constituents CSV. The header row must carry Symbol, Security
// and "GICS Sector" columns; extra columns are ignored.
func Read(r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}
	symbol, security, sector := -1, -1, -1
	for i, col := range header {
		switch strings.TrimSpace(col) {
		case "Symbol":
			symbol = i
		case "Security":
			security = i
		case "GICS Sector":
			sector = i
		}
	}
	if symbol < 0 || security < 0 || sector < 0 {
		return nil, fmt.Errorf("missing columns in header %v", header)
	}

	table := &Table{byTicker: make(map[string]stockfolio.Company)}
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading record: %w", err)
		}
		if len(record) <= symbol || len(record) <= security || len(record) <= sector {
			continue
		}
		c := stockfolio.Company{
			Ticker: strings.ToUpper(strings.TrimSpace(record[symbol])),
			Name:   strings.TrimSpace(record[security]),
			Sector: strings.TrimSpace(record[sector]),
		}
		if c.Ticker == "" {
			continue
		}
		if c.Sector == "" {
			c.Sector = stockfolio.Unknown
		}
		table.byTicker[c.Ticker] = c
		table.ordered = append(table.ordered, c)
	}
	sort.Slice(table.ordered, func(i, j int) bool { return table.ordered[i].Ticker < table.ordered[j].Ticker })
	return table, nil
}

// Resolve returns the company listed under ticker.
func (t *Table) Resolve(ticker string) (stockfolio.Company, bool) {
	c, ok := t.byTicker[strings.ToUpper(strings.TrimSpace(ticker))]
	return c, ok
}

// Suggest returns the companies whose ticker starts with prefix, in ticker
// order. An empty prefix suggests nothing.
func (t *Table) Suggest(prefix string) []stockfolio.Company {
	prefix = strings.ToUpper(strings.TrimSpace(prefix))
	if prefix == "" {
		return nil
	}
	var out []stockfolio.Company
	for _, c := range t.ordered {
		if strings.HasPrefix(c.Ticker, prefix) {
			out = append(out, c)
		}
	}
	return out
}
