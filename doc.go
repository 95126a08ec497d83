// Package stockfolio provides the types and logic for tracking a single
// user's stock portfolio: recording buy and short transactions, maintaining
// per-ticker positions with an average cost basis, and deriving profit and
// loss against current market prices.
//
// The core functionalities include:
//   - Ledger Engine: a pure function (ApplyTrade) that blends a trade into an
//     existing position, distinguishing long from short exposure via signed
//     quantities, and reporting realized gains when a position is reduced,
//     closed, or flipped.
//   - Adapter Ports: narrow interfaces for the position store, the market
//     price gateway, and the ticker reference lookup, so the engine itself
//     performs no I/O.
//   - Portfolio Coordinator: orchestration of trade instructions against the
//     engine and the adapters, with per-portfolio serialization of writes.
//   - Reporting: holdings with unrealized P&L, sector diversification
//     breakdown, and CSV export.
//
// This package serves as the foundational logic for the `sfo` command-line
// tool; the store, yahoo, reference and renderer subpackages provide the
// concrete adapters and presentation.
package stockfolio
