// Package store persists users, portfolios and positions in SQLite.
//
// It implements the stockfolio.PositionStore port. The schema keeps one row
// per (portfolio, ticker); a closed position is deleted, never zero-filled.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/halv/stockfolio"
	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog/log"
)

// Sentinel errors for the user accounts layer.
var (
	ErrUserExists   = errors.New("user already exists")
	ErrUserNotFound = errors.New("user not found")
)

// Store is a SQLite-backed position store.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the SQLite database at path and initializes the
// schema. Use ":memory:" for an ephemeral store.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("sqlite open: %w", err)
	}

	// Single writer: the coordinator serializes writes per portfolio anyway.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite schema: %w", err)
	}

	log.Info().Str("path", path).Msg("opened portfolio database")
	return &Store{db: db}, nil
}

func createSchema(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			id   INTEGER PRIMARY KEY,
			name TEXT NOT NULL UNIQUE
		);

		CREATE TABLE IF NOT EXISTS portfolios (
			id       INTEGER PRIMARY KEY,
			owner_id INTEGER NOT NULL UNIQUE,
			name     TEXT    NOT NULL,
			FOREIGN KEY(owner_id) REFERENCES users(id)
		);

		CREATE TABLE IF NOT EXISTS positions (
			portfolio_id INTEGER NOT NULL,
			ticker       TEXT    NOT NULL,
			name         TEXT    NOT NULL,
			quantity     REAL    NOT NULL,
			cost_basis   REAL    NOT NULL,
			market_price REAL    NOT NULL,
			pnl          REAL    NOT NULL,
			PRIMARY KEY (portfolio_id, ticker),
			FOREIGN KEY(portfolio_id) REFERENCES portfolios(id)
		);
	`)
	return err
}

// Close closes the database.
func (s *Store) Close() error { return s.db.Close() }

// RegisterUser creates a user and returns its id.
func (s *Store) RegisterUser(ctx context.Context, name string) (int64, error) {
	res, err := s.db.ExecContext(ctx, `INSERT INTO users (name) VALUES (?)`, name)
	if err != nil {
		// A unique violation means the name is taken; anything else is a
		// genuine storage failure.
		var exists bool
		if scanErr := s.db.QueryRowContext(ctx,
			`SELECT COUNT(1) > 0 FROM users WHERE name = ?`, name).Scan(&exists); scanErr == nil && exists {
			return 0, fmt.Errorf("%w: %q", ErrUserExists, name)
		}
		return 0, fmt.Errorf("%w: register user: %v", stockfolio.ErrStorage, err)
	}
	return res.LastInsertId()
}

// Login returns the id of the user with the given name.
func (s *Store) Login(ctx context.Context, name string) (int64, error) {
	var id int64
	err := s.db.QueryRowContext(ctx, `SELECT id FROM users WHERE name = ?`, name).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("%w: %q", ErrUserNotFound, name)
	}
	if err != nil {
		return 0, fmt.Errorf("%w: login: %v", stockfolio.ErrStorage, err)
	}
	return id, nil
}

// EnsurePortfolio returns the id of the owner's portfolio, creating it with
// the given name if the owner has none. One portfolio per user.
func (s *Store) EnsurePortfolio(ctx context.Context, ownerID int64, name string) (int64, error) {
	var id int64
	err := s.db.QueryRowContext(ctx, `SELECT id FROM portfolios WHERE owner_id = ?`, ownerID).Scan(&id)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("%w: lookup portfolio: %v", stockfolio.ErrStorage, err)
	}

	res, err := s.db.ExecContext(ctx, `INSERT INTO portfolios (owner_id, name) VALUES (?, ?)`, ownerID, name)
	if err != nil {
		return 0, fmt.Errorf("%w: create portfolio: %v", stockfolio.ErrStorage, err)
	}
	return res.LastInsertId()
}

// Get returns the stored position for a ticker, or
// stockfolio.ErrPositionNotFound when the portfolio holds none.
func (s *Store) Get(ctx context.Context, portfolioID int64, ticker string) (*stockfolio.Position, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT ticker, name, quantity, cost_basis, market_price
		FROM positions
		WHERE portfolio_id = ? AND ticker = ?
	`, portfolioID, ticker)

	pos, err := scanPosition(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s in portfolio %d", stockfolio.ErrPositionNotFound, ticker, portfolioID)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: get position: %v", stockfolio.ErrStorage, err)
	}
	return pos, nil
}

// List returns all positions of a portfolio, ordered by ticker.
func (s *Store) List(ctx context.Context, portfolioID int64) ([]stockfolio.Position, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT ticker, name, quantity, cost_basis, market_price
		FROM positions
		WHERE portfolio_id = ?
		ORDER BY ticker ASC
	`, portfolioID)
	if err != nil {
		return nil, fmt.Errorf("%w: list positions: %v", stockfolio.ErrStorage, err)
	}
	defer rows.Close()

	var positions []stockfolio.Position
	for rows.Next() {
		pos, err := scanPosition(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("%w: scan position: %v", stockfolio.ErrStorage, err)
		}
		positions = append(positions, *pos)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: list positions: %v", stockfolio.ErrStorage, err)
	}
	return positions, nil
}

// Upsert atomically inserts or replaces the position row for its ticker.
func (s *Store) Upsert(ctx context.Context, portfolioID int64, pos stockfolio.Position) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO positions (portfolio_id, ticker, name, quantity, cost_basis, market_price, pnl)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`,
		portfolioID,
		pos.Ticker,
		pos.Name,
		pos.Quantity.InexactFloat64(),
		pos.CostBasis.InexactFloat64(),
		pos.MarketPrice.InexactFloat64(),
		pos.UnrealizedPnL().InexactFloat64(),
	)
	if err != nil {
		return fmt.Errorf("%w: upsert %s: %v", stockfolio.ErrStorage, pos.Ticker, err)
	}
	return nil
}

// Delete removes the position row for a ticker. Deleting an absent row is
// not an error.
func (s *Store) Delete(ctx context.Context, portfolioID int64, ticker string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM positions WHERE portfolio_id = ? AND ticker = ?`, portfolioID, ticker)
	if err != nil {
		return fmt.Errorf("%w: delete %s: %v", stockfolio.ErrStorage, ticker, err)
	}
	return nil
}

// scanPosition reads one position row through the given scan function.
func scanPosition(scan func(...any) error) (*stockfolio.Position, error) {
	var (
		ticker, name                     string
		quantity, costBasis, marketPrice float64
	)
	if err := scan(&ticker, &name, &quantity, &costBasis, &marketPrice); err != nil {
		return nil, err
	}
	return &stockfolio.Position{
		Ticker:      ticker,
		Name:        name,
		Quantity:    stockfolio.Q(quantity),
		CostBasis:   stockfolio.USD(costBasis),
		MarketPrice: stockfolio.USD(marketPrice),
	}, nil
}
