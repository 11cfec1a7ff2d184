package universe

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PGSource reads universes from the universes table:
//
//	CREATE TABLE universes (
//	    name     TEXT NOT NULL,
//	    symbol   TEXT NOT NULL,
//	    position INT  NOT NULL,
//	    PRIMARY KEY (name, symbol)
//	);
type PGSource struct {
	db *pgxpool.Pool
}

// NewPGSource creates a new Postgres-backed universe source.
func NewPGSource(db *pgxpool.Pool) *PGSource {
	return &PGSource{db: db}
}

// Resolve returns the tickers of the named universe ordered by their
// sheet position.
func (s *PGSource) Resolve(ctx context.Context, name string) ([]string, error) {
	rows, err := s.db.Query(ctx,
		`SELECT symbol FROM universes WHERE name = $1 ORDER BY position`, name)
	if err != nil {
		return nil, fmt.Errorf("query universe: %w", err)
	}
	defer rows.Close()

	var tickers []string
	for rows.Next() {
		var symbol string
		if err := rows.Scan(&symbol); err != nil {
			return nil, fmt.Errorf("scan universe row: %w", err)
		}
		tickers = append(tickers, symbol)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate universe rows: %w", err)
	}

	if len(tickers) == 0 {
		return nil, fmt.Errorf("%s: %w", name, ErrNotFound)
	}

	return tickers, nil
}

// List returns all universe names.
func (s *PGSource) List(ctx context.Context) ([]string, error) {
	rows, err := s.db.Query(ctx,
		`SELECT DISTINCT name FROM universes ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("query universes: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan universe name: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate universe names: %w", err)
	}

	return names, nil
}
