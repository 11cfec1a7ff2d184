// Package universe resolves named stock universes (NIFTY50, NIFTY100,
// ...) to ordered ticker lists. The order of a universe is preserved
// all the way to the ranked output: it is the tie-break order.
package universe

import (
	"context"
	"errors"
)

// Configuration errors are fatal to the run, unlike per-ticker fetch
// failures which are skipped and reported.
var (
	// ErrNotFound means no universe with the requested name exists.
	ErrNotFound = errors.New("universe not found")

	// ErrMissingSymbolColumn means the universe file has no Symbol column.
	ErrMissingSymbolColumn = errors.New("universe file missing Symbol column")
)

// Source resolves universe names to ticker symbols.
type Source interface {
	// Resolve returns the ordered tickers of the named universe.
	Resolve(ctx context.Context, name string) ([]string, error)

	// List returns the names of all known universes.
	List(ctx context.Context) ([]string, error)
}
