package marketdata

import (
	"context"
	"errors"
)

// Sentinel errors for per-ticker fetch outcomes. Callers must treat
// every error from the gateway as "skip this ticker, record the
// reason, continue the batch" — never as fatal to the scan.
var (
	// ErrNotFound means the provider does not know the symbol.
	ErrNotFound = errors.New("symbol not found")

	// ErrNoData means the symbol exists but returned an empty series.
	ErrNoData = errors.New("no data for symbol")
)

// Gateway fetches market data for one symbol at a time.
type Gateway interface {
	// FetchSeries returns the daily series covering the lookback
	// window, oldest sample first.
	FetchSeries(ctx context.Context, symbol string, lookbackDays int) (Series, error)

	// FetchFundamentals returns the current fundamentals snapshot.
	// Missing attributes are nil, not zero.
	FetchFundamentals(ctx context.Context, symbol string) (Fundamentals, error)
}

// ErrorKind classifies a gateway error for reporting and metrics.
func ErrorKind(err error) string {
	switch {
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrNoData):
		return "no_data"
	default:
		return "fetch_error"
	}
}
