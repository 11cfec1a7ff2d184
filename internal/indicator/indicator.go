// Package indicator turns a raw price series and fundamentals snapshot
// into the scalar indicators the screen and rank stages consume.
package indicator

import (
	"errors"

	"github.com/wonny/momentum/internal/marketdata"
)

// ErrInsufficientData means the series is too short to compute
// momentum (fewer than 2 samples) or has a zero first close.
var ErrInsufficientData = errors.New("insufficient price data")

// Candidate is the derived per-ticker record entering the filter and
// rank pipeline. Pointer fields are nil when the underlying data was
// unavailable; nil is never treated as zero.
type Candidate struct {
	Ticker       string   `json:"ticker"`
	MomentumPct  float64  `json:"momentum_pct"`
	CurrentPrice float64  `json:"current_price"`
	RSI          *float64 `json:"rsi,omitempty"`
	AvgVolumeM   float64  `json:"avg_volume_m"`

	// Fundamentals pass-through
	PE         *float64 `json:"pe,omitempty"`
	ROEPct     *float64 `json:"roe_pct,omitempty"`
	DebtEquity *float64 `json:"debt_equity,omitempty"`
	MarketCap  *float64 `json:"market_cap,omitempty"`

	// AllocationPct is filled in after ranking for surviving positions.
	AllocationPct float64 `json:"allocation_pct,omitempty"`
}

// Engine computes candidates from raw market data.
type Engine struct {
	rsi RSI
}

// NewEngine creates an indicator engine using the given RSI
// implementation.
func NewEngine(rsi RSI) *Engine {
	return &Engine{rsi: rsi}
}

// Compute derives a candidate for one ticker. Returns
// ErrInsufficientData when momentum cannot be computed; the caller
// skips the ticker and reports it, as with any gateway failure.
func (e *Engine) Compute(ticker string, series marketdata.Series, fundamentals marketdata.Fundamentals) (Candidate, error) {
	if len(series) < 2 {
		return Candidate{}, ErrInsufficientData
	}

	first := series.First().Close
	if first == 0 {
		// Division guard; a zero first close is provider garbage.
		return Candidate{}, ErrInsufficientData
	}

	last := series.Last().Close

	candidate := Candidate{
		Ticker:       ticker,
		MomentumPct:  (last/first - 1) * 100,
		CurrentPrice: last,
		RSI:          e.rsi.Compute(closes(series)),
		AvgVolumeM:   averageVolumeMillions(series),
	}

	// Null-propagate fundamentals: scale only when present.
	candidate.PE = fundamentals.PE
	candidate.DebtEquity = fundamentals.DebtEquity
	candidate.MarketCap = fundamentals.MarketCap
	if fundamentals.ROE != nil {
		pct := *fundamentals.ROE * 100
		candidate.ROEPct = &pct
	}

	return candidate, nil
}

// closes extracts the close prices of a series.
func closes(series marketdata.Series) []float64 {
	out := make([]float64, len(series))
	for i, s := range series {
		out[i] = s.Close
	}
	return out
}

// averageVolumeMillions is the mean volume over the window, in
// millions of shares.
func averageVolumeMillions(series marketdata.Series) float64 {
	var sum int64
	for _, s := range series {
		sum += s.Volume
	}
	return float64(sum) / float64(len(series)) / 1e6
}
