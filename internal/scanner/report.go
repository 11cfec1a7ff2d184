package scanner

import (
	"context"
	"errors"
	"time"

	"github.com/wonny/momentum/internal/allocation"
	"github.com/wonny/momentum/internal/indicator"
	"github.com/wonny/momentum/internal/marketdata"
)

// Skip records one ticker excluded before filtering.
type Skip struct {
	Ticker string `json:"ticker"`
	Reason string `json:"reason"`
}

// Report is the result of one scan.
type Report struct {
	Universe       string                `json:"universe"`
	RiskTier       allocation.RiskTier   `json:"risk_tier"`
	LookbackDays   int                   `json:"lookback_days"`
	StrategyID     string                `json:"strategy_id"`
	ConfigHash     string                `json:"config_hash,omitempty"`
	GeneratedAt    time.Time             `json:"generated_at"`
	TickersScanned int                   `json:"tickers_scanned"`
	Positions      []indicator.Candidate `json:"positions"`
	Skipped        []Skip                `json:"skipped"`
	FilterCounts   map[string]int        `json:"filter_counts"`
	Plan           allocation.Plan       `json:"plan"`
	TotalPct       float64               `json:"total_pct"`
	NoSurvivors    bool                  `json:"no_survivors"`
	Warning        string                `json:"warning,omitempty"`
	Duration       time.Duration         `json:"duration_ns"`
}

// skipReason maps a per-ticker error to a stable reason label.
func skipReason(err error) string {
	switch {
	case errors.Is(err, indicator.ErrInsufficientData):
		return "insufficient_data"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	default:
		return marketdata.ErrorKind(err)
	}
}
