package screen

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/momentum/internal/indicator"
	"github.com/wonny/momentum/pkg/logger"
)

func ptr(v float64) *float64 { return &v }

func candidate(ticker string, momentum float64) indicator.Candidate {
	return indicator.Candidate{Ticker: ticker, MomentumPct: momentum}
}

func tickers(candidates []indicator.Candidate) []string {
	out := make([]string, len(candidates))
	for i, c := range candidates {
		out[i] = c.Ticker
	}
	return out
}

func TestScreenEmptyPredicateSetKeepsAll(t *testing.T) {
	screener := NewScreener(nil, logger.NewNop())

	input := []indicator.Candidate{
		candidate("A", 5),
		candidate("B", -3),
	}

	passed, filtered := screener.Screen(input)
	assert.Len(t, passed, 2)
	assert.Empty(t, filtered)
}

func TestScreenConjunction(t *testing.T) {
	cfg := FiltersConfig{
		MinMomentumPct: 1.0,
		MinVolumeM:     1.0,
	}
	screener := NewScreener(cfg.Build(), logger.NewNop())

	input := []indicator.Candidate{
		{Ticker: "KEEP", MomentumPct: 5, AvgVolumeM: 2},
		{Ticker: "SLOW", MomentumPct: 0.5, AvgVolumeM: 2},
		{Ticker: "THIN", MomentumPct: 5, AvgVolumeM: 0.2},
	}

	passed, filtered := screener.Screen(input)
	assert.Equal(t, []string{"KEEP"}, tickers(passed))
	assert.Equal(t, 1, filtered["momentum"])
	assert.Equal(t, 1, filtered["volume"])
}

func TestScreenRejectionCountsSum(t *testing.T) {
	cfg := FiltersConfig{MinMomentumPct: 3}
	screener := NewScreener(cfg.Build(), logger.NewNop())

	input := []indicator.Candidate{
		candidate("A", 5), candidate("B", 1),
		candidate("C", 2), candidate("D", 8),
	}

	passed, filtered := screener.Screen(input)

	total := 0
	for _, n := range filtered {
		total += n
	}
	assert.Equal(t, len(input)-len(passed), total)
}

func TestScreenNilIndicatorFails(t *testing.T) {
	cfg := FiltersConfig{MinRSI: 40, MinPE: 1, MinROEPct: 10, MaxDebtEquity: 2}
	screener := NewScreener(cfg.Build(), logger.NewNop())

	// Candidate with every nullable indicator missing: must be
	// rejected, never pass by default.
	passed, filtered := screener.Screen([]indicator.Candidate{candidate("NULLS", 10)})
	assert.Empty(t, passed)
	assert.Equal(t, 1, filtered["pe"])

	full := indicator.Candidate{
		Ticker:      "FULL",
		MomentumPct: 10,
		RSI:         ptr(55),
		PE:          ptr(20),
		ROEPct:      ptr(15),
		DebtEquity:  ptr(0.5),
	}
	passed, _ = screener.Screen([]indicator.Candidate{full})
	assert.Len(t, passed, 1)
}

func TestScreenMonotonic(t *testing.T) {
	// Adding a predicate never increases the survivor count
	input := []indicator.Candidate{
		{Ticker: "A", MomentumPct: 5, AvgVolumeM: 2, RSI: ptr(60)},
		{Ticker: "B", MomentumPct: 3, AvgVolumeM: 0.5, RSI: ptr(45)},
		{Ticker: "C", MomentumPct: -1, AvgVolumeM: 3, RSI: ptr(30)},
	}

	configs := []FiltersConfig{
		{},
		{MinMomentumPct: 1},
		{MinMomentumPct: 1, MinVolumeM: 1},
		{MinMomentumPct: 1, MinVolumeM: 1, MinRSI: 50},
	}

	prev := len(input) + 1
	for _, cfg := range configs {
		passed, _ := NewScreener(cfg.Build(), logger.NewNop()).Screen(input)
		require.LessOrEqual(t, len(passed), prev)
		prev = len(passed)
	}
}

func TestRankDescending(t *testing.T) {
	input := []indicator.Candidate{
		candidate("A", 2), candidate("B", 9), candidate("C", -4), candidate("D", 5),
	}

	ranked := Rank(input)
	assert.Equal(t, []string{"B", "D", "A", "C"}, tickers(ranked))

	// Input left untouched
	assert.Equal(t, []string{"A", "B", "C", "D"}, tickers(input))
}

func TestRankStableOnTies(t *testing.T) {
	input := []indicator.Candidate{
		candidate("FIRST", 5), candidate("SECOND", 5),
		candidate("THIRD", 5), candidate("TOP", 7),
	}

	ranked := Rank(input)
	assert.Equal(t, []string{"TOP", "FIRST", "SECOND", "THIRD"}, tickers(ranked))
}
