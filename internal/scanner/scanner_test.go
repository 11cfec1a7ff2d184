package scanner

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/momentum/internal/allocation"
	"github.com/wonny/momentum/internal/marketdata"
	"github.com/wonny/momentum/internal/strategy"
	"github.com/wonny/momentum/internal/universe"
	"github.com/wonny/momentum/pkg/logger"
)

type stubSource struct {
	tickers []string
}

func (s stubSource) Resolve(_ context.Context, name string) ([]string, error) {
	if name == "MISSING" {
		return nil, universe.ErrNotFound
	}
	return s.tickers, nil
}

func (s stubSource) List(_ context.Context) ([]string, error) {
	return []string{"NIFTY50"}, nil
}

type stubGateway struct {
	series       map[string]marketdata.Series
	fundamentals map[string]marketdata.Fundamentals
	seriesErr    map[string]error
}

func (g *stubGateway) FetchSeries(_ context.Context, symbol string, _ int) (marketdata.Series, error) {
	if err, ok := g.seriesErr[symbol]; ok {
		return nil, err
	}
	return g.series[symbol], nil
}

func (g *stubGateway) FetchFundamentals(_ context.Context, symbol string) (marketdata.Fundamentals, error) {
	return g.fundamentals[symbol], nil
}

// seriesOf builds a two-sample series whose momentum is
// (last/first - 1) * 100.
func seriesOf(first, last float64) marketdata.Series {
	day := time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)
	return marketdata.Series{
		{Date: day, Close: first, Volume: 1_000_000},
		{Date: day.AddDate(0, 0, 1), Close: last, Volume: 1_000_000},
	}
}

func newTestScanner(src universe.Source, gw marketdata.Gateway, strat *strategy.Config, workers int) *Scanner {
	return New(src, gw, strat, Options{Workers: workers}, nil, logger.NewNop())
}

func TestScanRanksByMomentum(t *testing.T) {
	src := stubSource{tickers: []string{"AAA", "BBB", "CCC"}}
	gw := &stubGateway{
		series: map[string]marketdata.Series{
			"AAA": seriesOf(100, 110), // +10%
			"BBB": seriesOf(100, 130), // +30%
			"CCC": seriesOf(100, 120), // +20%
		},
	}

	s := newTestScanner(src, gw, strategy.Default(), 4)
	report, err := s.Scan(context.Background(), Request{Universe: "NIFTY50"}, nil)
	require.NoError(t, err)

	require.Len(t, report.Positions, 3)
	assert.Equal(t, "BBB", report.Positions[0].Ticker)
	assert.Equal(t, "CCC", report.Positions[1].Ticker)
	assert.Equal(t, "AAA", report.Positions[2].Ticker)
	assert.False(t, report.NoSurvivors)
	assert.Empty(t, report.Skipped)
	assert.Equal(t, 3, report.TickersScanned)
	assert.NotEmpty(t, report.ConfigHash)
}

func TestScanOrderDeterministicAcrossWorkerCounts(t *testing.T) {
	// All tickers share one momentum: rank order must fall back to
	// universe order regardless of worker scheduling.
	tickers := []string{"T1", "T2", "T3", "T4", "T5", "T6", "T7", "T8"}
	series := make(map[string]marketdata.Series, len(tickers))
	for _, ticker := range tickers {
		series[ticker] = seriesOf(100, 115)
	}
	src := stubSource{tickers: tickers}
	gw := &stubGateway{series: series}

	var runs [][]string
	for _, workers := range []int{1, 3, 8} {
		s := newTestScanner(src, gw, strategy.Default(), workers)
		report, err := s.Scan(context.Background(), Request{Universe: "NIFTY50"}, nil)
		require.NoError(t, err)

		order := make([]string, 0, len(report.Positions))
		for _, pos := range report.Positions {
			order = append(order, pos.Ticker)
		}
		runs = append(runs, order)
	}

	assert.Equal(t, tickers, runs[0])
	assert.Equal(t, runs[0], runs[1])
	assert.Equal(t, runs[0], runs[2])
}

func TestScanSkipsFailedTickers(t *testing.T) {
	src := stubSource{tickers: []string{"GOOD", "GONE", "EMPTY", "SHORT"}}
	gw := &stubGateway{
		series: map[string]marketdata.Series{
			"GOOD": seriesOf(100, 120),
			"SHORT": {
				{Date: time.Now(), Close: 50, Volume: 100},
			},
		},
		seriesErr: map[string]error{
			"GONE":  marketdata.ErrNotFound,
			"EMPTY": marketdata.ErrNoData,
		},
	}

	s := newTestScanner(src, gw, strategy.Default(), 2)
	report, err := s.Scan(context.Background(), Request{Universe: "NIFTY50"}, nil)
	require.NoError(t, err)

	require.Len(t, report.Positions, 1)
	assert.Equal(t, "GOOD", report.Positions[0].Ticker)

	require.Len(t, report.Skipped, 3)
	reasons := map[string]string{}
	for _, skip := range report.Skipped {
		reasons[skip.Ticker] = skip.Reason
	}
	assert.Equal(t, "not_found", reasons["GONE"])
	assert.Equal(t, "no_data", reasons["EMPTY"])
	assert.Equal(t, "insufficient_data", reasons["SHORT"])
}

func TestScanSkipsPreserveUniverseOrder(t *testing.T) {
	src := stubSource{tickers: []string{"A", "B", "C"}}
	gw := &stubGateway{
		seriesErr: map[string]error{
			"A": marketdata.ErrNotFound,
			"B": marketdata.ErrNoData,
			"C": marketdata.ErrNotFound,
		},
	}

	s := newTestScanner(src, gw, strategy.Default(), 3)
	report, err := s.Scan(context.Background(), Request{Universe: "NIFTY50"}, nil)
	require.NoError(t, err)

	require.Len(t, report.Skipped, 3)
	assert.Equal(t, "A", report.Skipped[0].Ticker)
	assert.Equal(t, "B", report.Skipped[1].Ticker)
	assert.Equal(t, "C", report.Skipped[2].Ticker)
}

func TestScanNoSurvivors(t *testing.T) {
	strat := strategy.Default()
	strat.Filters.MinMomentumPct = 50

	src := stubSource{tickers: []string{"AAA", "BBB"}}
	gw := &stubGateway{
		series: map[string]marketdata.Series{
			"AAA": seriesOf(100, 110),
			"BBB": seriesOf(100, 105),
		},
	}

	s := newTestScanner(src, gw, strat, 2)
	report, err := s.Scan(context.Background(), Request{Universe: "NIFTY50"}, nil)
	require.NoError(t, err)

	assert.True(t, report.NoSurvivors)
	assert.NotEmpty(t, report.Warning)
	assert.Empty(t, report.Positions)
	assert.Equal(t, 2, report.FilterCounts["momentum"])
}

func TestScanUniverseNotFound(t *testing.T) {
	s := newTestScanner(stubSource{}, &stubGateway{}, strategy.Default(), 1)

	_, err := s.Scan(context.Background(), Request{Universe: "MISSING"}, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, universe.ErrNotFound)
}

func TestScanAllocationByTier(t *testing.T) {
	src := stubSource{tickers: []string{"AAA", "BBB", "CCC"}}
	gw := &stubGateway{
		series: map[string]marketdata.Series{
			"AAA": seriesOf(100, 110),
			"BBB": seriesOf(100, 120),
			"CCC": seriesOf(100, 130),
		},
	}

	s := newTestScanner(src, gw, strategy.Default(), 2)
	report, err := s.Scan(context.Background(), Request{
		Universe:    "NIFTY50",
		RiskTier:    allocation.High,
		HasRiskTier: true,
	}, nil)
	require.NoError(t, err)

	assert.Equal(t, allocation.High, report.RiskTier)
	assert.Equal(t, 3, report.Plan.PositionCount)
	assert.InDelta(t, 12.0, report.Plan.PerPositionPct, 1e-9)
	assert.InDelta(t, 36.0, report.TotalPct, 1e-9)
	for _, pos := range report.Positions {
		assert.InDelta(t, 12.0, pos.AllocationPct, 1e-9)
	}
}

func TestScanTruncatesToPositionCap(t *testing.T) {
	strat := strategy.Default()
	strat.Allocation.FlatPositionCap = 2

	src := stubSource{tickers: []string{"AAA", "BBB", "CCC", "DDD"}}
	series := map[string]marketdata.Series{
		"AAA": seriesOf(100, 105),
		"BBB": seriesOf(100, 140),
		"CCC": seriesOf(100, 120),
		"DDD": seriesOf(100, 130),
	}
	gw := &stubGateway{series: series}

	s := newTestScanner(src, gw, strat, 2)
	report, err := s.Scan(context.Background(), Request{Universe: "NIFTY50"}, nil)
	require.NoError(t, err)

	require.Len(t, report.Positions, 2)
	assert.Equal(t, "BBB", report.Positions[0].Ticker)
	assert.Equal(t, "DDD", report.Positions[1].Ticker)
}

func TestScanBatchLimit(t *testing.T) {
	src := stubSource{tickers: []string{"AAA", "BBB", "CCC", "DDD"}}
	gw := &stubGateway{
		series: map[string]marketdata.Series{
			"AAA": seriesOf(100, 110),
			"BBB": seriesOf(100, 120),
		},
	}

	s := newTestScanner(src, gw, strategy.Default(), 2)
	report, err := s.Scan(context.Background(), Request{Universe: "NIFTY50", Limit: 2}, nil)
	require.NoError(t, err)

	assert.Equal(t, 2, report.TickersScanned)
	assert.Len(t, report.Positions, 2)
}

func TestScanLookbackResolution(t *testing.T) {
	src := stubSource{tickers: []string{"AAA"}}
	gw := &stubGateway{series: map[string]marketdata.Series{"AAA": seriesOf(100, 110)}}
	s := newTestScanner(src, gw, strategy.Default(), 1)

	tests := []struct {
		name string
		req  Request
		want int
	}{
		{"strategy default", Request{Universe: "NIFTY50"}, 90},
		{"horizon months", Request{Universe: "NIFTY50", TimeHorizonMonths: 2}, 60},
		{"explicit days win", Request{Universe: "NIFTY50", TimeHorizonMonths: 2, LookbackDays: 30}, 30},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report, err := s.Scan(context.Background(), tt.req, nil)
			require.NoError(t, err)
			assert.Equal(t, tt.want, report.LookbackDays)
		})
	}
}

func TestScanProgressCallback(t *testing.T) {
	tickers := []string{"A", "B", "C", "D", "E"}
	series := make(map[string]marketdata.Series, len(tickers))
	for _, ticker := range tickers {
		series[ticker] = seriesOf(100, 110)
	}
	src := stubSource{tickers: tickers}
	gw := &stubGateway{series: series}

	var calls int64
	var sawTotal int64
	progress := func(done, total int, _ string) {
		atomic.AddInt64(&calls, 1)
		atomic.StoreInt64(&sawTotal, int64(total))
	}

	s := newTestScanner(src, gw, strategy.Default(), 3)
	_, err := s.Scan(context.Background(), Request{Universe: "NIFTY50"}, progress)
	require.NoError(t, err)

	assert.Equal(t, int64(len(tickers)), atomic.LoadInt64(&calls))
	assert.Equal(t, int64(len(tickers)), atomic.LoadInt64(&sawTotal))
}

func TestScanContextCancelled(t *testing.T) {
	src := stubSource{tickers: []string{"AAA", "BBB"}}
	gw := &stubGateway{}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := newTestScanner(src, gw, strategy.Default(), 1)
	report, err := s.Scan(ctx, Request{Universe: "NIFTY50"}, nil)
	require.NoError(t, err)

	require.Len(t, report.Skipped, 2)
	for _, skip := range report.Skipped {
		assert.Equal(t, "canceled", skip.Reason)
	}
	assert.True(t, report.NoSurvivors)
}

func TestScanDefaultTierFromStrategy(t *testing.T) {
	src := stubSource{tickers: []string{"AAA"}}
	gw := &stubGateway{series: map[string]marketdata.Series{"AAA": seriesOf(100, 110)}}

	s := newTestScanner(src, gw, strategy.Default(), 1)
	report, err := s.Scan(context.Background(), Request{Universe: "NIFTY50"}, nil)
	require.NoError(t, err)

	assert.Equal(t, allocation.Medium, report.RiskTier)
	assert.InDelta(t, 8.0, report.Plan.PerPositionPct, 1e-9)
}
