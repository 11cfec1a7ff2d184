// Package scanner orchestrates one scan: resolve the universe, fetch
// and compute per ticker with a bounded worker pool, screen, rank and
// allocate.
package scanner

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/wonny/momentum/internal/allocation"
	"github.com/wonny/momentum/internal/indicator"
	"github.com/wonny/momentum/internal/marketdata"
	"github.com/wonny/momentum/internal/screen"
	"github.com/wonny/momentum/internal/strategy"
	"github.com/wonny/momentum/internal/universe"
	"github.com/wonny/momentum/pkg/logger"
	"github.com/wonny/momentum/pkg/metrics"
)

// Options holds scan execution parameters.
type Options struct {
	Workers    int // concurrent fetch workers, min 1
	BatchLimit int // default ticker cap per scan; 0 = unlimited
}

// Request describes one scan. Zero-valued fields fall back to the
// strategy defaults.
type Request struct {
	Universe          string
	RiskTier          allocation.RiskTier
	HasRiskTier       bool // distinguishes explicit Low from unset
	TimeHorizonMonths int
	LookbackDays      int
	Limit             int
}

// Progress is called after each ticker completes. Implementations must
// be safe for concurrent use.
type Progress func(done, total int, ticker string)

// Scanner runs scans against one strategy configuration.
type Scanner struct {
	source   universe.Source
	gateway  marketdata.Gateway
	strat    *strategy.Config
	engine   *indicator.Engine
	screener *screen.Screener
	policy   allocation.Policy
	opts     Options
	recorder *metrics.Recorder // optional
	logger   *logger.Logger
}

// New creates a scanner. recorder may be nil when metrics are
// disabled.
func New(
	source universe.Source,
	gateway marketdata.Gateway,
	strat *strategy.Config,
	opts Options,
	recorder *metrics.Recorder,
	log *logger.Logger,
) *Scanner {
	if opts.Workers < 1 {
		opts.Workers = 1
	}

	return &Scanner{
		source:   source,
		gateway:  gateway,
		strat:    strat,
		engine:   indicator.NewEngine(strat.RSIImpl()),
		screener: screen.NewScreener(strat.ScreenFilters().Build(), log),
		policy:   strat.AllocationPolicy(),
		opts:     opts,
		recorder: recorder,
		logger:   log.WithField("module", "scanner"),
	}
}

// tickerResult is the per-ticker fan-in record. Index keeps universe
// order through the parallel fetch.
type tickerResult struct {
	candidate indicator.Candidate
	err       error
}

// Scan runs one full scan. Universe resolution failures are fatal;
// per-ticker failures are collected as skips and the batch continues.
func (s *Scanner) Scan(ctx context.Context, req Request, progress Progress) (*Report, error) {
	startTime := time.Now()

	tickers, err := s.source.Resolve(ctx, req.Universe)
	if err != nil {
		s.recordScan(req.Universe, "config_error", startTime)
		return nil, fmt.Errorf("resolve universe %s: %w", req.Universe, err)
	}

	limit := req.Limit
	if limit == 0 {
		limit = s.opts.BatchLimit
	}
	if limit > 0 && len(tickers) > limit {
		s.logger.WithFields(map[string]interface{}{
			"universe": req.Universe,
			"total":    len(tickers),
			"limit":    limit,
		}).Info("Applying batch limit")
		tickers = tickers[:limit]
	}

	tier := s.strat.DefaultTier()
	if req.HasRiskTier {
		tier = req.RiskTier
	}
	lookbackDays := s.lookbackDays(req)

	s.logger.WithFields(map[string]interface{}{
		"universe":      req.Universe,
		"tickers":       len(tickers),
		"risk_tier":     tier.String(),
		"lookback_days": lookbackDays,
		"workers":       s.opts.Workers,
	}).Info("Starting scan")

	results := s.fetchAll(ctx, tickers, lookbackDays, progress)

	// Reassemble in universe order: pre-sort output order must not
	// depend on worker scheduling.
	candidates := make([]indicator.Candidate, 0, len(tickers))
	skipped := make([]Skip, 0)
	for i, ticker := range tickers {
		if results[i].err != nil {
			reason := skipReason(results[i].err)
			skipped = append(skipped, Skip{Ticker: ticker, Reason: reason})
			if s.recorder != nil {
				s.recorder.RecordFetchError(reason)
			}
			continue
		}
		candidates = append(candidates, results[i].candidate)
	}

	survivors, filterCounts := s.screener.Screen(candidates)
	ranked := screen.Rank(survivors)

	report := &Report{
		Universe:       req.Universe,
		RiskTier:       tier,
		LookbackDays:   lookbackDays,
		StrategyID:     s.strat.Meta.StrategyID,
		GeneratedAt:    startTime,
		TickersScanned: len(tickers),
		Skipped:        skipped,
		FilterCounts:   filterCounts,
	}
	if hash, err := strategy.Hash(s.strat); err == nil {
		report.ConfigHash = hash
	}

	plan, err := s.policy.Plan(tier, len(ranked))
	if err != nil {
		// Zero survivors is a user-visible warning, never a crash.
		report.NoSurvivors = true
		report.Warning = "no stocks passed the filters; relax the thresholds or try another universe"
		report.Duration = time.Since(startTime)
		s.recordScan(req.Universe, "no_survivors", startTime)
		s.logger.WithField("universe", req.Universe).Warn("Scan produced no survivors")
		return report, nil
	}

	if len(ranked) > plan.PositionCount {
		ranked = ranked[:plan.PositionCount]
	}
	for i := range ranked {
		ranked[i].AllocationPct = plan.PerPositionPct
	}

	report.Positions = ranked
	report.Plan = plan
	report.TotalPct = plan.TotalPct()
	report.Duration = time.Since(startTime)

	if s.recorder != nil {
		s.recorder.RecordSurvivors(req.Universe, len(ranked))
	}
	s.recordScan(req.Universe, "ok", startTime)

	s.logger.WithFields(map[string]interface{}{
		"universe":  req.Universe,
		"positions": len(report.Positions),
		"skipped":   len(report.Skipped),
		"total_pct": report.TotalPct,
		"duration":  report.Duration,
	}).Info("Scan completed")

	return report, nil
}

// fetchAll runs the fetch+compute step over a bounded worker pool.
// Each worker writes to its own index, so no lock is needed and the
// result order equals the ticker order for any worker count.
func (s *Scanner) fetchAll(ctx context.Context, tickers []string, lookbackDays int, progress Progress) []tickerResult {
	results := make([]tickerResult, len(tickers))
	jobs := make(chan int, len(tickers))

	var done int64
	var wg sync.WaitGroup
	for w := 0; w < s.opts.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				select {
				case <-ctx.Done():
					results[idx] = tickerResult{err: ctx.Err()}
					continue
				default:
				}

				results[idx] = s.fetchOne(ctx, tickers[idx], lookbackDays)

				if progress != nil {
					progress(int(atomic.AddInt64(&done, 1)), len(tickers), tickers[idx])
				}
			}
		}()
	}

	for i := range tickers {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	return results
}

// fetchOne fetches market data and computes indicators for one ticker.
func (s *Scanner) fetchOne(ctx context.Context, ticker string, lookbackDays int) tickerResult {
	series, err := s.gateway.FetchSeries(ctx, ticker, lookbackDays)
	if err != nil {
		s.logger.WithError(err).WithField("ticker", ticker).Debug("Series fetch failed")
		return tickerResult{err: err}
	}

	fundamentals, err := s.gateway.FetchFundamentals(ctx, ticker)
	if err != nil {
		s.logger.WithError(err).WithField("ticker", ticker).Debug("Fundamentals fetch failed")
		return tickerResult{err: err}
	}

	candidate, err := s.engine.Compute(ticker, series, fundamentals)
	if err != nil {
		return tickerResult{err: err}
	}

	return tickerResult{candidate: candidate}
}

// lookbackDays resolves the momentum window for a request.
func (s *Scanner) lookbackDays(req Request) int {
	if req.LookbackDays > 0 {
		return req.LookbackDays
	}
	if req.TimeHorizonMonths > 0 {
		return req.TimeHorizonMonths * 30
	}
	return s.strat.LookbackDays()
}

func (s *Scanner) recordScan(universeName, outcome string, startTime time.Time) {
	if s.recorder == nil {
		return
	}
	s.recorder.RecordScan(universeName, outcome, time.Since(startTime).Seconds())
}
