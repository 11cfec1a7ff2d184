// Package jobs holds the concrete scheduled jobs.
package jobs

import (
	"context"
	"fmt"

	"github.com/wonny/momentum/internal/scanner"
	"github.com/wonny/momentum/pkg/config"
	"github.com/wonny/momentum/pkg/logger"
)

// ScanJob runs a full scan of one universe on a cron schedule and
// publishes the report to the in-memory latest store.
type ScanJob struct {
	scanner  *scanner.Scanner
	latest   *scanner.LatestStore
	universe string
	schedule string
	logger   *logger.Logger
}

// NewScanJob creates a scheduled scan job from the scan config.
func NewScanJob(sc *scanner.Scanner, latest *scanner.LatestStore, cfg config.ScanConfig, log *logger.Logger) *ScanJob {
	return &ScanJob{
		scanner:  sc,
		latest:   latest,
		universe: cfg.ScheduleUniverse,
		schedule: cfg.ScheduleCron,
		logger:   log,
	}
}

// Name returns the job name
func (j *ScanJob) Name() string {
	return "scheduled_scan"
}

// Schedule returns the cron schedule
func (j *ScanJob) Schedule() string {
	return j.schedule
}

// Run executes one scan and stores the report.
func (j *ScanJob) Run(ctx context.Context) error {
	j.logger.WithField("universe", j.universe).Info("Starting scheduled scan")

	report, err := j.scanner.Scan(ctx, scanner.Request{Universe: j.universe}, nil)
	if err != nil {
		return fmt.Errorf("scheduled scan of %s: %w", j.universe, err)
	}

	j.latest.Set(report)

	j.logger.WithFields(map[string]interface{}{
		"universe":  j.universe,
		"positions": len(report.Positions),
		"skipped":   len(report.Skipped),
	}).Info("Scheduled scan completed")

	return nil
}
