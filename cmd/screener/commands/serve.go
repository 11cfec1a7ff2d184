package commands

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/momentum/internal/api"
	"github.com/wonny/momentum/internal/api/handlers"
	"github.com/wonny/momentum/internal/scanner"
	"github.com/wonny/momentum/internal/scheduler"
	"github.com/wonny/momentum/internal/scheduler/jobs"
	"github.com/wonny/momentum/pkg/metrics"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the screener API server",
	Long: `Starts the REST API server, and optionally a metrics endpoint
and a cron-scheduled scan.

Endpoints:
  GET  /health            - Health check
  GET  /api/universes     - List known universes
  POST /api/scan          - Run a scan
  GET  /api/scan/stream   - Run a scan over a websocket with progress
  GET  /api/scan/latest   - Most recent report

Example:
  go run ./cmd/screener serve
  go run ./cmd/screener serve --port 8080`,
	RunE: runServe,
}

var servePort string

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&servePort, "port", "", "API server port (overrides PORT)")
}

func runServe(cmd *cobra.Command, args []string) error {
	d, err := buildDeps()
	if err != nil {
		return err
	}
	defer d.close()

	if servePort != "" {
		d.cfg.Port = servePort
	}

	latest := scanner.NewLatestStore()
	scanHandler := handlers.NewScanHandler(d.scanner, d.source, latest, d.log)
	router := api.NewRouter(scanHandler, d.log)
	server := api.New(d.cfg, d.log, router)

	go func() {
		if err := server.Start(); err != nil {
			d.log.WithError(err).Fatal("Failed to start server")
		}
	}()

	// Metrics endpoint on its own port
	if d.cfg.MetricsEnabled {
		go func() {
			addr := ":" + d.cfg.MetricsPort
			d.log.WithField("port", d.cfg.MetricsPort).Info("Starting metrics server")

			mux := http.NewServeMux()
			mux.Handle("/metrics", metrics.Handler())
			if err := http.ListenAndServe(addr, mux); err != nil {
				d.log.WithError(err).Error("Metrics server stopped")
			}
		}()
	}

	// Scheduled scans
	if d.cfg.Scan.ScheduleCron != "" {
		sched := scheduler.New(d.log)
		job := jobs.NewScanJob(d.scanner, latest, d.cfg.Scan, d.log)
		if err := sched.AddJob(job); err != nil {
			return fmt.Errorf("schedule scan job: %w", err)
		}
		sched.Start()
		defer sched.Stop()
	}

	fmt.Printf("\n✅ Server running on http://localhost:%s\n", d.cfg.Port)
	fmt.Println("\nAvailable endpoints:")
	fmt.Println("  GET  /health")
	fmt.Println("  GET  /api/universes")
	fmt.Println("  POST /api/scan")
	fmt.Println("  GET  /api/scan/stream")
	fmt.Println("  GET  /api/scan/latest")
	fmt.Println("\nPress Ctrl+C to stop")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	d.log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	return nil
}
