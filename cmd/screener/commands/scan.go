package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/wonny/momentum/internal/allocation"
	"github.com/wonny/momentum/internal/scanner"
)

// scanCmd represents the scan command
var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan a universe and print ranked momentum picks",
	Long: `Scans every stock in a universe, filters by the strategy
thresholds, ranks the survivors by price momentum and prints the
suggested allocation for the chosen risk tier.

Example:
  go run ./cmd/screener scan --universe NIFTY50
  go run ./cmd/screener scan --universe NIFTY100 --risk high --months 6
  go run ./cmd/screener scan --universe NIFTY50 --json`,
	RunE: runScan,
}

var (
	scanUniverse string
	scanRisk     string
	scanMonths   int
	scanLookback int
	scanLimit    int
	scanJSON     bool
)

func init() {
	rootCmd.AddCommand(scanCmd)

	scanCmd.Flags().StringVarP(&scanUniverse, "universe", "u", "NIFTY50", "universe to scan")
	scanCmd.Flags().StringVarP(&scanRisk, "risk", "r", "", "risk tier (low|medium|high)")
	scanCmd.Flags().IntVarP(&scanMonths, "months", "m", 0, "time horizon in months (1-6)")
	scanCmd.Flags().IntVar(&scanLookback, "lookback", 0, "lookback window in days (30|60|90|180)")
	scanCmd.Flags().IntVar(&scanLimit, "limit", 0, "max tickers to scan (0 = no limit)")
	scanCmd.Flags().BoolVar(&scanJSON, "json", false, "print the report as JSON")
}

func runScan(cmd *cobra.Command, args []string) error {
	d, err := buildDeps()
	if err != nil {
		return err
	}
	defer d.close()

	req := scanner.Request{
		Universe:          scanUniverse,
		TimeHorizonMonths: scanMonths,
		LookbackDays:      scanLookback,
		Limit:             scanLimit,
	}
	if scanRisk != "" {
		tier, err := allocation.ParseRiskTier(scanRisk)
		if err != nil {
			return fmt.Errorf("invalid --risk: %w", err)
		}
		req.RiskTier = tier
		req.HasRiskTier = true
	}

	// Ctrl+C aborts the scan cleanly
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var progress scanner.Progress
	if !scanJSON {
		progress = func(done, total int, ticker string) {
			fmt.Printf("\r  Fetching %d/%d (%s)          ", done, total, ticker)
		}
	}

	report, err := d.scanner.Scan(ctx, req, progress)
	if err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}
	if !scanJSON {
		fmt.Print("\r                                        \r")
	}

	if scanJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}

	printReport(report)
	return nil
}

// printReport renders the report as a colored terminal table.
func printReport(report *scanner.Report) {
	fmt.Println()
	PrintDoubleSeparator()
	fmt.Printf("  %sMomentum Scan: %s%s\n", colorBold, report.Universe, colorReset)
	PrintSeparator()
	fmt.Printf("  Strategy   : %s\n", report.StrategyID)
	fmt.Printf("  Risk tier  : %s\n", report.RiskTier)
	fmt.Printf("  Lookback   : %d days\n", report.LookbackDays)
	fmt.Printf("  Scanned    : %d tickers (%d skipped)\n", report.TickersScanned, len(report.Skipped))
	fmt.Printf("  Duration   : %.1fs\n", report.Duration.Seconds())
	PrintSeparator()

	if report.NoSurvivors {
		fmt.Printf("\n%s⚠ %s%s\n", colorYellow, report.Warning, colorReset)
		printFilterCounts(report.FilterCounts)
		fmt.Println()
		return
	}

	fmt.Printf("\n  %-4s %-12s %10s %12s %6s %8s %7s %7s %6s %8s %7s\n",
		"#", "TICKER", "PRICE", "MOMENTUM", "RSI", "VOL(M)", "P/E", "ROE%", "D/E", "MCAP", "ALLOC")
	PrintSeparator()

	for i, pos := range report.Positions {
		rsi := "N/A"
		if pos.RSI != nil {
			rsi = fmt.Sprintf("%.0f", *pos.RSI)
		}
		fmt.Printf("  %-4d %-12s %10.2f %21s %6s %8.2f %7s %7s %6s %8s %6.1f%%\n",
			i+1,
			pos.Ticker,
			pos.CurrentPrice,
			fmtMomentum(pos.MomentumPct), // width includes color codes
			rsi,
			pos.AvgVolumeM,
			fmtOptional(pos.PE, "%.1f"),
			fmtOptional(pos.ROEPct, "%.1f"),
			fmtOptional(pos.DebtEquity, "%.2f"),
			fmtMarketCap(pos.MarketCap),
			pos.AllocationPct,
		)
	}

	PrintSeparator()
	fmt.Printf("  Positions: %d x %.1f%% = %.1f%% of capital\n",
		report.Plan.PositionCount, report.Plan.PerPositionPct, report.TotalPct)
	printFilterCounts(report.FilterCounts)

	if len(report.Skipped) > 0 {
		fmt.Printf("\n  Skipped %d tickers:\n", len(report.Skipped))
		for _, skip := range report.Skipped {
			fmt.Printf("    %-12s %s\n", skip.Ticker, skip.Reason)
		}
	}

	fmt.Println()
	PrintDoubleSeparator()
	fmt.Println("  Not investment advice. Verify the data before acting on it.")
	PrintDoubleSeparator()
	fmt.Println()
}

func printFilterCounts(counts map[string]int) {
	if len(counts) == 0 {
		return
	}

	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Println("\n  Filtered out:")
	for _, name := range names {
		fmt.Printf("    %-12s %d\n", name, counts[name])
	}
}
