package commands

import (
	"fmt"
)

// Common formatting utilities shared by all commands.

const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorBold   = "\033[1m"
)

// momentumColor picks the color for a momentum value: green for
// strong gains, yellow for flat-to-modest, red for losses.
func momentumColor(momentumPct float64) string {
	switch {
	case momentumPct >= 15:
		return colorGreen
	case momentumPct >= 0:
		return colorYellow
	default:
		return colorRed
	}
}

// fmtMomentum renders a colored momentum percentage.
func fmtMomentum(momentumPct float64) string {
	return fmt.Sprintf("%s%+.2f%%%s", momentumColor(momentumPct), momentumPct, colorReset)
}

// fmtOptional renders a nullable metric, "N/A" when absent.
func fmtOptional(v *float64, format string) string {
	if v == nil {
		return "N/A"
	}
	return fmt.Sprintf(format, *v)
}

// fmtMarketCap renders an absolute market cap in billions.
func fmtMarketCap(v *float64) string {
	if v == nil {
		return "N/A"
	}
	return fmt.Sprintf("%.1fB", *v/1e9)
}

// PrintSeparator prints a visual separator
func PrintSeparator() {
	fmt.Println("───────────────────────────────────────────────────────────────────────────────")
}

// PrintDoubleSeparator prints a double-line separator
func PrintDoubleSeparator() {
	fmt.Println("═══════════════════════════════════════════════════════════════════════════════")
}
