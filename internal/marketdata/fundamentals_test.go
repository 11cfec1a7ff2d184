package marketdata

import "testing"

const statsHTML = `
<html><body>
<table>
  <tr><td>Market Cap</td><td>1.62T</td></tr>
  <tr><td>Trailing P/E</td><td>24.31</td></tr>
</table>
<table>
  <tr><td>Return on Equity (ttm)</td><td>16.45%</td></tr>
  <tr><td>Total Debt/Equity (mrq)</td><td>41.20</td></tr>
  <tr><td>Operating Margin</td><td>N/A</td></tr>
</table>
</body></html>`

const sparseHTML = `
<html><body>
<table>
  <tr><td>Market Cap</td><td>850.2B</td></tr>
  <tr><td>Trailing P/E</td><td>N/A</td></tr>
  <tr><td>Return on Equity (ttm)</td><td>--</td></tr>
</table>
</body></html>`

func TestParseFundamentalsHTML(t *testing.T) {
	snapshot := parseFundamentalsHTML(statsHTML)

	if snapshot.PE == nil || *snapshot.PE != 24.31 {
		t.Errorf("PE = %v, want 24.31", snapshot.PE)
	}
	if snapshot.ROE == nil || *snapshot.ROE != 0.1645 {
		t.Errorf("ROE = %v, want 0.1645", snapshot.ROE)
	}
	if snapshot.DebtEquity == nil || *snapshot.DebtEquity != 41.20 {
		t.Errorf("DebtEquity = %v, want 41.20", snapshot.DebtEquity)
	}
	if snapshot.MarketCap == nil || *snapshot.MarketCap != 1.62e12 {
		t.Errorf("MarketCap = %v, want 1.62e12", snapshot.MarketCap)
	}
}

func TestParseFundamentalsHTMLSparse(t *testing.T) {
	snapshot := parseFundamentalsHTML(sparseHTML)

	if snapshot.MarketCap == nil || *snapshot.MarketCap != 850.2e9 {
		t.Errorf("MarketCap = %v, want 850.2e9", snapshot.MarketCap)
	}

	// Missing attributes must stay nil, never become zero
	if snapshot.PE != nil {
		t.Errorf("PE = %v, want nil", *snapshot.PE)
	}
	if snapshot.ROE != nil {
		t.Errorf("ROE = %v, want nil", *snapshot.ROE)
	}
	if snapshot.DebtEquity != nil {
		t.Errorf("DebtEquity = %v, want nil", *snapshot.DebtEquity)
	}
}

func TestParseStatValue(t *testing.T) {
	tests := []struct {
		in   string
		want *float64
	}{
		{"24.31", f(24.31)},
		{"16.45%", f(16.45)},
		{"1.62T", f(1.62e12)},
		{"850.2B", f(850.2e9)},
		{"12.5M", f(12.5e6)},
		{"1,234.5", f(1234.5)},
		{"N/A", nil},
		{"--", nil},
		{"", nil},
		{"abc", nil},
	}

	for _, tt := range tests {
		got := parseStatValue(tt.in)
		switch {
		case tt.want == nil && got != nil:
			t.Errorf("parseStatValue(%q) = %v, want nil", tt.in, *got)
		case tt.want != nil && got == nil:
			t.Errorf("parseStatValue(%q) = nil, want %v", tt.in, *tt.want)
		case tt.want != nil && *got != *tt.want:
			t.Errorf("parseStatValue(%q) = %v, want %v", tt.in, *got, *tt.want)
		}
	}
}

func f(v float64) *float64 { return &v }
