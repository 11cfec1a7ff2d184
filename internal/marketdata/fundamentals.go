package marketdata

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Statistics page labels mapped to snapshot fields.
const (
	labelTrailingPE = "Trailing P/E"
	labelROE        = "Return on Equity"
	labelDebtEquity = "Total Debt/Equity"
	labelMarketCap  = "Market Cap"
)

// FetchFundamentals scrapes the key-statistics page for a symbol.
// Attributes the page does not report stay nil in the snapshot.
func (c *YahooClient) FetchFundamentals(ctx context.Context, symbol string) (Fundamentals, error) {
	fullURL := fmt.Sprintf("%s/%s/key-statistics", c.quoteBaseURL, c.providerSymbol(symbol))

	resp, err := c.httpClient.Get(ctx, fullURL)
	if err != nil {
		return Fundamentals{}, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return Fundamentals{}, fmt.Errorf("%s: %w", symbol, ErrNotFound)
	}
	if resp.StatusCode != http.StatusOK {
		return Fundamentals{}, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Fundamentals{}, fmt.Errorf("read response body failed: %w", err)
	}

	snapshot := parseFundamentalsHTML(string(body))

	c.logger.WithFields(map[string]interface{}{
		"symbol": symbol,
	}).Debug("Fetched fundamentals")

	return snapshot, nil
}

// parseFundamentalsHTML walks the statistics tables. Rows are
// label/value pairs; unparseable or absent values stay nil.
func parseFundamentalsHTML(html string) Fundamentals {
	var snapshot Fundamentals

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return snapshot
	}

	doc.Find("table tr").Each(func(i int, row *goquery.Selection) {
		cells := row.Find("td")
		if cells.Length() < 2 {
			return
		}

		label := strings.TrimSpace(cells.Eq(0).Text())
		value := strings.TrimSpace(cells.Eq(cells.Length() - 1).Text())

		switch {
		case strings.HasPrefix(label, labelTrailingPE):
			snapshot.PE = parseStatValue(value)
		case strings.HasPrefix(label, labelROE):
			if v := parseStatValue(value); v != nil {
				// Page reports a percentage; keep the fraction.
				frac := *v / 100
				snapshot.ROE = &frac
			}
		case strings.HasPrefix(label, labelDebtEquity):
			snapshot.DebtEquity = parseStatValue(value)
		case strings.HasPrefix(label, labelMarketCap):
			snapshot.MarketCap = parseStatValue(value)
		}
	})

	return snapshot
}

// parseStatValue parses values like "24.31", "16.45%", "1.23T",
// "850.2B", "12.5M". Returns nil for "N/A", "--" or garbage.
func parseStatValue(s string) *float64 {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, ",", "")
	if s == "" || s == "N/A" || s == "--" || s == "-" {
		return nil
	}

	multiplier := 1.0
	switch {
	case strings.HasSuffix(s, "%"):
		s = strings.TrimSuffix(s, "%")
	case strings.HasSuffix(s, "T"):
		multiplier = 1e12
		s = strings.TrimSuffix(s, "T")
	case strings.HasSuffix(s, "B"):
		multiplier = 1e9
		s = strings.TrimSuffix(s, "B")
	case strings.HasSuffix(s, "M"):
		multiplier = 1e6
		s = strings.TrimSuffix(s, "M")
	case strings.HasSuffix(s, "k"):
		multiplier = 1e3
		s = strings.TrimSuffix(s, "k")
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}

	v *= multiplier
	return &v
}
