package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/wonny/momentum/pkg/config"
	"github.com/wonny/momentum/pkg/httputil"
	"github.com/wonny/momentum/pkg/logger"
)

// YahooClient fetches daily series from the Yahoo Finance chart API
// and fundamentals from the quote statistics page.
type YahooClient struct {
	httpClient   *httputil.Client
	logger       *logger.Logger
	chartBaseURL string
	quoteBaseURL string
	symbolSuffix string
}

// NewYahooClient creates a new Yahoo Finance client.
func NewYahooClient(cfg config.ProviderConfig, httpClient *httputil.Client, log *logger.Logger) *YahooClient {
	return &YahooClient{
		httpClient:   httpClient,
		logger:       log,
		chartBaseURL: cfg.ChartBaseURL,
		quoteBaseURL: cfg.QuoteBaseURL,
		symbolSuffix: cfg.SymbolSuffix,
	}
}

// chartResponse mirrors the chart API envelope.
type chartResponse struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Close  []*float64 `json:"close"`
					Volume []*int64   `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// FetchSeries fetches the daily close/volume series for a symbol.
func (c *YahooClient) FetchSeries(ctx context.Context, symbol string, lookbackDays int) (Series, error) {
	fullURL := fmt.Sprintf("%s/%s?range=%dd&interval=1d",
		c.chartBaseURL, c.providerSymbol(symbol), lookbackDays)

	resp, err := c.httpClient.Get(ctx, fullURL)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%s: %w", symbol, ErrNotFound)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body failed: %w", err)
	}

	series, err := parseChartResponse(body)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", symbol, err)
	}

	c.logger.WithFields(map[string]interface{}{
		"symbol": symbol,
		"count":  len(series),
	}).Debug("Fetched series")

	return series, nil
}

// parseChartResponse decodes the chart envelope into a Series.
// Rows with a missing close are dropped (market holidays report null).
func parseChartResponse(body []byte) (Series, error) {
	var decoded chartResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, fmt.Errorf("parse response failed: %w", err)
	}

	if decoded.Chart.Error != nil {
		if decoded.Chart.Error.Code == "Not Found" {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("provider error: %s", decoded.Chart.Error.Description)
	}

	if len(decoded.Chart.Result) == 0 {
		return nil, ErrNoData
	}

	result := decoded.Chart.Result[0]
	if len(result.Indicators.Quote) == 0 || len(result.Timestamp) == 0 {
		return nil, ErrNoData
	}

	quote := result.Indicators.Quote[0]
	series := make(Series, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		if i >= len(quote.Close) || quote.Close[i] == nil {
			continue
		}

		var volume int64
		if i < len(quote.Volume) && quote.Volume[i] != nil {
			volume = *quote.Volume[i]
		}

		series = append(series, Sample{
			Date:   time.Unix(ts, 0).UTC(),
			Close:  *quote.Close[i],
			Volume: volume,
		})
	}

	if len(series) == 0 {
		return nil, ErrNoData
	}

	return series, nil
}

// providerSymbol appends the configured exchange suffix unless the
// symbol already carries one.
func (c *YahooClient) providerSymbol(symbol string) string {
	if c.symbolSuffix == "" {
		return symbol
	}
	if len(symbol) >= len(c.symbolSuffix) && symbol[len(symbol)-len(c.symbolSuffix):] == c.symbolSuffix {
		return symbol
	}
	return symbol + c.symbolSuffix
}
