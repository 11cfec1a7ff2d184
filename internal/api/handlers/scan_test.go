package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/momentum/internal/marketdata"
	"github.com/wonny/momentum/internal/scanner"
	"github.com/wonny/momentum/internal/strategy"
	"github.com/wonny/momentum/internal/universe"
	"github.com/wonny/momentum/pkg/logger"
)

type stubSource struct {
	tickers []string
}

func (s stubSource) Resolve(_ context.Context, name string) ([]string, error) {
	if name != "NIFTY50" {
		return nil, universe.ErrNotFound
	}
	return s.tickers, nil
}

func (s stubSource) List(_ context.Context) ([]string, error) {
	return []string{"NIFTY50", "NIFTY100"}, nil
}

type stubGateway struct {
	series map[string]marketdata.Series
}

func (g *stubGateway) FetchSeries(_ context.Context, symbol string, _ int) (marketdata.Series, error) {
	series, ok := g.series[symbol]
	if !ok {
		return nil, marketdata.ErrNotFound
	}
	return series, nil
}

func (g *stubGateway) FetchFundamentals(_ context.Context, _ string) (marketdata.Fundamentals, error) {
	return marketdata.Fundamentals{}, nil
}

func seriesOf(first, last float64) marketdata.Series {
	day := time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)
	return marketdata.Series{
		{Date: day, Close: first, Volume: 1_000_000},
		{Date: day.AddDate(0, 0, 1), Close: last, Volume: 1_000_000},
	}
}

func newTestHandler(t *testing.T) *ScanHandler {
	t.Helper()

	source := stubSource{tickers: []string{"AAA", "BBB"}}
	gateway := &stubGateway{series: map[string]marketdata.Series{
		"AAA": seriesOf(100, 110),
		"BBB": seriesOf(100, 125),
	}}

	log := logger.NewNop()
	sc := scanner.New(source, gateway, strategy.Default(), scanner.Options{Workers: 2}, nil, log)
	return NewScanHandler(sc, source, scanner.NewLatestStore(), log)
}

func postScan(t *testing.T, h *ScanHandler, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/api/scan", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.Scan(rec, req)
	return rec
}

func TestScanEndpoint(t *testing.T) {
	h := newTestHandler(t)

	rec := postScan(t, h, `{"universe":"NIFTY50","risk_tier":"high"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var report scanner.Report
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	require.Len(t, report.Positions, 2)
	assert.Equal(t, "BBB", report.Positions[0].Ticker)
	assert.Equal(t, "NIFTY50", report.Universe)
}

func TestScanEndpointValidation(t *testing.T) {
	h := newTestHandler(t)

	tests := []struct {
		name string
		body string
	}{
		{"missing universe", `{}`},
		{"bad tier", `{"universe":"NIFTY50","risk_tier":"extreme"}`},
		{"bad horizon", `{"universe":"NIFTY50","time_horizon_months":9}`},
		{"bad lookback", `{"universe":"NIFTY50","lookback_days":45}`},
		{"unknown field", `{"universe":"NIFTY50","colour":"red"}`},
		{"not json", `universe=NIFTY50`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := postScan(t, h, tt.body)
			assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
			assert.Contains(t, rec.Body.String(), "errors")
		})
	}
}

func TestScanEndpointUnknownUniverse(t *testing.T) {
	h := newTestHandler(t)

	rec := postScan(t, h, `{"universe":"FTSE100"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestLatestEndpoint(t *testing.T) {
	h := newTestHandler(t)

	rec := httptest.NewRecorder()
	h.Latest(rec, httptest.NewRequest(http.MethodGet, "/api/scan/latest", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	postScan(t, h, `{"universe":"NIFTY50"}`)

	rec = httptest.NewRecorder()
	h.Latest(rec, httptest.NewRequest(http.MethodGet, "/api/scan/latest", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var report scanner.Report
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.Equal(t, "NIFTY50", report.Universe)
}

func TestUniversesEndpoint(t *testing.T) {
	h := newTestHandler(t)

	rec := httptest.NewRecorder()
	h.Universes(rec, httptest.NewRequest(http.MethodGet, "/api/universes", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Universes []string `json:"universes"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, []string{"NIFTY50", "NIFTY100"}, resp.Universes)
}

func TestStreamEndpoint(t *testing.T) {
	h := newTestHandler(t)

	server := httptest.NewServer(http.HandlerFunc(h.Stream))
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.WriteJSON(map[string]string{"universe": "NIFTY50"}))

	progressSeen := 0
	for {
		var event struct {
			Type   string          `json:"type"`
			Done   int             `json:"done"`
			Total  int             `json:"total"`
			Report *scanner.Report `json:"report"`
			Error  string          `json:"error"`
		}
		require.NoError(t, conn.ReadJSON(&event))

		switch event.Type {
		case "progress":
			progressSeen++
			assert.Equal(t, 2, event.Total)
		case "report":
			assert.Equal(t, 2, progressSeen)
			require.NotNil(t, event.Report)
			assert.Len(t, event.Report.Positions, 2)
			return
		case "error":
			t.Fatalf("unexpected stream error: %s", event.Error)
		}
	}
}

func TestStreamEndpointInvalidRequest(t *testing.T) {
	h := newTestHandler(t)

	server := httptest.NewServer(http.HandlerFunc(h.Stream))
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.WriteJSON(map[string]string{"risk_tier": "high"}))

	var event struct {
		Type  string `json:"type"`
		Error string `json:"error"`
	}
	require.NoError(t, conn.ReadJSON(&event))
	assert.Equal(t, "error", event.Type)
	assert.NotEmpty(t, event.Error)
}
