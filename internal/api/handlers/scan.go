package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/wonny/momentum/internal/allocation"
	"github.com/wonny/momentum/internal/scanner"
	"github.com/wonny/momentum/internal/universe"
	"github.com/wonny/momentum/pkg/logger"
)

// ScanHandler handles scan-related API endpoints.
type ScanHandler struct {
	scanner  *scanner.Scanner
	source   universe.Source
	latest   *scanner.LatestStore
	upgrader websocket.Upgrader
	logger   *logger.Logger
}

// NewScanHandler creates a new scan handler.
func NewScanHandler(sc *scanner.Scanner, source universe.Source, latest *scanner.LatestStore, log *logger.Logger) *ScanHandler {
	return &ScanHandler{
		scanner: sc,
		source:  source,
		latest:  latest,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
		},
		logger: log,
	}
}

// ScanRequest represents a scan request. Unset fields fall back to
// the strategy defaults.
type ScanRequest struct {
	Universe          string `json:"universe" validate:"required"`
	RiskTier          string `json:"risk_tier" validate:"omitempty,oneof=low medium high"`
	TimeHorizonMonths int    `json:"time_horizon_months" validate:"omitempty,min=1,max=6"`
	LookbackDays      int    `json:"lookback_days" validate:"omitempty,oneof=30 60 90 180"`
	Limit             int    `json:"limit" validate:"gte=0"`
}

// toScannerRequest converts the API request. Validation has already
// confirmed RiskTier is empty or a known tier name.
func (r ScanRequest) toScannerRequest() scanner.Request {
	req := scanner.Request{
		Universe:          r.Universe,
		TimeHorizonMonths: r.TimeHorizonMonths,
		LookbackDays:      r.LookbackDays,
		Limit:             r.Limit,
	}
	if r.RiskTier != "" {
		tier, err := allocation.ParseRiskTier(r.RiskTier)
		if err == nil {
			req.RiskTier = tier
			req.HasRiskTier = true
		}
	}
	return req
}

// Universes returns the names of all known universes
// GET /api/universes
func (h *ScanHandler) Universes(w http.ResponseWriter, r *http.Request) {
	names, err := h.source.List(r.Context())
	if err != nil {
		h.logger.WithError(err).Error("Failed to list universes")
		respondError(w, http.StatusInternalServerError, "Failed to list universes")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"universes": names,
	})
}

// Scan runs a scan synchronously and returns the report
// POST /api/scan
func (h *ScanHandler) Scan(w http.ResponseWriter, r *http.Request) {
	var req ScanRequest
	if errs := decodeAndValidate(r, &req); errs != nil {
		respondJSON(w, http.StatusUnprocessableEntity, map[string]interface{}{
			"errors": errs,
		})
		return
	}

	report, err := h.scanner.Scan(r.Context(), req.toScannerRequest(), nil)
	if err != nil {
		h.respondScanError(w, req.Universe, err)
		return
	}

	h.latest.Set(report)
	respondJSON(w, http.StatusOK, report)
}

// Latest returns the most recent report
// GET /api/scan/latest
func (h *ScanHandler) Latest(w http.ResponseWriter, r *http.Request) {
	report := h.latest.Get()
	if report == nil {
		respondError(w, http.StatusNotFound, "No scan has run yet")
		return
	}

	respondJSON(w, http.StatusOK, report)
}

// streamEvent is one websocket message. Type is "progress", "report"
// or "error".
type streamEvent struct {
	Type   string          `json:"type"`
	Done   int             `json:"done,omitempty"`
	Total  int             `json:"total,omitempty"`
	Ticker string          `json:"ticker,omitempty"`
	Report *scanner.Report `json:"report,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// Stream upgrades to a websocket, reads one ScanRequest and streams
// per-ticker progress followed by the final report
// GET /api/scan/stream
func (h *ScanHandler) Stream(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.WithError(err).Error("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	var req ScanRequest
	if err := conn.ReadJSON(&req); err != nil {
		h.writeStreamEvent(conn, nil, streamEvent{Type: "error", Error: "invalid request"})
		return
	}
	if err := validate.StructCtx(r.Context(), &req); err != nil {
		errs := validationErrors(err)
		h.writeStreamEvent(conn, nil, streamEvent{Type: "error", Error: errs[0].Message})
		return
	}

	// Progress callbacks come from multiple workers; serialize writes.
	var writeMu sync.Mutex
	progress := func(done, total int, ticker string) {
		h.writeStreamEvent(conn, &writeMu, streamEvent{
			Type:   "progress",
			Done:   done,
			Total:  total,
			Ticker: ticker,
		})
	}

	report, err := h.scanner.Scan(r.Context(), req.toScannerRequest(), progress)
	if err != nil {
		h.writeStreamEvent(conn, &writeMu, streamEvent{Type: "error", Error: scanErrorMessage(err)})
		return
	}

	h.latest.Set(report)
	h.writeStreamEvent(conn, &writeMu, streamEvent{Type: "report", Report: report})
}

func (h *ScanHandler) writeStreamEvent(conn *websocket.Conn, mu *sync.Mutex, event streamEvent) {
	if mu != nil {
		mu.Lock()
		defer mu.Unlock()
	}
	if err := conn.WriteJSON(event); err != nil {
		h.logger.WithError(err).Debug("WebSocket write failed")
	}
}

// respondScanError maps scan errors to HTTP statuses: unknown or
// malformed universes are client errors, everything else is internal.
func (h *ScanHandler) respondScanError(w http.ResponseWriter, universeName string, err error) {
	h.logger.WithError(err).WithField("universe", universeName).Error("Scan failed")

	switch {
	case errors.Is(err, universe.ErrNotFound):
		respondError(w, http.StatusNotFound, "Universe not found: "+universeName)
	case errors.Is(err, universe.ErrMissingSymbolColumn):
		respondError(w, http.StatusUnprocessableEntity, "Universe file has no Symbol column")
	default:
		respondError(w, http.StatusInternalServerError, "Scan failed")
	}
}

func scanErrorMessage(err error) string {
	switch {
	case errors.Is(err, universe.ErrNotFound):
		return "universe not found"
	case errors.Is(err, universe.ErrMissingSymbolColumn):
		return "universe file has no Symbol column"
	default:
		return "scan failed"
	}
}

// Helper functions

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{
		"error": message,
	})
}
