package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/bsumme/hedgefinder/internal/domain"
	"github.com/bsumme/hedgefinder/internal/engine"
)

// PlayScanner runs one full scan over the configured sports and markets and
// returns the ranked play list.
type PlayScanner interface {
	Scan(ctx context.Context) ([]domain.ValuePlay, error)
}

// PlaysHandler serves the play-discovery endpoints. Each request triggers a
// fresh scan; the caching source keeps repeated requests from hammering the
// odds provider.
type PlaysHandler struct {
	scanner PlayScanner
	logger  *slog.Logger
}

// NewPlaysHandler creates a PlaysHandler backed by the given scanner.
func NewPlaysHandler(scanner PlayScanner, logger *slog.Logger) *PlaysHandler {
	return &PlaysHandler{
		scanner: scanner,
		logger:  logHandler(logger, "plays"),
	}
}

// ListPlays scans and returns ranked plays.
// GET /api/plays?market=spreads&arb_only=true&limit=50
func (h *PlaysHandler) ListPlays(w http.ResponseWriter, r *http.Request) {
	plays, err := h.scanner.Scan(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "scan failed", slog.String("error", err.Error()))
		writeError(w, http.StatusBadGateway, "scan failed: "+err.Error())
		return
	}

	q := r.URL.Query()
	market := q.Get("market")
	arbOnly, _ := strconv.ParseBool(q.Get("arb_only"))

	filtered := plays[:0]
	for _, p := range plays {
		if market != "" && p.MarketKey != market {
			continue
		}
		if arbOnly && !p.IsArbitrage {
			continue
		}
		filtered = append(filtered, p)
	}

	if limit := parseLimit(r); len(filtered) > limit {
		filtered = filtered[:limit]
	}
	if filtered == nil {
		filtered = []domain.ValuePlay{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"count": len(filtered),
		"plays": filtered,
	})
}

// GetParlay scans and assembles the three highest-EV plays from distinct
// games into a parlay.
// GET /api/plays/parlay
func (h *PlaysHandler) GetParlay(w http.ResponseWriter, r *http.Request) {
	plays, err := h.scanner.Scan(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "scan failed", slog.String("error", err.Error()))
		writeError(w, http.StatusBadGateway, "scan failed: "+err.Error())
		return
	}

	parlay := engine.BuildParlay(plays)
	if parlay == nil {
		writeError(w, http.StatusNotFound, "not enough plays across distinct games to build a parlay")
		return
	}

	writeJSON(w, http.StatusOK, parlay)
}
