package handler

import (
	"log/slog"
	"net/http"
)

// BooksHandler exposes the active bookmaker pairing and vig assumptions.
type BooksHandler struct {
	target    string
	compare   string
	vig       map[string]float64
	vigBuffer float64
	logger    *slog.Logger
}

// NewBooksHandler creates a BooksHandler for the configured pairing.
func NewBooksHandler(target, compare string, vig map[string]float64, vigBuffer float64, logger *slog.Logger) *BooksHandler {
	return &BooksHandler{
		target:    target,
		compare:   compare,
		vig:       vig,
		vigBuffer: vigBuffer,
		logger:    logHandler(logger, "books"),
	}
}

// GetBooks returns the configured target and compare books along with the
// per-book vig fractions applied during detection.
// GET /api/books
func (h *BooksHandler) GetBooks(w http.ResponseWriter, r *http.Request) {
	vig := make(map[string]float64, len(h.vig))
	for k, v := range h.vig {
		vig[k] = v
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"target":     h.target,
		"compare":    h.compare,
		"vig":        vig,
		"vig_buffer": h.vigBuffer,
	})
}
