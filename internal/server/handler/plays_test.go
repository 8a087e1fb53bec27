package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bsumme/hedgefinder/internal/domain"
)

type stubScanner struct {
	plays []domain.ValuePlay
	err   error
}

func (s *stubScanner) Scan(context.Context) ([]domain.ValuePlay, error) {
	return s.plays, s.err
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func scanPlays() []domain.ValuePlay {
	margin := 1.2
	commence := time.Date(2026, 3, 14, 19, 0, 0, 0, time.UTC)
	return []domain.ValuePlay{
		{ID: "p1", EventID: "e1", MarketKey: "h2h", OutcomeName: "Boston Celtics",
			CommenceTime: commence, TargetPrice: -105, ComparePrice: -120,
			EVPercent: 2.1, ArbMarginPercent: &margin, IsArbitrage: true},
		{ID: "p2", EventID: "e2", MarketKey: "spreads", OutcomeName: "Miami Heat",
			CommenceTime: commence, TargetPrice: -110, ComparePrice: -118,
			EVPercent: 1.4},
		{ID: "p3", EventID: "e3", MarketKey: "h2h", OutcomeName: "Denver Nuggets",
			CommenceTime: commence, TargetPrice: 120, ComparePrice: 105,
			EVPercent: 3.0},
		{ID: "p4", EventID: "e4", MarketKey: "totals", OutcomeName: "Over",
			CommenceTime: commence, TargetPrice: -110, ComparePrice: -115,
			EVPercent: 0.9},
	}
}

func decodeList(t *testing.T, rec *httptest.ResponseRecorder) (int, []domain.ValuePlay) {
	t.Helper()
	var body struct {
		Count int                `json:"count"`
		Plays []domain.ValuePlay `json:"plays"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return body.Count, body.Plays
}

func TestListPlays(t *testing.T) {
	h := NewPlaysHandler(&stubScanner{plays: scanPlays()}, testLogger())

	rec := httptest.NewRecorder()
	h.ListPlays(rec, httptest.NewRequest(http.MethodGet, "/api/plays", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	count, plays := decodeList(t, rec)
	if count != 4 || len(plays) != 4 {
		t.Fatalf("count = %d, plays = %d", count, len(plays))
	}
	if plays[0].NoVigReversePrice != nil {
		t.Fatal("reverse price should be omitted when unset")
	}
}

func TestListPlaysFilters(t *testing.T) {
	h := NewPlaysHandler(&stubScanner{plays: scanPlays()}, testLogger())

	rec := httptest.NewRecorder()
	h.ListPlays(rec, httptest.NewRequest(http.MethodGet, "/api/plays?market=h2h", nil))
	if count, _ := decodeList(t, rec); count != 2 {
		t.Fatalf("market filter: count = %d, want 2", count)
	}

	rec = httptest.NewRecorder()
	h.ListPlays(rec, httptest.NewRequest(http.MethodGet, "/api/plays?arb_only=true", nil))
	count, plays := decodeList(t, rec)
	if count != 1 || plays[0].ID != "p1" {
		t.Fatalf("arb filter: count = %d, plays = %v", count, plays)
	}

	rec = httptest.NewRecorder()
	h.ListPlays(rec, httptest.NewRequest(http.MethodGet, "/api/plays?limit=2", nil))
	if count, _ := decodeList(t, rec); count != 2 {
		t.Fatalf("limit: count = %d, want 2", count)
	}
}

func TestListPlaysScanError(t *testing.T) {
	h := NewPlaysHandler(&stubScanner{err: errors.New("provider down")}, testLogger())

	rec := httptest.NewRecorder()
	h.ListPlays(rec, httptest.NewRequest(http.MethodGet, "/api/plays", nil))
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", rec.Code)
	}
}

func TestGetParlay(t *testing.T) {
	h := NewPlaysHandler(&stubScanner{plays: scanPlays()}, testLogger())

	rec := httptest.NewRecorder()
	h.GetParlay(rec, httptest.NewRequest(http.MethodGet, "/api/plays/parlay", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var parlay domain.Parlay
	if err := json.Unmarshal(rec.Body.Bytes(), &parlay); err != nil {
		t.Fatalf("decode parlay: %v", err)
	}
	if len(parlay.Legs) != 3 {
		t.Fatalf("legs = %d, want 3", len(parlay.Legs))
	}
	if parlay.Legs[0].ID != "p3" {
		t.Fatalf("expected highest EV leg first, got %s", parlay.Legs[0].ID)
	}
}

func TestGetParlayNotEnoughGames(t *testing.T) {
	h := NewPlaysHandler(&stubScanner{plays: scanPlays()[:2]}, testLogger())

	rec := httptest.NewRecorder()
	h.GetParlay(rec, httptest.NewRequest(http.MethodGet, "/api/plays/parlay", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestGetBooks(t *testing.T) {
	h := NewBooksHandler("fanduel", "pinnacle", map[string]float64{"pinnacle": 0.02}, 0.01, testLogger())

	rec := httptest.NewRecorder()
	h.GetBooks(rec, httptest.NewRequest(http.MethodGet, "/api/books", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var body struct {
		Target    string             `json:"target"`
		Compare   string             `json:"compare"`
		Vig       map[string]float64 `json:"vig"`
		VigBuffer float64            `json:"vig_buffer"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Target != "fanduel" || body.Compare != "pinnacle" {
		t.Fatalf("pairing = %s/%s", body.Target, body.Compare)
	}
	if body.Vig["pinnacle"] != 0.02 || body.VigBuffer != 0.01 {
		t.Fatalf("vig = %v buffer = %g", body.Vig, body.VigBuffer)
	}
}
