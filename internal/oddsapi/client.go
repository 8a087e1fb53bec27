// Package oddsapi is a thin client for the-odds-api v4. It fetches event
// odds for one sport at a time and converts the wire payload into validated
// domain records, dropping malformed events at the boundary.
package oddsapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/bsumme/hedgefinder/internal/domain"
)

// DefaultBaseURL is the production API root.
const DefaultBaseURL = "https://api.the-odds-api.com/v4"

// Client is the REST client for the-odds-api.
type Client struct {
	baseURL    string
	apiKey     string
	regions    string
	httpClient *http.Client
	logger     *slog.Logger

	// sample switches the client to deterministic generated data, for demos
	// and offline runs. The flag participates in cache keys upstream.
	sample bool
}

// Config holds the client parameters.
type Config struct {
	BaseURL string
	APIKey  string
	Regions string // comma-separated, e.g. "us"
	Sample  bool
}

// NewClient creates a new odds API client.
func NewClient(cfg Config, logger *slog.Logger) *Client {
	base := cfg.BaseURL
	if base == "" {
		base = DefaultBaseURL
	}
	regions := cfg.Regions
	if regions == "" {
		regions = "us"
	}
	return &Client{
		baseURL: strings.TrimRight(base, "/"),
		apiKey:  cfg.APIKey,
		regions: regions,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: logger.With(slog.String("component", "oddsapi")),
		sample: cfg.Sample,
	}
}

// Sample reports whether the client serves generated sample data.
func (c *Client) Sample() bool { return c.sample }

// wire shapes for the-odds-api v4 /sports/{sport}/odds response.
type wireOutcome struct {
	Name        string   `json:"name"`
	Price       float64  `json:"price"`
	Point       *float64 `json:"point,omitempty"`
	Description string   `json:"description,omitempty"`
}

type wireMarket struct {
	Key      string        `json:"key"`
	Outcomes []wireOutcome `json:"outcomes"`
}

type wireBookmaker struct {
	Key     string       `json:"key"`
	Title   string       `json:"title"`
	Markets []wireMarket `json:"markets"`
}

type wireEvent struct {
	ID           string          `json:"id"`
	SportKey     string          `json:"sport_key"`
	HomeTeam     string          `json:"home_team"`
	AwayTeam     string          `json:"away_team"`
	CommenceTime string          `json:"commence_time"`
	Bookmakers   []wireBookmaker `json:"bookmakers"`
}

// Events fetches odds for one sport/market combination restricted to the
// given bookmakers, in American odds format. Implements domain.EventSource.
func (c *Client) Events(ctx context.Context, sportKey, marketKey string, bookKeys []string) ([]domain.Event, error) {
	if c.sample {
		return sampleEvents(sportKey, marketKey, bookKeys), nil
	}

	params := url.Values{}
	params.Set("apiKey", c.apiKey)
	params.Set("regions", c.regions)
	params.Set("markets", marketKey)
	params.Set("oddsFormat", "american")
	if len(bookKeys) > 0 {
		params.Set("bookmakers", strings.Join(bookKeys, ","))
	}

	reqURL := fmt.Sprintf("%s/sports/%s/odds?%s", c.baseURL, url.PathEscape(sportKey), params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("oddsapi: build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("oddsapi: fetch %s odds: %w", sportKey, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("oddsapi: read response: %w", err)
	}
	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, fmt.Errorf("oddsapi: %w", domain.ErrRateLimited)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("oddsapi: fetch %s odds: status %d: %s", sportKey, resp.StatusCode, truncate(body, 200))
	}

	var wire []wireEvent
	if err := json.Unmarshal(body, &wire); err != nil {
		return nil, fmt.Errorf("oddsapi: decode %s odds: %w", sportKey, err)
	}

	return c.convert(wire), nil
}

// convert maps wire events to domain events, skipping records that fail
// boundary validation rather than failing the whole fetch.
func (c *Client) convert(wire []wireEvent) []domain.Event {
	events := make([]domain.Event, 0, len(wire))
	for _, we := range wire {
		ev, err := we.toDomain()
		if err != nil {
			c.logger.Warn("dropping malformed event",
				slog.String("event_id", we.ID),
				slog.String("error", err.Error()),
			)
			continue
		}
		events = append(events, ev)
	}
	return events
}

func (we *wireEvent) toDomain() (domain.Event, error) {
	commence, err := time.Parse(time.RFC3339, we.CommenceTime)
	if err != nil {
		return domain.Event{}, fmt.Errorf("parse commence_time %q: %w", we.CommenceTime, err)
	}

	ev := domain.Event{
		ID:           we.ID,
		SportKey:     we.SportKey,
		HomeTeam:     we.HomeTeam,
		AwayTeam:     we.AwayTeam,
		CommenceTime: commence.UTC(),
		Bookmakers:   make([]domain.BookmakerQuote, 0, len(we.Bookmakers)),
	}
	for _, wb := range we.Bookmakers {
		quote := domain.BookmakerQuote{
			Key:     wb.Key,
			Title:   wb.Title,
			Markets: make([]domain.Market, 0, len(wb.Markets)),
		}
		for _, wm := range wb.Markets {
			market := domain.Market{
				Key:      wm.Key,
				Outcomes: make([]domain.Outcome, 0, len(wm.Outcomes)),
			}
			for _, wo := range wm.Outcomes {
				market.Outcomes = append(market.Outcomes, domain.Outcome{
					Name:        wo.Name,
					Price:       wo.Price,
					Point:       wo.Point,
					Description: wo.Description,
				})
			}
			quote.Markets = append(quote.Markets, market)
		}
		ev.Bookmakers = append(ev.Bookmakers, quote)
	}

	if err := ev.Validate(); err != nil {
		return domain.Event{}, err
	}
	return ev, nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}

// Compile-time interface check.
var _ domain.EventSource = (*Client)(nil)
