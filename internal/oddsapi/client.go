package oddsapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// Event is one fixture as returned by GET /sports/{sport}/odds
type Event struct {
	ID           string      `json:"id"`
	SportKey     string      `json:"sport_key"`
	SportTitle   string      `json:"sport_title"`
	CommenceTime time.Time   `json:"commence_time"`
	HomeTeam     string      `json:"home_team"`
	AwayTeam     string      `json:"away_team"`
	Bookmakers   []Bookmaker `json:"bookmakers"`
}

// Bookmaker holds one bookmaker's markets for an event
type Bookmaker struct {
	Key        string    `json:"key"`
	Title      string    `json:"title"`
	LastUpdate time.Time `json:"last_update"`
	Markets    []Market  `json:"markets"`
}

// Name returns the display title, falling back to the key
func (b Bookmaker) Name() string {
	if b.Title != "" {
		return b.Title
	}
	return b.Key
}

// Market is a bookmaker market such as h2h or totals
type Market struct {
	Key      string    `json:"key"`
	Outcomes []Outcome `json:"outcomes"`
}

// Outcome is a single priced selection. Point is set for totals.
type Outcome struct {
	Name  string           `json:"name"`
	Price decimal.Decimal  `json:"price"`
	Point *decimal.Decimal `json:"point,omitempty"`
}

// Config holds odds API client configuration
type Config struct {
	BaseURL string // e.g., "https://api.the-odds-api.com/v4"
	APIKey  string
	Sport   string // e.g., "upcoming" or "soccer_epl"
	Regions string // e.g., "uk"
	Markets string // e.g., "h2h,totals"
	Timeout time.Duration
}

// Client fetches decimal odds from the-odds-api
type Client struct {
	httpClient *http.Client
	config     Config
	logger     zerolog.Logger
}

// NewClient creates a new odds API client
func NewClient(config Config, logger zerolog.Logger) *Client {
	timeout := config.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		config: config,
		logger: logger.With().Str("component", "odds_api_client").Logger(),
	}
}

// FetchOdds fetches current odds for the configured sport, regions and markets
func (c *Client) FetchOdds(ctx context.Context) ([]Event, error) {
	endpoint := c.oddsURL()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch odds: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("odds API returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var events []Event
	if err := json.NewDecoder(resp.Body).Decode(&events); err != nil {
		return nil, fmt.Errorf("failed to decode odds: %w", err)
	}

	c.logger.Debug().
		Str("sport", c.config.Sport).
		Int("events", len(events)).
		Str("requests_remaining", resp.Header.Get("x-requests-remaining")).
		Str("requests_used", resp.Header.Get("x-requests-used")).
		Msg("fetched odds")

	return events, nil
}

func (c *Client) oddsURL() string {
	q := url.Values{}
	q.Set("apiKey", c.config.APIKey)
	q.Set("regions", c.config.Regions)
	q.Set("markets", c.config.Markets)
	q.Set("oddsFormat", "decimal")

	return fmt.Sprintf("%s/sports/%s/odds/?%s",
		strings.TrimRight(c.config.BaseURL, "/"), url.PathEscape(c.config.Sport), q.Encode())
}
