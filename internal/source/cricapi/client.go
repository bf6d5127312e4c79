// Package cricapi wraps the paid cricket-statistics REST API. Responses
// are cached per (endpoint, params) with endpoint-specific TTLs; on
// network failure the client serves its own stale cache before reporting
// the source unavailable.
package cricapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"

	"github.com/fortuna/willow/internal/cache"
	"github.com/fortuna/willow/internal/models"
	"github.com/fortuna/willow/internal/source"
)

// SourceName tags records produced by this package.
const SourceName = "cricapi"

// Client talks to the v1 REST API.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	breaker *gobreaker.CircuitBreaker
	cache   *cache.FileCache
	log     *logrus.Entry
}

// Config holds client settings.
type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// New creates a client. cache may not be nil; every read path goes
// through it.
func New(cfg Config, fc *cache.FileCache, log *logrus.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.cricapi.com/v1"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}

	entry := log.WithField("component", "cricapi")

	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:     "cricapi",
		Interval: 60 * time.Second,
		Timeout:  30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > 3
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			entry.Warnf("circuit breaker %s: %s -> %s", name, from, to)
		},
	})

	return &Client{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		http:    &http.Client{Timeout: cfg.Timeout},
		breaker: cb,
		cache:   fc,
		log:     entry,
	}
}

// Name implements source.Source.
func (c *Client) Name() string { return SourceName }

// envelope is the common API response wrapper.
type envelope struct {
	Status string          `json:"status"`
	Data   json.RawMessage `json:"data"`
	Reason string          `json:"reason"`
}

// request fetches an endpoint, checking the cache first and falling back
// to stale cache on failure. cacheKind selects the TTL; cacheKey must be
// stable for the (endpoint, params) pair.
func (c *Client) request(ctx context.Context, endpoint string, params url.Values, cacheKind, cacheKey string, out interface{}) error {
	if err := c.cache.Get(cacheKind, cacheKey, out); err == nil {
		return nil
	}

	raw, err := c.fetch(ctx, endpoint, params)
	if err != nil {
		c.log.WithError(err).Warnf("fetch %s failed, trying stale cache", endpoint)
		if stale := c.cache.GetStale(cacheKind, cacheKey, out); stale == nil {
			return nil
		}
		return source.ErrUnavailable
	}

	if err := json.Unmarshal(raw, out); err != nil {
		c.log.WithError(err).Errorf("decoding %s payload", endpoint)
		if stale := c.cache.GetStale(cacheKind, cacheKey, out); stale == nil {
			return nil
		}
		return source.ErrUnavailable
	}

	if err := c.cache.Set(cacheKind, cacheKey, out); err != nil {
		c.log.WithError(err).Warn("writing cache entry")
	}
	return nil
}

// fetch performs one HTTP GET through the circuit breaker and unwraps the
// status envelope.
func (c *Client) fetch(ctx context.Context, endpoint string, params url.Values) (json.RawMessage, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("no api key configured")
	}

	result, err := c.breaker.Execute(func() (interface{}, error) {
		if params == nil {
			params = url.Values{}
		}
		params.Set("apikey", c.apiKey)

		u := fmt.Sprintf("%s/%s?%s", c.baseURL, endpoint, params.Encode())
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			return nil, err
		}

		resp, err := c.http.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
		}

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, err
		}

		var env envelope
		if err := json.Unmarshal(body, &env); err != nil {
			return nil, fmt.Errorf("decoding envelope: %w", err)
		}
		if env.Status != "success" {
			return nil, fmt.Errorf("api error: %s", env.Reason)
		}
		return env.Data, nil
	})
	if err != nil {
		return nil, err
	}
	return result.(json.RawMessage), nil
}

// PlayerStats searches for the player, then loads their detail record.
func (c *Client) PlayerStats(ctx context.Context, name string) (*models.Player, error) {
	var hits []playerSearchHit
	params := url.Values{"search": {name}}
	if err := c.request(ctx, "players", params, cache.KindPlayerSearch, name, &hits); err != nil {
		return nil, err
	}
	if len(hits) == 0 {
		return nil, source.ErrNotFound
	}

	var info playerInfo
	params = url.Values{"id": {hits[0].ID}}
	if err := c.request(ctx, "players_info", params, cache.KindPlayerStats, "id_"+hits[0].ID, &info); err != nil {
		return nil, err
	}

	player := convertPlayer(&info, name)
	if player == nil {
		return nil, source.ErrNotFound
	}
	return player, nil
}

// LiveMatches returns matches currently in progress.
func (c *Client) LiveMatches(ctx context.Context) ([]models.Match, error) {
	var raw []apiMatch
	if err := c.request(ctx, "currentMatches", url.Values{"offset": {"0"}}, cache.KindLiveMatches, "current", &raw); err != nil {
		return nil, err
	}
	return convertMatches(raw, true), nil
}

// UpcomingMatches returns scheduled matches.
func (c *Client) UpcomingMatches(ctx context.Context) ([]models.Match, error) {
	var raw []apiMatch
	if err := c.request(ctx, "matches", url.Values{"offset": {"0"}}, cache.KindUpcomingMatches, "upcoming", &raw); err != nil {
		return nil, err
	}
	upcoming := make([]apiMatch, 0, len(raw))
	today := time.Now().Format("2006-01-02")
	for _, m := range raw {
		if m.Date >= today {
			upcoming = append(upcoming, m)
		}
	}
	return convertMatches(upcoming, false), nil
}

// RecentMatches filters the fixtures feed for matches already started;
// the API has no dedicated recent endpoint.
func (c *Client) RecentMatches(ctx context.Context) ([]models.Match, error) {
	var raw []apiMatch
	if err := c.request(ctx, "matches", url.Values{"offset": {"0"}}, cache.KindRecentMatches, "recent", &raw); err != nil {
		return nil, err
	}
	recent := make([]apiMatch, 0, len(raw))
	today := time.Now().Format("2006-01-02")
	for _, m := range raw {
		if m.Date != "" && m.Date <= today {
			recent = append(recent, m)
		}
	}
	return convertMatches(recent, false), nil
}

// MatchDetails loads a single match by id.
func (c *Client) MatchDetails(ctx context.Context, id string) (*models.Match, error) {
	var raw apiMatch
	if err := c.request(ctx, "match_info", url.Values{"id": {id}}, cache.KindMatchDetails, id, &raw); err != nil {
		return nil, err
	}
	if raw.ID == "" && raw.Name == "" {
		return nil, source.ErrNotFound
	}
	m := convertMatch(raw, raw.MatchStarted && !raw.MatchEnded)
	return &m, nil
}
