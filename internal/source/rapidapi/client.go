// Package rapidapi wraps the RapidAPI cricket product, the fastest of the
// networked sources. Its list endpoints nest matches under
// typeMatches/seriesMatches/seriesAdWrapper; the converter flattens that
// shape into the canonical records.
package rapidapi

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
const SourceName = "rapidapi"

// Client talks to the RapidAPI cricket endpoints.
type Client struct {
	baseURL string
	host    string
	apiKey  string
	http    *http.Client
	breaker *gobreaker.CircuitBreaker
	cache   *cache.FileCache
	log     *logrus.Entry
}

// Config holds client settings.
type Config struct {
	BaseURL string
	Host    string
	APIKey  string
	Timeout time.Duration
}

// New creates a client.
func New(cfg Config, fc *cache.FileCache, log *logrus.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://cricbuzz-cricket.p.rapidapi.com"
	}
	if cfg.Host == "" {
		cfg.Host = "cricbuzz-cricket.p.rapidapi.com"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}

	entry := log.WithField("component", "rapidapi")

	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:     "rapidapi",
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
		host:    cfg.Host,
		apiKey:  cfg.APIKey,
		http:    &http.Client{Timeout: cfg.Timeout},
		breaker: cb,
		cache:   fc,
		log:     entry,
	}
}

// Name implements source.Source.
func (c *Client) Name() string { return SourceName }

// request fetches an endpoint through the cache with stale fallback on
// error, mirroring the cricapi client.
func (c *Client) request(ctx context.Context, endpoint string, params url.Values, cacheKind, cacheKey string, out interface{}) error {
	if err := c.cache.Get(cacheKind, cacheKey, out); err == nil {
		return nil
	}

	raw, err := c.fetch(ctx, endpoint, params)
	if err == nil {
		err = json.Unmarshal(raw, out)
		if err != nil {
			c.log.WithError(err).Errorf("decoding %s payload", endpoint)
		}
	} else {
		c.log.WithError(err).Warnf("fetch %s failed, trying stale cache", endpoint)
	}

	if err != nil {
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

func (c *Client) fetch(ctx context.Context, endpoint string, params url.Values) ([]byte, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("no api key configured")
	}

	result, err := c.breaker.Execute(func() (interface{}, error) {
		u := fmt.Sprintf("%s/%s", c.baseURL, endpoint)
		if len(params) > 0 {
			u += "?" + params.Encode()
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("X-RapidAPI-Key", c.apiKey)
		req.Header.Set("X-RapidAPI-Host", c.host)

		resp, err := c.http.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
		}
		return io.ReadAll(resp.Body)
	})
	if err != nil {
		return nil, err
	}
	return result.([]byte), nil
}

// LiveMatches returns matches currently in progress.
func (c *Client) LiveMatches(ctx context.Context) ([]models.Match, error) {
	var resp matchListResponse
	if err := c.request(ctx, "matches/v1/live", nil, cache.KindLiveMatches, "live", &resp); err != nil {
		return nil, err
	}
	return convertMatches(flattenMatches(&resp), true), nil
}

// UpcomingMatches returns scheduled matches starting in the future.
func (c *Client) UpcomingMatches(ctx context.Context) ([]models.Match, error) {
	var resp matchListResponse
	if err := c.request(ctx, "matches/v1/upcoming", nil, cache.KindUpcomingMatches, "upcoming", &resp); err != nil {
		return nil, err
	}
	nowMillis := time.Now().UnixMilli()
	flat := flattenMatches(&resp)
	upcoming := flat[:0]
	for _, m := range flat {
		if m.Info.StartDate.Int64() > nowMillis {
			upcoming = append(upcoming, m)
		}
	}
	return convertMatches(upcoming, false), nil
}

// RecentMatches returns recently completed matches.
func (c *Client) RecentMatches(ctx context.Context) ([]models.Match, error) {
	var resp matchListResponse
	if err := c.request(ctx, "matches/v1/recent", nil, cache.KindRecentMatches, "recent", &resp); err != nil {
		return nil, err
	}
	return convertMatches(flattenMatches(&resp), false), nil
}

// MatchDetails loads a single match scorecard.
func (c *Client) MatchDetails(ctx context.Context, id string) (*models.Match, error) {
	var wrapped matchWrapper
	endpoint := fmt.Sprintf("mcenter/v1/%s", url.PathEscape(id))
	if err := c.request(ctx, endpoint, nil, cache.KindMatchDetails, id, &wrapped); err != nil {
		return nil, err
	}
	if wrapped.Info.MatchID.String() == "" && wrapped.Info.Team1.TeamName == "" {
		return nil, source.ErrNotFound
	}
	m := convertMatch(wrapped, wrapped.Info.State == "In Progress")
	return &m, nil
}

// PlayerStats searches for the player, then loads their career record.
func (c *Client) PlayerStats(ctx context.Context, name string) (*models.Player, error) {
	var search playerSearchResponse
	params := url.Values{"plrN": {name}}
	if err := c.request(ctx, "stats/v1/player/search", params, cache.KindPlayerSearch, name, &search); err != nil {
		return nil, err
	}
	if len(search.Player) == 0 {
		return nil, source.ErrNotFound
	}

	id := search.Player[0].ID
	var info playerResponse
	endpoint := fmt.Sprintf("stats/v1/player/%s", url.PathEscape(id))
	if err := c.request(ctx, endpoint, nil, cache.KindPlayerStats, "id_"+id, &info); err != nil {
		return nil, err
	}

	player := convertPlayer(&info, name, c.recentInnings(ctx, id))
	if player == nil {
		return nil, source.ErrNotFound
	}
	return player, nil
}

// recentInnings loads the player's last batting and bowling lines. Best
// effort: a failure here only costs the volatile fields.
func (c *Client) recentInnings(ctx context.Context, id string) *battingBowlingRecent {
	var recent battingBowlingRecent
	endpoint := fmt.Sprintf("stats/v1/player/%s/career", url.PathEscape(id))
	if err := c.request(ctx, endpoint, nil, cache.KindPlayerStats, "recent_"+id, &recent); err != nil {
		c.log.WithError(err).Debug("recent innings unavailable")
		return nil
	}
	return &recent
}
