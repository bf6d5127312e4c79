// Package scraper extracts live cricket scores from rendered search
// pages with a headless browser. It is the fastest-moving and most
// fragile source: selectors track third-party markup and break without
// notice, so every failure degrades to an empty result.
package scraper

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/sirupsen/logrus"

	"github.com/fortuna/willow/internal/cache"
	"github.com/fortuna/willow/internal/models"
	"github.com/fortuna/willow/internal/source"
)

// SourceName tags records produced by this package.
const SourceName = "scraper"

const userAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// Client fetches and parses rendered pages with rate limiting between
// requests.
type Client struct {
	baseURL  string
	interval time.Duration

	mu          sync.Mutex
	lastRequest time.Time

	allocCtx context.Context
	cancel   context.CancelFunc

	cache *cache.FileCache
	log   *logrus.Entry
}

// Config holds scraper settings.
type Config struct {
	BaseURL         string
	RequestInterval time.Duration
	Headless        bool
}

// New creates a scraper client with its own browser allocator.
func New(cfg Config, fc *cache.FileCache, log *logrus.Logger) (*Client, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://www.google.com/search"
	}
	if cfg.RequestInterval <= 0 {
		cfg.RequestInterval = 2 * time.Second
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", cfg.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.UserAgent(userAgent),
	)

	allocCtx, cancel := chromedp.NewExecAllocator(context.Background(), opts...)

	return &Client{
		baseURL:  cfg.BaseURL,
		interval: cfg.RequestInterval,
		allocCtx: allocCtx,
		cancel:   cancel,
		cache:    fc,
		log:      log.WithField("component", "scraper"),
	}, nil
}

// Close releases the browser allocator.
func (c *Client) Close() {
	if c.cancel != nil {
		c.cancel()
	}
}

// Name implements source.Source.
func (c *Client) Name() string { return SourceName }

// LiveMatches scrapes the live-scores page.
func (c *Client) LiveMatches(ctx context.Context) ([]models.Match, error) {
	return c.matches(ctx, "live cricket scores", cache.KindLiveMatches, "live", true)
}

// UpcomingMatches scrapes the fixtures page.
func (c *Client) UpcomingMatches(ctx context.Context) ([]models.Match, error) {
	return c.matches(ctx, "upcoming cricket matches schedule", cache.KindUpcomingMatches, "upcoming", false)
}

// RecentMatches scrapes recent results.
func (c *Client) RecentMatches(ctx context.Context) ([]models.Match, error) {
	return c.matches(ctx, "recent cricket match results", cache.KindRecentMatches, "recent", false)
}

// MatchDetails is unsupported for the scraper; match identity does not
// survive scraping.
func (c *Client) MatchDetails(_ context.Context, _ string) (*models.Match, error) {
	return nil, source.ErrNotFound
}

// PlayerStats is unsupported for the scraper; the rendered stat panels
// are too inconsistent to trust for numbers.
func (c *Client) PlayerStats(_ context.Context, _ string) (*models.Player, error) {
	return nil, source.ErrNotFound
}

func (c *Client) matches(ctx context.Context, query, cacheKind, cacheKey string, live bool) ([]models.Match, error) {
	var cached []models.Match
	if err := c.cache.Get(cacheKind, "scraper_"+cacheKey, &cached); err == nil {
		return cached, nil
	}

	html, err := c.fetchWithRateLimit(ctx, query)
	if err != nil {
		c.log.WithError(err).Warn("fetch failed, trying stale cache")
		if stale := c.cache.GetStale(cacheKind, "scraper_"+cacheKey, &cached); stale == nil {
			return cached, nil
		}
		return nil, source.ErrUnavailable
	}

	matches, err := ParseMatches(html, live)
	if err != nil {
		c.log.WithError(err).Warn("parse failed, trying stale cache")
		if stale := c.cache.GetStale(cacheKind, "scraper_"+cacheKey, &cached); stale == nil {
			return cached, nil
		}
		return nil, source.ErrUnavailable
	}

	if len(matches) > 0 {
		if err := c.cache.Set(cacheKind, "scraper_"+cacheKey, matches); err != nil {
			c.log.WithError(err).Warn("writing cache entry")
		}
	}
	return matches, nil
}

// fetchWithRateLimit enforces the minimum interval between requests.
func (c *Client) fetchWithRateLimit(ctx context.Context, query string) (string, error) {
	c.mu.Lock()
	if !c.lastRequest.IsZero() {
		if elapsed := time.Since(c.lastRequest); elapsed < c.interval {
			wait := c.interval - elapsed
			c.log.Debugf("rate limiting: waiting %v", wait)
			time.Sleep(wait)
		}
	}
	c.lastRequest = time.Now()
	c.mu.Unlock()

	return c.fetch(ctx, query)
}

// fetch renders the page and returns its HTML.
func (c *Client) fetch(ctx context.Context, query string) (string, error) {
	browserCtx, cancel := chromedp.NewContext(c.allocCtx)
	defer cancel()

	browserCtx, cancel = context.WithTimeout(browserCtx, 30*time.Second)
	defer cancel()

	// Keep the caller's deadline if it is tighter.
	if deadline, ok := ctx.Deadline(); ok {
		var dcancel context.CancelFunc
		browserCtx, dcancel = context.WithDeadline(browserCtx, deadline)
		defer dcancel()
	}

	url := fmt.Sprintf("%s?q=%s", c.baseURL, strings.ReplaceAll(query, " ", "+"))

	var html string
	err := chromedp.Run(browserCtx,
		chromedp.Navigate(url),
		chromedp.WaitVisible(`body`, chromedp.ByQuery),
		chromedp.Sleep(1*time.Second), // allow JS to render the sports widget
		chromedp.OuterHTML(`html`, &html, chromedp.ByQuery),
	)
	if err != nil {
		return "", fmt.Errorf("chromedp: %w", err)
	}
	if html == "" {
		return "", fmt.Errorf("empty page")
	}
	return html, nil
}
