// Package archive serves historical stats from a bulk ball-by-ball JSON
// archive distributed as per-format zip files. It is the most complete
// source for career numbers and the base layer for player records; a
// fresher source overwrites only the volatile fields afterwards.
package archive

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/fortuna/willow/internal/cache"
	"github.com/fortuna/willow/internal/models"
	"github.com/fortuna/willow/internal/source"
)

// SourceName tags records produced by this package.
const SourceName = "archive"

// Client reads extracted match files from the local data dir and
// aggregates them into player records. Downloads happen in Sync, never
// on the aggregator read path.
type Client struct {
	baseURL string
	dataDir string
	formats []string
	http    *http.Client
	cache   *cache.FileCache
	log     *logrus.Entry
}

// Config holds archive settings.
type Config struct {
	BaseURL string
	DataDir string
	Formats []string
}

// New creates the archive client and its data directory.
func New(cfg Config, fc *cache.FileCache, log *logrus.Logger) (*Client, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://cricsheet.org/downloads"
	}
	if cfg.DataDir == "" {
		cfg.DataDir = filepath.Join("data", "archive")
	}
	if len(cfg.Formats) == 0 {
		cfg.Formats = []string{"t20", "odi", "ipl"}
	}
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating archive dir: %w", err)
	}

	return &Client{
		baseURL: cfg.BaseURL,
		dataDir: cfg.DataDir,
		formats: cfg.Formats,
		http:    &http.Client{Timeout: 5 * time.Minute},
		cache:   fc,
		log:     log.WithField("component", "archive"),
	}, nil
}

// Name implements source.Source.
func (c *Client) Name() string { return SourceName }

// Sync downloads and extracts each configured format's zip. The index
// cache entry records the last sync so repeated calls inside the archive
// TTL are no-ops.
func (c *Client) Sync(ctx context.Context, force bool) error {
	var last map[string]string
	if !force {
		if err := c.cache.Get(cache.KindArchiveIndex, "sync", &last); err == nil {
			c.log.Debug("archive is fresh, skipping sync")
			return nil
		}
	}

	synced := make(map[string]string, len(c.formats))
	var firstErr error
	for _, format := range c.formats {
		if err := c.syncFormat(ctx, format); err != nil {
			c.log.WithError(err).Warnf("syncing %s archive", format)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		synced[format] = time.Now().Format(time.RFC3339)
	}

	if len(synced) > 0 {
		if err := c.cache.Set(cache.KindArchiveIndex, "sync", synced); err != nil {
			c.log.WithError(err).Warn("writing sync marker")
		}
		// A partial sync still counts; stale formats keep their old files.
		return nil
	}
	return firstErr
}

// syncFormat downloads one format zip and extracts its match files.
func (c *Client) syncFormat(ctx context.Context, format string) error {
	url := fmt.Sprintf("%s/%s_json.zip", c.baseURL, zipName(format))
	c.log.Infof("downloading %s", url)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	tmp, err := os.CreateTemp(c.dataDir, format+"-*.zip")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, resp.Body); err != nil {
		tmp.Close()
		return err
	}
	tmp.Close()

	return c.extract(tmp.Name(), filepath.Join(c.dataDir, format))
}

// extract unpacks the match JSON files from a downloaded zip.
func (c *Client) extract(zipPath, destDir string) error {
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return err
	}

	zr, err := zip.OpenReader(zipPath)
	if err != nil {
		return fmt.Errorf("opening zip: %w", err)
	}
	defer zr.Close()

	extracted := 0
	for _, f := range zr.File {
		if f.FileInfo().IsDir() || !strings.HasSuffix(f.Name, ".json") {
			continue
		}
		if err := extractFile(f, filepath.Join(destDir, filepath.Base(f.Name))); err != nil {
			c.log.WithError(err).Warnf("extracting %s", f.Name)
			continue
		}
		extracted++
	}

	c.log.Infof("extracted %d match files to %s", extracted, destDir)
	return nil
}

func extractFile(f *zip.File, dest string) error {
	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer rc.Close()

	out, err := os.Create(dest)
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = io.Copy(out, rc)
	return err
}

// zipName maps a format to its archive filename stem.
func zipName(format string) string {
	switch format {
	case "t20":
		return "t20s"
	case "t20i":
		return "t20is"
	case "odi":
		return "odis"
	case "test":
		return "tests"
	default:
		return format
	}
}

// PlayerStats aggregates the player's delivery history across the local
// archive. Aggregates are cached for the archive TTL since scanning
// thousands of match files is expensive.
func (c *Client) PlayerStats(ctx context.Context, name string) (*models.Player, error) {
	var cached models.Player
	if err := c.cache.Get(cache.KindArchivePlayer, name, &cached); err == nil {
		return &cached, nil
	}

	agg, err := c.aggregatePlayer(ctx, name)
	if err != nil {
		// Serve a stale aggregate before giving up.
		if stale := c.cache.GetStale(cache.KindArchivePlayer, name, &cached); stale == nil {
			return &cached, nil
		}
		return nil, err
	}
	if agg.MatchesPlayed == 0 {
		return nil, source.ErrNotFound
	}

	player := agg.toPlayer(name)
	if err := c.cache.Set(cache.KindArchivePlayer, name, player); err != nil {
		c.log.WithError(err).Warn("caching player aggregate")
	}
	return player, nil
}

// aggregatePlayer scans every local match file for the player.
func (c *Client) aggregatePlayer(ctx context.Context, name string) (*playerAggregate, error) {
	agg := newPlayerAggregate()
	scanned := 0

	for _, format := range c.formats {
		dir := filepath.Join(c.dataDir, format)
		files, err := os.ReadDir(dir)
		if err != nil {
			continue // format not synced yet
		}
		for _, f := range files {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			if f.IsDir() || !strings.HasSuffix(f.Name(), ".json") {
				continue
			}
			match, err := loadMatchFile(filepath.Join(dir, f.Name()))
			if err != nil {
				c.log.WithError(err).Debugf("skipping %s", f.Name())
				continue
			}
			agg.addMatch(match, name)
			scanned++
		}
	}

	if scanned == 0 {
		return nil, fmt.Errorf("no archive data on disk (run sync first)")
	}
	return agg, nil
}

// LiveMatches is unsupported; the archive only holds completed matches.
func (c *Client) LiveMatches(_ context.Context) ([]models.Match, error) {
	return nil, nil
}

// UpcomingMatches is unsupported for the same reason.
func (c *Client) UpcomingMatches(_ context.Context) ([]models.Match, error) {
	return nil, nil
}

// RecentMatches lists archive matches dated within the last 30 days.
func (c *Client) RecentMatches(ctx context.Context) ([]models.Match, error) {
	var cached []models.Match
	if err := c.cache.Get(cache.KindRecentMatches, "archive_recent", &cached); err == nil {
		return cached, nil
	}

	cutoff := time.Now().AddDate(0, 0, -30)
	var matches []models.Match

	for _, format := range c.formats {
		dir := filepath.Join(c.dataDir, format)
		files, err := os.ReadDir(dir)
		if err != nil {
			continue
		}
		for _, f := range files {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			if f.IsDir() || !strings.HasSuffix(f.Name(), ".json") {
				continue
			}
			match, err := loadMatchFile(filepath.Join(dir, f.Name()))
			if err != nil {
				continue
			}
			date, err := match.startDate()
			if err != nil || date.Before(cutoff) {
				continue
			}
			m := match.toMatch(strings.TrimSuffix(f.Name(), ".json"))
			matches = append(matches, m)
			if len(matches) >= 25 {
				break
			}
		}
	}

	if len(matches) > 0 {
		if err := c.cache.Set(cache.KindRecentMatches, "archive_recent", matches); err != nil {
			c.log.WithError(err).Warn("caching recent matches")
		}
	}
	return matches, nil
}

// MatchDetails loads one archive match by file id.
func (c *Client) MatchDetails(_ context.Context, id string) (*models.Match, error) {
	for _, format := range c.formats {
		path := filepath.Join(c.dataDir, format, id+".json")
		match, err := loadMatchFile(path)
		if err != nil {
			continue
		}
		m := match.toMatch(id)
		return &m, nil
	}
	return nil, source.ErrNotFound
}
