package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Data kinds with distinct expiry policies. Sources pass these when reading
// and writing so TTL tuning lives in one place.
const (
	KindLiveMatches     = "live_matches"
	KindUpcomingMatches = "upcoming_matches"
	KindRecentMatches   = "recent_matches"
	KindMatchDetails    = "match_details"
	KindPlayerStats     = "player_stats"
	KindPlayerSearch    = "player_search"
	KindArchiveIndex    = "archive_index"
	KindArchiveMatch    = "archive_match"
	KindArchivePlayer   = "archive_player"
)

// ErrMiss is returned when no cache file exists for the key.
var ErrMiss = errors.New("cache miss")

// ErrExpired is returned by Get when a file exists but is older than its
// kind's TTL. GetStale ignores it.
var ErrExpired = errors.New("cache expired")

// Clock abstracts time for TTL tests.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock is the real wall clock.
var SystemClock Clock = systemClock{}

// FileCache persists JSON blobs under dir, one file per (kind, key).
// Writes replace the whole file; concurrent writers race with
// last-write-wins semantics, which is acceptable because every entry is
// re-derivable from its source.
type FileCache struct {
	dir   string
	ttls  map[string]time.Duration
	clock Clock
}

// entry is the on-disk envelope. The stored timestamp, not file mtime,
// decides validity so copies and restores behave predictably.
type entry struct {
	StoredAt time.Time       `json:"stored_at"`
	Data     json.RawMessage `json:"data"`
}

// NewFileCache creates the cache directory if needed.
func NewFileCache(dir string, ttls map[string]time.Duration, clock Clock) (*FileCache, error) {
	if clock == nil {
		clock = SystemClock
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating cache dir: %w", err)
	}
	return &FileCache{dir: dir, ttls: ttls, clock: clock}, nil
}

// TTL returns the configured TTL for a kind, defaulting to one hour.
func (fc *FileCache) TTL(kind string) time.Duration {
	if ttl, ok := fc.ttls[kind]; ok && ttl > 0 {
		return ttl
	}
	return time.Hour
}

// Get unmarshals a fresh entry into out. Returns ErrMiss or ErrExpired on
// the respective failures.
func (fc *FileCache) Get(kind, key string, out interface{}) error {
	ent, err := fc.read(kind, key)
	if err != nil {
		return err
	}
	if fc.clock.Now().Sub(ent.StoredAt) >= fc.TTL(kind) {
		return ErrExpired
	}
	return json.Unmarshal(ent.Data, out)
}

// GetStale unmarshals an entry regardless of age. This is the
// "last known good" tier sources fall back to when a live fetch fails.
func (fc *FileCache) GetStale(kind, key string, out interface{}) error {
	ent, err := fc.read(kind, key)
	if err != nil {
		return err
	}
	return json.Unmarshal(ent.Data, out)
}

// Set stores value under (kind, key). Callers only write after a
// successful, non-error upstream response.
func (fc *FileCache) Set(kind, key string, value interface{}) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshaling cache value: %w", err)
	}
	ent := entry{StoredAt: fc.clock.Now(), Data: raw}
	blob, err := json.MarshalIndent(ent, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(fc.path(kind, key), blob, 0o644)
}

// Invalidate removes the entry if present.
func (fc *FileCache) Invalidate(kind, key string) error {
	err := os.Remove(fc.path(kind, key))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func (fc *FileCache) read(kind, key string) (*entry, error) {
	blob, err := os.ReadFile(fc.path(kind, key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrMiss
		}
		return nil, err
	}
	var ent entry
	if err := json.Unmarshal(blob, &ent); err != nil {
		// A torn write from a racing process; treat as absent.
		return nil, ErrMiss
	}
	return &ent, nil
}

func (fc *FileCache) path(kind, key string) string {
	return filepath.Join(fc.dir, fmt.Sprintf("%s_%s.json", kind, NormalizeKey(key)))
}

// NormalizeKey lowercases and underscores a cache key so player names and
// endpoint params map to stable filenames.
func NormalizeKey(key string) string {
	key = strings.ToLower(strings.TrimSpace(key))
	key = strings.Join(strings.Fields(key), "_")
	var b strings.Builder
	for _, r := range key {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_', r == '-':
			b.WriteRune(r)
		default:
			b.WriteRune('-')
		}
	}
	return b.String()
}
