package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock lets tests age entries without sleeping.
type fakeClock struct {
	now time.Time
}

func (f *fakeClock) Now() time.Time { return f.now }

func (f *fakeClock) advance(d time.Duration) { f.now = f.now.Add(d) }

func newTestCache(t *testing.T) (*FileCache, *fakeClock) {
	t.Helper()
	clock := &fakeClock{now: time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)}
	fc, err := NewFileCache(t.TempDir(), map[string]time.Duration{
		KindLiveMatches: time.Minute,
		KindPlayerStats: 6 * time.Hour,
	}, clock)
	require.NoError(t, err)
	return fc, clock
}

type payload struct {
	Name string `json:"name"`
	Runs int    `json:"runs"`
}

func TestGetReturnsFreshEntry(t *testing.T) {
	fc, _ := newTestCache(t)

	require.NoError(t, fc.Set(KindPlayerStats, "Virat Kohli", payload{Name: "Virat Kohli", Runs: 82}))

	var got payload
	require.NoError(t, fc.Get(KindPlayerStats, "Virat Kohli", &got))
	assert.Equal(t, "Virat Kohli", got.Name)
	assert.Equal(t, 82, got.Runs)
}

func TestGetMissOnAbsentKey(t *testing.T) {
	fc, _ := newTestCache(t)

	var got payload
	assert.ErrorIs(t, fc.Get(KindPlayerStats, "nobody", &got), ErrMiss)
}

func TestGetExpiredAfterTTL(t *testing.T) {
	fc, clock := newTestCache(t)

	require.NoError(t, fc.Set(KindLiveMatches, "all", payload{Name: "live"}))

	clock.advance(59 * time.Second)
	var got payload
	require.NoError(t, fc.Get(KindLiveMatches, "all", &got))

	clock.advance(2 * time.Second)
	assert.ErrorIs(t, fc.Get(KindLiveMatches, "all", &got), ErrExpired)
}

func TestGetStaleIgnoresExpiry(t *testing.T) {
	fc, clock := newTestCache(t)

	require.NoError(t, fc.Set(KindLiveMatches, "all", payload{Name: "live", Runs: 7}))
	clock.advance(48 * time.Hour)

	var got payload
	require.NoError(t, fc.GetStale(KindLiveMatches, "all", &got))
	assert.Equal(t, 7, got.Runs)
}

func TestInvalidateRemovesEntry(t *testing.T) {
	fc, _ := newTestCache(t)

	require.NoError(t, fc.Set(KindPlayerStats, "Rohit Sharma", payload{Name: "Rohit Sharma"}))
	require.NoError(t, fc.Invalidate(KindPlayerStats, "Rohit Sharma"))

	var got payload
	assert.ErrorIs(t, fc.Get(KindPlayerStats, "Rohit Sharma", &got), ErrMiss)

	// Invalidating an absent key is not an error.
	assert.NoError(t, fc.Invalidate(KindPlayerStats, "Rohit Sharma"))
}

func TestTTLDefaultsToOneHour(t *testing.T) {
	fc, _ := newTestCache(t)

	assert.Equal(t, time.Minute, fc.TTL(KindLiveMatches))
	assert.Equal(t, time.Hour, fc.TTL("some_unknown_kind"))
}

func TestNormalizeKey(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Virat Kohli", "virat_kohli"},
		{"  MS   Dhoni  ", "ms_dhoni"},
		{"M. Chinnaswamy Stadium", "m-_chinnaswamy_stadium"},
		{"wankhede", "wankhede"},
		{"T20-2026", "t20-2026"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeKey(tt.in), "input %q", tt.in)
	}
}
