package adapter

import (
	"context"
	"math/rand"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fortuna/willow/internal/cache"
	"github.com/fortuna/willow/internal/models"
	"github.com/fortuna/willow/internal/source"
	"github.com/fortuna/willow/internal/source/static"
)

// fakeSource scripts per-operation answers for chain tests.
type fakeSource struct {
	name     string
	player   *models.Player
	players  map[string]*models.Player
	live     []models.Match
	upcoming []models.Match
	recent   []models.Match
	match    *models.Match
	err      error

	playerCalls int
	liveCalls   int
}

func (f *fakeSource) Name() string { return f.name }

func (f *fakeSource) PlayerStats(_ context.Context, name string) (*models.Player, error) {
	f.playerCalls++
	if f.err != nil {
		return nil, f.err
	}
	if f.players != nil {
		if p, ok := f.players[name]; ok {
			cp := *p
			return &cp, nil
		}
		return nil, source.ErrNotFound
	}
	if f.player == nil {
		return nil, source.ErrNotFound
	}
	cp := *f.player
	return &cp, nil
}

func (f *fakeSource) LiveMatches(context.Context) ([]models.Match, error) {
	f.liveCalls++
	return f.live, f.err
}

func (f *fakeSource) UpcomingMatches(context.Context) ([]models.Match, error) {
	return f.upcoming, f.err
}

func (f *fakeSource) RecentMatches(context.Context) ([]models.Match, error) {
	return f.recent, f.err
}

func (f *fakeSource) MatchDetails(context.Context, string) (*models.Match, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.match == nil {
		return nil, source.ErrNotFound
	}
	return f.match, nil
}

// fakeStatic satisfies StaticData with canned tables.
type fakeStatic struct {
	pitches map[string]models.PitchConditions
	rosters map[string][]string
	players []models.Player
}

func (f *fakeStatic) PitchConditions(venue string) (models.PitchConditions, bool) {
	pc, ok := f.pitches[venue]
	return pc, ok
}

func (f *fakeStatic) Roster(team string) ([]string, bool) {
	r, ok := f.rosters[team]
	return r, ok
}

func (f *fakeStatic) AllPlayers() []models.Player { return f.players }

func (f *fakeStatic) Venues() []string {
	var out []string
	for v := range f.pitches {
		out = append(out, v)
	}
	return out
}

func (f *fakeStatic) Teams() []string {
	var out []string
	for t := range f.rosters {
		out = append(out, t)
	}
	return out
}

func newTestAdapter(t *testing.T, srcs Sources, static StaticData) *Adapter {
	t.Helper()
	fc, err := cache.NewFileCache(t.TempDir(), map[string]time.Duration{
		cache.KindPlayerStats: 6 * time.Hour,
	}, nil)
	require.NoError(t, err)

	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return New(srcs, static, fc, rand.New(rand.NewSource(1)), log)
}

func TestPlayerStatsArchiveBaseWithVolatileOverlay(t *testing.T) {
	archive := &fakeSource{
		name: "archive",
		players: map[string]*models.Player{
			"Virat Kohli": {
				Name:          "Virat Kohli",
				Role:          models.RoleBatsman,
				BattingAvg:    52.1,
				MatchesPlayed: 240,
				RecentForm:    []int{10, 20, 30},
			},
		},
	}
	rapid := &fakeSource{
		name: "rapidapi",
		players: map[string]*models.Player{
			"Virat Kohli": {
				Name:        "Virat Kohli",
				Role:        models.RoleBatsman,
				RecentForm:  []int{82, 61, 44, 12, 95},
				CurrentForm: "excellent",
			},
		},
	}

	a := newTestAdapter(t, Sources{Archive: archive, RapidAPI: rapid}, nil)

	p, err := a.PlayerStats(context.Background(), "virat kolhi")
	require.NoError(t, err)

	assert.Equal(t, "Virat Kohli", p.Name)
	assert.Equal(t, "virat kolhi", p.OriginalQuery)
	assert.Equal(t, 240, p.MatchesPlayed, "career base comes from the archive")
	assert.Equal(t, 52.1, p.BattingAvg)
	assert.Equal(t, []int{82, 61, 44, 12, 95}, p.RecentForm, "volatile fields come from the fresh source")
	assert.Equal(t, "excellent", p.CurrentForm)
}

func TestPlayerStatsRapidAPIPrimaryWhenArchiveEmpty(t *testing.T) {
	archive := &fakeSource{name: "archive"}
	rapid := &fakeSource{
		name: "rapidapi",
		players: map[string]*models.Player{
			"Shubman Gill": {Name: "Shubman Gill", Role: models.RoleBatsman, MatchesPlayed: 40},
		},
	}

	a := newTestAdapter(t, Sources{Archive: archive, RapidAPI: rapid}, nil)

	p, err := a.PlayerStats(context.Background(), "Shubman Gill")
	require.NoError(t, err)
	assert.Equal(t, 40, p.MatchesPlayed)
}

func TestPlayerStatsStaticBackstop(t *testing.T) {
	archive := &fakeSource{name: "archive", err: source.ErrUnavailable}
	rapid := &fakeSource{name: "rapidapi", err: source.ErrUnavailable}
	staticSrc := &fakeSource{
		name: "static",
		players: map[string]*models.Player{
			"Rohit Sharma": {Name: "Rohit Sharma", Role: models.RoleBatsman, MatchesPlayed: 200},
		},
	}

	a := newTestAdapter(t, Sources{Archive: archive, RapidAPI: rapid, Static: staticSrc}, nil)

	p, err := a.PlayerStats(context.Background(), "rohit")
	require.NoError(t, err)
	assert.Equal(t, "Rohit Sharma", p.Name)
}

func TestPlayerStatsNotFoundAnywhere(t *testing.T) {
	a := newTestAdapter(t, Sources{Archive: &fakeSource{name: "archive"}}, nil)

	_, err := a.PlayerStats(context.Background(), "Unknown Player")
	assert.ErrorIs(t, err, source.ErrNotFound)
}

func TestPlayerStatsCacheHitSkipsFusion(t *testing.T) {
	archive := &fakeSource{
		name: "archive",
		players: map[string]*models.Player{
			"Virat Kohli": {Name: "Virat Kohli", Role: models.RoleBatsman, MatchesPlayed: 240},
		},
	}

	a := newTestAdapter(t, Sources{Archive: archive}, nil)

	_, err := a.PlayerStats(context.Background(), "Virat Kohli")
	require.NoError(t, err)
	_, err = a.PlayerStats(context.Background(), "Virat Kohli")
	require.NoError(t, err)

	assert.Equal(t, 1, archive.playerCalls, "second lookup is a cache hit")
}

func TestLiveMatchesChainFallsThrough(t *testing.T) {
	rapid := &fakeSource{name: "rapidapi", err: source.ErrUnavailable}
	cric := &fakeSource{name: "cricapi"} // answers empty
	scraper := &fakeSource{name: "scraper", live: []models.Match{
		{Teams: "India vs Australia", Venue: "Wankhede Stadium", Status: models.StatusLive},
	}}

	a := newTestAdapter(t, Sources{RapidAPI: rapid, CricAPI: cric, Scraper: scraper}, &fakeStatic{
		pitches: map[string]models.PitchConditions{
			"Wankhede Stadium": {BattingFriendly: 8, PaceFriendly: 6, SpinFriendly: 5},
		},
	})

	matches := a.LiveMatches(context.Background())
	require.Len(t, matches, 1)
	assert.Equal(t, "India vs Australia", matches[0].Teams)
	assert.Equal(t, 8, matches[0].PitchConditions.BattingFriendly, "pitch backfilled from the venue table")
}

func TestLiveMatchesStaticBackstopWhenNetworkedSourcesDown(t *testing.T) {
	rapid := &fakeSource{name: "rapidapi", err: source.ErrUnavailable}
	cric := &fakeSource{name: "cricapi", err: source.ErrUnavailable}
	scraper := &fakeSource{name: "scraper", err: source.ErrUnavailable}
	staticSrc := static.New()

	a := newTestAdapter(t, Sources{
		RapidAPI: rapid, CricAPI: cric, Scraper: scraper, Static: staticSrc,
	}, staticSrc)

	matches := a.LiveMatches(context.Background())
	require.NotEmpty(t, matches)
	for _, m := range matches {
		assert.Equal(t, static.SourceName, m.Source)
	}
}

func TestLiveMatchesAllSourcesEmpty(t *testing.T) {
	a := newTestAdapter(t, Sources{RapidAPI: &fakeSource{name: "rapidapi"}}, nil)
	assert.Empty(t, a.LiveMatches(context.Background()))
}

func TestMatchDetailsChain(t *testing.T) {
	rapid := &fakeSource{name: "rapidapi", err: source.ErrUnavailable}
	cric := &fakeSource{name: "cricapi", match: &models.Match{ID: "m1", Teams: "England vs Pakistan"}}

	a := newTestAdapter(t, Sources{RapidAPI: rapid, CricAPI: cric}, nil)

	m, err := a.MatchDetails(context.Background(), "m1")
	require.NoError(t, err)
	assert.Equal(t, "England vs Pakistan", m.Teams)

	a2 := newTestAdapter(t, Sources{RapidAPI: rapid}, nil)
	_, err = a2.MatchDetails(context.Background(), "m1")
	assert.ErrorIs(t, err, source.ErrNotFound)
}

func TestPitchConditionsPrefersCuratedTable(t *testing.T) {
	tables := &fakeStatic{pitches: map[string]models.PitchConditions{
		"Eden Gardens": {BattingFriendly: 7, PaceFriendly: 5, SpinFriendly: 8},
	}}

	a := newTestAdapter(t, Sources{}, tables)

	pc := a.PitchConditions(context.Background(), "Eden Gardens")
	assert.Equal(t, 8, pc.SpinFriendly)
}

func TestPitchConditionsSynthesizesMidRange(t *testing.T) {
	a := newTestAdapter(t, Sources{}, &fakeStatic{})

	pc := a.PitchConditions(context.Background(), "Some Unknown Ground")
	for _, v := range []int{pc.BattingFriendly, pc.PaceFriendly, pc.SpinFriendly} {
		assert.GreaterOrEqual(t, v, 4)
		assert.LessOrEqual(t, v, 8)
	}
}

func TestVenuePitchDoesNotSynthesize(t *testing.T) {
	a := newTestAdapter(t, Sources{}, &fakeStatic{})

	_, ok := a.VenuePitch("Some Unknown Ground")
	assert.False(t, ok)
}

func TestInvalidatePlayerForcesRefetch(t *testing.T) {
	archive := &fakeSource{
		name: "archive",
		players: map[string]*models.Player{
			"Virat Kohli": {Name: "Virat Kohli", MatchesPlayed: 240, Role: models.RoleBatsman},
		},
	}

	a := newTestAdapter(t, Sources{Archive: archive}, nil)

	_, err := a.PlayerStats(context.Background(), "Virat Kohli")
	require.NoError(t, err)

	require.NoError(t, a.InvalidatePlayer("virat kohli"))

	_, err = a.PlayerStats(context.Background(), "Virat Kohli")
	require.NoError(t, err)
	assert.Equal(t, 2, archive.playerCalls)
}
