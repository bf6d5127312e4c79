package assistant

import (
	"context"
	"math/rand"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fortuna/willow/internal/adapter"
	"github.com/fortuna/willow/internal/cache"
	"github.com/fortuna/willow/internal/fantasy"
	"github.com/fortuna/willow/internal/models"
	"github.com/fortuna/willow/internal/source"
)

// stubSource serves scripted players and one upcoming match.
type stubSource struct {
	players  map[string]*models.Player
	upcoming []models.Match
}

func (s *stubSource) Name() string { return "test" }

func (s *stubSource) PlayerStats(_ context.Context, name string) (*models.Player, error) {
	if p, ok := s.players[name]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, source.ErrNotFound
}

func (s *stubSource) LiveMatches(context.Context) ([]models.Match, error) { return nil, nil }

func (s *stubSource) UpcomingMatches(context.Context) ([]models.Match, error) {
	return s.upcoming, nil
}

func (s *stubSource) RecentMatches(context.Context) ([]models.Match, error) { return nil, nil }

func (s *stubSource) MatchDetails(context.Context, string) (*models.Match, error) {
	return nil, source.ErrNotFound
}

// stubTables is the StaticData side: pitches, rosters, and the known
// player pool the scanner searches.
type stubTables struct {
	pitches map[string]models.PitchConditions
	rosters map[string][]string
	players []models.Player
}

func (t *stubTables) PitchConditions(venue string) (models.PitchConditions, bool) {
	pc, ok := t.pitches[venue]
	return pc, ok
}

func (t *stubTables) Roster(team string) ([]string, bool) {
	r, ok := t.rosters[team]
	return r, ok
}

func (t *stubTables) AllPlayers() []models.Player { return t.players }

func (t *stubTables) Venues() []string {
	var out []string
	for v := range t.pitches {
		out = append(out, v)
	}
	return out
}

func (t *stubTables) Teams() []string {
	var out []string
	for team := range t.rosters {
		out = append(out, team)
	}
	return out
}

func newTestAssistant(t *testing.T) *Assistant {
	t.Helper()

	players := map[string]*models.Player{
		"Virat Kohli": {
			Name: "Virat Kohli", Team: "India", Role: models.RoleBatsman,
			BattingAvg: 52.1, StrikeRate: 138.2,
			RecentForm: []int{82, 61, 44, 72, 95},
			Ownership:  55, Price: 10.5,
			FantasyPointsAvg: 90, MatchesPlayed: 240,
		},
		"Jasprit Bumrah": {
			Name: "Jasprit Bumrah", Team: "India", Role: models.RoleBowler,
			BowlingAvg: 21.3, Economy: 6.9,
			RecentWickets: []int{3, 2, 4, 1, 2},
			CurrentForm:   "good",
			Ownership:     35, Price: 9,
			FantasyPointsAvg: 75, MatchesPlayed: 130,
		},
		"Ravindra Jadeja": {
			Name: "Ravindra Jadeja", Team: "India", Role: models.RoleAllRounder,
			RecentForm:    []int{55, 60, 48},
			RecentWickets: []int{2, 1, 2},
			Ownership:     9, Price: 6.5,
			FantasyPointsAvg: 65, MatchesPlayed: 150,
		},
		"Kane Williamson": {
			Name: "Kane Williamson", Team: "New Zealand", Role: models.RoleBatsman,
			BattingAvg: 47.5,
			RecentForm: []int{20, 15, 31, 12, 8},
			Ownership:  30, Price: 9,
			FantasyPointsAvg: 60, MatchesPlayed: 160,
		},
	}

	src := &stubSource{
		players: players,
		upcoming: []models.Match{{
			Teams:  "India vs Australia",
			Venue:  "Wankhede Stadium",
			Date:   "2025-06-01",
			Status: models.StatusUpcoming,
		}},
	}

	var pool []models.Player
	for _, p := range players {
		pool = append(pool, *p)
	}
	static := &stubTables{
		pitches: map[string]models.PitchConditions{
			"Wankhede Stadium": {BattingFriendly: 8, PaceFriendly: 6, SpinFriendly: 5},
		},
		rosters: map[string][]string{
			"India": {"Virat Kohli", "Jasprit Bumrah", "Ravindra Jadeja"},
		},
		players: pool,
	}

	fc, err := cache.NewFileCache(t.TempDir(), map[string]time.Duration{
		cache.KindPlayerStats: time.Hour,
	}, nil)
	require.NoError(t, err)

	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)

	data := adapter.New(adapter.Sources{Static: src}, static, fc, rand.New(rand.NewSource(3)), log)
	engine := fantasy.New(data, rand.New(rand.NewSource(3)), log)
	return New(data, engine, log)
}

func TestRespondGreeting(t *testing.T) {
	a := newTestAssistant(t)
	reply := a.Respond(context.Background(), "Hello")
	assert.Contains(t, reply, "👋")
}

func TestRespondThanks(t *testing.T) {
	a := newTestAssistant(t)
	reply := a.Respond(context.Background(), "Thanks!")
	assert.Contains(t, reply, "You're welcome")
}

func TestRespondStatsCard(t *testing.T) {
	a := newTestAssistant(t)
	reply := a.Respond(context.Background(), "Show me stats for Virat Kohli")

	assert.Contains(t, reply, "📊 **Virat Kohli (India)** - Batsman")
	assert.Contains(t, reply, "Batting Avg: 52.1")
	assert.Contains(t, reply, "Recent Form: 82, 61, 44, 72, 95")
}

func TestRespondStatsUnknownPlayer(t *testing.T) {
	a := newTestAssistant(t)
	reply := a.Respond(context.Background(), "stats for Nobody Atall")
	assert.Contains(t, reply, "couldn't find statistics for Nobody Atall")
}

func TestRespondFormCardNormalizesName(t *testing.T) {
	a := newTestAssistant(t)
	reply := a.Respond(context.Background(), "How is Bumrah playing?")

	assert.Contains(t, reply, "📈 **Jasprit Bumrah's Current Form:** Good")
	assert.Contains(t, reply, "Wickets in last 5 matches: 3, 2, 4, 1, 2")
	assert.Contains(t, reply, "✅ Recommendation: Jasprit Bumrah is in good form")
}

func TestRespondCompareRoutesBeforeStats(t *testing.T) {
	a := newTestAssistant(t)
	reply := a.Respond(context.Background(), "Compare stats of Virat Kohli and Kane Williamson")

	assert.Contains(t, reply, "🔄 **Comparing Virat Kohli vs Kane Williamson**")
	// 90 vs 60 clears the 1.1x gap, so the call goes to Kohli.
	assert.Contains(t, reply, "✅ **Recommendation:** Virat Kohli")
}

func TestRespondRecommendFiltersByRole(t *testing.T) {
	a := newTestAssistant(t)
	reply := a.Respond(context.Background(), "Suggest best batsmen for the match")

	assert.Contains(t, reply, "🏆 **Recommended Players:**")
	assert.Contains(t, reply, "Virat Kohli")
	assert.NotContains(t, reply, "Jasprit Bumrah")
}

func TestRespondDifferentials(t *testing.T) {
	a := newTestAssistant(t)
	reply := a.Respond(context.Background(), "suggest differential picks")

	assert.Contains(t, reply, "💎 **Differential Picks**")
	assert.Contains(t, reply, "Ravindra Jadeja")
	assert.NotContains(t, reply, "Virat Kohli", "template players stay out of differentials")
}

func TestRespondRulesTopics(t *testing.T) {
	a := newTestAssistant(t)

	reply := a.Respond(context.Background(), "Explain fantasy cricket scoring")
	assert.Contains(t, reply, "📘 **Fantasy Cricket Rules Overview**")

	reply = a.Respond(context.Background(), "How do batting points work?")
	assert.Contains(t, reply, "🏏 **Fantasy Cricket Batting Points**")
}

func TestRespondPitchReport(t *testing.T) {
	a := newTestAssistant(t)
	reply := a.Respond(context.Background(), "Pitch conditions in Wankhede Stadium")

	assert.Contains(t, reply, "🏟️ **Pitch Report: Wankhede Stadium")
	assert.Contains(t, reply, "Very batting friendly")
	assert.Contains(t, reply, "✓ Consider picking top-order batsmen")
}

func TestRespondPitchUnknownVenue(t *testing.T) {
	a := newTestAssistant(t)
	reply := a.Respond(context.Background(), "pitch conditions in Narnia")
	assert.Contains(t, reply, "couldn't find pitch information")
}

func TestRespondCaptainPicks(t *testing.T) {
	a := newTestAssistant(t)
	reply := a.Respond(context.Background(), "Who should be my captain?")

	assert.Contains(t, reply, "👑 **Captain & Vice-Captain Recommendations**")
	assert.Contains(t, reply, "**Captain Picks:**")
	assert.Contains(t, reply, "Virat Kohli")
	assert.Contains(t, reply, "Captain gets 2x points")
}

func TestRespondLiveNoMatches(t *testing.T) {
	a := newTestAssistant(t)
	reply := a.Respond(context.Background(), "What's the live score?")
	assert.Contains(t, reply, "No matches are live right now")
}

func TestRespondUpcomingWithPitchInsight(t *testing.T) {
	a := newTestAssistant(t)
	reply := a.Respond(context.Background(), "Show upcoming matches")

	assert.Contains(t, reply, "🗓️ **Upcoming Matches**")
	assert.Contains(t, reply, "India vs Australia")
	assert.Contains(t, reply, "Batting-friendly pitch at Wankhede Stadium")
}

func TestRespondBarePlayerNameFallsToStats(t *testing.T) {
	a := newTestAssistant(t)
	reply := a.Respond(context.Background(), "Kohli?")
	assert.Contains(t, reply, "📊 **Virat Kohli (India)** - Batsman")
}

func TestRespondUnmatchedQueryGetsHelp(t *testing.T) {
	a := newTestAssistant(t)

	reply := a.Respond(context.Background(), "what is the weather like")
	assert.Contains(t, reply, "I'm not sure what you're asking")

	assert.Equal(t, helpMessage, a.Respond(context.Background(), "   "))
}

func TestExtractPairStripsFiller(t *testing.T) {
	n1, n2 := extractPair("compare the Rohit Sharma and player Kane Williamson")
	assert.Equal(t, "Rohit Sharma", n1)
	assert.Equal(t, "Kane Williamson", n2)

	n1, n2 = extractPair("Bumrah vs Rabada?")
	assert.Equal(t, "Bumrah", n1)
	assert.Equal(t, "Rabada", n2)
}

func TestExtractBudget(t *testing.T) {
	assert.Equal(t, 8.5, extractBudget("suggest bowlers under budget 8.5"))
	assert.Equal(t, 0.0, extractBudget("suggest bowlers"))
}
