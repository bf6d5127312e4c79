package fantasy

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
	"github.com/fortuna/willow/internal/models"
	"github.com/fortuna/willow/internal/source"
)

// rosterSource serves scripted player records and one upcoming match.
type rosterSource struct {
	players  map[string]*models.Player
	upcoming []models.Match
}

func (s *rosterSource) Name() string { return "test" }

func (s *rosterSource) PlayerStats(_ context.Context, name string) (*models.Player, error) {
	if p, ok := s.players[name]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, source.ErrNotFound
}

func (s *rosterSource) LiveMatches(context.Context) ([]models.Match, error) { return nil, nil }

func (s *rosterSource) UpcomingMatches(context.Context) ([]models.Match, error) {
	return s.upcoming, nil
}

func (s *rosterSource) RecentMatches(context.Context) ([]models.Match, error) { return nil, nil }

func (s *rosterSource) MatchDetails(context.Context, string) (*models.Match, error) {
	return nil, source.ErrNotFound
}

// tables is the StaticData side: pitch profiles and rosters.
type tables struct {
	pitches map[string]models.PitchConditions
	rosters map[string][]string
}

func (t *tables) PitchConditions(venue string) (models.PitchConditions, bool) {
	pc, ok := t.pitches[venue]
	return pc, ok
}

func (t *tables) Roster(team string) ([]string, bool) {
	r, ok := t.rosters[team]
	return r, ok
}

func (t *tables) AllPlayers() []models.Player { return nil }
func (t *tables) Venues() []string            { return nil }
func (t *tables) Teams() []string             { return nil }

func newTestEngine(t *testing.T, players map[string]*models.Player, pitch models.PitchConditions) *Engine {
	t.Helper()

	src := &rosterSource{
		players: players,
		upcoming: []models.Match{{
			Teams:           "India vs Australia",
			Venue:           "Test Ground",
			Status:          models.StatusUpcoming,
			PitchConditions: pitch,
		}},
	}

	var india, australia []string
	for name := range players {
		india = append(india, name)
	}
	static := &tables{
		pitches: map[string]models.PitchConditions{"Test Ground": pitch},
		rosters: map[string][]string{"India": india, "Australia": australia},
	}

	fc, err := cache.NewFileCache(t.TempDir(), map[string]time.Duration{
		cache.KindPlayerStats: time.Hour,
	}, nil)
	require.NoError(t, err)

	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)

	data := adapter.New(adapter.Sources{Static: src}, static, fc, rand.New(rand.NewSource(7)), log)
	return New(data, rand.New(rand.NewSource(7)), log)
}

func neutralPitch() models.PitchConditions {
	return models.PitchConditions{BattingFriendly: 5, PaceFriendly: 5, SpinFriendly: 5}
}

func TestDifferentialPicksExcludeHighOwnership(t *testing.T) {
	players := map[string]*models.Player{
		"Arjun Verma": {
			Name: "Arjun Verma", Role: models.RoleAllRounder,
			RecentForm: []int{60, 55, 70}, Ownership: 8, Price: 6.5,
			FantasyPointsAvg: 70, MatchesPlayed: 50,
		},
		"Dev Patel": {
			Name: "Dev Patel", Role: models.RoleBatsman,
			RecentForm: []int{80, 75, 90}, Ownership: 60, Price: 10,
			FantasyPointsAvg: 95, MatchesPlayed: 120,
		},
		"Kiran Rao": {
			Name: "Kiran Rao", Role: models.RoleBatsman,
			RecentForm: []int{5, 12, 8}, Ownership: 30, Price: 8,
			FantasyPointsAvg: 30, MatchesPlayed: 20,
		},
	}

	e := newTestEngine(t, players, neutralPitch())

	picks, err := e.DifferentialPicks(context.Background())
	require.NoError(t, err)

	require.Len(t, picks, 1)
	assert.Equal(t, "Arjun Verma", picks[0].Player.Name)
	// 5 base + 2 form + 1.5 all-rounder + 2 ownership + 1 price, ±0.2 jitter.
	assert.InDelta(t, 11.5, picks[0].Score, 0.21)
	assert.Contains(t, picks[0].Reasoning, "has very low ownership (8.0%)")
	assert.Contains(t, picks[0].Reasoning, "is budget-friendly at 6.5 credits")
}

func TestDifferentialPicksCapAtFive(t *testing.T) {
	players := map[string]*models.Player{}
	names := []string{"Arjun Verma", "Dev Patel", "Kiran Rao", "Sanjay Kumar", "Vikram Nair", "Ravi Iyer", "Anil Joshi"}
	for _, name := range names {
		players[name] = &models.Player{
			Name: name, Role: models.RoleAllRounder,
			RecentForm: []int{60, 55, 70}, Ownership: 5, Price: 6,
			FantasyPointsAvg: 70, MatchesPlayed: 50,
		}
	}

	e := newTestEngine(t, players, neutralPitch())

	picks, err := e.DifferentialPicks(context.Background())
	require.NoError(t, err)
	assert.Len(t, picks, 5)

	for i := 1; i < len(picks); i++ {
		assert.GreaterOrEqual(t, picks[i-1].Score, picks[i].Score, "picks must be sorted best first")
	}
}

func TestCaptainPicksLabelSplit(t *testing.T) {
	players := map[string]*models.Player{}
	names := []string{"Arjun Verma", "Dev Patel", "Kiran Rao", "Sanjay Kumar", "Vikram Nair", "Ravi Iyer", "Anil Joshi"}
	for i, name := range names {
		players[name] = &models.Player{
			Name: name, Role: models.RoleBatsman,
			RecentForm:       []int{40 + i, 45 + i, 50 + i},
			FantasyPointsAvg: float64(60 + 3*i),
			Ownership:        40, Price: 9, MatchesPlayed: 80,
		}
	}

	e := newTestEngine(t, players, neutralPitch())

	picks, err := e.CaptainPicks(context.Background())
	require.NoError(t, err)
	require.Len(t, picks, 6)

	for i, pick := range picks {
		if i < 3 {
			assert.Equal(t, "Captain", pick.Role)
		} else {
			assert.Equal(t, "Vice-Captain", pick.Role)
		}
	}
}

func TestCaptainScoreRewardsConsistency(t *testing.T) {
	steady := &models.Player{
		Name: "Arjun Verma", Role: models.RoleBatsman,
		RecentForm: []int{55, 57, 56, 54, 58}, FantasyPointsAvg: 70,
	}
	volatile := &models.Player{
		Name: "Dev Patel", Role: models.RoleBatsman,
		RecentForm: []int{110, 2, 95, 0, 73}, FantasyPointsAvg: 70,
	}

	e := newTestEngine(t, map[string]*models.Player{}, neutralPitch())

	// Jitter is at most ±0.2 per call; the consistency bonus is 1.5.
	assert.Greater(t,
		e.captainScore(*steady, neutralPitch()),
		e.captainScore(*volatile, neutralPitch()))
}

func TestComparePlayers(t *testing.T) {
	players := map[string]*models.Player{
		"Arjun Verma": {
			Name: "Arjun Verma", Role: models.RoleBatsman,
			RecentForm: []int{60, 70, 65}, FantasyPointsAvg: 85, MatchesPlayed: 100,
		},
		"Dev Patel": {
			Name: "Dev Patel", Role: models.RoleBatsman,
			RecentForm: []int{10, 12, 8}, FantasyPointsAvg: 40, MatchesPlayed: 60,
		},
	}

	e := newTestEngine(t, players, neutralPitch())

	cmp, err := e.ComparePlayers(context.Background(), "Arjun Verma", "Dev Patel")
	require.NoError(t, err)

	assert.Equal(t, "Pick Arjun Verma over Dev Patel", cmp.Recommendation)
	assert.Greater(t, cmp.Score1, cmp.Score2)
	assert.Contains(t, cmp.Reasoning, "better current form")
}

func TestComparePlayersUnknownName(t *testing.T) {
	e := newTestEngine(t, map[string]*models.Player{}, neutralPitch())

	_, err := e.ComparePlayers(context.Background(), "Nobody Atall", "Nobody Else")
	assert.ErrorIs(t, err, source.ErrNotFound)
}

func TestBowlerScoresOnBowlerFriendlyPitch(t *testing.T) {
	bowler := models.Player{
		Name: "Sanjay Kumar", Role: models.RoleBowler,
		RecentWickets: []int{2, 3, 1}, Ownership: 20, Price: 7.5,
	}

	e := newTestEngine(t, map[string]*models.Player{}, neutralPitch())

	green := models.PitchConditions{BattingFriendly: 4, PaceFriendly: 8, SpinFriendly: 5}
	flat := models.PitchConditions{BattingFriendly: 6, PaceFriendly: 5, SpinFriendly: 5}

	// +1.0 pitch bonus dominates the ±0.2 jitter.
	assert.Greater(t,
		e.differentialScore(bowler, green),
		e.differentialScore(bowler, flat))
}
