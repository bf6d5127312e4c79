package archive

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fortuna/willow/internal/models"
)

func writeMatchFile(t *testing.T, doc string) *matchFile {
	t.Helper()
	path := filepath.Join(t.TempDir(), "match.json")
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))
	m, err := loadMatchFile(path)
	require.NoError(t, err)
	return m
}

const battingDoc = `{
  "info": {
    "dates": ["2024-03-10"],
    "teams": ["India", "Australia"],
    "venue": "Wankhede Stadium",
    "city": "Mumbai",
    "match_type": "T20",
    "players": {
      "India": ["A Batter"],
      "Australia": ["A Bowler"]
    },
    "outcome": {"winner": "India"}
  },
  "innings": [
    {
      "team": "India",
      "overs": [
        {
          "over": 0,
          "deliveries": [
            {"batter": "A Batter", "bowler": "A Bowler", "runs": {"batter": 4, "extras": 0, "total": 4}},
            {"batter": "A Batter", "bowler": "A Bowler", "runs": {"batter": 0, "extras": 1, "total": 1}, "extras": {"wides": 1}},
            {"batter": "A Batter", "bowler": "A Bowler", "runs": {"batter": 1, "extras": 0, "total": 1}},
            {"batter": "A Batter", "bowler": "A Bowler", "runs": {"batter": 0, "extras": 0, "total": 0},
             "wickets": [{"player_out": "A Batter", "kind": "bowled"}]}
          ]
        }
      ]
    }
  ]
}`

func TestLoadMatchFileRejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, err := loadMatchFile(path)
	assert.Error(t, err)

	_, err = loadMatchFile(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestToMatchHeaderConversion(t *testing.T) {
	m := writeMatchFile(t, battingDoc)

	match := m.toMatch("wk-001")
	assert.Equal(t, "wk-001", match.ID)
	assert.Equal(t, "India vs Australia", match.Teams)
	assert.Equal(t, "Wankhede Stadium, Mumbai", match.Venue)
	assert.Equal(t, "10 Mar 2024", match.Date)
	assert.Equal(t, models.FormatT20, match.MatchType)
	assert.Equal(t, models.StatusCompleted, match.Status)
	assert.Equal(t, "India won", match.Score)
	assert.Equal(t, SourceName, match.Source)
}

func TestToMatchVenueAlreadyNamesCity(t *testing.T) {
	m := writeMatchFile(t, battingDoc)
	m.Info.Venue = "Wankhede Stadium, Mumbai"

	assert.Equal(t, "Wankhede Stadium, Mumbai", m.toMatch("x").Venue)
}

func TestNormalizeMatchType(t *testing.T) {
	assert.Equal(t, models.FormatT20, normalizeMatchType("IT20"))
	assert.Equal(t, models.FormatODI, normalizeMatchType("odi"))
	assert.Equal(t, models.FormatTest, normalizeMatchType("Test"))
	assert.Equal(t, "Unknown", normalizeMatchType(""))
	assert.Equal(t, "THE HUNDRED", normalizeMatchType("The Hundred"))
}

func TestBattingAggregationSkipsWides(t *testing.T) {
	m := writeMatchFile(t, battingDoc)

	agg := newPlayerAggregate()
	agg.addMatch(m, "a batter") // case-insensitive

	require.Equal(t, 1, agg.MatchesPlayed)
	assert.Equal(t, "India", agg.Team)

	p := agg.toPlayer("A Batter")
	// 5 runs, one dismissal, 3 legal balls faced (the wide is not one).
	assert.Equal(t, 5.0, p.BattingAvg)
	assert.InDelta(t, 166.7, p.StrikeRate, 0.05)
	assert.Equal(t, models.RoleBatsman, p.Role)
	assert.Equal(t, []int{5}, p.RecentForm)
	assert.Empty(t, p.RecentWickets)
}

func TestBowlingAggregationCreditRules(t *testing.T) {
	doc := `{
  "info": {
    "dates": ["2024-03-10"],
    "teams": ["India", "Australia"],
    "venue": "MCG",
    "match_type": "T20",
    "players": {
      "India": ["A Batter"],
      "Australia": ["A Bowler"]
    },
    "outcome": {}
  },
  "innings": [
    {
      "team": "India",
      "overs": [
        {
          "over": 0,
          "deliveries": [
            {"batter": "A Batter", "bowler": "A Bowler", "runs": {"batter": 4, "extras": 0, "total": 4},
             "wickets": [{"player_out": "A Batter", "kind": "caught"}]},
            {"batter": "A Batter", "bowler": "A Bowler", "runs": {"batter": 1, "extras": 4, "total": 5},
             "extras": {"legbyes": 4}},
            {"batter": "A Batter", "bowler": "A Bowler", "runs": {"batter": 0, "extras": 1, "total": 1},
             "extras": {"wides": 1}},
            {"batter": "A Batter", "bowler": "A Bowler", "runs": {"batter": 0, "extras": 0, "total": 0},
             "wickets": [{"player_out": "A Batter", "kind": "run out"}]}
          ]
        }
      ]
    }
  ]
}`
	m := writeMatchFile(t, doc)

	agg := newPlayerAggregate()
	agg.addMatch(m, "A Bowler")

	p := agg.toPlayer("A Bowler")
	assert.Equal(t, models.RoleBowler, p.Role)
	// Conceded 6: leg byes are not against the bowler, the wide is.
	// One wicket: the run out earns no credit.
	assert.Equal(t, 6.0, p.BowlingAvg)
	// Three legal deliveries = 0.5 overs.
	assert.Equal(t, 12.0, p.Economy)
	assert.Equal(t, []int{1}, p.RecentWickets)
}

func TestAddMatchSkipsPlayersNotInXI(t *testing.T) {
	m := writeMatchFile(t, battingDoc)

	agg := newPlayerAggregate()
	agg.addMatch(m, "Somebody Else")
	assert.Equal(t, 0, agg.MatchesPlayed)
}

func TestRecentRunsNewestFirst(t *testing.T) {
	const tmpl = `{
  "info": {
    "dates": ["%s"],
    "teams": ["India", "Australia"],
    "venue": "MCG",
    "match_type": "T20",
    "players": {"India": ["A Batter"], "Australia": []},
    "outcome": {}
  },
  "innings": [
    {"team": "India", "overs": [{"over": 0, "deliveries": [
      {"batter": "A Batter", "bowler": "A Bowler", "runs": {"batter": %d, "extras": 0, "total": %d}}
    ]}]}
  ]
}`
	agg := newPlayerAggregate()
	for _, fix := range []struct {
		date string
		runs int
	}{
		{"2024-01-01", 10},
		{"2024-03-01", 30},
		{"2024-02-01", 20},
	} {
		doc := writeMatchFile(t, fmt.Sprintf(tmpl, fix.date, fix.runs, fix.runs))
		agg.addMatch(doc, "A Batter")
	}

	assert.Equal(t, []int{30, 20, 10}, agg.toPlayer("A Batter").RecentForm)
}

func TestDeriveRoleAllRounder(t *testing.T) {
	agg := newPlayerAggregate()
	agg.MatchesPlayed = 10
	for i := 0; i < 8; i++ {
		agg.batting = append(agg.batting, inningsLine{runs: 30, balls: 20})
	}
	for i := 0; i < 6; i++ {
		agg.bowling = append(agg.bowling, inningsLine{wickets: 1, overs: 4})
	}

	assert.Equal(t, models.RoleAllRounder, agg.deriveRole(6))
}
