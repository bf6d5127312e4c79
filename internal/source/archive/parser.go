package archive

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/fortuna/willow/internal/models"
)

// matchFile is the ball-by-ball match document. Only the fields the
// aggregator needs are decoded.
type matchFile struct {
	Info    matchFileInfo `json:"info"`
	Innings []inningsData `json:"innings"`
}

type matchFileInfo struct {
	Dates     []string            `json:"dates"`
	Teams     []string            `json:"teams"`
	Venue     string              `json:"venue"`
	City      string              `json:"city"`
	MatchType string              `json:"match_type"`
	Players   map[string][]string `json:"players"`
	Outcome   struct {
		Winner string `json:"winner"`
		Result string `json:"result"`
	} `json:"outcome"`
}

type inningsData struct {
	Team  string `json:"team"`
	Overs []struct {
		Over       int        `json:"over"`
		Deliveries []delivery `json:"deliveries"`
	} `json:"overs"`
}

type delivery struct {
	Batter string `json:"batter"`
	Bowler string `json:"bowler"`
	Runs   struct {
		Batter int `json:"batter"`
		Extras int `json:"extras"`
		Total  int `json:"total"`
	} `json:"runs"`
	Wickets []struct {
		PlayerOut string `json:"player_out"`
		Kind      string `json:"kind"`
	} `json:"wickets"`
	Extras map[string]int `json:"extras"`
}

// loadMatchFile decodes one match document from disk.
func loadMatchFile(path string) (*matchFile, error) {
	blob, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var m matchFile
	if err := json.Unmarshal(blob, &m); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	return &m, nil
}

// startDate parses the first listed match date.
func (m *matchFile) startDate() (time.Time, error) {
	if len(m.Info.Dates) == 0 {
		return time.Time{}, fmt.Errorf("match has no dates")
	}
	return time.Parse("2006-01-02", m.Info.Dates[0])
}

// toMatch converts the document header to the canonical match record.
func (m *matchFile) toMatch(id string) models.Match {
	teams := "Unknown vs Unknown"
	if len(m.Info.Teams) >= 2 {
		teams = fmt.Sprintf("%s vs %s", m.Info.Teams[0], m.Info.Teams[1])
	}

	venue := m.Info.Venue
	if venue == "" {
		venue = "Unknown"
	}
	if m.Info.City != "" && !strings.Contains(venue, m.Info.City) {
		venue = fmt.Sprintf("%s, %s", venue, m.Info.City)
	}

	date := "Unknown"
	if d, err := m.startDate(); err == nil {
		date = d.Format("02 Jan 2006")
	}

	score := ""
	if m.Info.Outcome.Winner != "" {
		score = m.Info.Outcome.Winner + " won"
	} else if m.Info.Outcome.Result != "" {
		score = m.Info.Outcome.Result
	}

	return models.Match{
		ID:          id,
		Teams:       teams,
		Venue:       venue,
		Date:        date,
		MatchType:   normalizeMatchType(m.Info.MatchType),
		Status:      models.StatusCompleted,
		Score:       score,
		Source:      SourceName,
		LastUpdated: time.Now(),
	}
}

func normalizeMatchType(t string) string {
	switch strings.ToUpper(t) {
	case "T20", "IT20":
		return models.FormatT20
	case "ODI", "ODM":
		return models.FormatODI
	case "TEST", "MDM":
		return models.FormatTest
	}
	if t == "" {
		return "Unknown"
	}
	return strings.ToUpper(t)
}

// inningsLine is one player-innings worth of deliveries, used to derive
// averages and the recent-form series.
type inningsLine struct {
	date    time.Time
	runs    int
	balls   int
	out     bool
	wickets int
	conced  int
	overs   float64
}

// playerAggregate accumulates a player's record across match files.
type playerAggregate struct {
	Team          string
	MatchesPlayed int

	batting []inningsLine
	bowling []inningsLine
}

func newPlayerAggregate() *playerAggregate {
	return &playerAggregate{}
}

// addMatch folds one match's deliveries into the aggregate if the player
// appears in it. Name matching is case-insensitive on the full name.
func (a *playerAggregate) addMatch(m *matchFile, name string) {
	team := teamOf(m, name)
	if team == "" {
		return
	}
	a.MatchesPlayed++
	if a.Team == "" {
		a.Team = team
	}

	date, _ := m.startDate()

	var bat, bowl inningsLine
	bat.date, bowl.date = date, date

	for _, inn := range m.Innings {
		for _, over := range inn.Overs {
			for _, d := range over.Deliveries {
				if strings.EqualFold(d.Batter, name) {
					bat.runs += d.Runs.Batter
					// Wides do not count as balls faced.
					if d.Extras["wides"] == 0 {
						bat.balls++
					}
					for _, w := range d.Wickets {
						if strings.EqualFold(w.PlayerOut, name) {
							bat.out = true
						}
					}
				}
				if strings.EqualFold(d.Bowler, name) {
					bowl.conced += d.Runs.Total - d.Extras["byes"] - d.Extras["legbyes"]
					if d.Extras["wides"] == 0 && d.Extras["noballs"] == 0 {
						bowl.overs += 1.0 / 6.0
					}
					for _, w := range d.Wickets {
						// Run outs are not credited to the bowler.
						if w.Kind != "run out" && w.Kind != "retired hurt" && w.Kind != "retired out" {
							bowl.wickets++
						}
					}
				}
			}
		}
	}

	if bat.balls > 0 || bat.out {
		a.batting = append(a.batting, bat)
	}
	if bowl.overs > 0 {
		a.bowling = append(a.bowling, bowl)
	}
}

// teamOf returns the team whose playing XI contains the player.
func teamOf(m *matchFile, name string) string {
	for team, players := range m.Info.Players {
		for _, p := range players {
			if strings.EqualFold(p, name) {
				return team
			}
		}
	}
	return ""
}

// toPlayer derives the canonical record from the accumulated innings.
// Everything comes from real deliveries; fields the archive cannot know
// (ownership, price) are derived from the fantasy average the same way
// the API converters do.
func (a *playerAggregate) toPlayer(name string) *models.Player {
	p := &models.Player{
		Name:          name,
		Team:          orUnknown(a.Team),
		MatchesPlayed: a.MatchesPlayed,
		Source:        SourceName,
		LastUpdated:   time.Now(),
	}

	var runs, balls, dismissals int
	for _, inn := range a.batting {
		runs += inn.runs
		balls += inn.balls
		if inn.out {
			dismissals++
		}
	}
	if dismissals > 0 {
		p.BattingAvg = round1(float64(runs) / float64(dismissals))
	} else if runs > 0 {
		p.BattingAvg = float64(runs)
	}
	if balls > 0 {
		p.StrikeRate = round1(float64(runs) / float64(balls) * 100)
	}

	var wickets int
	var conceded int
	var overs float64
	for _, inn := range a.bowling {
		wickets += inn.wickets
		conceded += inn.conced
		overs += inn.overs
	}
	if wickets > 0 {
		p.BowlingAvg = round1(float64(conceded) / float64(wickets))
	}
	if overs > 0 {
		p.Economy = round1(float64(conceded) / overs)
	}

	p.Role = a.deriveRole(wickets)
	p.RecentForm = a.recentRuns(5)
	p.RecentWickets = a.recentWickets(5)

	p.FantasyPointsAvg = round1(fantasyAverage(p))
	p.Ownership = round1(clamp(p.FantasyPointsAvg*0.8, 10, 90))
	p.Price = round1(clamp(p.FantasyPointsAvg/10, 5, 11))

	return p
}

// deriveRole infers the role from relative batting and bowling volume.
// The archive has no keeper marker, so keepers classify as batsmen here
// and a fresher source corrects the role.
func (a *playerAggregate) deriveRole(wickets int) string {
	bats := len(a.batting)
	bowls := len(a.bowling)
	switch {
	case bats == 0 && bowls == 0:
		return models.RoleUnknown
	case bowls == 0:
		return models.RoleBatsman
	case bats == 0:
		return models.RoleBowler
	}
	batRatio := float64(bats) / float64(a.MatchesPlayed)
	bowlRatio := float64(bowls) / float64(a.MatchesPlayed)
	switch {
	case batRatio > 0.6 && bowlRatio > 0.4:
		return models.RoleAllRounder
	case bowlRatio > batRatio:
		return models.RoleBowler
	default:
		return models.RoleBatsman
	}
}

// recentRuns returns the last n innings' run totals, newest first.
func (a *playerAggregate) recentRuns(n int) []int {
	lines := append([]inningsLine(nil), a.batting...)
	sort.Slice(lines, func(i, j int) bool { return lines[i].date.After(lines[j].date) })
	out := make([]int, 0, n)
	for _, l := range lines {
		out = append(out, l.runs)
		if len(out) == n {
			break
		}
	}
	return out
}

// recentWickets returns the last n bowling innings' wicket counts.
func (a *playerAggregate) recentWickets(n int) []int {
	lines := append([]inningsLine(nil), a.bowling...)
	sort.Slice(lines, func(i, j int) bool { return lines[i].date.After(lines[j].date) })
	out := make([]int, 0, n)
	for _, l := range lines {
		out = append(out, l.wickets)
		if len(out) == n {
			break
		}
	}
	return out
}

// fantasyAverage mirrors the per-role derivation the API converters use
// so records from different sources stay comparable.
func fantasyAverage(p *models.Player) float64 {
	switch p.Role {
	case models.RoleWicketkeeper:
		return p.BattingAvg * 1.6
	case models.RoleBowler:
		if p.BowlingAvg > 0 {
			return (30 / p.BowlingAvg) * 30
		}
		return 0
	case models.RoleAllRounder:
		bowl := 0.0
		if p.BowlingAvg > 0 {
			bowl = (30 / p.BowlingAvg) * 25
		}
		return p.BattingAvg*1.2 + bowl
	default:
		return p.BattingAvg * 1.5
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func round1(v float64) float64 {
	return float64(int(v*10+0.5)) / 10
}

func orUnknown(s string) string {
	if strings.TrimSpace(s) == "" {
		return "Unknown"
	}
	return s
}
