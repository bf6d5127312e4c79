package cricapi

import (
	"fmt"
	"strings"
	"time"

	"github.com/fortuna/willow/internal/models"
)

// playerSearchHit is one row of the /players search response.
type playerSearchHit struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Country string `json:"country"`
}

// playerInfo is the /players_info detail response.
type playerInfo struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	Country      string     `json:"country"`
	Role         string     `json:"role"`
	BattingStyle string     `json:"battingStyle"`
	BowlingStyle string     `json:"bowlingStyle"`
	Stats        []statLine `json:"stats"`
}

// statLine is one cell of the career stats matrix: a (function, format,
// stat-name) triple with a string value.
type statLine struct {
	Fn     string `json:"fn"`        // "batting" or "bowling"
	MatchT string `json:"matchtype"` // "odi", "t20", "test", "ipl"
	Stat   string `json:"stat"`      // "avg", "sr", "econ", "m", ...
	Value  string `json:"value"`
}

// apiMatch is one row of the match list endpoints.
type apiMatch struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	MatchType    string     `json:"matchType"`
	Status       string     `json:"status"`
	Venue        string     `json:"venue"`
	Date         string     `json:"date"`
	Teams        []string   `json:"teams"`
	Score        []apiScore `json:"score"`
	MatchStarted bool       `json:"matchStarted"`
	MatchEnded   bool       `json:"matchEnded"`
}

// apiScore is one innings line.
type apiScore struct {
	Runs    float64 `json:"r"`
	Wickets float64 `json:"w"`
	Overs   float64 `json:"o"`
	Inning  string  `json:"inning"`
}

// convertPlayer flattens the stats matrix into the canonical record.
// The API reports no recent-form series, so those fields stay empty and
// a fresher source fills them during aggregation.
func convertPlayer(info *playerInfo, queried string) *models.Player {
	if info == nil || (info.Name == "" && info.ID == "") {
		return nil
	}

	name := info.Name
	if name == "" {
		name = queried
	}

	p := &models.Player{
		Name:        name,
		Team:        orUnknown(info.Country),
		Role:        parseRole(info.Role),
		Source:      SourceName,
		LastUpdated: time.Now(),
	}

	// Prefer ODI figures, then T20, for the headline averages.
	p.BattingAvg = pickStat(info.Stats, "batting", "avg")
	p.StrikeRate = pickStat(info.Stats, "batting", "sr")
	p.BowlingAvg = pickStat(info.Stats, "bowling", "avg")
	p.Economy = pickStat(info.Stats, "bowling", "econ")
	p.MatchesPlayed = int(pickStat(info.Stats, "batting", "m"))

	deriveFantasyFigures(p)
	return p
}

// pickStat scans the stats matrix for the first format in preference
// order carrying the requested stat.
func pickStat(stats []statLine, fn, stat string) float64 {
	for _, format := range []string{"odi", "t20", "test", "ipl"} {
		for _, line := range stats {
			if strings.EqualFold(line.Fn, fn) &&
				strings.EqualFold(line.MatchT, format) &&
				strings.EqualFold(strings.TrimSpace(line.Stat), stat) {
				if v := parseFloat(line.Value); v > 0 {
					return v
				}
			}
		}
	}
	return 0
}

func parseFloat(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" || s == "-" {
		return 0
	}
	var v float64
	if _, err := fmt.Sscanf(s, "%f", &v); err != nil {
		return 0
	}
	return v
}

// parseRole maps the API's free-form role strings onto the canonical set.
func parseRole(role string) string {
	lower := strings.ToLower(role)
	switch {
	case strings.Contains(lower, "wk") || strings.Contains(lower, "wicket"):
		return models.RoleWicketkeeper
	case strings.Contains(lower, "allrounder") || strings.Contains(lower, "all-rounder"):
		return models.RoleAllRounder
	case strings.Contains(lower, "bowl"):
		return models.RoleBowler
	case strings.Contains(lower, "bat"):
		return models.RoleBatsman
	default:
		return models.RoleUnknown
	}
}

// deriveFantasyFigures fills the fantasy fields from career averages.
// These are estimates: the API carries no ownership or pricing data, and
// downstream scoring treats them as soft signals.
func deriveFantasyFigures(p *models.Player) {
	switch p.Role {
	case models.RoleBatsman:
		p.FantasyPointsAvg = p.BattingAvg * 1.5
	case models.RoleWicketkeeper:
		p.FantasyPointsAvg = p.BattingAvg * 1.6
	case models.RoleBowler:
		if p.BowlingAvg > 0 {
			p.FantasyPointsAvg = (30 / p.BowlingAvg) * 30
		} else {
			p.FantasyPointsAvg = 30
		}
	case models.RoleAllRounder:
		batting := p.BattingAvg * 1.2
		bowling := 25.0
		if p.BowlingAvg > 0 {
			bowling = (30 / p.BowlingAvg) * 25
		}
		p.FantasyPointsAvg = batting + bowling
	}

	p.Ownership = clamp(p.FantasyPointsAvg*0.8, 10, 90)
	p.Price = clamp(p.FantasyPointsAvg/10, 5, 11)
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

func convertMatches(in []apiMatch, live bool) []models.Match {
	out := make([]models.Match, 0, len(in))
	for _, m := range in {
		out = append(out, convertMatch(m, live))
	}
	return out
}

// convertMatch flattens one API row into the canonical match record.
func convertMatch(m apiMatch, live bool) models.Match {
	teams := m.Teams
	if len(teams) < 2 {
		teams = strings.Split(m.Name, " vs ")
	}
	teamsStr := "Unknown vs Unknown"
	if len(teams) >= 2 {
		teamsStr = fmt.Sprintf("%s vs %s", teams[0], teams[1])
	}

	date := m.Date
	if parsed, err := time.Parse("2006-01-02", m.Date); err == nil {
		date = parsed.Format("02 Jan")
	}

	status := models.StatusUpcoming
	score := ""
	if live {
		status = models.StatusLive
		score = formatScore(teams, m.Score)
	} else if m.MatchEnded {
		status = models.StatusCompleted
	}

	return models.Match{
		ID:          m.ID,
		Teams:       teamsStr,
		Venue:       orUnknown(m.Venue),
		Date:        date,
		MatchType:   normalizeFormat(m.MatchType),
		Status:      status,
		Score:       score,
		Source:      SourceName,
		LastUpdated: time.Now(),
	}
}

func formatScore(teams []string, score []apiScore) string {
	if len(score) == 0 || len(teams) == 0 {
		return ""
	}
	parts := make([]string, 0, 2)
	for i, s := range score {
		if i >= len(teams) || i >= 2 {
			break
		}
		parts = append(parts, fmt.Sprintf("%s %d/%d (%.1f ov)", teams[i], int(s.Runs), int(s.Wickets), s.Overs))
	}
	return strings.Join(parts, ", ")
}

func normalizeFormat(matchType string) string {
	switch strings.ToLower(matchType) {
	case "t20", "t20i":
		return models.FormatT20
	case "odi":
		return models.FormatODI
	case "test":
		return models.FormatTest
	default:
		if matchType == "" {
			return "Unknown"
		}
		return matchType
	}
}

func orUnknown(s string) string {
	if strings.TrimSpace(s) == "" {
		return "Unknown"
	}
	return s
}
