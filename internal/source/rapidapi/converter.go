package rapidapi

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/fortuna/willow/internal/models"
)

// flexInt tolerates the API sending numbers as either JSON numbers or
// strings, which it does depending on the endpoint.
type flexInt struct {
	value int64
}

func (f *flexInt) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		f.value = 0
		return nil
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		f.value = 0
		return nil
	}
	f.value = v
	return nil
}

func (f flexInt) Int64() int64 { return f.value }
func (f flexInt) String() string {
	if f.value == 0 {
		return ""
	}
	return strconv.FormatInt(f.value, 10)
}

// matchListResponse is the nested list shape shared by the live,
// upcoming and recent endpoints.
type matchListResponse struct {
	TypeMatches []struct {
		MatchType     string `json:"matchType"`
		SeriesMatches []struct {
			SeriesAdWrapper struct {
				SeriesName string         `json:"seriesName"`
				Matches    []matchWrapper `json:"matches"`
			} `json:"seriesAdWrapper"`
		} `json:"seriesMatches"`
	} `json:"typeMatches"`
}

// matchWrapper pairs the static match info with the live score block.
type matchWrapper struct {
	Info  matchInfo   `json:"matchInfo"`
	Score *matchScore `json:"matchScore"`
}

type matchInfo struct {
	MatchID     flexInt `json:"matchId"`
	MatchFormat string  `json:"matchFormat"`
	StartDate   flexInt `json:"startDate"`
	State       string  `json:"state"`
	Status      string  `json:"status"`
	Team1       team    `json:"team1"`
	Team2       team    `json:"team2"`
	VenueInfo   struct {
		Ground string `json:"ground"`
		City   string `json:"city"`
	} `json:"venueInfo"`
}

type team struct {
	TeamName string `json:"teamName"`
}

type matchScore struct {
	Team1Score inningsSet `json:"team1Score"`
	Team2Score inningsSet `json:"team2Score"`
}

type inningsSet struct {
	Innings1 *innings `json:"inngs1"`
	Innings2 *innings `json:"inngs2"`
}

type innings struct {
	Runs    int     `json:"runs"`
	Wickets int     `json:"wickets"`
	Overs   float64 `json:"overs"`
}

// playerSearchResponse is the player search result list.
type playerSearchResponse struct {
	Player []struct {
		ID       string `json:"id"`
		Name     string `json:"name"`
		TeamName string `json:"teamName"`
	} `json:"player"`
}

// playerResponse is the player profile endpoint.
type playerResponse struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	IntlTeam string `json:"intlTeam"`
	Role     string `json:"role"`
	Keeper   bool   `json:"keeper"`
	Batsman  bool   `json:"batsman"`
	Bowler   bool   `json:"bowler"`

	// Career blocks arrive as loosely structured header/value grids.
	Batting json.RawMessage `json:"batting"`
	Bowling json.RawMessage `json:"bowling"`
}

// battingBowlingRecent carries the player's last few innings as reported
// by the career endpoint.
type battingBowlingRecent struct {
	RecentBatting []struct {
		Runs flexInt `json:"runs"`
	} `json:"recentBatting"`
	RecentBowling []struct {
		Wickets flexInt `json:"wickets"`
	} `json:"recentBowling"`
}

// flattenMatches walks the nested series wrappers into a flat list.
func flattenMatches(resp *matchListResponse) []matchWrapper {
	var out []matchWrapper
	for _, tm := range resp.TypeMatches {
		for _, sm := range tm.SeriesMatches {
			out = append(out, sm.SeriesAdWrapper.Matches...)
		}
	}
	return out
}

func convertMatches(in []matchWrapper, live bool) []models.Match {
	out := make([]models.Match, 0, len(in))
	for _, m := range in {
		out = append(out, convertMatch(m, live))
	}
	return out
}

// convertMatch flattens one wrapper into the canonical match record.
func convertMatch(m matchWrapper, live bool) models.Match {
	info := m.Info

	team1 := orUnknown(info.Team1.TeamName)
	team2 := orUnknown(info.Team2.TeamName)

	venue := orUnknown(info.VenueInfo.Ground)
	if city := info.VenueInfo.City; city != "" && !strings.Contains(venue, city) {
		venue = fmt.Sprintf("%s, %s", venue, city)
	}

	date := "Unknown"
	if millis := info.StartDate.Int64(); millis > 0 {
		date = time.UnixMilli(millis).Format("02 Jan")
	}

	status := models.StatusUpcoming
	if live || info.State == "In Progress" {
		status = models.StatusLive
	} else if info.State == "Complete" {
		status = models.StatusCompleted
	}

	return models.Match{
		ID:          info.MatchID.String(),
		Teams:       fmt.Sprintf("%s vs %s", team1, team2),
		Venue:       venue,
		Date:        date,
		MatchType:   normalizeFormat(info.MatchFormat),
		Status:      status,
		Score:       formatScore(team1, team2, m.Score),
		Source:      SourceName,
		LastUpdated: time.Now(),
	}
}

func formatScore(team1, team2 string, score *matchScore) string {
	if score == nil {
		return ""
	}
	parts := make([]string, 0, 2)
	if line := formatInnings(team1, score.Team1Score.Innings1); line != "" {
		parts = append(parts, line)
	}
	if line := formatInnings(team2, score.Team2Score.Innings1); line != "" {
		parts = append(parts, line)
	}
	return strings.Join(parts, ", ")
}

func formatInnings(team string, in *innings) string {
	if in == nil {
		return ""
	}
	return fmt.Sprintf("%s %d/%d (%.1f ov)", team, in.Runs, in.Wickets, in.Overs)
}

// convertPlayer builds the canonical record. Career grids are too loose
// to parse reliably for averages, so this source mainly contributes the
// volatile fields; the aggregator layers it on top of archive data.
func convertPlayer(info *playerResponse, queried string, recent *battingBowlingRecent) *models.Player {
	if info == nil || (info.ID == "" && info.Name == "") {
		return nil
	}

	name := info.Name
	if name == "" {
		name = queried
	}

	p := &models.Player{
		Name:        name,
		Team:        orUnknown(info.IntlTeam),
		Role:        resolveRole(info),
		Source:      SourceName,
		LastUpdated: time.Now(),
	}

	if recent != nil {
		for _, line := range recent.RecentBatting {
			p.RecentForm = append(p.RecentForm, int(line.Runs.Int64()))
			if len(p.RecentForm) == 5 {
				break
			}
		}
		for _, line := range recent.RecentBowling {
			p.RecentWickets = append(p.RecentWickets, int(line.Wickets.Int64()))
			if len(p.RecentWickets) == 5 {
				break
			}
		}
	}

	p.CurrentForm = classifyForm(p)
	return p
}

// resolveRole prefers the boolean skill flags over the free-form role
// string, matching how the upstream profile marks keepers.
func resolveRole(info *playerResponse) string {
	switch {
	case info.Keeper:
		return models.RoleWicketkeeper
	case info.Batsman && info.Bowler:
		return models.RoleAllRounder
	case info.Bowler:
		return models.RoleBowler
	case info.Batsman:
		return models.RoleBatsman
	}

	lower := strings.ToLower(info.Role)
	switch {
	case strings.Contains(lower, "wk") || strings.Contains(lower, "keeper"):
		return models.RoleWicketkeeper
	case strings.Contains(lower, "allrounder") || strings.Contains(lower, "all-rounder"):
		return models.RoleAllRounder
	case strings.Contains(lower, "bowl"):
		return models.RoleBowler
	case strings.Contains(lower, "bat"):
		return models.RoleBatsman
	}
	return models.RoleUnknown
}

// classifyForm buckets the recent run series the way the assistant
// describes form to users.
func classifyForm(p *models.Player) string {
	if len(p.RecentForm) > 0 {
		avg := p.FormAverage()
		switch {
		case avg > 60:
			return "excellent"
		case avg > 40:
			return "good"
		case avg > 25:
			return "average"
		default:
			return "poor"
		}
	}
	if len(p.RecentWickets) > 0 {
		sum := 0
		for _, w := range p.RecentWickets {
			sum += w
		}
		avg := float64(sum) / float64(len(p.RecentWickets))
		switch {
		case avg >= 2.5:
			return "excellent"
		case avg >= 1.5:
			return "good"
		case avg >= 1:
			return "average"
		default:
			return "poor"
		}
	}
	return ""
}

func normalizeFormat(format string) string {
	switch strings.ToUpper(format) {
	case "T20", "T20I":
		return models.FormatT20
	case "ODI":
		return models.FormatODI
	case "TEST":
		return models.FormatTest
	}
	if format == "" {
		return "Unknown"
	}
	return strings.ToUpper(format)
}

func orUnknown(s string) string {
	if strings.TrimSpace(s) == "" {
		return "Unknown"
	}
	return s
}
