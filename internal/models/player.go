package models

import "time"

// Player roles as reported by the upstream sources.
const (
	RoleBatsman      = "Batsman"
	RoleBowler       = "Bowler"
	RoleAllRounder   = "All-rounder"
	RoleWicketkeeper = "Wicketkeeper"
	RoleUnknown      = "Unknown"
)

// Player is the canonical player record every source converts into.
// Role determines which of the batting/bowling fields are meaningful;
// absent fields stay at their zero value rather than nil.
type Player struct {
	Name             string    `json:"name"`
	Team             string    `json:"team"`
	Role             string    `json:"role"`
	BattingAvg       float64   `json:"batting_avg,omitempty"`
	StrikeRate       float64   `json:"strike_rate,omitempty"`
	BowlingAvg       float64   `json:"bowling_avg,omitempty"`
	Economy          float64   `json:"economy,omitempty"`
	RecentForm       []int     `json:"recent_form,omitempty"`
	RecentWickets    []int     `json:"recent_wickets,omitempty"`
	CurrentForm      string    `json:"current_form,omitempty"`
	FantasyPointsAvg float64   `json:"fantasy_points_avg"`
	Ownership        float64   `json:"ownership"`
	Price            float64   `json:"price"`
	MatchesPlayed    int       `json:"matches_played"`
	Source           string    `json:"source,omitempty"`
	LastUpdated      time.Time `json:"last_updated,omitempty"`
	OriginalQuery    string    `json:"original_query,omitempty"`
}

// IsBatter reports whether the player's role accrues batting stats.
func (p *Player) IsBatter() bool {
	switch p.Role {
	case RoleBatsman, RoleWicketkeeper, RoleAllRounder:
		return true
	}
	return false
}

// IsBowler reports whether the player's role accrues bowling stats.
func (p *Player) IsBowler() bool {
	switch p.Role {
	case RoleBowler, RoleAllRounder:
		return true
	}
	return false
}

// FormAverage returns the mean of the recent-form run totals, 0 if empty.
func (p *Player) FormAverage() float64 {
	if len(p.RecentForm) == 0 {
		return 0
	}
	sum := 0
	for _, runs := range p.RecentForm {
		sum += runs
	}
	return float64(sum) / float64(len(p.RecentForm))
}

// FormLabel buckets the recent-form average into a readable label.
// CurrentForm from a fresher source wins when present.
func (p *Player) FormLabel() string {
	if p.CurrentForm != "" {
		return p.CurrentForm
	}
	if len(p.RecentForm) == 0 {
		return "unknown"
	}
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

// Performance is a single innings line used for player history.
type Performance struct {
	Date    string `json:"date"`
	Runs    int    `json:"runs"`
	Balls   int    `json:"balls,omitempty"`
	Wickets int    `json:"wickets,omitempty"`
	Match   string `json:"match"`
}
