package models

import "time"

// Match statuses. A match carries exactly one at a time.
const (
	StatusLive      = "Live"
	StatusUpcoming  = "Upcoming"
	StatusCompleted = "Completed"
)

// Match formats.
const (
	FormatT20  = "T20"
	FormatODI  = "ODI"
	FormatTest = "Test"
)

// Match is the canonical match record every source converts into.
type Match struct {
	ID              string          `json:"id,omitempty"`
	Teams           string          `json:"teams"` // "A vs B"
	Venue           string          `json:"venue"`
	Date            string          `json:"date"`
	MatchType       string          `json:"match_type"`
	Status          string          `json:"status"`
	Score           string          `json:"score,omitempty"`
	PitchConditions PitchConditions `json:"pitch_conditions"`
	Source          string          `json:"source,omitempty"`
	LastUpdated     time.Time       `json:"last_updated,omitempty"`
}

// PitchConditions scores a venue's friendliness to batting, pace and spin
// on a 0-10 scale. When no real data exists the aggregator synthesizes
// values rather than omitting the struct.
type PitchConditions struct {
	BattingFriendly int `json:"batting_friendly"`
	PaceFriendly    int `json:"pace_friendly"`
	SpinFriendly    int `json:"spin_friendly"`
}

// Valid reports whether every score is inside the 0-10 scale and at least
// one is non-zero.
func (pc PitchConditions) Valid() bool {
	for _, v := range []int{pc.BattingFriendly, pc.PaceFriendly, pc.SpinFriendly} {
		if v < 0 || v > 10 {
			return false
		}
	}
	return pc.BattingFriendly+pc.PaceFriendly+pc.SpinFriendly > 0
}
