package store

import (
	"database/sql"
	"time"
)

// User is an account row.
type User struct {
	ID           int          `json:"id" db:"id"`
	Username     string       `json:"username" db:"username"`
	Email        string       `json:"email" db:"email"`
	PasswordHash string       `json:"-" db:"password_hash"`
	CreatedAt    time.Time    `json:"created_at" db:"created_at"`
	LastLogin    sql.NullTime `json:"last_login,omitempty" db:"last_login"`
	IsActive     bool         `json:"is_active" db:"is_active"`
}

// UserPreference holds per-user assistant settings.
type UserPreference struct {
	ID                  int       `json:"id" db:"id"`
	UserID              int       `json:"user_id" db:"user_id"`
	Theme               string    `json:"theme" db:"theme"`
	UseAI               bool      `json:"use_ai" db:"use_ai"`
	PreferredAIModel    string    `json:"preferred_ai_model" db:"preferred_ai_model"`
	NotificationEnabled bool      `json:"notification_enabled" db:"notification_enabled"`
	CreatedAt           time.Time `json:"created_at" db:"created_at"`
	UpdatedAt           time.Time `json:"updated_at" db:"updated_at"`
}

// ChatHistory is one exchange in a user's conversation.
type ChatHistory struct {
	ID                int       `json:"id" db:"id"`
	UserID            int       `json:"user_id" db:"user_id"`
	Timestamp         time.Time `json:"timestamp" db:"timestamp"`
	UserMessage       string    `json:"user_message" db:"user_message"`
	AssistantResponse string    `json:"assistant_response" db:"assistant_response"`
	AIModelUsed       string    `json:"ai_model_used" db:"ai_model_used"`
}

// Player is a persisted snapshot of a fused player record. The live
// truth lives in the cache; this table backs history and offline reads.
type Player struct {
	ID               int            `json:"id" db:"id"`
	Name             string         `json:"name" db:"name"`
	Team             sql.NullString `json:"team,omitempty" db:"team"`
	Role             sql.NullString `json:"role,omitempty" db:"role"`
	BattingAvg       float64        `json:"batting_avg" db:"batting_avg"`
	BowlingAvg       float64        `json:"bowling_avg" db:"bowling_avg"`
	StrikeRate       float64        `json:"strike_rate" db:"strike_rate"`
	Economy          float64        `json:"economy" db:"economy"`
	RecentForm       string         `json:"recent_form" db:"recent_form"`
	RecentWickets    string         `json:"recent_wickets" db:"recent_wickets"`
	FantasyPointsAvg float64        `json:"fantasy_points_avg" db:"fantasy_points_avg"`
	Ownership        float64        `json:"ownership" db:"ownership"`
	Price            float64        `json:"price" db:"price"`
	MatchesPlayed    int            `json:"matches_played" db:"matches_played"`
	Source           sql.NullString `json:"source,omitempty" db:"source"`
	CreatedAt        time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at" db:"updated_at"`
}

// Match is a persisted snapshot of a match record.
type Match struct {
	ID         int            `json:"id" db:"id"`
	ExternalID sql.NullString `json:"external_id,omitempty" db:"external_id"`
	Teams      string         `json:"teams" db:"teams"`
	Venue      sql.NullString `json:"venue,omitempty" db:"venue"`
	MatchDate  sql.NullString `json:"match_date,omitempty" db:"match_date"`
	MatchType  sql.NullString `json:"match_type,omitempty" db:"match_type"`
	Status     string         `json:"status" db:"status"`
	Score      sql.NullString `json:"score,omitempty" db:"score"`
	Source     sql.NullString `json:"source,omitempty" db:"source"`
	CreatedAt  time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at" db:"updated_at"`
}

// PlayerPerformance is one innings-level line for a player in a match,
// aggregated from the ball-by-ball archive.
type PlayerPerformance struct {
	ID        int            `json:"id" db:"id"`
	PlayerID  int            `json:"player_id" db:"player_id"`
	MatchID   sql.NullInt32  `json:"match_id,omitempty" db:"match_id"`
	MatchRef  sql.NullString `json:"match_ref,omitempty" db:"match_ref"`
	Runs      int            `json:"runs" db:"runs"`
	Balls     int            `json:"balls" db:"balls"`
	Wickets   int            `json:"wickets" db:"wickets"`
	Conceded  int            `json:"conceded" db:"conceded"`
	Overs     float64        `json:"overs" db:"overs"`
	CreatedAt time.Time      `json:"created_at" db:"created_at"`
}
