package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/fortuna/willow/internal/models"
	"github.com/fortuna/willow/internal/store"
)

// PlayerRepository handles persisted player snapshots.
type PlayerRepository struct {
	db *store.Database
}

// NewPlayerRepository creates a new player repository.
func NewPlayerRepository(db *store.Database) *PlayerRepository {
	return &PlayerRepository{db: db}
}

// Upsert writes a fused player record keyed by name. Form series are
// stored as JSON arrays.
func (r *PlayerRepository) Upsert(ctx context.Context, p *models.Player) (*store.Player, error) {
	recentForm, err := json.Marshal(p.RecentForm)
	if err != nil {
		return nil, fmt.Errorf("encoding recent form: %w", err)
	}
	recentWickets, err := json.Marshal(p.RecentWickets)
	if err != nil {
		return nil, fmt.Errorf("encoding recent wickets: %w", err)
	}

	query := `
		INSERT INTO players (
			name, team, role, batting_avg, bowling_avg, strike_rate, economy,
			recent_form, recent_wickets, fantasy_points_avg, ownership, price,
			matches_played, source
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		ON CONFLICT (name) DO UPDATE SET
			team = EXCLUDED.team,
			role = EXCLUDED.role,
			batting_avg = EXCLUDED.batting_avg,
			bowling_avg = EXCLUDED.bowling_avg,
			strike_rate = EXCLUDED.strike_rate,
			economy = EXCLUDED.economy,
			recent_form = EXCLUDED.recent_form,
			recent_wickets = EXCLUDED.recent_wickets,
			fantasy_points_avg = EXCLUDED.fantasy_points_avg,
			ownership = EXCLUDED.ownership,
			price = EXCLUDED.price,
			matches_played = EXCLUDED.matches_played,
			source = EXCLUDED.source,
			updated_at = NOW()
		RETURNING id, name, team, role, batting_avg, bowling_avg, strike_rate, economy,
			recent_form, recent_wickets, fantasy_points_avg, ownership, price,
			matches_played, source, created_at, updated_at
	`

	row := &store.Player{}
	err = r.db.DB().QueryRowContext(ctx, query,
		p.Name, p.Team, p.Role, p.BattingAvg, p.BowlingAvg, p.StrikeRate, p.Economy,
		string(recentForm), string(recentWickets), p.FantasyPointsAvg, p.Ownership, p.Price,
		p.MatchesPlayed, p.Source,
	).Scan(
		&row.ID, &row.Name, &row.Team, &row.Role, &row.BattingAvg, &row.BowlingAvg,
		&row.StrikeRate, &row.Economy, &row.RecentForm, &row.RecentWickets,
		&row.FantasyPointsAvg, &row.Ownership, &row.Price, &row.MatchesPlayed,
		&row.Source, &row.CreatedAt, &row.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("upserting player: %w", err)
	}
	return row, nil
}

// GetByName finds a snapshot by name (case-insensitive).
func (r *PlayerRepository) GetByName(ctx context.Context, name string) (*store.Player, error) {
	query := `
		SELECT id, name, team, role, batting_avg, bowling_avg, strike_rate, economy,
			recent_form, recent_wickets, fantasy_points_avg, ownership, price,
			matches_played, source, created_at, updated_at
		FROM players
		WHERE LOWER(name) = LOWER($1)
	`

	row := &store.Player{}
	err := r.db.DB().QueryRowContext(ctx, query, name).Scan(
		&row.ID, &row.Name, &row.Team, &row.Role, &row.BattingAvg, &row.BowlingAvg,
		&row.StrikeRate, &row.Economy, &row.RecentForm, &row.RecentWickets,
		&row.FantasyPointsAvg, &row.Ownership, &row.Price, &row.MatchesPlayed,
		&row.Source, &row.CreatedAt, &row.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying player: %w", err)
	}
	return row, nil
}

// GetByRole lists snapshots filtered by role, best fantasy average
// first.
func (r *PlayerRepository) GetByRole(ctx context.Context, role string, limit int) ([]*store.Player, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	query := `
		SELECT id, name, team, role, batting_avg, bowling_avg, strike_rate, economy,
			recent_form, recent_wickets, fantasy_points_avg, ownership, price,
			matches_played, source, created_at, updated_at
		FROM players
		WHERE role = $1
		ORDER BY fantasy_points_avg DESC
		LIMIT $2
	`

	rows, err := r.db.DB().QueryContext(ctx, query, role, limit)
	if err != nil {
		return nil, fmt.Errorf("querying players: %w", err)
	}
	defer rows.Close()

	return r.scanPlayers(rows)
}

func (r *PlayerRepository) scanPlayers(rows *sql.Rows) ([]*store.Player, error) {
	var players []*store.Player
	for rows.Next() {
		row := &store.Player{}
		if err := rows.Scan(
			&row.ID, &row.Name, &row.Team, &row.Role, &row.BattingAvg, &row.BowlingAvg,
			&row.StrikeRate, &row.Economy, &row.RecentForm, &row.RecentWickets,
			&row.FantasyPointsAvg, &row.Ownership, &row.Price, &row.MatchesPlayed,
			&row.Source, &row.CreatedAt, &row.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning player row: %w", err)
		}
		players = append(players, row)
	}
	return players, rows.Err()
}
