package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/fortuna/willow/internal/models"
	"github.com/fortuna/willow/internal/store"
)

// MatchRepository handles persisted match snapshots.
type MatchRepository struct {
	db *store.Database
}

// NewMatchRepository creates a new match repository.
func NewMatchRepository(db *store.Database) *MatchRepository {
	return &MatchRepository{db: db}
}

// Upsert writes a match snapshot keyed by external id. Matches without
// an external id are inserted fresh each time.
func (r *MatchRepository) Upsert(ctx context.Context, m *models.Match) (*store.Match, error) {
	if m.ID == "" {
		return r.insert(ctx, m)
	}

	query := `
		INSERT INTO matches (external_id, teams, venue, match_date, match_type, status, score, source)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (external_id) DO UPDATE SET
			teams = EXCLUDED.teams,
			venue = EXCLUDED.venue,
			match_date = EXCLUDED.match_date,
			match_type = EXCLUDED.match_type,
			status = EXCLUDED.status,
			score = EXCLUDED.score,
			source = EXCLUDED.source,
			updated_at = NOW()
		RETURNING id, external_id, teams, venue, match_date, match_type, status, score, source, created_at, updated_at
	`

	row := &store.Match{}
	err := r.db.DB().QueryRowContext(ctx, query,
		m.ID, m.Teams, m.Venue, m.Date, m.MatchType, m.Status, m.Score, m.Source,
	).Scan(
		&row.ID, &row.ExternalID, &row.Teams, &row.Venue, &row.MatchDate,
		&row.MatchType, &row.Status, &row.Score, &row.Source,
		&row.CreatedAt, &row.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("upserting match: %w", err)
	}
	return row, nil
}

func (r *MatchRepository) insert(ctx context.Context, m *models.Match) (*store.Match, error) {
	query := `
		INSERT INTO matches (teams, venue, match_date, match_type, status, score, source)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, external_id, teams, venue, match_date, match_type, status, score, source, created_at, updated_at
	`

	row := &store.Match{}
	err := r.db.DB().QueryRowContext(ctx, query,
		m.Teams, m.Venue, m.Date, m.MatchType, m.Status, m.Score, m.Source,
	).Scan(
		&row.ID, &row.ExternalID, &row.Teams, &row.Venue, &row.MatchDate,
		&row.MatchType, &row.Status, &row.Score, &row.Source,
		&row.CreatedAt, &row.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("inserting match: %w", err)
	}
	return row, nil
}

// GetByExternalID finds a snapshot by its upstream id.
func (r *MatchRepository) GetByExternalID(ctx context.Context, externalID string) (*store.Match, error) {
	query := `
		SELECT id, external_id, teams, venue, match_date, match_type, status, score, source, created_at, updated_at
		FROM matches
		WHERE external_id = $1
	`

	row := &store.Match{}
	err := r.db.DB().QueryRowContext(ctx, query, externalID).Scan(
		&row.ID, &row.ExternalID, &row.Teams, &row.Venue, &row.MatchDate,
		&row.MatchType, &row.Status, &row.Score, &row.Source,
		&row.CreatedAt, &row.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying match: %w", err)
	}
	return row, nil
}

// GetByStatus lists snapshots in a given status, most recently updated
// first.
func (r *MatchRepository) GetByStatus(ctx context.Context, status string, limit int) ([]*store.Match, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	query := `
		SELECT id, external_id, teams, venue, match_date, match_type, status, score, source, created_at, updated_at
		FROM matches
		WHERE status = $1
		ORDER BY updated_at DESC
		LIMIT $2
	`

	rows, err := r.db.DB().QueryContext(ctx, query, status, limit)
	if err != nil {
		return nil, fmt.Errorf("querying matches: %w", err)
	}
	defer rows.Close()

	var matches []*store.Match
	for rows.Next() {
		row := &store.Match{}
		if err := rows.Scan(
			&row.ID, &row.ExternalID, &row.Teams, &row.Venue, &row.MatchDate,
			&row.MatchType, &row.Status, &row.Score, &row.Source,
			&row.CreatedAt, &row.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning match row: %w", err)
		}
		matches = append(matches, row)
	}
	return matches, rows.Err()
}
