// Package repository holds the SQL data-access types for the store.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/fortuna/willow/internal/store"
)

// ErrNotFound is returned when a row does not exist.
var ErrNotFound = errors.New("not found")

// UserRepository handles account rows.
type UserRepository struct {
	db *store.Database
}

// NewUserRepository creates a new user repository.
func NewUserRepository(db *store.Database) *UserRepository {
	return &UserRepository{db: db}
}

// Create inserts a new user and returns the stored row.
func (r *UserRepository) Create(ctx context.Context, username, email, passwordHash string) (*store.User, error) {
	query := `
		INSERT INTO users (username, email, password_hash)
		VALUES ($1, $2, $3)
		RETURNING id, username, email, password_hash, created_at, last_login, is_active
	`

	user := &store.User{}
	err := r.db.DB().QueryRowContext(ctx, query, username, email, passwordHash).Scan(
		&user.ID, &user.Username, &user.Email, &user.PasswordHash,
		&user.CreatedAt, &user.LastLogin, &user.IsActive,
	)
	if err != nil {
		return nil, fmt.Errorf("creating user: %w", err)
	}
	return user, nil
}

// GetByUsername finds a user by username.
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*store.User, error) {
	query := `
		SELECT id, username, email, password_hash, created_at, last_login, is_active
		FROM users
		WHERE username = $1
	`

	user := &store.User{}
	err := r.db.DB().QueryRowContext(ctx, query, username).Scan(
		&user.ID, &user.Username, &user.Email, &user.PasswordHash,
		&user.CreatedAt, &user.LastLogin, &user.IsActive,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying user: %w", err)
	}
	return user, nil
}

// GetByID finds a user by id.
func (r *UserRepository) GetByID(ctx context.Context, id int) (*store.User, error) {
	query := `
		SELECT id, username, email, password_hash, created_at, last_login, is_active
		FROM users
		WHERE id = $1
	`

	user := &store.User{}
	err := r.db.DB().QueryRowContext(ctx, query, id).Scan(
		&user.ID, &user.Username, &user.Email, &user.PasswordHash,
		&user.CreatedAt, &user.LastLogin, &user.IsActive,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying user: %w", err)
	}
	return user, nil
}

// TouchLastLogin records a successful login.
func (r *UserRepository) TouchLastLogin(ctx context.Context, id int) error {
	_, err := r.db.DB().ExecContext(ctx, `UPDATE users SET last_login = NOW() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("updating last login: %w", err)
	}
	return nil
}

// GetPreferences returns a user's preferences, creating defaults on
// first read.
func (r *UserRepository) GetPreferences(ctx context.Context, userID int) (*store.UserPreference, error) {
	query := `
		SELECT id, user_id, theme, use_ai, preferred_ai_model, notification_enabled, created_at, updated_at
		FROM user_preferences
		WHERE user_id = $1
	`

	pref := &store.UserPreference{}
	err := r.db.DB().QueryRowContext(ctx, query, userID).Scan(
		&pref.ID, &pref.UserID, &pref.Theme, &pref.UseAI,
		&pref.PreferredAIModel, &pref.NotificationEnabled,
		&pref.CreatedAt, &pref.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return r.createDefaultPreferences(ctx, userID)
	}
	if err != nil {
		return nil, fmt.Errorf("querying preferences: %w", err)
	}
	return pref, nil
}

// UpdatePreferences writes the mutable preference fields.
func (r *UserRepository) UpdatePreferences(ctx context.Context, pref *store.UserPreference) error {
	query := `
		UPDATE user_preferences
		SET theme = $2, use_ai = $3, preferred_ai_model = $4, notification_enabled = $5, updated_at = NOW()
		WHERE user_id = $1
	`
	_, err := r.db.DB().ExecContext(ctx, query,
		pref.UserID, pref.Theme, pref.UseAI, pref.PreferredAIModel, pref.NotificationEnabled)
	if err != nil {
		return fmt.Errorf("updating preferences: %w", err)
	}
	return nil
}

func (r *UserRepository) createDefaultPreferences(ctx context.Context, userID int) (*store.UserPreference, error) {
	query := `
		INSERT INTO user_preferences (user_id)
		VALUES ($1)
		RETURNING id, user_id, theme, use_ai, preferred_ai_model, notification_enabled, created_at, updated_at
	`

	pref := &store.UserPreference{}
	err := r.db.DB().QueryRowContext(ctx, query, userID).Scan(
		&pref.ID, &pref.UserID, &pref.Theme, &pref.UseAI,
		&pref.PreferredAIModel, &pref.NotificationEnabled,
		&pref.CreatedAt, &pref.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("creating default preferences: %w", err)
	}
	return pref, nil
}
