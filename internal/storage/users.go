package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"newsagg/internal/models"
)

func (s *SQLiteStorage) CreateUser(ctx context.Context, name, email, passwordHash string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	now := s.now()

	result, err := s.db.ExecContext(ctx,
		"INSERT INTO users (name, email, password, created_at, updated_at) VALUES (?, ?, ?, ?, ?)",
		name, email, passwordHash, now, now)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("user %q: %w", email, ErrDuplicate)
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get user ID: %w", err)
	}

	return &models.User{
		ID:           id,
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

func (s *SQLiteStorage) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.getUser(ctx, "email = ?", strings.ToLower(strings.TrimSpace(email)))
}

func (s *SQLiteStorage) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	return s.getUser(ctx, "id = ?", id)
}

func (s *SQLiteStorage) getUser(ctx context.Context, where string, arg interface{}) (*models.User, error) {
	var u models.User
	err := s.db.QueryRowContext(ctx,
		"SELECT id, name, email, password, created_at, updated_at FROM users WHERE "+where, arg).
		Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("user: %w", models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	return &u, nil
}

func (s *SQLiteStorage) CreateAccessToken(ctx context.Context, token *models.AccessToken) error {
	if token.CreatedAt.IsZero() {
		token.CreatedAt = s.now()
	}
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO access_tokens (id, user_id, expires_at, created_at) VALUES (?, ?, ?, ?)",
		token.ID, token.UserID, token.ExpiresAt.UTC().Truncate(time.Second), token.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to store access token: %w", err)
	}
	return nil
}

func (s *SQLiteStorage) GetAccessToken(ctx context.Context, id string) (*models.AccessToken, error) {
	var t models.AccessToken
	err := s.db.QueryRowContext(ctx,
		"SELECT id, user_id, expires_at, created_at FROM access_tokens WHERE id = ?", id).
		Scan(&t.ID, &t.UserID, &t.ExpiresAt, &t.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("access token: %w", models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load access token: %w", err)
	}
	return &t, nil
}

func (s *SQLiteStorage) DeleteAccessToken(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM access_tokens WHERE id = ?", id); err != nil {
		return fmt.Errorf("failed to delete access token: %w", err)
	}
	return nil
}

// GetPreference returns the user's preference, or ErrNotFound if none was stored
func (s *SQLiteStorage) GetPreference(ctx context.Context, userID int64) (*models.Preference, error) {
	var (
		p                           models.Preference
		categories, sources, authors string
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, categories, sources, authors, created_at, updated_at
		FROM user_preferences WHERE user_id = ?
	`, userID).Scan(&p.ID, &p.UserID, &categories, &sources, &authors, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("preference for user %d: %w", userID, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load preference: %w", err)
	}

	if err := json.Unmarshal([]byte(categories), &p.Categories); err != nil {
		return nil, fmt.Errorf("failed to decode preference categories: %w", err)
	}
	if err := json.Unmarshal([]byte(sources), &p.Sources); err != nil {
		return nil, fmt.Errorf("failed to decode preference sources: %w", err)
	}
	if err := json.Unmarshal([]byte(authors), &p.Authors); err != nil {
		return nil, fmt.Errorf("failed to decode preference authors: %w", err)
	}

	return &p, nil
}

// UpsertPreference creates the user's single preference row or replaces it in place
func (s *SQLiteStorage) UpsertPreference(ctx context.Context, pref *models.Preference) (*models.Preference, error) {
	categories, err := marshalList(pref.Categories)
	if err != nil {
		return nil, err
	}
	sources, err := marshalList(pref.Sources)
	if err != nil {
		return nil, err
	}
	authors, err := marshalList(pref.Authors)
	if err != nil {
		return nil, err
	}

	now := s.now()
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO user_preferences (user_id, categories, sources, authors, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			categories = excluded.categories,
			sources = excluded.sources,
			authors = excluded.authors,
			updated_at = excluded.updated_at
	`, pref.UserID, categories, sources, authors, now, now)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert preference: %w", err)
	}

	return s.GetPreference(ctx, pref.UserID)
}

// marshalList encodes a slice as a JSON array, never as null
func marshalList[T any](items []T) (string, error) {
	if items == nil {
		items = []T{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return "", fmt.Errorf("failed to encode preference list: %w", err)
	}
	return string(data), nil
}
