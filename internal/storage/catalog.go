package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"newsagg/internal/models"
)

func (s *SQLiteStorage) CreateSource(ctx context.Context, name string) (*models.Source, error) {
	name = strings.TrimSpace(name)
	now := s.now()

	result, err := s.db.ExecContext(ctx,
		"INSERT INTO sources (name, created_at, updated_at) VALUES (?, ?, ?)", name, now, now)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("source %q: %w", name, ErrDuplicate)
		}
		return nil, fmt.Errorf("failed to create source: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get source ID: %w", err)
	}

	return &models.Source{ID: id, Name: name, CreatedAt: now, UpdatedAt: now}, nil
}

func (s *SQLiteStorage) GetSourceByName(ctx context.Context, name string) (*models.Source, error) {
	return getSourceByName(ctx, s.db, name)
}

func getSourceByName(ctx context.Context, q queryer, name string) (*models.Source, error) {
	var src models.Source
	err := q.QueryRowContext(ctx,
		"SELECT id, name, created_at, updated_at FROM sources WHERE name = ?", name).
		Scan(&src.ID, &src.Name, &src.CreatedAt, &src.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("source %q: %w", name, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load source: %w", err)
	}
	return &src, nil
}

func (s *SQLiteStorage) ListSources(ctx context.Context) ([]models.Source, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, name, created_at, updated_at FROM sources ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("failed to query sources: %w", err)
	}
	defer rows.Close()

	sources := []models.Source{}
	for rows.Next() {
		var src models.Source
		if err := rows.Scan(&src.ID, &src.Name, &src.CreatedAt, &src.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan source: %w", err)
		}
		sources = append(sources, src)
	}
	return sources, rows.Err()
}

func (s *SQLiteStorage) SourceExists(ctx context.Context, id int64) (bool, error) {
	return exists(ctx, s.db, "SELECT 1 FROM sources WHERE id = ?", id)
}

func (s *SQLiteStorage) ListCategories(ctx context.Context) ([]models.Category, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, name, created_at, updated_at FROM categories ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer rows.Close()

	categories := []models.Category{}
	for rows.Next() {
		var c models.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

func (s *SQLiteStorage) CategoryExists(ctx context.Context, id int64) (bool, error) {
	return exists(ctx, s.db, "SELECT 1 FROM categories WHERE id = ?", id)
}

func (s *SQLiteStorage) FirstOrCreateCategory(ctx context.Context, name string) (*models.Category, error) {
	return firstOrCreateCategory(ctx, s.db, name, s.now())
}

// firstOrCreateCategory returns the lowest-id category called name, creating it if needed
func firstOrCreateCategory(ctx context.Context, q queryer, name string, now time.Time) (*models.Category, error) {
	var c models.Category
	err := q.QueryRowContext(ctx,
		"SELECT id, name, created_at, updated_at FROM categories WHERE name = ? ORDER BY id LIMIT 1", name).
		Scan(&c.ID, &c.Name, &c.CreatedAt, &c.UpdatedAt)
	if err == nil {
		return &c, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("failed to load category: %w", err)
	}

	result, err := q.ExecContext(ctx,
		"INSERT INTO categories (name, created_at, updated_at) VALUES (?, ?, ?)", name, now, now)
	if err != nil {
		return nil, fmt.Errorf("failed to create category: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get category ID: %w", err)
	}

	return &models.Category{ID: id, Name: name, CreatedAt: now, UpdatedAt: now}, nil
}

func exists(ctx context.Context, q queryer, stmt string, args ...interface{}) (bool, error) {
	var one int
	err := q.QueryRowContext(ctx, stmt, args...).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check existence: %w", err)
	}
	return true, nil
}
