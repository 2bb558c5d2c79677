package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"newsagg/internal/models"
	"newsagg/internal/query"
)

const articleColumns = "id, title, description, content, author, published_at, category_id, source_id, created_at, updated_at"

func scanArticle(scanner interface{ Scan(...interface{}) error }) (models.Article, error) {
	var a models.Article
	err := scanner.Scan(&a.ID, &a.Title, &a.Description, &a.Content, &a.Author,
		&a.PublishedAt, &a.CategoryID, &a.SourceID, &a.CreatedAt, &a.UpdatedAt)
	return a, err
}

func (s *SQLiteStorage) GetArticle(ctx context.Context, id int64) (*models.Article, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+articleColumns+" FROM articles WHERE id = ?", id)

	article, err := scanArticle(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("article %d: %w", id, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load article: %w", err)
	}
	return &article, nil
}

// ListArticles returns one page of articles matching filter, in id order
func (s *SQLiteStorage) ListArticles(ctx context.Context, filter query.Filter, page models.PageRequest) (*models.ArticlePage, error) {
	page = page.Normalize()
	where, args := filter.Where()

	var total int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM articles "+where, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("failed to count articles: %w", err)
	}

	pageArgs := append(append([]interface{}{}, args...), page.PerPage, page.Offset())
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+articleColumns+" FROM articles "+where+" ORDER BY id LIMIT ? OFFSET ?", pageArgs...)
	if err != nil {
		return nil, fmt.Errorf("failed to query articles: %w", err)
	}
	defer rows.Close()

	var articles []models.Article
	for rows.Next() {
		article, err := scanArticle(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan article: %w", err)
		}
		articles = append(articles, article)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read articles: %w", err)
	}

	return models.NewArticlePage(page, articles, total), nil
}

// insertArticle stores a new row; a zero CreatedAt is set to now
func insertArticle(ctx context.Context, q queryer, article *models.Article, now time.Time) error {
	if article.CreatedAt.IsZero() {
		article.CreatedAt = now
	}
	article.CreatedAt = article.CreatedAt.UTC().Truncate(time.Second)
	article.UpdatedAt = article.CreatedAt
	article.PublishedAt = article.PublishedAt.UTC().Truncate(time.Second)

	result, err := q.ExecContext(ctx, `
		INSERT INTO articles (title, description, content, author, published_at, category_id, source_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, article.Title, article.Description, article.Content, article.Author, article.PublishedAt,
		article.CategoryID, article.SourceID, article.CreatedAt, article.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert article: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get article ID: %w", err)
	}
	article.ID = id
	return nil
}
