package storage

import (
	"context"
	"errors"
	"time"

	"newsagg/internal/models"
	"newsagg/internal/query"
)

// ErrDuplicate is returned when a unique constraint rejects a write
var ErrDuplicate = errors.New("duplicate record")

// Storage defines the interface for the relational store
type Storage interface {
	// Articles
	GetArticle(ctx context.Context, id int64) (*models.Article, error)
	ListArticles(ctx context.Context, filter query.Filter, page models.PageRequest) (*models.ArticlePage, error)

	// Source and category catalog
	CreateSource(ctx context.Context, name string) (*models.Source, error)
	GetSourceByName(ctx context.Context, name string) (*models.Source, error)
	ListSources(ctx context.Context) ([]models.Source, error)
	SourceExists(ctx context.Context, id int64) (bool, error)
	ListCategories(ctx context.Context) ([]models.Category, error)
	CategoryExists(ctx context.Context, id int64) (bool, error)
	FirstOrCreateCategory(ctx context.Context, name string) (*models.Category, error)

	// WithTx runs fn inside one transaction, committing when fn returns nil
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Users, tokens and preferences
	CreateUser(ctx context.Context, name, email, passwordHash string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
	CreateAccessToken(ctx context.Context, token *models.AccessToken) error
	GetAccessToken(ctx context.Context, id string) (*models.AccessToken, error)
	DeleteAccessToken(ctx context.Context, id string) error
	GetPreference(ctx context.Context, userID int64) (*models.Preference, error)
	UpsertPreference(ctx context.Context, pref *models.Preference) (*models.Preference, error)

	// Maintenance
	CleanupOldArticles(retention time.Duration) error
	OptimizeDatabase() error
	GetDatabaseStats() (map[string]interface{}, error)
	Ping(ctx context.Context) error
	Close() error
}

// Tx is the subset of storage operations available to the ingestion writer
// inside a transaction
type Tx interface {
	GetSourceByName(ctx context.Context, name string) (*models.Source, error)
	RandomCategoryID(ctx context.Context) (int64, bool, error)
	FirstOrCreateCategory(ctx context.Context, name string) (*models.Category, error)
	InsertArticle(ctx context.Context, article *models.Article) error
}
