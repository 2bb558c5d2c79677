package models

import (
	"time"
)

// Article represents a stored, normalized news article
type Article struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Content     string    `json:"content"`
	Author      string    `json:"author"`
	PublishedAt time.Time `json:"published_at"`
	CategoryID  int64     `json:"category_id"`
	SourceID    int64     `json:"source_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// CanonicalArticle is a provider record mapped onto the internal schema,
// before it is attached to a source and a category.
type CanonicalArticle struct {
	Title       string
	Description string
	Content     string
	Author      string
	PublishedAt time.Time
}

// Source is a curated news outlet. Ingestion never creates sources.
type Source struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Category struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DefaultCategoryName is used when no category exists yet
const DefaultCategoryName = "General"

type User struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Preference is a user's saved filter set for the personalized feed
type Preference struct {
	ID         int64     `json:"id"`
	UserID     int64     `json:"user_id"`
	Categories []int64   `json:"categories"`
	Sources    []int64   `json:"sources"`
	Authors    []string  `json:"authors"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// IsEmpty reports whether the preference restricts nothing
func (p *Preference) IsEmpty() bool {
	return len(p.Categories) == 0 && len(p.Sources) == 0 && len(p.Authors) == 0
}

// AccessToken tracks an issued bearer token so it can be revoked
type AccessToken struct {
	ID        string    `json:"id"`
	UserID    int64     `json:"user_id"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}
