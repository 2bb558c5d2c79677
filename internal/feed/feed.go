package feed

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sort"
	"strconv"
	"strings"
	"time"

	"newsagg/internal/models"
	"newsagg/internal/query"
)

// DefaultTTL is how long a rendered feed page stays cached
const DefaultTTL = 60 * time.Second

// Store is the part of storage the feed engine reads from
type Store interface {
	GetPreference(ctx context.Context, userID int64) (*models.Preference, error)
	ListArticles(ctx context.Context, filter query.Filter, page models.PageRequest) (*models.ArticlePage, error)
}

// Cache holds serialized feed pages
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// Result is one personalized feed response. Body is the JSON page and is
// empty when the user has no stored preference.
type Result struct {
	NoPreferences bool
	Body          []byte
	Cached        bool
}

type Engine struct {
	store Store
	cache Cache
	ttl   time.Duration
}

func NewEngine(store Store, cache Cache, ttl time.Duration) *Engine {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Engine{store: store, cache: cache, ttl: ttl}
}

// Feed returns the user's personalized page, reading through the cache.
// Cache failures are logged and the page is served from storage.
func (e *Engine) Feed(ctx context.Context, userID int64, page models.PageRequest) (*Result, error) {
	pref, err := e.store.GetPreference(ctx, userID)
	if errors.Is(err, models.ErrNotFound) {
		return &Result{NoPreferences: true}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load preferences: %w", err)
	}

	page = page.Normalize()
	key := CacheKey(userID, pref, page)

	if cached, found, err := e.cache.Get(ctx, key); err != nil {
		log.Printf("Warning: feed cache read failed for user %d: %v", userID, err)
	} else if found {
		return &Result{Body: cached, Cached: true}, nil
	}

	articles, err := e.store.ListArticles(ctx, Filter(pref), page)
	if err != nil {
		return nil, fmt.Errorf("failed to list feed articles: %w", err)
	}

	body, err := json.Marshal(articles)
	if err != nil {
		return nil, fmt.Errorf("failed to encode feed page: %w", err)
	}

	if err := e.cache.Set(ctx, key, body, e.ttl); err != nil {
		log.Printf("Warning: feed cache write failed for user %d: %v", userID, err)
	}

	return &Result{Body: body}, nil
}

// Filter restricts articles to the preference sets; an empty set restricts nothing
func Filter(pref *models.Preference) query.Filter {
	if pref.IsEmpty() {
		return query.Filter{}
	}
	return query.And(
		query.CategoryIn(pref.Categories...),
		query.SourceIn(pref.Sources...),
		query.AuthorIn(pref.Authors...),
	)
}

// CacheKey identifies a feed page by user, preference content and page position.
// Set order does not affect the key.
func CacheKey(userID int64, pref *models.Preference, page models.PageRequest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "user=%d", userID)
	b.WriteString("|categories=" + joinIDs(pref.Categories))
	b.WriteString("|sources=" + joinIDs(pref.Sources))

	authors := append([]string(nil), pref.Authors...)
	sort.Strings(authors)
	encoded, _ := json.Marshal(authors)
	b.WriteString("|authors=")
	b.Write(encoded)

	fmt.Fprintf(&b, "|page=%d|per_page=%d", page.Page, page.PerPage)

	sum := sha256.Sum256([]byte(b.String()))
	return "personalized_feed:" + hex.EncodeToString(sum[:])
}

func joinIDs(ids []int64) string {
	sorted := append([]int64(nil), ids...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	parts := make([]string, len(sorted))
	for i, id := range sorted {
		parts[i] = strconv.FormatInt(id, 10)
	}
	return strings.Join(parts, ",")
}
