package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"newsagg/internal/models"

	"github.com/mattn/go-sqlite3"
)

// queryer is satisfied by both *sql.DB and *sql.Tx
type queryer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// driverName is go-sqlite3 with lower() replaced by a Unicode-aware version,
// so keyword search folds case beyond ASCII
const driverName = "sqlite3_newsagg"

func init() {
	sql.Register(driverName, &sqlite3.SQLiteDriver{
		ConnectHook: func(conn *sqlite3.SQLiteConn) error {
			return conn.RegisterFunc("lower", strings.ToLower, true)
		},
	})
}

type SQLiteStorage struct {
	db    *sql.DB
	mutex sync.RWMutex
	now   func() time.Time
}

func NewSQLiteStorage(dataDir string) (*SQLiteStorage, error) {
	// Ensure data directory exists with secure permissions (0750)
	if err := os.MkdirAll(dataDir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "newsagg.db")
	log.Printf("Initializing database at: %s", dbPath)

	db, err := sql.Open(driverName, dbPath+"?_journal_mode=WAL&_synchronous=NORMAL&_foreign_keys=on&_busy_timeout=30000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer at a time
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	version, dirty, err := runMigrations(db)
	if err != nil {
		db.Close()
		return nil, err
	}
	if dirty {
		log.Printf("Warning: database schema version %d is dirty", version)
	} else {
		log.Printf("Database schema at version %d", version)
	}

	return &SQLiteStorage{
		db:  db,
		now: utcNow,
	}, nil
}

// utcNow truncates to seconds so stored timestamps share one text format
func utcNow() time.Time {
	return time.Now().UTC().Truncate(time.Second)
}

// WithTx runs fn in a transaction; any error from fn rolls it back
func (s *SQLiteStorage) WithTx(ctx context.Context, fn func(tx Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	// Track if transaction was committed
	committed := false
	defer func() {
		if !committed {
			if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
				log.Printf("Warning: failed to rollback transaction: %v", err)
			}
		}
	}()

	if err := fn(&sqliteTx{q: tx, now: s.now}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	committed = true
	return nil
}

// sqliteTx exposes ingestion operations bound to one transaction
type sqliteTx struct {
	q   queryer
	now func() time.Time
}

func (t *sqliteTx) GetSourceByName(ctx context.Context, name string) (*models.Source, error) {
	return getSourceByName(ctx, t.q, name)
}

func (t *sqliteTx) RandomCategoryID(ctx context.Context) (int64, bool, error) {
	var id int64
	err := t.q.QueryRowContext(ctx, "SELECT id FROM categories ORDER BY RANDOM() LIMIT 1").Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("failed to pick random category: %w", err)
	}
	return id, true, nil
}

func (t *sqliteTx) FirstOrCreateCategory(ctx context.Context, name string) (*models.Category, error) {
	return firstOrCreateCategory(ctx, t.q, name, t.now())
}

func (t *sqliteTx) InsertArticle(ctx context.Context, article *models.Article) error {
	return insertArticle(ctx, t.q, article, t.now())
}

// CleanupOldArticles removes articles published before the retention period
func (s *SQLiteStorage) CleanupOldArticles(retentionPeriod time.Duration) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	cutoffTime := s.now().Add(-retentionPeriod)

	result, err := s.db.Exec("DELETE FROM articles WHERE published_at < ?", cutoffTime)
	if err != nil {
		return fmt.Errorf("failed to delete old articles: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected > 0 {
		log.Printf("Cleaned up %d old articles (older than %v)", rowsAffected, retentionPeriod)
	}

	return nil
}

// OptimizeDatabase performs database maintenance operations
func (s *SQLiteStorage) OptimizeDatabase() error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	// VACUUM to reclaim space and optimize storage
	if _, err := s.db.Exec("VACUUM"); err != nil {
		return fmt.Errorf("failed to vacuum database: %w", err)
	}

	// ANALYZE to update statistics for query optimization
	if _, err := s.db.Exec("ANALYZE"); err != nil {
		return fmt.Errorf("failed to analyze database: %w", err)
	}

	log.Printf("Database optimization completed")
	return nil
}

// GetDatabaseStats returns database statistics
func (s *SQLiteStorage) GetDatabaseStats() (map[string]interface{}, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	stats := make(map[string]interface{})

	counts := []struct {
		key   string
		table string
	}{
		{"total_articles", "articles"},
		{"total_sources", "sources"},
		{"total_categories", "categories"},
		{"total_users", "users"},
		{"total_preferences", "user_preferences"},
	}
	for _, c := range counts {
		var n int
		if err := s.db.QueryRow("SELECT COUNT(*) FROM " + c.table).Scan(&n); err != nil {
			return nil, fmt.Errorf("failed to count %s: %w", c.table, err)
		}
		stats[c.key] = n
	}

	// Get database file size
	var dbSize int64
	err := s.db.QueryRow("SELECT page_count * page_size as size FROM pragma_page_count(), pragma_page_size()").Scan(&dbSize)
	if err != nil {
		return nil, fmt.Errorf("failed to get database size: %w", err)
	}
	stats["database_size_bytes"] = dbSize

	// Get articles by source
	rows, err := s.db.Query(`
		SELECT s.name, COUNT(a.id) as count
		FROM sources s
		LEFT JOIN articles a ON s.id = a.source_id
		GROUP BY s.id, s.name
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to get articles by source: %w", err)
	}
	defer rows.Close()

	articlesBySource := make(map[string]int)
	for rows.Next() {
		var sourceName string
		var count int
		if err := rows.Scan(&sourceName, &count); err != nil {
			return nil, fmt.Errorf("failed to scan source count: %w", err)
		}
		articlesBySource[sourceName] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read source counts: %w", err)
	}
	stats["articles_by_source"] = articlesBySource

	return stats, nil
}

func (s *SQLiteStorage) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// isUniqueViolation reports whether err comes from a UNIQUE constraint
func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
	}
	return false
}
