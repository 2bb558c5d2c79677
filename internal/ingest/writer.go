package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"newsagg/internal/models"
	"newsagg/internal/providers"
	"newsagg/internal/storage"
)

// MaxRecords is the number of records kept from one provider response
const MaxRecords = 3

// Writer stores normalized provider records as articles
type Writer struct {
	storage  storage.Storage
	registry *providers.Registry
	limit    int
	now      func() time.Time
}

func NewWriter(store storage.Storage, registry *providers.Registry, limit int) *Writer {
	if limit <= 0 || limit > MaxRecords {
		limit = MaxRecords
	}
	return &Writer{
		storage:  store,
		registry: registry,
		limit:    limit,
		now:      func() time.Time { return time.Now().UTC().Truncate(time.Second) },
	}
}

// Ingest writes up to the record limit for sourceName in one transaction and
// returns the number of rows created. A source without a stored row or a
// provider adapter yields models.ErrNotFound and writes nothing. Records that
// cannot be normalized are skipped.
func (w *Writer) Ingest(ctx context.Context, raw []json.RawMessage, sourceName string) (int, error) {
	if len(raw) > w.limit {
		raw = raw[:w.limit]
	}

	created := 0
	err := w.storage.WithTx(ctx, func(tx storage.Tx) error {
		source, err := tx.GetSourceByName(ctx, sourceName)
		if err != nil {
			return err
		}

		adapter, ok := w.registry.Adapter(source.Name)
		if !ok {
			return fmt.Errorf("no adapter for source %q: %w", source.Name, models.ErrNotFound)
		}

		now := w.now()
		for i, record := range raw {
			canonical, err := adapter.NormalizeArticle(record, now)
			if err != nil {
				log.Printf("Skipping %s record %d: %v", sourceName, i, err)
				continue
			}

			categoryID, err := pickCategory(ctx, tx)
			if err != nil {
				return err
			}

			article := &models.Article{
				Title:       canonical.Title,
				Description: canonical.Description,
				Content:     canonical.Content,
				Author:      canonical.Author,
				PublishedAt: canonical.PublishedAt,
				CategoryID:  categoryID,
				SourceID:    source.ID,
				CreatedAt:   now,
			}
			if err := tx.InsertArticle(ctx, article); err != nil {
				return err
			}
			created++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	return created, nil
}

// pickCategory returns a random existing category, creating the default one when none exist
func pickCategory(ctx context.Context, tx storage.Tx) (int64, error) {
	id, ok, err := tx.RandomCategoryID(ctx)
	if err != nil {
		return 0, err
	}
	if ok {
		return id, nil
	}

	category, err := tx.FirstOrCreateCategory(ctx, models.DefaultCategoryName)
	if err != nil {
		return 0, err
	}
	return category.ID, nil
}
