package providers

import (
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"newsagg/internal/config"
	"newsagg/internal/models"
)

// NewsAPI handles newsapi.org top-headlines responses
type NewsAPI struct{}

type newsAPIEnvelope struct {
	Status   string            `json:"status"`
	Articles []json.RawMessage `json:"articles"`
}

type newsAPIArticle struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Content     *string `json:"content"`
	Author      *string `json:"author"`
	PublishedAt *string `json:"publishedAt"`
}

func (NewsAPI) Kind() string { return config.KindNewsAPI }

func (NewsAPI) Query(cfg config.ProviderConfig) url.Values {
	values := baseQuery(cfg, "apiKey")
	if values.Get("pageSize") == "" {
		values.Set("pageSize", "3")
	}
	return values
}

func (NewsAPI) Records(body []byte) ([]json.RawMessage, error) {
	var env newsAPIEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("failed to decode newsapi response: %w", err)
	}
	return env.Articles, nil
}

func (NewsAPI) NormalizeArticle(raw json.RawMessage, now time.Time) (models.CanonicalArticle, error) {
	var a newsAPIArticle
	if err := json.Unmarshal(raw, &a); err != nil {
		return models.CanonicalArticle{}, fmt.Errorf("failed to decode newsapi article: %w", err)
	}

	title, err := requireTitle(a.Title)
	if err != nil {
		return models.CanonicalArticle{}, err
	}

	return models.CanonicalArticle{
		Title:       title,
		Description: orDefault(a.Description, NoDescription),
		Content:     orDefault(a.Content, NoContent),
		Author:      orDefault(a.Author, UnknownAuthor),
		PublishedAt: parseTime(a.PublishedAt, now),
	}, nil
}
