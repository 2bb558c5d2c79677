package providers

import (
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"newsagg/internal/config"
	"newsagg/internal/models"
)

// Guardian handles content.guardianapis.com search responses
type Guardian struct{}

type guardianEnvelope struct {
	Response struct {
		Status  string            `json:"status"`
		Results []json.RawMessage `json:"results"`
	} `json:"response"`
}

type guardianArticle struct {
	WebTitle           *string `json:"webTitle"`
	WebPublicationDate *string `json:"webPublicationDate"`
	Byline             *string `json:"byline"`
	Fields             *struct {
		BodyText *string `json:"bodyText"`
	} `json:"fields"`
}

func (Guardian) Kind() string { return config.KindGuardian }

func (Guardian) Query(cfg config.ProviderConfig) url.Values {
	values := baseQuery(cfg, "api-key")
	if values.Get("page-size") == "" {
		values.Set("page-size", "3")
	}
	return values
}

func (Guardian) Records(body []byte) ([]json.RawMessage, error) {
	var env guardianEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("failed to decode guardian response: %w", err)
	}
	return env.Response.Results, nil
}

func (Guardian) NormalizeArticle(raw json.RawMessage, now time.Time) (models.CanonicalArticle, error) {
	var a guardianArticle
	if err := json.Unmarshal(raw, &a); err != nil {
		return models.CanonicalArticle{}, fmt.Errorf("failed to decode guardian article: %w", err)
	}

	title, err := requireTitle(a.WebTitle)
	if err != nil {
		return models.CanonicalArticle{}, err
	}

	var body *string
	if a.Fields != nil {
		body = a.Fields.BodyText
	}

	return models.CanonicalArticle{
		Title:       title,
		Description: orDefault(body, NoDescription),
		Content:     orDefault(body, NoContent),
		Author:      orDefault(a.Byline, UnknownAuthor),
		PublishedAt: parseTime(a.WebPublicationDate, now),
	}, nil
}
