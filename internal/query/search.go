package query

import (
	"fmt"
	"time"

	"newsagg/internal/models"
)

const dateLayout = "2006-01-02"

// SearchParams are the raw search inputs of the articles search endpoint
type SearchParams struct {
	Page       int
	PerPage    int
	Keyword    string
	DateFrom   string
	DateTo     string
	CategoryID *int64
	SourceID   *int64
}

// Search is a validated search: a filter plus the page to return
type Search struct {
	Filter Filter
	Page   models.PageRequest
}

// Validate checks the parameters and builds the search. A date range only
// applies when both ends are given; date_to covers its whole day.
func (p SearchParams) Validate() (*Search, error) {
	verr := models.NewValidationError()

	page := p.Page
	if page == 0 {
		page = 1
	}
	if page < 1 {
		verr.Add("page", "The page must be at least 1.")
	}

	perPage := p.PerPage
	if perPage == 0 {
		perPage = models.DefaultPerPage
	}
	if perPage < 1 || perPage > models.MaxPerPage {
		verr.Add("per_page", fmt.Sprintf("The per page must be between 1 and %d.", models.MaxPerPage))
	}

	from, fromErr := parseDate(p.DateFrom)
	if fromErr != nil {
		verr.Add("date_from", "The date from is not a valid date.")
	}
	to, toErr := parseDate(p.DateTo)
	if toErr != nil {
		verr.Add("date_to", "The date to is not a valid date.")
	}
	if fromErr == nil && toErr == nil && !from.IsZero() && !to.IsZero() && to.Before(from) {
		verr.Add("date_to", "The date to must be a date after or equal to date from.")
	}

	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	filter := And(Keyword(p.Keyword))
	if !from.IsZero() && !to.IsZero() {
		filter = filter.And(CreatedBetween(from, endOfDay(to)))
	}
	if p.CategoryID != nil {
		filter = filter.And(CategoryIn(*p.CategoryID))
	}
	if p.SourceID != nil {
		filter = filter.And(SourceIn(*p.SourceID))
	}

	return &Search{
		Filter: filter,
		Page:   models.PageRequest{Page: page, PerPage: perPage},
	}, nil
}

func parseDate(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t.UTC(), nil
	}
	return time.Parse(dateLayout, value)
}

// endOfDay widens a bare date to the last second of that day
func endOfDay(t time.Time) time.Time {
	if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 && t.Nanosecond() == 0 {
		return t.Add(24*time.Hour - time.Second)
	}
	return t
}
