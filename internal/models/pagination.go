package models

const (
	DefaultPerPage = 10
	MaxPerPage     = 100
)

// PageRequest selects one page of a result set
type PageRequest struct {
	Page    int `json:"page"`
	PerPage int `json:"per_page"`
}

// Normalize fills in defaults for zero values
func (p PageRequest) Normalize() PageRequest {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PerPage < 1 {
		p.PerPage = DefaultPerPage
	}
	if p.PerPage > MaxPerPage {
		p.PerPage = MaxPerPage
	}
	return p
}

// Offset returns the number of rows to skip
func (p PageRequest) Offset() int {
	return (p.Page - 1) * p.PerPage
}

// ArticlePage is a page of articles together with totals
type ArticlePage struct {
	CurrentPage int       `json:"current_page"`
	Data        []Article `json:"data"`
	PerPage     int       `json:"per_page"`
	Total       int       `json:"total"`
	LastPage    int       `json:"last_page"`
	From        int       `json:"from,omitempty"`
	To          int       `json:"to,omitempty"`
}

// NewArticlePage builds a page and derives last_page/from/to from the total
func NewArticlePage(req PageRequest, articles []Article, total int) *ArticlePage {
	if articles == nil {
		articles = []Article{}
	}

	lastPage := 1
	if total > 0 {
		lastPage = (total + req.PerPage - 1) / req.PerPage
	}

	page := &ArticlePage{
		CurrentPage: req.Page,
		Data:        articles,
		PerPage:     req.PerPage,
		Total:       total,
		LastPage:    lastPage,
	}

	if len(articles) > 0 {
		page.From = req.Offset() + 1
		page.To = req.Offset() + len(articles)
	}

	return page
}
