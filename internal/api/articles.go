package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"newsagg/internal/models"
	"newsagg/internal/query"

	"github.com/gin-gonic/gin"
)

func (s *Server) listArticles(c *gin.Context) {
	verr := models.NewValidationError()
	page, perPage := pageParams(c, verr)
	if verr.HasErrors() {
		respondError(c, verr)
		return
	}

	search, err := query.SearchParams{Page: page, PerPage: perPage}.Validate()
	if err != nil {
		respondError(c, err)
		return
	}

	articles, err := s.store.ListArticles(c.Request.Context(), search.Filter, search.Page)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, articles)
}

func (s *Server) getArticle(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id < 1 {
		articleNotFound(c)
		return
	}

	article, err := s.store.GetArticle(c.Request.Context(), id)
	if errors.Is(err, models.ErrNotFound) {
		articleNotFound(c)
		return
	}
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, article)
}

func articleNotFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, gin.H{"message": "Article not found"})
}

// searchArticles filters by keyword, date range, category and source.
// Invalid parameters are rejected before any article query runs.
func (s *Server) searchArticles(c *gin.Context) {
	verr := models.NewValidationError()
	page, perPage := pageParams(c, verr)
	params := query.SearchParams{
		Page:     page,
		PerPage:  perPage,
		Keyword:  c.Query("keyword"),
		DateFrom: c.Query("date_from"),
		DateTo:   c.Query("date_to"),
	}
	if id, ok := queryInt(c, "category_id", verr); ok {
		params.CategoryID = &id
	}
	if id, ok := queryInt(c, "source_id", verr); ok {
		params.SourceID = &id
	}
	if verr.HasErrors() {
		respondError(c, verr)
		return
	}

	search, err := params.Validate()
	if err != nil {
		respondError(c, err)
		return
	}

	ctx := c.Request.Context()
	if err := s.checkReferences(ctx, params.CategoryID, params.SourceID); err != nil {
		respondError(c, err)
		return
	}

	articles, err := s.store.ListArticles(ctx, search.Filter, search.Page)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"articles":       articles.Data,
		"total_pages":    articles.LastPage,
		"total_articles": articles.Total,
	})
}

// checkReferences rejects category and source ids that do not exist
func (s *Server) checkReferences(ctx context.Context, categoryID, sourceID *int64) error {
	verr := models.NewValidationError()

	if categoryID != nil {
		ok, err := s.store.CategoryExists(ctx, *categoryID)
		if err != nil {
			return err
		}
		if !ok {
			verr.Add("category_id", "The selected category id is invalid.")
		}
	}
	if sourceID != nil {
		ok, err := s.store.SourceExists(ctx, *sourceID)
		if err != nil {
			return err
		}
		if !ok {
			verr.Add("source_id", "The selected source id is invalid.")
		}
	}

	return verr.OrNil()
}
