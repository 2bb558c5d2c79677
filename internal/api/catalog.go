package api

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"newsagg/internal/models"
	"newsagg/internal/storage"

	"github.com/gin-gonic/gin"
)

type sourceRequest struct {
	Name string `json:"name" binding:"required,max=255"`
}

func (s *Server) listSources(c *gin.Context) {
	sources, err := s.store.ListSources(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": sources})
}

func (s *Server) createSource(c *gin.Context) {
	var req sourceRequest
	if err := bindJSON(c, &req); err != nil {
		respondError(c, err)
		return
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		verr := models.NewValidationError()
		verr.Add("name", "The name field is required.")
		respondError(c, verr)
		return
	}

	source, err := s.store.CreateSource(c.Request.Context(), name)
	if errors.Is(err, storage.ErrDuplicate) {
		verr := models.NewValidationError()
		verr.Add("name", "The name has already been taken.")
		respondError(c, verr)
		return
	}
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": source})
}

func (s *Server) listCategories(c *gin.Context) {
	categories, err := s.store.ListCategories(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": categories})
}

// fetchArticles runs one ingestion cycle and reports per-provider results.
// The cycle keeps running if the client goes away.
func (s *Server) fetchArticles(c *gin.Context) {
	summary := s.poller.ForcePoll(context.WithoutCancel(c.Request.Context()))
	c.JSON(http.StatusOK, summary)
}
