package api

import (
	"errors"
	"net/http"

	"newsagg/internal/auth"
	"newsagg/internal/models"
	"newsagg/internal/query"

	"github.com/gin-gonic/gin"
)

type preferenceRequest struct {
	Categories []int64  `json:"categories" binding:"omitempty,dive,min=1"`
	Sources    []int64  `json:"sources" binding:"omitempty,dive,min=1"`
	Authors    []string `json:"authors" binding:"omitempty,dive,required,max=255"`
}

// getPreferences returns the stored preference, or null when none was saved
func (s *Server) getPreferences(c *gin.Context) {
	userID, _ := auth.UserID(c)
	pref, err := s.store.GetPreference(c.Request.Context(), userID)
	if errors.Is(err, models.ErrNotFound) {
		c.JSON(http.StatusOK, nil)
		return
	}
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, pref)
}

// setPreferences replaces the caller's preference; omitted lists are stored empty
func (s *Server) setPreferences(c *gin.Context) {
	var req preferenceRequest
	if err := bindJSON(c, &req); err != nil {
		respondError(c, err)
		return
	}

	userID, _ := auth.UserID(c)
	pref, err := s.store.UpsertPreference(c.Request.Context(), &models.Preference{
		UserID:     userID,
		Categories: req.Categories,
		Sources:    req.Sources,
		Authors:    req.Authors,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, pref)
}

func (s *Server) personalizedFeed(c *gin.Context) {
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

	userID, _ := auth.UserID(c)
	result, err := s.feed.Feed(c.Request.Context(), userID, search.Page)
	if err != nil {
		respondError(c, err)
		return
	}

	if result.NoPreferences {
		c.JSON(http.StatusOK, gin.H{"message": "No preferences set."})
		return
	}

	cacheStatus := "MISS"
	if result.Cached {
		cacheStatus = "HIT"
	}
	c.Header("X-Cache", cacheStatus)
	c.Data(http.StatusOK, "application/json; charset=utf-8", result.Body)
}
