package api

import (
	"errors"
	"net/http"

	"newsagg/internal/auth"
	"newsagg/internal/models"
	"newsagg/internal/storage"

	"github.com/gin-gonic/gin"
)

type registerRequest struct {
	Name                 string `json:"name" binding:"required,max=255"`
	Email                string `json:"email" binding:"required,email,max=255"`
	Password             string `json:"password" binding:"required,min=8,max=72"`
	PasswordConfirmation string `json:"password_confirmation" binding:"required,eqfield=Password"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type tokenResponse struct {
	User        *models.User `json:"user"`
	AccessToken string       `json:"access_token"`
	TokenType   string       `json:"token_type"`
}

func (s *Server) register(c *gin.Context) {
	var req registerRequest
	if err := bindJSON(c, &req); err != nil {
		respondError(c, err)
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	ctx := c.Request.Context()
	user, err := s.store.CreateUser(ctx, req.Name, req.Email, hash)
	if errors.Is(err, storage.ErrDuplicate) {
		verr := models.NewValidationError()
		verr.Add("email", "The email has already been taken.")
		respondError(c, verr)
		return
	}
	if err != nil {
		respondError(c, err)
		return
	}

	token, err := s.tokens.Issue(ctx, user.ID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, tokenResponse{User: user, AccessToken: token, TokenType: "Bearer"})
}

func (s *Server) login(c *gin.Context) {
	var req loginRequest
	if err := bindJSON(c, &req); err != nil {
		respondError(c, err)
		return
	}

	ctx := c.Request.Context()
	user, err := s.store.GetUserByEmail(ctx, req.Email)
	if err != nil && !errors.Is(err, models.ErrNotFound) {
		respondError(c, err)
		return
	}
	if user == nil || !auth.CheckPassword(user.PasswordHash, req.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid login details"})
		return
	}

	token, err := s.tokens.Issue(ctx, user.ID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, tokenResponse{User: user, AccessToken: token, TokenType: "Bearer"})
}

// logout revokes only the token used for this request
func (s *Server) logout(c *gin.Context) {
	tokenID, _ := auth.TokenID(c)
	if err := s.tokens.Revoke(c.Request.Context(), tokenID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
}

func (s *Server) currentUser(c *gin.Context) {
	userID, _ := auth.UserID(c)
	user, err := s.store.GetUserByID(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}
