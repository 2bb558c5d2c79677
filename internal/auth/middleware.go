package auth

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	userIDKey  = "auth.user_id"
	tokenIDKey = "auth.token_id"
)

// RequireToken rejects requests without a valid bearer token and stores the
// caller identity on the context
func RequireToken(tokens *TokenService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		scheme, token, found := strings.Cut(header, " ")
		if !found || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
			unauthenticated(c)
			return
		}

		identity, err := tokens.Verify(c.Request.Context(), strings.TrimSpace(token))
		if err != nil {
			if !errors.Is(err, ErrUnauthenticated) {
				log.Printf("Error verifying token: %v", err)
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "Server Error"})
				return
			}
			unauthenticated(c)
			return
		}

		c.Set(userIDKey, identity.UserID)
		c.Set(tokenIDKey, identity.TokenID)
		c.Next()
	}
}

func unauthenticated(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Unauthenticated."})
}

// UserID returns the authenticated user id set by RequireToken
func UserID(c *gin.Context) (int64, bool) {
	v, ok := c.Get(userIDKey)
	if !ok {
		return 0, false
	}
	id, ok := v.(int64)
	return id, ok
}

// TokenID returns the id of the bearer token used for the request
func TokenID(c *gin.Context) (string, bool) {
	v, ok := c.Get(tokenIDKey)
	if !ok {
		return "", false
	}
	id, ok := v.(string)
	return id, ok
}

// CallerKey identifies the authenticated user for per-caller rate limits
func CallerKey(c *gin.Context) (string, bool) {
	id, ok := UserID(c)
	if !ok {
		return "", false
	}
	return strconv.FormatInt(id, 10), true
}
