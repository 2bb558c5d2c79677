package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"newsagg/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const issuer = "newsagg"

// ErrUnauthenticated is returned for missing, invalid, expired or revoked tokens
var ErrUnauthenticated = errors.New("unauthenticated")

// TokenStore persists issued token ids so they can be revoked
type TokenStore interface {
	CreateAccessToken(ctx context.Context, token *models.AccessToken) error
	GetAccessToken(ctx context.Context, id string) (*models.AccessToken, error)
	DeleteAccessToken(ctx context.Context, id string) error
}

// TokenService issues and verifies HS256 bearer tokens
type TokenService struct {
	secret []byte
	ttl    time.Duration
	store  TokenStore
	now    func() time.Time
}

func NewTokenService(secret string, ttl time.Duration, store TokenStore) *TokenService {
	return &TokenService{
		secret: []byte(secret),
		ttl:    ttl,
		store:  store,
		now:    time.Now,
	}
}

// Identity is the verified caller behind a bearer token
type Identity struct {
	UserID  int64
	TokenID string
}

// Issue signs a new token for userID and records its id
func (s *TokenService) Issue(ctx context.Context, userID int64) (string, error) {
	now := s.now().UTC().Truncate(time.Second)
	record := &models.AccessToken{
		ID:        uuid.NewString(),
		UserID:    userID,
		ExpiresAt: now.Add(s.ttl),
		CreatedAt: now,
	}

	claims := jwt.RegisteredClaims{
		Issuer:    issuer,
		Subject:   strconv.FormatInt(userID, 10),
		ID:        record.ID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(record.ExpiresAt),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	if err := s.store.CreateAccessToken(ctx, record); err != nil {
		return "", err
	}
	return signed, nil
}

// Verify checks the signature, expiry and that the token has not been revoked
func (s *TokenService) Verify(ctx context.Context, tokenString string) (*Identity, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnauthenticated, err)
	}

	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || claims.ID == "" {
		return nil, fmt.Errorf("%w: malformed claims", ErrUnauthenticated)
	}

	record, err := s.store.GetAccessToken(ctx, claims.ID)
	if errors.Is(err, models.ErrNotFound) {
		return nil, fmt.Errorf("%w: token revoked", ErrUnauthenticated)
	}
	if err != nil {
		return nil, err
	}
	if record.UserID != userID || !s.now().Before(record.ExpiresAt) {
		return nil, fmt.Errorf("%w: token expired", ErrUnauthenticated)
	}

	return &Identity{UserID: userID, TokenID: claims.ID}, nil
}

// Revoke deletes a token id so later requests with it are rejected
func (s *TokenService) Revoke(ctx context.Context, tokenID string) error {
	return s.store.DeleteAccessToken(ctx, tokenID)
}
