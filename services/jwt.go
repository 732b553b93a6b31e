package services

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/golang-jwt/jwt/v5"

	"github.com/rosterly/rosterly/internal/config"
)

var (
	ErrInvalidToken = errors.New("invalid or expired token")
)

// Claims are the access-token claims rosterly issues and accepts.
type Claims struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

// JWTService issues and validates access tokens and manages refresh
// tokens in Redis.
type JWTService struct {
	secret []byte
	redis  *redis.Client
}

// NewJWTService creates a JWT service. An empty secret falls back to the
// configured one.
func NewJWTService(secret string, redis *redis.Client) *JWTService {
	if secret == "" {
		secret = config.App.JWTSecret
	}
	return &JWTService{secret: []byte(secret), redis: redis}
}

// IssueAccessToken signs a short-lived HS256 token for the user.
func (s *JWTService) IssueAccessToken(userID, email, name string) (string, error) {
	now := time.Now()
	claims := Claims{
		Email: email,
		Name:  name,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(config.App.AccessTokenTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// ValidateAccessToken parses and verifies an access token.
func (s *JWTService) ValidateAccessToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || claims.Subject == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// IssueRefreshToken stores a random opaque token in Redis keyed to the
// user.
func (s *JWTService) IssueRefreshToken(ctx context.Context, userID string) (string, error) {
	if s.redis == nil {
		return "", errors.New("refresh tokens require redis")
	}
	tokenBytes := make([]byte, 32)
	if _, err := rand.Read(tokenBytes); err != nil {
		return "", fmt.Errorf("failed to generate random token: %w", err)
	}
	tokenID := base64.URLEncoding.EncodeToString(tokenBytes)

	key := "refresh_token:" + tokenID
	if err := s.redis.Set(ctx, key, userID, config.App.RefreshTokenTTL).Err(); err != nil {
		return "", err
	}
	return tokenID, nil
}

// ValidateRefreshToken returns the user a refresh token belongs to.
func (s *JWTService) ValidateRefreshToken(ctx context.Context, token string) (string, error) {
	if s.redis == nil {
		return "", ErrInvalidToken
	}
	userID, err := s.redis.Get(ctx, "refresh_token:"+token).Result()
	if err != nil {
		return "", ErrInvalidToken
	}
	return userID, nil
}

// RevokeRefreshToken deletes a refresh token (logout).
func (s *JWTService) RevokeRefreshToken(ctx context.Context, token string) error {
	if s.redis == nil {
		return nil
	}
	return s.redis.Del(ctx, "refresh_token:"+token).Err()
}

// ExtractTokenFromHeader pulls the bearer token out of an Authorization
// header value.
func ExtractTokenFromHeader(header string) (string, error) {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return "", errors.New("authorization header must be 'Bearer {token}'")
	}
	return parts[1], nil
}
