package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/rosterly/rosterly/db"
)

const userCacheTTL = 5 * time.Minute

// UserService reads and writes user accounts. Lookups go through a short
// Redis cache; the default-org pointer is written by the authz layer, not
// here, so the cache never shadows a role change (org context is resolved
// from the database on every request regardless).
type UserService struct {
	PG    *sql.DB
	Redis *redis.Client
}

func NewUserService(pg *sql.DB, redis *redis.Client) *UserService {
	return &UserService{PG: pg, Redis: redis}
}

// GetUser fetches a user by ID, consulting the cache first.
func (s *UserService) GetUser(ctx context.Context, id string) (*db.User, error) {
	cacheKey := "user:" + id
	if s.Redis != nil {
		if cached, err := s.Redis.Get(ctx, cacheKey).Result(); err == nil {
			var user db.User
			if err := json.Unmarshal([]byte(cached), &user); err == nil {
				return &user, nil
			}
		}
	}

	var user db.User
	var defaultOrg sql.NullString
	err := s.PG.QueryRowContext(ctx, `
		SELECT id, provider, provider_id, email, COALESCE(name, ''), COALESCE(password_hash, ''), default_org_id, is_active, created_at, updated_at
		FROM users
		WHERE id = $1
	`, id).Scan(&user.ID, &user.Provider, &user.ProviderID, &user.Email, &user.Name, &user.PasswordHash, &defaultOrg, &user.IsActive, &user.CreatedAt, &user.UpdatedAt)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("user not found")
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	user.DefaultOrgID = defaultOrg.String

	if s.Redis != nil {
		if data, err := json.Marshal(user); err == nil {
			if err := s.Redis.Set(ctx, cacheKey, data, userCacheTTL).Err(); err != nil {
				log.Printf("Failed to cache user %s: %v", id, err)
			}
		}
	}
	return &user, nil
}

// GetUserByEmail fetches a user by email (login path, no cache).
func (s *UserService) GetUserByEmail(ctx context.Context, email string) (*db.User, error) {
	var user db.User
	var defaultOrg sql.NullString
	err := s.PG.QueryRowContext(ctx, `
		SELECT id, provider, provider_id, email, COALESCE(name, ''), COALESCE(password_hash, ''), default_org_id, is_active, created_at, updated_at
		FROM users
		WHERE email = $1
	`, email).Scan(&user.ID, &user.Provider, &user.ProviderID, &user.Email, &user.Name, &user.PasswordHash, &defaultOrg, &user.IsActive, &user.CreatedAt, &user.UpdatedAt)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("user not found")
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	user.DefaultOrgID = defaultOrg.String
	return &user, nil
}

// CreateUserRecord inserts a new user row.
func (s *UserService) CreateUserRecord(ctx context.Context, user db.User) error {
	var defaultOrg interface{}
	if user.DefaultOrgID != "" {
		defaultOrg = user.DefaultOrgID
	}
	_, err := s.PG.ExecContext(ctx, `
		INSERT INTO users (id, provider, provider_id, email, name, password_hash, default_org_id, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, user.ID, user.Provider, user.ProviderID, user.Email, user.Name, user.PasswordHash, defaultOrg, user.IsActive, user.CreatedAt, user.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// InvalidateCache drops the cached copy of a user.
func (s *UserService) InvalidateCache(ctx context.Context, id string) {
	if s.Redis == nil {
		return
	}
	if err := s.Redis.Del(ctx, "user:"+id).Err(); err != nil {
		log.Printf("Failed to invalidate user cache %s: %v", id, err)
	}
}
