package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/rosterly/rosterly/db"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("account already exists")
)

// AuthService handles signup and login. It is deliberately thin: the
// authorization core downstream neither knows nor cares how the actor
// was authenticated.
type AuthService struct {
	PG          *sql.DB
	Redis       *redis.Client
	JWTService  *JWTService
	UserService *UserService
}

type SignupRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required,min=8"`
	Name     string `json:"name"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	User         db.User `json:"user"`
	Token        string  `json:"token"`
	RefreshToken string  `json:"refresh_token"`
}

func NewAuthService(pg *sql.DB, redis *redis.Client, users *UserService) *AuthService {
	return &AuthService{
		PG:          pg,
		Redis:       redis,
		JWTService:  NewJWTService("", redis),
		UserService: users,
	}
}

// HashPassword creates a bcrypt hash of the password.
func (s *AuthService) HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

// CheckPassword compares a plaintext password against its hash.
func (s *AuthService) CheckPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// Signup creates a new account and issues tokens.
func (s *AuthService) Signup(ctx context.Context, req SignupRequest) (*LoginResponse, error) {
	if _, err := s.UserService.GetUserByEmail(ctx, req.Email); err == nil {
		return nil, fmt.Errorf("%w: %s", ErrEmailTaken, req.Email)
	}

	hash, err := s.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	name := req.Name
	if name == "" {
		name = displayNameFromEmail(req.Email)
	}

	now := time.Now()
	user := db.User{
		ID:           uuid.New().String(),
		Provider:     "local",
		ProviderID:   req.Email,
		Email:        req.Email,
		Name:         name,
		PasswordHash: hash,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.UserService.CreateUserRecord(ctx, user); err != nil {
		return nil, err
	}

	return s.issueTokens(ctx, user)
}

// Login verifies credentials and issues tokens.
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	user, err := s.UserService.GetUserByEmail(ctx, req.Email)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive || !s.CheckPassword(req.Password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}
	return s.issueTokens(ctx, *user)
}

func (s *AuthService) issueTokens(ctx context.Context, user db.User) (*LoginResponse, error) {
	token, err := s.JWTService.IssueAccessToken(user.ID, user.Email, user.Name)
	if err != nil {
		return nil, fmt.Errorf("failed to issue access token: %w", err)
	}
	// Refresh tokens need redis; without it the login still succeeds
	// with a short-lived access token only.
	refresh, err := s.JWTService.IssueRefreshToken(ctx, user.ID)
	if err != nil {
		log.Printf("Refresh token unavailable: %v", err)
	}

	user.PasswordHash = ""
	return &LoginResponse{User: user, Token: token, RefreshToken: refresh}, nil
}

// displayNameFromEmail derives a presentable name from the local part of
// an email address.
func displayNameFromEmail(email string) string {
	local := email
	if i := strings.Index(email, "@"); i > 0 {
		local = email[:i]
	}
	local = strings.NewReplacer(".", " ", "_", " ", "-", " ").Replace(local)
	return cases.Title(language.English).String(local)
}
