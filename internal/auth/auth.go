// Package auth handles account registration, login and JWT session
// tokens for the REST surface.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/fortuna/willow/internal/store"
	"github.com/fortuna/willow/internal/store/repository"
)

var (
	// ErrInvalidCredentials covers both unknown usernames and wrong
	// passwords so login errors do not leak which one it was.
	ErrInvalidCredentials = errors.New("invalid username or password")

	// ErrInvalidToken is returned for expired or malformed tokens.
	ErrInvalidToken = errors.New("invalid or expired token")
)

// ValidationError describes a rejected registration input.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Claims is the JWT payload issued on login.
type Claims struct {
	UserID   int    `json:"user_id"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// Service issues and verifies credentials against the user store.
type Service struct {
	users      *repository.UserRepository
	secret     []byte
	tokenTTL   time.Duration
	bcryptCost int
	log        *logrus.Entry
}

// NewService creates an auth service. Zero values for tokenTTL and
// bcryptCost fall back to 24h and the bcrypt default.
func NewService(users *repository.UserRepository, secret string, tokenTTL time.Duration, bcryptCost int, log *logrus.Logger) *Service {
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		bcryptCost = bcrypt.DefaultCost
	}
	return &Service{
		users:      users,
		secret:     []byte(secret),
		tokenTTL:   tokenTTL,
		bcryptCost: bcryptCost,
		log:        log.WithField("component", "auth"),
	}
}

// Register validates and creates a new account.
func (s *Service) Register(ctx context.Context, username, email, password, confirm string) (*store.User, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)

	if username == "" {
		return nil, &ValidationError{Field: "username", Message: "is required"}
	}
	if email == "" {
		return nil, &ValidationError{Field: "email", Message: "is required"}
	}
	if !strings.Contains(email, "@") {
		return nil, &ValidationError{Field: "email", Message: "is not a valid address"}
	}
	if password == "" {
		return nil, &ValidationError{Field: "password", Message: "is required"}
	}
	if password != confirm {
		return nil, &ValidationError{Field: "confirm_password", Message: "passwords do not match"}
	}
	if len(password) < 8 {
		return nil, &ValidationError{Field: "password", Message: "must be at least 8 characters"}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	user, err := s.users.Create(ctx, username, email, string(hash))
	if err != nil {
		return nil, err
	}

	s.log.WithField("username", username).Info("Registered new user")
	return user, nil
}

// Login verifies credentials and returns a signed session token.
func (s *Service) Login(ctx context.Context, username, password string) (string, *store.User, error) {
	user, err := s.users.GetByUsername(ctx, strings.TrimSpace(username))
	if err == repository.ErrNotFound {
		return "", nil, ErrInvalidCredentials
	}
	if err != nil {
		return "", nil, err
	}
	if !user.IsActive {
		return "", nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", nil, ErrInvalidCredentials
	}

	if err := s.users.TouchLastLogin(ctx, user.ID); err != nil {
		s.log.WithError(err).Warn("Failed to record last login")
	}

	token, err := s.issueToken(user)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

func (s *Service) issueToken(user *store.User) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID:   user.ID,
		Username: user.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.Username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}
	return signed, nil
}

// VerifyToken parses and validates a session token.
func (s *Service) VerifyToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
