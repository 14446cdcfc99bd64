package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Foysal-Munsy/careerostad-messaging/internal/core"
	"github.com/Foysal-Munsy/careerostad-messaging/internal/store"
)

var (
	// ErrInvalidCredentials is returned when email/password don't match.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUserExists is returned when trying to register an existing email.
	ErrUserExists = errors.New("user already exists")
	// ErrInvalidEmail is returned when the email doesn't meet constraints.
	ErrInvalidEmail = errors.New("invalid email")
	// ErrInvalidPassword is returned when the password doesn't meet constraints.
	ErrInvalidPassword = errors.New("invalid password")
)

// Service provides the identity provider operations: account
// registration, login, and token validation. A validated token
// establishes the messaging identity for requests and sockets.
type Service struct {
	store     store.UserStore
	jwtConfig *JWTConfig
}

// NewService creates a new authentication service.
func NewService(userStore store.UserStore, jwtConfig *JWTConfig) *Service {
	return &Service{
		store:     userStore,
		jwtConfig: jwtConfig,
	}
}

// Register creates a new account with a hashed password and returns a
// JWT token whose subject is the normalized email identity.
func (s *Service) Register(ctx context.Context, email, password string) (string, error) {
	identity := core.NormalizeIdentity(email)
	if identity.IsZero() || !strings.Contains(identity.String(), "@") {
		return "", ErrInvalidEmail
	}
	if len(password) < 6 {
		return "", ErrInvalidPassword
	}

	// Check if the account already exists
	existing, err := s.store.GetUserByEmail(ctx, identity.String())
	if err == nil && existing != nil {
		return "", ErrUserExists
	}

	hashedPassword, err := HashPassword(password)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}

	user, err := s.store.CreateUser(ctx, identity.String(), hashedPassword)
	if err != nil {
		return "", fmt.Errorf("create user: %w", err)
	}

	token, err := GenerateToken(s.jwtConfig, user.Email)
	if err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}

	return token, nil
}

// Login validates credentials and returns a JWT token.
func (s *Service) Login(ctx context.Context, email, password string) (string, error) {
	identity := core.NormalizeIdentity(email)

	user, err := s.store.GetUserByEmail(ctx, identity.String())
	if err != nil {
		return "", ErrInvalidCredentials
	}

	if errPwd := ComparePassword(user.PasswordHash, password); errPwd != nil {
		return "", ErrInvalidCredentials
	}

	token, err := GenerateToken(s.jwtConfig, user.Email)
	if err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}

	return token, nil
}

// ValidateToken validates a JWT token and returns the claims.
func (s *Service) ValidateToken(tokenString string) (*Claims, error) {
	return ValidateToken(s.jwtConfig, tokenString)
}

// Identity extracts the normalized messaging identity from validated claims.
func (s *Service) Identity(claims *Claims) core.Identity {
	return core.NormalizeIdentity(claims.Email)
}
