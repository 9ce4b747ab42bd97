package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"

	"medvault/internal/auth"
	"medvault/internal/model"
	"medvault/internal/repository"
)

var (
	// ErrInvalidCredentials is returned on login for both an unknown email
	// and a wrong password, in the same shape.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrEmailTaken is the duplicate-email registration failure.
	ErrEmailTaken = errors.New("an account with this email already exists")
)

// RegisterInput is the registration form payload.
type RegisterInput struct {
	Email           string
	FirstName       string
	LastName        string
	Password        string
	PasswordConfirm string
	Role            string
}

// LoginResult carries the authenticated user, their session token, and the
// dashboard route the client should follow next.
type LoginResult struct {
	User       *model.User
	Token      string
	RedirectTo string
}

// AuthService defines registration, login, and profile use cases.
type AuthService interface {
	// Register creates an account. The role defaults to patient and is
	// immutable afterwards.
	Register(ctx context.Context, in RegisterInput) (*model.User, error)

	// Login verifies credentials and issues a session token.
	Login(ctx context.Context, email, password string) (*LoginResult, error)

	// Profile returns the caller's own account record.
	Profile(ctx context.Context, userID string) (*model.User, error)
}

type authService struct {
	users          repository.UserRepository
	sessions       *auth.Sessions
	minPasswordLen int
}

// NewAuthService constructs a new AuthService.
func NewAuthService(users repository.UserRepository, sessions *auth.Sessions, minPasswordLen int) AuthService {
	if minPasswordLen <= 0 {
		minPasswordLen = 8
	}
	return &authService{users: users, sessions: sessions, minPasswordLen: minPasswordLen}
}

func (s *authService) Register(ctx context.Context, in RegisterInput) (*model.User, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if email == "" {
		return nil, fmt.Errorf("%w: email is required", ErrValidation)
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, fmt.Errorf("%w: invalid email address", ErrValidation)
	}
	if len(in.Password) < s.minPasswordLen {
		return nil, fmt.Errorf("%w: password must be at least %d characters", ErrValidation, s.minPasswordLen)
	}
	if in.Password != in.PasswordConfirm {
		return nil, fmt.Errorf("%w: passwords do not match", ErrValidation)
	}
	role, err := model.ParseRole(in.Role)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u := &model.User{
		ID:           uuid.New().String(),
		Email:        email,
		FirstName:    strings.TrimSpace(in.FirstName),
		LastName:     strings.TrimSpace(in.LastName),
		PasswordHash: hash,
		Role:         role,
		CreatedAt:    time.Now().UTC(),
	}
	stored, err := s.users.Create(ctx, u)
	if err != nil {
		// Concurrent registration of the same email loses the unique-index
		// race; report it the same way as the pre-check.
		if isDuplicateKey(err) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}
	return stored, nil
}

func (s *authService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	u, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !auth.CheckPassword(password, u.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	token, err := s.sessions.Issue(u.ID, u.Role)
	if err != nil {
		return nil, fmt.Errorf("issue session token: %w", err)
	}
	return &LoginResult{
		User:       u,
		Token:      token,
		RedirectTo: u.Role.DashboardPath(),
	}, nil
}

func (s *authService) Profile(ctx context.Context, userID string) (*model.User, error) {
	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return u, nil
}

// isDuplicateKey matches unique-constraint violations without binding to a
// driver-specific error type.
func isDuplicateKey(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "unique violation")
}
