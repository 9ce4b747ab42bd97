package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"medvault/internal/auth"
	"medvault/internal/config"
	"medvault/internal/model"
	repoMocks "medvault/internal/repository/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func testSessions(t *testing.T) *auth.Sessions {
	t.Helper()
	sessions, err := auth.NewSessions(config.AuthConfig{
		JWTSecret:     "test-secret",
		JWTIssuer:     "medvault",
		SessionTTLMin: 60,
	})
	require.NoError(t, err)
	return sessions
}

func TestAuthService_Register(t *testing.T) {
	ctx := context.Background()

	valid := func() RegisterInput {
		return RegisterInput{
			Email:           "Alice@Example.com",
			FirstName:       "Alice",
			LastName:        "Nguyen",
			Password:        "correct-horse",
			PasswordConfirm: "correct-horse",
			Role:            "patient",
		}
	}

	tests := []struct {
		name       string
		input      func() RegisterInput
		setupMocks func(mUsers *repoMocks.MockUserRepository)
		check      func(t *testing.T, u *model.User, err error)
	}{
		{
			name:  "happy path normalizes the email",
			input: valid,
			setupMocks: func(mUsers *repoMocks.MockUserRepository) {
				mUsers.On("FindByEmail", ctx, "alice@example.com").Return(nil, sql.ErrNoRows)
				mUsers.On("Create", ctx, mock.MatchedBy(func(u *model.User) bool {
					return u.Email == "alice@example.com" &&
						u.Role == model.RolePatient &&
						u.PasswordHash != "" &&
						u.PasswordHash != "correct-horse"
				})).Return(&model.User{ID: "new-id", Email: "alice@example.com", Role: model.RolePatient}, nil)
			},
			check: func(t *testing.T, u *model.User, err error) {
				require.NoError(t, err)
				assert.Equal(t, "alice@example.com", u.Email)
			},
		},
		{
			name: "empty role defaults to patient",
			input: func() RegisterInput {
				in := valid()
				in.Role = ""
				return in
			},
			setupMocks: func(mUsers *repoMocks.MockUserRepository) {
				mUsers.On("FindByEmail", ctx, "alice@example.com").Return(nil, sql.ErrNoRows)
				mUsers.On("Create", ctx, mock.MatchedBy(func(u *model.User) bool {
					return u.Role == model.RolePatient
				})).Return(&model.User{ID: "new-id", Role: model.RolePatient}, nil)
			},
			check: func(t *testing.T, u *model.User, err error) {
				require.NoError(t, err)
				assert.Equal(t, model.RolePatient, u.Role)
			},
		},
		{
			name: "invalid email",
			input: func() RegisterInput {
				in := valid()
				in.Email = "not-an-email"
				return in
			},
			setupMocks: func(*repoMocks.MockUserRepository) {},
			check: func(t *testing.T, u *model.User, err error) {
				assert.ErrorIs(t, err, ErrValidation)
			},
		},
		{
			name: "short password",
			input: func() RegisterInput {
				in := valid()
				in.Password = "short"
				in.PasswordConfirm = "short"
				return in
			},
			setupMocks: func(*repoMocks.MockUserRepository) {},
			check: func(t *testing.T, u *model.User, err error) {
				assert.ErrorIs(t, err, ErrValidation)
			},
		},
		{
			name: "password confirmation mismatch",
			input: func() RegisterInput {
				in := valid()
				in.PasswordConfirm = "something-else"
				return in
			},
			setupMocks: func(*repoMocks.MockUserRepository) {},
			check: func(t *testing.T, u *model.User, err error) {
				assert.ErrorIs(t, err, ErrValidation)
			},
		},
		{
			name: "unknown role",
			input: func() RegisterInput {
				in := valid()
				in.Role = "admin"
				return in
			},
			setupMocks: func(*repoMocks.MockUserRepository) {},
			check: func(t *testing.T, u *model.User, err error) {
				assert.ErrorIs(t, err, ErrValidation)
			},
		},
		{
			name:  "email already registered",
			input: valid,
			setupMocks: func(mUsers *repoMocks.MockUserRepository) {
				mUsers.On("FindByEmail", ctx, "alice@example.com").
					Return(&model.User{ID: "existing"}, nil)
			},
			check: func(t *testing.T, u *model.User, err error) {
				assert.ErrorIs(t, err, ErrEmailTaken)
			},
		},
		{
			name:  "lost unique-index race",
			input: valid,
			setupMocks: func(mUsers *repoMocks.MockUserRepository) {
				mUsers.On("FindByEmail", ctx, "alice@example.com").Return(nil, sql.ErrNoRows)
				mUsers.On("Create", ctx, mock.Anything).
					Return(nil, errors.New(`pq: duplicate key value violates unique constraint "users_email_key"`))
			},
			check: func(t *testing.T, u *model.User, err error) {
				assert.ErrorIs(t, err, ErrEmailTaken)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mUsers := new(repoMocks.MockUserRepository)
			svc := NewAuthService(mUsers, testSessions(t), 8)

			tt.setupMocks(mUsers)

			u, err := svc.Register(ctx, tt.input())
			tt.check(t, u, err)
			mUsers.AssertExpectations(t)
		})
	}
}

func TestAuthService_Login(t *testing.T) {
	ctx := context.Background()

	hash, err := auth.HashPassword("correct-horse")
	require.NoError(t, err)

	t.Run("patient login redirects to the patient dashboard", func(t *testing.T) {
		mUsers := new(repoMocks.MockUserRepository)
		svc := NewAuthService(mUsers, testSessions(t), 8)

		mUsers.On("FindByEmail", ctx, "alice@example.com").
			Return(&model.User{ID: "patient-a", Email: "alice@example.com", PasswordHash: hash, Role: model.RolePatient}, nil)

		res, err := svc.Login(ctx, " Alice@Example.com ", "correct-horse")

		require.NoError(t, err)
		assert.NotEmpty(t, res.Token)
		assert.Equal(t, "/accounts/patient-dashboard/", res.RedirectTo)
	})

	t.Run("doctor login redirects to the doctor dashboard", func(t *testing.T) {
		mUsers := new(repoMocks.MockUserRepository)
		svc := NewAuthService(mUsers, testSessions(t), 8)

		mUsers.On("FindByEmail", ctx, "doc@example.com").
			Return(&model.User{ID: "doctor-1", Email: "doc@example.com", PasswordHash: hash, Role: model.RoleDoctor}, nil)

		res, err := svc.Login(ctx, "doc@example.com", "correct-horse")

		require.NoError(t, err)
		assert.Equal(t, "/accounts/doctor-dashboard/", res.RedirectTo)
	})

	t.Run("unknown email and wrong password fail identically", func(t *testing.T) {
		mUsers := new(repoMocks.MockUserRepository)
		svc := NewAuthService(mUsers, testSessions(t), 8)

		mUsers.On("FindByEmail", ctx, "ghost@example.com").Return(nil, sql.ErrNoRows)
		mUsers.On("FindByEmail", ctx, "alice@example.com").
			Return(&model.User{ID: "patient-a", PasswordHash: hash}, nil)

		_, errUnknown := svc.Login(ctx, "ghost@example.com", "whatever")
		_, errWrong := svc.Login(ctx, "alice@example.com", "wrong-password")

		assert.ErrorIs(t, errUnknown, ErrInvalidCredentials)
		assert.ErrorIs(t, errWrong, ErrInvalidCredentials)
		assert.Equal(t, errUnknown.Error(), errWrong.Error())
	})

	t.Run("empty credentials short-circuit", func(t *testing.T) {
		mUsers := new(repoMocks.MockUserRepository)
		svc := NewAuthService(mUsers, testSessions(t), 8)

		_, err := svc.Login(ctx, "", "")

		assert.ErrorIs(t, err, ErrInvalidCredentials)
		mUsers.AssertNotCalled(t, "FindByEmail", mock.Anything, mock.Anything)
	})
}

func TestAuthService_Profile(t *testing.T) {
	ctx := context.Background()

	t.Run("returns the account", func(t *testing.T) {
		mUsers := new(repoMocks.MockUserRepository)
		svc := NewAuthService(mUsers, testSessions(t), 8)

		mUsers.On("FindByID", ctx, "patient-a").
			Return(&model.User{ID: "patient-a", Email: "alice@example.com"}, nil)

		u, err := svc.Profile(ctx, "patient-a")

		require.NoError(t, err)
		assert.Equal(t, "alice@example.com", u.Email)
	})

	t.Run("missing account", func(t *testing.T) {
		mUsers := new(repoMocks.MockUserRepository)
		svc := NewAuthService(mUsers, testSessions(t), 8)

		mUsers.On("FindByID", ctx, "ghost").Return(nil, sql.ErrNoRows)

		_, err := svc.Profile(ctx, "ghost")

		assert.ErrorIs(t, err, ErrNotFound)
	})
}
