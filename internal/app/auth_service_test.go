package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/idusortus/quotes-service/internal/app/result"
	"github.com/idusortus/quotes-service/internal/domain"
	"github.com/idusortus/quotes-service/internal/mocks"
	"github.com/idusortus/quotes-service/internal/ports"
)

type authMocks struct {
	users  *mocks.MockUserRepository
	hasher *mocks.MockPasswordHasher
	tokens *mocks.MockTokenIssuer
}

func newTestAuthService(t *testing.T) (*AuthService, authMocks) {
	t.Helper()

	m := authMocks{
		users:  mocks.NewMockUserRepository(t),
		hasher: mocks.NewMockPasswordHasher(t),
		tokens: mocks.NewMockTokenIssuer(t),
	}

	svc := NewAuthService(AuthServiceConfig{
		Users:  m.users,
		Hasher: m.hasher,
		Tokens: m.tokens,
		Logger: discardLogger(),
	})

	return svc, m
}

func TestNewAuthService_PanicsOnMissingCollaborator(t *testing.T) {
	users := mocks.NewMockUserRepository(t)
	hasher := mocks.NewMockPasswordHasher(t)
	tokens := mocks.NewMockTokenIssuer(t)

	tests := []struct {
		name string
		cfg  AuthServiceConfig
	}{
		{name: "users", cfg: AuthServiceConfig{Hasher: hasher, Tokens: tokens}},
		{name: "hasher", cfg: AuthServiceConfig{Users: users, Tokens: tokens}},
		{name: "tokens", cfg: AuthServiceConfig{Users: users, Hasher: hasher}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Panics(t, func() { NewAuthService(tt.cfg) })
		})
	}
}

func TestAuthService_Register(t *testing.T) {
	valid := RegisterRequest{Email: "  Ada@Example.com ", Password: "secret1", ConfirmPassword: "secret1"}

	t.Run("stores lowercased email with default role", func(t *testing.T) {
		svc, m := newTestAuthService(t)

		m.hasher.EXPECT().Hash("secret1").Return("$hash", nil)
		m.users.EXPECT().Add(mock.Anything, mock.MatchedBy(func(u *domain.User) bool {
			return u.Email == "ada@example.com" &&
				u.PasswordHash == "$hash" &&
				u.HasRole(domain.RoleUser) &&
				u.ID != ""
		})).Return(nil)

		res, err := svc.Register(context.Background(), valid)

		require.NoError(t, err)
		require.True(t, res.IsSuccess())
		assert.Equal(t, "ada@example.com", res.Value().Email)
		assert.NotEmpty(t, res.Value().UserID)
	})

	t.Run("mismatched confirmation never hashes", func(t *testing.T) {
		svc, _ := newTestAuthService(t)

		req := valid
		req.ConfirmPassword = "secret2"

		res, err := svc.Register(context.Background(), req)

		require.NoError(t, err)
		first, ok := res.FirstError()
		require.True(t, ok)
		assert.Equal(t, "confirmPassword", first.Field)
		assert.Equal(t, result.CodeValidationFailed, first.Code)
	})

	t.Run("duplicate email", func(t *testing.T) {
		svc, m := newTestAuthService(t)

		m.hasher.EXPECT().Hash(mock.Anything).Return("$hash", nil)
		m.users.EXPECT().Add(mock.Anything, mock.Anything).
			Return(domain.NewDuplicateError("user", "email already registered"))

		res, err := svc.Register(context.Background(), valid)

		require.NoError(t, err)
		first, ok := res.FirstError()
		require.True(t, ok)
		assert.Equal(t, result.CodeDuplicateEmail, first.Code)
		assert.Equal(t, "email", first.Field)
	})

	t.Run("hash failure is a fault", func(t *testing.T) {
		svc, m := newTestAuthService(t)
		boom := errors.New("entropy exhausted")

		m.hasher.EXPECT().Hash(mock.Anything).Return("", boom)

		_, err := svc.Register(context.Background(), valid)

		require.ErrorIs(t, err, boom)
	})
}

func TestAuthService_Login(t *testing.T) {
	user := &domain.User{
		ID:           "0d8f2f4e-2b61-4f4b-9d3c-3f0a8f1b8e11",
		Email:        "ada@example.com",
		PasswordHash: "$hash",
		Roles:        []string{domain.RoleUser},
	}
	expires := time.Date(2026, 1, 8, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		req       LoginRequest
		setup     func(authMocks)
		wantCode  string
		wantFault bool
	}{
		{
			name: "issues token",
			req:  LoginRequest{Email: "ADA@example.com", Password: "secret1"},
			setup: func(m authMocks) {
				m.users.EXPECT().GetByEmail(mock.Anything, "ada@example.com").Return(user, nil)
				m.hasher.EXPECT().Compare("$hash", "secret1").Return(nil)
				m.tokens.EXPECT().Issue(mock.Anything, user).
					Return(ports.Token{Value: "signed", ExpiresAt: expires}, nil)
			},
		},
		{
			name: "unknown email",
			req:  LoginRequest{Email: "nobody@example.com", Password: "secret1"},
			setup: func(m authMocks) {
				m.users.EXPECT().GetByEmail(mock.Anything, "nobody@example.com").
					Return(nil, domain.NewNotFoundError("user", "nobody@example.com"))
			},
			wantCode: result.CodeInvalidCredentials,
		},
		{
			name: "wrong password",
			req:  LoginRequest{Email: "ada@example.com", Password: "wrong-1"},
			setup: func(m authMocks) {
				m.users.EXPECT().GetByEmail(mock.Anything, "ada@example.com").Return(user, nil)
				m.hasher.EXPECT().Compare("$hash", "wrong-1").Return(domain.ErrUnauthorized)
			},
			wantCode: result.CodeInvalidCredentials,
		},
		{
			name:     "short password rejected before lookup",
			req:      LoginRequest{Email: "ada@example.com", Password: "123"},
			setup:    func(authMocks) {},
			wantCode: result.CodeValidationFailed,
		},
		{
			name: "storage fault",
			req:  LoginRequest{Email: "ada@example.com", Password: "secret1"},
			setup: func(m authMocks) {
				m.users.EXPECT().GetByEmail(mock.Anything, mock.Anything).Return(nil, errConnReset)
			},
			wantFault: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, m := newTestAuthService(t)
			tt.setup(m)

			res, err := svc.Login(context.Background(), tt.req)

			if tt.wantFault {
				require.ErrorIs(t, err, errConnReset)
				return
			}

			require.NoError(t, err)

			if tt.wantCode == "" {
				require.True(t, res.IsSuccess())
				assert.Equal(t, AuthToken{Token: "signed", ExpiresAt: expires}, res.Value())
				return
			}

			first, ok := res.FirstError()
			require.True(t, ok)
			assert.Equal(t, tt.wantCode, first.Code)
		})
	}
}

func TestAuthService_LoginFailuresAreIndistinguishable(t *testing.T) {
	svc, m := newTestAuthService(t)

	m.users.EXPECT().GetByEmail(mock.Anything, "nobody@example.com").
		Return(nil, domain.NewNotFoundError("user", "nobody@example.com"))
	m.users.EXPECT().GetByEmail(mock.Anything, "ada@example.com").
		Return(&domain.User{Email: "ada@example.com", PasswordHash: "$hash"}, nil)
	m.hasher.EXPECT().Compare("$hash", "wrong-1").Return(domain.ErrUnauthorized)

	unknown, err := svc.Login(context.Background(), LoginRequest{Email: "nobody@example.com", Password: "wrong-1"})
	require.NoError(t, err)

	wrong, err := svc.Login(context.Background(), LoginRequest{Email: "ada@example.com", Password: "wrong-1"})
	require.NoError(t, err)

	assert.Equal(t, unknown.Errors(), wrong.Errors())
}
