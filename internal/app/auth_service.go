package app

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/idusortus/quotes-service/internal/app/result"
	"github.com/idusortus/quotes-service/internal/domain"
	"github.com/idusortus/quotes-service/internal/ports"
)

const (
	invalidCredentialsMessage = "Invalid credentials."
	duplicateEmailMessage     = "An account with this email address already exists."
)

// AuthService registers accounts and exchanges credentials for bearer tokens.
type AuthService struct {
	users  ports.UserRepository
	hasher ports.PasswordHasher
	tokens ports.TokenIssuer
	exec   *Executor
	logger *slog.Logger
	now    func() time.Time
}

// AuthServiceConfig contains the dependencies of the auth service.
type AuthServiceConfig struct {
	Users  ports.UserRepository
	Hasher ports.PasswordHasher
	Tokens ports.TokenIssuer
	Logger *slog.Logger
}

// NewAuthService creates an auth service. It panics if a collaborator is missing.
func NewAuthService(cfg AuthServiceConfig) *AuthService {
	switch {
	case cfg.Users == nil:
		panic("app: user repository is required")
	case cfg.Hasher == nil:
		panic("app: password hasher is required")
	case cfg.Tokens == nil:
		panic("app: token issuer is required")
	}

	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	return &AuthService{
		users:  cfg.Users,
		hasher: cfg.Hasher,
		tokens: cfg.Tokens,
		exec:   NewExecutor(cfg.Logger),
		logger: cfg.Logger,
		now:    time.Now,
	}
}

// Register creates an account with the default role.
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (result.Result[RegisteredUser], error) {
	return Execute(ctx, s.exec, Operation[RegisterRequest, *domain.User, RegisteredUser]{
		Name:     "Register",
		Validate: RegisterRules.Validate,
		Delegate: func(ctx context.Context, req RegisterRequest) (*domain.User, error) {
			hash, err := s.hasher.Hash(req.Password)
			if err != nil {
				return nil, err
			}

			user := &domain.User{
				ID:           uuid.NewString(),
				Email:        normalizeEmail(req.Email),
				PasswordHash: hash,
				Roles:        []string{domain.RoleUser},
				CreatedAt:    s.now().UTC(),
			}

			if err := s.users.Add(ctx, user); err != nil {
				return nil, err
			}

			s.logger.InfoContext(ctx, "user registered", slog.String("user_id", user.ID))

			return user, nil
		},
		Reject: func(_ RegisterRequest, err error) (result.APIError, bool) {
			if domain.IsConflict(err) {
				return result.NewFieldError("email", result.CodeDuplicateEmail, duplicateEmailMessage), true
			}

			return result.APIError{}, false
		},
		Map: func(u *domain.User) RegisteredUser {
			return RegisteredUser{UserID: u.ID, Email: u.Email}
		},
	}, req)
}

// Login verifies credentials and issues a token.
// An unknown email and a wrong password fail identically.
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (result.Result[AuthToken], error) {
	return Execute(ctx, s.exec, Operation[LoginRequest, ports.Token, AuthToken]{
		Name:     "Login",
		Validate: LoginRules.Validate,
		Delegate: func(ctx context.Context, req LoginRequest) (ports.Token, error) {
			user, err := s.users.GetByEmail(ctx, normalizeEmail(req.Email))
			if err != nil {
				return ports.Token{}, err
			}

			if err := s.hasher.Compare(user.PasswordHash, req.Password); err != nil {
				return ports.Token{}, err
			}

			return s.tokens.Issue(ctx, user)
		},
		Reject: func(_ LoginRequest, err error) (result.APIError, bool) {
			if domain.IsNotFound(err) || domain.IsUnauthorized(err) {
				return result.NewError(result.CodeInvalidCredentials, invalidCredentialsMessage), true
			}

			return result.APIError{}, false
		},
		Map: func(t ports.Token) AuthToken {
			return AuthToken{Token: t.Value, ExpiresAt: t.ExpiresAt}
		},
	}, req)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
