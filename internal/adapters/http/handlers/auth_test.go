package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/idusortus/quotes-service/internal/adapters/auth"
	"github.com/idusortus/quotes-service/internal/adapters/storage/memory"
	"github.com/idusortus/quotes-service/internal/app"
	"github.com/idusortus/quotes-service/internal/app/result"
	"github.com/idusortus/quotes-service/internal/domain"
	"github.com/idusortus/quotes-service/internal/mocks"
	"github.com/idusortus/quotes-service/internal/ports"
)

func newAuthEngine(t *testing.T, users ports.UserRepository) (*gin.Engine, *auth.JWTIssuer) {
	t.Helper()

	issuer, err := auth.NewJWTIssuer(auth.JWTConfig{
		Key:      strings.Repeat("s", auth.MinKeyLength),
		Issuer:   "quotes-service",
		Audience: "quotes-clients",
		Lifetime: time.Hour,
	})
	require.NoError(t, err)

	service := app.NewAuthService(app.AuthServiceConfig{
		Users:  users,
		Hasher: auth.NewBcryptHasher(bcrypt.MinCost),
		Tokens: issuer,
		Logger: discard,
	})

	engine := gin.New()
	NewAuthHandler(service).RegisterRoutes(engine.Group("/api/v1"), newBoundary())

	return engine, issuer
}

func TestAuthHandler_RegisterAndLogin(t *testing.T) {
	engine, issuer := newAuthEngine(t, memory.NewStore().Users())

	rec, env := do(t, engine, http.MethodPost, "/api/v1/auth/register",
		`{"email":"Reader@Example.com","password":"hunter22","confirmPassword":"hunter22"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, msgRegistered, env.Message)

	var user app.RegisteredUser
	require.NoError(t, json.Unmarshal(*env.Data, &user))
	assert.Equal(t, "reader@example.com", user.Email)
	assert.NotEmpty(t, user.UserID)

	rec, env = do(t, engine, http.MethodPost, "/api/v1/auth/login",
		`{"email":"reader@example.com","password":"hunter22"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, msgLoggedIn, env.Message)

	var token app.AuthToken
	require.NoError(t, json.Unmarshal(*env.Data, &token))

	claims, err := issuer.Verify(context.Background(), token.Token)
	require.NoError(t, err)
	assert.Equal(t, user.UserID, claims.Subject)
	assert.True(t, claims.HasRole(domain.RoleUser))
}

func TestAuthHandler_Register_Failures(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		wantStatus  int
		wantMessage string
		wantCode    string
		wantField   string
	}{
		{
			name:        "duplicate email",
			body:        `{"email":"TAKEN@example.com","password":"hunter22","confirmPassword":"hunter22"}`,
			wantStatus:  http.StatusConflict,
			wantMessage: msgRegistrationFailed,
			wantCode:    result.CodeDuplicateEmail,
			wantField:   "email",
		},
		{
			name:        "passwords differ",
			body:        `{"email":"new@example.com","password":"hunter22","confirmPassword":"hunter23"}`,
			wantStatus:  http.StatusBadRequest,
			wantMessage: "One or more validation errors occurred.",
			wantCode:    result.CodeValidationFailed,
			wantField:   "confirmPassword",
		},
		{
			name:        "invalid email",
			body:        `{"email":"not-an-email","password":"hunter22","confirmPassword":"hunter22"}`,
			wantStatus:  http.StatusBadRequest,
			wantMessage: "One or more validation errors occurred.",
			wantCode:    result.CodeValidationFailed,
			wantField:   "email",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			users := memory.NewStore().Users()
			require.NoError(t, users.Add(context.Background(), &domain.User{
				ID:    "existing",
				Email: "taken@example.com",
				Roles: []string{domain.RoleUser},
			}))

			engine, _ := newAuthEngine(t, users)

			rec, env := do(t, engine, http.MethodPost, "/api/v1/auth/register", tt.body)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantMessage, env.Message)
			require.Len(t, env.Errors, 1)
			assert.Equal(t, tt.wantCode, env.Errors[0].Code)
			assert.Equal(t, tt.wantField, env.Errors[0].Field)
		})
	}
}

func TestAuthHandler_Login_DoesNotRevealWhichCredentialFailed(t *testing.T) {
	engine, _ := newAuthEngine(t, memory.NewStore().Users())

	_, _ = do(t, engine, http.MethodPost, "/api/v1/auth/register",
		`{"email":"reader@example.com","password":"hunter22","confirmPassword":"hunter22"}`)

	unknown, unknownEnv := do(t, engine, http.MethodPost, "/api/v1/auth/login",
		`{"email":"nobody@example.com","password":"hunter22"}`)
	wrong, wrongEnv := do(t, engine, http.MethodPost, "/api/v1/auth/login",
		`{"email":"reader@example.com","password":"hunter99"}`)

	assert.Equal(t, http.StatusUnauthorized, unknown.Code)
	assert.Equal(t, http.StatusUnauthorized, wrong.Code)
	assert.Equal(t, msgInvalidCredentials, unknownEnv.Message)
	assert.Equal(t, unknownEnv, wrongEnv)
}

func TestAuthHandler_Login_StorageDown(t *testing.T) {
	users := mocks.NewMockUserRepository(t)
	users.EXPECT().GetByEmail(mock.Anything, "reader@example.com").
		Return(nil, domain.NewUnavailableError("postgres", "get user", errors.New("connection refused")))

	engine, _ := newAuthEngine(t, users)

	rec, env := do(t, engine, http.MethodPost, "/api/v1/auth/login",
		`{"email":"reader@example.com","password":"hunter22"}`)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, result.CodeDBUnavailable, env.Errors[0].Code)
}
