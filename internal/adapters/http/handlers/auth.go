package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/idusortus/quotes-service/internal/adapters/http/pipeline"
	"github.com/idusortus/quotes-service/internal/app"
	"github.com/idusortus/quotes-service/internal/app/result"
)

// Auth endpoint messages.
const (
	msgRegistered         = "User registered successfully."
	msgRegistrationFailed = "Registration failed."
	msgLoggedIn           = "Login successful."
	msgLoginFailed        = "Login failed."
	msgInvalidCredentials = "Invalid credentials."
)

// AuthHandler serves registration and login.
type AuthHandler struct {
	service *app.AuthService
}

// NewAuthHandler creates an auth handler.
func NewAuthHandler(service *app.AuthService) *AuthHandler {
	return &AuthHandler{service: service}
}

// Register handles POST /auth/register.
func (h *AuthHandler) Register(c *gin.Context, req app.RegisterRequest) error {
	res, err := h.service.Register(c.Request.Context(), req)
	if err != nil {
		return err
	}

	reply(c, res, outcome{
		status:  http.StatusCreated,
		success: msgRegistered,
		failure: msgRegistrationFailed,
	})

	return nil
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(c *gin.Context, req app.LoginRequest) error {
	res, err := h.service.Login(c.Request.Context(), req)
	if err != nil {
		return err
	}

	reply(c, res, outcome{
		status:  http.StatusOK,
		success: msgLoggedIn,
		failure: msgLoginFailed,
		byCode:  map[string]string{result.CodeInvalidCredentials: msgInvalidCredentials},
	})

	return nil
}

// RegisterRoutes registers the auth routes on rg.
func (h *AuthHandler) RegisterRoutes(rg *gin.RouterGroup, b *pipeline.Boundary) {
	auth := rg.Group("/auth")

	auth.POST("/register", b.Wrap(pipeline.Validate(app.RegisterRules, h.Register)))
	auth.POST("/login", b.Wrap(pipeline.Validate(app.LoginRules, h.Login)))
}
