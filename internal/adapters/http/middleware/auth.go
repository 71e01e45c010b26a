package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/idusortus/quotes-service/internal/adapters/http/dto"
	"github.com/idusortus/quotes-service/internal/app/result"
	"github.com/idusortus/quotes-service/internal/platform/logging"
	"github.com/idusortus/quotes-service/internal/ports"
)

// ContextKeyClaims is the gin context key for verified claims.
const ContextKeyClaims = "claims"

const bearerPrefix = "Bearer "

// Auth failure messages.
const (
	AuthRequiredMessage = "Authentication required."
	MissingTokenMessage = "A bearer token is required."
	InvalidTokenMessage = "The bearer token is invalid or expired."
	ForbiddenMessage    = "You do not have permission to perform this action."
	MissingRoleMessage  = "The required role is missing."
)

// TokenVerifier checks a bearer token. ports.TokenIssuer satisfies it.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (*ports.Claims, error)
}

// GetClaims returns the claims stored by RequireAuth, or nil.
func GetClaims(c *gin.Context) *ports.Claims {
	if claims, exists := c.Get(ContextKeyClaims); exists {
		if cl, ok := claims.(*ports.Claims); ok {
			return cl
		}
	}

	return nil
}

// RequireAuth rejects requests without a valid "Authorization: Bearer" token
// with a 401 envelope. Verified claims are stored in the gin context.
func RequireAuth(verifier TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			abortUnauthorized(c, MissingTokenMessage)
			return
		}

		ctx := c.Request.Context()

		claims, err := verifier.Verify(ctx, raw)
		if err != nil {
			logging.FromContext(ctx).DebugContext(ctx, "bearer token rejected", "error", err)
			abortUnauthorized(c, InvalidTokenMessage)

			return
		}

		c.Set(ContextKeyClaims, claims)
		c.Next()
	}
}

// RequireRole rejects authenticated requests whose claims lack role with 403.
// It must run after RequireAuth.
func RequireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := GetClaims(c)
		if claims == nil {
			abortUnauthorized(c, MissingTokenMessage)
			return
		}

		if !claims.HasRole(role) {
			c.AbortWithStatusJSON(http.StatusForbidden, dto.Error(ForbiddenMessage,
				result.NewError(result.CodeUnauthorized, MissingRoleMessage)))

			return
		}

		c.Next()
	}
}

func bearerToken(header string) (string, bool) {
	if len(header) < len(bearerPrefix) || !strings.EqualFold(header[:len(bearerPrefix)], bearerPrefix) {
		return "", false
	}

	token := strings.TrimSpace(header[len(bearerPrefix):])

	return token, token != ""
}

func abortUnauthorized(c *gin.Context, detail string) {
	c.Header("WWW-Authenticate", `Bearer realm="quotes"`)
	c.AbortWithStatusJSON(http.StatusUnauthorized, dto.Error(AuthRequiredMessage,
		result.NewError(result.CodeUnauthorized, detail)))
}
