package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"pride-notify/internal/pkg/apikey"
	"pride-notify/internal/pkg/jwt"

	"github.com/gin-gonic/gin"
)

const (
	ctxSubjectKey  = "subject"
	ctxUserRoleKey = "user_role"

	APIKeyHeader = "X-API-Key"
)

type TokenValidator interface {
	ValidateToken(token string) (*jwt.Claims, error)
}

type AuthMiddleware struct {
	tokenValidator TokenValidator
	triggerKeyHash string
}

func NewAuthMiddleware(tokenValidator TokenValidator, triggerKeyHash string) *AuthMiddleware {
	return &AuthMiddleware{
		tokenValidator: tokenValidator,
		triggerKeyHash: triggerKeyHash,
	}
}

func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": gin.H{"message": "Access token required"},
			})
			c.Abort()
			return
		}

		claims, err := m.tokenValidator.ValidateToken(token)
		if err != nil {
			slog.Warn("Token validation failed in auth middleware", "error", err.Error())
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": gin.H{"message": "Invalid or expired token"},
			})
			c.Abort()
			return
		}

		c.Set(ctxSubjectKey, claims.Subject)
		c.Set(ctxUserRoleKey, claims.Role)
		c.Set("jwt_claims", map[string]any{
			"user_id": claims.Subject,
			"role":    claims.Role,
		})
		c.Next()
	}
}

func (m *AuthMiddleware) RequireRoleAtLeast(minRole string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, ok := GetUserRole(c)
		if !ok {
			// must run after RequireAuth
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": gin.H{"message": "Internal server error"},
			})
			c.Abort()
			return
		}

		if !jwt.RoleAtLeast(role, minRole) {
			c.JSON(http.StatusForbidden, gin.H{
				"error": gin.H{"message": "Insufficient permissions"},
			})
			c.Abort()
			return
		}

		c.Next()
	}
}

// RequireAPIKey guards the trigger endpoints. With no key hash configured
// they answer 404 as if they did not exist.
func (m *AuthMiddleware) RequireAPIKey() gin.HandlerFunc {
	return func(c *gin.Context) {
		if m.triggerKeyHash == "" {
			c.JSON(http.StatusNotFound, gin.H{
				"error": gin.H{"message": "Not found"},
			})
			c.Abort()
			return
		}

		key := strings.TrimSpace(c.GetHeader(APIKeyHeader))
		if err := apikey.Verify(m.triggerKeyHash, key); err != nil {
			slog.Warn("Trigger API key rejected", "client_ip", c.ClientIP())
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": gin.H{"message": "Invalid API key"},
			})
			c.Abort()
			return
		}

		c.Set("jwt_claims", map[string]any{"user_id": "trigger", "role": "system"})
		c.Next()
	}
}

func bearerToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if authHeader != "" && strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimSpace(authHeader[len("Bearer "):])
	}
	return ""
}

func GetSubject(c *gin.Context) (string, bool) {
	v, exists := c.Get(ctxSubjectKey)
	if !exists {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

func GetUserRole(c *gin.Context) (string, bool) {
	v, exists := c.Get(ctxUserRoleKey)
	if !exists {
		return "", false
	}
	role, ok := v.(string)
	return role, ok
}
