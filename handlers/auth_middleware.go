package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rosterly/rosterly/services"
)

// AuthMiddleware validates bearer tokens and attaches the actor identity
// to the gin context. Organization and role resolution happen downstream
// in the authz middleware - this layer only answers "who is calling".
type AuthMiddleware struct {
	JWT   *services.JWTService
	Users *services.UserService
}

func NewAuthMiddleware(jwt *services.JWTService, users *services.UserService) *AuthMiddleware {
	return &AuthMiddleware{JWT: jwt, Users: users}
}

// RequireAuth validates the Authorization header and sets user_id and
// user_email for downstream middleware and handlers.
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization header is required"})
			c.Abort()
			return
		}

		token, err := services.ExtractTokenFromHeader(authHeader)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			c.Abort()
			return
		}

		claims, err := m.JWT.ValidateAccessToken(token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			c.Abort()
			return
		}

		c.Set("user_id", claims.Subject)
		c.Set("user_email", claims.Email)

		c.Next()
	}
}
