package v1

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/nereus-app/coastal_risk_system/internal/auth"
	"github.com/sirupsen/logrus"
)

// claimsContextKey - ключ, под которым claims кладутся в контекст запроса
const claimsContextKey = "authClaims"

// JWTAuthMiddleware - middleware для аутентификации по bearer-токену.
// Проверка выполняется до любой другой работы; при отказе запрос сразу
// завершается единым ответом 401 без обращения к пайплайну или хранилищу.
func JWTAuthMiddleware(tokens *auth.Manager, log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var token string
		authHeader := c.GetHeader("Authorization")
		if strings.HasPrefix(authHeader, "Bearer ") {
			token = strings.TrimPrefix(authHeader, "Bearer ")
		}

		claims, err := tokens.Verify(token)
		if err != nil {
			log.Warn("Request rejected: missing or invalid bearer token")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or missing token"})
			return
		}

		c.Set(claimsContextKey, claims)
		c.Next()
	}
}

// claimsFromContext достает идентичность запроса, положенную middleware
func claimsFromContext(c *gin.Context) (*auth.Claims, bool) {
	value, exists := c.Get(claimsContextKey)
	if !exists {
		return nil, false
	}
	claims, ok := value.(*auth.Claims)
	return claims, ok
}
