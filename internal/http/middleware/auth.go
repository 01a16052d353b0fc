package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ignatzorin/talent-sift/internal/service"
)

// ContextSessionIDKey - ключ gin.Context с идентификатором сессии (string).
const ContextSessionIDKey = "sessionID"

// SessionMiddleware проверяет токен сессии: заголовок Authorization: Bearer
// или параметр ?token= (для WebSocket, где заголовки недоступны).
func SessionMiddleware(tokens *service.TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := bearerToken(c.GetHeader("Authorization"))
		if raw == "" {
			raw = c.Query("token")
		}
		if raw == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "требуется токен сессии"})
			return
		}

		sessionID, err := tokens.Parse(raw)
		if err != nil || sessionID == uuid.Nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "токен сессии невалиден"})
			return
		}

		c.Set(ContextSessionIDKey, sessionID.String())
		c.Next()
	}
}

func bearerToken(header string) string {
	if !strings.HasPrefix(header, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
}
