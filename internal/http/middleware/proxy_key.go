package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/talent-sift/internal/validation"
)

// ProxyKeyHeader - заголовок с ключом доступа к прокси-эндпоинтам.
const ProxyKeyHeader = "X-Proxy-Key"

// ProxyKeyMiddleware сверяет X-Proxy-Key с bcrypt-хешем из конфигурации.
func ProxyKeyMiddleware(hash string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !validation.ProxyKeyMatches(hash, c.GetHeader(ProxyKeyHeader)) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		c.Next()
	}
}
