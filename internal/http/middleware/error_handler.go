package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/talent-sift/internal/logger"
	"github.com/ignatzorin/talent-sift/internal/pkg/apperror"
)

// ErrorHandler превращает ошибки, добавленные через c.Error, в JSON ответ.
// AppError отдаётся со своим статусом и сообщением, остальное маскируется.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() || len(c.Errors) == 0 {
			return
		}

		err := c.Errors.Last().Err
		status, message := ResolveError(err)

		entry := logger.Component("http").WithFields(logrus.Fields{
			"error":  err.Error(),
			"path":   c.Request.URL.Path,
			"method": c.Request.Method,
			"status": status,
		})
		if status >= http.StatusInternalServerError {
			entry.Error("ошибка обработки запроса")
		} else {
			entry.Warn("запрос отклонён")
		}

		c.JSON(status, gin.H{"error": message})
	}
}

// ResolveError возвращает HTTP статус и безопасное для клиента сообщение.
func ResolveError(err error) (int, string) {
	if appErr, ok := apperror.As(err); ok {
		status := appErr.HTTPStatus
		if status == 0 {
			status = http.StatusInternalServerError
		}
		return status, appErr.Message
	}
	return http.StatusInternalServerError, "внутренняя ошибка сервера"
}
