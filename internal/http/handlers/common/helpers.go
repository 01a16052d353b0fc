package common

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/talent-sift/internal/board"
	"github.com/ignatzorin/talent-sift/internal/dto"
	"github.com/ignatzorin/talent-sift/internal/http/middleware"
	"github.com/ignatzorin/talent-sift/internal/logger"
)

// ErrSessionNotFound is returned when the session middleware did not run
var ErrSessionNotFound = errors.New("сессия не найдена в контексте")

// CurrentSessionID extracts session ID from Gin context
func CurrentSessionID(c *gin.Context) (string, error) {
	raw, exists := c.Get(middleware.ContextSessionIDKey)
	if !exists {
		return "", ErrSessionNotFound
	}

	sessionID, ok := raw.(string)
	if !ok || sessionID == "" {
		return "", ErrSessionNotFound
	}

	return sessionID, nil
}

// BindAndValidate binds JSON request and returns properly formatted error
func BindAndValidate(c *gin.Context, req interface{}) error {
	if err := c.ShouldBindJSON(req); err != nil {
		return fmt.Errorf("ошибка валидации запроса: %w", err)
	}
	return nil
}

// RespondError sends a standardized error response
func RespondError(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, dto.ErrorResponse{Error: message})
}

// RespondAppError maps a service error to status and message.
// Неудачная отправка кандидата отдаётся как 502 с сообщением внешней системы.
func RespondAppError(c *gin.Context, err error) {
	var subErr *board.SubmissionError
	if errors.As(err, &subErr) {
		RespondError(c, http.StatusBadGateway, subErr.Message)
		return
	}

	status, message := middleware.ResolveError(err)
	if status >= http.StatusInternalServerError {
		logger.Component("http").WithError(err).WithField("path", c.Request.URL.Path).Error("ошибка обработки запроса")
	}
	RespondError(c, status, message)
}

// RespondUnauthorized sends a 401 Unauthorized response
func RespondUnauthorized(c *gin.Context, message string) {
	if message == "" {
		message = "требуется авторизация"
	}
	RespondError(c, http.StatusUnauthorized, message)
}

// RespondBadRequest sends a 400 Bad Request response
func RespondBadRequest(c *gin.Context, message string) {
	if message == "" {
		message = "некорректный запрос"
	}
	RespondError(c, http.StatusBadRequest, message)
}
