package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"

	"github.com/ignatzorin/talent-sift/internal/session"
)

// HealthHandler предоставляет endpoint для проверки здоровья сервиса.
type HealthHandler struct {
	db       *sqlx.DB
	sessions session.Store
}

// NewHealthHandler создаёт новый health handler. db может быть nil, если Postgres не настроен.
func NewHealthHandler(db *sqlx.DB, sessions session.Store) *HealthHandler {
	return &HealthHandler{db: db, sessions: sessions}
}

// HealthResponse представляет ответ health check.
type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Checks    map[string]string `json:"checks"`
}

// Health обрабатывает GET /health.
func (h *HealthHandler) Health(c *gin.Context) {
	checks := make(map[string]string)
	status := "healthy"

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if h.db == nil {
		checks["database"] = "disabled"
	} else if err := h.db.PingContext(ctx); err != nil {
		checks["database"] = "unhealthy: " + err.Error()
		status = "unhealthy"
	} else {
		checks["database"] = "healthy"
	}

	if h.sessions == nil {
		checks["sessions"] = "disabled"
	} else if err := h.sessions.Ping(ctx); err != nil {
		checks["sessions"] = "unhealthy: " + err.Error()
		status = "unhealthy"
	} else {
		checks["sessions"] = "healthy"
	}

	statusCode := http.StatusOK
	if status == "unhealthy" {
		statusCode = http.StatusServiceUnavailable
	}

	c.JSON(statusCode, HealthResponse{
		Status:    status,
		Timestamp: time.Now(),
		Checks:    checks,
	})
}
