package dto

import (
	"time"

	"github.com/ignatzorin/talent-sift/internal/board"
	"github.com/ignatzorin/talent-sift/internal/integration/sendgrid"
	"github.com/ignatzorin/talent-sift/internal/session"
)

// ErrorResponse represents a standard error response
type ErrorResponse struct {
	Error string `json:"error"`
}

// StatusResponse - ответ вида {"status": "success"}.
type StatusResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Target  string `json:"target,omitempty"`
}

// SessionResponse - выданный токен и контекст сессии.
type SessionResponse struct {
	SessionID string          `json:"sessionId"`
	Token     string          `json:"token,omitempty"`
	ExpiresAt *time.Time      `json:"expiresAt,omitempty"`
	Context   session.Context `json:"context"`
}

// BoardResponse - доска с готовой строкой "Showing X of Y".
type BoardResponse struct {
	board.View
	Summary string `json:"summary"`
}

// ShortlistResponse - итог отправки кандидата с доски.
type ShortlistResponse struct {
	board.ShortlistResult
	Message string `json:"message,omitempty"`
}

// SendEmailResponse - успешная отправка письма.
type SendEmailResponse struct {
	Success          bool              `json:"success"`
	Message          string            `json:"message"`
	SendgridResponse *sendgrid.Receipt `json:"sendgridResponse"`
}

// SendEmailError - ошибка SendGrid с подробностями.
type SendEmailError struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
