package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/talent-sift/internal/dto"
	"github.com/ignatzorin/talent-sift/internal/http/handlers/common"
	"github.com/ignatzorin/talent-sift/internal/integration/sendgrid"
	"github.com/ignatzorin/talent-sift/internal/integration/upstream"
	"github.com/ignatzorin/talent-sift/internal/logger"
	"github.com/ignatzorin/talent-sift/internal/pkg/apperror"
	"github.com/ignatzorin/talent-sift/internal/service"
)

// ProxyHandler - серверные прокси для внешних систем: отправка кандидата и письмо в inbox.
// Ответы совпадают с тем, что ждёт существующий фронтенд.
type ProxyHandler struct {
	shortlists *service.ShortlistService
	mailer     *sendgrid.Mailer
}

// NewProxyHandler создаёт прокси-хэндлер.
func NewProxyHandler(shortlists *service.ShortlistService, mailer *sendgrid.Mailer) *ProxyHandler {
	return &ProxyHandler{shortlists: shortlists, mailer: mailer}
}

// Shortlist обрабатывает POST /api/shortlist.
func (h *ProxyHandler) Shortlist(c *gin.Context) {
	var req dto.ShortlistProxyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	target, err := h.shortlists.Forward(c.Request.Context(), req)
	if err != nil {
		if appErr, ok := apperror.As(err); ok && appErr.HTTPStatus == http.StatusBadRequest {
			common.RespondError(c, http.StatusBadRequest, appErr.Message)
			return
		}
		logger.Component("proxy").WithError(err).WithField("source", req.Source).Error("Shortlist error")
		common.RespondError(c, http.StatusInternalServerError, "Shortlist failed")
		return
	}

	c.JSON(http.StatusOK, dto.StatusResponse{Status: "success", Target: target})
}

// SendEmail обрабатывает /api/send-email. Принимается только POST.
func (h *ProxyHandler) SendEmail(c *gin.Context) {
	if c.Request.Method != http.MethodPost {
		common.RespondError(c, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	if h.mailer == nil || !h.mailer.Configured() {
		logger.Component("proxy").Error("SendGrid не настроен")
		common.RespondError(c, http.StatusInternalServerError, sendgrid.ErrNotConfigured.Error())
		return
	}

	var req dto.SendEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}
	if req.Name == "" || req.Email == "" {
		common.RespondBadRequest(c, "Missing candidate name or email")
		return
	}

	receipt, err := h.mailer.Send(c.Request.Context(), req.Submission())
	if err != nil {
		details := err.Error()
		var upErr *upstream.Error
		if errors.As(err, &upErr) && upErr.Body != "" {
			details = upErr.Body
		}
		logger.Component("proxy").WithError(err).Error("SendGrid error")
		c.JSON(http.StatusInternalServerError, dto.SendEmailError{Error: "Failed to send email", Details: details})
		return
	}

	c.JSON(http.StatusOK, dto.SendEmailResponse{Success: true, Message: "Email sent", SendgridResponse: receipt})
}
