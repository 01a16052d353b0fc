package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/talent-sift/internal/board"
	"github.com/ignatzorin/talent-sift/internal/dto"
	"github.com/ignatzorin/talent-sift/internal/http/handlers/common"
	"github.com/ignatzorin/talent-sift/internal/logger"
	"github.com/ignatzorin/talent-sift/internal/service"
	"github.com/ignatzorin/talent-sift/internal/session"
)

// SessionHandler выдаёт токены сессий и управляет их контекстом.
type SessionHandler struct {
	tokens   *service.TokenManager
	sessions session.Store
	boards   *board.Registry
}

// NewSessionHandler создаёт хэндлер сессий.
func NewSessionHandler(tokens *service.TokenManager, sessions session.Store, boards *board.Registry) *SessionHandler {
	return &SessionHandler{tokens: tokens, sessions: sessions, boards: boards}
}

// Start обрабатывает POST /api/session. Тело необязательно.
func (h *SessionHandler) Start(c *gin.Context) {
	var req dto.StartSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		common.RespondBadRequest(c, err.Error())
		return
	}

	token, err := h.tokens.Issue()
	if err != nil {
		common.RespondAppError(c, err)
		return
	}
	sessionID := token.SessionID.String()

	sc, err := session.Update(c.Request.Context(), h.sessions, sessionID, req.Context)
	if err != nil {
		// токен уже выдан, контекст можно задать позже
		logger.Component("session").WithError(err).Warn("не удалось сохранить начальный контекст")
		sc = session.Context{SessionID: sessionID}
	}

	c.JSON(http.StatusCreated, dto.SessionResponse{
		SessionID: sessionID,
		Token:     token.Token,
		ExpiresAt: &token.ExpiresAt,
		Context:   sc,
	})
}

// Get обрабатывает GET /api/session.
func (h *SessionHandler) Get(c *gin.Context) {
	sessionID, err := common.CurrentSessionID(c)
	if err != nil {
		common.RespondUnauthorized(c, "")
		return
	}

	c.JSON(http.StatusOK, dto.SessionResponse{
		SessionID: sessionID,
		Context:   session.Lookup(c.Request.Context(), h.sessions, sessionID),
	})
}

// Reset обрабатывает POST /api/session/reset: контекст и доска сессии очищаются.
func (h *SessionHandler) Reset(c *gin.Context) {
	sessionID, err := common.CurrentSessionID(c)
	if err != nil {
		common.RespondUnauthorized(c, "")
		return
	}

	if err := h.sessions.Clear(c.Request.Context(), sessionID); err != nil {
		common.RespondAppError(c, err)
		return
	}
	h.boards.Reset(sessionID)

	c.JSON(http.StatusOK, dto.StatusResponse{Status: "success"})
}
