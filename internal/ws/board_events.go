package ws

import (
	"github.com/ignatzorin/talent-sift/internal/board"
	"github.com/ignatzorin/talent-sift/internal/domain/entity"
	"github.com/ignatzorin/talent-sift/internal/logger"
)

// EventCandidateStatus - событие смены статуса отправки кандидата.
const EventCandidateStatus = "candidate.status"

// CandidateStatus - полезная нагрузка EventCandidateStatus.
type CandidateStatus struct {
	CandidateID string `json:"candidateId"`
	Status      string `json:"status"`
	Error       string `json:"error,omitempty"`
}

// Attach подписывает доску сессии на рассылку смен статуса.
// Подходит для board.Registry.OnCreate.
func (h *Hub) Attach(sessionID string, b *board.Board) {
	b.OnStatusChange(func(c entity.Candidate) {
		err := h.Broadcast(sessionID, EventCandidateStatus, CandidateStatus{
			CandidateID: c.CandidateID,
			Status:      string(c.ShortlistStatus),
			Error:       c.LastError,
		})
		if err != nil {
			logger.Component("ws").WithError(err).Warn("не удалось разослать статус кандидата")
		}
	})
}
