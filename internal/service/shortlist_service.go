package service

import (
	"context"
	"strings"

	"github.com/ignatzorin/talent-sift/internal/board"
	"github.com/ignatzorin/talent-sift/internal/domain/entity"
	"github.com/ignatzorin/talent-sift/internal/integration/upstream"
	"github.com/ignatzorin/talent-sift/internal/session"
	"github.com/ignatzorin/talent-sift/internal/shortlist"
)

// ShortlistService связывает доску сессии, контекст сессии и диспетчер отправки.
type ShortlistService struct {
	boards     *board.Registry
	sessions   session.Store
	dispatcher *shortlist.Dispatcher
}

func NewShortlistService(boards *board.Registry, sessions session.Store, dispatcher *shortlist.Dispatcher) *ShortlistService {
	return &ShortlistService{boards: boards, sessions: sessions, dispatcher: dispatcher}
}

// Shortlist отправляет кандидата доски в систему source. Неверный source отклоняется
// до смены статуса кандидата. Source по умолчанию берётся из контекста сессии.
// Начатая отправка не прерывается отменой ctx, её ограничивает только upstream.DefaultTimeout.
func (s *ShortlistService) Shortlist(ctx context.Context, sessionID, candidateID, source string) (board.ShortlistResult, error) {
	sc := session.Lookup(ctx, s.sessions, sessionID)
	if strings.TrimSpace(source) == "" {
		source = sc.Source
	}
	source = shortlist.NormalizeSource(source)
	if _, err := s.dispatcher.Resolve(source); err != nil {
		return board.ShortlistResult{}, err
	}

	submitCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), upstream.DefaultTimeout)
	defer cancel()

	b := s.boards.Get(sessionID)
	return b.Shortlist(submitCtx, candidateID, func(ctx context.Context, c entity.Candidate) error {
		return s.dispatcher.Dispatch(ctx, shortlist.Request{
			SessionID:   sessionID,
			CandidateID: c.CandidateID,
			Submission:  SubmissionFor(c, sc, source, b.CaseID()),
		})
	})
}

// Forward отправляет готовую заявку без доски (прокси-эндпоинт).
func (s *ShortlistService) Forward(ctx context.Context, sub entity.Submission) (string, error) {
	target := shortlist.NormalizeSource(sub.Source)
	err := s.dispatcher.Dispatch(ctx, shortlist.Request{CandidateID: sub.Email, Submission: sub})
	return target, err
}

// SubmissionFor собирает заявку из кандидата и контекста сессии.
// Номер кейса берётся из сессии, иначе из загруженного списка.
func SubmissionFor(c entity.Candidate, sc session.Context, source, boardCaseID string) entity.Submission {
	caseID := sc.CaseID
	if caseID == "" {
		caseID = boardCaseID
	}
	return entity.Submission{
		Source:        source,
		CaseID:        caseID,
		Name:          c.Name,
		Email:         c.Email,
		Phone:         c.Phone,
		Experience:    c.Experience,
		Score:         c.Score,
		Justification: c.Justification,
		Client:        sc.Client,
		Industry:      sc.Industry,
		Owner:         sc.Owner,
		Skills:        sc.SkillsLine(),
	}
}
