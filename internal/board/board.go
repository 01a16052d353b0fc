package board

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/talent-sift/internal/domain/entity"
	"github.com/ignatzorin/talent-sift/internal/domain/valueobject"
	"github.com/ignatzorin/talent-sift/internal/logger"
	"github.com/ignatzorin/talent-sift/internal/pkg/apperror"
)

// GenericShortlistFailure показывается, когда внешняя система не вернула сообщения.
const GenericShortlistFailure = "Shortlisting failed"

// Причины, по которым повторный вызов Shortlist ничего не сделал.
const (
	SkipInFlight         = "in_flight"
	SkipAlreadySubmitted = "already_submitted"
)

// ErrCandidateNotFound возвращается для неизвестного candidateId.
var ErrCandidateNotFound = apperror.ErrCandidateNotFound

// SubmitFunc отправляет кандидата во внешнюю систему. Вызывается без блокировки доски.
type SubmitFunc func(ctx context.Context, c entity.Candidate) error

// StatusObserver получает копию кандидата после каждой смены статуса.
type StatusObserver func(c entity.Candidate)

// UpstreamMessenger реализуют ошибки, несущие сообщение внешней системы для пользователя.
type UpstreamMessenger interface {
	UpstreamMessage() string
}

// ShortlistResult - итог вызова Shortlist.
type ShortlistResult struct {
	Candidate entity.Candidate `json:"candidate"`
	Skipped   bool             `json:"skipped"`
	Reason    string           `json:"reason,omitempty"`
}

// SubmissionError - неудачная отправка; Message уже готово к показу пользователю.
type SubmissionError struct {
	CandidateID string
	Message     string
	Err         error
}

func (e *SubmissionError) Error() string {
	return fmt.Sprintf("board: отправка кандидата %s не удалась: %s", e.CandidateID, e.Message)
}

func (e *SubmissionError) Unwrap() error {
	return e.Err
}

// SubmissionMessage выбирает сообщение для пользователя: текст внешней системы или общий.
func SubmissionMessage(err error) string {
	var m UpstreamMessenger
	if errors.As(err, &m) {
		if msg := m.UpstreamMessage(); msg != "" {
			return msg
		}
	}
	return GenericShortlistFailure
}

// View - снимок доски для отображения.
type View struct {
	CaseID        string             `json:"caseId,omitempty"`
	ExecutionName string             `json:"exeName,omitempty"`
	Total         int                `json:"total"`
	Shown         int                `json:"shown"`
	Criteria      FilterCriteria     `json:"criteria"`
	Candidates    []entity.Candidate `json:"candidates"`
}

// Board хранит загруженный список кандидатов, текущие критерии и статусы отправки.
// Блокировка не удерживается во время внешних вызовов.
type Board struct {
	mu            sync.RWMutex
	candidates    []entity.Candidate
	index         map[string]int
	criteria      FilterCriteria
	caseID        string
	executionName string
	generation    uint64
	observers     []StatusObserver
}

// New создаёт пустую доску с критериями по умолчанию.
func New() *Board {
	return &Board{
		candidates: []entity.Candidate{},
		index:      map[string]int{},
		criteria:   DefaultCriteria(),
	}
}

// Load разбирает ответ workflow и целиком заменяет список.
func (b *Board) Load(raw []byte) []entity.Candidate {
	return b.LoadBatch(Decode(raw))
}

// LoadBatch заменяет список уже разобранной пачкой. Слияния со старым списком нет.
func (b *Board) LoadBatch(batch Batch) []entity.Candidate {
	candidates := make([]entity.Candidate, len(batch.Candidates))
	index := make(map[string]int, len(batch.Candidates))
	for i, c := range batch.Candidates {
		candidates[i] = c.Clone()
		index[c.CandidateID] = i
	}

	b.mu.Lock()
	b.candidates = candidates
	b.index = index
	b.caseID = batch.CaseID
	b.executionName = batch.ExecutionName
	b.generation++
	b.mu.Unlock()

	logger.Component("board").WithFields(logrus.Fields{
		"case_id":    batch.CaseID,
		"shape":      batch.Shape,
		"candidates": len(candidates),
	}).Info("список кандидатов загружен")

	return cloneAll(candidates)
}

// SetFilter сливает патч с текущими критериями. Видимый список пересчитывается при чтении.
func (b *Board) SetFilter(p FilterPatch) FilterCriteria {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.criteria = b.criteria.Merge(p)
	return b.criteria
}

// ResetFilter возвращает критерии по умолчанию.
func (b *Board) ResetFilter() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.criteria = DefaultCriteria()
}

// Filter возвращает текущие критерии.
func (b *Board) Filter() FilterCriteria {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.criteria
}

// Visible возвращает кандидатов, прошедших все фильтры, в порядке загрузки.
func (b *Board) Visible() []entity.Candidate {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return Apply(b.candidates, b.criteria)
}

// VisibleWith применяет временный патч поверх текущих критериев, не сохраняя его.
func (b *Board) VisibleWith(p FilterPatch) ([]entity.Candidate, FilterCriteria) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	criteria := b.criteria.Merge(p)
	return Apply(b.candidates, criteria), criteria
}

// Snapshot собирает View по текущим критериям.
func (b *Board) Snapshot() View {
	b.mu.RLock()
	defer b.mu.RUnlock()
	visible := Apply(b.candidates, b.criteria)
	return View{
		CaseID:        b.caseID,
		ExecutionName: b.executionName,
		Total:         len(b.candidates),
		Shown:         len(visible),
		Criteria:      b.criteria,
		Candidates:    visible,
	}
}

// Candidates возвращает весь список без фильтрации.
func (b *Board) Candidates() []entity.Candidate {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return cloneAll(b.candidates)
}

// Candidate возвращает кандидата по id.
func (b *Board) Candidate(id string) (entity.Candidate, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	idx, ok := b.index[id]
	if !ok {
		return entity.Candidate{}, ErrCandidateNotFound
	}
	return b.candidates[idx].Clone(), nil
}

// CaseID возвращает идентификатор кейса последней загрузки.
func (b *Board) CaseID() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.caseID
}

// OnStatusChange подписывает наблюдателя на смену статусов отправки.
func (b *Board) OnStatusChange(fn StatusObserver) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.observers = append(b.observers, fn)
}

// Shortlist отправляет кандидата во внешнюю систему через submit.
//
// Из NotSubmitted и Failed кандидат переходит в Submitting, затем в Submitted или Failed.
// Повторный вызов во время отправки и вызов для уже отправленного кандидата ничего не
// делают и возвращают Skipped без ошибки. На каждый принятый вызов приходится ровно один
// вызов submit. Ошибка отправки возвращается как *SubmissionError.
func (b *Board) Shortlist(ctx context.Context, id string, submit SubmitFunc) (ShortlistResult, error) {
	b.mu.Lock()
	idx, ok := b.index[id]
	if !ok {
		b.mu.Unlock()
		return ShortlistResult{}, ErrCandidateNotFound
	}

	c := &b.candidates[idx]
	switch c.ShortlistStatus {
	case valueobject.ShortlistSubmitting:
		snap := c.Clone()
		b.mu.Unlock()
		return ShortlistResult{Candidate: snap, Skipped: true, Reason: SkipInFlight}, nil
	case valueobject.ShortlistSubmitted:
		snap := c.Clone()
		b.mu.Unlock()
		return ShortlistResult{Candidate: snap, Skipped: true, Reason: SkipAlreadySubmitted}, nil
	}

	if err := c.BeginShortlist(); err != nil {
		b.mu.Unlock()
		return ShortlistResult{}, err
	}
	snap := c.Clone()
	generation := b.generation
	observers := b.observers
	b.mu.Unlock()

	notify(observers, snap)

	submitErr := callSubmit(ctx, submit, snap)

	b.mu.Lock()
	if generation != b.generation {
		// список заменили, пока шла отправка; новый список не трогаем
		b.mu.Unlock()
		logger.Component("board").WithField("candidate_id", id).Warn("список перезагружен во время отправки кандидата")
		if submitErr != nil {
			return ShortlistResult{Candidate: snap}, &SubmissionError{CandidateID: id, Message: SubmissionMessage(submitErr), Err: submitErr}
		}
		snap.ShortlistStatus = valueobject.ShortlistSubmitted
		return ShortlistResult{Candidate: snap}, nil
	}

	c = &b.candidates[idx]
	var resultErr error
	if submitErr != nil {
		msg := SubmissionMessage(submitErr)
		_ = c.FailShortlist(msg)
		resultErr = &SubmissionError{CandidateID: id, Message: msg, Err: submitErr}
	} else {
		_ = c.CompleteShortlist()
	}
	snap = c.Clone()
	observers = b.observers
	b.mu.Unlock()

	notify(observers, snap)

	entry := logger.Component("board").WithFields(logrus.Fields{
		"candidate_id": id,
		"status":       snap.ShortlistStatus,
	})
	if resultErr != nil {
		entry.WithError(submitErr).Warn("отправка кандидата не удалась")
	} else {
		entry.Info("кандидат отправлен")
	}

	return ShortlistResult{Candidate: snap}, resultErr
}

// callSubmit превращает panic внутри submit в обычную ошибку, чтобы кандидат не застрял в Submitting.
func callSubmit(ctx context.Context, submit SubmitFunc, c entity.Candidate) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("board: panic при отправке: %v", r)
		}
	}()
	return submit(ctx, c)
}

func notify(observers []StatusObserver, c entity.Candidate) {
	for _, fn := range observers {
		fn(c.Clone())
	}
}

func cloneAll(in []entity.Candidate) []entity.Candidate {
	out := make([]entity.Candidate, len(in))
	for i := range in {
		out[i] = in[i].Clone()
	}
	return out
}
