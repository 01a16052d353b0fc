package audit

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/talent-sift/internal/domain/entity"
	"github.com/ignatzorin/talent-sift/internal/goroutine"
	"github.com/ignatzorin/talent-sift/internal/logger"
)

// Типы событий.
const (
	EventCandidateShortlisted   = "candidate.shortlisted"
	EventCandidateShortlistFail = "candidate.shortlist_failed"
	EventRunCompleted           = "run.completed"
)

// RunInfo - сведения о запуске ранжирования.
type RunInfo struct {
	Email       string `json:"email"`
	JobTitle    string `json:"jobTitle,omitempty"`
	ResumeCount int    `json:"resumeCount"`
}

// Event - запись журнала. Для отправки кандидата заполнен Candidate, для запуска - Run.
type Event struct {
	ID          string             `json:"id"`
	Type        string             `json:"type"`
	OccurredAt  time.Time          `json:"occurredAt"`
	SessionID   string             `json:"sessionId,omitempty"`
	CaseID      string             `json:"caseId,omitempty"`
	CandidateID string             `json:"candidateId,omitempty"`
	Target      string             `json:"target,omitempty"`
	Success     bool               `json:"success"`
	Error       string             `json:"error,omitempty"`
	Candidate   *entity.Submission `json:"candidate,omitempty"`
	Run         *RunInfo           `json:"run,omitempty"`
}

// Sink - получатель событий журнала.
type Sink interface {
	Name() string
	Record(ctx context.Context, e Event) error
}

// Notifier рассылает события по всем Sink в фоне. Ошибки получателей
// логируются и отбрасываются, повторов нет; на основную операцию они не влияют.
type Notifier struct {
	sinks   []Sink
	timeout time.Duration
	wg      sync.WaitGroup
}

// NewNotifier создаёт рассыльщик. timeout ограничивает каждый вызов Sink.
func NewNotifier(timeout time.Duration, sinks ...Sink) *Notifier {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Notifier{sinks: sinks, timeout: timeout}
}

// Add подключает ещё один Sink. Вызывать до начала работы.
func (n *Notifier) Add(s Sink) {
	if n == nil || s == nil {
		return
	}
	n.sinks = append(n.sinks, s)
}

// Notify не блокирует вызывающего.
func (n *Notifier) Notify(e Event) {
	if n == nil || len(n.sinks) == 0 {
		return
	}
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.OccurredAt.IsZero() {
		e.OccurredAt = time.Now().UTC()
	}

	for _, sink := range n.sinks {
		sink := sink
		n.wg.Add(1)
		goroutine.SafeGo(func() {
			defer n.wg.Done()
			n.deliver(sink, e)
		})
	}
}

func (n *Notifier) deliver(sink Sink, e Event) {
	ctx, cancel := context.WithTimeout(context.Background(), n.timeout)
	defer cancel()

	if err := sink.Record(ctx, e); err != nil {
		logger.Component("audit").WithFields(logrus.Fields{
			"sink":     sink.Name(),
			"event":    e.Type,
			"event_id": e.ID,
			"error":    err.Error(),
		}).Warn("не удалось записать событие журнала")
	}
}

// Wait ждёт завершения уже запущенных доставок (для graceful shutdown и тестов).
func (n *Notifier) Wait() {
	if n == nil {
		return
	}
	n.wg.Wait()
}
