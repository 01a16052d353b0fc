package shortlist

import (
	"context"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/talent-sift/internal/audit"
	"github.com/ignatzorin/talent-sift/internal/domain/entity"
	"github.com/ignatzorin/talent-sift/internal/logger"
	"github.com/ignatzorin/talent-sift/internal/pkg/apperror"
)

// Цели отправки.
const (
	SourceServiceNow = "servicenow"
	SourceQntrl      = "qntrl"
	SourceEmail      = "email"
)

var (
	ErrMissingSource = apperror.New(apperror.ErrCodeBadRequest, "Missing source")
	ErrInvalidSource = apperror.New(apperror.ErrCodeBadRequest, "Invalid source")
)

// Target - внешняя система, принимающая кандидата.
type Target interface {
	Submit(ctx context.Context, s entity.Submission) error
}

// Request - отправка одного кандидата в рамках сессии.
type Request struct {
	SessionID   string
	CandidateID string
	Submission  entity.Submission
}

// Dispatcher выбирает цель по source и пишет итог в журнал.
type Dispatcher struct {
	targets  map[string]Target
	notifier *audit.Notifier
}

// NewDispatcher создаёт диспетчер. notifier может быть nil.
func NewDispatcher(targets map[string]Target, notifier *audit.Notifier) *Dispatcher {
	normalized := make(map[string]Target, len(targets))
	for name, t := range targets {
		if t != nil {
			normalized[NormalizeSource(name)] = t
		}
	}
	return &Dispatcher{targets: normalized, notifier: notifier}
}

// NormalizeSource приводит source к нижнему регистру без пробелов.
func NormalizeSource(source string) string {
	return strings.ToLower(strings.TrimSpace(source))
}

// Resolve проверяет source и возвращает цель.
func (d *Dispatcher) Resolve(source string) (Target, error) {
	source = NormalizeSource(source)
	if source == "" {
		return nil, ErrMissingSource
	}
	t, ok := d.targets[source]
	if !ok {
		return nil, ErrInvalidSource
	}
	return t, nil
}

// Sources возвращает подключённые цели.
func (d *Dispatcher) Sources() []string {
	out := make([]string, 0, len(d.targets))
	for name := range d.targets {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Dispatch отправляет кандидата ровно один раз. Запись в журнал идёт в фоне
// и не влияет на результат.
func (d *Dispatcher) Dispatch(ctx context.Context, req Request) error {
	target, err := d.Resolve(req.Submission.Source)
	if err != nil {
		return err
	}
	source := NormalizeSource(req.Submission.Source)
	req.Submission.Source = source

	err = target.Submit(ctx, req.Submission)

	entry := logger.Component("shortlist").WithFields(logrus.Fields{
		"session_id":   req.SessionID,
		"candidate_id": req.CandidateID,
		"case_id":      req.Submission.CaseID,
		"target":       source,
	})
	event := audit.Event{
		Type:        audit.EventCandidateShortlisted,
		SessionID:   req.SessionID,
		CaseID:      req.Submission.CaseID,
		CandidateID: req.CandidateID,
		Target:      source,
		Success:     err == nil,
		Candidate:   &req.Submission,
	}
	if err != nil {
		event.Type = audit.EventCandidateShortlistFail
		event.Error = err.Error()
		entry.WithError(err).Warn("внешняя система отклонила кандидата")
	} else {
		entry.Info("кандидат передан во внешнюю систему")
	}
	d.notifier.Notify(event)

	return err
}
