package valueobject

import "github.com/ignatzorin/talent-sift/internal/pkg/apperror"

// ShortlistStatus - состояние отправки кандидата во внешнюю систему.
type ShortlistStatus string

const (
	ShortlistNotSubmitted ShortlistStatus = "not_submitted"
	ShortlistSubmitting   ShortlistStatus = "submitting"
	ShortlistSubmitted    ShortlistStatus = "submitted"
	ShortlistFailed       ShortlistStatus = "failed"
)

func (s ShortlistStatus) IsValid() bool {
	switch s {
	case ShortlistNotSubmitted, ShortlistSubmitting, ShortlistSubmitted, ShortlistFailed:
		return true
	}
	return false
}

// CanTransitionTo проверяет переход по таблице состояний.
// Submitted - терминальное состояние, из Failed разрешён повтор.
func (s ShortlistStatus) CanTransitionTo(newStatus ShortlistStatus) bool {
	transitions := map[ShortlistStatus][]ShortlistStatus{
		ShortlistNotSubmitted: {ShortlistSubmitting},
		ShortlistSubmitting:   {ShortlistSubmitted, ShortlistFailed},
		ShortlistSubmitted:    {},
		ShortlistFailed:       {ShortlistSubmitting},
	}

	allowed, ok := transitions[s]
	if !ok {
		return false
	}

	for _, status := range allowed {
		if status == newStatus {
			return true
		}
	}
	return false
}

// IsTerminal сообщает, что дальнейших переходов нет.
func (s ShortlistStatus) IsTerminal() bool {
	return s == ShortlistSubmitted
}

func NewShortlistStatus(status string) (ShortlistStatus, error) {
	s := ShortlistStatus(status)
	if !s.IsValid() {
		return "", apperror.New(apperror.ErrCodeValidation, "некорректный статус отправки")
	}
	return s, nil
}
