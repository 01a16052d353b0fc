package entity

import (
	"strings"
	"time"

	"github.com/ignatzorin/talent-sift/internal/domain/valueobject"
	"github.com/ignatzorin/talent-sift/internal/pkg/apperror"
)

const (
	// NoEmail и NoPhone подставляются вместо отсутствующих контактов при загрузке.
	NoEmail = "No email"
	NoPhone = "No phone"

	// SentinelWithheld - значение, которым внешний источник скрывает контакт.
	SentinelWithheld = "xxx"
)

// Candidate - один кандидат из ранжированного списка.
type Candidate struct {
	CandidateID     string                      `json:"candidateId"`
	Name            string                      `json:"name"`
	Score           float64                     `json:"score"`
	Experience      float64                     `json:"experience"`
	Email           string                      `json:"email"`
	Phone           string                      `json:"phone"`
	Justification   string                      `json:"justification"`
	KeySkills       []string                    `json:"keySkills,omitempty"`
	ExecutionName   string                      `json:"exeName,omitempty"`
	ShortlistStatus valueobject.ShortlistStatus `json:"shortlistStatus"`
	LastError       string                      `json:"lastError,omitempty"`
	UpdatedAt       time.Time                   `json:"updatedAt"`
}

// HasEmail сообщает, что email не был заменён заглушкой.
func (c *Candidate) HasEmail() bool {
	return c.Email != "" && c.Email != NoEmail
}

// HasPhone сообщает, что телефон не был заменён заглушкой.
func (c *Candidate) HasPhone() bool {
	return c.Phone != "" && c.Phone != NoPhone
}

// Matches проверяет вхождение строки в имя, email или обоснование без учёта регистра.
// Пустой запрос совпадает со всеми.
func (c *Candidate) Matches(query string) bool {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return true
	}
	return strings.Contains(strings.ToLower(c.Name), q) ||
		strings.Contains(strings.ToLower(c.Email), q) ||
		strings.Contains(strings.ToLower(c.Justification), q)
}

// BeginShortlist переводит кандидата в Submitting.
func (c *Candidate) BeginShortlist() error {
	if !c.ShortlistStatus.CanTransitionTo(valueobject.ShortlistSubmitting) {
		return apperror.New(apperror.ErrCodeConflict, "кандидат уже отправлен или отправляется")
	}
	c.ShortlistStatus = valueobject.ShortlistSubmitting
	c.LastError = ""
	c.UpdatedAt = time.Now()
	return nil
}

// CompleteShortlist фиксирует успешную отправку.
func (c *Candidate) CompleteShortlist() error {
	if !c.ShortlistStatus.CanTransitionTo(valueobject.ShortlistSubmitted) {
		return apperror.New(apperror.ErrCodeConflict, "завершить можно только отправляемого кандидата")
	}
	c.ShortlistStatus = valueobject.ShortlistSubmitted
	c.LastError = ""
	c.UpdatedAt = time.Now()
	return nil
}

// FailShortlist фиксирует неудачную отправку с сообщением для пользователя.
func (c *Candidate) FailShortlist(message string) error {
	if !c.ShortlistStatus.CanTransitionTo(valueobject.ShortlistFailed) {
		return apperror.New(apperror.ErrCodeConflict, "отметить ошибку можно только у отправляемого кандидата")
	}
	c.ShortlistStatus = valueobject.ShortlistFailed
	c.LastError = message
	c.UpdatedAt = time.Now()
	return nil
}

// Clone возвращает копию, не разделяющую срез навыков.
func (c Candidate) Clone() Candidate {
	if c.KeySkills != nil {
		c.KeySkills = append([]string(nil), c.KeySkills...)
	}
	return c
}
