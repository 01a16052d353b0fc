package session

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/talent-sift/internal/logger"
)

// ErrNotFound - в хранилище нет контекста для сессии.
var ErrNotFound = errors.New("session: контекст не найден")

// Context - контекст работы пользователя: последний кейс и данные вакансии.
// Заполняется при старте сессии и после запуска workflow, читается при отправке
// кандидата, очищается действием "новая сессия".
type Context struct {
	SessionID string    `json:"sessionId"`
	CaseID    string    `json:"caseId,omitempty"`
	Industry  string    `json:"industry,omitempty"`
	Client    string    `json:"client,omitempty"`
	Owner     string    `json:"owner,omitempty"`
	Requestor string    `json:"requestor,omitempty"`
	KeySkills []string  `json:"keySkills,omitempty"`
	Source    string    `json:"source,omitempty"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Patch - частичное обновление контекста; nil поля не меняются.
type Patch struct {
	CaseID    *string  `json:"caseId,omitempty"`
	Industry  *string  `json:"industry,omitempty"`
	Client    *string  `json:"client,omitempty"`
	Owner     *string  `json:"owner,omitempty"`
	Requestor *string  `json:"requestor,omitempty"`
	KeySkills []string `json:"keySkills,omitempty"`
	Source    *string  `json:"source,omitempty"`
}

// Apply возвращает контекст с применённым патчем.
func (c Context) Apply(p Patch) Context {
	set := func(dst *string, v *string) {
		if v != nil {
			*dst = strings.TrimSpace(*v)
		}
	}
	set(&c.CaseID, p.CaseID)
	set(&c.Industry, p.Industry)
	set(&c.Client, p.Client)
	set(&c.Owner, p.Owner)
	set(&c.Requestor, p.Requestor)
	set(&c.Source, p.Source)
	if p.KeySkills != nil {
		c.KeySkills = append([]string(nil), p.KeySkills...)
	}
	c.UpdatedAt = time.Now()
	return c
}

// SkillsLine склеивает навыки через запятую, как их ждут внешние системы.
func (c Context) SkillsLine() string {
	if len(c.KeySkills) == 0 {
		return "No Skills"
	}
	return strings.Join(c.KeySkills, ", ")
}

// Store хранит Context между запросами одной сессии.
type Store interface {
	Get(ctx context.Context, sessionID string) (Context, error)
	Save(ctx context.Context, c Context) error
	Clear(ctx context.Context, sessionID string) error
	Ping(ctx context.Context) error
}

// Lookup читает контекст и деградирует до пустого, если его нет или хранилище недоступно.
func Lookup(ctx context.Context, store Store, sessionID string) Context {
	c, err := store.Get(ctx, sessionID)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			logger.Component("session").WithFields(logrus.Fields{
				"session_id": sessionID,
				"error":      err.Error(),
			}).Warn("не удалось прочитать контекст сессии, продолжаем без него")
		}
		return Context{SessionID: sessionID}
	}
	return c
}

// Update читает контекст, применяет патч и сохраняет результат.
func Update(ctx context.Context, store Store, sessionID string, p Patch) (Context, error) {
	c := Lookup(ctx, store, sessionID)
	c.SessionID = sessionID
	c = c.Apply(p)
	if err := store.Save(ctx, c); err != nil {
		return c, err
	}
	return c, nil
}
