package dto

import (
	"github.com/ignatzorin/talent-sift/internal/domain/entity"
	"github.com/ignatzorin/talent-sift/internal/session"
)

// StartSessionRequest - необязательный начальный контекст сессии
// (например, из параметров ссылки, по которой пришёл пользователь).
type StartSessionRequest struct {
	Context session.Patch `json:"context"`
}

// ValidateUserRequest - проверка email перед запуском.
type ValidateUserRequest struct {
	Email string `json:"email" binding:"required"`
}

// SearchExecutionsRequest - поиск прошлых запусков по ключевому навыку.
type SearchExecutionsRequest struct {
	KeySkill  string `json:"keySkill" binding:"required"`
	Requestor string `json:"requestor"`
}

// ShortlistProxyRequest - тело POST /api/shortlist.
type ShortlistProxyRequest = entity.Submission

// SendEmailRequest - тело POST /api/send-email. Навыки приходят в поле "Skills",
// текст обоснования в "description".
type SendEmailRequest struct {
	Name        string  `json:"name"`
	Email       string  `json:"email"`
	Phone       string  `json:"phone"`
	Experience  float64 `json:"experience"`
	Score       float64 `json:"score"`
	Skills      string  `json:"Skills"`
	Client      string  `json:"client"`
	Industry    string  `json:"industry"`
	Owner       string  `json:"owner"`
	Description string  `json:"description"`
}

// Submission переводит тело письма в заявку для почтовой цели.
func (r SendEmailRequest) Submission() entity.Submission {
	return entity.Submission{
		Source:        "email",
		Name:          r.Name,
		Email:         r.Email,
		Phone:         r.Phone,
		Experience:    r.Experience,
		Score:         r.Score,
		Justification: r.Description,
		Client:        r.Client,
		Industry:      r.Industry,
		Owner:         r.Owner,
		Skills:        r.Skills,
	}
}
