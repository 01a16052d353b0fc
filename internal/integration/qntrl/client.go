package qntrl

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/ignatzorin/talent-sift/internal/domain/entity"
	"github.com/ignatzorin/talent-sift/internal/integration/upstream"
)

// ErrNotConfigured - не задан URL или токен Qntrl.
var ErrNotConfigured = errors.New("qntrl: интеграция не настроена")

// Card - карточка кандидата в Qntrl. Обоснование уходит в description.
type Card struct {
	Name        string  `json:"name"`
	Email       string  `json:"email"`
	Phone       string  `json:"phone"`
	Experience  float64 `json:"experience"`
	Score       float64 `json:"score"`
	Industry    string  `json:"industry"`
	Owner       string  `json:"owner"`
	Client      string  `json:"client"`
	Skills      string  `json:"skills"`
	Description string  `json:"description"`
}

// Client создаёт карточки кандидатов в Qntrl (bearer токен).
type Client struct {
	url        string
	token      string
	httpClient *http.Client
}

// NewClient создаёт клиента.
func NewClient(url, token string, timeout time.Duration) *Client {
	return &Client{url: url, token: token, httpClient: upstream.NewHTTPClient(timeout)}
}

// CardFor собирает карточку из отправки.
func CardFor(s entity.Submission) Card {
	return Card{
		Name:        s.Name,
		Email:       s.Email,
		Phone:       s.Phone,
		Experience:  s.Experience,
		Score:       s.Score,
		Industry:    s.Industry,
		Owner:       s.Owner,
		Client:      s.Client,
		Skills:      s.Skills,
		Description: s.Justification,
	}
}

// Submit отправляет кандидата.
func (c *Client) Submit(ctx context.Context, s entity.Submission) error {
	if c.url == "" || c.token == "" {
		return ErrNotConfigured
	}
	return upstream.PostJSON(ctx, c.httpClient, "qntrl", c.url, CardFor(s), func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer "+c.token)
	})
}
