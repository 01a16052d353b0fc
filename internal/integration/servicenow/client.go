package servicenow

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/ignatzorin/talent-sift/internal/domain/entity"
	"github.com/ignatzorin/talent-sift/internal/integration/upstream"
)

// ErrNotConfigured - не задан URL или учётные данные ServiceNow.
var ErrNotConfigured = errors.New("servicenow: интеграция не настроена")

// Result - одна строка screening_results.
type Result struct {
	Name          string  `json:"name"`
	Email         string  `json:"email"`
	Phone         string  `json:"phone"`
	Experience    float64 `json:"experience"`
	Score         float64 `json:"score"`
	Justification string  `json:"justification"`
	Client        string  `json:"client"`
	Industry      string  `json:"industry"`
	Owner         string  `json:"owner"`
	Skills        string  `json:"skills"`
}

// Payload - тело запроса к scripted REST API.
type Payload struct {
	CaseID  string   `json:"case_id"`
	Results []Result `json:"results"`
}

// Client отправляет кандидатов в кейс ServiceNow (basic auth).
type Client struct {
	url        string
	user       string
	password   string
	httpClient *http.Client
}

// NewClient создаёт клиента.
func NewClient(url, user, password string, timeout time.Duration) *Client {
	return &Client{
		url:        url,
		user:       user,
		password:   password,
		httpClient: upstream.NewHTTPClient(timeout),
	}
}

// PayloadFor собирает тело запроса для одного кандидата.
func PayloadFor(s entity.Submission) Payload {
	return Payload{
		CaseID: s.CaseID,
		Results: []Result{{
			Name:          s.Name,
			Email:         s.Email,
			Phone:         s.Phone,
			Experience:    s.Experience,
			Score:         s.Score,
			Justification: s.Justification,
			Client:        s.Client,
			Industry:      s.Industry,
			Owner:         s.Owner,
			Skills:        s.Skills,
		}},
	}
}

// Submit отправляет кандидата.
func (c *Client) Submit(ctx context.Context, s entity.Submission) error {
	if c.url == "" || c.user == "" {
		return ErrNotConfigured
	}
	return upstream.PostJSON(ctx, c.httpClient, "servicenow", c.url, PayloadFor(s), func(r *http.Request) {
		r.SetBasicAuth(c.user, c.password)
	})
}
