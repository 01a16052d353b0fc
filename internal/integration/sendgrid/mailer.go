package sendgrid

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"

	"github.com/sendgrid/rest"
	sg "github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/ignatzorin/talent-sift/internal/domain/entity"
	"github.com/ignatzorin/talent-sift/internal/integration/upstream"
)

// ErrNotConfigured повторяет сообщение почтового прокси при неполной настройке.
var ErrNotConfigured = errors.New("Server misconfiguration: missing SENDGRID_API_KEY, FROM_EMAIL or QNTRL_EMAIL")

// Sender - часть клиента SendGrid, которой пользуется Mailer.
type Sender interface {
	SendWithContext(ctx context.Context, email *mail.SGMailV3) (*rest.Response, error)
}

// Receipt - ответ SendGrid на успешную отправку.
type Receipt struct {
	StatusCode int    `json:"statusCode"`
	MessageID  string `json:"messageId,omitempty"`
}

// Mailer отправляет письмо о кандидате в почтовый inbox.
type Mailer struct {
	sender Sender
	from   string
	to     string
}

// NewMailer создаёт Mailer поверх настоящего клиента SendGrid.
// При пустом ключе или адресах Send возвращает ErrNotConfigured.
func NewMailer(apiKey, from, to string) *Mailer {
	var sender Sender
	if apiKey != "" {
		sender = sg.NewSendClient(apiKey)
	}
	return NewMailerWithSender(sender, from, to)
}

// NewMailerWithSender позволяет подставить свой Sender.
func NewMailerWithSender(sender Sender, from, to string) *Mailer {
	return &Mailer{sender: sender, from: from, to: to}
}

// Configured сообщает, что отправка возможна.
func (m *Mailer) Configured() bool {
	return m.sender != nil && m.from != "" && m.to != ""
}

// Compose собирает письмо: тема с именем кандидата, reply-to на кандидата.
func (m *Mailer) Compose(s entity.Submission) *mail.SGMailV3 {
	subject := "Shortlisted Candidate: " + s.Name

	text := fmt.Sprintf("Candidate: %s\nEmail: %s\nPhone: %s\nExperience: %s\nScore: %s\nSkills: %s\nClient: %s\nIndustry: %s\nOwner: %s\n\n%s",
		s.Name, s.Email, s.Phone, s.ExperienceText(), s.ScoreText(), s.Skills, s.Client, s.Industry, s.Owner, s.Justification)

	var b strings.Builder
	fmt.Fprintf(&b, "<p><b>Name:</b> %s</p>", html.EscapeString(s.Name))
	fmt.Fprintf(&b, "<p><b>Email:</b> %s</p>", html.EscapeString(s.Email))
	fmt.Fprintf(&b, "<p><b>Phone:</b> %s</p>", html.EscapeString(s.Phone))
	fmt.Fprintf(&b, "<p>%s</p>", html.EscapeString(s.Justification))

	msg := mail.NewSingleEmail(mail.NewEmail("", m.from), subject, mail.NewEmail("", m.to), text, b.String())
	msg.SetReplyTo(mail.NewEmail(s.Name, s.Email))
	return msg
}

// Send отправляет письмо о кандидате.
func (m *Mailer) Send(ctx context.Context, s entity.Submission) (*Receipt, error) {
	if !m.Configured() {
		return nil, ErrNotConfigured
	}

	resp, err := m.sender.SendWithContext(ctx, m.Compose(s))
	if err != nil {
		return nil, fmt.Errorf("sendgrid: запрос не выполнен: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &upstream.Error{
			System:     "sendgrid",
			StatusCode: resp.StatusCode,
			Message:    firstErrorMessage(resp.Body),
			Body:       resp.Body,
		}
	}

	receipt := &Receipt{StatusCode: resp.StatusCode}
	if ids := resp.Headers["X-Message-Id"]; len(ids) > 0 {
		receipt.MessageID = ids[0]
	}
	return receipt, nil
}

// Submit отправляет кандидата; удовлетворяет интерфейсу цели отправки.
func (m *Mailer) Submit(ctx context.Context, s entity.Submission) error {
	_, err := m.Send(ctx, s)
	return err
}
