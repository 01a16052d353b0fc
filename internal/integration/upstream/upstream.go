// Package upstream содержит общий код HTTP-клиентов внешних систем отправки кандидатов.
package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// DefaultTimeout - таймаут клиентов по умолчанию.
const DefaultTimeout = 30 * time.Second

// Error - неуспешный ответ внешней системы.
type Error struct {
	System     string
	StatusCode int
	Message    string
	Body       string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: статус %d: %s", e.System, e.StatusCode, e.Message)
}

// UpstreamMessage возвращает сообщение внешней системы, если оно было.
func (e *Error) UpstreamMessage() string {
	return e.Message
}

// NewHTTPClient создаёт http.Client с таймаутом.
func NewHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &http.Client{Timeout: timeout}
}

// PostJSON отправляет body как JSON. prepare может добавить авторизацию.
func PostJSON(ctx context.Context, client *http.Client, system, url string, body any, prepare func(*http.Request)) error {
	raw, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("%s: сериализация запроса: %w", system, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("%s: создание запроса: %w", system, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if prepare != nil {
		prepare(req)
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("%s: запрос не выполнен: %w", system, err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &Error{
			System:     system,
			StatusCode: resp.StatusCode,
			Message:    ExtractMessage(respBody),
			Body:       string(respBody),
		}
	}
	return nil
}

// ExtractMessage достаёт человекочитаемое сообщение из типичных форм ответа:
// {"error": "..."}, {"error": {"message": "..."}}, {"message": "..."}.
func ExtractMessage(body []byte) string {
	var obj map[string]any
	if err := json.Unmarshal(body, &obj); err != nil {
		return ""
	}
	if msg, ok := obj["error"].(string); ok {
		return strings.TrimSpace(msg)
	}
	if nested, ok := obj["error"].(map[string]any); ok {
		if msg, ok := nested["message"].(string); ok {
			return strings.TrimSpace(msg)
		}
	}
	if msg, ok := obj["message"].(string); ok {
		return strings.TrimSpace(msg)
	}
	return ""
}
