package workflow

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/talent-sift/internal/logger"
)

// DefaultExecutionName используется, если в форме не указаны ключевые навыки.
const DefaultExecutionName = "run 1"

// RunRequest - параметры запуска ранжирования.
type RunRequest struct {
	OrgID          string
	ExecutionName  string
	JobDescription string
}

// ResumeFile - файл резюме для отправки в workflow.
type ResumeFile struct {
	Name        string
	ContentType string
	Open        func() (io.ReadCloser, error)
}

// RunResult - ответ workflow на запуск. Data содержит объект с id, exe_name и result.
type RunResult struct {
	CaseID string
	Data   json.RawMessage
}

// Error - неуспешный ответ workflow с сообщением для пользователя.
type Error struct {
	StatusCode int
	Message    string
}

func (e *Error) Error() string {
	return fmt.Sprintf("workflow: статус %d: %s", e.StatusCode, e.Message)
}

// UpstreamMessage возвращает сообщение workflow в исходном виде.
func (e *Error) UpstreamMessage() string {
	return e.Message
}

// Client вызывает внешний workflow ранжирования резюме.
type Client struct {
	baseURL    string
	workflowID string
	httpClient *http.Client
}

// NewClient создаёт экземпляр клиента.
func NewClient(baseURL, workflowID string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		workflowID: workflowID,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type runPayload struct {
	OrgID          string `json:"org_id"`
	ExeName        string `json:"exe_name"`
	WorkflowID     string `json:"workflow_id"`
	JobDescription string `json:"job_description"`
}

type envelope struct {
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
}

// Execute отправляет описание вакансии и резюме одним multipart запросом:
// поле "data" с JSON параметрами и по части "resumes" на каждый файл.
func (c *Client) Execute(ctx context.Context, req RunRequest, files []ResumeFile) (*RunResult, error) {
	exeName := strings.TrimSpace(req.ExecutionName)
	if exeName == "" {
		exeName = DefaultExecutionName
	}

	payload, err := json.Marshal(runPayload{
		OrgID:          req.OrgID,
		ExeName:        exeName,
		WorkflowID:     c.workflowID,
		JobDescription: StripHTML(req.JobDescription),
	})
	if err != nil {
		return nil, err
	}

	pr, pw := io.Pipe()
	defer pr.Close()
	mw := multipart.NewWriter(pw)

	go func() {
		pw.CloseWithError(writeMultipart(mw, payload, files))
	}()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/workflow-exe", pr)
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", mw.FormDataContentType())

	started := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("workflow: запрос не выполнен: %w", err)
	}
	defer resp.Body.Close()

	env, err := decodeEnvelope(resp)
	if err != nil {
		return nil, err
	}

	result := &RunResult{Data: env.Data, CaseID: caseIDOf(env.Data)}

	logger.Component("workflow").WithFields(logrus.Fields{
		"case_id":  result.CaseID,
		"exe_name": exeName,
		"files":    len(files),
		"took":     time.Since(started).String(),
	}).Info("workflow выполнен")

	return result, nil
}

func writeMultipart(mw *multipart.Writer, payload []byte, files []ResumeFile) error {
	if err := mw.WriteField("data", string(payload)); err != nil {
		return err
	}
	for _, f := range files {
		if err := writeFilePart(mw, f); err != nil {
			return err
		}
	}
	return mw.Close()
}

func writeFilePart(mw *multipart.Writer, f ResumeFile) error {
	rc, err := f.Open()
	if err != nil {
		return fmt.Errorf("workflow: не удалось открыть %s: %w", f.Name, err)
	}
	defer rc.Close()

	part, err := mw.CreateFormFile("resumes", f.Name)
	if err != nil {
		return err
	}
	_, err = io.Copy(part, rc)
	return err
}

// ListExecutions возвращает прошлые запуски workflow организации.
func (c *Client) ListExecutions(ctx context.Context, orgID string) ([]Execution, error) {
	q := url.Values{}
	q.Set("org_id", orgID)
	q.Set("workflow_id", c.workflowID)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/workflow-exe?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("workflow: запрос не выполнен: %w", err)
	}
	defer resp.Body.Close()

	env, err := decodeEnvelope(resp)
	if err != nil {
		return nil, err
	}

	var executions []Execution
	if len(env.Data) > 0 {
		// data не массив - считаем, что запусков нет
		if err := json.Unmarshal(env.Data, &executions); err != nil {
			return []Execution{}, nil
		}
	}
	return executions, nil
}

func decodeEnvelope(resp *http.Response) (*envelope, error) {
	body, err := io.ReadAll(io.LimitReader(resp.Body, 32<<20))
	if err != nil {
		return nil, fmt.Errorf("workflow: чтение ответа: %w", err)
	}

	var env envelope
	jsonErr := json.Unmarshal(bytes.TrimSpace(body), &env)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := env.Message
		if jsonErr != nil || msg == "" {
			msg = fmt.Sprintf("Upload failed with status %d", resp.StatusCode)
		}
		return nil, &Error{StatusCode: resp.StatusCode, Message: msg}
	}
	if jsonErr != nil {
		return nil, fmt.Errorf("workflow: ответ не является JSON: %w", jsonErr)
	}
	return &env, nil
}

func caseIDOf(data json.RawMessage) string {
	var head struct {
		ID any `json:"id"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return ""
	}
	switch v := head.ID.(type) {
	case string:
		return v
	case float64:
		return fmt.Sprintf("%.0f", v)
	}
	return ""
}
