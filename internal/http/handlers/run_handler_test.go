package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/talent-sift/internal/board"
	"github.com/ignatzorin/talent-sift/internal/dto"
	"github.com/ignatzorin/talent-sift/internal/integration/workflow"
	"github.com/ignatzorin/talent-sift/internal/service"
	"github.com/ignatzorin/talent-sift/internal/storage"
)

type memoryResumes struct{}

func (memoryResumes) SaveAll(_ context.Context, runID string, uploads []storage.Upload) ([]storage.StoredResume, error) {
	out := make([]storage.StoredResume, 0, len(uploads))
	for _, u := range uploads {
		out = append(out, storage.StoredResume{Name: u.Name, Path: runID + "/" + u.Name, ContentType: "application/pdf"})
	}
	return out, nil
}

func (memoryResumes) Open(path string) (io.ReadCloser, error) {
	return io.NopCloser(strings.NewReader(path)), nil
}

type mockWorkflow struct {
	mock.Mock
}

func (m *mockWorkflow) Execute(ctx context.Context, req workflow.RunRequest, files []workflow.ResumeFile) (*workflow.RunResult, error) {
	args := m.Called(ctx, req, files)
	res, _ := args.Get(0).(*workflow.RunResult)
	return res, args.Error(1)
}

func (m *mockWorkflow) ListExecutions(ctx context.Context, orgID string) ([]workflow.Execution, error) {
	args := m.Called(ctx, orgID)
	execs, _ := args.Get(0).([]workflow.Execution)
	return execs, args.Error(1)
}

func newRunRouter(t *testing.T, wf *mockWorkflow) *gin.Engine {
	t.Helper()
	runs := service.NewRunService(service.RunServiceConfig{
		Resumes:        memoryResumes{},
		Workflow:       wf,
		Sessions:       newMemoryStore(t),
		Boards:         board.NewRegistry(),
		AllowedDomains: []string{"acme.com"},
		DefaultOrgID:   "2",
	})
	handler := NewRunHandler(runs)

	r := newTestEngine()
	r.POST("/api/validateuser", handler.ValidateUser)
	g := r.Group("/api", withSession(testSessionID))
	g.POST("/runs", handler.CreateRun)
	g.POST("/executions/search", handler.SearchExecutions)
	return r
}

func runForm(t *testing.T, fields map[string]string, files ...string) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	for _, name := range files {
		fw, err := mw.CreateFormFile(resumesField, name)
		require.NoError(t, err)
		_, err = fw.Write([]byte("%PDF-1.4 resume"))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return body, mw.FormDataContentType()
}

func validRunFields() map[string]string {
	return map[string]string{
		"jobTitle":       "Go Developer",
		"jobtype":        "Full-time",
		"jobDescription": "<p>Build services</p>",
		"email":          "hr@acme.com",
		"client":         "Acme",
		"industry":       "Retail",
		"owner":          "Jane",
		"requestor":      "17",
		"requiredSkills": "Go",
	}
}

func TestRunHandler_ValidateUser(t *testing.T) {
	r := newRunRouter(t, &mockWorkflow{})

	tests := []struct {
		name    string
		body    string
		code    int
		status  string
		message string
	}{
		{"allowed domain", `{"email":"hr@acme.com"}`, http.StatusOK, "success", ""},
		{"foreign domain", `{"email":"hr@other.io"}`, http.StatusForbidden, "error", "Unauthorized company domain"},
		{"invalid email", `{"email":"nope"}`, http.StatusBadRequest, "error", "Invalid email address"},
		{"missing email", `{}`, http.StatusBadRequest, "error", "Email is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, _ := http.NewRequest(http.MethodPost, "/api/validateuser", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			w := serve(r, req)

			assert.Equal(t, tt.code, w.Code)
			var resp dto.StatusResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, tt.status, resp.Status)
			assert.Equal(t, tt.message, resp.Message)
		})
	}
}

func TestRunHandler_CreateRun(t *testing.T) {
	wf := &mockWorkflow{}
	wf.On("Execute", mock.Anything, mock.MatchedBy(func(req workflow.RunRequest) bool {
		return req.OrgID == "17" && req.ExecutionName == "Go"
	}), mock.MatchedBy(func(files []workflow.ResumeFile) bool {
		return len(files) == 2
	})).Return(&workflow.RunResult{CaseID: "CS1", Data: json.RawMessage(rankingPayload)}, nil).Once()

	r := newRunRouter(t, wf)
	body, contentType := runForm(t, validRunFields(), "ada.pdf", "bob.pdf")

	req, _ := http.NewRequest(http.MethodPost, "/api/runs", body)
	req.Header.Set("Content-Type", contentType)
	w := serve(r, req)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp service.RunOutcome
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "CS1", resp.CaseID)
	assert.Equal(t, 2, resp.View.Total)
	wf.AssertExpectations(t)
}

func TestRunHandler_CreateRunValidation(t *testing.T) {
	r := newRunRouter(t, &mockWorkflow{})

	missing := validRunFields()
	delete(missing, "owner")

	tests := []struct {
		name    string
		fields  map[string]string
		files   []string
		message string
	}{
		{"missing field", missing, []string{"ada.pdf"}, "Please fill in all required fields before submitting."},
		{"no resumes", validRunFields(), nil, "Please upload at least one resume before submitting."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body, contentType := runForm(t, tt.fields, tt.files...)
			req, _ := http.NewRequest(http.MethodPost, "/api/runs", body)
			req.Header.Set("Content-Type", contentType)
			w := serve(r, req)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			var resp dto.ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, tt.message, resp.Error)
		})
	}
}

func TestRunHandler_CreateRunNotMultipart(t *testing.T) {
	r := newRunRouter(t, &mockWorkflow{})

	req, _ := http.NewRequest(http.MethodPost, "/api/runs", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	w := serve(r, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRunHandler_SearchExecutions(t *testing.T) {
	wf := &mockWorkflow{}
	wf.On("ListExecutions", mock.Anything, "2").Return([]workflow.Execution{
		{ID: "CS5", ExeName: "Go, SQL", Result: json.RawMessage(`[{"candidateId":"1","name":"Ada","score":8,"experience":4}]`)},
		{ID: "CS6", ExeName: "Java", Result: json.RawMessage(`[{"candidateId":"2","name":"Bob","score":7,"experience":2}]`)},
	}, nil).Once()

	r := newRunRouter(t, wf)

	req, _ := http.NewRequest(http.MethodPost, "/api/executions/search", strings.NewReader(`{"keySkill":"go"}`))
	req.Header.Set("Content-Type", "application/json")
	w := serve(r, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp dto.BoardResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, 1, resp.Total)
	assert.Equal(t, "Ada", resp.Candidates[0].Name)
	wf.AssertExpectations(t)
}

func TestRunHandler_SearchExecutionsRequiresSkill(t *testing.T) {
	r := newRunRouter(t, &mockWorkflow{})

	req, _ := http.NewRequest(http.MethodPost, "/api/executions/search", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	w := serve(r, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
