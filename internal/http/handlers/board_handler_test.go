package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/ignatzorin/talent-sift/internal/board"
	"github.com/ignatzorin/talent-sift/internal/domain/valueobject"
	"github.com/ignatzorin/talent-sift/internal/dto"
	"github.com/ignatzorin/talent-sift/internal/integration/upstream"
	"github.com/ignatzorin/talent-sift/internal/shortlist"
)

func newBoardRouter(t *testing.T, target *stubTarget) (*gin.Engine, *board.Registry) {
	t.Helper()
	boards := board.NewRegistry()
	store := newMemoryStore(t)
	handler := NewBoardHandler(boards, newShortlists(t, boards, store, map[string]shortlist.Target{
		shortlist.SourceServiceNow: target,
	}))

	r := newTestEngine()
	g := r.Group("/api/board", withSession(testSessionID))
	g.POST("/load", handler.Load)
	g.GET("", handler.Get)
	g.PATCH("/filter", handler.UpdateFilter)
	g.DELETE("/filter", handler.ResetFilter)
	g.POST("/candidates/:id/shortlist", handler.Shortlist)
	g.GET("/export.xlsx", handler.Export)
	return r, boards
}

func loadBoard(t *testing.T, r *gin.Engine) dto.BoardResponse {
	t.Helper()
	req, _ := http.NewRequest(http.MethodPost, "/api/board/load", strings.NewReader(rankingPayload))
	w := serve(r, req)
	require.Equal(t, http.StatusOK, w.Code)

	var resp dto.BoardResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestBoardHandler_Unauthorized(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handler := NewBoardHandler(board.NewRegistry(), nil)
	r.GET("/api/board", handler.Get)

	req, _ := http.NewRequest(http.MethodGet, "/api/board", nil)
	w := serve(r, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestBoardHandler_LoadAndGet(t *testing.T) {
	r, _ := newBoardRouter(t, &stubTarget{})

	loaded := loadBoard(t, r)
	assert.Equal(t, "CS1", loaded.CaseID)
	assert.Equal(t, 2, loaded.Total)
	assert.Equal(t, 2, loaded.Shown)
	assert.Equal(t, "Showing 2 of 2 candidates", loaded.Summary)
	assert.Equal(t, "No email", loaded.Candidates[1].Email)

	req, _ := http.NewRequest(http.MethodGet, "/api/board?scoreMin=5&requireEmail=true", nil)
	w := serve(r, req)
	require.Equal(t, http.StatusOK, w.Code)

	var resp dto.BoardResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Shown)
	assert.Equal(t, "Ada", resp.Candidates[0].Name)
	assert.Equal(t, "Showing 1 of 2 candidates", resp.Summary)

	// параметры запроса не сохраняются в критериях
	req, _ = http.NewRequest(http.MethodGet, "/api/board", nil)
	w = serve(r, req)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Shown)
}

func TestBoardHandler_GetInvalidQuery(t *testing.T) {
	r, _ := newBoardRouter(t, &stubTarget{})

	req, _ := http.NewRequest(http.MethodGet, "/api/board?scoreMin=high", nil)
	w := serve(r, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestBoardHandler_UpdateAndResetFilter(t *testing.T) {
	r, _ := newBoardRouter(t, &stubTarget{})
	loadBoard(t, r)

	body := `{"searchText":"bob"}`
	req, _ := http.NewRequest(http.MethodPatch, "/api/board/filter", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := serve(r, req)
	require.Equal(t, http.StatusOK, w.Code)

	var resp dto.BoardResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Shown)
	assert.Equal(t, "bob", resp.Criteria.SearchText)

	req, _ = http.NewRequest(http.MethodDelete, "/api/board/filter", nil)
	w = serve(r, req)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Shown)
	assert.Empty(t, resp.Criteria.SearchText)
}

func TestBoardHandler_Shortlist(t *testing.T) {
	target := &stubTarget{}
	r, boards := newBoardRouter(t, target)
	loadBoard(t, r)

	req, _ := http.NewRequest(http.MethodPost, "/api/board/candidates/1/shortlist?source=servicenow", nil)
	w := serve(r, req)
	require.Equal(t, http.StatusOK, w.Code)

	var resp dto.ShortlistResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, valueobject.ShortlistSubmitted, resp.Candidate.ShortlistStatus)
	assert.Equal(t, "Candidate shortlisted", resp.Message)

	subs := target.submissions()
	require.Len(t, subs, 1)
	assert.Equal(t, "CS1", subs[0].CaseID)
	assert.Equal(t, "No Skills", subs[0].Skills)

	// повторная отправка ничего не делает
	w = serve(r, req)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Skipped)
	assert.Len(t, target.submissions(), 1)

	c, err := boards.Get(testSessionID).Candidate("1")
	require.NoError(t, err)
	assert.Equal(t, valueobject.ShortlistSubmitted, c.ShortlistStatus)
}

func TestBoardHandler_ShortlistErrors(t *testing.T) {
	target := &stubTarget{err: &upstream.Error{System: "servicenow", StatusCode: 409, Message: "Duplicate candidate"}}
	r, boards := newBoardRouter(t, target)
	loadBoard(t, r)

	tests := []struct {
		name    string
		path    string
		code    int
		message string
	}{
		{"invalid source", "/api/board/candidates/1/shortlist?source=fax", http.StatusBadRequest, "Invalid source"},
		{"missing source", "/api/board/candidates/1/shortlist", http.StatusBadRequest, "Missing source"},
		{"unknown candidate", "/api/board/candidates/404/shortlist?source=servicenow", http.StatusNotFound, "кандидат не найден"},
		{"upstream message", "/api/board/candidates/1/shortlist?source=servicenow", http.StatusBadGateway, "Duplicate candidate"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, _ := http.NewRequest(http.MethodPost, tt.path, nil)
			w := serve(r, req)

			assert.Equal(t, tt.code, w.Code)
			var resp dto.ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, tt.message, resp.Error)
		})
	}

	c, err := boards.Get(testSessionID).Candidate("1")
	require.NoError(t, err)
	assert.Equal(t, valueobject.ShortlistFailed, c.ShortlistStatus)
	assert.Equal(t, "Duplicate candidate", c.LastError)
}

func TestBoardHandler_Export(t *testing.T) {
	r, _ := newBoardRouter(t, &stubTarget{})
	loadBoard(t, r)

	req, _ := http.NewRequest(http.MethodGet, "/api/board/export.xlsx", nil)
	w := serve(r, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, xlsxContentType, w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), exportFilename)

	f, err := excelize.OpenReader(bytes.NewReader(w.Body.Bytes()))
	require.NoError(t, err)
	defer f.Close()

	name, err := f.GetCellValue("Candidates", "B2")
	require.NoError(t, err)
	assert.Equal(t, "Ada", name)
}

func TestBoardHandler_LoadRejectsOversizedPayload(t *testing.T) {
	boards := board.NewRegistry()
	boards.Get(testSessionID).Load([]byte(rankingPayload))

	handler := NewBoardHandler(boards, nil)
	handler.maxPayload = 64

	r := newTestEngine()
	r.POST("/api/board/load", withSession(testSessionID), handler.Load)

	req, _ := http.NewRequest(http.MethodPost, "/api/board/load", strings.NewReader(rankingPayload))
	w := serve(r, req)
	require.Equal(t, http.StatusRequestEntityTooLarge, w.Code)

	var resp dto.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Contains(t, resp.Error, "64")

	// прежний список не заменён пустым
	assert.Len(t, boards.Get(testSessionID).Candidates(), 2)
}
