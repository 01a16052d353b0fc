package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/talent-sift/internal/board"
	"github.com/ignatzorin/talent-sift/internal/dto"
	"github.com/ignatzorin/talent-sift/internal/export"
	"github.com/ignatzorin/talent-sift/internal/http/handlers/common"
	"github.com/ignatzorin/talent-sift/internal/logger"
	"github.com/ignatzorin/talent-sift/internal/service"
)

const (
	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	exportFilename  = "candidates.xlsx"
	maxPayloadBytes = 10 << 20
)

// BoardHandler - чтение, фильтрация и отправка кандидатов доски сессии.
type BoardHandler struct {
	boards     *board.Registry
	shortlists *service.ShortlistService
	maxPayload int64
}

// NewBoardHandler создаёт хэндлер доски.
func NewBoardHandler(boards *board.Registry, shortlists *service.ShortlistService) *BoardHandler {
	return &BoardHandler{boards: boards, shortlists: shortlists, maxPayload: maxPayloadBytes}
}

// Load обрабатывает POST /api/board/load: тело - ответ workflow в любом из трёх форматов.
func (h *BoardHandler) Load(c *gin.Context) {
	sessionID, err := common.CurrentSessionID(c)
	if err != nil {
		common.RespondUnauthorized(c, "")
		return
	}

	raw, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, h.maxPayload))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			common.RespondError(c, http.StatusRequestEntityTooLarge, fmt.Sprintf("тело запроса больше %d байт", tooLarge.Limit))
			return
		}
		common.RespondBadRequest(c, "не удалось прочитать тело запроса")
		return
	}

	b := h.boards.Get(sessionID)
	b.Load(raw)
	c.JSON(http.StatusOK, boardResponse(b.Snapshot()))
}

// Get обрабатывает GET /api/board. Параметры запроса применяются поверх
// сохранённых критериев только для этого ответа.
func (h *BoardHandler) Get(c *gin.Context) {
	sessionID, err := common.CurrentSessionID(c)
	if err != nil {
		common.RespondUnauthorized(c, "")
		return
	}

	patch, err := filterPatchFromQuery(c)
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	b := h.boards.Get(sessionID)
	view := b.Snapshot()
	if !patch.IsEmpty() {
		view.Candidates, view.Criteria = b.VisibleWith(patch)
		view.Shown = len(view.Candidates)
	}
	c.JSON(http.StatusOK, boardResponse(view))
}

// UpdateFilter обрабатывает PATCH /api/board/filter.
func (h *BoardHandler) UpdateFilter(c *gin.Context) {
	sessionID, err := common.CurrentSessionID(c)
	if err != nil {
		common.RespondUnauthorized(c, "")
		return
	}

	var patch board.FilterPatch
	if err := common.BindAndValidate(c, &patch); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	b := h.boards.Get(sessionID)
	b.SetFilter(patch)
	c.JSON(http.StatusOK, boardResponse(b.Snapshot()))
}

// ResetFilter обрабатывает DELETE /api/board/filter.
func (h *BoardHandler) ResetFilter(c *gin.Context) {
	sessionID, err := common.CurrentSessionID(c)
	if err != nil {
		common.RespondUnauthorized(c, "")
		return
	}

	b := h.boards.Get(sessionID)
	b.ResetFilter()
	c.JSON(http.StatusOK, boardResponse(b.Snapshot()))
}

// Shortlist обрабатывает POST /api/board/candidates/:id/shortlist?source=.
func (h *BoardHandler) Shortlist(c *gin.Context) {
	sessionID, err := common.CurrentSessionID(c)
	if err != nil {
		common.RespondUnauthorized(c, "")
		return
	}

	result, err := h.shortlists.Shortlist(c.Request.Context(), sessionID, c.Param("id"), c.Query("source"))
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	resp := dto.ShortlistResponse{ShortlistResult: result}
	if !result.Skipped {
		resp.Message = "Candidate shortlisted"
	}
	c.JSON(http.StatusOK, resp)
}

// Export обрабатывает GET /api/board/export.xlsx: видимый список в Excel.
func (h *BoardHandler) Export(c *gin.Context) {
	sessionID, err := common.CurrentSessionID(c)
	if err != nil {
		common.RespondUnauthorized(c, "")
		return
	}

	view := h.boards.Get(sessionID).Snapshot()
	f, err := export.Build(view.Candidates, view.Criteria)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			logger.Component("export").WithError(cerr).Warn("не удалось закрыть книгу")
		}
	}()

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", exportFilename))
	c.Header("Content-Type", xlsxContentType)
	c.Status(http.StatusOK)
	if err := f.Write(c.Writer); err != nil {
		logger.Component("export").WithError(err).Error("не удалось записать книгу в ответ")
	}
}

func boardResponse(view board.View) dto.BoardResponse {
	return dto.BoardResponse{
		View:    view,
		Summary: fmt.Sprintf("Showing %d of %d candidates", view.Shown, view.Total),
	}
}

// filterPatchFromQuery читает q, scoreMin, scoreMax, expMin, expMax, requireEmail, requirePhone.
func filterPatchFromQuery(c *gin.Context) (board.FilterPatch, error) {
	var p board.FilterPatch

	if q, ok := c.GetQuery("q"); ok {
		p.SearchText = &q
	}

	var err error
	if p.ScoreRange, err = rangeFromQuery(c, "scoreMin", "scoreMax"); err != nil {
		return p, err
	}
	if p.ExperienceRange, err = rangeFromQuery(c, "expMin", "expMax"); err != nil {
		return p, err
	}
	if p.RequireEmail, err = boolFromQuery(c, "requireEmail"); err != nil {
		return p, err
	}
	if p.RequirePhone, err = boolFromQuery(c, "requirePhone"); err != nil {
		return p, err
	}
	return p, nil
}

func rangeFromQuery(c *gin.Context, loKey, hiKey string) (*board.RangePatch, error) {
	lo, err := floatFromQuery(c, loKey)
	if err != nil {
		return nil, err
	}
	hi, err := floatFromQuery(c, hiKey)
	if err != nil {
		return nil, err
	}
	if lo == nil && hi == nil {
		return nil, nil
	}
	return &board.RangePatch{Lo: lo, Hi: hi}, nil
}

func floatFromQuery(c *gin.Context, key string) (*float64, error) {
	raw, ok := c.GetQuery(key)
	if !ok || raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, fmt.Errorf("параметр %s должен быть числом", key)
	}
	return &v, nil
}

func boolFromQuery(c *gin.Context, key string) (*bool, error) {
	raw, ok := c.GetQuery(key)
	if !ok || raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, fmt.Errorf("параметр %s должен быть true или false", key)
	}
	return &v, nil
}
