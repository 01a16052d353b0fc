package handlers

import (
	"io"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/talent-sift/internal/dto"
	"github.com/ignatzorin/talent-sift/internal/http/handlers/common"
	"github.com/ignatzorin/talent-sift/internal/pkg/apperror"
	"github.com/ignatzorin/talent-sift/internal/service"
	"github.com/ignatzorin/talent-sift/internal/storage"
)

// resumesField - имя multipart-поля с файлами резюме.
const resumesField = "resumes"

// RunHandler запускает ранжирование резюме и поиск по прошлым запускам.
type RunHandler struct {
	runs *service.RunService
}

// NewRunHandler создаёт хэндлер запусков.
func NewRunHandler(runs *service.RunService) *RunHandler {
	return &RunHandler{runs: runs}
}

// ValidateUser обрабатывает POST /api/validateuser.
func (h *RunHandler) ValidateUser(c *gin.Context) {
	var req dto.ValidateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.StatusResponse{Status: "error", Message: "Email is required"})
		return
	}

	if err := h.runs.ValidateUser(req.Email); err != nil {
		status := http.StatusForbidden
		message := "Unauthorized company domain"
		if appErr, ok := apperror.As(err); ok {
			status, message = appErr.HTTPStatus, appErr.Message
		}
		c.JSON(status, dto.StatusResponse{Status: "error", Message: message})
		return
	}

	c.JSON(http.StatusOK, dto.StatusResponse{Status: "success"})
}

// CreateRun обрабатывает POST /api/runs (multipart/form-data).
func (h *RunHandler) CreateRun(c *gin.Context) {
	sessionID, err := common.CurrentSessionID(c)
	if err != nil {
		common.RespondUnauthorized(c, "")
		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		common.RespondBadRequest(c, "ожидается multipart/form-data")
		return
	}

	in := service.RunInput{
		JobTitle:          c.PostForm("jobTitle"),
		JobType:           c.PostForm("jobtype"),
		JobDescription:    c.PostForm("jobDescription"),
		YearsOfExperience: c.PostForm("yearsOfExperience"),
		Email:             c.PostForm("email"),
		Client:            c.PostForm("client"),
		Industry:          c.PostForm("industry"),
		Owner:             c.PostForm("owner"),
		Requestor:         c.PostForm("requestor"),
		RequiredSkills:    c.PostForm("requiredSkills"),
		Resumes:           uploadsFrom(form.File[resumesField]),
	}

	outcome, err := h.runs.Start(c.Request.Context(), sessionID, in)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusCreated, outcome)
}

// SearchExecutions обрабатывает POST /api/executions/search.
func (h *RunHandler) SearchExecutions(c *gin.Context) {
	sessionID, err := common.CurrentSessionID(c)
	if err != nil {
		common.RespondUnauthorized(c, "")
		return
	}

	var req dto.SearchExecutionsRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	view, err := h.runs.Search(c.Request.Context(), sessionID, req.KeySkill, req.Requestor)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, boardResponse(view))
}

func uploadsFrom(files []*multipart.FileHeader) []storage.Upload {
	uploads := make([]storage.Upload, 0, len(files))
	for _, fh := range files {
		fh := fh
		uploads = append(uploads, storage.Upload{
			Name: fh.Filename,
			Open: func() (io.ReadCloser, error) { return fh.Open() },
		})
	}
	return uploads
}
