package service

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/talent-sift/internal/audit"
	"github.com/ignatzorin/talent-sift/internal/board"
	"github.com/ignatzorin/talent-sift/internal/integration/workflow"
	"github.com/ignatzorin/talent-sift/internal/logger"
	"github.com/ignatzorin/talent-sift/internal/models"
	"github.com/ignatzorin/talent-sift/internal/pkg/apperror"
	"github.com/ignatzorin/talent-sift/internal/session"
	"github.com/ignatzorin/talent-sift/internal/storage"
	"github.com/ignatzorin/talent-sift/internal/validation"
)

type ResumeStore interface {
	SaveAll(ctx context.Context, runID string, uploads []storage.Upload) ([]storage.StoredResume, error)
	Open(relativePath string) (io.ReadCloser, error)
}

type WorkflowRunner interface {
	Execute(ctx context.Context, req workflow.RunRequest, files []workflow.ResumeFile) (*workflow.RunResult, error)
	ListExecutions(ctx context.Context, orgID string) ([]workflow.Execution, error)
}

type ApplicantRepository interface {
	Create(ctx context.Context, a *models.Applicant) error
}

// RunInput - форма запуска ранжирования.
type RunInput struct {
	JobTitle          string
	JobType           string
	JobDescription    string
	YearsOfExperience string
	Email             string
	Client            string
	Industry          string
	Owner             string
	Requestor         string
	RequiredSkills    string
	Resumes           []storage.Upload
}

func (in RunInput) fields() map[string]string {
	return map[string]string{
		"jobTitle":       in.JobTitle,
		"jobtype":        in.JobType,
		"jobDescription": in.JobDescription,
		"email":          in.Email,
		"client":         in.Client,
		"industry":       in.Industry,
		"owner":          in.Owner,
		"requestor":      in.Requestor,
	}
}

var requiredRunFields = []string{"jobTitle", "jobtype", "jobDescription", "email", "client", "industry", "owner", "requestor"}

var (
	ErrMissingRunFields = apperror.New(apperror.ErrCodeValidation, "Please fill in all required fields before submitting.")
	ErrMissingResume    = apperror.New(apperror.ErrCodeValidation, "Please upload at least one resume before submitting.")
)

// RunOutcome - результат запуска: номер кейса и доска после загрузки.
type RunOutcome struct {
	CaseID string     `json:"caseId"`
	View   board.View `json:"board"`
}

// RunService запускает ранжирование и поиск прошлых запусков.
type RunService struct {
	resumes        ResumeStore
	workflow       WorkflowRunner
	applicants     ApplicantRepository
	sessions       session.Store
	boards         *board.Registry
	notifier       *audit.Notifier
	allowedDomains []string
	defaultOrgID   string
	maxResumes     int
}

// RunServiceConfig - параметры RunService. Applicants и Notifier необязательны.
type RunServiceConfig struct {
	Resumes        ResumeStore
	Workflow       WorkflowRunner
	Applicants     ApplicantRepository
	Sessions       session.Store
	Boards         *board.Registry
	Notifier       *audit.Notifier
	AllowedDomains []string
	DefaultOrgID   string
	MaxResumes     int
}

func NewRunService(cfg RunServiceConfig) *RunService {
	if cfg.MaxResumes <= 0 {
		cfg.MaxResumes = 50
	}
	return &RunService{
		resumes:        cfg.Resumes,
		workflow:       cfg.Workflow,
		applicants:     cfg.Applicants,
		sessions:       cfg.Sessions,
		boards:         cfg.Boards,
		notifier:       cfg.Notifier,
		allowedDomains: cfg.AllowedDomains,
		defaultOrgID:   cfg.DefaultOrgID,
		maxResumes:     cfg.MaxResumes,
	}
}

// ValidateUser проверяет, что email принадлежит разрешённой компании.
func (s *RunService) ValidateUser(email string) error {
	return validation.CheckCompanyDomain(email, s.allowedDomains)
}

// OrgID: requestor, иначе организация по умолчанию.
func (s *RunService) OrgID(requestor string) string {
	if r := strings.TrimSpace(requestor); r != "" {
		return r
	}
	return s.defaultOrgID
}

// Start проверяет форму, сохраняет резюме, вызывает workflow и загружает доску сессии.
func (s *RunService) Start(ctx context.Context, sessionID string, in RunInput) (*RunOutcome, error) {
	if missing := validation.MissingFields(in.fields(), requiredRunFields...); len(missing) > 0 {
		return nil, apperror.Wrap(fmt.Errorf("missing: %s", strings.Join(missing, ", ")),
			apperror.ErrCodeValidation, ErrMissingRunFields.Message)
	}
	if len(in.Resumes) == 0 {
		return nil, ErrMissingResume
	}
	if len(in.Resumes) > s.maxResumes {
		return nil, apperror.New(apperror.ErrCodeValidation, fmt.Sprintf("Too many resumes: at most %d per run", s.maxResumes))
	}
	if err := s.ValidateUser(in.Email); err != nil {
		return nil, err
	}

	runID := uuid.NewString()
	stored, err := s.resumes.SaveAll(ctx, runID, in.Resumes)
	if err != nil {
		return nil, err
	}

	files := make([]workflow.ResumeFile, len(stored))
	paths := make([]string, len(stored))
	for i, r := range stored {
		path := r.Path
		paths[i] = path
		files[i] = workflow.ResumeFile{
			Name:        r.Name,
			ContentType: r.ContentType,
			Open:        func() (io.ReadCloser, error) { return s.resumes.Open(path) },
		}
	}

	result, err := s.workflow.Execute(ctx, workflow.RunRequest{
		OrgID:          s.OrgID(in.Requestor),
		ExecutionName:  in.RequiredSkills,
		JobDescription: in.JobDescription,
	}, files)
	if err != nil {
		return nil, err
	}

	b := s.boards.Get(sessionID)
	b.Load(result.Data)
	caseID := result.CaseID
	if caseID == "" {
		caseID = b.CaseID()
	}

	skills := splitSkills(in.RequiredSkills)
	if _, err := session.Update(ctx, s.sessions, sessionID, session.Patch{
		CaseID:    &caseID,
		Industry:  &in.Industry,
		Client:    &in.Client,
		Owner:     &in.Owner,
		Requestor: &in.Requestor,
		KeySkills: skills,
	}); err != nil {
		logger.Component("run").WithError(err).Warn("не удалось сохранить контекст сессии")
	}

	s.saveApplicant(ctx, sessionID, in, caseID, paths)

	s.notifier.Notify(audit.Event{
		Type:      audit.EventRunCompleted,
		SessionID: sessionID,
		CaseID:    caseID,
		Success:   true,
		Run:       &audit.RunInfo{Email: in.Email, JobTitle: in.JobTitle, ResumeCount: len(stored)},
	})

	return &RunOutcome{CaseID: caseID, View: b.Snapshot()}, nil
}

// saveApplicant пишет запуск в базу. Ошибка базы не отменяет уже выполненный запуск.
func (s *RunService) saveApplicant(ctx context.Context, sessionID string, in RunInput, caseID string, paths []string) {
	if s.applicants == nil {
		return
	}
	a := &models.Applicant{
		SessionID:         sessionID,
		Email:             strings.TrimSpace(in.Email),
		JobTitle:          strings.TrimSpace(in.JobTitle),
		JobDescription:    workflow.StripHTML(in.JobDescription),
		YearsOfExperience: strings.TrimSpace(in.YearsOfExperience),
		JobType:           strings.TrimSpace(in.JobType),
		Industry:          strings.TrimSpace(in.Industry),
		Client:            strings.TrimSpace(in.Client),
		Owner:             strings.TrimSpace(in.Owner),
		Requestor:         strings.TrimSpace(in.Requestor),
		RequiredSkills:    strings.TrimSpace(in.RequiredSkills),
		ResumeCount:       len(paths),
		ResumePaths:       paths,
	}
	if caseID != "" {
		a.CaseID = &caseID
	}
	if err := s.applicants.Create(ctx, a); err != nil {
		logger.Component("run").WithFields(logrus.Fields{
			"session_id": sessionID,
			"case_id":    caseID,
		}).WithError(err).Error("не удалось сохранить запуск")
	}
}

// Search ищет прошлые запуски по ключевому навыку и загружает найденных кандидатов.
func (s *RunService) Search(ctx context.Context, sessionID, keySkill, requestor string) (board.View, error) {
	keySkill = strings.TrimSpace(keySkill)
	if keySkill == "" {
		return board.View{}, apperror.New(apperror.ErrCodeValidation, "keySkill is required")
	}

	if requestor == "" {
		requestor = session.Lookup(ctx, s.sessions, sessionID).Requestor
	}
	executions, err := s.workflow.ListExecutions(ctx, s.OrgID(requestor))
	if err != nil {
		return board.View{}, err
	}

	b := s.boards.Get(sessionID)
	b.LoadBatch(workflow.MatchExecutions(executions, keySkill))

	if _, err := session.Update(ctx, s.sessions, sessionID, session.Patch{KeySkills: []string{keySkill}}); err != nil {
		logger.Component("run").WithError(err).Warn("не удалось сохранить контекст сессии")
	}
	return b.Snapshot(), nil
}

func splitSkills(line string) []string {
	var out []string
	for _, s := range strings.Split(line, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
