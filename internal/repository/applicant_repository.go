package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/ignatzorin/talent-sift/internal/models"
)

type ApplicantRepository struct {
	db *sqlx.DB
}

func NewApplicantRepository(db *sqlx.DB) *ApplicantRepository {
	return &ApplicantRepository{db: db}
}

// Create сохраняет запуск ранжирования.
func (r *ApplicantRepository) Create(ctx context.Context, a *models.Applicant) error {
	query := `
		INSERT INTO applicants (
			session_id, email, job_title, job_description, years_of_experience, job_type,
			industry, client, owner, requestor, required_skills, case_id, resume_count, resume_paths
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING id, created_at
	`
	if err := r.db.QueryRowxContext(ctx, query,
		a.SessionID, a.Email, a.JobTitle, a.JobDescription, a.YearsOfExperience, a.JobType,
		a.Industry, a.Client, a.Owner, a.Requestor, a.RequiredSkills, a.CaseID, a.ResumeCount, a.ResumePaths,
	).Scan(&a.ID, &a.CreatedAt); err != nil {
		return fmt.Errorf("repository: create applicant: %w", err)
	}
	return nil
}
