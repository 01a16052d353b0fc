package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Applicant - запуск ранжирования: описание вакансии и загруженные резюме.
type Applicant struct {
	ID                uuid.UUID      `db:"id" json:"id"`
	SessionID         string         `db:"session_id" json:"session_id"`
	Email             string         `db:"email" json:"email"`
	JobTitle          string         `db:"job_title" json:"job_title"`
	JobDescription    string         `db:"job_description" json:"job_description"`
	YearsOfExperience string         `db:"years_of_experience" json:"years_of_experience"`
	JobType           string         `db:"job_type" json:"job_type"`
	Industry          string         `db:"industry" json:"industry"`
	Client            string         `db:"client" json:"client"`
	Owner             string         `db:"owner" json:"owner"`
	Requestor         string         `db:"requestor" json:"requestor"`
	RequiredSkills    string         `db:"required_skills" json:"required_skills"`
	CaseID            *string        `db:"case_id" json:"case_id,omitempty"`
	ResumeCount       int            `db:"resume_count" json:"resume_count"`
	ResumePaths       pq.StringArray `db:"resume_paths" json:"resume_paths"`
	CreatedAt         time.Time      `db:"created_at" json:"created_at"`
}

// ShortlistEvent - строка журнала отправок.
type ShortlistEvent struct {
	ID          uuid.UUID `db:"id" json:"id"`
	EventType   string    `db:"event_type" json:"event_type"`
	SessionID   string    `db:"session_id" json:"session_id"`
	CaseID      string    `db:"case_id" json:"case_id"`
	CandidateID string    `db:"candidate_id" json:"candidate_id"`
	Target      string    `db:"target" json:"target"`
	Success     bool      `db:"success" json:"success"`
	Error       string    `db:"error" json:"error"`
	Payload     []byte    `db:"payload" json:"-"`
	OccurredAt  time.Time `db:"occurred_at" json:"occurred_at"`
}
