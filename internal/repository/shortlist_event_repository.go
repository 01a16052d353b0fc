package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ignatzorin/talent-sift/internal/audit"
	"github.com/ignatzorin/talent-sift/internal/models"
)

// ShortlistEventRepository хранит журнал отправок. Реализует audit.Sink.
type ShortlistEventRepository struct {
	db *sqlx.DB
}

func NewShortlistEventRepository(db *sqlx.DB) *ShortlistEventRepository {
	return &ShortlistEventRepository{db: db}
}

func (r *ShortlistEventRepository) Name() string { return "postgres" }

// Record пишет события по кандидатам, события запусков пропускает.
func (r *ShortlistEventRepository) Record(ctx context.Context, e audit.Event) error {
	if e.Type == audit.EventRunCompleted {
		return nil
	}
	row, err := EventRow(e)
	if err != nil {
		return err
	}
	return r.Create(ctx, row)
}

func (r *ShortlistEventRepository) Create(ctx context.Context, ev *models.ShortlistEvent) error {
	query := `
		INSERT INTO shortlist_events (
			id, event_type, session_id, case_id, candidate_id, target, success, error, payload, occurred_at
		)
		VALUES (:id, :event_type, :session_id, :case_id, :candidate_id, :target, :success, :error, :payload, :occurred_at)
		ON CONFLICT (id) DO NOTHING
	`
	if _, err := r.db.NamedExecContext(ctx, query, ev); err != nil {
		return fmt.Errorf("repository: create shortlist event: %w", err)
	}
	return nil
}

// ListByCase возвращает журнал по кейсу, новые первыми.
func (r *ShortlistEventRepository) ListByCase(ctx context.Context, caseID string, limit int) ([]models.ShortlistEvent, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	var out []models.ShortlistEvent
	err := r.db.SelectContext(ctx, &out, `
		SELECT * FROM shortlist_events WHERE case_id = $1 ORDER BY occurred_at DESC LIMIT $2
	`, caseID, limit)
	if err != nil {
		return nil, fmt.Errorf("repository: list shortlist events: %w", err)
	}
	return out, nil
}

// EventRow переводит событие журнала в строку таблицы.
func EventRow(e audit.Event) (*models.ShortlistEvent, error) {
	id, err := uuid.Parse(e.ID)
	if err != nil {
		id = uuid.New()
	}
	row := &models.ShortlistEvent{
		ID:          id,
		EventType:   e.Type,
		SessionID:   e.SessionID,
		CaseID:      e.CaseID,
		CandidateID: e.CandidateID,
		Target:      e.Target,
		Success:     e.Success,
		Error:       e.Error,
		OccurredAt:  e.OccurredAt,
	}
	if e.Candidate != nil {
		payload, err := json.Marshal(e.Candidate)
		if err != nil {
			return nil, fmt.Errorf("repository: marshal candidate: %w", err)
		}
		row.Payload = payload
	}
	return row, nil
}
