package repository

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/talent-sift/internal/audit"
	"github.com/ignatzorin/talent-sift/internal/domain/entity"
)

func TestEventRow_KeepsIDAndPayload(t *testing.T) {
	id := uuid.New()
	at := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)

	row, err := EventRow(audit.Event{
		ID:          id.String(),
		Type:        audit.EventCandidateShortlistFail,
		CaseID:      "CS7",
		CandidateID: "3",
		Target:      "servicenow",
		Error:       "servicenow: статус 502",
		OccurredAt:  at,
		Candidate:   &entity.Submission{Name: "Ada", Score: 7},
	})
	require.NoError(t, err)

	assert.Equal(t, id, row.ID)
	assert.False(t, row.Success)
	assert.Equal(t, at, row.OccurredAt)

	var s entity.Submission
	require.NoError(t, json.Unmarshal(row.Payload, &s))
	assert.Equal(t, "Ada", s.Name)
}

func TestEventRow_GeneratesIDWhenInvalid(t *testing.T) {
	row, err := EventRow(audit.Event{ID: "not-a-uuid", Type: audit.EventCandidateShortlisted})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, row.ID)
	assert.Nil(t, row.Payload)
}
