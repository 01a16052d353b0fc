package board

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/talent-sift/internal/domain/entity"
	"github.com/ignatzorin/talent-sift/internal/domain/valueobject"
)

const sampleRecords = `[
	{"name": "Ada", "score": 9, "experience": 5, "email": "xxx"},
	{"name": "Bo", "score": 3, "experience": 12, "email": "bo@x.com", "phone": "555-0100"}
]`

func TestDecode_ShapesAreEquivalent(t *testing.T) {
	asResult := Decode([]byte(`{"id": 42, "exe_name": "golang", "result": ` + sampleRecords + `}`))
	asResults := Decode([]byte(`{"results": ` + sampleRecords + `}`))
	asList := Decode([]byte(sampleRecords))

	assert.Equal(t, ShapeResult, asResult.Shape)
	assert.Equal(t, ShapeResults, asResults.Shape)
	assert.Equal(t, ShapeList, asList.Shape)

	strip := func(in []entity.Candidate) []entity.Candidate {
		out := make([]entity.Candidate, len(in))
		for i, c := range in {
			c.ExecutionName = ""
			out[i] = c
		}
		return out
	}
	assert.Equal(t, strip(asList.Candidates), strip(asResult.Candidates))
	assert.Equal(t, asList.Candidates, asResults.Candidates)

	assert.Equal(t, "42", asResult.CaseID)
	assert.Equal(t, "golang", asResult.ExecutionName)
	assert.Equal(t, "golang", asResult.Candidates[0].ExecutionName)
}

func TestDecode_FirstNonEmptyShapeWins(t *testing.T) {
	batch := Decode([]byte(`{"result": [], "results": [{"name": "Cy"}]}`))

	assert.Equal(t, ShapeResults, batch.Shape)
	require.Len(t, batch.Candidates, 1)
	assert.Equal(t, "Cy", batch.Candidates[0].Name)
}

func TestDecode_MismatchYieldsEmptyBatch(t *testing.T) {
	inputs := []string{
		``,
		`null`,
		`"text"`,
		`{"data": [{"name": "x"}]}`,
		`{"result": "not a list"}`,
		`{"result": []}`,
		`[]`,
		`{broken`,
	}
	for _, in := range inputs {
		batch := Decode([]byte(in))
		assert.Equal(t, ShapeNone, batch.Shape, in)
		assert.NotNil(t, batch.Candidates, in)
		assert.Empty(t, batch.Candidates, in)
	}
}

func TestNormalize_Defaults(t *testing.T) {
	batch := Decode([]byte(`[
		{},
		{"name": "  ", "score": "7.5", "experience": "-3", "email": "", "phone": "xxx"},
		{"name": "Dee", "score": "high", "experience": "ten", "justification": " solid "},
		42
	]`))

	require.Len(t, batch.Candidates, 4)

	first := batch.Candidates[0]
	assert.Equal(t, "1", first.CandidateID)
	assert.Equal(t, "Candidate 1", first.Name)
	assert.Zero(t, first.Score)
	assert.Zero(t, first.Experience)
	assert.Equal(t, entity.NoEmail, first.Email)
	assert.Equal(t, entity.NoPhone, first.Phone)
	assert.Equal(t, "", first.Justification)
	assert.Equal(t, valueobject.ShortlistNotSubmitted, first.ShortlistStatus)

	second := batch.Candidates[1]
	assert.Equal(t, "Candidate 2", second.Name)
	assert.Equal(t, 7.5, second.Score)
	assert.Zero(t, second.Experience)
	assert.Equal(t, entity.NoEmail, second.Email)
	assert.Equal(t, entity.NoPhone, second.Phone)

	third := batch.Candidates[2]
	assert.Zero(t, third.Score)
	assert.Zero(t, third.Experience)
	assert.Equal(t, "solid", third.Justification)

	assert.Equal(t, "Candidate 4", batch.Candidates[3].Name)
}

func TestNormalize_UniqueIDs(t *testing.T) {
	batch := Decode([]byte(`[
		{"candidateId": 7},
		{"candidateId": "7"},
		{},
		{"candidateId": "3"}
	]`))

	ids := make([]string, 0, len(batch.Candidates))
	for _, c := range batch.Candidates {
		ids = append(ids, c.CandidateID)
	}
	assert.Equal(t, []string{"7", "7-2", "3", "3-2"}, ids)
}

func TestNormalize_KeySkills(t *testing.T) {
	batch := Decode([]byte(`[{"keySkills": ["go", "", "sql"]}, {"keySkills": "kafka, redis"}]`))

	assert.Equal(t, []string{"go", "sql"}, batch.Candidates[0].KeySkills)
	assert.Equal(t, []string{"kafka", "redis"}, batch.Candidates[1].KeySkills)
}

func TestNormalize_WithheldContactExactMatch(t *testing.T) {
	batch := Decode([]byte(`[
		{"name": "A", "email": "xxx", "phone": "xxx"},
		{"name": "B", "email": "XXX", "phone": " xxx "},
		{"name": "C", "email": "   ", "phone": 5551234}
	]`))
	require.Len(t, batch.Candidates, 3)

	assert.Equal(t, entity.NoEmail, batch.Candidates[0].Email)
	assert.Equal(t, entity.NoPhone, batch.Candidates[0].Phone)

	assert.Equal(t, "XXX", batch.Candidates[1].Email)
	assert.Equal(t, " xxx ", batch.Candidates[1].Phone)

	assert.Equal(t, "   ", batch.Candidates[2].Email)
	assert.Equal(t, entity.NoPhone, batch.Candidates[2].Phone)
}
