package board

import (
	"math"
	"strconv"
	"strings"

	"github.com/ignatzorin/talent-sift/internal/domain/entity"
	"github.com/ignatzorin/talent-sift/internal/domain/valueobject"
)

// Normalize приводит записи workflow к кандидатам. Порядок сохраняется,
// candidateId уникален в пределах пачки.
func Normalize(records []RawRecord) []entity.Candidate {
	out := make([]entity.Candidate, 0, len(records))
	seen := make(map[string]struct{}, len(records))

	for i, rec := range records {
		position := i + 1

		id := scalarString(rec["candidateId"])
		if id == "" {
			id = strconv.Itoa(position)
		}
		id = uniqueID(id, seen)

		name := scalarString(rec["name"])
		if name == "" {
			name = "Candidate " + strconv.Itoa(position)
		}

		experience := coerceNumber(rec["experience"])
		if experience < 0 {
			experience = 0
		}

		out = append(out, entity.Candidate{
			CandidateID:     id,
			Name:            name,
			Score:           coerceNumber(rec["score"]),
			Experience:      experience,
			Email:           contact(rec["email"], entity.NoEmail),
			Phone:           contact(rec["phone"], entity.NoPhone),
			Justification:   textField(rec["justification"]),
			KeySkills:       skills(rec["keySkills"]),
			ExecutionName:   textField(rec["exe_name"]),
			ShortlistStatus: valueobject.ShortlistNotSubmitted,
		})
	}
	return out
}

func uniqueID(id string, seen map[string]struct{}) string {
	candidate := id
	for n := 2; ; n++ {
		if _, dup := seen[candidate]; !dup {
			seen[candidate] = struct{}{}
			return candidate
		}
		candidate = id + "-" + strconv.Itoa(n)
	}
}

// coerceNumber принимает числа и числовые строки; всё остальное даёт 0.
func coerceNumber(v any) float64 {
	var f float64
	switch t := v.(type) {
	case float64:
		f = t
	case int:
		f = float64(t)
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0
		}
		f = parsed
	default:
		return 0
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

// contact сравнивает значение с заглушкой как есть, без обрезки и регистра.
func contact(v any, placeholder string) string {
	s, ok := v.(string)
	if !ok || s == "" || s == entity.SentinelWithheld {
		return placeholder
	}
	return s
}

func textField(v any) string {
	if s, ok := v.(string); ok {
		return strings.TrimSpace(s)
	}
	return ""
}

func skills(v any) []string {
	var out []string
	switch t := v.(type) {
	case []any:
		for _, item := range t {
			if s := scalarString(item); s != "" {
				out = append(out, s)
			}
		}
	case string:
		for _, part := range strings.Split(t, ",") {
			if s := strings.TrimSpace(part); s != "" {
				out = append(out, s)
			}
		}
	}
	return out
}
