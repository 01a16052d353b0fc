package board

import (
	"strings"

	"github.com/ignatzorin/talent-sift/internal/domain/entity"
	"github.com/ignatzorin/talent-sift/internal/domain/valueobject"
)

// FilterCriteria - набор предикатов, по которому строится видимый список.
type FilterCriteria struct {
	SearchText      string            `json:"searchText"`
	ScoreRange      valueobject.Range `json:"scoreRange"`
	ExperienceRange valueobject.Range `json:"experienceRange"`
	RequireEmail    bool              `json:"requireEmail"`
	RequirePhone    bool              `json:"requirePhone"`
}

// DefaultCriteria возвращает критерии, с которыми открывается список.
func DefaultCriteria() FilterCriteria {
	return FilterCriteria{
		ScoreRange:      valueobject.ScoreDomain,
		ExperienceRange: valueobject.ExperienceDomain,
	}
}

// RangePatch - частичное обновление границ интервала.
type RangePatch struct {
	Lo *float64 `json:"lo,omitempty"`
	Hi *float64 `json:"hi,omitempty"`
}

// FilterPatch - частичное обновление критериев; nil поля не меняются.
type FilterPatch struct {
	SearchText      *string     `json:"searchText,omitempty"`
	ScoreRange      *RangePatch `json:"scoreRange,omitempty"`
	ExperienceRange *RangePatch `json:"experienceRange,omitempty"`
	RequireEmail    *bool       `json:"requireEmail,omitempty"`
	RequirePhone    *bool       `json:"requirePhone,omitempty"`
}

// IsEmpty сообщает, что патч ничего не меняет.
func (p FilterPatch) IsEmpty() bool {
	return p.SearchText == nil && p.ScoreRange == nil && p.ExperienceRange == nil &&
		p.RequireEmail == nil && p.RequirePhone == nil
}

// Merge применяет патч. Интервалы прижимаются к своим доменам, а не отклоняются.
func (f FilterCriteria) Merge(p FilterPatch) FilterCriteria {
	out := f
	if p.SearchText != nil {
		out.SearchText = *p.SearchText
	}
	if p.ScoreRange != nil {
		out.ScoreRange = f.ScoreRange.Merge(p.ScoreRange.Lo, p.ScoreRange.Hi, valueobject.ScoreDomain)
	}
	if p.ExperienceRange != nil {
		out.ExperienceRange = f.ExperienceRange.Merge(p.ExperienceRange.Lo, p.ExperienceRange.Hi, valueobject.ExperienceDomain)
	}
	if p.RequireEmail != nil {
		out.RequireEmail = *p.RequireEmail
	}
	if p.RequirePhone != nil {
		out.RequirePhone = *p.RequirePhone
	}
	return out
}

// Accepts проверяет все предикаты сразу (логическое И).
func (f FilterCriteria) Accepts(c *entity.Candidate) bool {
	if !c.Matches(f.SearchText) {
		return false
	}
	if !f.ScoreRange.Contains(c.Score) || !f.ExperienceRange.Contains(c.Experience) {
		return false
	}
	if f.RequireEmail && !c.HasEmail() {
		return false
	}
	if f.RequirePhone && !c.HasPhone() {
		return false
	}
	return true
}

// Describe возвращает человекочитаемое описание критериев (для экспорта и логов).
func (f FilterCriteria) Describe() []string {
	lines := []string{
		"Score: " + f.ScoreRange.String(),
		"Experience: " + f.ExperienceRange.String(),
	}
	if s := strings.TrimSpace(f.SearchText); s != "" {
		lines = append([]string{"Search: " + s}, lines...)
	}
	if f.RequireEmail {
		lines = append(lines, "Email required")
	}
	if f.RequirePhone {
		lines = append(lines, "Phone required")
	}
	return lines
}

// Apply - стабильный фильтр: порядок исходного списка сохраняется.
func Apply(candidates []entity.Candidate, f FilterCriteria) []entity.Candidate {
	out := make([]entity.Candidate, 0, len(candidates))
	for i := range candidates {
		if f.Accepts(&candidates[i]) {
			out = append(out, candidates[i].Clone())
		}
	}
	return out
}
