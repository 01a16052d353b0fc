package valueobject

import (
	"fmt"
	"math"
)

// Range - замкнутый интервал [Lo, Hi].
type Range struct {
	Lo float64 `json:"lo"`
	Hi float64 `json:"hi"`
}

var (
	// ScoreDomain - допустимые границы фильтра по оценке.
	ScoreDomain = Range{Lo: 1, Hi: 10}
	// ExperienceDomain - допустимые границы фильтра по опыту (лет).
	ExperienceDomain = Range{Lo: 0, Hi: 35}
)

// Contains проверяет вхождение значения (границы включены).
func (r Range) Contains(v float64) bool {
	return v >= r.Lo && v <= r.Hi
}

// Clamp прижимает значение к границам интервала.
func (r Range) Clamp(v float64) float64 {
	if v < r.Lo {
		return r.Lo
	}
	if v > r.Hi {
		return r.Hi
	}
	return v
}

// Merge применяет частичное обновление границ и всегда возвращает корректный интервал
// внутри domain. Если после слияния lo > hi, побеждает граница, заданная в этом вызове;
// при обеих заданных границах они меняются местами.
func (r Range) Merge(lo, hi *float64, domain Range) Range {
	out := Range{Lo: domain.Clamp(r.Lo), Hi: domain.Clamp(r.Hi)}
	loSet := lo != nil && !math.IsNaN(*lo)
	hiSet := hi != nil && !math.IsNaN(*hi)

	if loSet {
		out.Lo = domain.Clamp(*lo)
	}
	if hiSet {
		out.Hi = domain.Clamp(*hi)
	}

	if out.Lo > out.Hi {
		switch {
		case loSet && hiSet:
			out.Lo, out.Hi = out.Hi, out.Lo
		case hiSet:
			out.Lo = out.Hi
		default:
			out.Hi = out.Lo
		}
	}
	return out
}

func (r Range) String() string {
	return fmt.Sprintf("%g-%g", r.Lo, r.Hi)
}
