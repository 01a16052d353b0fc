package entity

import "strconv"

// Submission - данные кандидата, уходящие во внешнюю систему при отправке.
type Submission struct {
	Source        string  `json:"source"`
	CaseID        string  `json:"case_id"`
	Name          string  `json:"name"`
	Email         string  `json:"email"`
	Phone         string  `json:"phone"`
	Experience    float64 `json:"experience"`
	Score         float64 `json:"score"`
	Justification string  `json:"justification"`
	Client        string  `json:"client"`
	Industry      string  `json:"industry"`
	Owner         string  `json:"owner"`
	Skills        string  `json:"skills"`
}

// ExperienceText и ScoreText форматируют числа без лишних нулей.
func (s Submission) ExperienceText() string {
	return strconv.FormatFloat(s.Experience, 'f', -1, 64)
}

func (s Submission) ScoreText() string {
	return strconv.FormatFloat(s.Score, 'f', -1, 64)
}
