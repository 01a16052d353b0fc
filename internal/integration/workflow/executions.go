package workflow

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/ignatzorin/talent-sift/internal/board"
)

// Execution - один прошлый запуск workflow.
type Execution struct {
	ID      any             `json:"id"`
	ExeName string          `json:"exe_name"`
	Result  json.RawMessage `json:"result"`
}

// MatchExecutions отбирает запуски, в имени которых встречается навык (без учёта
// регистра), и склеивает их результаты в одну пачку. Кандидаты получают id вида
// "<exe_name>-<номер>", а навыки по умолчанию равны имени запуска.
func MatchExecutions(executions []Execution, keySkill string) board.Batch {
	skill := strings.ToLower(strings.TrimSpace(keySkill))
	var records []board.RawRecord

	for _, exe := range executions {
		if exe.ExeName == "" || !strings.Contains(strings.ToLower(exe.ExeName), skill) {
			continue
		}

		var items []board.RawRecord
		if err := json.Unmarshal(exe.Result, &items); err != nil {
			continue
		}
		for idx, item := range items {
			if item == nil {
				item = board.RawRecord{}
			}
			item["candidateId"] = exe.ExeName + "-" + strconv.Itoa(idx)
			if _, ok := item["keySkills"].([]any); !ok {
				item["keySkills"] = []any{exe.ExeName}
			}
			item["exe_name"] = exe.ExeName
			records = append(records, item)
		}
	}

	batch := board.NewBatch(records, "", "")
	batch.ExecutionName = strings.TrimSpace(keySkill)
	return batch
}
