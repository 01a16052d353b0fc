package board

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/ignatzorin/talent-sift/internal/domain/entity"
	"github.com/ignatzorin/talent-sift/internal/logger"
)

// Shape - форма, в которой пришёл список результатов ранжирования.
type Shape string

const (
	ShapeResult  Shape = "result"  // {"result": [...]}
	ShapeResults Shape = "results" // {"results": [...]}
	ShapeList    Shape = "list"    // [...]
	ShapeNone    Shape = "none"    // ни одна форма не подошла
)

// RawRecord - запись кандидата в том виде, в котором её вернул workflow.
type RawRecord map[string]any

// Batch - типизированный результат разбора одного ответа workflow.
type Batch struct {
	Shape         Shape              `json:"shape"`
	CaseID        string             `json:"caseId,omitempty"`
	ExecutionName string             `json:"exeName,omitempty"`
	Candidates    []entity.Candidate `json:"candidates"`
}

var (
	errShapeMismatch = errors.New("board: форма не совпала")
	errEmptyList     = errors.New("board: пустой список")
)

type shapeDecoder struct {
	shape  Shape
	decode func(raw []byte) ([]RawRecord, error)
}

// decoders перебираются по порядку, побеждает первый непустой список.
var decoders = []shapeDecoder{
	{shape: ShapeResult, decode: fieldDecoder("result")},
	{shape: ShapeResults, decode: fieldDecoder("results")},
	{shape: ShapeList, decode: decodeList},
}

// Decode разбирает ответ workflow в Batch. Нераспознанный ответ даёт пустой Batch
// с формой ShapeNone, а не ошибку.
func Decode(raw []byte) Batch {
	for _, d := range decoders {
		records, err := d.decode(raw)
		if err != nil {
			continue
		}
		caseID, exeName := decodeEnvelope(raw)
		batch := NewBatch(records, caseID, exeName)
		batch.Shape = d.shape
		return batch
	}

	logger.Component("board").WithField("bytes", len(raw)).Debug("ответ workflow не содержит списка кандидатов")
	return Batch{Shape: ShapeNone, Candidates: []entity.Candidate{}}
}

// NewBatch нормализует уже извлечённые записи.
func NewBatch(records []RawRecord, caseID, executionName string) Batch {
	candidates := Normalize(records)
	if executionName != "" {
		for i := range candidates {
			if candidates[i].ExecutionName == "" {
				candidates[i].ExecutionName = executionName
			}
		}
	}
	return Batch{
		Shape:         ShapeList,
		CaseID:        caseID,
		ExecutionName: executionName,
		Candidates:    candidates,
	}
}

func fieldDecoder(key string) func([]byte) ([]RawRecord, error) {
	return func(raw []byte) ([]RawRecord, error) {
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(raw, &obj); err != nil {
			return nil, errShapeMismatch
		}
		field, ok := obj[key]
		if !ok {
			return nil, errShapeMismatch
		}
		return decodeList(field)
	}
}

func decodeList(raw []byte) ([]RawRecord, error) {
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, errShapeMismatch
	}
	if len(items) == 0 {
		return nil, errEmptyList
	}

	records := make([]RawRecord, 0, len(items))
	for _, item := range items {
		var rec RawRecord
		// элемент, не являющийся объектом, становится пустой записью и получает значения по умолчанию
		if err := json.Unmarshal(item, &rec); err != nil || rec == nil {
			rec = RawRecord{}
		}
		records = append(records, rec)
	}
	return records, nil
}

// decodeEnvelope достаёт id и exe_name из объектной формы ответа.
func decodeEnvelope(raw []byte) (caseID, exeName string) {
	var env struct {
		ID      any `json:"id"`
		ExeName any `json:"exe_name"`
	}
	if err := json.Unmarshal(raw, &env); err != nil {
		return "", ""
	}
	return scalarString(env.ID), scalarString(env.ExeName)
}

// scalarString приводит строку, число или bool к строке; остальное даёт "".
func scalarString(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case json.Number:
		return t.String()
	case bool:
		return strconv.FormatBool(t)
	case nil:
		return ""
	default:
		return fmt.Sprint(t)
	}
}
