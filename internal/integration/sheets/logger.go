// Package sheets ведёт журнал запусков и отправок в Google Sheets.
package sheets

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/api/option"
	gsheets "google.golang.org/api/sheets/v4"

	"github.com/ignatzorin/talent-sift/internal/audit"
)

// Appender добавляет строки в диапазон таблицы.
type Appender interface {
	Append(ctx context.Context, rangeA1 string, rows [][]interface{}) error
}

type serviceAppender struct {
	svc           *gsheets.Service
	spreadsheetID string
}

func (a *serviceAppender) Append(ctx context.Context, rangeA1 string, rows [][]interface{}) error {
	_, err := a.svc.Spreadsheets.Values.
		Append(a.spreadsheetID, rangeA1, &gsheets.ValueRange{Values: rows}).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	return err
}

// Logger пишет события журнала построчно.
type Logger struct {
	appender       Appender
	runsRange      string
	shortlistRange string
}

// NewLogger подключается к Sheets API по файлу сервисного аккаунта.
func NewLogger(ctx context.Context, spreadsheetID, credentialsPath, runsRange, shortlistRange string) (*Logger, error) {
	if spreadsheetID == "" {
		return nil, fmt.Errorf("sheets: spreadsheet id is required")
	}
	opts := []option.ClientOption{option.WithScopes(gsheets.SpreadsheetsScope)}
	if credentialsPath != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsPath))
	}
	svc, err := gsheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("sheets: unable to create client: %w", err)
	}
	return NewLoggerWithAppender(&serviceAppender{svc: svc, spreadsheetID: spreadsheetID}, runsRange, shortlistRange), nil
}

func NewLoggerWithAppender(a Appender, runsRange, shortlistRange string) *Logger {
	return &Logger{appender: a, runsRange: runsRange, shortlistRange: shortlistRange}
}

func (l *Logger) Name() string { return "sheets" }

// Record реализует audit.Sink. Неудачные отправки в таблицу не попадают.
func (l *Logger) Record(ctx context.Context, e audit.Event) error {
	switch e.Type {
	case audit.EventRunCompleted:
		if e.Run == nil {
			return nil
		}
		return l.append(ctx, l.runsRange, RunRow(e))
	case audit.EventCandidateShortlisted:
		if e.Candidate == nil {
			return nil
		}
		return l.append(ctx, l.shortlistRange, ShortlistRow(e))
	}
	return nil
}

func (l *Logger) append(ctx context.Context, rangeA1 string, row []interface{}) error {
	if err := l.appender.Append(ctx, rangeA1, [][]interface{}{row}); err != nil {
		return fmt.Errorf("sheets: append %s: %w", rangeA1, err)
	}
	return nil
}

// RunRow: время, email, число резюме, номер кейса ("N/A" если нет), должность.
func RunRow(e audit.Event) []interface{} {
	caseID := e.CaseID
	if caseID == "" {
		caseID = "N/A"
	}
	return []interface{}{
		e.OccurredAt.Format("2006-01-02 15:04:05"),
		e.Run.Email,
		e.Run.ResumeCount,
		caseID,
		e.Run.JobTitle,
	}
}

// ShortlistRow: время, цель, кейс, имя, email, телефон, оценка, навыки.
func ShortlistRow(e audit.Event) []interface{} {
	c := e.Candidate
	skills := strings.TrimSpace(c.Skills)
	if skills == "" {
		skills = "No Skills"
	}
	return []interface{}{
		e.OccurredAt.Format("2006-01-02 15:04:05"),
		e.Target,
		c.CaseID,
		c.Name,
		c.Email,
		c.Phone,
		c.ScoreText(),
		skills,
	}
}
