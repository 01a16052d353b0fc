package goroutine

import (
	"context"
	"runtime/debug"

	"github.com/ignatzorin/talent-sift/internal/logger"
)

// Logger интерфейс для логирования ошибок
type Logger interface {
	Errorf(format string, args ...interface{})
}

// RecoveryHandler обрабатывает panic в горутинах
type RecoveryHandler struct {
	logger Logger
}

// NewRecoveryHandler создает новый обработчик
func NewRecoveryHandler(logger Logger) *RecoveryHandler {
	return &RecoveryHandler{logger: logger}
}

// SafeGo запускает горутину с обработкой panic
func (rh *RecoveryHandler) SafeGo(fn func()) {
	go rh.run(fn)
}

// SafeGoWithContext запускает горутину с контекстом и обработкой panic
func (rh *RecoveryHandler) SafeGoWithContext(ctx context.Context, fn func(context.Context)) {
	go rh.run(func() { fn(ctx) })
}

// Run выполняет fn синхронно с той же защитой от panic.
func (rh *RecoveryHandler) Run(fn func()) {
	rh.run(fn)
}

func (rh *RecoveryHandler) run(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			rh.logger.Errorf("Panic in goroutine: %v\nStack trace:\n%s", r, debug.Stack())
		}
	}()
	fn()
}

// logrusLogger отправляет ошибки в общий логгер сервиса.
type logrusLogger struct{}

func (logrusLogger) Errorf(format string, args ...interface{}) {
	logger.Log.Errorf(format, args...)
}

// DefaultRecoveryHandler - глобальный обработчик, пишущий в logrus
var DefaultRecoveryHandler = NewRecoveryHandler(logrusLogger{})

// SafeGo - упрощенная функция для запуска безопасной горутины
func SafeGo(fn func()) {
	DefaultRecoveryHandler.SafeGo(fn)
}

// SafeGoWithContext - упрощенная функция для запуска безопасной горутины с контекстом
func SafeGoWithContext(ctx context.Context, fn func(context.Context)) {
	DefaultRecoveryHandler.SafeGoWithContext(ctx, fn)
}
