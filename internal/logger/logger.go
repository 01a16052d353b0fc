package logger

import (
	"io"

	"github.com/sirupsen/logrus"
)

// Log - общий логгер сервиса. До вызова Init пишет в stderr с уровнем info.
var Log = logrus.New()

// Init инициализирует структурированный логгер.
func Init(level string) {
	Log = logrus.New()

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	Log.SetLevel(lvl)

	// JSON для production, text включается через SetTextFormatter
	Log.SetFormatter(&logrus.JSONFormatter{})
}

// Setup настраивает логгер под окружение: в development текстовый формат и debug.
func Setup(env, level string) {
	if level == "" {
		level = "info"
		if env == "development" {
			level = "debug"
		}
	}
	Init(level)
	if env == "development" {
		SetTextFormatter()
	}
}

// SetTextFormatter устанавливает текстовый формат логов (для development).
func SetTextFormatter() {
	if Log != nil {
		Log.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
	}
}

// SetOutput перенаправляет вывод логгера (CLI пишет логи в stderr, тесты глушат их).
func SetOutput(w io.Writer) {
	Log.SetOutput(w)
}

// Component возвращает entry с полем component.
func Component(name string) *logrus.Entry {
	return Log.WithField("component", name)
}
