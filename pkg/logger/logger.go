package logger

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// Log является глобальным экземпляром логгера для всего приложения.
// До вызова Init пишет в stderr с уровнем info, поэтому пакеты можно
// использовать и из тестов без явной инициализации.
var Log = logrus.New()

// Init настраивает логгер из переменных окружения LOG_LEVEL и LOG_FORMAT.
func Init() {
	Configure(os.Getenv("LOG_LEVEL"), os.Getenv("LOG_FORMAT"), os.Stdout)
}

// Configure выставляет уровень, формат ("json" / "text") и вывод.
// Пустой или неизвестный уровень - "info".
func Configure(level, format string, out io.Writer) {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	Log.SetLevel(lvl)

	if strings.ToLower(format) == "json" {
		Log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		Log.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
			ForceColors:   true,
		})
	}

	if out != nil {
		Log.SetOutput(out)
	}
}

// For возвращает entry с полем component
func For(component string) *logrus.Entry {
	return Log.WithField("component", component)
}
