package engine

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"stratus-server/pkg/api"
	"stratus-server/pkg/logger"
)

// AddLog добавляет запись в журнал арены (уходит клиентам со следующим сообщением)
func (a *Arena) AddLog(text, logType string) {
	if logType == "" {
		logType = "INFO"
	}
	a.logs = append(a.logs, api.LogEntry{
		ID:        fmt.Sprintf("%d_%d", a.seed, time.Now().UnixNano()),
		Text:      text,
		Type:      logType,
		Timestamp: time.Now().UnixMilli(),
	})
	logger.Log.WithFields(logrus.Fields{
		"component": "combat_log",
		"log_type":  logType,
		"time":      a.system.Clock(),
	}).Info(text)
}

// drainLogs забирает накопленные записи журнала
func (a *Arena) drainLogs() []api.LogEntry {
	out := a.logs
	a.logs = nil
	return out
}
