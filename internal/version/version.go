package version

import (
	"fmt"
	"time"
)

// Заполняются при сборке через -ldflags "-X stratus-server/internal/version.BuildDate=..."
var (
	BuildDate   string // YYYY-MM-DD (UTC)
	BuildCommit string
	BuildBranch string
)

// Protocol - версия websocket-протокола (pkg/api). Меняется при
// несовместимых изменениях команд или ответов.
const Protocol = 1

// epoch - день, от которого считается номер сборки
var epoch = time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)

// VersionInfo - метаданные сборки для /version и логов
type VersionInfo struct {
	BuildID   int    `json:"buildId"`
	BuildDate string `json:"buildDate,omitempty"`
	Commit    string `json:"commit"`
	Branch    string `json:"branch"`
	Protocol  int    `json:"protocol"`
	Error     string `json:"error,omitempty"`
}

// BuildID - номер сборки: число дней от epoch до date (YYYY-MM-DD, UTC)
func BuildID(date string) (int, error) {
	if date == "" {
		return 0, fmt.Errorf("build date is empty")
	}
	t, err := time.ParseInLocation("2006-01-02", date, time.UTC)
	if err != nil {
		return 0, fmt.Errorf("invalid build date %q: %w", date, err)
	}
	if t.Before(epoch) {
		return 0, fmt.Errorf("build date %s is before %s", date, epoch.Format("2006-01-02"))
	}
	return int(t.Sub(epoch).Hours() / 24), nil
}

// Info собирает метаданные текущей сборки
func Info() VersionInfo {
	info := VersionInfo{
		BuildDate: BuildDate,
		Commit:    coalesce(BuildCommit, "unknown"),
		Branch:    coalesce(BuildBranch, "unknown"),
		Protocol:  Protocol,
	}
	id, err := BuildID(BuildDate)
	if err != nil {
		info.Error = err.Error()
		return info
	}
	info.BuildID = id
	return info
}

func (v VersionInfo) String() string {
	if v.Error != "" {
		return fmt.Sprintf("stratus dev build protocol[%d] (%s)", v.Protocol, v.Error)
	}
	return fmt.Sprintf("stratus build %d (%s) commit[%s] branch[%s] protocol[%d]",
		v.BuildID, v.BuildDate, v.Commit, v.Branch, v.Protocol)
}

// String - Info().String()
func String() string { return Info().String() }

func coalesce(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
