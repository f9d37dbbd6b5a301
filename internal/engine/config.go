package engine

import "time"

// Config хранит параметры запуска арены
type Config struct {
	// Seed - мастер-зерно. От него зависят зерна агентов и разброс решений.
	Seed int64
	// TickRate - период шага симуляции в Run
	TickRate time.Duration
	// ThinkInterval - пауза между решениями агента (секунды боя)
	ThinkInterval float64
	// ThinkJitter - случайная добавка к паузе из [0, ThinkJitter)
	ThinkJitter float64
	// EventLogSize - сколько последних событий хранит арена
	EventLogSize int
	// Record - писать команды и события в реплей
	Record bool
	// ReplayChunk - сколько записей реплея держать в памяти. Заполненный
	// сегмент уходит получателю из SetReplaySink (или отбрасывается).
	ReplayChunk int
}

// NewConfig создает конфиг по умолчанию (случайный сид)
func NewConfig() Config {
	return Config{
		Seed:          time.Now().UnixNano(),
		TickRate:      100 * time.Millisecond,
		ThinkInterval: 0.25,
		ThinkJitter:   0.1,
		EventLogSize:  1024,
		Record:        true,
		ReplayChunk:   50000,
	}
}
