package config

import (
	"flag"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"

	"stratus-server/internal/engine"
)

// Config - параметры запуска сервера.
// Сначала читаются переменные окружения, затем их перекрывают флаги.
// ReplayChunk ограничивает память под реплей: заполненный сегмент пишется
// в ReplayDir отдельным файлом.
type Config struct {
	Addr          string        `env:"STRATUS_ADDR"           envDefault:":8080"`
	Seed          int64         `env:"STRATUS_SEED"`
	TickRate      time.Duration `env:"STRATUS_TICK_RATE"      envDefault:"100ms"`
	ThinkInterval float64       `env:"STRATUS_THINK_INTERVAL" envDefault:"0.25"`
	ThinkJitter   float64       `env:"STRATUS_THINK_JITTER"   envDefault:"0.1"`
	EventLogSize  int           `env:"STRATUS_EVENT_LOG_SIZE" envDefault:"1024"`
	Catalog       string        `env:"STRATUS_CATALOG"`
	ReplayDir     string        `env:"STRATUS_REPLAY_DIR"     envDefault:"replays"`
	Record        bool          `env:"STRATUS_RECORD"         envDefault:"true"`
	ReplayChunk   int           `env:"STRATUS_REPLAY_CHUNK"   envDefault:"50000"`
}

// Load собирает конфиг из окружения и аргументов командной строки
func Load(args []string) (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	fs := flag.NewFlagSet("stratus-server", flag.ContinueOnError)
	fs.StringVar(&cfg.Addr, "addr", cfg.Addr, "HTTP listen address")
	// 0 - сгенерировать случайно
	fs.Int64Var(&cfg.Seed, "seed", cfg.Seed, "Master seed (0 for random)")
	fs.DurationVar(&cfg.TickRate, "tick", cfg.TickRate, "Simulation step period")
	fs.StringVar(&cfg.Catalog, "catalog", cfg.Catalog, "Path to skill/armor/unit catalog YAML (empty for built-in)")
	fs.StringVar(&cfg.ReplayDir, "replay-dir", cfg.ReplayDir, "Directory for replay files")
	fs.BoolVar(&cfg.Record, "record", cfg.Record, "Record a replay of the fight")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	switch {
	case c.TickRate <= 0:
		return fmt.Errorf("tick rate must be positive, got %s", c.TickRate)
	case c.ThinkInterval <= 0:
		return fmt.Errorf("think interval must be positive, got %v", c.ThinkInterval)
	case c.ThinkJitter < 0:
		return fmt.Errorf("think jitter must not be negative, got %v", c.ThinkJitter)
	case c.EventLogSize <= 0:
		return fmt.Errorf("event log size must be positive, got %d", c.EventLogSize)
	case c.ReplayChunk <= 0:
		return fmt.Errorf("replay chunk must be positive, got %d", c.ReplayChunk)
	}
	return nil
}

// Engine переводит конфиг в параметры арены. Нулевой сид заменяется случайным.
func (c Config) Engine() engine.Config {
	cfg := engine.NewConfig()
	if c.Seed != 0 {
		cfg.Seed = c.Seed
	}
	cfg.TickRate = c.TickRate
	cfg.ThinkInterval = c.ThinkInterval
	cfg.ThinkJitter = c.ThinkJitter
	cfg.EventLogSize = c.EventLogSize
	cfg.Record = c.Record
	cfg.ReplayChunk = c.ReplayChunk
	return cfg
}
