package api

import (
	"encoding/json"
)

// --- СЕРВЕР -> КЛИЕНТ ---

// Типы сообщений сервера
const (
	MessageEvent    = "EVENT"
	MessageSnapshot = "SNAPSHOT"
	MessageResult   = "RESULT"
	MessageError    = "ERROR"
)

// ServerResponse это корневой объект, который сервер отправляет клиенту.
type ServerResponse struct {
	// Type - EVENT, SNAPSHOT, RESULT или ERROR.
	Type string `json:"type"`

	// Time - время боя в секундах.
	Time float64 `json:"time"`

	// Event - одно событие боя (Type == EVENT).
	Event json.RawMessage `json:"event,omitempty"`

	// Controllers - состояние всех участников (Type == SNAPSHOT).
	Controllers []ControllerView `json:"controllers,omitempty"`

	// Skills - доступные навыки (Type == SNAPSHOT).
	Skills []SkillView `json:"skills,omitempty"`

	// Logs - текстовые записи, появившиеся после прошлого сообщения.
	Logs []LogEntry `json:"logs,omitempty"`

	// Error - текст ошибки команды (Type == ERROR).
	Error string `json:"error,omitempty"`
}

// ControllerView это DTO участника боя
type ControllerView struct {
	ID       string     `json:"id"`
	Name     string     `json:"name"`
	Faction  string     `json:"faction"`
	State    string     `json:"state"`
	Position [3]float64 `json:"position"`

	Stats StatsView `json:"stats"`

	Target       string   `json:"target,omitempty"`
	Action       string   `json:"action,omitempty"`
	Phase        string   `json:"phase,omitempty"`
	Invulnerable bool     `json:"invulnerable,omitempty"`
	Skills       []string `json:"skills,omitempty"`
	Cooldowns    []string `json:"cooldowns,omitempty"`
}

// StatsView это DTO для характеристик контроллера
type StatsView struct {
	Health     float64 `json:"health"`
	MaxHealth  float64 `json:"maxHealth"`
	Defense    float64 `json:"defense"`
	Stamina    float64 `json:"stamina"`
	MaxStamina float64 `json:"maxStamina"`
}

// SkillView - навык из каталога
type SkillView struct {
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	Targeting   string  `json:"targeting"`
	Cost        float64 `json:"cost"`
	Cooldown    float64 `json:"cooldown"`
	Range       float64 `json:"range"`
}

// LogEntry представляет одну запись в журнале боя.
type LogEntry struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	Type      string `json:"type"`      // INFO, COMBAT, ERROR
	Timestamp int64  `json:"timestamp"` // Unix milliseconds
}

// --- КЛИЕНТ -> СЕРВЕР ---

// ClientCommand это корневой объект для всех сообщений от клиента к серверу.
type ClientCommand struct {
	// Token ID контроллера, от имени которого выполняется действие.
	// Для админских команд (DAMAGE, HEAL, ...) может быть пустым.
	Token string `json:"token,omitempty"`

	// Action название действия.
	Action string `json:"action"`

	// Payload JSON-объект с данными для действия. Его структура зависит от Action.
	Payload json.RawMessage `json:"payload"`
}

// --- Payloads ---

// EntityPayload - команда, нацеленная на контроллер (RESTORE, REVIVE, PAUSE, RESUME).
type EntityPayload struct {
	TargetID string `json:"targetId"`
}

// DamagePayload используется для DAMAGE.
type DamagePayload struct {
	TargetID string  `json:"targetId"`
	Value    float64 `json:"value"`
	Piercing bool    `json:"piercing,omitempty"`
}

// HealPayload используется для HEAL.
type HealPayload struct {
	TargetID string  `json:"targetId"`
	Value    float64 `json:"value"`
}

// StatePayload используется для CHANGE_STATE.
type StatePayload struct {
	TargetID string `json:"targetId"`
	State    string `json:"state"`
}

// InvulnerablePayload используется для INVULNERABLE.
type InvulnerablePayload struct {
	TargetID string `json:"targetId"`
	Toggle   bool   `json:"toggle"`
}

// TargetPayload используется для TARGET: контроллер из Token выбирает цель.
// Пустой TargetID сбрасывает цель.
type TargetPayload struct {
	TargetID string `json:"targetId"`
}

// InterruptPayload используется для INTERRUPT.
type InterruptPayload struct {
	TargetID string  `json:"targetId"`
	Duration float64 `json:"duration"`
}

// TelegraphPayload - область навыка, заданная клиентом.
type TelegraphPayload struct {
	Shape  string  `json:"shape"`
	Radius float64 `json:"radius"`
	Angle  float64 `json:"angle,omitempty"`
}

// CastPayload используется для CAST: контроллер из Token применяет навык.
type CastPayload struct {
	Skill     string            `json:"skill"`
	TargetID  string            `json:"targetId,omitempty"`
	Telegraph *TelegraphPayload `json:"telegraph,omitempty"`
}
