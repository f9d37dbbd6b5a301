package domain

import (
	"encoding/json"
	"strings"
)

// EventType - внутренний числовой идентификатор события
type EventType uint8

const (
	EventUnknown EventType = iota
	EventSpawn
	EventActive
	EventDeath
	EventRevive
	EventChangeState
	EventStateChanged
	EventTarget
	EventPause
	EventResume
	EventInterrupt
	EventInvulnerability
	EventDamageBlocked
	EventDamageReceived
	EventHealthModified
	EventActionSelected
	EventActionStarted
	EventActionTriggered
	EventActionExecuted
	EventActionEnded
	EventActionCanceled
	EventSkillCast
)

// Маппинг для конвертации JSON -> Domain
var eventStringToType = map[string]EventType{
	"SPAWN":            EventSpawn,
	"ACTIVE":           EventActive,
	"DEATH":            EventDeath,
	"REVIVE":           EventRevive,
	"CHANGE_STATE":     EventChangeState,
	"STATE_CHANGED":    EventStateChanged,
	"TARGET":           EventTarget,
	"PAUSE":            EventPause,
	"RESUME":           EventResume,
	"INTERRUPT":        EventInterrupt,
	"INVULNERABILITY":  EventInvulnerability,
	"DAMAGE_BLOCKED":   EventDamageBlocked,
	"DAMAGE_RECEIVED":  EventDamageReceived,
	"HEALTH_MODIFIED":  EventHealthModified,
	"ACTION_SELECTED":  EventActionSelected,
	"ACTION_STARTED":   EventActionStarted,
	"ACTION_TRIGGERED": EventActionTriggered,
	"ACTION_EXECUTED":  EventActionExecuted,
	"ACTION_ENDED":     EventActionEnded,
	"ACTION_CANCELED":  EventActionCanceled,
	"SKILL_CAST":       EventSkillCast,
}

// Маппинг для логов Domain -> String
var eventTypeToString = func() map[EventType]string {
	m := make(map[EventType]string, len(eventStringToType))
	for k, v := range eventStringToType {
		m[v] = k
	}
	return m
}()

// ParseEvent конвертирует строку из JSON в EventType
func ParseEvent(s string) EventType {
	if val, ok := eventStringToType[strings.ToUpper(s)]; ok {
		return val
	}
	return EventUnknown
}

func (e EventType) String() string {
	if val, ok := eventTypeToString[e]; ok {
		return val
	}
	return "UNKNOWN"
}

func (e EventType) MarshalText() ([]byte, error) { return []byte(e.String()), nil }

func (e *EventType) UnmarshalText(text []byte) error {
	*e = ParseEvent(string(text))
	return nil
}

// Event - типизированное сообщение от контроллеров, навыков и AI.
// Поля, не относящиеся к типу события, остаются нулевыми.
type Event struct {
	Type    EventType       `json:"type"`
	Time    float64         `json:"time"`
	Source  string          `json:"source,omitempty"`
	Target  string          `json:"target,omitempty"`
	Value   float64         `json:"value,omitempty"`
	Percent float64         `json:"percent,omitempty"` // доля здоровья в процентах
	State   ControllerState `json:"state,omitempty"`
	Name    string          `json:"name,omitempty"`
	Flag    bool            `json:"flag,omitempty"`
}

func (e Event) JSON() []byte {
	data, _ := json.Marshal(e)
	return data
}

// EventSink - получатель событий
type EventSink interface {
	Publish(e Event)
}

// SinkFunc адаптирует функцию к EventSink
type SinkFunc func(e Event)

func (f SinkFunc) Publish(e Event) { f(e) }

// MultiSink рассылает событие во все вложенные sink'и по порядку
type MultiSink []EventSink

func (m MultiSink) Publish(e Event) {
	for _, s := range m {
		if s != nil {
			s.Publish(e)
		}
	}
}

// Discard - sink, игнорирующий события
var Discard EventSink = SinkFunc(func(Event) {})
