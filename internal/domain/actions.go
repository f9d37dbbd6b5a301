package domain

import "strings"

// ActionType - внутренний числовой идентификатор команды клиента
type ActionType uint8

const (
	ActionUnknown ActionType = iota
	ActionInit
	ActionDamage
	ActionHeal
	ActionRestore
	ActionRevive
	ActionChangeState
	ActionInvulnerable
	ActionTarget
	ActionCast
	ActionPause
	ActionResume
	ActionInterrupt
)

// Маппинг для конвертации JSON -> Domain
var actionStringToCmd = map[string]ActionType{
	"INIT":         ActionInit,
	"DAMAGE":       ActionDamage,
	"HEAL":         ActionHeal,
	"RESTORE":      ActionRestore,
	"REVIVE":       ActionRevive,
	"CHANGE_STATE": ActionChangeState,
	"INVULNERABLE": ActionInvulnerable,
	"TARGET":       ActionTarget,
	"CAST":         ActionCast,
	"PAUSE":        ActionPause,
	"RESUME":       ActionResume,
	"INTERRUPT":    ActionInterrupt,
}

// Маппинг для логов Domain -> String
var actionCmdToString = func() map[ActionType]string {
	m := make(map[ActionType]string, len(actionStringToCmd))
	for k, v := range actionStringToCmd {
		m[v] = k
	}
	return m
}()

// ParseAction конвертирует строку из JSON в ActionType
func ParseAction(s string) ActionType {
	if val, ok := actionStringToCmd[strings.ToUpper(s)]; ok {
		return val
	}
	return ActionUnknown
}

func (a ActionType) String() string {
	if val, ok := actionCmdToString[a]; ok {
		return val
	}
	return "UNKNOWN"
}

// Mutating - команда меняет состояние боя (такие пишутся в реплей)
func (a ActionType) Mutating() bool {
	return a != ActionUnknown && a != ActionInit
}

func (a ActionType) MarshalText() ([]byte, error) { return []byte(a.String()), nil }

func (a *ActionType) UnmarshalText(text []byte) error {
	*a = ParseAction(string(text))
	return nil
}
