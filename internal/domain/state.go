package domain

import (
	"fmt"
	"strings"
)

// ControllerState - состояние боевого контроллера.
// Строковые значения совпадают с именами состояний FSM.
type ControllerState string

const (
	StateIdle     ControllerState = "idle"
	StateActive   ControllerState = "active"
	StateInactive ControllerState = "inactive"
)

func ParseControllerState(s string) (ControllerState, error) {
	switch st := ControllerState(strings.ToLower(s)); st {
	case StateIdle, StateActive, StateInactive:
		return st, nil
	}
	return "", fmt.Errorf("unknown controller state %q", s)
}

func (s ControllerState) String() string { return string(s) }
