package skills

import (
	"fmt"
	"strings"

	"stratus-server/internal/combat"
	"stratus-server/internal/domain"
)

// ScopeType - как навык выбирает цели без телеграфа
type ScopeType uint8

const (
	ScopeSingle ScopeType = iota
	ScopeRadius
	ScopeAll
)

var scopeStringToType = map[string]ScopeType{
	"single": ScopeSingle,
	"radius": ScopeRadius,
	"all":    ScopeAll,
}

func ParseScopeType(s string) (ScopeType, error) {
	if t, ok := scopeStringToType[strings.ToLower(s)]; ok {
		return t, nil
	}
	return ScopeSingle, fmt.Errorf("%w: scope %q", ErrInvalidSkill, s)
}

func (t ScopeType) String() string {
	switch t {
	case ScopeRadius:
		return "radius"
	case ScopeAll:
		return "all"
	default:
		return "single"
	}
}

func (t ScopeType) MarshalText() ([]byte, error) { return []byte(t.String()), nil }

func (t *ScopeType) UnmarshalText(b []byte) error {
	v, err := ParseScopeType(string(b))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// Scope - правило выбора целей.
// Radius считается от позиции цели, а без цели - от заклинателя.
type Scope struct {
	Type   ScopeType `json:"type" yaml:"type"`
	Radius float64   `json:"radius,omitempty" yaml:"radius,omitempty"`
}

// FindTargets возвращает цели в порядке списка участников боя
func (s Scope) FindTargets(user, target *combat.Controller, param domain.TargetingParameter, state domain.ControllerState) []*combat.Controller {
	if param == domain.TargetSelf {
		return []*combat.Controller{user}
	}

	switch s.Type {
	case ScopeRadius:
		center := user.Position
		if target != nil {
			center = target.Position
		}
		return combat.WithinRadius(user.FindTargetsOfType(param, state), center, s.Radius)
	case ScopeAll:
		return user.FindTargetsOfType(param, state)
	default:
		if target == nil {
			return nil
		}
		return user.FilterTargets([]*combat.Controller{target}, param, state)
	}
}
