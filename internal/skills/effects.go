package skills

import (
	"fmt"
	"strings"

	"stratus-server/internal/combat"
	"stratus-server/internal/domain"
)

// EffectKind - тип эффекта навыка
type EffectKind uint8

const (
	EffectUnknown EffectKind = iota
	EffectDamage
	EffectHeal
	EffectRestore
	EffectPull
	EffectPush
	EffectInterrupt
	EffectInvulnerable
)

var effectStringToKind = map[string]EffectKind{
	"damage":       EffectDamage,
	"heal":         EffectHeal,
	"restore":      EffectRestore,
	"pull":         EffectPull,
	"push":         EffectPush,
	"interrupt":    EffectInterrupt,
	"invulnerable": EffectInvulnerable,
}

var effectKindToString = map[EffectKind]string{
	EffectDamage:       "damage",
	EffectHeal:         "heal",
	EffectRestore:      "restore",
	EffectPull:         "pull",
	EffectPush:         "push",
	EffectInterrupt:    "interrupt",
	EffectInvulnerable: "invulnerable",
}

func ParseEffectKind(s string) EffectKind {
	if k, ok := effectStringToKind[strings.ToLower(s)]; ok {
		return k
	}
	return EffectUnknown
}

func (k EffectKind) String() string {
	if s, ok := effectKindToString[k]; ok {
		return s
	}
	return "unknown"
}

// Effect применяется навыком к каждой цели
type Effect interface {
	Kind() EffectKind
	Apply(user, target *combat.Controller)
}

// DamageEffect - урон (Piercing игнорирует защиту)
type DamageEffect struct {
	Value    float64
	Piercing bool
}

func (e DamageEffect) Kind() EffectKind { return EffectDamage }
func (e DamageEffect) Apply(user, target *combat.Controller) {
	target.ApplyDamage(combat.Damage{Value: e.Value, Piercing: e.Piercing, Source: user})
}

type HealEffect struct{ Value float64 }

func (e HealEffect) Kind() EffectKind { return EffectHeal }
func (e HealEffect) Apply(_, target *combat.Controller) {
	target.OnHeal(e.Value)
}

// RestoreEffect полностью восстанавливает цель (и оживляет)
type RestoreEffect struct{}

func (RestoreEffect) Kind() EffectKind { return EffectRestore }
func (RestoreEffect) Apply(_, target *combat.Controller) {
	target.Restore()
}

// PullEffect притягивает цель к заклинателю на Amount единиц (не ближе вплотную)
type PullEffect struct{ Amount float64 }

func (e PullEffect) Kind() EffectKind { return EffectPull }
func (e PullEffect) Apply(user, target *combat.Controller) {
	if target == user || target.Is(domain.StateInactive) {
		return
	}
	dist := target.Position.Distance(user.Position)
	move := e.Amount
	if move > dist {
		move = dist
	}
	target.Position = target.Position.MoveTowards(user.Position, move)
}

// PushEffect отталкивает цель от заклинателя на Amount единиц
type PushEffect struct{ Amount float64 }

func (e PushEffect) Kind() EffectKind { return EffectPush }
func (e PushEffect) Apply(user, target *combat.Controller) {
	if target == user || target.Is(domain.StateInactive) {
		return
	}
	dir := target.Position.Sub(user.Position).Normalized()
	if dir.IsZero() {
		dir = domain.Vec3(1, 0, 0)
	}
	target.Position = target.Position.Add(dir.Scale(e.Amount))
}

// InterruptEffect прерывает действие цели и оглушает на Duration секунд
type InterruptEffect struct{ Duration float64 }

func (e InterruptEffect) Kind() EffectKind { return EffectInterrupt }
func (e InterruptEffect) Apply(_, target *combat.Controller) {
	target.Interrupt(e.Duration)
}

// InvulnerableEffect включает или снимает неуязвимость цели
type InvulnerableEffect struct{ Toggle bool }

func (e InvulnerableEffect) Kind() EffectKind { return EffectInvulnerable }
func (e InvulnerableEffect) Apply(_, target *combat.Controller) {
	target.SetInvulnerable(e.Toggle)
}

// EffectSpec - описание эффекта в каталоге
type EffectSpec struct {
	Type     string  `json:"type" yaml:"type"`
	Value    float64 `json:"value,omitempty" yaml:"value,omitempty"`
	Piercing bool    `json:"piercing,omitempty" yaml:"piercing,omitempty"`
	Amount   float64 `json:"amount,omitempty" yaml:"amount,omitempty"`
	Duration float64 `json:"duration,omitempty" yaml:"duration,omitempty"`
	Toggle   *bool   `json:"toggle,omitempty" yaml:"toggle,omitempty"`
}

// Build превращает описание в Effect
func (s EffectSpec) Build() (Effect, error) {
	switch ParseEffectKind(s.Type) {
	case EffectDamage:
		return DamageEffect{Value: s.Value, Piercing: s.Piercing}, nil
	case EffectHeal:
		return HealEffect{Value: s.Value}, nil
	case EffectRestore:
		return RestoreEffect{}, nil
	case EffectPull:
		return PullEffect{Amount: s.Amount}, nil
	case EffectPush:
		return PushEffect{Amount: s.Amount}, nil
	case EffectInterrupt:
		return InterruptEffect{Duration: s.Duration}, nil
	case EffectInvulnerable:
		toggle := true
		if s.Toggle != nil {
			toggle = *s.Toggle
		}
		return InvulnerableEffect{Toggle: toggle}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownEffect, s.Type)
	}
}
