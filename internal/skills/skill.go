package skills

import (
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"stratus-server/internal/combat"
	"stratus-server/internal/domain"
	"stratus-server/pkg/logger"
)

var (
	ErrInvalidSkill     = errors.New("invalid skill")
	ErrUnknownEffect    = errors.New("unknown effect")
	ErrNotActive        = errors.New("caster is not active")
	ErrStunned          = errors.New("caster is stunned")
	ErrOnCooldown       = errors.New("skill is on cooldown")
	ErrNotEnoughStamina = errors.New("not enough stamina")
	ErrNoTarget         = errors.New("skill needs a target")
	ErrOutOfRange       = errors.New("target out of range")
)

// Значения по умолчанию для навыка
const (
	DefaultCost  = 5.0
	DefaultRange = 3.0
)

// Skill - статическое описание навыка и его применение.
// TargetState - в каком состоянии должны быть цели (навыки оживления ищут inactive,
// пустое значение - любое состояние).
type Skill struct {
	Name        string                    `json:"name" yaml:"name"`
	Description string                    `json:"description,omitempty" yaml:"description,omitempty"`
	Targeting   domain.TargetingParameter `json:"targeting" yaml:"targeting"`
	TargetState domain.ControllerState    `json:"targetState,omitempty" yaml:"targetState,omitempty"`
	Scope       Scope                     `json:"scope" yaml:"scope"`
	Cost        float64                   `json:"cost" yaml:"cost"`
	Cooldown    float64                   `json:"cooldown" yaml:"cooldown"`
	Range       float64                   `json:"range" yaml:"range"`
	Timings     combat.Timings            `json:"timings" yaml:"timings"`
	Telegraph   *Telegraph                `json:"telegraph,omitempty" yaml:"telegraph,omitempty"`
	Effects     []Effect                  `json:"-" yaml:"-"`
}

// NewSkill создает навык со значениями по умолчанию: по врагу, одна цель,
// стоимость 5, дальность 3.
func NewSkill(name string, effects ...Effect) *Skill {
	return &Skill{
		Name:        name,
		Targeting:   domain.TargetEnemy,
		TargetState: domain.StateActive,
		Scope:       Scope{Type: ScopeSingle},
		Cost:        DefaultCost,
		Range:       DefaultRange,
		Effects:     effects,
	}
}

func (s *Skill) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidSkill)
	}
	if s.Cost < 0 || s.Cooldown < 0 || s.Range < 0 {
		return fmt.Errorf("%w: %s: negative cost, cooldown or range", ErrInvalidSkill, s.Name)
	}
	if s.Scope.Type == ScopeRadius && s.Scope.Radius <= 0 {
		return fmt.Errorf("%w: %s: radius scope without radius", ErrInvalidSkill, s.Name)
	}
	if s.Telegraph != nil && s.Telegraph.Radius <= 0 {
		return fmt.Errorf("%w: %s: telegraph without radius", ErrInvalidSkill, s.Name)
	}
	if len(s.Effects) == 0 {
		return fmt.Errorf("%w: %s: no effects", ErrInvalidSkill, s.Name)
	}
	return nil
}

// NeedsTarget - навыку по одной цели нужна явная цель
func (s *Skill) NeedsTarget() bool {
	return s.Targeting != domain.TargetSelf && s.Scope.Type == ScopeSingle && s.Telegraph == nil
}

// Ready проверяет все, кроме дальности: состояние, оглушение, перезарядку и стоимость
func (s *Skill) Ready(user *combat.Controller) error {
	if !user.Is(domain.StateActive) {
		return ErrNotActive
	}
	if user.Stunned() {
		return ErrStunned
	}
	if cd := user.Cooldowns(); cd != nil && !cd.Ready(s.Name) {
		return ErrOnCooldown
	}
	if user.Stamina.Current() < s.Cost {
		return ErrNotEnoughStamina
	}
	return nil
}

// CanCast - Ready плюс наличие цели и дальность
func (s *Skill) CanCast(user, target *combat.Controller) error {
	if err := s.Ready(user); err != nil {
		return err
	}
	if target == nil {
		if s.NeedsTarget() {
			return ErrNoTarget
		}
		return nil
	}
	if target != user && s.Range > 0 && user.Position.Distance(target.Position) > s.Range {
		return ErrOutOfRange
	}
	return nil
}

// CastResult - итог применения навыка
type CastResult struct {
	Skill   string   `json:"skill"`
	Targets []string `json:"targets"`
	Effects int      `json:"effects"`
}

// Cast находит цели и применяет к каждой все эффекты по порядку.
//
// С телеграфом (переданным или собственным) цели - участники внутри области,
// подходящие под Targeting. Без телеграфа работает Scope.
// Если целей нет, пишется предупреждение и контроллеры не меняются.
func (s *Skill) Cast(user, target *combat.Controller, telegraph *Telegraph) CastResult {
	log := s.log(user)
	if telegraph == nil {
		telegraph = s.Telegraph
	}

	state := s.TargetState
	var targets []*combat.Controller
	if telegraph != nil {
		candidates := user.FindTargetsOfType(s.Targeting, state)
		targets = telegraph.FindTargetsWithinBoundary(user, target, candidates)
	} else {
		targets = s.Scope.FindTargets(user, target, s.Targeting, state)
	}

	res := CastResult{Skill: s.Name, Targets: make([]string, 0, len(targets))}
	if len(targets) == 0 {
		log.WithField("targeting", s.Targeting.String()).Warn("Skill found no targets.")
		user.Emit(domain.Event{Type: domain.EventSkillCast, Name: s.Name})
		return res
	}

	for _, t := range targets {
		for _, e := range s.Effects {
			e.Apply(user, t)
			res.Effects++
		}
		res.Targets = append(res.Targets, t.ID)
	}

	ev := domain.Event{Type: domain.EventSkillCast, Name: s.Name, Value: float64(len(targets))}
	if target != nil {
		ev.Target = target.ID
	}
	user.Emit(ev)
	log.WithFields(logrus.Fields{
		"targets": len(targets),
		"effects": res.Effects,
	}).Debug("Skill cast.")
	return res
}

// Action - действие контроллера, которое в момент срабатывания
// списывает стоимость, запускает перезарядку и вызывает Cast.
func (s *Skill) Action(target *combat.Controller, telegraph *Telegraph) *combat.Action {
	a := combat.NewAction(s.Name, target, s.Range, s.Timings, func(user, t *combat.Controller) {
		user.Stamina.Reduce(s.Cost)
		if cd := user.Cooldowns(); cd != nil {
			cd.Start(s.Name, s.Cooldown)
		}
		s.Cast(user, t, telegraph)
	})
	a.TargetDowned = s.TargetState == domain.StateInactive
	return a
}

// Activate проверяет готовность и ставит действие навыка в очередь контроллера.
// Дальность не проверяется: действие само подводит контроллер к цели.
func (s *Skill) Activate(user, target *combat.Controller, telegraph *Telegraph) (*combat.Action, error) {
	if err := s.Ready(user); err != nil {
		return nil, err
	}
	if target == nil && s.NeedsTarget() && telegraph == nil {
		return nil, ErrNoTarget
	}
	a := s.Action(target, telegraph)
	if !user.Queue(a) {
		return nil, ErrNotActive
	}
	return a, nil
}

// Describe - короткое описание для логов и отладки
func (s *Skill) Describe() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s [%s/%s", s.Name, s.Targeting, s.Scope.Type)
	if s.Scope.Type == ScopeRadius {
		fmt.Fprintf(&b, " r=%.1f", s.Scope.Radius)
	}
	b.WriteString("]")
	fmt.Fprintf(&b, " cost=%.0f cd=%.1fs range=%.1f", s.Cost, s.Cooldown, s.Range)
	if s.Telegraph != nil {
		fmt.Fprintf(&b, " telegraph=%s(%.1f)", s.Telegraph.Shape, s.Telegraph.Radius)
	}
	kinds := make([]string, 0, len(s.Effects))
	for _, e := range s.Effects {
		kinds = append(kinds, e.Kind().String())
	}
	fmt.Fprintf(&b, " effects=%s", strings.Join(kinds, ","))
	return b.String()
}

func (s *Skill) log(user *combat.Controller) *logrus.Entry {
	return logger.Log.WithFields(logrus.Fields{
		"component":     "skills",
		"skill":         s.Name,
		"controller_id": user.ID,
	})
}

// Armor - экипировка, добавляющая защиту
type Armor struct {
	Name    string  `json:"name" yaml:"name"`
	Defense float64 `json:"defense" yaml:"defense"`
}

// Equip выставляет модификатор брони; повторная экипировка заменяет прежнюю
func (a Armor) Equip(c *combat.Controller) {
	c.Defense.SetModifier(domain.ModifierArmor, a.Defense)
}

// Unequip снимает модификатор брони
func Unequip(c *combat.Controller) bool {
	return c.Defense.RemoveModifier(domain.ModifierArmor)
}
