package engine

import (
	bt "github.com/joeycumines/go-behaviortree"

	"stratus-server/internal/ai"
	"stratus-server/internal/combat"
	"stratus-server/internal/domain"
	"stratus-server/internal/skills"
)

// Порог "мало здоровья" для символа lowHealth, в процентах
const lowHealthPercent = 30.0

// Combatant - участник боя: контроллер, навыки и (необязательно) агент AI.
//
// Combatant сам является combat.Driver: контроллер сообщает ему о каждом
// активном шаге, а решение агента принимается по очереди TurnManager.
type Combatant struct {
	Controller *combat.Controller
	Agent      *ai.Agent
	Skills     []*skills.Skill
	Behavior   string

	seq     int
	pending float64
	awake   bool
}

var _ combat.Driver = (*Combatant)(nil)

func (c *Combatant) ID() string { return c.Controller.ID }

// Skill ищет навык участника по имени
func (c *Combatant) Skill(name string) *skills.Skill {
	for _, s := range c.Skills {
		if s.Name == name {
			return s
		}
	}
	return nil
}

// Decide копит время активных шагов до следующего решения агента
func (c *Combatant) Decide(_ *combat.Controller, step float64) {
	c.pending += step
	c.awake = true
}

// think тикает дерево агента накопленным временем.
// false - агент не думал (нет агента или контроллер не был активен).
func (c *Combatant) think() (bt.Status, bool, error) {
	if c.Agent == nil || !c.awake {
		return bt.Failure, false, nil
	}
	step := c.pending
	c.pending, c.awake = 0, false

	c.sense()
	status, err := c.Agent.TimeStep(step)
	return status, true, err
}

// sense переносит состояние контроллера в blackboard и WorldState агента
func (c *Combatant) sense() {
	ctl := c.Controller
	local := c.Agent.Local()
	world := c.Agent.World()

	local.Set(domain.BoardHealth, domain.NewFloat(ctl.Health.Percentage()))
	local.Set(domain.BoardStamina, domain.NewFloat(ctl.Stamina.Current()))
	local.Set(domain.BoardState, domain.NewString(ctl.State().String()))

	target := ctl.Target()
	hasTarget := target != nil && target.Is(domain.StateActive)
	targetDown := target != nil && target.Is(domain.StateInactive)
	inRange := false
	if target != nil {
		dist := ctl.Position.Distance(target.Position)
		local.Set(domain.BoardTarget, domain.NewString(target.ID))
		local.Set(domain.BoardDistance, domain.NewFloat(dist))
		inRange = dist <= c.maxRange()
	} else {
		local.Delete(domain.BoardTarget)
		local.Delete(domain.BoardDistance)
	}

	canCast := false
	for _, s := range c.Skills {
		if s.Ready(ctl) == nil {
			canCast = true
			break
		}
	}

	world.Apply(domain.Sym(domain.SymbolHasTarget, hasTarget))
	world.Apply(domain.Sym(domain.SymbolTargetDown, targetDown))
	world.Apply(domain.Sym(domain.SymbolTargetInRange, inRange))
	world.Apply(domain.Sym(domain.SymbolLowHealth, ctl.Health.Percentage() < lowHealthPercent))
	world.Apply(domain.Sym(domain.SymbolCanCast, canCast))
}

func (c *Combatant) maxRange() float64 {
	r := 0.0
	for _, s := range c.Skills {
		if s.Range > r {
			r = s.Range
		}
	}
	return r
}
