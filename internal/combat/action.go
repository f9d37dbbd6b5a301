package combat

import (
	"github.com/sirupsen/logrus"

	"stratus-server/internal/domain"
)

// ActionPhase - фаза цикла действия
type ActionPhase uint8

const (
	PhaseQueued ActionPhase = iota
	PhaseCasting
	PhaseTriggered
	PhaseRecovery
	PhaseEnded
	PhaseCanceled
)

var phaseToString = map[ActionPhase]string{
	PhaseQueued:    "QUEUED",
	PhaseCasting:   "CASTING",
	PhaseTriggered: "TRIGGERED",
	PhaseRecovery:  "RECOVERY",
	PhaseEnded:     "ENDED",
	PhaseCanceled:  "CANCELED",
}

func (p ActionPhase) String() string {
	if s, ok := phaseToString[p]; ok {
		return s
	}
	return "UNKNOWN"
}

// Timings - длительности фаз действия в секундах
type Timings struct {
	Cast     float64 `json:"cast" yaml:"cast"`
	Trigger  float64 `json:"trigger" yaml:"trigger"`
	Recovery float64 `json:"recovery" yaml:"recovery"`
}

// Executor применяет действие, когда оно сработало
type Executor func(user, target *Controller)

// Action - действие контроллера.
//
// Цикл: Queued (подход к цели) -> Casting (в радиусе, каст) -> Triggered
// (ожидание анимации) -> выполнение -> Recovery -> Ended.
// Target == nil означает действие без цели (на себя / по области вокруг).
// TargetDowned - действие направлено на Inactive цель (оживление) и не
// отменяется, пока цель лежит.
type Action struct {
	Name         string
	Target       *Controller
	Range        float64
	Timings      Timings
	Execute      Executor
	TargetDowned bool

	phase   ActionPhase
	elapsed float64
}

func NewAction(name string, target *Controller, rng float64, timings Timings, exec Executor) *Action {
	return &Action{Name: name, Target: target, Range: rng, Timings: timings, Execute: exec}
}

func (a *Action) Phase() ActionPhase { return a.phase }

// Done - действие завершено или отменено
func (a *Action) Done() bool { return a.phase == PhaseEnded || a.phase == PhaseCanceled }

// Delay откладывает текущую фазу на d секунд
func (a *Action) Delay(d float64) {
	if d > 0 {
		a.elapsed -= d
	}
}

// InRange - находится ли цель в радиусе действия
func (a *Action) InRange(user *Controller) bool {
	if a.Target == nil || a.Target == user || a.Range <= 0 {
		return true
	}
	return user.Position.Distance(a.Target.Position) <= a.Range
}

func (a *Action) targetID() string {
	if a.Target == nil {
		return ""
	}
	return a.Target.ID
}

func (a *Action) enter(user *Controller, phase ActionPhase, ev domain.EventType) {
	a.phase = phase
	a.elapsed = 0
	user.emit(domain.Event{Type: ev, Name: a.Name, Target: a.targetID()})
}

// update продвигает действие на step. Вызывается из Controller.TimeStep.
func (a *Action) update(user *Controller, step float64) {
	if a.Done() {
		user.clearAction(a)
		return
	}
	if a.phase < PhaseRecovery && a.Target != nil && a.Target != user &&
		a.Target.Is(domain.StateInactive) != a.TargetDowned {
		user.log.WithField("action", a.Name).Debug("Action target changed state, canceling.")
		user.CancelAction()
		return
	}

	a.elapsed += step
	switch a.phase {
	case PhaseQueued:
		if !a.InRange(user) {
			user.approach(a.Target.Position, a.Range, step)
			if !a.InRange(user) {
				return
			}
		}
		a.enter(user, PhaseCasting, domain.EventActionStarted)
	case PhaseCasting:
		if a.elapsed < a.Timings.Cast {
			return
		}
		a.enter(user, PhaseTriggered, domain.EventActionTriggered)
	case PhaseTriggered:
		if a.elapsed < a.Timings.Trigger {
			return
		}
		if a.Execute != nil {
			a.Execute(user, a.Target)
		}
		if user.action != a {
			return
		}
		user.log.WithFields(logrus.Fields{
			"action": a.Name,
			"target": a.targetID(),
		}).Debug("Action executed.")
		a.enter(user, PhaseRecovery, domain.EventActionExecuted)
	case PhaseRecovery:
		if a.elapsed < a.Timings.Recovery {
			return
		}
		a.enter(user, PhaseEnded, domain.EventActionEnded)
		user.clearAction(a)
	}
}

// approach двигает контроллер к точке, пока она не окажется в радиусе
func (c *Controller) approach(to domain.Vector3, within, step float64) {
	if c.Speed <= 0 {
		return
	}
	dist := c.Position.Distance(to)
	if dist <= within {
		return
	}
	// останавливаемся чуть внутри радиуса
	stop := within * 0.9
	move := c.Speed * step
	if move > dist-stop {
		move = dist - stop
	}
	c.Position = c.Position.MoveTowards(to, move)
}

// Queue делает действие текущим. Уже идущее действие отменяется.
// В Inactive или во время оглушения действие не принимается.
func (c *Controller) Queue(a *Action) bool {
	if a == nil || c.Is(domain.StateInactive) || c.Stunned() {
		return false
	}
	if c.action != nil {
		c.CancelAction()
	}
	c.action = a
	a.phase = PhaseQueued
	a.elapsed = 0
	c.emit(domain.Event{Type: domain.EventActionSelected, Name: a.Name, Target: a.targetID()})
	return true
}

// CancelAction отменяет текущее действие
func (c *Controller) CancelAction() {
	a := c.action
	if a == nil {
		return
	}
	c.action = nil
	if a.Done() {
		return
	}
	a.phase = PhaseCanceled
	c.emit(domain.Event{Type: domain.EventActionCanceled, Name: a.Name, Target: a.targetID()})
}

// Busy - есть ли незавершенное действие
func (c *Controller) Busy() bool { return c.action != nil && !c.action.Done() }

func (c *Controller) clearAction(a *Action) {
	if c.action == a {
		c.action = nil
	}
}
