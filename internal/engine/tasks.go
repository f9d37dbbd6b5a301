package engine

import (
	"math"

	bt "github.com/joeycumines/go-behaviortree"
	"github.com/sirupsen/logrus"

	"stratus-server/internal/ai"
	"stratus-server/internal/combat"
	"stratus-server/internal/domain"
	"stratus-server/internal/skills"
)

// leaf - боевая задача дерева поведения.
// start вызывается при каждом запуске узла и возвращает тело на этот запуск.
type leaf struct {
	name  string
	start func() ai.ActionFunc
}

var _ ai.Node = (*leaf)(nil)

func (l *leaf) Name() string            { return l.name }
func (l *leaf) Kind() ai.NodeKind       { return ai.KindTask }
func (l *leaf) Children() []ai.Node     { return nil }
func (l *leaf) Services() []*ai.Service { return nil }

func (l *leaf) Compile(*ai.Compiler) ai.TickFunc {
	fn := l.start()
	return func(ctx *ai.Context, mem *ai.Memory, _ []bt.Node) (bt.Status, error) {
		cb := owner(ctx)
		if cb == nil {
			return bt.Failure, nil
		}
		return fn(ctx, mem)
	}
}

// check - лист без состояния: Success, если pred истинен
func check(name string, pred func(cb *Combatant) bool) *leaf {
	return &leaf{name: name, start: func() ai.ActionFunc {
		return func(ctx *ai.Context, _ *ai.Memory) (bt.Status, error) {
			if pred(owner(ctx)) {
				return bt.Success, nil
			}
			return bt.Failure, nil
		}
	}}
}

func owner(ctx *ai.Context) *Combatant {
	cb, _ := ctx.Agent.Owner.(*Combatant)
	return cb
}

// HasTarget - у контроллера есть активная цель нужного отношения
func HasTarget(param domain.TargetingParameter) ai.Node {
	return check("HasTarget("+param.String()+")", func(cb *Combatant) bool {
		ctl := cb.Controller
		t := ctl.Target()
		if t == nil {
			return false
		}
		return len(ctl.FilterTargets([]*combat.Controller{t}, param, domain.StateActive)) > 0
	})
}

// AcquireTarget выбирает ближайшую активную цель нужного отношения (кроме себя)
func AcquireTarget(param domain.TargetingParameter) ai.Node {
	return check("AcquireTarget("+param.String()+")", func(cb *Combatant) bool {
		ctl := cb.Controller
		t := combat.Nearest(others(ctl, ctl.FindTargetsOfType(param, domain.StateActive)), ctl.Position)
		if t == nil {
			return false
		}
		ctl.SetTarget(t)
		return true
	})
}

// AcquireWoundedAlly выбирает союзника (включая себя) с наименьшим
// процентом здоровья ниже threshold
func AcquireWoundedAlly(threshold float64) ai.Node {
	return check("AcquireWoundedAlly", func(cb *Combatant) bool {
		ctl := cb.Controller
		var best *combat.Controller
		lowest := math.Inf(1)
		for _, a := range ctl.FindTargetsOfType(domain.TargetAlly, domain.StateActive) {
			if p := a.Health.Percentage(); p < threshold && p < lowest {
				best, lowest = a, p
			}
		}
		if best == nil {
			return false
		}
		ctl.SetTarget(best)
		return true
	})
}

// AcquireDownedAlly выбирает ближайшего выбывшего союзника
func AcquireDownedAlly() ai.Node {
	return check("AcquireDownedAlly", func(cb *Combatant) bool {
		ctl := cb.Controller
		t := combat.Nearest(others(ctl, ctl.FindTargetsOfType(domain.TargetAlly, domain.StateInactive)), ctl.Position)
		if t == nil {
			return false
		}
		ctl.SetTarget(t)
		return true
	})
}

// CanCast - навык готов (дальность не проверяется, действие подойдет само)
func CanCast(skill *skills.Skill) ai.Node {
	return check("CanCast("+skill.Name+")", func(cb *Combatant) bool {
		return skill.Ready(cb.Controller) == nil
	})
}

// IsHealthBelow - здоровье контроллера ниже percent процентов
func IsHealthBelow(percent float64) ai.Node {
	return check("IsHealthBelow", func(cb *Combatant) bool {
		return cb.Controller.Health.Percentage() < percent
	})
}

// CastSkill ставит действие навыка по текущей цели и ждет его завершения.
// Running, пока действие идет; Success, если оно доиграло до конца;
// Failure, если навык не готов или действие отменили.
func CastSkill(skill *skills.Skill) ai.Node {
	return &leaf{name: "CastSkill(" + skill.Name + ")", start: func() ai.ActionFunc {
		var action *combat.Action
		return func(ctx *ai.Context, _ *ai.Memory) (bt.Status, error) {
			ctl := owner(ctx).Controller
			if action == nil {
				target := ctl.Target()
				if skill.Targeting == domain.TargetSelf {
					target = ctl
				}
				a, err := skill.Activate(ctl, target, nil)
				if err != nil {
					ctx.Agent.Log().WithFields(logrus.Fields{
						"skill":  skill.Name,
						"reason": err.Error(),
					}).Debug("Skill not cast.")
					return bt.Failure, nil
				}
				action = a
				return bt.Running, nil
			}
			switch {
			case !action.Done():
				if ctl.CurrentAction() != action {
					return bt.Failure, nil
				}
				return bt.Running, nil
			case action.Phase() == combat.PhaseEnded:
				return bt.Success, nil
			default:
				return bt.Failure, nil
			}
		}
	}}
}

// retarget - сервис: переключиться на врага, который заметно ближе текущей цели
func retarget(margin float64) *ai.Service {
	return ai.NewService("retarget", 1.0, 0.5, func(ctx *ai.Context) {
		cb := owner(ctx)
		if cb == nil {
			return
		}
		ctl := cb.Controller
		cur := ctl.Target()
		if cur == nil {
			return
		}
		enemies := ctl.FindTargetsOfType(domain.TargetEnemy, domain.StateActive)
		near := combat.Nearest(enemies, ctl.Position)
		if near == nil || near == cur {
			return
		}
		if ctl.Position.Distance(near.Position)+margin < ctl.Position.Distance(cur.Position) {
			ctl.SetTarget(near)
		}
	})
}

// others - список без самого контроллера
func others(self *combat.Controller, list []*combat.Controller) []*combat.Controller {
	out := make([]*combat.Controller, 0, len(list))
	for _, c := range list {
		if c != self {
			out = append(out, c)
		}
	}
	return out
}
