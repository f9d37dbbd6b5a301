package ai

import (
	bt "github.com/joeycumines/go-behaviortree"

	"stratus-server/internal/domain"
)

// task - лист дерева
type task struct {
	base
}

func (t *task) Kind() NodeKind { return KindTask }

// ActionFunc - тело листа. Вызывается на каждом тике, пока возвращает Running.
type ActionFunc func(ctx *Context, mem *Memory) (bt.Status, error)

// Action - лист с произвольной функцией
type Action struct {
	task
	Fn ActionFunc
}

func NewAction(name string, fn ActionFunc) *Action {
	return &Action{task: task{base{name: name}}, Fn: fn}
}

func (a *Action) Validate() error {
	if a.Fn == nil {
		return ErrInvalidArgument
	}
	return nil
}

func (a *Action) Compile(*Compiler) TickFunc {
	return func(ctx *Context, mem *Memory, _ []bt.Node) (bt.Status, error) {
		return a.Fn(ctx, mem)
	}
}

// Wait - Running, пока не пройдет Duration секунд
type Wait struct {
	task
	Duration float64
}

func NewWait(name string, duration float64) *Wait {
	return &Wait{task: task{base{name: name}}, Duration: duration}
}

func (w *Wait) Compile(*Compiler) TickFunc {
	return func(ctx *Context, mem *Memory, _ []bt.Node) (bt.Status, error) {
		mem.Elapsed += ctx.Step
		if mem.Elapsed >= w.Duration {
			return bt.Success, nil
		}
		return bt.Running, nil
	}
}

// SetSymbol записывает значение в blackboard или WorldState агента
type SetSymbol struct {
	task
	Scope  Scope
	Symbol domain.Symbol
}

func NewSetSymbol(name string, scope Scope, symbol domain.Symbol) *SetSymbol {
	return &SetSymbol{task: task{base{name: name}}, Scope: scope, Symbol: symbol}
}

func (s *SetSymbol) Compile(*Compiler) TickFunc {
	return func(ctx *Context, _ *Memory, _ []bt.Node) (bt.Status, error) {
		if s.Scope == ScopeWorld {
			ctx.World.Apply(s.Symbol)
		} else {
			ctx.Board.Set(s.Scope, s.Symbol.Key, s.Symbol.Value)
		}
		return bt.Success, nil
	}
}

// CheckGoal - Success, если WorldState агента удовлетворяет цели
type CheckGoal struct {
	task
	Goal *domain.WorldState
}

func NewCheckGoal(name string, goal *domain.WorldState) *CheckGoal {
	return &CheckGoal{task: task{base{name: name}}, Goal: goal}
}

func (c *CheckGoal) Compile(*Compiler) TickFunc {
	return func(ctx *Context, _ *Memory, _ []bt.Node) (bt.Status, error) {
		if ctx.World.Satisfies(c.Goal) {
			return bt.Success, nil
		}
		return bt.Failure, nil
	}
}
