package ai

import (
	"fmt"

	bt "github.com/joeycumines/go-behaviortree"
	pabtpkg "github.com/joeycumines/go-pabt"

	"stratus-server/internal/domain"
)

// PlanAction - действие, доступное планировщику.
// Pre - предусловия (все должны выполняться), Post - эффекты, которые
// применяются к WorldState агента, когда Task завершается успешно.
type PlanAction struct {
	Name string
	Pre  *domain.WorldState
	Post *domain.WorldState
	Task Node
}

// symbolCond - условие PA-BT "символ равен значению"
type symbolCond struct {
	key   string
	value domain.Variant
}

var _ pabtpkg.Condition = (*symbolCond)(nil)

func (c *symbolCond) Key() any { return c.key }

func (c *symbolCond) Match(value any) bool {
	v, ok := value.(domain.Variant)
	return ok && v.Equal(c.value)
}

type symbolEffect struct {
	key   string
	value domain.Variant
}

var _ pabtpkg.Effect = (*symbolEffect)(nil)

func (e *symbolEffect) Key() any   { return e.key }
func (e *symbolEffect) Value() any { return e.value }

// conditionsOf превращает WorldState в одну AND-группу условий
func conditionsOf(ws *domain.WorldState) pabtpkg.IConditions {
	if ws == nil {
		return nil
	}
	conds := make(pabtpkg.IConditions, 0, ws.Len())
	for _, s := range ws.Symbols() {
		conds = append(conds, &symbolCond{key: s.Key, value: s.Value})
	}
	return conds
}

// plannedAction - PlanAction, привязанный к агенту
type plannedAction struct {
	action *PlanAction
	node   bt.Node
}

var _ pabtpkg.IAction = (*plannedAction)(nil)

func (a *plannedAction) Conditions() []pabtpkg.IConditions {
	if a.action.Pre == nil || a.action.Pre.Len() == 0 {
		return []pabtpkg.IConditions{}
	}
	return []pabtpkg.IConditions{conditionsOf(a.action.Pre)}
}

func (a *plannedAction) Effects() pabtpkg.Effects {
	var effects pabtpkg.Effects
	if a.action.Post == nil {
		return effects
	}
	for _, s := range a.action.Post.Symbols() {
		effects = append(effects, &symbolEffect{key: s.Key, value: s.Value})
	}
	return effects
}

func (a *plannedAction) Node() bt.Node { return a.node }

// planState - WorldState агента глазами PA-BT
type planState struct {
	ctx     *Context
	actions []*plannedAction
}

var _ pabtpkg.IState = (*planState)(nil)

// Variable возвращает domain.Variant символа или nil, если его нет
func (s *planState) Variable(key any) (any, error) {
	k, ok := key.(string)
	if !ok {
		return nil, fmt.Errorf("unsupported plan key type %T", key)
	}
	v, ok := s.ctx.World.Value(k)
	if !ok {
		return nil, nil
	}
	return v, nil
}

// Actions - действия, эффект которых удовлетворяет проваленному условию
func (s *planState) Actions(failed pabtpkg.Condition) ([]pabtpkg.IAction, error) {
	var out []pabtpkg.IAction
	for _, a := range s.actions {
		for _, e := range a.Effects() {
			if e.Key() == failed.Key() && failed.Match(e.Value()) {
				out = append(out, a)
				break
			}
		}
	}
	return out, nil
}

// Plan - задача, которая достигает Goal через PA-BT.
// План строится заново при каждом запуске узла.
type Plan struct {
	task
	Goal    *domain.WorldState
	Actions []*PlanAction
}

func NewPlan(name string, goal *domain.WorldState, actions ...*PlanAction) *Plan {
	return &Plan{task: task{base{name: name}}, Goal: goal, Actions: actions}
}

func (p *Plan) Subtrees() []Node {
	out := make([]Node, 0, len(p.Actions))
	for _, a := range p.Actions {
		out = append(out, a.Task)
	}
	return out
}

func (p *Plan) Validate() error {
	if p.Goal == nil || p.Goal.Len() == 0 {
		return fmt.Errorf("%w: empty plan goal", ErrInvalidArgument)
	}
	return nil
}

func (p *Plan) Compile(c *Compiler) TickFunc {
	ctx := c.Context()
	state := &planState{ctx: ctx}
	for _, a := range p.Actions {
		child := c.Node(a.Task)
		node := bt.New(func(children []bt.Node) (bt.Status, error) {
			status, err := children[0].Tick()
			if err == nil && status == bt.Success {
				ctx.World.Merge(a.Post)
			}
			return status, err
		}, child)
		state.actions = append(state.actions, &plannedAction{action: a, node: node})
	}

	plan, err := pabtpkg.INew(state, []pabtpkg.IConditions{conditionsOf(p.Goal)})
	if err != nil {
		return func(*Context, *Memory, []bt.Node) (bt.Status, error) {
			return bt.Failure, fmt.Errorf("plan %s: %w", p.name, err)
		}
	}
	root := plan.Node()

	return func(ctx *Context, _ *Memory, _ []bt.Node) (bt.Status, error) {
		if ctx.World.Satisfies(p.Goal) {
			return bt.Success, nil
		}
		return root.Tick()
	}
}
