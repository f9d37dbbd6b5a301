package ai

import (
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// Condition - булево выражение expr-lang над состоянием агента.
//
// Окружение выражения:
//
//	local  - локальный blackboard (map)
//	global - глобальный blackboard (map)
//	world  - WorldState агента (map)
//	now    - время агента
//
// Отсутствующие ключи дают nil, поэтому для сравнения удобно "??":
// (local.health ?? 100) < 30
type Condition struct {
	source  string
	program *vm.Program
}

func conditionEnv() map[string]any {
	return map[string]any{
		"local":  map[string]any{},
		"global": map[string]any{},
		"world":  map[string]any{},
		"now":    0.0,
	}
}

// NewCondition компилирует выражение
func NewCondition(source string) (*Condition, error) {
	program, err := expr.Compile(source,
		expr.Env(conditionEnv()),
		expr.AsBool(),
		expr.AllowUndefinedVariables(),
	)
	if err != nil {
		return nil, fmt.Errorf("compile condition %q: %w", source, err)
	}
	return &Condition{source: source, program: program}, nil
}

// MustCondition - NewCondition для выражений в коде
func MustCondition(source string) *Condition {
	c, err := NewCondition(source)
	if err != nil {
		panic(err)
	}
	return c
}

func (c *Condition) Source() string { return c.source }

// Eval вычисляет выражение в контексте агента
func (c *Condition) Eval(ctx *Context) (bool, error) {
	env := conditionEnv()
	if ctx.Board != nil {
		if ctx.Board.Local != nil {
			env["local"] = ctx.Board.Local.Values()
		}
		if ctx.Board.Global != nil {
			env["global"] = ctx.Board.Global.Values()
		}
	}
	if ctx.World != nil {
		world := make(map[string]any, ctx.World.Len())
		for _, s := range ctx.World.Symbols() {
			world[s.Key] = s.Value.Interface()
		}
		env["world"] = world
	}
	env["now"] = ctx.Now

	out, err := expr.Run(c.program, env)
	if err != nil {
		return false, fmt.Errorf("eval condition %q: %w", c.source, err)
	}
	b, ok := out.(bool)
	if !ok {
		return false, fmt.Errorf("condition %q returned %T", c.source, out)
	}
	return b, nil
}
