package ai

import (
	bt "github.com/joeycumines/go-behaviortree"
	"github.com/sirupsen/logrus"

	"stratus-server/pkg/logger"
)

// decorator - узел ровно с одним ребенком
type decorator struct {
	base
}

func newDecorator(name string, child Node) decorator {
	d := decorator{base: base{name: name}}
	if child != nil {
		d.children = []Node{child}
	}
	return d
}

func (d *decorator) Kind() NodeKind { return KindDecorator }

// Inverter меняет Success и Failure местами
type Inverter struct{ decorator }

func NewInverter(name string, child Node) *Inverter {
	return &Inverter{newDecorator(name, child)}
}

func (i *Inverter) Compile(*Compiler) TickFunc {
	tick := bt.Not(bt.Sequence)
	return func(_ *Context, _ *Memory, children []bt.Node) (bt.Status, error) {
		return tick(children)
	}
}

// Succeeder всегда успешен, когда ребенок завершился
type Succeeder struct{ decorator }

func NewSucceeder(name string, child Node) *Succeeder {
	return &Succeeder{newDecorator(name, child)}
}

func (s *Succeeder) Compile(*Compiler) TickFunc {
	return func(_ *Context, _ *Memory, children []bt.Node) (bt.Status, error) {
		status, err := children[0].Tick()
		if err != nil {
			return bt.Failure, err
		}
		if status == bt.Running {
			return bt.Running, nil
		}
		return bt.Success, nil
	}
}

// Repeater перезапускает ребенка, пока тот не выполнится успешно Times раз.
// Неудача ребенка прерывает повтор. Times <= 0 - бесконечно.
type Repeater struct {
	decorator
	Times int
}

func NewRepeater(name string, times int, child Node) *Repeater {
	return &Repeater{decorator: newDecorator(name, child), Times: times}
}

func (r *Repeater) Compile(*Compiler) TickFunc {
	return func(_ *Context, mem *Memory, children []bt.Node) (bt.Status, error) {
		status, err := children[0].Tick()
		if err != nil {
			return bt.Failure, err
		}
		switch status {
		case bt.Failure:
			return bt.Failure, nil
		case bt.Success:
			mem.Count++
			if r.Times > 0 && mem.Count >= r.Times {
				return bt.Success, nil
			}
		}
		return bt.Running, nil
	}
}

// Conditional пропускает тик к ребенку только когда выражение истинно.
// Ложное выражение (или ошибка вычисления) - Failure без тика ребенка.
type Conditional struct {
	decorator
	Condition *Condition
}

func NewConditional(name string, cond *Condition, child Node) *Conditional {
	return &Conditional{decorator: newDecorator(name, child), Condition: cond}
}

func (c *Conditional) Validate() error {
	if c.Condition == nil {
		return ErrInvalidArgument
	}
	return nil
}

func (c *Conditional) Compile(*Compiler) TickFunc {
	return func(ctx *Context, _ *Memory, children []bt.Node) (bt.Status, error) {
		ok, err := c.Condition.Eval(ctx)
		if err != nil {
			logger.Log.WithFields(logrus.Fields{
				"component": "ai",
				"node":      c.name,
				"expr":      c.Condition.Source(),
			}).WithError(err).Warn("Condition evaluation failed")
			return bt.Failure, nil
		}
		if !ok {
			return bt.Failure, nil
		}
		return children[0].Tick()
	}
}

// Cooldown после завершения ребенка блокирует повторный запуск на Duration
// секунд времени агента: в это время узел сразу возвращает Failure.
type Cooldown struct {
	decorator
	Duration float64
}

func NewCooldown(name string, duration float64, child Node) *Cooldown {
	return &Cooldown{decorator: newDecorator(name, child), Duration: duration}
}

func (c *Cooldown) Compile(*Compiler) TickFunc {
	return func(ctx *Context, _ *Memory, children []bt.Node) (bt.Status, error) {
		if until, ok := ctx.Agent.cooldowns[c]; ok && ctx.Now < until {
			return bt.Failure, nil
		}
		status, err := children[0].Tick()
		if err != nil {
			return bt.Failure, err
		}
		if status != bt.Running {
			ctx.Agent.cooldowns[c] = ctx.Now + c.Duration
		}
		return status, nil
	}
}
