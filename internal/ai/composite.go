package ai

import (
	"fmt"

	bt "github.com/joeycumines/go-behaviortree"
)

// Sequence выполняет детей по порядку, прерываясь на первой неудаче.
// С Memory=true уже успешные дети не перезапускаются, пока Sequence бежит.
type Sequence struct {
	base
	Memory bool
}

func NewSequence(name string, children ...Node) *Sequence {
	return &Sequence{base: base{name: name, children: children}}
}

func (s *Sequence) Kind() NodeKind { return KindComposite }
func (s *Sequence) Add(n ...Node)  { s.addChildren(n...) }
func (s *Sequence) Compile(*Compiler) TickFunc {
	return composite(bt.Sequence, s.Memory)
}

// Selector выполняет детей по порядку до первого успеха
type Selector struct {
	base
	Memory bool
}

func NewSelector(name string, children ...Node) *Selector {
	return &Selector{base: base{name: name, children: children}}
}

func (s *Selector) Kind() NodeKind { return KindComposite }
func (s *Selector) Add(n ...Node)  { s.addChildren(n...) }
func (s *Selector) Compile(*Compiler) TickFunc {
	return composite(bt.Selector, s.Memory)
}

func composite(tick bt.Tick, memory bool) TickFunc {
	if memory {
		tick = bt.Memorize(tick)
	}
	return func(_ *Context, _ *Memory, children []bt.Node) (bt.Status, error) {
		return tick(children)
	}
}

// Parallel тикает всех незавершенных детей за один тик.
// Успех, когда успешны SuccessThreshold детей; неудача, когда это стало
// невозможно. SuccessThreshold <= 0 означает "все дети".
type Parallel struct {
	base
	SuccessThreshold int
}

func NewParallel(name string, threshold int, children ...Node) *Parallel {
	return &Parallel{base: base{name: name, children: children}, SuccessThreshold: threshold}
}

func (p *Parallel) Kind() NodeKind { return KindComposite }
func (p *Parallel) Add(n ...Node)  { p.addChildren(n...) }

func (p *Parallel) Validate() error {
	if p.SuccessThreshold > len(p.children) {
		return fmt.Errorf("%w: success threshold %d exceeds %d children",
			ErrInvalidArgument, p.SuccessThreshold, len(p.children))
	}
	return nil
}

func (p *Parallel) Compile(*Compiler) TickFunc {
	return func(_ *Context, mem *Memory, children []bt.Node) (bt.Status, error) {
		need := p.SuccessThreshold
		if need <= 0 || need > len(children) {
			need = len(children)
		}
		if len(mem.Results) != len(children) {
			mem.Results = make([]bt.Status, len(children))
		}

		var firstErr error
		for i, child := range children {
			if mem.Results[i] == bt.Success || mem.Results[i] == bt.Failure {
				continue
			}
			status, err := child.Tick()
			if err != nil {
				status = bt.Failure
				if firstErr == nil {
					firstErr = err
				}
			}
			mem.Results[i] = status
		}

		succeeded, failed := 0, 0
		for _, r := range mem.Results {
			switch r {
			case bt.Success:
				succeeded++
			case bt.Failure:
				failed++
			}
		}
		switch {
		case firstErr != nil:
			return bt.Failure, firstErr
		case succeeded >= need:
			return bt.Success, nil
		case len(children)-failed < need:
			return bt.Failure, nil
		default:
			return bt.Running, nil
		}
	}
}
