package ai

import (
	"errors"
	"fmt"

	bt "github.com/joeycumines/go-behaviortree"
)

var (
	ErrNilRoot         = errors.New("tree has no root")
	ErrNilChild        = errors.New("nil child node")
	ErrCycle           = errors.New("cycle in behavior tree")
	ErrSharedNode      = errors.New("node has more than one parent")
	ErrDecoratorArity  = errors.New("decorator must have exactly one child")
	ErrTaskChildren    = errors.New("task must not have children")
	ErrEmptyComposite  = errors.New("composite has no children")
	ErrInvalidArgument = errors.New("invalid node argument")
)

// Tree - описание дерева поведения
type Tree struct {
	Name string
	Root Node
}

func NewTree(name string, root Node) *Tree {
	return &Tree{Name: name, Root: root}
}

// subtrees - узлы, которые владеют деревьями вне Children (например, Plan)
type subtrees interface {
	Subtrees() []Node
}

// validator - узлы с собственной проверкой аргументов
type validator interface {
	Validate() error
}

// Validate проверяет, что дерево - действительно дерево: нет циклов,
// у каждого узла один родитель, у декораторов ровно один ребенок,
// у задач детей нет.
func (t *Tree) Validate() error {
	if t == nil || t.Root == nil {
		return ErrNilRoot
	}
	seen := make(map[Node]bool)
	onPath := make(map[Node]bool)

	var walk func(n Node, path string) error
	walk = func(n Node, path string) error {
		if n == nil {
			return fmt.Errorf("%s: %w", path, ErrNilChild)
		}
		path = path + "/" + n.Name()
		if onPath[n] {
			return fmt.Errorf("%s: %w", path, ErrCycle)
		}
		if seen[n] {
			return fmt.Errorf("%s: %w", path, ErrSharedNode)
		}
		seen[n] = true
		onPath[n] = true
		defer delete(onPath, n)

		children := n.Children()
		switch n.Kind() {
		case KindDecorator:
			if len(children) != 1 {
				return fmt.Errorf("%s: %w (has %d)", path, ErrDecoratorArity, len(children))
			}
		case KindTask:
			if len(children) != 0 {
				return fmt.Errorf("%s: %w", path, ErrTaskChildren)
			}
		case KindComposite:
			if len(children) == 0 {
				return fmt.Errorf("%s: %w", path, ErrEmptyComposite)
			}
		}
		if v, ok := n.(validator); ok {
			if err := v.Validate(); err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
		}

		for _, c := range children {
			if err := walk(c, path); err != nil {
				return err
			}
		}
		if st, ok := n.(subtrees); ok {
			for _, c := range st.Subtrees() {
				if err := walk(c, path); err != nil {
					return err
				}
			}
		}
		return nil
	}
	return walk(t.Root, "")
}

// Compiler превращает описание дерева в bt.Node для одного агента
type Compiler struct {
	ctx    *Context
	memory map[Node]*Memory
	// tick - номер текущего тика агента
	tick uint64
}

func newCompiler(ctx *Context) *Compiler {
	return &Compiler{ctx: ctx, memory: make(map[Node]*Memory)}
}

// Context - контекст агента, для которого собирается дерево
func (c *Compiler) Context() *Context { return c.ctx }

// Node компилирует поддерево n.
//
// Обертка над TickFunc ведет жизненный цикл узла: при каждом старте
// TickFunc пересобирается, а после завершения еще и сбрасывается поддерево.
// Ребенок, оставшийся Running, но не тикнутый родителем в этом тике,
// брошен (ветка с большим приоритетом или закрытый Conditional) и
// возвращается в Ready. Сервисы узла тикают, пока тикает сам узел.
func (c *Compiler) Node(n Node) bt.Node {
	children := make([]bt.Node, 0, len(n.Children()))
	for _, child := range n.Children() {
		children = append(children, c.Node(child))
	}

	mem := &Memory{}
	c.memory[n] = mem

	timers := make([]*serviceTimer, 0, len(n.Services()))
	for _, s := range n.Services() {
		timers = append(timers, newServiceTimer(s, c.ctx.Agent.rng))
	}

	var policy TickFunc
	ctx := c.ctx

	return bt.New(func(kids []bt.Node) (bt.Status, error) {
		if mem.State != StateRunning {
			if mem.State.Finished() {
				c.resetSubtree(n)
			}
			policy = n.Compile(c)
			mem.State = StateRunning
		}
		mem.tick = c.tick

		for _, t := range timers {
			t.update(ctx)
		}

		status, err := policy(ctx, mem, kids)
		if err != nil {
			mem.State = StateFailure
			return bt.Failure, err
		}
		mem.State = stateFromStatus(status)
		c.resetAbandoned(n)
		return status, nil
	}, children...)
}

// resetAbandoned сбрасывает Running детей n, которых не тикали в этом тике
func (c *Compiler) resetAbandoned(n Node) {
	for _, child := range n.Children() {
		m, ok := c.memory[child]
		if ok && m.State == StateRunning && m.tick != c.tick {
			c.resetSubtree(child)
		}
	}
}

// resetSubtree возвращает в Ready все узлы поддерева n, включая его самого
func (c *Compiler) resetSubtree(n Node) {
	var walk func(Node)
	walk = func(x Node) {
		if m, ok := c.memory[x]; ok {
			m.reset()
		}
		for _, child := range x.Children() {
			walk(child)
		}
	}
	for _, child := range n.Children() {
		walk(child)
	}
	if m, ok := c.memory[n]; ok {
		m.reset()
	}
}

// state возвращает состояние узла для агента (Ready, если узел не скомпилирован)
func (c *Compiler) state(n Node) NodeState {
	if m, ok := c.memory[n]; ok {
		return m.State
	}
	return StateReady
}
