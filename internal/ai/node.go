package ai

import (
	bt "github.com/joeycumines/go-behaviortree"

	"stratus-server/internal/domain"
)

// NodeKind - вид узла дерева
type NodeKind uint8

const (
	KindComposite NodeKind = iota
	KindDecorator
	KindTask
)

var nodeKindToString = map[NodeKind]string{
	KindComposite: "composite",
	KindDecorator: "decorator",
	KindTask:      "task",
}

func (k NodeKind) String() string {
	if s, ok := nodeKindToString[k]; ok {
		return s
	}
	return "unknown"
}

// NodeState - состояние узла: Ready -> Running -> {Success, Failure}
type NodeState uint8

const (
	StateReady NodeState = iota
	StateRunning
	StateSuccess
	StateFailure
)

var nodeStateToString = map[NodeState]string{
	StateReady:   "ready",
	StateRunning: "running",
	StateSuccess: "success",
	StateFailure: "failure",
}

func (s NodeState) String() string {
	if v, ok := nodeStateToString[s]; ok {
		return v
	}
	return "unknown"
}

func (s NodeState) Finished() bool { return s == StateSuccess || s == StateFailure }

func stateFromStatus(st bt.Status) NodeState {
	switch st {
	case bt.Running:
		return StateRunning
	case bt.Success:
		return StateSuccess
	default:
		return StateFailure
	}
}

// Memory - состояние узла внутри конкретного агента.
// Обнуляется при каждом перезапуске узла.
type Memory struct {
	State   NodeState
	Elapsed float64
	Count   int
	// Results - последние статусы детей (Parallel)
	Results []bt.Status

	tick uint64
}

func (m *Memory) reset() {
	*m = Memory{}
}

// Context - то, что видит узел во время тика
type Context struct {
	Agent *Agent
	Board *Board
	World *domain.WorldState
	// Step - шаг текущего тика, Now - время агента после шага
	Step float64
	Now  float64
}

// TickFunc - поведение узла. children - скомпилированные дети.
type TickFunc func(ctx *Context, mem *Memory, children []bt.Node) (bt.Status, error)

// Node - узел дерева поведения.
//
// Узел - это описание: одно дерево может выполняться многими агентами,
// состояние каждого агента лежит в его Memory.
type Node interface {
	Name() string
	Kind() NodeKind
	Children() []Node
	Services() []*Service
	// Compile вызывается при сборке дерева агента и при каждом перезапуске узла
	Compile(c *Compiler) TickFunc
}

// base - общие поля узлов
type base struct {
	name     string
	children []Node
	services []*Service
}

func (b *base) Name() string          { return b.name }
func (b *base) Children() []Node      { return b.children }
func (b *base) Services() []*Service  { return b.services }
func (b *base) addChildren(n ...Node) { b.children = append(b.children, n...) }

// Attach добавляет сервисы к узлу
func (b *base) Attach(services ...*Service) {
	b.services = append(b.services, services...)
}
