package ai

import (
	"fmt"
	"math/rand"

	bt "github.com/joeycumines/go-behaviortree"
	"github.com/sirupsen/logrus"

	"stratus-server/internal/domain"
	"stratus-server/pkg/logger"
	"stratus-server/pkg/utils"
)

// Agent выполняет дерево поведения.
// Владеет деревом, локальным blackboard, WorldState и генератором случайных
// чисел; глобальный blackboard разделяется с другими агентами.
type Agent struct {
	ID   string
	Name string

	// Owner - объект, которым управляет агент (например, боевой контроллер)
	Owner any

	tree     *Tree
	board    *Board
	world    *domain.WorldState
	rng      *rand.Rand
	clock    float64
	ticks    int
	last     bt.Status
	lastErr  error
	ctx      *Context
	compiler *Compiler
	root     bt.Node

	cooldowns map[Node]float64
	log       *logrus.Entry
}

// AgentOption настраивает агента при создании
type AgentOption func(*Agent)

func WithGlobal(bb *Blackboard) AgentOption {
	return func(a *Agent) { a.board.Global = bb }
}

func WithWorld(ws *domain.WorldState) AgentOption {
	return func(a *Agent) { a.world = ws }
}

func WithSeed(seed int64) AgentOption {
	return func(a *Agent) { a.rng = rand.New(rand.NewSource(seed)) }
}

func WithOwner(owner any) AgentOption {
	return func(a *Agent) { a.Owner = owner }
}

func WithID(id string) AgentOption {
	return func(a *Agent) { a.ID = id }
}

// NewAgent проверяет дерево и компилирует его для нового агента
func NewAgent(name string, tree *Tree, opts ...AgentOption) (*Agent, error) {
	if err := tree.Validate(); err != nil {
		return nil, fmt.Errorf("agent %s: %w", name, err)
	}

	a := &Agent{
		ID:        utils.GenerateID(),
		Name:      name,
		tree:      tree,
		board:     &Board{Local: NewBlackboard(), Global: NewBlackboard()},
		world:     domain.NewWorldState(),
		cooldowns: make(map[Node]float64),
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.rng == nil {
		a.rng = rand.New(rand.NewSource(rand.Int63()))
	}
	a.log = logger.Log.WithFields(logrus.Fields{
		"component": "ai",
		"agent":     a.Name,
		"tree":      tree.Name,
	})

	a.ctx = &Context{Agent: a, Board: a.board, World: a.world}
	a.compiler = newCompiler(a.ctx)
	a.root = a.compiler.Node(tree.Root)
	return a, nil
}

// TimeStep продвигает часы агента на step и тикает дерево один раз.
// После завершения корня следующий тик начинает дерево заново.
func (a *Agent) TimeStep(step float64) (bt.Status, error) {
	a.clock += step
	a.ctx.Step = step
	a.ctx.Now = a.clock
	a.ticks++
	a.compiler.tick++

	status, err := a.root.Tick()
	a.last, a.lastErr = status, err
	if err != nil {
		a.log.WithError(err).Warn("Behavior tree tick failed")
	}
	return status, err
}

func (a *Agent) Tree() *Tree               { return a.tree }
func (a *Agent) Board() *Board             { return a.board }
func (a *Agent) Local() *Blackboard        { return a.board.Local }
func (a *Agent) Global() *Blackboard       { return a.board.Global }
func (a *Agent) World() *domain.WorldState { return a.world }
func (a *Agent) Rand() *rand.Rand          { return a.rng }
func (a *Agent) Clock() float64            { return a.clock }
func (a *Agent) Ticks() int                { return a.ticks }
func (a *Agent) Log() *logrus.Entry        { return a.log }

// NodeState - состояние узла дерева у этого агента
func (a *Agent) NodeState(n Node) NodeState {
	return a.compiler.state(n)
}

// Snapshot - состояние агента для отладки
type Snapshot struct {
	ID     string                    `json:"id"`
	Name   string                    `json:"name"`
	Tree   string                    `json:"tree"`
	Clock  float64                   `json:"clock"`
	Ticks  int                       `json:"ticks"`
	Status string                    `json:"status"`
	Error  string                    `json:"error,omitempty"`
	Local  map[string]domain.Variant `json:"local"`
	World  *domain.WorldState        `json:"world"`
}

func (a *Agent) Snapshot() Snapshot {
	s := Snapshot{
		ID:     a.ID,
		Name:   a.Name,
		Tree:   a.tree.Name,
		Clock:  a.clock,
		Ticks:  a.ticks,
		Status: a.NodeState(a.tree.Root).String(),
		Local:  a.board.Local.Snapshot(),
		World:  a.world.Copy(),
	}
	if a.lastErr != nil {
		s.Error = a.lastErr.Error()
	}
	return s
}
