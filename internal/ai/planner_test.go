package ai

import (
	"testing"

	bt "github.com/joeycumines/go-behaviortree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stratus-server/internal/domain"
)

func TestPlan_ChainsActionsToGoal(t *testing.T) {
	var order []string
	record := func(name string) *Action {
		return NewAction(name, func(*Context, *Memory) (bt.Status, error) {
			order = append(order, name)
			return bt.Success, nil
		})
	}

	pickKey := &PlanAction{
		Name: "pick-key",
		Post: domain.NewWorldState(domain.Sym("hasKey", true)),
		Task: record("pick-key"),
	}
	openDoor := &PlanAction{
		Name: "open-door",
		Pre:  domain.NewWorldState(domain.Sym("hasKey", true)),
		Post: domain.NewWorldState(domain.Sym("doorOpen", true)),
		Task: record("open-door"),
	}
	goal := domain.NewWorldState(domain.Sym("doorOpen", true))
	plan := NewPlan("escape", goal, openDoor, pickKey)

	a := newTestAgent(t, plan)

	var status bt.Status
	for i := 0; i < 20; i++ {
		var err error
		status, err = a.TimeStep(0.1)
		require.NoError(t, err)
		if status == bt.Success {
			break
		}
	}

	assert.Equal(t, bt.Success, status)
	assert.True(t, a.World().Satisfies(goal))
	require.NotEmpty(t, order)
	assert.Equal(t, "pick-key", order[0])
	assert.Contains(t, order, "open-door")
}

func TestPlan_AlreadySatisfied(t *testing.T) {
	calls := 0
	act := &PlanAction{
		Name: "noop",
		Post: domain.NewWorldState(domain.Sym("done", true)),
		Task: NewAction("noop", func(*Context, *Memory) (bt.Status, error) {
			calls++
			return bt.Success, nil
		}),
	}
	world := domain.NewWorldState(domain.Sym("done", true))
	a := newTestAgent(t, NewPlan("p", domain.NewWorldState(domain.Sym("done", true)), act), WithWorld(world))

	status, err := a.TimeStep(0.1)
	require.NoError(t, err)
	assert.Equal(t, bt.Success, status)
	assert.Equal(t, 0, calls)
}

func TestPlan_ValidateRequiresGoal(t *testing.T) {
	err := NewTree("p", NewPlan("p", domain.NewWorldState())).Validate()
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestPlanState_ActionsMatchFailedCondition(t *testing.T) {
	a := newTestAgent(t, NewWait("w", 1))
	state := &planState{ctx: a.ctx}
	heal := &plannedAction{action: &PlanAction{Post: domain.NewWorldState(domain.Sym("hp", "full"))}}
	hide := &plannedAction{action: &PlanAction{Post: domain.NewWorldState(domain.Sym("hidden", true))}}
	state.actions = []*plannedAction{heal, hide}

	got, err := state.Actions(&symbolCond{key: "hp", value: domain.NewString("full")})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Same(t, heal, got[0])

	v, err := state.Variable("missing")
	require.NoError(t, err)
	assert.Nil(t, v)
}
