package combat

import (
	"math"
	"testing"

	"stratus-server/internal/domain"
)

func TestAction_FullCycle(t *testing.T) {
	user, rec := newFighter("Hero", domain.FactionPlayer, 100, 0)
	target, _ := newFighter("Ork", domain.FactionHostile, 100, 0)
	target.Position = domain.Vec3(1, 0, 0)

	executed := 0
	a := NewAction("slash", target, 2, Timings{Cast: 0.2, Trigger: 0.1, Recovery: 0.1}, func(u, tg *Controller) {
		executed++
		tg.OnDamage(10)
	})
	if !user.Queue(a) {
		t.Fatal("Queue rejected")
	}

	for i := 0; i < 20 && user.CurrentAction() != nil; i++ {
		user.TimeStep(0.1)
	}

	if executed != 1 {
		t.Fatalf("Expected one execution, got %d", executed)
	}
	if target.Health.Current() != 90 {
		t.Errorf("Target health = %v, want 90", target.Health.Current())
	}
	if a.Phase() != PhaseEnded {
		t.Errorf("Phase = %s, want ENDED", a.Phase())
	}
	order := []domain.EventType{
		domain.EventActionSelected,
		domain.EventActionStarted,
		domain.EventActionTriggered,
		domain.EventActionExecuted,
		domain.EventActionEnded,
	}
	i := 0
	for _, e := range rec.events {
		if i < len(order) && e.Type == order[i] {
			i++
		}
	}
	if i != len(order) {
		t.Errorf("Action events out of order: %+v", rec.events)
	}
}

func TestAction_ApproachesTarget(t *testing.T) {
	user, _ := newFighter("Hero", domain.FactionPlayer, 100, 0)
	target, _ := newFighter("Ork", domain.FactionHostile, 100, 0)
	target.Position = domain.Vec3(10, 0, 0)

	a := NewAction("slash", target, 1, Timings{}, nil)
	user.Queue(a)

	user.TimeStep(1)
	if a.Phase() != PhaseQueued {
		t.Fatalf("Out of range action must stay queued, got %s", a.Phase())
	}
	if math.Abs(user.Position.X-3) > 1e-9 {
		t.Errorf("Expected to move 3 units, at %v", user.Position)
	}
	for i := 0; i < 5; i++ {
		user.TimeStep(1)
	}
	if !a.InRange(user) {
		t.Errorf("Expected to reach the target, at %v", user.Position)
	}
}

func TestAction_InterruptCancelsAndStuns(t *testing.T) {
	user, rec := newFighter("Hero", domain.FactionPlayer, 100, 0)
	a := NewAction("fireball", nil, 0, Timings{Cast: 5}, nil)
	user.Queue(a)
	user.TimeStep(0.1)

	user.Interrupt(1)
	if user.CurrentAction() != nil || a.Phase() != PhaseCanceled {
		t.Fatal("Interrupt must cancel the current action")
	}
	if rec.count(domain.EventInterrupt) != 1 || rec.count(domain.EventActionCanceled) != 1 {
		t.Error("Expected Interrupt and ActionCanceled events")
	}
	if user.Queue(NewAction("again", nil, 0, Timings{}, nil)) {
		t.Error("Stunned controller must not accept actions")
	}

	user.TimeStep(0.6)
	user.TimeStep(0.6)
	if user.Stunned() {
		t.Error("Stun should wear off")
	}
}

func TestAction_Delay(t *testing.T) {
	user, _ := newFighter("Hero", domain.FactionPlayer, 100, 0)
	a := NewAction("heavy", nil, 0, Timings{Cast: 1}, nil)
	user.Queue(a)
	user.TimeStep(0.5) // -> casting
	a.Delay(1)
	user.TimeStep(0.5)
	user.TimeStep(0.5)
	if a.Phase() != PhaseCasting {
		t.Errorf("Delayed action should still be casting, got %s", a.Phase())
	}
}

func TestAction_CanceledWhenTargetDown(t *testing.T) {
	user, _ := newFighter("Hero", domain.FactionPlayer, 100, 0)
	target, _ := newFighter("Ork", domain.FactionHostile, 10, 0)
	a := NewAction("slash", target, 0, Timings{Cast: 1}, nil)
	user.Queue(a)
	target.OnDamage(50)

	user.TimeStep(0.1)
	if user.CurrentAction() != nil {
		t.Error("Action against an inactive target must be canceled")
	}
}

func TestController_InactiveSkipsDriver(t *testing.T) {
	c, _ := newFighter("Hero", domain.FactionPlayer, 10, 0)
	d := &countingDriver{}
	c.SetDriver(d)
	c.AddModule(&StaminaRegen{Rate: 10})
	cd := NewCooldowns()
	c.AddModule(cd)
	cd.Start("slash", 1)

	c.TimeStep(0.5)
	if d.calls != 1 {
		t.Fatalf("Driver calls = %d, want 1", d.calls)
	}

	c.OnDamage(100)
	c.TimeStep(0.6)
	if d.calls != 1 {
		t.Error("Driver must not run while inactive")
	}
	if !cd.Ready("slash") {
		t.Error("Modules must keep ticking while inactive")
	}
}

type countingDriver struct{ calls int }

func (d *countingDriver) Decide(*Controller, float64) { d.calls++ }

func TestAction_TargetDownedSurvivesRevive(t *testing.T) {
	user, _ := newFighter("Cleric", domain.FactionPlayer, 100, 0)
	ally, _ := newFighter("Knight", domain.FactionPlayer, 10, 0)
	ally.OnDamage(50)

	a := NewAction("resurrect", ally, 0, Timings{}, func(_, tg *Controller) { tg.Revive(0.5) })
	a.TargetDowned = true
	user.Queue(a)

	for i := 0; i < 10 && user.CurrentAction() != nil; i++ {
		user.TimeStep(0.1)
	}
	if a.Phase() != PhaseEnded {
		t.Errorf("Phase = %s, want ENDED", a.Phase())
	}
	if !ally.Is(domain.StateActive) {
		t.Error("Ally should be revived")
	}
}
