package engine

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"stratus-server/internal/domain"
	"stratus-server/internal/skills"
	"stratus-server/pkg/api"
)

func TestArena_PopulateDefaultCatalog(t *testing.T) {
	a := newTestArena(t)
	if err := a.Populate(); err != nil {
		t.Fatalf("Populate: %v", err)
	}

	ctls := a.Controllers()
	if len(ctls) != 4 {
		t.Fatalf("Expected 4 controllers, got %d", len(ctls))
	}
	for _, c := range ctls {
		if c.State != domain.StateActive {
			t.Errorf("%s state = %s, want active", c.Name, c.State)
		}
	}
	if len(a.Agents()) != 4 || len(a.Queue()) != 4 {
		t.Errorf("Every catalog unit has a behavior, agents=%d queue=%d", len(a.Agents()), len(a.Queue()))
	}

	// Броня Plate надета на рыцаря
	if ctls[0].Name != "Knight" || ctls[0].Defense.Maximum() != 6 {
		t.Errorf("Knight defense = %v, want 6", ctls[0].Defense.Maximum())
	}
}

func TestArena_SpawnRejectsBadUnit(t *testing.T) {
	a := newTestArena(t)
	if _, err := a.Spawn(skills.Unit{Name: "X", Faction: "PIRATE"}); err == nil {
		t.Error("Expected unknown faction error")
	}
	if _, err := a.Spawn(skills.Unit{Name: "X", Faction: "HOSTILE", Behavior: "dance"}); err == nil {
		t.Error("Expected unknown behavior error")
	}
	if _, err := a.Spawn(skills.Unit{Name: "X", Faction: "HOSTILE", Armor: "Mithril"}); !errors.Is(err, skills.ErrUnknownArmor) {
		t.Errorf("Expected ErrUnknownArmor, got %v", err)
	}
}

func TestArena_MeleeAgentAttacks(t *testing.T) {
	a := newTestArena(t)
	knight := mustSpawn(t, a, skills.Unit{
		Name: "Knight", Faction: "PLAYER", Behavior: BehaviorMelee, Skills: []string{"Slash"},
	})
	dummy := mustSpawn(t, a, skills.Unit{
		Name: "Dummy", Faction: "HOSTILE", Position: []float64{3, 0, 0},
	})

	run(a, 5)

	if knight.Controller.Target() != dummy.Controller {
		t.Error("Knight should target the dummy")
	}
	if hp := dummy.Controller.Health.Current(); hp >= 100 {
		t.Errorf("Dummy should take damage, health = %v", hp)
	}
	if knight.Agent.Ticks() == 0 {
		t.Error("Agent never ticked")
	}
	if cast := countEvents(a, domain.EventSkillCast); cast == 0 {
		t.Error("Expected SkillCast events")
	}
}

func TestArena_HealerHealsWoundedAlly(t *testing.T) {
	a := newTestArena(t)
	mustSpawn(t, a, skills.Unit{
		Name: "Cleric", Faction: "PLAYER", Behavior: BehaviorHealer, Skills: []string{"Mend"},
	})
	knight := mustSpawn(t, a, skills.Unit{
		Name: "Knight", Faction: "PLAYER", Behavior: BehaviorIdle, Position: []float64{1, 0, 0},
	})

	if _, err := a.Execute(command(domain.ActionDamage, "", api.DamagePayload{TargetID: knight.ID(), Value: 60})); err != nil {
		t.Fatalf("Execute damage: %v", err)
	}
	if knight.Controller.Health.Current() != 40 {
		t.Fatalf("Knight health = %v, want 40", knight.Controller.Health.Current())
	}

	run(a, 3)

	if hp := knight.Controller.Health.Current(); hp <= 40 {
		t.Errorf("Knight should be healed, health = %v", hp)
	}
}

func TestArena_InactiveControllerDoesNotThink(t *testing.T) {
	a := newTestArena(t)
	ghoul := mustSpawn(t, a, skills.Unit{
		Name: "Ghoul", Faction: "HOSTILE", Behavior: BehaviorMelee, Skills: []string{"Slash"},
	})
	if _, err := a.Execute(command(domain.ActionChangeState, "", api.StatePayload{TargetID: ghoul.ID(), State: "inactive"})); err != nil {
		t.Fatalf("Execute: %v", err)
	}

	run(a, 1)
	if ghoul.Agent.Ticks() != 0 {
		t.Errorf("Inactive agent ticked %d times", ghoul.Agent.Ticks())
	}
	if a.Clock() < 0.99 {
		t.Errorf("Clock = %v, want ~1", a.Clock())
	}
}

func TestArena_ExecuteErrors(t *testing.T) {
	a := newTestArena(t)

	if _, err := a.Execute(domain.InternalCommand{Action: domain.ActionUnknown}); !errors.Is(err, ErrUnknownAction) {
		t.Errorf("Expected ErrUnknownAction, got %v", err)
	}
	if _, err := a.Execute(command(domain.ActionTarget, "ghost", api.TargetPayload{})); !errors.Is(err, ErrUnknownController) {
		t.Errorf("Expected ErrUnknownController, got %v", err)
	}
	if _, err := a.Execute(command(domain.ActionDamage, "", api.DamagePayload{Value: 5})); err == nil {
		t.Error("Expected validation error for missing target")
	}

	// Мягкая ошибка: цели нет, но команда валидна
	res, err := a.Execute(command(domain.ActionHeal, "", api.HealPayload{TargetID: "nobody", Value: 5}))
	if err != nil || res.MsgType != "ERROR" {
		t.Errorf("Expected soft failure, got %+v, %v", res, err)
	}
}

func TestArena_CastCommand(t *testing.T) {
	a := newTestArena(t)
	knight := mustSpawn(t, a, skills.Unit{
		Name: "Knight", Faction: "PLAYER", Skills: []string{"Slash"}, Position: []float64{0, 0, 0},
	})
	ghoul := mustSpawn(t, a, skills.Unit{
		Name: "Ghoul", Faction: "HOSTILE", Position: []float64{1, 0, 0},
	})

	res, err := a.Execute(command(domain.ActionCast, knight.ID(), api.CastPayload{Skill: "Slash", TargetID: ghoul.ID()}))
	if err != nil || res.MsgType != "COMBAT" {
		t.Fatalf("Cast failed: %+v, %v", res, err)
	}
	if knight.Controller.Target() != ghoul.Controller {
		t.Error("Cast should set the target")
	}

	run(a, 1)
	if hp := ghoul.Controller.Health.Current(); hp != 85 {
		t.Errorf("Ghoul health = %v, want 85", hp)
	}

	res, _ = a.Execute(command(domain.ActionCast, knight.ID(), api.CastPayload{Skill: "Fireball"}))
	if res.MsgType != "ERROR" {
		t.Error("Unknown skill must fail softly")
	}
}

func TestArena_RecordsMutatingCommands(t *testing.T) {
	a := newTestArena(t)
	dummy := mustSpawn(t, a, skills.Unit{Name: "Dummy", Faction: "HOSTILE"})

	a.Execute(command(domain.ActionInit, "", struct{}{}))
	a.Step(0.5)
	a.Execute(command(domain.ActionDamage, "", api.DamagePayload{TargetID: dummy.ID(), Value: 10}))

	replay := a.Replay()
	if replay == nil {
		t.Fatal("Recording enabled but no replay")
	}
	if len(replay.Commands) != 1 {
		t.Fatalf("Expected only DAMAGE recorded, got %d commands", len(replay.Commands))
	}
	if cmd := replay.Commands[0]; cmd.Action != domain.ActionDamage || cmd.Time != 0.5 {
		t.Errorf("Unexpected command %+v", cmd)
	}
	if replay.Seed != 1 || len(replay.Events) == 0 {
		t.Errorf("Replay seed=%d events=%d", replay.Seed, len(replay.Events))
	}
	if replay.Duration() < 0.5 {
		t.Errorf("Duration = %v", replay.Duration())
	}
}

func TestArena_ReplaySegments(t *testing.T) {
	cfg := testConfig()
	cfg.ReplayChunk = 5
	events := 0
	a := NewArena(cfg, nil, domain.SinkFunc(func(domain.Event) { events++ }))

	var segments []*domain.ReplaySession
	a.SetReplaySink(func(s *domain.ReplaySession) { segments = append(segments, s) })

	dummy := mustSpawn(t, a, skills.Unit{Name: "Dummy", Faction: "HOSTILE"})
	mustSpawn(t, a, skills.Unit{Name: "Hero", Faction: "PLAYER"})
	for i := 0; i < 3; i++ {
		a.Execute(command(domain.ActionDamage, "", api.DamagePayload{TargetID: dummy.ID(), Value: 10}))
	}

	if len(segments) == 0 {
		t.Fatal("Expected full segments to be flushed")
	}
	total := 0
	for i, s := range segments {
		n := len(s.Commands) + len(s.Events)
		if n != cfg.ReplayChunk {
			t.Errorf("Segment %d has %d records, want %d", i, n, cfg.ReplayChunk)
		}
		if s.Seed != cfg.Seed {
			t.Errorf("Segment %d seed = %d", i, s.Seed)
		}
		total += n
	}
	tail := a.Replay()
	if n := len(tail.Commands) + len(tail.Events); n >= cfg.ReplayChunk {
		t.Errorf("Tail has %d records, must stay below the chunk size", n)
	}
	total += len(tail.Commands) + len(tail.Events)
	if total != events+3 {
		t.Errorf("Recorded %d records, want %d events + 3 commands", total, events)
	}
}

func TestArena_ReplayBoundedWithoutSink(t *testing.T) {
	cfg := testConfig()
	cfg.ReplayChunk = 4
	a := NewArena(cfg, nil)
	for _, name := range []string{"A", "B", "C"} {
		mustSpawn(t, a, skills.Unit{Name: name, Faction: "HOSTILE"})
	}
	run(a, 1)

	tail := a.Replay()
	if n := len(tail.Commands) + len(tail.Events); n >= cfg.ReplayChunk {
		t.Errorf("Replay holds %d records, limit %d", n, cfg.ReplayChunk)
	}
}

func TestArena_EventLogBounded(t *testing.T) {
	cfg := testConfig()
	cfg.EventLogSize = 3
	cfg.Record = false
	a := NewArena(cfg, nil)
	mustSpawn(t, a, skills.Unit{Name: "A", Faction: "HOSTILE"})
	mustSpawn(t, a, skills.Unit{Name: "B", Faction: "PLAYER"})

	if n := len(a.Events(0)); n != 3 {
		t.Errorf("Events kept = %d, want 3", n)
	}
	if n := len(a.Events(2)); n != 2 {
		t.Errorf("Events(2) = %d", n)
	}
	if a.Replay() != nil {
		t.Error("Recording disabled")
	}
}

func TestArena_SinksReceiveTimestampedEvents(t *testing.T) {
	var got []domain.Event
	a := NewArena(testConfig(), nil, domain.SinkFunc(func(e domain.Event) { got = append(got, e) }))
	dummy := mustSpawn(t, a, skills.Unit{Name: "Dummy", Faction: "HOSTILE"})

	a.Step(1)
	a.Execute(command(domain.ActionDamage, "", api.DamagePayload{TargetID: dummy.ID(), Value: 10}))

	var found bool
	for _, e := range got {
		if e.Type == domain.EventDamageReceived {
			found = true
			if e.Time != 1 || e.Source != dummy.ID() {
				t.Errorf("Unexpected event %+v", e)
			}
		}
	}
	if !found {
		t.Error("Sink did not receive DamageReceived")
	}
}

func TestArena_RemoveAndSnapshot(t *testing.T) {
	a := newTestArena(t)
	if err := a.Populate(); err != nil {
		t.Fatal(err)
	}
	ghoul := a.Controllers()[2]

	if !a.Remove(ghoul.ID) {
		t.Fatal("Remove failed")
	}
	if a.Remove(ghoul.ID) {
		t.Error("Second Remove must report false")
	}
	if _, ok := a.Combatant(ghoul.ID); ok {
		t.Error("Combatant still registered")
	}
	if len(a.Queue()) != 3 {
		t.Errorf("Queue = %d, want 3", len(a.Queue()))
	}

	a.AddLog("hello", "")
	snap := a.Snapshot()
	if snap.Type != api.MessageSnapshot || len(snap.Controllers) != 3 {
		t.Errorf("Unexpected snapshot: type=%s controllers=%d", snap.Type, len(snap.Controllers))
	}
	if len(snap.Skills) != 8 {
		t.Errorf("Skills = %d, want 8", len(snap.Skills))
	}
	if len(snap.Logs) != 1 || snap.Logs[0].Type != "INFO" {
		t.Errorf("Logs = %+v", snap.Logs)
	}
	if len(a.Snapshot().Logs) != 0 {
		t.Error("Logs must be drained by Snapshot")
	}
}

func countEvents(a *Arena, typ domain.EventType) int {
	n := 0
	for _, e := range a.Events(0) {
		if e.Type == typ {
			n++
		}
	}
	return n
}

func TestArena_RunExecutesSubmittedCommands(t *testing.T) {
	cfg := testConfig()
	cfg.TickRate = time.Millisecond
	a := NewArena(cfg, nil)
	dummy := mustSpawn(t, a, skills.Unit{Name: "Dummy", Faction: "HOSTILE"})

	replies := make(chan api.ServerResponse, 4)
	a.SetNotifier(func(r api.ServerResponse) { replies <- r })

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Run(ctx) }()

	payload, _ := json.Marshal(api.DamagePayload{TargetID: dummy.ID(), Value: 30})
	if !a.Submit(api.ClientCommand{Action: "damage", Payload: payload}) {
		t.Fatal("Submit rejected")
	}
	if a.Submit(api.ClientCommand{Action: "dance"}) {
		t.Error("Unknown action must be rejected")
	}

	select {
	case r := <-replies:
		if r.Type != api.MessageResult || len(r.Logs) != 1 {
			t.Errorf("Unexpected reply %+v", r)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("No reply from arena loop")
	}

	cancel()
	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Errorf("Run returned %v", err)
	}
	if hp := dummy.Controller.Health.Current(); hp != 70 {
		t.Errorf("Dummy health = %v, want 70", hp)
	}
}
