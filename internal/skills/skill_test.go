package skills

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stratus-server/internal/combat"
	"stratus-server/internal/domain"
)

// arena - система боя с заклинателем-игроком в начале координат
type arena struct {
	sys  *combat.System
	user *combat.Controller
}

func newArena(t *testing.T) *arena {
	t.Helper()
	sys := combat.NewSystem(nil)
	user := combat.NewController("caster", domain.FactionPlayer, combat.DefaultStats)
	user.AddModule(combat.NewCooldowns())
	sys.Add(user)
	return &arena{sys: sys, user: user}
}

func (a *arena) add(name string, faction domain.Faction, pos domain.Vector3) *combat.Controller {
	c := combat.NewController(name, faction, combat.DefaultStats)
	c.Position = pos
	a.sys.Add(c)
	return c
}

func TestCast_SingleTarget(t *testing.T) {
	a := newArena(t)
	enemy := a.add("ghoul", domain.FactionHostile, domain.Vec3(1, 0, 0))
	ally := a.add("cleric", domain.FactionPlayer, domain.Vec3(1, 0, 1))
	slash := NewSkill("Slash", DamageEffect{Value: 15})

	res := slash.Cast(a.user, enemy, nil)
	assert.Equal(t, []string{enemy.ID}, res.Targets)
	assert.Equal(t, 1, res.Effects)
	assert.Equal(t, 85.0, enemy.Health.Current())

	// союзник не подходит под ENEMY: никаких изменений
	res = slash.Cast(a.user, ally, nil)
	assert.Empty(t, res.Targets)
	assert.Equal(t, 0, res.Effects)
	assert.Equal(t, 100.0, ally.Health.Current())
}

func TestCast_NoTargetsIsNoop(t *testing.T) {
	a := newArena(t)
	slash := NewSkill("Slash", DamageEffect{Value: 15})

	res := slash.Cast(a.user, nil, nil)
	assert.Equal(t, "Slash", res.Skill)
	assert.Empty(t, res.Targets)
	assert.Equal(t, 100.0, a.user.Health.Current())
}

func TestCast_RadiusScope(t *testing.T) {
	a := newArena(t)
	target := a.add("ghoul", domain.FactionHostile, domain.Vec3(5, 0, 0))
	near := a.add("brute", domain.FactionHostile, domain.Vec3(6, 0, 0))
	far := a.add("far", domain.FactionHostile, domain.Vec3(20, 0, 0))
	ally := a.add("knight", domain.FactionPlayer, domain.Vec3(5, 0, 1))

	wave := NewSkill("Shockwave", DamageEffect{Value: 10})
	wave.Scope = Scope{Type: ScopeRadius, Radius: 2.5}

	res := wave.Cast(a.user, target, nil)
	assert.ElementsMatch(t, []string{target.ID, near.ID}, res.Targets)
	assert.Equal(t, 90.0, near.Health.Current())
	assert.Equal(t, 100.0, far.Health.Current())
	assert.Equal(t, 100.0, ally.Health.Current())
}

func TestCast_AllAlliesIncludesCaster(t *testing.T) {
	a := newArena(t)
	ally := a.add("knight", domain.FactionPlayer, domain.Vec3(30, 0, 0))
	enemy := a.add("ghoul", domain.FactionHostile, domain.Vec3(1, 0, 0))
	for _, c := range []*combat.Controller{a.user, ally, enemy} {
		c.Health.Set(50)
	}

	prayer := NewSkill("Prayer", HealEffect{Value: 20})
	prayer.Targeting = domain.TargetAlly
	prayer.Scope = Scope{Type: ScopeAll}

	res := prayer.Cast(a.user, nil, nil)
	assert.Len(t, res.Targets, 2)
	assert.Equal(t, 70.0, a.user.Health.Current())
	assert.Equal(t, 70.0, ally.Health.Current())
	assert.Equal(t, 50.0, enemy.Health.Current())
}

func TestCast_TelegraphCone(t *testing.T) {
	a := newArena(t)
	target := a.add("ghoul", domain.FactionHostile, domain.Vec3(3, 0, 0))
	inside := a.add("imp", domain.FactionHostile, domain.Vec3(2, 1, 0))
	beside := a.add("bat", domain.FactionHostile, domain.Vec3(0, 2, 0))
	behind := a.add("rat", domain.FactionHostile, domain.Vec3(-1, 0, 0))

	cleave := NewSkill("Cleave", DamageEffect{Value: 10})
	cleave.Telegraph = &Telegraph{Shape: ShapeCone, Radius: 3, Angle: 90}

	res := cleave.Cast(a.user, target, nil)
	assert.ElementsMatch(t, []string{target.ID, inside.ID}, res.Targets)
	assert.Equal(t, 100.0, beside.Health.Current())
	assert.Equal(t, 100.0, behind.Health.Current())
}

func TestCast_TelegraphOverride(t *testing.T) {
	a := newArena(t)
	target := a.add("ghoul", domain.FactionHostile, domain.Vec3(4, 0, 0))
	other := a.add("imp", domain.FactionHostile, domain.Vec3(5, 0, 0))

	slash := NewSkill("Slash", DamageEffect{Value: 10})
	res := slash.Cast(a.user, target, &Telegraph{Shape: ShapeCircle, Radius: 1.5})
	assert.ElementsMatch(t, []string{target.ID, other.ID}, res.Targets)
}

func TestCast_EffectsInOrder(t *testing.T) {
	a := newArena(t)
	enemy := a.add("ghoul", domain.FactionHostile, domain.Vec3(6, 0, 0))
	enemy.Queue(combat.NewAction("bite", a.user, 1, combat.Timings{Cast: 5}, nil))

	hook := NewSkill("Hook", PullEffect{Amount: 5}, InterruptEffect{Duration: 1}, DamageEffect{Value: 5, Piercing: true})
	hook.Range = 8
	hook.Cast(a.user, enemy, nil)

	assert.InDelta(t, 1.0, enemy.Position.X, 1e-9)
	assert.True(t, enemy.Stunned())
	assert.False(t, enemy.Busy())
	assert.Equal(t, 95.0, enemy.Health.Current())

	push := NewSkill("Shove", PushEffect{Amount: 2})
	push.Cast(a.user, enemy, nil)
	assert.InDelta(t, 3.0, enemy.Position.X, 1e-9)
}

func TestCast_SelfInvulnerable(t *testing.T) {
	a := newArena(t)
	barrier := NewSkill("Barrier", InvulnerableEffect{Toggle: true})
	barrier.Targeting = domain.TargetSelf

	res := barrier.Cast(a.user, nil, nil)
	assert.Equal(t, []string{a.user.ID}, res.Targets)
	assert.True(t, a.user.Invulnerable())
	assert.True(t, a.user.OnDamage(500).Blocked)
}

func TestCast_RestoreRevivesDownedAlly(t *testing.T) {
	a := newArena(t)
	ally := a.add("knight", domain.FactionPlayer, domain.Vec3(1, 0, 0))
	ally.OnDamage(1000)
	require.True(t, ally.Is(domain.StateInactive))

	mend := NewSkill("Mend", HealEffect{Value: 10})
	mend.Targeting = domain.TargetAlly
	assert.Empty(t, mend.Cast(a.user, ally, nil).Targets)

	rez := NewSkill("Resurrect", RestoreEffect{})
	rez.Targeting = domain.TargetAlly
	rez.TargetState = domain.StateInactive
	got := rez.Cast(a.user, ally, nil)
	assert.Equal(t, []string{ally.ID}, got.Targets)
	assert.True(t, ally.Is(domain.StateActive))
	assert.Equal(t, 100.0, ally.Health.Current())
}

func TestCanCast(t *testing.T) {
	tests := []struct {
		name  string
		setup func(a *arena, s *Skill) *combat.Controller
		want  error
	}{
		{"ready", func(a *arena, s *Skill) *combat.Controller {
			return a.add("ghoul", domain.FactionHostile, domain.Vec3(2, 0, 0))
		}, nil},
		{"no target", func(a *arena, s *Skill) *combat.Controller { return nil }, ErrNoTarget},
		{"out of range", func(a *arena, s *Skill) *combat.Controller {
			return a.add("ghoul", domain.FactionHostile, domain.Vec3(10, 0, 0))
		}, ErrOutOfRange},
		{"cooldown", func(a *arena, s *Skill) *combat.Controller {
			a.user.Cooldowns().Start(s.Name, 2)
			return a.add("ghoul", domain.FactionHostile, domain.Vec3(1, 0, 0))
		}, ErrOnCooldown},
		{"stamina", func(a *arena, s *Skill) *combat.Controller {
			a.user.Stamina.Set(s.Cost - 1)
			return a.add("ghoul", domain.FactionHostile, domain.Vec3(1, 0, 0))
		}, ErrNotEnoughStamina},
		{"paused", func(a *arena, s *Skill) *combat.Controller {
			a.user.Pause()
			return a.add("ghoul", domain.FactionHostile, domain.Vec3(1, 0, 0))
		}, ErrNotActive},
		{"stunned", func(a *arena, s *Skill) *combat.Controller {
			a.user.Interrupt(1)
			return a.add("ghoul", domain.FactionHostile, domain.Vec3(1, 0, 0))
		}, ErrStunned},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := newArena(t)
			s := NewSkill("Slash", DamageEffect{Value: 10})
			target := tt.setup(a, s)
			err := s.CanCast(a.user, target)
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestActivate_RunsActionCycle(t *testing.T) {
	a := newArena(t)
	enemy := a.add("ghoul", domain.FactionHostile, domain.Vec3(1, 0, 0))
	slash := NewSkill("Slash", DamageEffect{Value: 15})
	slash.Cooldown = 2

	act, err := slash.Activate(a.user, enemy, nil)
	require.NoError(t, err)
	assert.Same(t, act, a.user.CurrentAction())

	for i := 0; i < 5; i++ {
		a.sys.TimeStep(0.1)
	}
	assert.Equal(t, 85.0, enemy.Health.Current())
	assert.Equal(t, 100-DefaultCost, a.user.Stamina.Current())
	assert.False(t, a.user.Cooldowns().Ready("Slash"))

	_, err = slash.Activate(a.user, enemy, nil)
	assert.ErrorIs(t, err, ErrOnCooldown)
}

func TestArmor_Equip(t *testing.T) {
	c := combat.NewController("knight", domain.FactionPlayer, combat.Stats{Health: 100, Defense: 1})
	Armor{Name: "Plate", Defense: 6}.Equip(c)
	assert.Equal(t, 7.0, c.Defense.Maximum())

	Armor{Name: "Leather", Defense: 3}.Equip(c)
	assert.Equal(t, 4.0, c.Defense.Maximum())

	assert.True(t, Unequip(c))
	assert.Equal(t, 1.0, c.Defense.Maximum())
}

func TestSkill_Validate(t *testing.T) {
	s := NewSkill("Empty")
	assert.ErrorIs(t, s.Validate(), ErrInvalidSkill)

	s = NewSkill("Wave", DamageEffect{Value: 1})
	s.Scope = Scope{Type: ScopeRadius}
	assert.ErrorIs(t, s.Validate(), ErrInvalidSkill)

	s.Scope.Radius = 2
	assert.NoError(t, s.Validate())
	assert.Contains(t, s.Describe(), "Wave [ENEMY/radius r=2.0]")
}
