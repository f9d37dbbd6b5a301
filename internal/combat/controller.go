package combat

import (
	"context"
	"errors"
	"math"

	"github.com/looplab/fsm"
	"github.com/sirupsen/logrus"

	"stratus-server/internal/domain"
	"stratus-server/pkg/logger"
	"stratus-server/pkg/utils"
)

// События FSM контроллера
const (
	fsmSpawn        = "spawn"
	fsmPause        = "pause"
	fsmResume       = "resume"
	fsmIncapacitate = "incapacitate"
	fsmRevive       = "revive"
)

var (
	idle     = string(domain.StateIdle)
	active   = string(domain.StateActive)
	inactive = string(domain.StateInactive)
)

// Driver - то, что выбирает действия контроллера: агент AI или игрок.
// Вызывается в конце TimeStep, только когда контроллер не Inactive.
type Driver interface {
	Decide(c *Controller, step float64)
}

// Roster - список участников боя, среди которых ищутся цели
type Roster interface {
	Controllers() []*Controller
}

// Stats - начальные характеристики контроллера
type Stats struct {
	Health  float64 `json:"health" yaml:"health"`
	Defense float64 `json:"defense" yaml:"defense"`
	Stamina float64 `json:"stamina" yaml:"stamina"`
	Speed   float64 `json:"speed" yaml:"speed"`
}

// DefaultStats - характеристики по умолчанию
var DefaultStats = Stats{Health: 100, Defense: 0, Stamina: 100, Speed: 3}

// Damage - входящий урон. Piercing игнорирует защиту.
type Damage struct {
	Value    float64
	Piercing bool
	Source   *Controller
}

// DamageResult - итог OnDamage
type DamageResult struct {
	Ignored       bool    `json:"ignored,omitempty"`
	Blocked       bool    `json:"blocked"`
	Damage        float64 `json:"damage"`
	PercentLost   float64 `json:"percentLost"`
	Incapacitated bool    `json:"incapacitated"`
}

// Controller - участник боя.
//
// Состояние (Idle / Active / Inactive) хранится в FSM. Здоровье, защита и
// выносливость - Attribute с модификаторами. Цель хранится указателем и
// сбрасывается, когда цель покидает список участников.
type Controller struct {
	ID       string
	Name     string
	Faction  domain.Faction
	Position domain.Vector3
	Speed    float64

	Health  *Attribute
	Defense *Attribute
	Stamina *Attribute

	// OnRestore вызывается в конце Restore
	OnRestore func(c *Controller)

	fsm          *fsm.FSM
	target       *Controller
	action       *Action
	modules      []Module
	driver       Driver
	roster       Roster
	sink         domain.EventSink
	invulnerable bool
	stunned      float64
	spawned      bool
	clock        float64
	log          *logrus.Entry
}

// NewController создает контроллер в состоянии Idle. В бой он входит через Spawn.
func NewController(name string, faction domain.Faction, stats Stats) *Controller {
	c := &Controller{
		ID:      utils.GenerateID(),
		Name:    name,
		Faction: faction,
		Speed:   stats.Speed,
		Health:  NewAttribute(stats.Health),
		Defense: NewAttribute(stats.Defense),
		Stamina: NewAttribute(stats.Stamina),
		sink:    domain.Discard,
	}
	c.log = logger.Log.WithFields(logrus.Fields{
		"component":       "combat_controller",
		"controller_id":   c.ID,
		"controller_name": c.Name,
	})
	c.fsm = fsm.NewFSM(idle,
		fsm.Events{
			{Name: fsmSpawn, Src: []string{idle}, Dst: active},
			{Name: fsmPause, Src: []string{active}, Dst: idle},
			{Name: fsmResume, Src: []string{idle}, Dst: active},
			{Name: fsmIncapacitate, Src: []string{idle, active}, Dst: inactive},
			{Name: fsmRevive, Src: []string{inactive}, Dst: active},
		},
		fsm.Callbacks{
			"enter_state": func(_ context.Context, e *fsm.Event) {
				c.emit(domain.Event{
					Type:  domain.EventStateChanged,
					State: domain.ControllerState(e.Dst),
					Name:  e.Src,
				})
			},
		},
	)
	return c
}

// --- ДОСТУП ---

func (c *Controller) State() domain.ControllerState    { return domain.ControllerState(c.fsm.Current()) }
func (c *Controller) Is(s domain.ControllerState) bool { return c.fsm.Is(string(s)) }
func (c *Controller) Target() *Controller              { return c.target }
func (c *Controller) CurrentAction() *Action           { return c.action }
func (c *Controller) Invulnerable() bool               { return c.invulnerable }
func (c *Controller) Spawned() bool                    { return c.spawned }
func (c *Controller) Stunned() bool                    { return c.stunned > 0 }
func (c *Controller) Clock() float64                   { return c.clock }
func (c *Controller) Driver() Driver                   { return c.driver }
func (c *Controller) Log() *logrus.Entry               { return c.log }

func (c *Controller) SetDriver(d Driver) { c.driver = d }
func (c *Controller) SetRoster(r Roster) { c.roster = r }

// SetSink задает получателя событий. nil - события отбрасываются.
func (c *Controller) SetSink(s domain.EventSink) {
	if s == nil {
		s = domain.Discard
	}
	c.sink = s
}

// Emit публикует событие от имени контроллера
func (c *Controller) Emit(e domain.Event) { c.emit(e) }

func (c *Controller) emit(e domain.Event) {
	if e.Source == "" {
		e.Source = c.ID
	}
	c.sink.Publish(e)
}

func (c *Controller) event(name string) error {
	err := c.fsm.Event(context.Background(), name)
	var noTransition fsm.NoTransitionError
	if errors.As(err, &noTransition) {
		return nil
	}
	return err
}

// --- ЖИЗНЕННЫЙ ЦИКЛ ---

// Spawn вводит контроллер в бой: Idle -> Active
func (c *Controller) Spawn() {
	if c.spawned {
		return
	}
	c.spawned = true
	c.emit(domain.Event{Type: domain.EventSpawn, Name: c.Name})
	if err := c.event(fsmSpawn); err != nil {
		c.log.WithError(err).Warn("Spawn transition rejected.")
		return
	}
	c.emit(domain.Event{Type: domain.EventActive})
}

// Pause: Active -> Idle. Возвращает false, если переход невозможен.
func (c *Controller) Pause() bool {
	if err := c.event(fsmPause); err != nil {
		c.log.WithField("state", c.State()).Debug("Pause ignored.")
		return false
	}
	c.emit(domain.Event{Type: domain.EventPause})
	return true
}

// Resume: Idle -> Active
func (c *Controller) Resume() bool {
	if err := c.event(fsmResume); err != nil {
		c.log.WithField("state", c.State()).Debug("Resume ignored.")
		return false
	}
	c.emit(domain.Event{Type: domain.EventResume})
	return true
}

// ChangeState принудительно выставляет состояние (явная команда).
// Проверки переходов FSM не применяются.
func (c *Controller) ChangeState(state domain.ControllerState) {
	prev := c.State()
	c.emit(domain.Event{Type: domain.EventChangeState, State: state})
	if prev == state {
		return
	}
	c.fsm.SetState(string(state))
	if state == domain.StateInactive {
		c.CancelAction()
	}
	c.emit(domain.Event{Type: domain.EventStateChanged, State: state, Name: string(prev)})
}

// Incapacitate переводит контроллер в Inactive. Повторный вызов ничего не делает.
func (c *Controller) Incapacitate() bool {
	if c.Is(domain.StateInactive) {
		return false
	}
	if err := c.event(fsmIncapacitate); err != nil {
		c.log.WithError(err).Warn("Incapacitate transition rejected.")
		return false
	}
	c.CancelAction()
	c.target = nil
	c.stunned = 0
	c.emit(domain.Event{Type: domain.EventDeath})
	c.log.Info("Controller incapacitated.")
	return true
}

// Revive возвращает Inactive контроллер в бой с долей здоровья fraction (0..1]
func (c *Controller) Revive(fraction float64) bool {
	if !c.Is(domain.StateInactive) {
		return false
	}
	if fraction <= 0 || fraction > 1 {
		fraction = 1
	}
	c.Health.Set(math.Max(1, c.Health.Maximum()*fraction))
	if err := c.event(fsmRevive); err != nil {
		c.log.WithError(err).Warn("Revive transition rejected.")
		return false
	}
	c.emit(domain.Event{Type: domain.EventRevive, Value: c.Health.Current()})
	c.emitHealth()
	return true
}

// Restore полностью восстанавливает здоровье и выносливость, снимает
// оглушение и, если нужно, оживляет.
func (c *Controller) Restore() {
	if c.Is(domain.StateInactive) {
		c.Revive(1)
	}
	c.stunned = 0
	c.Health.Fill()
	c.Stamina.Fill()
	c.emitHealth()
	if c.OnRestore != nil {
		c.OnRestore(c)
	}
}

// --- УРОН И ЛЕЧЕНИЕ ---

// OnDamage - урон с учетом защиты
func (c *Controller) OnDamage(value float64) DamageResult {
	return c.ApplyDamage(Damage{Value: value})
}

// ApplyDamage: эффективный урон = значение - максимум защиты (Piercing - без защиты).
// Урон <= 0 блокируется без изменений здоровья. Урон по Inactive игнорируется.
func (c *Controller) ApplyDamage(d Damage) DamageResult {
	if c.Is(domain.StateInactive) {
		c.log.Debug("Damage ignored: controller is inactive.")
		return DamageResult{Ignored: true}
	}

	source := ""
	if d.Source != nil {
		source = d.Source.ID
	}

	defense := c.Defense.Maximum()
	damage := d.Value
	if !d.Piercing {
		damage -= defense
	}

	if damage <= 0 {
		c.emit(domain.Event{Type: domain.EventDamageBlocked, Target: source, Value: d.Value})
		c.log.WithFields(logrus.Fields{
			"raw_damage": d.Value,
			"defense":    defense,
		}).Debug("Damage blocked.")
		return DamageResult{Blocked: true}
	}

	hpBefore := c.Health.Current()
	lost := c.Health.Reduce(damage)
	res := DamageResult{Damage: damage, PercentLost: lost}

	c.emit(domain.Event{Type: domain.EventDamageReceived, Target: source, Value: damage, Percent: lost})

	if c.Health.Current() <= 0 {
		res.Incapacitated = c.Incapacitate()
	}

	c.log.WithFields(logrus.Fields{
		"raw_damage":   d.Value,
		"defense":      defense,
		"piercing":     d.Piercing,
		"final_damage": damage,
		"hp_before":    hpBefore,
		"hp_after":     c.Health.Current(),
		"target_died":  res.Incapacitated,
	}).Debug("Damage resolved.")

	c.emitHealth()
	return res
}

// OnHeal добавляет здоровье (не выше максимума). Inactive не лечится.
func (c *Controller) OnHeal(value float64) float64 {
	if c.Is(domain.StateInactive) {
		return 0
	}
	healed := c.Health.Add(value)
	c.emitHealth()
	return healed
}

func (c *Controller) emitHealth() {
	c.emit(domain.Event{
		Type:    domain.EventHealthModified,
		Value:   c.Health.Current(),
		Percent: c.Health.Percentage(),
	})
}

// SetInvulnerable включает или снимает неуязвимость.
// Снимается только модификатор неуязвимости, остальные модификаторы защиты не трогаются.
func (c *Controller) SetInvulnerable(toggle bool) {
	c.invulnerable = toggle
	if toggle {
		c.Defense.SetModifier(domain.ModifierInvulnerable, domain.InvulnerableDefense)
	} else {
		c.Defense.RemoveModifier(domain.ModifierInvulnerable)
	}
	c.emit(domain.Event{Type: domain.EventInvulnerability, Flag: toggle})
	c.log.WithFields(logrus.Fields{
		"invulnerable": toggle,
		"modifiers":    c.Defense.modifierKeys(),
	}).Debug("Invulnerability toggled.")
}

// --- ЦЕЛЬ И ДЕЙСТВИЯ ---

// SetTarget меняет текущую цель (nil - сброс)
func (c *Controller) SetTarget(t *Controller) {
	if c.target == t {
		return
	}
	c.target = t
	id := ""
	if t != nil {
		id = t.ID
	}
	c.emit(domain.Event{Type: domain.EventTarget, Target: id})
}

// forget сбрасывает ссылки на покинувший бой контроллер
func (c *Controller) forget(other *Controller) {
	if c.target == other {
		c.SetTarget(nil)
	}
	if c.action != nil && c.action.Target == other {
		c.CancelAction()
	}
}

// Interrupt прерывает текущее действие и оглушает на duration секунд
func (c *Controller) Interrupt(duration float64) {
	if c.Is(domain.StateInactive) {
		return
	}
	c.CancelAction()
	if duration > c.stunned {
		c.stunned = duration
	}
	c.emit(domain.Event{Type: domain.EventInterrupt, Value: duration})
}

// --- МОДУЛИ ---

func (c *Controller) AddModule(m Module) { c.modules = append(c.modules, m) }

func (c *Controller) Modules() []Module { return c.modules }

// Cooldowns возвращает модуль перезарядки, если он подключен
func (c *Controller) Cooldowns() *Cooldowns {
	for _, m := range c.modules {
		if cd, ok := m.(*Cooldowns); ok {
			return cd
		}
	}
	return nil
}

// TimeStep: сначала модули, затем (если не Inactive) текущее действие и драйвер
func (c *Controller) TimeStep(step float64) {
	c.clock += step
	for _, m := range c.modules {
		m.TimeStep(c, step)
	}

	if c.Is(domain.StateInactive) {
		return
	}

	if c.stunned > 0 {
		c.stunned = math.Max(0, c.stunned-step)
		return
	}

	if c.action != nil {
		c.action.update(c, step)
	}

	if c.Is(domain.StateActive) && c.driver != nil {
		c.driver.Decide(c, step)
	}
}

// Snapshot - состояние контроллера для отладки и клиентов
type Snapshot struct {
	ID           string                 `json:"id"`
	Name         string                 `json:"name"`
	Faction      domain.Faction         `json:"faction"`
	State        domain.ControllerState `json:"state"`
	Position     domain.Vector3         `json:"position"`
	Health       *Attribute             `json:"health"`
	Defense      *Attribute             `json:"defense"`
	Stamina      *Attribute             `json:"stamina"`
	Target       string                 `json:"target,omitempty"`
	Action       string                 `json:"action,omitempty"`
	Phase        string                 `json:"phase,omitempty"`
	Invulnerable bool                   `json:"invulnerable"`
	Stunned      float64                `json:"stunned,omitempty"`
}

func (c *Controller) Snapshot() Snapshot {
	s := Snapshot{
		ID:           c.ID,
		Name:         c.Name,
		Faction:      c.Faction,
		State:        c.State(),
		Position:     c.Position,
		Health:       c.Health,
		Defense:      c.Defense,
		Stamina:      c.Stamina,
		Invulnerable: c.invulnerable,
		Stunned:      c.stunned,
	}
	if c.target != nil {
		s.Target = c.target.ID
	}
	if c.action != nil {
		s.Action = c.action.Name
		s.Phase = c.action.Phase().String()
	}
	return s
}
