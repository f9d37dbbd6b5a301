package engine

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"stratus-server/internal/ai"
	"stratus-server/internal/combat"
	"stratus-server/internal/domain"
	"stratus-server/internal/engine/handlers"
	"stratus-server/internal/engine/handlers/actions"
	"stratus-server/internal/skills"
	"stratus-server/pkg/api"
	"stratus-server/pkg/logger"
	"stratus-server/pkg/utils"
)

var (
	ErrUnknownAction     = errors.New("unknown action")
	ErrUnknownController = errors.New("unknown controller")
)

// Arena - один бой: участники, их агенты, очередь решений и журнал событий.
//
// Симуляция однопоточная: Step и Execute вызываются из одной горутины (Run).
// Мьютекс нужен только читателям отладочных снимков.
type Arena struct {
	mu sync.Mutex

	cfg     Config
	seed    int64
	rng     *rand.Rand
	catalog *skills.Catalog

	system     *combat.System
	combatants map[string]*Combatant
	order      []*Combatant
	turns      *TurnManager
	global     *ai.Blackboard

	events     []domain.Event
	logs       []api.LogEntry
	sinks      domain.MultiSink
	recorder   *Recorder
	replaySink func(*domain.ReplaySession)

	handlers map[domain.ActionType]handlers.HandlerFunc
	commands chan domain.InternalCommand
	notify   func(api.ServerResponse)
	seq      int

	log *logrus.Entry
}

// NewArena создает пустую арену. sinks получают каждое событие боя.
func NewArena(cfg Config, catalog *skills.Catalog, sinks ...domain.EventSink) *Arena {
	if cfg.EventLogSize <= 0 {
		cfg.EventLogSize = 1024
	}
	if cfg.ThinkInterval <= 0 {
		cfg.ThinkInterval = 0.25
	}
	if cfg.ReplayChunk <= 0 {
		cfg.ReplayChunk = 50000
	}
	a := &Arena{
		cfg:        cfg,
		seed:       cfg.Seed,
		rng:        rand.New(rand.NewSource(cfg.Seed)),
		catalog:    catalog,
		combatants: make(map[string]*Combatant),
		turns:      NewTurnManager(),
		global:     ai.NewBlackboard(),
		sinks:      domain.MultiSink(sinks),
		handlers:   make(map[domain.ActionType]handlers.HandlerFunc),
		commands:   make(chan domain.InternalCommand, 100),
		log:        logger.For("arena"),
	}
	if cfg.Record {
		a.recorder = NewRecorder(cfg.Seed, cfg.ReplayChunk)
	}
	a.system = combat.NewSystem(domain.SinkFunc(a.onEvent))
	a.registerHandlers()
	return a
}

func (a *Arena) registerHandlers() {
	a.handlers[domain.ActionInit] = handlers.WithEmptyPayload(actions.HandleInit)
	a.handlers[domain.ActionDamage] = handlers.WithPayload(actions.HandleDamage)
	a.handlers[domain.ActionHeal] = handlers.WithPayload(actions.HandleHeal)
	a.handlers[domain.ActionRestore] = handlers.WithPayload(actions.HandleRestore)
	a.handlers[domain.ActionRevive] = handlers.WithPayload(actions.HandleRevive)
	a.handlers[domain.ActionChangeState] = handlers.WithPayload(actions.HandleChangeState)
	a.handlers[domain.ActionInvulnerable] = handlers.WithPayload(actions.HandleInvulnerable)
	a.handlers[domain.ActionTarget] = handlers.WithPayload(actions.HandleTarget)
	a.handlers[domain.ActionCast] = handlers.WithPayload(actions.HandleCast)
	a.handlers[domain.ActionPause] = handlers.WithPayload(actions.HandlePause)
	a.handlers[domain.ActionResume] = handlers.WithPayload(actions.HandleResume)
	a.handlers[domain.ActionInterrupt] = handlers.WithPayload(actions.HandleInterrupt)
}

// onEvent - сюда System отдает события со штампом времени
func (a *Arena) onEvent(e domain.Event) {
	a.events = append(a.events, e)
	if over := len(a.events) - a.cfg.EventLogSize; over > 0 {
		a.events = append(a.events[:0], a.events[over:]...)
	}
	if a.recorder != nil {
		a.recorder.Publish(e)
		a.rotateReplay()
	}
	a.sinks.Publish(e)
}

// SetReplaySink задает получателя заполненных сегментов реплея.
// Вызывается из горутины арены под ее блокировкой.
func (a *Arena) SetReplaySink(fn func(*domain.ReplaySession)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.replaySink = fn
}

// rotateReplay отдает заполненный сегмент реплея и начинает новый.
// Без получателя сегмент отбрасывается.
func (a *Arena) rotateReplay() {
	if !a.recorder.Full() {
		return
	}
	seg := a.recorder.Cut()
	if a.replaySink == nil {
		a.log.WithFields(logrus.Fields{
			"commands": len(seg.Commands),
			"events":   len(seg.Events),
		}).Warn("Replay segment discarded: no sink.")
		return
	}
	a.replaySink(seg)
}

// --- УЧАСТНИКИ ---

// Populate выводит на арену все юниты каталога
func (a *Arena) Populate() error {
	if a.catalog == nil {
		return nil
	}
	for _, u := range a.catalog.Units {
		if _, err := a.Spawn(u); err != nil {
			return err
		}
	}
	return nil
}

// Spawn создает участника по шаблону и вводит его в бой
func (a *Arena) Spawn(u skills.Unit) (*Combatant, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	faction, err := domain.ParseFaction(u.Faction)
	if err != nil {
		return nil, fmt.Errorf("spawn %s: %w", u.Name, err)
	}

	ctl := combat.NewController(u.Name, faction, u.Stats())
	ctl.Position = u.Origin()
	ctl.AddModule(combat.NewCooldowns())
	ctl.AddModule(&combat.StaminaRegen{Rate: 5})

	cb := &Combatant{Controller: ctl, Behavior: u.Behavior}
	if a.catalog != nil {
		cb.Skills = a.catalog.SkillsOf(u)
		if u.Armor != "" {
			armor, err := a.catalog.Armor(u.Armor)
			if err != nil {
				return nil, fmt.Errorf("spawn %s: %w", u.Name, err)
			}
			armor.Equip(ctl)
		}
	}

	if u.Behavior != "" {
		tree, err := BuildTree(u.Behavior, cb.Skills)
		if err != nil {
			return nil, fmt.Errorf("spawn %s: %w", u.Name, err)
		}
		agent, err := ai.NewAgent(u.Name, tree,
			ai.WithID(ctl.ID),
			ai.WithOwner(cb),
			ai.WithGlobal(a.global),
			ai.WithSeed(a.rng.Int63()),
		)
		if err != nil {
			return nil, fmt.Errorf("spawn %s: %w", u.Name, err)
		}
		cb.Agent = agent
		ctl.SetDriver(cb)
	}

	a.add(cb)
	return cb, nil
}

func (a *Arena) add(cb *Combatant) {
	a.seq++
	cb.seq = a.seq
	a.combatants[cb.ID()] = cb
	a.order = append(a.order, cb)
	a.system.Add(cb.Controller)
	if cb.Agent != nil {
		a.turns.Add(cb, a.system.Clock())
	}
}

// Remove убирает участника из боя
func (a *Arena) Remove(id string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	cb, ok := a.combatants[id]
	if !ok {
		return false
	}
	delete(a.combatants, id)
	for i, x := range a.order {
		if x == cb {
			a.order = append(a.order[:i], a.order[i+1:]...)
			break
		}
	}
	a.turns.Remove(id)
	return a.system.Remove(id)
}

// Combatant возвращает участника по ID
func (a *Arena) Combatant(id string) (*Combatant, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	cb, ok := a.combatants[id]
	return cb, ok
}

// --- СИМУЛЯЦИЯ ---

// Step продвигает бой на dt: контроллеры, затем агенты, чье время решения пришло
func (a *Arena) Step(dt float64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.step(dt)
}

func (a *Arena) step(dt float64) {
	a.system.TimeStep(dt)
	now := a.system.Clock()
	a.global.Set("now", domain.NewFloat(now))

	for {
		item := a.turns.PeekNext()
		if item == nil || item.Priority > now {
			break
		}
		cb := item.Value
		if _, thought, err := cb.think(); thought && err != nil {
			a.log.WithError(err).WithField("controller_id", cb.ID()).Warn("Agent tick failed.")
		}
		a.turns.UpdatePriority(cb.ID(), now+a.nextThink())
	}
}

func (a *Arena) nextThink() float64 {
	return a.cfg.ThinkInterval + utils.RandomRange(a.rng, 0, a.cfg.ThinkJitter)
}

// Clock - время боя в секундах
func (a *Arena) Clock() float64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.system.Clock()
}

// Submit ставит команду в очередь арены. false - очередь переполнена.
func (a *Arena) Submit(cmd api.ClientCommand) bool {
	action := domain.ParseAction(cmd.Action)
	if action == domain.ActionUnknown {
		a.log.WithField("action", cmd.Action).Warn("Unknown action")
		return false
	}
	select {
	case a.commands <- domain.InternalCommand{Action: action, Token: cmd.Token, Payload: cmd.Payload}:
		return true
	default:
		a.log.WithField("action", cmd.Action).Warn("Command queue full, dropping.")
		return false
	}
}

// Run крутит Step с периодом TickRate и выполняет команды между шагами
func (a *Arena) Run(ctx context.Context) error {
	rate := a.cfg.TickRate
	if rate <= 0 {
		rate = 100 * time.Millisecond
	}
	ticker := time.NewTicker(rate)
	defer ticker.Stop()

	a.log.WithFields(logrus.Fields{
		"seed":      a.seed,
		"tick_rate": rate.String(),
	}).Info("Arena loop started")

	dt := rate.Seconds()
	for {
		select {
		case <-ctx.Done():
			a.log.Info("Arena loop stopped")
			return ctx.Err()
		case cmd := <-a.commands:
			res, err := a.Execute(cmd)
			a.reply(cmd, res, err)
		case <-ticker.C:
			a.Step(dt)
		}
	}
}

// SetNotifier задает получателя ответов на команды из очереди (обычно Broadcaster)
func (a *Arena) SetNotifier(fn func(api.ServerResponse)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.notify = fn
}

// reply отправляет итог команды: полный снимок или записи журнала (с ошибкой)
func (a *Arena) reply(cmd domain.InternalCommand, res handlers.Result, err error) {
	if err != nil {
		a.log.WithError(err).WithField("action", cmd.Action.String()).Warn("Command failed.")
	}

	a.mu.Lock()
	notify := a.notify
	a.mu.Unlock()
	if notify == nil {
		return
	}
	if err == nil && res.Snapshot {
		notify(a.Snapshot())
		return
	}

	a.mu.Lock()
	resp := api.ServerResponse{Type: api.MessageResult, Time: a.system.Clock(), Logs: a.drainLogs()}
	a.mu.Unlock()
	if err != nil {
		resp.Type = api.MessageError
		resp.Error = err.Error()
	}
	notify(resp)
}

// Execute выполняет команду немедленно
func (a *Arena) Execute(cmd domain.InternalCommand) (handlers.Result, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.execute(cmd)
}

func (a *Arena) execute(cmd domain.InternalCommand) (handlers.Result, error) {
	handler, ok := a.handlers[cmd.Action]
	if !ok {
		return handlers.Result{}, fmt.Errorf("%w: %s", ErrUnknownAction, cmd.Action)
	}

	ctx := handlers.Context{Finder: a.system}
	if cmd.Token != "" {
		cb, ok := a.combatants[cmd.Token]
		if !ok {
			return handlers.Result{}, fmt.Errorf("%w: %s", ErrUnknownController, cmd.Token)
		}
		ctx.Actor = cb.Controller
		ctx.Skills = cb
	}

	if a.recorder != nil && cmd.Action.Mutating() {
		a.recorder.RecordCommand(a.system.Clock(), cmd)
		a.rotateReplay()
	}

	result, err := handler(ctx, cmd.Payload)
	if err != nil {
		return result, err
	}
	if result.Msg != "" {
		a.AddLog(result.Msg, result.MsgType)
	}
	return result, nil
}

// --- СНИМКИ ---

// Snapshot - полное состояние боя для клиента
func (a *Arena) Snapshot() api.ServerResponse {
	a.mu.Lock()
	defer a.mu.Unlock()

	resp := api.ServerResponse{
		Type:        api.MessageSnapshot,
		Time:        a.system.Clock(),
		Controllers: make([]api.ControllerView, 0, len(a.order)),
		Logs:        a.drainLogs(),
	}
	for _, cb := range a.order {
		resp.Controllers = append(resp.Controllers, toControllerView(cb))
	}
	if a.catalog != nil {
		for _, s := range a.catalog.Skills() {
			resp.Skills = append(resp.Skills, api.SkillView{
				Name:        s.Name,
				Description: s.Description,
				Targeting:   s.Targeting.String(),
				Cost:        s.Cost,
				Cooldown:    s.Cooldown,
				Range:       s.Range,
			})
		}
	}
	return resp
}

// Controllers - снимки контроллеров для отладки
func (a *Arena) Controllers() []combat.Snapshot {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]combat.Snapshot, 0, len(a.order))
	for _, cb := range a.order {
		out = append(out, cb.Controller.Snapshot())
	}
	return out
}

// Agents - снимки агентов для отладки
func (a *Arena) Agents() []ai.Snapshot {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]ai.Snapshot, 0, len(a.order))
	for _, cb := range a.order {
		if cb.Agent != nil {
			out = append(out, cb.Agent.Snapshot())
		}
	}
	return out
}

// Queue - очередь решений для отладки
func (a *Arena) Queue() []map[string]interface{} {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.turns.DebugDump()
}

// Events - последние n событий (n <= 0 - все сохраненные)
func (a *Arena) Events(n int) []domain.Event {
	a.mu.Lock()
	defer a.mu.Unlock()
	if n <= 0 || n > len(a.events) {
		n = len(a.events)
	}
	out := make([]domain.Event, n)
	copy(out, a.events[len(a.events)-n:])
	return out
}

// Replay - копия записи боя (nil, если запись выключена)
func (a *Arena) Replay() *domain.ReplaySession {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.recorder == nil {
		return nil
	}
	return a.recorder.Session()
}

func toControllerView(cb *Combatant) api.ControllerView {
	ctl := cb.Controller
	v := api.ControllerView{
		ID:       ctl.ID,
		Name:     ctl.Name,
		Faction:  ctl.Faction.String(),
		State:    ctl.State().String(),
		Position: [3]float64{ctl.Position.X, ctl.Position.Y, ctl.Position.Z},
		Stats: api.StatsView{
			Health:     ctl.Health.Current(),
			MaxHealth:  ctl.Health.Maximum(),
			Defense:    ctl.Defense.Maximum(),
			Stamina:    ctl.Stamina.Current(),
			MaxStamina: ctl.Stamina.Maximum(),
		},
		Invulnerable: ctl.Invulnerable(),
	}
	if t := ctl.Target(); t != nil {
		v.Target = t.ID
	}
	if act := ctl.CurrentAction(); act != nil {
		v.Action = act.Name
		v.Phase = act.Phase().String()
	}
	for _, s := range cb.Skills {
		v.Skills = append(v.Skills, s.Name)
	}
	if cd := ctl.Cooldowns(); cd != nil {
		v.Cooldowns = cd.Active()
	}
	return v
}
