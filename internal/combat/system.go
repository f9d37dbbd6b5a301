package combat

import (
	"sync"

	"github.com/sirupsen/logrus"

	"stratus-server/internal/domain"
	"stratus-server/pkg/logger"
)

// System - список участников боя.
// Раздает шаг времени контроллерам и штампует события временем боя.
type System struct {
	mu          sync.RWMutex
	controllers []*Controller
	byID        map[string]*Controller
	sink        domain.EventSink
	clock       float64
	log         *logrus.Entry
}

func NewSystem(sink domain.EventSink) *System {
	if sink == nil {
		sink = domain.Discard
	}
	return &System{
		byID: make(map[string]*Controller),
		sink: sink,
		log:  logger.For("combat_system"),
	}
}

// Publish - System сам является EventSink для своих контроллеров
func (s *System) Publish(e domain.Event) {
	e.Time = s.clock
	s.sink.Publish(e)
}

// Add регистрирует контроллер и вводит его в бой
func (s *System) Add(c *Controller) {
	s.mu.Lock()
	if _, ok := s.byID[c.ID]; ok {
		s.mu.Unlock()
		return
	}
	s.controllers = append(s.controllers, c)
	s.byID[c.ID] = c
	s.mu.Unlock()

	c.SetRoster(s)
	c.SetSink(s)
	c.Spawn()
	s.log.WithFields(logrus.Fields{
		"controller_id":   c.ID,
		"controller_name": c.Name,
		"faction":         c.Faction.String(),
	}).Info("Controller joined combat.")
}

// Remove убирает контроллер; остальные забывают его как цель
func (s *System) Remove(id string) bool {
	s.mu.Lock()
	c, ok := s.byID[id]
	if !ok {
		s.mu.Unlock()
		return false
	}
	delete(s.byID, id)
	for i, x := range s.controllers {
		if x == c {
			s.controllers = append(s.controllers[:i], s.controllers[i+1:]...)
			break
		}
	}
	rest := append([]*Controller(nil), s.controllers...)
	s.mu.Unlock()

	for _, other := range rest {
		other.forget(c)
	}
	c.CancelAction()
	c.SetRoster(nil)
	s.log.WithField("controller_id", id).Info("Controller left combat.")
	return true
}

func (s *System) Get(id string) (*Controller, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.byID[id]
	return c, ok
}

// Controllers - копия списка участников в порядке добавления
func (s *System) Controllers() []*Controller {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]*Controller(nil), s.controllers...)
}

func (s *System) Clock() float64 { return s.clock }

// TimeStep продвигает время и всех участников на step
func (s *System) TimeStep(step float64) {
	s.clock += step
	for _, c := range s.Controllers() {
		c.TimeStep(step)
	}
}

// Alive - участники из faction, которые еще не выбыли из боя
func (s *System) Alive(faction domain.Faction) []*Controller {
	var out []*Controller
	for _, c := range s.Controllers() {
		if c.Faction.Has(faction) && !c.Is(domain.StateInactive) {
			out = append(out, c)
		}
	}
	return out
}
