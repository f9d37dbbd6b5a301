package combat

import (
	"sort"

	"stratus-server/internal/domain"
)

// Module - подсистема контроллера, обновляемая каждый шаг
// (в том числе, когда контроллер Inactive).
type Module interface {
	Name() string
	TimeStep(c *Controller, step float64)
}

// StaminaRegen восстанавливает выносливость со скоростью Rate в секунду
type StaminaRegen struct {
	Rate float64
}

func (s *StaminaRegen) Name() string { return "stamina_regen" }

func (s *StaminaRegen) TimeStep(c *Controller, step float64) {
	if c.Is(domain.StateInactive) {
		return
	}
	c.Stamina.Add(s.Rate * step)
}

// Cooldowns - таймеры перезарядки по имени навыка
type Cooldowns struct {
	remaining map[string]float64
}

func NewCooldowns() *Cooldowns {
	return &Cooldowns{remaining: make(map[string]float64)}
}

func (cd *Cooldowns) Name() string { return "cooldowns" }

// Start запускает перезарядку name на d секунд
func (cd *Cooldowns) Start(name string, d float64) {
	if d <= 0 {
		return
	}
	cd.remaining[name] = d
}

func (cd *Cooldowns) Ready(name string) bool { return cd.remaining[name] <= 0 }

func (cd *Cooldowns) Remaining(name string) float64 { return cd.remaining[name] }

// Reset снимает все перезарядки
func (cd *Cooldowns) Reset() {
	cd.remaining = make(map[string]float64)
}

// Active - имена навыков на перезарядке (отсортированы)
func (cd *Cooldowns) Active() []string {
	names := make([]string, 0, len(cd.remaining))
	for name := range cd.remaining {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (cd *Cooldowns) TimeStep(_ *Controller, step float64) {
	for name, left := range cd.remaining {
		left -= step
		if left <= 0 {
			delete(cd.remaining, name)
			continue
		}
		cd.remaining[name] = left
	}
}
