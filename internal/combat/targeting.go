package combat

import "stratus-server/internal/domain"

// FindTargetsOfType возвращает участников боя, которые для c являются
// запрошенным отношением (Self / Ally / Enemy) и находятся в состоянии state.
//
// Self - всегда только сам контроллер. Союзники включают самого c, если его
// фракция входит в союзные.
func (c *Controller) FindTargetsOfType(param domain.TargetingParameter, state domain.ControllerState) []*Controller {
	if param == domain.TargetSelf {
		return []*Controller{c}
	}
	if c.roster == nil {
		return nil
	}
	return c.FilterTargets(c.roster.Controllers(), param, state)
}

// FindTargetsInRange - FindTargetsOfType в радиусе от позиции контроллера
func (c *Controller) FindTargetsInRange(param domain.TargetingParameter, radius float64, state domain.ControllerState) []*Controller {
	return WithinRadius(c.FindTargetsOfType(param, state), c.Position, radius)
}

// FilterTargets оставляет из available тех, кто подходит под отношение и состояние
func (c *Controller) FilterTargets(available []*Controller, param domain.TargetingParameter, state domain.ControllerState) []*Controller {
	if param == domain.TargetSelf {
		for _, t := range available {
			if t == c {
				return []*Controller{c}
			}
		}
		return nil
	}

	factions := domain.TargetFactions(c.Faction, param)
	var out []*Controller
	for _, t := range available {
		if t == nil || !t.Faction.Has(factions) {
			continue
		}
		if state != "" && !t.Is(state) {
			continue
		}
		out = append(out, t)
	}
	return out
}

// WithinRadius - контроллеры не дальше radius от center
func WithinRadius(targets []*Controller, center domain.Vector3, radius float64) []*Controller {
	var out []*Controller
	for _, t := range targets {
		if t.Position.Distance(center) <= radius {
			out = append(out, t)
		}
	}
	return out
}

// Nearest - ближайший к from контроллер или nil
func Nearest(targets []*Controller, from domain.Vector3) *Controller {
	var best *Controller
	bestDist := 0.0
	for _, t := range targets {
		d := t.Position.Distance(from)
		if best == nil || d < bestDist {
			best, bestDist = t, d
		}
	}
	return best
}
