package ai

import "math/rand"

// Service - периодическая работа, привязанная к узлу.
//
// Выполняется на кооперативном таймере, пока тикает поддерево узла:
// опрос окружения, обновление blackboard. Отдельной горутины нет.
type Service struct {
	Name     string
	Interval float64
	// Deviation - случайная добавка к интервалу из [0, Deviation)
	Deviation float64
	Fn        func(ctx *Context)
}

func NewService(name string, interval, deviation float64, fn func(ctx *Context)) *Service {
	return &Service{Name: name, Interval: interval, Deviation: deviation, Fn: fn}
}

// serviceTimer - состояние сервиса у конкретного агента.
// Случайная добавка выбирается один раз при создании.
type serviceTimer struct {
	service *Service
	period  float64
	elapsed float64
	runs    int
}

func newServiceTimer(s *Service, rng *rand.Rand) *serviceTimer {
	period := s.Interval
	if s.Deviation > 0 && rng != nil {
		period += rng.Float64() * s.Deviation
	}
	return &serviceTimer{service: s, period: period}
}

func (t *serviceTimer) update(ctx *Context) {
	t.elapsed += ctx.Step
	if t.elapsed < t.period {
		return
	}
	t.elapsed = 0
	t.runs++
	if t.service.Fn != nil {
		t.service.Fn(ctx)
	}
}
