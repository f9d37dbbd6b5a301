package combat

import (
	"encoding/json"
	"sort"

	"stratus-server/pkg/utils"
)

// Attribute - ограниченная числовая характеристика (здоровье, защита, выносливость).
//
// Maximum = Base + сумма модификаторов. Current всегда в [0, Maximum].
// Модификаторы именованные: снять можно ровно тот, что был выставлен.
type Attribute struct {
	Base      float64
	current   float64
	modifiers map[string]float64
}

func NewAttribute(base float64) *Attribute {
	return &Attribute{Base: base, current: base, modifiers: make(map[string]float64)}
}

func (a *Attribute) Current() float64 { return a.current }

func (a *Attribute) Maximum() float64 {
	limit := a.Base
	for _, m := range a.modifiers {
		limit += m
	}
	return limit
}

// Percentage - текущее значение в процентах от максимума
func (a *Attribute) Percentage() float64 {
	limit := a.Maximum()
	if limit <= 0 {
		return 0
	}
	return a.current / limit * 100
}

// Reduce уменьшает текущее значение (не ниже 0) и возвращает,
// сколько процентов максимума было потеряно.
func (a *Attribute) Reduce(value float64) float64 {
	if value <= 0 {
		return 0
	}
	lost := value
	if lost > a.current {
		lost = a.current
	}
	a.current -= lost
	limit := a.Maximum()
	if limit <= 0 {
		return 0
	}
	return lost / limit * 100
}

// Add увеличивает текущее значение (не выше максимума) и возвращает прирост
func (a *Attribute) Add(value float64) float64 {
	if value <= 0 {
		return 0
	}
	before := a.current
	a.current += value
	a.clamp()
	return a.current - before
}

// Set выставляет текущее значение с ограничением
func (a *Attribute) Set(value float64) {
	a.current = value
	a.clamp()
}

// Fill восстанавливает текущее значение до максимума
func (a *Attribute) Fill() { a.current = a.Maximum() }

func (a *Attribute) SetModifier(key string, value float64) {
	if a.modifiers == nil {
		a.modifiers = make(map[string]float64)
	}
	a.modifiers[key] = value
	a.clamp()
}

func (a *Attribute) RemoveModifier(key string) bool {
	if _, ok := a.modifiers[key]; !ok {
		return false
	}
	delete(a.modifiers, key)
	a.clamp()
	return true
}

func (a *Attribute) Modifier(key string) (float64, bool) {
	v, ok := a.modifiers[key]
	return v, ok
}

// Modifiers возвращает копию модификаторов
func (a *Attribute) Modifiers() map[string]float64 {
	out := make(map[string]float64, len(a.modifiers))
	for k, v := range a.modifiers {
		out[k] = v
	}
	return out
}

func (a *Attribute) ClearModifiers() {
	a.modifiers = make(map[string]float64)
	a.clamp()
}

func (a *Attribute) clamp() {
	a.current = utils.Clamp(a.current, 0, a.Maximum())
}

type attributeJSON struct {
	Base      float64            `json:"base"`
	Current   float64            `json:"current"`
	Maximum   float64            `json:"maximum"`
	Modifiers map[string]float64 `json:"modifiers,omitempty"`
}

func (a *Attribute) MarshalJSON() ([]byte, error) {
	return json.Marshal(attributeJSON{
		Base:      a.Base,
		Current:   a.current,
		Maximum:   a.Maximum(),
		Modifiers: a.Modifiers(),
	})
}

// modifierKeys - отсортированные ключи модификаторов (для логов)
func (a *Attribute) modifierKeys() []string {
	keys := make([]string, 0, len(a.modifiers))
	for k := range a.modifiers {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
