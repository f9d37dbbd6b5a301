package ai

import (
	"fmt"
	"sort"
	"sync"

	"stratus-server/internal/domain"
)

// Scope - область видимости blackboard
type Scope uint8

const (
	ScopeLocal Scope = iota
	ScopeGlobal
	// ScopeWorld адресует WorldState агента (только для SetSymbol)
	ScopeWorld
)

var scopeToString = map[Scope]string{
	ScopeLocal:  "local",
	ScopeGlobal: "global",
	ScopeWorld:  "world",
}

func (s Scope) String() string {
	if v, ok := scopeToString[s]; ok {
		return v
	}
	return "unknown"
}

// Blackboard - потокобезопасное хранилище key -> Variant.
//
// Пишет только горутина симуляции, читать может debug HTTP.
// Нулевое значение готово к использованию.
type Blackboard struct {
	mu   sync.RWMutex
	data map[string]domain.Variant
}

func NewBlackboard() *Blackboard {
	return &Blackboard{data: make(map[string]domain.Variant)}
}

func (b *Blackboard) Get(key string) (domain.Variant, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	v, ok := b.data[key]
	return v, ok
}

func (b *Blackboard) Set(key string, value domain.Variant) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.data == nil {
		b.data = make(map[string]domain.Variant)
	}
	b.data[key] = value
}

// SetValue - Set для обычного Go-значения
func (b *Blackboard) SetValue(key string, value any) error {
	v, err := domain.FromValue(value)
	if err != nil {
		return fmt.Errorf("blackboard %q: %w", key, err)
	}
	b.Set(key, v)
	return nil
}

func (b *Blackboard) Has(key string) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	_, ok := b.data[key]
	return ok
}

func (b *Blackboard) Delete(key string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.data, key)
}

func (b *Blackboard) Keys() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	keys := make([]string, 0, len(b.data))
	for k := range b.data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (b *Blackboard) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.data)
}

// Snapshot возвращает копию содержимого
func (b *Blackboard) Snapshot() map[string]domain.Variant {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make(map[string]domain.Variant, len(b.data))
	for k, v := range b.data {
		out[k] = v
	}
	return out
}

// Values - снимок в виде map[string]any (окружение для выражений)
func (b *Blackboard) Values() map[string]any {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make(map[string]any, len(b.data))
	for k, v := range b.data {
		out[k] = v.Interface()
	}
	return out
}

func (b *Blackboard) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.data = make(map[string]domain.Variant)
}

// Board объединяет локальный (на агента) и глобальный (общий) blackboard
type Board struct {
	Local  *Blackboard
	Global *Blackboard
}

func (b *Board) scope(s Scope) *Blackboard {
	if s == ScopeGlobal {
		return b.Global
	}
	return b.Local
}

func (b *Board) Get(s Scope, key string) (domain.Variant, bool) {
	bb := b.scope(s)
	if bb == nil {
		return domain.Variant{}, false
	}
	return bb.Get(key)
}

func (b *Board) Set(s Scope, key string, value domain.Variant) {
	if bb := b.scope(s); bb != nil {
		bb.Set(key, value)
	}
}
