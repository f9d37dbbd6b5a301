package domain

import (
	"fmt"
	"sort"
)

// Symbol - типизированный факт: ключ + значение
type Symbol struct {
	Key   string  `json:"key" yaml:"key"`
	Value Variant `json:"value" yaml:"value"`
}

// NewSymbol собирает символ из обычного Go-значения
func NewSymbol(key string, value any) (Symbol, error) {
	v, err := FromValue(value)
	if err != nil {
		return Symbol{}, fmt.Errorf("symbol %q: %w", key, err)
	}
	return Symbol{Key: key, Value: v}, nil
}

// Sym - NewSymbol для литералов, паникует на неподдерживаемом типе значения
func Sym(key string, value any) Symbol {
	return Symbol{Key: key, Value: MustFromValue(value)}
}

func (s Symbol) String() string {
	return fmt.Sprintf("%s=%s", s.Key, s.Value)
}

// SymbolTable - набор символов с уникальными ключами. Порядок не важен.
// Нулевое значение готово к использованию.
type SymbolTable struct {
	symbols map[string]Variant
}

func NewSymbolTable(symbols ...Symbol) SymbolTable {
	t := SymbolTable{symbols: make(map[string]Variant, len(symbols))}
	for _, s := range symbols {
		t.symbols[s.Key] = s.Value
	}
	return t
}

// Find возвращает символ по ключу
func (t *SymbolTable) Find(key string) (Symbol, bool) {
	v, ok := t.symbols[key]
	if !ok {
		return Symbol{}, false
	}
	return Symbol{Key: key, Value: v}, true
}

// Value - короткая форма Find, когда нужен только Variant
func (t *SymbolTable) Value(key string) (Variant, bool) {
	v, ok := t.symbols[key]
	return v, ok
}

// Set вставляет или заменяет символ
func (t *SymbolTable) Set(s Symbol) {
	if t.symbols == nil {
		t.symbols = make(map[string]Variant)
	}
	t.symbols[s.Key] = s.Value
}

func (t *SymbolTable) Remove(key string) bool {
	if _, ok := t.symbols[key]; !ok {
		return false
	}
	delete(t.symbols, key)
	return true
}

func (t *SymbolTable) Len() int { return len(t.symbols) }

// Keys - отсортированный список ключей (детерминированный вывод для логов и тестов)
func (t *SymbolTable) Keys() []string {
	keys := make([]string, 0, len(t.symbols))
	for k := range t.symbols {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Symbols возвращает копию содержимого, отсортированную по ключу
func (t *SymbolTable) Symbols() []Symbol {
	out := make([]Symbol, 0, len(t.symbols))
	for _, k := range t.Keys() {
		out = append(out, Symbol{Key: k, Value: t.symbols[k]})
	}
	return out
}
