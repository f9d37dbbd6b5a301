package domain

import (
	"encoding/json"
	"strings"

	"gopkg.in/yaml.v3"
)

// WorldState - множество фактов, видимых планировщику.
type WorldState struct {
	SymbolTable
}

func NewWorldState(symbols ...Symbol) *WorldState {
	return &WorldState{SymbolTable: NewSymbolTable(symbols...)}
}

// Apply - upsert по ключу
func (ws *WorldState) Apply(s Symbol) {
	ws.Set(s)
}

// ApplyValue - Apply для обычного Go-значения
func (ws *WorldState) ApplyValue(key string, value any) error {
	s, err := NewSymbol(key, value)
	if err != nil {
		return err
	}
	ws.Apply(s)
	return nil
}

// Merge применяет все символы other поверх текущих
func (ws *WorldState) Merge(other *WorldState) {
	if other == nil {
		return
	}
	for k, v := range other.symbols {
		ws.Apply(Symbol{Key: k, Value: v})
	}
}

// Contains - есть ли символ с тем же ключом и равным значением
func (ws *WorldState) Contains(s Symbol) bool {
	v, ok := ws.symbols[s.Key]
	return ok && v.Equal(s.Value)
}

// Satisfies: каждый символ goal присутствует в ws с равным значением.
// Останавливается на первом отсутствующем ключе или несовпадении.
func (ws *WorldState) Satisfies(goal *WorldState) bool {
	if goal == nil {
		return true
	}
	for k, v := range goal.symbols {
		if !ws.Contains(Symbol{Key: k, Value: v}) {
			return false
		}
	}
	return true
}

// Diff возвращает символы goal, которые ws не выполняет
func (ws *WorldState) Diff(goal *WorldState) []Symbol {
	if goal == nil {
		return nil
	}
	var missing []Symbol
	for _, s := range goal.Symbols() {
		if !ws.Contains(s) {
			missing = append(missing, s)
		}
	}
	return missing
}

// Copy - глубокая копия: изменения копии не видны оригиналу
func (ws *WorldState) Copy() *WorldState {
	out := &WorldState{SymbolTable: SymbolTable{symbols: make(map[string]Variant, ws.Len())}}
	for k, v := range ws.symbols {
		out.symbols[k] = v
	}
	return out
}

func (ws *WorldState) String() string {
	parts := make([]string, 0, ws.Len())
	for _, s := range ws.Symbols() {
		parts = append(parts, s.String())
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

func (ws *WorldState) MarshalJSON() ([]byte, error) {
	return json.Marshal(ws.Symbols())
}

func (ws *WorldState) UnmarshalJSON(data []byte) error {
	var symbols []Symbol
	if err := json.Unmarshal(data, &symbols); err != nil {
		return err
	}
	ws.SymbolTable = NewSymbolTable(symbols...)
	return nil
}

func (ws *WorldState) UnmarshalYAML(node *yaml.Node) error {
	var symbols []Symbol
	if err := node.Decode(&symbols); err != nil {
		return err
	}
	ws.SymbolTable = NewSymbolTable(symbols...)
	return nil
}
