package domain

import (
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// VariantType - тег активного значения внутри Variant
type VariantType uint8

const (
	VariantNone VariantType = iota
	VariantInt
	VariantFloat
	VariantBool
	VariantString
	VariantVector
)

var variantTypeToString = map[VariantType]string{
	VariantNone:   "none",
	VariantInt:    "int",
	VariantFloat:  "float",
	VariantBool:   "bool",
	VariantString: "string",
	VariantVector: "vector",
}

var variantStringToType = map[string]VariantType{
	"none":   VariantNone,
	"int":    VariantInt,
	"float":  VariantFloat,
	"bool":   VariantBool,
	"string": VariantString,
	"vector": VariantVector,
}

// ParseVariantType конвертирует строку в VariantType
func ParseVariantType(s string) (VariantType, error) {
	if t, ok := variantStringToType[strings.ToLower(s)]; ok {
		return t, nil
	}
	return VariantNone, fmt.Errorf("unknown variant type %q", s)
}

func (t VariantType) String() string {
	if s, ok := variantTypeToString[t]; ok {
		return s
	}
	return "unknown"
}

// Variant - размеченное объединение (int / float / bool / string / vector).
//
// Инвариант: активно ровно одно значение, и тег всегда ему соответствует.
// Любой Set* обнуляет остальные поля, поэтому сравнение по значению корректно.
type Variant struct {
	kind VariantType
	i    int
	f    float64
	b    bool
	s    string
	v    Vector3
}

func NewInt(i int) Variant          { return Variant{kind: VariantInt, i: i} }
func NewFloat(f float64) Variant    { return Variant{kind: VariantFloat, f: f} }
func NewBool(b bool) Variant        { return Variant{kind: VariantBool, b: b} }
func NewString(s string) Variant    { return Variant{kind: VariantString, s: s} }
func NewVector(v Vector3) Variant   { return Variant{kind: VariantVector, v: v} }
func (v Variant) Type() VariantType { return v.kind }
func (v Variant) IsNone() bool      { return v.kind == VariantNone }

// FromValue собирает Variant из обычного Go-значения.
// Все целые типы приводятся к int, float32 - к float64.
func FromValue(value any) (Variant, error) {
	switch x := value.(type) {
	case Variant:
		return x, nil
	case *Variant:
		if x == nil {
			return Variant{}, nil
		}
		return *x, nil
	case nil:
		return Variant{}, nil
	case int:
		return NewInt(x), nil
	case int8:
		return NewInt(int(x)), nil
	case int16:
		return NewInt(int(x)), nil
	case int32:
		return NewInt(int(x)), nil
	case int64:
		return NewInt(int(x)), nil
	case uint8:
		return NewInt(int(x)), nil
	case uint16:
		return NewInt(int(x)), nil
	case uint32:
		return NewInt(int(x)), nil
	case float32:
		return NewFloat(float64(x)), nil
	case float64:
		return NewFloat(x), nil
	case bool:
		return NewBool(x), nil
	case string:
		return NewString(x), nil
	case Vector3:
		return NewVector(x), nil
	default:
		return Variant{}, fmt.Errorf("unsupported variant value type %T", value)
	}
}

// MustFromValue - FromValue для литералов в коде, паникует на неподдерживаемых типах
func MustFromValue(value any) Variant {
	v, err := FromValue(value)
	if err != nil {
		panic(err)
	}
	return v
}

// Set заменяет значение и тег целиком
func (v *Variant) Set(value any) error {
	nv, err := FromValue(value)
	if err != nil {
		return err
	}
	*v = nv
	return nil
}

func (v *Variant) SetInt(i int)        { *v = NewInt(i) }
func (v *Variant) SetFloat(f float64)  { *v = NewFloat(f) }
func (v *Variant) SetBool(b bool)      { *v = NewBool(b) }
func (v *Variant) SetString(s string)  { *v = NewString(s) }
func (v *Variant) SetVector(x Vector3) { *v = NewVector(x) }

func (v Variant) Int() (int, bool)        { return v.i, v.kind == VariantInt }
func (v Variant) Float() (float64, bool)  { return v.f, v.kind == VariantFloat }
func (v Variant) Bool() (bool, bool)      { return v.b, v.kind == VariantBool }
func (v Variant) Str() (string, bool)     { return v.s, v.kind == VariantString }
func (v Variant) Vector() (Vector3, bool) { return v.v, v.kind == VariantVector }

// Interface возвращает активное значение как any (nil для VariantNone)
func (v Variant) Interface() any {
	switch v.kind {
	case VariantInt:
		return v.i
	case VariantFloat:
		return v.f
	case VariantBool:
		return v.b
	case VariantString:
		return v.s
	case VariantVector:
		return v.v
	default:
		return nil
	}
}

// Equal сравнивает тег и значение. Int и Float не приводятся друг к другу.
func (v Variant) Equal(other Variant) bool {
	return v == other
}

func (v Variant) String() string {
	switch v.kind {
	case VariantNone:
		return "<none>"
	case VariantVector:
		return v.v.String()
	default:
		return fmt.Sprintf("%v", v.Interface())
	}
}

// --- СЕРИАЛИЗАЦИЯ ---

type variantJSON struct {
	Type  string          `json:"type"`
	Value json.RawMessage `json:"value,omitempty"`
}

func (v Variant) MarshalJSON() ([]byte, error) {
	out := variantJSON{Type: v.kind.String()}
	if v.kind != VariantNone {
		raw, err := json.Marshal(v.Interface())
		if err != nil {
			return nil, err
		}
		out.Value = raw
	}
	return json.Marshal(out)
}

func (v *Variant) UnmarshalJSON(data []byte) error {
	var in variantJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	kind, err := ParseVariantType(in.Type)
	if err != nil {
		return err
	}
	var target any
	switch kind {
	case VariantNone:
		*v = Variant{}
		return nil
	case VariantInt:
		target = new(int)
	case VariantFloat:
		target = new(float64)
	case VariantBool:
		target = new(bool)
	case VariantString:
		target = new(string)
	case VariantVector:
		target = new(Vector3)
	}
	if err := json.Unmarshal(in.Value, target); err != nil {
		return fmt.Errorf("variant %s: %w", kind, err)
	}
	return v.Set(derefValue(target))
}

type variantYAML struct {
	Type  string    `yaml:"type"`
	Value yaml.Node `yaml:"value"`
}

func (v Variant) MarshalYAML() (interface{}, error) {
	return map[string]any{"type": v.kind.String(), "value": v.Interface()}, nil
}

func (v *Variant) UnmarshalYAML(node *yaml.Node) error {
	var in variantYAML
	if err := node.Decode(&in); err != nil {
		return err
	}
	kind, err := ParseVariantType(in.Type)
	if err != nil {
		return err
	}
	var target any
	switch kind {
	case VariantNone:
		*v = Variant{}
		return nil
	case VariantInt:
		target = new(int)
	case VariantFloat:
		target = new(float64)
	case VariantBool:
		target = new(bool)
	case VariantString:
		target = new(string)
	case VariantVector:
		target = new(Vector3)
	}
	if err := in.Value.Decode(target); err != nil {
		return fmt.Errorf("variant %s: %w", kind, err)
	}
	return v.Set(derefValue(target))
}

func derefValue(p any) any {
	switch x := p.(type) {
	case *int:
		return *x
	case *float64:
		return *x
	case *bool:
		return *x
	case *string:
		return *x
	case *Vector3:
		return *x
	}
	return nil
}
