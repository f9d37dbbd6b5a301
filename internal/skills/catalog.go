package skills

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"

	"stratus-server/internal/combat"
	"stratus-server/internal/domain"
)

//go:embed catalog.schema.json
var catalogSchema string

//go:embed default_catalog.yaml
var defaultCatalog []byte

var (
	ErrCatalogSchema = errors.New("catalog does not match schema")
	ErrUnknownSkill  = errors.New("unknown skill")
	ErrUnknownArmor  = errors.New("unknown armor")
)

var (
	schemaOnce     sync.Once
	compiledSchema *jsonschema.Schema
	schemaErr      error
)

func schema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		compiledSchema, schemaErr = jsonschema.CompileString("catalog.schema.json", catalogSchema)
	})
	return compiledSchema, schemaErr
}

// skillSpec - навык в том виде, в каком он записан в YAML.
// Указатели отличают "не задано" от нуля.
type skillSpec struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Targeting   string         `yaml:"targeting"`
	TargetState *string        `yaml:"targetState"`
	Scope       *Scope         `yaml:"scope"`
	Cost        *float64       `yaml:"cost"`
	Cooldown    float64        `yaml:"cooldown"`
	Range       *float64       `yaml:"range"`
	Timings     combat.Timings `yaml:"timings"`
	Telegraph   *Telegraph     `yaml:"telegraph"`
	Effects     []EffectSpec   `yaml:"effects"`
}

// Unit - шаблон участника боя
type Unit struct {
	Name     string    `json:"name" yaml:"name"`
	Faction  string    `json:"faction" yaml:"faction"`
	Behavior string    `json:"behavior,omitempty" yaml:"behavior"`
	Health   float64   `json:"health,omitempty" yaml:"health"`
	Defense  float64   `json:"defense,omitempty" yaml:"defense"`
	Stamina  float64   `json:"stamina,omitempty" yaml:"stamina"`
	Speed    float64   `json:"speed,omitempty" yaml:"speed"`
	Armor    string    `json:"armor,omitempty" yaml:"armor"`
	Skills   []string  `json:"skills,omitempty" yaml:"skills"`
	Position []float64 `json:"position,omitempty" yaml:"position"`
}

// Stats - характеристики юнита, незаданные берутся из combat.DefaultStats
func (u Unit) Stats() combat.Stats {
	st := combat.DefaultStats
	if u.Health > 0 {
		st.Health = u.Health
	}
	if u.Defense != 0 {
		st.Defense = u.Defense
	}
	if u.Stamina > 0 {
		st.Stamina = u.Stamina
	}
	if u.Speed > 0 {
		st.Speed = u.Speed
	}
	return st
}

func (u Unit) Origin() domain.Vector3 {
	if len(u.Position) != 3 {
		return domain.Vector3{}
	}
	return domain.Vec3(u.Position[0], u.Position[1], u.Position[2])
}

type catalogFile struct {
	Skills []skillSpec `yaml:"skills"`
	Armor  []Armor     `yaml:"armor"`
	Units  []Unit      `yaml:"units"`
}

// Catalog - навыки, броня и шаблоны юнитов, загруженные из YAML
type Catalog struct {
	skills map[string]*Skill
	armor  map[string]Armor
	Units  []Unit
}

// LoadCatalog читает и проверяет каталог из файла
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}
	c, err := ParseCatalog(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// DefaultCatalog - встроенный каталог
func DefaultCatalog() (*Catalog, error) {
	return ParseCatalog(defaultCatalog)
}

// ParseCatalog проверяет YAML по схеме и строит навыки
func ParseCatalog(data []byte) (*Catalog, error) {
	if err := validateCatalog(data); err != nil {
		return nil, err
	}

	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}

	c := &Catalog{
		skills: make(map[string]*Skill, len(file.Skills)),
		armor:  make(map[string]Armor, len(file.Armor)),
		Units:  file.Units,
	}
	for _, spec := range file.Skills {
		s, err := spec.build()
		if err != nil {
			return nil, err
		}
		if _, dup := c.skills[s.Name]; dup {
			return nil, fmt.Errorf("%w: duplicate skill %q", ErrInvalidSkill, s.Name)
		}
		c.skills[s.Name] = s
	}
	for _, a := range file.Armor {
		c.armor[a.Name] = a
	}
	for _, u := range c.Units {
		if _, err := domain.ParseFaction(u.Faction); err != nil {
			return nil, fmt.Errorf("unit %s: %w", u.Name, err)
		}
		if u.Armor != "" {
			if _, ok := c.armor[u.Armor]; !ok {
				return nil, fmt.Errorf("unit %s: %w: %q", u.Name, ErrUnknownArmor, u.Armor)
			}
		}
		for _, name := range u.Skills {
			if _, ok := c.skills[name]; !ok {
				return nil, fmt.Errorf("unit %s: %w: %q", u.Name, ErrUnknownSkill, name)
			}
		}
	}
	return c, nil
}

// validateCatalog: YAML -> JSON-совместимые значения -> схема
func validateCatalog(data []byte) error {
	sch, err := schema()
	if err != nil {
		return fmt.Errorf("compile catalog schema: %w", err)
	}

	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("decode catalog: %w", err)
	}
	if raw == nil {
		raw = map[string]any{}
	}
	b, err := json.Marshal(raw)
	if err != nil {
		return fmt.Errorf("catalog to json: %w", err)
	}
	var doc any
	if err := json.Unmarshal(b, &doc); err != nil {
		return fmt.Errorf("catalog to json: %w", err)
	}
	if err := sch.Validate(doc); err != nil {
		return fmt.Errorf("%w: %v", ErrCatalogSchema, err)
	}
	return nil
}

func (spec skillSpec) build() (*Skill, error) {
	s := NewSkill(spec.Name)
	s.Description = spec.Description
	if spec.Targeting != "" {
		t, err := domain.ParseTargetingParameter(spec.Targeting)
		if err != nil {
			return nil, fmt.Errorf("skill %s: %w", spec.Name, err)
		}
		s.Targeting = t
	}
	if spec.TargetState != nil {
		s.TargetState = domain.ControllerState(*spec.TargetState)
	}
	if spec.Scope != nil {
		s.Scope = *spec.Scope
	}
	if spec.Cost != nil {
		s.Cost = *spec.Cost
	}
	if spec.Range != nil {
		s.Range = *spec.Range
	}
	s.Cooldown = spec.Cooldown
	s.Timings = spec.Timings
	s.Telegraph = spec.Telegraph

	for i, es := range spec.Effects {
		e, err := es.Build()
		if err != nil {
			return nil, fmt.Errorf("skill %s effect %d: %w", spec.Name, i, err)
		}
		s.Effects = append(s.Effects, e)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

func (c *Catalog) Skill(name string) (*Skill, error) {
	s, ok := c.skills[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownSkill, name)
	}
	return s, nil
}

func (c *Catalog) Armor(name string) (Armor, error) {
	a, ok := c.armor[name]
	if !ok {
		return Armor{}, fmt.Errorf("%w: %q", ErrUnknownArmor, name)
	}
	return a, nil
}

// Skills - все навыки, отсортированные по имени
func (c *Catalog) Skills() []*Skill {
	out := make([]*Skill, 0, len(c.skills))
	for _, s := range c.skills {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// SkillsOf - навыки юнита в порядке из каталога
func (c *Catalog) SkillsOf(u Unit) []*Skill {
	out := make([]*Skill, 0, len(u.Skills))
	for _, name := range u.Skills {
		if s, ok := c.skills[name]; ok {
			out = append(out, s)
		}
	}
	return out
}
