package skills

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stratus-server/internal/domain"
)

func TestDefaultCatalog(t *testing.T) {
	c, err := DefaultCatalog()
	require.NoError(t, err)

	cleave, err := c.Skill("Cleave")
	require.NoError(t, err)
	require.NotNil(t, cleave.Telegraph)
	assert.Equal(t, ShapeCone, cleave.Telegraph.Shape)
	assert.Len(t, cleave.Effects, 2)
	assert.Equal(t, EffectDamage, cleave.Effects[0].Kind())
	assert.Equal(t, EffectPush, cleave.Effects[1].Kind())

	rez, err := c.Skill("Resurrect")
	require.NoError(t, err)
	assert.Equal(t, domain.TargetAlly, rez.Targeting)
	assert.Equal(t, domain.StateInactive, rez.TargetState)

	plate, err := c.Armor("Plate")
	require.NoError(t, err)
	assert.Equal(t, 6.0, plate.Defense)

	require.NotEmpty(t, c.Units)
	knight := c.Units[0]
	assert.Equal(t, "Knight", knight.Name)
	assert.Len(t, c.SkillsOf(knight), len(knight.Skills))
	assert.Equal(t, 120.0, knight.Stats().Health)

	names := make([]string, 0)
	for _, s := range c.Skills() {
		names = append(names, s.Name)
	}
	assert.IsIncreasing(t, names)
}

func TestParseCatalog_Defaults(t *testing.T) {
	c, err := ParseCatalog([]byte(`
skills:
  - name: Poke
    effects:
      - {type: damage, value: 3}
`))
	require.NoError(t, err)

	poke, err := c.Skill("Poke")
	require.NoError(t, err)
	assert.Equal(t, DefaultCost, poke.Cost)
	assert.Equal(t, DefaultRange, poke.Range)
	assert.Equal(t, 0.0, poke.Cooldown)
	assert.Equal(t, domain.TargetEnemy, poke.Targeting)
	assert.Equal(t, ScopeSingle, poke.Scope.Type)
	assert.Nil(t, poke.Telegraph)
}

func TestParseCatalog_Errors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want error
	}{
		{"unknown effect", `
skills:
  - name: Boom
    effects: [{type: explode}]
`, ErrCatalogSchema},
		{"no effects", `
skills:
  - name: Nothing
    effects: []
`, ErrCatalogSchema},
		{"unknown field", `
skills:
  - name: Poke
    power: 9000
    effects: [{type: damage, value: 1}]
`, ErrCatalogSchema},
		{"radius without radius", `
skills:
  - name: Wave
    scope: {type: radius}
    effects: [{type: damage, value: 1}]
`, ErrInvalidSkill},
		{"duplicate", `
skills:
  - {name: Poke, effects: [{type: damage, value: 1}]}
  - {name: Poke, effects: [{type: heal, value: 1}]}
`, ErrInvalidSkill},
		{"unit with unknown skill", `
units:
  - {name: Ghost, faction: HOSTILE, skills: [Haunt]}
`, ErrUnknownSkill},
		{"unit with unknown armor", `
units:
  - {name: Ghost, faction: HOSTILE, armor: Mist}
`, ErrUnknownArmor},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseCatalog([]byte(tt.yaml))
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestLoadCatalog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, defaultCatalog, 0o644))

	c, err := LoadCatalog(path)
	require.NoError(t, err)
	_, err = c.Skill("Slash")
	assert.NoError(t, err)

	_, err = LoadCatalog(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestEffectSpec_Build(t *testing.T) {
	off := false
	e, err := EffectSpec{Type: "invulnerable", Toggle: &off}.Build()
	require.NoError(t, err)
	assert.Equal(t, InvulnerableEffect{Toggle: false}, e)

	e, err = EffectSpec{Type: "DAMAGE", Value: 4, Piercing: true}.Build()
	require.NoError(t, err)
	assert.Equal(t, DamageEffect{Value: 4, Piercing: true}, e)

	_, err = EffectSpec{Type: "explode"}.Build()
	assert.ErrorIs(t, err, ErrUnknownEffect)
}
