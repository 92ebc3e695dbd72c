package tiers

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuiltin(t *testing.T) {
	c := Builtin()

	assert.True(t, c.IsValid("basic"))
	assert.True(t, c.IsValid("professional"))
	assert.True(t, c.IsValid("enterprise"))
	assert.False(t, c.IsValid("platinum"))
	assert.False(t, c.IsValid(""))

	basic, ok := c.Get(Basic)
	require.True(t, ok)
	assert.Equal(t, int64(1), basic.CreditCost)
	assert.False(t, basic.Replenishes())
	assert.False(t, basic.Components)

	pro, ok := c.Get(Professional)
	require.True(t, ok)
	assert.True(t, pro.Replenishes())
	assert.Greater(t, pro.PaletteCount, basic.PaletteCount)
	assert.Greater(t, pro.FontPairings, basic.FontPairings)

	ent, _ := c.Get(Enterprise)
	assert.True(t, ent.Unlimited)
	assert.False(t, ent.Replenishes())

	assert.Equal(t, Basic, c.Default().Name)

	names := []Name{}
	for _, tier := range c.List() {
		names = append(names, tier.Name)
	}
	assert.Equal(t, []Name{Basic, Professional, Enterprise}, names)
}

func TestGet_ReturnsCopy(t *testing.T) {
	c := Builtin()
	a, _ := c.Get(Basic)
	a.Features[0] = "mutated"
	b, _ := c.Get(Basic)
	assert.NotEqual(t, "mutated", b.Features[0])
}

func TestResolve(t *testing.T) {
	c := Builtin()
	def, ok := c.Resolve("")
	assert.True(t, ok)
	assert.Equal(t, Basic, def.Name)
	_, ok = c.Resolve("nope")
	assert.False(t, ok)
}

const sampleYAML = `
default: starter
tiers:
  - name: team
    paletteCount: 4
    shadesPerPalette: 9
    fontPairings: 2
    typeScaleSteps: 8
    creditCost: 2
    refinementCost: 1
    monthlyCredits: 20
    initialCredits: 20
    latency: {min: 2s, max: 20s}
    features: [a, b]
  - name: starter
    paletteCount: 3
    shadesPerPalette: 5
    fontPairings: 1
    typeScaleSteps: 6
    creditCost: 1
    refinementCost: 1
    initialCredits: 2
`

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tiers.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleYAML), 0o600))

	c, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, Name("starter"), c.Default().Name)
	assert.Len(t, c.List(), 2)

	team, ok := c.Get("team")
	require.True(t, ok)
	assert.Equal(t, 2*time.Second, team.Latency.Min)
	assert.Equal(t, 20*time.Second, team.Latency.Max)
	assert.Equal(t, []string{"a", "b"}, team.Features)
	assert.True(t, team.Replenishes())
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"empty", "tiers: []"},
		{"bad yaml", "tiers: [:"},
		{"unknown default", "default: x\ntiers:\n  - {name: a, paletteCount: 3, shadesPerPalette: 1, fontPairings: 1, typeScaleSteps: 1, creditCost: 1, refinementCost: 1}"},
		{"duplicate", "tiers:\n  - {name: a, paletteCount: 3, shadesPerPalette: 1, fontPairings: 1, typeScaleSteps: 1, creditCost: 1, refinementCost: 1}\n  - {name: a, paletteCount: 3, shadesPerPalette: 1, fontPairings: 1, typeScaleSteps: 1, creditCost: 1, refinementCost: 1}"},
		{"zero cost", "tiers:\n  - {name: a, paletteCount: 3, shadesPerPalette: 1, fontPairings: 1, typeScaleSteps: 1, creditCost: 0, refinementCost: 1}"},
		{"too few palettes", "tiers:\n  - {name: a, paletteCount: 2, shadesPerPalette: 1, fontPairings: 1, typeScaleSteps: 1, creditCost: 1, refinementCost: 1}"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			assert.Error(t, err)
		})
	}
}

func TestLoadFile_Missing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestCatalog_Allows(t *testing.T) {
	c := Builtin()
	assert.True(t, c.Allows(Basic, Basic))
	assert.False(t, c.Allows(Basic, Professional))
	assert.False(t, c.Allows(Basic, Enterprise))
	assert.True(t, c.Allows(Professional, Basic))
	assert.False(t, c.Allows(Professional, Enterprise))
	assert.True(t, c.Allows(Enterprise, Professional))
	assert.False(t, c.Allows("nope", Basic))
	assert.False(t, c.Allows(Basic, "nope"))
}
