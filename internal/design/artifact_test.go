package design

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

func sampleArtifact() *Artifact {
	return &Artifact{
		ID:      "a-1",
		Version: 1,
		Tier:    "basic",
		Colors: Colors{
			Primary:    Palette{"100": "#DBEAFE", "500": "#3B82F6", "900": "#1E3A8A"},
			Secondary:  Palette{"500": "#10B981"},
			Accent:     Palette{"500": "#F59E0B"},
			Semantic:   Palette{"error": "#B91C1C"},
			Background: "#FFFFFF",
			Text:       "#111827",
		},
		Typography: Typography{
			HeadingFont: "Inter",
			BodyFont:    "Source Sans 3",
			Scale:       map[string]float64{"base": 1, "lg": 1.25},
			Weights:     map[string]int{"heading": 700},
		},
		Components: []Component{{Name: "Button", Variants: []string{"primary", "ghost"}}},
	}
}

func TestPalette_Main(t *testing.T) {
	assert.Equal(t, "#3B82F6", Palette{"100": "#111111", "500": "#3B82F6"}.Main())
	// no 500: middle of numerically sorted keys
	assert.Equal(t, "#222222", Palette{"100": "#111111", "300": "#222222", "900": "#333333"}.Main())
	assert.Equal(t, "", Palette{}.Main())
}

func TestPalette_KeysNumericOrder(t *testing.T) {
	p := Palette{"900": "", "50": "", "100": "", "500": "", "x": ""}
	assert.Equal(t, []string{"50", "100", "500", "900", "x"}, p.Keys())
}

func TestArtifact_CloneIsDeep(t *testing.T) {
	a := sampleArtifact()
	c := a.Clone()
	if diff := cmp.Diff(a, c); diff != "" {
		t.Fatalf("clone differs (-orig +clone):\n%s", diff)
	}

	c.Colors.Primary["500"] = "#000000"
	c.Typography.Scale["base"] = 2
	c.Typography.Weights["heading"] = 400
	c.Components[0].Variants[0] = "changed"
	c.Components[0].Name = "Card"

	assert.Equal(t, "#3B82F6", a.Colors.Primary["500"])
	assert.Equal(t, 1.0, a.Typography.Scale["base"])
	assert.Equal(t, 700, a.Typography.Weights["heading"])
	assert.Equal(t, "primary", a.Components[0].Variants[0])
	assert.Equal(t, "Button", a.Components[0].Name)
}

func TestArtifact_CloneNil(t *testing.T) {
	var a *Artifact
	assert.Nil(t, a.Clone())
}

func TestColors_GetSet(t *testing.T) {
	c := sampleArtifact().Colors
	assert.Equal(t, "#3B82F6", c.Get(RolePrimary))
	assert.Equal(t, "#B91C1C", c.Get(SemanticRole("error")))
	assert.Equal(t, "", c.Get(Role("unknown")))

	c.Set(RolePrimary, "#000000")
	c.Set(SemanticRole("warning"), "#B45309")
	c.Set(RoleText, "#222222")
	assert.Equal(t, "#000000", c.Primary["500"])
	assert.Equal(t, "#B45309", c.Semantic["warning"])
	assert.Equal(t, "#222222", c.Text)

	var empty Colors
	empty.Set(RoleAccent, "#ABCDEF")
	assert.Equal(t, "#ABCDEF", empty.Accent.Main())
}

func TestEvaluateContrast(t *testing.T) {
	c := sampleArtifact().Colors
	c.Accent = Palette{"500": "#FDE68A"} // pale yellow on white fails
	checks := EvaluateContrast(c)

	byName := map[string]ContrastCheck{}
	for _, ch := range checks {
		byName[ch.Name] = ch
	}
	assert.Len(t, checks, 5)
	assert.True(t, byName["text/background"].PassesAA)
	assert.False(t, byName["accent/background"].PassesAA)
	assert.Contains(t, byName, "semantic.error/background")
	assert.Equal(t, "#FFFFFF", byName["primary/background"].Background)
}

func TestEvaluateContrast_SkipsMalformed(t *testing.T) {
	c := Colors{Primary: Palette{"500": "oops"}, Background: "#FFFFFF", Text: "#000000"}
	checks := EvaluateContrast(c)
	assert.Len(t, checks, 1)
	assert.Equal(t, "text/background", checks[0].Name)
	assert.Equal(t, 21.0, checks[0].Ratio)
}

func TestFingerprint(t *testing.T) {
	a := sampleArtifact()
	b := a.Clone()
	b.ID = "other"
	b.Version = 7

	fa := Fingerprint(a)
	assert.Len(t, fa, 64)
	assert.Equal(t, fa, Fingerprint(b), "identity fields must not affect the fingerprint")

	b.Colors.Primary["500"] = "#000000"
	assert.NotEqual(t, fa, Fingerprint(b))
}
