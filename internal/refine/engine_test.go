package refine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dmitrijs2005/brandforge/internal/common"
	"github.com/dmitrijs2005/brandforge/internal/design"
	"github.com/dmitrijs2005/brandforge/internal/diff"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTone struct {
	out *design.Artifact
	err error
	got ToneRequest
}

func (f *fakeTone) AdjustTone(_ context.Context, req ToneRequest) (*design.Artifact, error) {
	f.got = req
	return f.out, f.err
}

func previous() *design.Artifact {
	return &design.Artifact{
		ID:      "v1",
		Version: 1,
		Tier:    "basic",
		Colors: design.Colors{
			Primary:    design.Palette{"100": "#DBEAFE", "500": "#3B82F6", "900": "#1E3A8A"},
			Secondary:  design.Palette{"500": "#10B981"},
			Accent:     design.Palette{"500": "#FDE68A"},
			Semantic:   design.Palette{"error": "#B91C1C"},
			Background: "#FFFFFF",
			Text:       "#111827",
		},
		Typography: design.Typography{
			HeadingFont: "Poppins",
			BodyFont:    "Nunito",
			Scale:       map[string]float64{"base": 1, "xl": 1.25},
			LineHeights: map[string]float64{"normal": 1.5},
			Weights:     map[string]int{"heading": 600},
		},
		Components: []design.Component{{Name: "Button"}},
	}
}

func toneSuggestion() *design.Artifact {
	return &design.Artifact{
		Colors: design.Colors{
			Primary:   design.Palette{"500": "#1F2937"},
			Secondary: design.Palette{"500": "#334155"},
			Accent:    design.Palette{"500": "#0F766E"},
		},
		Typography: design.Typography{HeadingFont: "IBM Plex Sans", BodyFont: "IBM Plex Serif"},
		Metadata:   design.Metadata{TokenCount: 321, Model: "mock"},
	}
}

func newEngine(tone ToneAdjuster) *Engine {
	n := 0
	return NewEngine(tone, nil,
		WithClock(func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }),
		WithIDs(func() string { n++; return "new-" + string(rune('0'+n)) }))
}

func TestRefine_KeepPrimaryMoreProfessional(t *testing.T) {
	prev := previous()
	orig := prev.Clone()
	tone := &fakeTone{out: toneSuggestion()}

	res, err := newEngine(tone).Refine(context.Background(), prev, nil,
		"keep primary color and make it more professional")
	require.NoError(t, err)
	require.False(t, res.Degraded)

	assert.Equal(t, prev.Colors.Primary, res.Refined.Colors.Primary)
	assert.Equal(t, "#334155", res.Refined.Colors.Secondary.Main())
	assert.Equal(t, "IBM Plex Sans", res.Refined.Typography.HeadingFont)
	assert.Equal(t, "v1", res.Refined.ParentID)
	assert.Equal(t, 2, res.Refined.Version)
	assert.Equal(t, "new-1", res.Refined.ID)
	assert.Equal(t, int64(321), res.Refined.Metadata.TokenCount)
	assert.NotEmpty(t, res.Refined.Metadata.Fingerprint)

	assert.Equal(t, ToneProfessional, tone.got.Tone)
	assert.Equal(t, []Field{FieldPrimary}, tone.got.Locked)
	assert.Contains(t, res.Explanation, "Kept unchanged: primary color")
	assert.Contains(t, res.Explanation, "Tone: more professional")

	if d := cmp.Diff(orig, prev); d != "" {
		t.Fatalf("previous artifact was mutated:\n%s", d)
	}
}

func TestRefine_KeepPrimaryHoldsUnderEveryStep(t *testing.T) {
	prev := previous()
	prev.Colors.Primary = design.Palette{"500": "#93C5FD"} // fails AA on white
	c := &Constraints{
		KeepPrimaryColor:     true,
		ImproveAccessibility: true,
		AdjustTone:           ToneModern,
		SpecificChanges:      []string{"make darker", "more saturated", "increase contrast"},
	}
	res, err := newEngine(&fakeTone{out: toneSuggestion()}).Refine(context.Background(), prev, c, "")
	require.NoError(t, err)
	assert.Equal(t, prev.Colors.Primary, res.Refined.Colors.Primary)
}

func TestRefine_ImproveAccessibility(t *testing.T) {
	prev := previous()
	res, err := newEngine(nil).Refine(context.Background(), prev, &Constraints{ImproveAccessibility: true}, "")
	require.NoError(t, err)

	for _, ch := range res.Refined.Accessibility {
		assert.True(t, ch.PassesAA, ch.Name)
	}
	assert.True(t, diff.Compare(prev, res.Refined).AccessibilityImproved)
	assert.Equal(t, "#FFFFFF", res.Refined.Colors.Background, "foregrounds move before the background")
	assert.NotEmpty(t, res.Applied)
}

func TestRefine_AccessibilityMovesBackgroundWhenForegroundLocked(t *testing.T) {
	prev := previous()
	prev.Colors.Secondary = design.Palette{"500": "#111827"}
	prev.Colors.Accent = design.Palette{"500": "#1F2937"}
	prev.Colors.Semantic = nil
	prev.Colors.Primary = design.Palette{"500": "#3B82F6"}

	res, err := newEngine(nil).Refine(context.Background(), prev,
		&Constraints{KeepPrimaryColor: true, ImproveAccessibility: true}, "")
	require.NoError(t, err)

	assert.Equal(t, "#3B82F6", res.Refined.Colors.Primary.Main())
	assert.NotEqual(t, "#FFFFFF", res.Refined.Colors.Background)
	r, err := design.HexContrast("#3B82F6", res.Refined.Colors.Background)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, r, design.AAContrast)
}

func TestRefine_ToneFailureDegrades(t *testing.T) {
	prev := previous()
	orig := prev.Clone()
	tone := &fakeTone{err: common.ErrGenerationTimeout}

	res, err := newEngine(tone).Refine(context.Background(), prev,
		&Constraints{AdjustTone: TonePlayful, SpecificChanges: []string{"make darker"}}, "")
	require.NoError(t, err)
	assert.True(t, res.Degraded)
	assert.Equal(t, prev.ID, res.Refined.ID)
	if d := cmp.Diff(orig, res.Refined); d != "" {
		t.Fatalf("degraded result differs from previous:\n%s", d)
	}
	assert.Contains(t, res.Explanation, "timed out")
	assert.Empty(t, res.Applied)
}

func TestRefine_NoToneAdjusterDegrades(t *testing.T) {
	res, err := newEngine(nil).Refine(context.Background(), previous(), &Constraints{AdjustTone: ToneClassic}, "")
	require.NoError(t, err)
	assert.True(t, res.Degraded)
}

func TestRefine_ConstraintsWinOverInstruction(t *testing.T) {
	tone := &fakeTone{out: toneSuggestion()}
	res, err := newEngine(tone).Refine(context.Background(), previous(),
		&Constraints{AdjustTone: ToneClassic}, "keep primary and make it playful")
	require.NoError(t, err)
	assert.Equal(t, ToneClassic, tone.got.Tone)
	assert.Equal(t, "keep primary and make it playful", tone.got.Context)
	assert.False(t, res.Constraints.KeepPrimaryColor)
}

func TestRefine_SpecificChanges(t *testing.T) {
	prev := previous()
	res, err := newEngine(nil).Refine(context.Background(), prev, &Constraints{
		KeepTypography:  false,
		SpecificChanges: []string{"make darker", "larger text", "bolder headings", "tighter line height", "add sparkles"},
	}, "")
	require.NoError(t, err)

	before, _ := design.ParseHex(prev.Colors.Primary.Main())
	after, _ := design.ParseHex(res.Refined.Colors.Primary.Main())
	assert.Less(t, after.HSL().L, before.HSL().L)
	assert.InDelta(t, 1.125, res.Refined.Typography.Scale["base"], 1e-9)
	assert.Equal(t, 700, res.Refined.Typography.Weights["heading"])
	assert.InDelta(t, 1.4, res.Refined.Typography.LineHeights["normal"], 1e-9)
	assert.Len(t, res.Skipped, 1)
	assert.Contains(t, res.Explanation, "add sparkles")
}

func TestRefine_LockedChangeIsSkipped(t *testing.T) {
	prev := previous()
	res, err := newEngine(nil).Refine(context.Background(), prev, &Constraints{
		KeepTypography:  true,
		SpecificChanges: []string{"larger text"},
	}, "")
	require.NoError(t, err)
	assert.Equal(t, prev.Typography, res.Refined.Typography)
	assert.Len(t, res.Skipped, 1)
}

func TestRefine_ConflictsReported(t *testing.T) {
	res, err := newEngine(&fakeTone{out: toneSuggestion()}).Refine(context.Background(), previous(), nil,
		"keep typography but use modern fonts")
	require.NoError(t, err)
	require.Len(t, res.Conflicts, 1)
	assert.Contains(t, res.Explanation, "Conflicting instructions")
	assert.Equal(t, "Poppins", res.Refined.Typography.HeadingFont)
}

func TestRefine_Errors(t *testing.T) {
	e := newEngine(nil)
	_, err := e.Refine(context.Background(), nil, nil, "x")
	assert.True(t, errors.Is(err, common.ErrValidation))

	_, err = e.Refine(context.Background(), previous(), &Constraints{AdjustTone: "more spooky"}, "")
	assert.True(t, errors.Is(err, common.ErrValidation))
}

func TestRefine_NoConstraintsStillNewVersion(t *testing.T) {
	prev := previous()
	res, err := newEngine(nil).Refine(context.Background(), prev, nil, "")
	require.NoError(t, err)
	assert.Equal(t, 2, res.Refined.Version)
	assert.Contains(t, res.Explanation, "No changes were needed")
	assert.Equal(t, diff.NoChanges, diff.Compare(prev, res.Refined).Summary)
}

func TestRefine_VersionIsCapped(t *testing.T) {
	prev := previous()
	prev.Version = design.MaxVersion
	res, err := newEngine(nil).Refine(context.Background(), prev, nil, "")
	require.NoError(t, err)
	assert.Equal(t, design.MaxVersion, res.Refined.Version)
}

func TestRefine_KeepColorsLocksNeutral(t *testing.T) {
	prev := previous()
	prev.Colors.Neutral = design.Palette{"500": "#6B7280"}
	res, err := newEngine(nil).Refine(context.Background(), prev, nil, "keep all colours and make it darker")
	require.NoError(t, err)
	assert.Equal(t, prev.Colors.Neutral, res.Refined.Colors.Neutral)
	assert.Equal(t, prev.Colors.Primary, res.Refined.Colors.Primary)
	assert.Len(t, res.Skipped, 1)
}
