package generator

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/brandforge/internal/common"
	"github.com/dmitrijs2005/brandforge/internal/design"
	"github.com/dmitrijs2005/brandforge/internal/llm"
	"github.com/dmitrijs2005/brandforge/internal/refine"
	"github.com/dmitrijs2005/brandforge/internal/tiers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const brand = "A calm, trustworthy fintech brand for young savers"

type recordingClient struct {
	inner  llm.Client
	prompt llm.Prompt
	calls  int
}

func (r *recordingClient) Complete(ctx context.Context, p llm.Prompt) (llm.Completion, error) {
	r.prompt = p
	r.calls++
	return r.inner.Complete(ctx, p)
}

// stubbornClient ignores cancellation entirely.
type stubbornClient struct{ delay time.Duration }

func (s stubbornClient) Complete(context.Context, llm.Prompt) (llm.Completion, error) {
	time.Sleep(s.delay)
	return llm.Completion{Text: "{}"}, nil
}

func newGen(c llm.Client, opts ...Option) *Generator {
	return New(c, tiers.Builtin(), nil, opts...)
}

func TestGenerate_WithMock(t *testing.T) {
	rec := &recordingClient{inner: &llm.Mock{}}
	g := newGen(rec, WithIDs(func() string { return "art-1" }))

	a, err := g.Generate(context.Background(), brand, tiers.Basic)
	require.NoError(t, err)

	assert.Equal(t, "art-1", a.ID)
	assert.Equal(t, 1, a.Version)
	assert.Equal(t, "basic", a.Tier)
	assert.Equal(t, brand, a.BrandDescription)
	assert.Len(t, a.Colors.Primary, 5, "basic tier trims to five shades")
	assert.Contains(t, a.Colors.Primary, "500")
	assert.Nil(t, a.Colors.Neutral, "basic tier has three palettes")
	assert.Nil(t, a.Colors.Semantic)
	assert.Empty(t, a.Components, "basic tier has no components")
	assert.LessOrEqual(t, len(a.Typography.Scale), 6)
	assert.Contains(t, a.Typography.Scale, "base")
	assert.NotEmpty(t, a.Accessibility)
	assert.Equal(t, "mock", a.Metadata.Model)
	assert.Positive(t, a.Metadata.ResponseSize)
	assert.Equal(t, design.Fingerprint(a), a.Metadata.Fingerprint)

	assert.Contains(t, rec.prompt.User, brand)
	assert.Contains(t, rec.prompt.User, "Do not include components")
	assert.Equal(t, 1500, rec.prompt.MaxTokens)
}

func TestGenerate_ProfessionalTier(t *testing.T) {
	a, err := newGen(&llm.Mock{}).Generate(context.Background(), brand, tiers.Professional)
	require.NoError(t, err)
	assert.Len(t, a.Colors.Primary, 10)
	assert.NotEmpty(t, a.Colors.Neutral)
	assert.NotEmpty(t, a.Colors.Semantic)
	assert.Len(t, a.Components, 5)
}

func TestGenerate_Validation(t *testing.T) {
	rec := &recordingClient{inner: &llm.Mock{}}
	g := newGen(rec)

	_, err := g.Generate(context.Background(), "short", tiers.Basic)
	assert.ErrorIs(t, err, common.ErrValidation)

	_, err = g.Generate(context.Background(), strings.Repeat("x", 501), tiers.Basic)
	assert.ErrorIs(t, err, common.ErrValidation)

	_, err = g.Generate(context.Background(), brand, "gold")
	assert.ErrorIs(t, err, common.ErrValidation)

	assert.Zero(t, rec.calls, "validation happens before any model call")
}

func TestGenerate_InvalidResponses(t *testing.T) {
	tests := []struct {
		name string
		resp string
	}{
		{"prose", "Sure! Here is a lovely design system."},
		{"malformed", "{\"colors\": {"},
		{"missing palette", `{"colors":{"primary":{"500":"#112233"},"secondary":{"500":"#445566"}},"typography":{"headingFont":"Inter","bodyFont":"Lora"}}`},
		{"bad hex", `{"colors":{"primary":{"500":"blue"},"secondary":{"500":"#445566"},"accent":{"500":"#778899"}},"typography":{"headingFont":"Inter","bodyFont":"Lora"}}`},
		{"missing fonts", `{"colors":{"primary":"#112233","secondary":"#445566","accent":"#778899"},"typography":{}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newGen(&llm.Mock{Response: tt.resp}).Generate(context.Background(), brand, tiers.Basic)
			assert.ErrorIs(t, err, common.ErrInvalidAIResponse)
			assert.Equal(t, common.KindInvalidAIResponse, common.KindOf(err))
		})
	}
}

func TestGenerate_MinimalResponseNormalised(t *testing.T) {
	resp := "Here you go:\n```json\n" +
		`{"colors":{"primary":"#abc","secondary":{"500":"#445566","600":42},"accent":{"500":"#778899"}},` +
		`"typography":{"headingFont":" Inter ","bodyFont":"Lora","scale":{"base":1,"huge":99,"bad":"x"},"weights":{"heading":640}},` +
		`"components":[{"name":"Button"}]}` + "\n```\nEnjoy!"

	a, err := newGen(&llm.Mock{Response: resp}).Generate(context.Background(), brand, tiers.Basic)
	require.NoError(t, err)
	assert.Equal(t, design.Palette{"500": "#AABBCC"}, a.Colors.Primary)
	assert.Equal(t, design.Palette{"500": "#445566"}, a.Colors.Secondary)
	assert.Equal(t, "Inter", a.Typography.HeadingFont)
	assert.Equal(t, map[string]float64{"base": 1, "huge": 6}, a.Typography.Scale)
	assert.Equal(t, 600, a.Typography.Weights["heading"])
	assert.Equal(t, design.DefaultBackground, a.Colors.Background)
	assert.Equal(t, design.DefaultText, a.Colors.Text)
	assert.Empty(t, a.Components)
}

func TestGenerate_Timeout(t *testing.T) {
	g := newGen(&llm.Mock{Delay: time.Second}, WithTimeout(20*time.Millisecond))
	_, err := g.Generate(context.Background(), brand, tiers.Basic)
	assert.ErrorIs(t, err, common.ErrGenerationTimeout)
	assert.Equal(t, common.KindGenerationTimeout, common.KindOf(err))
}

func TestGenerate_TimeoutEvenWhenClientIgnoresContext(t *testing.T) {
	g := newGen(stubbornClient{delay: 500 * time.Millisecond}, WithTimeout(20*time.Millisecond))
	start := time.Now()
	_, err := g.Generate(context.Background(), brand, tiers.Basic)
	assert.ErrorIs(t, err, common.ErrGenerationTimeout)
	assert.Less(t, time.Since(start), 400*time.Millisecond)
}

func TestGenerate_CallerCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := newGen(&llm.Mock{Delay: time.Second}).Generate(ctx, brand, tiers.Basic)
	assert.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, common.ErrGenerationTimeout)
}

func TestGenerate_ProviderError(t *testing.T) {
	_, err := newGen(&llm.Mock{Err: errors.New("503 from upstream")}).Generate(context.Background(), brand, tiers.Basic)
	assert.ErrorIs(t, err, common.ErrInvalidAIResponse)
	assert.NotContains(t, common.PublicMessage(err), "503")
}

func TestAdjustTone(t *testing.T) {
	prev, err := newGen(&llm.Mock{}).Generate(context.Background(), brand, tiers.Professional)
	require.NoError(t, err)

	resp := `{"colors":{"secondary":{"500":"#334155"}},"typography":{"headingFont":"IBM Plex Sans","bodyFont":"IBM Plex Serif"}}`
	rec := &recordingClient{inner: &llm.Mock{Response: resp}}
	g := newGen(rec)

	partial, err := g.AdjustTone(context.Background(), refine.ToneRequest{
		Previous: prev,
		Tone:     refine.ToneProfessional,
		Locked:   []refine.Field{refine.FieldPrimary},
		Context:  "keep primary and make it more professional",
	})
	require.NoError(t, err)
	assert.Nil(t, partial.Colors.Primary)
	assert.Equal(t, "#334155", partial.Colors.Secondary.Main())
	assert.Equal(t, "IBM Plex Sans", partial.Typography.HeadingFont)
	assert.Equal(t, "mock", partial.Metadata.Model)

	assert.Contains(t, rec.prompt.User, "more professional")
	assert.Contains(t, rec.prompt.User, "locked and must be omitted from your answer: primary color")
	assert.Contains(t, rec.prompt.User, prev.Colors.Primary.Main())
}

func TestAdjustTone_Errors(t *testing.T) {
	_, err := newGen(&llm.Mock{}).AdjustTone(context.Background(), refine.ToneRequest{})
	assert.ErrorIs(t, err, common.ErrValidation)

	prev := &design.Artifact{Tier: "basic"}
	_, err = newGen(&llm.Mock{Response: `{"nothing":"useful"}`}).AdjustTone(context.Background(),
		refine.ToneRequest{Previous: prev, Tone: refine.TonePlayful})
	assert.ErrorIs(t, err, common.ErrInvalidAIResponse)

	_, err = newGen(&llm.Mock{Delay: time.Second}, WithTimeout(10*time.Millisecond)).AdjustTone(context.Background(),
		refine.ToneRequest{Previous: prev, Tone: refine.TonePlayful})
	assert.ErrorIs(t, err, common.ErrGenerationTimeout)
}

func TestRefineWithGenerator(t *testing.T) {
	prev, err := newGen(&llm.Mock{}).Generate(context.Background(), brand, tiers.Basic)
	require.NoError(t, err)

	e := refine.NewEngine(newGen(&llm.Mock{}), nil)
	res, err := e.Refine(context.Background(), prev, nil, "keep primary color and make it more professional")
	require.NoError(t, err)
	require.False(t, res.Degraded)
	assert.Equal(t, prev.Colors.Primary, res.Refined.Colors.Primary)
	assert.Equal(t, prev.ID, res.Refined.ParentID)
}

func TestSample(t *testing.T) {
	keys := []string{"50", "100", "200", "300", "400", "500", "600", "700", "800", "900"}
	got := sample(keys, 5, "500")
	assert.Len(t, got, 5)
	assert.Contains(t, got, "500")
	assert.Equal(t, "50", got[0])
	assert.Equal(t, "900", got[len(got)-1])

	assert.Equal(t, keys, sample(keys, 20, "500"))
	assert.Equal(t, []string{"50"}, sample(keys, 1, "x"))
}
