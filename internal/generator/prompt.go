package generator

import (
	"fmt"
	"strings"

	"github.com/dmitrijs2005/brandforge/internal/design"
	"github.com/dmitrijs2005/brandforge/internal/llm"
	"github.com/dmitrijs2005/brandforge/internal/refine"
	"github.com/dmitrijs2005/brandforge/internal/tiers"
)

const systemPrompt = `You are a senior brand and UI designer. You produce design systems as a single JSON object and nothing else: no prose, no markdown outside an optional json code fence. All colours are #RRGGBB hex strings. Font names must be real, widely available web fonts.`

var paletteOrder = []string{"primary", "secondary", "accent", "neutral", "semantic"}

var shadeSets = map[int][]string{
	5:  {"100", "300", "500", "700", "900"},
	10: {"50", "100", "200", "300", "400", "500", "600", "700", "800", "900"},
}

func shadeKeys(n int) []string {
	if keys, ok := shadeSets[n]; ok {
		return keys
	}
	return shadeSets[10][:min(max(n, 1), 10)]
}

func buildPrompt(description string, t tiers.Config) llm.Prompt {
	var b strings.Builder
	fmt.Fprintf(&b, "Create a design system for this brand:\n%q\n\n", description)

	palettes := paletteOrder[:min(t.PaletteCount, len(paletteOrder))]
	fmt.Fprintf(&b, "Colours: provide %d palettes under \"colors\": %s.\n", len(palettes), strings.Join(palettes, ", "))
	fmt.Fprintf(&b, "Each palette except semantic maps these %d shade keys to hex values: %s. Shade 500 is the main colour.\n",
		t.ShadesPerPalette, strings.Join(shadeKeys(t.ShadesPerPalette), ", "))
	if t.PaletteCount >= len(paletteOrder) {
		b.WriteString("The semantic palette maps success, warning, error and info to one hex value each.\n")
	}
	b.WriteString("Also give \"background\" and \"text\" hex values with body text readable at WCAG AA (4.5:1).\n\n")

	fmt.Fprintf(&b, "Typography under \"typography\": headingFont, bodyFont, monoFont")
	if t.FontPairings > 1 {
		fmt.Fprintf(&b, ", and \"pairings\": %d alternative {heading, body} combinations", t.FontPairings-1)
	}
	fmt.Fprintf(&b, "; \"scale\" with %d named steps in rem (xs, sm, base, lg, xl, 2xl, ...); \"lineHeights\" (tight, normal, relaxed); \"weights\" (regular, medium, heading).\n", t.TypeScaleSteps)

	if t.Components {
		b.WriteString("\nComponents under \"components\": an array of {name, description, variants} for Button, Card, Input, Modal and Navigation.\n")
	} else {
		b.WriteString("\nDo not include components.\n")
	}
	b.WriteString("\nRespond with the JSON object only.")

	return llm.Prompt{
		System:      systemPrompt,
		User:        b.String(),
		MaxTokens:   t.MaxTokens,
		Temperature: t.Temperature,
	}
}

var toneGuidance = map[refine.Tone]string{
	refine.TonePlayful:      "brighter, friendlier colours with more saturation; rounded, approachable typefaces",
	refine.ToneProfessional: "restrained, trustworthy colours with deeper values; clean, neutral typefaces",
	refine.ToneModern:       "crisp contemporary colours with confident accents; geometric sans-serif typefaces",
	refine.ToneClassic:      "timeless, muted colours; serif headings paired with a readable body face",
}

func buildTonePrompt(req refine.ToneRequest, t tiers.Config, current []byte) llm.Prompt {
	var b strings.Builder
	fmt.Fprintf(&b, "Restyle this design system to be %s: %s.\n\n", req.Tone, toneGuidance[req.Tone])
	b.WriteString("Current design system:\n")
	b.Write(current)
	b.WriteString("\n\n")

	if len(req.Locked) > 0 {
		locked := make([]string, len(req.Locked))
		for i, f := range req.Locked {
			locked[i] = string(f)
		}
		fmt.Fprintf(&b, "These parts are locked and must be omitted from your answer: %s.\n", strings.Join(locked, ", "))
	}
	if req.Context != "" {
		fmt.Fprintf(&b, "The user described the change as: %q\n", req.Context)
	}
	fmt.Fprintf(&b, "Return only the parts you change, using the same JSON shape. Palettes keep the same shade keys (%s).", strings.Join(shadeKeys(t.ShadesPerPalette), ", "))
	if !t.Components {
		b.WriteString(" Do not include components.")
	}

	return llm.Prompt{
		System:      systemPrompt,
		User:        b.String(),
		MaxTokens:   t.MaxTokens,
		Temperature: t.Temperature,
	}
}

// promptView is the subset of an artifact shown to the model.
func promptView(a *design.Artifact) any {
	return struct {
		Colors     design.Colors      `json:"colors"`
		Typography design.Typography  `json:"typography"`
		Components []design.Component `json:"components,omitempty"`
	}{a.Colors, a.Typography, a.Components}
}
