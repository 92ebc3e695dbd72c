package llm

import (
	"context"
	"encoding/json"
	"hash/fnv"
	"time"

	"github.com/dmitrijs2005/brandforge/internal/design"
)

// Mock returns a deterministic design system derived from the prompt text,
// for local runs and tests. Response, when set, is returned verbatim; Err is
// returned instead of a completion; Delay is honoured with ctx.
type Mock struct {
	Response string
	Err      error
	Delay    time.Duration
}

var (
	mockShades     = []string{"50", "100", "200", "300", "400", "500", "600", "700", "800", "900"}
	mockFonts      = []string{"Inter", "Poppins", "Playfair Display", "Source Sans 3", "Merriweather", "Space Grotesk", "Lora", "Nunito"}
	mockComponents = []string{"Button", "Card", "Input", "Modal", "Navigation"}
)

func (m *Mock) Complete(ctx context.Context, p Prompt) (Completion, error) {
	if m.Delay > 0 {
		t := time.NewTimer(m.Delay)
		defer t.Stop()
		select {
		case <-ctx.Done():
			return Completion{}, ctx.Err()
		case <-t.C:
		}
	}
	if m.Err != nil {
		return Completion{}, m.Err
	}
	text := m.Response
	if text == "" {
		text = mockDesign(p.User)
	}
	return Completion{Text: text, Model: "mock", TokenCount: int64(len(text) / 4)}, nil
}

func mockDesign(seed string) string {
	h := fnv.New32a()
	_, _ = h.Write([]byte(seed))
	n := h.Sum32()
	hue := float64(n % 360)

	doc := map[string]any{
		"colors": map[string]any{
			"primary":   mockPalette(hue),
			"secondary": mockPalette(hue + 150),
			"accent":    mockPalette(hue + 45),
			"neutral":   mockPaletteSat(hue, 0.08),
			"semantic": map[string]string{
				"success": "#15803D",
				"warning": "#B45309",
				"error":   "#B91C1C",
				"info":    "#1D4ED8",
			},
			"background": "#FFFFFF",
			"text":       "#111827",
		},
		"typography": map[string]any{
			"headingFont": mockFonts[n%uint32(len(mockFonts))],
			"bodyFont":    mockFonts[(n/7)%uint32(len(mockFonts))],
			"monoFont":    "JetBrains Mono",
			"scale": map[string]float64{
				"xs": 0.75, "sm": 0.875, "base": 1, "lg": 1.125, "xl": 1.25,
				"2xl": 1.5, "3xl": 1.875, "4xl": 2.25, "5xl": 3,
			},
			"lineHeights": map[string]float64{"tight": 1.25, "normal": 1.5, "relaxed": 1.75},
			"weights":     map[string]int{"regular": 400, "medium": 500, "bold": 700},
		},
	}
	comps := make([]map[string]any, 0, len(mockComponents))
	for _, c := range mockComponents {
		comps = append(comps, map[string]any{
			"name":        c,
			"description": c + " component",
			"variants":    []string{"primary", "secondary"},
		})
	}
	doc["components"] = comps

	b, _ := json.Marshal(doc)
	return "```json\n" + string(b) + "\n```"
}

func mockPalette(hue float64) map[string]string {
	return mockPaletteSat(hue, 0.7)
}

func mockPaletteSat(hue, sat float64) map[string]string {
	out := make(map[string]string, len(mockShades))
	for i, k := range mockShades {
		l := 0.95 - float64(i)*0.085
		out[k] = design.HSL{H: hue, S: sat, L: l}.RGB().Hex()
	}
	return out
}
