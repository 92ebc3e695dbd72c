// Package design holds the design-system artifact model and the colour math
// (hex parsing, HSL adjustments, WCAG contrast) shared by generation,
// refinement and comparison.
package design

import (
	"sort"
	"time"

	"github.com/dmitrijs2005/brandforge/internal/common"
)

// Palette maps a shade key ("50", "100", ..., "900") to a #RRGGBB value.
type Palette map[string]string

// Main returns the palette's main value: shade 500 when present, otherwise
// the middle key in sorted order.
func (p Palette) Main() string {
	if v, ok := p[common.MainShade]; ok {
		return v
	}
	if len(p) == 0 {
		return ""
	}
	return p[p.mainKey()]
}

// mainKey is the key Main reads from.
func (p Palette) mainKey() string {
	if _, ok := p[common.MainShade]; ok || len(p) == 0 {
		return common.MainShade
	}
	keys := p.Keys()
	return keys[len(keys)/2]
}

// Keys returns shade keys sorted numerically when possible.
func (p Palette) Keys() []string {
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return shadeLess(keys[i], keys[j]) })
	return keys
}

func (p Palette) Clone() Palette {
	if p == nil {
		return nil
	}
	out := make(Palette, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

func shadeLess(a, b string) bool {
	ai, aok := atoi(a)
	bi, bok := atoi(b)
	if aok && bok {
		return ai < bi
	}
	if aok != bok {
		return aok
	}
	return a < b
}

func atoi(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	n := 0
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, false
		}
		n = n*10 + int(r-'0')
	}
	return n, true
}

type Colors struct {
	Primary    Palette `json:"primary"`
	Secondary  Palette `json:"secondary"`
	Accent     Palette `json:"accent"`
	Neutral    Palette `json:"neutral,omitempty"`
	Semantic   Palette `json:"semantic,omitempty"`
	Background string  `json:"background"`
	Text       string  `json:"text"`
}

type Typography struct {
	HeadingFont string             `json:"headingFont"`
	BodyFont    string             `json:"bodyFont"`
	MonoFont    string             `json:"monoFont,omitempty"`
	Pairings    []FontPairing      `json:"pairings,omitempty"`
	Scale       map[string]float64 `json:"scale,omitempty"`
	LineHeights map[string]float64 `json:"lineHeights,omitempty"`
	Weights     map[string]int     `json:"weights,omitempty"`
}

// FontPairing is an alternative heading/body combination.
type FontPairing struct {
	Heading string `json:"heading"`
	Body    string `json:"body"`
}

type Component struct {
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Variants    []string `json:"variants,omitempty"`
}

// ContrastCheck is one evaluated text/background pair.
type ContrastCheck struct {
	Name       string  `json:"name"`
	Foreground string  `json:"foreground"`
	Background string  `json:"background"`
	Ratio      float64 `json:"ratio"`
	PassesAA   bool    `json:"passesAA"`
}

type Metadata struct {
	GeneratedAt      time.Time `json:"generatedAt"`
	GenerationTimeMs int64     `json:"generationTimeMs"`
	TokenCount       int64     `json:"tokenCount"`
	ResponseSize     int       `json:"responseSize"`
	Model            string    `json:"model,omitempty"`
	Fingerprint      string    `json:"fingerprint,omitempty"`
}

// MaxVersion is the highest version number an artifact can carry.
const MaxVersion = 10000

// Artifact is one immutable version of a generated design system.
type Artifact struct {
	ID               string          `json:"id"`
	UserID           string          `json:"userId,omitempty"`
	ParentID         string          `json:"parentId,omitempty"`
	Version          int             `json:"version"`
	Tier             string          `json:"tier"`
	BrandDescription string          `json:"brandDescription,omitempty"`
	Colors           Colors          `json:"colors"`
	Typography       Typography      `json:"typography"`
	Components       []Component     `json:"components,omitempty"`
	Accessibility    []ContrastCheck `json:"accessibility,omitempty"`
	Metadata         Metadata        `json:"metadata"`
}

// Clone returns a deep copy; the result shares no maps or slices with a.
func (a *Artifact) Clone() *Artifact {
	if a == nil {
		return nil
	}
	out := *a
	out.Colors = Colors{
		Primary:    a.Colors.Primary.Clone(),
		Secondary:  a.Colors.Secondary.Clone(),
		Accent:     a.Colors.Accent.Clone(),
		Neutral:    a.Colors.Neutral.Clone(),
		Semantic:   a.Colors.Semantic.Clone(),
		Background: a.Colors.Background,
		Text:       a.Colors.Text,
	}
	out.Typography = a.Typography
	out.Typography.Scale = cloneMap(a.Typography.Scale)
	out.Typography.LineHeights = cloneMap(a.Typography.LineHeights)
	out.Typography.Weights = cloneMap(a.Typography.Weights)
	if a.Typography.Pairings != nil {
		out.Typography.Pairings = append([]FontPairing(nil), a.Typography.Pairings...)
	}

	if a.Components != nil {
		out.Components = make([]Component, len(a.Components))
		for i, c := range a.Components {
			c.Variants = append([]string(nil), c.Variants...)
			out.Components[i] = c
		}
	}
	if a.Accessibility != nil {
		out.Accessibility = append([]ContrastCheck(nil), a.Accessibility...)
	}
	return &out
}

// ComponentNames lists component names in artifact order.
func (a *Artifact) ComponentNames() []string {
	names := make([]string, 0, len(a.Components))
	for _, c := range a.Components {
		names = append(names, c.Name)
	}
	return names
}

func cloneMap[K comparable, V any](m map[K]V) map[K]V {
	if m == nil {
		return nil
	}
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
