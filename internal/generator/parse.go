package generator

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/dmitrijs2005/brandforge/internal/common"
	"github.com/dmitrijs2005/brandforge/internal/design"
	"github.com/dmitrijs2005/brandforge/internal/tiers"
	"github.com/tidwall/gjson"
)

const maxComponents = 12

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", common.ErrInvalidAIResponse, fmt.Sprintf(format, args...))
}

// extractJSON pulls the JSON object out of a model reply: the body of the
// first code fence if there is one, otherwise the outermost braces.
func extractJSON(text string) (string, error) {
	s := strings.TrimSpace(text)
	if i := strings.Index(s, "```"); i >= 0 {
		body := s[i+3:]
		if nl := strings.IndexByte(body, '\n'); nl >= 0 {
			body = body[nl+1:]
		}
		if j := strings.Index(body, "```"); j >= 0 {
			body = body[:j]
		}
		s = strings.TrimSpace(body)
	}
	start, end := strings.IndexByte(s, '{'), strings.LastIndexByte(s, '}')
	if start < 0 || end <= start {
		return "", invalid("no JSON object in response")
	}
	s = s[start : end+1]
	if !gjson.Valid(s) {
		return "", invalid("malformed JSON")
	}
	return s, nil
}

// parseDesign maps the model's JSON onto an artifact and clamps it to the
// tier envelope. With partial set nothing is required, but at least one
// usable field must be present.
func parseDesign(raw string, t tiers.Config, partial bool) (*design.Artifact, error) {
	doc := gjson.Parse(raw)
	if !doc.IsObject() {
		return nil, invalid("top level is not an object")
	}
	a := &design.Artifact{}

	colors := doc.Get("colors")
	a.Colors.Primary = parsePalette(colors.Get("primary"), t.ShadesPerPalette)
	a.Colors.Secondary = parsePalette(colors.Get("secondary"), t.ShadesPerPalette)
	a.Colors.Accent = parsePalette(colors.Get("accent"), t.ShadesPerPalette)
	if t.PaletteCount >= 4 {
		a.Colors.Neutral = parsePalette(colors.Get("neutral"), t.ShadesPerPalette)
	}
	if t.PaletteCount >= 5 {
		a.Colors.Semantic = parsePalette(colors.Get("semantic"), 0)
	}
	a.Colors.Background = hexOrEmpty(colors.Get("background").String())
	a.Colors.Text = hexOrEmpty(colors.Get("text").String())

	a.Typography = parseTypography(doc.Get("typography"), t)
	if t.Components {
		a.Components = parseComponents(doc.Get("components"))
	}

	if partial {
		if isEmpty(a) {
			return nil, invalid("no usable fields")
		}
		return a, nil
	}

	for name, p := range map[string]design.Palette{
		"primary": a.Colors.Primary, "secondary": a.Colors.Secondary, "accent": a.Colors.Accent,
	} {
		if len(p) == 0 {
			return nil, invalid("missing or invalid %s palette", name)
		}
	}
	if a.Typography.HeadingFont == "" || a.Typography.BodyFont == "" {
		return nil, invalid("missing heading or body font")
	}
	if a.Colors.Background == "" {
		a.Colors.Background = design.DefaultBackground
	}
	if a.Colors.Text == "" {
		a.Colors.Text = design.DefaultText
	}
	return a, nil
}

func isEmpty(a *design.Artifact) bool {
	c, ty := a.Colors, a.Typography
	return len(c.Primary) == 0 && len(c.Secondary) == 0 && len(c.Accent) == 0 &&
		len(c.Neutral) == 0 && len(c.Semantic) == 0 && c.Background == "" && c.Text == "" &&
		ty.HeadingFont == "" && ty.BodyFont == "" && len(a.Components) == 0
}

func hexOrEmpty(s string) string {
	h, err := design.NormalizeHex(s)
	if err != nil {
		return ""
	}
	return h
}

// parsePalette accepts an object of shade -> hex or a single hex string.
// Invalid entries are dropped; shades <= 0 keeps every entry.
func parsePalette(r gjson.Result, shades int) design.Palette {
	p := design.Palette{}
	switch {
	case r.IsObject():
		r.ForEach(func(k, v gjson.Result) bool {
			if h := hexOrEmpty(v.String()); h != "" && v.Type == gjson.String {
				p[strings.TrimSpace(k.String())] = h
			}
			return true
		})
	case r.Type == gjson.String:
		if h := hexOrEmpty(r.String()); h != "" {
			p[common.MainShade] = h
		}
	}
	if len(p) == 0 {
		return nil
	}
	if shades > 0 && len(p) > shades {
		keep := sample(p.Keys(), shades, common.MainShade)
		trimmed := make(design.Palette, len(keep))
		for _, k := range keep {
			trimmed[k] = p[k]
		}
		p = trimmed
	}
	return p
}

// sample picks n evenly spaced keys from sorted, always including must when
// present.
func sample(sorted []string, n int, must string) []string {
	if n >= len(sorted) {
		return sorted
	}
	if n <= 0 {
		return nil
	}
	idx := make([]int, 0, n)
	for i := 0; i < n; i++ {
		pos := 0
		if n > 1 {
			pos = int(math.Round(float64(i) * float64(len(sorted)-1) / float64(n-1)))
		}
		idx = append(idx, pos)
	}

	mustIdx := -1
	for i, k := range sorted {
		if k == must {
			mustIdx = i
		}
	}
	if mustIdx >= 0 {
		closest, found := 0, false
		for i, v := range idx {
			if v == mustIdx {
				found = true
				break
			}
			if abs(v-mustIdx) < abs(idx[closest]-mustIdx) {
				closest = i
			}
		}
		if !found {
			idx[closest] = mustIdx
		}
	}

	out := make([]string, 0, n)
	for _, i := range idx {
		out = append(out, sorted[i])
	}
	return out
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func parseTypography(r gjson.Result, t tiers.Config) design.Typography {
	ty := design.Typography{
		HeadingFont: cleanFont(r.Get("headingFont").String()),
		BodyFont:    cleanFont(r.Get("bodyFont").String()),
		MonoFont:    cleanFont(r.Get("monoFont").String()),
	}

	if t.FontPairings > 1 {
		eachItem(r.Get("pairings"), func(_, v gjson.Result) bool {
			p := design.FontPairing{
				Heading: cleanFont(v.Get("heading").String()),
				Body:    cleanFont(v.Get("body").String()),
			}
			if p.Heading != "" && p.Body != "" {
				ty.Pairings = append(ty.Pairings, p)
			}
			return len(ty.Pairings) < t.FontPairings-1
		})
	}

	scale := map[string]float64{}
	eachField(r.Get("scale"), func(k, v gjson.Result) bool {
		if v.Type == gjson.Number && v.Float() > 0 {
			scale[k.String()] = math.Max(0.5, math.Min(6, v.Float()))
		}
		return true
	})
	if len(scale) > t.TypeScaleSteps {
		keys := make([]string, 0, len(scale))
		for k := range scale {
			keys = append(keys, k)
		}
		sort.Slice(keys, func(i, j int) bool {
			if scale[keys[i]] == scale[keys[j]] {
				return keys[i] < keys[j]
			}
			return scale[keys[i]] < scale[keys[j]]
		})
		keep := map[string]float64{}
		for _, k := range sample(keys, t.TypeScaleSteps, "base") {
			keep[k] = scale[k]
		}
		scale = keep
	}
	if len(scale) > 0 {
		ty.Scale = scale
	}

	lh := map[string]float64{}
	eachField(r.Get("lineHeights"), func(k, v gjson.Result) bool {
		if v.Type == gjson.Number && v.Float() > 0 {
			lh[k.String()] = math.Max(1, math.Min(2.5, v.Float()))
		}
		return true
	})
	if len(lh) > 0 {
		ty.LineHeights = lh
	}

	w := map[string]int{}
	eachField(r.Get("weights"), func(k, v gjson.Result) bool {
		if v.Type == gjson.Number {
			n := int(math.Round(v.Float()/100)) * 100
			w[k.String()] = max(100, min(900, n))
		}
		return true
	})
	if len(w) > 0 {
		ty.Weights = w
	}
	return ty
}

func cleanFont(s string) string {
	s = strings.Trim(strings.TrimSpace(s), `"'`)
	if len(s) > 80 {
		return ""
	}
	return s
}

func parseComponents(r gjson.Result) []design.Component {
	var out []design.Component
	eachItem(r, func(_, v gjson.Result) bool {
		name := strings.TrimSpace(v.Get("name").String())
		if name == "" {
			return true
		}
		c := design.Component{Name: name, Description: strings.TrimSpace(v.Get("description").String())}
		eachItem(v.Get("variants"), func(_, s gjson.Result) bool {
			if s.Type == gjson.String && s.String() != "" {
				c.Variants = append(c.Variants, s.String())
			}
			return true
		})
		out = append(out, c)
		return len(out) < maxComponents
	})
	return out
}

// eachField iterates an object's members; anything else is ignored.
func eachField(r gjson.Result, fn func(k, v gjson.Result) bool) {
	if r.IsObject() {
		r.ForEach(fn)
	}
}

// eachItem iterates an array's elements; anything else is ignored.
func eachItem(r gjson.Result, fn func(k, v gjson.Result) bool) {
	if r.IsArray() {
		r.ForEach(fn)
	}
}
