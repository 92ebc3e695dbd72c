package refine

import (
	"fmt"
	"math"
	"regexp"
	"strings"

	"github.com/dmitrijs2005/brandforge/internal/design"
)

// transform is a deterministic post-processing step selected by a specific
// change. apply returns human-readable notes of what it did; an empty result
// means nothing was mutable.
type transform struct {
	name    string
	pattern *regexp.Regexp
	apply   func(a *design.Artifact, l lockSet) []string
}

var transforms = []transform{
	{name: "increase contrast", pattern: regexp.MustCompile(`\b(increase|more|higher|boost)\b.*\bcontrast\b`),
		apply: func(a *design.Artifact, l lockSet) []string { return fixContrast(a, l, design.AAAContrast, false) }},
	{name: "make darker", pattern: regexp.MustCompile(`\bdark(er|en)\b`),
		apply: func(a *design.Artifact, l lockSet) []string { return shiftPalettes(a, l, "darkened", design.ShiftLightness, -0.08) }},
	{name: "make lighter", pattern: regexp.MustCompile(`\b(light(er|en)|brighter)\b`),
		apply: func(a *design.Artifact, l lockSet) []string { return shiftPalettes(a, l, "lightened", design.ShiftLightness, 0.08) }},
	{name: "more saturated", pattern: regexp.MustCompile(`\b(saturat(ed|e)|vibrant|vivid|punchier)\b`),
		apply: func(a *design.Artifact, l lockSet) []string { return shiftPalettes(a, l, "saturated", design.ShiftSaturation, 0.15) }},
	{name: "more muted", pattern: regexp.MustCompile(`\b(muted|desaturat\w*|subdued|softer)\b`),
		apply: func(a *design.Artifact, l lockSet) []string { return shiftPalettes(a, l, "muted", design.ShiftSaturation, -0.15) }},
	{name: "larger text", pattern: regexp.MustCompile(`\b(larger|bigger)\b`),
		apply: func(a *design.Artifact, l lockSet) []string { return scaleType(a, l, 1.125, "enlarged") }},
	{name: "smaller text", pattern: regexp.MustCompile(`\bsmaller\b`),
		apply: func(a *design.Artifact, l lockSet) []string { return scaleType(a, l, 1/1.125, "reduced") }},
	{name: "looser line height", pattern: regexp.MustCompile(`\b(looser|airier|spacious)\b`),
		apply: func(a *design.Artifact, l lockSet) []string { return shiftLeading(a, l, 0.1, "loosened") }},
	{name: "tighter line height", pattern: regexp.MustCompile(`\b(tighter|denser)\b`),
		apply: func(a *design.Artifact, l lockSet) []string { return shiftLeading(a, l, -0.1, "tightened") }},
	{name: "bolder headings", pattern: regexp.MustCompile(`\b(bolder|heavier)\b`),
		apply: bolderHeadings},
}

// applyChange runs the first transform matching change. ok is false when no
// transform recognises it.
func applyChange(a *design.Artifact, l lockSet, change string) (notes []string, ok bool) {
	text := strings.ToLower(change)
	for _, t := range transforms {
		if t.pattern.MatchString(text) {
			return t.apply(a, l), true
		}
	}
	return nil, false
}

type paletteRef struct {
	field Field
	get   func(c *design.Colors) design.Palette
}

var shiftable = []paletteRef{
	{FieldPrimary, func(c *design.Colors) design.Palette { return c.Primary }},
	{FieldSecondary, func(c *design.Colors) design.Palette { return c.Secondary }},
	{FieldAccent, func(c *design.Colors) design.Palette { return c.Accent }},
	{FieldNeutral, func(c *design.Colors) design.Palette { return c.Neutral }},
}

func shiftPalettes(a *design.Artifact, l lockSet, verb string, shift func(string, float64) (string, error), delta float64) []string {
	var notes []string
	for _, p := range shiftable {
		if !l.mutable(p.field) {
			continue
		}
		pal := p.get(&a.Colors)
		if len(pal) == 0 {
			continue
		}
		changed := false
		for k, v := range pal {
			nv, err := shift(v, delta)
			if err != nil || nv == v {
				continue
			}
			pal[k] = nv
			changed = true
		}
		if changed {
			notes = append(notes, fmt.Sprintf("%s %s", verb, p.field))
		}
	}
	return notes
}

func scaleType(a *design.Artifact, l lockSet, factor float64, verb string) []string {
	if !l.mutable(FieldTypography) || len(a.Typography.Scale) == 0 {
		return nil
	}
	for k, v := range a.Typography.Scale {
		a.Typography.Scale[k] = round3(v * factor)
	}
	return []string{verb + " type scale"}
}

func shiftLeading(a *design.Artifact, l lockSet, delta float64, verb string) []string {
	if !l.mutable(FieldTypography) || len(a.Typography.LineHeights) == 0 {
		return nil
	}
	for k, v := range a.Typography.LineHeights {
		a.Typography.LineHeights[k] = round3(math.Max(1, math.Min(2.5, v+delta)))
	}
	return []string{verb + " line heights"}
}

func bolderHeadings(a *design.Artifact, l lockSet) []string {
	if !l.mutable(FieldTypography) {
		return nil
	}
	if a.Typography.Weights == nil {
		a.Typography.Weights = map[string]int{}
	}
	key := "heading"
	if _, ok := a.Typography.Weights[key]; !ok {
		if _, ok := a.Typography.Weights["bold"]; ok {
			key = "bold"
		}
	}
	w, ok := a.Typography.Weights[key]
	if !ok {
		w = 600
	}
	if w >= 900 {
		return nil
	}
	a.Typography.Weights[key] = min(900, w+100)
	return []string{fmt.Sprintf("increased %s weight to %d", key, a.Typography.Weights[key])}
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}

// fixContrast raises every pair below target. The foreground moves when it
// is mutable; otherwise, with moveBackground set, the background does.
// Pairs with both sides locked are reported and left as-is.
func fixContrast(a *design.Artifact, l lockSet, target float64, moveBackground bool) []string {
	var notes []string
	// background changes can break pairs already visited, so make a few passes
	for pass := 0; pass < 3; pass++ {
		changed := false
		var locked []string
		for _, p := range design.ContrastPairs(a.Colors) {
			fg, bg := a.Colors.Get(p.Foreground), a.Colors.Get(p.Background)
			before, err := design.HexContrast(fg, bg)
			if err != nil || before >= target {
				continue
			}

			switch {
			case l.mutable(fieldOf(p.Foreground)):
				nfg, _, err := design.EnsureContrast(fg, bg, target)
				if err != nil || design.SameColor(nfg, fg) {
					continue
				}
				a.Colors.Set(p.Foreground, nfg)
				after, _ := design.HexContrast(nfg, bg)
				notes = append(notes, fmt.Sprintf("adjusted %s from %s to %s (contrast %.2f to %.2f)",
					roleName(p.Foreground), fg, nfg, before, after))
				changed = true
			case moveBackground && l.mutable(fieldOf(p.Background)):
				nbg, _, err := design.EnsureContrast(bg, fg, target)
				if err != nil || design.SameColor(nbg, bg) {
					continue
				}
				a.Colors.Set(p.Background, nbg)
				after, _ := design.HexContrast(fg, nbg)
				notes = append(notes, fmt.Sprintf("adjusted %s from %s to %s for %s (contrast %.2f to %.2f)",
					roleName(p.Background), bg, nbg, roleName(p.Foreground), before, after))
				changed = true
			default:
				locked = append(locked, p.Name)
			}
		}
		if !changed {
			for _, name := range locked {
				notes = append(notes, fmt.Sprintf("left %s as-is (locked)", name))
			}
			break
		}
	}
	return notes
}

func roleName(r design.Role) string {
	if r.IsSemantic() {
		return strings.TrimPrefix(string(r), "semantic:") + " color"
	}
	switch r {
	case design.RoleBackground, design.RoleText:
		return string(r) + " color"
	}
	return string(fieldOf(r))
}
