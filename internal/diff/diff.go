// Package diff compares two versions of a design system.
package diff

import (
	"sort"
	"strings"

	"github.com/dmitrijs2005/brandforge/internal/design"
)

const NoChanges = "No significant changes"

type Comparison struct {
	ColorsChanged         bool     `json:"colorsChanged"`
	TypographyChanged     bool     `json:"typographyChanged"`
	AccessibilityImproved bool     `json:"accessibilityImproved"`
	AddedComponents       []string `json:"addedComponents"`
	RemovedComponents     []string `json:"removedComponents"`
	Summary               string   `json:"summary"`
}

// Compare reports what changed from a to b. It is pure; contrast checks are
// recomputed from the colours rather than read from the artifacts.
func Compare(a, b *design.Artifact) Comparison {
	c := Comparison{
		ColorsChanged:     colorsChanged(a.Colors, b.Colors),
		TypographyChanged: typographyChanged(a.Typography, b.Typography),
		AddedComponents:   setDiff(b.ComponentNames(), a.ComponentNames()),
		RemovedComponents: setDiff(a.ComponentNames(), b.ComponentNames()),
	}
	c.AccessibilityImproved = improved(design.EvaluateContrast(a.Colors), design.EvaluateContrast(b.Colors))
	c.Summary = summarize(c)
	return c
}

// Changed reports whether any field differs.
func (c Comparison) Changed() bool {
	return c.ColorsChanged || c.TypographyChanged ||
		len(c.AddedComponents) > 0 || len(c.RemovedComponents) > 0
}

func colorsChanged(a, b design.Colors) bool {
	return !design.SameColor(a.Primary.Main(), b.Primary.Main()) ||
		!design.SameColor(a.Secondary.Main(), b.Secondary.Main()) ||
		!design.SameColor(a.Accent.Main(), b.Accent.Main())
}

func typographyChanged(a, b design.Typography) bool {
	return !sameFont(a.HeadingFont, b.HeadingFont) || !sameFont(a.BodyFont, b.BodyFont)
}

func sameFont(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

// setDiff returns the sorted, de-duplicated names in xs that are not in ys.
func setDiff(xs, ys []string) []string {
	have := make(map[string]struct{}, len(ys))
	for _, y := range ys {
		have[strings.ToLower(y)] = struct{}{}
	}
	seen := map[string]struct{}{}
	out := []string{}
	for _, x := range xs {
		k := strings.ToLower(x)
		if _, ok := have[k]; ok {
			continue
		}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, x)
	}
	sort.Strings(out)
	return out
}

func improved(before, after []design.ContrastCheck) bool {
	passed := make(map[string]bool, len(before))
	for _, c := range before {
		passed[c.Name] = c.PassesAA
	}
	for _, c := range after {
		if was, ok := passed[c.Name]; ok && !was && c.PassesAA {
			return true
		}
	}
	return false
}

func summarize(c Comparison) string {
	var parts []string
	if c.ColorsChanged {
		parts = append(parts, "colors updated")
	}
	if c.TypographyChanged {
		parts = append(parts, "typography updated")
	}
	if len(c.AddedComponents) > 0 {
		parts = append(parts, "added components: "+strings.Join(c.AddedComponents, ", "))
	}
	if len(c.RemovedComponents) > 0 {
		parts = append(parts, "removed components: "+strings.Join(c.RemovedComponents, ", "))
	}
	if c.AccessibilityImproved {
		parts = append(parts, "accessibility improved")
	}
	if len(parts) == 0 {
		return NoChanges
	}
	s := strings.Join(parts, "; ")
	return strings.ToUpper(s[:1]) + s[1:]
}
