package guard

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/dmitrijs2005/brandforge/internal/common"
	"github.com/dmitrijs2005/brandforge/internal/design"
)

var (
	keyPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,24}$`)
	idPattern  = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)
)

// ValidateArtifact checks a caller-supplied artifact and returns a sanitized
// copy. Every free-text field goes through Validate, every colour is
// normalised to #RRGGBB and every map key must be a short identifier, so
// nothing in the result can smuggle instructions into a prompt.
func (g *Guard) ValidateArtifact(a *design.Artifact) (*design.Artifact, error) {
	if a == nil {
		return nil, common.NewValidationError("previousArtifact", "is required")
	}
	out := a.Clone()
	v := artifactCheck{g: g}

	switch {
	case !idPattern.MatchString(out.ID):
		return nil, common.NewValidationError("previousArtifact.id", "must be a short identifier")
	case out.Version < 0 || out.Version > design.MaxVersion:
		return nil, common.NewValidationError("previousArtifact.version",
			fmt.Sprintf("must be between 0 and %d", design.MaxVersion))
	case out.Tier != "" && (g.tiers == nil || !g.tiers.IsValid(out.Tier)):
		return nil, common.NewValidationError("previousArtifact.tier", fmt.Sprintf("unknown tier %q", out.Tier))
	case out.ParentID != "" && !idPattern.MatchString(out.ParentID):
		return nil, common.NewValidationError("previousArtifact.parentId", "must be a short identifier")
	}
	// ownership comes from the token, never from the body
	out.UserID = ""

	if out.BrandDescription != "" {
		out.BrandDescription = v.text("brandDescription", out.BrandDescription, KindBrandDescription)
	}

	c := &out.Colors
	c.Primary = v.palette("colors.primary", c.Primary)
	c.Secondary = v.palette("colors.secondary", c.Secondary)
	c.Accent = v.palette("colors.accent", c.Accent)
	c.Neutral = v.palette("colors.neutral", c.Neutral)
	c.Semantic = v.palette("colors.semantic", c.Semantic)
	c.Background = v.colour("colors.background", c.Background)
	c.Text = v.colour("colors.text", c.Text)

	t := &out.Typography
	t.HeadingFont = v.optional("typography.headingFont", t.HeadingFont, KindFontName)
	t.BodyFont = v.optional("typography.bodyFont", t.BodyFont, KindFontName)
	t.MonoFont = v.optional("typography.monoFont", t.MonoFont, KindFontName)
	for i := range t.Pairings {
		path := fmt.Sprintf("typography.pairings[%d]", i)
		t.Pairings[i].Heading = v.text(path+".heading", t.Pairings[i].Heading, KindFontName)
		t.Pairings[i].Body = v.text(path+".body", t.Pairings[i].Body, KindFontName)
	}
	v.keys("typography.scale", keysOf(t.Scale))
	v.keys("typography.lineHeights", keysOf(t.LineHeights))
	v.keys("typography.weights", keysOf(t.Weights))

	for i := range out.Components {
		path := fmt.Sprintf("components[%d]", i)
		comp := &out.Components[i]
		comp.Name = v.text(path+".name", comp.Name, KindComponentName)
		comp.Description = v.optional(path+".description", comp.Description, KindComponentText)
		for j := range comp.Variants {
			comp.Variants[j] = v.text(fmt.Sprintf("%s.variants[%d]", path, j), comp.Variants[j], KindComponentName)
		}
	}

	// contrast results are recomputed from the colours
	out.Accessibility = design.EvaluateContrast(out.Colors)
	out.Metadata.Model = Sanitize(out.Metadata.Model, 80)

	if v.err != nil {
		return nil, v.err
	}
	return out, nil
}

// artifactCheck keeps the first failure so ValidateArtifact reads top-down.
type artifactCheck struct {
	g   *Guard
	err error
}

func (v *artifactCheck) fail(path, reason string) {
	if v.err == nil {
		v.err = common.NewValidationError("previousArtifact."+path, reason)
	}
}

func (v *artifactCheck) text(path, s string, kind Kind) string {
	r := v.g.Validate(s, kind)
	if !r.Valid {
		var ve *common.ValidationError
		reason := "is invalid"
		if errors.As(r.Err, &ve) {
			reason = ve.Reason
		}
		v.fail(path, reason)
		return ""
	}
	return r.Sanitized
}

func (v *artifactCheck) optional(path, s string, kind Kind) string {
	if s == "" {
		return ""
	}
	return v.text(path, s, kind)
}

func (v *artifactCheck) colour(path, s string) string {
	if s == "" {
		return ""
	}
	hex, err := design.NormalizeHex(s)
	if err != nil {
		v.fail(path, "must be a #RRGGBB colour")
		return ""
	}
	return hex
}

func (v *artifactCheck) palette(path string, p design.Palette) design.Palette {
	for k, hex := range p {
		if !keyPattern.MatchString(k) {
			v.fail(path, "shade keys must be short identifiers")
			return p
		}
		p[k] = v.colour(path+"."+k, hex)
	}
	return p
}

func (v *artifactCheck) keys(path string, keys []string) {
	for _, k := range keys {
		if !keyPattern.MatchString(k) {
			v.fail(path, "keys must be short identifiers")
			return
		}
	}
}

func keysOf[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
