// Package refine derives a new design-system version from a previous one,
// honouring "keep" constraints, fixing contrast, adjusting tone through the
// model and applying deterministic colour and typography tweaks.
package refine

import (
	"context"
	"fmt"
	"sort"

	"github.com/dmitrijs2005/brandforge/internal/common"
	"github.com/dmitrijs2005/brandforge/internal/design"
)

type Tone string

const (
	TonePlayful      Tone = "more playful"
	ToneProfessional Tone = "more professional"
	ToneModern       Tone = "more modern"
	ToneClassic      Tone = "more classic"
)

// Tones lists the accepted tone values.
var Tones = []Tone{TonePlayful, ToneProfessional, ToneModern, ToneClassic}

func (t Tone) Valid() bool {
	if t == "" {
		return true
	}
	for _, v := range Tones {
		if t == v {
			return true
		}
	}
	return false
}

type Constraints struct {
	KeepPrimaryColor     bool     `json:"keepPrimaryColor,omitempty"`
	KeepSecondaryColor   bool     `json:"keepSecondaryColor,omitempty"`
	KeepAccentColor      bool     `json:"keepAccentColor,omitempty"`
	KeepNeutralColor     bool     `json:"keepNeutralColor,omitempty"`
	KeepSemanticColors   bool     `json:"keepSemanticColors,omitempty"`
	KeepTypography       bool     `json:"keepTypography,omitempty"`
	KeepComponents       bool     `json:"keepComponents,omitempty"`
	ImproveAccessibility bool     `json:"improveAccessibility,omitempty"`
	AdjustTone           Tone     `json:"adjustTone,omitempty"`
	SpecificChanges      []string `json:"specificChanges,omitempty"`
}

func (c *Constraints) Validate() error {
	if !c.AdjustTone.Valid() {
		return common.NewValidationError("constraints.adjustTone",
			fmt.Sprintf("unsupported tone %q", c.AdjustTone))
	}
	return nil
}

// Field is a part of an artifact that a constraint can lock.
type Field string

const (
	FieldPrimary    Field = "primary color"
	FieldSecondary  Field = "secondary color"
	FieldAccent     Field = "accent color"
	FieldNeutral    Field = "neutral color"
	FieldSemantic   Field = "semantic colors"
	FieldSurface    Field = "background and text colors"
	FieldTypography Field = "typography"
	FieldComponents Field = "components"
)

// lockSet records fields that no refinement step may modify.
type lockSet map[Field]bool

func newLockSet(c Constraints) lockSet {
	l := lockSet{}
	l.set(FieldPrimary, c.KeepPrimaryColor)
	l.set(FieldSecondary, c.KeepSecondaryColor)
	l.set(FieldAccent, c.KeepAccentColor)
	l.set(FieldNeutral, c.KeepNeutralColor)
	l.set(FieldSemantic, c.KeepSemanticColors)
	l.set(FieldTypography, c.KeepTypography)
	l.set(FieldComponents, c.KeepComponents)
	return l
}

func (l lockSet) set(f Field, locked bool) {
	if locked {
		l[f] = true
	}
}

func (l lockSet) mutable(f Field) bool { return !l[f] }

// fields returns the locked fields in a stable order.
func (l lockSet) fields() []Field {
	out := make([]Field, 0, len(l))
	for f := range l {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return fieldOrder(out[i]) < fieldOrder(out[j]) })
	return out
}

var allFields = []Field{
	FieldPrimary, FieldSecondary, FieldAccent, FieldNeutral,
	FieldSemantic, FieldSurface, FieldTypography, FieldComponents,
}

func fieldOrder(f Field) int {
	for i, v := range allFields {
		if v == f {
			return i
		}
	}
	return len(allFields)
}

// fieldOf maps a colour role to the field that owns it.
func fieldOf(r design.Role) Field {
	switch r {
	case design.RolePrimary:
		return FieldPrimary
	case design.RoleSecondary:
		return FieldSecondary
	case design.RoleAccent:
		return FieldAccent
	case design.RoleBackground, design.RoleText:
		return FieldSurface
	}
	return FieldSemantic
}

// ToneRequest asks the model to restyle the unlocked parts of Previous.
// Context carries the caller's free-text instruction, if any.
type ToneRequest struct {
	Previous *design.Artifact
	Tone     Tone
	Locked   []Field
	Context  string
}

// ToneAdjuster returns a partial artifact: zero-valued fields mean "no
// suggestion".
type ToneAdjuster interface {
	AdjustTone(ctx context.Context, req ToneRequest) (*design.Artifact, error)
}
