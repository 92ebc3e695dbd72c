package refine

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/brandforge/internal/common"
	"github.com/dmitrijs2005/brandforge/internal/design"
	"github.com/dmitrijs2005/brandforge/internal/logging"
	"github.com/google/uuid"
)

// Result is the outcome of one refinement. When Degraded is set, Refined is
// an unmodified copy of the previous artifact (same ID) and nothing new was
// produced.
type Result struct {
	Refined     *design.Artifact
	Explanation string
	Degraded    bool
	Constraints Constraints
	Conflicts   []string
	Applied     []string
	Skipped     []string
	Kept        []Field
}

type Engine struct {
	tone   ToneAdjuster
	logger logging.Logger
	now    func() time.Time
	newID  func() string
}

type Option func(*Engine)

func WithClock(now func() time.Time) Option { return func(e *Engine) { e.now = now } }

func WithIDs(f func() string) Option { return func(e *Engine) { e.newID = f } }

func NewEngine(tone ToneAdjuster, logger logging.Logger, opts ...Option) *Engine {
	if logger == nil {
		logger = logging.Nop()
	}
	e := &Engine{
		tone:   tone,
		logger: logger.With("module", "refine"),
		now:    time.Now,
		newID:  uuid.NewString,
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Refine derives a new version of previous. previous is never modified.
// With constraints nil, constraints are extracted from instruction; with
// both given, constraints win and instruction is only passed to the tone
// prompt as context.
func (e *Engine) Refine(ctx context.Context, previous *design.Artifact, constraints *Constraints, instruction string) (*Result, error) {
	if previous == nil {
		return nil, common.NewValidationError("previousArtifact", "is required")
	}

	res := &Result{}
	toneContext := ""
	switch {
	case constraints != nil:
		res.Constraints = *constraints
		res.Constraints.SpecificChanges = append([]string(nil), constraints.SpecificChanges...)
		toneContext = instruction
	case instruction != "":
		ex := Extract(instruction)
		res.Constraints = ex.Constraints
		res.Conflicts = ex.Conflicts
	}
	if err := res.Constraints.Validate(); err != nil {
		return nil, err
	}
	c := res.Constraints
	locks := newLockSet(c)
	res.Kept = locks.fields()

	start := e.now()
	refined := previous.Clone()
	refined.ID = e.newID()
	refined.ParentID = previous.ID
	refined.Version = min(max(previous.Version, 1), design.MaxVersion-1) + 1

	if c.ImproveAccessibility {
		res.Applied = append(res.Applied, fixContrast(refined, locks, design.AAContrast, true)...)
	}

	if c.AdjustTone != "" {
		partial, err := e.adjustTone(ctx, refined, c.AdjustTone, locks, toneContext)
		if err != nil {
			e.logger.Warn(ctx, "tone adjustment failed, returning previous design",
				"parent", previous.ID, "tone", c.AdjustTone, "error", err)
			return e.degraded(previous, res, err), nil
		}
		res.Applied = append(res.Applied, merge(refined, partial, locks)...)
		refined.Metadata.TokenCount = partial.Metadata.TokenCount
		refined.Metadata.ResponseSize = partial.Metadata.ResponseSize
		refined.Metadata.Model = partial.Metadata.Model

		// a restyle can undo earlier contrast fixes
		if c.ImproveAccessibility {
			res.Applied = append(res.Applied, fixContrast(refined, locks, design.AAContrast, true)...)
		}
	}

	for _, change := range c.SpecificChanges {
		notes, ok := applyChange(refined, locks, change)
		switch {
		case !ok:
			res.Skipped = append(res.Skipped, fmt.Sprintf("%q (not a recognised change)", change))
		case len(notes) == 0:
			res.Skipped = append(res.Skipped, fmt.Sprintf("%q (affected fields are locked)", change))
		default:
			res.Applied = append(res.Applied, notes...)
		}
	}

	refined.Accessibility = design.EvaluateContrast(refined.Colors)
	refined.Metadata.GeneratedAt = e.now().UTC()
	refined.Metadata.GenerationTimeMs = e.now().Sub(start).Milliseconds()
	refined.Metadata.Fingerprint = design.Fingerprint(refined)

	res.Refined = refined
	res.Explanation = explain(res)
	return res, nil
}

func (e *Engine) adjustTone(ctx context.Context, current *design.Artifact, tone Tone, locks lockSet, hint string) (*design.Artifact, error) {
	if e.tone == nil {
		return nil, fmt.Errorf("%w: no tone adjuster configured", common.ErrRefinementDegraded)
	}
	partial, err := e.tone.AdjustTone(ctx, ToneRequest{
		Previous: current.Clone(),
		Tone:     tone,
		Locked:   locks.fields(),
		Context:  hint,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrRefinementDegraded, err)
	}
	if partial == nil {
		return nil, fmt.Errorf("%w: empty tone response", common.ErrRefinementDegraded)
	}
	return partial, nil
}

func (e *Engine) degraded(previous *design.Artifact, res *Result, cause error) *Result {
	res.Refined = previous.Clone()
	res.Degraded = true
	res.Applied = nil
	res.Skipped = nil
	res.Explanation = fmt.Sprintf(
		"Refinement could not be completed (%s), so your previous design is returned unchanged.",
		degradeReason(cause))
	if len(res.Conflicts) > 0 {
		res.Explanation += " Conflicting instructions: " + strings.Join(res.Conflicts, "; ") + "."
	}
	return res
}

func degradeReason(err error) string {
	switch common.KindOf(err) {
	case common.KindGenerationTimeout:
		return "the tone adjustment timed out"
	case common.KindInvalidAIResponse:
		return "the tone adjustment returned an unusable response"
	}
	return "the tone adjustment failed"
}

// merge copies suggestions from partial into the mutable fields of dst.
func merge(dst, partial *design.Artifact, locks lockSet) []string {
	var notes []string
	setPalette := func(f Field, to *design.Palette, from design.Palette) {
		if len(from) == 0 || !locks.mutable(f) {
			return
		}
		*to = from.Clone()
		notes = append(notes, "restyled "+string(f))
	}
	setPalette(FieldPrimary, &dst.Colors.Primary, partial.Colors.Primary)
	setPalette(FieldSecondary, &dst.Colors.Secondary, partial.Colors.Secondary)
	setPalette(FieldAccent, &dst.Colors.Accent, partial.Colors.Accent)
	setPalette(FieldNeutral, &dst.Colors.Neutral, partial.Colors.Neutral)
	setPalette(FieldSemantic, &dst.Colors.Semantic, partial.Colors.Semantic)

	if locks.mutable(FieldSurface) && (partial.Colors.Background != "" || partial.Colors.Text != "") {
		if partial.Colors.Background != "" {
			dst.Colors.Background = partial.Colors.Background
		}
		if partial.Colors.Text != "" {
			dst.Colors.Text = partial.Colors.Text
		}
		notes = append(notes, "restyled "+string(FieldSurface))
	}

	if locks.mutable(FieldTypography) {
		t, pt := &dst.Typography, partial.Typography
		changed := false
		for _, s := range []struct {
			to   *string
			from string
		}{{&t.HeadingFont, pt.HeadingFont}, {&t.BodyFont, pt.BodyFont}, {&t.MonoFont, pt.MonoFont}} {
			if s.from != "" && s.from != *s.to {
				*s.to = s.from
				changed = true
			}
		}
		if len(pt.Pairings) > 0 {
			t.Pairings = append([]design.FontPairing(nil), pt.Pairings...)
			changed = true
		}
		if len(pt.Weights) > 0 {
			t.Weights = pt.Weights
			changed = true
		}
		if changed {
			notes = append(notes, fmt.Sprintf("restyled typography (%s / %s)", t.HeadingFont, t.BodyFont))
		}
	}

	if locks.mutable(FieldComponents) && len(partial.Components) > 0 {
		dst.Components = append([]design.Component(nil), partial.Components...)
		notes = append(notes, "restyled components")
	}
	return notes
}

func explain(r *Result) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Created version %d.", r.Refined.Version)
	if len(r.Kept) > 0 {
		kept := make([]string, len(r.Kept))
		for i, f := range r.Kept {
			kept[i] = string(f)
		}
		b.WriteString(" Kept unchanged: " + strings.Join(kept, ", ") + ".")
	}
	if r.Constraints.AdjustTone != "" {
		fmt.Fprintf(&b, " Tone: %s.", r.Constraints.AdjustTone)
	}
	if len(r.Applied) > 0 {
		b.WriteString(" Changes: " + strings.Join(r.Applied, "; ") + ".")
	} else {
		b.WriteString(" No changes were needed.")
	}
	if len(r.Skipped) > 0 {
		b.WriteString(" Not applied: " + strings.Join(r.Skipped, ", ") + ".")
	}
	if len(r.Conflicts) > 0 {
		b.WriteString(" Conflicting instructions: " + strings.Join(r.Conflicts, "; ") + ".")
	}
	return b.String()
}
