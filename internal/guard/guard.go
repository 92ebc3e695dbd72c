// Package guard sanitizes and bounds every piece of caller-supplied text or
// JSON before it can reach the credit ledger or the model.
package guard

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/dmitrijs2005/brandforge/internal/common"
)

// Payload caps, in bytes of serialized JSON.
const (
	SmallPayloadLimit  = 16 << 10
	DesignPayloadLimit = 256 << 10
)

// Kind selects the length bounds applied by Validate.
type Kind int

const (
	KindBrandDescription Kind = iota
	KindInstruction
	KindSpecificChange
	KindFontName
	KindComponentName
	KindComponentText
)

type bounds struct {
	field    string
	min, max int
}

var kindBounds = map[Kind]bounds{
	KindBrandDescription: {field: "brandDescription", min: 10, max: 500},
	KindInstruction:      {field: "instruction", min: 3, max: 500},
	KindSpecificChange:   {field: "specificChanges", min: 1, max: 200},
	KindFontName:         {field: "typography", min: 1, max: 80},
	KindComponentName:    {field: "components", min: 1, max: 60},
	KindComponentText:    {field: "components", min: 1, max: 300},
}

// Bounds exposes the rune-length limits for kind.
func Bounds(kind Kind) (min, max int) {
	b := kindBounds[kind]
	return b.min, b.max
}

var injectionPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(ignore|disregard|forget|override)\b.{0,30}\b(previous|prior|above|earlier|all)\b.{0,20}\b(instructions?|prompts?|rules?|context)\b`),
	regexp.MustCompile(`(?i)\b(reveal|show|print|repeat|output)\b.{0,30}\bsystem\s*prompt\b`),
	regexp.MustCompile(`(?i)\byou\s+are\s+now\b`),
	regexp.MustCompile(`(?i)\bact\s+as\s+(an?\s+)?(system|admin|developer|root)\b`),
	regexp.MustCompile(`(?i)\b(new|updated)\s+instructions\s*:`),
	regexp.MustCompile(`<\|\s*(im_start|im_end|system|endoftext)\s*\|>`),
	regexp.MustCompile(`(?i)\[/?INST\]`),
	regexp.MustCompile(`(?i)<</?SYS>>`),
	regexp.MustCompile(`</s>`),
	regexp.MustCompile(`(?im)^\s*#{2,}\s*(system|assistant|user)\b`),
	regexp.MustCompile(`(?im)^\s*(system|assistant)\s*:`),
}

// Result is the outcome of Validate. Err is a *common.ValidationError when
// Valid is false.
type Result struct {
	Valid     bool
	Sanitized string
	Err       error
}

// TierChecker reports whether a tier name is known.
type TierChecker interface {
	IsValid(name string) bool
}

type Guard struct {
	tiers       TierChecker
	smallLimit  int
	designLimit int
}

type Option func(*Guard)

// WithPayloadLimits overrides the default payload caps; non-positive values
// keep the defaults.
func WithPayloadLimits(small, design int) Option {
	return func(g *Guard) {
		if small > 0 {
			g.smallLimit = small
		}
		if design > 0 {
			g.designLimit = design
		}
	}
}

func New(tiers TierChecker, opts ...Option) *Guard {
	g := &Guard{tiers: tiers, smallLimit: SmallPayloadLimit, designLimit: DesignPayloadLimit}
	for _, o := range opts {
		o(g)
	}
	return g
}

func (g *Guard) SmallLimit() int  { return g.smallLimit }
func (g *Guard) DesignLimit() int { return g.designLimit }

// Sanitize strips control characters, collapses whitespace runs to a single
// space, trims and truncates to maxLength runes. maxLength <= 0 means no cap.
func Sanitize(text string, maxLength int) string {
	var b strings.Builder
	b.Grow(len(text))
	space := false
	for _, r := range text {
		if r == utf8.RuneError {
			continue
		}
		if unicode.IsSpace(r) {
			space = true
			continue
		}
		if unicode.IsControl(r) || unicode.Is(unicode.Cf, r) {
			continue
		}
		if space && b.Len() > 0 {
			b.WriteByte(' ')
		}
		space = false
		b.WriteRune(r)
	}
	out := b.String()
	if maxLength > 0 && utf8.RuneCountInString(out) > maxLength {
		out = strings.TrimSpace(string([]rune(out)[:maxLength]))
	}
	return out
}

func (g *Guard) Sanitize(text string, maxLength int) string {
	return Sanitize(text, maxLength)
}

// Validate sanitizes text and checks it against the bounds for kind and the
// known prompt-injection patterns. Length is measured after sanitizing but
// before truncation, so oversized input is rejected rather than cut.
func (g *Guard) Validate(text string, kind Kind) Result {
	b, ok := kindBounds[kind]
	if !ok {
		return Result{Err: common.NewValidationError("input", "unknown input kind")}
	}

	// injection checks run on the raw text too, since collapsing newlines
	// hides line-anchored delimiters
	for _, p := range injectionPatterns {
		if p.MatchString(text) {
			return Result{Err: common.NewValidationError(b.field, "contains disallowed content")}
		}
	}

	clean := Sanitize(text, 0)
	n := utf8.RuneCountInString(clean)
	switch {
	case n < b.min:
		return Result{Sanitized: clean, Err: common.NewValidationError(b.field,
			fmt.Sprintf("must be at least %d characters", b.min))}
	case n > b.max:
		return Result{Sanitized: clean, Err: common.NewValidationError(b.field,
			fmt.Sprintf("must be at most %d characters", b.max))}
	}
	for _, p := range injectionPatterns {
		if p.MatchString(clean) {
			return Result{Err: common.NewValidationError(b.field, "contains disallowed content")}
		}
	}
	return Result{Valid: true, Sanitized: clean}
}

// ValidatePayloadSize rejects payloads whose JSON encoding exceeds maxBytes.
func (g *Guard) ValidatePayloadSize(payload any, maxBytes int) error {
	var n int
	switch p := payload.(type) {
	case []byte:
		n = len(p)
	case json.RawMessage:
		n = len(p)
	default:
		b, err := json.Marshal(payload)
		if err != nil {
			return common.NewValidationError("payload", "not serializable")
		}
		n = len(b)
	}
	if n > maxBytes {
		return common.NewValidationError("payload",
			fmt.Sprintf("is %d bytes, limit is %d", n, maxBytes))
	}
	return nil
}

func (g *Guard) ValidateTier(name string) error {
	if g.tiers == nil || !g.tiers.IsValid(name) {
		return common.NewValidationError("tier", fmt.Sprintf("unknown tier %q", name))
	}
	return nil
}

// ValidateChanges validates each specific-change string and returns the
// sanitized list.
func (g *Guard) ValidateChanges(changes []string) ([]string, error) {
	out := make([]string, 0, len(changes))
	for _, c := range changes {
		r := g.Validate(c, KindSpecificChange)
		if !r.Valid {
			return nil, r.Err
		}
		out = append(out, r.Sanitized)
	}
	return out, nil
}
