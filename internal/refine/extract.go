package refine

import (
	"fmt"
	"regexp"
	"strings"
)

// Extraction is the result of reading constraints out of free text.
type Extraction struct {
	Constraints Constraints
	Matched     []string
	Conflicts   []string
}

type ruleKind int

const (
	ruleKeep ruleKind = iota
	ruleAccessibility
	ruleTone
	ruleChange
	ruleIntent
)

// rule is one (pattern, effect) pair. Rules run in table order, and when two
// matches contradict each other the earlier one wins.
type rule struct {
	name    string
	pattern *regexp.Regexp
	kind    ruleKind
	keeps   []Field
	tone    Tone
	change  string // canonical specific change
	axis    string // changes on one axis are mutually exclusive
	touches []Field
}

const keepVerb = `\b(keep|preserve|retain|maintain|lock|don'?t change|do not change|leave)\s+(the\s+)?(same\s+|current\s+|existing\s+)?`

var extractRules = []rule{
	{name: "keep colors", kind: ruleKeep, pattern: regexp.MustCompile(keepVerb + `(all\s+)?(the\s+)?(colou?rs|palettes?)\b`),
		keeps: []Field{FieldPrimary, FieldSecondary, FieldAccent, FieldNeutral, FieldSemantic}},
	{name: "keep primary color", kind: ruleKeep, pattern: regexp.MustCompile(keepVerb + `primary\b`), keeps: []Field{FieldPrimary}},
	{name: "keep secondary color", kind: ruleKeep, pattern: regexp.MustCompile(keepVerb + `secondary\b`), keeps: []Field{FieldSecondary}},
	{name: "keep accent color", kind: ruleKeep, pattern: regexp.MustCompile(keepVerb + `accent\b`), keeps: []Field{FieldAccent}},
	{name: "keep neutral color", kind: ruleKeep, pattern: regexp.MustCompile(keepVerb + `(neutrals?|grays?|greys?)\b`), keeps: []Field{FieldNeutral}},
	{name: "keep semantic colors", kind: ruleKeep, pattern: regexp.MustCompile(keepVerb + `(semantic|status)\b`), keeps: []Field{FieldSemantic}},
	{name: "keep typography", kind: ruleKeep, pattern: regexp.MustCompile(keepVerb + `(typography|fonts?|typefaces?|type)\b`), keeps: []Field{FieldTypography}},
	{name: "keep components", kind: ruleKeep, pattern: regexp.MustCompile(keepVerb + `components?\b`), keeps: []Field{FieldComponents}},

	{name: "improve accessibility", kind: ruleAccessibility, pattern: regexp.MustCompile(`\b(accessib\w*|wcag|a11y|readab\w*|legib\w*)\b`)},

	{name: "more professional", kind: ruleTone, tone: ToneProfessional, pattern: regexp.MustCompile(`\b(professional|corporate|serious|business-?like)\b`)},
	{name: "more playful", kind: ruleTone, tone: TonePlayful, pattern: regexp.MustCompile(`\b(playful|fun|whimsical|friendly|cheerful)\b`)},
	{name: "more modern", kind: ruleTone, tone: ToneModern, pattern: regexp.MustCompile(`\b(modern|contemporary|sleek|minimal(ist)?|fresh)\b`)},
	{name: "more classic", kind: ruleTone, tone: ToneClassic, pattern: regexp.MustCompile(`\b(classic|classical|timeless|traditional|elegant)\b`)},

	{name: "increase contrast", kind: ruleChange, change: "increase contrast", pattern: regexp.MustCompile(`\b(increase|more|higher|boost)\s+(the\s+)?contrast\b`)},
	{name: "make darker", kind: ruleChange, change: "make darker", axis: "lightness", pattern: regexp.MustCompile(`\bdark(er|en)\b`)},
	{name: "make lighter", kind: ruleChange, change: "make lighter", axis: "lightness", pattern: regexp.MustCompile(`\b(light(er|en)|brighter)\b`)},
	{name: "more saturated", kind: ruleChange, change: "more saturated", axis: "saturation", pattern: regexp.MustCompile(`\b(saturated|vibrant|vivid|punchier|bolder colou?rs)\b`)},
	{name: "more muted", kind: ruleChange, change: "more muted", axis: "saturation", pattern: regexp.MustCompile(`\b(muted|desaturat\w*|subdued|softer colou?rs)\b`)},
	{name: "larger text", kind: ruleChange, change: "larger text", axis: "size", pattern: regexp.MustCompile(`\b(larger|bigger)\s+(text|fonts?|type)\b`)},
	{name: "smaller text", kind: ruleChange, change: "smaller text", axis: "size", pattern: regexp.MustCompile(`\bsmaller\s+(text|fonts?|type)\b`)},
	{name: "looser line height", kind: ruleChange, change: "looser line height", axis: "leading", pattern: regexp.MustCompile(`\b(looser|airier|more\s+line\s+spacing|more\s+spacious)\b`)},
	{name: "tighter line height", kind: ruleChange, change: "tighter line height", axis: "leading", pattern: regexp.MustCompile(`\b(tighter|denser|less\s+line\s+spacing)\b`)},
	{name: "bolder headings", kind: ruleChange, change: "bolder headings", pattern: regexp.MustCompile(`\b(bolder|heavier)\s+head(ings?|ers?)\b`)},

	{name: "font change", kind: ruleIntent, touches: []Field{FieldTypography},
		pattern: regexp.MustCompile(`\b(change|new|different|swap|update|replace|modern|modernize|classic|playful)\s+(the\s+)?(fonts?|typography|typefaces?)\b`)},
	{name: "primary change", kind: ruleIntent, touches: []Field{FieldPrimary},
		pattern: regexp.MustCompile(`\b(change|new|different|swap|replace)\s+(the\s+)?primary\b`)},
	{name: "secondary change", kind: ruleIntent, touches: []Field{FieldSecondary},
		pattern: regexp.MustCompile(`\b(change|new|different|swap|replace)\s+(the\s+)?secondary\b`)},
	{name: "accent change", kind: ruleIntent, touches: []Field{FieldAccent},
		pattern: regexp.MustCompile(`\b(change|new|different|swap|replace)\s+(the\s+)?accent\b`)},
	{name: "components change", kind: ruleIntent, touches: []Field{FieldComponents},
		pattern: regexp.MustCompile(`\b(add|remove|new|more|fewer|different)\s+components?\b`)},
}

// Extract reads constraints out of a free-text instruction using the rule
// table. Contradictory matches are reported in Conflicts.
func Extract(instruction string) Extraction {
	text := strings.ToLower(instruction)
	// keep phrases are blanked out so "don't change the fonts" is not also
	// read as a request to change them
	rest := text
	var ex Extraction
	kept := map[Field]string{}
	axes := map[string]string{}

	for _, r := range extractRules {
		subject := text
		if r.kind == ruleIntent {
			subject = rest
		}
		if !r.pattern.MatchString(subject) {
			continue
		}
		switch r.kind {
		case ruleKeep:
			rest = r.pattern.ReplaceAllString(rest, " ")
			for _, f := range r.keeps {
				if _, ok := kept[f]; !ok {
					kept[f] = r.name
				}
			}
			applyKeeps(&ex.Constraints, r.keeps)
		case ruleAccessibility:
			ex.Constraints.ImproveAccessibility = true
		case ruleTone:
			if prev := ex.Constraints.AdjustTone; prev != "" {
				ex.Conflicts = append(ex.Conflicts,
					fmt.Sprintf("%q and %q both requested; using %q", prev, r.tone, prev))
				continue
			}
			ex.Constraints.AdjustTone = r.tone
		case ruleChange:
			if r.axis != "" {
				if prev, ok := axes[r.axis]; ok {
					ex.Conflicts = append(ex.Conflicts,
						fmt.Sprintf("%q and %q both requested; using %q", prev, r.change, prev))
					continue
				}
				axes[r.axis] = r.change
			}
			ex.Constraints.SpecificChanges = append(ex.Constraints.SpecificChanges, r.change)
		case ruleIntent:
			for _, f := range r.touches {
				if by, ok := kept[f]; ok {
					ex.Conflicts = append(ex.Conflicts,
						fmt.Sprintf("%q conflicts with %q; %s left unchanged", by, r.name, f))
				}
			}
			continue
		}
		ex.Matched = append(ex.Matched, r.name)
	}
	return ex
}

func applyKeeps(c *Constraints, fields []Field) {
	for _, f := range fields {
		switch f {
		case FieldPrimary:
			c.KeepPrimaryColor = true
		case FieldSecondary:
			c.KeepSecondaryColor = true
		case FieldAccent:
			c.KeepAccentColor = true
		case FieldNeutral:
			c.KeepNeutralColor = true
		case FieldSemantic:
			c.KeepSemanticColors = true
		case FieldTypography:
			c.KeepTypography = true
		case FieldComponents:
			c.KeepComponents = true
		}
	}
}
