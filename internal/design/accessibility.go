package design

import "strings"

// WCAG 2.x thresholds for normal-size text.
const (
	AAContrast  = 4.5
	AAAContrast = 7.0
)

// Default surface colours used when an artifact leaves them empty.
const (
	DefaultBackground = "#FFFFFF"
	DefaultText       = "#111827"
)

// Role addresses one colour inside Colors. Palette roles refer to the
// palette's main shade; semantic roles are "semantic:<key>".
type Role string

const (
	RolePrimary    Role = "primary"
	RoleSecondary  Role = "secondary"
	RoleAccent     Role = "accent"
	RoleBackground Role = "background"
	RoleText       Role = "text"
)

// SemanticRole builds the role for a semantic palette entry.
func SemanticRole(key string) Role { return Role("semantic:" + key) }

// IsSemantic reports whether r addresses a semantic entry.
func (r Role) IsSemantic() bool { return strings.HasPrefix(string(r), "semantic:") }

// Get reads the colour addressed by r.
func (c *Colors) Get(r Role) string {
	switch r {
	case RolePrimary:
		return c.Primary.Main()
	case RoleSecondary:
		return c.Secondary.Main()
	case RoleAccent:
		return c.Accent.Main()
	case RoleBackground:
		return c.Background
	case RoleText:
		return c.Text
	}
	if r.IsSemantic() {
		return c.Semantic[strings.TrimPrefix(string(r), "semantic:")]
	}
	return ""
}

// Set writes the colour addressed by r.
func (c *Colors) Set(r Role, hex string) {
	switch r {
	case RolePrimary:
		c.Primary = setMain(c.Primary, hex)
	case RoleSecondary:
		c.Secondary = setMain(c.Secondary, hex)
	case RoleAccent:
		c.Accent = setMain(c.Accent, hex)
	case RoleBackground:
		c.Background = hex
	case RoleText:
		c.Text = hex
	default:
		if r.IsSemantic() {
			if c.Semantic == nil {
				c.Semantic = Palette{}
			}
			c.Semantic[strings.TrimPrefix(string(r), "semantic:")] = hex
		}
	}
}

func setMain(p Palette, hex string) Palette {
	if p == nil {
		p = Palette{}
	}
	p[p.mainKey()] = hex
	return p
}

// ContrastPair is a foreground role checked against a background role.
type ContrastPair struct {
	Name       string
	Foreground Role
	Background Role
}

// ContrastPairs lists the pairs evaluated for c: body text and every main
// and semantic colour against the page background.
func ContrastPairs(c Colors) []ContrastPair {
	pairs := []ContrastPair{
		{Name: "text/background", Foreground: RoleText, Background: RoleBackground},
		{Name: "primary/background", Foreground: RolePrimary, Background: RoleBackground},
		{Name: "secondary/background", Foreground: RoleSecondary, Background: RoleBackground},
		{Name: "accent/background", Foreground: RoleAccent, Background: RoleBackground},
	}
	for _, k := range c.Semantic.Keys() {
		pairs = append(pairs, ContrastPair{
			Name:       "semantic." + k + "/background",
			Foreground: SemanticRole(k),
			Background: RoleBackground,
		})
	}
	return pairs
}

// EvaluateContrast computes a ContrastCheck per pair; pairs with missing or
// malformed colours are skipped.
func EvaluateContrast(c Colors) []ContrastCheck {
	var checks []ContrastCheck
	for _, p := range ContrastPairs(c) {
		fg, bg := c.Get(p.Foreground), c.Get(p.Background)
		ratio, err := HexContrast(fg, bg)
		if err != nil {
			continue
		}
		checks = append(checks, ContrastCheck{
			Name:       p.Name,
			Foreground: fg,
			Background: bg,
			Ratio:      roundRatio(ratio),
			PassesAA:   ratio >= AAContrast,
		})
	}
	return checks
}

func roundRatio(v float64) float64 {
	return float64(int(v*100+0.5)) / 100
}
