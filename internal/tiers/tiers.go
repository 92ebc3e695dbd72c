// Package tiers is the immutable catalogue of generation tiers: how rich a
// generated design system is and how many credits it costs.
package tiers

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Name string

const (
	Basic        Name = "basic"
	Professional Name = "professional"
	Enterprise   Name = "enterprise"
)

// Latency is the advertised response-time band.
type Latency struct {
	Min time.Duration `yaml:"min" json:"min"`
	Max time.Duration `yaml:"max" json:"max"`
}

// Config describes one tier. MonthlyCredits of zero means the tier never
// replenishes; Unlimited accounts are never charged.
type Config struct {
	Name             Name     `yaml:"name" json:"name"`
	PaletteCount     int      `yaml:"paletteCount" json:"paletteCount"`
	ShadesPerPalette int      `yaml:"shadesPerPalette" json:"shadesPerPalette"`
	FontPairings     int      `yaml:"fontPairings" json:"fontPairings"`
	TypeScaleSteps   int      `yaml:"typeScaleSteps" json:"typeScaleSteps"`
	CreditCost       int64    `yaml:"creditCost" json:"creditCost"`
	RefinementCost   int64    `yaml:"refinementCost" json:"refinementCost"`
	Latency          Latency  `yaml:"latency" json:"latency"`
	Features         []string `yaml:"features" json:"features"`
	InitialCredits   int64    `yaml:"initialCredits" json:"initialCredits"`
	MonthlyCredits   int64    `yaml:"monthlyCredits" json:"monthlyCredits"`
	Unlimited        bool     `yaml:"unlimited" json:"unlimited"`
	Components       bool     `yaml:"components" json:"components"`

	// MaxTokens and Temperature are passed to the model with the prompt.
	MaxTokens   int     `yaml:"maxTokens" json:"-"`
	Temperature float64 `yaml:"temperature" json:"-"`
}

// Replenishes reports whether accounts on this tier are topped up monthly.
func (c Config) Replenishes() bool {
	return !c.Unlimited && c.MonthlyCredits > 0
}

// Catalog is a read-only lookup table; safe for concurrent use.
type Catalog struct {
	order  []Name
	byName map[Name]Config
	def    Name
}

// New builds a catalog from tiers. The first tier is the default.
func New(tiers []Config) (*Catalog, error) {
	if len(tiers) == 0 {
		return nil, errors.New("tier catalog is empty")
	}
	c := &Catalog{byName: make(map[Name]Config, len(tiers)), def: tiers[0].Name}
	for _, t := range tiers {
		if err := validate(t); err != nil {
			return nil, err
		}
		if _, dup := c.byName[t.Name]; dup {
			return nil, fmt.Errorf("duplicate tier %q", t.Name)
		}
		t.Features = append([]string(nil), t.Features...)
		c.byName[t.Name] = t
		c.order = append(c.order, t.Name)
	}
	return c, nil
}

func validate(t Config) error {
	switch {
	case t.Name == "":
		return errors.New("tier without a name")
	case t.PaletteCount < 3:
		return fmt.Errorf("tier %q: paletteCount must be at least 3", t.Name)
	case t.ShadesPerPalette < 1:
		return fmt.Errorf("tier %q: shadesPerPalette must be positive", t.Name)
	case t.FontPairings < 1 || t.TypeScaleSteps < 1:
		return fmt.Errorf("tier %q: typography envelope must be positive", t.Name)
	case t.CreditCost <= 0 || t.RefinementCost <= 0:
		return fmt.Errorf("tier %q: costs must be positive", t.Name)
	case t.InitialCredits < 0 || t.MonthlyCredits < 0:
		return fmt.Errorf("tier %q: credit allotments must not be negative", t.Name)
	case t.Latency.Max < t.Latency.Min:
		return fmt.Errorf("tier %q: latency max below min", t.Name)
	}
	return nil
}

func (c *Catalog) Get(name Name) (Config, bool) {
	t, ok := c.byName[name]
	if !ok {
		return Config{}, false
	}
	t.Features = append([]string(nil), t.Features...)
	return t, true
}

func (c *Catalog) IsValid(name string) bool {
	_, ok := c.byName[Name(name)]
	return ok
}

// List returns the tiers in catalogue order.
func (c *Catalog) List() []Config {
	out := make([]Config, 0, len(c.order))
	for _, n := range c.order {
		t, _ := c.Get(n)
		out = append(out, t)
	}
	return out
}

func (c *Catalog) Default() Config {
	t, _ := c.Get(c.def)
	return t
}

// Resolve maps an empty name to the default tier.
func (c *Catalog) Resolve(name string) (Config, bool) {
	if name == "" {
		return c.Default(), true
	}
	return c.Get(Name(name))
}

// Allows reports whether an account on tier account may request generations
// on tier requested. Tiers are ranked by generation cost; unlimited tiers
// may request anything.
func (c *Catalog) Allows(account, requested Name) bool {
	a, ok := c.byName[account]
	if !ok {
		return false
	}
	r, ok := c.byName[requested]
	if !ok {
		return false
	}
	return a.Unlimited || r.CreditCost <= a.CreditCost
}

// Builtin returns the catalogue shipped with the service.
func Builtin() *Catalog {
	c, err := New(builtinTiers())
	if err != nil {
		panic(err)
	}
	return c
}

func builtinTiers() []Config {
	return []Config{
		{
			Name:             Basic,
			PaletteCount:     3,
			ShadesPerPalette: 5,
			FontPairings:     1,
			TypeScaleSteps:   6,
			CreditCost:       1,
			RefinementCost:   1,
			Latency:          Latency{Min: 5 * time.Second, Max: 15 * time.Second},
			Features: []string{
				"3 colour palettes",
				"5 shades per palette",
				"1 font pairing",
				"6-step type scale",
			},
			InitialCredits: 3,
			MaxTokens:      1500,
			Temperature:    0.7,
		},
		{
			Name:             Professional,
			PaletteCount:     5,
			ShadesPerPalette: 10,
			FontPairings:     3,
			TypeScaleSteps:   9,
			CreditCost:       2,
			RefinementCost:   1,
			Latency:          Latency{Min: 10 * time.Second, Max: 30 * time.Second},
			Features: []string{
				"5 colour palettes",
				"10 shades per palette",
				"3 font pairings",
				"9-step type scale",
				"component specifications",
				"monthly credit refresh",
			},
			InitialCredits: 50,
			MonthlyCredits: 50,
			Components:     true,
			MaxTokens:      3000,
			Temperature:    0.7,
		},
		{
			Name:             Enterprise,
			PaletteCount:     5,
			ShadesPerPalette: 10,
			FontPairings:     3,
			TypeScaleSteps:   9,
			CreditCost:       3,
			RefinementCost:   1,
			Latency:          Latency{Min: 10 * time.Second, Max: 45 * time.Second},
			Features: []string{
				"5 colour palettes",
				"10 shades per palette",
				"3 font pairings",
				"9-step type scale",
				"component specifications",
				"unlimited generations",
			},
			Unlimited:   true,
			Components:  true,
			MaxTokens:   4000,
			Temperature: 0.6,
		},
	}
}

type file struct {
	Default string   `yaml:"default"`
	Tiers   []Config `yaml:"tiers"`
}

// LoadFile reads a YAML catalogue. When the file names a default tier it is
// moved to the front.
func LoadFile(path string) (*Catalog, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read tiers: %w", err)
	}
	return Parse(b)
}

func Parse(b []byte) (*Catalog, error) {
	var f file
	if err := yaml.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("parse tiers: %w", err)
	}
	list := f.Tiers
	if f.Default != "" {
		idx := -1
		for i, t := range list {
			if string(t.Name) == f.Default {
				idx = i
			}
		}
		if idx < 0 {
			return nil, fmt.Errorf("default tier %q not defined", f.Default)
		}
		list = append([]Config{list[idx]}, append(list[:idx:idx], list[idx+1:]...)...)
	}
	return New(list)
}
