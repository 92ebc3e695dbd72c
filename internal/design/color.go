package design

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// RGB is an 8-bit sRGB colour.
type RGB struct {
	R, G, B uint8
}

// HSL components are in [0,360) for H and [0,1] for S and L.
type HSL struct {
	H, S, L float64
}

// ParseHex accepts "#RGB", "#RRGGBB" and the same forms without '#'.
func ParseHex(s string) (RGB, error) {
	h := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(h) == 3 {
		h = string([]byte{h[0], h[0], h[1], h[1], h[2], h[2]})
	}
	if len(h) != 6 {
		return RGB{}, fmt.Errorf("invalid hex colour %q", s)
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return RGB{}, fmt.Errorf("invalid hex colour %q", s)
	}
	return RGB{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v)}, nil
}

// NormalizeHex returns s as uppercase "#RRGGBB".
func NormalizeHex(s string) (string, error) {
	c, err := ParseHex(s)
	if err != nil {
		return "", err
	}
	return c.Hex(), nil
}

// SameColor compares two hex values after normalisation; unparseable values
// fall back to a case-insensitive string comparison.
func SameColor(a, b string) bool {
	na, errA := NormalizeHex(a)
	nb, errB := NormalizeHex(b)
	if errA != nil || errB != nil {
		return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
	}
	return na == nb
}

func (c RGB) Hex() string {
	return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
}

// HSL converts to hue/saturation/lightness.
func (c RGB) HSL() HSL {
	r, g, b := float64(c.R)/255, float64(c.G)/255, float64(c.B)/255
	maxV := math.Max(r, math.Max(g, b))
	minV := math.Min(r, math.Min(g, b))
	l := (maxV + minV) / 2

	if maxV == minV {
		return HSL{H: 0, S: 0, L: l}
	}

	d := maxV - minV
	var s float64
	if l > 0.5 {
		s = d / (2 - maxV - minV)
	} else {
		s = d / (maxV + minV)
	}

	var h float64
	switch maxV {
	case r:
		h = (g - b) / d
		if g < b {
			h += 6
		}
	case g:
		h = (b-r)/d + 2
	default:
		h = (r-g)/d + 4
	}
	return HSL{H: h * 60, S: s, L: l}
}

// RGB converts back to sRGB.
func (h HSL) RGB() RGB {
	s, l := clamp01(h.S), clamp01(h.L)
	if s == 0 {
		v := to8(l)
		return RGB{v, v, v}
	}
	var q float64
	if l < 0.5 {
		q = l * (1 + s)
	} else {
		q = l + s - l*s
	}
	p := 2*l - q
	hk := math.Mod(h.H, 360) / 360
	if hk < 0 {
		hk++
	}
	return RGB{
		R: to8(hueToRGB(p, q, hk+1.0/3)),
		G: to8(hueToRGB(p, q, hk)),
		B: to8(hueToRGB(p, q, hk-1.0/3)),
	}
}

func hueToRGB(p, q, t float64) float64 {
	if t < 0 {
		t++
	}
	if t > 1 {
		t--
	}
	switch {
	case t < 1.0/6:
		return p + (q-p)*6*t
	case t < 0.5:
		return q
	case t < 2.0/3:
		return p + (q-p)*(2.0/3-t)*6
	default:
		return p
	}
}

func to8(v float64) uint8 {
	return uint8(math.Round(clamp01(v) * 255))
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

// RelativeLuminance follows the WCAG 2.x definition.
func (c RGB) RelativeLuminance() float64 {
	lin := func(v uint8) float64 {
		s := float64(v) / 255
		if s <= 0.03928 {
			return s / 12.92
		}
		return math.Pow((s+0.055)/1.055, 2.4)
	}
	return 0.2126*lin(c.R) + 0.7152*lin(c.G) + 0.0722*lin(c.B)
}

// ContrastRatio is symmetric and lies in [1, 21].
func ContrastRatio(a, b RGB) float64 {
	la, lb := a.RelativeLuminance(), b.RelativeLuminance()
	if la < lb {
		la, lb = lb, la
	}
	return (la + 0.05) / (lb + 0.05)
}

// HexContrast is ContrastRatio over hex strings.
func HexContrast(fg, bg string) (float64, error) {
	a, err := ParseHex(fg)
	if err != nil {
		return 0, err
	}
	b, err := ParseHex(bg)
	if err != nil {
		return 0, err
	}
	return ContrastRatio(a, b), nil
}

// ShiftLightness moves the lightness of hex by delta (in [-1,1]) keeping hue
// and saturation.
func ShiftLightness(hex string, delta float64) (string, error) {
	c, err := ParseHex(hex)
	if err != nil {
		return "", err
	}
	h := c.HSL()
	h.L = clamp01(h.L + delta)
	return h.RGB().Hex(), nil
}

// ShiftSaturation moves saturation by delta keeping hue and lightness.
func ShiftSaturation(hex string, delta float64) (string, error) {
	c, err := ParseHex(hex)
	if err != nil {
		return "", err
	}
	h := c.HSL()
	h.S = clamp01(h.S + delta)
	return h.RGB().Hex(), nil
}

// EnsureContrast walks the lightness of fg away from bg, in small steps with
// hue and saturation fixed, until the ratio reaches target. It returns the
// adjusted colour and whether the target was met.
func EnsureContrast(fg, bg string, target float64) (string, bool, error) {
	f, err := ParseHex(fg)
	if err != nil {
		return "", false, err
	}
	b, err := ParseHex(bg)
	if err != nil {
		return "", false, err
	}
	if ContrastRatio(f, b) >= target {
		return f.Hex(), true, nil
	}

	// move towards whichever extreme contrasts more with the background
	step := 0.01
	if ContrastRatio(RGB{}, b) >= ContrastRatio(RGB{255, 255, 255}, b) {
		step = -step
	}

	h := f.HSL()
	for i := 0; i < 100; i++ {
		h.L = clamp01(h.L + step)
		c := h.RGB()
		if ContrastRatio(c, b) >= target {
			return c.Hex(), true, nil
		}
		if h.L == 0 || h.L == 1 {
			return c.Hex(), false, nil
		}
	}
	c := h.RGB()
	return c.Hex(), ContrastRatio(c, b) >= target, nil
}
