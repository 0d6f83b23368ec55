package card

import (
	"sort"

	"github.com/lucasb-eyer/go-colorful"
)

const (
	// DefaultTheme is the preset a new card starts with.
	DefaultTheme = "blue-orange"
	// CustomTheme selects the gradient from ThemeColor1 and ThemeColor2.
	CustomTheme = "custom"
)

// Theme is a named background gradient with two or three colour stops.
type Theme struct {
	Name  string
	Stops []colorful.Color
}

var themes = map[string][]string{
	"blue-orange":      {"#2563eb", "#f97316"},
	"purple-pink":      {"#a855f7", "#ec4899"},
	"green-teal":       {"#4ade80", "#14b8a6"},
	"slate-gray":       {"#334155", "#1f2937"},
	"oceanic-blue":     {"#3b82f6", "#22d3ee"},
	"sunset-orange":    {"#ef4444", "#facc15"},
	"emerald-green":    {"#059669", "#a3e635"},
	"royal-amethyst":   {"#4f46e5", "#a78bfa"},
	"monochrome-steel": {"#4b5563", "#9ca3af"},
	"crimson-gold":     {"#b91c1c", "#eab308"},
	"midnight-sky":     {"#111827", "#1e40af"},
	"forest-mist":      {"#15803d", "#6b7280"},
	"tropical-sunrise": {"#facc15", "#ec4899", "#f97316"},
	"silver-lining":    {"#d1d5db", "#f3f4f6"},
	"cosmic-fusion":    {"#6b21a8", "#1d4ed8", "#db2777"},
}

// ThemeNames lists the preset names in sorted order.
func ThemeNames() []string {
	names := make([]string, 0, len(themes))
	for name := range themes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// LookupTheme returns the named preset.
func LookupTheme(name string) (Theme, bool) {
	hexes, ok := themes[name]
	if !ok {
		return Theme{}, false
	}
	t := Theme{Name: name, Stops: make([]colorful.Color, len(hexes))}
	for i, h := range hexes {
		t.Stops[i] = mustHex(h)
	}
	return t, true
}

// ThemeOf returns the gradient the card is drawn with: the preset, or the
// two custom colours when Theme is CustomTheme.
func (d Data) ThemeOf() (Theme, bool) {
	if d.Theme != CustomTheme {
		return LookupTheme(d.Theme)
	}
	c1, err1 := colorful.Hex(d.ThemeColor1)
	c2, err2 := colorful.Hex(d.ThemeColor2)
	if err1 != nil || err2 != nil {
		return Theme{}, false
	}
	return Theme{Name: CustomTheme, Stops: []colorful.Color{c1, c2}}, true
}

// At returns the gradient colour at pos in [0,1], blended in Lab
// space between neighbouring stops.
func (t Theme) At(pos float64) colorful.Color {
	switch {
	case len(t.Stops) == 0:
		return colorful.Color{}
	case len(t.Stops) == 1 || pos <= 0:
		return t.Stops[0]
	case pos >= 1:
		return t.Stops[len(t.Stops)-1]
	}
	segments := float64(len(t.Stops) - 1)
	i := int(pos * segments)
	local := pos*segments - float64(i)
	if local == 0 {
		return t.Stops[i]
	}
	return t.Stops[i].BlendLab(t.Stops[i+1], local).Clamped()
}

// Hex returns the stops as #rrggbb strings.
func (t Theme) Hex() []string {
	out := make([]string, len(t.Stops))
	for i, c := range t.Stops {
		out[i] = c.Hex()
	}
	return out
}

func mustHex(s string) colorful.Color {
	c, err := colorful.Hex(s)
	if err != nil {
		panic(err)
	}
	return c
}
