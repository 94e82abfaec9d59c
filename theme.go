package codebook

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"pkt.systems/codebook/internal/palette"
)

// RGB is an 8-bit per channel colour.
type RGB struct {
	R, G, B uint8
}

// White is the page colour assumed when a theme has no background of its own.
var White = RGB{255, 255, 255}

// Hex formats the colour as #rrggbb.
func (c RGB) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// ParseHex parses #rrggbb (the leading # is optional).
func ParseHex(s string) (RGB, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(s) != 6 {
		return RGB{}, fmt.Errorf("invalid colour %q", s)
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return RGB{}, fmt.Errorf("invalid colour %q: %w", s, err)
	}
	return RGB{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v)}, nil
}

// Palette is the resolved colour set of a theme. It is a value type; the
// With* methods return modified copies.
type Palette struct {
	Background RGB
	Foreground RGB
	LineNumber RGB
	Header     RGB

	classes [classCount]RGB
	mapped  [classCount]bool
}

// WithClass returns a copy of p with class c mapped to col.
func (p Palette) WithClass(c TokenClass, col RGB) Palette {
	if c < classCount {
		p.classes[c] = col
		p.mapped[c] = true
	}
	return p
}

// Color resolves a token class. Unmapped classes use the foreground.
func (p Palette) Color(c TokenClass) RGB {
	if c < classCount && p.mapped[c] {
		return p.classes[c]
	}
	return p.Foreground
}

// HasBackground reports whether pages need an explicit background fill.
func (p Palette) HasBackground() bool {
	return p.Background != White
}

// Theme is a named, immutable palette.
type Theme interface {
	Name() string
	Palette() Palette
}

type theme struct {
	name    string
	palette Palette
}

func (t theme) Name() string     { return t.name }
func (t theme) Palette() Palette { return t.palette }

// NewTheme returns a Theme for a palette.
func NewTheme(name string, p Palette) Theme {
	return theme{name: name, palette: p}
}

func paletteFromHex(p palette.Palette) Palette {
	out := Palette{
		Background: mustHex(p.Background),
		Foreground: mustHex(p.Text),
		LineNumber: mustHex(p.LineNumber),
		Header:     mustHex(p.Header),
	}
	return out.
		WithClass(ClassKeyword, mustHex(p.Keyword)).
		WithClass(ClassString, mustHex(p.String)).
		WithClass(ClassComment, mustHex(p.Comment)).
		WithClass(ClassNumber, mustHex(p.Number)).
		WithClass(ClassFunction, mustHex(p.Function)).
		WithClass(ClassType, mustHex(p.Type)).
		WithClass(ClassOperator, mustHex(p.Operator))
}

func mustHex(s string) RGB {
	c, err := ParseHex(s)
	if err != nil {
		panic(err)
	}
	return c
}

const defaultThemeName = "light"

var builtinThemes = map[string]Theme{
	"light":           theme{name: "light", palette: paletteFromHex(palette.PaletteLight)},
	"dark":            theme{name: "dark", palette: paletteFromHex(palette.PaletteDark)},
	"solarized-light": theme{name: "solarized-light", palette: paletteFromHex(palette.PaletteSolarizedLight)},
	"solarized-dark":  theme{name: "solarized-dark", palette: paletteFromHex(palette.PaletteSolarizedDark)},
	"github-light":    theme{name: "github-light", palette: paletteFromHex(palette.PaletteGithubLight)},
	"github-dark":     theme{name: "github-dark", palette: paletteFromHex(palette.PaletteGithubDark)},
	"nord":            theme{name: "nord", palette: paletteFromHex(palette.PaletteNord)},
	"dracula":         theme{name: "dracula", palette: paletteFromHex(palette.PaletteDracula)},
	"gruvbox":         theme{name: "gruvbox", palette: paletteFromHex(palette.PaletteGruvbox)},
}

// AvailableThemes returns the names of built-in themes.
func AvailableThemes() []string {
	names := make([]string, 0, len(builtinThemes))
	for name := range builtinThemes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ThemeByName returns a built-in theme by name.
func ThemeByName(name string) (Theme, bool) {
	if name == "" {
		return builtinThemes[defaultThemeName], true
	}
	normalized := strings.ToLower(strings.TrimSpace(name))
	t, ok := builtinThemes[normalized]
	return t, ok
}

// DefaultTheme returns the default built-in theme.
func DefaultTheme() Theme {
	return builtinThemes[defaultThemeName]
}
