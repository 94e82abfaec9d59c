package pdf

import (
	"fmt"
	"strings"
	"unicode"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/jung-kurt/gofpdf"
	"golang.org/x/text/encoding/charmap"
)

// Style selects a font face.
type Style uint8

const (
	StyleRegular Style = iota
	StyleBold
	styleCount
)

func (s Style) gofpdf() string {
	if s == StyleBold {
		return "B"
	}
	return ""
}

// metrics reports the advance width of a single glyph and the byte that
// selects it in the font encoding. ok is false when the font has no glyph.
type metrics interface {
	glyph(r rune, style Style, size float64) (advance float64, code byte, ok bool)
}

// fontMetrics holds the advance tables of a core font, in thousandths of
// the font size, indexed by Windows-1252 byte.
type fontMetrics struct {
	widths [styleCount][256]float64
}

func newFontMetrics(pdf *gofpdf.Fpdf, family string) (*fontMetrics, error) {
	fm := &fontMetrics{}
	for st := StyleRegular; st < styleCount; st++ {
		pdf.SetFont(family, st.gofpdf(), 1000)
		for b := 1; b < 256; b++ {
			fm.widths[st][b] = pdf.GetStringWidth(string([]byte{byte(b)}))
		}
	}
	if err := pdf.Error(); err != nil {
		return nil, fmt.Errorf("pdf render: font metrics: %w", err)
	}
	if fm.widths[StyleRegular]['M'] <= 0 {
		return nil, fmt.Errorf("pdf render: invalid font metrics for %s", family)
	}
	return fm, nil
}

func (fm *fontMetrics) glyph(r rune, style Style, size float64) (float64, byte, bool) {
	b, ok := charmap.Windows1252.EncodeRune(r)
	if !ok {
		return 0, 0, false
	}
	return fm.widths[style][b] * size / 1000, b, true
}

type measureKey struct {
	text  string
	style Style
	size  float64
}

// measurement is a span as it will be drawn: its total advance, the
// encoded bytes passed to the font and the runes replaced by '?'.
type measurement struct {
	width   float64
	draw    string
	missing []rune
}

type measurer struct {
	m        metrics
	tabWidth int
	cache    *lru.Cache[measureKey, measurement]
}

func newMeasurer(m metrics, tabWidth, cacheSize int) (*measurer, error) {
	cache, err := lru.New[measureKey, measurement](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("pdf render: measurement cache: %w", err)
	}
	return &measurer{m: m, tabWidth: tabWidth, cache: cache}, nil
}

func (ms *measurer) measure(text string, style Style, size float64) measurement {
	key := measureKey{text: text, style: style, size: size}
	if v, ok := ms.cache.Get(key); ok {
		return v
	}
	var out measurement
	var sb strings.Builder
	sb.Grow(len(text))
	for _, r := range text {
		w, ok := ms.glyph(&sb, r, style, size)
		out.width += w
		if !ok {
			out.missing = appendUnique(out.missing, r)
		}
	}
	out.draw = sb.String()
	ms.cache.Add(key, out)
	return out
}

// glyph appends the encoded form of r to sb and returns its advance. Tabs
// expand to spaces and control characters take no room.
func (ms *measurer) glyph(sb *strings.Builder, r rune, style Style, size float64) (float64, bool) {
	switch {
	case r == '\t':
		adv, code, _ := ms.m.glyph(' ', style, size)
		for i := 0; i < ms.tabWidth; i++ {
			sb.WriteByte(code)
		}
		return adv * float64(ms.tabWidth), true
	case unicode.IsControl(r):
		return 0, true
	}
	adv, code, ok := ms.m.glyph(r, style, size)
	if !ok {
		adv, code, _ = ms.m.glyph('?', style, size)
	}
	sb.WriteByte(code)
	return adv, ok
}

// split breaks text at rune boundaries into pieces no wider than avail.
// A piece always holds at least one rune.
func (ms *measurer) split(text string, style Style, size, avail float64) []string {
	var parts []string
	var scratch strings.Builder
	start, w := 0, 0.0
	for i, r := range text {
		scratch.Reset()
		rw, _ := ms.glyph(&scratch, r, style, size)
		if i > start && w+rw > avail+epsilon {
			parts = append(parts, text[start:i])
			start, w = i, 0
		}
		w += rw
	}
	return append(parts, text[start:])
}

func appendUnique(list []rune, r rune) []rune {
	for _, v := range list {
		if v == r {
			return list
		}
	}
	return append(list, r)
}
