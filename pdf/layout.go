package pdf

import (
	"fmt"
	"strconv"
	"strings"

	"pkt.systems/codebook"
	"pkt.systems/codebook/document"
)

const (
	epsilon = 1e-6
	// minColumns is the narrowest code column accepted, in em widths.
	minColumns = 20

	titleScale   = 2.0
	sectionScale = 1.4
	fileScale    = 1.2
)

type lineKind uint8

const (
	lineText lineKind = iota
	lineHeading
	lineContent
	lineEntry
)

type role uint8

const (
	roleToken role = iota
	roleHeader
	roleMuted
)

type run struct {
	text  string
	draw  string
	class codebook.TokenClass
	role  role
	style Style
	x     float64
	width float64
}

// entryRef is the right-aligned part of a table of contents line.
type entryRef struct {
	section int
	number  string
	width   float64
}

type line struct {
	kind   lineKind
	y      float64
	height float64
	size   float64
	// center places the runs in the middle of the content width.
	center bool
	// number is the 1-based source line on the first visual line of a
	// file line, zero otherwise.
	number int
	runs   []run
	entry  *entryRef
}

func (ln line) width() float64 {
	if len(ln.runs) == 0 {
		return 0
	}
	last := ln.runs[len(ln.runs)-1]
	return last.x + last.width
}

type page struct {
	section int
	lines   []line
}

type geometry struct {
	pageW, pageH float64
	margin       float64
	size         float64
	lineH        float64
	footerH      float64
	gutterW      float64
	gutterGap    float64
	contentW     float64
	bodyH        float64
}

// codeWidth is the room left for source text once the gutter is reserved.
func (g geometry) codeWidth() float64 {
	return g.contentW - g.gutterW - g.gutterGap
}

func newGeometry(cfg Config, pageW, pageH float64, opts codebook.Options, ms *measurer, maxLine int) (geometry, error) {
	g := geometry{
		pageW:    pageW,
		pageH:    pageH,
		margin:   cfg.Margin,
		size:     cfg.FontSize,
		lineH:    cfg.FontSize * cfg.LineHeight,
		contentW: pageW - 2*cfg.Margin,
	}
	if opts.PageNumbers {
		g.footerH = g.lineH
	}
	if opts.LineNumbers {
		digits := len(strconv.Itoa(max(maxLine, 1)))
		g.gutterW = ms.measure(strings.Repeat("0", digits), StyleRegular, g.size).width
		g.gutterGap = cfg.GutterGap
	}
	g.bodyH = pageH - 2*cfg.Margin - g.footerH
	em := ms.measure("M", StyleRegular, g.size).width
	if cols := int(g.codeWidth() / em); cols < minColumns {
		return geometry{}, fmt.Errorf("pdf render: page too narrow for content (cols=%d)", cols)
	}
	if g.bodyH < 2*titleScale*g.lineH {
		return geometry{}, fmt.Errorf("pdf render: page too short for content (height=%.1f)", g.bodyH)
	}
	return g, nil
}

// pager stacks lines onto the pages of one section.
type pager struct {
	geo     *geometry
	section int
	pages   []page
	y       float64
}

func (p *pager) add(ln line) {
	n := len(p.pages)
	if n == 0 || (p.y+ln.height > p.geo.bodyH+epsilon && len(p.pages[n-1].lines) > 0) {
		p.pages = append(p.pages, page{section: p.section})
		p.y = 0
		n++
	}
	ln.y = p.y
	p.y += ln.height
	p.pages[n-1].lines = append(p.pages[n-1].lines, ln)
}

func (p *pager) space(scale float64) {
	p.add(line{kind: lineText, height: p.geo.lineH * scale, size: p.geo.size})
}

func (p *pager) finish() []page {
	if len(p.pages) == 0 {
		p.pages = append(p.pages, page{section: p.section})
	}
	return p.pages
}

type glyphKey struct {
	section int
	r       rune
}

type layouter struct {
	cfg      Config
	geo      geometry
	ms       *measurer
	doc      *document.Model
	warnings []codebook.Warning
	seen     map[glyphKey]bool
}

func newLayouter(cfg Config, geo geometry, ms *measurer, doc *document.Model) *layouter {
	return &layouter{cfg: cfg, geo: geo, ms: ms, doc: doc, seen: map[glyphKey]bool{}}
}

func (l *layouter) warn(kind codebook.WarningKind, path, detail string) {
	l.warnings = append(l.warnings, codebook.Warning{Kind: kind, Path: path, Detail: detail})
}

// measure wraps the measurer and reports every missing glyph once per
// section.
func (l *layouter) measure(section int, path, text string, style Style, size float64) measurement {
	m := l.ms.measure(text, style, size)
	for _, r := range m.missing {
		key := glyphKey{section: section, r: r}
		if l.seen[key] {
			continue
		}
		l.seen[key] = true
		l.warn(codebook.UnsupportedGlyph, path, fmt.Sprintf("%U %q drawn as ?", r, r))
	}
	return m
}

// textStyle describes how generated text is set.
type textStyle struct {
	kind   lineKind
	style  Style
	scale  float64
	role   role
	center bool
}

// wrapped lays out generated text such as headings and tree lines, breaking
// it at characters when it does not fit. Overflow here is not reported.
func (l *layouter) wrapped(p *pager, section int, path, text string, ts textStyle) {
	size := l.geo.size * ts.scale
	parts := []string{text}
	if m := l.ms.measure(text, ts.style, size); m.width > l.geo.contentW+epsilon {
		parts = l.ms.split(text, ts.style, size, l.geo.contentW)
	}
	for _, part := range parts {
		ln := line{kind: ts.kind, height: l.geo.lineH * ts.scale, size: size, center: ts.center}
		if part != "" {
			m := l.measure(section, path, part, ts.style, size)
			ln.runs = []run{{text: part, draw: m.draw, class: codebook.ClassPlain, role: ts.role, style: ts.style, width: m.width}}
		}
		p.add(ln)
	}
}

// content lays out source tokens. Lines break at every newline, tokens
// are packed greedily and a token wider than the whole code column is
// broken at characters.
func (l *layouter) content(p *pager, section int, f *document.File) {
	avail := l.geo.codeWidth()
	size := l.geo.size
	tokens := f.Tokens
	if len(tokens) == 0 && f.Text != "" {
		tokens = []codebook.Token{{Text: f.Text}}
	}
	number := 1
	cur := line{kind: lineContent, height: l.geo.lineH, size: size, number: number}
	x := 0.0
	push := func(text string, class codebook.TokenClass, m measurement) {
		cur.runs = append(cur.runs, run{text: text, draw: m.draw, class: class, style: StyleRegular, x: x, width: m.width})
		x += m.width
	}
	wrap := func() {
		p.add(cur)
		cur = line{kind: lineContent, height: l.geo.lineH, size: size}
		x = 0
	}
	for _, tok := range tokens {
		class := tok.Class
		if !l.doc.Options.Highlight {
			class = codebook.ClassPlain
		}
		text := tok.Text
		for {
			seg, rest, newline := strings.Cut(text, "\n")
			if seg != "" {
				m := l.measure(section, f.RelPath, seg, StyleRegular, size)
				switch {
				case x+m.width <= avail+epsilon:
					push(seg, class, m)
				case m.width <= avail+epsilon:
					wrap()
					push(seg, class, m)
				default:
					l.warn(codebook.LayoutOverflow, f.RelPath, fmt.Sprintf("line %d: %d-character token broken across lines", number, len([]rune(seg))))
					if len(cur.runs) > 0 {
						wrap()
					}
					for i, part := range l.ms.split(seg, StyleRegular, size, avail) {
						if i > 0 {
							wrap()
						}
						push(part, class, l.measure(section, f.RelPath, part, StyleRegular, size))
					}
				}
			}
			if !newline {
				break
			}
			p.add(cur)
			number++
			cur = line{kind: lineContent, height: l.geo.lineH, size: size, number: number}
			x = 0
			text = rest
		}
	}
	if len(cur.runs) > 0 {
		p.add(cur)
	}
}
