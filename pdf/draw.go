package pdf

import (
	"context"
	"strconv"
	"strings"

	"github.com/jung-kurt/gofpdf"

	"pkt.systems/codebook"
	"pkt.systems/codebook/document"
)

type drawer struct {
	pdf    *gofpdf.Fpdf
	geo    geometry
	ms     *measurer
	pal    codebook.Palette
	opts   codebook.Options
	links  []int
	family string

	progress codebook.SectionProgress
}

func (d *drawer) color(c codebook.RGB) {
	d.pdf.SetTextColor(int(c.R), int(c.G), int(c.B))
	d.pdf.SetFillColor(int(c.R), int(c.G), int(c.B))
}

func (d *drawer) runColor(r run) codebook.RGB {
	switch r.role {
	case roleHeader:
		return d.pal.Header
	case roleMuted:
		return d.pal.LineNumber
	default:
		return d.pal.Color(r.class)
	}
}

// text sets font and colour and places draw at (x, baseline).
func (d *drawer) text(x, baseline float64, draw string, style Style, size float64, c codebook.RGB) {
	if draw == "" {
		return
	}
	d.pdf.SetFont(d.family, style.gofpdf(), size)
	d.color(c)
	d.pdf.Text(x, baseline, draw)
}

// drawPages emits the laid out pages. Every page starts with the
// background fill when the palette has one.
func (d *drawer) drawPages(ctx context.Context, doc *document.Model, lay *layout) error {
	d.links = make([]int, len(doc.Sections))
	for i := range d.links {
		d.links[i] = d.pdf.AddLink()
	}
	current, done := -1, 0
	for n, pg := range lay.pages {
		if pg.section != current {
			if err := codebook.CheckContext(ctx); err != nil {
				return err
			}
		}
		d.pdf.AddPage()
		if d.pal.HasBackground() {
			bg := d.pal.Background
			d.pdf.SetFillColor(int(bg.R), int(bg.G), int(bg.B))
			d.pdf.Rect(0, 0, d.geo.pageW, d.geo.pageH, "F")
		}
		if pg.section != current {
			if current >= 0 {
				done++
				d.progress.Report(done, len(doc.Sections))
			}
			current = pg.section
			s := doc.Sections[current]
			d.pdf.SetLink(d.links[current], 0, -1)
			d.pdf.Bookmark(d.ms.measure(s.Title, StyleRegular, d.geo.size).draw, 0, 0)
		}
		for _, ln := range pg.lines {
			d.line(ln)
		}
		if d.opts.PageNumbers {
			d.footer(n + 1)
		}
	}
	if current >= 0 {
		d.progress.Report(done+1, len(doc.Sections))
	}
	return nil
}

func (d *drawer) line(ln line) {
	g := d.geo
	top := g.margin + ln.y
	baseline := top + (ln.height-ln.size)/2 + 0.8*ln.size
	left := g.margin
	switch {
	case ln.kind == lineContent && d.opts.LineNumbers:
		if ln.number > 0 {
			num := d.ms.measure(strconv.Itoa(ln.number), StyleRegular, ln.size)
			d.text(left+g.gutterW-num.width, baseline, num.draw, StyleRegular, ln.size, d.pal.LineNumber)
		}
		left += g.gutterW + g.gutterGap
	case ln.center:
		left += (g.contentW - ln.width()) / 2
	}
	for _, r := range ln.runs {
		d.text(left+r.x, baseline, r.draw, r.style, ln.size, d.runColor(r))
	}
	if ln.entry != nil {
		d.entry(ln, left, top, baseline)
	}
}

// entry completes a table of contents line with dot leaders and the
// right-aligned page number, and makes the whole line a link.
func (d *drawer) entry(ln line, left, top, baseline float64) {
	g := d.geo
	e := ln.entry
	numX := left + g.contentW - e.width
	dot := d.ms.measure(".", StyleRegular, ln.size).width
	start := left + ln.width() + dot
	if count := int((numX - dot - start) / dot); count > 0 {
		d.text(start, baseline, strings.Repeat(".", count), StyleRegular, ln.size, d.pal.LineNumber)
	}
	d.text(numX, baseline, e.number, StyleRegular, ln.size, d.pal.Foreground)
	d.pdf.Link(left, top, g.contentW, ln.height, d.links[e.section])
}

func (d *drawer) footer(n int) {
	g := d.geo
	size := g.size * 0.9
	label := d.ms.measure("Page "+strconv.Itoa(n), StyleRegular, size)
	top := g.margin + g.bodyH
	baseline := top + (g.footerH-size)/2 + 0.8*size
	d.text((g.pageW-label.width)/2, baseline, label.draw, StyleRegular, size, d.pal.LineNumber)
}
