package pdf

import (
	"context"
	"fmt"
	"strconv"

	"pkt.systems/codebook"
	"pkt.systems/codebook/document"
)

var (
	styleTitle   = textStyle{kind: lineHeading, style: StyleBold, scale: titleScale, role: roleHeader, center: true}
	styleNote    = textStyle{kind: lineText, style: StyleRegular, scale: 1, role: roleMuted, center: true}
	styleSection = textStyle{kind: lineHeading, style: StyleBold, scale: sectionScale, role: roleHeader}
	styleFile    = textStyle{kind: lineHeading, style: StyleBold, scale: fileScale, role: roleHeader}
	styleMeta    = textStyle{kind: lineText, style: StyleRegular, scale: 1, role: roleMuted}
	styleTree    = textStyle{kind: lineText, style: StyleRegular, scale: 1, role: roleToken}
)

// sectionPages lays out every section kind except the table of contents,
// which depends on the result.
func (l *layouter) sectionPages(i int) []page {
	s := l.doc.Sections[i]
	p := &pager{geo: &l.geo, section: i}
	switch s.Kind {
	case document.TitleSection:
		p.space(l.geo.bodyH / (3 * l.geo.lineH))
		l.wrapped(p, i, s.Title, s.Title, styleTitle)
		p.space(1)
		l.wrapped(p, i, s.Title, "Generated "+l.doc.GeneratedLabel(), styleNote)
		l.wrapped(p, i, s.Title, l.doc.Summary(), styleNote)
		if l.doc.Author != "" {
			l.wrapped(p, i, s.Title, "Author: "+l.doc.Author, styleNote)
		}
	case document.TreeSection:
		l.wrapped(p, i, s.Title, s.Title, styleSection)
		p.space(1)
		if s.Tree != nil {
			for _, text := range s.Tree.Lines() {
				l.wrapped(p, i, s.Title, text, styleTree)
			}
		}
	case document.FileSection:
		f := s.File
		l.wrapped(p, i, f.RelPath, f.RelPath, styleFile)
		l.wrapped(p, i, f.RelPath, f.Summary(), styleMeta)
		p.space(1)
		if note := f.Placeholder(); note != "" {
			l.wrapped(p, i, f.RelPath, note, styleMeta)
			break
		}
		l.content(p, i, f)
	}
	return p.finish()
}

// tocPages lays out the table of contents for the given entries. Each
// entry ends with its page number right-aligned; long titles wrap so that
// the number always fits.
func (l *layouter) tocPages(i int, entries []document.TOCEntry) []page {
	s := l.doc.Sections[i]
	p := &pager{geo: &l.geo, section: i}
	l.wrapped(p, i, s.Title, s.Title, styleSection)
	p.space(1)
	size := l.geo.size
	dot := l.ms.measure(".", StyleRegular, size).width
	for _, e := range entries {
		num := l.ms.measure(strconv.Itoa(e.Page), StyleRegular, size)
		room := l.geo.contentW - num.width - 3*dot
		parts := []string{e.Title}
		if m := l.ms.measure(e.Title, StyleRegular, size); m.width > room+epsilon {
			parts = l.ms.split(e.Title, StyleRegular, size, room)
		}
		for j, part := range parts {
			m := l.measure(i, e.Title, part, StyleRegular, size)
			ln := line{
				kind:   lineEntry,
				height: l.geo.lineH,
				size:   size,
				runs:   []run{{text: part, draw: m.draw, class: codebook.ClassPlain, style: StyleRegular, width: m.width}},
			}
			if j == len(parts)-1 {
				ln.entry = &entryRef{section: e.Section, number: num.draw, width: num.width}
			}
			p.add(ln)
		}
	}
	return p.finish()
}

// layout is the positioned document.
type layout struct {
	geo   geometry
	pages []page
	// starts holds the 1-based first page of every section.
	starts []int
	toc    []document.TOCEntry
	passes int
}

func startPages(per [][]page) []int {
	starts := make([]int, len(per))
	next := 1
	for i, pages := range per {
		starts[i] = next
		next += len(pages)
	}
	return starts
}

// run lays out all sections, then resolves the table of contents against
// the page index and re-lays it until its own page count is stable. When
// TOCMaxPasses is reached first, the last layout is kept and a
// LayoutOverflow warning notes that printed page numbers may be stale.
// Links and outline entries always target the final section pages.
func (l *layouter) run(ctx context.Context) (*layout, error) {
	per := make([][]page, len(l.doc.Sections))
	tocIdx := l.doc.TOC()
	for i := range l.doc.Sections {
		if err := codebook.CheckContext(ctx); err != nil {
			return nil, err
		}
		if i == tocIdx {
			per[i] = l.tocPages(i, l.doc.Sections[i].Entries)
			continue
		}
		per[i] = l.sectionPages(i)
	}
	out := &layout{geo: l.geo, passes: 1}
	if tocIdx >= 0 {
		for {
			if err := codebook.CheckContext(ctx); err != nil {
				return nil, err
			}
			starts := startPages(per)
			entries := l.doc.ResolveTOC(func(section int) int { return starts[section] })
			relaid := l.tocPages(tocIdx, entries)
			stable := len(relaid) == len(per[tocIdx])
			per[tocIdx] = relaid
			out.passes++
			if stable {
				break
			}
			if out.passes >= l.cfg.TOCMaxPasses {
				l.warn(codebook.LayoutOverflow, l.doc.Sections[tocIdx].Title,
					fmt.Sprintf("table of contents did not settle after %d passes, page numbers may be off", out.passes))
				break
			}
		}
	}
	out.starts = startPages(per)
	if tocIdx >= 0 {
		out.toc = l.doc.ResolveTOC(func(section int) int { return out.starts[section] })
	}
	for _, pages := range per {
		out.pages = append(out.pages, pages...)
	}
	return out, nil
}
