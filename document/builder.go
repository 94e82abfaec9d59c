package document

import (
	"strconv"
	"strings"
	"time"
	"unicode"

	"pkt.systems/codebook"
)

// Meta describes the document as a whole.
type Meta struct {
	Title     string
	Author    string
	Language  string
	Generated time.Time
}

// Builder assembles a Model from files delivered in reading order.
type Builder struct {
	meta    Meta
	opts    codebook.Options
	files   []*File
	tree    *TreeNode
	anchors map[string]int
	skipped int
	bytes   int64
}

// NewBuilder returns an empty builder. An empty title becomes "Repository"
// and an empty language "en".
func NewBuilder(meta Meta, opts codebook.Options) *Builder {
	if strings.TrimSpace(meta.Title) == "" {
		meta.Title = "Repository"
	}
	if meta.Language == "" {
		meta.Language = "en"
	}
	b := &Builder{
		meta:    meta,
		opts:    opts,
		tree:    newTree(meta.Title),
		anchors: map[string]int{},
	}
	for _, reserved := range []string{"title", "table-of-contents", "file-tree"} {
		b.anchors[reserved] = 1
	}
	return b
}

// Add appends a file. Calls must follow pipeline order.
func (b *Builder) Add(rec codebook.FileRecord, tokens []codebook.Token) {
	f := &File{FileRecord: rec, Tokens: tokens, Lines: countLines(rec.Text)}
	b.files = append(b.files, f)
	b.tree.insert(rec.RelPath)
	b.bytes += rec.Size
}

// Skipped records files left out of the document.
func (b *Builder) Skipped(n int) {
	b.skipped += n
}

// Build returns the finished model.
func (b *Builder) Build() *Model {
	m := &Model{
		Title:     b.meta.Title,
		Author:    b.meta.Author,
		Language:  b.meta.Language,
		Generated: b.meta.Generated,
		Options:   b.opts,
		Stats:     Stats{Files: len(b.files), Skipped: b.skipped, Bytes: b.bytes},
	}
	m.Sections = append(m.Sections, Section{Kind: TitleSection, Title: b.meta.Title, Anchor: "title"})
	toc := -1
	if b.opts.IncludeTOC {
		toc = len(m.Sections)
		m.Sections = append(m.Sections, Section{Kind: TOCSection, Title: "Table of Contents", Anchor: "table-of-contents"})
	}
	if b.opts.IncludeTree {
		m.Sections = append(m.Sections, Section{Kind: TreeSection, Title: "File Tree", Anchor: "file-tree", Tree: b.tree})
	}
	for _, f := range b.files {
		idx := len(m.Sections)
		anchor := b.uniqueAnchor(Anchor(f.RelPath))
		m.Sections = append(m.Sections, Section{Kind: FileSection, Title: f.RelPath, Anchor: anchor, File: f})
		if toc >= 0 {
			m.Sections[toc].Entries = append(m.Sections[toc].Entries, TOCEntry{
				Title:   f.RelPath,
				Anchor:  anchor,
				Section: idx,
			})
		}
	}
	return m
}

func (b *Builder) uniqueAnchor(base string) string {
	n := b.anchors[base]
	b.anchors[base] = n + 1
	if n == 0 {
		return base
	}
	for {
		n++
		candidate := base + "-" + strconv.Itoa(n)
		if b.anchors[candidate] == 0 {
			b.anchors[candidate] = 1
			b.anchors[base] = n
			return candidate
		}
	}
}

// Anchor derives a link target from a relative path: separators and dots
// become hyphens, letters are lower-cased, anything else unsafe is dropped.
func Anchor(relPath string) string {
	var sb strings.Builder
	for _, r := range relPath {
		switch {
		case r == '/' || r == '\\' || r == '.' || r == ' ':
			sb.WriteByte('-')
		case r == '-' || r == '_':
			sb.WriteRune(r)
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)):
			sb.WriteRune(unicode.ToLower(r))
		}
	}
	out := strings.Trim(sb.String(), "-")
	if out == "" {
		return "file"
	}
	return out
}
