// Package document holds the format-agnostic model every renderer consumes.
package document

import (
	"fmt"
	"path"
	"strings"
	"time"

	"pkt.systems/codebook"
)

// SectionKind identifies the role of a section.
type SectionKind uint8

const (
	TitleSection SectionKind = iota
	TOCSection
	TreeSection
	FileSection
)

func (k SectionKind) String() string {
	switch k {
	case TitleSection:
		return "title"
	case TOCSection:
		return "table-of-contents"
	case TreeSection:
		return "file-tree"
	case FileSection:
		return "file"
	default:
		return fmt.Sprintf("section(%d)", uint8(k))
	}
}

// File is an included file with its tokens.
type File struct {
	codebook.FileRecord
	Tokens []codebook.Token
	// Lines is the number of source lines in Text.
	Lines int
}

// Placeholder returns the note shown instead of content for binary or
// empty files, or "" when the file has content.
func (f *File) Placeholder() string {
	switch {
	case f.Binary:
		return fmt.Sprintf("[binary file: %s (%s)]", path.Base(f.RelPath), codebook.FormatSize(f.Size))
	case f.Text == "":
		return "(empty file)"
	default:
		return ""
	}
}

// Summary is the one-line description shown under a file heading.
func (f *File) Summary() string {
	lang := f.Language
	if lang == "" {
		lang = "text"
	}
	if f.Binary {
		return fmt.Sprintf("%s | %s", lang, codebook.FormatSize(f.Size))
	}
	return fmt.Sprintf("%s | %s | %s lines", lang, codebook.FormatSize(f.Size), codebook.FormatCount(f.Lines))
}

// SourceLines splits the tokens at newlines. Tokens spanning several lines
// are cut into one piece per line; the newlines themselves are dropped.
// The result has one entry per source line.
func (f *File) SourceLines() [][]codebook.Token {
	var out [][]codebook.Token
	var cur []codebook.Token
	for _, tok := range f.Tokens {
		text := tok.Text
		for {
			before, after, found := strings.Cut(text, "\n")
			if before != "" {
				cur = append(cur, codebook.Token{Text: before, Class: tok.Class})
			}
			if !found {
				break
			}
			out = append(out, cur)
			cur = nil
			text = after
		}
	}
	if len(cur) > 0 {
		out = append(out, cur)
	}
	return out
}

// TOCEntry points at a file section. Page stays zero until a paginated
// renderer resolves it.
type TOCEntry struct {
	Title   string
	Anchor  string
	Section int
	Page    int
}

// Section is one titled unit of the document.
type Section struct {
	Kind   SectionKind
	Title  string
	Anchor string

	Entries []TOCEntry
	Tree    *TreeNode
	File    *File
}

// Stats summarize what went into the document.
type Stats struct {
	Files   int
	Skipped int
	Bytes   int64
}

// Model is the complete document. It is not modified after Build.
type Model struct {
	Title     string
	Author    string
	Language  string
	Generated time.Time
	Options   codebook.Options
	Sections  []Section
	Stats     Stats
}

// TOC returns the index of the table of contents section, or -1.
func (m *Model) TOC() int {
	for i, s := range m.Sections {
		if s.Kind == TOCSection {
			return i
		}
	}
	return -1
}

// ResolveTOC returns a copy of the TOC entries with Page set from
// firstPage, which maps section indices to 1-based page numbers.
func (m *Model) ResolveTOC(firstPage func(section int) int) []TOCEntry {
	idx := m.TOC()
	if idx < 0 {
		return nil
	}
	src := m.Sections[idx].Entries
	out := make([]TOCEntry, len(src))
	for i, e := range src {
		e.Page = firstPage(e.Section)
		out[i] = e
	}
	return out
}

// Files returns the file sections in reading order.
func (m *Model) Files() []*File {
	var out []*File
	for _, s := range m.Sections {
		if s.Kind == FileSection {
			out = append(out, s.File)
		}
	}
	return out
}

// GeneratedLabel formats the generation time for title pages.
func (m *Model) GeneratedLabel() string {
	return m.Generated.UTC().Format("2006-01-02 15:04:05 UTC")
}

// Summary is the one-line description shown under the title.
func (m *Model) Summary() string {
	s := fmt.Sprintf("%s files, %s", codebook.FormatCount(m.Stats.Files), codebook.FormatSize(m.Stats.Bytes))
	if m.Stats.Skipped > 0 {
		s += fmt.Sprintf(", %s skipped", codebook.FormatCount(m.Stats.Skipped))
	}
	return s
}

func countLines(text string) int {
	if text == "" {
		return 0
	}
	n := strings.Count(text, "\n")
	if !strings.HasSuffix(text, "\n") {
		n++
	}
	return n
}
