package document

import (
	"strings"
	"testing"
	"time"

	"pkt.systems/codebook"
)

func record(rel, text string) codebook.FileRecord {
	return codebook.FileRecord{Path: "/repo/" + rel, RelPath: rel, Size: int64(len(text)), Text: text}
}

func plain(text string) []codebook.Token {
	if text == "" {
		return nil
	}
	return []codebook.Token{{Text: text}}
}

func buildSample(opts codebook.Options) *Model {
	b := NewBuilder(Meta{Title: "demo", Generated: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}, opts)
	for _, f := range []struct{ rel, text string }{
		{"cmd/demo/main.go", "package main\n"},
		{"README.md", "# demo\n"},
		{"cmd/demo/flags.go", "package main\n\nvar x = 1"},
		{"README-md", "dup anchor"},
	} {
		b.Add(record(f.rel, f.text), plain(f.text))
	}
	b.Add(codebook.FileRecord{RelPath: "assets/logo.png", Size: 2048, Binary: true}, nil)
	b.Skipped(2)
	return b.Build()
}

func TestBuildSectionOrder(t *testing.T) {
	m := buildSample(codebook.DefaultOptions())
	var kinds []string
	for _, s := range m.Sections {
		kinds = append(kinds, s.Kind.String())
	}
	want := "title,table-of-contents,file-tree,file,file,file,file,file"
	if got := strings.Join(kinds, ","); got != want {
		t.Fatalf("unexpected section order:\n got %s\nwant %s", got, want)
	}
	files := m.Files()
	if len(files) != 5 || files[0].RelPath != "cmd/demo/main.go" || files[4].RelPath != "assets/logo.png" {
		t.Fatalf("file sections not in insertion order")
	}
	if m.Stats.Files != 5 || m.Stats.Skipped != 2 {
		t.Fatalf("unexpected stats %+v", m.Stats)
	}
	if !strings.Contains(m.Summary(), "2 skipped") {
		t.Fatalf("expected summary to mention skipped files: %q", m.Summary())
	}
	if m.GeneratedLabel() != "2024-05-01 12:00:00 UTC" {
		t.Fatalf("unexpected generated label %q", m.GeneratedLabel())
	}
}

func TestBuildOptionalSections(t *testing.T) {
	opts := codebook.DefaultOptions()
	opts.IncludeTOC = false
	opts.IncludeTree = false
	m := buildSample(opts)
	if m.TOC() != -1 {
		t.Fatalf("expected no TOC section")
	}
	if m.Sections[1].Kind != FileSection {
		t.Fatalf("expected files right after the title, got %s", m.Sections[1].Kind)
	}
	if m.ResolveTOC(func(int) int { return 1 }) != nil {
		t.Fatalf("expected nil entries without TOC")
	}
}

func TestTOCEntriesAndResolution(t *testing.T) {
	m := buildSample(codebook.DefaultOptions())
	toc := m.Sections[m.TOC()]
	if len(toc.Entries) != 5 {
		t.Fatalf("expected 5 TOC entries, got %d", len(toc.Entries))
	}
	seen := map[string]bool{}
	for _, e := range toc.Entries {
		if e.Page != 0 {
			t.Fatalf("expected placeholder page, got %d", e.Page)
		}
		sec := m.Sections[e.Section]
		if sec.Kind != FileSection || sec.Anchor != e.Anchor || sec.Title != e.Title {
			t.Fatalf("entry %+v does not point at its section", e)
		}
		if seen[e.Anchor] {
			t.Fatalf("duplicate anchor %q", e.Anchor)
		}
		seen[e.Anchor] = true
	}
	resolved := m.ResolveTOC(func(section int) int { return section * 10 })
	for i, e := range resolved {
		if e.Page != e.Section*10 {
			t.Fatalf("entry %d not resolved: %+v", i, e)
		}
	}
	if m.Sections[m.TOC()].Entries[0].Page != 0 {
		t.Fatalf("ResolveTOC must not modify the model")
	}
}

func TestAnchor(t *testing.T) {
	cases := map[string]string{
		"src/main.rs":       "src-main-rs",
		`win\Path\File.TXT`: "win-path-file-txt",
		".env":              "env",
		"ünïcode/名前.go":     "ncode--go",
		"///":               "file",
		"a_b-c.d":           "a_b-c-d",
	}
	for in, want := range cases {
		if got := Anchor(in); got != want {
			t.Fatalf("Anchor(%q): got %q want %q", in, got, want)
		}
	}
}

func TestAnchorsAreUnique(t *testing.T) {
	b := NewBuilder(Meta{}, codebook.DefaultOptions())
	b.Add(record("a.go", "x"), nil)
	b.Add(record("a-go", "y"), nil)
	b.Add(record("a/go", "z"), nil)
	b.Add(record("title", "t"), nil)
	m := b.Build()
	var anchors []string
	for _, f := range m.Sections[m.TOC()].Entries {
		anchors = append(anchors, f.Anchor)
	}
	if got := strings.Join(anchors, " "); got != "a-go a-go-2 a-go-3 title-2" {
		t.Fatalf("unexpected anchors %q", got)
	}
	if m.Title != "Repository" || m.Language != "en" {
		t.Fatalf("expected defaults for empty meta, got %q %q", m.Title, m.Language)
	}
}

func TestTreeLines(t *testing.T) {
	m := buildSample(codebook.DefaultOptions())
	var tree *TreeNode
	for _, s := range m.Sections {
		if s.Kind == TreeSection {
			tree = s.Tree
		}
	}
	want := []string{
		"demo/",
		"|-- cmd/",
		"|   `-- demo/",
		"|       |-- main.go",
		"|       `-- flags.go",
		"|-- README.md",
		"|-- README-md",
		"`-- assets/",
		"    `-- logo.png",
	}
	got := tree.Lines()
	if strings.Join(got, "\n") != strings.Join(want, "\n") {
		t.Fatalf("unexpected tree:\n%s", strings.Join(got, "\n"))
	}
	var depths []int
	tree.Walk(func(_ *TreeNode, depth int) { depths = append(depths, depth) })
	if len(depths) != 8 || depths[0] != 1 || depths[2] != 3 {
		t.Fatalf("unexpected walk depths %v", depths)
	}
}

func TestPlaceholderAndLines(t *testing.T) {
	m := buildSample(codebook.DefaultOptions())
	files := m.Files()
	if files[0].Placeholder() != "" || files[0].Lines != 1 {
		t.Fatalf("unexpected text file metadata: %q %d", files[0].Placeholder(), files[0].Lines)
	}
	if files[2].Lines != 3 {
		t.Fatalf("expected 3 lines for unterminated file, got %d", files[2].Lines)
	}
	if got := files[4].Placeholder(); got != "[binary file: logo.png (2.0 KiB)]" {
		t.Fatalf("unexpected binary placeholder %q", got)
	}
	empty := &File{}
	if empty.Placeholder() != "(empty file)" {
		t.Fatalf("unexpected empty placeholder %q", empty.Placeholder())
	}
}

func TestFileSummary(t *testing.T) {
	files := buildSample(codebook.DefaultOptions()).Files()
	files[0].Language = "go"
	if got := files[0].Summary(); got != "go | 13 B | 1 lines" {
		t.Fatalf("unexpected summary %q", got)
	}
	if got := files[4].Summary(); got != "text | 2.0 KiB" {
		t.Fatalf("unexpected binary summary %q", got)
	}
}

func TestSourceLines(t *testing.T) {
	f := &File{Tokens: []codebook.Token{
		{Text: "/* a\nb */", Class: codebook.ClassComment},
		{Text: "\n\n"},
		{Text: "x", Class: codebook.ClassKeyword},
		{Text: " = 1"},
	}}
	lines := f.SourceLines()
	if len(lines) != 4 {
		t.Fatalf("expected 4 lines, got %d: %v", len(lines), lines)
	}
	if len(lines[0]) != 1 || lines[0][0].Text != "/* a" || lines[1][0].Text != "b */" || lines[1][0].Class != codebook.ClassComment {
		t.Fatalf("multi-line token not split per line: %v", lines[:2])
	}
	if len(lines[2]) != 0 {
		t.Fatalf("expected an empty third line, got %v", lines[2])
	}
	if codebook.JoinTokens(lines[3]) != "x = 1" {
		t.Fatalf("unexpected last line %v", lines[3])
	}
}
