// Package markdown renders a document model as Markdown with fenced code
// blocks.
//
// Sections are introduced by an explicit HTML anchor so table of contents
// links do not depend on a particular renderer's heading slugs. Each fence
// is longer than the longest backtick run in the block it encloses.
package markdown

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"pkt.systems/codebook"
	"pkt.systems/codebook/document"
)

// Renderer writes Markdown. Themes and highlighting do not apply; the fence
// info string carries the language for downstream highlighters.
type Renderer struct {
	cfg Config
}

// Config controls the Markdown renderer.
type Config struct {
	// Progress is told each time a section has been written.
	Progress codebook.SectionProgress
}

// New returns a Renderer.
func New(cfg Config) *Renderer {
	return &Renderer{cfg: cfg}
}

// Render writes doc as Markdown.
func (r *Renderer) Render(ctx context.Context, doc *document.Model, _ codebook.Theme, w io.Writer) ([]codebook.Warning, error) {
	if doc == nil {
		return nil, fmt.Errorf("markdown render: nil document")
	}
	var buf bytes.Buffer
	for i, s := range doc.Sections {
		if err := codebook.CheckContext(ctx); err != nil {
			return nil, err
		}
		if i > 0 {
			buf.WriteString("\n")
		}
		fmt.Fprintf(&buf, "<a id=\"%s\"></a>\n\n", s.Anchor)
		switch s.Kind {
		case document.TitleSection:
			fmt.Fprintf(&buf, "# %s\n\n", Escape(s.Title))
			fmt.Fprintf(&buf, "Generated %s\n\n", doc.GeneratedLabel())
			fmt.Fprintf(&buf, "%s\n", Escape(doc.Summary()))
			if doc.Author != "" {
				fmt.Fprintf(&buf, "\nAuthor: %s\n", Escape(doc.Author))
			}
		case document.TOCSection:
			fmt.Fprintf(&buf, "## %s\n\n", Escape(s.Title))
			for n, e := range s.Entries {
				fmt.Fprintf(&buf, "%d. [%s](#%s)\n", n+1, Escape(e.Title), e.Anchor)
			}
		case document.TreeSection:
			fmt.Fprintf(&buf, "## %s\n\n", Escape(s.Title))
			var lines []string
			if s.Tree != nil {
				lines = s.Tree.Lines()
			}
			writeFence(&buf, "text", strings.Join(lines, "\n"))
		case document.FileSection:
			f := s.File
			fmt.Fprintf(&buf, "## %s\n\n", Escape(f.RelPath))
			fmt.Fprintf(&buf, "*%s*\n\n", Escape(f.Summary()))
			if note := f.Placeholder(); note != "" {
				fmt.Fprintf(&buf, "*%s*\n", Escape(note))
				break
			}
			writeFence(&buf, infoString(f.Language), f.Text)
		}
		r.cfg.Progress.Report(i+1, len(doc.Sections))
	}
	if err := codebook.CheckContext(ctx); err != nil {
		return nil, err
	}
	if _, err := buf.WriteTo(w); err != nil {
		return nil, codebook.FatalIO("markdown output", err)
	}
	return nil, nil
}

// Fence returns the backtick fence for content: at least three backticks
// and one more than its longest backtick run.
func Fence(content string) string {
	longest, run := 0, 0
	for i := 0; i < len(content); i++ {
		if content[i] == '`' {
			run++
			longest = max(longest, run)
			continue
		}
		run = 0
	}
	return strings.Repeat("`", max(3, longest+1))
}

func writeFence(buf *bytes.Buffer, info, content string) {
	fence := Fence(content)
	buf.WriteString(fence)
	buf.WriteString(info)
	buf.WriteByte('\n')
	buf.WriteString(content)
	if content != "" && !strings.HasSuffix(content, "\n") {
		buf.WriteByte('\n')
	}
	buf.WriteString(fence)
	buf.WriteByte('\n')
}

func infoString(language string) string {
	return strings.Map(func(r rune) rune {
		if r == '`' || r == ' ' || r == '\t' || r == '\n' || r == '\r' {
			return -1
		}
		return r
	}, strings.ToLower(language))
}

var escaper = strings.NewReplacer(
	`\`, `\\`, "`", "\\`", `*`, `\*`, `_`, `\_`, `[`, `\[`, `]`, `\]`,
	`<`, `\<`, `>`, `\>`, `#`, `\#`, `|`, `\|`, "\r", "", "\n", " ",
)

// Escape makes s safe as inline Markdown text.
func Escape(s string) string {
	return escaper.Replace(s)
}
