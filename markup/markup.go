// Package markup renders a document model as one self-contained HTML page.
//
// The page carries its own stylesheet and every highlighted token an
// inline colour, so it displays the same when saved or mailed. Sections get
// the model's anchors as ids and the table of contents links to them.
package markup

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"

	"pkt.systems/codebook"
	"pkt.systems/codebook/document"
	"pkt.systems/codebook/internal/xhtml"
)

// Config controls page presentation.
type Config struct {
	// FontFamily is the CSS font stack of code and the file tree.
	FontFamily string
	// TabWidth is the CSS tab-size of code cells.
	TabWidth int
	// MaxWidth bounds the width of the page body, in CSS units.
	MaxWidth string
	// Progress is told each time a section has been built.
	Progress codebook.SectionProgress
}

// DefaultConfig returns the defaults used for zero fields.
func DefaultConfig() Config {
	return Config{
		FontFamily: `ui-monospace, "SFMono-Regular", Menlo, Consolas, monospace`,
		TabWidth:   4,
		MaxWidth:   "960px",
	}
}

func applyConfig(base Config, override Config) Config {
	if override.FontFamily != "" {
		base.FontFamily = override.FontFamily
	}
	if override.TabWidth > 0 {
		base.TabWidth = override.TabWidth
	}
	if override.MaxWidth != "" {
		base.MaxWidth = override.MaxWidth
	}
	if override.Progress != nil {
		base.Progress = override.Progress
	}
	return base
}

// Renderer writes HTML pages.
type Renderer struct {
	cfg Config
}

// New returns a Renderer with cfg merged over DefaultConfig.
func New(cfg Config) *Renderer {
	return &Renderer{cfg: applyConfig(DefaultConfig(), cfg)}
}

// Render writes doc as HTML. Nothing is written when ctx is cancelled
// before the page is complete.
func (r *Renderer) Render(ctx context.Context, doc *document.Model, theme codebook.Theme, w io.Writer) ([]codebook.Warning, error) {
	if doc == nil {
		return nil, fmt.Errorf("html render: nil document")
	}
	if theme == nil {
		theme = codebook.DefaultTheme()
	}
	pal := theme.Palette()
	b := xhtml.Builder{Palette: pal, Options: doc.Options, TabWidth: r.cfg.TabWidth}

	root := &html.Node{Type: html.DocumentNode}
	root.AppendChild(&html.Node{Type: html.DoctypeNode, Data: "html"})
	page := xhtml.Element("html", "lang", doc.Language)
	head := xhtml.Append(xhtml.Element("head"),
		xhtml.Element("meta", "charset", "utf-8"),
		xhtml.Element("meta", "name", "generator", "content", "codebook"),
		xhtml.Element("meta", "name", "viewport", "content", "width=device-width, initial-scale=1"),
		xhtml.TextElement("title", doc.Title),
		xhtml.TextElement("style", r.stylesheet(pal)),
	)
	if doc.Author != "" {
		xhtml.Append(head, xhtml.Element("meta", "name", "author", "content", doc.Author))
	}
	body := xhtml.Element("body", "style", b.PageStyle())
	content := xhtml.Element("main")
	for i := range doc.Sections {
		if err := codebook.CheckContext(ctx); err != nil {
			return nil, err
		}
		xhtml.Append(content, b.Section(doc, i))
		r.cfg.Progress.Report(i+1, len(doc.Sections))
	}
	root.AppendChild(xhtml.Append(page, head, xhtml.Append(body, content)))

	var buf bytes.Buffer
	if err := html.Render(&buf, root); err != nil {
		return nil, fmt.Errorf("html render: %w", err)
	}
	buf.WriteByte('\n')
	if err := codebook.CheckContext(ctx); err != nil {
		return nil, err
	}
	if _, err := buf.WriteTo(w); err != nil {
		return nil, codebook.FatalIO("html output", err)
	}
	return nil, nil
}

func (r *Renderer) stylesheet(pal codebook.Palette) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "html{background:%s}", pal.Background.Hex())
	fmt.Fprintf(&sb, "body{margin:0 auto;padding:2em 1em;max-width:%s;font-family:system-ui,sans-serif}", r.cfg.MaxWidth)
	fmt.Fprintf(&sb, "pre,table.code{font-family:%s;font-size:0.85em}", r.cfg.FontFamily)
	sb.WriteString("section,nav{margin-bottom:3em}")
	sb.WriteString("section.title{padding:4em 0}")
	sb.WriteString("table.code{width:100%}")
	fmt.Fprintf(&sb, "a{text-decoration:none}a:hover{text-decoration:underline;color:%s}", pal.Header.Hex())
	sb.WriteString("@media print{section.file,section.tree,nav.toc{break-before:page}}")
	return sb.String()
}
