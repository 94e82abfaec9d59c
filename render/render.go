// Package render selects a document renderer by output format.
package render

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	"pkt.systems/codebook"
	"pkt.systems/codebook/document"
	"pkt.systems/codebook/epub"
	"pkt.systems/codebook/markdown"
	"pkt.systems/codebook/markup"
	"pkt.systems/codebook/pdf"
)

// Format is an output encoding.
type Format uint8

const (
	// Paginated is PDF with fixed pages.
	Paginated Format = iota + 1
	// Reflowable is an EPUB 3 package.
	Reflowable
	// Markup is a single self-contained HTML page.
	Markup
	// StructuredText is Markdown with fenced code blocks.
	StructuredText
)

type formatInfo struct {
	tag       string
	ext       string
	mediaType string
	aliases   []string
}

var formats = map[Format]formatInfo{
	Paginated:      {tag: "paginated", ext: ".pdf", mediaType: "application/pdf", aliases: []string{"pdf"}},
	Reflowable:     {tag: "reflowable", ext: ".epub", mediaType: "application/epub+zip", aliases: []string{"epub"}},
	Markup:         {tag: "markup", ext: ".html", mediaType: "text/html; charset=utf-8", aliases: []string{"html", "htm"}},
	StructuredText: {tag: "structured-text", ext: ".md", mediaType: "text/markdown; charset=utf-8", aliases: []string{"md", "markdown"}},
}

func (f Format) String() string {
	if info, ok := formats[f]; ok {
		return info.tag
	}
	return fmt.Sprintf("format(%d)", uint8(f))
}

// Extension returns the file extension, including the dot.
func (f Format) Extension() string {
	return formats[f].ext
}

// MediaType returns the MIME type of the encoding.
func (f Format) MediaType() string {
	return formats[f].mediaType
}

// Binary reports whether the encoding is not text.
func (f Format) Binary() bool {
	return f == Paginated || f == Reflowable
}

// ParseFormat accepts a format tag or one of its aliases, in any case.
func ParseFormat(s string) (Format, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.TrimPrefix(s, ".")
	for f, info := range formats {
		if s == info.tag {
			return f, nil
		}
		for _, a := range info.aliases {
			if s == a {
				return f, nil
			}
		}
	}
	return 0, fmt.Errorf("unknown format %q (available: %s)", s, strings.Join(Tags(), ", "))
}

// Formats returns every format in declaration order.
func Formats() []Format {
	return []Format{Paginated, Reflowable, Markup, StructuredText}
}

// Tags returns the sorted format tags.
func Tags() []string {
	out := make([]string, 0, len(formats))
	for _, info := range formats {
		out = append(out, info.tag)
	}
	sort.Strings(out)
	return out
}

// Renderer turns a document model into one encoded artifact. A renderer
// is used by one goroutine at a time and returns the warnings raised while
// rendering.
type Renderer interface {
	Render(ctx context.Context, doc *document.Model, theme codebook.Theme, w io.Writer) ([]codebook.Warning, error)
}

// Config carries per-format settings. Zero values mean defaults.
type Config struct {
	PDF      pdf.Config
	EPUB     epub.Config
	Markup   markup.Config
	Markdown markdown.Config
	// Progress is handed to whichever renderer is selected, unless its own
	// config already sets one.
	Progress codebook.SectionProgress
}

// New returns the renderer for f.
func New(f Format, cfg Config) (Renderer, error) {
	switch f {
	case Paginated:
		if cfg.PDF.Progress == nil {
			cfg.PDF.Progress = cfg.Progress
		}
		return pdf.New(cfg.PDF), nil
	case Reflowable:
		if cfg.EPUB.Progress == nil {
			cfg.EPUB.Progress = cfg.Progress
		}
		return epub.New(cfg.EPUB), nil
	case Markup:
		if cfg.Markup.Progress == nil {
			cfg.Markup.Progress = cfg.Progress
		}
		return markup.New(cfg.Markup), nil
	case StructuredText:
		if cfg.Markdown.Progress == nil {
			cfg.Markdown.Progress = cfg.Progress
		}
		return markdown.New(cfg.Markdown), nil
	default:
		return nil, fmt.Errorf("render: unsupported format %s", f)
	}
}
