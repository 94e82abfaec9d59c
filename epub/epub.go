// Package epub renders a document model as an EPUB 3 package.
//
// Every model section becomes one XHTML content document named after its
// anchor, and the package navigation lists them in reading order. Styles
// are inline, so readers that ignore stylesheets still show the theme.
//
// Output is a function of the model and theme: the package identifier and
// the modification stamp both derive from the model's generation time.
package epub

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"

	goepub "github.com/go-shiori/go-epub"
	"github.com/google/uuid"
	"golang.org/x/net/html"

	"pkt.systems/codebook"
	"pkt.systems/codebook/document"
	"pkt.systems/codebook/internal/xhtml"
)

// Config controls package metadata and presentation.
type Config struct {
	// Description becomes the package description. Empty uses the document
	// summary.
	Description string
	// TabWidth is the CSS tab-size of code cells.
	TabWidth int
	// Progress is told each time a section has been added.
	Progress codebook.SectionProgress
}

// DefaultConfig returns the defaults used for zero fields.
func DefaultConfig() Config {
	return Config{TabWidth: 4}
}

func applyConfig(base Config, override Config) Config {
	if override.Description != "" {
		base.Description = override.Description
	}
	if override.TabWidth > 0 {
		base.TabWidth = override.TabWidth
	}
	if override.Progress != nil {
		base.Progress = override.Progress
	}
	return base
}

// Renderer writes EPUB packages.
type Renderer struct {
	cfg Config
}

// New returns a Renderer with cfg merged over DefaultConfig.
func New(cfg Config) *Renderer {
	return &Renderer{cfg: applyConfig(DefaultConfig(), cfg)}
}

// Identifier is the package identifier of doc: a name-based UUID of the
// title and generation time, so rebuilding the same snapshot keeps it.
func Identifier(doc *document.Model) string {
	name := doc.Title + "\x00" + doc.Generated.UTC().Format("2006-01-02T15:04:05.000000000Z")
	return "urn:uuid:" + uuid.NewSHA1(uuid.NameSpaceURL, []byte(name)).String()
}

// SectionFile is the content document name of a section anchor.
func SectionFile(anchor string) string {
	return anchor + ".xhtml"
}

// Render writes doc as an EPUB package.
func (r *Renderer) Render(ctx context.Context, doc *document.Model, theme codebook.Theme, w io.Writer) ([]codebook.Warning, error) {
	if doc == nil {
		return nil, fmt.Errorf("epub render: nil document")
	}
	if theme == nil {
		theme = codebook.DefaultTheme()
	}
	book, err := goepub.NewEpub(xhtml.Clean(doc.Title))
	if err != nil {
		return nil, fmt.Errorf("epub render: %w", err)
	}
	book.SetIdentifier(Identifier(doc))
	book.SetLang(doc.Language)
	if doc.Author != "" {
		book.SetAuthor(xhtml.Clean(doc.Author))
	}
	desc := r.cfg.Description
	if desc == "" {
		desc = doc.Summary()
	}
	book.SetDescription(xhtml.Clean(desc))

	b := xhtml.Builder{
		Palette:  theme.Palette(),
		Options:  doc.Options,
		TabWidth: r.cfg.TabWidth,
		Link:     func(anchor string) string { return SectionFile(anchor) + "#" + anchor },
	}
	for i, s := range doc.Sections {
		if err := codebook.CheckContext(ctx); err != nil {
			return nil, err
		}
		body, err := sectionBody(b, doc, i)
		if err != nil {
			return nil, fmt.Errorf("epub render: %s: %w", s.Title, err)
		}
		if _, err := book.AddSection(body, xhtml.Clean(s.Title), SectionFile(s.Anchor), ""); err != nil {
			return nil, fmt.Errorf("epub render: %s: %w", s.Title, err)
		}
		r.cfg.Progress.Report(i+1, len(doc.Sections))
	}
	if err := codebook.CheckContext(ctx); err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if _, err := book.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("epub render: %w", err)
	}
	out, err := pinModified(buf.Bytes(), doc.Generated)
	if err != nil {
		return nil, fmt.Errorf("epub render: %w", err)
	}
	if _, err := w.Write(out); err != nil {
		return nil, codebook.FatalIO("epub output", err)
	}
	return nil, nil
}

func sectionBody(b xhtml.Builder, doc *document.Model, i int) (string, error) {
	page := xhtml.Element("div", "class", "page", "style", b.PageStyle()+";padding:1em")
	xhtml.Append(page, b.Section(doc, i))
	var sb strings.Builder
	if err := html.Render(&sb, page); err != nil {
		return "", err
	}
	return sb.String(), nil
}

var modifiedRE = regexp.MustCompile(`(<meta[^>]*property="dcterms:modified"[^>]*>)[^<]*(</meta>)`)

// pinModified copies the package written by go-epub, replacing the
// wall-clock dcterms:modified stamp in the package document with at. Entry
// order and compression methods are kept, so the stored mimetype entry
// stays first.
func pinModified(data []byte, at time.Time) ([]byte, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, err
	}
	stamp := []byte("${1}" + at.UTC().Format("2006-01-02T15:04:05Z") + "${2}")
	var out bytes.Buffer
	zw := zip.NewWriter(&out)
	for _, f := range zr.File {
		content, err := readEntry(f)
		if err != nil {
			return nil, err
		}
		if strings.HasSuffix(f.Name, ".opf") {
			content = modifiedRE.ReplaceAll(content, stamp)
		}
		fw, err := zw.CreateHeader(&zip.FileHeader{Name: f.Name, Method: f.Method})
		if err != nil {
			return nil, err
		}
		if _, err := fw.Write(content); err != nil {
			return nil, err
		}
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

func readEntry(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer func() { _ = rc.Close() }()
	return io.ReadAll(rc)
}
