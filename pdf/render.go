package pdf

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/jung-kurt/gofpdf"

	"pkt.systems/codebook"
	"pkt.systems/codebook/document"
)

// Renderer lays a document model out on fixed-size pages.
type Renderer struct {
	cfg Config
	// metrics replaces the font tables, used by tests.
	metrics metrics
}

// New returns a renderer for cfg. Configuration errors surface on Render.
func New(cfg Config) *Renderer {
	return &Renderer{cfg: cfg}
}

// Render writes doc as a PDF to w and returns the warnings raised while
// laying it out. A failing writer yields an error matching
// codebook.ErrFatalIO.
func (r *Renderer) Render(ctx context.Context, doc *document.Model, theme codebook.Theme, w io.Writer) ([]codebook.Warning, error) {
	if doc == nil {
		return nil, fmt.Errorf("pdf render: document is nil")
	}
	if w == nil {
		return nil, fmt.Errorf("pdf render: writer is nil")
	}
	if theme == nil {
		theme = codebook.DefaultTheme()
	}
	cfg, err := resolveConfig(r.cfg)
	if err != nil {
		return nil, err
	}
	pdf := newDocument(cfg, doc)
	if err := pdf.Error(); err != nil {
		return nil, fmt.Errorf("pdf render: %w", err)
	}
	m := r.metrics
	if m == nil {
		fm, err := newFontMetrics(pdf, cfg.FontFamily)
		if err != nil {
			return nil, err
		}
		m = fm
	}
	pdf.SetFont(cfg.FontFamily, "", cfg.FontSize)
	ms, err := newMeasurer(m, cfg.TabWidth, cfg.CacheSize)
	if err != nil {
		return nil, err
	}
	pageW, pageH := pdf.GetPageSize()
	lay, warnings, err := layoutDocument(ctx, cfg, pageW, pageH, ms, doc)
	if err != nil {
		return warnings, err
	}
	d := &drawer{
		pdf:    pdf,
		geo:    lay.geo,
		ms:     ms,
		pal:    theme.Palette(),
		opts:   doc.Options,
		family: cfg.FontFamily,

		progress: cfg.Progress,
	}
	if err := d.drawPages(ctx, doc, lay); err != nil {
		return warnings, err
	}
	if err := pdf.Error(); err != nil {
		return warnings, fmt.Errorf("pdf render: %w", err)
	}
	if err := codebook.CheckContext(ctx); err != nil {
		return warnings, err
	}
	if err := pdf.Output(w); err != nil {
		return warnings, codebook.FatalIO("pdf output", err)
	}
	return warnings, nil
}

// layoutDocument positions every section for the given page size.
func layoutDocument(ctx context.Context, cfg Config, pageW, pageH float64, ms *measurer, doc *document.Model) (*layout, []codebook.Warning, error) {
	maxLine := 0
	for _, f := range doc.Files() {
		maxLine = max(maxLine, f.Lines)
	}
	geo, err := newGeometry(cfg, pageW, pageH, doc.Options, ms, maxLine)
	if err != nil {
		return nil, nil, err
	}
	l := newLayouter(cfg, geo, ms, doc)
	lay, err := l.run(ctx)
	return lay, l.warnings, err
}

func newDocument(cfg Config, doc *document.Model) *gofpdf.Fpdf {
	setup := &gofpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "pt",
		SizeStr:        cfg.PageSize,
	}
	if cfg.PageWidth > 0 && cfg.PageHeight > 0 {
		setup.Size = gofpdf.SizeType{Wd: cfg.PageWidth, Ht: cfg.PageHeight}
	}
	pdf := gofpdf.NewCustom(setup)
	pdf.SetCompression(!cfg.Uncompressed)
	pdf.SetCatalogSort(true)
	created := doc.Generated
	if created.IsZero() {
		created = time.Unix(0, 0)
	}
	pdf.SetCreationDate(created.UTC())
	pdf.SetTitle(doc.Title, true)
	if doc.Author != "" {
		pdf.SetAuthor(doc.Author, true)
	}
	pdf.SetCreator("codebook", false)
	pdf.SetMargins(cfg.Margin, cfg.Margin, cfg.Margin)
	pdf.SetAutoPageBreak(false, cfg.Margin)
	return pdf
}
