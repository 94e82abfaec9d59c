// Package pdf renders a document model to PDF.
//
// Layout is computed by the package from the advance widths of the core
// font: tokens are packed greedily into lines, tokens wider than the code
// column are broken at characters, and lines flow onto pages that each
// start with the theme background. The table of contents is laid out once
// with placeholder page numbers and then re-laid with the resolved page
// index until its own length no longer changes.
//
// Example:
//
//	cfg := pdf.DefaultConfig()
//	cfg.PageSize = "Letter"
//
//	warnings, err := pdf.New(cfg).Render(ctx, model, codebook.DefaultTheme(), outFile)
//	if err != nil {
//		log.Fatal(err)
//	}
//	for _, w := range warnings {
//		log.Println(w)
//	}
//
// Only the core fonts Courier, Helvetica and Times are supported. Characters
// outside Windows-1252 are drawn as '?' and reported as UnsupportedGlyph
// warnings.
package pdf
