// Package codebook turns a repository snapshot into a single document: a
// paginated PDF, an EPUB package, a self-contained HTML page or Markdown.
//
// This package holds the values every stage shares: the token taxonomy,
// themes and palettes, file records, document options, warnings and the two
// fatal error kinds. The stages live in subpackages:
//
//   - tokenize: classifies file text into gap-free token spans
//   - pipeline: reads and tokenizes files in memory-bounded chunks
//   - document: assembles the format-agnostic document model
//   - render: selects a renderer (pdf, epub, markup, markdown) by format tag
//   - convert: runs the whole chain and writes the artifact atomically
//
// Example:
//
//	res, err := convert.Run(ctx, convert.Request{
//		Descriptors: files,
//		Format:      render.Paginated,
//		Theme:       codebook.DefaultTheme(),
//		Options:     codebook.DefaultOptions(),
//		Title:       "my-repo",
//		Output:      "out/my-repo.pdf",
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//	for _, w := range res.Warnings {
//		log.Println(w)
//	}
package codebook
