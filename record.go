package codebook

// FileRecord is one discovered file. Text is empty for binary or skipped
// files.
type FileRecord struct {
	Path     string
	RelPath  string
	Size     int64
	Language string
	Text     string
	Binary   bool
}

// Options are the document-wide switches shared by every renderer.
type Options struct {
	LineNumbers bool
	PageNumbers bool
	IncludeTOC  bool
	IncludeTree bool
	Highlight   bool
}

// DefaultOptions enables every optional part of the document.
func DefaultOptions() Options {
	return Options{
		LineNumbers: true,
		PageNumbers: true,
		IncludeTOC:  true,
		IncludeTree: true,
		Highlight:   true,
	}
}
