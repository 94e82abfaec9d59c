package pdf

import (
	"fmt"
	"strings"

	"pkt.systems/codebook"
)

// Config holds PDF rendering settings. Zero fields take the value from
// DefaultConfig.
type Config struct {
	// PageSize is a gofpdf page size name such as A4, A5 or Letter.
	PageSize string
	// PageWidth and PageHeight set a custom page size in points and take
	// precedence over PageSize when both are positive.
	PageWidth  float64
	PageHeight float64
	Margin     float64
	// FontFamily must be one of the core fonts Courier, Helvetica or Times.
	FontFamily string
	FontSize   float64
	// LineHeight is a multiple of FontSize.
	LineHeight float64
	// TabWidth is the number of spaces a tab occupies.
	TabWidth  int
	GutterGap float64
	// Uncompressed leaves page content streams readable.
	Uncompressed bool
	// TOCMaxPasses bounds the table of contents re-layout. Reaching it keeps
	// the last layout and raises a LayoutOverflow warning.
	TOCMaxPasses int
	// CacheSize is the number of measured spans kept in memory.
	CacheSize int
	// Progress is told each time a section has been drawn.
	Progress codebook.SectionProgress
}

// DefaultConfig returns a baseline configuration.
func DefaultConfig() Config {
	return Config{
		PageSize:     "A4",
		Margin:       36,
		FontFamily:   "Courier",
		FontSize:     10,
		LineHeight:   1.2,
		TabWidth:     4,
		GutterGap:    8,
		TOCMaxPasses: 4,
		CacheSize:    4096,
	}
}

func applyConfig(dst *Config, src Config) {
	if src.PageSize != "" {
		dst.PageSize = src.PageSize
	}
	if src.PageWidth > 0 {
		dst.PageWidth = src.PageWidth
	}
	if src.PageHeight > 0 {
		dst.PageHeight = src.PageHeight
	}
	if src.Margin > 0 {
		dst.Margin = src.Margin
	}
	if src.FontFamily != "" {
		dst.FontFamily = src.FontFamily
	}
	if src.FontSize > 0 {
		dst.FontSize = src.FontSize
	}
	if src.LineHeight > 0 {
		dst.LineHeight = src.LineHeight
	}
	if src.TabWidth > 0 {
		dst.TabWidth = src.TabWidth
	}
	if src.GutterGap > 0 {
		dst.GutterGap = src.GutterGap
	}
	if src.Uncompressed {
		dst.Uncompressed = true
	}
	if src.TOCMaxPasses > 0 {
		dst.TOCMaxPasses = src.TOCMaxPasses
	}
	if src.CacheSize > 0 {
		dst.CacheSize = src.CacheSize
	}
	if src.Progress != nil {
		dst.Progress = src.Progress
	}
}

func resolveConfig(src Config) (Config, error) {
	cfg := DefaultConfig()
	applyConfig(&cfg, src)
	cfg.FontFamily = canonicalFont(cfg.FontFamily)
	if !isCoreFont(cfg.FontFamily) {
		return Config{}, fmt.Errorf("pdf render: core font family required (Courier, Helvetica or Times), got %q", src.FontFamily)
	}
	if cfg.LineHeight < 1 {
		return Config{}, fmt.Errorf("pdf render: line height %.2f is smaller than the font size", cfg.LineHeight)
	}
	if cfg.TabWidth > 16 {
		return Config{}, fmt.Errorf("pdf render: tab width %d out of range 1-16", cfg.TabWidth)
	}
	if (cfg.PageWidth > 0) != (cfg.PageHeight > 0) {
		return Config{}, fmt.Errorf("pdf render: custom page size needs both width and height")
	}
	return cfg, nil
}

func canonicalFont(name string) string {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "courier":
		return "Courier"
	case "helvetica", "arial":
		return "Helvetica"
	case "times":
		return "Times"
	default:
		return name
	}
}

func isCoreFont(name string) bool {
	switch name {
	case "Courier", "Helvetica", "Times":
		return true
	default:
		return false
	}
}
