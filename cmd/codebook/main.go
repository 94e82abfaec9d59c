package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/muesli/reflow/truncate"
	"github.com/spf13/pflag"
	"golang.org/x/term"

	"pkt.systems/codebook"
	"pkt.systems/codebook/convert"
	"pkt.systems/codebook/internal/discover"
	"pkt.systems/codebook/pdf"
	"pkt.systems/codebook/pipeline"
	"pkt.systems/codebook/render"
	"pkt.systems/version"
)

const envPrefix = "CODEBOOK_"

func init() {
	version.SetDefaultModule("pkt.systems/codebook")
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

type cliOptions struct {
	format      string
	themeName   string
	listThemes  bool
	showVersion bool
	output      string
	title       string
	author      string
	verbose     bool
	quiet       bool

	noLineNumbers bool
	noPageNumbers bool
	noTOC         bool
	noTree        bool
	noHighlight   bool

	ignoreDirs []string
	ignoreExts []string

	chunkSize   int
	workers     int
	memoryLimit string
	maxFileSize string
	fileTimeout time.Duration

	pdfPageSize   string
	pdfMargin     float64
	pdfFontSize   float64
	pdfLineHeight float64
	pdfFont       string
	pdfTabWidth   int
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	var o cliOptions
	limits := pipeline.DefaultLimits()
	pdfDefaults := pdf.DefaultConfig()

	flags := pflag.NewFlagSet("codebook", pflag.ContinueOnError)
	flags.SetOutput(stderr)
	flags.StringVarP(&o.format, "format", "f", envOr("FORMAT", render.Paginated.String()), "Output format: "+strings.Join(render.Tags(), "|")+" (or pdf|epub|html|md)")
	flags.StringVarP(&o.themeName, "theme", "t", envOr("THEME", codebook.DefaultTheme().Name()), "Colour theme")
	flags.BoolVar(&o.listThemes, "list-themes", false, "List available themes")
	flags.BoolVar(&o.showVersion, "version", false, "Print version and exit")
	flags.StringVarP(&o.output, "output", "o", envOr("OUTPUT", ""), "Output file (default <repository><ext>; - for stdout)")
	flags.StringVar(&o.title, "title", "", "Document title (default repository directory name)")
	flags.StringVar(&o.author, "author", envOr("AUTHOR", ""), "Document author")
	flags.BoolVarP(&o.verbose, "verbose", "v", envBool("VERBOSE", false), "Log debug output")
	flags.BoolVarP(&o.quiet, "quiet", "q", false, "Only print errors")

	flags.BoolVar(&o.noLineNumbers, "no-line-numbers", !envBool("LINE_NUMBERS", true), "Omit line numbers")
	flags.BoolVar(&o.noPageNumbers, "no-page-numbers", !envBool("PAGE_NUMBERS", true), "Omit page numbers")
	flags.BoolVar(&o.noTOC, "no-toc", !envBool("TOC", true), "Omit the table of contents")
	flags.BoolVar(&o.noTree, "no-tree", !envBool("TREE", true), "Omit the file tree")
	flags.BoolVar(&o.noHighlight, "no-highlight", !envBool("HIGHLIGHT", true), "Disable syntax highlighting")

	flags.StringSliceVar(&o.ignoreDirs, "ignore-dir", nil, "Directory to skip, relative to the repository (repeatable)")
	flags.StringSliceVar(&o.ignoreExts, "ignore-ext", nil, "File extension to skip (repeatable)")

	flags.IntVar(&o.chunkSize, "chunk-size", envInt("CHUNK_SIZE", limits.ChunkSize), "Files per processing chunk")
	flags.IntVar(&o.workers, "workers", envInt("WORKERS", limits.Workers), "Files processed concurrently")
	flags.StringVar(&o.memoryLimit, "memory-limit", envOr("MEMORY_LIMIT", humanize.IBytes(uint64(limits.MemoryLimit))), "Bytes of file content in flight (0 for one chunk at a time)")
	flags.StringVar(&o.maxFileSize, "max-file-size", envOr("MAX_FILE_SIZE", humanize.IBytes(uint64(limits.MaxFileSize))), "Skip files larger than this (0 to disable)")
	flags.DurationVar(&o.fileTimeout, "file-timeout", envDuration("FILE_TIMEOUT", limits.FileTimeout), "Time limit for reading and tokenizing one file")

	flags.StringVar(&o.pdfPageSize, "pdf-page-size", envOr("PDF_PAGE_SIZE", pdfDefaults.PageSize), "PDF page size")
	flags.Float64Var(&o.pdfMargin, "pdf-margin", pdfDefaults.Margin, "Page margin in points")
	flags.Float64Var(&o.pdfFontSize, "pdf-font-size", pdfDefaults.FontSize, "Base font size in points")
	flags.Float64Var(&o.pdfLineHeight, "pdf-line-height", pdfDefaults.LineHeight, "Line height multiplier")
	flags.StringVar(&o.pdfFont, "pdf-font", envOr("PDF_FONT", pdfDefaults.FontFamily), "Core font: courier|helvetica|times")
	flags.IntVar(&o.pdfTabWidth, "tab-width", envInt("TAB_WIDTH", pdfDefaults.TabWidth), "Spaces per tab")

	flags.SetInterspersed(true)
	flags.Usage = func() {
		fmt.Fprintln(stderr, version.Module(), version.Current())
		fmt.Fprintf(stderr, "Usage: codebook [flags] [repository]\n")
		fmt.Fprintln(stderr, "\nRenders every file of a repository into one document. The repository defaults to the current directory.")
		fmt.Fprintf(stderr, "Flag defaults can be set with %s* environment variables.\n", envPrefix)
		fmt.Fprintln(stderr, "\nFlags:")
		flags.PrintDefaults()
	}
	if err := flags.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}
		return 2
	}

	if o.showVersion {
		fmt.Fprintln(stdout, version.Module(), version.Current())
		return 0
	}
	if o.listThemes {
		for _, name := range codebook.AvailableThemes() {
			fmt.Fprintln(stdout, name)
		}
		return 0
	}
	if flags.NArg() > 1 {
		fmt.Fprintln(stderr, "expected at most one repository path")
		return 2
	}
	root := "."
	if flags.NArg() == 1 {
		root = flags.Arg(0)
	}
	root = normalizePath(root)

	format, err := render.ParseFormat(o.format)
	if err != nil {
		fmt.Fprintf(stderr, "invalid --format: %v\n", err)
		return 2
	}
	theme, ok := codebook.ThemeByName(o.themeName)
	if !ok {
		fmt.Fprintf(stderr, "unknown theme %q\n\navailable themes: %s\n", o.themeName, strings.Join(codebook.AvailableThemes(), ", "))
		return 2
	}
	if err := applyLimits(&limits, o); err != nil {
		fmt.Fprintf(stderr, "%v\n", err)
		return 2
	}

	log := newLogger(stderr, o)

	title := o.title
	if title == "" {
		title = filepath.Base(root)
	}
	toStdout := o.output == "-"
	output := o.output
	switch {
	case toStdout:
		if format.Binary() && isTerminal(stdout) {
			fmt.Fprintf(stderr, "refusing to write %s to terminal; use -o/--output\n", format)
			return 2
		}
		dir, err := os.MkdirTemp("", "codebook-")
		if err != nil {
			fmt.Fprintf(stderr, "temporary output: %v\n", err)
			return 1
		}
		defer func() { _ = os.RemoveAll(dir) }()
		output = filepath.Join(dir, "out"+format.Extension())
	case output == "":
		output = sanitizeName(title) + format.Extension()
	}
	output = normalizePath(output)

	descs, err := discover.Walk(ctx, root, discover.Options{IgnoreDirs: o.ignoreDirs, IgnoreExtensions: o.ignoreExts, Logger: log})
	if err != nil {
		fmt.Fprintf(stderr, "%v\n", err)
		return exitCode(err)
	}
	descs = slices.DeleteFunc(descs, func(d pipeline.Descriptor) bool { return d.Path == output })
	if len(descs) == 0 {
		fmt.Fprintf(stderr, "no files found in %s\n", root)
		return 1
	}
	log.Debug("discovered files", "root", root, "files", len(descs))

	req := convert.Request{
		Descriptors: descs,
		Format:      format,
		Theme:       theme,
		Options: codebook.Options{
			LineNumbers: !o.noLineNumbers,
			PageNumbers: !o.noPageNumbers,
			IncludeTOC:  !o.noTOC,
			IncludeTree: !o.noTree,
			Highlight:   !o.noHighlight,
		},
		Limits: limits,
		Render: render.Config{
			PDF: pdf.Config{
				PageSize:   o.pdfPageSize,
				Margin:     o.pdfMargin,
				FontFamily: o.pdfFont,
				FontSize:   o.pdfFontSize,
				LineHeight: o.pdfLineHeight,
				TabWidth:   o.pdfTabWidth,
			},
		},
		Title:  title,
		Author: o.author,
		Output: output,
	}
	req.Render.EPUB.TabWidth = o.pdfTabWidth
	req.Render.Markup.TabWidth = o.pdfTabWidth

	bar := newProgressLine(stderr, !o.quiet && !o.verbose)
	res, err := convert.Run(ctx, req,
		convert.WithLogger(log),
		convert.WithProgress(bar.update),
		convert.WithWarningHandler(func(w codebook.Warning) {
			bar.clear()
			log.Warn(w.Kind.String(), "path", w.Path, "detail", w.Detail)
		}),
	)
	bar.clear()
	if err != nil {
		fmt.Fprintf(stderr, "codebook: %v\n", err)
		return exitCode(err)
	}
	if toStdout {
		if err := copyFile(stdout, res.Path); err != nil {
			fmt.Fprintf(stderr, "write stdout: %v\n", err)
			return 1
		}
		return 0
	}
	if !o.quiet {
		fmt.Fprintf(stderr, "wrote %s (%s, %s files, %s warnings)\n", res.Path, codebook.FormatSize(res.Written),
			codebook.FormatCount(res.Stats.Files), codebook.FormatCount(len(res.Warnings)))
	}
	return 0
}

func applyLimits(limits *pipeline.Limits, o cliOptions) error {
	mem, err := parseSize(o.memoryLimit)
	if err != nil {
		return fmt.Errorf("invalid --memory-limit: %w", err)
	}
	maxFile, err := parseSize(o.maxFileSize)
	if err != nil {
		return fmt.Errorf("invalid --max-file-size: %w", err)
	}
	limits.MemoryLimit = mem
	limits.MaxFileSize = maxFile
	if o.chunkSize > 0 {
		limits.ChunkSize = o.chunkSize
	}
	if o.workers > 0 {
		limits.Workers = o.workers
	}
	if o.fileTimeout > 0 {
		limits.FileTimeout = o.fileTimeout
	}
	return nil
}

func parseSize(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == "0" {
		return 0, nil
	}
	n, err := humanize.ParseBytes(s)
	if err != nil {
		return 0, err
	}
	if n > 1<<62 {
		return 0, fmt.Errorf("%s is too large", s)
	}
	return int64(n), nil
}

func newLogger(w io.Writer, o cliOptions) *slog.Logger {
	level := slog.LevelInfo
	switch {
	case o.verbose:
		level = slog.LevelDebug
	case o.quiet:
		level = slog.LevelError
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func exitCode(err error) int {
	if errors.Is(err, codebook.ErrCancelled) {
		return 130
	}
	return 1
}

// progressLine redraws one status line on a terminal.
type progressLine struct {
	w       io.Writer
	enabled bool
	width   int
	dirty   bool
}

func newProgressLine(w io.Writer, enabled bool) *progressLine {
	p := &progressLine{w: w, enabled: enabled && isTerminal(w), width: 80}
	if f, ok := w.(*os.File); ok && p.enabled {
		if width, _, err := term.GetSize(int(f.Fd())); err == nil && width > 0 {
			p.width = width
		}
	}
	return p
}

func (p *progressLine) update(ev convert.Progress) {
	if !p.enabled {
		return
	}
	line := fmt.Sprintf("%s %d/%d", ev.Stage, ev.Done, ev.Total)
	if ev.Path != "" {
		line += " " + ev.Path
	}
	line = truncate.StringWithTail(line, uint(max(p.width-1, 10)), "...")
	fmt.Fprintf(p.w, "\r\x1b[2K%s", line)
	p.dirty = true
}

func (p *progressLine) clear() {
	if p.enabled && p.dirty {
		fmt.Fprint(p.w, "\r\x1b[2K")
		p.dirty = false
	}
}

func sanitizeName(title string) string {
	name := strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			return '-'
		}
		return r
	}, strings.TrimSpace(title))
	if name == "" || name == "." || name == string(filepath.Separator) {
		return "codebook"
	}
	return name
}

func copyFile(w io.Writer, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()
	_, err = io.Copy(w, f)
	return err
}

func normalizePath(path string) string {
	if strings.HasPrefix(path, "~/") || path == "~" {
		home, err := os.UserHomeDir()
		if err == nil {
			if path == "~" {
				path = home
			} else {
				path = filepath.Join(home, path[2:])
			}
		}
	}
	abs, err := filepath.Abs(path)
	if err == nil {
		return abs
	}
	return path
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}

func envOr(key, fallback string) string {
	if v := os.Getenv(envPrefix + key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(envPrefix + key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(envPrefix + key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(envPrefix + key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
