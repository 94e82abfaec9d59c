// Package convert runs a complete conversion: it reads and tokenizes the
// discovered files, builds the document model, renders it and writes the
// artifact.
//
// The artifact is rendered into a temporary file next to the destination
// and renamed into place only when rendering and writing succeeded and the
// run was not cancelled. A failed run leaves an existing destination
// untouched.
package convert

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"pkt.systems/codebook"
	"pkt.systems/codebook/document"
	"pkt.systems/codebook/pipeline"
	"pkt.systems/codebook/render"
	"pkt.systems/codebook/tokenize"
)

// Stage names a phase of a run.
type Stage string

const (
	StageProcess Stage = "process"
	StageRender  Stage = "render"
	StageWrite   Stage = "write"
)

// Progress reports how far a stage has come. Path is the file just
// settled, when known.
type Progress struct {
	Stage Stage
	Done  int
	Total int
	Path  string
}

// Request describes one conversion.
type Request struct {
	Descriptors []pipeline.Descriptor
	Format      render.Format
	// Theme defaults to codebook.DefaultTheme.
	Theme   codebook.Theme
	Options codebook.Options
	Limits  pipeline.Limits
	Render  render.Config
	Title   string
	Author  string
	// Output is the destination path.
	Output string
	// Generated is shown in the document and used where formats record a
	// creation time. Zero means now.
	Generated time.Time
}

// Result is the outcome of a run. Warnings are complete even when Run
// returns an error.
type Result struct {
	Path     string
	Format   render.Format
	Warnings []codebook.Warning
	Stats    pipeline.Stats
	// Written is the size of the artifact in bytes.
	Written int64
}

// Run performs the conversion described by req.
func Run(ctx context.Context, req Request, opts ...Option) (Result, error) {
	cfg := runConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}
	log := cfg.log
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	ws := codebook.NewWarnings(cfg.warn)
	res := Result{Format: req.Format}
	progress := func(p Progress) {
		if cfg.progress != nil {
			cfg.progress(p)
		}
	}

	if req.Output == "" {
		return res, fmt.Errorf("convert: no output path")
	}
	rcfg := req.Render
	own := rcfg.Progress
	rcfg.Progress = func(done, total int) {
		own.Report(done, total)
		progress(Progress{Stage: StageRender, Done: done, Total: total})
	}
	renderer := cfg.renderer
	if renderer == nil {
		r, err := render.New(req.Format, rcfg)
		if err != nil {
			return res, fmt.Errorf("convert: %w", err)
		}
		renderer = r
	}
	theme := req.Theme
	if theme == nil {
		theme = codebook.DefaultTheme()
	}
	generated := req.Generated
	if generated.IsZero() {
		generated = time.Now()
	}

	var tok tokenize.Tokenizer = tokenize.Plain{}
	if req.Options.Highlight {
		tok = cfg.tokenizer
		if tok == nil {
			tok = tokenize.New()
		}
	}
	var lastPath string
	popts := []pipeline.Option{
		pipeline.WithTokenizer(tok),
		pipeline.WithWarnings(ws),
		pipeline.WithLogger(log),
		pipeline.WithProgress(func(done, total int) {
			progress(Progress{Stage: StageProcess, Done: done, Total: total, Path: lastPath})
		}),
	}
	if cfg.source != nil {
		popts = append(popts, pipeline.WithSource(cfg.source))
	}
	p := pipeline.New(req.Limits, popts...)

	builder := document.NewBuilder(document.Meta{
		Title:     req.Title,
		Author:    req.Author,
		Generated: generated,
	}, req.Options)
	total := len(req.Descriptors)
	log.Debug("processing files", "files", total, "chunk_size", p.Limits().ChunkSize, "memory_limit", p.Limits().MemoryLimit)
	stats, err := p.Run(ctx, req.Descriptors, func(f pipeline.File) error {
		builder.Add(f.Record, f.Tokens)
		lastPath = f.Record.RelPath
		return nil
	})
	res.Stats = stats
	if err != nil {
		res.Warnings = ws.List()
		return res, err
	}
	builder.Skipped(stats.Skipped)
	doc := builder.Build()

	log.Debug("rendering", "format", req.Format.String(), "sections", len(doc.Sections))
	progress(Progress{Stage: StageRender, Total: len(doc.Sections)})
	written, err := writeAtomic(ctx, req.Output, func(w io.Writer) error {
		warnings, err := renderer.Render(ctx, doc, theme, w)
		for _, warn := range warnings {
			ws.Add(warn)
		}
		return err
	})
	res.Warnings = ws.List()
	if err != nil {
		return res, err
	}
	res.Path = req.Output
	res.Written = written
	progress(Progress{Stage: StageWrite, Done: 1, Total: 1, Path: req.Output})
	log.Info("document written",
		"path", req.Output,
		"format", req.Format.String(),
		"files", stats.Files,
		"skipped", stats.Skipped,
		"size", codebook.FormatSize(written),
		"warnings", len(res.Warnings),
	)
	return res, nil
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}

// writeAtomic runs fill against a temporary file in the destination
// directory and renames it to path on success.
func writeAtomic(ctx context.Context, path string, fill func(io.Writer) error) (int64, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return 0, codebook.FatalIO("create output directory", err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return 0, codebook.FatalIO("create output", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	bw := bufio.NewWriterSize(tmp, 64<<10)
	cw := &countingWriter{w: bw}
	if err := fill(cw); err != nil {
		return 0, err
	}
	if err := bw.Flush(); err != nil {
		return 0, codebook.FatalIO("write output", err)
	}
	if err := tmp.Chmod(0o644); err != nil {
		return 0, codebook.FatalIO("write output", err)
	}
	if err := tmp.Close(); err != nil {
		return 0, codebook.FatalIO("write output", err)
	}
	if err := codebook.CheckContext(ctx); err != nil {
		return 0, err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return 0, codebook.FatalIO("rename output", err)
	}
	committed = true
	return cw.n, nil
}
