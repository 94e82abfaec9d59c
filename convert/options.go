package convert

import (
	"log/slog"

	"pkt.systems/codebook"
	"pkt.systems/codebook/pipeline"
	"pkt.systems/codebook/render"
	"pkt.systems/codebook/tokenize"
)

// Option configures Run.
type Option func(*runConfig)

type runConfig struct {
	log       *slog.Logger
	progress  func(Progress)
	warn      codebook.WarningFunc
	tokenizer tokenize.Tokenizer
	source    pipeline.Source
	renderer  render.Renderer
}

// WithLogger sets the logger for the run and the pipeline.
func WithLogger(l *slog.Logger) Option {
	return func(cfg *runConfig) {
		cfg.log = l
	}
}

// WithProgress receives progress events. The callback runs on the
// goroutine that calls Run.
func WithProgress(fn func(Progress)) Option {
	return func(cfg *runConfig) {
		cfg.progress = fn
	}
}

// WithWarningHandler receives every warning as it is raised, before Run
// returns. Pipeline warnings may arrive from worker goroutines.
func WithWarningHandler(fn codebook.WarningFunc) Option {
	return func(cfg *runConfig) {
		cfg.warn = fn
	}
}

// WithTokenizer replaces the chroma tokenizer. It is ignored when
// highlighting is off.
func WithTokenizer(t tokenize.Tokenizer) Option {
	return func(cfg *runConfig) {
		cfg.tokenizer = t
	}
}

// WithSource replaces the filesystem reader.
func WithSource(src pipeline.Source) Option {
	return func(cfg *runConfig) {
		cfg.source = src
	}
}

// WithRenderer replaces the renderer chosen by Request.Format.
func WithRenderer(r render.Renderer) Option {
	return func(cfg *runConfig) {
		cfg.renderer = r
	}
}
