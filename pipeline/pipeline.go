// Package pipeline reads and tokenizes discovered files in bounded chunks.
//
// Descriptors are grouped into chunks of at most Limits.ChunkSize files whose
// declared sizes add up to no more than Limits.MemoryLimit. A chunk must
// reserve its bytes on a weighted semaphore before any of its files is read,
// and gives them back only after its files have been handed to the consumer,
// so the bytes of concurrently processing files never exceed the limit.
// Results are delivered strictly in input order.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"pkt.systems/codebook"
	"pkt.systems/codebook/tokenize"
)

// Descriptor is a discovered file whose content has not been read yet.
type Descriptor struct {
	Path     string
	RelPath  string
	Size     int64
	Binary   bool
	Language string
}

// Limits bound the work the pipeline keeps in flight.
type Limits struct {
	// ChunkSize is the maximum number of files per chunk.
	ChunkSize int
	// MemoryLimit caps the declared bytes of admitted chunks. Zero means
	// unset, in which case chunks run one at a time.
	MemoryLimit int64
	// MaxFileSize skips larger files. Zero disables the check.
	MaxFileSize int64
	// Workers is the number of files processed concurrently within a chunk.
	Workers int
	// FileTimeout bounds reading and tokenizing a single file.
	FileTimeout time.Duration
}

// DefaultLimits returns conservative limits for a workstation.
func DefaultLimits() Limits {
	return Limits{
		ChunkSize:   64,
		MemoryLimit: 256 << 20,
		MaxFileSize: 10 << 20,
		Workers:     runtime.GOMAXPROCS(0),
		FileTimeout: 30 * time.Second,
	}
}

// File is a processed file, ready for the document builder.
type File struct {
	// Seq is the index of the file's descriptor in the input.
	Seq    int
	Record codebook.FileRecord
	Tokens []codebook.Token
}

// Stats summarize a run.
type Stats struct {
	Files   int
	Skipped int
	Chunks  int
	Bytes   int64
	// PeakInFlight is the largest observed sum of declared sizes of files
	// being read or tokenized at the same time.
	PeakInFlight int64
}

// ProgressFunc is told how many descriptors have been settled, either
// delivered or skipped.
type ProgressFunc func(done, total int)

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithSource replaces the filesystem reader.
func WithSource(src Source) Option {
	return func(p *Pipeline) {
		if src != nil {
			p.source = src
		}
	}
}

// WithTokenizer replaces the default chroma tokenizer.
func WithTokenizer(t tokenize.Tokenizer) Option {
	return func(p *Pipeline) {
		if t != nil {
			p.tokenizer = t
		}
	}
}

// WithWarnings routes skip warnings to ws.
func WithWarnings(ws *codebook.Warnings) Option {
	return func(p *Pipeline) {
		p.warnings = ws
	}
}

// WithLogger sets the logger used for chunk admission and skips.
func WithLogger(l *slog.Logger) Option {
	return func(p *Pipeline) {
		if l != nil {
			p.log = l
		}
	}
}

// WithProgress installs a progress callback.
func WithProgress(fn ProgressFunc) Option {
	return func(p *Pipeline) {
		p.progress = fn
	}
}

// Pipeline turns descriptors into processed files.
type Pipeline struct {
	limits    Limits
	source    Source
	tokenizer tokenize.Tokenizer
	warnings  *codebook.Warnings
	log       *slog.Logger
	progress  ProgressFunc

	inFlight atomic.Int64
	peak     atomic.Int64
}

// New returns a Pipeline. Non-positive ChunkSize and Workers fall back to
// the defaults.
func New(limits Limits, opts ...Option) *Pipeline {
	def := DefaultLimits()
	if limits.ChunkSize <= 0 {
		limits.ChunkSize = def.ChunkSize
	}
	if limits.Workers <= 0 {
		limits.Workers = def.Workers
	}
	p := &Pipeline{
		limits:    limits,
		source:    OSSource{},
		tokenizer: tokenize.New(),
		log:       slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Limits returns the effective limits.
func (p *Pipeline) Limits() Limits {
	return p.limits
}

type chunkDone struct {
	seq     int
	files   []File
	weight  int64
	pending *sync.WaitGroup
	err     error
}

// Run processes descs and calls emit for every included file in input
// order. Skipped files are reported as warnings. Run stops at the first
// emit error or on cancellation; cancellation is returned as
// codebook.ErrCancelled.
func (p *Pipeline) Run(ctx context.Context, descs []Descriptor, emit func(File) error) (Stats, error) {
	chunks, skipped := p.Plan(descs)
	for _, w := range skipped {
		p.warn(w)
	}
	stats := Stats{Chunks: len(chunks), Skipped: len(skipped)}
	total := len(descs)
	done := len(skipped)
	p.report(done, total)

	gate, weigh := p.admissionGate()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	results := make(chan chunkDone)
	var g errgroup.Group
	g.Go(func() error {
		var workers sync.WaitGroup
		defer func() {
			workers.Wait()
			close(results)
		}()
		for _, c := range chunks {
			w := weigh(c)
			if err := gate.Acquire(ctx, w); err != nil {
				return nil
			}
			p.log.Debug("chunk admitted", "seq", c.Seq, "files", len(c.Items), "bytes", c.Bytes)
			workers.Add(1)
			go func(c Chunk, w int64) {
				defer workers.Done()
				files, pending, err := p.processChunk(ctx, c)
				select {
				case results <- chunkDone{seq: c.Seq, files: files, weight: w, pending: pending, err: err}:
				case <-ctx.Done():
					go releaseAfter(gate, w, pending)
				}
			}(c, w)
		}
		return nil
	})

	var runErr error
	next := 0
	buffered := make(map[int]chunkDone)
	for res := range results {
		if runErr == nil && res.err != nil {
			runErr = res.err
			cancel()
		}
		if runErr != nil {
			go releaseAfter(gate, res.weight, res.pending)
			continue
		}
		buffered[res.seq] = res
		for {
			cur, ok := buffered[next]
			if !ok {
				break
			}
			delete(buffered, next)
			next++
			settled := len(chunks[cur.seq].Items)
			for _, f := range cur.files {
				if runErr != nil {
					break
				}
				if err := emit(f); err != nil {
					runErr = err
					cancel()
					break
				}
				stats.Files++
				stats.Bytes += f.Record.Size
			}
			stats.Skipped += settled - len(cur.files)
			done += settled
			p.report(done, total)
			p.log.Debug("chunk released", "seq", cur.seq, "files", len(cur.files))
			go releaseAfter(gate, cur.weight, cur.pending)
			if runErr != nil {
				break
			}
		}
	}
	_ = g.Wait()
	for _, res := range buffered {
		go releaseAfter(gate, res.weight, res.pending)
	}

	stats.PeakInFlight = p.peak.Load()
	if runErr != nil {
		return stats, runErr
	}
	if err := codebook.CheckContext(ctx); err != nil {
		return stats, err
	}
	if next != len(chunks) {
		return stats, fmt.Errorf("pipeline: %d of %d chunks delivered", next, len(chunks))
	}
	return stats, nil
}

// admissionGate returns the semaphore chunks reserve and the weight of a
// chunk on it. Without a memory limit every chunk weighs one unit on a
// semaphore of size one.
func (p *Pipeline) admissionGate() (*semaphore.Weighted, func(Chunk) int64) {
	if p.limits.MemoryLimit > 0 {
		return semaphore.NewWeighted(p.limits.MemoryLimit), func(c Chunk) int64 { return c.Bytes }
	}
	return semaphore.NewWeighted(1), func(Chunk) int64 { return 1 }
}

func releaseAfter(gate *semaphore.Weighted, w int64, pending *sync.WaitGroup) {
	if pending != nil {
		pending.Wait()
	}
	gate.Release(w)
}

func (p *Pipeline) warn(w codebook.Warning) {
	p.log.Warn("file skipped", "kind", w.Kind.String(), "path", w.Path, "detail", w.Detail)
	p.warnings.Add(w)
}

func (p *Pipeline) report(done, total int) {
	if p.progress != nil {
		p.progress(done, total)
	}
}

func (p *Pipeline) track(delta int64) {
	cur := p.inFlight.Add(delta)
	for {
		peak := p.peak.Load()
		if cur <= peak || p.peak.CompareAndSwap(peak, cur) {
			return
		}
	}
}
