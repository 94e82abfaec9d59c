package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"pkt.systems/codebook"
	"pkt.systems/codebook/tokenize"
)

// Item is a descriptor tagged with its input position.
type Item struct {
	Seq int
	Descriptor
}

// Chunk is a batch of files admitted together.
type Chunk struct {
	Seq   int
	Items []Item
	// Bytes is the declared size of the files that will be read.
	Bytes int64
}

// Plan groups descs into chunks and returns warnings for files that are
// skipped before reading because they exceed MaxFileSize or, when set,
// MemoryLimit.
func (p *Pipeline) Plan(descs []Descriptor) ([]Chunk, []codebook.Warning) {
	var (
		chunks  []Chunk
		skipped []codebook.Warning
		cur     Chunk
	)
	flush := func() {
		if len(cur.Items) == 0 {
			return
		}
		cur.Seq = len(chunks)
		chunks = append(chunks, cur)
		cur = Chunk{}
	}
	mem := p.limits.MemoryLimit
	for i, d := range descs {
		if p.limits.MaxFileSize > 0 && d.Size > p.limits.MaxFileSize {
			skipped = append(skipped, codebook.Warning{
				Kind:   codebook.ResourceExceeded,
				Path:   d.RelPath,
				Detail: fmt.Sprintf("size %s exceeds max file size %s", codebook.FormatSize(d.Size), codebook.FormatSize(p.limits.MaxFileSize)),
			})
			continue
		}
		w := weight(d)
		if mem > 0 && w > mem {
			skipped = append(skipped, codebook.Warning{
				Kind:   codebook.ResourceExceeded,
				Path:   d.RelPath,
				Detail: fmt.Sprintf("size %s exceeds memory limit %s", codebook.FormatSize(d.Size), codebook.FormatSize(mem)),
			})
			continue
		}
		if len(cur.Items) >= p.limits.ChunkSize || (mem > 0 && cur.Bytes+w > mem) {
			flush()
		}
		cur.Items = append(cur.Items, Item{Seq: i, Descriptor: d})
		cur.Bytes += w
	}
	flush()
	return chunks, skipped
}

// ProcessChunk reads and tokenizes one chunk on its own, returning the
// included files in input order. Reads abandoned after a timeout may still
// be running when it returns.
func (p *Pipeline) ProcessChunk(ctx context.Context, c Chunk) ([]File, error) {
	files, _, err := p.processChunk(ctx, c)
	return files, err
}

func (p *Pipeline) processChunk(ctx context.Context, c Chunk) ([]File, *sync.WaitGroup, error) {
	slots := make([]*File, len(c.Items))
	pending := &sync.WaitGroup{}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.limits.Workers)
	for i, it := range c.Items {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			f, ok := p.processFile(gctx, it, pending)
			if ok {
				slots[i] = &f
			}
			return nil
		})
	}
	_ = g.Wait()
	if err := codebook.CheckContext(ctx); err != nil {
		return nil, pending, err
	}
	files := make([]File, 0, len(slots))
	for _, f := range slots {
		if f != nil {
			files = append(files, *f)
		}
	}
	return files, pending, nil
}

type readResult struct {
	text   string
	tokens []codebook.Token
	err    error
}

func (p *Pipeline) processFile(ctx context.Context, it Item, pending *sync.WaitGroup) (File, bool) {
	d := it.Descriptor
	rec := codebook.FileRecord{
		Path:     d.Path,
		RelPath:  d.RelPath,
		Size:     d.Size,
		Language: d.Language,
		Binary:   d.Binary,
	}
	if rec.Language == "" {
		rec.Language = tokenize.DetectLanguage(d.RelPath)
	}
	if d.Binary {
		return File{Seq: it.Seq, Record: rec}, true
	}

	fctx, cancel := ctx, context.CancelFunc(func() {})
	if p.limits.FileTimeout > 0 {
		fctx, cancel = context.WithTimeout(ctx, p.limits.FileTimeout)
	}
	defer cancel()

	p.track(d.Size)
	pending.Add(1)
	ch := make(chan readResult, 1)
	go func() {
		defer pending.Done()
		defer p.track(-d.Size)
		data, err := p.source.ReadFile(fctx, d.Path, d.Size)
		if err != nil {
			ch <- readResult{err: err}
			return
		}
		text := string(data)
		ch <- readResult{text: text, tokens: p.tokenizer.Tokenize(text, rec.Language)}
	}()

	var res readResult
	select {
	case res = <-ch:
	case <-fctx.Done():
		if ctx.Err() != nil {
			return File{}, false
		}
		res.err = fmt.Errorf("timed out after %s", p.limits.FileTimeout)
	}
	if res.err != nil {
		if ctx.Err() == nil || !errors.Is(res.err, ctx.Err()) {
			p.warn(codebook.Warning{Kind: codebook.ReadFailure, Path: d.RelPath, Detail: res.err.Error()})
		}
		return File{}, false
	}
	rec.Text = res.text
	rec.Size = int64(len(res.text))
	return File{Seq: it.Seq, Record: rec, Tokens: res.tokens}, true
}

func weight(d Descriptor) int64 {
	if d.Binary || d.Size < 0 {
		return 0
	}
	return d.Size
}
