// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline drives relation mining over a corpus: one producer
// reads papers and hands them out in small batches, a fixed pool of
// workers runs the extractor, and a single writer goroutine drains a
// bounded result channel into the output sink. The result channel is
// closed on every exit path, so the sink is always finalized.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"runtime"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
	"gopkg.in/cheggaaa/pb.v1"

	"github.com/pdiddy/gene-relations/internal/extract"
	"github.com/pdiddy/gene-relations/internal/output"
	"github.com/pdiddy/gene-relations/pkg/types"
)

const (
	// DefaultBatchSize is the number of papers dispatched to a worker at once.
	DefaultBatchSize = 5
	// DefaultQueueSize bounds the result channel.
	DefaultQueueSize = 64
)

// Source yields papers until io.EOF. *corpus.Reader implements it.
type Source interface {
	Next() (types.Paper, error)
}

// Options sizes the pipeline.
type Options struct {
	// Workers is the pool size; 0 uses every logical CPU.
	Workers   int
	BatchSize int
	QueueSize int

	// Progress, when non-nil, receives a progress bar over processed papers.
	Progress io.Writer
}

func (o Options) withDefaults() Options {
	if o.Workers <= 0 {
		o.Workers = runtime.NumCPU()
	}
	if o.BatchSize <= 0 {
		o.BatchSize = DefaultBatchSize
	}
	if o.QueueSize <= 0 {
		o.QueueSize = DefaultQueueSize
	}
	return o
}

// Summary counts what happened to the papers of one run.
type Summary struct {
	Read      int // papers read from the source
	Extracted int // papers that produced at least one relation
	Dropped   int // papers that produced none
	Failed    int // papers whose extraction returned an error or panicked
	Written   int // results accepted by the sink
}

// HasFailures reports whether any paper failed.
func (s Summary) HasFailures() bool {
	return s.Failed > 0
}

func (s Summary) String() string {
	return fmt.Sprintf("read %d, extracted %d, dropped %d, failed %d, written %d",
		s.Read, s.Extracted, s.Dropped, s.Failed, s.Written)
}

// Run mines every paper of src with ex and writes the results to sink,
// which it closes before returning. Per-paper failures are reported on w
// and counted, never fatal. A source error (such as a corpus parse error)
// stops reading; papers already dispatched are still processed and
// written, and the error is returned. A sink error stops the run.
func Run(ctx context.Context, opts Options, src Source, ex extract.Extractor, sink output.Sink, w io.Writer) (Summary, error) {
	opts = opts.withDefaults()
	if w == nil {
		w = io.Discard
	}
	log := &lockedWriter{w: w}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var bar *pb.ProgressBar
	if opts.Progress != nil {
		bar = pb.New(0)
		bar.Output = opts.Progress
		bar.ShowBar = false
		bar.ShowPercent = false
		bar.ShowTimeLeft = false
		bar.ShowSpeed = true
		bar.Start()
	}

	batches := make(chan []types.Paper, opts.Workers)
	results := make(chan types.PaperResult, opts.QueueSize)

	// Writer: the only consumer of results and the only user of sink. After
	// a sink error it keeps draining so workers never block.
	var (
		written  int
		writeErr error
	)
	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		for r := range results {
			if writeErr != nil {
				continue
			}
			if err := sink.Write(r); err != nil {
				writeErr = fmt.Errorf("writing result %s: %w", r.PMID, err)
				cancel()
				continue
			}
			written++
		}
	}()

	var extracted, dropped, failed atomic.Int64
	// Workers stop at cancellation; the producer notices the same context
	// and stops sending, so abandoned batches never block it.
	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < opts.Workers; i++ {
		g.Go(func() error {
			for batch := range batches {
				for _, p := range batch {
					if err := gctx.Err(); err != nil {
						return err
					}
					rels, err := safeExtract(ex, p)
					if bar != nil {
						bar.Increment()
					}
					switch {
					case err != nil:
						failed.Add(1)
						fmt.Fprintf(log, "failed  %s: %v\n", p.ID, err)
					case len(rels) == 0:
						dropped.Add(1)
					default:
						extracted.Add(1)
						results <- types.NewPaperResult(p, rels)
					}
				}
			}
			return nil
		})
	}

	read, readErr := produce(ctx, opts.BatchSize, src, batches)
	close(batches)
	workErr := g.Wait()
	close(results)
	<-writerDone

	if bar != nil {
		bar.Finish()
	}

	closeErr := sink.Close()

	sum := Summary{
		Read:      read,
		Extracted: int(extracted.Load()),
		Dropped:   int(dropped.Load()),
		Failed:    int(failed.Load()),
		Written:   written,
	}

	switch {
	case readErr != nil:
		return sum, readErr
	case writeErr != nil:
		return sum, writeErr
	case closeErr != nil:
		return sum, fmt.Errorf("finalizing output: %w", closeErr)
	case workErr != nil:
		return sum, workErr
	}
	return sum, ctx.Err()
}

// produce reads src into batches until EOF, a read error, or ctx ends.
func produce(ctx context.Context, size int, src Source, batches chan<- []types.Paper) (int, error) {
	read := 0
	batch := make([]types.Paper, 0, size)
	send := func() bool {
		select {
		case batches <- batch:
			batch = make([]types.Paper, 0, size)
			return true
		case <-ctx.Done():
			return false
		}
	}

	for {
		if ctx.Err() != nil {
			return read, nil
		}
		p, err := src.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			if len(batch) > 0 {
				send()
			}
			return read, fmt.Errorf("reading corpus: %w", err)
		}
		read++
		batch = append(batch, p)
		if len(batch) == size && !send() {
			return read, nil
		}
	}
	if len(batch) > 0 {
		send()
	}
	return read, nil
}

// safeExtract isolates a panicking extractor to the paper that caused it.
func safeExtract(ex extract.Extractor, p types.Paper) (rels []types.Relation, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("extractor panic: %v", r)
		}
	}()
	return ex.Extract(p.Abstract)
}

// lockedWriter serializes progress lines from concurrent workers.
type lockedWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (l *lockedWriter) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.w.Write(p)
}
