// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"

	"github.com/pdiddy/gene-relations/pkg/types"
)

// Sink indexes results as the mining pipeline produces them. It satisfies
// output.Sink and, like every sink, is driven by one goroutine.
type Sink struct {
	ctx   context.Context
	store *Store
	sum   IngestSummary
}

// NewSink starts a run labelled source.
func (s *Store) NewSink(ctx context.Context, source string) (*Sink, error) {
	runID, err := s.beginRun(ctx, source, "")
	if err != nil {
		return nil, err
	}
	return &Sink{ctx: ctx, store: s, sum: IngestSummary{RunID: runID}}, nil
}

// Write indexes one result.
func (k *Sink) Write(r types.PaperResult) error {
	return k.store.ingestResult(k.ctx, k.sum.RunID, r, &k.sum)
}

// Close marks the run finished. The Store stays open.
func (k *Sink) Close() error {
	return k.store.finishRun(context.WithoutCancel(k.ctx), k.sum)
}

// Summary returns the counts so far.
func (k *Sink) Summary() IngestSummary { return k.sum }
