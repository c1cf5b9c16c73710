// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/gene-relations/internal/corpus"
	"github.com/pdiddy/gene-relations/internal/output"
	"github.com/pdiddy/gene-relations/pkg/types"
)

// --- fakes ---

// sliceSource yields papers, then failAt's error (if set) or io.EOF.
type sliceSource struct {
	papers []types.Paper
	err    error
	i      int
}

func (s *sliceSource) Next() (types.Paper, error) {
	if s.i >= len(s.papers) {
		if s.err != nil {
			return types.Paper{}, s.err
		}
		return types.Paper{}, io.EOF
	}
	p := s.papers[s.i]
	s.i++
	return p, nil
}

// keywordExtractor reports one relation when the abstract mentions
// "regulates", fails on "boom" and panics on "panic".
type keywordExtractor struct{}

func (keywordExtractor) Extract(text string) ([]types.Relation, error) {
	switch {
	case strings.Contains(text, "panic"):
		panic("tagger exploded")
	case strings.Contains(text, "boom"):
		return nil, errors.New("malformed text")
	case strings.Contains(text, "regulates"):
		return []types.Relation{{Genes: []string{"a", "b"}, Stems: []string{"regulates"}, Sentence: text}}, nil
	}
	return nil, nil
}

type memSink struct {
	mu     sync.Mutex
	got    []string
	err    error
	closed bool
}

func (s *memSink) Write(r types.PaperResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.got = append(s.got, r.PMID)
	return nil
}

func (s *memSink) Close() error {
	s.closed = true
	return nil
}

func papers(abstracts ...string) []types.Paper {
	out := make([]types.Paper, len(abstracts))
	for i, a := range abstracts {
		out[i] = types.Paper{ID: fmt.Sprint(i + 1), Year: "2020", Abstract: a}
	}
	return out
}

func manyPapers(n int) []types.Paper {
	abstracts := make([]string, n)
	for i := range abstracts {
		if i%2 == 0 {
			abstracts[i] = "x regulates y"
		} else {
			abstracts[i] = "nothing"
		}
	}
	return papers(abstracts...)
}

// runWithTimeout fails the test instead of hanging if Run deadlocks.
func runWithTimeout(t *testing.T, opts Options, src Source, sink output.Sink, w io.Writer) (Summary, error) {
	t.Helper()
	type ret struct {
		sum Summary
		err error
	}
	done := make(chan ret, 1)
	go func() {
		sum, err := Run(context.Background(), opts, src, keywordExtractor{}, sink, w)
		done <- ret{sum, err}
	}()
	select {
	case r := <-done:
		return r.sum, r.err
	case <-time.After(10 * time.Second):
		t.Fatal("pipeline did not finish")
		return Summary{}, nil
	}
}

// --- tests ---

func TestRun_CountsAndWritesEveryResult(t *testing.T) {
	for _, workers := range []int{1, 3, 8} {
		t.Run(fmt.Sprintf("%d workers", workers), func(t *testing.T) {
			sink := &memSink{}
			sum, err := runWithTimeout(t, Options{Workers: workers, BatchSize: 5, QueueSize: 2},
				&sliceSource{papers: manyPapers(101)}, sink, nil)
			require.NoError(t, err)

			assert.Equal(t, Summary{Read: 101, Extracted: 51, Dropped: 50, Written: 51}, sum)
			assert.True(t, sink.closed)
			sort.Strings(sink.got)
			assert.Len(t, sink.got, 51)
		})
	}
}

func TestRun_PerPaperFailuresAreIsolated(t *testing.T) {
	var log bytes.Buffer
	sink := &memSink{}
	sum, err := runWithTimeout(t, Options{Workers: 2},
		&sliceSource{papers: papers("a regulates b", "boom", "panic", "c regulates d", "plain")}, sink, &log)
	require.NoError(t, err)

	assert.Equal(t, Summary{Read: 5, Extracted: 2, Dropped: 1, Failed: 2, Written: 2}, sum)
	assert.True(t, sum.HasFailures())
	assert.Contains(t, log.String(), "failed  2: malformed text")
	assert.Contains(t, log.String(), "failed  3: extractor panic: tagger exploded")
}

func TestRun_ParseErrorStillFinalizesOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.json")
	sink := output.NewJSONWriter(path, 2)
	parseErr := &corpus.ParseError{Offset: 42, Err: errors.New("unexpected EOF")}

	sum, err := runWithTimeout(t, Options{Workers: 3, BatchSize: 5, QueueSize: 1},
		&sliceSource{papers: manyPapers(12), err: parseErr}, sink, nil)
	require.Error(t, err)
	var pe *corpus.ParseError
	assert.True(t, errors.As(err, &pe))
	assert.Equal(t, 12, sum.Read)
	assert.Equal(t, 6, sum.Written, "papers read before the error are still written")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var got []types.PaperResult
	require.NoError(t, json.Unmarshal(data, &got), "output is valid JSON")
	assert.Len(t, got, 6)
}

func TestRun_ImmediateParseError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.json")
	sum, err := runWithTimeout(t, Options{Workers: 2},
		&sliceSource{err: &corpus.ParseError{Err: errors.New("bad")}}, output.NewJSONWriter(path, 0), nil)
	require.Error(t, err)
	assert.Zero(t, sum.Read)

	_, statErr := os.Stat(path)
	assert.True(t, errors.Is(statErr, os.ErrNotExist), "no results, no file")
}

func TestRun_NoResultsCreatesNoFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.json")
	sum, err := runWithTimeout(t, Options{},
		&sliceSource{papers: papers("nothing", "to", "see")}, output.NewJSONWriter(path, 0), nil)
	require.NoError(t, err)
	assert.Equal(t, 3, sum.Dropped)
	assert.Zero(t, sum.Written)

	_, statErr := os.Stat(path)
	assert.True(t, errors.Is(statErr, os.ErrNotExist))
}

func TestRun_SinkErrorStopsWithoutDeadlock(t *testing.T) {
	sink := &memSink{err: errors.New("disk full")}
	sum, err := runWithTimeout(t, Options{Workers: 2, BatchSize: 1, QueueSize: 1},
		&sliceSource{papers: manyPapers(500)}, sink, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	assert.Zero(t, sum.Written)
	assert.True(t, sink.closed)
}

func TestRun_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	sink := &memSink{}
	_, err := Run(ctx, Options{Workers: 2}, &sliceSource{papers: manyPapers(20)}, keywordExtractor{}, sink, nil)
	assert.ErrorIs(t, err, context.Canceled)
	assert.True(t, sink.closed)
}

// endlessSource never runs out of papers.
type endlessSource struct{ n int }

func (s *endlessSource) Next() (types.Paper, error) {
	s.n++
	return types.Paper{ID: fmt.Sprint(s.n), Abstract: "x regulates y"}, nil
}

// cancelingExtractor cancels the run after its first extraction.
type cancelingExtractor struct {
	once   sync.Once
	cancel context.CancelFunc
}

func (e *cancelingExtractor) Extract(text string) ([]types.Relation, error) {
	e.once.Do(e.cancel)
	return keywordExtractor{}.Extract(text)
}

func TestRun_CancelMidRunStopsWorkers(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sink := &memSink{}
	ex := &cancelingExtractor{cancel: cancel}

	type ret struct {
		sum Summary
		err error
	}
	done := make(chan ret, 1)
	go func() {
		sum, err := Run(ctx, Options{Workers: 4, BatchSize: 5, QueueSize: 2}, &endlessSource{}, ex, sink, nil)
		done <- ret{sum, err}
	}()

	select {
	case r := <-done:
		assert.ErrorIs(t, r.err, context.Canceled)
		assert.LessOrEqual(t, r.sum.Extracted+r.sum.Dropped+r.sum.Failed, r.sum.Read)
		assert.Equal(t, r.sum.Extracted, r.sum.Written)
		assert.True(t, sink.closed)
	case <-time.After(10 * time.Second):
		t.Fatal("pipeline did not stop after cancellation")
	}
}

func TestRun_CorpusEndToEnd(t *testing.T) {
	r, err := corpus.Open("../corpus/testdata/tp53_sample.xml")
	require.NoError(t, err)
	defer r.Close()

	path := filepath.Join(t.TempDir(), "out.json")
	var progress bytes.Buffer
	sum, err := runWithTimeout(t, Options{Workers: 2, Progress: &progress}, r, output.NewJSONWriter(path, 0), nil)
	require.NoError(t, err)
	assert.Equal(t, 5, sum.Read)
	assert.Equal(t, 3, sum.Written)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var got []types.PaperResult
	require.NoError(t, json.Unmarshal(data, &got))
	ids := []string{got[0].PMID, got[1].PMID, got[2].PMID}
	assert.ElementsMatch(t, []string{"30001001", "30001002", "30001007"}, ids)
}

func TestSummary_String(t *testing.T) {
	s := Summary{Read: 10, Extracted: 4, Dropped: 5, Failed: 1, Written: 4}
	assert.Equal(t, "read 10, extracted 4, dropped 5, failed 1, written 4", s.String())
}
