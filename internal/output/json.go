// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package output

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"

	"github.com/pdiddy/gene-relations/pkg/types"
)

// DefaultFlushEvery is the number of results buffered between flushes.
const DefaultFlushEvery = 50

// JSONWriter appends PaperResults to a JSON array file. The file is
// created on the first Write, so a run without results leaves no file.
// The array is closed by Close.
type JSONWriter struct {
	path       string
	flushEvery int

	f       *os.File
	buf     *bufio.Writer
	count   int
	pending int
	closed  bool
}

// NewJSONWriter returns a writer for path. flushEvery <= 0 selects
// DefaultFlushEvery.
func NewJSONWriter(path string, flushEvery int) *JSONWriter {
	if flushEvery <= 0 {
		flushEvery = DefaultFlushEvery
	}
	return &JSONWriter{path: path, flushEvery: flushEvery}
}

// Path returns the output file path.
func (w *JSONWriter) Path() string { return w.path }

// Count returns the number of results written so far.
func (w *JSONWriter) Count() int { return w.count }

// Write appends r to the array.
func (w *JSONWriter) Write(r types.PaperResult) error {
	if w.closed {
		return fmt.Errorf("writing %s: writer is closed", w.path)
	}
	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("encoding result %s: %w", r.PMID, err)
	}

	if w.f == nil {
		f, err := os.Create(w.path)
		if err != nil {
			return fmt.Errorf("creating output file: %w", err)
		}
		w.f = f
		w.buf = bufio.NewWriterSize(f, 64<<10)
		w.buf.WriteByte('[')
	} else {
		w.buf.WriteString(", ")
	}
	w.buf.Write(data)
	w.count++
	w.pending++

	if w.pending >= w.flushEvery {
		w.pending = 0
		if err := w.buf.Flush(); err != nil {
			return fmt.Errorf("flushing %s: %w", w.path, err)
		}
	}
	return nil
}

// Close terminates the array and closes the file. It is a no-op when
// nothing was written, and safe to call more than once.
func (w *JSONWriter) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	if w.f == nil {
		return nil
	}
	w.buf.WriteByte(']')
	if err := w.buf.Flush(); err != nil {
		w.f.Close()
		return fmt.Errorf("flushing %s: %w", w.path, err)
	}
	if err := w.f.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", w.path, err)
	}
	return nil
}
