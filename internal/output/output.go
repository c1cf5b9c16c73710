// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package output serializes mined PaperResults. JSONWriter builds the
// result file as a growing JSON array, flushing periodically; it is meant
// to be driven by exactly one goroutine.
package output

import (
	"errors"
	"path/filepath"
	"strings"

	"github.com/pdiddy/gene-relations/pkg/types"
)

// Sink consumes PaperResults. Close finalizes whatever was written.
type Sink interface {
	Write(r types.PaperResult) error
	Close() error
}

// GenerateFilename returns name with its extension replaced by ext, or
// with ext appended when the base name has none ("output" becomes
// "output.json", "run.v2.xml" becomes "run.v2.json").
func GenerateFilename(name, ext string) string {
	dir, base := filepath.Split(name)
	if i := strings.LastIndex(base, "."); i > 0 {
		base = base[:i]
	}
	return dir + base + "." + strings.TrimPrefix(ext, ".")
}

// MultiSink fans every result out to several sinks.
type MultiSink []Sink

// Write writes r to every sink, stopping at the first error.
func (m MultiSink) Write(r types.PaperResult) error {
	for _, s := range m {
		if err := s.Write(r); err != nil {
			return err
		}
	}
	return nil
}

// Close closes every sink and joins their errors.
func (m MultiSink) Close() error {
	var errs []error
	for _, s := range m {
		if err := s.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
