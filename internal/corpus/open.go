// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package corpus

import (
	"bufio"
	"compress/gzip"
	"fmt"
	"io"
	"os"
)

// multiCloser closes every closer in order, returning the first error.
type multiCloser []io.Closer

func (m multiCloser) Close() error {
	var err error
	for _, c := range m {
		if cerr := c.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	return err
}

// Open opens a PubMed XML file for streaming. Gzip input is detected by
// its magic number. "-" reads standard input.
func Open(path string) (*Reader, error) {
	var (
		src     io.Reader
		closers multiCloser
	)
	if path == "-" {
		src = os.Stdin
	} else {
		fh, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("%w: opening corpus: %v", ErrInput, err)
		}
		src = fh
		closers = append(closers, fh)
	}

	br := bufio.NewReaderSize(src, 64<<10)
	if sig, _ := br.Peek(2); len(sig) == 2 && sig[0] == 0x1f && sig[1] == 0x8b {
		gr, err := gzip.NewReader(br)
		if err != nil {
			_ = closers.Close()
			return nil, fmt.Errorf("%w: opening gzip corpus %s: %v", ErrInput, path, err)
		}
		r := NewReader(gr)
		r.closer = append(multiCloser{gr}, closers...)
		return r, nil
	}

	r := NewReader(br)
	r.closer = closers
	return r, nil
}
