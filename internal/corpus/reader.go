// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package corpus streams paper records out of PubMed XML (the
// PubmedArticleSet format returned by Entrez efetch). One PubmedArticle
// element is decoded at a time, so memory use does not grow with the size
// of the document.
package corpus

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode"

	"github.com/pdiddy/gene-relations/pkg/types"
)

// ErrInput marks an unreadable corpus source.
var ErrInput = errors.New("corpus input error")

// ParseError reports structurally invalid XML at a byte offset.
type ParseError struct {
	Offset int64
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parsing corpus at byte %d: %v", e.Offset, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Reader yields Papers from a PubMed XML stream. It is not safe for
// concurrent use.
type Reader struct {
	dec    *xml.Decoder
	closer io.Closer

	// Skipped counts articles dropped for lacking an abstract.
	Skipped int
}

// NewReader streams from r. The caller keeps ownership of r.
func NewReader(r io.Reader) *Reader {
	dec := xml.NewDecoder(r)
	// PubMed declares UTF-8; other labels are passed through unchanged.
	dec.CharsetReader = func(_ string, in io.Reader) (io.Reader, error) { return in, nil }
	return &Reader{dec: dec}
}

// Next returns the next paper with a non-empty abstract. It returns io.EOF
// once the document is exhausted and a *ParseError when the XML is
// malformed; the Reader is unusable after either.
func (r *Reader) Next() (types.Paper, error) {
	for {
		tok, err := r.dec.Token()
		if err == io.EOF {
			return types.Paper{}, io.EOF
		}
		if err != nil {
			return types.Paper{}, r.parseError(err)
		}
		start, ok := tok.(xml.StartElement)
		if !ok || start.Name.Local != "PubmedArticle" {
			continue
		}

		var a pubmedArticle
		if err := r.dec.DecodeElement(&a, &start); err != nil {
			return types.Paper{}, r.parseError(err)
		}
		p, ok := a.paper()
		if !ok {
			r.Skipped++
			continue
		}
		return p, nil
	}
}

// Close releases the underlying file when the Reader was created by Open.
func (r *Reader) Close() error {
	if r.closer == nil {
		return nil
	}
	return r.closer.Close()
}

func (r *Reader) parseError(err error) error {
	if err == io.EOF {
		err = io.ErrUnexpectedEOF
	}
	return &ParseError{Offset: r.dec.InputOffset(), Err: err}
}

// PubMed XML structures; only the fields the miner reads.
type pubmedArticle struct {
	MedlineCitation struct {
		PMID    string `xml:"PMID"`
		Article struct {
			Journal struct {
				Title        string `xml:"Title"`
				JournalIssue struct {
					PubDate struct {
						Year        string `xml:"Year"`
						MedlineDate string `xml:"MedlineDate"`
					} `xml:"PubDate"`
				} `xml:"JournalIssue"`
			} `xml:"Journal"`
			ArticleTitle innerText  `xml:"ArticleTitle"`
			Abstract     *innerText `xml:"Abstract"`
			ArticleDate  []struct {
				Year string `xml:"Year"`
			} `xml:"ArticleDate"`
		} `xml:"Article"`
	} `xml:"MedlineCitation"`
}

func (a *pubmedArticle) paper() (types.Paper, bool) {
	art := a.MedlineCitation.Article
	if art.Abstract == nil {
		return types.Paper{}, false
	}
	abstract := strings.TrimSpace(string(*art.Abstract))
	if abstract == "" {
		return types.Paper{}, false
	}
	return types.Paper{
		ID:           strings.TrimSpace(a.MedlineCitation.PMID),
		Year:         a.year(),
		JournalTitle: strings.TrimSpace(art.Journal.Title),
		ArticleTitle: strings.TrimSpace(string(art.ArticleTitle)),
		Abstract:     abstract,
	}, true
}

// year prefers the electronic ArticleDate, then the journal issue date,
// then the leading year of a free-form MedlineDate ("1998 Dec-1999 Jan").
func (a *pubmedArticle) year() string {
	art := a.MedlineCitation.Article
	for _, d := range art.ArticleDate {
		if y := strings.TrimSpace(d.Year); y != "" {
			return y
		}
	}
	pub := art.Journal.JournalIssue.PubDate
	if y := strings.TrimSpace(pub.Year); y != "" {
		return y
	}
	if md := strings.TrimSpace(pub.MedlineDate); len(md) >= 4 && allDigits(md[:4]) {
		return md[:4]
	}
	return types.UnknownYear
}

func allDigits(s string) bool {
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// innerText is the concatenated character data of an element and all its
// descendants in document order, so inline markup (<i>, <sup>) and
// sectioned abstracts (several AbstractText children) read as plain text.
type innerText string

func (t *innerText) UnmarshalXML(d *xml.Decoder, _ xml.StartElement) error {
	var b strings.Builder
	depth := 0
	for {
		tok, err := d.Token()
		if err != nil {
			return err
		}
		switch v := tok.(type) {
		case xml.CharData:
			b.Write(v)
		case xml.StartElement:
			depth++
		case xml.EndElement:
			if depth == 0 {
				*t = innerText(b.String())
				return nil
			}
			depth--
		}
	}
}
