// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package fetch downloads PubMed records for a search query: esearch
// pages collect the ids, efetch batches retrieve the XML, and the batches
// are reassembled into a single PubmedArticleSet document that the corpus
// reader can stream.
package fetch

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pdiddy/gene-relations/internal/httputil"
	"github.com/pdiddy/gene-relations/internal/output"
	"github.com/pdiddy/gene-relations/pkg/types"
)

const (
	// DefaultBaseURL is the E-utilities endpoint root.
	DefaultBaseURL = "https://eutils.ncbi.nlm.nih.gov/entrez/eutils/"
	// DefaultTool identifies this client to NCBI.
	DefaultTool = "gene-relations"
	// DefaultSearchPageSize is the number of ids requested per esearch call.
	DefaultSearchPageSize = 100000
	// DefaultFetchBatchSize is the number of ids per efetch call.
	DefaultFetchBatchSize = 1000
	// DefaultBatchDelay is the pause between consecutive efetch calls.
	DefaultBatchDelay = time.Second
)

var (
	// ErrExists is returned when the download target already exists.
	ErrExists = errors.New("output file already exists")
	// ErrNoArticles is returned when the search matches nothing.
	ErrNoArticles = errors.New("no articles were found")
)

// WithDefaults fills unset fields of cfg.
func WithDefaults(cfg types.FetchConfig) types.FetchConfig {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Tool == "" {
		cfg.Tool = DefaultTool
	}
	if cfg.SearchPageSize <= 0 {
		cfg.SearchPageSize = DefaultSearchPageSize
	}
	if cfg.FetchBatchSize <= 0 {
		cfg.FetchBatchSize = DefaultFetchBatchSize
	}
	if cfg.BatchDelay < 0 {
		cfg.BatchDelay = 0
	}
	return cfg
}

// Request describes one download.
type Request struct {
	Terms  string
	Number int
	Sort   string

	// Output is the path stem; the extension becomes .xml (or .ids.json
	// with IDsOnly).
	Output string

	// IDsOnly saves the id list as JSON instead of fetching records.
	IDsOnly bool
}

// Client downloads PubMed records.
type Client struct {
	HTTP     *http.Client
	Searcher Searcher
	Config   types.FetchConfig
}

// NewClient returns a client using the Entrez searcher and an HTTP client
// with cfg's timeout.
func NewClient(cfg types.FetchConfig, w io.Writer) *Client {
	cfg = WithDefaults(cfg)
	return &Client{
		HTTP:     &http.Client{Timeout: cfg.Timeout},
		Searcher: NewEntrezSearcher(cfg, w),
		Config:   cfg,
	}
}

// Download runs req and returns the path written and the number of ids
// found. An existing target is never overwritten.
func (c *Client) Download(ctx context.Context, req Request, w io.Writer) (string, int, error) {
	cfg := WithDefaults(c.Config)
	if w == nil {
		w = io.Discard
	}
	if req.Number <= 0 {
		req.Number = 10
	}
	if req.Sort == "" {
		req.Sort = "relevance"
	}

	path := output.GenerateFilename(req.Output, "xml")
	if req.IDsOnly {
		path = output.GenerateFilename(req.Output, "ids.json")
	}
	if _, err := os.Stat(path); err == nil {
		return "", 0, fmt.Errorf("%w: %s", ErrExists, path)
	}

	ids, err := c.Searcher.Search(ctx, req.Terms, req.Number, req.Sort)
	if err != nil {
		return "", 0, fmt.Errorf("searching PubMed: %w", err)
	}
	if len(ids) == 0 {
		return "", 0, ErrNoArticles
	}

	if req.IDsOnly {
		data, err := json.Marshal(ids)
		if err != nil {
			return "", 0, fmt.Errorf("encoding ids: %w", err)
		}
		return path, len(ids), writeAtomic(path, func(f io.Writer) error {
			_, err := f.Write(data)
			return err
		})
	}

	fmt.Fprintf(w, "Downloading %d results to %s\n", len(ids), path)
	err = writeAtomic(path, func(f io.Writer) error {
		return c.fetchAll(ctx, cfg, ids, f, w)
	})
	if err != nil {
		return "", len(ids), err
	}
	return path, len(ids), nil
}

// fetchAll writes every batch into one PubmedArticleSet document.
func (c *Client) fetchAll(ctx context.Context, cfg types.FetchConfig, ids []string, f io.Writer, w io.Writer) error {
	asm := newAssembler(f)
	for start := 0; start < len(ids); start += cfg.FetchBatchSize {
		if start > 0 && cfg.BatchDelay > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(cfg.BatchDelay):
			}
		}
		end := min(start+cfg.FetchBatchSize, len(ids))
		fmt.Fprintf(w, "Downloading from ID %d...\n", start)

		batch, err := c.efetch(ctx, cfg, ids[start:end], w)
		if err != nil {
			return fmt.Errorf("fetching ids %d-%d: %w", start, end-1, err)
		}
		if err := asm.add(batch); err != nil {
			return fmt.Errorf("assembling ids %d-%d: %w", start, end-1, err)
		}
	}
	return asm.close()
}

func (c *Client) efetch(ctx context.Context, cfg types.FetchConfig, ids []string, w io.Writer) ([]byte, error) {
	form := url.Values{
		"db":      {"pubmed"},
		"retmode": {"xml"},
		"id":      {strings.Join(ids, ",")},
		"tool":    {cfg.Tool},
	}
	if cfg.APIKey != "" {
		form.Set("api_key", cfg.APIKey)
	}
	if cfg.Email != "" {
		form.Set("email", cfg.Email)
	}

	endpoint := strings.TrimSuffix(cfg.BaseURL, "/") + "/efetch.fcgi"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if cfg.UserAgent != "" {
		req.Header.Set("User-Agent", cfg.UserAgent)
	}

	resp, err := httputil.DoWithRetry(ctx, c.HTTP, req, cfg.MaxRetries, w)
	if err != nil {
		return nil, fmt.Errorf("efetch request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("efetch returned HTTP %d", resp.StatusCode)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading efetch response: %w", err)
	}
	return data, nil
}

// writeAtomic writes path through a temporary file in the same directory,
// renaming it into place only when fill succeeds.
func writeAtomic(path string, fill func(io.Writer) error) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".download-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if err := fill(tmp); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("renaming to %s: %w", path, err)
	}
	return nil
}

// assembler concatenates efetch batches into a single document: one XML
// header and root element, with the body of every batch's
// PubmedArticleSet copied in order.
type assembler struct {
	w       io.Writer
	started bool
}

var (
	rootOpen  = []byte("<PubmedArticleSet")
	rootClose = []byte("</PubmedArticleSet>")
)

func newAssembler(w io.Writer) *assembler {
	return &assembler{w: w}
}

func (a *assembler) add(doc []byte) error {
	body, err := setBody(doc)
	if err != nil {
		return err
	}
	if !a.started {
		a.started = true
		if _, err := io.WriteString(a.w, "<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n<PubmedArticleSet>"); err != nil {
			return err
		}
	}
	_, err = a.w.Write(body)
	return err
}

func (a *assembler) close() error {
	if !a.started {
		if err := a.add([]byte("<PubmedArticleSet/>")); err != nil {
			return err
		}
	}
	_, err := io.WriteString(a.w, "\n</PubmedArticleSet>\n")
	return err
}

// setBody returns the content between the PubmedArticleSet tags of doc.
func setBody(doc []byte) ([]byte, error) {
	i := bytes.Index(doc, rootOpen)
	if i < 0 {
		return nil, fmt.Errorf("response has no PubmedArticleSet element")
	}
	rest := doc[i+len(rootOpen):]
	gt := bytes.IndexByte(rest, '>')
	if gt < 0 {
		return nil, fmt.Errorf("unterminated PubmedArticleSet tag")
	}
	if gt > 0 && rest[gt-1] == '/' {
		return nil, nil
	}
	rest = rest[gt+1:]
	j := bytes.LastIndex(rest, rootClose)
	if j < 0 {
		return nil, fmt.Errorf("response is truncated: missing </PubmedArticleSet>")
	}
	return rest[:j], nil
}
