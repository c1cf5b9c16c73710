// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package fetch

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/biogo/ncbi"
	"github.com/biogo/ncbi/entrez"

	"github.com/pdiddy/gene-relations/pkg/types"
)

// Searcher returns up to number PubMed ids matching terms.
type Searcher interface {
	Search(ctx context.Context, terms string, number int, sort string) ([]string, error)
}

// EntrezSearcher pages through esearch with the biogo entrez client.
type EntrezSearcher struct {
	tool, email, apiKey string
	pageSize            int
	w                   io.Writer
}

// NewEntrezSearcher configures the entrez client from cfg. The rate limit
// is NCBI's: 10 requests per second with an API key, 3 without.
func NewEntrezSearcher(cfg types.FetchConfig, w io.Writer) *EntrezSearcher {
	if cfg.APIKey != "" {
		entrez.Limit = ncbi.NewLimiter(time.Second / 10)
	} else {
		entrez.Limit = ncbi.NewLimiter(time.Second / 3)
	}
	if cfg.Timeout > 0 {
		ncbi.SetTimeout(cfg.Timeout)
	}
	if w == nil {
		w = io.Discard
	}
	return &EntrezSearcher{
		tool:     cfg.Tool,
		email:    cfg.Email,
		apiKey:   cfg.APIKey,
		pageSize: cfg.SearchPageSize,
		w:        w,
	}
}

// Search implements Searcher.
func (e *EntrezSearcher) Search(ctx context.Context, terms string, number int, sort string) ([]string, error) {
	fmt.Fprintf(e.w, "Fetching %d IDs...\n", number)
	return searchPages(ctx, number, e.pageSize, func(retStart, retMax int) ([]string, error) {
		fmt.Fprintf(e.w, "Fetching from ID %d...\n", retStart)
		p := &entrez.Parameters{
			RetStart: retStart,
			RetMax:   retMax,
			Sort:     sort,
			APIKey:   e.apiKey,
		}
		s, err := entrez.DoSearch("pubmed", terms, p, nil, e.tool, e.email)
		if err != nil {
			return nil, fmt.Errorf("esearch: %w", err)
		}
		ids := make([]string, len(s.IdList))
		for i, id := range s.IdList {
			ids[i] = strconv.Itoa(id)
		}
		return ids, nil
	})
}

// searchPages requests ids in pages of pageSize until number ids are
// collected or a page comes back short.
func searchPages(ctx context.Context, number, pageSize int, page func(retStart, retMax int) ([]string, error)) ([]string, error) {
	if pageSize <= 0 {
		pageSize = DefaultSearchPageSize
	}
	var ids []string
	for retStart := 0; retStart < number; retStart += pageSize {
		if err := ctx.Err(); err != nil {
			return ids, err
		}
		retMax := min(pageSize, number-retStart)
		got, err := page(retStart, retMax)
		if err != nil {
			return ids, err
		}
		ids = append(ids, got...)
		if len(got) < retMax {
			break
		}
	}
	return ids, nil
}
