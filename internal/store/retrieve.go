// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/pdiddy/gene-relations/pkg/types"
)

// QueryOptions filters relation queries. Filters combine with AND.
type QueryOptions struct {
	// Genes requires every listed gene in the relation (case-insensitive).
	Genes []string

	// Stem requires the relation to carry this stem.
	Stem string

	// Text is a case-insensitive substring of the sentence.
	Text string

	// PMID restricts results to one paper.
	PMID string

	// Year restricts results to one publication year.
	Year string

	// MaxResults limits result count. Zero uses the store default.
	MaxResults int
}

// IsEmpty reports whether the query has no filters.
func (q QueryOptions) IsEmpty() bool {
	return len(q.Genes) == 0 && q.Stem == "" && q.Text == "" && q.PMID == "" && q.Year == ""
}

// QueryResult is one stored relation with its paper metadata.
type QueryResult struct {
	PMID         string `json:"pmid" yaml:"pmid"`
	Year         string `json:"year" yaml:"year"`
	JournalTitle string `json:"journal_title" yaml:"journal_title"`
	ArticleTitle string `json:"article_title" yaml:"article_title"`
	types.Relation `yaml:",inline"`
}

// Retrieve returns the relations matching opts in paper and sentence order.
func (s *Store) Retrieve(ctx context.Context, opts QueryOptions) ([]QueryResult, error) {
	maxResults := opts.MaxResults
	if maxResults <= 0 {
		maxResults = s.maxResults
	}

	var (
		qb   strings.Builder
		args []any
	)
	qb.WriteString(
		`SELECT r.pmid, p.year, p.journal_title, p.article_title,
			r.sentence, r.stems, r.genes
		FROM relations r
		JOIN papers p ON p.pmid = r.pmid
		WHERE 1=1`)

	for _, g := range opts.Genes {
		qb.WriteString(` AND EXISTS (SELECT 1 FROM relation_genes g WHERE g.relation_id = r.id AND g.gene = ?)`)
		args = append(args, g)
	}
	if opts.Stem != "" {
		qb.WriteString(` AND EXISTS (SELECT 1 FROM json_each(r.stems) WHERE value = ?)`)
		args = append(args, opts.Stem)
	}
	if opts.Text != "" {
		qb.WriteString(` AND r.sentence LIKE ? ESCAPE '\'`)
		args = append(args, "%"+escapeLike(opts.Text)+"%")
	}
	if opts.PMID != "" {
		qb.WriteString(` AND r.pmid = ?`)
		args = append(args, opts.PMID)
	}
	if opts.Year != "" {
		qb.WriteString(` AND p.year = ?`)
		args = append(args, opts.Year)
	}

	qb.WriteString(` ORDER BY r.pmid, r.position LIMIT ?`)
	args = append(args, maxResults)

	rows, err := s.db.QueryContext(ctx, qb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("querying relations: %w", err)
	}
	defer rows.Close()

	var results []QueryResult
	for rows.Next() {
		var (
			qr                   QueryResult
			stemsJSON, genesJSON string
		)
		if err := rows.Scan(&qr.PMID, &qr.Year, &qr.JournalTitle, &qr.ArticleTitle,
			&qr.Sentence, &stemsJSON, &genesJSON); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		json.Unmarshal([]byte(stemsJSON), &qr.Stems)
		json.Unmarshal([]byte(genesJSON), &qr.Genes)
		results = append(results, qr)
	}
	return results, rows.Err()
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
