// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"fmt"
	"strings"
)

// PairCount is how often two genes were reported in the same relation.
type PairCount struct {
	GeneA     string `json:"gene_a" yaml:"gene_a"`
	GeneB     string `json:"gene_b" yaml:"gene_b"`
	Relations int    `json:"relations" yaml:"relations"`
	Papers    int    `json:"papers" yaml:"papers"`
}

// PairOptions filters GenePairs.
type PairOptions struct {
	// Gene restricts pairs to those containing this gene.
	Gene string

	// MinRelations drops pairs seen in fewer relations.
	MinRelations int

	// MaxResults limits result count. Zero uses the store default.
	MaxResults int
}

// GenePairs aggregates co-reported gene pairs, most frequent first. Each
// pair is reported once with GeneA < GeneB.
func (s *Store) GenePairs(ctx context.Context, opts PairOptions) ([]PairCount, error) {
	maxResults := opts.MaxResults
	if maxResults <= 0 {
		maxResults = s.maxResults
	}

	var (
		qb   strings.Builder
		args []any
	)
	qb.WriteString(
		`SELECT a.gene, b.gene, count(*) AS n, count(DISTINCT r.pmid)
		FROM relation_genes a
		JOIN relation_genes b ON b.relation_id = a.relation_id AND a.gene < b.gene
		JOIN relations r ON r.id = a.relation_id`)
	if opts.Gene != "" {
		qb.WriteString(` WHERE (a.gene = ? OR b.gene = ?)`)
		args = append(args, opts.Gene, opts.Gene)
	}
	qb.WriteString(` GROUP BY a.gene, b.gene`)
	if opts.MinRelations > 1 {
		qb.WriteString(` HAVING count(*) >= ?`)
		args = append(args, opts.MinRelations)
	}
	qb.WriteString(` ORDER BY n DESC, a.gene, b.gene LIMIT ?`)
	args = append(args, maxResults)

	rows, err := s.db.QueryContext(ctx, qb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("aggregating gene pairs: %w", err)
	}
	defer rows.Close()

	var pairs []PairCount
	for rows.Next() {
		var p PairCount
		if err := rows.Scan(&p.GeneA, &p.GeneB, &p.Relations, &p.Papers); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		pairs = append(pairs, p)
	}
	return pairs, rows.Err()
}
