// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"strings"

	"github.com/pdiddy/gene-relations/internal/lexicon"
	"github.com/pdiddy/gene-relations/pkg/types"
)

// Simple is the baseline extractor: a lowercased sentence qualifies when it
// contains a relation stem and at least two gene names appear in it as
// whitespace-separated words. Sentences are reported lowercased.
type Simple struct {
	genes  []string
	stems  lexicon.RelationWords
	tagger Tagger
}

// NewSimple builds the baseline extractor from the lexicon's raw gene list.
func NewSimple(lex *lexicon.Lexicon, tagger Tagger) *Simple {
	if tagger == nil {
		tagger = ProseTagger{}
	}
	seen := make(map[string]bool, len(lex.Genes))
	genes := make([]string, 0, len(lex.Genes))
	for _, g := range lex.Genes {
		g = strings.ToLower(g)
		if !seen[g] {
			seen[g] = true
			genes = append(genes, g)
		}
	}
	return &Simple{genes: genes, stems: lex.Stems, tagger: tagger}
}

// Extract implements Extractor.
func (s *Simple) Extract(text string) ([]types.Relation, error) {
	sentences, err := s.tagger.Sentences(text)
	if err != nil {
		return nil, err
	}
	var relations []types.Relation
	for _, sentence := range sentences {
		lower := strings.ToLower(sentence)
		stems := s.stems.Match(lower)
		if len(stems) == 0 {
			continue
		}
		words := make(map[string]bool)
		for _, w := range strings.Fields(lower) {
			words[w] = true
		}
		var genes []string
		for _, g := range s.genes {
			if words[g] {
				genes = append(genes, g)
			}
		}
		if len(genes) < 2 {
			continue
		}
		relations = append(relations, types.Relation{Genes: genes, Stems: stems, Sentence: lower})
	}
	return relations, nil
}
