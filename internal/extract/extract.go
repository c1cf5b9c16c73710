// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package extract detects candidate gene-gene relation statements in
// abstract text. Two variants implement Extractor: the rule-based matcher
// (Rules), which tags each relation-bearing sentence and matches n-gram
// sub-combinations against the gene index, and a baseline co-occurrence
// check (Simple). Sentence splitting and part-of-speech tagging sit behind
// the Tagger interface so tests can supply a deterministic one.
package extract

import (
	"fmt"

	"github.com/pdiddy/gene-relations/internal/lexicon"
	"github.com/pdiddy/gene-relations/pkg/types"
)

// Extractor maps one abstract to the relations found in it, in sentence
// order. Implementations are safe for concurrent use.
type Extractor interface {
	Extract(text string) ([]types.Relation, error)
}

// TaggedWord is one word with its Penn Treebank part-of-speech tag.
type TaggedWord struct {
	Text string
	Tag  string
}

// Tagger splits text into sentences and tags pre-tokenized words.
type Tagger interface {
	Sentences(text string) ([]string, error)
	Tag(words []string) ([]TaggedWord, error)
}

// New returns the extractor selected by kind. An empty kind selects the
// rule-based extractor; opts apply to it only.
func New(kind types.ExtractorKind, lex *lexicon.Lexicon, tagger Tagger, opts ...RulesOption) (Extractor, error) {
	switch kind {
	case "", types.ExtractorRules:
		return NewRules(lex, tagger, opts...)
	case types.ExtractorSimple:
		return NewSimple(lex, tagger), nil
	default:
		return nil, fmt.Errorf("%w: unknown extractor model %q (want %q or %q)",
			lexicon.ErrConfig, kind, types.ExtractorRules, types.ExtractorSimple)
	}
}
