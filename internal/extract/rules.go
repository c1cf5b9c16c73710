// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"fmt"
	"sort"
	"strings"

	lru "github.com/hashicorp/golang-lru"

	"github.com/pdiddy/gene-relations/internal/lexicon"
	"github.com/pdiddy/gene-relations/pkg/types"
)

const (
	// DefaultWindow is the n-gram size.
	DefaultWindow = 4

	// DefaultMinGenes reports a sentence only when it names a gene pair.
	DefaultMinGenes = 2

	// DefaultCacheSize bounds the memo of long-key lookups per candidate.
	DefaultCacheSize = 1 << 16
)

// TargetTags are the part-of-speech tags that may carry a gene name.
var TargetTags = []string{"NNP", "NN", "JJ", "VBP"}

// Rules is the rule-based extractor. For each sentence containing a
// relation stem it removes punctuation and stopwords, tags the words,
// slides an n-gram window over them, and matches every sub-combination of
// each window that holds a target-tagged word against the gene index:
// short keys by equality, long keys by occurring inside the candidate.
type Rules struct {
	index     *lexicon.GeneIndex
	stems     lexicon.RelationWords
	stopwords lexicon.StopwordSet
	tagger    Tagger

	n        int
	minGenes int
	targets  map[string]bool
	combos   map[int][][]int
	long     *lru.Cache
}

// RulesOption configures NewRules.
type RulesOption func(*Rules)

// WithMinGenes sets how many distinct genes a stem-gated sentence needs to
// be reported. Zero reports every stem-gated sentence, with or without genes.
func WithMinGenes(n int) RulesOption {
	return func(r *Rules) {
		if n >= 0 {
			r.minGenes = n
		}
	}
}

// WithWindow overrides DefaultWindow.
func WithWindow(n int) RulesOption {
	return func(r *Rules) {
		if n > 0 {
			r.n = n
		}
	}
}

// WithCacheSize overrides DefaultCacheSize; zero disables the memo.
func WithCacheSize(n int) RulesOption {
	return func(r *Rules) {
		r.long = nil
		if n > 0 {
			r.long, _ = lru.New(n)
		}
	}
}

// NewRules builds a rule-based extractor over lex. The lexicon is shared,
// never modified.
func NewRules(lex *lexicon.Lexicon, tagger Tagger, opts ...RulesOption) (*Rules, error) {
	if lex == nil || lex.Index == nil {
		return nil, fmt.Errorf("%w: rules extractor needs a gene index", lexicon.ErrConfig)
	}
	if tagger == nil {
		tagger = ProseTagger{}
	}
	r := &Rules{
		index:     lex.Index,
		stems:     lex.Stems,
		stopwords: lex.Stopwords,
		tagger:    tagger,
		n:         DefaultWindow,
		minGenes:  DefaultMinGenes,
		targets:   make(map[string]bool, len(TargetTags)),
	}
	for _, t := range TargetTags {
		r.targets[t] = true
	}
	WithCacheSize(DefaultCacheSize)(r)
	for _, opt := range opts {
		opt(r)
	}
	r.combos = make(map[int][][]int, r.n)
	for k := 1; k <= r.n; k++ {
		r.combos[k] = subsets(k)
	}
	return r, nil
}

// Extract returns one Relation per qualifying sentence, in sentence order.
func (r *Rules) Extract(text string) ([]types.Relation, error) {
	sentences, err := r.tagger.Sentences(text)
	if err != nil {
		return nil, err
	}

	var relations []types.Relation
	for _, sentence := range sentences {
		stems := r.stems.Match(sentence)
		if len(stems) == 0 {
			continue
		}
		genes, err := r.Genes(sentence)
		if err != nil {
			return nil, err
		}
		if len(genes) < r.minGenes {
			continue
		}
		relations = append(relations, types.Relation{
			Genes:    genes,
			Stems:    stems,
			Sentence: sentence,
		})
	}
	return relations, nil
}

// Genes returns the sorted canonical names of the genes detected in
// sentence. The result is never nil.
func (r *Rules) Genes(sentence string) ([]string, error) {
	words := r.stopwords.Filter(lexicon.SentenceWords(sentence))
	if len(words) == 0 {
		return []string{}, nil
	}
	tagged, err := r.tagger.Tag(words)
	if err != nil {
		return nil, err
	}

	found := make(map[string]struct{})
	tried := make(map[string]struct{})
	var b strings.Builder

	for _, window := range windows(tagged, r.n) {
		if !r.anyTarget(window, nil) {
			continue
		}
		for _, combo := range r.combos[len(window)] {
			if !r.anyTarget(window, combo) {
				continue
			}
			b.Reset()
			for _, i := range combo {
				b.WriteString(window[i].Text)
			}
			candidate := b.String()
			if _, ok := tried[candidate]; ok {
				continue
			}
			tried[candidate] = struct{}{}

			if name, ok := r.index.MatchShort(candidate); ok {
				found[name] = struct{}{}
			}
			for _, name := range r.matchLong(candidate) {
				found[name] = struct{}{}
			}
		}
	}

	genes := make([]string, 0, len(found))
	for name := range found {
		genes = append(genes, name)
	}
	sort.Strings(genes)
	return genes, nil
}

// anyTarget reports whether the words of window selected by combo (all of
// window when combo is nil) include a target tag.
func (r *Rules) anyTarget(window []TaggedWord, combo []int) bool {
	if combo == nil {
		for _, w := range window {
			if r.targets[w.Tag] {
				return true
			}
		}
		return false
	}
	for _, i := range combo {
		if r.targets[window[i].Tag] {
			return true
		}
	}
	return false
}

func (r *Rules) matchLong(candidate string) []string {
	if r.long == nil {
		return r.index.MatchLong(candidate)
	}
	if v, ok := r.long.Get(candidate); ok {
		return v.([]string)
	}
	names := r.index.MatchLong(candidate)
	r.long.Add(candidate, names)
	return names
}
