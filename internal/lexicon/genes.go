// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package lexicon

import (
	"fmt"
	"sort"
	"unicode/utf8"

	"github.com/pdiddy/gene-relations/pkg/types"
)

// DefaultLengthThreshold is the key length at or below which genes match
// only by exact equality.
const DefaultLengthThreshold = 5

// Collision records two gene names that normalized to the same key.
type Collision struct {
	Key   string
	Kept  string
	Other string
}

// GeneIndex maps normalized gene keys to canonical gene names, partitioned
// by key length. It is immutable after Build and safe for concurrent use.
type GeneIndex struct {
	// Short holds keys of length <= Threshold; they match by equality.
	Short map[string]string
	// Long holds keys longer than Threshold; they match when the key occurs
	// inside the candidate string.
	Long map[string]string

	Threshold  int
	Policy     types.CollisionPolicy
	Collisions []Collision

	longKeys []string
	ac       *automaton
}

// BuildOption configures Build.
type BuildOption func(*buildOptions)

type buildOptions struct {
	threshold int
	policy    types.CollisionPolicy
	synonyms  map[string][]string
}

// WithThreshold overrides DefaultLengthThreshold.
func WithThreshold(n int) BuildOption {
	return func(o *buildOptions) {
		if n > 0 {
			o.threshold = n
		}
	}
}

// WithCollisionPolicy selects the duplicate-key policy.
func WithCollisionPolicy(p types.CollisionPolicy) BuildOption {
	return func(o *buildOptions) {
		if p != "" {
			o.policy = p
		}
	}
}

// WithSynonyms expands the gene list with the given synonym table (see
// ExpandSynonyms). Every member of an expanded set is indexed as its own
// gene, mapped to itself.
func WithSynonyms(table map[string][]string) BuildOption {
	return func(o *buildOptions) {
		o.synonyms = table
	}
}

// Build creates a GeneIndex from gene names. Names of one character or
// less are dropped, as are names whose key is empty. It fails with
// ErrConfig when no gene names are supplied.
func Build(names []string, opts ...BuildOption) (*GeneIndex, error) {
	o := buildOptions{threshold: DefaultLengthThreshold, policy: types.CollisionLastWins}
	for _, opt := range opts {
		opt(&o)
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("%w: gene list is empty", ErrConfig)
	}
	switch o.policy {
	case types.CollisionLastWins, types.CollisionFirstWins:
	default:
		return nil, fmt.Errorf("%w: unknown collision policy %q", ErrConfig, o.policy)
	}

	all := names
	if o.synonyms != nil {
		expanded := ExpandSynonyms(names, o.synonyms)
		all = make([]string, 0, len(names)+len(expanded)*2)
		all = append(all, names...)
		for _, target := range sortedKeys(expanded) {
			all = append(all, expanded[target]...)
		}
	}

	idx := &GeneIndex{
		Short:     make(map[string]string),
		Long:      make(map[string]string),
		Threshold: o.threshold,
		Policy:    o.policy,
	}
	for _, name := range all {
		if utf8.RuneCountInString(name) <= 1 {
			continue
		}
		key := Key(name)
		if key == "" {
			continue
		}
		idx.insert(key, name)
	}

	idx.longKeys = sortedKeys(idx.Long)
	idx.ac = newAutomaton(idx.longKeys)
	return idx, nil
}

func (g *GeneIndex) insert(key, name string) {
	part := g.Long
	if utf8.RuneCountInString(key) <= g.Threshold {
		part = g.Short
	}
	if prev, ok := part[key]; ok && prev != name {
		if g.Policy == types.CollisionFirstWins {
			g.Collisions = append(g.Collisions, Collision{Key: key, Kept: prev, Other: name})
			return
		}
		g.Collisions = append(g.Collisions, Collision{Key: key, Kept: name, Other: prev})
	}
	part[key] = name
}

// Len returns the number of indexed keys.
func (g *GeneIndex) Len() int {
	return len(g.Short) + len(g.Long)
}

// MatchShort returns the canonical name whose short key equals candidate.
func (g *GeneIndex) MatchShort(candidate string) (string, bool) {
	name, ok := g.Short[candidate]
	return name, ok
}

// MatchLong returns the canonical names of every long key occurring in
// candidate, without duplicates, in key order.
func (g *GeneIndex) MatchLong(candidate string) []string {
	if g.ac == nil || len(g.longKeys) == 0 {
		return nil
	}
	var hits []int32
	g.ac.scan(candidate, func(i int32) {
		hits = append(hits, i)
	})
	if len(hits) == 0 {
		return nil
	}
	sort.Slice(hits, func(i, j int) bool { return hits[i] < hits[j] })
	names := make([]string, 0, len(hits))
	for i, h := range hits {
		if i > 0 && hits[i-1] == h {
			continue
		}
		names = append(names, g.Long[g.longKeys[h]])
	}
	return names
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
