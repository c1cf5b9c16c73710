// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package lexicon

import (
	"encoding/json"
	"fmt"
)

// StopwordSet holds punctuation-stripped stopwords excluded from tagging.
type StopwordSet map[string]struct{}

// NewStopwordSet strips punctuation from each word before adding it.
func NewStopwordSet(words []string) StopwordSet {
	set := make(StopwordSet, len(words))
	for _, w := range words {
		set[StripPunct(w)] = struct{}{}
	}
	return set
}

// Contains reports whether word is a stopword.
func (s StopwordSet) Contains(word string) bool {
	_, ok := s[word]
	return ok
}

// Filter returns words with stopwords removed.
func (s StopwordSet) Filter(words []string) []string {
	kept := make([]string, 0, len(words))
	for _, w := range words {
		if !s.Contains(w) {
			kept = append(kept, w)
		}
	}
	return kept
}

// ParseStopwords decodes a JSON array of stopwords.
func ParseStopwords(data []byte) (StopwordSet, error) {
	var words []string
	if err := json.Unmarshal(data, &words); err != nil {
		return nil, fmt.Errorf("%w: parsing stopwords: %v", ErrConfig, err)
	}
	return NewStopwordSet(words), nil
}
