// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package lexicon

import "strings"

// RelationWords is the ordered set of relation stems that gate sentence
// processing. Membership is case-sensitive substring containment.
type RelationWords []string

// NewRelationWords trims the stems and drops blanks and duplicates,
// keeping first-seen order. A blank stem would match every sentence.
func NewRelationWords(stems []string) RelationWords {
	seen := make(map[string]bool, len(stems))
	rw := make(RelationWords, 0, len(stems))
	for _, s := range stems {
		s = strings.TrimSpace(s)
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		rw = append(rw, s)
	}
	return rw
}

// Match returns the stems that occur in sentence, in stem order.
func (rw RelationWords) Match(sentence string) []string {
	var found []string
	for _, s := range rw {
		if strings.Contains(sentence, s) {
			found = append(found, s)
		}
	}
	return found
}
