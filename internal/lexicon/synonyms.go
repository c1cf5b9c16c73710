// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package lexicon

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ExpandSynonyms selects the synonym sets relevant to the requested genes.
//
// A table symbol that is itself a requested gene (exact match) keeps its
// synonym list. Otherwise the first synonym whose lowercase form matches a
// requested gene becomes the key, and its set is the symbol's synonyms plus
// the symbol. Table symbols are visited in sorted order, so later symbols
// overwrite earlier ones that share a synonym key.
func ExpandSynonyms(genes []string, table map[string][]string) map[string][]string {
	requested := make(map[string]bool, len(genes))
	lowered := make(map[string]bool, len(genes))
	for _, g := range genes {
		requested[g] = true
		lowered[strings.ToLower(g)] = true
	}

	out := make(map[string][]string)
	for _, symbol := range sortedKeys(table) {
		syns := table[symbol]
		if requested[symbol] {
			out[symbol] = append([]string(nil), syns...)
			continue
		}
		for _, syn := range syns {
			if lowered[strings.ToLower(syn)] {
				set := make([]string, 0, len(syns)+1)
				set = append(set, syns...)
				out[syn] = append(set, symbol)
				break
			}
		}
	}
	return out
}

// ParseSynonyms decodes a JSON object mapping gene symbols to synonym arrays.
func ParseSynonyms(data []byte) (map[string][]string, error) {
	var table map[string][]string
	if err := json.Unmarshal(data, &table); err != nil {
		return nil, fmt.Errorf("%w: parsing synonym table: %v", ErrConfig, err)
	}
	return table, nil
}
