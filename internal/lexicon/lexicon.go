// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package lexicon loads and indexes the dictionaries used by the relation
// extractors: gene names (optionally expanded with synonyms), relation
// stems, and stopwords. Everything it returns is read-only after loading and
// is shared by all extraction workers without locking.
package lexicon

import (
	"bufio"
	"bytes"
	"embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/pdiddy/gene-relations/pkg/types"
)

// ErrConfig marks configuration errors: missing or unreadable dictionary
// files, an empty gene list, malformed JSON.
var ErrConfig = errors.New("configuration error")

// DefaultSynonyms is the SynonymsFile value selecting the bundled table.
const DefaultSynonyms = "default"

//go:embed data
var bundled embed.FS

const (
	bundledGenes     = "data/genes.txt"
	bundledStems     = "data/stems.txt"
	bundledStopwords = "data/stopwords.json"
	bundledSynonyms  = "data/synonyms.json"
)

// Lexicon bundles the dictionaries for one run.
type Lexicon struct {
	// Genes is the gene list as read, before synonym expansion.
	Genes     []string
	Index     *GeneIndex
	Stems     RelationWords
	Stopwords StopwordSet
}

// Load reads every dictionary named by cfg, falling back to the bundled
// files for empty paths, and builds the gene index.
func Load(cfg types.LexiconConfig) (*Lexicon, error) {
	genesData, err := readSource(cfg.GenesFile, bundledGenes)
	if err != nil {
		return nil, err
	}
	genes := ParseLines(genesData)
	if len(genes) == 0 {
		return nil, fmt.Errorf("%w: gene list %s is empty", ErrConfig, sourceName(cfg.GenesFile, bundledGenes))
	}

	stemsData, err := readSource(cfg.RelationsFile, bundledStems)
	if err != nil {
		return nil, err
	}
	stems := NewRelationWords(ParseLines(stemsData))
	if len(stems) == 0 {
		return nil, fmt.Errorf("%w: relation stem list %s is empty", ErrConfig, sourceName(cfg.RelationsFile, bundledStems))
	}

	stopData, err := readSource(cfg.StopwordsFile, bundledStopwords)
	if err != nil {
		return nil, err
	}
	stopwords, err := ParseStopwords(stopData)
	if err != nil {
		return nil, err
	}

	opts := []BuildOption{
		WithThreshold(cfg.LengthThreshold),
		WithCollisionPolicy(cfg.Collisions),
	}
	if cfg.SynonymsFile != "" {
		path := cfg.SynonymsFile
		if path == DefaultSynonyms {
			path = ""
		}
		synData, err := readSource(path, bundledSynonyms)
		if err != nil {
			return nil, err
		}
		table, err := ParseSynonyms(synData)
		if err != nil {
			return nil, err
		}
		opts = append(opts, WithSynonyms(table))
	}

	index, err := Build(genes, opts...)
	if err != nil {
		return nil, err
	}

	return &Lexicon{
		Genes:     genes,
		Index:     index,
		Stems:     stems,
		Stopwords: stopwords,
	}, nil
}

// ParseLines splits newline-delimited text into trimmed, non-blank lines.
func ParseLines(data []byte) []string {
	var lines []string
	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

// readSource reads path, or the bundled file when path is empty.
func readSource(path, fallback string) ([]byte, error) {
	if path == "" {
		data, err := bundled.ReadFile(fallback)
		if err != nil {
			return nil, fmt.Errorf("%w: reading bundled %s: %v", ErrConfig, fallback, err)
		}
		return data, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %v", ErrConfig, path, err)
	}
	return data, nil
}

func sourceName(path, fallback string) string {
	if path == "" {
		return "bundled " + fallback
	}
	return path
}
