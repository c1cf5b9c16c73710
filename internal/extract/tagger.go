// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"fmt"
	"strings"
	"sync"

	"github.com/jdkato/prose/v2"
)

// ProseTagger implements Tagger with prose's sentence segmenter and
// averaged-perceptron part-of-speech tagger. All ProseTaggers share one
// model, loaded on first use; tagging only reads its weights.
type ProseTagger struct{}

var (
	modelOnce sync.Once
	model     *prose.Model
	modelErr  error
)

func sharedModel() (*prose.Model, error) {
	modelOnce.Do(func() {
		doc, err := prose.NewDocument("", prose.WithSegmentation(false), prose.WithExtraction(false))
		if err != nil {
			modelErr = fmt.Errorf("loading tagger model: %w", err)
			return
		}
		model = doc.Model
	})
	return model, modelErr
}

// Sentences splits text into sentences.
func (ProseTagger) Sentences(text string) ([]string, error) {
	m, err := sharedModel()
	if err != nil {
		return nil, err
	}
	doc, err := prose.NewDocument(text, prose.UsingModel(m),
		prose.WithTagging(false), prose.WithExtraction(false))
	if err != nil {
		return nil, fmt.Errorf("segmenting text: %w", err)
	}
	sents := doc.Sentences()
	out := make([]string, 0, len(sents))
	for _, s := range sents {
		if strings.TrimSpace(s.Text) != "" {
			out = append(out, s.Text)
		}
	}
	return out, nil
}

// Tag tags words. The words are rejoined with spaces and retokenized by
// prose; words free of punctuation come back one token per word.
func (ProseTagger) Tag(words []string) ([]TaggedWord, error) {
	if len(words) == 0 {
		return nil, nil
	}
	m, err := sharedModel()
	if err != nil {
		return nil, err
	}
	doc, err := prose.NewDocument(strings.Join(words, " "), prose.UsingModel(m),
		prose.WithSegmentation(false), prose.WithExtraction(false))
	if err != nil {
		return nil, fmt.Errorf("tagging words: %w", err)
	}
	toks := doc.Tokens()
	out := make([]TaggedWord, len(toks))
	for i, tok := range toks {
		out[i] = TaggedWord{Text: tok.Text, Tag: tok.Tag}
	}
	return out, nil
}
