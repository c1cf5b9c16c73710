// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// Relation is one sentence that mentions a relation stem, together with the
// genes detected in it. JSON keys follow the established output format.
type Relation struct {
	// Genes holds canonical gene names, sorted and without duplicates.
	Genes []string `json:"Genes" yaml:"genes"`

	// Stems lists the relation stems found in Sentence, in stem-list order.
	Stems []string `json:"Stems" yaml:"stems"`

	// Sentence is the original sentence text.
	Sentence string `json:"Sentence" yaml:"sentence"`
}

// PaperResult is the output record for one paper that produced at least one
// Relation.
type PaperResult struct {
	PMID         string     `json:"PMID" yaml:"pmid"`
	Year         string     `json:"Year" yaml:"year"`
	JournalTitle string     `json:"Journal Title" yaml:"journal_title"`
	ArticleTitle string     `json:"Article Title" yaml:"article_title"`
	Relations    []Relation `json:"Relations" yaml:"relations"`
}

// NewPaperResult pairs a paper's metadata with its relations.
func NewPaperResult(p Paper, relations []Relation) PaperResult {
	return PaperResult{
		PMID:         p.ID,
		Year:         p.Year,
		JournalTitle: p.JournalTitle,
		ArticleTitle: p.ArticleTitle,
		Relations:    relations,
	}
}
