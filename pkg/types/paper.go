// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the gene-relations pipeline:
// papers read from the corpus, relations detected in their abstracts, the
// per-paper results written to disk, and the stage configurations.
package types

// UnknownYear is the Year value of a paper whose record carries no
// publication date.
const UnknownYear = "unknown"

// Paper holds the fields of one corpus article that the extractors need.
// A Paper exists only for records that carry an abstract.
type Paper struct {
	// ID is the PubMed identifier (PMID).
	ID string `json:"id" yaml:"id"`

	// Year is the publication year, or UnknownYear.
	Year string `json:"year" yaml:"year"`

	// JournalTitle is the full journal title.
	JournalTitle string `json:"journal_title" yaml:"journal_title"`

	// ArticleTitle is the article title with inline markup flattened to text.
	ArticleTitle string `json:"article_title" yaml:"article_title"`

	// Abstract is the concatenated text of every abstract sub-element, in
	// document order.
	Abstract string `json:"abstract" yaml:"abstract"`
}
