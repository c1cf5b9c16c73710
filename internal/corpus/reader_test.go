// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package corpus

import (
	"compress/gzip"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/gene-relations/pkg/types"
)

const sampleFile = "testdata/tp53_sample.xml"

func readAll(t *testing.T, r *Reader) []types.Paper {
	t.Helper()
	var papers []types.Paper
	for {
		p, err := r.Next()
		if err == io.EOF {
			return papers
		}
		require.NoError(t, err)
		papers = append(papers, p)
	}
}

func TestOpen_YieldsOnlyPapersWithAbstracts(t *testing.T) {
	r, err := Open(sampleFile)
	require.NoError(t, err)
	defer r.Close()

	papers := readAll(t, r)
	require.Len(t, papers, 5)
	assert.Equal(t, 2, r.Skipped)

	var ids []string
	for _, p := range papers {
		ids = append(ids, p.ID)
	}
	assert.Equal(t, []string{"30001001", "30001002", "30001004", "30001005", "30001007"}, ids)
}

func TestOpen_Fields(t *testing.T) {
	r, err := Open(sampleFile)
	require.NoError(t, err)
	defer r.Close()
	papers := readAll(t, r)
	require.Len(t, papers, 5)

	first := papers[0]
	assert.Equal(t, "30001001", first.ID)
	assert.Equal(t, "2017", first.Year, "ArticleDate wins over PubDate")
	assert.Equal(t, "Oncogene", first.JournalTitle)
	assert.Equal(t, "ELF3 regulates TSKU expression in epithelial cells.", first.ArticleTitle)
	assert.Equal(t, "It appears that elf3 regulates tsku. We conclude that tp53 associates with MYC.", first.Abstract)

	second := papers[1]
	assert.Equal(t, "2016", second.Year)
	assert.Equal(t, "Cell Death & Differentiation", second.JournalTitle)
	assert.Equal(t, "The TP53 pathway in apoptosis.", second.ArticleTitle)
	assert.Contains(t, second.Abstract, "Loss of TP53 function is common.")
	assert.Contains(t, second.Abstract, "MDM2 regulates TP53 stability.")
	assert.Less(t, strings.Index(second.Abstract, "Loss"), strings.Index(second.Abstract, "MDM2"),
		"sections keep document order")

	assert.Equal(t, "1998", papers[2].Year, "leading year of MedlineDate")
	assert.Equal(t, types.UnknownYear, papers[3].Year)
	assert.Contains(t, papers[4].Abstract, "(c) 2021 The Authors.")
}

func TestOpen_Gzip(t *testing.T) {
	data, err := os.ReadFile(sampleFile)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "sample.xml.gz")
	f, err := os.Create(path)
	require.NoError(t, err)
	zw := gzip.NewWriter(f)
	_, err = zw.Write(data)
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())

	r, err := Open(path)
	require.NoError(t, err)
	defer r.Close()
	assert.Len(t, readAll(t, r), 5)
}

func TestOpen_MissingFile(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "nope.xml"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInput))
}

func TestNext_ParseError(t *testing.T) {
	tests := []struct {
		name string
		xml  string
		good int
	}{
		{
			name: "mismatched tag after one record",
			xml: `<PubmedArticleSet><PubmedArticle><MedlineCitation><PMID>1</PMID><Article>
<Abstract><AbstractText>ok</AbstractText></Abstract></Article></MedlineCitation></PubmedArticle>
<PubmedArticle><MedlineCitation><PMID>2</PMID></Article></PubmedArticle></PubmedArticleSet>`,
			good: 1,
		},
		{
			name: "truncated inside record",
			xml:  `<PubmedArticleSet><PubmedArticle><MedlineCitation><PMID>1</PMID>`,
		},
		{
			name: "truncated between records",
			xml: `<PubmedArticleSet><PubmedArticle><MedlineCitation><PMID>1</PMID><Article>
<Abstract><AbstractText>ok</AbstractText></Abstract></Article></MedlineCitation></PubmedArticle>`,
			good: 1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewReader(strings.NewReader(tt.xml))
			var (
				good int
				err  error
			)
			for {
				_, err = r.Next()
				if err != nil {
					break
				}
				good++
			}
			assert.Equal(t, tt.good, good)
			var pe *ParseError
			require.True(t, errors.As(err, &pe), "got %v", err)
			assert.Contains(t, pe.Error(), "parsing corpus at byte")
		})
	}
}

func TestNext_EmptySet(t *testing.T) {
	r := NewReader(strings.NewReader(`<?xml version="1.0"?><PubmedArticleSet></PubmedArticleSet>`))
	_, err := r.Next()
	assert.Equal(t, io.EOF, err)
	assert.NoError(t, r.Close())
}
