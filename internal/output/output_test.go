// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package output

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/gene-relations/pkg/types"
)

func result(pmid string) types.PaperResult {
	return types.PaperResult{
		PMID:         pmid,
		Year:         "2017",
		JournalTitle: "Oncogene",
		ArticleTitle: "ELF3 regulates TSKU",
		Relations: []types.Relation{{
			Genes:    []string{"elf3", "tsku"},
			Stems:    []string{"regulat"},
			Sentence: "It appears that elf3 regulates tsku.",
		}},
	}
}

func TestGenerateFilename(t *testing.T) {
	tests := []struct {
		in, ext, want string
	}{
		{"output", "json", "output.json"},
		{"output.json", "json", "output.json"},
		{"output.xml", "json", "output.json"},
		{"file.name.ext", "json", "file.name.json"},
		{"./output", "json", "./output.json"},
		{"runs/v1.2/out", ".xml", "runs/v1.2/out.xml"},
		{".hidden", "json", ".hidden.json"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, GenerateFilename(tt.in, tt.ext))
		})
	}
}

func TestJSONWriter_NoResultsCreatesNoFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.json")
	w := NewJSONWriter(path, 0)
	require.NoError(t, w.Close())

	_, err := os.Stat(path)
	assert.True(t, errors.Is(err, os.ErrNotExist))
	assert.Zero(t, w.Count())
}

func TestJSONWriter_ValidArray(t *testing.T) {
	for _, n := range []int{1, 2, 3, 7} {
		t.Run(fmt.Sprintf("%d results", n), func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "out.json")
			w := NewJSONWriter(path, 3)
			for i := 0; i < n; i++ {
				require.NoError(t, w.Write(result(fmt.Sprint(i))))
			}
			require.NoError(t, w.Close())
			require.NoError(t, w.Close(), "second close is a no-op")

			data, err := os.ReadFile(path)
			require.NoError(t, err)
			var got []types.PaperResult
			require.NoError(t, json.Unmarshal(data, &got), string(data))
			require.Len(t, got, n)
			assert.Equal(t, result("0"), got[0])
			assert.Equal(t, n, w.Count())
		})
	}
}

func TestJSONWriter_FieldNames(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.json")
	w := NewJSONWriter(path, 0)
	require.NoError(t, w.Write(result("30001001")))
	require.NoError(t, w.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var raw []map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	require.Len(t, raw, 1)
	for _, key := range []string{"PMID", "Year", "Journal Title", "Article Title", "Relations"} {
		assert.Contains(t, raw[0], key)
	}
	rel := raw[0]["Relations"].([]any)[0].(map[string]any)
	assert.ElementsMatch(t, []string{"Genes", "Stems", "Sentence"}, keys(rel))
}

func keys(m map[string]any) []string {
	var out []string
	for k := range m {
		out = append(out, k)
	}
	return out
}

func TestJSONWriter_FlushesPeriodically(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.json")
	w := NewJSONWriter(path, 2)

	require.NoError(t, w.Write(result("1")))
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Zero(t, info.Size(), "first result is still buffered")

	require.NoError(t, w.Write(result("2")))
	info, err = os.Stat(path)
	require.NoError(t, err)
	assert.NotZero(t, info.Size(), "second result triggers a flush")

	require.NoError(t, w.Close())
}

func TestJSONWriter_WriteAfterClose(t *testing.T) {
	w := NewJSONWriter(filepath.Join(t.TempDir(), "out.json"), 0)
	require.NoError(t, w.Close())
	assert.Error(t, w.Write(result("1")))
}

func TestJSONWriter_UnwritableDirectory(t *testing.T) {
	w := NewJSONWriter(filepath.Join(t.TempDir(), "missing", "out.json"), 0)
	err := w.Write(result("1"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "creating output file")
}

type recordingSink struct {
	got    []string
	err    error
	closed bool
}

func (s *recordingSink) Write(r types.PaperResult) error {
	if s.err != nil {
		return s.err
	}
	s.got = append(s.got, r.PMID)
	return nil
}

func (s *recordingSink) Close() error {
	s.closed = true
	return s.err
}

func TestMultiSink(t *testing.T) {
	a, b := &recordingSink{}, &recordingSink{}
	m := MultiSink{a, b}
	require.NoError(t, m.Write(result("1")))
	require.NoError(t, m.Write(result("2")))
	require.NoError(t, m.Close())
	assert.Equal(t, []string{"1", "2"}, a.got)
	assert.Equal(t, []string{"1", "2"}, b.got)
	assert.True(t, a.closed && b.closed)

	bad := &recordingSink{err: errors.New("disk full")}
	c := &recordingSink{}
	m = MultiSink{bad, c}
	assert.EqualError(t, m.Write(result("1")), "disk full")
	assert.Empty(t, c.got)
	assert.EqualError(t, m.Close(), "disk full")
	assert.True(t, c.closed)
}
