// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/gene-relations/internal/extract"
	"github.com/pdiddy/gene-relations/internal/lexicon"
	"github.com/pdiddy/gene-relations/pkg/types"
)

const sampleCorpus = "../../internal/corpus/testdata/tp53_sample.xml"

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func testMiningConfig(dir string) types.MiningConfig {
	return types.MiningConfig{
		Model:    types.ExtractorRules,
		MinGenes: extract.DefaultMinGenes,
		Workers:  2,
		Output:   filepath.Join(dir, "out"),
	}
}

func TestMine_ConfigErrorsFailBeforeOutput(t *testing.T) {
	dir := t.TempDir()
	empty := writeFile(t, dir, "empty.txt", "")

	tests := []struct {
		name   string
		path   string
		modify func(*types.MiningConfig)
	}{
		{"missing corpus", filepath.Join(dir, "nope.xml"), func(*types.MiningConfig) {}},
		{"unknown model", sampleCorpus, func(c *types.MiningConfig) { c.Model = "neural" }},
		{"empty gene list", sampleCorpus, func(c *types.MiningConfig) { c.GenesFile = empty }},
		{"missing gene list", sampleCorpus, func(c *types.MiningConfig) { c.GenesFile = filepath.Join(dir, "genes.txt") }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testMiningConfig(dir)
			tt.modify(&cfg)

			var buf bytes.Buffer
			_, err := mine(context.Background(), tt.path, cfg, nil, &buf)
			require.Error(t, err)
			assert.ErrorIs(t, err, lexicon.ErrConfig)
			assert.NoFileExists(t, filepath.Join(dir, "out.json"))
		})
	}
}

func TestMine_NoResults(t *testing.T) {
	dir := t.TempDir()
	cfg := testMiningConfig(dir)
	cfg.GenesFile = writeFile(t, dir, "genes.txt", "ZZZ9\n")

	var buf bytes.Buffer
	sum, err := mine(context.Background(), sampleCorpus, cfg, nil, &buf)
	require.NoError(t, err)
	assert.Equal(t, 5, sum.Read)
	assert.Zero(t, sum.Written)
	assert.Contains(t, buf.String(), "No results.")
	assert.NoFileExists(t, filepath.Join(dir, "out.json"))
}

func TestMine_WritesResultsAndIndexes(t *testing.T) {
	dir := t.TempDir()
	cfg := testMiningConfig(dir)
	cfg.MinGenes = 0
	cfg.DBDir = filepath.Join(dir, "index")

	var buf bytes.Buffer
	sum, err := mine(context.Background(), sampleCorpus, cfg, nil, &buf)
	require.NoError(t, err)
	assert.Equal(t, 5, sum.Read)
	assert.Equal(t, 4, sum.Written)
	assert.NotContains(t, buf.String(), "No results.")
	assert.Contains(t, buf.String(), sum.String())

	data, err := os.ReadFile(filepath.Join(dir, "out.json"))
	require.NoError(t, err)
	var got []types.PaperResult
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Len(t, got, 4)
	assert.FileExists(t, filepath.Join(cfg.DBDir, "relations.db"))
}

func TestMine_ReadsStandardInput(t *testing.T) {
	dir := t.TempDir()
	cfg := testMiningConfig(dir)
	cfg.MinGenes = 0

	f, err := os.Open(sampleCorpus)
	require.NoError(t, err)
	defer f.Close()
	orig := os.Stdin
	os.Stdin = f
	t.Cleanup(func() { os.Stdin = orig })

	var buf bytes.Buffer
	sum, err := mine(context.Background(), stdinPath, cfg, nil, &buf)
	require.NoError(t, err)
	assert.Equal(t, 5, sum.Read)
	assert.Equal(t, 4, sum.Written)
	assert.FileExists(t, filepath.Join(dir, "out.json"))
}
