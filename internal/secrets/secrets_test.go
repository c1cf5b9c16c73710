// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package secrets

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		name   string
		setup  func(t *testing.T) string
		want   map[string]string
		errMsg string
	}{
		{
			name: "reads key files and trims whitespace",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				writeFile(t, dir, "ncbi-api-key", "  0123abcd  \n")
				writeFile(t, dir, "ncbi-email", "user@example.com\n")
				return dir
			},
			want: map[string]string{
				"ncbi-api-key": "0123abcd",
				"ncbi-email":   "user@example.com",
			},
		},
		{
			name: "returns empty map for nonexistent directory",
			setup: func(t *testing.T) string {
				return filepath.Join(t.TempDir(), "does-not-exist")
			},
			want: map[string]string{},
		},
		{
			name: "skips empty files",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				writeFile(t, dir, "ncbi-api-key", "valid-key")
				writeFile(t, dir, "empty-key", "")
				writeFile(t, dir, "whitespace-only", "   \n\t  ")
				return dir
			},
			want: map[string]string{
				"ncbi-api-key": "valid-key",
			},
		},
		{
			name: "skips dotfiles",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				writeFile(t, dir, ".gitkeep", "")
				writeFile(t, dir, ".hidden-key", "secret")
				writeFile(t, dir, "ncbi-email", "pk_real")
				return dir
			},
			want: map[string]string{
				"ncbi-email": "pk_real",
			},
		},
		{
			name: "skips subdirectories",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				writeFile(t, dir, "ncbi-api-key", "ak_123")
				require.NoError(t, os.Mkdir(filepath.Join(dir, "subdir"), 0o755))
				return dir
			},
			want: map[string]string{
				"ncbi-api-key": "ak_123",
			},
		},
		{
			name: "returns empty map for empty directory",
			setup: func(t *testing.T) string {
				return t.TempDir()
			},
			want: map[string]string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := tt.setup(t)
			got, err := Load(dir)
			if tt.errMsg != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLoadUnreadableFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "good-key", "value123")

	// Create a file then remove read permission.
	badPath := filepath.Join(dir, "bad-key")
	require.NoError(t, os.WriteFile(badPath, []byte("secret"), 0o000))
	t.Cleanup(func() { os.Chmod(badPath, 0o644) })

	got, err := Load(dir)
	require.NoError(t, err)
	// The good file should still be returned; the bad file is skipped with a warning.
	assert.Equal(t, "value123", got["good-key"])
	_, hasBad := got["bad-key"]
	assert.False(t, hasBad, "unreadable file should not appear in result")
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestLoadEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	writeFile(t, dir, ".env", "GENE_RELATIONS_TEST_FROM_DOTENV=loaded\nGENE_RELATIONS_TEST_PRESET=dotenv\n")
	t.Setenv("GENE_RELATIONS_TEST_PRESET", "env")
	t.Setenv("GENE_RELATIONS_TEST_FROM_DOTENV", "")
	os.Unsetenv("GENE_RELATIONS_TEST_FROM_DOTENV")

	require.NoError(t, LoadEnv(filepath.Join(dir, "missing.env"), path))
	assert.Equal(t, "loaded", os.Getenv("GENE_RELATIONS_TEST_FROM_DOTENV"))
	assert.Equal(t, "env", os.Getenv("GENE_RELATIONS_TEST_PRESET"), "existing variables win")
}

func TestLoadEnvMalformed(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, ".env", "NOT A VALID LINE ' \"\n")
	err := LoadEnv(filepath.Join(dir, ".env"))
	assert.Error(t, err)
}

func TestLookup(t *testing.T) {
	secrets := map[string]string{NCBIAPIKey: "from-file", NCBIEmail: "file@example.com"}

	t.Setenv("GENE_RELATIONS_NCBI_API_KEY", "from-env")
	assert.Equal(t, "from-env", Lookup(secrets, "GENE_RELATIONS", NCBIAPIKey))
	assert.Equal(t, "file@example.com", Lookup(secrets, "GENE_RELATIONS", NCBIEmail))
	assert.Empty(t, Lookup(secrets, "GENE_RELATIONS", "missing-key"))
}

func TestEnvName(t *testing.T) {
	assert.Equal(t, "GENE_RELATIONS_NCBI_API_KEY", EnvName("GENE_RELATIONS", NCBIAPIKey))
	assert.Equal(t, "NCBI_EMAIL", EnvName("", NCBIEmail))
}
