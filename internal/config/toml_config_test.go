package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadTOMLOverridesOnlyPresentFields(t *testing.T) {
	path := writeConfig(t, "dupscan.toml", `
target_class = "com.example.Foo"
include = ["**/*.go", "**/*.java"]

[extraction]
min_lines = 8
threshold = 0.8

[weights]
lcs = 0.5
levenshtein = 0.3
structural = 0.2
`)

	cfg, err := LoadTOML(path)
	require.NoError(t, err)
	assert.Equal(t, 8, cfg.Extraction.MinLines)
	assert.Equal(t, 0.8, cfg.Extraction.Threshold)
	assert.Equal(t, Weights{LCS: 0.5, Levenshtein: 0.3, Structural: 0.2}, cfg.Weights)
	assert.Equal(t, "com.example.Foo", cfg.TargetClass)
	assert.Equal(t, []string{"**/*.go", "**/*.java"}, cfg.Include)
	assert.Equal(t, Default.LSH, cfg.LSH, "untouched fields keep the Default value")
}

func TestLoadTOMLMissingFileErrors(t *testing.T) {
	_, err := LoadTOML(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}

func TestLoadDispatchesOnExtension(t *testing.T) {
	kdlPath := writeConfig(t, "dupscan.kdl", `extraction { min_lines 9 }`)
	cfg, err := Load(kdlPath)
	require.NoError(t, err)
	assert.Equal(t, 9, cfg.Extraction.MinLines)

	tomlPath := writeConfig(t, "dupscan.toml", "[extraction]\nmin_lines = 9\n")
	cfg, err = Load(tomlPath)
	require.NoError(t, err)
	assert.Equal(t, 9, cfg.Extraction.MinLines)
}

func TestLoadRejectsUnrecognizedExtension(t *testing.T) {
	path := writeConfig(t, "dupscan.yaml", "extraction:\n  min_lines: 9\n")
	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadRejectsInvalidSettings(t *testing.T) {
	path := writeConfig(t, "dupscan.toml", `
[weights]
lcs = 0.9
levenshtein = 0.3
structural = 0.2
`)
	_, err := Load(path)
	assert.Error(t, err)
}
