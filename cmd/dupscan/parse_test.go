package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/e4c5/dupscan/internal/config"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestDiscoverUnitsParsesSelectedExtensionsInOrder(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "b.go", "package sample\n\nfunc B() {\n\tx := 1\n\t_ = x\n}\n")
	writeFile(t, dir, "a.go", "package sample\n\nfunc A() {\n\ty := 2\n\t_ = y\n}\n")
	writeFile(t, dir, "notes.txt", "ignore me")

	units, diagnostics, err := discoverUnits(dir, config.Default)
	require.NoError(t, err)
	assert.Empty(t, diagnostics)
	require.Len(t, units, 2)
	assert.Contains(t, units[0].Path, "a.go")
	assert.Contains(t, units[1].Path, "b.go")
}

func TestDiscoverUnitsHonorsExclude(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "keep.go", "package sample\n\nfunc Keep() {}\n")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "vendor"), 0o755))
	writeFile(t, filepath.Join(dir, "vendor"), "skip.go", "package sample\n\nfunc Skip() {}\n")

	cfg := config.Default
	cfg.Exclude = []string{"vendor/**"}

	units, _, err := discoverUnits(dir, cfg)
	require.NoError(t, err)
	require.Len(t, units, 1)
	assert.Contains(t, units[0].Path, "keep.go")
}

func TestDiscoverUnitsToleratesMalformedSourceViaTreeSitterErrorRecovery(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "broken.java", "this is not valid java {{{")

	units, diagnostics, err := discoverUnits(dir, config.Default)
	require.NoError(t, err)
	assert.Empty(t, diagnostics, "tree-sitter error-recovers rather than failing outright on malformed input")
	require.Len(t, units, 1)
	assert.Empty(t, units[0].Classes)
	assert.Empty(t, units[0].Callables)
}
