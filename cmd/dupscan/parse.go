package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/e4c5/dupscan/internal/ast"
	"github.com/e4c5/dupscan/internal/ast/goast"
	"github.com/e4c5/dupscan/internal/ast/javaast"
	"github.com/e4c5/dupscan/internal/config"
	"github.com/e4c5/dupscan/internal/dderrors"
	"github.com/e4c5/dupscan/internal/types"
)

// fileParser is the subset of the C15 adapters' surface the CLI needs.
type fileParser interface {
	ParseFile(path string, content []byte, fileID types.FileID) (*ast.SourceUnit, error)
}

var parsersByExt = map[string]func() fileParser{
	".go":   func() fileParser { return goast.NewParser() },
	".java": func() fileParser { return javaast.NewParser() },
}

// discoverUnits walks root, parsing every .go/.java file that
// cfg.Matches selects, in deterministic path order. Parse failures are
// collected as diagnostics rather than aborting the walk.
func discoverUnits(root string, cfg config.Settings) ([]*ast.SourceUnit, []dderrors.Diagnostic, error) {
	var paths []string
	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		if _, ok := parsersByExt[strings.ToLower(filepath.Ext(path))]; !ok {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			rel = path
		}
		if !cfg.Matches(rel) {
			return nil
		}
		paths = append(paths, path)
		return nil
	})
	if err != nil {
		return nil, nil, fmt.Errorf("walk %s: %w", root, err)
	}
	sort.Strings(paths)

	var units []*ast.SourceUnit
	var diagnostics []dderrors.Diagnostic
	for i, path := range paths {
		content, err := os.ReadFile(path)
		if err != nil {
			diagnostics = append(diagnostics, dderrors.FromError(path, dderrors.KindASTParseFailed, err))
			continue
		}
		newParser := parsersByExt[strings.ToLower(filepath.Ext(path))]
		unit, err := newParser().ParseFile(path, content, types.FileID(i+1))
		if err != nil {
			diagnostics = append(diagnostics, dderrors.FromError(path, dderrors.KindASTParseFailed, err))
			continue
		}
		units = append(units, unit)
	}
	return units, diagnostics, nil
}
