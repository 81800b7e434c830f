// Package orchestrator implements the pipeline orchestrator (C13): it
// wires C1 extraction through C12 recommendation generation into the
// per-file and project run modes described in the core design, and
// defines the outbound report value types.
package orchestrator

import (
	"context"
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/e4c5/dupscan/internal/ast"
	"github.com/e4c5/dupscan/internal/cluster"
	"github.com/e4c5/dupscan/internal/config"
	"github.com/e4c5/dupscan/internal/dataflow"
	"github.com/e4c5/dupscan/internal/dderrors"
	"github.com/e4c5/dupscan/internal/extract"
	"github.com/e4c5/dupscan/internal/fields"
	"github.com/e4c5/dupscan/internal/minhash"
	"github.com/e4c5/dupscan/internal/normalize"
	"github.com/e4c5/dupscan/internal/overlap"
	"github.com/e4c5/dupscan/internal/prefilter"
	"github.com/e4c5/dupscan/internal/recommend"
	"github.com/e4c5/dupscan/internal/refine"
	"github.com/e4c5/dupscan/internal/similarity"
	"github.com/e4c5/dupscan/internal/tokenize"
	"github.com/e4c5/dupscan/internal/variation"
	"github.com/e4c5/dupscan/internal/window"
)

// PairReport is one surviving candidate pair, with its final (possibly
// boundary-refined) windows, its similarity score, and its C7 variation
// analysis.
type PairReport struct {
	WindowA  window.Window
	WindowB  window.Window
	Score    similarity.Result
	Analysis variation.Analysis
}

// ClusterReport is one connected component of duplicate windows plus the
// recommendation generated for it.
type ClusterReport struct {
	Primary              window.Window
	Members              []window.Window
	Pairs                []PairReport
	LOCReductionEstimate int
	Recommendation       recommend.Recommendation
}

// RunTotals summarizes one run for the caller (§6 "Report (outbound)").
type RunTotals struct {
	FilesScanned     int
	WindowsExtracted int
	CandidatePairs   int
	PairsKept        int
	Clusters         int
}

// Report is the complete outbound result of one orchestrator run.
type Report struct {
	Clusters    []ClusterReport
	FieldGroups []fields.Group
	Totals      RunTotals
	Diagnostics []dderrors.Diagnostic
}

// RunFile runs the pipeline over a single source unit: C1 extraction,
// then candidate generation, then C5 through C12. C14 is inherently
// cross-class, so a single-file run never populates Report.FieldGroups.
func RunFile(ctx context.Context, unit *ast.SourceUnit, cfg config.Settings, suggester recommend.NameSuggester) Report {
	return run(ctx, []*ast.SourceUnit{unit}, cfg, suggester)
}

// RunProject runs the pipeline over every unit, sharing a single
// candidate-generation pass across file boundaries: units are visited in
// deterministic path order and windows from every file are fed into one
// LSH index (or one brute-force scan) before downstream stages run. It
// also runs C14's independent field-duplication scan across the whole
// project and attaches its groups to the report.
func RunProject(ctx context.Context, units []*ast.SourceUnit, cfg config.Settings, suggester recommend.NameSuggester) Report {
	sorted := make([]*ast.SourceUnit, len(units))
	copy(sorted, units)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Path < sorted[j].Path })
	report := run(ctx, sorted, cfg, suggester)
	report.FieldGroups = fields.Analyze(sorted)
	return report
}

func run(ctx context.Context, units []*ast.SourceUnit, cfg config.Settings, suggester recommend.NameSuggester) Report {
	var diagnostics []dderrors.Diagnostic

	opt := extract.Options{
		MinLines:    cfg.Extraction.MinLines,
		MaxGrowth:   cfg.Extraction.MaxWindowGrowth,
		MaximalOnly: cfg.Extraction.MaximalOnly,
	}

	var windows []window.Window
	for _, u := range units {
		windows = append(windows, extract.Windows(u, opt)...)
	}
	sort.Slice(windows, func(i, j int) bool { return lessWindow(windows[i], windows[j]) })

	candidates := findCandidates(windows, cfg)

	weights := similarity.Weights{LCS: cfg.Weights.LCS, Levenshtein: cfg.Weights.Levenshtein, Structural: cfg.Weights.Structural}
	scored, scoreDiags := scorePairs(ctx, candidates, cfg, weights)
	diagnostics = append(diagnostics, scoreDiags...)

	overlapPairs := make([]overlap.Pair, 0, len(scored))
	pairReports := map[pairKey]PairReport{}
	for _, s := range scored {
		overlapPairs = append(overlapPairs, s.pair)
		pairReports[keyOf(s.pair.WindowA, s.pair.WindowB)] = s.report
	}

	kept := overlap.Resolve(overlapPairs)
	clusters := cluster.Build(kept)

	reports := make([]ClusterReport, 0, len(clusters))
	for _, c := range clusters {
		reports = append(reports, buildClusterReport(ctx, c, pairReports, suggester))
	}

	totals := RunTotals{
		FilesScanned:     len(units),
		WindowsExtracted: len(windows),
		CandidatePairs:   len(candidates),
		PairsKept:        len(kept),
		Clusters:         len(reports),
	}
	return Report{Clusters: reports, Totals: totals, Diagnostics: diagnostics}
}

// candidate is an unscored pair produced by candidate generation (C4 or
// its brute-force fallback), ahead of the C5 pre-filter.
type candidate struct {
	A, B window.Window
}

// findCandidates runs C4 (MinHash + banded LSH) when enabled, or a
// brute-force all-pairs scan otherwise, then applies the C5 pre-filter
// to every candidate it proposes.
func findCandidates(windows []window.Window, cfg config.Settings) []candidate {
	var raw []candidate
	if cfg.Extraction.EnableLSH {
		idx := minhash.NewIndex(minhash.Config{
			NumHashFunctions: cfg.LSH.NumHashFunctions,
			NumBands:         cfg.LSH.NumBands,
			RowsPerBand:      cfg.LSH.RowsPerBand,
		})
		for _, w := range windows {
			shingles := tokenize.Shingles(w.Statements)
			for _, match := range idx.QueryAndAdd(shingles, w) {
				raw = append(raw, candidate{A: match, B: w})
			}
		}
	} else {
		for i := 0; i < len(windows); i++ {
			for j := i + 1; j < len(windows); j++ {
				raw = append(raw, candidate{A: windows[i], B: windows[j]})
			}
		}
	}

	out := make([]candidate, 0, len(raw))
	for _, c := range raw {
		if !prefilter.Reject(c.A, c.B) {
			out = append(out, c)
		}
	}
	return out
}

// scoredPair bundles one surviving candidate's overlap-resolver input and
// its full pair report, once C6, C7, C8, and C9 have all run.
type scoredPair struct {
	pair   overlap.Pair
	report PairReport
}

// scorePairs runs C6 (similarity), C7 (variation), and C9 (boundary
// refinement) across all candidates in parallel, bounded by
// cfg.Performance.ParallelFileWorkers (0 meaning runtime.NumCPU()).
func scorePairs(ctx context.Context, candidates []candidate, cfg config.Settings, weights similarity.Weights) ([]scoredPair, []dderrors.Diagnostic) {
	results := make([]*scoredPair, len(candidates))
	diagsByIndex := make([][]dderrors.Diagnostic, len(candidates))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workerCount(cfg))

	for i, c := range candidates {
		i, c := i, c
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return nil
			default:
			}
			sp, diags := scoreOne(c, cfg, weights)
			results[i] = sp
			diagsByIndex[i] = diags
			return nil
		})
	}
	_ = g.Wait() // scoreOne never returns an error; context cancellation only skips remaining work

	var out []scoredPair
	var diagnostics []dderrors.Diagnostic
	for i, r := range results {
		diagnostics = append(diagnostics, diagsByIndex[i]...)
		if r != nil {
			out = append(out, *r)
		}
	}
	return out, diagnostics
}

func workerCount(cfg config.Settings) int {
	if cfg.Performance.ParallelFileWorkers > 0 {
		return cfg.Performance.ParallelFileWorkers
	}
	return runtime.NumCPU()
}

// scoreOne runs C3 normalization, C6 similarity, C9 boundary refinement,
// and C7 variation analysis for a single candidate pair. A nil first
// return means the pair did not clear the similarity threshold (or no
// safe boundary was found) and is dropped.
func scoreOne(c candidate, cfg config.Settings, weights similarity.Weights) (*scoredPair, []dderrors.Diagnostic) {
	var diagnostics []dderrors.Diagnostic

	atomsA, err := normalize.Atoms(c.A.Path(), c.A.Statements)
	if err != nil {
		diagnostics = append(diagnostics, dderrors.FromError(c.A.Path(), dderrors.KindNormalization, err))
		return nil, diagnostics
	}
	atomsB, err := normalize.Atoms(c.B.Path(), c.B.Statements)
	if err != nil {
		diagnostics = append(diagnostics, dderrors.FromError(c.B.Path(), dderrors.KindNormalization, err))
		return nil, diagnostics
	}

	score := similarity.Score(atomsA, atomsB, c.A.Statements, c.B.Statements, weights)
	if score.Overall < cfg.Extraction.Threshold {
		return nil, diagnostics
	}

	wa, wb, score, kept := refineIfEnabled(c.A, c.B, cfg, weights, score)
	if !kept {
		return nil, diagnostics
	}

	finalAtomsA, err := normalize.Atoms(wa.Path(), wa.Statements)
	if err != nil {
		diagnostics = append(diagnostics, dderrors.FromError(wa.Path(), dderrors.KindNormalization, err))
		return nil, diagnostics
	}
	finalAtomsB, err := normalize.Atoms(wb.Path(), wb.Statements)
	if err != nil {
		diagnostics = append(diagnostics, dderrors.FromError(wb.Path(), dderrors.KindNormalization, err))
		return nil, diagnostics
	}

	analysis := variation.Analyze(finalAtomsA, finalAtomsB, wa.Statements, wb.Statements, resolverOf(wa), resolverOf(wb))

	dfA := dataflow.Analyze(wa, blockFor(wa))
	dfB := dataflow.Analyze(wb, blockFor(wb))
	escapeCount := len(dfA.EscapingWrites) + len(dfA.EscapingReads) + len(dfB.EscapingWrites) + len(dfB.EscapingReads)

	pair := overlap.Pair{
		WindowA:        wa,
		WindowB:        wb,
		EscapeCount:    escapeCount,
		IsFullBody:     isFullBody(wa) && isFullBody(wb),
		StatementCount: wa.Len(),
	}
	report := PairReport{WindowA: wa, WindowB: wb, Score: score, Analysis: analysis}
	return &scoredPair{pair: pair, report: report}, diagnostics
}

// refineIfEnabled applies C9 when cfg enables it; otherwise the full
// windows are kept unchanged since they already cleared the threshold.
func refineIfEnabled(a, b window.Window, cfg config.Settings, weights similarity.Weights, full similarity.Result) (window.Window, window.Window, similarity.Result, bool) {
	if !cfg.Extraction.EnableBoundaryRefinement {
		return a, b, full, true
	}
	result := refine.Refine(a, b, blockFor(a), blockFor(b), cfg.Extraction.MinLines, weights, cfg.Extraction.Threshold, full)
	return result.WindowA, result.WindowB, result.Score, result.Kept
}

func blockFor(w window.Window) []ast.Node {
	if w.Callable != nil {
		return w.Callable.Body
	}
	return w.Statements
}

func resolverOf(w window.Window) ast.NameResolver {
	if w.Unit == nil {
		return nil
	}
	return w.Unit.Resolver
}

func isFullBody(w window.Window) bool {
	return w.Callable != nil && w.StartOffset == 0 && w.Len() == len(w.Callable.Body)
}

func lessWindow(a, b window.Window) bool {
	if a.Path() != b.Path() {
		return a.Path() < b.Path()
	}
	if a.Range.Start.Line != b.Range.Start.Line {
		return a.Range.Start.Line < b.Range.Start.Line
	}
	if a.Range.Start.Column != b.Range.Start.Column {
		return a.Range.Start.Column < b.Range.Start.Column
	}
	return a.StartOffset < b.StartOffset
}

type pairKey struct {
	a, b window.IdentityKey
}

func keyOf(a, b window.Window) pairKey {
	return pairKey{a: a.Identity(), b: b.Identity()}
}

func buildClusterReport(ctx context.Context, c cluster.Cluster, pairReports map[pairKey]PairReport, suggester recommend.NameSuggester) ClusterReport {
	reports := make([]PairReport, 0, len(c.Pairs))
	analyses := make([]variation.Analysis, 0, len(c.Pairs))
	for _, p := range c.Pairs {
		if r, ok := pairReports[keyOf(p.WindowA, p.WindowB)]; ok {
			reports = append(reports, r)
			analyses = append(analyses, r.Analysis)
		}
	}

	members := make([]recommend.MemberInfo, 0, len(c.Members))
	liveOut := make([]dataflow.Sets, 0, len(c.Members))
	for _, w := range c.Members {
		var host string
		var isStatic, isTest bool
		if w.Callable != nil {
			host = w.Callable.HostClass
			isStatic = w.Callable.IsStatic
			isTest = w.Callable.IsTest
		}
		members = append(members, recommend.MemberInfo{HostClass: host, IsStatic: isStatic, IsTest: isTest})
		liveOut = append(liveOut, dataflow.Analyze(w, blockFor(w)))
	}

	rec := recommend.Generate(ctx, c, members, analyses, liveOut, suggester)
	return ClusterReport{
		Primary:              c.Primary,
		Members:              c.Members,
		Pairs:                reports,
		LOCReductionEstimate: c.LOCReductionEstimate,
		Recommendation:       rec,
	}
}
