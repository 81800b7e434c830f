package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/e4c5/dupscan/internal/config"
	"github.com/e4c5/dupscan/internal/orchestrator"
	"github.com/e4c5/dupscan/internal/recommend"
	"github.com/e4c5/dupscan/pkg/pathutil"
)

// printReport writes one line per cluster, plus a trailing totals line,
// in the teacher's plain-text CLI-output style (no JSON/table dependency
// is wired in; urfave/cli/v2 itself has no output formatter to reuse).
// Paths are printed relative to root when root is absolute; under a
// relative root they are printed as walked, already prefixed by root.
func printReport(w io.Writer, report orchestrator.Report, cfg config.Settings, root string) {
	for _, c := range report.Clusters {
		if !matchesTargetClass(c, cfg.TargetClass) {
			continue
		}
		fmt.Fprintf(w, "%s  members=%d  loc-saved=%d  strategy=%s  return=%s  confidence=%.2f\n",
			pathutil.ToRelative(c.Primary.Path(), root), len(c.Members), c.LOCReductionEstimate,
			c.Recommendation.Strategy, returnDescription(c.Recommendation), c.Recommendation.Confidence)
	}
	fmt.Fprintf(w, "scanned %d file(s), %d window(s), %d candidate pair(s), %d kept, %d cluster(s)\n",
		report.Totals.FilesScanned, report.Totals.WindowsExtracted, report.Totals.CandidatePairs,
		report.Totals.PairsKept, report.Totals.Clusters)
	for _, g := range report.FieldGroups {
		if !matchesTargetClassNames(g.Classes, cfg.TargetClass) {
			continue
		}
		fmt.Fprintf(w, "field-duplication: %s  shared-fields=%d\n", strings.Join(g.Classes, ", "), len(g.DuplicatedFields))
	}
	for _, d := range report.Diagnostics {
		fmt.Fprintf(w, "diagnostic: %s: %s (%s)\n", d.Kind, d.Message, d.Path)
	}
}

// returnDescription renders a cluster's C12 return value as
// "void" or "name:type".
func returnDescription(rec recommend.Recommendation) string {
	if rec.ReturnType == "void" || rec.ReturnVariable == "" {
		return "void"
	}
	return rec.ReturnVariable + ":" + rec.ReturnType
}

func matchesTargetClass(c orchestrator.ClusterReport, target string) bool {
	if target == "" {
		return true
	}
	for _, w := range c.Members {
		if w.Callable != nil && w.Callable.HostClass == target {
			return true
		}
	}
	return false
}

// matchesTargetClassNames applies the same --target-class filter to a C14
// field-duplication group, whose classes are known by name only.
func matchesTargetClassNames(classes []string, target string) bool {
	if target == "" {
		return true
	}
	for _, c := range classes {
		if c == target {
			return true
		}
	}
	return false
}
