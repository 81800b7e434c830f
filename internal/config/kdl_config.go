package config

import (
	"fmt"
	"os"
	"strings"

	kdl "github.com/sblinch/kdl-go"
	"github.com/sblinch/kdl-go/document"
)

// LoadKDL reads a `.dupscan.kdl` file into Settings, starting from
// Default and overriding only the fields present in the document.
func LoadKDL(path string) (Settings, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return Settings{}, fmt.Errorf("dupscan: read %s: %w", path, err)
	}
	return parseKDL(string(content))
}

func parseKDL(content string) (Settings, error) {
	cfg := Default

	doc, err := kdl.Parse(strings.NewReader(content))
	if err != nil {
		return Settings{}, fmt.Errorf("dupscan: parse kdl config: %w", err)
	}

	for _, n := range doc.Nodes {
		switch nodeName(n) {
		case "extraction":
			for _, cn := range n.Children {
				switch nodeName(cn) {
				case "min_lines":
					if v, ok := firstIntArg(cn); ok {
						cfg.Extraction.MinLines = v
					}
				case "max_window_growth":
					if v, ok := firstIntArg(cn); ok {
						cfg.Extraction.MaxWindowGrowth = v
					}
				case "maximal_only":
					if b, ok := firstBoolArg(cn); ok {
						cfg.Extraction.MaximalOnly = b
					}
				case "threshold":
					if v, ok := firstFloatArg(cn); ok {
						cfg.Extraction.Threshold = v
					}
				case "enable_lsh":
					if b, ok := firstBoolArg(cn); ok {
						cfg.Extraction.EnableLSH = b
					}
				case "enable_boundary_refinement":
					if b, ok := firstBoolArg(cn); ok {
						cfg.Extraction.EnableBoundaryRefinement = b
					}
				}
			}
		case "weights":
			for _, cn := range n.Children {
				switch nodeName(cn) {
				case "lcs":
					if v, ok := firstFloatArg(cn); ok {
						cfg.Weights.LCS = v
					}
				case "levenshtein":
					if v, ok := firstFloatArg(cn); ok {
						cfg.Weights.Levenshtein = v
					}
				case "structural":
					if v, ok := firstFloatArg(cn); ok {
						cfg.Weights.Structural = v
					}
				}
			}
		case "lsh":
			for _, cn := range n.Children {
				switch nodeName(cn) {
				case "num_hash_functions":
					if v, ok := firstIntArg(cn); ok {
						cfg.LSH.NumHashFunctions = v
					}
				case "num_bands":
					if v, ok := firstIntArg(cn); ok {
						cfg.LSH.NumBands = v
					}
				case "rows_per_band":
					if v, ok := firstIntArg(cn); ok {
						cfg.LSH.RowsPerBand = v
					}
				}
			}
		case "performance":
			for _, cn := range n.Children {
				switch nodeName(cn) {
				case "parallel_file_workers":
					if v, ok := firstIntArg(cn); ok {
						cfg.Performance.ParallelFileWorkers = v
					}
				case "watch_mode":
					if b, ok := firstBoolArg(cn); ok {
						cfg.Performance.WatchMode = b
					}
				case "watch_debounce_ms":
					if v, ok := firstIntArg(cn); ok {
						cfg.Performance.WatchDebounceMs = v
					}
				}
			}
		case "target_class":
			if s, ok := firstStringArg(n); ok {
				cfg.TargetClass = s
			}
		case "include":
			cfg.Include = collectStringArgs(n)
		case "exclude":
			cfg.Exclude = collectStringArgs(n)
		}
	}

	return cfg, nil
}

func nodeName(n *document.Node) string {
	if n == nil || n.Name == nil {
		return ""
	}
	return n.Name.NodeNameString()
}

func firstIntArg(n *document.Node) (int, bool) {
	if len(n.Arguments) == 0 {
		return 0, false
	}
	switch v := n.Arguments[0].Value.(type) {
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}

func firstStringArg(n *document.Node) (string, bool) {
	if len(n.Arguments) == 0 {
		return "", false
	}
	if s, ok := n.Arguments[0].Value.(string); ok {
		return s, true
	}
	return "", false
}

func firstBoolArg(n *document.Node) (bool, bool) {
	if len(n.Arguments) == 0 {
		return false, false
	}
	if b, ok := n.Arguments[0].Value.(bool); ok {
		return b, true
	}
	return false, false
}

func firstFloatArg(n *document.Node) (float64, bool) {
	if len(n.Arguments) == 0 {
		return 0, false
	}
	switch v := n.Arguments[0].Value.(type) {
	case float64:
		return v, true
	case int64:
		return float64(v), true
	default:
		return 0, false
	}
}

// collectStringArgs reads either inline arguments (`include "**/*.go"`) or
// block-form children (`include { "**/*.go" }`).
func collectStringArgs(n *document.Node) []string {
	if n == nil {
		return nil
	}
	out := make([]string, 0, len(n.Arguments))
	for _, a := range n.Arguments {
		if s, ok := a.Value.(string); ok {
			out = append(out, s)
		}
	}
	if len(out) == 0 && len(n.Children) > 0 {
		for _, child := range n.Children {
			if s, ok := firstStringArg(child); ok {
				out = append(out, s)
				continue
			}
			if child.Name != nil {
				if s, ok := child.Name.Value.(string); ok {
					out = append(out, s)
				}
			}
		}
	}
	return out
}
