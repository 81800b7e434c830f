package config

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// tomlDoc mirrors Settings' shape for the secondary/migration TOML format,
// matching the teacher's pattern of unmarshaling foreign manifests into a
// purpose-built struct (build_artifact_detector.go).
type tomlDoc struct {
	Extraction struct {
		MinLines                 int     `toml:"min_lines"`
		MaxWindowGrowth          int     `toml:"max_window_growth"`
		MaximalOnly              bool    `toml:"maximal_only"`
		Threshold                float64 `toml:"threshold"`
		EnableLSH                bool    `toml:"enable_lsh"`
		EnableBoundaryRefinement bool    `toml:"enable_boundary_refinement"`
	} `toml:"extraction"`
	Weights struct {
		LCS         float64 `toml:"lcs"`
		Levenshtein float64 `toml:"levenshtein"`
		Structural  float64 `toml:"structural"`
	} `toml:"weights"`
	LSH struct {
		NumHashFunctions int `toml:"num_hash_functions"`
		NumBands         int `toml:"num_bands"`
		RowsPerBand      int `toml:"rows_per_band"`
	} `toml:"lsh"`
	Performance struct {
		ParallelFileWorkers int  `toml:"parallel_file_workers"`
		WatchMode           bool `toml:"watch_mode"`
		WatchDebounceMs     int  `toml:"watch_debounce_ms"`
	} `toml:"performance"`
	TargetClass string   `toml:"target_class"`
	Include     []string `toml:"include"`
	Exclude     []string `toml:"exclude"`
}

// LoadTOML reads a `.dupscan.toml` file into Settings.
func LoadTOML(path string) (Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Settings{}, fmt.Errorf("dupscan: read %s: %w", path, err)
	}
	var doc tomlDoc
	if err := toml.Unmarshal(data, &doc); err != nil {
		return Settings{}, fmt.Errorf("dupscan: parse toml config: %w", err)
	}

	cfg := Default
	if doc.Extraction.MinLines != 0 {
		cfg.Extraction.MinLines = doc.Extraction.MinLines
	}
	cfg.Extraction.MaxWindowGrowth = doc.Extraction.MaxWindowGrowth
	cfg.Extraction.MaximalOnly = doc.Extraction.MaximalOnly
	if doc.Extraction.Threshold != 0 {
		cfg.Extraction.Threshold = doc.Extraction.Threshold
	}
	cfg.Extraction.EnableLSH = doc.Extraction.EnableLSH || cfg.Extraction.EnableLSH
	cfg.Extraction.EnableBoundaryRefinement = doc.Extraction.EnableBoundaryRefinement || cfg.Extraction.EnableBoundaryRefinement
	if doc.Weights.LCS != 0 || doc.Weights.Levenshtein != 0 || doc.Weights.Structural != 0 {
		cfg.Weights = Weights{LCS: doc.Weights.LCS, Levenshtein: doc.Weights.Levenshtein, Structural: doc.Weights.Structural}
	}
	if doc.LSH.NumHashFunctions != 0 {
		cfg.LSH = LSH{NumHashFunctions: doc.LSH.NumHashFunctions, NumBands: doc.LSH.NumBands, RowsPerBand: doc.LSH.RowsPerBand}
	}
	if doc.Performance.ParallelFileWorkers != 0 {
		cfg.Performance.ParallelFileWorkers = doc.Performance.ParallelFileWorkers
	}
	cfg.Performance.WatchMode = doc.Performance.WatchMode
	if doc.Performance.WatchDebounceMs != 0 {
		cfg.Performance.WatchDebounceMs = doc.Performance.WatchDebounceMs
	}
	cfg.TargetClass = doc.TargetClass
	cfg.Include = doc.Include
	cfg.Exclude = doc.Exclude

	return cfg, nil
}
