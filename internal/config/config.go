// Package config holds the immutable run settings the duplicate
// detection core consumes (spec §6 "Configuration (consumed, not
// loaded)"), matching the teacher's nested-struct configuration
// convention.
package config

import (
	"fmt"
	"math"

	"github.com/e4c5/dupscan/internal/dderrors"
)

// Settings is the full set of options enumerated in §6. Loaded once and
// passed by value; nothing in the core mutates it.
type Settings struct {
	Extraction  Extraction
	Weights     Weights
	LSH         LSH
	TargetClass string
	Performance Performance
	Include     []string
	Exclude     []string
}

// Extraction controls the sequence extractor (C1) and boundary refiner
// (C9) toggle.
type Extraction struct {
	MinLines                 int
	MaxWindowGrowth          int // 0 means unbounded
	MaximalOnly              bool
	Threshold                float64
	EnableLSH                bool
	EnableBoundaryRefinement bool
}

// Weights are the similarity-score coefficients; must sum to 1.0.
type Weights struct {
	LCS         float64
	Levenshtein float64
	Structural  float64
}

// LSH configures the MinHash/banding index (C4).
type LSH struct {
	NumHashFunctions int
	NumBands         int
	RowsPerBand      int
}

// Performance mirrors the teacher's Performance-block convention: 0 means
// auto-detect from runtime.NumCPU().
type Performance struct {
	ParallelFileWorkers int
	WatchMode           bool
	WatchDebounceMs     int
}

// Default matches every §6 default value.
var Default = Settings{
	Extraction: Extraction{
		MinLines:                 5,
		MaxWindowGrowth:          0,
		MaximalOnly:              false,
		Threshold:                0.75,
		EnableLSH:                true,
		EnableBoundaryRefinement: true,
	},
	Weights: Weights{LCS: 0.40, Levenshtein: 0.40, Structural: 0.20},
	LSH:     LSH{NumHashFunctions: 100, NumBands: 50, RowsPerBand: 2},
	Performance: Performance{
		ParallelFileWorkers: 0,
		WatchMode:           false,
		WatchDebounceMs:     500,
	},
}

const weightEpsilon = 1e-9

// Validate enforces §7's config-invalid fatal-at-startup rule: weights
// summing to 1.0 within epsilon, no negative values, and
// numBands*rowsPerBand == numHashFunctions.
func (s Settings) Validate() error {
	sum := s.Weights.LCS + s.Weights.Levenshtein + s.Weights.Structural
	if math.Abs(sum-1.0) > weightEpsilon {
		return dderrors.NewConfigInvalidError("weights", fmt.Sprintf("%v", sum), fmt.Errorf("must sum to 1.0"))
	}
	if s.Weights.LCS < 0 || s.Weights.Levenshtein < 0 || s.Weights.Structural < 0 {
		return dderrors.NewConfigInvalidError("weights", fmt.Sprintf("%+v", s.Weights), fmt.Errorf("must be non-negative"))
	}
	if s.LSH.NumBands*s.LSH.RowsPerBand != s.LSH.NumHashFunctions {
		return dderrors.NewConfigInvalidError("lsh", fmt.Sprintf("bands=%d rows=%d hashes=%d", s.LSH.NumBands, s.LSH.RowsPerBand, s.LSH.NumHashFunctions),
			fmt.Errorf("numBands*rowsPerBand must equal numHashFunctions"))
	}
	if s.Extraction.MinLines <= 0 {
		return dderrors.NewConfigInvalidError("minLines", fmt.Sprintf("%d", s.Extraction.MinLines), fmt.Errorf("must be positive"))
	}
	if s.Extraction.Threshold < 0 || s.Extraction.Threshold > 1 {
		return dderrors.NewConfigInvalidError("threshold", fmt.Sprintf("%v", s.Extraction.Threshold), fmt.Errorf("must be in [0,1]"))
	}
	return nil
}
