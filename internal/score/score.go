// Package score combines the structural verdict and the visual
// similarity ratio into the final 0–100 integer grade.
package score

import (
	"math"

	"github.com/abhisek/rendermark/internal/compare"
)

// Weights: structural comparison carries 70 of 100 points, visual
// similarity the remaining 30.
const (
	structuralMax = 70
	visualMax     = 30
)

// Per-diff penalties applied when the trees are not structurally equal.
const (
	penaltyHigh   = 20
	penaltyMedium = 10
	penaltyLow    = 5
)

// bonus is added when the submission is structurally equal and visually
// near-identical.
const (
	bonusPoints    = 5
	bonusThreshold = 0.9
)

// Aggregate computes the final score from a comparison result and a
// visual ratio in [0,1]. The result is always an integer in [0,100].
func Aggregate(result compare.Result, visualRatio float64) int {
	structural := float64(structuralMax)
	if !result.Equal {
		structural -= float64(penalty(result.Diffs))
		if structural < 0 {
			structural = 0
		}
	}

	total := structural + visualRatio*visualMax
	if result.Equal && visualRatio > bonusThreshold {
		total += bonusPoints
	}

	final := int(math.Round(total))
	if final < 0 {
		return 0
	}
	if final > 100 {
		return 100
	}
	return final
}

// penalty sums severity-weighted deductions over the top-level diffs.
func penalty(diffs []compare.Diff) int {
	total := 0
	for _, d := range diffs {
		switch d.Severity {
		case compare.SeverityHigh:
			total += penaltyHigh
		case compare.SeverityMedium:
			total += penaltyMedium
		case compare.SeverityLow:
			total += penaltyLow
		}
	}
	return total
}
