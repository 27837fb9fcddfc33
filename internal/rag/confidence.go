package rag

import "math"

// Confidence is the rank-weighted mean of result scores, clamped to [0, 1].
// The result at rank i (0-based) has weight 1/(i+1). Results are expected in
// descending score order. NaN scores are skipped; an empty input yields 0.
func Confidence(results []Result) float64 {
	var weighted, total float64
	for i, r := range results {
		score := float64(r.Score)
		if math.IsNaN(score) {
			continue
		}
		w := 1.0 / float64(i+1)
		weighted += score * w
		total += w
	}
	if total == 0 {
		return 0
	}
	return clamp01(weighted / total)
}

func clamp01(v float64) float64 {
	switch {
	case math.IsNaN(v), v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
