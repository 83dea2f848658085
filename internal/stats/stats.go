package stats

import (
	"fmt"
	"math"
	"sort"
)

// Mean returns the arithmetic mean of xs, or 0 for empty input.
func Mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// Median returns the middle element of xs (average of the two middle
// elements for even length), or 0 for empty input. The input slice is
// never mutated; sorting happens on a copy.
func Median(xs []float64) float64 {
	n := len(xs)
	if n == 0 {
		return 0
	}
	sorted := make([]float64, n)
	copy(sorted, xs)
	sort.Float64s(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

// StdDev returns the population standard deviation of xs (divide by N,
// not N-1), or 0 for fewer than two elements.
func StdDev(xs []float64) float64 {
	n := len(xs)
	if n < 2 {
		return 0
	}
	mean := Mean(xs)
	var sumSq float64
	for _, x := range xs {
		d := x - mean
		sumSq += d * d
	}
	return math.Sqrt(sumSq / float64(n))
}

// Tier is the qualitative confidence level attached to an attributed
// lift. It is a signal-to-noise heuristic, not a significance test.
type Tier string

const (
	TierHigh Tier = "high"
	TierMed  Tier = "medium"
	TierLow  Tier = "low"
)

// Classify grades an attributed incremental lift against baseline
// noise. The threshold k*sigma*sqrt(windowDays) treats the lift as a
// number of days' worth of one-sigma noise: more than two thresholds
// is HIGH, more than one is MEDIUM, anything else LOW.
func Classify(incremental, sigma float64, windowDays, baselineDays int) (Tier, string) {
	if baselineDays == 0 {
		return TierLow, "no baseline data"
	}
	if sigma == 0 {
		return TierLow, "baseline has zero variance; heuristic inapplicable"
	}
	threshold := sigma * math.Sqrt(float64(windowDays))
	switch {
	case incremental > 2*threshold:
		return TierHigh, fmt.Sprintf("lift %.1f exceeds 2x noise threshold %.1f over %d clean baseline days", incremental, 2*threshold, baselineDays)
	case incremental > threshold:
		return TierMed, fmt.Sprintf("lift %.1f exceeds noise threshold %.1f over %d clean baseline days", incremental, threshold, baselineDays)
	default:
		return TierLow, fmt.Sprintf("lift %.1f within noise threshold %.1f", incremental, threshold)
	}
}
