package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMean(t *testing.T) {
	assert.Equal(t, 0.0, Mean(nil))
	assert.Equal(t, 0.0, Mean([]float64{}))
	assert.Equal(t, 2.0, Mean([]float64{1, 2, 3}))
	assert.Equal(t, 2.5, Mean([]float64{1, 4}))
}

func TestMedianOdd(t *testing.T) {
	assert.Equal(t, 3.0, Median([]float64{5, 1, 3}))
}

func TestMedianEven(t *testing.T) {
	// Average of the two middle sorted elements.
	assert.Equal(t, 2.5, Median([]float64{4, 1, 2, 3}))
}

func TestMedianEmpty(t *testing.T) {
	assert.Equal(t, 0.0, Median(nil))
}

func TestMedianDoesNotMutateInput(t *testing.T) {
	xs := []float64{9, 1, 5}
	_ = Median(xs)
	assert.Equal(t, []float64{9, 1, 5}, xs)
}

func TestMedianRobustToOutlier(t *testing.T) {
	// A single extreme organic spike must not drag the center up the
	// way a mean would.
	xs := []float64{10, 11, 9, 10, 500}
	assert.Equal(t, 10.0, Median(xs))
	assert.Greater(t, Mean(xs), 100.0)
}

func TestStdDev(t *testing.T) {
	assert.Equal(t, 0.0, StdDev(nil))
	assert.Equal(t, 0.0, StdDev([]float64{42}))
	// Population stddev of {2,4,4,4,5,5,7,9} is exactly 2.
	assert.Equal(t, 2.0, StdDev([]float64{2, 4, 4, 4, 5, 5, 7, 9}))
}

func TestClassifyTiers(t *testing.T) {
	// sigma=5, windowDays=7: threshold = 5*sqrt(7) ~= 13.23,
	// double threshold ~= 26.46.
	tier, _ := Classify(30, 5, 7, 14)
	assert.Equal(t, TierHigh, tier)

	tier, _ = Classify(20, 5, 7, 14)
	assert.Equal(t, TierMed, tier)

	tier, _ = Classify(10, 5, 7, 14)
	assert.Equal(t, TierLow, tier)
}

func TestClassifyNoBaseline(t *testing.T) {
	tier, reason := Classify(1000, 5, 7, 0)
	assert.Equal(t, TierLow, tier)
	assert.Equal(t, "no baseline data", reason)
}

func TestClassifyZeroVariance(t *testing.T) {
	tier, reason := Classify(1000, 0, 7, 14)
	assert.Equal(t, TierLow, tier)
	assert.Contains(t, reason, "zero variance")
}
