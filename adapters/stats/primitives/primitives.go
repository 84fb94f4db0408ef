// Package primitives holds the shared statistical functions used by both the
// correlation and regression analyzers. Everything here is a pure function of
// its inputs; degenerate inputs map to defined neutral values, never errors.
package primitives

import (
	"math"
)

// significanceBuckets is the discrete two-tailed p-value approximation used
// instead of a continuous CDF. The thresholds are standard normal critical
// values; an absolute statistic below thresholds[i] resolves to pValues[i].
// A statistic beyond the last threshold resolves to the final bucket.
//
// This table is load-bearing: consumers depend on these exact bucketed
// values, so it must not be swapped for a continuous distribution silently.
var significanceBuckets = struct {
	thresholds []float64
	pValues    []float64
}{
	thresholds: []float64{1.28, 1.645, 1.96, 2.33, 2.58, 3.09},
	pValues:    []float64{0.2, 0.1, 0.05, 0.02, 0.01, 0.002, 0.001},
}

// smallSampleDF is the degrees-of-freedom boundary below which critical
// values are inflated to approximate the heavier tails of the t-distribution.
const smallSampleDF = 30

// PearsonCorrelation computes the Pearson correlation coefficient between two
// equal-length series. Mismatched lengths, empty input, and zero-variance
// (constant) series all return exactly 0 to keep the engine total.
//
// Floating-point rounding may produce values marginally outside [-1, 1];
// callers needing strict bounds must clamp.
func PearsonCorrelation(x, y []float64) float64 {
	if len(x) != len(y) || len(x) == 0 {
		return 0
	}

	meanX := Mean(x)
	meanY := Mean(y)

	numerator := 0.0
	sumXX := 0.0
	sumYY := 0.0

	for i := range x {
		dx := x[i] - meanX
		dy := y[i] - meanY
		numerator += dx * dy
		sumXX += dx * dx
		sumYY += dy * dy
	}

	denominator := math.Sqrt(sumXX * sumYY)
	if denominator == 0 {
		return 0
	}

	return numerator / denominator
}

// ApproximateSignificance maps an absolute t/z statistic to a discrete
// two-tailed p-value bucket. For df <= 30 the critical values are scaled up
// by 1 + (30-df)/100 before comparison, approximating small-sample tails.
func ApproximateSignificance(statistic float64, degreesOfFreedom int) float64 {
	absStat := math.Abs(statistic)

	adjustment := 1.0
	if degreesOfFreedom <= smallSampleDF {
		adjustment = 1.0 + float64(smallSampleDF-degreesOfFreedom)/100.0
	}

	for i, threshold := range significanceBuckets.thresholds {
		if absStat < threshold*adjustment {
			return significanceBuckets.pValues[i]
		}
	}
	return significanceBuckets.pValues[len(significanceBuckets.pValues)-1]
}

// FisherConfidenceInterval builds a confidence interval around a correlation
// coefficient via Fisher's z-transform. Only the 0.95 and 0.99 levels are
// distinguished; any other level falls back to the 90% critical value.
// Returns [0, 0] when n < 3 (the standard error is undefined).
//
// r exactly +-1 divides by zero inside the transform; callers must guard
// against perfect correlations before calling.
func FisherConfidenceInterval(r float64, n int, confidenceLevel float64) (float64, float64) {
	if n < 3 {
		return 0, 0
	}

	z := 0.5 * math.Log((1+r)/(1-r))
	se := 1.0 / math.Sqrt(float64(n-3))

	var zCrit float64
	switch confidenceLevel {
	case 0.95:
		zCrit = 1.96
	case 0.99:
		zCrit = 2.58
	default:
		zCrit = 1.645
	}

	zLow := z - zCrit*se
	zHigh := z + zCrit*se

	// Inverse transform: r = tanh(z)
	return math.Tanh(zLow), math.Tanh(zHigh)
}

// StrengthLabel maps |r| to a categorical correlation strength.
func StrengthLabel(r float64) string {
	absR := math.Abs(r)
	switch {
	case absR < 0.1:
		return "negligible"
	case absR < 0.3:
		return "weak"
	case absR < 0.5:
		return "moderate"
	case absR < 0.7:
		return "strong"
	default:
		return "very strong"
	}
}

// Mean returns the arithmetic mean, or 0 for an empty series.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// SampleVariance returns the Bessel-corrected variance (divide by n-1),
// or 0 when fewer than two values are present.
func SampleVariance(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}

	mean := Mean(values)
	sumSq := 0.0
	for _, v := range values {
		diff := v - mean
		sumSq += diff * diff
	}

	return sumSq / float64(len(values)-1)
}
