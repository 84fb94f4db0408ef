// Package profile produces a data-quality brief for an input series before
// it reaches the analyzers. The reporting layer uses it to decide how much
// weight a correlation or trend result deserves.
package profile

import (
	"math"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat/distuv"
)

// SeriesProfile summarizes the shape and quality of one metric series.
type SeriesProfile struct {
	SampleSize   int     `json:"sample_size"`
	Mean         float64 `json:"mean"`
	StdDev       float64 `json:"std_dev"`
	Min          float64 `json:"min"`
	Max          float64 `json:"max"`
	Median       float64 `json:"median"`
	Q25          float64 `json:"q25"`
	Q75          float64 `json:"q75"`
	Skewness     float64 `json:"skewness"`
	Kurtosis     float64 `json:"kurtosis"`
	OutlierCount int     `json:"outlier_count"`
	IsNormal     bool    `json:"is_normal"`
	NormalityP   float64 `json:"normality_p"`
	NoiseCoeff   float64 `json:"noise_coeff"` // 0 clean .. 1 very noisy
}

// Analyzer profiles metric series. Stateless.
type Analyzer struct{}

// NewAnalyzer creates a profile analyzer
func NewAnalyzer() *Analyzer {
	return &Analyzer{}
}

// Profile computes the full brief for a series. Series shorter than three
// values return a zeroed profile with only the sample size set; there is
// nothing meaningful to summarize.
func (a *Analyzer) Profile(data []float64) (SeriesProfile, error) {
	p := SeriesProfile{SampleSize: len(data)}
	if len(data) < 3 {
		return p, nil
	}

	mean, err := stats.Mean(data)
	if err != nil {
		return p, err
	}
	stdDev, err := stats.StandardDeviation(data)
	if err != nil {
		return p, err
	}
	min, err := stats.Min(data)
	if err != nil {
		return p, err
	}
	max, err := stats.Max(data)
	if err != nil {
		return p, err
	}
	median, err := stats.Median(data)
	if err != nil {
		return p, err
	}
	q25, err := stats.Percentile(data, 25)
	if err != nil {
		return p, err
	}
	q75, err := stats.Percentile(data, 75)
	if err != nil {
		return p, err
	}

	p.Mean = mean
	p.StdDev = stdDev
	p.Min = min
	p.Max = max
	p.Median = median
	p.Q25 = q25
	p.Q75 = q75
	p.Skewness = skewness(data, mean, stdDev)
	p.Kurtosis = kurtosis(data, mean, stdDev)
	p.OutlierCount = countOutliers(data, q25, q75)
	p.IsNormal, p.NormalityP = testNormality(p.Skewness, p.Kurtosis)
	p.NoiseCoeff = noiseCoefficient(mean, stdDev)

	return p, nil
}

// skewness computes the adjusted Fisher-Pearson sample skewness.
func skewness(data []float64, mean, stdDev float64) float64 {
	if len(data) < 3 || stdDev == 0 {
		return 0
	}

	n := float64(len(data))
	sumCubed := 0.0
	for _, x := range data {
		d := (x - mean) / stdDev
		sumCubed += d * d * d
	}

	correction := math.Sqrt(n*(n-1)) / (n - 2)
	return sumCubed / n * correction
}

// kurtosis computes sample kurtosis (not excess kurtosis).
func kurtosis(data []float64, mean, stdDev float64) float64 {
	if len(data) < 4 || stdDev == 0 {
		return 0
	}

	n := float64(len(data))
	sumFourth := 0.0
	for _, x := range data {
		d := (x - mean) / stdDev
		sumFourth += d * d * d * d
	}

	excess := sumFourth/n - 3
	if n > 3 {
		correction := (n - 1) / ((n - 2) * (n - 3))
		excess = excess*correction + 6/(n+1)
	}

	return excess + 3
}

// countOutliers counts values outside the 1.5*IQR fences.
func countOutliers(data []float64, q25, q75 float64) int {
	iqr := q75 - q25
	lower := q25 - 1.5*iqr
	upper := q75 + 1.5*iqr

	count := 0
	for _, x := range data {
		if x < lower || x > upper {
			count++
		}
	}
	return count
}

// testNormality approximates a normality check from skewness and kurtosis
// through a chi-squared CDF. Coarse, but enough to flag obviously skewed
// recovery data before the reporting layer over-interprets a correlation.
func testNormality(skew, kurt float64) (bool, float64) {
	testStat := math.Abs(skew) + math.Abs(kurt-3)/2

	chi := distuv.ChiSquared{K: 2}
	pValue := 1 - chi.CDF(testStat*testStat)

	return pValue > 0.05, pValue
}

// noiseCoefficient estimates noise as a capped coefficient of variation.
func noiseCoefficient(mean, stdDev float64) float64 {
	if mean == 0 {
		return 1.0
	}
	return math.Min(stdDev/math.Abs(mean)/2.0, 1.0)
}
