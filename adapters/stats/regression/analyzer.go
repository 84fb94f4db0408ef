// Package regression fits and characterizes a univariate linear trend in a
// metric-over-time series: least-squares fit, R-squared, IQR outlier removal,
// slope confidence interval, bucketed significance, and forward projection.
package regression

import (
	"fmt"
	"math"
	"sort"

	"sleeptrend/adapters/stats/primitives"
	"sleeptrend/domain/health"
)

// Config controls the trend analysis policy.
type Config struct {
	MinDataPoints         int     // Points required after outlier removal
	RemoveOutliers        bool    // Apply the IQR filter before fitting
	LowerIsBetter         bool    // Improvement direction (pace vs power)
	SignificanceThreshold float64 // Slope p-value must be below this
	ConfidenceLevel       float64 // Slope interval level (0.90, 0.95, 0.99)
}

// DefaultConfig returns the standard trend policy.
func DefaultConfig() Config {
	return Config{
		MinDataPoints:         5,
		RemoveOutliers:        true,
		SignificanceThreshold: 0.05,
		ConfidenceLevel:       0.95,
	}
}

// slopeSignificance maps |slope/slopeSE| to discrete p-values. As with the
// correlation buckets, this table is part of the engine contract.
var slopeSignificance = struct {
	breakpoints []float64
	pValues     []float64
}{
	breakpoints: []float64{1.645, 1.96, 2.576, 3.291},
	pValues:     []float64{0.10, 0.08, 0.03, 0.01, 0.001},
}

// tTable holds the fixed critical t-values for the slope confidence
// interval, keyed by confidence level with a small-sample/large-sample split
// at 30 degrees of freedom.
var tTable = map[float64][2]float64{
	0.90: {1.697, 1.645},
	0.95: {2.042, 1.960},
	0.99: {2.750, 2.576},
}

// iqrMultiplier is the standard Tukey fence width.
const iqrMultiplier = 1.5

// minOutlierPoints below this, the IQR filter passes the series unchanged.
const minOutlierPoints = 4

// Fit is the closed-form least-squares result.
type Fit struct {
	Slope     float64
	Intercept float64
	RSquared  float64
}

// Analyzer fits linear trends. Stateless; safe to share.
type Analyzer struct {
	cfg Config
}

// NewAnalyzer creates a trend analyzer, filling zero-valued config fields
// with the defaults.
func NewAnalyzer(cfg Config) *Analyzer {
	def := DefaultConfig()
	if cfg.MinDataPoints == 0 {
		cfg.MinDataPoints = def.MinDataPoints
	}
	if cfg.SignificanceThreshold == 0 {
		cfg.SignificanceThreshold = def.SignificanceThreshold
	}
	if cfg.ConfidenceLevel == 0 {
		cfg.ConfidenceLevel = def.ConfidenceLevel
	}
	return &Analyzer{cfg: cfg}
}

// LeastSquares computes the fit through centered sums. Fewer than two points
// returns the zero fit; identical x-values return slope 0 with the mean of y
// as intercept.
func LeastSquares(points []health.TrendPoint) Fit {
	if len(points) < 2 {
		return Fit{}
	}

	xs := make([]float64, len(points))
	ys := make([]float64, len(points))
	for i, p := range points {
		xs[i] = p.X
		ys[i] = p.Y
	}

	meanX := primitives.Mean(xs)
	meanY := primitives.Mean(ys)

	numerator := 0.0
	denominator := 0.0
	for i := range points {
		dx := xs[i] - meanX
		numerator += dx * (ys[i] - meanY)
		denominator += dx * dx
	}

	if denominator == 0 {
		return Fit{Slope: 0, Intercept: meanY, RSquared: 0}
	}

	slope := numerator / denominator
	intercept := meanY - slope*meanX

	return Fit{
		Slope:     slope,
		Intercept: intercept,
		RSquared:  RSquared(points, slope, intercept),
	}
}

// RSquared computes the coefficient of determination, clamped at 0. A
// constant y-series (zero total sum of squares) is defined as a perfect fit.
func RSquared(points []health.TrendPoint, slope, intercept float64) float64 {
	if len(points) == 0 {
		return 0
	}

	ys := make([]float64, len(points))
	for i, p := range points {
		ys[i] = p.Y
	}
	meanY := primitives.Mean(ys)

	ssRes := 0.0
	ssTot := 0.0
	for _, p := range points {
		predicted := slope*p.X + intercept
		ssRes += (p.Y - predicted) * (p.Y - predicted)
		ssTot += (p.Y - meanY) * (p.Y - meanY)
	}

	if ssTot == 0 {
		return 1
	}

	r2 := 1 - ssRes/ssTot
	if r2 < 0 {
		return 0
	}
	return r2
}

// RemoveOutliers filters points whose y-value falls outside the Tukey fences
// [Q1 - 1.5*IQR, Q3 + 1.5*IQR]. Quartiles use truncating index selection,
// not interpolation; changing that would shift boundary results. The filter
// keeps the original point order and requires at least four points.
func RemoveOutliers(points []health.TrendPoint) []health.TrendPoint {
	if len(points) < minOutlierPoints {
		return points
	}

	ys := make([]float64, len(points))
	for i, p := range points {
		ys[i] = p.Y
	}
	sort.Float64s(ys)

	q1 := ys[int(float64(len(ys))*0.25)]
	q3 := ys[int(float64(len(ys))*0.75)]
	iqr := q3 - q1
	lower := q1 - iqrMultiplier*iqr
	upper := q3 + iqrMultiplier*iqr

	filtered := make([]health.TrendPoint, 0, len(points))
	for _, p := range points {
		if p.Y >= lower && p.Y <= upper {
			filtered = append(filtered, p)
		}
	}

	return filtered
}

// ConfidenceInterval returns the slope interval at the configured level
// using the fixed t-table. Below three points the interval collapses to the
// slope itself.
func (a *Analyzer) ConfidenceInterval(points []health.TrendPoint, fit Fit) (float64, float64) {
	se := slopeStandardError(points, fit)
	if se == 0 {
		return fit.Slope, fit.Slope
	}

	tCrit, ok := tTable[a.cfg.ConfidenceLevel]
	if !ok {
		tCrit = tTable[0.95]
	}

	t := tCrit[0]
	if len(points)-2 >= 30 {
		t = tCrit[1]
	}

	return fit.Slope - t*se, fit.Slope + t*se
}

// Significance maps the slope t-statistic through the fixed breakpoints.
// A zero standard error means a perfect fit: maximally significant for a
// nonzero slope, maximally insignificant for a flat one.
func (a *Analyzer) Significance(points []health.TrendPoint, fit Fit) float64 {
	se := slopeStandardError(points, fit)
	if se == 0 {
		if fit.Slope == 0 {
			return slopeSignificance.pValues[0]
		}
		return slopeSignificance.pValues[len(slopeSignificance.pValues)-1]
	}

	tStat := math.Abs(fit.Slope / se)
	for i, breakpoint := range slopeSignificance.breakpoints {
		if tStat < breakpoint {
			return slopeSignificance.pValues[i]
		}
	}
	return slopeSignificance.pValues[len(slopeSignificance.pValues)-1]
}

// slopeStandardError computes stdError/sqrt(Sxx) where stdError is the
// residual standard error sqrt(SSres/(n-2)). Returns 0 for fewer than three
// points or degenerate x.
func slopeStandardError(points []health.TrendPoint, fit Fit) float64 {
	if len(points) < 3 {
		return 0
	}

	xs := make([]float64, len(points))
	for i, p := range points {
		xs[i] = p.X
	}
	meanX := primitives.Mean(xs)

	ssRes := 0.0
	sxx := 0.0
	for _, p := range points {
		predicted := fit.Slope*p.X + fit.Intercept
		ssRes += (p.Y - predicted) * (p.Y - predicted)
		dx := p.X - meanX
		sxx += dx * dx
	}

	if sxx == 0 {
		return 0
	}

	stdError := math.Sqrt(ssRes / float64(len(points)-2))
	return stdError / math.Sqrt(sxx)
}

// AnalyzeTrend runs the full pipeline: optional outlier removal, minimum
// point guard, fit, confidence interval, significance, 30/90-day projection,
// and interpretation.
func (a *Analyzer) AnalyzeTrend(points []health.TrendPoint) health.TrendResult {
	working := points
	if a.cfg.RemoveOutliers {
		working = RemoveOutliers(points)
	}

	if len(working) < a.cfg.MinDataPoints {
		return health.TrendResult{
			PValue:         1,
			Interpretation: fmt.Sprintf("Insufficient data: %d points available, %d required", len(working), a.cfg.MinDataPoints),
			DataPoints:     len(working),
			Basis:          health.BasisInsufficientData,
		}
	}

	fit := LeastSquares(working)
	ciLow, ciHigh := a.ConfidenceInterval(working, fit)
	pValue := a.Significance(working, fit)
	isSignificant := pValue < a.cfg.SignificanceThreshold

	return health.TrendResult{
		Slope:          fit.Slope,
		Intercept:      fit.Intercept,
		RSquared:       fit.RSquared,
		PValue:         pValue,
		ConfidenceLow:  ciLow,
		ConfidenceHigh: ciHigh,
		IsSignificant:  isSignificant,
		Projected30:    fit.Slope * 30,
		Projected90:    fit.Slope * 90,
		Interpretation: a.interpret(fit, isSignificant),
		DataPoints:     len(working),
		Basis:          health.BasisOK,
	}
}

// interpret builds the templated trend sentence. Non-significant trends say
// so explicitly and carry no direction or strength language.
func (a *Analyzer) interpret(fit Fit, isSignificant bool) string {
	if !isSignificant {
		return "No statistically significant trend detected over this period."
	}

	improving := fit.Slope > 0
	if a.cfg.LowerIsBetter {
		improving = fit.Slope < 0
	}

	direction := "declining"
	if improving {
		direction = "improving"
	}

	var strength string
	switch {
	case fit.RSquared <= 0.4:
		strength = "weak"
	case fit.RSquared <= 0.7:
		strength = "moderate"
	default:
		strength = "strong"
	}

	return fmt.Sprintf("Performance is %s with a %s linear trend (R²=%.2f).", direction, strength, fit.RSquared)
}
