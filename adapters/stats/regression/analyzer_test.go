package regression

import (
	"math"
	"strings"
	"testing"

	"sleeptrend/domain/health"
)

func pts(pairs ...float64) []health.TrendPoint {
	points := make([]health.TrendPoint, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		points = append(points, health.TrendPoint{X: pairs[i], Y: pairs[i+1]})
	}
	return points
}

// TestAnalyzeTrend_PerfectLine fits the canonical perfect line: slope 2,
// intercept 10, R-squared 1, with projections of slope x horizon.
func TestAnalyzeTrend_PerfectLine(t *testing.T) {
	a := NewAnalyzer(Config{MinDataPoints: 5})

	result := a.AnalyzeTrend(pts(0, 10, 1, 12, 2, 14, 3, 16, 4, 18))

	if math.Abs(result.Slope-2) > 1e-9 {
		t.Errorf("Expected slope 2, got %f", result.Slope)
	}
	if math.Abs(result.Intercept-10) > 1e-9 {
		t.Errorf("Expected intercept 10, got %f", result.Intercept)
	}
	if math.Abs(result.RSquared-1) > 1e-9 {
		t.Errorf("Expected R-squared 1, got %f", result.RSquared)
	}
	if math.Abs(result.Projected30-60) > 1e-9 || math.Abs(result.Projected90-180) > 1e-9 {
		t.Errorf("Expected projections 60/180, got %f/%f", result.Projected30, result.Projected90)
	}
	if !result.IsSignificant {
		t.Errorf("Expected a perfect fit to be significant, got p=%f", result.PValue)
	}
	if result.Basis != health.BasisOK {
		t.Errorf("Expected ok basis, got %q", result.Basis)
	}
}

func TestLeastSquares_DegenerateInputs(t *testing.T) {
	// Fewer than two points: zero fit.
	fit := LeastSquares(pts(3, 7))
	if fit.Slope != 0 || fit.Intercept != 0 || fit.RSquared != 0 {
		t.Errorf("Expected zero fit for a single point, got %+v", fit)
	}

	// Identical x-values: slope 0, intercept mean(y).
	fit = LeastSquares(pts(2, 10, 2, 20, 2, 30))
	if fit.Slope != 0 {
		t.Errorf("Expected slope 0 for identical x, got %f", fit.Slope)
	}
	if math.Abs(fit.Intercept-20) > 1e-9 {
		t.Errorf("Expected intercept mean(y)=20, got %f", fit.Intercept)
	}
	if fit.RSquared != 0 {
		t.Errorf("Expected R-squared 0 for identical x, got %f", fit.RSquared)
	}
}

// TestRSquared_ConstantY asserts the exact branch: regression on a constant
// series is defined as a perfect fit to the constant.
func TestRSquared_ConstantY(t *testing.T) {
	points := pts(0, 5, 1, 5, 2, 5, 3, 5)
	fit := LeastSquares(points)

	if fit.RSquared != 1 {
		t.Errorf("Expected R-squared exactly 1 for constant y, got %f", fit.RSquared)
	}
	if fit.Slope != 0 {
		t.Errorf("Expected slope 0 for constant y, got %f", fit.Slope)
	}
}

func TestRSquared_ClampedAtZero(t *testing.T) {
	// A deliberately terrible line must clamp to 0, never go negative.
	points := pts(0, 1, 1, -1, 2, 1, 3, -1)
	if r2 := RSquared(points, 50, 0); r2 != 0 {
		t.Errorf("Expected clamped R-squared 0, got %f", r2)
	}
}

// TestRemoveOutliers_ExtremeValue verifies the filter strictly shrinks a
// series containing one extreme value and keeps everything inside the
// Tukey fences.
func TestRemoveOutliers_ExtremeValue(t *testing.T) {
	points := pts(0, 10, 1, 11, 2, 12, 3, 13, 4, 12, 5, 11, 6, 500)

	filtered := RemoveOutliers(points)

	if len(filtered) >= len(points) {
		t.Fatalf("Expected the outlier to be removed, still have %d points", len(filtered))
	}
	for _, p := range filtered {
		if p.Y == 500 {
			t.Error("Extreme value survived the IQR filter")
		}
	}
	if len(filtered) != len(points)-1 {
		t.Errorf("Expected exactly one point removed, got %d of %d", len(filtered), len(points))
	}

	// Original order is preserved.
	for i := 1; i < len(filtered); i++ {
		if filtered[i].X < filtered[i-1].X {
			t.Error("Filter reordered the series")
		}
	}
}

func TestRemoveOutliers_TooFewPoints(t *testing.T) {
	points := pts(0, 1, 1, 2, 2, 1000)
	filtered := RemoveOutliers(points)
	if len(filtered) != len(points) {
		t.Errorf("Expected pass-through below 4 points, got %d", len(filtered))
	}
}

// TestConfidenceInterval_BracketsSlope a noisy upward series must produce an
// interval strictly containing the fitted slope, and the 99% interval must
// be wider than the 95% one.
func TestConfidenceInterval_BracketsSlope(t *testing.T) {
	points := pts(0, 10, 1, 13, 2, 11, 3, 16, 4, 14, 5, 19, 6, 17, 7, 22)
	fit := LeastSquares(points)

	a95 := NewAnalyzer(Config{ConfidenceLevel: 0.95})
	lo95, hi95 := a95.ConfidenceInterval(points, fit)
	if !(lo95 < fit.Slope && fit.Slope < hi95) {
		t.Errorf("Interval [%f, %f] does not bracket slope %f", lo95, hi95, fit.Slope)
	}

	a99 := NewAnalyzer(Config{ConfidenceLevel: 0.99})
	lo99, hi99 := a99.ConfidenceInterval(points, fit)
	if !(hi99-lo99 > hi95-lo95) {
		t.Errorf("Expected 99%% interval wider than 95%%: [%f, %f] vs [%f, %f]", lo99, hi99, lo95, hi95)
	}
}

// TestSignificance_Buckets drives the t-statistic through the fixed
// breakpoints by scaling the noise around a known slope.
func TestSignificance_Buckets(t *testing.T) {
	a := NewAnalyzer(Config{})

	// Strong clean trend: tiny residuals, enormous t-statistic.
	strong := pts(0, 10, 1, 12.1, 2, 13.9, 3, 16.1, 4, 17.9, 5, 20)
	fitStrong := LeastSquares(strong)
	if p := a.Significance(strong, fitStrong); p > 0.01 {
		t.Errorf("Expected a tight bucket for a clean trend, got p=%f", p)
	}

	// Pure noise around a flat line: the t-statistic collapses.
	flat := pts(0, 10, 1, 14, 2, 9, 3, 15, 4, 10, 5, 13)
	fitFlat := LeastSquares(flat)
	if p := a.Significance(flat, fitFlat); p < 0.08 {
		t.Errorf("Expected an insignificant bucket for noise, got p=%f", p)
	}
}

func TestAnalyzeTrend_InsufficientData(t *testing.T) {
	a := NewAnalyzer(Config{MinDataPoints: 10})

	result := a.AnalyzeTrend(pts(0, 1, 1, 2, 2, 3))

	if result.Basis != health.BasisInsufficientData {
		t.Fatalf("Expected insufficient-data basis, got %q", result.Basis)
	}
	if result.Slope != 0 || result.RSquared != 0 {
		t.Error("Expected all-zero statistics for insufficient data")
	}
	if result.PValue != 1 || result.IsSignificant {
		t.Errorf("Expected neutral significance, got p=%f significant=%v", result.PValue, result.IsSignificant)
	}
	if result.Interpretation == "" {
		t.Error("Expected an insufficient-data interpretation")
	}
}

// TestAnalyzeTrend_OutlierToggle the same series analyzed with and without
// the IQR filter must disagree on the point count.
func TestAnalyzeTrend_OutlierToggle(t *testing.T) {
	points := pts(0, 10, 1, 11, 2, 12, 3, 13, 4, 12, 5, 11, 6, 500)

	with := NewAnalyzer(Config{MinDataPoints: 4, RemoveOutliers: true}).AnalyzeTrend(points)
	without := NewAnalyzer(Config{MinDataPoints: 4}).AnalyzeTrend(points)

	if with.DataPoints != 6 {
		t.Errorf("Expected 6 points after removal, got %d", with.DataPoints)
	}
	if without.DataPoints != 7 {
		t.Errorf("Expected 7 points without removal, got %d", without.DataPoints)
	}
}

// TestInterpretation_DirectionFlag a falling series is decline for a
// higher-is-better metric and improvement for a lower-is-better one (pace).
func TestInterpretation_DirectionFlag(t *testing.T) {
	points := pts(0, 20, 1, 18.1, 2, 15.9, 3, 14.1, 4, 11.9, 5, 10)

	higher := NewAnalyzer(Config{MinDataPoints: 4}).AnalyzeTrend(points)
	lower := NewAnalyzer(Config{MinDataPoints: 4, LowerIsBetter: true}).AnalyzeTrend(points)

	if !higher.IsSignificant || !lower.IsSignificant {
		t.Fatalf("Expected both runs significant, got p=%f / p=%f", higher.PValue, lower.PValue)
	}
	if want := "declining"; !strings.Contains(higher.Interpretation, want) {
		t.Errorf("Expected %q in %q", want, higher.Interpretation)
	}
	if want := "improving"; !strings.Contains(lower.Interpretation, want) {
		t.Errorf("Expected %q in %q", want, lower.Interpretation)
	}
}

func TestInterpretation_NotSignificant(t *testing.T) {
	flat := pts(0, 10, 1, 14, 2, 9, 3, 15, 4, 10, 5, 13)

	result := NewAnalyzer(Config{MinDataPoints: 4}).AnalyzeTrend(flat)

	if result.IsSignificant {
		t.Fatalf("Expected noise to be insignificant, got p=%f", result.PValue)
	}
	for _, banned := range []string{"improving", "declining", "weak", "moderate", "strong"} {
		if strings.Contains(result.Interpretation, banned) {
			t.Errorf("Non-significant interpretation must omit %q: %q", banned, result.Interpretation)
		}
	}
}
