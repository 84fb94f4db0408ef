package correlation

import (
	"fmt"
	"math"
	"testing"

	"sleeptrend/domain/core"
	"sleeptrend/domain/health"
)

func sleepOn(date string, minutes, quality, deep, rem float64) health.SleepSample {
	return health.SleepSample{
		Date:         core.Date(date),
		TotalMinutes: minutes,
		QualityScore: quality,
		DeepPercent:  deep,
		RemPercent:   rem,
	}
}

func perfOn(date string, score float64) health.PerformanceSample {
	return health.PerformanceSample{Date: core.Date(date), Score: score}
}

// dayKey formats the i-th day of a fixed January window.
func dayKey(i int) string {
	return fmt.Sprintf("2025-01-%02d", i)
}

// TestPair_DefaultLag verifies the exact-date join: sleep on the 14th pairs
// with performance on the 15th, and a performance sample one day further out
// does not pair even though both samples exist.
func TestPair_DefaultLag(t *testing.T) {
	a := NewAnalyzer(Config{})

	sleep := []health.SleepSample{sleepOn("2025-01-14", 420, 80, 20, 22)}

	pairs := a.Pair(sleep, []health.PerformanceSample{perfOn("2025-01-15", 65)})
	if len(pairs) != 1 {
		t.Fatalf("Expected 1 pair for 1-day lag, got %d", len(pairs))
	}
	if pairs[0].Sleep.Date != "2025-01-14" || pairs[0].Performance.Date != "2025-01-15" {
		t.Errorf("Unexpected pair: %v -> %v", pairs[0].Sleep.Date, pairs[0].Performance.Date)
	}

	pairs = a.Pair(sleep, []health.PerformanceSample{perfOn("2025-01-16", 65)})
	if len(pairs) != 0 {
		t.Errorf("Expected no pair for a 2-day gap, got %d", len(pairs))
	}
}

// TestPair_OrderIndependent shuffled inputs must produce the same pairs.
func TestPair_OrderIndependent(t *testing.T) {
	a := NewAnalyzer(Config{})

	sleep := []health.SleepSample{
		sleepOn("2025-01-12", 400, 70, 18, 20),
		sleepOn("2025-01-10", 380, 60, 15, 19),
		sleepOn("2025-01-11", 450, 85, 22, 24),
	}
	perf := []health.PerformanceSample{
		perfOn("2025-01-12", 58),
		perfOn("2025-01-13", 61),
		perfOn("2025-01-11", 52),
	}

	pairs := a.Pair(sleep, perf)
	if len(pairs) != 3 {
		t.Fatalf("Expected 3 pairs, got %d", len(pairs))
	}
	for _, p := range pairs {
		if p.Sleep.Date.AddDays(1) != p.Performance.Date {
			t.Errorf("Pair violates lag invariant: %v -> %v", p.Sleep.Date, p.Performance.Date)
		}
	}
}

// TestAnalyze_MinimumSampleGuard verifies the neutral result: pValue exactly
// 1, not significant, and SampleSize reporting the actual pair count even
// when the input arrays are individually large.
func TestAnalyze_MinimumSampleGuard(t *testing.T) {
	a := NewAnalyzer(Config{MinSampleSize: 7})

	// Many samples on each side, but only 2 dates actually line up.
	var sleep []health.SleepSample
	var perf []health.PerformanceSample
	for i := 1; i <= 10; i++ {
		sleep = append(sleep, sleepOn(fmt.Sprintf("2025-02-%02d", i), 400, 70, 18, 20))
	}
	perf = append(perf, perfOn("2025-02-03", 55), perfOn("2025-02-07", 60), perfOn("2025-03-20", 40))

	result := a.Analyze(sleep, perf)

	if result.PValue != 1 {
		t.Errorf("Expected pValue 1, got %f", result.PValue)
	}
	if result.IsSignificant {
		t.Error("Expected not significant")
	}
	if result.SampleSize != 2 {
		t.Errorf("Expected SampleSize 2 (pairs actually found), got %d", result.SampleSize)
	}
	if result.ConfidenceLevel != 0 {
		t.Errorf("Expected confidence 0, got %f", result.ConfidenceLevel)
	}
	if result.Basis != health.BasisInsufficientData {
		t.Errorf("Expected insufficient-data basis, got %q", result.Basis)
	}
	if result.DurationCorrelation != 0 || result.QualityCorrelation != 0 {
		t.Error("Expected zeroed coefficients below the sample guard")
	}
}

// TestAnalyze_StrongestMetricWins builds data where quality tracks
// performance tightly while the other metrics wobble, and asserts the
// significance test keys off the strongest absolute correlation.
func TestAnalyze_StrongestMetricWins(t *testing.T) {
	a := NewAnalyzer(Config{})

	var sleep []health.SleepSample
	var perf []health.PerformanceSample
	wobble := []float64{3, -4, 1, -2, 5, -1, 2, -3, 4, 0, -5, 1, 3, -2}
	for i := 0; i < 14; i++ {
		quality := 50 + float64(i)*3
		sleep = append(sleep, sleepOn(dayKey(i+1), 400+wobble[i]*10, quality, 15+wobble[i], 20+wobble[(i+5)%14]))
		perf = append(perf, perfOn(dayKey(i+2), 0.8*quality+5))
	}

	result := a.Analyze(sleep, perf)

	if result.Basis != health.BasisOK {
		t.Fatalf("Expected ok basis, got %q", result.Basis)
	}
	if result.StrongestMetric != "quality" {
		t.Errorf("Expected quality to be the strongest metric, got %q", result.StrongestMetric)
	}
	if math.Abs(result.QualityCorrelation-1.0) > 1e-9 {
		t.Errorf("Expected quality correlation ~ 1.0, got %f", result.QualityCorrelation)
	}
	if !result.IsSignificant {
		t.Errorf("Expected significance for perfect quality correlation (p=%f)", result.PValue)
	}
	if result.SampleSize != 14 {
		t.Errorf("Expected 14 pairs, got %d", result.SampleSize)
	}
	if result.ConfidenceLevel != 1-result.PValue {
		t.Errorf("Expected confidence = 1 - p, got %f vs p=%f", result.ConfidenceLevel, result.PValue)
	}
}

// TestAnalyze_IntervalLevelReported the result must name the level the
// Fisher interval was actually built at, including the 90% fallback for
// unsupported levels.
func TestAnalyze_IntervalLevelReported(t *testing.T) {
	var sleep []health.SleepSample
	var perf []health.PerformanceSample
	wobble := []float64{2, -1, 3, -2, 1, -3, 2, 0, -2, 1}
	for i := 0; i < 10; i++ {
		sleep = append(sleep, sleepOn(dayKey(i+1), 400+wobble[i]*8, 50+float64(i)*3, 18, 20))
		perf = append(perf, perfOn(dayKey(i+2), 40+float64(i)*2+wobble[i]))
	}

	cases := []struct {
		configured float64
		want       float64
	}{
		{0, 0.95}, // default
		{0.99, 0.99},
		{0.80, 0.90}, // unsupported level resolves to the 90% critical value
	}
	for _, c := range cases {
		a := NewAnalyzer(Config{ConfidenceLevel: c.configured})
		result := a.Analyze(sleep, perf)
		if result.IntervalLevel != c.want {
			t.Errorf("Configured level %v: expected IntervalLevel %v, got %v",
				c.configured, c.want, result.IntervalLevel)
		}
	}
}

// TestAnalyze_SignificanceNeedsBothConditions a tight p-value alone must not
// flag significance when the effect is below the minimum threshold.
func TestAnalyze_SignificanceNeedsBothConditions(t *testing.T) {
	a := NewAnalyzer(Config{MinEffectThreshold: 0.99})

	var sleep []health.SleepSample
	var perf []health.PerformanceSample
	wobble := []float64{2, -1, 3, -2, 1, -3, 2, 0, -2, 1, 3, -1}
	for i := 0; i < 12; i++ {
		quality := 50 + float64(i)*3 + wobble[i]*4
		sleep = append(sleep, sleepOn(dayKey(i+1), 400, quality, 18, 20))
		perf = append(perf, perfOn(dayKey(i+2), 40+float64(i)*2))
	}

	result := a.Analyze(sleep, perf)

	if math.Abs(result.StrongestR) >= 0.99 {
		t.Fatalf("Test data produced an unexpectedly perfect correlation: %f", result.StrongestR)
	}
	if result.IsSignificant {
		t.Errorf("Expected not significant with |r|=%f below the 0.99 effect floor (p=%f)",
			result.StrongestR, result.PValue)
	}
}

// TestEffectSize_QualitySplit verifies the Cohen's d computation over a
// hand-checkable split: high-quality nights score {60, 62}, low-quality
// nights {40, 42}. Means differ by 20, both variances are 2, pooled SD is
// sqrt(2), so d = 20/sqrt(2).
func TestEffectSize_QualitySplit(t *testing.T) {
	a := NewAnalyzer(Config{QualitySplitThreshold: 70})

	pairs := []health.PairedObservation{
		{Sleep: sleepOn("2025-01-01", 420, 85, 20, 22), Performance: perfOn("2025-01-02", 60)},
		{Sleep: sleepOn("2025-01-02", 430, 90, 21, 23), Performance: perfOn("2025-01-03", 62)},
		{Sleep: sleepOn("2025-01-03", 350, 50, 12, 15), Performance: perfOn("2025-01-04", 40)},
		{Sleep: sleepOn("2025-01-04", 360, 55, 13, 16), Performance: perfOn("2025-01-05", 42)},
	}

	d := a.effectSize(pairs)
	want := 20.0 / math.Sqrt2
	if math.Abs(d-want) > 1e-9 {
		t.Errorf("Expected d=%f, got %f", want, d)
	}
}

func TestEffectSize_DegenerateSplits(t *testing.T) {
	a := NewAnalyzer(Config{})

	short := []health.PairedObservation{
		{Sleep: sleepOn("2025-01-01", 420, 85, 20, 22), Performance: perfOn("2025-01-02", 60)},
		{Sleep: sleepOn("2025-01-02", 350, 50, 12, 15), Performance: perfOn("2025-01-03", 40)},
	}
	if d := a.effectSize(short); d != 0 {
		t.Errorf("Expected 0 below the minimum pair count, got %f", d)
	}

	// All nights above the threshold: the low group is empty.
	var oneSided []health.PairedObservation
	for i := 1; i <= 6; i++ {
		oneSided = append(oneSided, health.PairedObservation{
			Sleep:       sleepOn(dayKey(i), 420, 85, 20, 22),
			Performance: perfOn(dayKey(i+1), 55+float64(i)),
		})
	}
	if d := a.effectSize(oneSided); d != 0 {
		t.Errorf("Expected 0 for a one-sided split, got %f", d)
	}

	// Identical outcomes: pooled SD is zero.
	var flat []health.PairedObservation
	for i := 1; i <= 6; i++ {
		quality := 50.0
		if i%2 == 0 {
			quality = 85
		}
		flat = append(flat, health.PairedObservation{
			Sleep:       sleepOn(dayKey(i), 420, quality, 20, 22),
			Performance: perfOn(dayKey(i+1), 50),
		})
	}
	if d := a.effectSize(flat); d != 0 {
		t.Errorf("Expected 0 for zero pooled SD, got %f", d)
	}
}
