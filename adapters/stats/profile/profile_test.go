package profile

import (
	"math"
	"testing"
)

func TestProfile_ShortSeries(t *testing.T) {
	a := NewAnalyzer()

	p, err := a.Profile([]float64{1, 2})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if p.SampleSize != 2 {
		t.Errorf("Expected sample size 2, got %d", p.SampleSize)
	}
	if p.Mean != 0 || p.StdDev != 0 {
		t.Error("Expected zeroed summary for a series below three values")
	}
}

func TestProfile_SummaryStats(t *testing.T) {
	a := NewAnalyzer()

	data := []float64{2, 4, 4, 4, 5, 5, 7, 9}
	p, err := a.Profile(data)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if math.Abs(p.Mean-5) > 1e-9 {
		t.Errorf("Expected mean 5, got %f", p.Mean)
	}
	if p.Min != 2 || p.Max != 9 {
		t.Errorf("Expected min/max 2/9, got %f/%f", p.Min, p.Max)
	}
	if p.Q25 > p.Median || p.Median > p.Q75 {
		t.Errorf("Quartile ordering violated: q25=%f median=%f q75=%f", p.Q25, p.Median, p.Q75)
	}
	if p.SampleSize != len(data) {
		t.Errorf("Expected sample size %d, got %d", len(data), p.SampleSize)
	}
}

func TestProfile_OutlierCount(t *testing.T) {
	a := NewAnalyzer()

	data := []float64{10, 11, 12, 11, 10, 12, 11, 10, 11, 12, 300}
	p, err := a.Profile(data)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if p.OutlierCount != 1 {
		t.Errorf("Expected exactly 1 outlier, got %d", p.OutlierCount)
	}
	if p.NoiseCoeff <= 0 {
		t.Errorf("Expected nonzero noise coefficient, got %f", p.NoiseCoeff)
	}
}

func TestProfile_NormalityBounds(t *testing.T) {
	a := NewAnalyzer()

	// Roughly symmetric bell-ish data.
	data := []float64{4, 5, 5, 6, 6, 6, 7, 7, 7, 7, 8, 8, 8, 9, 9, 10}
	p, err := a.Profile(data)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if p.NormalityP < 0 || p.NormalityP > 1 {
		t.Errorf("Normality p-value out of range: %f", p.NormalityP)
	}
	t.Logf("Profile: skew=%.3f kurt=%.3f normal=%v (p=%.3f)", p.Skewness, p.Kurtosis, p.IsNormal, p.NormalityP)
}
