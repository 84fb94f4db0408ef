package health

import (
	"sleeptrend/domain/core"
)

// ============================================================================
// DATED SAMPLES (produced by upstream collectors, immutable)
// ============================================================================

// SleepSample is one night of sleep metrics keyed by calendar day.
// At most one sample exists per Date within a series.
type SleepSample struct {
	Date         core.Date `json:"date"`
	TotalMinutes float64   `json:"total_minutes"` // Total sleep duration
	QualityScore float64   `json:"quality_score"` // 0-100 composite quality
	DeepPercent  float64   `json:"deep_percent"`  // Deep sleep share of total
	RemPercent   float64   `json:"rem_percent"`   // REM sleep share of total
}

// PerformanceSample is one day of training output reduced to a single
// composite score by an upstream scoring function.
type PerformanceSample struct {
	Date  core.Date `json:"date"`
	Score float64   `json:"score"`
}

// PairedObservation joins a sleep sample with the performance sample whose
// date is LagDays after it. Unmatched samples are dropped, never imputed.
type PairedObservation struct {
	Sleep       SleepSample       `json:"sleep"`
	Performance PerformanceSample `json:"performance"`
}

// ============================================================================
// RESULT OBJECTS (freshly allocated per invocation, never mutated)
// ============================================================================

// Basis qualifies how a result was produced, so consumers can tell a neutral
// zero (insufficient or degenerate input) from a genuine near-zero finding.
type Basis string

const (
	BasisOK               Basis = "ok"
	BasisInsufficientData Basis = "insufficient_data"
)

// CorrelationResult quantifies the sleep→performance relationship.
// INVARIANTS: each coefficient in [-1, 1]; PValue in [0, 1];
// SampleSize equals the number of paired observations used.
type CorrelationResult struct {
	DurationCorrelation float64 `json:"duration_correlation"`
	QualityCorrelation  float64 `json:"quality_correlation"`
	DeepCorrelation     float64 `json:"deep_correlation"`
	RemCorrelation      float64 `json:"rem_correlation"`

	StrongestMetric string  `json:"strongest_metric"` // Sub-metric behind the significance test
	StrongestR      float64 `json:"strongest_r"`
	StrengthLabel   string  `json:"strength_label"`

	PValue          float64 `json:"p_value"`
	ConfidenceLevel float64 `json:"confidence_level"` // 1 - PValue
	ConfidenceLow   float64 `json:"confidence_low"`   // Fisher interval on StrongestR
	ConfidenceHigh  float64 `json:"confidence_high"`
	IntervalLevel   float64 `json:"interval_level"` // Level the Fisher interval was built at
	EffectSize      float64 `json:"effect_size"`    // Cohen's d across the quality split
	SampleSize      int     `json:"sample_size"`
	IsSignificant   bool    `json:"is_significant"`
	Basis           Basis   `json:"basis"`
}

// TrendPoint is one (x, y) regression observation. X is an ordinal index
// (day offset); point order matters only for display, not for the math.
type TrendPoint struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// TrendResult characterizes a fitted linear trend.
type TrendResult struct {
	Slope     float64 `json:"slope"`
	Intercept float64 `json:"intercept"`
	RSquared  float64 `json:"r_squared"`

	PValue         float64 `json:"p_value"`
	ConfidenceLow  float64 `json:"confidence_low"` // Interval on Slope
	ConfidenceHigh float64 `json:"confidence_high"`
	IsSignificant  bool    `json:"is_significant"`

	Projected30 float64 `json:"projected_30"` // Slope x 30
	Projected90 float64 `json:"projected_90"` // Slope x 90

	Interpretation string `json:"interpretation"`
	DataPoints     int    `json:"data_points"` // Points used after outlier removal
	Basis          Basis  `json:"basis"`
}

// ============================================================================
// ANALYSIS RUNS (archive payloads for the reporting layer)
// ============================================================================

// AnalysisKind discriminates archived analysis payloads
type AnalysisKind string

const (
	AnalysisCorrelation AnalysisKind = "correlation"
	AnalysisTrend       AnalysisKind = "trend"
)

// AnalysisRun is a completed engine invocation persisted for later reporting.
// The engine itself is stateless; the archive belongs to the callers.
type AnalysisRun struct {
	ID          core.AnalysisID    `json:"id" db:"id"`
	Kind        AnalysisKind       `json:"kind" db:"kind"`
	Label       string             `json:"label" db:"label"`
	Correlation *CorrelationResult `json:"correlation,omitempty" db:"-"`
	Trend       *TrendResult       `json:"trend,omitempty" db:"-"`
	CreatedAt   core.Timestamp     `json:"created_at" db:"-"`
}
