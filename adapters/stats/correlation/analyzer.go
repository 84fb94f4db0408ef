// Package correlation quantifies the relationship between nightly sleep
// metrics and next-day training performance. Sleep is the predictor series,
// performance the outcome series, joined by a fixed day lag.
package correlation

import (
	"math"

	"sleeptrend/adapters/stats/primitives"
	"sleeptrend/domain/core"
	"sleeptrend/domain/health"
)

// Config controls the pairing and significance policy. All thresholds are
// caller-supplied policy, not engine constants.
type Config struct {
	LagDays               int     // Days between sleep and the performance it predicts
	MinSampleSize         int     // Pairs required before any correlation math runs
	PThreshold            float64 // Significance requires PValue below this
	MinEffectThreshold    float64 // ...and |strongest r| at or above this
	ConfidenceLevel       float64 // Fisher interval level (0.95, 0.99, else 90%)
	QualitySplitThreshold float64 // Quality score dividing the effect-size groups
}

// DefaultConfig returns the standard analysis policy.
func DefaultConfig() Config {
	return Config{
		LagDays:               1,
		MinSampleSize:         7,
		PThreshold:            0.05,
		MinEffectThreshold:    0.3,
		ConfidenceLevel:       0.95,
		QualitySplitThreshold: 70,
	}
}

// minEffectPairs is the smallest paired-observation count for which a
// Cohen's d split is attempted.
const minEffectPairs = 4

// Analyzer computes multi-metric sleep/performance correlations.
// It holds no state across calls; every invocation is a pure function of
// its inputs and the configured policy.
type Analyzer struct {
	cfg Config
}

// NewAnalyzer creates an analyzer, filling zero-valued config fields with
// the defaults.
func NewAnalyzer(cfg Config) *Analyzer {
	def := DefaultConfig()
	if cfg.LagDays == 0 {
		cfg.LagDays = def.LagDays
	}
	if cfg.MinSampleSize == 0 {
		cfg.MinSampleSize = def.MinSampleSize
	}
	if cfg.PThreshold == 0 {
		cfg.PThreshold = def.PThreshold
	}
	if cfg.MinEffectThreshold == 0 {
		cfg.MinEffectThreshold = def.MinEffectThreshold
	}
	if cfg.ConfidenceLevel == 0 {
		cfg.ConfidenceLevel = def.ConfidenceLevel
	}
	if cfg.QualitySplitThreshold == 0 {
		cfg.QualitySplitThreshold = def.QualitySplitThreshold
	}
	return &Analyzer{cfg: cfg}
}

// Pair joins each performance sample with the sleep sample dated LagDays
// earlier. Unmatched performance samples are dropped, never imputed, and
// the result does not depend on input ordering.
func (a *Analyzer) Pair(sleep []health.SleepSample, performance []health.PerformanceSample) []health.PairedObservation {
	byDate := make(map[core.Date]health.SleepSample, len(sleep))
	for _, s := range sleep {
		byDate[s.Date] = s
	}

	pairs := make([]health.PairedObservation, 0, len(performance))
	for _, p := range performance {
		predictorDate := p.Date.AddDays(-a.cfg.LagDays)
		if s, ok := byDate[predictorDate]; ok {
			pairs = append(pairs, health.PairedObservation{Sleep: s, Performance: p})
		}
	}

	return pairs
}

// Analyze pairs the two series and computes correlation, significance,
// confidence bounds, and effect size. Below the minimum sample size it
// returns the neutral result before any correlation math runs.
func (a *Analyzer) Analyze(sleep []health.SleepSample, performance []health.PerformanceSample) health.CorrelationResult {
	pairs := a.Pair(sleep, performance)

	if len(pairs) < a.cfg.MinSampleSize {
		return health.CorrelationResult{
			PValue:          1,
			ConfidenceLevel: 0,
			SampleSize:      len(pairs),
			IsSignificant:   false,
			StrengthLabel:   primitives.StrengthLabel(0),
			Basis:           health.BasisInsufficientData,
		}
	}

	outcome := make([]float64, len(pairs))
	for i, p := range pairs {
		outcome[i] = p.Performance.Score
	}

	// Metric order is the tie-break for the strongest correlation: on equal
	// absolute values the earlier metric wins.
	metrics := []struct {
		name    string
		extract func(health.SleepSample) float64
	}{
		{"duration", func(s health.SleepSample) float64 { return s.TotalMinutes }},
		{"quality", func(s health.SleepSample) float64 { return s.QualityScore }},
		{"deep_percent", func(s health.SleepSample) float64 { return s.DeepPercent }},
		{"rem_percent", func(s health.SleepSample) float64 { return s.RemPercent }},
	}

	coeffs := make([]float64, len(metrics))
	strongest := 0.0
	strongestName := metrics[0].name
	for i, m := range metrics {
		predictor := make([]float64, len(pairs))
		for j, p := range pairs {
			predictor[j] = m.extract(p.Sleep)
		}
		r := clamp(primitives.PearsonCorrelation(predictor, outcome), -1, 1)
		coeffs[i] = r
		if math.Abs(r) > math.Abs(strongest) {
			strongest = r
			strongestName = m.name
		}
	}

	n := len(pairs)
	df := n - 2

	// Fisher-transformed t-statistic of the strongest correlation. A perfect
	// correlation would divide by zero here and inside the interval
	// transform, so it is resolved directly to the tightest bucket.
	// The interval transform recognizes only the 0.95 and 0.99 levels; any
	// other configured value resolves to the 90% critical value, and the
	// result reports the level actually used.
	intervalLevel := 0.90
	if a.cfg.ConfidenceLevel == 0.95 || a.cfg.ConfidenceLevel == 0.99 {
		intervalLevel = a.cfg.ConfidenceLevel
	}

	var pValue float64
	var ciLow, ciHigh float64
	if math.Abs(strongest) == 1 {
		pValue = primitives.ApproximateSignificance(math.Inf(1), df)
		ciLow, ciHigh = strongest, strongest
	} else {
		tStat := strongest * math.Sqrt(float64(df)/(1-strongest*strongest))
		pValue = primitives.ApproximateSignificance(tStat, df)
		ciLow, ciHigh = primitives.FisherConfidenceInterval(strongest, n, a.cfg.ConfidenceLevel)
	}

	isSignificant := pValue < a.cfg.PThreshold && math.Abs(strongest) >= a.cfg.MinEffectThreshold

	return health.CorrelationResult{
		DurationCorrelation: coeffs[0],
		QualityCorrelation:  coeffs[1],
		DeepCorrelation:     coeffs[2],
		RemCorrelation:      coeffs[3],
		StrongestMetric:     strongestName,
		StrongestR:          strongest,
		StrengthLabel:       primitives.StrengthLabel(strongest),
		PValue:              pValue,
		ConfidenceLevel:     1 - pValue,
		ConfidenceLow:       ciLow,
		ConfidenceHigh:      ciHigh,
		IntervalLevel:       intervalLevel,
		EffectSize:          a.effectSize(pairs),
		SampleSize:          n,
		IsSignificant:       isSignificant,
		Basis:               health.BasisOK,
	}
}

// effectSize computes Cohen's d between performance outcomes of high- and
// low-quality sleep nights, split at the configured quality threshold.
// The variances are pooled by simple average, not sample-size weighted.
func (a *Analyzer) effectSize(pairs []health.PairedObservation) float64 {
	if len(pairs) < minEffectPairs {
		return 0
	}

	var high, low []float64
	for _, p := range pairs {
		if p.Sleep.QualityScore >= a.cfg.QualitySplitThreshold {
			high = append(high, p.Performance.Score)
		} else {
			low = append(low, p.Performance.Score)
		}
	}

	if len(high) == 0 || len(low) == 0 {
		return 0
	}

	pooledVariance := (primitives.SampleVariance(high) + primitives.SampleVariance(low)) / 2
	pooledSD := math.Sqrt(pooledVariance)
	if pooledSD == 0 {
		return 0
	}

	return (primitives.Mean(high) - primitives.Mean(low)) / pooledSD
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
