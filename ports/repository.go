// Package ports defines the interfaces between the analysis engine's callers
// and the infrastructure adapters that serve them.
package ports

import (
	"context"

	"sleeptrend/domain/core"
	"sleeptrend/domain/health"
)

// AnalysisRepository archives completed analysis runs for the reporting
// layer. The engine itself never touches storage.
type AnalysisRepository interface {
	SaveRun(ctx context.Context, run *health.AnalysisRun) error
	GetRun(ctx context.Context, id core.AnalysisID) (*health.AnalysisRun, error)
	ListRuns(ctx context.Context, limit int) ([]*health.AnalysisRun, error)
}

// SampleSource loads the two input series from wherever they live
// (spreadsheet exports, CSV dumps).
type SampleSource interface {
	SleepSamples() ([]health.SleepSample, error)
	PerformanceSamples() ([]health.PerformanceSample, error)
}
