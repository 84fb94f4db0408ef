package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"sleeptrend/adapters/excel"
	"sleeptrend/adapters/stats/correlation"
	"sleeptrend/adapters/stats/profile"
	"sleeptrend/adapters/stats/regression"
	"sleeptrend/domain/core"
	"sleeptrend/domain/health"
	"sleeptrend/internal/batch"
	"sleeptrend/ui"
)

func main() {
	// .env is optional for the CLI; flags carry the file paths
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:   "sleeptrend-cli",
		Short: "Sleep vs performance analysis over exported data files",
	}

	rootCmd.AddCommand(
		newCorrelateCmd(),
		newTrendCmd(),
		newProfileCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newCorrelateCmd() *cobra.Command {
	var sleepFile, perfFile string
	var lagDays, minSamples int
	var asMarkdown bool

	cmd := &cobra.Command{
		Use:   "correlate",
		Short: "Correlate sleep metrics against next-day training performance",
		Long: `Pair sleep nights with the performance recorded the following day and
report which sleep metric relates most strongly to training output.

Example: sleeptrend-cli correlate --sleep sleep.xlsx --performance workouts.csv`,
		RunE: func(cmd *cobra.Command, args []string) error {
			sleep, perf, err := loadSamples(sleepFile, perfFile)
			if err != nil {
				return err
			}

			analyzer := correlation.NewAnalyzer(correlation.Config{
				LagDays:       lagDays,
				MinSampleSize: minSamples,
			})
			result := analyzer.Analyze(sleep, perf)

			if asMarkdown {
				run := &health.AnalysisRun{
					ID:          core.NewAnalysisID(),
					Kind:        health.AnalysisCorrelation,
					Label:       "correlation (cli)",
					Correlation: &result,
					CreatedAt:   core.Now(),
				}
				fmt.Println(ui.BuildMarkdown(run))
				return nil
			}
			return printJSON(result)
		},
	}

	cmd.Flags().StringVar(&sleepFile, "sleep", "", "Sleep samples file (.xlsx or .csv)")
	cmd.Flags().StringVar(&perfFile, "performance", "", "Performance samples file (.xlsx or .csv)")
	cmd.Flags().IntVar(&lagDays, "lag", 1, "Days between a sleep night and the performance it affects")
	cmd.Flags().IntVar(&minSamples, "min-samples", 7, "Minimum paired observations required")
	cmd.Flags().BoolVar(&asMarkdown, "markdown", false, "Emit a markdown report instead of JSON")
	_ = cmd.MarkFlagRequired("sleep")
	_ = cmd.MarkFlagRequired("performance")

	return cmd
}

func newTrendCmd() *cobra.Command {
	var sleepFile, perfFile string
	var lowerIsBetter, keepOutliers bool
	var confidence float64
	var concurrency int64

	cmd := &cobra.Command{
		Use:   "trend",
		Short: "Fit linear trends over performance and each sleep metric",
		Long: `Fit a least-squares trend over the performance series and every sleep
metric series, with outlier filtering and slope confidence intervals. The
series run concurrently through the batch runner.

Example: sleeptrend-cli trend --sleep sleep.csv --performance workouts.csv --confidence 0.99`,
		RunE: func(cmd *cobra.Command, args []string) error {
			sleep, perf, err := loadSamples(sleepFile, perfFile)
			if err != nil {
				return err
			}

			analyzer := regression.NewAnalyzer(regression.Config{
				RemoveOutliers:  !keepOutliers,
				LowerIsBetter:   lowerIsBetter,
				ConfidenceLevel: confidence,
			})
			runner := batch.NewRunner(analyzer, concurrency)

			outcomes, err := runner.Run(cmd.Context(), trendRequests(sleep, perf))
			if err != nil {
				return err
			}
			return printJSON(outcomes)
		},
	}

	cmd.Flags().StringVar(&sleepFile, "sleep", "", "Sleep samples file (.xlsx or .csv)")
	cmd.Flags().StringVar(&perfFile, "performance", "", "Performance samples file (.xlsx or .csv)")
	cmd.Flags().BoolVar(&lowerIsBetter, "lower-is-better", false, "Treat a falling performance score as improvement (pace-like metrics)")
	cmd.Flags().BoolVar(&keepOutliers, "keep-outliers", false, "Skip the IQR outlier filter")
	cmd.Flags().Float64Var(&confidence, "confidence", 0.95, "Slope confidence level (0.90, 0.95, 0.99)")
	cmd.Flags().Int64Var(&concurrency, "concurrency", 4, "Maximum concurrent series analyses")
	_ = cmd.MarkFlagRequired("sleep")
	_ = cmd.MarkFlagRequired("performance")

	return cmd
}

func newProfileCmd() *cobra.Command {
	var sleepFile, perfFile string

	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Summarize the shape and quality of each input series",
		Long: `Produce a data-quality brief (distribution summary, outlier count,
normality check, noise estimate) for the performance series and every
sleep metric series.

Example: sleeptrend-cli profile --sleep sleep.csv --performance workouts.csv`,
		RunE: func(cmd *cobra.Command, args []string) error {
			sleep, perf, err := loadSamples(sleepFile, perfFile)
			if err != nil {
				return err
			}

			analyzer := profile.NewAnalyzer()
			profiles := make(map[string]profile.SeriesProfile, len(metricSeries(sleep))+1)

			scores := make([]float64, len(perf))
			for i, p := range perf {
				scores[i] = p.Score
			}
			perfProfile, err := analyzer.Profile(scores)
			if err != nil {
				return err
			}
			profiles["performance"] = perfProfile

			for name, series := range metricSeries(sleep) {
				sp, err := analyzer.Profile(series)
				if err != nil {
					return err
				}
				profiles[name] = sp
			}

			return printJSON(profiles)
		},
	}

	cmd.Flags().StringVar(&sleepFile, "sleep", "", "Sleep samples file (.xlsx or .csv)")
	cmd.Flags().StringVar(&perfFile, "performance", "", "Performance samples file (.xlsx or .csv)")
	_ = cmd.MarkFlagRequired("sleep")
	_ = cmd.MarkFlagRequired("performance")

	return cmd
}

func loadSamples(sleepFile, perfFile string) ([]health.SleepSample, []health.PerformanceSample, error) {
	reader := excel.NewSampleReader(sleepFile, perfFile)

	sleep, err := reader.SleepSamples()
	if err != nil {
		return nil, nil, err
	}
	perf, err := reader.PerformanceSamples()
	if err != nil {
		return nil, nil, err
	}
	return sleep, perf, nil
}

// trendRequests builds one trend series per metric, with x as the day offset
// from the first sample in each series.
func trendRequests(sleep []health.SleepSample, perf []health.PerformanceSample) []batch.TrendRequest {
	requests := []batch.TrendRequest{{Label: "performance", Points: performancePoints(perf)}}

	for name, series := range metricSeries(sleep) {
		points := make([]health.TrendPoint, len(series))
		for i, y := range series {
			points[i] = health.TrendPoint{X: dayOffset(sleep[0].Date, sleep[i].Date), Y: y}
		}
		requests = append(requests, batch.TrendRequest{Label: name, Points: points})
	}

	return requests
}

func performancePoints(perf []health.PerformanceSample) []health.TrendPoint {
	points := make([]health.TrendPoint, len(perf))
	for i, p := range perf {
		points[i] = health.TrendPoint{X: dayOffset(perf[0].Date, p.Date), Y: p.Score}
	}
	return points
}

func metricSeries(sleep []health.SleepSample) map[string][]float64 {
	series := map[string][]float64{
		"duration":     make([]float64, len(sleep)),
		"quality":      make([]float64, len(sleep)),
		"deep_percent": make([]float64, len(sleep)),
		"rem_percent":  make([]float64, len(sleep)),
	}
	for i, s := range sleep {
		series["duration"][i] = s.TotalMinutes
		series["quality"][i] = s.QualityScore
		series["deep_percent"][i] = s.DeepPercent
		series["rem_percent"][i] = s.RemPercent
	}
	return series
}

func dayOffset(first, current core.Date) float64 {
	return current.Time().Sub(first.Time()).Hours() / 24
}

func printJSON(v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}
