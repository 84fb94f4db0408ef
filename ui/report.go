package ui

import (
	"fmt"
	"strings"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"

	"sleeptrend/domain/health"
)

// BuildMarkdown renders an archived analysis run as a markdown report.
func BuildMarkdown(run *health.AnalysisRun) string {
	var b strings.Builder

	title := run.Label
	if title == "" {
		title = string(run.Kind) + " analysis"
	}
	fmt.Fprintf(&b, "# %s\n\n", title)
	fmt.Fprintf(&b, "- **Run ID:** %s\n", run.ID)
	fmt.Fprintf(&b, "- **Kind:** %s\n", run.Kind)
	fmt.Fprintf(&b, "- **Created:** %s\n\n", run.CreatedAt.Time().Format("2006-01-02 15:04 MST"))

	switch {
	case run.Correlation != nil:
		writeCorrelationSection(&b, run.Correlation)
	case run.Trend != nil:
		writeTrendSection(&b, run.Trend)
	default:
		b.WriteString("_No result payload recorded for this run._\n")
	}

	return b.String()
}

func writeCorrelationSection(b *strings.Builder, r *health.CorrelationResult) {
	b.WriteString("## Sleep vs Performance Correlation\n\n")

	if r.Basis == health.BasisInsufficientData {
		fmt.Fprintf(b, "Insufficient paired data (%d observations). No conclusion drawn.\n", r.SampleSize)
		return
	}

	b.WriteString("| Sleep Metric | r |\n|---|---|\n")
	fmt.Fprintf(b, "| duration | %.3f |\n", r.DurationCorrelation)
	fmt.Fprintf(b, "| quality | %.3f |\n", r.QualityCorrelation)
	fmt.Fprintf(b, "| deep_percent | %.3f |\n", r.DeepCorrelation)
	fmt.Fprintf(b, "| rem_percent | %.3f |\n\n", r.RemCorrelation)

	fmt.Fprintf(b, "Strongest relationship: **%s** (r=%.3f, %s).\n\n", r.StrongestMetric, r.StrongestR, r.StrengthLabel)
	fmt.Fprintf(b, "- p-value: %.3f\n", r.PValue)
	fmt.Fprintf(b, "- %.0f%% interval on r: [%.3f, %.3f]\n", r.IntervalLevel*100, r.ConfidenceLow, r.ConfidenceHigh)
	fmt.Fprintf(b, "- Effect size (Cohen's d): %.3f\n", r.EffectSize)
	fmt.Fprintf(b, "- Sample size: %d\n\n", r.SampleSize)

	if r.IsSignificant {
		b.WriteString("The relationship is **statistically significant**.\n")
	} else {
		b.WriteString("The relationship is **not statistically significant**.\n")
	}
}

func writeTrendSection(b *strings.Builder, r *health.TrendResult) {
	b.WriteString("## Performance Trend\n\n")

	if r.Basis == health.BasisInsufficientData {
		fmt.Fprintf(b, "%s\n", r.Interpretation)
		return
	}

	fmt.Fprintf(b, "%s\n\n", r.Interpretation)
	fmt.Fprintf(b, "- Slope: %.4f per day (CI [%.4f, %.4f])\n", r.Slope, r.ConfidenceLow, r.ConfidenceHigh)
	fmt.Fprintf(b, "- Intercept: %.4f\n", r.Intercept)
	fmt.Fprintf(b, "- R²: %.3f\n", r.RSquared)
	fmt.Fprintf(b, "- p-value: %.3f\n", r.PValue)
	fmt.Fprintf(b, "- Projected change: %+.2f over 30 days, %+.2f over 90 days\n", r.Projected30, r.Projected90)
	fmt.Fprintf(b, "- Points used: %d\n", r.DataPoints)
}

// RenderHTML converts a markdown report to a standalone HTML fragment.
func RenderHTML(md string) []byte {
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.NoEmptyLineBeforeBlock)
	doc := p.Parse([]byte(md))

	renderer := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags})
	return markdown.Render(doc, renderer)
}
