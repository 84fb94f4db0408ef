// Package excel loads dated sample series from spreadsheet and CSV exports.
// Sleep sheets carry date, total_minutes, quality_score, deep_percent and
// rem_percent columns; performance sheets carry date and score.
package excel

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"sleeptrend/domain/core"
	"sleeptrend/domain/health"
	"sleeptrend/internal/errors"
	"sleeptrend/ports"
)

// SampleReader reads the sleep and performance series from two files.
// It implements ports.SampleSource.
type SampleReader struct {
	sleepPath       string
	performancePath string
}

// NewSampleReader creates a reader over the two export files. Each file may
// independently be .xlsx or .csv, decided by extension.
func NewSampleReader(sleepPath, performancePath string) *SampleReader {
	return &SampleReader{sleepPath: sleepPath, performancePath: performancePath}
}

var _ ports.SampleSource = (*SampleReader)(nil)

// SleepSamples reads the sleep series.
func (r *SampleReader) SleepSamples() ([]health.SleepSample, error) {
	rows, err := readRows(r.sleepPath)
	if err != nil {
		return nil, err
	}

	samples := make([]health.SleepSample, 0, len(rows))
	for i, row := range rows {
		if len(row) < 5 {
			return nil, errors.IngestError("sleep row " + strconv.Itoa(i+2) + " has fewer than 5 columns")
		}

		date, err := core.ParseDate(strings.TrimSpace(row[0]))
		if err != nil {
			return nil, errors.Wrapf(err, "sleep row %d", i+2)
		}

		values := make([]float64, 4)
		for j := 0; j < 4; j++ {
			v, err := strconv.ParseFloat(strings.TrimSpace(row[j+1]), 64)
			if err != nil {
				return nil, errors.Wrapf(err, "sleep row %d column %d", i+2, j+2)
			}
			values[j] = v
		}

		samples = append(samples, health.SleepSample{
			Date:         date,
			TotalMinutes: values[0],
			QualityScore: values[1],
			DeepPercent:  values[2],
			RemPercent:   values[3],
		})
	}

	return samples, nil
}

// PerformanceSamples reads the performance series.
func (r *SampleReader) PerformanceSamples() ([]health.PerformanceSample, error) {
	rows, err := readRows(r.performancePath)
	if err != nil {
		return nil, err
	}

	samples := make([]health.PerformanceSample, 0, len(rows))
	for i, row := range rows {
		if len(row) < 2 {
			return nil, errors.IngestError("performance row " + strconv.Itoa(i+2) + " has fewer than 2 columns")
		}

		date, err := core.ParseDate(strings.TrimSpace(row[0]))
		if err != nil {
			return nil, errors.Wrapf(err, "performance row %d", i+2)
		}

		score, err := strconv.ParseFloat(strings.TrimSpace(row[1]), 64)
		if err != nil {
			return nil, errors.Wrapf(err, "performance row %d score", i+2)
		}

		samples = append(samples, health.PerformanceSample{Date: date, Score: score})
	}

	return samples, nil
}

// readRows returns all data rows (header stripped) from an xlsx or csv file.
func readRows(path string) ([][]string, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, errors.NotFound("data file " + path)
	}

	var rows [][]string
	var err error

	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		rows, err = readCSV(path)
	default:
		rows, err = readExcel(path)
	}
	if err != nil {
		return nil, err
	}

	if len(rows) < 2 {
		return nil, errors.IngestError("file must have a header row and at least one data row: " + path)
	}
	return rows[1:], nil
}

func readExcel(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open Excel file")
	}
	defer f.Close()

	rows, err := f.GetRows("Sheet1")
	if err != nil {
		return nil, errors.Wrap(err, "failed to read Sheet1")
	}
	return rows, nil
}

func readCSV(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open CSV file")
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse CSV")
	}
	return rows, nil
}
