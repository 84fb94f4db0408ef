package postgres

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"sleeptrend/domain/core"
	"sleeptrend/domain/health"
	"sleeptrend/internal/errors"
	"sleeptrend/ports"
)

// RunRepositoryImpl implements ports.AnalysisRepository for PostgreSQL
type RunRepositoryImpl struct {
	db *sqlx.DB
}

// NewRunRepository creates a new PostgreSQL analysis-run repository
func NewRunRepository(db *sqlx.DB) ports.AnalysisRepository {
	return &RunRepositoryImpl{db: db}
}

// Connect opens the archive database and ensures the schema exists.
func Connect(url string) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", url)
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect to analysis archive")
	}
	if err := migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

func migrate(db *sqlx.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS analysis_runs (
			id TEXT PRIMARY KEY,
			kind TEXT NOT NULL,
			label TEXT NOT NULL DEFAULT '',
			payload JSONB NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`)
	return errors.Wrap(err, "failed to migrate analysis archive schema")
}

// runRow is the storage shape of an analysis run
type runRow struct {
	ID        string          `db:"id"`
	Kind      string          `db:"kind"`
	Label     string          `db:"label"`
	Payload   json.RawMessage `db:"payload"`
	CreatedAt time.Time       `db:"created_at"`
}

// SaveRun archives a completed analysis run
func (r *RunRepositoryImpl) SaveRun(ctx context.Context, run *health.AnalysisRun) error {
	payload, err := marshalPayload(run)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO analysis_runs (id, kind, label, payload, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, run.ID.String(), string(run.Kind), run.Label, payload, run.CreatedAt.Time())

	return errors.Wrap(err, "failed to save analysis run")
}

// GetRun retrieves a run by its identifier
func (r *RunRepositoryImpl) GetRun(ctx context.Context, id core.AnalysisID) (*health.AnalysisRun, error) {
	var row runRow
	err := r.db.GetContext(ctx, &row, `
		SELECT id, kind, label, payload, created_at
		FROM analysis_runs
		WHERE id = $1
	`, id.String())
	if err != nil {
		return nil, errors.NotFound("analysis run")
	}

	return unmarshalRow(row)
}

// ListRuns returns the most recent runs, newest first
func (r *RunRepositoryImpl) ListRuns(ctx context.Context, limit int) ([]*health.AnalysisRun, error) {
	if limit <= 0 {
		limit = 20
	}

	var rows []runRow
	err := r.db.SelectContext(ctx, &rows, `
		SELECT id, kind, label, payload, created_at
		FROM analysis_runs
		ORDER BY created_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list analysis runs")
	}

	runs := make([]*health.AnalysisRun, 0, len(rows))
	for _, row := range rows {
		run, err := unmarshalRow(row)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, nil
}

func marshalPayload(run *health.AnalysisRun) ([]byte, error) {
	var payload interface{}
	switch run.Kind {
	case health.AnalysisCorrelation:
		payload = run.Correlation
	case health.AnalysisTrend:
		payload = run.Trend
	default:
		return nil, errors.InvalidInput("unknown analysis kind: " + string(run.Kind))
	}

	data, err := json.Marshal(payload)
	return data, errors.Wrap(err, "failed to encode analysis payload")
}

func unmarshalRow(row runRow) (*health.AnalysisRun, error) {
	run := &health.AnalysisRun{
		ID:        core.AnalysisID(row.ID),
		Kind:      health.AnalysisKind(row.Kind),
		Label:     row.Label,
		CreatedAt: core.NewTimestamp(row.CreatedAt),
	}

	switch run.Kind {
	case health.AnalysisCorrelation:
		var result health.CorrelationResult
		if err := json.Unmarshal(row.Payload, &result); err != nil {
			return nil, errors.Wrap(err, "failed to decode correlation payload")
		}
		run.Correlation = &result
	case health.AnalysisTrend:
		var result health.TrendResult
		if err := json.Unmarshal(row.Payload, &result); err != nil {
			return nil, errors.Wrap(err, "failed to decode trend payload")
		}
		run.Trend = &result
	default:
		return nil, errors.InvalidInput("unknown analysis kind: " + string(run.Kind))
	}

	return run, nil
}
