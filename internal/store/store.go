// Package store handles SQLite persistence.
package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/verte-zerg/primespiral/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// timeLayout is fixed-width so created_at sorts chronologically as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// Store wraps SQLite access for analysis runs.
type Store struct {
	db     *sqlx.DB
	logger *zap.Logger
}

type runRow struct {
	ID                 string  `db:"id"`
	CreatedAt          string  `db:"created_at"`
	AngleDelta         float64 `db:"angle_delta"`
	PredictionCount    int     `db:"prediction_count"`
	Policy             string  `db:"policy"`
	AngleMode          string  `db:"angle_mode"`
	MinClusterSize     int     `db:"min_cluster_size"`
	PrimeCount         int     `db:"prime_count"`
	ArmCount           int     `db:"arm_count"`
	StepsPerRotation   int     `db:"steps_per_rotation"`
	TotalPredictions   int     `db:"total_predictions"`
	CorrectPredictions int     `db:"correct_predictions"`
	AverageDistance    float64 `db:"average_distance"`
	AccuracyPercent    float64 `db:"accuracy_percent"`
}

// Open opens or creates the SQLite database and applies migrations.
// A nil logger disables logging.
func Open(path string, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sqlx.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	store := &Store{db: db, logger: logger}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	logger.Debug("store opened", zap.String("path", path))
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			created_at TEXT NOT NULL,
			angle_delta REAL NOT NULL,
			prediction_count INTEGER NOT NULL,
			policy TEXT NOT NULL,
			angle_mode TEXT NOT NULL,
			min_cluster_size INTEGER NOT NULL,
			prime_count INTEGER NOT NULL,
			arm_count INTEGER NOT NULL,
			steps_per_rotation INTEGER NOT NULL,
			total_predictions INTEGER NOT NULL,
			correct_predictions INTEGER NOT NULL,
			average_distance REAL NOT NULL,
			accuracy_percent REAL NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_runs_created_at ON runs(created_at);`,
		`CREATE INDEX IF NOT EXISTS idx_runs_policy ON runs(policy);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// InsertRun stores an analysis run. A missing ID or timestamp is filled in;
// the stored ID is returned.
func (s *Store) InsertRun(ctx context.Context, run model.RunRecord) (string, error) {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now()
	}
	row := runRow{
		ID:                 run.ID,
		CreatedAt:          run.CreatedAt.UTC().Format(timeLayout),
		AngleDelta:         run.Params.AngleDelta,
		PredictionCount:    run.Params.PredictionCount,
		Policy:             string(run.Params.Policy),
		AngleMode:          string(run.Params.AngleMode),
		MinClusterSize:     run.Params.MinClusterSize,
		PrimeCount:         run.PrimeCount,
		ArmCount:           run.ArmCount,
		StepsPerRotation:   run.StepsPerRotation,
		TotalPredictions:   run.Report.TotalPredictions,
		CorrectPredictions: run.Report.CorrectPredictions,
		AverageDistance:    run.Report.AverageDistance,
		AccuracyPercent:    run.Report.AccuracyPercent,
	}
	_, err := s.db.NamedExecContext(ctx,
		`INSERT INTO runs (id, created_at, angle_delta, prediction_count, policy, angle_mode, min_cluster_size, prime_count, arm_count, steps_per_rotation, total_predictions, correct_predictions, average_distance, accuracy_percent)
		 VALUES (:id, :created_at, :angle_delta, :prediction_count, :policy, :angle_mode, :min_cluster_size, :prime_count, :arm_count, :steps_per_rotation, :total_predictions, :correct_predictions, :average_distance, :accuracy_percent)`,
		row)
	if err != nil {
		return "", err
	}
	s.logger.Debug("run stored", zap.String("id", run.ID), zap.Float64("accuracy", run.Report.AccuracyPercent))
	return run.ID, nil
}

// ListRuns returns stored runs in ascending time order. Last keeps only the
// most recent runs.
func (s *Store) ListRuns(ctx context.Context, filter model.HistoryFilter) ([]model.RunRecord, error) {
	clauses := []string{"1=1"}
	args := []any{}
	if filter.Policy != "" {
		clauses = append(clauses, "policy = ?")
		args = append(args, filter.Policy)
	}
	query := fmt.Sprintf(`SELECT * FROM runs
		WHERE %s
		ORDER BY created_at DESC, rowid DESC`, strings.Join(clauses, " AND "))
	if filter.Last > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Last)
	}

	var rows []runRow
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, err
	}
	runs := make([]model.RunRecord, 0, len(rows))
	for i := len(rows) - 1; i >= 0; i-- {
		run, err := rows[i].record()
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, nil
}

func (r runRow) record() (model.RunRecord, error) {
	createdAt, err := time.Parse(timeLayout, r.CreatedAt)
	if err != nil {
		return model.RunRecord{}, err
	}
	return model.RunRecord{
		ID:        r.ID,
		CreatedAt: createdAt,
		Params: model.Params{
			AngleDelta:      r.AngleDelta,
			PredictionCount: r.PredictionCount,
			Policy:          model.Policy(r.Policy),
			AngleMode:       model.AngleMode(r.AngleMode),
			MinClusterSize:  r.MinClusterSize,
		},
		PrimeCount:       r.PrimeCount,
		ArmCount:         r.ArmCount,
		StepsPerRotation: r.StepsPerRotation,
		Report: model.AccuracyReport{
			TotalPredictions:   r.TotalPredictions,
			CorrectPredictions: r.CorrectPredictions,
			AverageDistance:    r.AverageDistance,
			AccuracyPercent:    r.AccuracyPercent,
		},
	}, nil
}
