// Package store persists batch runs, per-key outcomes and interval metrics
// in SQLite.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/banshee-data/eda.report/internal/batch"
	"github.com/banshee-data/eda.report/internal/eda"
)

// ErrRunNotFound is returned when a run id is unknown.
var ErrRunNotFound = errors.New("batch run not found")

const timeLayout = time.RFC3339Nano

// Store wraps the SQLite handle.
type Store struct {
	db *sql.DB
}

// BatchRun describes one invocation of the batch driver.
type BatchRun struct {
	ID         string
	StartedAt  time.Time
	FinishedAt time.Time
	// ConfigJSON is the effective configuration, stored verbatim.
	ConfigJSON string
	Summary    batch.Summary
}

// Open opens (creating if needed) the database at path and migrates it to
// the latest schema.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	// A single connection keeps the foreign key pragma in effect.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(`PRAGMA foreign_keys = ON; PRAGMA busy_timeout = 5000;`); err != nil {
		db.Close()
		return nil, fmt.Errorf("set pragmas: %w", err)
	}

	s := &Store{db: db}
	if err := s.MigrateUp(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// RecordBatch stores run, one row per outcome and one metrics row per
// succeeded outcome in a single transaction. An empty run.ID is replaced
// with a new UUID; the id used is returned.
func (s *Store) RecordBatch(run BatchRun, outcomes []batch.Outcome) (string, error) {
	if run.ID == "" {
		run.ID = uuid.New().String()
	}
	if run.ConfigJSON == "" {
		run.ConfigJSON = "{}"
	}
	if run.Summary.Total == 0 {
		run.Summary = batch.Summarize(outcomes)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return "", fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO batch_runs (run_id, started_at, finished_at, config_json, total, succeeded, missing, failed)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID,
		run.StartedAt.UTC().Format(timeLayout),
		run.FinishedAt.UTC().Format(timeLayout),
		run.ConfigJSON,
		run.Summary.Total, run.Summary.Succeeded, run.Summary.Missing, run.Summary.Failed,
	)
	if err != nil {
		return "", fmt.Errorf("insert batch run: %w", err)
	}

	outcomeStmt, err := tx.Prepare(`
		INSERT INTO run_outcomes (run_id, participant, task, session, status, reason, input_path, figure_path,
			samples, scr_count, elapsed_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return "", fmt.Errorf("prepare outcome insert: %w", err)
	}
	defer outcomeStmt.Close()

	metricStmt, err := tx.Prepare(`
		INSERT INTO interval_metrics (run_id, participant, condition, scr_peaks_n, scr_peaks_amplitude_mean,
			eda_tonic_sd, eda_sympathetic, eda_sympathetic_n, eda_autocorrelation)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return "", fmt.Errorf("prepare metrics insert: %w", err)
	}
	defer metricStmt.Close()

	for _, o := range outcomes {
		if _, err := outcomeStmt.Exec(run.ID, o.Key.Participant, o.Key.Task, o.Key.Session,
			string(o.Status), o.Reason(), o.InputPath, o.FigurePath, o.Samples, o.SCRCount,
			o.Elapsed.Milliseconds()); err != nil {
			return "", fmt.Errorf("insert outcome %s: %w", o.Key, err)
		}
		if o.Status != batch.StatusSucceeded || o.Record == nil {
			continue
		}
		m := o.Record.Metrics
		if _, err := metricStmt.Exec(run.ID, o.Record.Participant, o.Record.Condition, m.PeaksN,
			nullable(m.PeaksAmplitudeMean), nullable(m.TonicSD), nullable(m.Sympathetic),
			nullable(m.SympatheticN), nullable(m.Autocorrelation)); err != nil {
			return "", fmt.Errorf("insert metrics %s: %w", o.Key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit: %w", err)
	}
	return run.ID, nil
}

// Run returns the stored run with the given id.
func (s *Store) Run(id string) (*BatchRun, error) {
	var (
		run               BatchRun
		started, finished string
	)
	err := s.db.QueryRow(`
		SELECT run_id, started_at, finished_at, config_json, total, succeeded, missing, failed
		FROM batch_runs WHERE run_id = ?`, id).Scan(
		&run.ID, &started, &finished, &run.ConfigJSON,
		&run.Summary.Total, &run.Summary.Succeeded, &run.Summary.Missing, &run.Summary.Failed,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("query batch run: %w", err)
	}
	if run.StartedAt, err = time.Parse(timeLayout, started); err != nil {
		return nil, fmt.Errorf("parse started_at: %w", err)
	}
	if run.FinishedAt, err = time.Parse(timeLayout, finished); err != nil {
		return nil, fmt.Errorf("parse finished_at: %w", err)
	}
	return &run, nil
}

// RunIDs returns the ids of all stored runs, oldest first.
func (s *Store) RunIDs() ([]string, error) {
	rows, err := s.db.Query(`SELECT run_id FROM batch_runs ORDER BY started_at, rowid`)
	if err != nil {
		return nil, fmt.Errorf("query batch runs: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan batch run: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// OutcomeRow is a stored per-key outcome.
type OutcomeRow struct {
	Key        batch.RunKey
	Status     batch.Status
	Reason     string
	InputPath  string
	FigurePath string
	Samples    int
	SCRCount   int
	Elapsed    time.Duration
}

// Outcomes returns the outcomes of a run in insertion order.
func (s *Store) Outcomes(runID string) ([]OutcomeRow, error) {
	rows, err := s.db.Query(`
		SELECT participant, task, session, status, reason, input_path, figure_path, samples, scr_count, elapsed_ms
		FROM run_outcomes WHERE run_id = ? ORDER BY outcome_id`, runID)
	if err != nil {
		return nil, fmt.Errorf("query outcomes: %w", err)
	}
	defer rows.Close()

	var out []OutcomeRow
	for rows.Next() {
		var (
			r         OutcomeRow
			status    string
			elapsedMS int64
		)
		if err := rows.Scan(&r.Key.Participant, &r.Key.Task, &r.Key.Session, &status, &r.Reason,
			&r.InputPath, &r.FigurePath, &r.Samples, &r.SCRCount, &elapsedMS); err != nil {
			return nil, fmt.Errorf("scan outcome: %w", err)
		}
		r.Status = batch.Status(status)
		r.Elapsed = time.Duration(elapsedMS) * time.Millisecond
		out = append(out, r)
	}
	return out, rows.Err()
}

// Metrics returns the metrics records of a run in insertion order. NULL
// metrics are returned as NaN.
func (s *Store) Metrics(runID string) ([]batch.Record, error) {
	rows, err := s.db.Query(`
		SELECT participant, condition, scr_peaks_n, scr_peaks_amplitude_mean,
			eda_tonic_sd, eda_sympathetic, eda_sympathetic_n, eda_autocorrelation
		FROM interval_metrics WHERE run_id = ? ORDER BY metric_id`, runID)
	if err != nil {
		return nil, fmt.Errorf("query metrics: %w", err)
	}
	defer rows.Close()

	var out []batch.Record
	for rows.Next() {
		var (
			r                              batch.Record
			amp, sd, symp, sympN, autocorr sql.NullFloat64
		)
		if err := rows.Scan(&r.Participant, &r.Condition, &r.Metrics.PeaksN,
			&amp, &sd, &symp, &sympN, &autocorr); err != nil {
			return nil, fmt.Errorf("scan metrics: %w", err)
		}
		r.Metrics = eda.IntervalMetrics{
			PeaksN:             r.Metrics.PeaksN,
			PeaksAmplitudeMean: fromNull(amp),
			TonicSD:            fromNull(sd),
			Sympathetic:        fromNull(symp),
			SympatheticN:       fromNull(sympN),
			Autocorrelation:    fromNull(autocorr),
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func nullable(v float64) sql.NullFloat64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: v, Valid: true}
}

func fromNull(v sql.NullFloat64) float64 {
	if !v.Valid {
		return math.NaN()
	}
	return v.Float64
}
