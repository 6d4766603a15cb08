//go:build sqlite

package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	"murphy/internal/model"

	_ "modernc.org/sqlite"
)

type SQLiteStore struct {
	path string

	mu sync.RWMutex
	db *sql.DB
}

func NewSQLiteStore(path string) *SQLiteStore {
	return &SQLiteStore{path: path}
}

func newSQLiteStore(path string) (Store, error) {
	return NewSQLiteStore(path), nil
}

func (s *SQLiteStore) Init(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.path == "" {
		return errors.New("sqlite path is required")
	}
	if s.db != nil {
		return nil
	}

	db, err := sql.Open("sqlite", s.path)
	if err != nil {
		return err
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return err
	}

	if err := createTables(ctx, db); err != nil {
		_ = db.Close()
		return err
	}

	s.db = db
	return nil
}

func (s *SQLiteStore) SaveExperiment(ctx context.Context, experiment model.Experiment) error {
	db, err := s.getDB()
	if err != nil {
		return err
	}

	payload, err := EncodeExperiment(experiment)
	if err != nil {
		return err
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO experiments (id, schema_version, codec_version, payload)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			schema_version = excluded.schema_version,
			codec_version = excluded.codec_version,
			payload = excluded.payload
	`, experiment.ID, experiment.SchemaVersion, experiment.CodecVersion, payload)
	return err
}

func (s *SQLiteStore) GetExperiment(ctx context.Context, id string) (model.Experiment, bool, error) {
	db, err := s.getDB()
	if err != nil {
		return model.Experiment{}, false, err
	}

	var payload []byte
	err = db.QueryRowContext(ctx, `SELECT payload FROM experiments WHERE id = ?`, id).Scan(&payload)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Experiment{}, false, nil
		}
		return model.Experiment{}, false, err
	}

	experiment, err := DecodeExperiment(payload)
	if err != nil {
		return model.Experiment{}, false, fmt.Errorf("decode experiment %s: %w", id, err)
	}
	return experiment, true, nil
}

func (s *SQLiteStore) ListExperimentIDs(ctx context.Context) ([]string, error) {
	db, err := s.getDB()
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, `SELECT id FROM experiments ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (s *SQLiteStore) SaveCurve(ctx context.Context, experimentID string, curve []model.StepStat) error {
	db, err := s.getDB()
	if err != nil {
		return err
	}

	payload, err := EncodeCurve(curve)
	if err != nil {
		return err
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO curves (experiment_id, payload)
		VALUES (?, ?)
		ON CONFLICT(experiment_id) DO UPDATE SET
			payload = excluded.payload
	`, experimentID, payload)
	return err
}

func (s *SQLiteStore) GetCurve(ctx context.Context, experimentID string) ([]model.StepStat, bool, error) {
	db, err := s.getDB()
	if err != nil {
		return nil, false, err
	}

	var payload []byte
	err = db.QueryRowContext(ctx, `SELECT payload FROM curves WHERE experiment_id = ?`, experimentID).Scan(&payload)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, err
	}

	curve, err := DecodeCurve(payload)
	if err != nil {
		return nil, false, fmt.Errorf("decode curve %s: %w", experimentID, err)
	}
	return curve, true, nil
}

func (s *SQLiteStore) SaveRunSummaries(ctx context.Context, experimentID string, summaries []model.RunSummary) error {
	db, err := s.getDB()
	if err != nil {
		return err
	}

	payload, err := EncodeRunSummaries(summaries)
	if err != nil {
		return err
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO run_summaries (experiment_id, payload)
		VALUES (?, ?)
		ON CONFLICT(experiment_id) DO UPDATE SET
			payload = excluded.payload
	`, experimentID, payload)
	return err
}

func (s *SQLiteStore) GetRunSummaries(ctx context.Context, experimentID string) ([]model.RunSummary, bool, error) {
	db, err := s.getDB()
	if err != nil {
		return nil, false, err
	}

	var payload []byte
	err = db.QueryRowContext(ctx, `SELECT payload FROM run_summaries WHERE experiment_id = ?`, experimentID).Scan(&payload)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, err
	}

	summaries, err := DecodeRunSummaries(payload)
	if err != nil {
		return nil, false, fmt.Errorf("decode run summaries %s: %w", experimentID, err)
	}
	return summaries, true, nil
}

func (s *SQLiteStore) SaveEnvSummary(ctx context.Context, summary model.EnvSummary) error {
	db, err := s.getDB()
	if err != nil {
		return err
	}

	payload, err := EncodeEnvSummary(summary)
	if err != nil {
		return err
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO env_summaries (env, schema_version, codec_version, payload)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(env) DO UPDATE SET
			schema_version = excluded.schema_version,
			codec_version = excluded.codec_version,
			payload = excluded.payload
	`, summary.Env, summary.SchemaVersion, summary.CodecVersion, payload)
	return err
}

func (s *SQLiteStore) GetEnvSummary(ctx context.Context, env string) (model.EnvSummary, bool, error) {
	db, err := s.getDB()
	if err != nil {
		return model.EnvSummary{}, false, err
	}

	var payload []byte
	err = db.QueryRowContext(ctx, `SELECT payload FROM env_summaries WHERE env = ?`, env).Scan(&payload)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.EnvSummary{}, false, nil
		}
		return model.EnvSummary{}, false, err
	}

	summary, err := DecodeEnvSummary(payload)
	if err != nil {
		return model.EnvSummary{}, false, fmt.Errorf("decode env summary %s: %w", env, err)
	}
	return summary, true, nil
}

func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

func (s *SQLiteStore) getDB() (*sql.DB, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.db == nil {
		return nil, errors.New("store is not initialized")
	}
	return s.db, nil
}

func createTables(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS experiments (
			id TEXT PRIMARY KEY,
			schema_version INTEGER NOT NULL,
			codec_version INTEGER NOT NULL,
			payload BLOB NOT NULL
		);
		CREATE TABLE IF NOT EXISTS curves (
			experiment_id TEXT PRIMARY KEY,
			payload BLOB NOT NULL
		);
		CREATE TABLE IF NOT EXISTS run_summaries (
			experiment_id TEXT PRIMARY KEY,
			payload BLOB NOT NULL
		);
		CREATE TABLE IF NOT EXISTS env_summaries (
			env TEXT PRIMARY KEY,
			schema_version INTEGER NOT NULL,
			codec_version INTEGER NOT NULL,
			payload BLOB NOT NULL
		);
	`)
	return err
}
