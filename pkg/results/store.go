package results

import (
	"database/sql"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/chembench/molprop/pkg/errors"
)

const schemaVersion = 1

// Store persists raw trial records in SQLite. One row per prediction, keyed
// by run, so summaries can always be rebuilt from the raw data.
type Store struct {
	db *sql.DB
}

// OpenStore opens (and if needed creates) the store at path.
func OpenStore(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, errors.Wrap(err, errors.ConfigurationError, "cannot create results directory")
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, errors.Wrap(err, errors.ConfigurationError, "cannot open results database")
	}

	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA temp_store=MEMORY",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, errors.Wrap(err, errors.ConfigurationError, "cannot configure database")
		}
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) migrate() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_info (version INTEGER NOT NULL);

		CREATE TABLE IF NOT EXISTS runs (
			id         TEXT PRIMARY KEY,
			started_at TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS trial_records (
			run_id         TEXT NOT NULL REFERENCES runs(id),
			task           TEXT NOT NULL,
			representation TEXT NOT NULL,
			method         TEXT NOT NULL,
			trial          INTEGER NOT NULL,
			smiles         TEXT NOT NULL,
			true_value     REAL NOT NULL,
			predicted      REAL NOT NULL,
			ok             INTEGER NOT NULL,
			fail_reason    TEXT NOT NULL DEFAULT '',
			PRIMARY KEY (run_id, task, representation, method, trial)
		);

		CREATE INDEX IF NOT EXISTS idx_trial_records_run
			ON trial_records (run_id, task, representation);
	`)
	if err != nil {
		return errors.Wrap(err, errors.ConfigurationError, "schema migration failed")
	}

	var version int
	row := s.db.QueryRow("SELECT version FROM schema_info LIMIT 1")
	switch err := row.Scan(&version); {
	case err == sql.ErrNoRows:
		_, err = s.db.Exec("INSERT INTO schema_info (version) VALUES (?)", schemaVersion)
		return err
	case err != nil:
		return errors.Wrap(err, errors.ConfigurationError, "cannot read schema version")
	case version != schemaVersion:
		return errors.WithFields(
			errors.New(errors.ConfigurationError, "unsupported schema version"),
			errors.Fields{"found": version, "supported": schemaVersion})
	}
	return nil
}

// BeginRun registers a new run and returns its id.
func (s *Store) BeginRun() (string, error) {
	id := uuid.New().String()
	_, err := s.db.Exec("INSERT INTO runs (id, started_at) VALUES (?, ?)",
		id, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return "", errors.Wrap(err, errors.Unknown, "cannot register run")
	}
	return id, nil
}

// LatestRun returns the most recently started run id.
func (s *Store) LatestRun() (string, error) {
	var id string
	err := s.db.QueryRow("SELECT id FROM runs ORDER BY started_at DESC, id DESC LIMIT 1").Scan(&id)
	if err == sql.ErrNoRows {
		return "", errors.New(errors.InvalidInput, "store has no runs")
	}
	if err != nil {
		return "", errors.Wrap(err, errors.Unknown, "cannot query runs")
	}
	return id, nil
}

// Insert writes a batch of records in one transaction.
func (s *Store) Insert(records []TrialRecord) error {
	tx, err := s.db.Begin()
	if err != nil {
		return errors.Wrap(err, errors.Unknown, "cannot begin transaction")
	}
	stmt, err := tx.Prepare(`
		INSERT OR REPLACE INTO trial_records
			(run_id, task, representation, method, trial, smiles, true_value, predicted, ok, fail_reason)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		tx.Rollback()
		return errors.Wrap(err, errors.Unknown, "cannot prepare insert")
	}
	defer stmt.Close()

	for _, r := range records {
		ok := 0
		if r.OK {
			ok = 1
		}
		if _, err := stmt.Exec(r.RunID, r.Task, r.Representation, r.Method, r.Trial,
			r.SMILES, r.TrueValue, r.Predicted, ok, r.FailReason); err != nil {
			tx.Rollback()
			return errors.Wrap(err, errors.Unknown, "insert failed")
		}
	}
	return tx.Commit()
}

// Records loads every record of a run in deterministic order.
func (s *Store) Records(runID string) ([]TrialRecord, error) {
	rows, err := s.db.Query(`
		SELECT run_id, task, representation, method, trial, smiles, true_value, predicted, ok, fail_reason
		FROM trial_records
		WHERE run_id = ?
		ORDER BY task, representation, method, trial`, runID)
	if err != nil {
		return nil, errors.Wrap(err, errors.Unknown, "query failed")
	}
	defer rows.Close()

	var out []TrialRecord
	for rows.Next() {
		var r TrialRecord
		var ok int
		if err := rows.Scan(&r.RunID, &r.Task, &r.Representation, &r.Method, &r.Trial,
			&r.SMILES, &r.TrueValue, &r.Predicted, &ok, &r.FailReason); err != nil {
			return nil, errors.Wrap(err, errors.Unknown, "scan failed")
		}
		r.OK = ok == 1
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *Store) Close() error { return s.db.Close() }
