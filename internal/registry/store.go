// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package registry persists evaluated batches to a SQLite database: the
// run summary, every result with its trace, the rejection report and the
// identifier sources that later runs use to report collisions.
package registry

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/governance-engine/internal/export"
	"github.com/pdiddy/governance-engine/internal/identity"
	"github.com/pdiddy/governance-engine/pkg/types"
)

// timeLayout keeps fractional seconds fixed-width so stored timestamps
// sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// ErrRunNotFound is returned when a run ID is not in the registry.
var ErrRunNotFound = errors.New("run not found")

// Run summarizes one persisted batch.
type Run struct {
	ID        string              `json:"id" yaml:"id"`
	StartedAt time.Time           `json:"started_at" yaml:"started_at"`
	Input     string              `json:"input" yaml:"input"`
	Config    types.EngineConfig  `json:"config" yaml:"config"`
	Counts    types.ChannelCounts `json:"counts" yaml:"counts"`
	Rejected  int                 `json:"rejected" yaml:"rejected"`
}

// Scored returns the number of scored records in the run.
func (r Run) Scored() int {
	return r.Counts.Total()
}

// Store manages the registry database.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
	now    func() time.Time
}

// Open opens or creates the registry database at path and creates the
// schema if it does not exist. A nil logger uses slog.Default.
func Open(path string, logger *slog.Logger) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating registry directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}

	s := &Store{db: db, logger: logger, now: time.Now}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			started_at TEXT NOT NULL,
			input TEXT,
			config TEXT,
			green INTEGER NOT NULL DEFAULT 0,
			grey INTEGER NOT NULL DEFAULT 0,
			amber INTEGER NOT NULL DEFAULT 0,
			red INTEGER NOT NULL DEFAULT 0,
			rejected INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE TABLE IF NOT EXISTS results (
			run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
			row INTEGER NOT NULL,
			identifier TEXT NOT NULL,
			score REAL NOT NULL,
			channel TEXT NOT NULL,
			driver TEXT NOT NULL,
			action TEXT NOT NULL,
			input TEXT,
			outcomes TEXT,
			collisions TEXT,
			trace TEXT,
			PRIMARY KEY (run_id, row)
		)`,
		`CREATE TABLE IF NOT EXISTS rejections (
			run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
			row INTEGER NOT NULL,
			field TEXT NOT NULL,
			value TEXT,
			reason TEXT NOT NULL,
			PRIMARY KEY (run_id, row)
		)`,
		`CREATE TABLE IF NOT EXISTS identifiers (
			identifier TEXT NOT NULL,
			fingerprint TEXT NOT NULL,
			run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
			row INTEGER NOT NULL,
			khasra TEXT,
			owner TEXT,
			PRIMARY KEY (identifier, run_id, row)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_results_channel ON results(channel)`,
		`CREATE INDEX IF NOT EXISTS idx_identifiers_identifier ON identifiers(identifier)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// SaveRun persists a batch in one transaction and returns its Run with a
// newly assigned ID.
func (s *Store) SaveRun(ctx context.Context, input string, cfg types.EngineConfig, results []types.GovernanceResult, rejected []types.Rejection) (Run, error) {
	run := Run{
		ID:        uuid.NewString(),
		StartedAt: s.now().UTC(),
		Input:     input,
		Config:    cfg,
		Counts:    types.ChannelCounts{},
		Rejected:  len(rejected),
	}
	for _, r := range results {
		run.Counts[r.Channel]++
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Run{}, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	cfgJSON, err := json.Marshal(cfg)
	if err != nil {
		return Run{}, fmt.Errorf("encoding config: %w", err)
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (id, started_at, input, config, green, grey, amber, red, rejected)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.StartedAt.Format(timeLayout), input, string(cfgJSON),
		run.Counts[types.ChannelGreen], run.Counts[types.ChannelGrey],
		run.Counts[types.ChannelAmber], run.Counts[types.ChannelRed], run.Rejected,
	)
	if err != nil {
		return Run{}, fmt.Errorf("inserting run: %w", err)
	}

	resStmt, err := tx.PrepareContext(ctx,
		`INSERT INTO results (run_id, row, identifier, score, channel, driver, action, input, outcomes, collisions, trace)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return Run{}, fmt.Errorf("preparing result insert: %w", err)
	}
	defer resStmt.Close()

	idStmt, err := tx.PrepareContext(ctx,
		`INSERT OR IGNORE INTO identifiers (identifier, fingerprint, run_id, row, khasra, owner)
		 VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return Run{}, fmt.Errorf("preparing identifier insert: %w", err)
	}
	defer idStmt.Close()

	for _, r := range results {
		cols, err := encodeColumns(r.Record.Raw, r.Outcomes, r.Collisions, r.Trace)
		if err != nil {
			return Run{}, fmt.Errorf("encoding result row %d: %w", r.Record.Row, err)
		}
		args := append([]any{run.ID, r.Record.Row, r.Identifier, r.Score, string(r.Channel), r.Driver.String(), r.Action}, cols...)
		if _, err := resStmt.ExecContext(ctx, args...); err != nil {
			return Run{}, fmt.Errorf("inserting result row %d: %w", r.Record.Row, err)
		}

		src := identity.SourceFor(r.Identifier, r.Record)
		if _, err := idStmt.ExecContext(ctx, src.Identifier, src.Fingerprint, run.ID, src.Row, src.Khasra, src.Owner); err != nil {
			return Run{}, fmt.Errorf("inserting identifier for row %d: %w", r.Record.Row, err)
		}
	}

	for _, rej := range rejected {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO rejections (run_id, row, field, value, reason) VALUES (?, ?, ?, ?, ?)`,
			run.ID, rej.Row, rej.Field, rej.Value, rej.Reason,
		)
		if err != nil {
			return Run{}, fmt.Errorf("inserting rejection row %d: %w", rej.Row, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return Run{}, fmt.Errorf("committing run: %w", err)
	}
	s.logger.Info("run saved", "run_id", run.ID, "scored", run.Scored(), "rejected", run.Rejected)
	return run, nil
}

// ListRuns returns every run, most recent first.
func (s *Store) ListRuns(ctx context.Context) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, started_at, input, config, green, grey, amber, red, rejected
		 FROM runs ORDER BY started_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// GetRun returns the run with the given ID. The ID "latest" selects the
// most recent run.
func (s *Store) GetRun(ctx context.Context, id string) (Run, error) {
	query := `SELECT id, started_at, input, config, green, grey, amber, red, rejected FROM runs WHERE id = ?`
	args := []any{id}
	if id == "latest" {
		query = `SELECT id, started_at, input, config, green, grey, amber, red, rejected FROM runs ORDER BY started_at DESC, id LIMIT 1`
		args = nil
	}
	run, err := scanRun(s.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	return run, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(sc scanner) (Run, error) {
	var (
		run                     Run
		startedAt, cfgJSON      string
		green, grey, amber, red int
	)
	err := sc.Scan(&run.ID, &startedAt, &run.Input, &cfgJSON, &green, &grey, &amber, &red, &run.Rejected)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Run{}, err
		}
		return Run{}, fmt.Errorf("scanning run: %w", err)
	}
	if run.StartedAt, err = time.Parse(timeLayout, startedAt); err != nil {
		return Run{}, fmt.Errorf("decoding run %s start time: %w", run.ID, err)
	}
	if err := json.Unmarshal([]byte(cfgJSON), &run.Config); err != nil {
		return Run{}, fmt.Errorf("decoding run %s config: %w", run.ID, err)
	}
	run.Counts = types.ChannelCounts{
		types.ChannelGreen: green,
		types.ChannelGrey:  grey,
		types.ChannelAmber: amber,
		types.ChannelRed:   red,
	}
	return run, nil
}

// Results returns the stored results of a run in row order.
func (s *Store) Results(ctx context.Context, runID string) ([]export.Row, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT row, identifier, score, channel, driver, action, input, outcomes, collisions, trace
		 FROM results WHERE run_id = ? ORDER BY row`, runID)
	if err != nil {
		return nil, fmt.Errorf("querying results: %w", err)
	}
	defer rows.Close()

	var out []export.Row
	for rows.Next() {
		var (
			r                                   export.Row
			channel                             string
			inputJSON, outJSON, colJSON, trJSON string
		)
		if err := rows.Scan(&r.Row, &r.Identifier, &r.Score, &channel, &r.Driver, &r.Action,
			&inputJSON, &outJSON, &colJSON, &trJSON); err != nil {
			return nil, fmt.Errorf("scanning result: %w", err)
		}
		r.Channel = types.Channel(channel)
		columns := []struct {
			name, data string
			dst        any
		}{
			{"input", inputJSON, &r.Input},
			{"outcomes", outJSON, &r.Outcomes},
			{"collisions", colJSON, &r.Collisions},
			{"trace", trJSON, &r.Trace},
		}
		for _, c := range columns {
			if err := json.Unmarshal([]byte(c.data), c.dst); err != nil {
				return nil, fmt.Errorf("decoding result row %d %s: %w", r.Row, c.name, err)
			}
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// encodeColumns marshals each value to a JSON column string.
func encodeColumns(values ...any) ([]any, error) {
	cols := make([]any, len(values))
	for i, v := range values {
		b, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		cols[i] = string(b)
	}
	return cols, nil
}

// Rejections returns the rejection report of a run in row order.
func (s *Store) Rejections(ctx context.Context, runID string) ([]types.Rejection, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT row, field, value, reason FROM rejections WHERE run_id = ? ORDER BY row`, runID)
	if err != nil {
		return nil, fmt.Errorf("querying rejections: %w", err)
	}
	defer rows.Close()

	var out []types.Rejection
	for rows.Next() {
		var r types.Rejection
		if err := rows.Scan(&r.Row, &r.Field, &r.Value, &r.Reason); err != nil {
			return nil, fmt.Errorf("scanning rejection: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Sources returns every persisted identifier source, for seeding the
// collision registry of a new run.
func (s *Store) Sources(ctx context.Context) ([]identity.Source, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT identifier, fingerprint, run_id, row, khasra, owner
		 FROM identifiers ORDER BY identifier, run_id, row`)
	if err != nil {
		return nil, fmt.Errorf("querying identifiers: %w", err)
	}
	defer rows.Close()

	var out []identity.Source
	for rows.Next() {
		var src identity.Source
		if err := rows.Scan(&src.Identifier, &src.Fingerprint, &src.RunID, &src.Row, &src.Khasra, &src.Owner); err != nil {
			return nil, fmt.Errorf("scanning identifier: %w", err)
		}
		out = append(out, src)
	}
	return out, rows.Err()
}
