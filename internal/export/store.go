// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package export

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/peakcube/internal/series"
	"github.com/pdiddy/peakcube/pkg/types"
)

const dbFile = "peakcube.db"

// Store persists series of every run in a SQLite database.
type Store struct {
	db *sql.DB
}

// NewStore opens or creates dir/peakcube.db and its schema.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	dbPath := filepath.Join(dir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db}
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
			spectra_dir TEXT,
			created_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS series (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id TEXT NOT NULL REFERENCES runs(id),
			name TEXT NOT NULL,
			origin TEXT NOT NULL,
			kind TEXT NOT NULL,
			axis TEXT NOT NULL,
			prev_dim TEXT NOT NULL,
			next_dim TEXT NOT NULL,
			UNIQUE(run_id, origin, name)
		)`,
		`CREATE TABLE IF NOT EXISTS peaks (
			series_id INTEGER NOT NULL REFERENCES series(rowid),
			item TEXT NOT NULL,
			position INTEGER NOT NULL,
			res_no TEXT NOT NULL,
			atom TEXT,
			one_letter TEXT,
			three_letter TEXT,
			assign_f1 TEXT,
			assign_f2 TEXT,
			status TEXT NOT NULL,
			position_f1 REAL,
			position_f2 REAL,
			height REAL,
			volume REAL,
			line_width_f1 REAL,
			line_width_f2 REAL,
			merit REAL,
			details TEXT,
			correction_f1 REAL,
			correction_f2 REAL,
			PRIMARY KEY (series_id, item, position)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_series_run_id ON series(run_id)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// NewRun records a run and returns its id.
func (s *Store) NewRun(ctx context.Context, spectraDir string) (string, error) {
	id := uuid.NewString()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, spectra_dir, created_at) VALUES (?, ?, ?)`,
		id, spectraDir, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return "", fmt.Errorf("inserting run: %w", err)
	}
	return id, nil
}

// SaveSeries writes every table of ser under runID. origin distinguishes
// directly built series ("series") from comparison re-slices such as
// "x/next_dim". Saving the same series twice replaces it.
func (s *Store) SaveSeries(ctx context.Context, runID, origin string, ser *series.Series) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var old int64
	err = tx.QueryRowContext(ctx,
		`SELECT rowid FROM series WHERE run_id = ? AND origin = ? AND name = ?`,
		runID, origin, ser.Name()).Scan(&old)
	switch {
	case err == nil:
		if _, err := tx.ExecContext(ctx, `DELETE FROM peaks WHERE series_id = ?`, old); err != nil {
			return fmt.Errorf("deleting peaks of %s: %w", ser.Name(), err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM series WHERE rowid = ?`, old); err != nil {
			return fmt.Errorf("deleting series %s: %w", ser.Name(), err)
		}
	case err != sql.ErrNoRows:
		return fmt.Errorf("looking up series %s: %w", ser.Name(), err)
	}

	res, err := tx.ExecContext(ctx,
		`INSERT INTO series (run_id, name, origin, kind, axis, prev_dim, next_dim)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		runID, ser.Name(), origin, ser.Kind.String(), ser.Axis.String(), ser.PrevLabel, ser.NextLabel)
	if err != nil {
		return fmt.Errorf("inserting series %s: %w", ser.Name(), err)
	}
	seriesID, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading series id: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO peaks (series_id, item, position, res_no, atom, one_letter,
			three_letter, assign_f1, assign_f2, status, position_f1, position_f2,
			height, volume, line_width_f1, line_width_f2, merit, details,
			correction_f1, correction_f2)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing peak insert: %w", err)
	}
	defer stmt.Close()

	for i, t := range ser.Tables {
		for j, r := range t.Rows {
			_, err := stmt.ExecContext(ctx, seriesID, ser.Items[i], j,
				r.ResNo, r.Atom, r.OneLetter, r.ThreeLetter, r.AssignF1, r.AssignF2,
				string(r.Status), r.PositionF1, r.PositionF2, r.Height, r.Volume,
				r.LineWidthF1, r.LineWidthF2, r.Merit, r.Details,
				r.CorrectionF1, r.CorrectionF2)
			if err != nil {
				return fmt.Errorf("inserting peak %s of %s/%s: %w", r.ResNo, ser.Name(), ser.Items[i], err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing series %s: %w", ser.Name(), err)
	}
	return nil
}

// Runs lists the recorded run ids, oldest first.
func (s *Store) Runs(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id FROM runs ORDER BY created_at, rowid`)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning run id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// SeriesNames lists the series saved under runID and origin, sorted.
func (s *Store) SeriesNames(ctx context.Context, runID, origin string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT name FROM series WHERE run_id = ? AND origin = ? ORDER BY name`, runID, origin)
	if err != nil {
		return nil, fmt.Errorf("querying series: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scanning series name: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// Rows returns the stored rows of one item of a series, in residue order.
func (s *Store) Rows(ctx context.Context, runID, origin, name, item string) ([]types.PeakRow, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT p.res_no, p.atom, p.one_letter, p.three_letter, p.assign_f1,
			p.assign_f2, p.status, p.position_f1, p.position_f2, p.height,
			p.volume, p.line_width_f1, p.line_width_f2, p.merit, p.details,
			p.correction_f1, p.correction_f2
		FROM peaks p JOIN series s ON s.rowid = p.series_id
		WHERE s.run_id = ? AND s.origin = ? AND s.name = ? AND p.item = ?
		ORDER BY p.position`, runID, origin, name, item)
	if err != nil {
		return nil, fmt.Errorf("querying peaks: %w", err)
	}
	defer rows.Close()

	var out []types.PeakRow
	for rows.Next() {
		var (
			r      types.PeakRow
			atom   sql.NullString
			status string
			detail sql.NullString
		)
		err := rows.Scan(&r.ResNo, &atom, &r.OneLetter, &r.ThreeLetter, &r.AssignF1,
			&r.AssignF2, &status, &r.PositionF1, &r.PositionF2, &r.Height,
			&r.Volume, &r.LineWidthF1, &r.LineWidthF2, &r.Merit, &detail,
			&r.CorrectionF1, &r.CorrectionF2)
		if err != nil {
			return nil, fmt.Errorf("scanning peak: %w", err)
		}
		r.Atom = atom.String
		r.Details = detail.String
		r.Status = types.PeakStatus(status)
		out = append(out, r)
	}
	return out, rows.Err()
}
