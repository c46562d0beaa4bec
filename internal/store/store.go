// Package store persists holes, runs and status events to sqlite and
// syncs finalized inspection statuses back to the database. It is the
// database collaborator of the simulation core: it supplies the hole set
// and consumes status notifications, nothing more.
package store

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/banshee-data/drill.report/internal/hole"
	"github.com/banshee-data/drill.report/internal/monitoring"
)

// Store wraps the sqlite handle.
type Store struct {
	*sql.DB
}

// Open opens (or creates) the sqlite database at path and applies any
// pending migrations.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(`PRAGMA journal_mode=WAL; PRAGMA busy_timeout=5000; PRAGMA foreign_keys=ON;`); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set pragmas: %w", err)
	}

	s := &Store{db}
	if err := s.MigrateUp(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// UpsertHoles writes the given holes, preserving nothing: position, side
// and status all take the incoming values. Used by import tooling.
func (s *Store) UpsertHoles(holes []hole.Hole) error {
	tx, err := s.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO holes (hole_id, x, y, side, status, updated_at)
		VALUES (?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(hole_id) DO UPDATE SET
			x = excluded.x,
			y = excluded.y,
			side = excluded.side,
			status = excluded.status,
			updated_at = CURRENT_TIMESTAMP
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, h := range holes {
		if _, err := stmt.Exec(h.ID, h.X, h.Y, h.Side.String(), h.Status.String()); err != nil {
			return fmt.Errorf("failed to upsert hole %s: %w", h.ID, err)
		}
	}
	return tx.Commit()
}

// LoadHoles reads the full hole set in ID order.
func (s *Store) LoadHoles() ([]hole.Hole, error) {
	rows, err := s.Query(`SELECT hole_id, x, y, side, status FROM holes ORDER BY hole_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []hole.Hole
	for rows.Next() {
		var h hole.Hole
		var side, status string
		if err := rows.Scan(&h.ID, &h.X, &h.Y, &side, &status); err != nil {
			return nil, err
		}
		h.Side = parseSide(side)
		st, err := hole.ParseStatus(status)
		if err != nil {
			monitoring.Logf("store: hole %s has %v; treating as pending", h.ID, err)
			st = hole.StatusPending
		}
		h.Status = st
		out = append(out, h)
	}
	return out, rows.Err()
}

func parseSide(s string) hole.Side {
	switch s {
	case "left":
		return hole.SideLeft
	case "right":
		return hole.SideRight
	}
	return hole.SideUnknown
}

// ResetStatuses returns every hole to pending. Used before replaying a
// workpiece.
func (s *Store) ResetStatuses() error {
	_, err := s.Exec(`UPDATE holes SET status = 'pending', updated_at = CURRENT_TIMESTAMP`)
	return err
}

// CreateRun records the start of a simulation run.
func (s *Store) CreateRun(runID string, totalUnits int) error {
	_, err := s.Exec(`INSERT INTO runs (run_id, total_units) VALUES (?, ?)`, runID, totalUnits)
	return err
}

// FinishRun stamps a run as finished with its final completed-unit count.
func (s *Store) FinishRun(runID string, completedUnits int) error {
	_, err := s.Exec(`
		UPDATE runs SET finished_at = CURRENT_TIMESTAMP, completed_units = ?
		WHERE run_id = ?`, completedUnits, runID)
	return err
}

// RunRecord is one row of the runs table.
type RunRecord struct {
	RunID          string     `json:"run_id"`
	StartedAt      time.Time  `json:"started_at"`
	FinishedAt     *time.Time `json:"finished_at,omitempty"`
	TotalUnits     int        `json:"total_units"`
	CompletedUnits int        `json:"completed_units"`
}

// ListRuns returns runs newest first, up to limit.
func (s *Store) ListRuns(limit int) ([]RunRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.Query(`
		SELECT run_id, started_at, finished_at, total_units, COALESCE(completed_units, 0)
		FROM runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []RunRecord
	for rows.Next() {
		var r RunRecord
		var finished sql.NullTime
		if err := rows.Scan(&r.RunID, &r.StartedAt, &finished, &r.TotalUnits, &r.CompletedUnits); err != nil {
			return nil, err
		}
		if finished.Valid {
			t := finished.Time
			r.FinishedAt = &t
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// RecordStatusEvent appends one status notification to the event log and,
// for terminal statuses, syncs the hole's persisted status. In-progress
// events are display overlay only and never touch the holes table.
func (s *Store) RecordStatusEvent(runID, holeID string, st hole.Status) error {
	if _, err := s.Exec(`
		INSERT INTO status_events (run_id, hole_id, status) VALUES (?, ?, ?)`,
		runID, holeID, st.String()); err != nil {
		return err
	}
	if !st.Terminal() {
		return nil
	}
	_, err := s.Exec(`
		UPDATE holes SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE hole_id = ?`,
		st.String(), holeID)
	return err
}

// CountStatuses returns the number of holes per persisted status.
func (s *Store) CountStatuses() (map[string]int, error) {
	rows, err := s.Query(`SELECT status, COUNT(*) FROM holes GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]int)
	for rows.Next() {
		var st string
		var n int
		if err := rows.Scan(&st, &n); err != nil {
			return nil, err
		}
		out[st] = n
	}
	return out, rows.Err()
}
