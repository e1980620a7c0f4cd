// Package sqlite persists a rolling debug/replay journal of hypothesis
// snapshots. It is never read back by the tracker itself; it exists purely
// so a replay run can be inspected after the fact.
package sqlite

import (
	"database/sql"
	_ "embed"
	"log"

	_ "modernc.org/sqlite"

	"github.com/trailwire/obstacles/internal/track"
)

//go:embed schema.sql
var schemaSQL string

// HistoryStore journals hypothesis snapshots, one row per (batch, hypothesis)
// pair, for offline inspection of a tracking run.
type HistoryStore struct {
	*sql.DB
}

// Open creates or attaches to a sqlite database at path and ensures the
// schema exists. The embedded schema is executed unconditionally on open;
// every statement in it is idempotent.
func Open(path string) (*HistoryStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, err
	}

	log.Println("initialized hypothesis history schema")

	return &HistoryStore{db}, nil
}

// RecordBatch journals every hypothesis present in a tracker update pass,
// tagged with the batch id and time that produced it.
func (s *HistoryStore) RecordBatch(batchID string, batchTime float64, hyps []track.Hypothesis) error {
	if len(hyps) == 0 {
		return nil
	}

	tx, err := s.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`INSERT INTO hypothesis_snapshot
		(batch_id, batch_time, hypothesis_id, mean_x, mean_y, mean_z, born_at, last_seen_at, times_seen, is_active)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, h := range hyps {
		active := 0
		if h.IsActive {
			active = 1
		}
		if _, err := stmt.Exec(batchID, batchTime, h.ID, h.Mean.X, h.Mean.Y, h.Mean.Z, h.BornAt, h.LastSeenAt, h.TimesSeen, active); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// HypothesisHistoryRow is one journaled snapshot, as read back for replay
// inspection.
type HypothesisHistoryRow struct {
	BatchID      string
	BatchTime    float64
	HypothesisID uint64
	MeanX        float64
	MeanY        float64
	MeanZ        float64
	TimesSeen    uint32
	IsActive     bool
}

// RecentByHypothesis returns the most recent snapshots for one hypothesis
// id, oldest first, capped at limit rows.
func (s *HistoryStore) RecentByHypothesis(hypothesisID uint64, limit int) ([]HypothesisHistoryRow, error) {
	rows, err := s.Query(`SELECT batch_id, batch_time, hypothesis_id, mean_x, mean_y, mean_z, times_seen, is_active
		FROM hypothesis_snapshot WHERE hypothesis_id = ? ORDER BY batch_time DESC LIMIT ?`, hypothesisID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []HypothesisHistoryRow
	for rows.Next() {
		var r HypothesisHistoryRow
		var active int
		if err := rows.Scan(&r.BatchID, &r.BatchTime, &r.HypothesisID, &r.MeanX, &r.MeanY, &r.MeanZ, &r.TimesSeen, &active); err != nil {
			return nil, err
		}
		r.IsActive = active != 0
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	// The query returns newest first; reverse into oldest-first order.
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}
