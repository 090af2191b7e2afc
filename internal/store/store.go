// Package store persists per-run snapshots: classified seeds, the filtered
// relationship set, and node metrics. The edges table is the durable artifact
// the graph stage can be re-run from without re-fetching.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	_ "modernc.org/sqlite"

	"flocks/internal/model"
)

// DB wraps the SQLite snapshot database.
type DB struct{ sql *sql.DB }

func Open(path string) (*DB, error) {
	d, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	if _, err := d.Exec(`PRAGMA journal_mode=WAL; PRAGMA synchronous=NORMAL;`); err != nil {
		return nil, err
	}
	db := &DB{sql: d}
	if err := db.migrate(); err != nil {
		_ = d.Close()
		return nil, err
	}
	return db, nil
}

func (d *DB) Close() error { return d.sql.Close() }

func (d *DB) migrate() error {
	_, err := d.sql.Exec(`
	CREATE TABLE IF NOT EXISTS runs (
	  id TEXT PRIMARY KEY,
	  started INTEGER NOT NULL,
	  finished INTEGER,
	  summary TEXT
	);
	CREATE TABLE IF NOT EXISTS seeds (
	  run_id TEXT NOT NULL,
	  handle TEXT NOT NULL,
	  tier INTEGER NOT NULL,
	  reasoning TEXT,
	  PRIMARY KEY (run_id, handle)
	);
	CREATE TABLE IF NOT EXISTS edges (
	  run_id TEXT NOT NULL,
	  source TEXT NOT NULL,
	  target TEXT NOT NULL,
	  weight REAL NOT NULL,
	  discovered INTEGER NOT NULL,
	  PRIMARY KEY (run_id, source, target)
	);
	CREATE INDEX IF NOT EXISTS idx_edges_run ON edges(run_id);
	CREATE TABLE IF NOT EXISTS node_metrics (
	  run_id TEXT NOT NULL,
	  account TEXT NOT NULL,
	  in_degree INTEGER NOT NULL,
	  out_degree INTEGER NOT NULL,
	  weighted_in REAL NOT NULL,
	  pagerank REAL NOT NULL,
	  PRIMARY KEY (run_id, account)
	);
	`)
	return err
}

// StartRun records a new discovery run.
func (d *DB) StartRun(ctx context.Context, runID string, started time.Time) error {
	_, err := d.sql.ExecContext(ctx, `INSERT INTO runs(id, started) VALUES(?,?)`, runID, started.Unix())
	return err
}

// FinishRun stamps the run's end and stores the stage summaries as JSON.
func (d *DB) FinishRun(ctx context.Context, runID string, finished time.Time, summary any) error {
	sb, _ := json.Marshal(summary)
	_, err := d.sql.ExecContext(ctx, `UPDATE runs SET finished=?, summary=? WHERE id=?`, finished.Unix(), string(sb), runID)
	return err
}

// PutSeeds stores the classified seed set for a run.
func (d *DB) PutSeeds(ctx context.Context, runID string, seeds []model.SeedAccount) error {
	tx, err := d.sql.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	for _, s := range seeds {
		if _, err := tx.ExecContext(ctx,
			`INSERT OR REPLACE INTO seeds(run_id, handle, tier, reasoning) VALUES(?,?,?,?)`,
			runID, s.Handle, int(s.Tier), s.Reasoning); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// PutEdges stores the relationship snapshot. A duplicate (source, target)
// pair within a run sums its weight into the stored edge, matching the
// graph stage's aggregation policy.
func (d *DB) PutEdges(ctx context.Context, runID string, edges []model.FollowingEdge) error {
	tx, err := d.sql.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	for _, e := range edges {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO edges(run_id, source, target, weight, discovered) VALUES(?,?,?,?,?)
			ON CONFLICT(run_id, source, target) DO UPDATE SET weight = weight + excluded.weight`,
			runID, e.SourceID, e.TargetID, e.Weight, e.DiscoveredAt.Unix()); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// LoadEdges reads a run's relationship snapshot back, ordered by (source, target).
func (d *DB) LoadEdges(ctx context.Context, runID string) ([]model.FollowingEdge, error) {
	rows, err := d.sql.QueryContext(ctx,
		`SELECT source, target, weight, discovered FROM edges WHERE run_id=? ORDER BY source, target`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.FollowingEdge
	for rows.Next() {
		var e model.FollowingEdge
		var ts int64
		if err := rows.Scan(&e.SourceID, &e.TargetID, &e.Weight, &ts); err != nil {
			return nil, err
		}
		e.DiscoveredAt = time.Unix(ts, 0).UTC()
		out = append(out, e)
	}
	return out, rows.Err()
}

// NodeMetric is one stored per-node metrics row.
type NodeMetric struct {
	Account    string
	InDegree   int
	OutDegree  int
	WeightedIn float64
	PageRank   float64
}

// PutNodeMetrics stores the graph stage's per-node output.
func (d *DB) PutNodeMetrics(ctx context.Context, runID string, metrics []NodeMetric) error {
	tx, err := d.sql.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	for _, m := range metrics {
		if _, err := tx.ExecContext(ctx, `
			INSERT OR REPLACE INTO node_metrics(run_id, account, in_degree, out_degree, weighted_in, pagerank)
			VALUES(?,?,?,?,?,?)`,
			runID, m.Account, m.InDegree, m.OutDegree, m.WeightedIn, m.PageRank); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// LoadNodeMetrics reads a run's node metrics ordered by account.
func (d *DB) LoadNodeMetrics(ctx context.Context, runID string) ([]NodeMetric, error) {
	rows, err := d.sql.QueryContext(ctx, `
		SELECT account, in_degree, out_degree, weighted_in, pagerank
		FROM node_metrics WHERE run_id=? ORDER BY account`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []NodeMetric
	for rows.Next() {
		var m NodeMetric
		if err := rows.Scan(&m.Account, &m.InDegree, &m.OutDegree, &m.WeightedIn, &m.PageRank); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
