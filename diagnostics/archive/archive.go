// Package archive persists diagnostics snapshots in SQLite so that a search
// can be explained after the fact.
package archive

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/theoremus-urban-solutions/journey-planner/diagnostics"
	"github.com/theoremus-urban-solutions/journey-planner/graph"
	"github.com/theoremus-urban-solutions/journey-planner/traversal"
)

//go:embed schema.sql
var schemaSQL string

var ErrRunNotFound = errors.New("archived run not found")

// Store is a SQLite-backed diagnostics archive.
type Store struct {
	conn    *sql.DB
	writeMu sync.Mutex
}

// RunSummary is one row of the runs table.
type RunSummary struct {
	RunID        string    `json:"runId"`
	CreatedAt    time.Time `json:"createdAt"`
	Query        string    `json:"query"`
	TotalChecked int       `json:"totalChecked"`
	Arrived      int       `json:"arrived"`
}

// Open opens (or creates) the archive at path and ensures its schema.
func Open(ctx context.Context, path string) (*Store, error) {
	dsn := path + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open archive: %w", err)
	}
	// One connection serialises writers and keeps :memory: archives intact.
	conn.SetMaxOpenConns(1)
	conn.SetMaxIdleConns(1)

	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping archive: %w", err)
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA temp_store = MEMORY",
	} {
		if _, err := conn.ExecContext(ctx, pragma); err != nil {
			log.Printf("Warning: failed to set %s: %v", pragma, err)
		}
	}
	if _, err := conn.ExecContext(ctx, schemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to create archive schema: %w", err)
	}
	return &Store{conn: conn}, nil
}

func (s *Store) Close() error { return s.conn.Close() }

// Save writes a snapshot under runID, replacing any earlier run with the
// same id.
func (s *Store) Save(ctx context.Context, runID, query string, snap diagnostics.Snapshot) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	probes, err := json.Marshal(snap.RunIDs)
	if err != nil {
		return fmt.Errorf("failed to encode probe ids: %w", err)
	}
	reasons, err := json.Marshal(snap.Reasons)
	if err != nil {
		return fmt.Errorf("failed to encode reasons: %w", err)
	}

	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin archive transaction: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"node_reasons", "node_visits", "state_counts", "reason_counts", "runs"} {
		if _, err := tx.ExecContext(ctx, `DELETE FROM `+table+` WHERE run_id = ?`, runID); err != nil {
			return fmt.Errorf("failed to replace run %s: %w", runID, err)
		}
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs (run_id, created_at, query, probe_ids, total_checked, arrived,
		                  frontier_count, frontier_mean, frontier_m2, frontier_max, reasons_json)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		runID, time.Now().UTC().Format(time.RFC3339Nano), query, string(probes),
		snap.TotalChecked, snap.Arrived,
		snap.Frontier.Count, snap.Frontier.Mean, snap.Frontier.M2, snap.Frontier.Max,
		string(reasons))
	if err != nil {
		return fmt.Errorf("failed to insert run %s: %w", runID, err)
	}

	for code, count := range snap.Codes {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO reason_counts (run_id, code, count) VALUES (?, ?, ?)`,
			runID, code.String(), count); err != nil {
			return fmt.Errorf("failed to insert reason count: %w", err)
		}
	}
	for st, count := range snap.States {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO state_counts (run_id, state, count) VALUES (?, ?, ?)`,
			runID, st.String(), count); err != nil {
			return fmt.Errorf("failed to insert state count: %w", err)
		}
	}
	for node, count := range snap.Visits {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO node_visits (run_id, node, count) VALUES (?, ?, ?)`,
			runID, int64(node), count); err != nil {
			return fmt.Errorf("failed to insert node visits: %w", err)
		}
	}
	for node, codes := range snap.NodeReasons {
		for code, count := range codes {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO node_reasons (run_id, node, code, count) VALUES (?, ?, ?, ?)`,
				runID, int64(node), code.String(), count); err != nil {
				return fmt.Errorf("failed to insert node reasons: %w", err)
			}
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit run %s: %w", runID, err)
	}
	return nil
}

// Load rebuilds the snapshot archived under runID.
func (s *Store) Load(ctx context.Context, runID string) (diagnostics.Snapshot, error) {
	snap := diagnostics.Snapshot{
		Codes:       map[traversal.ReasonCode]int{},
		States:      map[traversal.StateType]int{},
		Visits:      map[graph.NodeID]int{},
		NodeReasons: map[graph.NodeID]map[traversal.ReasonCode]int{},
	}
	var probes, reasons string
	err := s.conn.QueryRowContext(ctx, `
		SELECT probe_ids, total_checked, arrived, frontier_count, frontier_mean,
		       frontier_m2, frontier_max, reasons_json
		FROM runs WHERE run_id = ?`, runID).Scan(
		&probes, &snap.TotalChecked, &snap.Arrived, &snap.Frontier.Count, &snap.Frontier.Mean,
		&snap.Frontier.M2, &snap.Frontier.Max, &reasons)
	if errors.Is(err, sql.ErrNoRows) {
		return diagnostics.Snapshot{}, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	if err != nil {
		return diagnostics.Snapshot{}, fmt.Errorf("failed to load run %s: %w", runID, err)
	}
	if err := json.Unmarshal([]byte(probes), &snap.RunIDs); err != nil {
		return diagnostics.Snapshot{}, fmt.Errorf("failed to decode probe ids: %w", err)
	}
	if err := json.Unmarshal([]byte(reasons), &snap.Reasons); err != nil {
		return diagnostics.Snapshot{}, fmt.Errorf("failed to decode reasons: %w", err)
	}

	err = s.scan(ctx, `SELECT code, count FROM reason_counts WHERE run_id = ?`, runID, func(rows *sql.Rows) error {
		var name string
		var count int
		if err := rows.Scan(&name, &count); err != nil {
			return err
		}
		code, err := traversal.ParseReasonCode(name)
		if err != nil {
			return err
		}
		snap.Codes[code] = count
		return nil
	})
	if err != nil {
		return diagnostics.Snapshot{}, err
	}

	err = s.scan(ctx, `SELECT state, count FROM state_counts WHERE run_id = ?`, runID, func(rows *sql.Rows) error {
		var name string
		var st traversal.StateType
		var count int
		if err := rows.Scan(&name, &count); err != nil {
			return err
		}
		if err := st.UnmarshalText([]byte(name)); err != nil {
			return err
		}
		snap.States[st] = count
		return nil
	})
	if err != nil {
		return diagnostics.Snapshot{}, err
	}

	err = s.scan(ctx, `SELECT node, count FROM node_visits WHERE run_id = ?`, runID, func(rows *sql.Rows) error {
		var node int64
		var count int
		if err := rows.Scan(&node, &count); err != nil {
			return err
		}
		snap.Visits[graph.NodeID(node)] = count
		return nil
	})
	if err != nil {
		return diagnostics.Snapshot{}, err
	}

	err = s.scan(ctx, `SELECT node, code, count FROM node_reasons WHERE run_id = ?`, runID, func(rows *sql.Rows) error {
		var node int64
		var name string
		var count int
		if err := rows.Scan(&node, &name, &count); err != nil {
			return err
		}
		code, err := traversal.ParseReasonCode(name)
		if err != nil {
			return err
		}
		byCode, ok := snap.NodeReasons[graph.NodeID(node)]
		if !ok {
			byCode = map[traversal.ReasonCode]int{}
			snap.NodeReasons[graph.NodeID(node)] = byCode
		}
		byCode[code] = count
		return nil
	})
	if err != nil {
		return diagnostics.Snapshot{}, err
	}
	return snap, nil
}

func (s *Store) scan(ctx context.Context, query, runID string, fn func(*sql.Rows) error) error {
	rows, err := s.conn.QueryContext(ctx, query, runID)
	if err != nil {
		return fmt.Errorf("failed to query archive: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		if err := fn(rows); err != nil {
			return fmt.Errorf("failed to scan archive row: %w", err)
		}
	}
	return rows.Err()
}

// Runs lists archived runs, newest first.
func (s *Store) Runs(ctx context.Context, limit int) ([]RunSummary, error) {
	rows, err := s.conn.QueryContext(ctx, `
		SELECT run_id, created_at, query, total_checked, arrived
		FROM runs ORDER BY created_at DESC, run_id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var out []RunSummary
	for rows.Next() {
		var r RunSummary
		var created string
		if err := rows.Scan(&r.RunID, &created, &r.Query, &r.TotalChecked, &r.Arrived); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		if r.CreatedAt, err = time.Parse(time.RFC3339Nano, created); err != nil {
			return nil, fmt.Errorf("failed to parse run time: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
