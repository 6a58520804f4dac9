// Package store keeps a local sqlite history of definition snapshots, so an
// edit session can be inspected or rolled back after the remote service has
// already been overwritten (the service itself is last-write-wins).
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/agentic-research/flowdef/api"
	"github.com/ohler55/ojg/oj"
	_ "modernc.org/sqlite"
)

// ErrNoSnapshot indicates the requested snapshot id does not exist.
var ErrNoSnapshot = errors.New("store: no such snapshot")

// Snapshot is one stored definition, without its payload.
type Snapshot struct {
	ID          int64
	WorkspaceID string
	ItemID      string
	TakenAt     time.Time
	PartCount   int
}

// History is a sqlite-backed snapshot store.
type History struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS snapshots (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	workspace_id TEXT NOT NULL,
	item_id TEXT NOT NULL,
	taken_at INTEGER NOT NULL,
	part_count INTEGER NOT NULL,
	definition JSON NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_snapshots_item ON snapshots(workspace_id, item_id, taken_at);
`

// Open creates or opens the history database at dbPath.
func Open(dbPath string) (*History, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", dbPath, err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &History{db: db}, nil
}

// Save stores a snapshot of the bundle and returns its id.
func (h *History) Save(ctx context.Context, workspaceID, itemID string, b *api.DefinitionBundle) (int64, error) {
	payload, err := oj.Marshal(b)
	if err != nil {
		return 0, fmt.Errorf("marshal bundle: %w", err)
	}
	res, err := h.db.ExecContext(ctx,
		`INSERT INTO snapshots (workspace_id, item_id, taken_at, part_count, definition) VALUES (?, ?, ?, ?, ?)`,
		workspaceID, itemID, time.Now().Unix(), len(b.Parts), string(payload))
	if err != nil {
		return 0, fmt.Errorf("insert snapshot: %w", err)
	}
	return res.LastInsertId()
}

// List returns the snapshots for an item, newest first.
func (h *History) List(ctx context.Context, workspaceID, itemID string) ([]Snapshot, error) {
	rows, err := h.db.QueryContext(ctx,
		`SELECT id, workspace_id, item_id, taken_at, part_count FROM snapshots
		 WHERE workspace_id = ? AND item_id = ? ORDER BY taken_at DESC, id DESC`,
		workspaceID, itemID)
	if err != nil {
		return nil, fmt.Errorf("query snapshots: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []Snapshot
	for rows.Next() {
		var s Snapshot
		var takenAt int64
		if err := rows.Scan(&s.ID, &s.WorkspaceID, &s.ItemID, &takenAt, &s.PartCount); err != nil {
			return nil, fmt.Errorf("scan snapshot: %w", err)
		}
		s.TakenAt = time.Unix(takenAt, 0)
		out = append(out, s)
	}
	return out, rows.Err()
}

// Get loads the bundle stored under id.
func (h *History) Get(ctx context.Context, id int64) (*api.DefinitionBundle, error) {
	var payload string
	err := h.db.QueryRowContext(ctx, `SELECT definition FROM snapshots WHERE id = ?`, id).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoSnapshot
	}
	if err != nil {
		return nil, fmt.Errorf("query snapshot %d: %w", id, err)
	}
	var b api.DefinitionBundle
	if err := oj.Unmarshal([]byte(payload), &b); err != nil {
		return nil, fmt.Errorf("parse snapshot %d: %w", id, err)
	}
	return &b, nil
}

// Close releases the database handle.
func (h *History) Close() error {
	return h.db.Close()
}
