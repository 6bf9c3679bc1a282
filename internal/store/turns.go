package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/bridgeware/agentbridge/internal/domain"
)

// History records completed turns for later inspection.
type History interface {
	// RecordTurn appends one turn. CreatedAt is set by the store if zero.
	RecordTurn(ctx context.Context, rec domain.TurnRecord) error

	// ListTurns returns the most recent turns, newest first. An empty
	// threadID lists across all threads.
	ListTurns(ctx context.Context, threadID string, limit int) ([]domain.TurnRecord, error)
}

// RecordTurn appends a turn row.
func (db *DB) RecordTurn(ctx context.Context, rec domain.TurnRecord) error {
	created := rec.CreatedAt
	if created.IsZero() {
		created = time.Now().UTC()
	}

	_, err := db.sql.ExecContext(ctx, `
		INSERT INTO turns (thread_id, mode, status, error, bytes, files, duration_ms, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ThreadID, rec.Mode, rec.Status, rec.Error,
		rec.Bytes, rec.Files, rec.Duration.Milliseconds(),
		created.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("recording turn: %w", err)
	}
	return nil
}

// ListTurns returns the most recent turns, newest first.
func (db *DB) ListTurns(ctx context.Context, threadID string, limit int) ([]domain.TurnRecord, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT id, thread_id, mode, status, error, bytes, files, duration_ms, created_at
		FROM turns`
	args := []any{}
	if threadID != "" {
		query += " WHERE thread_id = ?"
		args = append(args, threadID)
	}
	query += " ORDER BY id DESC LIMIT ?"
	args = append(args, limit)

	rows, err := db.sql.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing turns: %w", err)
	}
	defer rows.Close()

	var out []domain.TurnRecord
	for rows.Next() {
		var rec domain.TurnRecord
		var durationMS int64
		var created string
		if err := rows.Scan(&rec.ID, &rec.ThreadID, &rec.Mode, &rec.Status, &rec.Error,
			&rec.Bytes, &rec.Files, &durationMS, &created); err != nil {
			return nil, fmt.Errorf("scanning turn: %w", err)
		}
		rec.Duration = time.Duration(durationMS) * time.Millisecond
		if ts, err := time.Parse(time.RFC3339Nano, created); err == nil {
			rec.CreatedAt = ts
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// MemoryHistory keeps turns in process memory. It backs deployments that opt
// out of the on-disk store, and tests.
type MemoryHistory struct {
	mu    sync.Mutex
	turns []domain.TurnRecord
	next  int64
}

func NewMemoryHistory() *MemoryHistory {
	return &MemoryHistory{}
}

func (h *MemoryHistory) RecordTurn(ctx context.Context, rec domain.TurnRecord) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.next++
	rec.ID = h.next
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	h.turns = append(h.turns, rec)
	return nil
}

func (h *MemoryHistory) ListTurns(ctx context.Context, threadID string, limit int) ([]domain.TurnRecord, error) {
	if limit <= 0 {
		limit = 50
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	var out []domain.TurnRecord
	for i := len(h.turns) - 1; i >= 0 && len(out) < limit; i-- {
		if threadID != "" && h.turns[i].ThreadID != threadID {
			continue
		}
		out = append(out, h.turns[i])
	}
	return out, nil
}

var (
	_ History = (*DB)(nil)
	_ History = (*MemoryHistory)(nil)
)
