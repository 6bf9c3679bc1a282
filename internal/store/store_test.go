package store

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bridgeware/agentbridge/internal/domain"
	"github.com/bridgeware/agentbridge/internal/logging"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(":memory:", logging.New(io.Discard, "silent"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestMigrationsAreIdempotent(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, db.migrate())
}

func TestRecordAndListTurns(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	require.NoError(t, db.RecordTurn(ctx, domain.TurnRecord{
		ThreadID: "thread_1",
		Mode:     "persisted",
		Status:   "completed",
		Bytes:    512,
		Files:    1,
		Duration: 1500 * time.Millisecond,
	}))
	require.NoError(t, db.RecordTurn(ctx, domain.TurnRecord{
		ThreadID: "thread_2",
		Mode:     "direct",
		Status:   "failed",
		Error:    "run failed: rate_limit_exceeded",
	}))

	all, err := db.ListTurns(ctx, "", 10)
	require.NoError(t, err)
	require.Len(t, all, 2)

	// Newest first.
	assert.Equal(t, "thread_2", all[0].ThreadID)
	assert.Equal(t, "failed", all[0].Status)
	assert.Equal(t, "thread_1", all[1].ThreadID)
	assert.Equal(t, 1500*time.Millisecond, all[1].Duration)
	assert.Equal(t, 512, all[1].Bytes)
	assert.False(t, all[1].CreatedAt.IsZero())
}

func TestListTurnsFiltersByThread(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		require.NoError(t, db.RecordTurn(ctx, domain.TurnRecord{ThreadID: "thread_1", Mode: "persisted", Status: "completed"}))
	}
	require.NoError(t, db.RecordTurn(ctx, domain.TurnRecord{ThreadID: "thread_2", Mode: "persisted", Status: "completed"}))

	turns, err := db.ListTurns(ctx, "thread_1", 10)
	require.NoError(t, err)
	assert.Len(t, turns, 3)

	turns, err = db.ListTurns(ctx, "thread_1", 2)
	require.NoError(t, err)
	assert.Len(t, turns, 2)
}

func TestMemoryHistory(t *testing.T) {
	h := NewMemoryHistory()
	ctx := context.Background()

	require.NoError(t, h.RecordTurn(ctx, domain.TurnRecord{ThreadID: "thread_1", Mode: "direct", Status: "completed"}))
	require.NoError(t, h.RecordTurn(ctx, domain.TurnRecord{ThreadID: "thread_1", Mode: "direct", Status: "failed"}))

	turns, err := h.ListTurns(ctx, "thread_1", 10)
	require.NoError(t, err)
	require.Len(t, turns, 2)
	assert.Equal(t, "failed", turns[0].Status)
	assert.Equal(t, int64(2), turns[0].ID)

	turns, err = h.ListTurns(ctx, "thread_9", 10)
	require.NoError(t, err)
	assert.Empty(t, turns)
}
