package agent

import (
	"context"

	"github.com/bridgeware/agentbridge/internal/logging"
	"github.com/bridgeware/agentbridge/internal/platform"
)

// Threads resolves the conversation thread for a turn.
type Threads struct {
	client platform.Client
	log    *logging.Logger
}

// NewThreads creates a thread manager.
func NewThreads(client platform.Client, log *logging.Logger) *Threads {
	return &Threads{client: client, log: log.Sub("threads")}
}

// Resolve returns the thread id to use for a turn. A supplied id is adopted
// as-is; the platform rejects bad handles when they are first used. An empty
// id creates a fresh thread, and creation failure is fatal to the turn.
func (t *Threads) Resolve(ctx context.Context, threadID string) (string, error) {
	if threadID != "" {
		t.log.Debug().Str("threadId", threadID).Msg("continuing thread")
		return threadID, nil
	}

	thread, err := t.client.CreateThread(ctx, platform.ThreadSpec{})
	if err != nil {
		return "", err
	}
	t.log.Info().Str("threadId", thread.ID).Msg("thread created")
	return thread.ID, nil
}
