package agent

import (
	"context"

	"github.com/bridgeware/agentbridge/internal/logging"
	"github.com/bridgeware/agentbridge/internal/platform"
)

// EnsureAgent registers an agent definition idempotently by name: an existing
// agent with the same name is returned instead of creating a duplicate. A
// listing failure degrades to plain creation rather than failing the request.
func EnsureAgent(ctx context.Context, client platform.Client, spec platform.AgentSpec, log *logging.Logger) (*platform.Agent, error) {
	agents, err := client.ListAgents(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("could not list agents, creating directly")
	} else {
		for i := range agents {
			if agents[i].Name == spec.Name {
				log.Debug().Str("agentId", agents[i].ID).Str("name", spec.Name).Msg("reusing existing agent")
				return &agents[i], nil
			}
		}
	}
	return client.CreateAgent(ctx, spec)
}
