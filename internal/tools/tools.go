// Package tools implements the function tools the agent can call back into
// during a run.
package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/bridgeware/agentbridge/internal/logging"
	"github.com/bridgeware/agentbridge/internal/platform"
)

// Tool is a capability the agent can invoke during a conversation.
type Tool interface {
	// Name returns the tool's identifier.
	Name() string

	// Description returns a human-readable description for the model.
	Description() string

	// InputSchema returns the JSON Schema for the tool's input.
	InputSchema() json.RawMessage

	// Execute runs the tool with the given JSON input and returns its output.
	Execute(ctx context.Context, input string) (string, error)
}

// Registry holds available tools.
type Registry struct {
	tools map[string]Tool
	log   *logging.Logger
}

// NewRegistry creates an empty tool registry.
func NewRegistry(log *logging.Logger) *Registry {
	return &Registry{
		tools: make(map[string]Tool),
		log:   log.Sub("tools"),
	}
}

// Register adds a tool.
func (r *Registry) Register(t Tool) {
	r.tools[t.Name()] = t
}

// Get returns a tool by name.
func (r *Registry) Get(name string) (Tool, bool) {
	t, ok := r.tools[name]
	return t, ok
}

// Specs returns run-ready function tool specs for all registered tools.
func (r *Registry) Specs() []platform.ToolSpec {
	specs := make([]platform.ToolSpec, 0, len(r.tools))
	for _, t := range r.tools {
		specs = append(specs, platform.ToolSpec{
			Type: "function",
			Function: &platform.FunctionSpec{
				Name:        t.Name(),
				Description: t.Description(),
				Parameters:  t.InputSchema(),
			},
		})
	}
	return specs
}

// Outputs answers a batch of pending tool calls. Every call gets an output,
// including unknown tools and failed executions, so the run never stalls
// waiting on a missing answer.
func (r *Registry) Outputs(ctx context.Context, calls []platform.ToolCall) []platform.ToolOutput {
	outputs := make([]platform.ToolOutput, 0, len(calls))
	for _, call := range calls {
		outputs = append(outputs, platform.ToolOutput{
			CallID: call.ID,
			Output: r.run(ctx, call),
		})
	}
	return outputs
}

func (r *Registry) run(ctx context.Context, call platform.ToolCall) string {
	tool, ok := r.tools[call.Name]
	if !ok {
		r.log.Warn().Str("tool", call.Name).Msg("unknown tool requested")
		return fmt.Sprintf("unknown tool: %s", call.Name)
	}

	out, err := tool.Execute(ctx, call.Arguments)
	if err != nil {
		r.log.Error().Err(err).Str("tool", call.Name).Msg("tool execution failed")
		return fmt.Sprintf("tool %s failed: %v", call.Name, err)
	}
	r.log.Debug().Str("tool", call.Name).Msg("tool executed")
	return out
}
