package agent

import (
	"context"
	"strings"
	"time"

	"github.com/bridgeware/agentbridge/internal/config"
	"github.com/bridgeware/agentbridge/internal/domain"
	"github.com/bridgeware/agentbridge/internal/logging"
	"github.com/bridgeware/agentbridge/internal/platform"
	"github.com/bridgeware/agentbridge/internal/tools"
)

// ExecResult is the outcome of driving one run to a terminal state.
type ExecResult struct {
	Run *platform.Run

	// StreamedText is the accumulated delta text. Empty in poll mode.
	StreamedText string

	// FinalMessage is the completed assistant message when the stream
	// delivered one. Nil in poll mode.
	FinalMessage *platform.Message
}

// Executor drives runs to completion, answering tool calls along the way.
type Executor struct {
	client platform.Client
	tools  *tools.Registry
	cfg    config.RunConfig
	log    *logging.Logger

	// OnEvent, when set, observes every stream event as it arrives. Poll
	// mode never calls it.
	OnEvent func(platform.RunEvent)
}

// NewExecutor creates a run executor.
func NewExecutor(client platform.Client, reg *tools.Registry, cfg config.RunConfig, log *logging.Logger) *Executor {
	return &Executor{client: client, tools: reg, cfg: cfg, log: log.Sub("executor")}
}

// Execute creates a run on the thread and drives it until it completes.
// A run that ends failed, cancelled, or expired returns a RunFailedError;
// a poll loop that exhausts its attempt or wall-clock budget returns a
// TimeoutError. Neither is ever retried.
func (e *Executor) Execute(ctx context.Context, threadID, agentID string, opts platform.RunOptions, trace *StepTrace) (*ExecResult, error) {
	if e.cfg.Mode == "stream" {
		return e.stream(ctx, threadID, agentID, opts, trace)
	}
	return e.poll(ctx, threadID, agentID, opts, trace)
}

func (e *Executor) poll(ctx context.Context, threadID, agentID string, opts platform.RunOptions, trace *StepTrace) (*ExecResult, error) {
	run, err := e.client.CreateRun(ctx, threadID, agentID, opts)
	if err != nil {
		return nil, err
	}
	trace.Add("run %s created", run.ID)

	deadline := time.Now().Add(e.cfg.Timeout)
	for attempt := 0; attempt < e.cfg.MaxAttempts; attempt++ {
		if run.Status.Terminal() {
			return e.finish(run, trace)
		}
		if run.Status == platform.RunRequiresAction {
			run, err = e.answerToolCalls(ctx, run, trace)
			if err != nil {
				return nil, err
			}
			continue
		}
		if time.Now().After(deadline) {
			break
		}

		select {
		case <-time.After(e.cfg.PollInterval):
		case <-ctx.Done():
			return nil, ctx.Err()
		}

		run, err = e.client.GetRun(ctx, threadID, run.ID)
		if err != nil {
			return nil, err
		}
	}

	if run.Status.Terminal() {
		return e.finish(run, trace)
	}
	e.log.Warn().Str("runId", run.ID).Str("status", string(run.Status)).Msg("run polling exhausted")
	return nil, &domain.TimeoutError{Op: "run " + run.ID, After: e.cfg.Timeout}
}

// finish maps a terminal run to a result or a failure error.
func (e *Executor) finish(run *platform.Run, trace *StepTrace) (*ExecResult, error) {
	trace.Add("run %s finished with status %s", run.ID, run.Status)
	if run.Status != platform.RunCompleted {
		reason := string(run.Status)
		if run.LastError != nil {
			reason = run.LastError.Code + ": " + run.LastError.Message
		}
		return nil, &domain.RunFailedError{RunID: run.ID, Reason: reason}
	}
	return &ExecResult{Run: run}, nil
}

func (e *Executor) answerToolCalls(ctx context.Context, run *platform.Run, trace *StepTrace) (*platform.Run, error) {
	for _, call := range run.ToolCalls {
		trace.Add("tool call %s(%s)", call.Name, call.Arguments)
	}
	outputs := e.tools.Outputs(ctx, run.ToolCalls)
	return e.client.SubmitToolOutputs(ctx, run.ThreadID, run.ID, outputs)
}

func (e *Executor) stream(ctx context.Context, threadID, agentID string, opts platform.RunOptions, trace *StepTrace) (*ExecResult, error) {
	events, err := e.client.StreamRun(ctx, threadID, agentID, opts)
	if err != nil {
		return nil, err
	}

	res := &ExecResult{}
	var text strings.Builder
	var lastRun *platform.Run

	// A requires_action event swaps the channel for the resumed stream.
	for events != nil {
		ev, ok := <-events
		if !ok {
			events = nil
			continue
		}
		if e.OnEvent != nil {
			e.OnEvent(ev)
		}

		switch ev.Kind {
		case platform.EventMessageDelta:
			text.WriteString(ev.Delta)

		case platform.EventMessageCompleted:
			res.FinalMessage = ev.Message

		case platform.EventRunStep:
			trace.Add("run step %s", ev.Step)

		case platform.EventRunStatus:
			lastRun = ev.Run
			if ev.Run.Status == platform.RunRequiresAction {
				resumed, err := e.answerToolCallsStream(ctx, ev.Run, trace)
				if err != nil {
					return nil, err
				}
				// The old stream ends server-side after requires_action;
				// drain whatever is left so its consumer can exit.
				go drain(events)
				events = resumed
			}

		case platform.EventError:
			return nil, &domain.RemoteError{Op: "stream run", Err: streamErr(ev.Err)}

		case platform.EventDone:
			events = nil
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if lastRun == nil {
		return nil, &domain.RemoteError{Op: "stream run", Err: streamErr("stream ended without a run status")}
	}
	if lastRun.Status != platform.RunCompleted {
		trace.Add("run %s finished with status %s", lastRun.ID, lastRun.Status)
		reason := string(lastRun.Status)
		if lastRun.LastError != nil {
			reason = lastRun.LastError.Code + ": " + lastRun.LastError.Message
		}
		return nil, &domain.RunFailedError{RunID: lastRun.ID, Reason: reason}
	}

	trace.Add("run %s finished with status %s", lastRun.ID, lastRun.Status)
	res.Run = lastRun
	res.StreamedText = text.String()
	return res, nil
}

func (e *Executor) answerToolCallsStream(ctx context.Context, run *platform.Run, trace *StepTrace) (<-chan platform.RunEvent, error) {
	for _, call := range run.ToolCalls {
		trace.Add("tool call %s(%s)", call.Name, call.Arguments)
	}
	outputs := e.tools.Outputs(ctx, run.ToolCalls)
	return e.client.SubmitToolOutputsStream(ctx, run.ThreadID, run.ID, outputs)
}

func drain(events <-chan platform.RunEvent) {
	for range events {
	}
}

type streamErr string

func (e streamErr) Error() string { return string(e) }
