package agent

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/bridgeware/agentbridge/internal/config"
	"github.com/bridgeware/agentbridge/internal/domain"
	"github.com/bridgeware/agentbridge/internal/logging"
	"github.com/bridgeware/agentbridge/internal/platform"
	"github.com/bridgeware/agentbridge/internal/storage"
	"github.com/bridgeware/agentbridge/internal/store"
	"github.com/bridgeware/agentbridge/internal/tools"
)

// Orchestrator sequences a full conversation turn: thread, message, run,
// extraction, relay, audit. It is safe for concurrent use; every turn keeps
// its own state.
type Orchestrator struct {
	client  platform.Client
	blobs   storage.Store
	tools   *tools.Registry
	history store.History
	cfg     *config.Config
	log     *logging.Logger

	threads  *Threads
	preparer *Preparer
	relay    *Relay
}

// NewOrchestrator wires the turn pipeline. blobs and history may be nil;
// the features needing them degrade per component.
func NewOrchestrator(client platform.Client, blobs storage.Store, reg *tools.Registry, history store.History, cfg *config.Config, log *logging.Logger) *Orchestrator {
	return &Orchestrator{
		client:   client,
		blobs:    blobs,
		tools:    reg,
		history:  history,
		cfg:      cfg,
		log:      log.Sub("orchestrator"),
		threads:  NewThreads(client, log),
		preparer: NewPreparer(client, blobs, log),
		relay:    NewRelay(client, blobs, log),
	}
}

// turnMode selects the behaviors that differ between turn kinds. Both kinds
// share one run path; the flags are the only divergence.
type turnMode struct {
	name string

	// freshAgent creates a throwaway code-interpreter agent for this turn
	// instead of using the configured agent id.
	freshAgent bool

	// relayFiles moves generated files into blob storage.
	relayFiles bool

	// keepThread reuses and returns the thread handle for continuity.
	keepThread bool
}

var (
	persistedMode = turnMode{name: "persisted", relayFiles: true, keepThread: true}
	directMode    = turnMode{name: "direct", freshAgent: true, relayFiles: true}
)

// ChatPersisted runs a turn against the configured agent, continuing the
// request's thread when one is supplied.
func (o *Orchestrator) ChatPersisted(ctx context.Context, req domain.ChatTurnRequest) (*domain.TurnResult, error) {
	return o.run(ctx, req, persistedMode, nil)
}

// ChatDirect runs a turn on a fresh agent and thread with the code
// interpreter enabled. The agent is deleted afterwards unless configured
// otherwise.
func (o *Orchestrator) ChatDirect(ctx context.Context, req domain.ChatTurnRequest) (*domain.TurnResult, error) {
	return o.run(ctx, req, directMode, nil)
}

// ChatStream runs a persisted turn in streaming mode, forwarding every run
// event to onEvent as it arrives.
func (o *Orchestrator) ChatStream(ctx context.Context, req domain.ChatTurnRequest, onEvent func(platform.RunEvent)) (*domain.TurnResult, error) {
	return o.run(ctx, req, persistedMode, onEvent)
}

func (o *Orchestrator) run(ctx context.Context, req domain.ChatTurnRequest, mode turnMode, onEvent func(platform.RunEvent)) (*domain.TurnResult, error) {
	started := time.Now()
	trace := &StepTrace{}

	result, relayed, err := o.turn(ctx, req, mode, trace, onEvent)
	o.record(ctx, req, mode, result, relayed, err, time.Since(started))
	if err != nil {
		o.log.Error().Err(err).Str("mode", mode.name).Msg("turn failed")
		return nil, err
	}

	o.log.Info().
		Str("mode", mode.name).
		Str("threadId", result.ThreadID).
		Int("sources", len(result.Sources)).
		Int("files", len(result.Files)).
		Dur("elapsed", time.Since(started)).
		Msg("turn completed")
	return result, nil
}

func (o *Orchestrator) turn(ctx context.Context, req domain.ChatTurnRequest, mode turnMode, trace *StepTrace, onEvent func(platform.RunEvent)) (*domain.TurnResult, int, error) {
	if err := req.Validate(); err != nil {
		return nil, 0, err
	}

	agentID, cleanup, err := o.resolveAgent(ctx, mode, trace)
	if err != nil {
		return nil, 0, err
	}
	if cleanup != nil {
		defer cleanup()
	}

	requestThread := ""
	if mode.keepThread {
		requestThread = req.ThreadID
	}
	threadID, err := o.threads.Resolve(ctx, requestThread)
	if err != nil {
		return nil, 0, err
	}
	trace.Add("thread %s", threadID)

	spec, err := o.preparer.Prepare(ctx, req, trace)
	if err != nil {
		return nil, 0, err
	}
	if _, err := o.client.CreateMessage(ctx, threadID, spec); err != nil {
		return nil, 0, err
	}

	opts := platform.RunOptions{}
	if !mode.freshAgent {
		// Function tools ride on the run; the fresh direct agent instead
		// carries the code interpreter in its definition.
		opts.Tools = o.tools.Specs()
	}

	exec := NewExecutor(o.client, o.tools, o.cfg.Run, o.log)
	if onEvent != nil {
		exec.cfg.Mode = "stream"
		exec.OnEvent = onEvent
	}
	execRes, err := exec.Execute(ctx, threadID, agentID, opts, trace)
	if err != nil {
		return nil, 0, err
	}

	content, sources, files, err := o.extract(ctx, threadID, execRes)
	if err != nil {
		return nil, 0, err
	}

	relayed := 0
	if mode.relayFiles && len(files) > 0 {
		files, relayed, err = o.relay.RelayAll(ctx, files, trace)
		if err != nil {
			return nil, 0, err
		}
	}

	result := &domain.TurnResult{
		Content:           content,
		Sources:           sources,
		Files:             files,
		IntermediateSteps: trace.Steps(),
	}
	if mode.keepThread {
		result.ThreadID = threadID
	}
	return result, relayed, nil
}

// resolveAgent picks the agent for the turn. Persisted turns require a
// configured agent id; direct turns create a throwaway code-interpreter
// agent and tear it down afterwards when so configured.
func (o *Orchestrator) resolveAgent(ctx context.Context, mode turnMode, trace *StepTrace) (string, func(), error) {
	if !mode.freshAgent {
		if o.cfg.Platform.AgentID == "" {
			return "", nil, &domain.ConfigError{Msg: "no agent id configured"}
		}
		return o.cfg.Platform.AgentID, nil, nil
	}

	created, err := o.client.CreateAgent(ctx, platform.AgentSpec{
		Name:         "direct-" + uuid.NewString()[:8],
		Model:        o.cfg.Platform.Model,
		Instructions: o.cfg.Platform.Instructions,
		Tools:        []platform.ToolSpec{platform.CodeInterpreterTool()},
	})
	if err != nil {
		return "", nil, err
	}
	trace.Add("agent %s created", created.ID)

	if !o.cfg.DeleteAgentAfterDirectTurn() {
		return created.ID, nil, nil
	}
	cleanup := func() {
		if err := o.client.DeleteAgent(context.WithoutCancel(ctx), created.ID); err != nil {
			o.log.Warn().Err(err).Str("agentId", created.ID).Msg("could not delete direct agent")
		}
	}
	return created.ID, cleanup, nil
}

// extract pulls the reply out of the execution result. A completed-message
// event carries everything; without one the thread is read back so annotation
// sources and files survive streamed runs too. The accumulated deltas are the
// last resort, carrying text only.
func (o *Orchestrator) extract(ctx context.Context, threadID string, execRes *ExecResult) (string, []domain.Source, []domain.FileRef, error) {
	if execRes.FinalMessage != nil {
		content, sources, files := ExtractResult(execRes.FinalMessage)
		return content, sources, files, nil
	}

	msgs, err := o.client.ListMessages(ctx, threadID)
	if err != nil {
		if execRes.StreamedText != "" {
			o.log.Warn().Err(err).Str("threadId", threadID).Msg("could not read thread back, keeping streamed text")
			return execRes.StreamedText, nil, nil, nil
		}
		return "", nil, nil, err
	}
	if msg := LastAssistantMessage(msgs); msg != nil {
		content, sources, files := ExtractResult(msg)
		return content, sources, files, nil
	}
	if execRes.StreamedText != "" {
		return execRes.StreamedText, nil, nil, nil
	}
	return "", nil, nil, &domain.NotFoundError{Kind: "assistant message", ID: threadID}
}

// record writes the turn's audit row. Auditing never fails a turn.
func (o *Orchestrator) record(ctx context.Context, req domain.ChatTurnRequest, mode turnMode, result *domain.TurnResult, relayed int, turnErr error, elapsed time.Duration) {
	if o.history == nil {
		return
	}

	rec := domain.TurnRecord{
		Mode:     mode.name,
		Status:   "completed",
		Bytes:    relayed,
		Duration: elapsed,
	}
	if result != nil {
		rec.ThreadID = result.ThreadID
		rec.Files = len(result.Files)
	} else {
		rec.ThreadID = req.ThreadID
	}
	if turnErr != nil {
		rec.Status = "failed"
		rec.Error = turnErr.Error()
	}

	if err := o.history.RecordTurn(context.WithoutCancel(ctx), rec); err != nil {
		o.log.Warn().Err(err).Msg("could not record turn")
	}
}

// RegisterAgent registers an agent definition idempotently by name.
func (o *Orchestrator) RegisterAgent(ctx context.Context, req domain.AgentCreateRequest) (*platform.Agent, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return EnsureAgent(ctx, o.client, platform.AgentSpec{
		Name:         req.Name,
		Model:        req.Model,
		Instructions: req.Instructions,
	}, o.log)
}

// History lists recent turn audit rows, newest first.
func (o *Orchestrator) History(ctx context.Context, threadID string, limit int) ([]domain.TurnRecord, error) {
	if o.history == nil {
		return nil, &domain.ConfigError{Msg: "turn history not configured"}
	}
	return o.history.ListTurns(ctx, threadID, limit)
}
