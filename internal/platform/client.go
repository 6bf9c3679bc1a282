// Package platform talks to the managed AI-agent service.
//
// The client is a direct, typed HTTP client for the platform's REST contract
// (agents, threads, messages, runs, files, vector stores) rather than a
// vendor SDK wrapper. Hand-writing the surface we actually use keeps the
// request/response types explicit and makes the wire contract testable
// against httptest doubles.
package platform

import (
	"context"
	"encoding/json"
)

// RunStatus is the lifecycle state of a run.
type RunStatus string

const (
	RunQueued         RunStatus = "queued"
	RunInProgress     RunStatus = "in_progress"
	RunRequiresAction RunStatus = "requires_action"
	RunCompleted      RunStatus = "completed"
	RunFailed         RunStatus = "failed"
	RunCancelled      RunStatus = "cancelled"
	RunExpired        RunStatus = "expired"
)

// Terminal reports whether the status ends a run.
func (s RunStatus) Terminal() bool {
	switch s {
	case RunCompleted, RunFailed, RunCancelled, RunExpired:
		return true
	}
	return false
}

// Agent is a named model + instructions + tools definition registered with
// the platform and reused across runs.
type Agent struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Model        string `json:"model"`
	Instructions string `json:"instructions"`
}

// AgentSpec describes an agent to create.
type AgentSpec struct {
	Name         string     `json:"name"`
	Model        string     `json:"model"`
	Instructions string     `json:"instructions"`
	Tools        []ToolSpec `json:"tools,omitempty"`
}

// ToolSpec enables a tool on an agent or run. Type is one of
// "code_interpreter", "file_search", or "function".
type ToolSpec struct {
	Type     string        `json:"type"`
	Function *FunctionSpec `json:"function,omitempty"`
}

// FunctionSpec describes a callable function tool.
type FunctionSpec struct {
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Parameters  json.RawMessage `json:"parameters,omitempty"`
}

// CodeInterpreterTool returns the spec for the server-side code interpreter.
func CodeInterpreterTool() ToolSpec { return ToolSpec{Type: "code_interpreter"} }

// FileSearchTool returns the spec for retrieval over vector stores.
func FileSearchTool() ToolSpec { return ToolSpec{Type: "file_search"} }

// Thread is a server-side conversation context. This service holds only the
// id, as a capability token.
type Thread struct {
	ID string `json:"id"`
}

// ThreadSpec describes a thread to create.
type ThreadSpec struct {
	// VectorStoreIDs attach file_search resources to the thread.
	VectorStoreIDs []string
}

// MessageSpec is an outbound message.
type MessageSpec struct {
	Role    string
	Content string

	// AttachmentFileIDs reference platform files to attach to the message.
	AttachmentFileIDs []string
}

// Message is one message in a thread.
type Message struct {
	ID      string        `json:"id"`
	Role    string        `json:"role"`
	Content []ContentPart `json:"content"`
}

// Text concatenates the message's text parts.
func (m *Message) Text() string {
	var out string
	for _, part := range m.Content {
		if part.Type == "text" && part.Text != nil {
			out += part.Text.Value
		}
	}
	return out
}

// Annotations returns the annotations of all text parts, in content order.
func (m *Message) Annotations() []Annotation {
	var out []Annotation
	for _, part := range m.Content {
		if part.Type == "text" && part.Text != nil {
			out = append(out, part.Text.Annotations...)
		}
	}
	return out
}

// ContentPart is one block of message content.
type ContentPart struct {
	Type string    `json:"type"`
	Text *TextPart `json:"text,omitempty"`
}

// TextPart is a text block with its annotations.
type TextPart struct {
	Value       string       `json:"value"`
	Annotations []Annotation `json:"annotations,omitempty"`
}

// Run is one execution of an agent against a thread.
type Run struct {
	ID        string     `json:"id"`
	ThreadID  string     `json:"thread_id"`
	AgentID   string     `json:"assistant_id"`
	Status    RunStatus  `json:"status"`
	LastError *RunError  `json:"last_error,omitempty"`
	ToolCalls []ToolCall `json:"-"`
}

// RunError is the platform's failure report on a run.
type RunError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ToolCall is a function invocation the run is waiting on.
type ToolCall struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// ToolOutput answers a ToolCall.
type ToolOutput struct {
	CallID string `json:"tool_call_id"`
	Output string `json:"output"`
}

// RunOptions tune run creation.
type RunOptions struct {
	// Tools override or extend the agent's tools for this run.
	Tools []ToolSpec
}

// File is an entry in the platform's file store.
type File struct {
	ID       string `json:"id"`
	Filename string `json:"filename"`
}

// VectorStore indexes uploaded files for retrieval.
type VectorStore struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// RunEventKind classifies streamed run events.
type RunEventKind string

const (
	EventMessageDelta     RunEventKind = "message_delta"
	EventMessageCreated   RunEventKind = "message_created"
	EventMessageCompleted RunEventKind = "message_completed"
	EventRunStatus        RunEventKind = "run_status"
	EventRunStep          RunEventKind = "run_step"
	EventError            RunEventKind = "error"
	EventDone             RunEventKind = "done"
	EventUnhandled        RunEventKind = "unhandled"
)

// RunEvent is one event from a streamed run.
type RunEvent struct {
	Kind    RunEventKind
	Delta   string   // EventMessageDelta: incremental assistant text
	Message *Message // EventMessageCreated / EventMessageCompleted
	Run     *Run     // EventRunStatus
	Step    string   // EventRunStep: step type description
	Err     string   // EventError
}

// Client is the agent-platform surface the orchestration core depends on.
type Client interface {
	CreateAgent(ctx context.Context, spec AgentSpec) (*Agent, error)
	ListAgents(ctx context.Context) ([]Agent, error)
	DeleteAgent(ctx context.Context, agentID string) error

	CreateThread(ctx context.Context, spec ThreadSpec) (*Thread, error)
	CreateMessage(ctx context.Context, threadID string, spec MessageSpec) (*Message, error)
	ListMessages(ctx context.Context, threadID string) ([]Message, error)

	CreateRun(ctx context.Context, threadID, agentID string, opts RunOptions) (*Run, error)
	GetRun(ctx context.Context, threadID, runID string) (*Run, error)
	SubmitToolOutputs(ctx context.Context, threadID, runID string, outputs []ToolOutput) (*Run, error)

	// StreamRun creates a run and streams its events. The channel is closed
	// after a terminal event or when ctx is cancelled.
	StreamRun(ctx context.Context, threadID, agentID string, opts RunOptions) (<-chan RunEvent, error)

	// SubmitToolOutputsStream answers a requires_action run inside a stream
	// and resumes event delivery on the returned channel.
	SubmitToolOutputsStream(ctx context.Context, threadID, runID string, outputs []ToolOutput) (<-chan RunEvent, error)

	UploadFile(ctx context.Context, filename string, data []byte) (*File, error)
	FileContent(ctx context.Context, fileID string) ([]byte, error)
	DeleteFile(ctx context.Context, fileID string) error

	CreateVectorStore(ctx context.Context, name string, fileIDs []string) (*VectorStore, error)
	DeleteVectorStore(ctx context.Context, storeID string) error
}
