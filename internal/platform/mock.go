package platform

import (
	"context"
	"fmt"
	"sync"

	"github.com/bridgeware/agentbridge/internal/domain"
)

// Mock is a test double for Client. Zero value gives a happy-path platform:
// unique thread/run/file ids, immediately completed runs, and a canned
// assistant reply. Individual behaviors are overridden through func fields.
type Mock struct {
	mu  sync.Mutex
	seq int

	// Reply is the assistant text returned by the default ListMessages.
	Reply string

	// State captured by the default implementations, for assertions.
	Agents        []Agent
	Files         map[string][]byte
	FileNames     map[string]string
	Messages      map[string][]MessageSpec
	DeletedAgents []string
	DeletedFiles  []string
	DeletedStores []string

	CreateAgentFunc       func(ctx context.Context, spec AgentSpec) (*Agent, error)
	ListAgentsFunc        func(ctx context.Context) ([]Agent, error)
	DeleteAgentFunc       func(ctx context.Context, agentID string) error
	CreateThreadFunc      func(ctx context.Context, spec ThreadSpec) (*Thread, error)
	CreateMessageFunc     func(ctx context.Context, threadID string, spec MessageSpec) (*Message, error)
	ListMessagesFunc      func(ctx context.Context, threadID string) ([]Message, error)
	CreateRunFunc         func(ctx context.Context, threadID, agentID string, opts RunOptions) (*Run, error)
	GetRunFunc            func(ctx context.Context, threadID, runID string) (*Run, error)
	SubmitToolOutputsFunc func(ctx context.Context, threadID, runID string, outputs []ToolOutput) (*Run, error)
	StreamRunFunc         func(ctx context.Context, threadID, agentID string, opts RunOptions) (<-chan RunEvent, error)
	StreamToolOutputsFunc func(ctx context.Context, threadID, runID string, outputs []ToolOutput) (<-chan RunEvent, error)
	UploadFileFunc        func(ctx context.Context, filename string, data []byte) (*File, error)
	FileContentFunc       func(ctx context.Context, fileID string) ([]byte, error)
	DeleteFileFunc        func(ctx context.Context, fileID string) error
	CreateVectorStoreFunc func(ctx context.Context, name string, fileIDs []string) (*VectorStore, error)
	DeleteVectorStoreFunc func(ctx context.Context, storeID string) error
}

func (m *Mock) next(prefix string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	return fmt.Sprintf("%s_mock_%d", prefix, m.seq)
}

func (m *Mock) reply() string {
	if m.Reply != "" {
		return m.Reply
	}
	return "mock response"
}

func (m *Mock) CreateAgent(ctx context.Context, spec AgentSpec) (*Agent, error) {
	if m.CreateAgentFunc != nil {
		return m.CreateAgentFunc(ctx, spec)
	}
	agent := Agent{ID: m.next("asst"), Name: spec.Name, Model: spec.Model, Instructions: spec.Instructions}
	m.mu.Lock()
	m.Agents = append(m.Agents, agent)
	m.mu.Unlock()
	return &agent, nil
}

func (m *Mock) ListAgents(ctx context.Context) ([]Agent, error) {
	if m.ListAgentsFunc != nil {
		return m.ListAgentsFunc(ctx)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Agent, len(m.Agents))
	copy(out, m.Agents)
	return out, nil
}

func (m *Mock) DeleteAgent(ctx context.Context, agentID string) error {
	if m.DeleteAgentFunc != nil {
		return m.DeleteAgentFunc(ctx, agentID)
	}
	m.mu.Lock()
	m.DeletedAgents = append(m.DeletedAgents, agentID)
	m.mu.Unlock()
	return nil
}

func (m *Mock) CreateThread(ctx context.Context, spec ThreadSpec) (*Thread, error) {
	if m.CreateThreadFunc != nil {
		return m.CreateThreadFunc(ctx, spec)
	}
	return &Thread{ID: m.next("thread")}, nil
}

func (m *Mock) CreateMessage(ctx context.Context, threadID string, spec MessageSpec) (*Message, error) {
	if m.CreateMessageFunc != nil {
		return m.CreateMessageFunc(ctx, threadID, spec)
	}
	m.mu.Lock()
	if m.Messages == nil {
		m.Messages = make(map[string][]MessageSpec)
	}
	m.Messages[threadID] = append(m.Messages[threadID], spec)
	m.mu.Unlock()
	return &Message{
		ID:      m.next("msg"),
		Role:    spec.Role,
		Content: []ContentPart{{Type: "text", Text: &TextPart{Value: spec.Content}}},
	}, nil
}

func (m *Mock) ListMessages(ctx context.Context, threadID string) ([]Message, error) {
	if m.ListMessagesFunc != nil {
		return m.ListMessagesFunc(ctx, threadID)
	}
	return []Message{{
		ID:      m.next("msg"),
		Role:    "assistant",
		Content: []ContentPart{{Type: "text", Text: &TextPart{Value: m.reply()}}},
	}}, nil
}

func (m *Mock) CreateRun(ctx context.Context, threadID, agentID string, opts RunOptions) (*Run, error) {
	if m.CreateRunFunc != nil {
		return m.CreateRunFunc(ctx, threadID, agentID, opts)
	}
	return &Run{ID: m.next("run"), ThreadID: threadID, AgentID: agentID, Status: RunCompleted}, nil
}

func (m *Mock) GetRun(ctx context.Context, threadID, runID string) (*Run, error) {
	if m.GetRunFunc != nil {
		return m.GetRunFunc(ctx, threadID, runID)
	}
	return &Run{ID: runID, ThreadID: threadID, Status: RunCompleted}, nil
}

func (m *Mock) SubmitToolOutputs(ctx context.Context, threadID, runID string, outputs []ToolOutput) (*Run, error) {
	if m.SubmitToolOutputsFunc != nil {
		return m.SubmitToolOutputsFunc(ctx, threadID, runID, outputs)
	}
	return &Run{ID: runID, ThreadID: threadID, Status: RunCompleted}, nil
}

func (m *Mock) StreamRun(ctx context.Context, threadID, agentID string, opts RunOptions) (<-chan RunEvent, error) {
	if m.StreamRunFunc != nil {
		return m.StreamRunFunc(ctx, threadID, agentID, opts)
	}
	ch := make(chan RunEvent, 4)
	ch <- RunEvent{Kind: EventMessageDelta, Delta: m.reply()}
	ch <- RunEvent{Kind: EventRunStatus, Run: &Run{ID: m.next("run"), ThreadID: threadID, Status: RunCompleted}}
	ch <- RunEvent{Kind: EventDone}
	close(ch)
	return ch, nil
}

func (m *Mock) SubmitToolOutputsStream(ctx context.Context, threadID, runID string, outputs []ToolOutput) (<-chan RunEvent, error) {
	if m.StreamToolOutputsFunc != nil {
		return m.StreamToolOutputsFunc(ctx, threadID, runID, outputs)
	}
	ch := make(chan RunEvent, 2)
	ch <- RunEvent{Kind: EventRunStatus, Run: &Run{ID: runID, ThreadID: threadID, Status: RunCompleted}}
	ch <- RunEvent{Kind: EventDone}
	close(ch)
	return ch, nil
}

func (m *Mock) UploadFile(ctx context.Context, filename string, data []byte) (*File, error) {
	if m.UploadFileFunc != nil {
		return m.UploadFileFunc(ctx, filename, data)
	}
	id := m.next("assistant-file")
	m.mu.Lock()
	if m.Files == nil {
		m.Files = make(map[string][]byte)
		m.FileNames = make(map[string]string)
	}
	m.Files[id] = append([]byte(nil), data...)
	m.FileNames[id] = filename
	m.mu.Unlock()
	return &File{ID: id, Filename: filename}, nil
}

func (m *Mock) FileContent(ctx context.Context, fileID string) ([]byte, error) {
	if m.FileContentFunc != nil {
		return m.FileContentFunc(ctx, fileID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.Files[fileID]
	if !ok {
		return nil, &domain.NotFoundError{Kind: "file", ID: fileID}
	}
	return append([]byte(nil), data...), nil
}

func (m *Mock) DeleteFile(ctx context.Context, fileID string) error {
	if m.DeleteFileFunc != nil {
		return m.DeleteFileFunc(ctx, fileID)
	}
	m.mu.Lock()
	delete(m.Files, fileID)
	m.DeletedFiles = append(m.DeletedFiles, fileID)
	m.mu.Unlock()
	return nil
}

func (m *Mock) CreateVectorStore(ctx context.Context, name string, fileIDs []string) (*VectorStore, error) {
	if m.CreateVectorStoreFunc != nil {
		return m.CreateVectorStoreFunc(ctx, name, fileIDs)
	}
	return &VectorStore{ID: m.next("vs"), Name: name}, nil
}

func (m *Mock) DeleteVectorStore(ctx context.Context, storeID string) error {
	if m.DeleteVectorStoreFunc != nil {
		return m.DeleteVectorStoreFunc(ctx, storeID)
	}
	m.mu.Lock()
	m.DeletedStores = append(m.DeletedStores, storeID)
	m.mu.Unlock()
	return nil
}

var _ Client = (*Mock)(nil)
