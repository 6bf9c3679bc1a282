package agent

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bridgeware/agentbridge/internal/config"
	"github.com/bridgeware/agentbridge/internal/domain"
	"github.com/bridgeware/agentbridge/internal/platform"
	"github.com/bridgeware/agentbridge/internal/storage"
	"github.com/bridgeware/agentbridge/internal/store"
	"github.com/bridgeware/agentbridge/internal/tools"
)

func testConfig() *config.Config {
	cfg := config.Defaults()
	cfg.Platform.AgentID = "asst_configured"
	cfg.Run.PollInterval = time.Millisecond
	cfg.Run.MaxAttempts = 5
	cfg.Run.Timeout = time.Second
	return &cfg
}

func newTestOrchestrator(mock *platform.Mock, cfg *config.Config) (*Orchestrator, *storage.MemoryStore, *store.MemoryHistory) {
	blobs := storage.NewMemoryStore()
	history := store.NewMemoryHistory()
	reg := tools.NewRegistry(testLog())
	reg.Register(tools.CityWeather{})
	return NewOrchestrator(mock, blobs, reg, history, cfg, testLog()), blobs, history
}

func TestChatPersistedHappyPath(t *testing.T) {
	mock := &platform.Mock{Reply: "All good."}
	o, _, history := newTestOrchestrator(mock, testConfig())

	result, err := o.ChatPersisted(context.Background(), domain.ChatTurnRequest{Message: "hello"})
	require.NoError(t, err)
	assert.Equal(t, "All good.", result.Content)
	assert.NotEmpty(t, result.ThreadID)
	assert.NotEmpty(t, result.IntermediateSteps)

	// The user message reached the resolved thread.
	require.Len(t, mock.Messages[result.ThreadID], 1)
	assert.Equal(t, "hello", mock.Messages[result.ThreadID][0].Content)

	turns, err := history.ListTurns(context.Background(), "", 10)
	require.NoError(t, err)
	require.Len(t, turns, 1)
	assert.Equal(t, "persisted", turns[0].Mode)
	assert.Equal(t, "completed", turns[0].Status)
	assert.Equal(t, result.ThreadID, turns[0].ThreadID)
}

func TestChatPersistedThreadContinuity(t *testing.T) {
	created := 0
	mock := &platform.Mock{
		CreateThreadFunc: func(ctx context.Context, spec platform.ThreadSpec) (*platform.Thread, error) {
			created++
			return &platform.Thread{ID: "thread_fresh"}, nil
		},
	}
	o, _, _ := newTestOrchestrator(mock, testConfig())

	result, err := o.ChatPersisted(context.Background(), domain.ChatTurnRequest{
		Message:  "again",
		ThreadID: "thread_kept",
	})
	require.NoError(t, err)
	assert.Equal(t, "thread_kept", result.ThreadID)
	assert.Zero(t, created)
}

func TestChatPersistedValidation(t *testing.T) {
	o, _, history := newTestOrchestrator(&platform.Mock{}, testConfig())

	_, err := o.ChatPersisted(context.Background(), domain.ChatTurnRequest{})

	var valErr *domain.ValidationError
	require.ErrorAs(t, err, &valErr)
	assert.Contains(t, valErr.Error(), "no message found in request")

	turns, _ := history.ListTurns(context.Background(), "", 10)
	require.Len(t, turns, 1)
	assert.Equal(t, "failed", turns[0].Status)
}

func TestChatPersistedRequiresAgentID(t *testing.T) {
	cfg := testConfig()
	cfg.Platform.AgentID = ""
	o, _, _ := newTestOrchestrator(&platform.Mock{}, cfg)

	_, err := o.ChatPersisted(context.Background(), domain.ChatTurnRequest{Message: "hi"})

	var cfgErr *domain.ConfigError
	require.ErrorAs(t, err, &cfgErr)
}

func TestChatDirectCreatesAndDeletesAgent(t *testing.T) {
	mock := &platform.Mock{Reply: "Computed."}
	o, _, _ := newTestOrchestrator(mock, testConfig())

	result, err := o.ChatDirect(context.Background(), domain.ChatTurnRequest{Message: "run this"})
	require.NoError(t, err)
	assert.Equal(t, "Computed.", result.Content)
	// Direct turns do not hand out a thread capability.
	assert.Empty(t, result.ThreadID)

	require.Len(t, mock.Agents, 1)
	assert.Contains(t, mock.DeletedAgents, mock.Agents[0].ID)
}

func TestChatDirectKeepsAgentWhenConfigured(t *testing.T) {
	keep := false
	cfg := testConfig()
	cfg.Direct.DeleteAgent = &keep

	mock := &platform.Mock{}
	o, _, _ := newTestOrchestrator(mock, cfg)

	_, err := o.ChatDirect(context.Background(), domain.ChatTurnRequest{Message: "run this"})
	require.NoError(t, err)
	assert.Empty(t, mock.DeletedAgents)
}

func TestChatDirectRelaysGeneratedFiles(t *testing.T) {
	mock := &platform.Mock{}
	_, err := mock.UploadFile(context.Background(), "result.csv", []byte("x,y\n1,2\n"))
	require.NoError(t, err)
	var remoteID string
	for id := range mock.Files {
		remoteID = id
	}

	mock.ListMessagesFunc = func(ctx context.Context, threadID string) ([]platform.Message, error) {
		return []platform.Message{{
			ID:   "msg_1",
			Role: "assistant",
			Content: []platform.ContentPart{{
				Type: "text",
				Text: &platform.TextPart{
					Value: "Here is the file.",
					Annotations: []platform.Annotation{{
						Kind:   platform.AnnotationFilePath,
						Text:   "sandbox:/mnt/data/result.csv",
						FileID: remoteID,
					}},
				},
			}},
		}}, nil
	}

	o, blobs, history := newTestOrchestrator(mock, testConfig())
	result, err := o.ChatDirect(context.Background(), domain.ChatTurnRequest{Message: "make a csv"})
	require.NoError(t, err)

	require.Len(t, result.Files, 1)
	assert.Equal(t, "result.csv", result.Files[0].LocalName)
	assert.NotEmpty(t, result.Files[0].BlobURL)
	assert.Len(t, blobs.Names(), 1)
	assert.Contains(t, mock.DeletedFiles, remoteID)

	turns, _ := history.ListTurns(context.Background(), "", 10)
	require.Len(t, turns, 1)
	assert.Equal(t, 1, turns[0].Files)
	assert.Equal(t, len("x,y\n1,2\n"), turns[0].Bytes)
}

func TestChatStreamForwardsEvents(t *testing.T) {
	mock := &platform.Mock{Reply: "streamed reply"}
	o, _, _ := newTestOrchestrator(mock, testConfig())

	var kinds []platform.RunEventKind
	result, err := o.ChatStream(context.Background(), domain.ChatTurnRequest{Message: "hi"},
		func(ev platform.RunEvent) { kinds = append(kinds, ev.Kind) })
	require.NoError(t, err)
	assert.Equal(t, "streamed reply", result.Content)
	assert.Contains(t, kinds, platform.EventMessageDelta)
	assert.Contains(t, kinds, platform.EventDone)
}

// assistantFileMessage builds a thread listing whose reply carries a
// generated-file annotation pointing at fileID.
func assistantFileMessage(text, path, fileID string) []platform.Message {
	return []platform.Message{{
		ID:   "msg_1",
		Role: "assistant",
		Content: []platform.ContentPart{{
			Type: "text",
			Text: &platform.TextPart{
				Value: text,
				Annotations: []platform.Annotation{{
					Kind:   platform.AnnotationFilePath,
					Text:   path,
					FileID: fileID,
				}},
			},
		}},
	}}
}

func TestChatStreamRelaysFilesWithoutCompletedMessage(t *testing.T) {
	// The default mock stream ends with a run-status and done event but no
	// completed-message event, so the thread read-back is the only way the
	// annotation can surface.
	mock := &platform.Mock{Reply: "Here is the plot."}
	uploaded, err := mock.UploadFile(context.Background(), "plot.png", []byte("png-bytes"))
	require.NoError(t, err)

	mock.ListMessagesFunc = func(ctx context.Context, threadID string) ([]platform.Message, error) {
		return assistantFileMessage("Here is the plot.", "sandbox:/mnt/data/plot.png", uploaded.ID), nil
	}

	o, blobs, _ := newTestOrchestrator(mock, testConfig())
	result, err := o.ChatStream(context.Background(), domain.ChatTurnRequest{Message: "plot it"},
		func(platform.RunEvent) {})
	require.NoError(t, err)

	assert.Equal(t, "Here is the plot.", result.Content)
	require.Len(t, result.Files, 1)
	assert.Equal(t, "plot.png", result.Files[0].LocalName)
	assert.NotEmpty(t, result.Files[0].BlobURL)
	assert.Len(t, blobs.Names(), 1)
}

func TestChatStreamKeepsDeltasWhenThreadReadFails(t *testing.T) {
	mock := &platform.Mock{
		Reply: "partial answer",
		ListMessagesFunc: func(ctx context.Context, threadID string) ([]platform.Message, error) {
			return nil, errors.New("listing unavailable")
		},
	}
	o, _, _ := newTestOrchestrator(mock, testConfig())

	result, err := o.ChatStream(context.Background(), domain.ChatTurnRequest{Message: "hi"},
		func(platform.RunEvent) {})
	require.NoError(t, err)
	assert.Equal(t, "partial answer", result.Content)
	assert.Empty(t, result.Files)
}

func TestTurnsLeaveNoTempFiles(t *testing.T) {
	tmp := t.TempDir()
	t.Setenv("TMPDIR", tmp)
	ctx := context.Background()

	assertClean := func(t *testing.T) {
		t.Helper()
		entries, err := os.ReadDir(tmp)
		require.NoError(t, err)
		assert.Empty(t, entries)
	}

	t.Run("attachment upload", func(t *testing.T) {
		o, blobs, _ := newTestOrchestrator(&platform.Mock{}, testConfig())
		_, err := blobs.Upload(ctx, "input.csv", []byte("a,b\n"))
		require.NoError(t, err)

		_, err = o.ChatPersisted(ctx, domain.ChatTurnRequest{Message: "analyze", File: "input.csv"})
		require.NoError(t, err)
		assertClean(t)
	})

	t.Run("attachment upload failure", func(t *testing.T) {
		mock := &platform.Mock{
			UploadFileFunc: func(ctx context.Context, filename string, data []byte) (*platform.File, error) {
				return nil, errors.New("storage full")
			},
		}
		o, blobs, _ := newTestOrchestrator(mock, testConfig())
		_, err := blobs.Upload(ctx, "input.csv", []byte("a,b\n"))
		require.NoError(t, err)

		_, err = o.ChatPersisted(ctx, domain.ChatTurnRequest{Message: "analyze", File: "input.csv"})
		require.Error(t, err)
		assertClean(t)
	})

	t.Run("file relay", func(t *testing.T) {
		mock := &platform.Mock{}
		uploaded, err := mock.UploadFile(ctx, "out.csv", []byte("x,y\n"))
		require.NoError(t, err)
		mock.ListMessagesFunc = func(ctx context.Context, threadID string) ([]platform.Message, error) {
			return assistantFileMessage("Done.", "sandbox:/mnt/data/out.csv", uploaded.ID), nil
		}

		o, _, _ := newTestOrchestrator(mock, testConfig())
		_, err = o.ChatDirect(ctx, domain.ChatTurnRequest{Message: "make a csv"})
		require.NoError(t, err)
		assertClean(t)
	})

	t.Run("file relay failure", func(t *testing.T) {
		mock := &platform.Mock{}
		uploaded, err := mock.UploadFile(ctx, "out.csv", []byte("x,y\n"))
		require.NoError(t, err)
		mock.ListMessagesFunc = func(ctx context.Context, threadID string) ([]platform.Message, error) {
			return assistantFileMessage("Done.", "sandbox:/mnt/data/out.csv", uploaded.ID), nil
		}

		o, blobs, _ := newTestOrchestrator(mock, testConfig())
		blobs.UploadErr = errors.New("container gone")

		_, err = o.ChatDirect(ctx, domain.ChatTurnRequest{Message: "make a csv"})
		require.Error(t, err)
		assertClean(t)
	})

	t.Run("docs turn", func(t *testing.T) {
		o, _, _ := newTestOrchestrator(&platform.Mock{}, testConfig())
		_, err := o.ChatDocs(ctx, "summarize", []Doc{{Name: "report.pdf", Data: []byte("%PDF")}})
		require.NoError(t, err)
		assertClean(t)
	})
}

func TestRegisterAgentIdempotent(t *testing.T) {
	mock := &platform.Mock{}
	o, _, _ := newTestOrchestrator(mock, testConfig())
	ctx := context.Background()

	first, err := o.RegisterAgent(ctx, domain.AgentCreateRequest{Name: "helper", Model: "gpt-4o"})
	require.NoError(t, err)

	second, err := o.RegisterAgent(ctx, domain.AgentCreateRequest{Name: "helper", Model: "gpt-4o"})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Len(t, mock.Agents, 1)
}

func TestRegisterAgentListFailureDegradesToCreate(t *testing.T) {
	mock := &platform.Mock{
		ListAgentsFunc: func(ctx context.Context) ([]platform.Agent, error) {
			return nil, &domain.RemoteError{Op: "list agents", Err: context.DeadlineExceeded}
		},
	}
	o, _, _ := newTestOrchestrator(mock, testConfig())

	agent, err := o.RegisterAgent(context.Background(), domain.AgentCreateRequest{Name: "helper", Model: "gpt-4o"})
	require.NoError(t, err)
	assert.NotEmpty(t, agent.ID)
}

func TestRegisterAgentValidation(t *testing.T) {
	o, _, _ := newTestOrchestrator(&platform.Mock{}, testConfig())

	_, err := o.RegisterAgent(context.Background(), domain.AgentCreateRequest{Model: "gpt-4o"})
	var valErr *domain.ValidationError
	require.ErrorAs(t, err, &valErr)
}

func TestHistoryNotConfigured(t *testing.T) {
	reg := tools.NewRegistry(testLog())
	o := NewOrchestrator(&platform.Mock{}, nil, reg, nil, testConfig(), testLog())

	_, err := o.History(context.Background(), "", 10)
	var cfgErr *domain.ConfigError
	require.ErrorAs(t, err, &cfgErr)
}
