package platform

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/bridgeware/agentbridge/internal/domain"
	"github.com/bridgeware/agentbridge/internal/logging"
)

// defaultRequestTimeout bounds every non-streaming platform call.
const defaultRequestTimeout = 60 * time.Second

// HTTPClient is the REST implementation of Client.
type HTTPClient struct {
	base       string
	apiVersion string
	cred       Credential
	hc         *http.Client
	// sc has no client-level timeout; streamed runs are bounded by ctx.
	sc  *http.Client
	log *logging.Logger
}

// NewHTTPClient creates a platform client for the given endpoint.
func NewHTTPClient(endpoint, apiVersion string, cred Credential, log *logging.Logger) (*HTTPClient, error) {
	if endpoint == "" {
		return nil, &domain.ConfigError{Msg: "platform endpoint not set"}
	}
	return &HTTPClient{
		base:       strings.TrimRight(endpoint, "/"),
		apiVersion: apiVersion,
		cred:       cred,
		hc:         &http.Client{Timeout: defaultRequestTimeout},
		sc:         &http.Client{},
		log:        log.Sub("platform"),
	}, nil
}

func (c *HTTPClient) url(path string) string {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return c.base + path + sep + "api-version=" + c.apiVersion
}

type apiError struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (c *HTTPClient) newRequest(ctx context.Context, method, path string, body io.Reader, contentType string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.url(path), body)
	if err != nil {
		return nil, err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if err := c.cred.Authorize(req); err != nil {
		return nil, err
	}
	return req, nil
}

// do issues a JSON request and decodes the JSON response into out (if non-nil).
func (c *HTTPClient) do(ctx context.Context, op, method, path string, body, out any) error {
	var rd io.Reader
	contentType := ""
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%s: marshaling request: %w", op, err)
		}
		rd = bytes.NewReader(payload)
		contentType = "application/json"
	}

	req, err := c.newRequest(ctx, method, path, rd, contentType)
	if err != nil {
		return &domain.RemoteError{Op: op, Err: err}
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return &domain.RemoteError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return &domain.RemoteError{Op: op, Err: err}
	}

	if err := checkStatus(op, path, resp.StatusCode, data); err != nil {
		return err
	}

	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return &domain.RemoteError{Op: op, Err: fmt.Errorf("decoding response: %w", err)}
		}
	}
	return nil
}

func checkStatus(op, path string, status int, body []byte) error {
	if status >= 200 && status < 300 {
		return nil
	}

	msg := strings.TrimSpace(string(body))
	var ae apiError
	if json.Unmarshal(body, &ae) == nil && ae.Error.Message != "" {
		msg = ae.Error.Message
	}

	if status == http.StatusNotFound {
		return &domain.NotFoundError{Kind: resourceKind(path), ID: msg}
	}
	return &domain.RemoteError{Op: op, Err: fmt.Errorf("platform returned %d: %s", status, msg)}
}

// resourceKind guesses the resource family from the request path, for
// not-found reporting.
func resourceKind(path string) string {
	switch {
	case strings.Contains(path, "/runs"):
		return "run"
	case strings.Contains(path, "/messages"):
		return "message"
	case strings.Contains(path, "/threads"):
		return "thread"
	case strings.Contains(path, "/files"):
		return "file"
	case strings.Contains(path, "/vector_stores"):
		return "vector store"
	case strings.Contains(path, "/assistants"):
		return "agent"
	}
	return "resource"
}

// --- agents ---

func (c *HTTPClient) CreateAgent(ctx context.Context, spec AgentSpec) (*Agent, error) {
	var agent Agent
	if err := c.do(ctx, "create agent", http.MethodPost, "/assistants", spec, &agent); err != nil {
		return nil, err
	}
	c.log.Debug().Str("agentId", agent.ID).Str("name", agent.Name).Msg("agent created")
	return &agent, nil
}

func (c *HTTPClient) ListAgents(ctx context.Context) ([]Agent, error) {
	var page struct {
		Data []Agent `json:"data"`
	}
	if err := c.do(ctx, "list agents", http.MethodGet, "/assistants?limit=100", nil, &page); err != nil {
		return nil, err
	}
	return page.Data, nil
}

func (c *HTTPClient) DeleteAgent(ctx context.Context, agentID string) error {
	return c.do(ctx, "delete agent", http.MethodDelete, "/assistants/"+agentID, nil, nil)
}

// --- threads ---

func (c *HTTPClient) CreateThread(ctx context.Context, spec ThreadSpec) (*Thread, error) {
	body := map[string]any{}
	if len(spec.VectorStoreIDs) > 0 {
		body["tool_resources"] = map[string]any{
			"file_search": map[string]any{"vector_store_ids": spec.VectorStoreIDs},
		}
	}
	var thread Thread
	if err := c.do(ctx, "create thread", http.MethodPost, "/threads", body, &thread); err != nil {
		return nil, err
	}
	c.log.Debug().Str("threadId", thread.ID).Msg("thread created")
	return &thread, nil
}

// --- messages ---

func (c *HTTPClient) CreateMessage(ctx context.Context, threadID string, spec MessageSpec) (*Message, error) {
	body := map[string]any{
		"role":    spec.Role,
		"content": spec.Content,
	}
	if len(spec.AttachmentFileIDs) > 0 {
		attachments := make([]map[string]any, 0, len(spec.AttachmentFileIDs))
		for _, id := range spec.AttachmentFileIDs {
			attachments = append(attachments, map[string]any{
				"file_id": id,
				"tools":   []map[string]string{{"type": "code_interpreter"}, {"type": "file_search"}},
			})
		}
		body["attachments"] = attachments
	}
	var msg Message
	if err := c.do(ctx, "create message", http.MethodPost, "/threads/"+threadID+"/messages", body, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// ListMessages returns the thread's messages, newest first.
func (c *HTTPClient) ListMessages(ctx context.Context, threadID string) ([]Message, error) {
	var page struct {
		Data []Message `json:"data"`
	}
	path := "/threads/" + threadID + "/messages?order=desc&limit=100"
	if err := c.do(ctx, "list messages", http.MethodGet, path, nil, &page); err != nil {
		return nil, err
	}
	return page.Data, nil
}

// --- runs ---

// runWire carries the fields of a run plus the pending tool calls buried in
// required_action.
type runWire struct {
	Run
	RequiredAction *struct {
		SubmitToolOutputs *struct {
			ToolCalls []struct {
				ID       string `json:"id"`
				Function struct {
					Name      string `json:"name"`
					Arguments string `json:"arguments"`
				} `json:"function"`
			} `json:"tool_calls"`
		} `json:"submit_tool_outputs"`
	} `json:"required_action"`
}

func (w *runWire) toRun() *Run {
	run := w.Run
	if w.RequiredAction != nil && w.RequiredAction.SubmitToolOutputs != nil {
		for _, tc := range w.RequiredAction.SubmitToolOutputs.ToolCalls {
			run.ToolCalls = append(run.ToolCalls, ToolCall{
				ID:        tc.ID,
				Name:      tc.Function.Name,
				Arguments: tc.Function.Arguments,
			})
		}
	}
	return &run
}

func runBody(agentID string, opts RunOptions, stream bool) map[string]any {
	body := map[string]any{"assistant_id": agentID}
	if len(opts.Tools) > 0 {
		body["tools"] = opts.Tools
	}
	if stream {
		body["stream"] = true
	}
	return body
}

func (c *HTTPClient) CreateRun(ctx context.Context, threadID, agentID string, opts RunOptions) (*Run, error) {
	var wire runWire
	path := "/threads/" + threadID + "/runs"
	if err := c.do(ctx, "create run", http.MethodPost, path, runBody(agentID, opts, false), &wire); err != nil {
		return nil, err
	}
	return wire.toRun(), nil
}

func (c *HTTPClient) GetRun(ctx context.Context, threadID, runID string) (*Run, error) {
	var wire runWire
	path := "/threads/" + threadID + "/runs/" + runID
	if err := c.do(ctx, "get run", http.MethodGet, path, nil, &wire); err != nil {
		return nil, err
	}
	return wire.toRun(), nil
}

func (c *HTTPClient) SubmitToolOutputs(ctx context.Context, threadID, runID string, outputs []ToolOutput) (*Run, error) {
	var wire runWire
	path := "/threads/" + threadID + "/runs/" + runID + "/submit_tool_outputs"
	body := map[string]any{"tool_outputs": outputs}
	if err := c.do(ctx, "submit tool outputs", http.MethodPost, path, body, &wire); err != nil {
		return nil, err
	}
	return wire.toRun(), nil
}

// --- streaming ---

func (c *HTTPClient) StreamRun(ctx context.Context, threadID, agentID string, opts RunOptions) (<-chan RunEvent, error) {
	path := "/threads/" + threadID + "/runs"
	return c.openStream(ctx, "stream run", path, runBody(agentID, opts, true))
}

func (c *HTTPClient) SubmitToolOutputsStream(ctx context.Context, threadID, runID string, outputs []ToolOutput) (<-chan RunEvent, error) {
	path := "/threads/" + threadID + "/runs/" + runID + "/submit_tool_outputs"
	body := map[string]any{"tool_outputs": outputs, "stream": true}
	return c.openStream(ctx, "stream tool outputs", path, body)
}

func (c *HTTPClient) openStream(ctx context.Context, op, path string, body any) (<-chan RunEvent, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("%s: marshaling request: %w", op, err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, path, bytes.NewReader(payload), "application/json")
	if err != nil {
		return nil, &domain.RemoteError{Op: op, Err: err}
	}
	req.Header.Set("Accept", "text/event-stream")

	resp, err := c.sc.Do(req)
	if err != nil {
		return nil, &domain.RemoteError{Op: op, Err: err}
	}
	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		return nil, checkStatus(op, path, resp.StatusCode, data)
	}

	events := make(chan RunEvent)
	go c.consumeStream(ctx, resp.Body, events)
	return events, nil
}

func (c *HTTPClient) consumeStream(ctx context.Context, body io.ReadCloser, events chan<- RunEvent) {
	defer close(events)
	defer body.Close()

	sc := newSSEScanner(body)
	for sc.Next() {
		ev := parseStreamEvent(sc.Event(), sc.Data())
		select {
		case events <- ev:
		case <-ctx.Done():
			return
		}
		if ev.Kind == EventDone || ev.Kind == EventError {
			return
		}
	}
}

func parseStreamEvent(name, data string) RunEvent {
	switch {
	case name == "thread.message.delta":
		var delta struct {
			Delta struct {
				Content []ContentPart `json:"content"`
			} `json:"delta"`
		}
		if err := json.Unmarshal([]byte(data), &delta); err != nil {
			return RunEvent{Kind: EventError, Err: "malformed message delta: " + err.Error()}
		}
		var text strings.Builder
		for _, part := range delta.Delta.Content {
			if part.Type == "text" && part.Text != nil {
				text.WriteString(part.Text.Value)
			}
		}
		return RunEvent{Kind: EventMessageDelta, Delta: text.String()}

	case name == "thread.message.created" || name == "thread.message.completed":
		var msg Message
		if err := json.Unmarshal([]byte(data), &msg); err != nil {
			return RunEvent{Kind: EventError, Err: "malformed message event: " + err.Error()}
		}
		kind := EventMessageCreated
		if name == "thread.message.completed" {
			kind = EventMessageCompleted
		}
		return RunEvent{Kind: kind, Message: &msg}

	case strings.HasPrefix(name, "thread.run.step"):
		return RunEvent{Kind: EventRunStep, Step: strings.TrimPrefix(name, "thread.run.step.")}

	case strings.HasPrefix(name, "thread.run."):
		var wire runWire
		if err := json.Unmarshal([]byte(data), &wire); err != nil {
			return RunEvent{Kind: EventError, Err: "malformed run event: " + err.Error()}
		}
		return RunEvent{Kind: EventRunStatus, Run: wire.toRun()}

	case name == "error":
		return RunEvent{Kind: EventError, Err: errMessage(data)}

	case name == "done" || data == "[DONE]":
		return RunEvent{Kind: EventDone}

	default:
		return RunEvent{Kind: EventUnhandled, Step: name}
	}
}

func errMessage(data string) string {
	var ae apiError
	if json.Unmarshal([]byte(data), &ae) == nil && ae.Error.Message != "" {
		return ae.Error.Message
	}
	if data == "" {
		return "stream error"
	}
	return data
}

// --- files ---

func (c *HTTPClient) UploadFile(ctx context.Context, filename string, data []byte) (*File, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	fw, err := w.CreateFormFile("file", filename)
	if err != nil {
		return nil, &domain.RemoteError{Op: "upload file", Err: err}
	}
	if _, err := fw.Write(data); err != nil {
		return nil, &domain.RemoteError{Op: "upload file", Err: err}
	}
	if err := w.WriteField("purpose", "assistants"); err != nil {
		return nil, &domain.RemoteError{Op: "upload file", Err: err}
	}
	if err := w.Close(); err != nil {
		return nil, &domain.RemoteError{Op: "upload file", Err: err}
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/files", &buf, w.FormDataContentType())
	if err != nil {
		return nil, &domain.RemoteError{Op: "upload file", Err: err}
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, &domain.RemoteError{Op: "upload file", Err: err}
	}
	defer resp.Body.Close()

	respData, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &domain.RemoteError{Op: "upload file", Err: err}
	}
	if err := checkStatus("upload file", "/files", resp.StatusCode, respData); err != nil {
		return nil, err
	}

	var file File
	if err := json.Unmarshal(respData, &file); err != nil {
		return nil, &domain.RemoteError{Op: "upload file", Err: err}
	}
	c.log.Debug().Str("fileId", file.ID).Str("filename", filename).Msg("file uploaded")
	return &file, nil
}

func (c *HTTPClient) FileContent(ctx context.Context, fileID string) ([]byte, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/files/"+fileID+"/content", nil, "")
	if err != nil {
		return nil, &domain.RemoteError{Op: "download file", Err: err}
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, &domain.RemoteError{Op: "download file", Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &domain.RemoteError{Op: "download file", Err: err}
	}
	if err := checkStatus("download file", "/files", resp.StatusCode, data); err != nil {
		return nil, err
	}
	return data, nil
}

func (c *HTTPClient) DeleteFile(ctx context.Context, fileID string) error {
	return c.do(ctx, "delete file", http.MethodDelete, "/files/"+fileID, nil, nil)
}

// --- vector stores ---

func (c *HTTPClient) CreateVectorStore(ctx context.Context, name string, fileIDs []string) (*VectorStore, error) {
	body := map[string]any{"name": name, "file_ids": fileIDs}
	var vs VectorStore
	if err := c.do(ctx, "create vector store", http.MethodPost, "/vector_stores", body, &vs); err != nil {
		return nil, err
	}
	return &vs, nil
}

func (c *HTTPClient) DeleteVectorStore(ctx context.Context, storeID string) error {
	return c.do(ctx, "delete vector store", http.MethodDelete, "/vector_stores/"+storeID, nil, nil)
}

var _ Client = (*HTTPClient)(nil)
