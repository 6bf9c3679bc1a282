// Package domain defines the request and result types exchanged between the
// HTTP gateway and the agent orchestration core.
package domain

import "time"

// ChatTurnRequest is one conversation turn submitted by a caller.
type ChatTurnRequest struct {
	// Message is the user's text. Must be non-empty.
	Message string `json:"message"`

	// ThreadID, when present, continues an existing conversation thread.
	// The value is an opaque capability handed back from a previous turn.
	ThreadID string `json:"thread_id,omitempty"`

	// File optionally names a previously stored blob to attach to the turn.
	File string `json:"file,omitempty"`
}

// Validate rejects requests that must not reach the platform.
func (r ChatTurnRequest) Validate() error {
	if r.Message == "" {
		return &ValidationError{Msg: "no message found in request"}
	}
	return nil
}

// AgentCreateRequest registers a named agent definition with the platform.
type AgentCreateRequest struct {
	Name         string `json:"name"`
	Model        string `json:"model"`
	Instructions string `json:"instructions"`
}

// Validate checks the registration fields.
func (r AgentCreateRequest) Validate() error {
	if r.Name == "" {
		return &ValidationError{Msg: "agent name is required"}
	}
	if r.Model == "" {
		return &ValidationError{Msg: "agent model is required"}
	}
	return nil
}

// Source is a citation attached to assistant output. Missing fields are
// empty strings, decided when the annotation is parsed.
type Source struct {
	Quote string `json:"quote"`
	Title string `json:"title"`
	URL   string `json:"url"`
}

// FileRef describes a file the agent generated during a turn.
type FileRef struct {
	// RemoteFileID is the platform file-store identifier.
	RemoteFileID string `json:"remote_file_id"`

	// LocalName is the suggested filename, derived from the annotation's
	// text path basename.
	LocalName string `json:"local_filename"`

	// BlobURL is the durable public URL, set after the relay completes.
	BlobURL string `json:"blob_url,omitempty"`
}

// TurnResult is what a completed (or failed) turn returns to the caller.
// On failure Content carries a human-readable error string and Sources and
// Files are empty.
type TurnResult struct {
	Content           string    `json:"content"`
	Sources           []Source  `json:"sources"`
	Files             []FileRef `json:"files"`
	IntermediateSteps []string  `json:"intermediate_steps"`
	ThreadID          string    `json:"thread_id,omitempty"`
}

// TurnRecord is a persisted audit row for one completed turn.
type TurnRecord struct {
	ID        int64         `json:"id"`
	ThreadID  string        `json:"thread_id"`
	Mode      string        `json:"mode"`
	Status    string        `json:"status"`
	Error     string        `json:"error,omitempty"`
	Bytes     int           `json:"bytes"`
	Files     int           `json:"files"`
	Duration  time.Duration `json:"duration"`
	CreatedAt time.Time     `json:"created_at"`
}
