package domain

import (
	"fmt"
	"time"
)

// ConfigError reports missing or invalid configuration. It fails fast, at
// startup or at first use, before any remote side effect.
type ConfigError struct {
	Msg string
}

func (e *ConfigError) Error() string { return "configuration error: " + e.Msg }

// ValidationError rejects a request before any remote call is issued.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// RemoteError wraps a failed call to the agent platform or the blob store.
// It is not retried automatically.
type RemoteError struct {
	Op  string
	Err error
}

func (e *RemoteError) Error() string { return fmt.Sprintf("%s: %v", e.Op, e.Err) }
func (e *RemoteError) Unwrap() error { return e.Err }

// RunFailedError reports a run that reached the terminal failed status.
// The platform's message is forwarded, never retried.
type RunFailedError struct {
	RunID  string
	Reason string
}

func (e *RunFailedError) Error() string {
	return fmt.Sprintf("run %s failed: %s", e.RunID, e.Reason)
}

// TimeoutError reports a poll loop or stream that exceeded its bound.
type TimeoutError struct {
	Op    string
	After time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("%s timed out after %s", e.Op, e.After)
}

// NotFoundError reports a thread, file, or agent id that does not exist
// upstream.
type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string { return fmt.Sprintf("%s %q not found", e.Kind, e.ID) }
