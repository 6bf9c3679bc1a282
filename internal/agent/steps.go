// Package agent sequences conversation turns against the managed platform:
// resolve a thread, post the message, drive the run, extract the reply, and
// relay generated files to blob storage.
package agent

import (
	"fmt"
	"sync"
)

// StepTrace collects the intermediate steps of a single turn. Each turn owns
// its own trace; concurrent requests never share one.
type StepTrace struct {
	mu    sync.Mutex
	steps []string
}

// Add appends a formatted step.
func (t *StepTrace) Add(format string, args ...any) {
	if t == nil {
		return
	}
	t.mu.Lock()
	t.steps = append(t.steps, fmt.Sprintf(format, args...))
	t.mu.Unlock()
}

// Steps returns the recorded steps in order.
func (t *StepTrace) Steps() []string {
	if t == nil {
		return nil
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]string, len(t.steps))
	copy(out, t.steps)
	return out
}
