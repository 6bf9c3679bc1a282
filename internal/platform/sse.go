package platform

import (
	"bufio"
	"io"
	"strings"
)

// sseScanner reads named Server-Sent Events from a stream. The platform
// emits `event:` / `data:` pairs separated by blank lines.
type sseScanner struct {
	scanner *bufio.Scanner
	event   string
	data    string
}

func newSSEScanner(r io.Reader) *sseScanner {
	sc := bufio.NewScanner(r)
	// Completed-message events carry whole message payloads.
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	return &sseScanner{scanner: sc}
}

// Next advances to the next complete event. It returns false at end of
// stream.
func (s *sseScanner) Next() bool {
	s.event = ""
	s.data = ""
	var data strings.Builder

	for s.scanner.Scan() {
		line := s.scanner.Text()
		switch {
		case line == "":
			if s.event != "" || data.Len() > 0 {
				s.data = data.String()
				return true
			}
		case strings.HasPrefix(line, "event:"):
			s.event = strings.TrimSpace(strings.TrimPrefix(line, "event:"))
		case strings.HasPrefix(line, "data:"):
			if data.Len() > 0 {
				data.WriteByte('\n')
			}
			data.WriteString(strings.TrimSpace(strings.TrimPrefix(line, "data:")))
		}
	}

	if s.event != "" || data.Len() > 0 {
		s.data = data.String()
		return true
	}
	return false
}

// Event returns the current event name.
func (s *sseScanner) Event() string { return s.event }

// Data returns the current event payload.
func (s *sseScanner) Data() string { return s.data }
