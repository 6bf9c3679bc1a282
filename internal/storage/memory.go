package storage

import (
	"context"
	"sync"

	"github.com/bridgeware/agentbridge/internal/domain"
)

// MemoryStore is an in-process Store for tests.
type MemoryStore struct {
	mu    sync.Mutex
	blobs map[string][]byte

	// BaseURL prefixes returned blob URLs. Defaults to "memory://".
	BaseURL string

	// UploadErr, when set, fails every Upload.
	UploadErr error
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{blobs: make(map[string][]byte)}
}

func (s *MemoryStore) Upload(ctx context.Context, name string, data []byte) (string, error) {
	if s.UploadErr != nil {
		return "", s.UploadErr
	}
	s.mu.Lock()
	s.blobs[name] = append([]byte(nil), data...)
	s.mu.Unlock()

	base := s.BaseURL
	if base == "" {
		base = "memory://"
	}
	return base + name, nil
}

func (s *MemoryStore) Download(ctx context.Context, name string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.blobs[name]
	if !ok {
		return nil, &domain.NotFoundError{Kind: "blob", ID: name}
	}
	return append([]byte(nil), data...), nil
}

// Names returns the stored blob names.
func (s *MemoryStore) Names() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	names := make([]string, 0, len(s.blobs))
	for name := range s.blobs {
		names = append(names, name)
	}
	return names
}

var _ Store = (*MemoryStore)(nil)
