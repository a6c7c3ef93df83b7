package storage

import (
	"context"
	"net/http"
	"sync"
)

// MemoryProvider keeps session keys in process memory. Data is lost on restart.
type MemoryProvider struct {
	mu   sync.RWMutex
	data map[string]map[string]string
}

func NewMemoryProvider() *MemoryProvider {
	return &MemoryProvider{data: map[string]map[string]string{}}
}

func (p *MemoryProvider) Open(_ http.ResponseWriter, r *http.Request) (Store, error) {
	sessionID, _ := SessionIDFromContext(r.Context())
	return p.Session(sessionID), nil
}

func (p *MemoryProvider) ServerSide() bool { return true }

// Session returns the store for one session id.
func (p *MemoryProvider) Session(sessionID string) *MemoryStore {
	return &MemoryStore{provider: p, sessionID: sessionID}
}

type MemoryStore struct {
	provider  *MemoryProvider
	sessionID string
}

// NewMemoryStore returns a standalone in-memory store.
func NewMemoryStore() *MemoryStore {
	return NewMemoryProvider().Session("")
}

func (s *MemoryStore) Get(_ context.Context, key string) (string, bool, error) {
	s.provider.mu.RLock()
	defer s.provider.mu.RUnlock()
	v, ok := s.provider.data[s.sessionID][key]
	return v, ok, nil
}

func (s *MemoryStore) Set(_ context.Context, key, value string) error {
	s.provider.mu.Lock()
	defer s.provider.mu.Unlock()
	bucket, ok := s.provider.data[s.sessionID]
	if !ok {
		bucket = map[string]string{}
		s.provider.data[s.sessionID] = bucket
	}
	bucket[key] = value
	return nil
}
