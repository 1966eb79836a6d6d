package store

import (
	"context"
	"sync"
)

// MemoryStore keeps values in process memory. Handy for tests and the Lambda
// handler's scratch state.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string][]byte
	err  error
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string][]byte)}
}

// NewMemoryStoreWithData seeds a store with raw values.
func NewMemoryStoreWithData(data map[string][]byte) *MemoryStore {
	s := NewMemoryStore()
	for k, v := range data {
		s.data[k] = append([]byte(nil), v...)
	}
	return s
}

// NewMemoryStoreWithError returns a store whose every call fails with err.
func NewMemoryStoreWithError(err error) *MemoryStore {
	return &MemoryStore{data: make(map[string][]byte), err: err}
}

func (s *MemoryStore) Get(ctx context.Context, key string) ([]byte, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.data[key]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), v...), nil
}

func (s *MemoryStore) Set(ctx context.Context, key string, value []byte) error {
	if s.err != nil {
		return s.err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = append([]byte(nil), value...)
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, key string) error {
	if s.err != nil {
		return s.err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.data[key]; !ok {
		return ErrNotFound
	}
	delete(s.data, key)
	return nil
}
