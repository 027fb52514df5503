// Package memory provides an in-memory media store for tests and local
// development.
package memory

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"
)

// Store is an in-memory implementation of mediastore.Store.
type Store struct {
	mu        sync.RWMutex
	objects   map[string][]byte
	mimeTypes map[string]string
}

// New creates a new in-memory media store.
func New() *Store {
	return &Store{
		objects:   make(map[string][]byte),
		mimeTypes: make(map[string]string),
	}
}

func (s *Store) Upload(ctx context.Context, key string, reader io.Reader, contentType string) error {
	data, err := io.ReadAll(reader)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = data
	s.mimeTypes[key] = contentType
	return nil
}

func (s *Store) Download(ctx context.Context, key string) (io.ReadCloser, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, ok := s.objects[key]
	if !ok {
		return nil, fmt.Errorf("media object not found: %s", key)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, key)
	delete(s.mimeTypes, key)
	return nil
}

// URL is unsupported for the memory store; assets are only reachable
// through Download.
func (s *Store) URL(ctx context.Context, key string) (string, error) {
	return "", fmt.Errorf("memory media store has no URLs")
}

// Len reports the number of stored assets.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.objects)
}
