// Package sessionstore persists the single cached user session the facade
// works with. Every implementation stores one serialized session under a
// fixed key; the session payload is opaque to this layer.
package sessionstore

import (
	"context"
	"sync"

	"github.com/contentdeck/content-repo/pkg/contentrepo"
)

// FixedKey is the storage key every implementation keeps the session under.
const FixedKey = "contentrepo.user"

// Memory is a process-lifetime session store for tests and ephemeral
// deployments.
type Memory struct {
	mu   sync.RWMutex
	sess *contentrepo.Session
}

// NewMemory creates an empty in-memory session store.
func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) Retrieve(ctx context.Context) (*contentrepo.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.sess, nil
}

func (m *Memory) Store(ctx context.Context, sess *contentrepo.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sess = sess
	return nil
}
