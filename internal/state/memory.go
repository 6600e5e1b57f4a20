package state

import (
	"context"
	"sync"
	"time"
)

// Memory is an in-process Store. The zero value is ready to use.
type Memory struct {
	mu    sync.Mutex
	at    time.Time
	isSet bool
}

func (m *Memory) LastPromptTimestamp(ctx context.Context) (time.Time, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.at, m.isSet, nil
}

func (m *Memory) SetLastPromptTimestamp(ctx context.Context, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.at = at
	m.isSet = true
	return nil
}

func (m *Memory) ClearLastPromptTimestamp(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.at = time.Time{}
	m.isSet = false
	return nil
}

// Compile-time checks that the implementations satisfy Store.
var (
	_ Store = (*Memory)(nil)
	_ Store = (*SQLite)(nil)
)
