package store

import (
	"context"
	"sync"

	"github.com/matheuskafuri/attendwatch/internal/attendance"
)

type Memory struct {
	mu      sync.RWMutex
	entries attendance.Series
}

func NewMemory(seed ...attendance.Entry) *Memory {
	return &Memory{entries: append(attendance.Series(nil), seed...)}
}

func (m *Memory) Upsert(_ context.Context, e attendance.Entry) error {
	if err := e.Validate(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = upsertSlice(m.entries, e)
	return nil
}

func (m *Memory) ReadAll(_ context.Context) (attendance.Series, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append(attendance.Series(nil), m.entries...), nil
}

func (m *Memory) Close() error { return nil }
