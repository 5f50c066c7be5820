package progress

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/matheuskafuri/attendwatch/internal/store"
)

const (
	Done   = 100
	Failed = -1
)

// State is the single current progress record.
type State struct {
	Message   string    `json:"message"`
	Progress  int       `json:"progress"`
	Timestamp time.Time `json:"timestamp"`
	RunID     string    `json:"runId,omitempty"`
}

// Terminal reports whether the run has finished, successfully or not.
func (s State) Terminal() bool {
	return s.Progress >= Done || s.Progress <= Failed
}

// Idle is the state reported before any run has happened.
func Idle() State {
	return State{Message: "Awaiting start...", Progress: 0}
}

// Store holds the latest State.
type Store interface {
	Save(ctx context.Context, s State) error
	Load(ctx context.Context) (State, error)
}

// File persists the state as a JSON object.
type File struct {
	path string
	mu   sync.Mutex
}

func NewFile(path string) *File {
	return &File{path: path}
}

func (f *File) Save(_ context.Context, s State) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding progress: %w", err)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return store.WriteFileAtomic(f.path, data)
}

func (f *File) Load(_ context.Context) (State, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return Idle(), nil
		}
		return State{}, fmt.Errorf("reading progress: %w", err)
	}
	var s State
	if err := json.Unmarshal(data, &s); err != nil {
		return State{}, fmt.Errorf("parsing progress: %w", err)
	}
	return s, nil
}

type Memory struct {
	mu    sync.RWMutex
	state *State
}

func NewMemory() *Memory { return &Memory{} }

func (m *Memory) Save(_ context.Context, s State) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = &s
	return nil
}

func (m *Memory) Load(_ context.Context) (State, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.state == nil {
		return Idle(), nil
	}
	return *m.state, nil
}
