package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/matheuskafuri/attendwatch/internal/attendance"
)

// JSONFile keeps the series as a JSON array on disk. Writes go to a temp
// file that is renamed over the target.
type JSONFile struct {
	path string
	mu   sync.Mutex
}

func NewJSONFile(path string) *JSONFile {
	return &JSONFile{path: path}
}

func (f *JSONFile) read() (attendance.Series, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return attendance.Series{}, nil
		}
		return nil, fmt.Errorf("reading %s: %w", f.path, err)
	}
	if len(data) == 0 {
		return attendance.Series{}, nil
	}
	var s attendance.Series
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", f.path, err)
	}
	return s, nil
}

func (f *JSONFile) ReadAll(_ context.Context) (attendance.Series, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.read()
}

func (f *JSONFile) Upsert(_ context.Context, e attendance.Entry) error {
	if err := e.Validate(); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	s, err := f.read()
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(upsertSlice(s, e), "", "  ")
	if err != nil {
		return fmt.Errorf("encoding series: %w", err)
	}
	return WriteFileAtomic(f.path, data)
}

func (f *JSONFile) Close() error { return nil }

// WriteFileAtomic writes data next to path and renames it into place.
func WriteFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating data dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replacing %s: %w", path, err)
	}
	return nil
}
