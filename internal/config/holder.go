package config

import "sync"

// Holder shares a loaded Config between goroutines and persists updates.
type Holder struct {
	path string
	mu   sync.RWMutex
	cfg  Config
}

func NewHolder(path string, cfg *Config) *Holder {
	return &Holder{path: path, cfg: *cfg}
}

// Get returns a copy of the current config.
func (h *Holder) Get() *Config {
	h.mu.RLock()
	defer h.mu.RUnlock()
	c := h.cfg
	c.Weekend = append([]string(nil), h.cfg.Weekend...)
	return &c
}

// Update applies fn to the values stored in the file, saves them, and swaps
// in the result with environment overrides applied. Env-only secrets never
// reach the file.
func (h *Holder) Update(fn func(*Config)) (*Config, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	file, err := loadFile(h.path)
	if err != nil {
		return nil, err
	}
	fn(file)

	next := *file
	next.Weekend = append([]string(nil), file.Weekend...)
	applyEnv(&next)
	if err := validate(&next); err != nil {
		return nil, err
	}
	if err := Save(h.path, file); err != nil {
		return nil, err
	}
	h.cfg = next
	c := next
	c.Weekend = append([]string(nil), next.Weekend...)
	return &c, nil
}
