package holiday

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/matheuskafuri/attendwatch/internal/attendance"
	"github.com/matheuskafuri/attendwatch/internal/store"
)

var (
	ErrExists   = errors.New("holiday already exists for this date")
	ErrNotFound = errors.New("holiday not found")
	ErrInvalid  = errors.New("invalid holiday")
)

// maxRangeDays bounds a single range insert.
const maxRangeDays = 366

type Holiday struct {
	Date      string `json:"date" validate:"required,datetime=2006-01-02"`
	Name      string `json:"name" validate:"required,min=2,max=100"`
	IsRange   bool   `json:"isRange,omitempty"`
	RangeID   string `json:"rangeId,omitempty"`
	TotalDays int    `json:"totalDays,omitempty"`
}

// Store keeps holidays in a JSON array sorted by date, unique by date.
type Store struct {
	path     string
	validate *validator.Validate
	mu       sync.Mutex
}

func NewStore(path string) *Store {
	return &Store{path: path, validate: validator.New()}
}

func (s *Store) read() ([]Holiday, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return []Holiday{}, nil
		}
		return nil, fmt.Errorf("reading holidays: %w", err)
	}
	if len(data) == 0 {
		return []Holiday{}, nil
	}
	var hs []Holiday
	if err := json.Unmarshal(data, &hs); err != nil {
		return nil, fmt.Errorf("parsing holidays: %w", err)
	}
	return hs, nil
}

func (s *Store) write(hs []Holiday) error {
	sort.SliceStable(hs, func(i, j int) bool { return hs[i].Date < hs[j].Date })
	data, err := json.MarshalIndent(hs, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding holidays: %w", err)
	}
	return store.WriteFileAtomic(s.path, data)
}

func (s *Store) List() ([]Holiday, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read()
}

func (s *Store) IsHoliday(date string) (bool, error) {
	hs, err := s.List()
	if err != nil {
		return false, err
	}
	for _, h := range hs {
		if h.Date == date {
			return true, nil
		}
	}
	return false, nil
}

// Validate checks a holiday's fields.
func (s *Store) Validate(h Holiday) error {
	if err := s.validate.Struct(h); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return fmt.Errorf("%w: %s failed %q", ErrInvalid, strings.ToLower(verrs[0].Field()), verrs[0].Tag())
		}
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return nil
}

func (s *Store) Add(h Holiday) error {
	h.Name = strings.TrimSpace(h.Name)
	_, err := s.insert([]Holiday{h})
	return err
}

// AddRange adds every day from..to inclusive under one range ID. Nothing is
// added if any day already has a holiday.
func (s *Store) AddRange(from, to, name string) ([]Holiday, error) {
	name = strings.TrimSpace(name)
	start, err := time.Parse(attendance.DateLayout, from)
	if err != nil {
		return nil, fmt.Errorf("%w: date failed %q", ErrInvalid, "datetime")
	}
	end := start
	if to != "" {
		if end, err = time.Parse(attendance.DateLayout, to); err != nil {
			return nil, fmt.Errorf("%w: end date failed %q", ErrInvalid, "datetime")
		}
	}
	if end.Before(start) {
		return nil, fmt.Errorf("%w: range ends before it starts", ErrInvalid)
	}

	var dates []string
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		dates = append(dates, d.Format(attendance.DateLayout))
		if len(dates) > maxRangeDays {
			return nil, fmt.Errorf("%w: range longer than %d days", ErrInvalid, maxRangeDays)
		}
	}

	id := fmt.Sprintf("%s_%s_%s", dates[0], dates[len(dates)-1], name)
	batch := make([]Holiday, len(dates))
	for i, d := range dates {
		batch[i] = Holiday{Date: d, Name: name, IsRange: true, RangeID: id, TotalDays: len(dates)}
	}
	return s.insert(batch)
}

func (s *Store) insert(batch []Holiday) ([]Holiday, error) {
	for _, h := range batch {
		if err := s.Validate(h); err != nil {
			return nil, err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	hs, err := s.read()
	if err != nil {
		return nil, err
	}
	existing := make(map[string]bool, len(hs))
	for _, h := range hs {
		existing[h.Date] = true
	}
	for _, h := range batch {
		if existing[h.Date] {
			return nil, fmt.Errorf("%s: %w", h.Date, ErrExists)
		}
	}
	if err := s.write(append(hs, batch...)); err != nil {
		return nil, err
	}
	return batch, nil
}

func (s *Store) Remove(date string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	hs, err := s.read()
	if err != nil {
		return err
	}
	out := hs[:0]
	found := false
	for _, h := range hs {
		if h.Date == date {
			found = true
			continue
		}
		out = append(out, h)
	}
	if !found {
		return fmt.Errorf("%s: %w", date, ErrNotFound)
	}
	return s.write(out)
}

// Dates returns the set of holiday dates.
func (s *Store) Dates() (map[string]bool, error) {
	hs, err := s.List()
	if err != nil {
		return nil, err
	}
	out := make(map[string]bool, len(hs))
	for _, h := range hs {
		out[h.Date] = true
	}
	return out, nil
}
