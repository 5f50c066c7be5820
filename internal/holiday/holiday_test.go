package holiday

import (
	"errors"
	"path/filepath"
	"testing"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	return NewStore(filepath.Join(t.TempDir(), "holidays.json"))
}

func TestAddKeepsSortedAndUnique(t *testing.T) {
	s := testStore(t)
	for _, h := range []Holiday{
		{Date: "2025-03-26", Name: "Independence Day"},
		{Date: "2025-02-21", Name: "Language Day"},
	} {
		if err := s.Add(h); err != nil {
			t.Fatalf("add %s: %v", h.Date, err)
		}
	}
	err := s.Add(Holiday{Date: "2025-02-21", Name: "Duplicate"})
	if !errors.Is(err, ErrExists) {
		t.Errorf("expected ErrExists, got %v", err)
	}

	hs, err := s.List()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(hs) != 2 || hs[0].Date != "2025-02-21" {
		t.Errorf("expected sorted unique list, got %+v", hs)
	}
}

func TestAddValidates(t *testing.T) {
	s := testStore(t)
	tests := []Holiday{
		{Date: "21-02-2025", Name: "Language Day"},
		{Date: "2025-02-21", Name: ""},
		{Date: "2025-02-21", Name: " x "},
		{Date: "2025-02-30", Name: "Not a day"},
	}
	for _, h := range tests {
		if err := s.Add(h); !errors.Is(err, ErrInvalid) {
			t.Errorf("Add(%+v): expected ErrInvalid, got %v", h, err)
		}
	}
}

func TestAddRange(t *testing.T) {
	s := testStore(t)
	batch, err := s.AddRange("2025-03-30", "2025-04-02", "Eid")
	if err != nil {
		t.Fatalf("add range: %v", err)
	}
	if len(batch) != 4 {
		t.Fatalf("expected 4 days, got %d", len(batch))
	}
	for _, h := range batch {
		if !h.IsRange || h.TotalDays != 4 || h.RangeID != "2025-03-30_2025-04-02_Eid" {
			t.Errorf("unexpected range metadata %+v", h)
		}
	}

	if _, err := s.AddRange("2025-04-02", "2025-04-03", "Overlap"); !errors.Is(err, ErrExists) {
		t.Errorf("expected ErrExists for overlapping range, got %v", err)
	}
	hs, _ := s.List()
	if len(hs) != 4 {
		t.Errorf("overlapping range must add nothing, got %d holidays", len(hs))
	}

	if _, err := s.AddRange("2025-04-10", "2025-04-09", "Backwards"); !errors.Is(err, ErrInvalid) {
		t.Error("expected error for reversed range")
	}
}

func TestRemove(t *testing.T) {
	s := testStore(t)
	if err := s.Add(Holiday{Date: "2025-12-16", Name: "Victory Day"}); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := s.Remove("2025-12-16"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if err := s.Remove("2025-12-16"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	ok, err := s.IsHoliday("2025-12-16")
	if err != nil || ok {
		t.Errorf("expected removed holiday, got %v %v", ok, err)
	}
}
