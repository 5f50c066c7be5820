package attendance

import (
	"errors"
	"fmt"
	"testing"
	"time"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		entry   Entry
		wantErr bool
	}{
		{"counted day", Entry{Date: "2025-03-02", Counters: &Counters{Present: 1}, DayStatus: Present}, false},
		{"error day", Entry{Date: "2025-03-02", DayStatus: Error, Error: "boom"}, false},
		{"error with counters", Entry{Date: "2025-03-02", Counters: &Counters{}, DayStatus: Error}, true},
		{"missing counters", Entry{Date: "2025-03-02", DayStatus: NoChange}, true},
		{"bad date", Entry{Date: "03/02/2025", Counters: &Counters{}, DayStatus: NoChange}, true},
	}
	for _, tt := range tests {
		err := tt.entry.Validate()
		if tt.wantErr && err == nil {
			t.Errorf("%s: expected error, got nil", tt.name)
		}
		if !tt.wantErr && err != nil {
			t.Errorf("%s: unexpected error: %v", tt.name, err)
		}
	}
}

func TestSortedDoesNotMutate(t *testing.T) {
	s := Series{{Date: "2025-03-03"}, {Date: "2025-03-01"}, {Date: "2025-03-02"}}
	got := s.Sorted()
	if got[0].Date != "2025-03-01" || got[2].Date != "2025-03-03" {
		t.Errorf("unexpected order: %v", got)
	}
	if s[0].Date != "2025-03-03" {
		t.Error("Sorted modified the receiver")
	}
}

func TestLatestAndLastFetched(t *testing.T) {
	t1 := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	t2 := time.Date(2025, 3, 2, 11, 0, 0, 0, time.UTC)
	s := Series{
		{Date: "2025-03-02", Name: "b", FetchedAt: t2},
		{Date: "2025-03-01", Name: "a", FetchedAt: t1},
	}
	latest, ok := s.Latest()
	if !ok || latest.Name != "b" {
		t.Errorf("expected latest b, got %+v", latest)
	}
	last := s.LastFetched()
	if last == nil || !last.Equal(t2) {
		t.Errorf("expected last fetched %v, got %v", t2, last)
	}
	if (Series{}).LastFetched() != nil {
		t.Error("expected nil for empty series")
	}
}

func TestToday(t *testing.T) {
	dhaka := time.FixedZone("BDT", 6*3600)
	now := time.Date(2025, 3, 1, 20, 30, 0, 0, time.UTC)
	if got := Today(now, dhaka); got != "2025-03-02" {
		t.Errorf("expected 2025-03-02, got %s", got)
	}
}

func TestKindOf(t *testing.T) {
	err := fmt.Errorf("scraping: %w", NewError(KindAuth, errors.New("redirected to login")))
	if KindOf(err) != KindAuth {
		t.Errorf("expected auth, got %s", KindOf(err))
	}
	if KindOf(errors.New("plain")) != KindUnknown {
		t.Error("expected unknown for untyped error")
	}
	if !KindNetwork.Retryable() || KindAuth.Retryable() {
		t.Error("only network errors are retryable")
	}
}
