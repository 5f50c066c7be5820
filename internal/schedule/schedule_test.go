package schedule

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/matheuskafuri/attendwatch/internal/attendance"
	"github.com/matheuskafuri/attendwatch/internal/ingest"
	"github.com/matheuskafuri/attendwatch/internal/logging"
	"github.com/matheuskafuri/attendwatch/internal/store"
)

var dhaka = time.FixedZone("BDT", 6*3600)

func at(day, hour, min int) time.Time {
	// March 2025: the 2nd is a Sunday, the 7th a Friday.
	return time.Date(2025, 3, day, hour, min, 0, 0, dhaka)
}

func ptr(t time.Time) *time.Time { return &t }

func TestShouldAutoFetch(t *testing.T) {
	tests := []struct {
		name string
		last *time.Time
		now  time.Time
		want bool
	}{
		{"never fetched", nil, at(2, 8, 0), true},
		{"crossing threshold", ptr(at(2, 9, 59)), at(2, 10, 1), true},
		{"already after threshold", ptr(at(2, 10, 5)), at(2, 11, 0), false},
		{"before threshold same day", ptr(at(2, 8, 0)), at(2, 9, 30), false},
		{"next day after threshold", ptr(at(1, 14, 0)), at(2, 10, 1), true},
		{"next day before threshold", ptr(at(1, 14, 0)), at(2, 9, 0), false},
		{"exactly ten", ptr(at(2, 9, 0)), at(2, 10, 0), true},
	}
	for _, tt := range tests {
		if got := ShouldAutoFetch(tt.last, tt.now); got != tt.want {
			t.Errorf("%s: ShouldAutoFetch = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestShouldAutoFetchUsesPolicyLocation(t *testing.T) {
	p := Policy{Hour: 10, Location: dhaka}
	// 04:30 UTC is 10:30 in Dhaka.
	now := time.Date(2025, 3, 2, 4, 30, 0, 0, time.UTC)
	last := time.Date(2025, 3, 2, 3, 0, 0, 0, time.UTC)
	if !p.ShouldAutoFetch(&last, now) {
		t.Error("expected threshold to be evaluated in Dhaka time")
	}
}

func entryAt(date string, fetched time.Time) attendance.Entry {
	return attendance.Entry{Date: date, Counters: &attendance.Counters{}, DayStatus: attendance.NoChange, FetchedAt: fetched}
}

func TestEvaluate(t *testing.T) {
	p := Policy{Hour: 10, Location: dhaka, Weekend: []time.Weekday{time.Friday, time.Saturday}}

	tests := []struct {
		name        string
		series      attendance.Series
		holiday     bool
		lastAttempt *time.Time
		now         time.Time
		want        bool
		reason      string
	}{
		{"friday", nil, false, nil, at(7, 11, 0), false, "weekly holiday"},
		{"holiday", nil, true, nil, at(2, 11, 0), false, "holiday"},
		{"no entry", attendance.Series{entryAt("2025-03-01", at(1, 11, 0))}, false, nil, at(2, 10, 5), true, "no entry for today"},
		{"no entry before ten", attendance.Series{entryAt("2025-03-01", at(1, 11, 0))}, false, nil, at(2, 8, 0), false, "before 10:00"},
		{"just after midnight", attendance.Series{entryAt("2025-03-02", at(2, 14, 0))}, false, nil, at(3, 0, 1), false, "before 10:00"},
		{"no entry but attempted", attendance.Series{entryAt("2025-03-01", at(1, 11, 0))}, false, ptr(at(2, 10, 5)), at(2, 11, 0), false, "already fetched"},
		{"crossing ten", attendance.Series{entryAt("2025-03-02", at(2, 9, 0))}, false, nil, at(2, 10, 30), true, "first check after 10:00"},
		{"done for today", attendance.Series{entryAt("2025-03-02", at(2, 10, 15))}, false, nil, at(2, 12, 0), false, "already fetched"},
	}
	for _, tt := range tests {
		got := p.Evaluate(tt.series, tt.holiday, tt.lastAttempt, tt.now)
		if got.Trigger != tt.want || got.Reason != tt.reason {
			t.Errorf("%s: got %+v, want trigger=%v reason=%q", tt.name, got, tt.want, tt.reason)
		}
	}
}

type holidays map[string]bool

func (h holidays) IsHoliday(date string) (bool, error) { return h[date], nil }

type countingRunner struct {
	mu    sync.Mutex
	calls int
	done  chan struct{}
}

func (r *countingRunner) Run(context.Context) (ingest.Result, error) {
	r.mu.Lock()
	r.calls++
	r.mu.Unlock()
	if r.done != nil {
		r.done <- struct{}{}
	}
	return ingest.Result{}, nil
}

func (r *countingRunner) Start(ctx context.Context) (<-chan ingest.Result, error) {
	done := make(chan ingest.Result, 1)
	go func() {
		res, _ := r.Run(ctx)
		done <- res
		close(done)
	}()
	return done, nil
}

func TestCheckInTriggersOncePerDay(t *testing.T) {
	st := store.NewMemory(entryAt("2025-03-01", at(1, 11, 0)))
	runner := &countingRunner{done: make(chan struct{}, 4)}
	s := New(Policy{Hour: 10, Location: dhaka}, st, holidays{}, runner, logging.Nop())
	s.now = func() time.Time { return at(2, 10, 5) }

	d, err := s.CheckIn(context.Background())
	if err != nil {
		t.Fatalf("check-in: %v", err)
	}
	if !d.Trigger {
		t.Fatalf("expected trigger, got %+v", d)
	}
	<-runner.done

	d, err = s.CheckIn(context.Background())
	if err != nil {
		t.Fatalf("second check-in: %v", err)
	}
	if d.Trigger {
		t.Errorf("expected no second trigger, got %+v", d)
	}
}

func TestCheckSkipsHoliday(t *testing.T) {
	st := store.NewMemory()
	s := New(Policy{Hour: 10, Location: dhaka}, st, holidays{"2025-03-02": true}, &countingRunner{}, nil)
	s.now = func() time.Time { return at(2, 11, 0) }

	d, err := s.Check(context.Background())
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if d.Trigger || d.Reason != "holiday" {
		t.Errorf("unexpected decision %+v", d)
	}
}
