package progress

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/matheuskafuri/attendwatch/internal/logging"
)

func TestFileDefaultsToIdle(t *testing.T) {
	f := NewFile(filepath.Join(t.TempDir(), "scrape-status.json"))
	s, err := f.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if s.Message != "Awaiting start..." || s.Progress != 0 {
		t.Errorf("unexpected idle state %+v", s)
	}
}

func TestFileRoundTrip(t *testing.T) {
	ctx := context.Background()
	f := NewFile(filepath.Join(t.TempDir(), "scrape-status.json"))
	want := State{Message: "Logging in...", Progress: 10, Timestamp: time.Date(2025, 3, 2, 10, 0, 0, 0, time.UTC)}
	if err := f.Save(ctx, want); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := f.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.Message != want.Message || got.Progress != want.Progress || !got.Timestamp.Equal(want.Timestamp) {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestTerminal(t *testing.T) {
	tests := []struct {
		progress int
		want     bool
	}{
		{0, false}, {10, false}, {99, false}, {100, true}, {-1, true},
	}
	for _, tt := range tests {
		if got := (State{Progress: tt.progress}).Terminal(); got != tt.want {
			t.Errorf("Terminal(%d) = %v, want %v", tt.progress, got, tt.want)
		}
	}
}

func TestReporterPublishesAndTagsRun(t *testing.T) {
	ctx := context.Background()
	b := NewBroker()
	ch, cancel := b.Subscribe()
	defer cancel()

	r := NewReporter(NewMemory(), b, logging.Nop())
	id := r.Begin()
	r.Report(ctx, 25, "Fetching attendance data...")
	r.Fail(ctx, "boom")

	first := <-ch
	if first.Progress != 25 || first.RunID != id {
		t.Errorf("unexpected first update %+v", first)
	}
	last := <-ch
	if last.Progress != Failed || last.Message != "Error: boom" {
		t.Errorf("unexpected failure update %+v", last)
	}

	cur, err := r.Current(ctx)
	if err != nil {
		t.Fatalf("current: %v", err)
	}
	if cur.Progress != Failed {
		t.Errorf("expected stored failure, got %+v", cur)
	}
}

func TestBrokerKeepsLatestForSlowSubscriber(t *testing.T) {
	b := NewBroker()
	ch, cancel := b.Subscribe()
	defer cancel()

	for i := 0; i <= 20; i++ {
		b.Publish(State{Progress: i})
	}
	var last State
	for len(ch) > 0 {
		last = <-ch
	}
	if last.Progress != 20 {
		t.Errorf("expected latest value 20, got %d", last.Progress)
	}
}

type sequence struct {
	states []State
	i      int
}

func (s *sequence) Load(context.Context) (State, error) {
	if s.i >= len(s.states) {
		return State{}, errors.New("exhausted")
	}
	st := s.states[s.i]
	s.i++
	return st, nil
}

func TestPollStopsOnTerminal(t *testing.T) {
	src := &sequence{states: []State{
		{Progress: 10}, {Progress: 40}, {Progress: 100, Message: "Done"}, {Progress: 0},
	}}
	var seen []int
	err := Poll(context.Background(), src, time.Millisecond, func(s State) {
		seen = append(seen, s.Progress)
	}, nil)
	if err != nil {
		t.Fatalf("poll: %v", err)
	}
	if len(seen) != 3 || seen[2] != 100 {
		t.Errorf("expected to stop after 100, saw %v", seen)
	}
}

func TestPollHonoursContext(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	var errs []string
	err := Poll(ctx, &sequence{}, time.Millisecond, func(State) {}, func(err error) {
		errs = append(errs, err.Error())
	})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected deadline exceeded, got %v", err)
	}
	if len(errs) == 0 || !strings.Contains(errs[0], "exhausted") {
		t.Errorf("expected load errors to be reported, got %v", errs)
	}
}
