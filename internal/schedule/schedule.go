package schedule

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/matheuskafuri/attendwatch/internal/attendance"
	"github.com/matheuskafuri/attendwatch/internal/ingest"
	"github.com/matheuskafuri/attendwatch/internal/logging"
	"github.com/matheuskafuri/attendwatch/internal/store"
)

// DefaultHour is the hour of day after which an automatic pull is due.
const DefaultHour = 10

// Policy decides when automatic pulls happen.
type Policy struct {
	Hour     int
	Location *time.Location
	Weekend  []time.Weekday
}

func DefaultPolicy() Policy {
	return Policy{Hour: DefaultHour, Location: time.Local, Weekend: []time.Weekday{time.Friday, time.Saturday}}
}

// ShouldAutoFetch applies the default policy.
func ShouldAutoFetch(lastFetched *time.Time, now time.Time) bool {
	p := DefaultPolicy()
	p.Location = now.Location()
	return p.ShouldAutoFetch(lastFetched, now)
}

// ShouldAutoFetch is true once per calendar day, the first time it is asked
// at or after p.Hour.
func (p Policy) ShouldAutoFetch(lastFetched *time.Time, now time.Time) bool {
	if lastFetched == nil {
		return true
	}
	loc := p.loc()
	now = now.In(loc)
	last := lastFetched.In(loc)

	if sameDay(now, last) {
		return now.Hour() >= p.Hour && last.Hour() < p.Hour
	}
	if now.Before(last) {
		return false
	}
	return now.Hour() >= p.Hour
}

// IsWeekend reports whether date falls on a weekly holiday.
func (p Policy) IsWeekend(t time.Time) bool {
	wd := t.In(p.loc()).Weekday()
	for _, w := range p.Weekend {
		if w == wd {
			return true
		}
	}
	return false
}

func (p Policy) loc() *time.Location {
	if p.Location == nil {
		return time.Local
	}
	return p.Location
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// HolidaySource answers whether a date is a configured holiday.
type HolidaySource interface {
	IsHoliday(date string) (bool, error)
}

// Decision is the outcome of a check-in.
type Decision struct {
	Trigger bool   `json:"triggered"`
	Reason  string `json:"reason"`
}

// Evaluate combines the scrape-today rule with the time-gated auto-fetch rule.
// Nothing triggers before p.Hour. A working day with no entry is pulled once;
// after that the hour rule applies. lastAttempt is the last time a run was
// triggered automatically, if any.
func (p Policy) Evaluate(series attendance.Series, isHoliday bool, lastAttempt *time.Time, now time.Time) Decision {
	loc := p.loc()
	if p.IsWeekend(now) {
		return Decision{Reason: "weekly holiday"}
	}
	if isHoliday {
		return Decision{Reason: "holiday"}
	}
	if now.In(loc).Hour() < p.Hour {
		return Decision{Reason: fmt.Sprintf("before %02d:00", p.Hour)}
	}

	attemptedToday := lastAttempt != nil && sameDay(lastAttempt.In(loc), now.In(loc))
	if _, ok := series.Find(attendance.Today(now, loc)); !ok && !attemptedToday {
		return Decision{Trigger: true, Reason: "no entry for today"}
	}

	last := series.LastFetched()
	if lastAttempt != nil && (last == nil || lastAttempt.After(*last)) {
		last = lastAttempt
	}
	if p.ShouldAutoFetch(last, now) {
		return Decision{Trigger: true, Reason: fmt.Sprintf("first check after %02d:00", p.Hour)}
	}
	return Decision{Reason: "already fetched"}
}

// Runner starts ingestion runs.
type Runner interface {
	Run(ctx context.Context) (ingest.Result, error)
	Start(ctx context.Context) (<-chan ingest.Result, error)
}

// Scheduler evaluates the policy against the stored series and triggers runs.
type Scheduler struct {
	policy   Policy
	store    store.Store
	holidays HolidaySource
	runner   Runner
	log      logging.Logger
	now      func() time.Time

	mu          sync.Mutex
	lastAttempt *time.Time
}

func New(p Policy, st store.Store, h HolidaySource, r Runner, log logging.Logger) *Scheduler {
	if log == nil {
		log = logging.Nop()
	}
	return &Scheduler{policy: p, store: st, holidays: h, runner: r, log: log, now: time.Now}
}

// Check evaluates the policy without running anything.
func (s *Scheduler) Check(ctx context.Context) (Decision, error) {
	series, err := s.store.ReadAll(ctx)
	if err != nil {
		return Decision{}, fmt.Errorf("reading series: %w", err)
	}
	now := s.now()
	holiday := false
	if s.holidays != nil {
		holiday, err = s.holidays.IsHoliday(attendance.Today(now, s.policy.loc()))
		if err != nil {
			return Decision{}, fmt.Errorf("reading holidays: %w", err)
		}
	}
	s.mu.Lock()
	last := s.lastAttempt
	s.mu.Unlock()
	return s.policy.Evaluate(series, holiday, last, now), nil
}

// CheckIn evaluates the policy and starts a run in the background when due.
// A run already in flight counts as not triggered.
func (s *Scheduler) CheckIn(ctx context.Context) (Decision, error) {
	d, err := s.Check(ctx)
	if err != nil || !d.Trigger {
		return d, err
	}
	done, err := s.runner.Start(context.WithoutCancel(ctx))
	if errors.Is(err, ingest.ErrAlreadyRunning) {
		return Decision{Reason: "ingestion already running"}, nil
	}
	if err != nil {
		return Decision{}, err
	}
	s.markAttempt()
	s.log.Info("automatic fetch: " + d.Reason)
	go func() {
		if res := <-done; res.Err != nil {
			s.log.Warn("automatic fetch failed", res.Err)
		}
	}()
	return d, nil
}

func (s *Scheduler) markAttempt() {
	now := s.now()
	s.mu.Lock()
	s.lastAttempt = &now
	s.mu.Unlock()
}

func (s *Scheduler) run(ctx context.Context, reason string) {
	s.log.Info("automatic fetch: " + reason)
	res, err := s.runner.Run(ctx)
	switch {
	case errors.Is(err, ingest.ErrAlreadyRunning):
		s.log.Debug("automatic fetch skipped: already running")
	case err != nil:
		s.log.Error("automatic fetch", err)
	case res.Err != nil:
		s.log.Warn("automatic fetch failed", res.Err)
	}
}

// Loop checks in every interval until ctx is done.
func (s *Scheduler) Loop(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		d, err := s.Check(ctx)
		if err != nil {
			s.log.Warn("auto-fetch check", err)
		} else if d.Trigger {
			s.markAttempt()
			s.run(ctx, d.Reason)
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
