package ingest

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/matheuskafuri/attendwatch/internal/attendance"
	"github.com/matheuskafuri/attendwatch/internal/classify"
	"github.com/matheuskafuri/attendwatch/internal/logging"
	"github.com/matheuskafuri/attendwatch/internal/notify"
	"github.com/matheuskafuri/attendwatch/internal/portal"
	"github.com/matheuskafuri/attendwatch/internal/progress"
	"github.com/matheuskafuri/attendwatch/internal/store"
)

// ErrAlreadyRunning is returned when a run is requested while one is in flight.
var ErrAlreadyRunning = errors.New("ingestion already running")

// State is a step of a run. Its value is the progress reported on entry.
type State int

const (
	Init           State = 0
	Authenticating State = 10
	Fetching       State = 25
	Classifying    State = 40
	Deciding       State = 60
	Persisting     State = 75
	Done           State = 100
	Failed         State = -1
)

func (s State) Message() string {
	switch s {
	case Init:
		return "Starting..."
	case Authenticating:
		return "Logging in to the portal..."
	case Fetching:
		return "Fetching attendance data..."
	case Classifying:
		return "Classifying today's status..."
	case Deciding:
		return "Checking notifications..."
	case Persisting:
		return "Saving attendance..."
	case Done:
		return "Attendance data updated successfully!"
	default:
		return "Failed"
	}
}

// Settings are read at the start of every run.
type Settings struct {
	Credentials   portal.Credentials
	Notifications bool
}

// SettingsFunc loads Settings. A missing credential must be reported as an
// error of kind attendance.KindConfig.
type SettingsFunc func() (Settings, error)

// Result describes a finished run.
type Result struct {
	RunID    string
	Entry    attendance.Entry
	Decision *notify.Decision
	Err      error
}

type Orchestrator struct {
	scraper  portal.Scraper
	store    store.Store
	reporter *progress.Reporter
	notifier notify.Notifier
	settings SettingsFunc
	log      logging.Logger
	loc      *time.Location
	now      func() time.Time
	lock     *fileLock

	mu sync.Mutex
}

type Option func(*Orchestrator)

func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) { o.now = now }
}

func WithLocation(loc *time.Location) Option {
	return func(o *Orchestrator) { o.loc = loc }
}

func WithLogger(l logging.Logger) Option {
	return func(o *Orchestrator) { o.log = l }
}

// WithLockFile makes runs exclusive across every process using path.
func WithLockFile(path string) Option {
	return func(o *Orchestrator) { o.lock = newFileLock(path) }
}

func New(sc portal.Scraper, st store.Store, rep *progress.Reporter, n notify.Notifier, settings SettingsFunc, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		scraper:  sc,
		store:    st,
		reporter: rep,
		notifier: n,
		settings: settings,
		log:      logging.Nop(),
		loc:      time.Local,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Running reports whether a run is in flight in this or another process.
func (o *Orchestrator) Running() bool {
	if !o.mu.TryLock() {
		return true
	}
	defer o.mu.Unlock()
	return o.lock != nil && o.lock.held()
}

// acquire takes the in-process lock and, when configured, the lock file.
func (o *Orchestrator) acquire() error {
	if !o.mu.TryLock() {
		return ErrAlreadyRunning
	}
	if o.lock == nil {
		return nil
	}
	ok, err := o.lock.acquire()
	if err != nil || !ok {
		o.mu.Unlock()
		if err != nil {
			return err
		}
		return ErrAlreadyRunning
	}
	return nil
}

func (o *Orchestrator) release() {
	if o.lock != nil {
		o.lock.release()
	}
	o.mu.Unlock()
}

// Run performs one ingestion pass. It returns ErrAlreadyRunning without side
// effects if another run holds the lock. A failed pull is recorded in the
// store and progress and reported through Result.Err.
func (o *Orchestrator) Run(ctx context.Context) (Result, error) {
	if err := o.acquire(); err != nil {
		return Result{}, err
	}
	defer o.release()
	return o.execute(ctx), nil
}

// Start is Run in the background. The lock is taken before Start returns;
// the result is delivered on the returned channel.
func (o *Orchestrator) Start(ctx context.Context) (<-chan Result, error) {
	if err := o.acquire(); err != nil {
		return nil, err
	}
	done := make(chan Result, 1)
	go func() {
		defer close(done)
		defer o.release()
		done <- o.execute(ctx)
	}()
	return done, nil
}

func (o *Orchestrator) execute(ctx context.Context) Result {
	res := Result{RunID: o.reporter.Begin()}
	o.enter(ctx, Init)

	entry, decision, err := o.run(ctx)
	if err != nil {
		res.Err = err
		res.Entry = o.fail(ctx, err)
		return res
	}
	res.Entry, res.Decision = entry, decision
	o.enter(ctx, Done)
	o.log.Info(fmt.Sprintf("ingestion finished for %s: %s", entry.Date, entry.DayStatus))
	return res
}

func (o *Orchestrator) enter(ctx context.Context, s State) {
	o.reporter.Report(ctx, int(s), s.Message())
}

func (o *Orchestrator) run(ctx context.Context) (attendance.Entry, *notify.Decision, error) {
	settings, err := o.settings()
	if err != nil {
		if attendance.KindOf(err) != attendance.KindConfig {
			err = attendance.NewError(attendance.KindConfig, err)
		}
		return attendance.Entry{}, nil, err
	}

	o.enter(ctx, Authenticating)
	snap, err := o.scraper.Scrape(ctx, settings.Credentials, func(st portal.Stage) {
		if st == portal.StageAuthenticated {
			o.enter(ctx, Fetching)
		}
	})
	if err != nil {
		return attendance.Entry{}, nil, fmt.Errorf("scraping portal: %w", err)
	}

	now := o.now()
	today := attendance.Today(now, o.loc)
	if snap.Date == "" {
		snap.Date = today
	}

	o.enter(ctx, Classifying)
	history, err := o.store.ReadAll(ctx)
	if err != nil {
		return attendance.Entry{}, nil, fmt.Errorf("reading history: %w", err)
	}
	status := classify.Classify(snap, history)

	entry := attendance.Entry{
		Date:      snap.Date,
		Name:      snap.StudentName,
		Counters:  &snap.Counters,
		DayStatus: status,
		FetchedAt: now,
	}
	if prev, ok := history.Find(snap.Date); ok {
		entry.NotificationSent = prev.NotificationSent
		entry.NotificationSentAt = prev.NotificationSentAt
	}

	o.enter(ctx, Deciding)
	var decision *notify.Decision
	if settings.Notifications {
		d := notify.Decide(status, snap.Date, history)
		decision = &d
		if d.Should {
			o.deliver(ctx, &entry, now)
		} else {
			o.log.Debug("notification suppressed: " + d.Reason)
		}
	}

	o.enter(ctx, Persisting)
	if err := o.store.Upsert(ctx, entry); err != nil {
		return attendance.Entry{}, decision, fmt.Errorf("persisting entry: %w", err)
	}
	return entry, decision, nil
}

// deliver sends the notification and marks entry as sent when any channel
// delivered it. The sent flag is reset first since the status is new.
func (o *Orchestrator) deliver(ctx context.Context, entry *attendance.Entry, now time.Time) {
	if o.notifier == nil {
		return
	}
	entry.NotificationSent = false
	entry.NotificationSentAt = nil
	err := o.notifier.Notify(ctx, notify.Message(entry.Date, entry.DayStatus, entry.Name))
	if err != nil {
		o.log.Warn("sending notification", err)
	}
	if !notify.Delivered(err) {
		return
	}
	sentAt := now
	entry.NotificationSent = true
	entry.NotificationSentAt = &sentAt
}

// fail records err. Config errors stop before any network I/O and leave the
// time series untouched; every other kind writes an Error entry for today.
func (o *Orchestrator) fail(ctx context.Context, err error) attendance.Entry {
	kind := attendance.KindOf(err)
	msg := kind.Message()
	o.log.Error(fmt.Sprintf("ingestion failed (%s)", kind), err)
	o.reporter.Fail(ctx, msg)

	if kind == attendance.KindConfig {
		return attendance.Entry{}
	}

	now := o.now()
	entry := attendance.Entry{
		Date:      attendance.Today(now, o.loc),
		DayStatus: attendance.Error,
		FetchedAt: now,
		Error:     msg,
	}
	if history, rerr := o.store.ReadAll(ctx); rerr == nil {
		if latest, ok := history.Latest(); ok {
			entry.Name = latest.Name
		}
	}
	if uerr := o.store.Upsert(ctx, entry); uerr != nil {
		o.log.Error("recording failed run", uerr)
	}
	return entry
}
