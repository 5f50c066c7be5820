package progress

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/matheuskafuri/attendwatch/internal/logging"
)

// Reporter records progress for the current run. Write failures are logged
// and never abort the run.
type Reporter struct {
	store  Store
	broker *Broker
	log    logging.Logger
	now    func() time.Time

	mu    sync.Mutex
	runID string
}

func NewReporter(s Store, b *Broker, log logging.Logger) *Reporter {
	if log == nil {
		log = logging.Nop()
	}
	return &Reporter{store: s, broker: b, log: log, now: time.Now}
}

// Begin starts a new run and returns its ID.
func (r *Reporter) Begin() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.runID = uuid.NewString()
	return r.runID
}

func (r *Reporter) Report(ctx context.Context, progress int, message string) {
	r.mu.Lock()
	s := State{Message: message, Progress: progress, Timestamp: r.now(), RunID: r.runID}
	r.mu.Unlock()

	if err := r.store.Save(ctx, s); err != nil {
		r.log.Warn("saving progress", err)
	}
	if r.broker != nil {
		r.broker.Publish(s)
	}
}

// Fail reports the failure terminal state.
func (r *Reporter) Fail(ctx context.Context, message string) {
	r.Report(ctx, Failed, "Error: "+message)
}

func (r *Reporter) Current(ctx context.Context) (State, error) {
	return r.store.Load(ctx)
}

// Source is anything a poller can read progress from.
type Source interface {
	Load(ctx context.Context) (State, error)
}

// Poll reads src every interval and passes each value to fn until a terminal
// value is seen or ctx is done. Read errors are passed to onErr and polling
// continues.
func Poll(ctx context.Context, src Source, interval time.Duration, fn func(State), onErr func(error)) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		s, err := src.Load(ctx)
		if err != nil {
			if onErr != nil {
				onErr(err)
			}
		} else {
			fn(s)
			if s.Terminal() {
				return nil
			}
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
