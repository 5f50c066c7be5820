package notify

import (
	"context"
	"errors"
	"fmt"

	"github.com/matheuskafuri/attendwatch/internal/logging"
)

// Notifier delivers a notification to the user.
type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}

// Log writes notifications to a logger.
type Log struct {
	Logger logging.Logger
}

func (l Log) Notify(_ context.Context, n Notification) error {
	l.Logger.Info(fmt.Sprintf("notification: %s: %s", n.Title, n.Body))
	return nil
}

// PartialError is returned by Multi when some channels failed but at least
// one other channel delivered.
type PartialError struct {
	Err error
}

func (e *PartialError) Error() string { return "partial delivery: " + e.Err.Error() }

func (e *PartialError) Unwrap() error { return e.Err }

// Delivered reports whether err still means the user was notified.
func Delivered(err error) bool {
	var pe *PartialError
	return err == nil || errors.As(err, &pe)
}

// Multi fans out to every notifier. A Log success does not count as delivery
// when other channels are configured and all of them failed.
type Multi []Notifier

func (m Multi) Notify(ctx context.Context, n Notification) error {
	var errs []error
	delivered := false
	for _, nt := range m {
		if err := nt.Notify(ctx, n); err != nil {
			errs = append(errs, err)
			continue
		}
		if _, ok := nt.(Log); !ok {
			delivered = true
		}
	}
	if len(errs) == 0 {
		return nil
	}
	if delivered {
		return &PartialError{Err: errors.Join(errs...)}
	}
	return errors.Join(errs...)
}
