package store

import (
	"context"
	"fmt"

	"github.com/matheuskafuri/attendwatch/internal/attendance"
)

// Store persists the attendance time series. Upsert replaces the whole entry
// for its date or appends it when the date is new.
type Store interface {
	Upsert(ctx context.Context, e attendance.Entry) error
	ReadAll(ctx context.Context) (attendance.Series, error)
	Close() error
}

// Options select and locate a backend.
type Options struct {
	Driver string // json, sqlite, postgres or memory
	Path   string
	DSN    string
}

// Open returns the backend named by opts.Driver.
func Open(ctx context.Context, opts Options) (Store, error) {
	switch opts.Driver {
	case "", "json":
		return NewJSONFile(opts.Path), nil
	case "sqlite":
		return OpenSQLite(opts.Path)
	case "postgres":
		return OpenPostgres(ctx, opts.DSN)
	case "memory":
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q (valid: json, sqlite, postgres, memory)", opts.Driver)
	}
}

// upsertSlice replaces the entry with the same date in place or appends.
func upsertSlice(s attendance.Series, e attendance.Entry) attendance.Series {
	for i := range s {
		if s[i].Date == e.Date {
			s[i] = e
			return s
		}
	}
	return append(s, e)
}
