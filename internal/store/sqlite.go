package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/matheuskafuri/attendwatch/internal/attendance"
	_ "modernc.org/sqlite"
)

type SQLite struct {
	readDB  *sql.DB
	writeDB *sql.DB
}

func OpenSQLite(dbPath string) (*SQLite, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("creating data dir: %w", err)
	}

	writeDB, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening write db: %w", err)
	}
	writeDB.SetMaxOpenConns(1)

	readDB, err := sql.Open("sqlite", dbPath+"?mode=ro")
	if err != nil {
		writeDB.Close()
		return nil, fmt.Errorf("opening read db: %w", err)
	}

	s := &SQLite{readDB: readDB, writeDB: writeDB}
	if err := s.init(); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLite) init() error {
	_, err := s.writeDB.Exec(`
		CREATE TABLE IF NOT EXISTS attendance (
			date                 TEXT PRIMARY KEY,
			name                 TEXT NOT NULL DEFAULT '',
			working_days         INTEGER,
			present              INTEGER,
			absent               INTEGER,
			leave_days           INTEGER,
			day_status           TEXT NOT NULL,
			fetched_at           DATETIME NOT NULL,
			notification_sent    INTEGER NOT NULL DEFAULT 0,
			notification_sent_at DATETIME,
			error                TEXT NOT NULL DEFAULT ''
		);
	`)
	if err != nil {
		return fmt.Errorf("initializing schema: %w", err)
	}
	return nil
}

func (s *SQLite) Close() error {
	var errs []error
	if s.readDB != nil {
		errs = append(errs, s.readDB.Close())
	}
	if s.writeDB != nil {
		errs = append(errs, s.writeDB.Close())
	}
	for _, e := range errs {
		if e != nil {
			return e
		}
	}
	return nil
}

func (s *SQLite) Upsert(ctx context.Context, e attendance.Entry) error {
	if err := e.Validate(); err != nil {
		return err
	}
	wd, p, a, l := counterArgs(e.Counters)
	_, err := s.writeDB.ExecContext(ctx, `
		INSERT INTO attendance (date, name, working_days, present, absent, leave_days, day_status, fetched_at, notification_sent, notification_sent_at, error)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(date) DO UPDATE SET
			name = excluded.name,
			working_days = excluded.working_days,
			present = excluded.present,
			absent = excluded.absent,
			leave_days = excluded.leave_days,
			day_status = excluded.day_status,
			fetched_at = excluded.fetched_at,
			notification_sent = excluded.notification_sent,
			notification_sent_at = excluded.notification_sent_at,
			error = excluded.error
	`, e.Date, e.Name, wd, p, a, l, string(e.DayStatus), e.FetchedAt.UTC(), e.NotificationSent, timeOrNil(e.NotificationSentAt), e.Error)
	if err != nil {
		return fmt.Errorf("upserting entry %s: %w", e.Date, err)
	}
	return nil
}

func (s *SQLite) ReadAll(ctx context.Context) (attendance.Series, error) {
	rows, err := s.readDB.QueryContext(ctx, `
		SELECT date, name, working_days, present, absent, leave_days, day_status, fetched_at, notification_sent, notification_sent_at, error
		FROM attendance ORDER BY date ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("querying attendance: %w", err)
	}
	defer rows.Close()

	series := attendance.Series{}
	for rows.Next() {
		var (
			e           attendance.Entry
			status      string
			wd, p, a, l sql.NullInt64
			sentAt      sql.NullTime
		)
		if err := rows.Scan(&e.Date, &e.Name, &wd, &p, &a, &l, &status, &e.FetchedAt, &e.NotificationSent, &sentAt, &e.Error); err != nil {
			return nil, fmt.Errorf("scanning entry: %w", err)
		}
		e.DayStatus = attendance.Status(status)
		if wd.Valid {
			e.Counters = &attendance.Counters{
				WorkingDays: int(wd.Int64),
				Present:     int(p.Int64),
				Absent:      int(a.Int64),
				Leave:       int(l.Int64),
			}
		}
		if sentAt.Valid {
			t := sentAt.Time
			e.NotificationSentAt = &t
		}
		series = append(series, e)
	}
	return series, rows.Err()
}

func counterArgs(c *attendance.Counters) (wd, p, a, l interface{}) {
	if c == nil {
		return nil, nil, nil, nil
	}
	return c.WorkingDays, c.Present, c.Absent, c.Leave
}

// timeOrNil converts an optional timestamp for drivers that take nil as NULL.
func timeOrNil(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return t.UTC()
}
