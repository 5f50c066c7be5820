package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/matheuskafuri/attendwatch/internal/attendance"
)

type Postgres struct {
	pool *pgxpool.Pool
}

func OpenPostgres(ctx context.Context, dsn string) (*Postgres, error) {
	if dsn == "" {
		return nil, fmt.Errorf("postgres storage requires a dsn")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connecting to postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging postgres: %w", err)
	}
	p := &Postgres{pool: pool}
	if err := p.init(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return p, nil
}

func (p *Postgres) init(ctx context.Context) error {
	_, err := p.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS attendance (
			date                 TEXT PRIMARY KEY,
			name                 TEXT NOT NULL DEFAULT '',
			working_days         INTEGER,
			present              INTEGER,
			absent               INTEGER,
			leave_days           INTEGER,
			day_status           TEXT NOT NULL,
			fetched_at           TIMESTAMPTZ NOT NULL,
			notification_sent    BOOLEAN NOT NULL DEFAULT FALSE,
			notification_sent_at TIMESTAMPTZ,
			error                TEXT NOT NULL DEFAULT ''
		)
	`)
	if err != nil {
		return fmt.Errorf("initializing schema: %w", err)
	}
	return nil
}

func (p *Postgres) Close() error {
	p.pool.Close()
	return nil
}

func (p *Postgres) Upsert(ctx context.Context, e attendance.Entry) error {
	if err := e.Validate(); err != nil {
		return err
	}
	wd, pr, ab, lv := counterArgs(e.Counters)
	_, err := p.pool.Exec(ctx, `
		INSERT INTO attendance (date, name, working_days, present, absent, leave_days, day_status, fetched_at, notification_sent, notification_sent_at, error)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (date) DO UPDATE SET
			name = EXCLUDED.name,
			working_days = EXCLUDED.working_days,
			present = EXCLUDED.present,
			absent = EXCLUDED.absent,
			leave_days = EXCLUDED.leave_days,
			day_status = EXCLUDED.day_status,
			fetched_at = EXCLUDED.fetched_at,
			notification_sent = EXCLUDED.notification_sent,
			notification_sent_at = EXCLUDED.notification_sent_at,
			error = EXCLUDED.error
	`, e.Date, e.Name, wd, pr, ab, lv, string(e.DayStatus), e.FetchedAt, e.NotificationSent, e.NotificationSentAt, e.Error)
	if err != nil {
		return fmt.Errorf("upserting entry %s: %w", e.Date, err)
	}
	return nil
}

func (p *Postgres) ReadAll(ctx context.Context) (attendance.Series, error) {
	rows, err := p.pool.Query(ctx, `
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
			e              attendance.Entry
			status         string
			wd, pr, ab, lv *int32
		)
		if err := rows.Scan(&e.Date, &e.Name, &wd, &pr, &ab, &lv, &status, &e.FetchedAt, &e.NotificationSent, &e.NotificationSentAt, &e.Error); err != nil {
			return nil, fmt.Errorf("scanning entry: %w", err)
		}
		e.DayStatus = attendance.Status(status)
		if wd != nil {
			e.Counters = &attendance.Counters{
				WorkingDays: int(*wd),
				Present:     int(deref(pr)),
				Absent:      int(deref(ab)),
				Leave:       int(deref(lv)),
			}
		}
		series = append(series, e)
	}
	return series, rows.Err()
}

func deref(v *int32) int32 {
	if v == nil {
		return 0
	}
	return *v
}
