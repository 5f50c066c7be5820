package attendance

import (
	"fmt"
	"sort"
	"time"
)

// DateLayout is the calendar-date key format used across the time series.
const DateLayout = "2006-01-02"

// Status is the classified label attached to one calendar date.
type Status string

const (
	Present     Status = "Present"
	Absent      Status = "Absent"
	Leave       Status = "Leave"
	NoChange    Status = "No Change"
	InitialData Status = "Initial Data"
	Error       Status = "Error"
)

// Counters are the cumulative totals reported by the portal as of one pull.
type Counters struct {
	WorkingDays int `json:"workingDays"`
	Present     int `json:"present"`
	Absent      int `json:"absent"`
	Leave       int `json:"leave"`
}

// Snapshot is a successful pull from the portal.
type Snapshot struct {
	Date        string
	StudentName string
	Counters    Counters
}

// Entry is one row of the time series, keyed by Date.
type Entry struct {
	Date               string     `json:"date"`
	Name               string     `json:"name"`
	Counters           *Counters  `json:"data"`
	DayStatus          Status     `json:"dayStatus"`
	FetchedAt          time.Time  `json:"fetchedAt"`
	NotificationSent   bool       `json:"notificationSent"`
	NotificationSentAt *time.Time `json:"notificationSentAt"`
	Error              string     `json:"error,omitempty"`
}

// Validate checks the key format and that counters are nil exactly when the
// entry records a failed pull.
func (e Entry) Validate() error {
	if _, err := time.Parse(DateLayout, e.Date); err != nil {
		return fmt.Errorf("entry date %q: %w", e.Date, err)
	}
	if (e.Counters == nil) != (e.DayStatus == Error) {
		return fmt.Errorf("entry %s: counters must be empty iff status is %s (status %s)", e.Date, Error, e.DayStatus)
	}
	return nil
}

// Series is the attendance time series.
type Series []Entry

// Sorted returns a copy ordered ascending by date.
func (s Series) Sorted() Series {
	out := make(Series, len(s))
	copy(out, s)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}

// Find returns the entry for date, if any.
func (s Series) Find(date string) (Entry, bool) {
	for _, e := range s {
		if e.Date == date {
			return e, true
		}
	}
	return Entry{}, false
}

// Latest returns the entry with the greatest date.
func (s Series) Latest() (Entry, bool) {
	if len(s) == 0 {
		return Entry{}, false
	}
	best := s[0]
	for _, e := range s[1:] {
		if e.Date > best.Date {
			best = e
		}
	}
	return best, true
}

// LastFetched returns the most recent FetchedAt across the series.
func (s Series) LastFetched() *time.Time {
	var last *time.Time
	for i := range s {
		t := s[i].FetchedAt
		if t.IsZero() {
			continue
		}
		if last == nil || t.After(*last) {
			last = &t
		}
	}
	return last
}

// Today returns the calendar date of now in loc.
func Today(now time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	return now.In(loc).Format(DateLayout)
}
