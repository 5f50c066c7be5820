package classify

import "github.com/matheuskafuri/attendwatch/internal/attendance"

// Classify determines the day status for a snapshot by diffing its counters
// against the closest earlier entry in history. Entries on the snapshot's own
// date are ignored so a repeated pull never compares against itself.
func Classify(snap attendance.Snapshot, history attendance.Series) attendance.Status {
	prev, ok := previous(snap.Date, history.Sorted())
	if !ok || prev.Counters == nil {
		return baseline(snap.Counters)
	}
	return diff(snap.Counters, *prev.Counters)
}

func previous(date string, sorted attendance.Series) (attendance.Entry, bool) {
	var (
		prev  attendance.Entry
		found bool
	)
	for _, e := range sorted {
		if e.Date >= date {
			break
		}
		prev, found = e, true
	}
	return prev, found
}

func baseline(c attendance.Counters) attendance.Status {
	switch {
	case c.Present > 0:
		return attendance.Present
	case c.Absent > 0:
		return attendance.Absent
	default:
		return attendance.InitialData
	}
}

// diff applies absent > leave > present priority. A counter that went down is
// not treated as a change.
func diff(cur, prev attendance.Counters) attendance.Status {
	switch {
	case cur.Absent > prev.Absent:
		return attendance.Absent
	case cur.Leave > prev.Leave:
		return attendance.Leave
	case cur.Present > prev.Present:
		return attendance.Present
	default:
		return attendance.NoChange
	}
}
